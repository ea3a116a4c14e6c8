// Package datafile loads runs of (score, label) pairs from CSV and XLSX
// files.
package datafile

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"perfeval/domain/core"
	"perfeval/domain/perf"
	"perfeval/ports"
)

// Options selects which columns hold the run data.
type Options struct {
	ScoreColumn string
	LabelColumn string
	// RunColumn optionally splits rows into runs by its value; empty means
	// the whole file is one run.
	RunColumn string
	// Sheet is the XLSX sheet name, defaulting to Sheet1.
	Sheet string
}

// Reader reads runs from CSV or XLSX files, dispatching on the file
// extension.
type Reader struct {
	opts Options
}

// NewReader creates a file-backed run reader.
func NewReader(opts Options) ports.RunReader {
	if opts.ScoreColumn == "" {
		opts.ScoreColumn = "score"
	}
	if opts.LabelColumn == "" {
		opts.LabelColumn = "label"
	}
	if opts.Sheet == "" {
		opts.Sheet = "Sheet1"
	}
	return &Reader{opts: opts}
}

// ReadRuns loads all runs from the given file.
func (r *Reader) ReadRuns(ctx context.Context, source string) ([]perf.RawRun, error) {
	if _, err := os.Stat(source); os.IsNotExist(err) {
		return nil, core.InvalidInputf("data file not found: %s", source)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(source)) {
	case ".csv":
		rows, err = readCSVRows(source)
	case ".xlsx":
		rows, err = readExcelRows(source, r.opts.Sheet)
	default:
		return nil, core.InvalidInputf("unsupported file type: %s", filepath.Ext(source))
	}
	if err != nil {
		return nil, err
	}
	return r.parseRows(rows)
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.Wrap(err, "failed to open CSV file")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, core.Wrap(err, "failed to parse CSV file")
	}
	return rows, nil
}

func readExcelRows(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, core.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, core.Wrap(err, "failed to read sheet "+sheet)
	}
	return rows, nil
}

// parseRows converts header + data rows into runs, grouped by the run
// column when configured. Run order follows first appearance in the file.
func (r *Reader) parseRows(rows [][]string) ([]perf.RawRun, error) {
	if len(rows) < 2 {
		return nil, core.InvalidInput("data file needs a header row and at least one data row")
	}

	header := rows[0]
	scoreIdx, labelIdx, runIdx := -1, -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case r.opts.ScoreColumn:
			scoreIdx = i
		case r.opts.LabelColumn:
			labelIdx = i
		case r.opts.RunColumn:
			if r.opts.RunColumn != "" {
				runIdx = i
			}
		}
	}
	if scoreIdx < 0 {
		return nil, core.InvalidInputf("score column %q not found", r.opts.ScoreColumn)
	}
	if labelIdx < 0 {
		return nil, core.InvalidInputf("label column %q not found", r.opts.LabelColumn)
	}
	if r.opts.RunColumn != "" && runIdx < 0 {
		return nil, core.InvalidInputf("run column %q not found", r.opts.RunColumn)
	}

	var order []string
	grouped := map[string]*perf.RawRun{}
	for n, row := range rows[1:] {
		if len(row) <= scoreIdx || len(row) <= labelIdx {
			return nil, core.InvalidInputf("row %d is missing columns", n+2)
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(row[scoreIdx]), 64)
		if err != nil {
			return nil, core.InvalidInputf("row %d: invalid score %q", n+2, row[scoreIdx])
		}
		label := strings.TrimSpace(row[labelIdx])
		if label == "" {
			return nil, core.InvalidInputf("row %d: empty label", n+2)
		}

		key := ""
		if runIdx >= 0 {
			if len(row) <= runIdx {
				return nil, core.InvalidInputf("row %d is missing the run column", n+2)
			}
			key = strings.TrimSpace(row[runIdx])
		}
		run, ok := grouped[key]
		if !ok {
			run = &perf.RawRun{}
			grouped[key] = run
			order = append(order, key)
		}
		run.Scores = append(run.Scores, score)
		run.Labels = append(run.Labels, label)
	}

	runs := make([]perf.RawRun, len(order))
	for i, key := range order {
		runs[i] = *grouped[key]
	}
	return runs, nil
}
