package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"perfeval/adapters/datafile"
	"perfeval/adapters/postgres"
	"perfeval/adapters/report"
	"perfeval/adapters/stats/average"
	"perfeval/adapters/stats/measures"
	"perfeval/app"
	"perfeval/internal"
	"perfeval/internal/config"
	"perfeval/ports"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "perfeval",
		Short: "Classifier performance evaluation over cutoff sweeps",
	}

	rootCmd.AddCommand(
		newEvaluateCmd(),
		newMeasuresCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newEvaluateCmd() *cobra.Command {
	var (
		xMeasure    string
		yMeasure    string
		cutoffsRaw  string
		averaging   string
		spread      string
		format      string
		scoreColumn string
		labelColumn string
		runColumn   string
		negLabel    string
		posLabel    string
		fAlpha      float64
		costFP      float64
		costFN      float64
		calWindow   int
		save        bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate [data-file]",
		Short: "Evaluate a measure pair over the runs in a CSV or XLSX file",
		Long: `Evaluate classifier predictions from a data file.

The file needs one score column and one label column; an optional run
column splits the rows into cross-validation runs.

Example: perfeval evaluate scores.csv --y tpr --x fpr --averaging vertical --spread stddev`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if scoreColumn == "" {
				scoreColumn = cfg.Data.ScoreColumn
			}
			if labelColumn == "" {
				labelColumn = cfg.Data.LabelColumn
			}
			if runColumn == "" {
				runColumn = cfg.Data.RunColumn
			}

			cutoffs, err := parseCutoffs(cutoffsRaw)
			if err != nil {
				return err
			}
			mode, err := average.ParseMode(averaging)
			if err != nil {
				return err
			}
			spreadMode, err := average.ParseSpreadMode(spread)
			if err != nil {
				return err
			}

			params := measures.Params{
				Alpha:     fAlpha,
				CostFP:    costFP,
				CostFN:    costFN,
				CalWindow: calWindow,
			}
			if !cmd.Flags().Changed("f-alpha") {
				params.Alpha = cfg.Eval.FAlpha
			}
			if !cmd.Flags().Changed("cost-fp") {
				params.CostFP = cfg.Eval.CostFP
			}
			if !cmd.Flags().Changed("cost-fn") {
				params.CostFN = cfg.Eval.CostFN
			}
			if !cmd.Flags().Changed("cal-window") {
				params.CalWindow = cfg.Eval.CalWindow
			}

			return runEvaluate(cmd.Context(), evaluateOptions{
				cfg:         cfg,
				file:        args[0],
				scoreColumn: scoreColumn,
				labelColumn: labelColumn,
				runColumn:   runColumn,
				negLabel:    negLabel,
				posLabel:    posLabel,
				xMeasure:    xMeasure,
				yMeasure:    yMeasure,
				cutoffs:     cutoffs,
				params:      &params,
				averaging:   mode,
				spread:      spreadMode,
				format:      format,
				save:        save,
			})
		},
	}

	cmd.Flags().StringVar(&yMeasure, "y", "tpr", "Measure for the y axis")
	cmd.Flags().StringVar(&xMeasure, "x", "fpr", "Measure for the x axis (empty for the measure's default)")
	cmd.Flags().StringVar(&cutoffsRaw, "cutoffs", "", "Comma-separated explicit cutoffs (default: all score values)")
	cmd.Flags().StringVar(&averaging, "averaging", "none", "Averaging mode: none|threshold|vertical|horizontal")
	cmd.Flags().StringVar(&spread, "spread", "none", "Spread estimate: none|stddev|stderror|boxplot")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json|markdown|html")
	cmd.Flags().StringVar(&scoreColumn, "score-column", "", "Score column name (default from config)")
	cmd.Flags().StringVar(&labelColumn, "label-column", "", "Label column name (default from config)")
	cmd.Flags().StringVar(&runColumn, "run-column", "", "Run column name for multi-run files")
	cmd.Flags().StringVar(&negLabel, "negative", "", "Negative class label (inferred when empty)")
	cmd.Flags().StringVar(&posLabel, "positive", "", "Positive class label (inferred when empty)")
	cmd.Flags().Float64Var(&fAlpha, "f-alpha", measures.DefaultParams().Alpha, "Alpha weight for the f measure")
	cmd.Flags().Float64Var(&costFP, "cost-fp", measures.DefaultParams().CostFP, "Cost of a false positive")
	cmd.Flags().Float64Var(&costFN, "cost-fn", measures.DefaultParams().CostFN, "Cost of a false negative")
	cmd.Flags().IntVar(&calWindow, "cal-window", measures.DefaultParams().CalWindow, "Sliding window size for the cal measure")
	cmd.Flags().BoolVar(&save, "save", false, "Persist the evaluation to the configured database")

	return cmd
}

type evaluateOptions struct {
	cfg         *config.Config
	file        string
	scoreColumn string
	labelColumn string
	runColumn   string
	negLabel    string
	posLabel    string
	xMeasure    string
	yMeasure    string
	cutoffs     []float64
	params      *measures.Params
	averaging   average.Mode
	spread      average.SpreadMode
	format      string
	save        bool
}

func runEvaluate(ctx context.Context, opts evaluateOptions) error {
	reader := datafile.NewReader(datafile.Options{
		ScoreColumn: opts.scoreColumn,
		LabelColumn: opts.labelColumn,
		RunColumn:   opts.runColumn,
	})
	runs, err := reader.ReadRuns(ctx, opts.file)
	if err != nil {
		return err
	}

	var repo ports.EvaluationRepository
	if opts.save {
		if !opts.cfg.Database.Enabled {
			return fmt.Errorf("--save requires PERFEVAL_DATABASE_URL")
		}
		db, err := sqlx.ConnectContext(ctx, "postgres", opts.cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("connect to evaluation store: %w", err)
		}
		defer db.Close()
		if _, err := db.ExecContext(ctx, postgres.Schema); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		repo = postgres.NewEvaluationRepository(db)
	}

	var sink ports.CurveSink
	switch opts.format {
	case "markdown":
		sink = report.NewRenderer(os.Stdout, report.FormatMarkdown)
	case "html":
		sink = report.NewRenderer(os.Stdout, report.FormatHTML)
	case "json":
	default:
		return fmt.Errorf("unknown output format %q", opts.format)
	}

	service := app.NewEvaluationService(repo, sink, internal.DefaultLogger)
	result, err := service.Evaluate(ctx, app.EvaluationRequest{
		Runs:          runs,
		NegativeLabel: opts.negLabel,
		PositiveLabel: opts.posLabel,
		XMeasure:      opts.xMeasure,
		YMeasure:      opts.yMeasure,
		Cutoffs:       opts.cutoffs,
		Params:        opts.params,
		Averaging:     opts.averaging,
		Spread:        opts.spread,
	})
	if err != nil {
		return err
	}

	if opts.format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"id":        string(result.ID()),
			"x_measure": result.XMeasure(),
			"y_measure": result.YMeasure(),
			"num_runs":  result.NumRuns(),
			"curves":    result.Curves(),
			"averaged":  result.Averaged(),
		})
	}
	return nil
}

func newMeasuresCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "measures",
		Short: "List the available performance measures",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := measures.Catalog()
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(catalog)
			}
			for _, entry := range catalog {
				name := entry.Name
				if entry.Canonical != entry.Name {
					name = fmt.Sprintf("%s (alias of %s)", entry.Name, entry.Canonical)
				}
				fmt.Printf("%-28s %-10s %s\n", name, entry.Kind, entry.Description)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the catalog as JSON")

	return cmd
}

func parseCutoffs(raw string) ([]float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid cutoff %q: %w", p, err)
		}
		out = append(out, f)
	}
	return out, nil
}
