package report

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"perfeval/adapters/stats/measures"
	"perfeval/domain/perf"
	"perfeval/ports"
)

// Format selects the report output format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Renderer writes an evaluation report to w. It satisfies ports.CurveSink
// so the evaluation service can emit a report as a side effect.
type Renderer struct {
	w      io.Writer
	format Format
}

func NewRenderer(w io.Writer, format Format) *Renderer {
	if format == "" {
		format = FormatMarkdown
	}
	return &Renderer{w: w, format: format}
}

var _ ports.CurveSink = (*Renderer)(nil)

func (r *Renderer) Consume(ctx context.Context, p *perf.Performance) error {
	md := Render(p)
	var out []byte
	switch r.format {
	case FormatHTML:
		out = ToHTML(md)
	default:
		out = []byte(md)
	}
	_, err := r.w.Write(out)
	return err
}

// Render builds the markdown report for one evaluation.
func Render(p *perf.Performance) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Performance Evaluation %s\n\n", p.ID())
	fmt.Fprintf(&b, "Measure pair: **%s** vs **%s** across %d run(s).\n\n",
		p.YMeasure(), p.XMeasure(), p.NumRuns())

	b.WriteString("## Runs\n\n")
	b.WriteString("| Run | Points | Cutoff range |")
	isROC := p.XMeasure() == "fpr" && p.YMeasure() == "tpr"
	if isROC {
		b.WriteString(" AUC |")
	}
	b.WriteString("\n|---|---|---|")
	if isROC {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for i, c := range p.Curves() {
		lo, hi := cutoffRange(c)
		fmt.Fprintf(&b, "| %d | %d | [%s, %s] |", i+1, c.Len(), num(lo), num(hi))
		if isROC {
			fmt.Fprintf(&b, " %s |", num(trapezoid(c)))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if p.YMeasure() == "chisq" {
		writeChiSquaredNote(&b, p)
	}

	if avg := p.Averaged(); avg != nil {
		fmt.Fprintf(&b, "## Averaged curve (%s)\n\n", avg.Mode)
		hasSpread := len(avg.Spread) == len(avg.Points)
		b.WriteString("| Cutoff | " + p.XMeasure() + " | " + p.YMeasure() + " |")
		if hasSpread {
			b.WriteString(" Spread |")
		}
		b.WriteString("\n|---|---|---|")
		if hasSpread {
			b.WriteString("---|")
		}
		b.WriteString("\n")
		for i, pt := range avg.Points {
			fmt.Fprintf(&b, "| %s | %s | %s |", num(pt.Cutoff), num(pt.X), num(pt.Y))
			if hasSpread {
				fmt.Fprintf(&b, " %s |", spreadCell(avg.Spread[i]))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

// ToHTML converts a markdown report to an HTML fragment.
func ToHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}

// writeChiSquaredNote reports the peak chi-squared statistic per run with
// its significance under one degree of freedom.
func writeChiSquaredNote(b *strings.Builder, p *perf.Performance) {
	b.WriteString("## Chi-squared significance\n\n")
	for i, c := range p.Curves() {
		best := math.Inf(-1)
		for _, pt := range c.Points {
			if !math.IsNaN(pt.Y) && pt.Y > best {
				best = pt.Y
			}
		}
		if math.IsInf(best, -1) {
			continue
		}
		fmt.Fprintf(b, "- Run %d: max statistic %s, p = %s\n",
			i+1, num(best), num(measures.ChiSquaredSignificance(best)))
	}
	b.WriteString("\n")
}

func cutoffRange(c perf.Curve) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, pt := range c.Points {
		if pt.Cutoff < lo {
			lo = pt.Cutoff
		}
		if pt.Cutoff > hi {
			hi = pt.Cutoff
		}
	}
	return lo, hi
}

func trapezoid(c perf.Curve) float64 {
	area := 0.0
	for i := 1; i < len(c.Points); i++ {
		a, b := c.Points[i-1], c.Points[i]
		area += math.Abs(b.X-a.X) * (a.Y + b.Y) / 2
	}
	return area
}

func spreadCell(s perf.SpreadStats) string {
	switch {
	case s.Box != nil:
		return fmt.Sprintf("box[%s, %s, %s, %s, %s]",
			num(s.Box.Min), num(s.Box.Q1), num(s.Box.Median), num(s.Box.Q3), num(s.Box.Max))
	case !math.IsNaN(s.StdErr):
		return "±" + num(s.StdErr) + " (se)"
	case !math.IsNaN(s.StdDev):
		return "±" + num(s.StdDev) + " (sd)"
	}
	return "-"
}

func num(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	return fmt.Sprintf("%.4g", f)
}
