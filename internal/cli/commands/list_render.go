package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"

	"github.com/evalboard/evalboard/internal/api"
	"github.com/evalboard/evalboard/internal/cli/config"
)

func renderExperiments(w io.Writer, experiments []api.Experiment, cfg *config.Config) error {
	format := cfg.OutputFormat
	if format == "auto" {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			format = "table"
		} else {
			format = "markdown"
		}
	}

	switch format {
	case "json":
		return renderJSON(w, experiments)
	case "csv":
		return renderTable(w, experiments, func(t table.Writer) { t.RenderCSV() })
	case "markdown":
		return renderTable(w, experiments, func(t table.Writer) { t.RenderMarkdown() })
	default:
		return renderTable(w, experiments, func(t table.Writer) {
			t.SetStyle(table.StyleLight)
			t.Render()
		})
	}
}

func renderJSON(w io.Writer, experiments []api.Experiment) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(experiments)
}

func renderTable(w io.Writer, experiments []api.Experiment, render func(table.Writer)) error {
	if len(experiments) == 0 {
		_, _ = fmt.Fprintln(w, "(0 experiments)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Name", "Created", "Runs", "Error Rate", "Latency", "Cost", "Tokens", "Scores"})

	for _, exp := range experiments {
		t.AppendRow(table.Row{
			exp.Name,
			exp.CreatedAt.Format("2006-01-02 15:04"),
			exp.RunCount,
			formatPercent(exp.Metrics.ErrorRate),
			formatMillis(exp.Metrics.AvgLatencyMS),
			formatDollars(exp.Metrics.TotalCost),
			formatCount(exp.Metrics.TotalTokens),
			formatScores(exp.AnnotationScores),
		})
	}

	render(t)
	_, _ = fmt.Fprintf(w, "(%d experiments)\n", len(experiments))
	return nil
}

func formatPercent(v *float64) string {
	if v == nil {
		return "--"
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}

func formatMillis(v *float64) string {
	if v == nil {
		return "--"
	}
	return fmt.Sprintf("%.0fms", *v)
}

func formatDollars(v *float64) string {
	if v == nil {
		return "--"
	}
	return fmt.Sprintf("$%.2f", *v)
}

func formatCount(v *float64) string {
	if v == nil {
		return "--"
	}
	return fmt.Sprintf("%.0f", *v)
}

// formatScores renders annotation mean scores as name=score pairs in
// alphabetical order.
func formatScores(scores map[string]api.AnnotationSummary) string {
	if len(scores) == 0 {
		return "--"
	}

	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		summary := scores[name]
		if summary.MeanScore == nil {
			parts = append(parts, name+"=--")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%.2f", name, *summary.MeanScore))
	}
	return strings.Join(parts, " ")
}
