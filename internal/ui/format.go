package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/evalboard/evalboard/internal/api"
	"github.com/evalboard/evalboard/internal/grid"
)

// placeholder marks metrics the backend has not computed yet.
const placeholder = "--"

// fmtInt converts an int to string.
func fmtInt(value int) string {
	return strconv.Itoa(value)
}

// cell truncates or right-pads text to exactly width cells.
func cell(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= width {
		return text + strings.Repeat(" ", width-utf8.RuneCountInString(text))
	}
	runes := []rune(text)
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

// cellRight truncates or left-pads text to exactly width cells.
func cellRight(text string, width int) string {
	if width <= 0 {
		return ""
	}
	n := utf8.RuneCountInString(text)
	if n <= width {
		return strings.Repeat(" ", width-n) + text
	}
	return cell(text, width)
}

func formatErrorRate(v *float64) string {
	if v == nil {
		return placeholder
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}

func formatLatency(v *float64) string {
	if v == nil {
		return placeholder
	}
	if *v >= 1000 {
		return fmt.Sprintf("%.2fs", *v/1000)
	}
	return fmt.Sprintf("%.0fms", *v)
}

func formatCost(v *float64) string {
	if v == nil {
		return placeholder
	}
	return fmt.Sprintf("$%.2f", *v)
}

func formatTokens(v *float64) string {
	if v == nil {
		return placeholder
	}
	switch {
	case *v >= 1_000_000:
		return fmt.Sprintf("%.1fM", *v/1_000_000)
	case *v >= 1_000:
		return fmt.Sprintf("%.1fk", *v/1_000)
	default:
		return fmt.Sprintf("%.0f", *v)
	}
}

// formatTimeAgo renders a relative timestamp for the created column.
func formatTimeAgo(t time.Time, now time.Time) string {
	if t.IsZero() {
		return placeholder
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

// formatScoreCell renders one annotation score: the numeric mean, a bar
// positioning it within the dataset-wide range, and a trailing marker
// when some runs carry no annotation. A nil mean renders the
// placeholder.
func formatScoreCell(summary api.AnnotationSummary, rng api.AnnotationRange, runCount, width int) string {
	if summary.MeanScore == nil {
		return cell(placeholder, width)
	}

	label := fmt.Sprintf("%.2f", *summary.MeanScore)
	if grid.MissingAnnotationRatio(summary.Count, runCount) > 0 {
		label += "*"
	}

	barWidth := width - utf8.RuneCountInString(label) - 1
	if barWidth < 3 {
		return cell(label, width)
	}

	pct := grid.Percentile(*summary.MeanScore, rng.MinScore, rng.MaxScore)
	return cell(label+" "+scoreBar(pct, barWidth), width)
}

// scoreBar renders an unclamped 0-100 position as a bar of width cells.
// Values past either end keep a visible overflow marker instead of
// silently clamping.
func scoreBar(pct float64, width int) string {
	filled := int(math.Round(pct / 100 * float64(width)))

	switch {
	case pct < 0:
		return "<" + strings.Repeat("░", width-1)
	case pct > 100:
		return strings.Repeat("█", width-1) + ">"
	default:
		return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	}
}
