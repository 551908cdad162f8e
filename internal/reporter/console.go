package reporter

import (
	"fmt"
	"io"
	"os"

	"sql-compact/internal/model"

	"github.com/fatih/color"
)

type ConsoleReporter struct {
	out io.Writer
	// Top limits how many groups are printed; zero prints all.
	Top int
}

func NewConsoleReporter(top int) *ConsoleReporter {
	return &ConsoleReporter{out: os.Stdout, Top: top}
}

func (r *ConsoleReporter) Report(result *model.CompressionResult, findings []model.Finding) error {
	fmt.Fprintf(r.out, "%s %d statements compressed into %d patterns (ratio %.1fx, %d executions)\n\n",
		color.GreenString("✔"),
		result.TotalQueries, result.UniquePatterns, result.CompressionRatio, result.TotalExecutions)

	groups := result.Groups
	if r.Top > 0 && len(groups) > r.Top {
		groups = groups[:r.Top]
	}

	for i, g := range groups {
		fmt.Fprintf(r.out, "%2d. %s  %s\n", i+1,
			color.CyanString(truncate(g.RepresentativeSQL, 80)),
			color.New(color.Faint).Sprintf("[%s]", shortSig(g.Signature)))
		fmt.Fprintf(r.out, "    type=%s queries=%d execs=%d elapsed=%.1fms avg=%.3fms tables=%d\n",
			orDash(string(g.QueryType)), g.QueryCount, g.TotalExecutions,
			g.TotalElapsedTimeMs, g.AvgElapsedTimeMs, g.Complexity.TableCount)
	}

	if len(findings) == 0 {
		return nil
	}

	fmt.Fprintf(r.out, "\n%s %d findings in hot patterns:\n\n", color.RedString("✘"), len(findings))
	for _, f := range findings {
		var levelColor *color.Color
		switch f.Level {
		case model.RiskLevelFatal:
			levelColor = color.New(color.FgRed, color.Bold)
		case model.RiskLevelWarning:
			levelColor = color.New(color.FgYellow, color.Bold)
		case model.RiskLevelSuggestion:
			levelColor = color.New(color.FgBlue, color.Bold)
		default:
			levelColor = color.New(color.FgWhite)
		}

		fmt.Fprintf(r.out, "[%s] %s (%d executions)\n", levelColor.Sprint(f.Level), f.Message, f.TotalExecutions)
		fmt.Fprintf(r.out, "\tPattern: %s\n", color.CyanString(truncate(f.SQL, 80)))
		fmt.Fprintf(r.out, "\tSuggestion: %s\n\n", f.Suggestion)
	}

	return nil
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

func shortSig(sig string) string {
	if len(sig) > 12 {
		return sig[:12]
	}
	if sig == "" {
		return "-"
	}
	return sig
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
