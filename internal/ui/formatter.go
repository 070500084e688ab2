package ui

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"

	"dtp/internal/discovery"
	"dtp/internal/domain"
)

// Formatter formats and displays run summaries
type Formatter struct {
	out io.Writer
}

// NewFormatter creates a new Formatter writing to stdout
func NewFormatter() *Formatter {
	return &Formatter{out: os.Stdout}
}

// NewFormatterWithWriter creates a Formatter writing to w
func NewFormatterWithWriter(w io.Writer) *Formatter {
	return &Formatter{out: w}
}

// PrintRunSummary prints the per-environment table and the overall verdict
func (f *Formatter) PrintRunSummary(summary *domain.RunSummary) {
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	fmt.Fprintln(f.out)
	cyan.Fprintln(f.out, "╔═══════════════════════════════════════════════════════════════╗")
	cyan.Fprintln(f.out, "║                     Test Environment Results                  ║")
	cyan.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(f.out)

	fmt.Fprintln(f.out, "┌────────────┬──────────┬─────────┬─────────┬─────────┬──────────────┐")
	fmt.Fprintf(f.out, "│ %-10s │ %-8s │ %7s │ %7s │ %7s │ %12s │\n", "Env", "Status", "Total", "Passed", "Failed", "Runtime")
	fmt.Fprintln(f.out, "├────────────┼──────────┼─────────┼─────────┼─────────┼──────────────┤")
	for _, env := range summary.Environments {
		fmt.Fprintf(f.out, "│ %-10s │ ", env.Environment)
		status := fmt.Sprintf("%-8s", env.Status)
		switch env.Status {
		case domain.StatusPassed:
			green.Fprint(f.out, status)
		case domain.StatusFailed:
			red.Fprint(f.out, status)
		default:
			yellow.Fprint(f.out, status)
		}
		if env.Status == domain.StatusError {
			fmt.Fprintf(f.out, " │ %7s │ %7s │ %7s │ %12s │\n", "-", "-", "-", "-")
			continue
		}
		runtime := strconv.FormatFloat(env.RuntimeMs, 'f', -1, 64) + "ms"
		fmt.Fprintf(f.out, " │ %7d │ %7d │ %7d │ %12s │\n", env.Total, env.Passed, env.Failed, runtime)
	}
	fmt.Fprintln(f.out, "└────────────┴──────────┴─────────┴─────────┴─────────┴──────────────┘")

	fmt.Fprintf(f.out, "Duration: %.2fs  Timestamp: %s\n", summary.Meta.DurationSeconds, summary.Meta.Timestamp)
	fmt.Fprintln(f.out)
	if summary.Meta.Passed {
		green.Fprintln(f.out, "✓ All environments passed!")
		return
	}
	red.Fprintf(f.out, "✗ %d test case failure(s), %d environment(s) failed to report\n", summary.Meta.FailedTestCases, summary.Meta.HardFailures)
	for _, env := range summary.Environments {
		if env.Error != "" {
			red.Fprintf(f.out, "  %s: %s\n", env.Environment, env.Error)
		}
		for _, failure := range env.Failures {
			red.Fprintf(f.out, "  %s |_ %s\n", env.Environment, failure.Name)
		}
	}
}

// PrintEnvironments lists the resolved harness and target of every environment
func (f *Formatter) PrintEnvironments(resolved []discovery.Resolved) {
	color.New(color.FgGreen).Fprintf(f.out, "Found %d environment(s):\n\n", len(resolved))
	for i, r := range resolved {
		branch, indent := "├── ", "│   "
		if i == len(resolved)-1 {
			branch, indent = "└── ", "    "
		}
		color.New(color.FgCyan).Fprintf(f.out, "%s%s (%s)\n", branch, r.Spec.Environment, r.Spec.Environment.Label())
		fmt.Fprintf(f.out, "%s├── binary:  %s%s\n", indent, r.Spec.Binary, marker(r.BinaryFound))
		fmt.Fprintf(f.out, "%s├── harness: %s%s\n", indent, r.HarnessPath, marker(r.HarnessFound))
		fmt.Fprintf(f.out, "%s└── target:  %s%s\n", indent, r.TargetPath, marker(r.TargetFound))
	}
}

func marker(found bool) string {
	if found {
		return ""
	}
	return " " + color.RedString("[missing]")
}
