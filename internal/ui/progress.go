package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"dtp/internal/domain"
)

// ProgressBar counts completed environments and lists each one under the bar
// as it finishes.
type ProgressBar struct {
	bar    *progressbar.ProgressBar
	passed int
	failed int
}

// NewProgressBar creates a new progress bar writing to stderr
func NewProgressBar(count int) *ProgressBar {
	return NewProgressBarWithWriter(count, os.Stderr)
}

// NewProgressBarWithWriter creates a new progress bar writing to w
func NewProgressBarWithWriter(count int, w io.Writer) *ProgressBar {
	bar := progressbar.NewOptions(count,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(color.CyanString("Waiting for %d environment(s)", count)),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionSetMaxDetailRow(count),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
	)
	return &ProgressBar{bar: bar}
}

// Complete records one finished environment
func (p *ProgressBar) Complete(outcome domain.EnvironmentOutcome) {
	var status string
	switch {
	case outcome.HardFailure():
		p.failed++
		status = color.YellowString("failed to report")
	case !outcome.Passed():
		p.failed++
		status = color.RedString("failed")
	default:
		p.passed++
		status = color.GreenString("passed")
	}

	// Details must be added before the last step finishes the bar
	_ = p.bar.AddDetail(fmt.Sprintf("%s %s in %s", outcome.Environment.Label(), status, outcome.Duration.Round(time.Millisecond)))
	p.bar.Describe(color.CyanString("Environments ") + color.GreenString("%d passed", p.passed) + ", " + color.RedString("%d failed", p.failed))
	_ = p.bar.Add(1)
}

// Counts returns how many completed environments passed and failed
func (p *ProgressBar) Counts() (passed, failed int) {
	return p.passed, p.failed
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	_ = p.bar.Finish()
}
