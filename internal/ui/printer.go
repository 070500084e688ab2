package ui

import (
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"dtp/internal/domain"
)

// Printer renders a TestReport to the log sink
type Printer struct {
	logger *zap.Logger
	mu     sync.Mutex
}

// NewPrinter creates a new Printer
func NewPrinter(logger *zap.Logger) *Printer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Printer{logger: logger}
}

// Print writes the runtime line, one error block per failure and the summary line.
// The summary goes to the error level when anything failed, otherwise to info.
// It returns the report's failed count.
func (p *Printer) Print(label string, report domain.TestReport) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.logger.Info(fmt.Sprintf("%s completed in %sms", label, strconv.FormatFloat(report.RuntimeMs, 'f', -1, 64)))

	for _, failure := range report.Failures {
		heading := failure.Name
		if failure.Message != "" {
			heading += " [" + failure.Message + "]"
		}
		p.logger.Error("")
		p.logger.Error(heading)
		p.logger.Error(failure.Source)
		p.logger.Error("Actual:")
		p.logger.Error(failure.Actual)
		p.logger.Error("Expected:")
		p.logger.Error(failure.Expected)
	}

	summary := fmt.Sprintf("%d of %d passed, %d failed", report.Passed, report.Total, report.Failed)
	if report.Failed > 0 {
		p.logger.Error(summary)
	} else {
		p.logger.Info(summary)
	}
	return report.Failed
}

// PrintLoadFailure reports an environment whose harness produced no usable report
func (p *Printer) PrintLoadFailure(label, stderr string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if stderr != "" {
		p.logger.Error(stderr)
	}
	p.logger.Error(label + " test failed to load")
}
