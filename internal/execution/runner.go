package execution

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"dtp/internal/domain"
	"dtp/internal/parser"
)

// ErrNoOutput marks a child that exited with a failure status without writing anything to stdout
var ErrNoOutput = errors.New("harness exited without output")

// SpawnError reports a harness that could not be started or died before producing a report
type SpawnError struct {
	Environment domain.Environment
	ExitCode    int
	Stderr      string
	Err         error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("%s harness failed (exit code %d): %v", e.Environment, e.ExitCode, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ExitStatusError marks a harness that wrote a report but exited with a failure status
type ExitStatusError struct {
	Environment domain.Environment
	ExitCode    int
}

func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("%s harness exited with code %d", e.Environment, e.ExitCode)
}

// ReportPrinter renders parsed reports and load failures
type ReportPrinter interface {
	Print(label string, report domain.TestReport) int
	PrintLoadFailure(label, stderr string)
}

// Runner spawns one environment's harness and turns its output into an outcome
type Runner struct {
	commands CommandRunner
	parser   parser.Parser
	printer  ReportPrinter
	logger   *zap.Logger
}

// NewRunner creates a new Runner
func NewRunner(commands CommandRunner, p parser.Parser, printer ReportPrinter, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		commands: commands,
		parser:   p,
		printer:  printer,
		logger:   logger,
	}
}

// Run executes `<binary> <harness> <target>` for spec and waits for it.
// Spawn failures and unparsable reports become Failed outcomes, never zero-failure reports.
// A report from a harness that exited non-zero is kept but never passes.
func (r *Runner) Run(ctx context.Context, spec domain.EnvironmentSpec) domain.EnvironmentOutcome {
	label := spec.Environment.Label()
	r.logger.Debug("starting harness",
		zap.String("environment", string(spec.Environment)),
		zap.String("binary", spec.Binary),
		zap.String("harness", spec.Harness),
		zap.String("target", spec.Target),
	)

	run := r.spawn(ctx, spec)
	if err := loadError(run); err != nil {
		r.printer.PrintLoadFailure(label, strings.TrimRight(run.Stderr, "\r\n"))
		return domain.Failed(spec.Environment, err, run.Duration)
	}

	if run.ExitCode != 0 {
		r.logger.Warn("harness exited with non-zero status",
			zap.String("environment", string(spec.Environment)),
			zap.Int("exit_code", run.ExitCode),
		)
	}

	report, err := r.parser.Parse(spec.Environment, run.Stdout)
	if err != nil {
		if stderr := strings.TrimRight(run.Stderr, "\r\n"); stderr != "" {
			r.logger.Error(stderr)
		}
		r.logger.Error(label+" test report could not be parsed", zap.Error(err))
		return domain.Failed(spec.Environment, err, run.Duration)
	}

	r.printer.Print(label, report)
	if run.ExitCode != 0 {
		exitErr := &ExitStatusError{Environment: spec.Environment, ExitCode: run.ExitCode}
		return domain.ReportedWithError(spec.Environment, report, exitErr, run.Duration)
	}
	return domain.Reported(spec.Environment, report, run.Duration)
}

func (r *Runner) spawn(ctx context.Context, spec domain.EnvironmentSpec) domain.EnvironmentRun {
	args := []string{spec.Harness}
	if spec.Target != "" {
		args = append(args, spec.Target)
	}
	result, err := r.commands.Run(ctx, Command{Name: spec.Binary, Args: args, Dir: spec.Dir})
	return domain.EnvironmentRun{
		Environment: spec.Environment,
		Stdout:      result.Stdout,
		Stderr:      result.Stderr,
		ExitCode:    result.ExitCode,
		Err:         err,
		Duration:    result.Duration,
	}
}

func loadError(run domain.EnvironmentRun) error {
	if run.Err != nil {
		return &SpawnError{Environment: run.Environment, ExitCode: run.ExitCode, Stderr: run.Stderr, Err: run.Err}
	}
	if run.ExitCode != 0 && strings.TrimSpace(run.Stdout) == "" {
		return &SpawnError{Environment: run.Environment, ExitCode: run.ExitCode, Stderr: run.Stderr, Err: ErrNoOutput}
	}
	return nil
}
