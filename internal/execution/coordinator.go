package execution

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"dtp/internal/domain"
	"dtp/internal/ui"
)

// EnvironmentRunner runs one environment to completion
type EnvironmentRunner interface {
	Run(ctx context.Context, spec domain.EnvironmentSpec) domain.EnvironmentOutcome
}

// Result is the combined outcome of every environment of one run
type Result struct {
	Outcomes []domain.EnvironmentOutcome // In the order the environments were given
	Duration time.Duration
}

// Passed is true iff every environment reported zero failures
func (r Result) Passed() bool {
	if len(r.Outcomes) == 0 {
		return false
	}
	for _, o := range r.Outcomes {
		if !o.Passed() {
			return false
		}
	}
	return true
}

// Coordinator runs all environments concurrently and waits for every one of them
type Coordinator struct {
	runner   EnvironmentRunner
	logger   *zap.Logger
	timeout  time.Duration
	progress *ui.ProgressBar
}

// NewCoordinator creates a new Coordinator. A zero timeout waits indefinitely.
func NewCoordinator(runner EnvironmentRunner, logger *zap.Logger, timeout time.Duration) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		runner:  runner,
		logger:  logger,
		timeout: timeout,
	}
}

// SetProgress sets the progress bar updated as environments complete
func (c *Coordinator) SetProgress(progress *ui.ProgressBar) {
	c.progress = progress
}

type indexedOutcome struct {
	index   int
	outcome domain.EnvironmentOutcome
}

// Coordinate starts one runner per spec and returns once all of them have
// completed. A failing environment never cancels the others.
func (c *Coordinator) Coordinate(ctx context.Context, specs []domain.EnvironmentSpec) Result {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	results := make(chan indexedOutcome, len(specs))
	startTime := time.Now()

	var wg sync.WaitGroup
	for i, spec := range specs {
		wg.Add(1)
		go func(index int, spec domain.EnvironmentSpec) {
			defer wg.Done()
			results <- indexedOutcome{index: index, outcome: c.runner.Run(ctx, spec)}
		}(i, spec)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]domain.EnvironmentOutcome, len(specs))
	for result := range results {
		outcomes[result.index] = result.outcome
		if c.progress != nil {
			c.progress.Complete(result.outcome)
		}
		c.logger.Debug("environment completed",
			zap.String("environment", string(result.outcome.Environment)),
			zap.Bool("passed", result.outcome.Passed()),
			zap.Duration("duration", result.outcome.Duration),
		)
	}
	if c.progress != nil {
		c.progress.Finish()
	}

	return Result{Outcomes: outcomes, Duration: time.Since(startTime)}
}
