package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"dtp/internal/config"
	"dtp/internal/domain"
	"dtp/internal/execution"
)

// ErrTestsFailed is returned when the sequence ran to completion but the tests did not pass
var ErrTestsFailed = errors.New("tests failed")

// StepFailedError reports a prerequisite step that did not succeed
type StepFailedError struct {
	Step     string
	ExitCode int
	Err      error
}

func (e *StepFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("step %q exited with code %d", e.Step, e.ExitCode)
}

func (e *StepFailedError) Unwrap() error {
	return e.Err
}

// Task is one unit of the sequence; false or an error stops the sequence
type Task interface {
	Name() string
	Run(ctx context.Context) (bool, error)
}

// Sequencer runs tasks in order and stops at the first one that does not succeed
type Sequencer struct {
	tasks  []Task
	logger *zap.Logger
}

// NewSequencer creates a new Sequencer
func NewSequencer(logger *zap.Logger, tasks ...Task) *Sequencer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sequencer{tasks: tasks, logger: logger}
}

// Run executes every task and returns the overall outcome
func (s *Sequencer) Run(ctx context.Context) (bool, error) {
	for _, task := range s.tasks {
		s.logger.Info(fmt.Sprintf("Running %q task", task.Name()))
		ok, err := task.Run(ctx)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// CommandTask runs a configured external build step
type CommandTask struct {
	step     config.StepConfig
	dir      string
	commands execution.CommandRunner
	logger   *zap.Logger
}

// NewCommandTask creates a task running step in dir
func NewCommandTask(step config.StepConfig, dir string, commands execution.CommandRunner, logger *zap.Logger) *CommandTask {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandTask{step: step, dir: dir, commands: commands, logger: logger}
}

// Name returns the step name, falling back to its command
func (t *CommandTask) Name() string {
	if t.step.Name != "" {
		return t.step.Name
	}
	return t.step.Command
}

// Run executes the step and forwards its output to the log sink
func (t *CommandTask) Run(ctx context.Context) (bool, error) {
	result, err := t.commands.Run(ctx, execution.Command{Name: t.step.Command, Args: t.step.Args, Dir: t.dir})
	if out := strings.TrimRight(result.Stdout, "\r\n"); out != "" {
		t.logger.Info(out, zap.String("step", t.Name()))
	}
	if err != nil || result.ExitCode != 0 {
		if stderr := strings.TrimRight(result.Stderr, "\r\n"); stderr != "" {
			t.logger.Error(stderr, zap.String("step", t.Name()))
		}
		return false, &StepFailedError{Step: t.Name(), ExitCode: result.ExitCode, Err: err}
	}
	t.logger.Debug("step completed", zap.String("step", t.Name()), zap.Duration("duration", result.Duration))
	return true, nil
}

// Coordinator runs the test environments
type Coordinator interface {
	Coordinate(ctx context.Context, specs []domain.EnvironmentSpec) execution.Result
}

// TestTask runs every environment and reduces them to one verdict
type TestTask struct {
	coordinator Coordinator
	specs       []domain.EnvironmentSpec
	onResult    func(execution.Result) error
}

// NewTestTask creates the test task. onResult, when set, sees the result before the verdict is returned.
func NewTestTask(coordinator Coordinator, specs []domain.EnvironmentSpec, onResult func(execution.Result) error) *TestTask {
	return &TestTask{coordinator: coordinator, specs: specs, onResult: onResult}
}

// Name returns the task name
func (t *TestTask) Name() string {
	return "qunit"
}

// Run coordinates all environments
func (t *TestTask) Run(ctx context.Context) (bool, error) {
	start := time.Now()
	result := t.coordinator.Coordinate(ctx, t.specs)
	if result.Duration == 0 {
		result.Duration = time.Since(start)
	}
	if t.onResult != nil {
		if err := t.onResult(result); err != nil {
			return false, err
		}
	}
	return result.Passed(), nil
}
