package execution

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"dtp/internal/domain"
	"dtp/internal/parser"
	"dtp/internal/ui"
)

const (
	passingReport = `{"total":3,"passed":3,"failed":0,"runtime":12,"failures":[]}`
	failingReport = `{"total":5,"passed":3,"failed":2,"runtime":40,"failures":[` +
		`{"name":"collapse whitespace","source":"at tests/minifier.js:10","actual":"a  b","expected":"a b"},` +
		`{"name":"remove comments","message":"html comments","source":"at tests/minifier.js:20","actual":"<!-- x -->","expected":""}]}`
)

type scriptedCommand struct {
	result CommandResult
	err    error
	wait   <-chan struct{} // Blocks Run until closed when set
}

// recordingCommandRunner answers each command by its first argument (the harness)
type recordingCommandRunner struct {
	mu       sync.Mutex
	scripts  map[string]scriptedCommand
	recorded []Command
}

func newRecordingCommandRunner(scripts map[string]scriptedCommand) *recordingCommandRunner {
	return &recordingCommandRunner{scripts: scripts}
}

func (r *recordingCommandRunner) Run(ctx context.Context, cmd Command) (CommandResult, error) {
	r.mu.Lock()
	r.recorded = append(r.recorded, cmd)
	script := r.scripts[cmd.Args[0]]
	r.mu.Unlock()

	if script.wait != nil {
		select {
		case <-script.wait:
		case <-ctx.Done():
			return CommandResult{ExitCode: -1}, ctx.Err()
		}
	}
	return script.result, script.err
}

func (r *recordingCommandRunner) commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command(nil), r.recorded...)
}

func newObservedRunner(commands CommandRunner) (*Runner, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	return NewRunner(commands, parser.NewReportParser(logger), ui.NewPrinter(logger), logger), logs
}

func headlessSpec() domain.EnvironmentSpec {
	return domain.EnvironmentSpec{
		Environment: domain.EnvironmentHeadless,
		Binary:      "node",
		Harness:     "test.js",
		Target:      "./tests/minifier",
		Dir:         "/project",
	}
}

func browserSpec() domain.EnvironmentSpec {
	return domain.EnvironmentSpec{
		Environment: domain.EnvironmentBrowser,
		Binary:      "node",
		Harness:     "test-chrome.js",
		Target:      "tests/index.html",
		Dir:         "/project",
	}
}
