package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dtp/internal/config"
	"dtp/internal/discovery"
	"dtp/internal/domain"
	"dtp/internal/execution"
	"dtp/internal/storage"
	"dtp/internal/tasks"
	"dtp/internal/ui"
)

// RunCommand handles the run command
type RunCommand struct {
	config      *config.Config
	logger      *zap.Logger
	commands    execution.CommandRunner
	coordinator *execution.Coordinator
	resolver    *discovery.Resolver
	storage     storage.Storage
	formatter   *ui.Formatter
	viewer      ui.Viewer
	openHistory func(ctx context.Context, dsn string) (storage.History, error)
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	logger *zap.Logger,
	commands execution.CommandRunner,
	coordinator *execution.Coordinator,
	resolver *discovery.Resolver,
	st storage.Storage,
	formatter *ui.Formatter,
	viewer ui.Viewer,
) *RunCommand {
	return &RunCommand{
		config:      cfg,
		logger:      logger,
		commands:    commands,
		coordinator: coordinator,
		resolver:    resolver,
		storage:     st,
		formatter:   formatter,
		viewer:      viewer,
		openHistory: func(ctx context.Context, dsn string) (storage.History, error) {
			return storage.OpenSQLHistory(ctx, dsn)
		},
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	specs := rc.config.EnvironmentSpecs()
	for _, r := range rc.resolver.Resolve(specs) {
		if r.Missing() {
			rc.logger.Warn("environment is missing files, it will likely fail to load",
				zap.String("environment", string(r.Spec.Environment)),
				zap.String("binary", r.Spec.Binary),
				zap.String("harness", r.HarnessPath),
				zap.String("target", r.TargetPath),
			)
		}
	}

	if rc.config.Flags.Progress {
		rc.coordinator.SetProgress(ui.NewProgressBar(len(specs)))
	}

	var summary *domain.RunSummary
	testTask := tasks.NewTestTask(rc.coordinator, specs, func(result execution.Result) error {
		saved, err := rc.storage.Save(result.Outcomes, result.Duration)
		if err != nil {
			return fmt.Errorf("failed to save test results: %w", err)
		}
		summary = saved
		rc.formatter.PrintRunSummary(saved)
		rc.recordHistory(ctx, saved)
		return nil
	})

	var steps []tasks.Task
	if !rc.config.Flags.SkipPrerequisites {
		for _, step := range rc.config.Prerequisites {
			steps = append(steps, tasks.NewCommandTask(step, rc.config.GetProjectDir(), rc.commands, rc.logger))
		}
	}
	steps = append(steps, testTask)

	ok, err := tasks.NewSequencer(rc.logger, steps...).Run(ctx)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	if rc.config.Flags.OpenFaills && summary != nil && len(summary.AllFailures()) > 0 {
		if err := rc.viewer.View(summary); err != nil {
			return err
		}
	}
	return tasks.ErrTestsFailed
}

// recordHistory appends the run to the optional history store; failures there never fail the run
func (rc *RunCommand) recordHistory(ctx context.Context, summary *domain.RunSummary) {
	if rc.config.HistoryDSN == "" {
		return
	}
	history, err := rc.openHistory(ctx, rc.config.HistoryDSN)
	if err != nil {
		rc.logger.Warn("run history unavailable", zap.Error(err))
		return
	}
	defer history.Close()
	if err := history.Record(ctx, summary); err != nil {
		rc.logger.Warn("failed to record run history", zap.Error(err))
	}
}
