package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dtp/internal/cli"
	"dtp/internal/config"
	"dtp/internal/discovery"
	"dtp/internal/execution"
	"dtp/internal/logging"
	"dtp/internal/parser"
	"dtp/internal/storage"
	"dtp/internal/ui"
)

// Commands holds all CLI commands
type Commands struct {
	flags  *cli.Flags
	cfg    *config.Config
	logger *zap.Logger

	Run    *RunCommand
	List   *ListCommand
	Report *ReportCommand
	Faills *FaillsCommand
}

// NewCommands creates the command set; dependencies are wired once flags are parsed
func NewCommands(flags *cli.Flags) *Commands {
	return &Commands{flags: flags, logger: zap.NewNop()}
}

// prepare loads the configuration and wires every command's dependencies
func (c *Commands) prepare(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.flags.ToConfigFlags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logger

	commandRunner := execution.NewExecRunner()
	reportParser := parser.NewReportParser(logger)
	printer := ui.NewPrinter(logger)
	runner := execution.NewRunner(commandRunner, reportParser, printer, logger)
	coordinator := execution.NewCoordinator(runner, logger, cfg.Timeout)
	resolver := discovery.NewResolver()
	jsonStorage := storage.NewJSONStorage(cfg)
	formatter := ui.NewFormatter()
	errorViewer := ui.NewErrorViewer(jsonStorage)

	c.Run = NewRunCommand(cfg, logger, commandRunner, coordinator, resolver, jsonStorage, formatter, errorViewer)
	c.List = NewListCommand(cfg, resolver, formatter)
	c.Report = NewReportCommand(jsonStorage, formatter)
	c.Faills = NewFaillsCommand(jsonStorage, errorViewer)
	return nil
}

// Sync flushes the log sink
func (c *Commands) Sync() {
	_ = c.logger.Sync()
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command) {
	flags := c.flags
	rootCmd.PersistentPreRunE = c.prepare
	rootCmd.PersistentFlags().StringVar(&flags.ProjectPath, "project", config.DefaultProjectPath, "Project directory holding the harnesses, .env and dtp.yaml")
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	// Run command
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the test suite in every environment",
		Long:  "Run prerequisite steps, then run the test suite in the headless and browser environments concurrently and combine their results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run.Execute(cmd, args)
		},
	}
	runCmd.Flags().StringVar(&flags.HeadlessTarget, "headless-target", "", "Test path handed to the headless harness")
	runCmd.Flags().StringVar(&flags.BrowserTarget, "browser-target", "", "Test path handed to the browser harness")
	runCmd.Flags().StringVar(&flags.Binary, "binary", "", "Runtime binary used to start every harness")
	runCmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "Stop waiting for the harnesses after this long (0 waits forever)")
	runCmd.Flags().BoolVar(&flags.SkipPrerequisites, "skip-prerequisites", false, "Run only the tests, not the configured build steps")
	runCmd.Flags().BoolVar(&flags.Progress, "progress", false, "Show a progress bar while environments run")
	runCmd.Flags().BoolVar(&flags.OpenFaills, "open-faills", false, "Open the faills viewer when the run finishes with failures")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List configured environments",
		Long:  "Show every environment with its binary, harness and target and whether they exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.List.Execute(cmd, args)
		},
	}
	listCmd.Flags().StringVar(&flags.HeadlessTarget, "headless-target", "", "Test path handed to the headless harness")
	listCmd.Flags().StringVar(&flags.BrowserTarget, "browser-target", "", "Test path handed to the browser harness")
	listCmd.Flags().StringVar(&flags.Binary, "binary", "", "Runtime binary used to start every harness")
	rootCmd.AddCommand(listCmd)

	// Report command
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Print the results of the last run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Report.Execute(cmd, args)
		},
	}
	rootCmd.AddCommand(reportCmd)

	// Faills command
	faillsCmd := &cobra.Command{
		Use:   "faills",
		Short: "View test failures interactively",
		Long:  "Display test failures from the last run in an interactive viewer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Faills.Execute(cmd, args)
		},
	}
	rootCmd.AddCommand(faillsCmd)
}
