package commands

import (
	"github.com/spf13/cobra"

	"dtp/internal/storage"
	"dtp/internal/ui"
)

// ReportCommand reprints the last run
type ReportCommand struct {
	storage   storage.Storage
	formatter *ui.Formatter
}

// NewReportCommand creates a new ReportCommand
func NewReportCommand(st storage.Storage, formatter *ui.Formatter) *ReportCommand {
	return &ReportCommand{storage: st, formatter: formatter}
}

// Execute runs the command
func (rc *ReportCommand) Execute(cmd *cobra.Command, args []string) error {
	summary, err := rc.storage.Load()
	if err != nil {
		return err
	}
	rc.formatter.PrintRunSummary(summary)
	return nil
}
