package commands

import (
	"github.com/spf13/cobra"

	"dtp/internal/config"
	"dtp/internal/discovery"
	"dtp/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	resolver  *discovery.Resolver
	formatter *ui.Formatter
}

// NewListCommand creates a new ListCommand
func NewListCommand(cfg *config.Config, resolver *discovery.Resolver, formatter *ui.Formatter) *ListCommand {
	return &ListCommand{
		config:    cfg,
		resolver:  resolver,
		formatter: formatter,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	lc.formatter.PrintEnvironments(lc.resolver.Resolve(lc.config.EnvironmentSpecs()))
	return nil
}
