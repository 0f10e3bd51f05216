package commands

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/evalboard/evalboard/internal/api"
	"github.com/evalboard/evalboard/internal/cli/config"
	"github.com/evalboard/evalboard/internal/ui"
)

// NewBrowseCommand creates the browse command.
func NewBrowseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse experiments in the interactive dashboard",
		Long: `Open the experiments grid in the terminal.

Rows load incrementally while scrolling. Select rows to compare or
delete them in bulk; comparison and trace links open in the browser.`,
		Example: `  # Browse the configured backend
  evalboard browse

  # Browse a different backend sorted by name
  evalboard browse --server-url http://localhost:9000 --sort-column name`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBrowse(cmd)
		},
	}

	return cmd
}

func runBrowse(cmd *cobra.Command) error {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	model := ui.NewModel(ui.Options{
		Client:    client,
		ServerURL: cfg.ServerURL,
		PageSize:  cfg.PageSize,
		Sort:      api.Sort{Column: cfg.SortColumn, Direction: cfg.SortDirection},
		NoColor:   cfg.NoColor,
		Navigate:  openBrowser,
		Logger:    logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	return nil
}
