package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evalboard/evalboard/internal/api"
	"github.com/evalboard/evalboard/internal/cli/config"
)

// ListOptions holds options for the list command.
type ListOptions struct {
	Limit int
	All   bool
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List experiments from the backend",
		Long: `List experiments with their run counts, metrics, and annotation scores.

Output adapts to environment:
  - Terminal: styled table
  - Piped/Scripted: markdown format (agent-friendly)

Use --output to override: auto, table, json, csv, markdown`,
		Example: `  # List the first page of experiments
  evalboard list

  # List every experiment as JSON
  evalboard list --all --output json

  # List 20 experiments sorted by name
  evalboard list --limit 20 --sort-column name --sort-direction asc`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum experiments to list (default: one page)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Follow cursors until every experiment is listed")

	return cmd
}

func runList(cmd *cobra.Command, opts *ListOptions) error {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = cfg.PageSize
	}

	experiments, err := fetchExperiments(cmd, client, cfg, limit, opts.All)
	if err != nil {
		return err
	}
	logger.Debug("fetched experiments", "count", len(experiments))

	return renderExperiments(cmd.OutOrStdout(), experiments, cfg)
}

// fetchExperiments follows cursors until the limit is reached or, with
// all set, until the backend reports no further pages.
func fetchExperiments(cmd *cobra.Command, client api.Client, cfg *config.Config, limit int, all bool) ([]api.Experiment, error) {
	sort := api.Sort{Column: cfg.SortColumn, Direction: cfg.SortDirection}

	var experiments []api.Experiment
	var after *string
	for {
		first := cfg.PageSize
		if !all && limit-len(experiments) < first {
			first = limit - len(experiments)
		}

		conn, err := client.ListExperiments(cmd.Context(), api.ListRequest{
			After: after,
			First: first,
			Sort:  sort,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch experiments: %w", err)
		}

		for _, edge := range conn.Edges {
			experiments = append(experiments, edge.Node)
		}

		if !conn.PageInfo.HasNextPage || (!all && len(experiments) >= limit) {
			return experiments, nil
		}
		after = conn.PageInfo.EndCursor
	}
}
