package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/evalboard/evalboard/internal/cli/config"
	"github.com/evalboard/evalboard/internal/server"
	"github.com/evalboard/evalboard/internal/store"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port  int
	State string
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the fixture backend server",
		Long: `Start a local HTTP server backing the dashboard grid.

The server persists experiments in SQLite and exposes the
cursor-paginated listing, annotation ranges, bulk delete, and export
endpoints.`,
		Example: `  # Start on the default port
  evalboard serve

  # Start on a custom port with a custom database
  evalboard serve --port 9000 --state ./fixtures.db`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().StringVar(&opts.State, "state", "", "Path to the experiments database")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	port := cfg.Serve.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	statePath := cfg.Serve.StatePath
	if opts.State != "" {
		statePath = opts.State
	}

	if err := ensureStateDir(statePath); err != nil {
		return err
	}

	st := store.NewSQLiteStore()
	if err := st.Open(statePath); err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	defer func() { _ = st.Close() }()

	if err := st.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate state database: %w", err)
	}

	srv := server.NewServer(server.Config{
		Store:  st,
		Port:   port,
		Logger: logger,
	})

	fmt.Printf("Starting API server on http://localhost:%d\n", port)
	fmt.Println("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Serve(ctx)
}
