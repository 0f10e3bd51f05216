// Package commands implements the EvalBoard CLI subcommands.
package commands

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/evalboard/evalboard/internal/api"
	"github.com/evalboard/evalboard/internal/cli/config"
)

// getConfig returns the loaded configuration, falling back to defaults
// when a command runs outside the normal root command flow (tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		ServerURL:     config.DefaultServerURL,
		PageSize:      config.DefaultPageSize,
		SortColumn:    config.DefaultSortColumn,
		SortDirection: config.DefaultSortDirection,
		OutputFormat:  config.DefaultOutput,
		Serve: config.ServeConfig{
			Port:      config.DefaultServePort,
			StatePath: config.DefaultStateFile,
		},
	}
}

// newClient builds an API client for the configured backend.
func newClient(cfg *config.Config) (*api.HTTPClient, error) {
	client, err := api.NewHTTPClient(cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}
	return client, nil
}

// ensureStateDir creates the directory holding the state database.
func ensureStateDir(statePath string) error {
	dir := filepath.Dir(statePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	return nil
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
