package config

import (
	"fmt"
	"net/url"
	"slices"
)

var (
	validSortColumns    = []string{"createdAt", "name"}
	validSortDirections = []string{"asc", "desc"}
	validOutputFormats  = []string{"auto", "table", "json", "csv", "markdown"}
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid server_url %q: must be an absolute http(s) URL", c.ServerURL)
	}

	if c.PageSize < 1 || c.PageSize > 500 {
		return fmt.Errorf("page_size must be between 1 and 500, got %d", c.PageSize)
	}

	if !slices.Contains(validSortColumns, c.SortColumn) {
		return fmt.Errorf("unsupported sort_column %q (available: %v)", c.SortColumn, validSortColumns)
	}
	if !slices.Contains(validSortDirections, c.SortDirection) {
		return fmt.Errorf("unsupported sort_direction %q (available: %v)", c.SortDirection, validSortDirections)
	}

	if !slices.Contains(validOutputFormats, c.OutputFormat) {
		return fmt.Errorf("unsupported output format %q (available: %v)", c.OutputFormat, validOutputFormats)
	}

	if c.Serve.Port < 1 || c.Serve.Port > 65535 {
		return fmt.Errorf("serve.port must be between 1 and 65535, got %d", c.Serve.Port)
	}

	return nil
}
