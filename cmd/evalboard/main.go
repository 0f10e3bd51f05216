// Package main provides the EvalBoard experiment dashboard CLI.
package main

import (
	"os"

	"github.com/evalboard/evalboard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
