// Package main provides the entry point for the sharekeeper CLI application.
package main

import (
	"os"

	"sharekeeper/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
