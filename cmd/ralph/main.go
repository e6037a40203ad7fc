// Package main is the entry point for the ralph CLI.
package main

import (
	"os"

	"github.com/ralph-loop/ralph/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
