// Package main is the entry point for the retailsync CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/retailsync/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
