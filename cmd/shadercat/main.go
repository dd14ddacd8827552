// Package main provides the CLI for the shadercat shader catalog.
package main

import (
	"os"

	"github.com/leapstack-labs/shadercat/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
