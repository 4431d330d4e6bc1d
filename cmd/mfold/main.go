// Package main is the entry point for the mfold CLI tool.
package main

import (
	"os"

	"github.com/aidanlsb/metafold/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
