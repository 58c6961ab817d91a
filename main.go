// Package main is the entry point for the hydroflow simulation engine CLI.
package main

import (
	"fmt"
	"os"

	"hydroflow.dev/engine/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
