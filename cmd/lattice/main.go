// Package main provides the lattice CLI, a thin front end over the store
// engine for inspecting and mutating records from the shell.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
