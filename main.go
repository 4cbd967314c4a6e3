// Package main is the entry point for the WhiteKnight threat investigation platform.
package main

import (
	"fmt"
	"os"

	"whiteknight/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
