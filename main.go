// Package main is the entry point for the Argus streaming server and viewer.
package main

import (
	"fmt"
	"os"

	"github.com/argusview/argus/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
