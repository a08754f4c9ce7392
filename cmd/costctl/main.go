// Package main is the entry point of costctl, the operator CLI for the cost calculator.
package main

import (
	"os"

	"github.com/ethan-stone/charging-session-cost-calculation/cmd/costctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
