// Package main is the entry point for the tontrade bot.
package main

import (
	"os"

	"github.com/tontrade/tontrade/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
