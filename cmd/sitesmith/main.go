// Package main provides the entry point for the SiteSmith CLI.
package main

import (
	"fmt"
	"os"

	"github.com/sitesmith-ai/sitesmith/cmd/sitesmith/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
