package main

import (
	"github.com/spf13/cobra"

	"github.com/reprintx/code-nexus/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "codenexus",
	Short: "CodeNexus - code metadata MCP server",
	Long: `CodeNexus is an MCP server that attaches structured metadata to files
in a project without modifying them: type:value tags with boolean queries,
descriptive comments, and directed relations between files. Metadata lives
per project under its .codenexus/ directory.`,
	Version: server.Version,
}

func init() {
	rootCmd.SetVersionTemplate("codenexus version {{.Version}}\n")
}
