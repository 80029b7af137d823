// CodeNexus: code metadata MCP server.
//
// A universal MCP server that lets AI coding tools attach structured
// metadata to files in a project: tags, comments, and directed relations,
// all stored per project under .codenexus/ without touching the files.
//
// Usage:
//
//	codenexus serve    # Start MCP server (stdio transport)
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
