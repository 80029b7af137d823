// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it builds the project registry, creates
// every tool handler, and registers them. No business logic lives here,
// only wiring.
package server

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/reprintx/code-nexus/internal/config"
	"github.com/reprintx/code-nexus/internal/nexustools"
	"github.com/reprintx/code-nexus/internal/project"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools registered.
//
// The returned cleanup function closes every open project (flushing the
// comment databases) and must be called on shutdown, typically via defer.
func New(cfg config.Config) (*server.MCPServer, func(), error) {
	registry := project.NewRegistry(cfg.DataDirName)

	s := server.NewMCPServer(
		"codenexus",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Tag tools ---

	addTags := nexustools.NewAddTagsTool(registry)
	s.AddTool(addTags.Definition(), addTags.Handle)

	removeTags := nexustools.NewRemoveTagsTool(registry)
	s.AddTool(removeTags.Definition(), removeTags.Handle)

	getFileTags := nexustools.NewGetFileTagsTool(registry)
	s.AddTool(getFileTags.Definition(), getFileTags.Handle)

	getAllTags := nexustools.NewGetAllTagsTool(registry)
	s.AddTool(getAllTags.Definition(), getAllTags.Handle)

	queryFiles := nexustools.NewQueryFilesTool(registry)
	s.AddTool(queryFiles.Definition(), queryFiles.Handle)

	// --- Comment tools ---

	addComment := nexustools.NewAddCommentTool(registry)
	s.AddTool(addComment.Definition(), addComment.Handle)

	updateComment := nexustools.NewUpdateCommentTool(registry)
	s.AddTool(updateComment.Definition(), updateComment.Handle)

	deleteComment := nexustools.NewDeleteCommentTool(registry)
	s.AddTool(deleteComment.Definition(), deleteComment.Handle)

	// --- Relation tools ---

	addRelation := nexustools.NewAddRelationTool(registry)
	s.AddTool(addRelation.Definition(), addRelation.Handle)

	removeRelation := nexustools.NewRemoveRelationTool(registry)
	s.AddTool(removeRelation.Definition(), removeRelation.Handle)

	outgoing := nexustools.NewOutgoingRelationsTool(registry)
	s.AddTool(outgoing.Definition(), outgoing.Handle)

	incoming := nexustools.NewIncomingRelationsTool(registry)
	s.AddTool(incoming.Definition(), incoming.Handle)

	byDescription := nexustools.NewRelationsByDescriptionTool(registry)
	s.AddTool(byDescription.Definition(), byDescription.Handle)

	graph := nexustools.NewRelationGraphTool(registry, cfg.DefaultGraphDepth)
	s.AddTool(graph.Definition(), graph.Handle)

	cleanupRelations := nexustools.NewCleanupRelationsTool(registry)
	s.AddTool(cleanupRelations.Definition(), cleanupRelations.Handle)

	// --- Composite tools ---

	fileInfo := nexustools.NewFileInfoTool(registry)
	s.AddTool(fileInfo.Definition(), fileInfo.Handle)

	status := nexustools.NewSystemStatusTool(registry)
	s.AddTool(status.Definition(), status.Handle)

	search := nexustools.NewSearchFilesTool(registry, cfg.MaxSearchResults)
	s.AddTool(search.Definition(), search.Handle)

	cleanupProject := nexustools.NewCleanupProjectTool(registry)
	s.AddTool(cleanupProject.Definition(), cleanupProject.Handle)

	return s, registry.Close, nil
}

// serverInstructions returns the system instructions that tell the AI
// how to use CodeNexus effectively.
func serverInstructions() string {
	return `You have access to CodeNexus, a code metadata MCP server.

CodeNexus attaches structured metadata to files in a project without
modifying the files themselves: tags, descriptive comments, and directed
relations between files. Every tool takes a project_path (the absolute
path of the project root); metadata is stored per project under its
.codenexus/ directory.

## Tags
- Tags use type:value format, e.g. category:api, layer:backend, status:stable
- add_file_tags / remove_file_tags manage a file's tags
- get_all_tags shows the vocabulary already in use; prefer reusing existing
  tag types over inventing near-duplicates
- query_files_by_tags finds files with boolean expressions:
  AND, OR, NOT, parentheses and * wildcards, e.g.
  "category:api AND (layer:backend OR layer:shared) AND NOT status:deprecated"

## Comments
- One comment per file; add_file_comment fails if a comment exists,
  update_file_comment replaces it
- Use comments for what a file is FOR, not what it contains

## Relations
- add_file_relation creates a directed edge with a free-text description,
  e.g. "calls the user service" or "imports shared types"
- query_file_relations lists outgoing edges, query_incoming_relations
  lists files pointing at a file
- get_relation_graph walks outgoing edges up to max_depth hops
- query_relations_by_description searches descriptions by keyword

## Workflow suggestions
- When exploring an unfamiliar codebase, start with get_system_status and
  get_all_tags to see what metadata already exists
- get_file_info returns everything about one file in a single call
- search_files does a keyword search over comments and relation descriptions
- After files are deleted or moved, run cleanup_project_metadata to drop
  stale relations and comments`
}
