package nexustools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/reprintx/code-nexus/internal/project"
)

// ─── AddRelationTool ────────────────────────────────────────────────────────

// AddRelationTool handles the add_file_relation MCP tool.
type AddRelationTool struct {
	registry *project.Registry
}

// NewAddRelationTool creates an AddRelationTool backed by the project registry.
func NewAddRelationTool(registry *project.Registry) *AddRelationTool {
	return &AddRelationTool{registry: registry}
}

// Definition returns the MCP tool definition for add_file_relation.
func (t *AddRelationTool) Definition() mcp.Tool {
	return mcp.NewTool("add_file_relation",
		mcp.WithDescription(
			"Create a directed relation between two files with a free-text "+
				"description, e.g. \"calls the user service\" or \"imports shared types\". "+
				"At most one relation per (from, to) pair.",
		),
		projectPathParam(),
		mcp.WithString("from_file",
			mcp.Required(),
			mcp.Description("Source file path, relative to the project root"),
		),
		mcp.WithString("to_file",
			mcp.Required(),
			mcp.Description("Target file path, relative to the project root"),
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("What the relation means"),
		),
	)
}

// Handle processes the add_file_relation tool call.
func (t *AddRelationTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, from, err := resolveFile(t.registry, req, "from_file")
	if err != nil {
		return errorResult(err), nil
	}
	to, err := project.ValidateFilePath(p.Root, req.GetString("to_file", ""))
	if err != nil {
		return errorResult(err), nil
	}

	description := req.GetString("description", "")
	if err := p.Relations.Add(from, to, description); err != nil {
		return errorResult(err), nil
	}
	return successResult(fmt.Sprintf("relation added: %s -> %s (%s)", from, to, description)), nil
}

// ─── RemoveRelationTool ─────────────────────────────────────────────────────

// RemoveRelationTool handles the remove_file_relation MCP tool.
type RemoveRelationTool struct {
	registry *project.Registry
}

// NewRemoveRelationTool creates a RemoveRelationTool backed by the project registry.
func NewRemoveRelationTool(registry *project.Registry) *RemoveRelationTool {
	return &RemoveRelationTool{registry: registry}
}

// Definition returns the MCP tool definition for remove_file_relation.
func (t *RemoveRelationTool) Definition() mcp.Tool {
	return mcp.NewTool("remove_file_relation",
		mcp.WithDescription("Remove the directed relation between two files."),
		projectPathParam(),
		mcp.WithString("from_file",
			mcp.Required(),
			mcp.Description("Source file path, relative to the project root"),
		),
		mcp.WithString("to_file",
			mcp.Required(),
			mcp.Description("Target file path, relative to the project root"),
		),
	)
}

// Handle processes the remove_file_relation tool call.
func (t *RemoveRelationTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, from, err := resolveFile(t.registry, req, "from_file")
	if err != nil {
		return errorResult(err), nil
	}
	to, err := project.ValidateFilePath(p.Root, req.GetString("to_file", ""))
	if err != nil {
		return errorResult(err), nil
	}

	if err := p.Relations.Remove(from, to); err != nil {
		return errorResult(err), nil
	}
	return successResult(fmt.Sprintf("relation removed: %s -> %s", from, to)), nil
}

// ─── OutgoingRelationsTool ──────────────────────────────────────────────────

// OutgoingRelationsTool handles the query_file_relations MCP tool.
type OutgoingRelationsTool struct {
	registry *project.Registry
}

// NewOutgoingRelationsTool creates an OutgoingRelationsTool backed by the project registry.
func NewOutgoingRelationsTool(registry *project.Registry) *OutgoingRelationsTool {
	return &OutgoingRelationsTool{registry: registry}
}

// Definition returns the MCP tool definition for query_file_relations.
func (t *OutgoingRelationsTool) Definition() mcp.Tool {
	return mcp.NewTool("query_file_relations",
		mcp.WithDescription("List the outgoing relations of a file."),
		projectPathParam(),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("File path, relative to the project root"),
		),
	)
}

// Handle processes the query_file_relations tool call.
func (t *OutgoingRelationsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, rel, err := resolveFile(t.registry, req, "file_path")
	if err != nil {
		return errorResult(err), nil
	}
	outgoing := p.Relations.Outgoing(rel)
	return dataResult(map[string]any{
		"file":      rel,
		"relations": outgoing,
		"total":     len(outgoing),
	}), nil
}

// ─── IncomingRelationsTool ──────────────────────────────────────────────────

// IncomingRelationsTool handles the query_incoming_relations MCP tool.
type IncomingRelationsTool struct {
	registry *project.Registry
}

// NewIncomingRelationsTool creates an IncomingRelationsTool backed by the project registry.
func NewIncomingRelationsTool(registry *project.Registry) *IncomingRelationsTool {
	return &IncomingRelationsTool{registry: registry}
}

// Definition returns the MCP tool definition for query_incoming_relations.
func (t *IncomingRelationsTool) Definition() mcp.Tool {
	return mcp.NewTool("query_incoming_relations",
		mcp.WithDescription(
			"List the incoming relations of a file: which files point at it, "+
				"answered from the reverse index without scanning.",
		),
		projectPathParam(),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("File path, relative to the project root"),
		),
	)
}

// Handle processes the query_incoming_relations tool call.
func (t *IncomingRelationsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, rel, err := resolveFile(t.registry, req, "file_path")
	if err != nil {
		return errorResult(err), nil
	}
	incoming := p.Relations.Incoming(rel)
	return dataResult(map[string]any{
		"file":      rel,
		"relations": incoming,
		"total":     len(incoming),
	}), nil
}

// ─── RelationsByDescriptionTool ─────────────────────────────────────────────

// RelationsByDescriptionTool handles the query_relations_by_description MCP tool.
type RelationsByDescriptionTool struct {
	registry *project.Registry
}

// NewRelationsByDescriptionTool creates a RelationsByDescriptionTool backed by the project registry.
func NewRelationsByDescriptionTool(registry *project.Registry) *RelationsByDescriptionTool {
	return &RelationsByDescriptionTool{registry: registry}
}

// Definition returns the MCP tool definition for query_relations_by_description.
func (t *RelationsByDescriptionTool) Definition() mcp.Tool {
	return mcp.NewTool("query_relations_by_description",
		mcp.WithDescription(
			"Find relations whose description contains a keyword (case-insensitive).",
		),
		projectPathParam(),
		mcp.WithString("keyword",
			mcp.Required(),
			mcp.Description("Substring to look for in relation descriptions"),
		),
	)
}

// Handle processes the query_relations_by_description tool call.
func (t *RelationsByDescriptionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := resolveProject(t.registry, req)
	if err != nil {
		return errorResult(err), nil
	}

	keyword := req.GetString("keyword", "")
	if keyword == "" {
		return mcp.NewToolResultError("'keyword' is required"), nil
	}

	matches := p.Relations.QueryByDescription(keyword)
	return dataResult(map[string]any{
		"keyword": keyword,
		"matches": matches,
		"total":   len(matches),
	}), nil
}

// ─── RelationGraphTool ──────────────────────────────────────────────────────

// RelationGraphTool handles the get_relation_graph MCP tool.
type RelationGraphTool struct {
	registry     *project.Registry
	defaultDepth int
}

// NewRelationGraphTool creates a RelationGraphTool. defaultDepth is used
// when a call omits max_depth.
func NewRelationGraphTool(registry *project.Registry, defaultDepth int) *RelationGraphTool {
	return &RelationGraphTool{registry: registry, defaultDepth: defaultDepth}
}

// Definition returns the MCP tool definition for get_relation_graph.
func (t *RelationGraphTool) Definition() mcp.Tool {
	return mcp.NewTool("get_relation_graph",
		mcp.WithDescription(
			"Walk outgoing relations from a file up to max_depth hops and "+
				"return the reachable subgraph. Cycles are followed once.",
		),
		projectPathParam(),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Root file path, relative to the project root"),
		),
		mcp.WithNumber("max_depth",
			mcp.Description("Maximum traversal depth (default from server config)"),
		),
	)
}

// Handle processes the get_relation_graph tool call.
func (t *RelationGraphTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, rel, err := resolveFile(t.registry, req, "file_path")
	if err != nil {
		return errorResult(err), nil
	}

	maxDepth := intArg(req, "max_depth", t.defaultDepth)
	if maxDepth < 1 {
		return mcp.NewToolResultError("'max_depth' must be at least 1"), nil
	}

	graph := p.Relations.Graph(rel, maxDepth)
	return dataResult(map[string]any{
		"root":      rel,
		"max_depth": maxDepth,
		"graph":     graph,
	}), nil
}

// ─── CleanupRelationsTool ───────────────────────────────────────────────────

// CleanupRelationsTool handles the cleanup_invalid_relations MCP tool.
type CleanupRelationsTool struct {
	registry *project.Registry
}

// NewCleanupRelationsTool creates a CleanupRelationsTool backed by the project registry.
func NewCleanupRelationsTool(registry *project.Registry) *CleanupRelationsTool {
	return &CleanupRelationsTool{registry: registry}
}

// Definition returns the MCP tool definition for cleanup_invalid_relations.
func (t *CleanupRelationsTool) Definition() mcp.Tool {
	return mcp.NewTool("cleanup_invalid_relations",
		mcp.WithDescription(
			"Remove relations whose source or target file no longer exists on disk.",
		),
		projectPathParam(),
	)
}

// Handle processes the cleanup_invalid_relations tool call.
func (t *CleanupRelationsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := resolveProject(t.registry, req)
	if err != nil {
		return errorResult(err), nil
	}

	removed, err := p.Relations.CleanupInvalid(p.FileExists)
	if err != nil {
		return errorResult(err), nil
	}
	return dataResult(map[string]any{
		"removed_relations": removed,
	}), nil
}
