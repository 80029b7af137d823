package nexustools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/reprintx/code-nexus/internal/project"
)

// ─── AddTagsTool ────────────────────────────────────────────────────────────

// AddTagsTool handles the add_file_tags MCP tool.
type AddTagsTool struct {
	registry *project.Registry
}

// NewAddTagsTool creates an AddTagsTool backed by the project registry.
func NewAddTagsTool(registry *project.Registry) *AddTagsTool {
	return &AddTagsTool{registry: registry}
}

// Definition returns the MCP tool definition for add_file_tags.
func (t *AddTagsTool) Definition() mcp.Tool {
	return mcp.NewTool("add_file_tags",
		mcp.WithDescription(
			"Add tags to a file. Tags use type:value format, e.g. category:api, "+
				"layer:backend, status:stable. Already-present tags are skipped.",
		),
		projectPathParam(),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("File path, relative to the project root"),
		),
		mcp.WithArray("tags",
			mcp.Required(),
			mcp.Description("Tags to add, each in type:value format"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
}

// Handle processes the add_file_tags tool call.
func (t *AddTagsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, rel, err := resolveFile(t.registry, req, "file_path")
	if err != nil {
		return errorResult(err), nil
	}

	tagList := stringSliceArg(req, "tags")
	if len(tagList) == 0 {
		return mcp.NewToolResultError("'tags' is required and must not be empty"), nil
	}

	added, err := p.Tags.AddTags(rel, tagList)
	if err != nil {
		return errorResult(err), nil
	}
	return dataResult(map[string]any{
		"file":       rel,
		"added_tags": added,
		"all_tags":   p.Tags.FileTags(rel),
	}), nil
}

// ─── RemoveTagsTool ─────────────────────────────────────────────────────────

// RemoveTagsTool handles the remove_file_tags MCP tool.
type RemoveTagsTool struct {
	registry *project.Registry
}

// NewRemoveTagsTool creates a RemoveTagsTool backed by the project registry.
func NewRemoveTagsTool(registry *project.Registry) *RemoveTagsTool {
	return &RemoveTagsTool{registry: registry}
}

// Definition returns the MCP tool definition for remove_file_tags.
func (t *RemoveTagsTool) Definition() mcp.Tool {
	return mcp.NewTool("remove_file_tags",
		mcp.WithDescription(
			"Remove tags from a file. All named tags must currently be present; "+
				"otherwise nothing is removed and the missing tag is reported.",
		),
		projectPathParam(),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("File path, relative to the project root"),
		),
		mcp.WithArray("tags",
			mcp.Required(),
			mcp.Description("Tags to remove, each in type:value format"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
}

// Handle processes the remove_file_tags tool call.
func (t *RemoveTagsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, rel, err := resolveFile(t.registry, req, "file_path")
	if err != nil {
		return errorResult(err), nil
	}

	tagList := stringSliceArg(req, "tags")
	if len(tagList) == 0 {
		return mcp.NewToolResultError("'tags' is required and must not be empty"), nil
	}

	removed, err := p.Tags.RemoveTags(rel, tagList)
	if err != nil {
		return errorResult(err), nil
	}
	return dataResult(map[string]any{
		"file":           rel,
		"removed_tags":   removed,
		"remaining_tags": p.Tags.FileTags(rel),
	}), nil
}

// ─── GetFileTagsTool ────────────────────────────────────────────────────────

// GetFileTagsTool handles the get_file_tags MCP tool.
type GetFileTagsTool struct {
	registry *project.Registry
}

// NewGetFileTagsTool creates a GetFileTagsTool backed by the project registry.
func NewGetFileTagsTool(registry *project.Registry) *GetFileTagsTool {
	return &GetFileTagsTool{registry: registry}
}

// Definition returns the MCP tool definition for get_file_tags.
func (t *GetFileTagsTool) Definition() mcp.Tool {
	return mcp.NewTool("get_file_tags",
		mcp.WithDescription("Get all tags of a file, sorted."),
		projectPathParam(),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("File path, relative to the project root"),
		),
	)
}

// Handle processes the get_file_tags tool call.
func (t *GetFileTagsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, rel, err := resolveFile(t.registry, req, "file_path")
	if err != nil {
		return errorResult(err), nil
	}
	return dataResult(map[string]any{
		"file": rel,
		"tags": p.Tags.FileTags(rel),
	}), nil
}

// ─── GetAllTagsTool ─────────────────────────────────────────────────────────

// GetAllTagsTool handles the get_all_tags MCP tool.
type GetAllTagsTool struct {
	registry *project.Registry
}

// NewGetAllTagsTool creates a GetAllTagsTool backed by the project registry.
func NewGetAllTagsTool(registry *project.Registry) *GetAllTagsTool {
	return &GetAllTagsTool{registry: registry}
}

// Definition returns the MCP tool definition for get_all_tags.
func (t *GetAllTagsTool) Definition() mcp.Tool {
	return mcp.NewTool("get_all_tags",
		mcp.WithDescription(
			"List every tag in use across the project, grouped by tag type.",
		),
		projectPathParam(),
	)
}

// Handle processes the get_all_tags tool call.
func (t *GetAllTagsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := resolveProject(t.registry, req)
	if err != nil {
		return errorResult(err), nil
	}

	byType := p.Tags.AllTags()
	total := 0
	for _, values := range byType {
		total += len(values)
	}
	return dataResult(map[string]any{
		"tags":  byType,
		"total": total,
	}), nil
}

// ─── QueryFilesTool ─────────────────────────────────────────────────────────

// QueryFilesTool handles the query_files_by_tags MCP tool.
type QueryFilesTool struct {
	registry *project.Registry
}

// NewQueryFilesTool creates a QueryFilesTool backed by the project registry.
func NewQueryFilesTool(registry *project.Registry) *QueryFilesTool {
	return &QueryFilesTool{registry: registry}
}

// Definition returns the MCP tool definition for query_files_by_tags.
func (t *QueryFilesTool) Definition() mcp.Tool {
	return mcp.NewTool("query_files_by_tags",
		mcp.WithDescription(
			"Find files by a boolean tag expression. Supports AND, OR, NOT, "+
				"parentheses and * wildcards, e.g. "+
				"\"category:api AND (layer:backend OR layer:shared) AND NOT status:deprecated\" "+
				"or \"category:*\".",
		),
		projectPathParam(),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Boolean tag expression"),
		),
	)
}

// Handle processes the query_files_by_tags tool call.
func (t *QueryFilesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := resolveProject(t.registry, req)
	if err != nil {
		return errorResult(err), nil
	}

	expr := req.GetString("query", "")
	if expr == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}

	files, err := p.Tags.QueryFiles(expr)
	if err != nil {
		return errorResult(err), nil
	}
	return dataResult(map[string]any{
		"query": expr,
		"files": files,
		"total": len(files),
	}), nil
}
