package nexustools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/reprintx/code-nexus/internal/project"
)

// ─── FileInfoTool ───────────────────────────────────────────────────────────

// FileInfoTool handles the get_file_info MCP tool.
type FileInfoTool struct {
	registry *project.Registry
}

// NewFileInfoTool creates a FileInfoTool backed by the project registry.
func NewFileInfoTool(registry *project.Registry) *FileInfoTool {
	return &FileInfoTool{registry: registry}
}

// Definition returns the MCP tool definition for get_file_info.
func (t *FileInfoTool) Definition() mcp.Tool {
	return mcp.NewTool("get_file_info",
		mcp.WithDescription(
			"Get all metadata of a file in one call: tags, comment, outgoing "+
				"and incoming relations.",
		),
		projectPathParam(),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("File path, relative to the project root"),
		),
	)
}

// Handle processes the get_file_info tool call.
func (t *FileInfoTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, rel, err := resolveFile(t.registry, req, "file_path")
	if err != nil {
		return errorResult(err), nil
	}

	info, err := p.FileInfo(rel)
	if err != nil {
		return errorResult(err), nil
	}
	return dataResult(info), nil
}

// ─── SystemStatusTool ───────────────────────────────────────────────────────

// SystemStatusTool handles the get_system_status MCP tool.
type SystemStatusTool struct {
	registry *project.Registry
}

// NewSystemStatusTool creates a SystemStatusTool backed by the project registry.
func NewSystemStatusTool(registry *project.Registry) *SystemStatusTool {
	return &SystemStatusTool{registry: registry}
}

// Definition returns the MCP tool definition for get_system_status.
func (t *SystemStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("get_system_status",
		mcp.WithDescription(
			"Project-wide metadata statistics: tagged files, commented files, "+
				"relation counts and the tag type map.",
		),
		projectPathParam(),
	)
}

// Handle processes the get_system_status tool call.
func (t *SystemStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := resolveProject(t.registry, req)
	if err != nil {
		return errorResult(err), nil
	}

	status, err := p.Status()
	if err != nil {
		return errorResult(err), nil
	}
	return dataResult(status), nil
}

// ─── SearchFilesTool ────────────────────────────────────────────────────────

// SearchFilesTool handles the search_files MCP tool.
type SearchFilesTool struct {
	registry   *project.Registry
	maxResults int
}

// NewSearchFilesTool creates a SearchFilesTool. maxResults caps the
// response size.
func NewSearchFilesTool(registry *project.Registry, maxResults int) *SearchFilesTool {
	return &SearchFilesTool{registry: registry, maxResults: maxResults}
}

// Definition returns the MCP tool definition for search_files.
func (t *SearchFilesTool) Definition() mcp.Tool {
	return mcp.NewTool("search_files",
		mcp.WithDescription(
			"Keyword search over file comments and relation descriptions. "+
				"Returns the full metadata of every matching file, sorted by path.",
		),
		projectPathParam(),
		mcp.WithString("keyword",
			mcp.Required(),
			mcp.Description("Case-insensitive substring to search for"),
		),
	)
}

// Handle processes the search_files tool call.
func (t *SearchFilesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := resolveProject(t.registry, req)
	if err != nil {
		return errorResult(err), nil
	}

	keyword := req.GetString("keyword", "")
	if keyword == "" {
		return mcp.NewToolResultError("'keyword' is required"), nil
	}

	results, err := p.Search(keyword)
	if err != nil {
		return errorResult(err), nil
	}

	truncated := false
	if t.maxResults > 0 && len(results) > t.maxResults {
		results = results[:t.maxResults]
		truncated = true
	}
	return dataResult(map[string]any{
		"keyword":   keyword,
		"results":   results,
		"total":     len(results),
		"truncated": truncated,
	}), nil
}

// ─── CleanupProjectTool ─────────────────────────────────────────────────────

// CleanupProjectTool handles the cleanup_project_metadata MCP tool.
type CleanupProjectTool struct {
	registry *project.Registry
}

// NewCleanupProjectTool creates a CleanupProjectTool backed by the project registry.
func NewCleanupProjectTool(registry *project.Registry) *CleanupProjectTool {
	return &CleanupProjectTool{registry: registry}
}

// Definition returns the MCP tool definition for cleanup_project_metadata.
func (t *CleanupProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("cleanup_project_metadata",
		mcp.WithDescription(
			"Remove relations and comments that reference files no longer on disk.",
		),
		projectPathParam(),
	)
}

// Handle processes the cleanup_project_metadata tool call.
func (t *CleanupProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := resolveProject(t.registry, req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := p.Cleanup()
	if err != nil {
		return errorResult(err), nil
	}
	return dataResult(result), nil
}
