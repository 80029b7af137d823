package nexustools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/reprintx/code-nexus/internal/project"
)

// ─── AddCommentTool ─────────────────────────────────────────────────────────

// AddCommentTool handles the add_file_comment MCP tool.
type AddCommentTool struct {
	registry *project.Registry
}

// NewAddCommentTool creates an AddCommentTool backed by the project registry.
func NewAddCommentTool(registry *project.Registry) *AddCommentTool {
	return &AddCommentTool{registry: registry}
}

// Definition returns the MCP tool definition for add_file_comment.
func (t *AddCommentTool) Definition() mcp.Tool {
	return mcp.NewTool("add_file_comment",
		mcp.WithDescription(
			"Attach a descriptive comment to a file. Fails if the file already "+
				"has a comment; use update_file_comment to replace one.",
		),
		projectPathParam(),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("File path, relative to the project root"),
		),
		mcp.WithString("comment",
			mcp.Required(),
			mcp.Description("Comment text"),
		),
	)
}

// Handle processes the add_file_comment tool call.
func (t *AddCommentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, rel, err := resolveFile(t.registry, req, "file_path")
	if err != nil {
		return errorResult(err), nil
	}

	comment := req.GetString("comment", "")
	if err := p.Comments.Add(rel, comment); err != nil {
		return errorResult(err), nil
	}
	return successResult(fmt.Sprintf("comment added to %s", rel)), nil
}

// ─── UpdateCommentTool ──────────────────────────────────────────────────────

// UpdateCommentTool handles the update_file_comment MCP tool.
type UpdateCommentTool struct {
	registry *project.Registry
}

// NewUpdateCommentTool creates an UpdateCommentTool backed by the project registry.
func NewUpdateCommentTool(registry *project.Registry) *UpdateCommentTool {
	return &UpdateCommentTool{registry: registry}
}

// Definition returns the MCP tool definition for update_file_comment.
func (t *UpdateCommentTool) Definition() mcp.Tool {
	return mcp.NewTool("update_file_comment",
		mcp.WithDescription(
			"Set or replace the comment of a file. Creates the comment if none exists.",
		),
		projectPathParam(),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("File path, relative to the project root"),
		),
		mcp.WithString("comment",
			mcp.Required(),
			mcp.Description("New comment text"),
		),
	)
}

// Handle processes the update_file_comment tool call.
func (t *UpdateCommentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, rel, err := resolveFile(t.registry, req, "file_path")
	if err != nil {
		return errorResult(err), nil
	}

	comment := req.GetString("comment", "")
	if err := p.Comments.Update(rel, comment); err != nil {
		return errorResult(err), nil
	}
	return successResult(fmt.Sprintf("comment updated for %s", rel)), nil
}

// ─── DeleteCommentTool ──────────────────────────────────────────────────────

// DeleteCommentTool handles the delete_file_comment MCP tool.
type DeleteCommentTool struct {
	registry *project.Registry
}

// NewDeleteCommentTool creates a DeleteCommentTool backed by the project registry.
func NewDeleteCommentTool(registry *project.Registry) *DeleteCommentTool {
	return &DeleteCommentTool{registry: registry}
}

// Definition returns the MCP tool definition for delete_file_comment.
func (t *DeleteCommentTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_file_comment",
		mcp.WithDescription("Delete the comment of a file."),
		projectPathParam(),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("File path, relative to the project root"),
		),
	)
}

// Handle processes the delete_file_comment tool call.
func (t *DeleteCommentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, rel, err := resolveFile(t.registry, req, "file_path")
	if err != nil {
		return errorResult(err), nil
	}

	if err := p.Comments.Delete(rel); err != nil {
		return errorResult(err), nil
	}
	return successResult(fmt.Sprintf("comment deleted for %s", rel)), nil
}
