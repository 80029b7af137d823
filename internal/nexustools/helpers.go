// Package nexustools provides the MCP tool handlers for CodeNexus.
//
// Each tool follows the same pattern:
// - A struct with dependencies (project.Registry) injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() validates paths at the boundary, runs the manager operation,
//   and returns a JSON payload (or the structured error shape)
package nexustools

import (
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/reprintx/code-nexus/internal/nexuserr"
	"github.com/reprintx/code-nexus/internal/project"
)

// stringSliceArg extracts a string array argument from a tool request.
// JSON arrays arrive as []any; non-string elements are skipped.
func stringSliceArg(req mcp.CallToolRequest, key string) []string {
	raw, ok := req.GetArguments()[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// intArg extracts an integer argument, returning defaultVal if the key
// is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// errorResult renders err as the structured error payload. The Go error
// return stays nil: protocol-level errors are reserved for transport
// failures, domain failures travel in the result body.
func errorResult(err error) *mcp.CallToolResult {
	slog.Error("tool call failed", "error", err)
	return mcp.NewToolResultError(nexuserr.FormatResponse(err))
}

// successResult renders a plain success message as JSON.
func successResult(message string) *mcp.CallToolResult {
	body, _ := json.Marshal(map[string]any{"success": true, "message": message})
	return mcp.NewToolResultText(string(body))
}

// dataResult marshals data as the tool's JSON payload.
func dataResult(data any) *mcp.CallToolResult {
	body, err := json.Marshal(data)
	if err != nil {
		return errorResult(nexuserr.Wrap(nexuserr.CodeSerializationError, err, "encoding response"))
	}
	return mcp.NewToolResultText(string(body))
}

// resolveProject validates project_path and returns its Project.
func resolveProject(reg *project.Registry, req mcp.CallToolRequest) (*project.Project, error) {
	projectPath := req.GetString("project_path", "")
	return reg.Get(projectPath)
}

// resolveFile validates file_path under the project root and returns the
// Project together with the normalized relative path. key names the
// parameter so relation tools can resolve from_file/to_file.
func resolveFile(reg *project.Registry, req mcp.CallToolRequest, key string) (*project.Project, string, error) {
	p, err := resolveProject(reg, req)
	if err != nil {
		return nil, "", err
	}
	rel, err := project.ValidateFilePath(p.Root, req.GetString(key, ""))
	if err != nil {
		return nil, "", err
	}
	return p, rel, nil
}

// projectPathParam is the shared project_path schema option.
func projectPathParam() mcp.ToolOption {
	return mcp.WithString("project_path",
		mcp.Required(),
		mcp.Description("Absolute path to the project root directory"),
	)
}
