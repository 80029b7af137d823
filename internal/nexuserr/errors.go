// Package nexuserr defines the error kinds shared across CodeNexus.
//
// Every error carries a stable machine-readable code and a recovery hint
// so that MCP clients can react programmatically and users get actionable
// messages instead of raw internals.
package nexuserr

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Code is a stable machine-readable error code.
type Code string

const (
	CodeFileNotFound          Code = "FILE_NOT_FOUND"
	CodeInvalidTagFormat      Code = "INVALID_TAG_FORMAT"
	CodeInvalidQuerySyntax    Code = "INVALID_QUERY_SYNTAX"
	CodeRelationAlreadyExists Code = "RELATION_ALREADY_EXISTS"
	CodeRelationNotFound      Code = "RELATION_NOT_FOUND"
	CodeTagNotFound           Code = "TAG_NOT_FOUND"
	CodeStorageError          Code = "STORAGE_ERROR"
	CodeSerializationError    Code = "SERIALIZATION_ERROR"
	CodeFileSystemError       Code = "FILESYSTEM_ERROR"
	CodeConfigError           Code = "CONFIG_ERROR"
	CodeInternalError         Code = "INTERNAL_ERROR"
)

// hints maps each code to a recovery suggestion shown to the caller.
var hints = map[Code]string{
	CodeFileNotFound:          "check that the file path is correct and relative to the project root",
	CodeInvalidTagFormat:      "use type:value format, e.g. category:api",
	CodeInvalidQuerySyntax:    "check the query syntax; AND, OR, NOT, parentheses and * wildcards are supported",
	CodeRelationAlreadyExists: "the relation already exists; remove it first to change its description",
	CodeRelationNotFound:      "add the relation before removing or updating it",
	CodeTagNotFound:           "add the tag to the file before removing it",
	CodeStorageError:          "check file permissions and available disk space",
	CodeSerializationError:    "the data file is malformed; restore it from the .bak backup",
	CodeFileSystemError:       "check filesystem permissions",
	CodeConfigError:           "check the configuration value",
	CodeInternalError:         "retry the operation; report the issue if it persists",
}

// Error is the error type returned by all CodeNexus operations.
type Error struct {
	Code    Code
	Message string
	cause   error
}

// New creates an Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error that records cause for errors.Is/As chains.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Hint returns the recovery suggestion for the error's code.
func (e *Error) Hint() string {
	if h, ok := hints[e.Code]; ok {
		return h
	}
	return hints[CodeInternalError]
}

// ─── Constructors for the common kinds ───────────────────────────────────────

// FileNotFound reports a file with no presence on disk or in an index.
func FileNotFound(path string) *Error {
	return New(CodeFileNotFound, "file not found: %s", path)
}

// InvalidTagFormat reports a tag that is not of the form type:value.
func InvalidTagFormat(tag string) *Error {
	return New(CodeInvalidTagFormat, "invalid tag format: %q, expected type:value", tag)
}

// InvalidQuerySyntax reports a malformed query expression.
func InvalidQuerySyntax(reason string) *Error {
	return New(CodeInvalidQuerySyntax, "invalid query syntax: %s", reason)
}

// RelationAlreadyExists reports a duplicate (source, target) edge.
func RelationAlreadyExists(source, target string) *Error {
	return New(CodeRelationAlreadyExists, "relation already exists: %s -> %s", source, target)
}

// RelationNotFound reports a missing (source, target) edge.
func RelationNotFound(source, target string) *Error {
	return New(CodeRelationNotFound, "relation not found: %s -> %s", source, target)
}

// TagNotFound reports a tag absent from a file's tag set.
func TagNotFound(tag, file string) *Error {
	return New(CodeTagNotFound, "tag not found: %s on file %s", tag, file)
}

// ─── Wire format ─────────────────────────────────────────────────────────────

// responseBody is the JSON error shape returned to MCP clients.
type responseBody struct {
	Code       Code   `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

// FormatResponse renders err as the JSON error payload for tool results.
// Non-nexuserr errors are reported as INTERNAL_ERROR.
func FormatResponse(err error) string {
	code := CodeInternalError
	msg := err.Error()
	hint := hints[CodeInternalError]
	var e *Error
	if errors.As(err, &e) {
		code = e.Code
		msg = e.Message
		hint = e.Hint()
	}
	body, jerr := json.Marshal(map[string]responseBody{
		"error": {Code: code, Message: msg, Suggestion: hint},
	})
	if jerr != nil {
		return fmt.Sprintf(`{"error":{"code":"%s","message":"serialization failure"}}`, CodeInternalError)
	}
	return string(body)
}
