package tools

import (
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ekaya-inc/synmap/pkg/apperrors"
	"github.com/ekaya-inc/synmap/pkg/logging"
)

// ErrorResponse represents a structured error in tool results.
// Returning errors as tool results keeps the code and message visible
// to the MCP client instead of surfacing as a transport failure.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResult creates a tool result containing a structured error.
// Use this for recoverable errors the caller can act on (invalid
// parameters, unknown connection profile, empty catalog).
//
// Example:
//
//	if len(catalog) == 0 {
//	    return NewErrorResult("no_classes", "no classes found in the SQL model"), nil
//	}
func NewErrorResult(code, message string) *mcp.CallToolResult {
	return NewErrorResultWithDetails(code, message, nil)
}

// NewErrorResultWithDetails creates an error result with additional context.
//
// Example:
//
//	return NewErrorResultWithDetails(
//	    "invalid_threshold",
//	    "threshold must be between 0 and 100",
//	    map[string]any{"threshold": 140},
//	), nil
func NewErrorResultWithDetails(code, message string, details any) *mcp.CallToolResult {
	resp := ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
		Details: details,
	}
	jsonBytes, _ := json.Marshal(resp)
	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

// NewExtractionErrorResult maps a database extraction failure to an error result.
// The message is sanitized so a password echoed by the driver never leaves the process.
func NewExtractionErrorResult(err error) *mcp.CallToolResult {
	code := "connection_failed"
	if errors.Is(err, apperrors.ErrDependencyMissing) {
		code = "dependency_missing"
	}
	return NewErrorResult(code, logging.SanitizeError(err))
}
