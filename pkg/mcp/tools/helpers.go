package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// trimString removes leading and trailing whitespace from a string.
// This is a common helper used across MCP tool parameter validation.
func trimString(s string) string {
	return strings.TrimSpace(s)
}

// toolArgs returns the call's arguments as a map, or an empty map.
func toolArgs(req mcp.CallToolRequest) map[string]any {
	if args, ok := req.Params.Arguments.(map[string]any); ok {
		return args
	}
	return map[string]any{}
}

// getOptionalString extracts an optional string argument.
func getOptionalString(req mcp.CallToolRequest, key string) string {
	if val, ok := toolArgs(req)[key].(string); ok {
		return trimString(val)
	}
	return ""
}

// getOptionalInt extracts an optional integer argument. JSON numbers arrive
// as float64 and must be whole; strings and fractions are rejected rather
// than coerced. The second return is false when the key is absent.
func getOptionalInt(req mcp.CallToolRequest, key string) (int, bool, error) {
	raw, ok := toolArgs(req)[key]
	if !ok || raw == nil {
		return 0, false, nil
	}

	switch val := raw.(type) {
	case float64:
		if val != math.Trunc(val) || math.IsInf(val, 0) || math.Abs(val) > math.MaxInt32 {
			return 0, false, fmt.Errorf("parameter %q must be a whole number, got %v", key, val)
		}
		return int(val), true, nil
	case int:
		return val, true, nil
	default:
		return 0, false, fmt.Errorf("parameter %q must be a number, got %T", key, raw)
	}
}

// extractArrayParam reads an array argument. Some clients send arrays as
// stringified JSON; those are parsed and a warning is logged.
// An absent key returns nil, nil.
func extractArrayParam(args map[string]any, key string, logger *zap.Logger) ([]any, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}

	switch val := raw.(type) {
	case []any:
		return val, nil
	case string:
		var parsed []any
		if err := json.Unmarshal([]byte(val), &parsed); err != nil {
			return nil, fmt.Errorf("parameter %q is a string that could not be parsed as an array; send a native JSON array", key)
		}
		if parsed == nil {
			parsed = []any{}
		}
		if logger != nil {
			logger.Warn("Array parameter received as stringified JSON", zap.String("param", key))
		}
		return parsed, nil
	default:
		return nil, fmt.Errorf("parameter %q must be an array, got %T", key, raw)
	}
}

// extractStringSlice reads an array argument whose elements must all be strings.
func extractStringSlice(args map[string]any, key string, logger *zap.Logger) ([]string, error) {
	items, err := extractArrayParam(args, key, logger)
	if err != nil || items == nil {
		return nil, err
	}

	result := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("parameter %q: element %d must be a string, got %T", key, i, item)
		}
		result = append(result, s)
	}
	return result, nil
}
