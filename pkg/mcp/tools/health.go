package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// healthResult tells a client which extractors and mapping defaults it can rely on.
type healthResult struct {
	Status           string   `json:"status"`
	Version          string   `json:"version"`
	Adapters         []string `json:"adapters"`
	DefaultThreshold int      `json:"default_threshold"`
	Synonyms         int      `json:"synonyms"`
	Missing          []string `json:"missing,omitempty"`
}

// RegisterHealthTool adds the health tool. Status is "degraded" when the
// catalog service or the auto-mapper is not wired; "missing" names them.
func RegisterHealthTool(s *server.MCPServer, version string, deps *MCPToolDeps) {
	tool := mcp.NewTool(
		"health",
		mcp.WithDescription("Report server status, version, compiled-in database adapters and mapping defaults"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := healthResult{
			Status:           "ok",
			Version:          version,
			Adapters:         []string{},
			DefaultThreshold: deps.defaultThreshold(),
			Synonyms:         deps.Synonyms.Len(),
		}

		if deps.CatalogService != nil {
			for _, info := range deps.CatalogService.AdapterTypes() {
				result.Adapters = append(result.Adapters, info.Type)
			}
		} else {
			result.Missing = append(result.Missing, "catalog_service")
		}
		if deps.AutoMapper == nil {
			result.Missing = append(result.Missing, "auto_mapper")
		}
		if len(result.Missing) > 0 {
			result.Status = "degraded"
		}

		jsonBytes, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal health result: %w", err)
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}
