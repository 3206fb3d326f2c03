package tools

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/synmap/pkg/config"
	"github.com/ekaya-inc/synmap/pkg/matching"
	"github.com/ekaya-inc/synmap/pkg/services"
)

// MCPToolDeps contains dependencies for the catalog and mapping tools.
type MCPToolDeps struct {
	CatalogService services.CatalogService
	AutoMapper     services.AutoMapper
	Synonyms       *matching.SynonymTable
	Config         *config.Config
	Logger         *zap.Logger
}

// defaultThreshold is the threshold used when a call omits one.
func (d *MCPToolDeps) defaultThreshold() int {
	if d.Config == nil {
		return services.DefaultThreshold
	}
	return d.Config.Mapping.Threshold
}

func (d *MCPToolDeps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// RegisterTools adds every synmap tool to the MCP server.
func RegisterTools(s *server.MCPServer, version string, deps *MCPToolDeps) {
	RegisterHealthTool(s, version, deps)
	RegisterCatalogTools(s, deps)
	RegisterMappingTools(s, deps)
}
