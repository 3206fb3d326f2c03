package tools

import (
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/synmap/pkg/services"
)

func callHealth(t *testing.T, deps *MCPToolDeps, version string) map[string]any {
	t.Helper()
	s := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	RegisterHealthTool(s, version, deps)

	text, isError := callTool(t, s, "health", nil)
	require.False(t, isError, text)

	var health map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &health))
	return health
}

func TestHealthTool_ReportsAdaptersAndMappingDefaults(t *testing.T) {
	deps := newMappingDeps(&mockCatalogService{})
	deps.Config.Mapping.Threshold = 85

	health := callHealth(t, deps, "1.2.3")

	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "1.2.3", health["version"])
	assert.Equal(t, []any{"postgres"}, health["adapters"])
	assert.Equal(t, float64(85), health["default_threshold"])
	assert.Equal(t, float64(deps.Synonyms.Len()), health["synonyms"])
	assert.Greater(t, health["synonyms"], float64(0))
	assert.NotContains(t, health, "missing")
}

func TestHealthTool_DefaultThresholdWithoutConfig(t *testing.T) {
	deps := newMappingDeps(&mockCatalogService{})
	deps.Config = nil

	health := callHealth(t, deps, "dev")
	assert.Equal(t, float64(services.DefaultThreshold), health["default_threshold"])
}

func TestHealthTool_DegradedWhenServicesMissing(t *testing.T) {
	tests := []struct {
		name        string
		deps        *MCPToolDeps
		wantMissing []any
	}{
		{
			name:        "nothing wired",
			deps:        &MCPToolDeps{},
			wantMissing: []any{"catalog_service", "auto_mapper"},
		},
		{
			name: "no auto-mapper",
			deps: func() *MCPToolDeps {
				deps := newMappingDeps(&mockCatalogService{})
				deps.AutoMapper = nil
				return deps
			}(),
			wantMissing: []any{"auto_mapper"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			health := callHealth(t, tt.deps, "dev")

			assert.Equal(t, "degraded", health["status"])
			assert.Equal(t, tt.wantMissing, health["missing"])
			// adapters is always a list, never null
			assert.IsType(t, []any{}, health["adapters"])
		})
	}
}

func TestHealthTool_RegisteredWithAllTools(t *testing.T) {
	s := newToolServer(t, newMappingDeps(&mockCatalogService{}))

	text, isError := callTool(t, s, "health", nil)
	require.False(t, isError)
	assert.Contains(t, text, `"adapters":["postgres"]`)
	assert.Contains(t, text, `"version":"test-version"`)
}
