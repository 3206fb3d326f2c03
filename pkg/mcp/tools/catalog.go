package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/synmap/pkg/apperrors"
	"github.com/ekaya-inc/synmap/pkg/config"
	"github.com/ekaya-inc/synmap/pkg/logging"
	"github.com/ekaya-inc/synmap/pkg/models"
)

// catalogResult is the payload of the catalog tools.
type catalogResult struct {
	Classes    models.ClassCatalog `json:"classes"`
	ClassNames []string            `json:"class_names"`
	ClassCount int                 `json:"class_count"`
}

// RegisterCatalogTools adds the class catalog tools to the MCP server.
func RegisterCatalogTools(s *server.MCPServer, deps *MCPToolDeps) {
	registerParseSQLModelTool(s, deps)
	registerExtractDBModelTool(s, deps)
	registerListConnectionsTool(s, deps)
}

func registerParseSQLModelTool(s *server.MCPServer, deps *MCPToolDeps) {
	tool := mcp.NewTool(
		"parse_sql_model",
		mcp.WithDescription(
			"Extract the classes of a target data model from SQL DDL. "+
				"Every CREATE TABLE statement becomes a class named after the table, without schema and without a "+
				"trailing geometry suffix such as _p, _l or _a, whose attributes are its column names in declaration order. "+
				"Constraint clauses are skipped.",
		),
		mcp.WithString(
			"sql",
			mcp.Required(),
			mcp.Description("SQL text containing CREATE TABLE statements"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if deps.CatalogService == nil {
			return NewErrorResult("dependency_missing", "catalog service is not configured"), nil
		}

		sqlText, err := req.RequireString("sql")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}

		return catalogToolResult(deps.CatalogService.FromSQL(sqlText))
	})
}

func registerExtractDBModelTool(s *server.MCPServer, deps *MCPToolDeps) {
	tool := mcp.NewTool(
		"extract_db_model",
		mcp.WithDescription(
			"Extract the classes of a target data model from a spatial database. "+
				"Every registered geometry table becomes a class whose attributes are its non-geometry fields. "+
				"Class names follow the same folding as parse_sql_model; tables that fold to the same name collapse into one class (last one wins). "+
				"Select a saved profile with 'connection' and/or pass connection fields directly; "+
				"the password defaults to the server's environment.",
		),
		mcp.WithString(
			"connection",
			mcp.Description("Optional - name of a saved connection profile (see list_connections)"),
		),
		mcp.WithString(
			"type",
			mcp.Description("Optional - datasource type (default: postgres)"),
		),
		mcp.WithString(
			"host",
			mcp.Description("Optional - database host"),
		),
		mcp.WithNumber(
			"port",
			mcp.Description("Optional - database port (default: 5432)"),
		),
		mcp.WithString(
			"database",
			mcp.Description("Optional - database name"),
		),
		mcp.WithString(
			"user",
			mcp.Description("Optional - database user"),
		),
		mcp.WithString(
			"password",
			mcp.Description("Optional - database password; used for this call only and never stored"),
		),
		mcp.WithString(
			"ssl_mode",
			mcp.Description("Optional - SSL mode (default: prefer)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if deps.CatalogService == nil || deps.Config == nil {
			return NewErrorResult("dependency_missing", "catalog service is not configured"), nil
		}

		port, _, err := getOptionalInt(req, "port")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		params, err := deps.Config.ResolveConnection(getOptionalString(req, "connection"), models.ConnectionParams{
			Type:     getOptionalString(req, "type"),
			Host:     getOptionalString(req, "host"),
			Port:     port,
			Database: getOptionalString(req, "database"),
			User:     getOptionalString(req, "user"),
			Password: getOptionalString(req, "password"),
			SSLMode:  getOptionalString(req, "ssl_mode"),
		})
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return NewErrorResult("connection_not_found", err.Error()), nil
			}
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}

		if params.Host == "" || params.Database == "" || params.User == "" {
			return NewErrorResultWithDetails(
				"invalid_parameters",
				"host, database and user are required",
				map[string]any{"target": params.String()},
			), nil
		}

		catalog, err := deps.CatalogService.FromDatabase(ctx, params)
		if err != nil {
			deps.logger().Warn("Database extraction failed",
				zap.String("target", params.String()),
				zap.String("error", logging.SanitizeError(err)))
			return NewExtractionErrorResult(err), nil
		}

		return catalogToolResult(catalog)
	})
}

func registerListConnectionsTool(s *server.MCPServer, deps *MCPToolDeps) {
	tool := mcp.NewTool(
		"list_connections",
		mcp.WithDescription("List the saved spatial database connection profiles usable with extract_db_model"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		profiles := []config.ConnectionProfile{}
		if deps.Config != nil && deps.Config.Connections != nil {
			profiles = deps.Config.Connections
		}

		jsonResult, err := json.Marshal(map[string]any{"connections": profiles})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}
		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

func catalogToolResult(catalog models.ClassCatalog) (*mcp.CallToolResult, error) {
	if len(catalog) == 0 {
		return NewErrorResult("no_classes", apperrors.ErrNoClasses.Error()), nil
	}

	jsonResult, err := json.Marshal(catalogResult{
		Classes:    catalog,
		ClassNames: catalog.Names(),
		ClassCount: len(catalog),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonResult)), nil
}
