package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/synmap/pkg/apperrors"
	"github.com/ekaya-inc/synmap/pkg/models"
	"github.com/ekaya-inc/synmap/pkg/services"
)

type autoMapResult struct {
	Mapping   *models.AttributeMapping `json:"mapping"`
	Summary   models.MappingSummary    `json:"summary"`
	Threshold int                      `json:"threshold"`
}

type validateMappingResult struct {
	Mapping *models.AttributeMapping `json:"mapping"`
	services.MappingReview
}

// RegisterMappingTools adds the attribute mapping tools to the MCP server.
func RegisterMappingTools(s *server.MCPServer, deps *MCPToolDeps) {
	registerAutoMapTool(s, deps)
	registerValidateMappingTool(s, deps)
}

func registerAutoMapTool(s *server.MCPServer, deps *MCPToolDeps) {
	tool := mcp.NewTool(
		"auto_map_attributes",
		mcp.WithDescription(
			"Propose a mapping from the attributes of a model class to the fields of an input layer. "+
				"Names are compared after accent and case folding, using the attribute and its synonyms; "+
				"each field is used at most once and attributes are assigned in order. "+
				"Attributes without a field reaching the threshold are left unmapped.",
		),
		mcp.WithArray(
			"attributes",
			mcp.Required(),
			mcp.Description("Ordered attribute names of the model class (e.g., [\"id\", \"nome\", \"tipo\"])"),
		),
		mcp.WithArray(
			"fields",
			mcp.Required(),
			mcp.Description("Field names of the input layer (e.g., [\"ID\", \"Nome_Completo\", \"Cod\"])"),
		),
		mcp.WithNumber(
			"threshold",
			mcp.Description("Optional - minimum similarity score, a whole number 0-100; a field scoring exactly the threshold is eligible (default: server setting, normally 70)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if deps.AutoMapper == nil {
			return NewErrorResult("dependency_missing", "auto-mapper is not configured"), nil
		}

		args := toolArgs(req)
		attributes, err := extractStringSlice(args, "attributes", deps.logger())
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		if len(attributes) == 0 {
			return NewErrorResult("invalid_parameters", "attributes must not be empty"), nil
		}

		fields, err := extractStringSlice(args, "fields", deps.logger())
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}

		threshold := deps.defaultThreshold()
		v, ok, err := getOptionalInt(req, "threshold")
		if err != nil {
			return NewErrorResultWithDetails("invalid_parameters", err.Error(), map[string]any{"threshold": args["threshold"]}), nil
		}
		if ok {
			threshold = v
		}

		mapping, err := deps.AutoMapper.Map(attributes, models.FieldSet(fields), deps.Synonyms, threshold)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrInvalidThreshold):
				return NewErrorResultWithDetails("invalid_threshold", err.Error(), map[string]any{"threshold": threshold}), nil
			case errors.Is(err, apperrors.ErrDependencyMissing):
				return NewErrorResult("dependency_missing", err.Error()), nil
			}
			return nil, fmt.Errorf("auto-map attributes: %w", err)
		}

		summary := mapping.Summary()
		deps.logger().Debug("Auto-mapped attributes",
			zap.Int("attributes", summary.Total),
			zap.Int("mapped", summary.Mapped),
			zap.Int("threshold", threshold))

		jsonResult, err := json.Marshal(autoMapResult{
			Mapping:   mapping,
			Summary:   summary,
			Threshold: threshold,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}
		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

func registerValidateMappingTool(s *server.MCPServer, deps *MCPToolDeps) {
	tool := mcp.NewTool(
		"validate_mapping",
		mcp.WithDescription(
			"Review a manually edited attribute mapping. Nothing is rejected: the result lists unmapped attributes, "+
				"fields chosen by more than one attribute, and names unknown to the class or the layer.",
		),
		mcp.WithArray(
			"attributes",
			mcp.Required(),
			mcp.Description("Ordered attribute names of the model class"),
		),
		mcp.WithArray(
			"fields",
			mcp.Description("Optional - field names of the input layer; when omitted, chosen fields are not checked"),
		),
		mcp.WithObject(
			"mapping",
			mcp.Required(),
			mcp.Description("Attribute to field assignments (e.g., {\"nome\": \"NOME\", \"tipo\": null}); null leaves an attribute unmapped"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := toolArgs(req)
		attributes, err := extractStringSlice(args, "attributes", deps.logger())
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		if len(attributes) == 0 {
			return NewErrorResult("invalid_parameters", "attributes must not be empty"), nil
		}

		fields, err := extractStringSlice(args, "fields", deps.logger())
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}

		assignments, ok := args["mapping"].(map[string]any)
		if !ok {
			return NewErrorResult("invalid_parameters", "parameter \"mapping\" must be an object of attribute to field"), nil
		}

		edited, err := editedMapping(attributes, assignments)
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}

		mapping, review := services.ReviewMapping(attributes, models.FieldSet(fields), edited)

		jsonResult, err := json.Marshal(validateMappingResult{
			Mapping:       mapping,
			MappingReview: review,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}
		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

// editedMapping builds a mapping from an attribute to field object. Class
// attributes come first in model order, then any extra keys sorted by name.
func editedMapping(attributes []string, assignments map[string]any) (*models.AttributeMapping, error) {
	order := make([]string, 0, len(assignments))
	seen := make(map[string]bool, len(attributes))
	for _, attr := range attributes {
		seen[attr] = true
		if _, ok := assignments[attr]; ok {
			order = append(order, attr)
		}
	}
	var extra []string
	for attr := range assignments {
		if !seen[attr] {
			extra = append(extra, attr)
		}
	}
	sort.Strings(extra)
	order = append(order, extra...)

	edited := models.NewAttributeMapping(nil)
	for _, attr := range order {
		switch field := assignments[attr].(type) {
		case nil:
			edited.Unset(attr)
		case string:
			edited.Set(attr, field)
		default:
			return nil, fmt.Errorf("mapping for %q must be a field name or null, got %T", attr, field)
		}
	}
	return edited, nil
}
