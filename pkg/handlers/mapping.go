package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/synmap/pkg/apperrors"
	"github.com/ekaya-inc/synmap/pkg/matching"
	"github.com/ekaya-inc/synmap/pkg/models"
	"github.com/ekaya-inc/synmap/pkg/services"
)

// AutoMapRequest is the body of POST /api/mapping/auto.
// Threshold defaults to the configured value when omitted.
type AutoMapRequest struct {
	Attributes []string        `json:"attributes"`
	Fields     models.FieldSet `json:"fields"`
	Threshold  *int            `json:"threshold,omitempty"`
}

// AutoMapResponse carries the proposed mapping and how much of it is filled.
type AutoMapResponse struct {
	Mapping   *models.AttributeMapping `json:"mapping"`
	Summary   models.MappingSummary    `json:"summary"`
	Threshold int                      `json:"threshold"`
}

// ValidateMappingRequest is the body of POST /api/mapping/validate.
type ValidateMappingRequest struct {
	Attributes []string                 `json:"attributes"`
	Fields     models.FieldSet          `json:"fields,omitempty"`
	Mapping    *models.AttributeMapping `json:"mapping"`
}

// ValidateMappingResponse reports on a manually edited mapping.
type ValidateMappingResponse struct {
	Mapping *models.AttributeMapping `json:"mapping"`
	services.MappingReview
}

// MappingHandler runs the auto-mapper and reviews edited mappings.
type MappingHandler struct {
	autoMapper       services.AutoMapper
	synonyms         *matching.SynonymTable
	defaultThreshold int
	logger           *zap.Logger
}

// NewMappingHandler creates a new mapping handler.
func NewMappingHandler(autoMapper services.AutoMapper, synonyms *matching.SynonymTable, defaultThreshold int, logger *zap.Logger) *MappingHandler {
	return &MappingHandler{
		autoMapper:       autoMapper,
		synonyms:         synonyms,
		defaultThreshold: defaultThreshold,
		logger:           logger,
	}
}

// RegisterRoutes registers the mapping handler's routes on the given mux.
func (h *MappingHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/mapping/auto", h.AutoMap)
	mux.HandleFunc("POST /api/mapping/validate", h.Validate)
}

// AutoMap handles POST /api/mapping/auto.
func (h *MappingHandler) AutoMap(w http.ResponseWriter, r *http.Request) {
	var req AutoMapRequest
	if err := decodeJSON(r, &req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if len(req.Attributes) == 0 {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "attributes are required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	threshold := h.defaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	mapping, err := h.autoMapper.Map(req.Attributes, req.Fields, h.synonyms, threshold)
	if err != nil {
		status, code := http.StatusInternalServerError, "internal_error"
		switch {
		case errors.Is(err, apperrors.ErrInvalidThreshold):
			status, code = http.StatusBadRequest, "invalid_threshold"
		case errors.Is(err, apperrors.ErrDependencyMissing):
			status, code = http.StatusNotImplemented, "dependency_missing"
		}
		if err := ErrorResponse(w, status, code, err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := ApiResponse{Success: true, Data: AutoMapResponse{
		Mapping:   mapping,
		Summary:   mapping.Summary(),
		Threshold: threshold,
	}}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Validate handles POST /api/mapping/validate.
// Edited mappings are never rejected; duplicates and unknown names are reported.
func (h *MappingHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateMappingRequest
	if err := decodeJSON(r, &req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	mapping, review := services.ReviewMapping(req.Attributes, req.Fields, req.Mapping)

	response := ApiResponse{Success: true, Data: ValidateMappingResponse{
		Mapping:       mapping,
		MappingReview: review,
	}}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
