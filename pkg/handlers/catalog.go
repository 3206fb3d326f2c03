package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/synmap/pkg/apperrors"
	"github.com/ekaya-inc/synmap/pkg/config"
	"github.com/ekaya-inc/synmap/pkg/logging"
	"github.com/ekaya-inc/synmap/pkg/models"
	"github.com/ekaya-inc/synmap/pkg/services"
)

// ParseSQLRequest is the body of POST /api/catalog/sql.
type ParseSQLRequest struct {
	SQL string `json:"sql"`
}

// ExtractDBRequest is the body of POST /api/catalog/db.
// Connection names a saved profile; the other fields override it.
type ExtractDBRequest struct {
	Connection string `json:"connection,omitempty"`
	Type       string `json:"type,omitempty"`
	Host       string `json:"host,omitempty"`
	Port       int    `json:"port,omitempty"`
	Database   string `json:"database,omitempty"`
	User       string `json:"user,omitempty"`
	Password   string `json:"password,omitempty"`
	SSLMode    string `json:"ssl_mode,omitempty"`
}

// CatalogResponse carries a class catalog and its sorted class names.
type CatalogResponse struct {
	Classes    models.ClassCatalog `json:"classes"`
	ClassNames []string            `json:"class_names"`
}

// ConnectionsResponse lists saved connection profiles.
type ConnectionsResponse struct {
	Connections []config.ConnectionProfile `json:"connections"`
}

// CatalogHandler builds class catalogs from SQL models and spatial databases.
type CatalogHandler struct {
	catalogService services.CatalogService
	cfg            *config.Config
	logger         *zap.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalogService services.CatalogService, cfg *config.Config, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		cfg:            cfg,
		logger:         logger,
	}
}

// RegisterRoutes registers the catalog handler's routes on the given mux.
func (h *CatalogHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/catalog/sql", h.ParseSQL)
	mux.HandleFunc("POST /api/catalog/db", h.ExtractDB)
	mux.HandleFunc("GET /api/connections", h.ListConnections)
}

// ParseSQL handles POST /api/catalog/sql.
func (h *CatalogHandler) ParseSQL(w http.ResponseWriter, r *http.Request) {
	var req ParseSQLRequest
	if err := decodeJSON(r, &req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	h.writeCatalog(w, h.catalogService.FromSQL(req.SQL))
}

// ExtractDB handles POST /api/catalog/db.
func (h *CatalogHandler) ExtractDB(w http.ResponseWriter, r *http.Request) {
	var req ExtractDBRequest
	if err := decodeJSON(r, &req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	params, err := h.cfg.ResolveConnection(req.Connection, models.ConnectionParams{
		Type:     req.Type,
		Host:     req.Host,
		Port:     req.Port,
		Database: req.Database,
		User:     req.User,
		Password: req.Password,
		SSLMode:  req.SSLMode,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "connection_not_found", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if params.Host == "" || params.Database == "" || params.User == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "host, database and user are required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	catalog, err := h.catalogService.FromDatabase(r.Context(), params)
	if err != nil {
		status, code := http.StatusBadGateway, "connection_failed"
		if errors.Is(err, apperrors.ErrDependencyMissing) {
			status, code = http.StatusNotImplemented, "dependency_missing"
		}
		h.logger.Warn("Database extraction failed",
			zap.String("target", params.String()),
			zap.String("error", logging.SanitizeError(err)))
		if err := ErrorResponse(w, status, code, logging.SanitizeError(err)); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	h.writeCatalog(w, catalog)
}

// ListConnections handles GET /api/connections.
func (h *CatalogHandler) ListConnections(w http.ResponseWriter, r *http.Request) {
	profiles := h.cfg.Connections
	if profiles == nil {
		profiles = []config.ConnectionProfile{}
	}

	response := ApiResponse{Success: true, Data: ConnectionsResponse{Connections: profiles}}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *CatalogHandler) writeCatalog(w http.ResponseWriter, catalog models.ClassCatalog) {
	if len(catalog) == 0 {
		if err := ErrorResponse(w, http.StatusUnprocessableEntity, "no_classes", apperrors.ErrNoClasses.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := ApiResponse{Success: true, Data: CatalogResponse{
		Classes:    catalog,
		ClassNames: catalog.Names(),
	}}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
