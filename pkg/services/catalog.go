package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/synmap/pkg/adapters/datasource"
	"github.com/ekaya-inc/synmap/pkg/apperrors"
	"github.com/ekaya-inc/synmap/pkg/logging"
	"github.com/ekaya-inc/synmap/pkg/models"
	"github.com/ekaya-inc/synmap/pkg/sql"
)

// CatalogService builds class catalogs from a SQL model or a spatial database.
type CatalogService interface {
	// FromSQL extracts classes from CREATE TABLE statements. Never fails;
	// text without any statement yields an empty catalog.
	FromSQL(sqlText string) models.ClassCatalog

	// FromFile reads a SQL model file and extracts its classes.
	FromFile(path string) (models.ClassCatalog, error)

	// FromDatabase lists every geometry table of the database and describes
	// each one as a layer. Tables that cannot be described are skipped.
	FromDatabase(ctx context.Context, params models.ConnectionParams) (models.ClassCatalog, error)

	// AdapterTypes returns the datasource types compiled into this binary.
	AdapterTypes() []datasource.DatasourceAdapterInfo
}

type catalogService struct {
	adapterFactory datasource.DatasourceAdapterFactory
	logger         *zap.Logger
}

// NewCatalogService creates a catalog service.
// If logger is nil, a no-op logger is used.
func NewCatalogService(adapterFactory datasource.DatasourceAdapterFactory, logger *zap.Logger) CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &catalogService{
		adapterFactory: adapterFactory,
		logger:         logger,
	}
}

func (s *catalogService) FromSQL(sqlText string) models.ClassCatalog {
	catalog := sql.ParseCreateTables(sqlText)
	s.logger.Debug("Parsed SQL model",
		zap.Int("classes", len(catalog)),
		zap.String("excerpt", logging.SanitizeSQLExcerpt(sqlText)))
	return catalog
}

func (s *catalogService) FromFile(path string) (models.ClassCatalog, error) {
	catalog, err := sql.ParseCreateTablesFile(path)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Parsed SQL model file",
		zap.String("path", path),
		zap.Int("classes", len(catalog)))
	return catalog, nil
}

func (s *catalogService) FromDatabase(ctx context.Context, params models.ConnectionParams) (models.ClassCatalog, error) {
	if s.adapterFactory == nil {
		return nil, fmt.Errorf("%w: no datasource adapters configured", apperrors.ErrDependencyMissing)
	}

	layers, err := s.adapterFactory.NewLayerCatalog(ctx, params.DatasourceType(), params.ConfigMap())
	if err != nil {
		if errors.Is(err, apperrors.ErrDependencyMissing) {
			return nil, err
		}
		s.logger.Error("Failed to connect to spatial database",
			zap.String("target", params.String()),
			zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("connect to %s: %w", params.String(), err)
	}
	defer layers.Close()

	if err := layers.TestConnection(ctx); err != nil {
		s.logger.Error("Spatial database failed connection check",
			zap.String("target", params.String()),
			zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("connect to %s: %w", params.String(), err)
	}

	rows, err := layers.ListGeometryTables(ctx)
	if err != nil {
		s.logger.Error("Failed to list geometry tables",
			zap.String("target", params.String()),
			zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("list geometry tables: %w", err)
	}

	tables := uniqueGeometryTables(rows)
	catalog := make(models.ClassCatalog, len(tables))
	for _, table := range tables {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("extract catalog: %w", err)
		}

		fields, err := layers.DescribeLayer(ctx, table)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("extract catalog: %w", ctxErr)
			}
			s.logger.Debug("Skipping table that is not a valid layer",
				zap.String("table", table.QualifiedName()),
				zap.String("geometry_column", table.GeometryColumn),
				zap.String("error", logging.SanitizeError(err)))
			continue
		}
		if fields == nil {
			fields = []string{}
		}
		catalog[models.FoldClassName(table.TableName)] = fields
	}

	s.logger.Info("Extracted class catalog from database",
		zap.String("target", params.String()),
		zap.Int("geometry_tables", len(tables)),
		zap.Int("classes", len(catalog)))

	return catalog, nil
}

func (s *catalogService) AdapterTypes() []datasource.DatasourceAdapterInfo {
	if s.adapterFactory == nil {
		return []datasource.DatasourceAdapterInfo{}
	}
	return s.adapterFactory.ListTypes()
}

// uniqueGeometryTables collapses repeated (schema, table) rows. A table keeps
// the position of its first row and the geometry column of its last row.
func uniqueGeometryTables(rows []datasource.GeometryTable) []datasource.GeometryTable {
	type key struct{ schema, table string }

	index := make(map[key]int, len(rows))
	tables := make([]datasource.GeometryTable, 0, len(rows))
	for _, row := range rows {
		k := key{row.SchemaName, row.TableName}
		if i, ok := index[k]; ok {
			tables[i].GeometryColumn = row.GeometryColumn
			continue
		}
		index[k] = len(tables)
		tables = append(tables, row)
	}
	return tables
}

// Ensure catalogService implements CatalogService at compile time.
var _ CatalogService = (*catalogService)(nil)
