//go:build !nopostgres

package postgres

import (
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/synmap/pkg/adapters/datasource"
)

func init() {
	datasource.Register(datasource.DatasourceAdapterRegistration{
		Info: datasource.DatasourceAdapterInfo{
			Type:        "postgres",
			DisplayName: "PostgreSQL / PostGIS",
			Description: "Read layer models from PostGIS geometry_columns",
		},
		Factory: func(ctx context.Context, config map[string]any, logger *zap.Logger) (datasource.LayerCatalog, error) {
			cfg, err := FromMap(config)
			if err != nil {
				return nil, err
			}
			return NewAdapter(ctx, cfg, logger)
		},
	})
}
