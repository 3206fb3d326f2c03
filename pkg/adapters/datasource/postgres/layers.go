package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ekaya-inc/synmap/pkg/adapters/datasource"
)

const geometryColumnsQuery = `
	SELECT f_table_schema, f_table_name, f_geometry_column
	FROM geometry_columns`

// qualifiedTableName returns a properly quoted table reference.
// If schemaName is empty, returns just the quoted table name.
// Otherwise returns "schema"."table".
func qualifiedTableName(schemaName, tableName string) string {
	quotedTable := pgx.Identifier{tableName}.Sanitize()
	if schemaName == "" {
		return quotedTable
	}
	quotedSchema := pgx.Identifier{schemaName}.Sanitize()
	return quotedSchema + "." + quotedTable
}

// ListGeometryTables reads the PostGIS geometry_columns view.
func (a *Adapter) ListGeometryTables(ctx context.Context) ([]datasource.GeometryTable, error) {
	rows, err := a.pool.Query(ctx, geometryColumnsQuery)
	if err != nil {
		return nil, fmt.Errorf("query geometry_columns: %w", err)
	}
	defer rows.Close()

	var tables []datasource.GeometryTable
	for rows.Next() {
		var t datasource.GeometryTable
		if err := rows.Scan(&t.SchemaName, &t.TableName, &t.GeometryColumn); err != nil {
			return nil, fmt.Errorf("scan geometry_columns row: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate geometry_columns: %w", err)
	}

	a.logger.Debug("Listed geometry tables", zap.Int("count", len(tables)))
	return tables, nil
}

// DescribeLayer selects zero rows from the table and reads the result's
// column descriptions, in ordinal order. The geometry column must be one of
// them and is left out of the returned fields.
func (a *Adapter) DescribeLayer(ctx context.Context, table datasource.GeometryTable) ([]string, error) {
	query := "SELECT * FROM " + qualifiedTableName(table.SchemaName, table.TableName) + " LIMIT 0"

	rows, err := a.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("open layer %s: %w", table.QualifiedName(), err)
	}
	descriptions := rows.FieldDescriptions()
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("open layer %s: %w", table.QualifiedName(), err)
	}

	fields := make([]string, 0, len(descriptions))
	hasGeometry := false
	for _, fd := range descriptions {
		if fd.Name == table.GeometryColumn {
			hasGeometry = true
			continue
		}
		fields = append(fields, fd.Name)
	}

	if !hasGeometry {
		return nil, fmt.Errorf("%w: %s has no column %q", datasource.ErrLayerInvalid, table.QualifiedName(), table.GeometryColumn)
	}

	return fields, nil
}
