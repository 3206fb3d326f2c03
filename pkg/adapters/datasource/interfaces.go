package datasource

import (
	"context"
	"errors"
)

// ErrLayerInvalid is returned by DescribeLayer when a table cannot be opened
// as a layer on the requested geometry column.
var ErrLayerInvalid = errors.New("layer is not valid")

// ConnectionTester verifies an open database connection.
// Each implementation owns its connection and must be closed when done.
type ConnectionTester interface {
	// TestConnection checks the server answers and is the requested database.
	TestConnection(ctx context.Context) error

	// Close releases the database connection.
	Close() error
}

// LayerCatalog discovers spatial tables and describes them as layers.
// Each implementation owns its connection and must be closed when done.
type LayerCatalog interface {
	ConnectionTester

	// ListGeometryTables returns every row of the spatial catalog in server order.
	// Duplicate tables are returned as-is.
	ListGeometryTables(ctx context.Context) ([]GeometryTable, error)

	// DescribeLayer opens the table as a layer on its geometry column and
	// returns the layer's attribute fields in column order.
	DescribeLayer(ctx context.Context, table GeometryTable) ([]string, error)
}
