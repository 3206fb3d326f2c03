package datasource

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ekaya-inc/synmap/pkg/apperrors"
)

// mockLayerCatalog for testing factory
type mockLayerCatalog struct {
	config map[string]any
	closed bool
}

func (m *mockLayerCatalog) TestConnection(ctx context.Context) error {
	return nil
}

func (m *mockLayerCatalog) Close() error {
	m.closed = true
	return nil
}

func (m *mockLayerCatalog) ListGeometryTables(ctx context.Context) ([]GeometryTable, error) {
	return []GeometryTable{}, nil
}

func (m *mockLayerCatalog) DescribeLayer(ctx context.Context, table GeometryTable) ([]string, error) {
	return []string{}, nil
}

func registerMock(t *testing.T, dsType string, factory LayerCatalogFactory) {
	t.Helper()
	Register(DatasourceAdapterRegistration{
		Info:    DatasourceAdapterInfo{Type: dsType, DisplayName: "Mock"},
		Factory: factory,
	})
	t.Cleanup(func() {
		registryMu.Lock()
		delete(registry, dsType)
		registryMu.Unlock()
	})
}

func TestRegistryFactory_NewLayerCatalog(t *testing.T) {
	var gotConfig map[string]any
	registerMock(t, "mock_catalog", func(ctx context.Context, config map[string]any, logger *zap.Logger) (LayerCatalog, error) {
		gotConfig = config
		require.NotNil(t, logger)
		return &mockLayerCatalog{config: config}, nil
	})

	factory := NewDatasourceAdapterFactory(zaptest.NewLogger(t))
	config := map[string]any{"host": "localhost"}

	catalog, err := factory.NewLayerCatalog(context.Background(), "mock_catalog", config)
	require.NoError(t, err)
	require.NotNil(t, catalog)
	assert.Equal(t, config, gotConfig)
	assert.NoError(t, catalog.Close())
}

func TestRegistryFactory_UnregisteredType(t *testing.T) {
	factory := NewDatasourceAdapterFactory(nil)

	catalog, err := factory.NewLayerCatalog(context.Background(), "oracle_spatial", map[string]any{})
	require.Error(t, err)
	assert.Nil(t, catalog)
	assert.True(t, errors.Is(err, apperrors.ErrDependencyMissing))
	assert.Contains(t, err.Error(), "oracle_spatial")
}

func TestRegistryFactory_FactoryError(t *testing.T) {
	registerMock(t, "mock_failing", func(ctx context.Context, config map[string]any, logger *zap.Logger) (LayerCatalog, error) {
		return nil, errors.New("connection refused")
	})

	factory := NewDatasourceAdapterFactory(zaptest.NewLogger(t))

	_, err := factory.NewLayerCatalog(context.Background(), "mock_failing", nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, apperrors.ErrDependencyMissing))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRegistry_ListTypesSorted(t *testing.T) {
	registerMock(t, "zz_mock", func(ctx context.Context, config map[string]any, logger *zap.Logger) (LayerCatalog, error) {
		return &mockLayerCatalog{}, nil
	})
	registerMock(t, "aa_mock", func(ctx context.Context, config map[string]any, logger *zap.Logger) (LayerCatalog, error) {
		return &mockLayerCatalog{}, nil
	})

	assert.True(t, IsRegistered("zz_mock"))
	assert.False(t, IsRegistered("not_there"))
	assert.Nil(t, GetFactory("not_there"))

	types := NewDatasourceAdapterFactory(nil).ListTypes()
	var names []string
	for _, info := range types {
		names = append(names, info.Type)
	}
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "aa_mock")
	assert.Contains(t, names, "zz_mock")
}

func TestGeometryTable_QualifiedName(t *testing.T) {
	assert.Equal(t, "public.rios", GeometryTable{SchemaName: "public", TableName: "rios"}.QualifiedName())
	assert.Equal(t, "rios", GeometryTable{TableName: "rios"}.QualifiedName())
}
