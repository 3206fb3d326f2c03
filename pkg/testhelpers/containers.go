// Package testhelpers provides utilities for testing synmap components.
package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ekaya-inc/synmap/pkg/models"
	"github.com/ekaya-inc/synmap/pkg/retry"
)

// PostGISTestImage is the PostGIS image used for integration tests.
const PostGISTestImage = "postgis/postgis:16-3.4"

const (
	testUser     = "synmap"
	testPassword = "test_password"
	testDatabase = "gis_test"
)

// FixtureSQL creates a small EDGV-style layer model. It is applied once
// when the shared container starts.
const FixtureSQL = `
CREATE EXTENSION IF NOT EXISTS postgis;
CREATE SCHEMA IF NOT EXISTS edgv;

CREATE TABLE edgv.hid_trecho_drenagem_l (
	id serial PRIMARY KEY,
	nome varchar(80),
	geometriaaproximada boolean,
	geom geometry(MultiLineString, 4674)
);

CREATE TABLE edgv.tra_trecho_rodoviario_l (
	id serial PRIMARY KEY,
	codtrechorodoviario varchar(25),
	nome varchar(80),
	geom geometry(LineString, 4674)
);

CREATE TABLE edgv.loc_marco_p (
	geom geometry(Point, 4674)
);

CREATE TABLE public.cobertura_terrestre_a (
	id serial PRIMARY KEY,
	"Descricao" text,
	tipo smallint,
	geom geometry(Polygon, 4326)
);

CREATE TABLE public.sem_geometria (
	id serial PRIMARY KEY,
	nome text
);
`

// TestDB holds a shared PostGIS container and connection pool.
type TestDB struct {
	Container testcontainers.Container
	Pool      *pgxpool.Pool
	ConnStr   string
	Host      string
	Port      int
}

// ConnectionParams returns the parameters a caller would type in to reach
// the test database.
func (db *TestDB) ConnectionParams() models.ConnectionParams {
	return models.ConnectionParams{
		Type:     models.DefaultDatasourceType,
		Host:     db.Host,
		Port:     db.Port,
		Database: testDatabase,
		User:     testUser,
		Password: testPassword,
		SSLMode:  "disable",
	}
}

var (
	sharedTestDB     *TestDB
	sharedTestDBOnce sync.Once
	sharedTestDBErr  error
)

// GetTestDB returns a shared PostGIS container for integration tests.
// The container is created once and reused across all tests in the run.
func GetTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedTestDBOnce.Do(func() {
		sharedTestDB, sharedTestDBErr = setupTestDB()
	})

	if sharedTestDBErr != nil {
		t.Fatalf("Failed to setup test database: %v", sharedTestDBErr)
	}

	return sharedTestDB
}

func setupTestDB() (*TestDB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        PostGISTestImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       testDatabase,
			"POSTGRES_USER":     testUser,
			"POSTGRES_PASSWORD": testPassword,
		},
		// The image restarts the server once after running its init scripts.
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(120 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		testUser, testPassword, host, port.Port(), testDatabase)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := retry.Do(ctx, retry.DefaultConfig(), func() error { return pool.Ping(ctx) }); err != nil {
		return nil, fmt.Errorf("failed to reach test database: %w", err)
	}

	if _, err := pool.Exec(ctx, FixtureSQL); err != nil {
		return nil, fmt.Errorf("failed to load fixture schema: %w", err)
	}

	return &TestDB{
		Container: container,
		Pool:      pool,
		ConnStr:   connStr,
		Host:      host,
		Port:      port.Int(),
	}, nil
}
