package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/synmap/pkg/apperrors"
	"github.com/ekaya-inc/synmap/pkg/config"
	"github.com/ekaya-inc/synmap/pkg/models"
)

const testConfigYAML = `
env: "test"
mapping:
  threshold: 70
database:
  host: "localhost"
connections:
  - name: "bdgex"
    host: "bdgex.example.com"
    database: "edgv"
    user: "leitor"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// runCommand executes the CLI with args against a temporary config file.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SYNMAP_THRESHOLD", "")
	os.Unsetenv("SYNMAP_THRESHOLD")

	configPath := writeFile(t, "config.yaml", testConfigYAML)

	var out bytes.Buffer
	cmd := newRootCommand("test-version")
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", configPath}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestParseSQLCommand(t *testing.T) {
	sqlPath := writeFile(t, "model.sql", `
CREATE TABLE edgv.hid_trecho_drenagem_l (
	id serial NOT NULL,
	nome varchar(80),
	geom geometry(MultiLineString, 4674),
	CONSTRAINT pk PRIMARY KEY (id)
);
CREATE TABLE edgv.loc_marco_p (id integer, codigo varchar(10));
`)

	out, err := runCommand(t, "parse-sql", sqlPath)
	require.NoError(t, err)

	var catalog models.ClassCatalog
	require.NoError(t, json.Unmarshal([]byte(out), &catalog))
	assert.Equal(t, models.ClassCatalog{
		"hid_trecho_drenagem": {"id", "nome", "geom"},
		"loc_marco":           {"id", "codigo"},
	}, catalog)
}

func TestParseSQLCommand_NoClasses(t *testing.T) {
	sqlPath := writeFile(t, "empty.sql", "SELECT 1;")

	_, err := runCommand(t, "parse-sql", sqlPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNoClasses)
}

func TestParseSQLCommand_MissingFile(t *testing.T) {
	_, err := runCommand(t, "parse-sql", filepath.Join(t.TempDir(), "missing.sql"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAutomapCommand(t *testing.T) {
	out, err := runCommand(t, "automap", "--attributes", "id,nome,codigo", "--fields", "ID,Nome_Completo,Cod")
	require.NoError(t, err)

	var result struct {
		Mapping   *models.AttributeMapping `json:"mapping"`
		Summary   models.MappingSummary    `json:"summary"`
		Threshold int                      `json:"threshold"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	assert.Equal(t, 70, result.Threshold)
	assert.Equal(t, []string{"id", "nome", "codigo"}, result.Mapping.Attributes())
	field, ok := result.Mapping.Field("codigo")
	require.True(t, ok)
	assert.Equal(t, "Cod", field)
	assert.Equal(t, 3, result.Summary.Mapped)
}

func TestAutomapCommand_InvalidThreshold(t *testing.T) {
	_, err := runCommand(t, "automap", "--attributes", "nome", "--fields", "NOME", "--threshold", "150")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidThreshold)
}

func TestAutomapCommand_RequiresAttributes(t *testing.T) {
	_, err := runCommand(t, "automap", "--fields", "NOME")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--attributes")
}

func TestExtractDBCommand_UnknownConnection(t *testing.T) {
	_, err := runCommand(t, "extract-db", "--connection", "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestExtractDBCommand_RequiresTarget(t *testing.T) {
	_, err := runCommand(t, "extract-db", "--host", "db.local")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host, database and user are required")
}

func TestExtractDBCommand_UnregisteredType(t *testing.T) {
	_, err := runCommand(t, "extract-db", "--connection", "bdgex", "--type", "oracle")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDependencyMissing)
}

func TestLoadSynonyms(t *testing.T) {
	path := writeFile(t, "synonyms.yaml", "rio:\n  - curso_dagua\n")

	synonyms, err := loadSynonyms(config.MappingConfig{SynonymsFile: path})
	require.NoError(t, err)
	assert.Equal(t, []string{"curso_dagua"}, synonyms.SynonymsOf("rio"))

	synonyms, err = loadSynonyms(config.MappingConfig{SynonymsFile: path, Inflections: true})
	require.NoError(t, err)
	assert.Contains(t, synonyms.SynonymsOf("rio"), "rios")

	_, err = loadSynonyms(config.MappingConfig{SynonymsFile: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"local", "production"} {
		logger, err := newLogger(env, true)
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(-1), "debug should be enabled for %s", env)
	}

	logger, err := newLogger("production", false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))
}

func TestHTTPHandler(t *testing.T) {
	a, err := newApp(writeFile(t, "config.yaml", testConfigYAML), "test-version", false)
	require.NoError(t, err)
	handler := a.newHTTPHandler()

	t.Run("ping lists adapters", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

		var ping struct {
			Version  string   `json:"version"`
			Adapters []string `json:"adapters"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&ping))
		assert.Equal(t, "test-version", ping.Version)
		assert.Contains(t, ping.Adapters, "postgres")
	})

	t.Run("catalog from sql", func(t *testing.T) {
		body := `{"sql":"CREATE TABLE public.roads_a (id integer, name varchar(50));"}`
		req := httptest.NewRequest(http.MethodPost, "/api/catalog/sql", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"roads"`)
	})

	t.Run("mcp tools list", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","method":"tools/list","id":1}`
		req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "auto_map_attributes")
	})
}
