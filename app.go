package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/synmap/pkg/adapters/datasource"
	"github.com/ekaya-inc/synmap/pkg/config"
	"github.com/ekaya-inc/synmap/pkg/matching"
	"github.com/ekaya-inc/synmap/pkg/mcp"
	"github.com/ekaya-inc/synmap/pkg/mcp/tools"
	"github.com/ekaya-inc/synmap/pkg/services"
)

// app holds the collaborators shared by every command.
type app struct {
	cfg            *config.Config
	logger         *zap.Logger
	synonyms       *matching.SynonymTable
	catalogService services.CatalogService
	autoMapper     services.AutoMapper
}

func newApp(configPath, version string, debug bool) (*app, error) {
	cfg, err := config.Load(configPath, version)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Env, debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	synonyms, err := loadSynonyms(cfg.Mapping)
	if err != nil {
		return nil, err
	}

	adapterFactory := datasource.NewDatasourceAdapterFactory(logger.Named("datasource"))

	return &app{
		cfg:            cfg,
		logger:         logger,
		synonyms:       synonyms,
		catalogService: services.NewCatalogService(adapterFactory, logger.Named("catalog")),
		autoMapper:     services.NewAutoMapper(matching.NewFuzzyMatcher(), logger.Named("automap")),
	}, nil
}

// newLogger builds a development logger for local runs and a JSON
// production logger otherwise. Both write to stderr.
func newLogger(env string, debug bool) (*zap.Logger, error) {
	logConfig := zap.NewProductionConfig()
	if env == "local" {
		logConfig = zap.NewDevelopmentConfig()
	}
	logConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if debug {
		logConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return logConfig.Build()
}

func loadSynonyms(cfg config.MappingConfig) (*matching.SynonymTable, error) {
	synonyms := matching.DefaultSynonyms()
	if cfg.SynonymsFile != "" {
		loaded, err := matching.LoadSynonyms(cfg.SynonymsFile)
		if err != nil {
			return nil, err
		}
		synonyms = loaded
	}
	if cfg.Inflections {
		synonyms = synonyms.WithInflections()
	}
	return synonyms, nil
}

func (a *app) mcpServer() *mcp.Server {
	return mcp.NewServer("synmap", a.cfg.Version, &tools.MCPToolDeps{
		CatalogService: a.catalogService,
		AutoMapper:     a.autoMapper,
		Synonyms:       a.synonyms,
		Config:         a.cfg,
		Logger:         a.logger.Named("mcp"),
	}, a.logger)
}
