package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/synmap/pkg/adapters/datasource"
	"github.com/ekaya-inc/synmap/pkg/handlers"
	"github.com/ekaya-inc/synmap/pkg/middleware"
)

const shutdownTimeout = 10 * time.Second

// newHTTPHandler wires the JSON API and the MCP endpoint onto one mux.
func (a *app) newHTTPHandler() http.Handler {
	mux := http.NewServeMux()

	handlers.NewHealthHandler(a.cfg, a.logger).RegisterRoutes(mux)
	handlers.NewCatalogHandler(a.catalogService, a.cfg, a.logger).RegisterRoutes(mux)
	handlers.NewMappingHandler(a.autoMapper, a.synonyms, a.cfg.Mapping.Threshold, a.logger).RegisterRoutes(mux)
	handlers.NewMCPHandler(a.mcpServer(), a.logger.Named("mcp")).RegisterRoutes(mux)

	return middleware.RequestLogger(a.logger)(mux)
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down.
func (a *app) serve(ctx context.Context) error {
	addr := net.JoinHostPort(a.cfg.BindAddr, a.cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.newHTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	adapterTypes := make([]string, 0)
	for _, info := range datasource.RegisteredAdapters() {
		adapterTypes = append(adapterTypes, info.Type)
	}

	a.logger.Info("Starting synmap",
		zap.String("addr", addr),
		zap.String("version", a.cfg.Version),
		zap.String("env", a.cfg.Env),
		zap.Int("threshold", a.cfg.Mapping.Threshold),
		zap.Int("synonyms", a.synonyms.Len()),
		zap.Strings("adapters", adapterTypes),
		zap.Int("connections", len(a.cfg.Connections)))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down synmap")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
