package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	// Datasource adapters register themselves in init(); exclude one with -tags no<type>.
	_ "github.com/ekaya-inc/synmap/pkg/adapters/datasource/postgres"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(Version).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
