package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 5 * time.Second

// ServeMCP runs sketchpad as a standalone MCP server on stdin/stdout.
// It initializes storage and services and serves until the client
// disconnects or the process is interrupted. Dirty documents are saved on
// the way out.
func ServeMCP(configPath string) error {
	a, err := New(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.Startup(ctx); err != nil {
		return err
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer scancel()
		a.Shutdown(sctx)
	}()

	errc := make(chan error, 1)
	go func() { errc <- a.mcp.ServeStdio() }()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
	case <-ctx.Done():
		a.logger.Info("shutting down")
	}
	return nil
}
