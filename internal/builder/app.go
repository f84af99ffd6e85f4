package builder

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/futig/rag-backend/internal/watcher"
)

// App represents the application with all its components
type App struct {
	server  *http.Server
	watcher *watcher.Watcher
	core    *Core
	logger  *zap.Logger
}

// Run starts the application and all its daemons
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 2)

	// Start HTTP server in goroutine
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Start directory watcher if configured
	if a.watcher != nil {
		go func() {
			if err := a.watcher.Run(ctx); err != nil {
				errChan <- err
			}
		}()
	}

	// Wait for interrupt signal or component error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		a.logger.Error("Server error", zap.Error(err))
		cancel()
		a.shutdown()
		return err
	case sig := <-sigChan:
		a.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	}

	cancel()
	return a.shutdown()
}

// shutdown gracefully shuts down the application
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a.logger.Info("Shutting down server gracefully")

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("Server shutdown error", zap.Error(err))
		a.core.Close()
		return err
	}

	a.core.Close()
	a.logger.Info("Application stopped gracefully")
	return nil
}
