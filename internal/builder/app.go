package builder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// App is the HTTP flavour of Jarvis: the router plus the core it serves
type App struct {
	server *http.Server
	core   *Core
	logger *zap.Logger
}

// Run serves until SIGINT/SIGTERM or a listener failure, then drains
// in-flight requests and releases the core's clients
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer a.core.Close()

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("Jarvis is listening", zap.String("addr", a.server.Addr))
		serveErr <- a.server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		a.logger.Error("HTTP server failed", zap.Error(err))
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
		a.logger.Info("Shutdown requested, draining requests", zap.Duration("timeout", shutdownTimeout))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	a.logger.Info("Jarvis stopped")
	return nil
}
