// Package http binds the chi router to an HTTP server managed by the fx
// lifecycle.
package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"

	"github.com/sweeplab/minesweeper-live/config"
)

// New constructs the server and registers start/stop hooks. Read and write
// timeouts guard plain HTTP requests only; the websocket upgrader clears
// per-connection deadlines after hijacking.
func New(lc fx.Lifecycle, cfg *config.Config, handler http.Handler, logger *slog.Logger) *http.Server {
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("http server listening", "addr", ln.Addr().String())
			go func() {
				if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
					logger.Error("http server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("http server shutting down")
			return srv.Shutdown(ctx)
		},
	})

	return srv
}
