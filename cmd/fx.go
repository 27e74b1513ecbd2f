package cmd

import (
	"log/slog"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/sweeplab/minesweeper-live/config"
	httpserver "github.com/sweeplab/minesweeper-live/infra/server/http"
	"github.com/sweeplab/minesweeper-live/internal/domain/registry"
	"github.com/sweeplab/minesweeper-live/internal/handler/httpapi"
	"github.com/sweeplab/minesweeper-live/internal/handler/ws"
	"github.com/sweeplab/minesweeper-live/internal/service"
)

func NewApp(cfg *config.Config) *fx.App {
	return fx.New(
		fx.Provide(
			func() *config.Config { return cfg },
			ProvideLogger,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger}
		}),
		registry.Module,
		service.Module,
		ws.Module,
		httpapi.Module,
		httpserver.Module,
	)
}

func ProvideLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
