package registry

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/sweeplab/minesweeper-live/config"
)

var Module = fx.Module("registry",
	fx.Provide(
		func(cfg *config.Config, logger *slog.Logger) *Registry {
			return New(logger,
				WithCleanupInterval(cfg.CleanupInterval),
				WithInactiveTimeout(cfg.InactiveTimeout),
				WithActiveTimeout(cfg.ActiveTimeout),
				WithSendBuffer(cfg.ConnSendBuffer),
			)
		},
	),
	fx.Invoke(func(lc fx.Lifecycle, r *Registry) {
		lc.Append(fx.Hook{OnStop: r.Shutdown})
	}),
)
