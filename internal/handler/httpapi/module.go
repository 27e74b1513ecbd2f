package httpapi

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/sweeplab/minesweeper-live/config"
	"github.com/sweeplab/minesweeper-live/infra/ratelimit"
)

var Module = fx.Module("handler_httpapi",
	fx.Provide(
		NewCreateHandler,
		NewRouter,
		func(cfg *config.Config, logger *slog.Logger) (*ratelimit.Limiter, error) {
			return ratelimit.New(cfg.RateLimitPerMinute, cfg.RateLimitClientCache, logger)
		},
	),
)
