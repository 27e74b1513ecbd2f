package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sweeplab/minesweeper-live/config"
	"github.com/sweeplab/minesweeper-live/infra/ratelimit"
	"github.com/sweeplab/minesweeper-live/internal/handler/ws"
)

// NewRouter assembles the public HTTP surface: session creation (rate
// limited), the websocket upgrade endpoint and a health probe, all behind
// the CORS allowlist.
func NewRouter(
	cfg *config.Config,
	createHandler *CreateHandler,
	wsHandler *ws.WSHandler,
	limiter *ratelimit.Limiter,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	r.With(limiter.Middleware).Post("/create", createHandler.ServeHTTP)
	r.Get("/ws", wsHandler.ServeHTTP)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}
