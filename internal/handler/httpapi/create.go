package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/sweeplab/minesweeper-live/infra/ratelimit"
	"github.com/sweeplab/minesweeper-live/internal/domain/model"
	"github.com/sweeplab/minesweeper-live/internal/service"
)

// maxCreateBody bounds the /create request body; the params object is tiny.
const maxCreateBody = 1 << 16

// CreateHandler allocates new game sessions.
type CreateHandler struct {
	logger *slog.Logger
	gamer  service.Gamer
}

func NewCreateHandler(logger *slog.Logger, gamer service.Gamer) *CreateHandler {
	return &CreateHandler{logger: logger, gamer: gamer}
}

func (h *CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCreateBody))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	params := model.DefaultParams()
	if len(bytes.TrimSpace(body)) > 0 {
		params, err = model.DecodeParams(body)
		if err != nil {
			http.Error(w, "invalid game parameters", http.StatusBadRequest)
			return
		}
	}

	id := h.gamer.Create(params)
	h.logger.Info("game created",
		"session_id", id, "client_ip", ratelimit.ClientIP(r),
		"width", params.Width, "height", params.Height, "bombs", params.Bombs)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(model.CreateResponse{ID: id}); err != nil {
		h.logger.Error("create response encode failed", "error", err)
	}
}
