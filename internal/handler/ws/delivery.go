package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/sweeplab/minesweeper-live/config"
	"github.com/sweeplab/minesweeper-live/internal/domain/model"
	"github.com/sweeplab/minesweeper-live/internal/domain/registry"
	"github.com/sweeplab/minesweeper-live/internal/service"
)

// WSHandler upgrades /ws requests and drives one connection through its
// lifetime: join the session, pump outbound frames, decode inbound actions.
type WSHandler struct {
	logger   *slog.Logger
	gamer    service.Gamer
	upgrader websocket.Upgrader
}

func NewWSHandler(logger *slog.Logger, gamer service.Gamer, cfg *config.Config) *WSHandler {
	allowed := make(map[string]struct{}, len(cfg.CORSAllowedOrigins))
	for _, origin := range cfg.CORSAllowedOrigins {
		allowed[origin] = struct{}{}
	}

	return &WSHandler{
		logger: logger,
		gamer:  gamer,
		upgrader: websocket.Upgrader{
			// Browsers enforce CORS on XHR but not on websocket upgrades,
			// so the allowlist is checked here as well. Requests without an
			// Origin header (CLI clients, tests) pass.
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	session, ok := h.gamer.Resolve(id)
	if !ok {
		h.logger.Warn("ws join for unknown session", "session_id", id)
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	sock, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws upgrade failed", "session_id", id, "error", err)
		return
	}
	defer sock.Close()

	conn, err := session.Join(r.Context())
	if err != nil {
		h.logger.Error("ws join failed", "session_id", id, "error", err)
		return
	}
	defer session.Leave(conn.ID())
	defer conn.Close()

	h.logger.Info("ws opened", "session_id", id, "conn_id", conn.ID())

	go h.writePump(sock, conn)
	h.readLoop(sock, session, id)

	h.logger.Info("ws closed", "session_id", id, "conn_id", conn.ID())
}

// writePump drains the session sink onto the socket. It owns all writes, so
// the socket never sees concurrent WriteMessage calls. A write failure or
// sink termination closes the socket, which in turn unblocks the read loop.
func (h *WSHandler) writePump(sock *websocket.Conn, conn registry.Connector) {
	for {
		select {
		case <-conn.Done():
			_ = sock.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			sock.Close()
			return
		case frame := <-conn.Recv():
			if err := sock.WriteMessage(websocket.TextMessage, frame); err != nil {
				h.logger.Warn("ws send failed", "conn_id", conn.ID(), "error", err)
				conn.Close()
				sock.Close()
				return
			}
		}
	}
}

// readLoop decodes inbound frames into session operations. Malformed or
// unknown frames are logged and skipped; only a close frame or a transport
// error ends the loop.
func (h *WSHandler) readLoop(sock *websocket.Conn, session *registry.Session, id string) {
	for {
		msgType, data, err := sock.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		msg, err := model.DecodeClientMessage(data)
		if err != nil {
			h.logger.Warn("invalid client frame", "session_id", id, "error", err)
			continue
		}

		switch msg.Action {
		case model.ActionReveal:
			session.Reveal(*msg.Pos)
		case model.ActionFlag:
			session.Flag(*msg.Pos)
		case model.ActionRestart:
			session.Restart(*msg.Params)
		}
	}
}
