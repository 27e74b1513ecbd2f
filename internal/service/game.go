package service

import (
	"github.com/sweeplab/minesweeper-live/internal/domain/model"
	"github.com/sweeplab/minesweeper-live/internal/domain/registry"
)

// Gamer is the primary interface for transport handlers (HTTP/WebSocket).
type Gamer interface {
	Create(params model.GameParams) string
	Resolve(id string) (*registry.Session, bool)
}

// GameService implements Gamer on top of the session registry.
type GameService struct {
	registry *registry.Registry
}

// NewGameService returns a production-ready instance of the service.
func NewGameService(reg *registry.Registry) *GameService {
	return &GameService{registry: reg}
}

// Create allocates a new session and returns its public ID.
func (s *GameService) Create(params model.GameParams) string {
	id, _ := s.registry.Create(params)
	return id
}

// Resolve looks up a live session by its public ID.
func (s *GameService) Resolve(id string) (*registry.Session, bool) {
	return s.registry.Get(id)
}
