package registry

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sweeplab/minesweeper-live/internal/domain/game"
	"github.com/sweeplab/minesweeper-live/internal/domain/model"
)

// sendTimeout is the per-sink delivery window during a broadcast. A
// connection that cannot absorb a frame within it has the frame shed.
const sendTimeout = 250 * time.Millisecond

// Session is one independent game: a field plus the set of live connections
// spectating it. Every operation serializes on the session mutex, and the
// mutex is held across the broadcast so a joining connection's init frame
// can never interleave into the middle of an in-flight update.
type Session struct {
	mu sync.Mutex

	field *game.Field
	conns map[uuid.UUID]Connector

	// lastActivity also moves on join and leave, so a session whose last
	// player just left keeps its full idle grace period.
	lastActivity time.Time
	createdAt    time.Time

	sendBuffer int
	logger     *slog.Logger
}

// NewSession builds a session around a freshly generated field.
func NewSession(params model.GameParams, sendBuffer int, logger *slog.Logger) *Session {
	now := time.Now()
	return &Session{
		field:        game.New(params),
		conns:        make(map[uuid.UUID]Connector),
		lastActivity: now,
		createdAt:    now,
		sendBuffer:   sendBuffer,
		logger:       logger,
	}
}

// Join mints a sink for a new connection, delivers the current board
// snapshot into it, and registers it for future broadcasts. The init frame
// is enqueued before the sink becomes visible to broadcasts, so it is always
// the first frame the consumer sees.
func (s *Session) Join(ctx context.Context) (Connector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn := newConnector(ctx, s.sendBuffer)

	frame, err := json.Marshal(s.field.Snapshot())
	if err != nil {
		conn.Close()
		return nil, err
	}
	// Buffer is empty at this point, so the enqueue cannot block.
	conn.Send(frame, sendTimeout)

	s.conns[conn.ID()] = conn
	s.lastActivity = time.Now()

	s.logger.Info("connection joined", "conn_id", conn.ID(), "connections", len(s.conns))
	return conn, nil
}

// Leave removes a connection from the set. Unknown IDs are a no-op.
func (s *Session) Leave(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conns[id]; ok {
		delete(s.conns, id)
		s.logger.Info("connection left", "conn_id", id, "connections", len(s.conns))
	}
	s.lastActivity = time.Now()
}

// Reveal uncovers the cell at pos. Revealing a bomb ends the game and
// exposes every bomb; revealing a safe zero-adjacency cell flood-fills its
// neighborhood. Out-of-bounds positions, finished games, flagged cells and
// already-revealed cells are silently ignored.
func (s *Session) Reveal(pos model.Pos) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.field.InBounds(pos) || s.field.Finished() {
		return
	}
	s.lastActivity = time.Now()

	// A flag protects against accidental explosion.
	if s.field.IsFlagged(pos) {
		return
	}

	if s.field.IsBomb(pos) {
		updates := s.field.RevealBombs(nil)
		s.field.Finish()
		s.logger.Info("game lost", "bombs_revealed", len(updates))
		s.broadcast(model.NewUpdateMessage(updates, false, true))
		return
	}

	updates := s.field.Reveal(pos, nil)
	if len(updates) == 0 {
		// Already revealed: nothing changed, nothing to fan out.
		return
	}

	won := s.field.Won()
	if won {
		s.field.Finish()
		s.logger.Info("game won", "revealed", s.field.Revealed())
	}
	s.broadcast(model.NewUpdateMessage(updates, won, false))
}

// Flag cycles the annotation at pos through hidden -> flagged -> marked ->
// hidden. Annotations never affect win or loss; revealed cells are left
// alone.
func (s *Session) Flag(pos model.Pos) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.field.InBounds(pos) || s.field.Finished() {
		return
	}
	s.lastActivity = time.Now()

	update, changed := s.field.CycleFlag(pos)
	if !changed {
		return
	}
	s.broadcast(model.NewUpdateMessage([]model.CellUpdate{update}, false, false))
}

// Restart replaces the field with a fresh one and pushes an authoritative
// init snapshot to every connection.
func (s *Session) Restart(params model.GameParams) {
	s.mu.Lock()
	defer s.mu.Unlock()

	params = params.Normalize()
	s.field = game.New(params)
	s.lastActivity = time.Now()

	s.logger.Info("game restarted",
		"width", params.Width, "height", params.Height, "bombs", params.Bombs,
		"connections", len(s.conns))
	s.broadcast(s.field.Snapshot())
}

// broadcast encodes the event once and fans it out to every registered sink
// concurrently, so N slow consumers cost O(max), not O(sum). Callers hold
// the session mutex. Individual send failures are tolerated; the failing
// consumer's handler will detect closure and call Leave on its own.
func (s *Session) broadcast(event any) {
	if len(s.conns) == 0 {
		return
	}

	frame, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("event encode failed, broadcast skipped", "error", err)
		return
	}

	var g errgroup.Group
	for _, conn := range s.conns {
		conn := conn
		g.Go(func() error {
			if !conn.Send(frame, sendTimeout) {
				s.logger.Warn("frame dropped for slow or closed sink", "conn_id", conn.ID())
			}
			return nil
		})
	}
	_ = g.Wait()
}

// ConnCount reports the number of live connections.
func (s *Session) ConnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// reapable decides whether the reaper may evict this session. It refuses to
// wait on the lock: a session in active use is simply skipped this tick.
// activeTimeout, when positive, bounds total session lifetime even while
// connections remain.
func (s *Session) reapable(now time.Time, inactiveTimeout, activeTimeout time.Duration) bool {
	if !s.mu.TryLock() {
		return false
	}
	defer s.mu.Unlock()

	if activeTimeout > 0 && now.Sub(s.createdAt) > activeTimeout {
		return true
	}
	if len(s.conns) > 0 {
		return false
	}
	return now.Sub(s.lastActivity) > inactiveTimeout
}

// closeAll terminates every remaining sink. Called on eviction and on
// registry shutdown.
func (s *Session) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, conn := range s.conns {
		conn.Close()
		delete(s.conns, id)
	}
}
