/*
Package registry hosts the shared session table and the lifecycle machinery
around it.

Key architectural concepts:
  - Sessions: every game is an isolated mutation domain guarded by its own
    mutex; between sessions there is full parallelism.
  - Decoupling & backpressure: per-connection bounded buffers ensure that a
    slow websocket consumer cannot stall a session's mutator.
  - Concurrency management: session lookup is lock-free via sync.Map; ID
    minting uses optimistic insert-if-vacant with collision retry, so there
    is no global registry lock.
  - Resource reclamation: a janitor goroutine periodically evicts sessions
    that are empty and idle, or that have exceeded their hard lifetime cap.
*/
package registry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/sweeplab/minesweeper-live/internal/domain/model"
)

// ID minting policy: short human-readable tokens, a bounded number of
// retries per length, then graceful growth so minting stays O(1) expected
// for small populations.
const (
	initialIDLength      = 5
	maxAttemptsPerLength = 10
)

// Registry is the concurrent mapping of session IDs to live sessions.
type Registry struct {
	// sessions maintains the active table of session ID -> *Session.
	sessions sync.Map

	cleanupInterval time.Duration
	inactiveTimeout time.Duration
	activeTimeout   time.Duration
	sendBuffer      int

	logger   *slog.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New initializes the registry with functional options and starts the
// janitor goroutine.
func New(logger *slog.Logger, opts ...Option) *Registry {
	r := &Registry{
		cleanupInterval: time.Minute,
		inactiveTimeout: 10 * time.Minute,
		activeTimeout:   24 * time.Hour,
		sendBuffer:      64,
		logger:          logger,
		stopCh:          make(chan struct{}),
	}

	for _, opt := range opts {
		opt(r)
	}

	go r.runReaper()
	return r
}

// Create constructs a session for the given parameters, mints a collision-free
// ID and inserts it. Insertion is an optimistic LoadOrStore, so concurrent
// creates never lose an entry.
func (r *Registry) Create(params model.GameParams) (string, *Session) {
	params = params.Normalize()
	session := NewSession(params, r.sendBuffer, r.logger)

	length := initialIDLength
	for {
		for i := 0; i < maxAttemptsPerLength; i++ {
			id, err := gonanoid.New(length)
			if err != nil {
				// Only possible if the OS entropy source fails.
				continue
			}
			if _, loaded := r.sessions.LoadOrStore(id, session); !loaded {
				r.logger.Info("session created",
					"session_id", id,
					"width", params.Width, "height", params.Height, "bombs", params.Bombs)
				return id, session
			}
			r.logger.Debug("session ID collision, retrying", "session_id", id)
		}
		r.logger.Warn("exhausted ID attempts, growing length",
			"length", length, "next_length", length+1)
		length++
	}
}

// Get looks up a session by ID.
func (r *Registry) Get(id string) (*Session, bool) {
	val, ok := r.sessions.Load(id)
	if !ok {
		return nil, false
	}
	return val.(*Session), true
}

// Remove drops a session from the table and closes its remaining sinks.
// Removing an absent ID is a no-op.
func (r *Registry) Remove(id string) {
	if val, loaded := r.sessions.LoadAndDelete(id); loaded {
		val.(*Session).closeAll()
	}
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	n := 0
	r.sessions.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

func (r *Registry) runReaper() {
	ticker := time.NewTicker(r.cleanupInterval)
	defer ticker.Stop()

	r.logger.Info("session reaper started",
		"interval", r.cleanupInterval,
		"inactive_timeout", r.inactiveTimeout,
		"active_timeout", r.activeTimeout)

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.reap()
		}
	}
}

// reap runs one eviction cycle. First pass: mark every session that is
// reclaimable without waiting on its lock. Second pass: remove the marked
// IDs. Sessions whose lock is contended are in active use and skipped this
// tick.
func (r *Registry) reap() {
	now := time.Now()

	var marked []string
	r.sessions.Range(func(key, value any) bool {
		if value.(*Session).reapable(now, r.inactiveTimeout, r.activeTimeout) {
			marked = append(marked, key.(string))
		}
		return true
	})

	for _, id := range marked {
		r.Remove(id)
		r.logger.Debug("session reclaimed", "session_id", id)
	}

	if len(marked) > 0 {
		r.logger.Info("reaper cycle complete", "reclaimed", len(marked))
	}
}

// Shutdown stops the reaper and closes every session. Late Gets after
// shutdown observe an empty table.
func (r *Registry) Shutdown(context.Context) error {
	r.stopOnce.Do(func() { close(r.stopCh) })

	r.sessions.Range(func(key, value any) bool {
		r.sessions.Delete(key)
		value.(*Session).closeAll()
		return true
	})
	return nil
}
