package registry

import "time"

// Option defines a functional configuration type for the Registry.
type Option func(*Registry)

// WithCleanupInterval configures how often the janitor process runs to
// reclaim memory from idle sessions.
func WithCleanupInterval(d time.Duration) Option {
	return func(r *Registry) {
		r.cleanupInterval = d
	}
}

// WithInactiveTimeout defines the quiet period after which a session without
// connections becomes eligible for eviction.
func WithInactiveTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.inactiveTimeout = d
	}
}

// WithActiveTimeout bounds total session lifetime. Sessions older than this
// are evicted even while connections remain; zero disables the cap.
func WithActiveTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.activeTimeout = d
	}
}

// WithSendBuffer sets the backpressure threshold: the outbound frame buffer
// capacity of each individual connection sink.
func WithSendBuffer(size int) Option {
	return func(r *Registry) {
		r.sendBuffer = size
	}
}
