package registry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Interface guard
var _ Connector = (*connect)(nil)

// Connector is the outbound sink handed to a transport handler when it joins
// a session. The session pushes pre-encoded frames into it; the handler
// drains Recv and writes to the actual socket.
type Connector interface {
	ID() uuid.UUID
	Send(frame []byte, timeout time.Duration) bool // thread-safe send with backpressure handling
	Recv() <-chan []byte
	Done() <-chan struct{}
	Close() // terminate the sink and release resources
}

// connect is the concrete sink (unexported to force interface usage).
type connect struct {
	id       uuid.UUID
	ctx      context.Context
	cancelFn context.CancelFunc
	sendCh   chan []byte

	closeOnce sync.Once

	// [ATOMIC_FIELD] counts frames shed under backpressure
	droppedCount uint64
}

// newConnector builds a sink with a bounded outbound buffer. The buffer is
// the shock absorber that keeps one slow consumer from stalling the
// session's broadcast.
func newConnector(ctx context.Context, bufferSize int) *connect {
	childCtx, cancel := context.WithCancel(ctx)
	return &connect{
		id:       uuid.New(),
		ctx:      childCtx,
		cancelFn: cancel,
		sendCh:   make(chan []byte, bufferSize),
	}
}

func (c *connect) ID() uuid.UUID { return c.id }

// Send enqueues a frame, waiting up to timeout for buffer space. A sink that
// stays saturated for the whole window sheds the frame instead of holding
// the session's mutator hostage; the consumer's eventual disconnect is
// detected by its read loop and routed through the session's Leave.
func (c *connect) Send(frame []byte, timeout time.Duration) bool {
	// [LIFECYCLE_GATE] Abort immediately if the transport is already dead.
	select {
	case <-c.ctx.Done():
		return false
	default:
	}

	select {
	case c.sendCh <- frame:
		return true
	default:
	}

	// Buffer full: wait out the delivery window to smooth transient jitter.
	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-c.ctx.Done():
		return false
	case c.sendCh <- frame:
		return true
	case <-t.C:
		// [BACKPRESSURE] Drop the frame to protect the session's mutator.
		atomic.AddUint64(&c.droppedCount, 1)
		return false
	}
}

// Recv exposes the outbound frame stream. The channel is never closed;
// consumers must select against Done.
func (c *connect) Recv() <-chan []byte { return c.sendCh }

// Done is closed once the sink has been terminated.
func (c *connect) Done() <-chan struct{} { return c.ctx.Done() }

// Dropped reports how many frames this sink shed under backpressure.
func (c *connect) Dropped() uint64 { return atomic.LoadUint64(&c.droppedCount) }

// Close terminates the sink. The send channel is deliberately left open:
// a broadcast may still hold a reference while the handler tears down, and
// cancelling the context already unblocks both sides.
func (c *connect) Close() {
	c.closeOnce.Do(c.cancelFn)
}
