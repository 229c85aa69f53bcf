package queue

import (
	"context"
	"sync"

	"github.com/jabolina/pleroma/internal/vat"
)

// Ready is the ready queue (spec.md section 4.3): a blocking MPMC queue
// of vats that have pending work. It enforces the invariant that a vat
// appears in the queue at most once at a time - Push on an already
// queued vat is a no-op.
type Ready struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []*vat.Vat
	queued  map[*vat.Vat]struct{}
	closed  bool
}

// NewReady creates an empty ready queue.
func NewReady() *Ready {
	r := &Ready{queued: make(map[*vat.Vat]struct{})}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// Push enqueues v if it is not already in the queue and has pending
// work. Producers: the network thread after delivering inbound
// messages, node bootstrap, and (indirectly, via the router) a burner
// re-admitting a vat after flushing its turn.
func (r *Ready) Push(v *vat.Vat) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if _, already := r.queued[v]; already {
		return
	}
	if !v.HasWork() {
		return
	}
	r.queued[v] = struct{}{}
	r.items = append(r.items, v)
	r.cond.Signal()
}

// Pop blocks until a vat is ready, the queue closes, or ctx is done.
func (r *Ready) Pop(ctx context.Context) (*vat.Vat, bool) {
	done := make(chan struct{})
	if ctx != nil {
		go func() {
			select {
			case <-ctx.Done():
				r.mu.Lock()
				r.cond.Broadcast()
				r.mu.Unlock()
			case <-done:
			}
		}()
		defer close(done)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for len(r.items) == 0 && !r.closed {
		if ctx != nil && ctx.Err() != nil {
			return nil, false
		}
		r.cond.Wait()
	}
	if len(r.items) == 0 {
		return nil, false
	}
	v := r.items[0]
	r.items = r.items[1:]
	delete(r.queued, v)
	return v, true
}

// Close wakes every blocked consumer permanently.
func (r *Ready) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.cond.Broadcast()
}

// Len reports how many vats are currently queued.
func (r *Ready) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
