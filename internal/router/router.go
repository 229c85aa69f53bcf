// Package router implements the network thread (spec.md section 4.4):
// the single owner of the transport and the peer table. It drains
// parked vats from the burner pool, routes each outbound message either
// to a local vat's mailbox or onto the transport, and pushes inbound
// network messages into the right local vat before re-admitting it to
// the ready queue.
//
// A vat's mailbox is only ever safe to touch while the vat is "idle" -
// parked with the router and not currently sitting in the ready queue or
// running inside a burner (spec.md section 2/5's idle/ready/running
// states). Inbound traffic that arrives for a vat which is not idle - it
// is ready or running - cannot be merged into its mailbox directly
// without racing the burner that owns it; instead it is buffered per-vat
// (standing in for spec.md section 4.4's net_in_queue) until that vat's
// burner parks it (arriving on the pool's Parked channel, standing in
// for net_vats), at which point the router is the sole thread allowed to
// touch the vat's interior again and merges the buffered mail before
// deciding whether to re-admit it to the ready queue.
package router

import (
	"context"
	"sync"

	"github.com/jabolina/pleroma/internal/address"
	"github.com/jabolina/pleroma/internal/burner"
	"github.com/jabolina/pleroma/internal/logging"
	"github.com/jabolina/pleroma/internal/message"
	"github.com/jabolina/pleroma/internal/queue"
	"github.com/jabolina/pleroma/internal/transport"
	"github.com/jabolina/pleroma/internal/vat"
)

// vatEntry tracks one local vat plus the bookkeeping the router needs to
// know whether it may safely touch that vat's mailbox right now.
type vatEntry struct {
	v *vat.Vat

	// pending buffers messages that arrived while inFlight was true -
	// the per-vat slice of spec.md section 4.4's net_in_queue.
	pending []message.Message

	// inFlight is true from the moment this vat is pushed onto the ready
	// queue until the burner that eventually runs it hands it back via
	// Parked. While true, the router must not call v.Enqueue directly.
	inFlight bool
}

// Router owns the transport and the table of local vats.
type Router struct {
	node address.NodeID
	t    transport.Transport
	log  logging.Logger

	mu   sync.RWMutex
	vats map[address.VatID]*vatEntry

	ready *queue.Ready
	pool  *burner.Pool
}

// New creates a router bound to a node's local vat set, its transport,
// the ready queue vats are re-admitted through, and the burner pool
// whose parked/fault channels it drains.
func New(node address.NodeID, t transport.Transport, ready *queue.Ready, pool *burner.Pool, log logging.Logger) *Router {
	return &Router{
		node:  node,
		t:     t,
		log:   log,
		vats:  make(map[address.VatID]*vatEntry),
		ready: ready,
		pool:  pool,
	}
}

// Register adds a local vat, idle and owned by the router, so inbound
// and same-node traffic can be delivered to it once it is Admitted or
// receives its first message.
func (r *Router) Register(v *vat.Vat) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vats[v.ID] = &vatEntry{v: v}
}

// Admit re-admits a freshly bootstrapped vat to the ready queue if it
// already has pending work (for instance the synthetic hello Inoculate
// enqueued). Node.Run calls this for every vat instead of pushing it onto
// the ready queue itself, so the router's inFlight bookkeeping for it
// starts out consistent with where the vat actually is.
func (r *Router) Admit(v *vat.Vat) {
	entry, ok := r.entry(v.ID)
	if !ok {
		return
	}
	r.admit(entry)
}

func (r *Router) entry(id address.VatID) (*vatEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.vats[id]
	return e, ok
}

// admit pushes entry's vat onto the ready queue if it has work, marking
// it inFlight so the router knows not to touch its mailbox again until
// it comes back through handleParked. Called only from the router's own
// goroutine, except for the Admit calls Node.Run makes for each vat
// before the router loop starts (see Admit's doc comment).
func (r *Router) admit(entry *vatEntry) {
	if entry.v.HasWork() {
		entry.inFlight = true
		r.ready.Push(entry.v)
	}
}

// Run services parked vats, inbound network messages and faults until
// ctx is cancelled. A fault reported by the pool is fatal to the node:
// it is logged with Logger.Fatalf, which with the default logger exits
// the process. Every handler below runs on this single goroutine,
// which is what makes mutating vatEntry.pending/inFlight here safe
// without its own lock.
func (r *Router) Run(ctx context.Context) {
	inbound := r.t.Listen()
	parked := r.pool.Parked()
	faults := r.pool.Faults()

	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-parked:
			if !ok {
				return
			}
			r.handleParked(p)
		case in, ok := <-inbound:
			if !ok {
				return
			}
			r.handleInbound(in)
		case f, ok := <-faults:
			if !ok {
				return
			}
			r.log.Fatalf("node %d: vat %d faulted: %v", r.node, f.Vat.ID, f.Err)
		}
	}
}

// handleParked is invoked when a burner hands back a vat it just ran a
// turn on. This is the one moment the router is guaranteed the vat is
// not owned by any burner, so it is the only place allowed to merge
// buffered mail into the vat's mailbox and decide whether to re-admit
// it.
func (r *Router) handleParked(p burner.Parked) {
	entry, ok := r.entry(p.Vat.ID)
	if !ok {
		r.log.Warnf("node %d: parked unknown vat %d", r.node, p.Vat.ID)
		return
	}
	entry.inFlight = false

	for _, m := range p.Out {
		if m.Destination.Node == r.node {
			r.deliverLocal(m)
			continue
		}
		if err := r.t.Send(m.Destination.Node, m); err != nil {
			r.log.Warnf("node %d: dropping message to node %d: %v", r.node, m.Destination.Node, err)
		}
	}

	for _, m := range entry.pending {
		entry.v.Enqueue(m)
	}
	entry.pending = nil
	r.admit(entry)
}

func (r *Router) handleInbound(in transport.Inbound) {
	r.deliverLocal(in.Msg)
}

// deliverLocal routes a message addressed to a local vat - either
// received off the transport or produced by another vat's flush phase.
// If the destination vat is idle (not inFlight), its mailbox is safe to
// touch directly and it is admitted to the ready queue right away.
// Otherwise the message is buffered until that vat is next parked.
func (r *Router) deliverLocal(m message.Message) {
	entry, ok := r.entry(m.Destination.Vat)
	if !ok {
		r.log.Warnf("node %d: no local vat %d for message to %s", r.node, m.Destination.Vat, m.Destination)
		return
	}
	if entry.inFlight {
		entry.pending = append(entry.pending, m)
		return
	}
	entry.v.Enqueue(m)
	r.admit(entry)
}

// Join registers how to reach a remote node, delegating to the
// transport.
func (r *Router) Join(node address.NodeID, addr string) error {
	return r.t.Join(node, addr)
}
