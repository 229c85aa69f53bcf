// Package promise implements the per-vat promise table: the record kept
// for every outbound call that expects a reply, and the bookkeeping that
// resolves it exactly once when a matching response arrives.
//
// The table is only ever touched by the vat's owning burner during a
// turn, so - like the vat itself - it needs no internal locking; the
// mutex here exists only to let tests and diagnostics (Vat.Promises)
// inspect a promise from outside a turn without racing the turn loop.
package promise

import (
	"sync"

	"github.com/jabolina/pleroma/internal/address"
	"github.com/jabolina/pleroma/internal/message"
	"github.com/jabolina/pleroma/internal/value"
)

// Callback is the evaluator continuation registered on a promise, run
// with the resolved values once a response arrives.
type Callback func(results []value.ValueNode)

// Promise is the per-vat record keyed by promise id. ReturnMsg and Msg
// are only meaningful together: when set, resolving the promise also
// synthesizes a reply to Msg.
type Promise struct {
	ID        address.PromiseID
	Callback  Callback
	ReturnMsg bool
	Msg       message.Message
	Results   []value.ValueNode
	resolved  bool
}

// Resolved reports whether a response has already been applied to this
// promise.
func (p *Promise) Resolved() bool {
	return p.resolved
}

// Table is the promise map owned by a single vat. A promise_id is
// meaningful only in the vat that minted it.
type Table struct {
	mu       sync.Mutex
	promises map[address.PromiseID]*Promise
}

// NewTable creates an empty promise table.
func NewTable() *Table {
	return &Table{promises: make(map[address.PromiseID]*Promise)}
}

// Create registers a new promise, created on an outbound call that
// expects a reply.
func (t *Table) Create(p *Promise) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.promises[p.ID] = p
}

// Get looks up a promise by id without removing it.
func (t *Table) Get(id address.PromiseID) (*Promise, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.promises[id]
	return p, ok
}

// Resolve applies the response values to the promise, if it still
// exists and has not already been resolved. It is idempotent: firing
// the same response twice resolves the promise once and is a no-op the
// second time - the second call returns false and leaves the first
// results in place, because the promise is either already marked
// resolved or, once the caller has Deleted it, no longer in the table.
func (t *Table) Resolve(id address.PromiseID, results []value.ValueNode) (*Promise, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.promises[id]
	if !ok || p.resolved {
		return nil, false
	}
	p.Results = results
	p.resolved = true
	return p, true
}

// Delete discards a promise after its callback has fired and/or its
// reply has been emitted.
func (t *Table) Delete(id address.PromiseID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.promises, id)
}

// Len reports how many promises are still pending resolution.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.promises)
}

// Drain discards every pending promise, used when a vat shuts down.
// Unresolved promises are simply dropped - there is no cancellation
// notification.
func (t *Table) Drain() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.promises = make(map[address.PromiseID]*Promise)
}
