// Package vat implements the vat: the single-threaded scheduling unit
// that owns a set of entities, their mailbox, and the promise table for
// calls they originated. Vat.Turn is the two-phase dispatch/flush loop
// described in spec.md section 4.1.
//
// A vat's interior carries no internal lock; it is only ever touched by
// whichever goroutine currently owns it. Ownership moves between the
// router (while the vat is idle, parked with no burner holding it), the
// ready queue, and a burner running Turn - never more than one of these
// at a time (spec.md section 2/5's idle/ready/running states). The
// router is responsible for never calling Enqueue on a vat that is
// ready or running; see internal/router's package doc for how it
// enforces that.
package vat

import (
	"errors"
	"fmt"

	"github.com/jabolina/pleroma/internal/address"
	"github.com/jabolina/pleroma/internal/evaluator"
	"github.com/jabolina/pleroma/internal/message"
	"github.com/jabolina/pleroma/internal/promise"
	"github.com/jabolina/pleroma/internal/value"
)

// RoutingFault is raised when a message addresses an entity that does
// not exist in the target vat. Fatal to the vat (spec.md section 7).
type RoutingFault struct {
	Msg message.Message
}

func (f *RoutingFault) Error() string {
	return fmt.Sprintf("no entity %d in vat %d", f.Msg.Destination.Entity, f.Msg.Destination.Vat)
}

// ErrAlreadyExists is returned by CreateEntity for a reused entity id.
var ErrAlreadyExists = errors.New("vat: entity id already in use")

// Vat owns a set of entities, their inbound mailbox, outbound staging
// buffer, and promise table.
type Vat struct {
	ID   address.VatID
	Node address.NodeID

	entities map[address.EntityID]*evaluator.Entity
	messages []message.Message
	out      []message.Message
	promises *promise.Table
	minter   *address.Minter
	eval     evaluator.Evaluator

	// RunN is the monotonically increasing turn counter, used for
	// fairness diagnostics and debugging.
	RunN uint64
}

// New creates an empty vat bound to the given node and evaluator.
func New(node address.NodeID, id address.VatID, eval evaluator.Evaluator) *Vat {
	return &Vat{
		ID:       id,
		Node:     node,
		entities: make(map[address.EntityID]*evaluator.Entity),
		promises: promise.NewTable(),
		minter:   address.NewMinter(id),
		eval:     eval,
	}
}

// CreateEntity creates and owns a new entity bound to the given module.
// Entities are created together and never migrated between vats.
func (v *Vat) CreateEntity(id address.EntityID, module string) (*evaluator.Entity, error) {
	if _, exists := v.entities[id]; exists {
		return nil, ErrAlreadyExists
	}
	e := evaluator.NewEntity(id, module)
	v.entities[id] = e
	return e, nil
}

// Entity looks up an owned entity by id.
func (v *Vat) Entity(id address.EntityID) (*evaluator.Entity, bool) {
	e, ok := v.entities[id]
	return e, ok
}

// Promises exposes the promise table for read-only inspection (tests,
// diagnostics). Never mutate it from outside a turn.
func (v *Vat) Promises() *promise.Table {
	return v.promises
}

// Enqueue appends an inbound message to the mailbox. Only safe to call
// while this vat is idle - owned by the router, not sitting in the
// ready queue and not running inside a burner. The router never calls
// it otherwise; Turn's own same-vat fast path appends to the mailbox
// directly during flush instead of going through this method, since at
// that point the vat is mid-turn and already exclusively owned by the
// calling burner.
func (v *Vat) Enqueue(m message.Message) {
	v.messages = append(v.messages, m)
}

// HasWork reports whether the vat has any inbound message pending
// dispatch - the condition the ready-queue invariant requires before a
// vat may be enqueued.
func (v *Vat) HasWork() bool {
	return len(v.messages) > 0
}

// dispatchCtx implements evaluator.Dispatcher, bound to a single
// dispatched message so that method bodies can originate further calls
// from "self" without needing to know the vat's internals.
type dispatchCtx struct {
	vat  *Vat
	self address.EntityAddress
}

func (d *dispatchCtx) Call(dest address.EntityAddress, function string, args []value.ValueNode, cb promise.Callback) address.PromiseID {
	id := d.vat.minter.Next()
	d.vat.promises.Create(&promise.Promise{ID: id, Callback: cb})
	d.vat.out = append(d.vat.out, message.Message{
		Destination: dest,
		Source:      d.self,
		Function:    function,
		PromiseID:   id,
		Values:      args,
	})
	return id
}

func (d *dispatchCtx) Send(dest address.EntityAddress, function string, args []value.ValueNode) {
	d.vat.out = append(d.vat.out, message.Message{
		Destination: dest,
		Source:      d.self,
		Function:    function,
		PromiseID:   address.NoPromise,
		Values:      args,
	})
}

// Turn executes one atomic dispatch+flush cycle (spec.md section 4.1)
// and returns the messages that must leave this vat for the network
// thread to route - either to another vat on this node or to a remote
// node. Same-vat sends are folded back into the mailbox directly and are
// not part of the returned slice; messages addressed to the sentinel
// source are dropped.
//
// A non-nil error is either a *RoutingFault or an *evaluator.Fault; both
// are fatal and the caller (the burner) must stop processing and
// propagate it.
func (v *Vat) Turn() ([]message.Message, error) {
	if err := v.dispatch(); err != nil {
		return nil, err
	}
	return v.flush(), nil
}

func (v *Vat) dispatch() error {
	pending := v.messages
	v.messages = nil

	for _, m := range pending {
		entity, ok := v.entities[m.Destination.Entity]
		if !ok {
			return &RoutingFault{Msg: m}
		}

		self := address.EntityAddress{Node: v.Node, Vat: v.ID, Entity: entity.ID}
		ctx := v.eval.StartContext(v.Node, v.ID, entity, &dispatchCtx{vat: v, self: self})

		if m.IsResponse {
			if err := v.dispatchResponse(ctx, entity, m); err != nil {
				return err
			}
			continue
		}
		if err := v.dispatchCall(ctx, entity, m); err != nil {
			return err
		}
	}
	return nil
}

func (v *Vat) dispatchResponse(ctx *evaluator.Context, entity *evaluator.Entity, m message.Message) error {
	p, ok := v.promises.Get(m.PromiseID)
	if !ok {
		// No promise was created for this response - fire-and-forget
		// return, silently dropped.
		return nil
	}

	resolved, ok := v.promises.Resolve(m.PromiseID, m.Values)
	if !ok {
		// Already resolved once; idempotent no-op.
		return nil
	}

	if resolved.Callback != nil {
		if err := v.eval.EvalPromise(ctx, entity, resolved); err != nil {
			return &evaluator.Fault{Msg: m, Err: err}
		}
	}
	if resolved.ReturnMsg && !resolved.Msg.IsMain() {
		var rv value.ValueNode
		if len(resolved.Results) > 0 {
			rv = resolved.Results[0]
		}
		v.out = append(v.out, message.Reply(resolved.Msg, rv))
	}
	v.promises.Delete(m.PromiseID)
	_ = p
	return nil
}

func (v *Vat) dispatchCall(ctx *evaluator.Context, entity *evaluator.Entity, m message.Message) error {
	result, err := v.eval.EvalFunc(ctx, entity, m.Function, m.Values)
	if err != nil {
		return &evaluator.Fault{Msg: m, Err: err}
	}

	switch result.Kind {
	case evaluator.PendingPromiseResult:
		if p, ok := v.promises.Get(result.Promise); ok {
			p.ReturnMsg = true
			p.Msg = m
		}
	case evaluator.ValueResult:
		if !m.IsMain() {
			v.out = append(v.out, message.Reply(m, result.Value))
		}
	case evaluator.OpaqueResult, evaluator.NoResult:
		// No reply.
	}
	return nil
}

func (v *Vat) flush() []message.Message {
	out := v.out
	v.out = nil

	var toNetwork []message.Message
	for _, m := range out {
		if m.Destination.IsSentinel() {
			// A reply to a system-injected message has nowhere to go.
			continue
		}
		if m.Destination.Node == v.Node && m.Destination.Vat == v.ID {
			v.messages = append(v.messages, m)
		} else {
			toNetwork = append(toNetwork, m)
		}
	}
	v.RunN++
	return toNetwork
}

// Shutdown drains the promise table. Unresolved promises are dropped;
// there is no cancellation notification for in-flight calls.
func (v *Vat) Shutdown() {
	v.promises.Drain()
}
