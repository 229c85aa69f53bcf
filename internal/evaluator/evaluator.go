// Package evaluator defines the façade around the host interpreter that
// the vat turn loop consumes (spec.md section 6): start_context,
// eval_func_local and eval_promise_local. The surface-language lexer,
// parser, typechecker and the full AST evaluator are explicitly out of
// scope (spec.md section 1) - they are a black box behind this
// interface. What ships here is a small, table-driven default
// implementation, just capable enough to run the built-in kernel
// entities (Monad, NodeMan) and the scenarios in spec.md section 8.
package evaluator

import (
	"fmt"

	"github.com/jabolina/pleroma/internal/address"
	"github.com/jabolina/pleroma/internal/message"
	"github.com/jabolina/pleroma/internal/promise"
	"github.com/jabolina/pleroma/internal/value"
)

// Entity is the opaque per-actor state owned by the evaluator: module
// scope plus instance fields. An entity is owned exclusively by its
// hosting vat for its entire lifetime.
type Entity struct {
	ID     address.EntityID
	Module string
	Fields map[string]value.ValueNode
}

// NewEntity creates an entity bound to the named module.
func NewEntity(id address.EntityID, module string) *Entity {
	return &Entity{ID: id, Module: module, Fields: make(map[string]value.ValueNode)}
}

// Dispatcher is the capability a running method body gets to originate
// further calls from within the current turn. It is implemented by the
// hosting vat and bound fresh for every dispatched message.
type Dispatcher interface {
	// Call issues an asynchronous call expecting a reply; the returned
	// promise id is only meaningful to the vat that minted it.
	Call(dest address.EntityAddress, function string, args []value.ValueNode, cb promise.Callback) address.PromiseID

	// Send issues a fire-and-forget call; no promise is created.
	Send(dest address.EntityAddress, function string, args []value.ValueNode)
}

// Context is the per-turn evaluation context bound to a node, a vat, a
// module scope and a target entity (start_context in spec.md section 6).
type Context struct {
	Node     address.NodeID
	Vat      address.VatID
	Self     address.EntityAddress
	Entity   *Entity
	Dispatch Dispatcher
}

// ResultKind classifies what eval_func_local produced for a call.
type ResultKind int

const (
	// NoResult means nothing is returned and no reply is ever sent.
	NoResult ResultKind = iota
	// ValueResult means Value is a transportable ValueNode; the turn
	// loop synthesizes an immediate reply (unless the call was "main").
	ValueResult
	// PendingPromiseResult means the method already issued a further
	// call and Promise names the promise whose resolution should carry
	// the reply; the turn loop does not emit a reply itself.
	PendingPromiseResult
	// OpaqueResult means a non-transportable value (closure, partially
	// applied actor definition) was returned; per spec.md section 4.2
	// this synthesizes no reply at all.
	OpaqueResult
)

// Result is what eval_func_local returns for a single call.
type Result struct {
	Kind    ResultKind
	Value   value.ValueNode
	Promise address.PromiseID
}

// Fault is the explicit, fallible counterpart to the original's
// PleromaException: any error surfaced by the evaluator while running a
// turn. It is fatal to the node - turns are not retried because
// re-execution is not idempotent (spec.md section 7).
type Fault struct {
	Msg message.Message
	Err error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("evaluator fault dispatching %s on %s: %v", f.Msg.Function, f.Msg.Destination, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// Evaluator is the interface the vat turn loop consumes. Implementations
// are synchronous and must never block inside a turn (spec.md section 5).
type Evaluator interface {
	// StartContext builds a per-turn context bound to this node, vat,
	// entity and its dispatcher.
	StartContext(node address.NodeID, vat address.VatID, entity *Entity, dispatch Dispatcher) *Context

	// EvalFunc synchronously invokes function on entity with args.
	EvalFunc(ctx *Context, entity *Entity, function string, args []value.ValueNode) (Result, error)

	// EvalPromise runs the continuation registered on a resolved promise.
	EvalPromise(ctx *Context, entity *Entity, p *promise.Promise) error
}
