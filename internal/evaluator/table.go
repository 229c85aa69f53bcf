package evaluator

import (
	"fmt"

	"github.com/jabolina/pleroma/internal/address"
	"github.com/jabolina/pleroma/internal/promise"
	"github.com/jabolina/pleroma/internal/value"
)

// Method is a single entity method body. It receives the per-turn
// context, the entity it is running against, and the call arguments,
// and returns the same Result shape a full AST evaluator would.
type Method func(ctx *Context, entity *Entity, args []value.ValueNode) (Result, error)

// PromiseHook runs when a promise created by this module resolves and
// that promise carries a Callback (the vat calls EvalPromise only for
// such promises). Most
// modules never need one; it exists for entities (like a user-defined
// "Monad") that want to react to a call's result instead of just
// relaying it back to their own caller.
type PromiseHook func(ctx *Context, entity *Entity, p *promise.Promise)

// Module is a named collection of methods, analogous to the module
// scope an entity is bound to (an EntityDef in the original source).
type Module struct {
	Name        string
	Methods     map[string]Method
	PromiseHook PromiseHook
}

// TableEvaluator is the default Evaluator: entity behavior is a lookup
// in a table of registered Modules, keyed by the entity's module name.
// This is the stand-in for the full AST evaluator described in spec.md
// section 6, sufficient to run the kernel entities and the end-to-end
// scenarios in spec.md section 8.
type TableEvaluator struct {
	modules map[string]*Module
}

// NewTableEvaluator creates an evaluator with no modules registered.
func NewTableEvaluator() *TableEvaluator {
	return &TableEvaluator{modules: make(map[string]*Module)}
}

// Register adds (or replaces) a module definition.
func (e *TableEvaluator) Register(m *Module) {
	e.modules = copyModules(e.modules)
	e.modules[m.Name] = m
}

func copyModules(src map[string]*Module) map[string]*Module {
	dst := make(map[string]*Module, len(src)+1)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// StartContext implements Evaluator.
func (e *TableEvaluator) StartContext(node address.NodeID, vat address.VatID, entity *Entity, dispatch Dispatcher) *Context {
	return &Context{
		Node:     node,
		Vat:      vat,
		Self:     address.EntityAddress{Node: node, Vat: vat, Entity: entity.ID},
		Entity:   entity,
		Dispatch: dispatch,
	}
}

// HasModule reports whether a module with the given name is registered.
// Used by the "test" CLI subcommand to validate a --entity flag without
// running a turn.
func (e *TableEvaluator) HasModule(name string) bool {
	_, ok := e.modules[name]
	return ok
}

// EvalFunc implements Evaluator by looking up the entity's module and
// dispatching to the named method.
func (e *TableEvaluator) EvalFunc(ctx *Context, entity *Entity, function string, args []value.ValueNode) (Result, error) {
	module, ok := e.modules[entity.Module]
	if !ok {
		return Result{}, fmt.Errorf("no module registered for %q", entity.Module)
	}
	method, ok := module.Methods[function]
	if !ok {
		return Result{}, fmt.Errorf("module %q has no method %q", entity.Module, function)
	}
	return method(ctx, entity, args)
}

// EvalPromise implements Evaluator by running the module's promise hook,
// if it registered one.
func (e *TableEvaluator) EvalPromise(ctx *Context, entity *Entity, p *promise.Promise) error {
	module, ok := e.modules[entity.Module]
	if !ok {
		return fmt.Errorf("no module registered for %q", entity.Module)
	}
	if module.PromiseHook != nil {
		module.PromiseHook(ctx, entity, p)
	}
	if p.Callback != nil {
		p.Callback(p.Results)
	}
	return nil
}
