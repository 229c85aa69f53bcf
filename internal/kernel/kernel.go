// Package kernel provides the two compiled-in system modules every node
// boots with, standing in for the surface-language modules a full AST
// evaluator would load from source: Monad, the bootstrap entity that
// receives the inoculation hello, and NodeMan, a minimal cluster-facing
// entity used to probe a node is alive (spec.md section 8, scenario 3;
// SUPPLEMENTED FEATURES section of the expanded spec). Grounded on
// pleroma.cpp's inoculate_pleroma, which constructs vat 0 / entity 0
// (Monad) and pushes a synthetic hello(0) call from the sentinel source.
package kernel

import (
	"github.com/jabolina/pleroma/internal/address"
	"github.com/jabolina/pleroma/internal/evaluator"
	"github.com/jabolina/pleroma/internal/message"
	"github.com/jabolina/pleroma/internal/value"
	"github.com/jabolina/pleroma/internal/vat"
)

// ModuleMonad and ModuleNodeMan name the two built-in modules, used as
// an entity's Module field.
const (
	ModuleMonad   = "Monad"
	ModuleNodeMan = "NodeMan"
)

// BootVat and BootEntity are the fixed addresses the bootstrap entity is
// created at on every node, so inoculation never needs to discover an id.
const (
	BootVat    address.VatID    = 0
	BootEntity address.EntityID = 0
)

// NodeManVat and NodeManEntity are the fixed addresses the node-manager
// entity is created at. It lives in its own vat, separate from the boot
// vat, per spec.md section 6 step 5.
const (
	NodeManVat    address.VatID    = 1
	NodeManEntity address.EntityID = 0
)

// Register installs the Monad and NodeMan modules into ev.
func Register(ev *evaluator.TableEvaluator) {
	ev.Register(monadModule())
	ev.Register(nodeManModule())
}

// monadModule defines the bootstrap entity's single method: hello
// records it was reached and has no further effect. A full language
// implementation would instead compile the program text named by
// --program and invoke its designated entry entity/method here.
func monadModule() *evaluator.Module {
	return &evaluator.Module{
		Name: ModuleMonad,
		Methods: map[string]evaluator.Method{
			"hello": func(ctx *evaluator.Context, entity *evaluator.Entity, args []value.ValueNode) (evaluator.Result, error) {
				entity.Fields["greeted"] = value.NewNumber(1)
				return evaluator.Result{Kind: evaluator.NoResult}, nil
			},
		},
	}
}

// nodeManModule defines the minimal node-manager entity: ping replies
// with the number of resources configured on this node (stashed in
// entity.Fields by CreateNodeMan), letting a remote caller confirm the
// node booted and is reachable.
func nodeManModule() *evaluator.Module {
	return &evaluator.Module{
		Name: ModuleNodeMan,
		Methods: map[string]evaluator.Method{
			"ping": func(ctx *evaluator.Context, entity *evaluator.Entity, args []value.ValueNode) (evaluator.Result, error) {
				count := entity.Fields["resources"]
				return evaluator.Result{Kind: evaluator.ValueResult, Value: count}, nil
			},
		},
	}
}

// Inoculate creates the Monad entity in the boot vat and enqueues the
// synthetic hello(0) call that kicks off a freshly started node,
// mirroring inoculate_pleroma.
func Inoculate(boot *vat.Vat) error {
	if _, err := boot.CreateEntity(BootEntity, ModuleMonad); err != nil {
		return err
	}

	self := address.EntityAddress{Node: boot.Node, Vat: BootVat, Entity: BootEntity}
	boot.Enqueue(message.Message{
		Destination: self,
		Source:      address.Sentinel,
		Function:    "hello",
		PromiseID:   address.NoPromise,
		Values:      []value.ValueNode{value.NewNumber(0)},
	})
	return nil
}

// CreateNodeMan creates the NodeMan system entity in its own vat, per
// spec.md section 6 step 5, and records how many resources this node
// was configured with so ping can report it.
func CreateNodeMan(v *vat.Vat, resources []string) error {
	entity, err := v.CreateEntity(NodeManEntity, ModuleNodeMan)
	if err != nil {
		return err
	}
	entity.Fields["resources"] = value.NewNumber(float64(len(resources)))
	return nil
}
