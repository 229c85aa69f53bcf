// Package address defines the addressing primitives shared by every
// other package in the runtime: node, vat and entity identifiers, the
// triple that names an entity anywhere in the cluster, and the promise
// identifier minted for calls that expect a reply.
package address

import (
	"fmt"
	"math"
	"sync/atomic"
)

// NodeID identifies an OS process hosting vats.
type NodeID uint32

// VatID identifies a single-threaded scheduling unit within a node.
type VatID uint32

// EntityID identifies an actor within its owning vat.
type EntityID uint32

// PromiseID is the node-wide unique reply token minted by the vat that
// originates a call. NoPromise means "no reply expected".
type PromiseID int64

// NoPromise is the sentinel meaning no reply is expected for a message.
const NoPromise PromiseID = -1

// Sentinel values used for the source of system-injected messages, such
// as the synthetic hello sent to the Monad entity at inoculation. There
// is nowhere to reply to a sentinel source, which is exactly why replies
// to "main" are suppressed (see EntityAddress.IsSentinel).
const (
	SentinelNode   NodeID   = math.MaxUint32
	SentinelVat    VatID    = math.MaxUint32
	SentinelEntity EntityID = math.MaxUint32
)

// Sentinel is the source address carried by messages that were not sent
// by any entity (the bootstrap "main" call, for instance).
var Sentinel = EntityAddress{Node: SentinelNode, Vat: SentinelVat, Entity: SentinelEntity}

// EntityAddress is the triple (node, vat, entity) that names an entity
// anywhere in the cluster. It is totally ordered, hashable and cheaply
// copyable, so it is used directly as map keys and comparison operands.
type EntityAddress struct {
	Node   NodeID
	Vat    VatID
	Entity EntityID
}

// IsSentinel reports whether this is the sentinel "no source" address.
func (a EntityAddress) IsSentinel() bool {
	return a == Sentinel
}

// Local reports whether the address names an entity on the given node.
func (a EntityAddress) Local(self NodeID) bool {
	return a.Node == self
}

// Compare gives EntityAddress a total order: by node, then vat, then
// entity. Used for deterministic iteration and for tests that assert on
// ordering.
func (a EntityAddress) Compare(b EntityAddress) int {
	if a.Node != b.Node {
		return cmpUint32(uint32(a.Node), uint32(b.Node))
	}
	if a.Vat != b.Vat {
		return cmpUint32(uint32(a.Vat), uint32(b.Vat))
	}
	return cmpUint32(uint32(a.Entity), uint32(b.Entity))
}

func cmpUint32(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (a EntityAddress) String() string {
	if a.IsSentinel() {
		return "sentinel"
	}
	return fmt.Sprintf("(%d,%d,%d)", a.Node, a.Vat, a.Entity)
}

// Minter mints PromiseIDs that are unique node-wide by combining the
// minting vat's id with a monotonic per-vat counter, so no coordination
// across vats is required. A promise_id is only ever meaningful in the
// vat that minted it; the wire carries it back verbatim.
type Minter struct {
	vat     VatID
	counter uint64
}

// NewMinter creates a promise-id minter bound to the given vat.
func NewMinter(vat VatID) *Minter {
	return &Minter{vat: vat}
}

// Next returns the next unique promise id for this vat.
func (m *Minter) Next() PromiseID {
	n := atomic.AddUint64(&m.counter, 1)
	return PromiseID(uint64(m.vat)<<32 | (n & 0xffffffff))
}
