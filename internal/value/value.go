// Package value defines the ValueNode union carried inside messages: the
// small set of opaque payloads the evaluator can produce that are
// actually transportable across a vat, a node, or the wire. Higher-order
// values (closures, partially-applied actor definitions) are not part of
// this union on purpose - see Kind.
package value

import (
	"fmt"

	"github.com/jabolina/pleroma/internal/address"
)

// Kind tags which variant of ValueNode is populated.
type Kind int

const (
	// None means no value is carried; it is the zero ValueNode. A reply
	// built from None carries no values (as when a resolved promise had
	// no results).
	None Kind = iota
	Number
	String
	EntityRef
)

// ValueNode is an immutable tagged value. Only Number, String and
// EntityRef are transportable; the typechecker (out of scope here) is
// expected to reject anything else before it reaches the runtime.
type ValueNode struct {
	Kind Kind    `json:"kind"`
	Num  float64 `json:"num,omitempty"`
	Str  string  `json:"str,omitempty"`
	Ref  address.EntityAddress `json:"ref,omitempty"`
}

// NewNumber builds a transportable Number value.
func NewNumber(n float64) ValueNode {
	return ValueNode{Kind: Number, Num: n}
}

// NewString builds a transportable String value.
func NewString(s string) ValueNode {
	return ValueNode{Kind: String, Str: s}
}

// NewEntityRef builds a transportable reference to a remote entity.
func NewEntityRef(addr address.EntityAddress) ValueNode {
	return ValueNode{Kind: EntityRef, Ref: addr}
}

// IsNone reports whether this node carries no value.
func (v ValueNode) IsNone() bool {
	return v.Kind == None
}

func (v ValueNode) String() string {
	switch v.Kind {
	case Number:
		return fmt.Sprintf("%v", v.Num)
	case String:
		return v.Str
	case EntityRef:
		return v.Ref.String()
	default:
		return "<none>"
	}
}
