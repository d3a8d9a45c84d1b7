package types

import (
	"fmt"
	"math/big"

	"github.com/adalore/adac/pkg/ada/core"
)

// boundKind discriminates the four forms a scalar bound can take before and
// after constant folding.
type boundKind uint8

const (
	// boundUnset means no bound has been given at all (e.g. an
	// as-yet-unconstrained formal type in a generic, or a malformed
	// declaration after which resolution continues with the error type).
	boundUnset boundKind = iota
	// boundExact means the bound has been folded to an exact 128-bit
	// integer value.
	boundExact
	// boundFloat means the bound is an exact double-precision float
	// value (for float subtype bounds, which Ada permits as static
	// real expressions).
	boundFloat
	// boundDeferred means the bound is still an unevaluated expression
	// node; freezing a type with a deferred bound fails until the
	// resolver folds it.
	boundDeferred
)

// Bound is a scalar type's low or high limit.  It starts life as a deferred
// reference to a syntax node and becomes exact once the resolver folds that
// node as a static expression.
type Bound struct {
	kind    boundKind
	exact   big.Int
	float   float64
	node    core.NodeID
}

// UnsetBound constructs a bound with no value at all.
func UnsetBound() Bound {
	return Bound{kind: boundUnset}
}

// ExactBound constructs a bound from a folded integer value.
func ExactBound(v *big.Int) Bound {
	var b Bound
	b.kind = boundExact
	b.exact.Set(v)

	return b
}

// FloatBound constructs a bound from a folded real value.
func FloatBound(v float64) Bound {
	return Bound{kind: boundFloat, float: v}
}

// DeferredBound constructs a bound that refers to an as-yet-unfolded
// expression node.
func DeferredBound(node core.NodeID) Bound {
	return Bound{kind: boundDeferred, node: node}
}

// IsDeferred reports whether this bound still refers to an unfolded
// expression.
func (b Bound) IsDeferred() bool {
	return b.kind == boundDeferred
}

// IsUnset reports whether this bound has no value at all.
func (b Bound) IsUnset() bool {
	return b.kind == boundUnset
}

// DeferredNode returns the node this bound refers to, if deferred.
func (b Bound) DeferredNode() core.NodeID {
	return b.node
}

// Exact returns the folded integer value of this bound, panicking if it is
// not an exact integer bound.
func (b Bound) Exact() *big.Int {
	if b.kind != boundExact {
		panic("bound is not an exact integer")
	}

	var v big.Int
	v.Set(&b.exact)

	return &v
}

// TryExact returns the folded integer value of this bound and true, or nil
// and false if the bound is not (yet) an exact integer — unset, a float
// bound, or still deferred to an unfolded expression node. Callers that
// need to compare a candidate constraint against a base type's bounds use
// this instead of Exact to avoid panicking on a base type whose own bounds
// have not been folded yet.
func (b Bound) TryExact() (*big.Int, bool) {
	if b.kind != boundExact {
		return nil, false
	}

	var v big.Int
	v.Set(&b.exact)

	return &v, true
}

// Float returns the folded real value of this bound, panicking if it is not
// a float bound.
func (b Bound) Float() float64 {
	if b.kind != boundFloat {
		panic("bound is not a float")
	}

	return b.float
}

func (b Bound) String() string {
	switch b.kind {
	case boundExact:
		return b.exact.String()
	case boundFloat:
		return fmt.Sprintf("%g", b.float)
	case boundDeferred:
		return fmt.Sprintf("<deferred node %d>", b.node)
	default:
		return "<unset>"
	}
}
