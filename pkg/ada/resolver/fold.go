package resolver

import (
	"math/big"

	"github.com/adalore/adac/pkg/ada/ast"
	"github.com/adalore/adac/pkg/ada/core"
)

// FoldInteger evaluates a static integer expression (per Ada RM 4.9) to its
// exact value, re-embedding the result into the syntax tree as an
// IntegerLiteral so that a second fold of the same node is a no-op.
// Reports false if the expression is not static.
func (c *Context) FoldInteger(node core.NodeID) (*big.Int, bool) {
	n := c.Tree.Get(node)

	switch p := n.Payload.(type) {
	case ast.IntegerLiteral:
		return p.Value, true
	case ast.UnaryOp:
		v, ok := c.FoldInteger(p.Operand)
		if !ok {
			return nil, false
		}

		var out *big.Int

		switch p.Op {
		case "-":
			out = new(big.Int).Neg(v)
		case "+":
			out = v
		case "abs":
			out = new(big.Int).Abs(v)
		default:
			return nil, false
		}

		c.reembedInteger(node, out)

		return out, true
	case ast.BinaryOp:
		l, lok := c.FoldInteger(p.Left)
		r, rok := c.FoldInteger(p.Right)

		if !lok || !rok {
			return nil, false
		}

		out, ok := foldIntBinary(p.Op, l, r)
		if ok {
			c.reembedInteger(node, out)
		}

		return out, ok
	case ast.Identifier:
		sym, ok := c.constValues[n.ResolvedSymbol]
		if !ok {
			return nil, false
		}

		return sym, true
	default:
		return nil, false
	}
}

func foldIntBinary(op string, l, r *big.Int) (*big.Int, bool) {
	out := new(big.Int)

	switch op {
	case "+":
		return out.Add(l, r), true
	case "-":
		return out.Sub(l, r), true
	case "*":
		return out.Mul(l, r), true
	case "/":
		if r.Sign() == 0 {
			return nil, false
		}

		return out.Quo(l, r), true
	case "mod":
		if r.Sign() == 0 {
			return nil, false
		}

		return out.Mod(l, r), true
	case "rem":
		if r.Sign() == 0 {
			return nil, false
		}

		return out.Rem(l, r), true
	case "**":
		if !r.IsInt64() || r.Sign() < 0 {
			return nil, false
		}

		return out.Exp(l, r, nil), true
	default:
		return nil, false
	}
}

// FoldReal evaluates a static real expression to an exact rational value;
// rounding to the target type's representation happens only at emission.
func (c *Context) FoldReal(node core.NodeID) (*big.Rat, bool) {
	n := c.Tree.Get(node)

	switch p := n.Payload.(type) {
	case ast.RealLiteral:
		return new(big.Rat).SetFloat64(p.Value), true
	case ast.IntegerLiteral:
		return new(big.Rat).SetInt(p.Value), true
	case ast.UnaryOp:
		v, ok := c.FoldReal(p.Operand)
		if !ok {
			return nil, false
		}

		if p.Op == "-" {
			return new(big.Rat).Neg(v), true
		}

		return v, true
	case ast.BinaryOp:
		l, lok := c.FoldReal(p.Left)
		r, rok := c.FoldReal(p.Right)

		if !lok || !rok {
			return nil, false
		}

		out := new(big.Rat)

		switch p.Op {
		case "+":
			return out.Add(l, r), true
		case "-":
			return out.Sub(l, r), true
		case "*":
			return out.Mul(l, r), true
		case "/":
			if r.Sign() == 0 {
				return nil, false
			}

			return out.Quo(l, r), true
		}

		return nil, false
	default:
		return nil, false
	}
}

// reembedInteger rewrites node in place to an IntegerLiteral carrying the
// folded value, implementing "results are re-embedded into the syntax
// tree".  A second call to FoldInteger on the same node then takes the fast
// IntegerLiteral path immediately, giving the required idempotence, and the
// code emitter sees only the literal.
func (c *Context) reembedInteger(node core.NodeID, v *big.Int) {
	c.Tree.Mutate(node, func(n *ast.Node) {
		n.Kind = ast.KindIntegerLiteral
		n.Payload = ast.IntegerLiteral{Value: v}
	})
}
