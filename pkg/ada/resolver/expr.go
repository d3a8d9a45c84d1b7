package resolver

import (
	"github.com/adalore/adac/pkg/ada/ast"
	"github.com/adalore/adac/pkg/ada/core"
	"github.com/adalore/adac/pkg/ada/symtab"
	"github.com/adalore/adac/pkg/ada/types"
	"github.com/adalore/adac/pkg/diagnostics"
)

// ResolveExpression annotates node (and its subtree) with resolved types
// and symbols and returns the type of the whole expression.  contextType,
// if valid, is the type a surrounding assignment target, explicit
// conversion, or enclosing call's formal expects — used to coerce a
// universal literal or disambiguate an overloaded operator.
func (c *Context) ResolveExpression(node core.NodeID, contextType core.TypeID) core.TypeID {
	n := c.Tree.Get(node)

	var result core.TypeID

	switch p := n.Payload.(type) {
	case ast.IntegerLiteral:
		result = c.coerceUniversal(node, c.Std.UniversalInteger, contextType)
	case ast.RealLiteral:
		result = c.coerceUniversal(node, c.Std.UniversalReal, contextType)
	case ast.StringLiteral:
		result = c.coerceUniversal(node, c.Std.String, contextType)
	case ast.CharacterLiteral:
		result = c.Std.Character
	case ast.Identifier:
		result = c.resolveIdentifier(node, p.Name, contextType)
	case ast.SelectedComponent:
		result = c.resolveSelectedComponent(node, p)
	case ast.BinaryOp:
		result = c.resolveBinaryOp(node, p, contextType)
	case ast.UnaryOp:
		result = c.resolveUnaryOp(node, p, contextType)
	case ast.Apply:
		result = c.resolveApply(node, p, contextType)
	case ast.Attribute:
		result = c.resolveAttribute(node, p)
	case ast.QualifiedExpr:
		result = c.resolveQualifiedExpr(node, p)
	case ast.RangeExpr:
		result = c.resolveRangeExpr(node, p)
	case ast.Aggregate:
		result = c.resolveAggregate(node, p, contextType)
	default:
		c.report(diagnostics.Error, node, "internal error: unresolvable expression kind")
		result = c.errorType()
	}

	// n is a copy taken before the cases above ran; re-read the node so a
	// symbol one of them recorded is kept.
	c.setResolved(node, result, c.Tree.Get(node).ResolvedSymbol)

	return result
}

// coerceUniversal returns contextType if it is valid and covers the
// universal type, otherwise the universal type itself — literals are typed
// universally until context forces a concrete interpretation.
func (c *Context) coerceUniversal(node core.NodeID, universal, contextType core.TypeID) core.TypeID {
	if contextType.Valid() && c.Types.Covers(contextType, universal) {
		return contextType
	}

	return universal
}

func (c *Context) resolveIdentifier(node core.NodeID, name string, contextType core.TypeID) core.TypeID {
	candidates := c.Syms.LookupAll(name)

	if len(candidates) == 0 {
		c.reportUndeclared(node, name)
		return c.errorType()
	}

	if len(candidates) == 1 {
		sym := c.Syms.Get(candidates[0])
		c.Tree.Mutate(node, func(n *ast.Node) { n.ResolvedSymbol = sym.ID })

		return sym.Type
	}

	// Multiple candidates: likely an overload set referenced without a
	// call (e.g. a bare operator symbol, or 'Access of an overloaded
	// subprogram). Without call-site arguments we can only disambiguate
	// using the context type.
	result := symtab.ResolveCall(c.Syms, c.Types, candidates, nil, contextType)
	if result.Symbol.Valid() {
		sym := c.Syms.Get(result.Symbol)
		c.Tree.Mutate(node, func(n *ast.Node) { n.ResolvedSymbol = sym.ID })

		return sym.Type
	}

	c.report(diagnostics.Error, node, "ambiguous reference to \""+name+"\"")

	return c.errorType()
}

func (c *Context) resolveSelectedComponent(node core.NodeID, p ast.SelectedComponent) core.TypeID {
	// Resolving the prefix as a package or record-valued expression is
	// deferred to the full name-resolution pass; here we handle the
	// common case of a prefix whose resolved symbol is a package,
	// looking up the selector among its exports.
	c.ResolveExpression(p.Prefix, core.NoType)

	prefixNode := c.Tree.Get(p.Prefix)

	if prefixNode.ResolvedSymbol.Valid() {
		prefixSym := c.Syms.Get(prefixNode.ResolvedSymbol)
		if prefixSym.Kind == symtab.PackageSym {
			for _, exp := range prefixSym.Exports {
				sym := c.Syms.Get(exp)
				if sym.Name == p.Selector {
					c.Tree.Mutate(node, func(n *ast.Node) { n.ResolvedSymbol = sym.ID })
					return sym.Type
				}
			}

			c.reportUndeclared(node, p.Selector)

			return c.errorType()
		}

		// Record component access: look up the selector among the
		// prefix's type's fixed components and discriminants (variant
		// components require a discriminant check at code-generation
		// time, not at resolution time). An access-to-record prefix is
		// dereferenced implicitly.
		rec := c.Types.Get(prefixNode.ResolvedType)
		if ab, ok := rec.Body.(types.AccessBody); ok {
			rec = c.Types.Get(ab.Designated)
		}

		if body, ok := rec.Body.(types.RecordBody); ok {
			if ty, ok2 := findComponent(body, p.Selector); ok2 {
				return ty
			}
		}

		c.reportUndeclared(node, p.Selector)
	}

	return c.errorType()
}

func findComponent(body types.RecordBody, name string) (core.TypeID, bool) {
	for _, comp := range body.Discriminants {
		if comp.Name == name {
			return comp.Type, true
		}
	}

	for _, comp := range body.Components {
		if comp.Name == name {
			return comp.Type, true
		}
	}

	for _, v := range body.Variants {
		for _, comp := range v.Parts {
			if comp.Name == name {
				return comp.Type, true
			}
		}
	}

	return core.NoType, false
}

func (c *Context) resolveBinaryOp(node core.NodeID, p ast.BinaryOp, contextType core.TypeID) core.TypeID {
	candidates := c.Syms.LookupAll(p.Op)

	if len(candidates) > 0 {
		leftTy := c.ResolveExpression(p.Left, core.NoType)
		rightTy := c.ResolveExpression(p.Right, core.NoType)
		result := symtab.ResolveCall(c.Syms, c.Types, candidates, []core.TypeID{leftTy, rightTy}, contextType)

		if result.Symbol.Valid() {
			sym := c.Syms.Get(result.Symbol)
			c.Tree.Mutate(node, func(n *ast.Node) { n.ResolvedSymbol = sym.ID })

			return sym.Result
		}
	}

	return c.resolveBuiltinBinary(node, p, contextType)
}

// resolveBuiltinBinary applies the predefined operators every scalar type
// receives implicitly: arithmetic for numeric types, comparisons yielding
// Boolean, and the logical operators over Boolean operands.
func (c *Context) resolveBuiltinBinary(node core.NodeID, p ast.BinaryOp, contextType core.TypeID) core.TypeID {
	switch p.Op {
	case "=", "/=", "<", "<=", ">", ">=":
		leftCtx := core.NoType

		leftTy := c.ResolveExpression(p.Left, leftCtx)
		rightTy := c.ResolveExpression(p.Right, leftTy)

		if !c.Types.Covers(leftTy, rightTy) && !c.Types.Covers(rightTy, leftTy) {
			c.report(diagnostics.Error, node, "type mismatch in comparison")
		}

		return c.Std.Boolean
	case "and", "or", "xor":
		c.ResolveExpression(p.Left, c.Std.Boolean)
		c.ResolveExpression(p.Right, c.Std.Boolean)

		return c.Std.Boolean
	case "&":
		leftTy := c.ResolveExpression(p.Left, core.NoType)
		c.ResolveExpression(p.Right, leftTy)

		return leftTy
	default:
		leftTy := c.ResolveExpression(p.Left, contextType)
		rightTy := c.ResolveExpression(p.Right, leftTy)

		return c.Types.LeastUpperBound(leftTy, rightTy, c.errorType())
	}
}

func (c *Context) resolveUnaryOp(node core.NodeID, p ast.UnaryOp, contextType core.TypeID) core.TypeID {
	candidates := c.Syms.LookupAll(p.Op)

	if len(candidates) > 0 {
		operandTy := c.ResolveExpression(p.Operand, core.NoType)
		result := symtab.ResolveCall(c.Syms, c.Types, candidates, []core.TypeID{operandTy}, contextType)

		if result.Symbol.Valid() {
			sym := c.Syms.Get(result.Symbol)
			return sym.Result
		}
	}

	if p.Op == "not" {
		c.ResolveExpression(p.Operand, c.Std.Boolean)
		return c.Std.Boolean
	}

	return c.ResolveExpression(p.Operand, contextType)
}

func (c *Context) resolveQualifiedExpr(node core.NodeID, p ast.QualifiedExpr) core.TypeID {
	markTy := c.resolveTypeMark(p.TypeMark)
	c.ResolveExpression(p.Expr, markTy)

	return markTy
}

func (c *Context) resolveRangeExpr(node core.NodeID, p ast.RangeExpr) core.TypeID {
	lowTy := c.ResolveExpression(p.Low, core.NoType)
	c.ResolveExpression(p.High, lowTy)

	return lowTy
}

func (c *Context) resolveAggregate(node core.NodeID, p ast.Aggregate, contextType core.TypeID) core.TypeID {
	for _, a := range p.Assocs {
		c.ResolveExpression(a.Value, core.NoType)
	}

	if contextType.Valid() {
		return contextType
	}

	c.report(diagnostics.Error, node, "aggregate requires a known expected type")

	return c.errorType()
}

// resolveTypeMark resolves a node expected to denote a type (an Identifier
// or SelectedComponent referring to a type symbol) and returns its type
// handle.
func (c *Context) resolveTypeMark(node core.NodeID) core.TypeID {
	n := c.Tree.Get(node)

	if id, ok := n.Payload.(ast.Identifier); ok {
		candidates := c.Syms.LookupAll(id.Name)

		for _, cand := range candidates {
			sym := c.Syms.Get(cand)
			if sym.Kind == symtab.TypeSym || sym.Kind == symtab.Subtype {
				c.Tree.Mutate(node, func(n *ast.Node) {
					n.ResolvedSymbol = sym.ID
					n.ResolvedType = sym.Type
				})

				return sym.Type
			}
		}

		c.reportUndeclared(node, id.Name)

		return c.errorType()
	}

	return c.ResolveExpression(node, core.NoType)
}
