package resolver

import (
	"github.com/adalore/adac/pkg/ada/ast"
	"github.com/adalore/adac/pkg/ada/core"
	"github.com/adalore/adac/pkg/ada/symtab"
	"github.com/adalore/adac/pkg/ada/types"
	"github.com/adalore/adac/pkg/diagnostics"
)

// resolveApply classifies an Apply node — prefix(args) — as a call, an
// explicit type conversion, an array index, or an array slice, per the
// unified apply-node rule: the interpretation follows from what the prefix
// names, not from the node's own shape.
func (c *Context) resolveApply(node core.NodeID, p ast.Apply, contextType core.TypeID) core.TypeID {
	prefixNode := c.Tree.Get(p.Prefix)

	if id, ok := prefixNode.Payload.(ast.Identifier); ok {
		candidates := c.Syms.LookupAll(id.Name)

		var typeCandidate core.SymbolID
		var callable []core.SymbolID

		for _, cand := range candidates {
			sym := c.Syms.Get(cand)

			switch {
			case sym.Kind == symtab.TypeSym || sym.Kind == symtab.Subtype:
				typeCandidate = cand
			case sym.Kind.IsSubprogram() || sym.Kind == symtab.Literal:
				callable = append(callable, cand)
			}
		}

		if typeCandidate.Valid() && len(callable) == 0 {
			return c.resolveConversion(node, p, typeCandidate)
		}

		if len(callable) > 0 {
			return c.resolveCallForm(node, p, callable, contextType)
		}
	}

	// A selected-component prefix (Pkg.Proc(args), Pkg.T(expr)) resolves
	// the dotted name first, then classifies the apply by what it named.
	if _, ok := prefixNode.Payload.(ast.SelectedComponent); ok {
		c.ResolveExpression(p.Prefix, core.NoType)

		pn := c.Tree.Get(p.Prefix)
		if pn.ResolvedSymbol.Valid() {
			sym := c.Syms.Get(pn.ResolvedSymbol)

			switch {
			case sym.Kind.IsSubprogram() || sym.Kind == symtab.Literal:
				return c.resolveCallForm(node, p, []core.SymbolID{pn.ResolvedSymbol}, contextType)
			case sym.Kind == symtab.TypeSym || sym.Kind == symtab.Subtype:
				return c.resolveConversion(node, p, pn.ResolvedSymbol)
			}
		}
	}

	return c.resolveIndexOrSlice(node, p)
}

// resolveConversion handles T(Expr): the prefix names a type, and the sole
// argument is converted to it (subject to the target covering the operand's
// type — a full legality check belongs to a later pass; here we only
// compute the resulting type).
func (c *Context) resolveConversion(node core.NodeID, p ast.Apply, typeSym core.SymbolID) core.TypeID {
	sym := c.Syms.Get(typeSym)

	c.Tree.Mutate(p.Prefix, func(n *ast.Node) {
		n.ResolvedSymbol = sym.ID
		n.ResolvedType = sym.Type
	})

	if len(p.Args) != 1 {
		c.report(diagnostics.Error, node, "type conversion takes exactly one argument")
		return c.errorType()
	}

	c.ResolveExpression(p.Args[0], core.NoType)

	c.Tree.Mutate(node, func(n *ast.Node) {
		applyPayload := n.Payload.(ast.Apply)
		applyPayload.Form = ast.ApplyConversion
		n.Payload = applyPayload
		n.ResolvedSymbol = sym.ID
	})

	return sym.Type
}

// resolveCallForm resolves every argument with no expected type, runs
// overload resolution against the candidate set, and returns the chosen
// subprogram's result type (the error type for a procedure called where a
// value is expected, or when no profile matches).
func (c *Context) resolveCallForm(node core.NodeID, p ast.Apply, candidates []core.SymbolID, contextType core.TypeID) core.TypeID {
	argTypes := make([]core.TypeID, len(p.Args))
	deferred := make([]bool, len(p.Args))

	for i, a := range p.Args {
		// An aggregate has no type of its own — it takes the chosen
		// formal's — so it cannot constrain candidate selection; the
		// error type stands in because it covers every formal.
		if c.Tree.Get(a).Kind == ast.KindAggregate {
			deferred[i] = true
			argTypes[i] = c.errorType()

			continue
		}

		argTypes[i] = c.ResolveExpression(a, core.NoType)
	}

	result := symtab.ResolveCall(c.Syms, c.Types, candidates, argTypes, contextType)

	c.Tree.Mutate(node, func(n *ast.Node) {
		applyPayload := n.Payload.(ast.Apply)
		applyPayload.Form = ast.ApplyCall
		n.Payload = applyPayload
	})

	if !result.Symbol.Valid() {
		if len(result.Ambiguous) > 0 {
			c.report(diagnostics.Error, node, "ambiguous call: more than one profile matches")
		} else {
			c.report(diagnostics.Error, node, "no matching profile for this call")
		}

		return c.errorType()
	}

	sym := c.Syms.Get(result.Symbol)
	c.Tree.Mutate(node, func(n *ast.Node) { n.ResolvedSymbol = sym.ID })

	for i, a := range p.Args {
		if deferred[i] && i < len(sym.Params) {
			c.ResolveExpression(a, sym.Params[i].Type)
		}
	}

	if !sym.Result.Valid() {
		return c.errorType()
	}

	return sym.Result
}

// resolveIndexOrSlice handles a prefix denoting an array-valued object: a
// single range argument is a slice over the same array type, anything else
// indexes down to the element type.
func (c *Context) resolveIndexOrSlice(node core.NodeID, p ast.Apply) core.TypeID {
	prefixTy := c.ResolveExpression(p.Prefix, core.NoType)
	if !prefixTy.Valid() {
		c.report(diagnostics.Error, node, "prefix is not an array, a subprogram, or a type")

		return c.errorType()
	}

	t := c.Types.Get(prefixTy)

	if t.Kind != types.Array && t.Kind != types.StringKind {
		c.report(diagnostics.Error, node, "prefix is not an array, a subprogram, or a type")

		return c.errorType()
	}

	body, ok := t.Body.(types.ArrayBody)
	if !ok {
		return c.errorType()
	}

	if len(p.Args) == 1 {
		if argNode := c.Tree.Get(p.Args[0]); argNode.Kind == ast.KindRangeExpr {
			c.ResolveExpression(p.Args[0], body.Indices[0])

			c.Tree.Mutate(node, func(n *ast.Node) {
				applyPayload := n.Payload.(ast.Apply)
				applyPayload.Form = ast.ApplySlice
				n.Payload = applyPayload
			})

			return prefixTy
		}
	}

	for i, a := range p.Args {
		idxTy := body.Indices[0]
		if i < len(body.Indices) {
			idxTy = body.Indices[i]
		}

		c.ResolveExpression(a, idxTy)
	}

	c.Tree.Mutate(node, func(n *ast.Node) {
		applyPayload := n.Payload.(ast.Apply)
		applyPayload.Form = ast.ApplyIndex
		n.Payload = applyPayload
	})

	return body.Element
}

// resolveAttribute resolves Prefix'Name(Args). The prefix may denote either
// a type mark or an object; array attributes consult the element/index
// types recorded in the array's body, scalar attributes return the prefix's
// own type.
func (c *Context) resolveAttribute(node core.NodeID, p ast.Attribute) core.TypeID {
	prefixTy := c.resolveAttributePrefix(p.Prefix)
	t := c.Types.Get(prefixTy)

	for _, a := range p.Args {
		c.ResolveExpression(a, core.NoType)
	}

	isArray := t.Kind == types.Array || t.Kind == types.StringKind

	switch p.Name {
	case "First", "Last":
		if isArray {
			if body, ok := t.Body.(types.ArrayBody); ok && len(body.Indices) > 0 {
				return body.Indices[0]
			}
		}

		return prefixTy
	case "Length":
		return c.Std.Integer
	case "Range":
		if isArray {
			if body, ok := t.Body.(types.ArrayBody); ok && len(body.Indices) > 0 {
				return body.Indices[0]
			}
		}

		return prefixTy
	case "Size", "Pos", "Val", "Succ", "Pred":
		if p.Name == "Pos" {
			return c.Std.Integer
		}

		return prefixTy
	default:
		c.report(diagnostics.Error, node, "unknown attribute '"+p.Name)

		return c.errorType()
	}
}

// resolveAttributePrefix resolves an attribute's prefix, preferring a type
// mark interpretation (T'First) over an object interpretation (Obj'First)
// when the name denotes a visible type.
func (c *Context) resolveAttributePrefix(node core.NodeID) core.TypeID {
	n := c.Tree.Get(node)

	id, ok := n.Payload.(ast.Identifier)
	if !ok {
		return c.ResolveExpression(node, core.NoType)
	}

	for _, cand := range c.Syms.LookupAll(id.Name) {
		sym := c.Syms.Get(cand)
		if sym.Kind == symtab.TypeSym || sym.Kind == symtab.Subtype {
			c.Tree.Mutate(node, func(n *ast.Node) {
				n.ResolvedSymbol = sym.ID
				n.ResolvedType = sym.Type
			})

			return sym.Type
		}
	}

	return c.ResolveExpression(node, core.NoType)
}
