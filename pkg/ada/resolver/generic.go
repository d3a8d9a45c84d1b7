package resolver

import (
	"github.com/adalore/adac/pkg/ada/ast"
	"github.com/adalore/adac/pkg/ada/core"
	"github.com/adalore/adac/pkg/ada/symtab"
	"github.com/adalore/adac/pkg/diagnostics"
)

// resolveGenericDecl registers a generic unit template. Nothing inside the
// template is resolved here: its formals have no actuals yet, so the body
// only acquires meaning per instantiation, when a substituted copy expands
// and resolves like an ordinary declaration.
func (c *Context) resolveGenericDecl(node core.NodeID, p ast.GenericDecl) []core.SymbolID {
	name := c.genericItemName(p.Item)
	if name == "" {
		c.report(diagnostics.Error, node, "generic declaration wraps no named unit")
		return nil
	}

	sym := c.Syms.NewSymbol(symtab.Generic, name)
	sym.ExpandedSpec = node
	c.Syms.Declare(sym)

	c.Tree.Mutate(node, func(n *ast.Node) { n.ResolvedSymbol = sym.ID })

	return []core.SymbolID{sym.ID}
}

// genericItemName extracts the defining name of the unit a generic
// declaration wraps.
func (c *Context) genericItemName(item core.NodeID) string {
	switch p := c.Tree.Get(item).Payload.(type) {
	case ast.PackageSpec:
		return p.Name
	case ast.SubprogramSpec:
		return p.Name
	case ast.SubprogramBody:
		if spec, ok := c.Tree.Get(p.Spec).Payload.(ast.SubprogramSpec); ok {
			return spec.Name
		}
	}

	return ""
}

// resolveGenericInstantiation expands one instantiation: the template's
// item is copied with every formal name substituted by its positional
// actual (the instantiation environment applied as a tree rewrite), the
// copy is renamed to the instance's own name, and the result resolves as a
// regular declaration. The instance's symbols carry a back-reference to
// the template and to the expanded copy, which is what the code emitter
// walks when it reaches the instantiation.
func (c *Context) resolveGenericInstantiation(node core.NodeID, p ast.GenericInstantiation) []core.SymbolID {
	tmpl := c.lookupGenericTemplate(node, p.GenericName)
	if tmpl == nil {
		return nil
	}

	decl, ok := c.Tree.Get(tmpl.ExpandedSpec).Payload.(ast.GenericDecl)
	if !ok {
		c.report(diagnostics.Error, node, "internal error: generic template has no declaration")
		return nil
	}

	subst, ok := c.bindFormals(node, decl.Formals, p.Actuals)
	if !ok {
		return nil
	}

	expanded := c.Tree.Instantiate(decl.Item, subst)
	c.renameExpandedItem(expanded, p.Name)

	ids := c.ResolveDeclaration(expanded)

	for _, id := range ids {
		inst := c.Syms.Get(id)
		inst.GenericTemplate = tmpl.ID
		inst.ExpandedSpec = expanded
	}

	c.DeclSymbols[node] = ids

	if len(ids) > 0 {
		c.Tree.Mutate(node, func(n *ast.Node) { n.ResolvedSymbol = ids[0] })
	}

	return ids
}

func (c *Context) lookupGenericTemplate(node core.NodeID, nameNode core.NodeID) *symtab.Symbol {
	id, ok := c.Tree.Get(nameNode).Payload.(ast.Identifier)
	if !ok {
		c.report(diagnostics.Error, node, "generic name must be a simple name")
		return nil
	}

	for _, cand := range c.Syms.LookupAll(id.Name) {
		sym := c.Syms.Get(cand)
		if sym.Kind == symtab.Generic {
			return sym
		}
	}

	c.reportUndeclared(node, id.Name)

	return nil
}

// bindFormals pairs the template's formal part with the instantiation's
// positional actuals, producing the name-to-node substitution map
// Instantiate applies.
func (c *Context) bindFormals(node core.NodeID, formals, actuals []core.NodeID) (map[string]core.NodeID, bool) {
	if len(actuals) != len(formals) {
		c.report(diagnostics.Error, node, "wrong number of generic actuals")
		return nil, false
	}

	subst := make(map[string]core.NodeID, len(formals))

	for i, f := range formals {
		switch fp := c.Tree.Get(f).Payload.(type) {
		case ast.GenericFormalType:
			subst[fp.Name] = actuals[i]
		case ast.GenericFormalObject:
			subst[fp.Name] = actuals[i]
		default:
			c.report(diagnostics.Error, node, "internal error: unrecognized generic formal")
			return nil, false
		}
	}

	return subst, true
}

// renameExpandedItem rewrites the expanded copy's defining name to the
// instance's own name, so the instance declares under its declared
// identifier rather than the template's.
func (c *Context) renameExpandedItem(item core.NodeID, name string) {
	c.Tree.Mutate(item, func(n *ast.Node) {
		switch p := n.Payload.(type) {
		case ast.PackageSpec:
			p.Name = name
			n.Payload = p
		case ast.SubprogramSpec:
			p.Name = name
			n.Payload = p
		}
	})

	if body, ok := c.Tree.Get(item).Payload.(ast.SubprogramBody); ok {
		c.renameExpandedItem(body.Spec, name)
	}
}
