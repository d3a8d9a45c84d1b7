package resolver

import (
	"github.com/adalore/adac/pkg/ada/ast"
	"github.com/adalore/adac/pkg/ada/core"
	"github.com/adalore/adac/pkg/ada/symtab"
	"github.com/adalore/adac/pkg/diagnostics"
)

// ResolveCompilationUnit is the resolver's single entry point: it applies
// the unit's use clauses against the scope the driver has already prepared
// (with the with-ed units' specs visible from earlier calls against the
// same Context), then resolves the library item itself. Resolution never
// stops at the first error: it continues through the whole unit so that a
// single mistake does not hide every later diagnostic, and HasErrors tells
// the caller whether code generation should be skipped.
func (c *Context) ResolveCompilationUnit(node core.NodeID) {
	n := c.Tree.Get(node)

	cu, ok := n.Payload.(ast.CompilationUnit)
	if !ok {
		c.report(diagnostics.Error, node, "internal error: not a compilation unit")
		return
	}

	for _, u := range cu.UseList {
		c.resolveUseClause(u)
	}

	for _, pragma := range cu.Pragmas {
		c.checkElaborationPragma(pragma)
	}

	c.ResolveDeclaration(cu.Body)

	// The unit node shares the library item's own symbol, so consumers
	// holding only the unit handle (the driver's ALI writer, the emitter)
	// need not re-dispatch on the body payload.
	bodySym := c.Tree.Get(cu.Body).ResolvedSymbol
	c.Tree.Mutate(node, func(n *ast.Node) { n.ResolvedSymbol = bodySym })
}

func (c *Context) resolveUseClause(node core.NodeID) {
	n := c.Tree.Get(node)

	uc, ok := n.Payload.(ast.UseClause)
	if !ok {
		return
	}

	for _, unitName := range uc.Units {
		found := false

		for _, cand := range c.Syms.LookupAll(unitName) {
			sym := c.Syms.Get(cand)
			if sym.Kind == symtab.PackageSym {
				c.Syms.Use(sym)
				found = true

				break
			}
		}

		if !found {
			c.reportUndeclared(node, unitName)
		}
	}
}

// checkElaborationPragma validates that Elaborate/Elaborate_All pragmas
// name a unit actually appearing in this unit's context clause; the
// resulting strong/weak edges themselves are built by the elaboration
// order package from the compilation unit list, not here.
func (c *Context) checkElaborationPragma(p ast.ElaborationPragma) {
	if p.Kind != ast.PragmaElaborate && p.Kind != ast.PragmaElaborateAll {
		return
	}

	if p.Unit == "" {
		return
	}

	if len(c.Syms.LookupAll(p.Unit)) == 0 {
		c.Diags.Add(c.Source.Diagnostic(diagnostics.Warning, diagnostics.Span{},
			"pragma names unit \""+p.Unit+"\", which is not withed here"))
	}
}

// deriveOperations synthesizes the inherited primitive operations of a
// derived type: every subprogram declared in the same package as the
// parent type, and whose profile mentions the parent type, gets a
// counterpart whose profile mentions the derived type instead, tagged with
// its origin. The synthesized symbol's forwarding body is emitted later by
// the code emitter, keyed off DerivedFrom (pkg/ada/codegen/derive.go).
func (c *Context) deriveOperations(derivedSym core.SymbolID, parentType core.TypeID) {
	derived := c.Syms.Get(derivedSym)
	parentPkg := c.parentTypePackageScope(parentType)

	seen := make(map[core.SymbolID]bool)

	for _, name := range c.Syms.Names() {
		for _, cand := range c.Syms.LookupAll(name) {
			if seen[cand] {
				continue
			}

			seen[cand] = true

			orig := c.Syms.Get(cand)
			if !orig.Kind.IsSubprogram() || !mentionsType(orig, parentType) {
				continue
			}

			if c.enclosingPackageScope(orig) != parentPkg {
				continue
			}

			copySym := c.Syms.NewSymbol(orig.Kind, orig.Name)
			copySym.Params = substituteParams(orig.Params, parentType, derived.Type)
			copySym.Result = substituteType(orig.Result, parentType, derived.Type)
			copySym.DerivedFrom = orig.ID
			copySym.DerivedFromType = parentType
			c.Syms.Declare(copySym)
		}
	}
}

// parentTypePackageScope returns the scope the "declared in the same
// package as the parent" test compares every candidate primitive
// operation against: the package-owned scope enclosing the parent type's
// defining symbol, or the global scope for a predefined type (e.g. Integer)
// that has no defining symbol of its own.
func (c *Context) parentTypePackageScope(parentType core.TypeID) symtab.ScopeID {
	parent := c.Types.Get(parentType)
	if !parent.DefiningSymbol.Valid() {
		return core.GlobalScope
	}

	return c.enclosingPackageScope(c.Syms.Get(parent.DefiningSymbol))
}

// enclosingPackageScope walks outward from sym's defining scope until it
// reaches the scope owned by a package symbol, or the global scope if sym
// was declared at library level outside any package.
func (c *Context) enclosingPackageScope(sym *symtab.Symbol) symtab.ScopeID {
	scope := sym.DefiningScope

	for {
		s := c.Syms.Scope(scope)

		if s.Owner.Valid() && c.Syms.Get(s.Owner).Kind == symtab.PackageSym {
			return scope
		}

		if !s.HasParent {
			return scope
		}

		scope = s.Parent
	}
}

func mentionsType(sym *symtab.Symbol, ty core.TypeID) bool {
	if sym.Result == ty {
		return true
	}

	for _, p := range sym.Params {
		if p.Type == ty {
			return true
		}
	}

	return false
}

func substituteType(ty, from, to core.TypeID) core.TypeID {
	if ty == from {
		return to
	}

	return ty
}

func substituteParams(params []symtab.Param, from, to core.TypeID) []symtab.Param {
	out := make([]symtab.Param, len(params))

	for i, p := range params {
		out[i] = p
		out[i].Type = substituteType(p.Type, from, to)
	}

	return out
}
