// Package resolver walks a parsed syntax tree, annotating each expression
// with a resolved type and each identifier with a symbol, folding static
// expressions as it goes.  It is the one package that imports ast, types,
// and symtab together and therefore owns the arenas core.NodeID/TypeID/
// SymbolID handles refer into.
package resolver

import (
	"math/big"

	"github.com/adalore/adac/pkg/ada/ast"
	"github.com/adalore/adac/pkg/ada/core"
	"github.com/adalore/adac/pkg/ada/symtab"
	"github.com/adalore/adac/pkg/ada/types"
	"github.com/adalore/adac/pkg/diagnostics"
)

// Context is the compilation context threaded through every resolver entry
// point: one tree, one type registry, one symbol table, and the diagnostic
// bag errors and warnings accumulate into.  A fresh Context is constructed
// per compilation unit; the driver is responsible for reusing the Registry/
// Table across units of the same program if it wants shared visibility of
// previously compiled specs.
type Context struct {
	Tree   *ast.Tree
	Types  *types.Registry
	Syms   *symtab.Table
	Std    *symtab.Standard
	Diags  *diagnostics.Bag
	Source *diagnostics.SourceFile

	// errorCount mirrors Diags.Count(diagnostics.Error) but is checked on
	// every resolution step, so it is cached here to avoid rescanning the
	// bag on every node.
	errorCount int

	// constValues caches the folded value of every symbol declared as a
	// static named number or constant, so that FoldInteger can resolve an
	// Identifier referencing one without re-walking its declaration.
	constValues map[core.SymbolID]*big.Int

	// DeclSymbols records, for a declaration or a for-loop statement node,
	// the symbol(s) it installed into the table. The symbol table's
	// "current scope" is transient pop-on-exit state, gone again by the
	// time codegen walks the same tree, so this is the only place the
	// association survives resolution; codegen reads it instead of trying
	// to re-derive a declaration's symbols from scope lookups.
	DeclSymbols map[core.NodeID][]core.SymbolID

	// freezeRegions is the stack of open declarative regions, each
	// accumulating the types declared in it that no freeze condition has
	// fired for yet; see freeze.go.
	freezeRegions [][]pendingFreeze

	// derivedOpsDone marks derived types whose inherited primitive
	// operations have been synthesized, so a type frozen transitively and
	// then again at its own freeze point derives them exactly once.
	derivedOpsDone map[core.TypeID]bool
}

// NewContext constructs a fresh resolution context with the Standard
// package already seeded into the symbol table's global scope.
func NewContext(src *diagnostics.SourceFile) *Context {
	reg := types.NewRegistry()
	tab := symtab.NewTable()
	std := symtab.SeedStandard(tab, reg)

	return &Context{
		Tree: ast.NewTree(), Types: reg, Syms: tab, Std: std,
		Diags: &diagnostics.Bag{}, Source: src,
		constValues:    make(map[core.SymbolID]*big.Int),
		DeclSymbols:    make(map[core.NodeID][]core.SymbolID),
		derivedOpsDone: make(map[core.TypeID]bool),
	}
}

// errorType is the sentinel type returned by a failed resolution so that
// resolution can continue without cascading further diagnostics from the
// same mistake; it covers, and is covered by, every other type.
func (c *Context) errorType() core.TypeID {
	return c.Std.ErrorType
}

// report records a diagnostic at the given node's span.
func (c *Context) report(sev diagnostics.Severity, node core.NodeID, msg string) {
	span := c.Tree.Get(node).Span
	d := c.Source.Diagnostic(sev, span, msg)
	c.Diags.Add(d)

	if sev == diagnostics.Error {
		c.errorCount++
	}
}

// reportUndeclared reports an undeclared identifier, adding a "did you mean"
// note for each visible name within the suggestion distance.
func (c *Context) reportUndeclared(node core.NodeID, name string) {
	d := c.Source.Diagnostic(diagnostics.Error, c.Tree.Get(node).Span, "undeclared identifier \""+name+"\"")

	for _, s := range diagnostics.Suggest(name, c.Syms.Names()) {
		d.WithNote(c.Tree.Get(node).Span, "did you mean \""+s+"\"?")
	}

	c.Diags.Add(d)
	c.errorCount++
}

// HasErrors reports whether any error has been accumulated so far. Code
// emission is skipped if this is true at the end of the resolver pass.
func (c *Context) HasErrors() bool {
	return c.errorCount > 0
}

// setResolved annotates a node with its resolved type and (optionally, if
// valid) symbol.
func (c *Context) setResolved(node core.NodeID, ty core.TypeID, sym core.SymbolID) {
	c.Tree.Mutate(node, func(n *ast.Node) {
		n.ResolvedType = ty
		n.ResolvedSymbol = sym
	})
}
