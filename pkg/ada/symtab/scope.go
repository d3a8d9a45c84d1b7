package symtab

import "github.com/adalore/adac/pkg/ada/core"

// ScopeID identifies a scope in the scope tree.  ScopeID 0 is the Standard
// package's scope, the root of every scope tree.
type ScopeID = core.ScopeID

// binding is one entry in a scope's name table: a symbol together with its
// visibility *as seen from within this particular scope*.  The same symbol
// can appear with different visibility in different scopes (e.g.
// use_visible in a scope with a use-clause, directly_visible in the scope
// where its package is withed without a use-clause naming it, and hidden in
// a nested scope that redeclares the name).
type binding struct {
	symbol     core.SymbolID
	visibility Visibility
}

// Scope is one node of the scope tree: a hash table of name chains, plus
// the bookkeeping needed for frame allocation and uplevel references during
// code generation.
type Scope struct {
	ID     ScopeID
	Parent ScopeID
	// HasParent distinguishes the root scope (whose Parent field is
	// otherwise indistinguishable from scope 0 itself) from a real
	// parent link.
	HasParent bool
	// Owner is the symbol (subprogram or package) that introduced this
	// scope; NoSymbol for the global (Standard) scope.
	Owner core.SymbolID
	Level uint32

	names map[string][]binding
	// order lists every symbol declared directly in this scope, in
	// declaration order, for ordered iteration (e.g. frame layout,
	// package export listing).
	order []core.SymbolID

	// FrameSize accumulates the byte size of locals needing stack slots
	// in this scope, used by the code emitter to size the subprogram's
	// stack frame.
	FrameSize uint32

	// ambiguousUse records names made use_visible by more than one
	// distinct package in this scope; referencing such a name without
	// qualification is an error.
	ambiguousUse map[string]bool
}

func newScope(id, parent ScopeID, hasParent bool, owner core.SymbolID, level uint32) *Scope {
	return &Scope{
		ID: id, Parent: parent, HasParent: hasParent, Owner: owner, Level: level,
		names: make(map[string][]binding), ambiguousUse: make(map[string]bool),
	}
}

// Symbols returns every symbol declared directly in this scope, in
// declaration order.
func (s *Scope) Symbols() []core.SymbolID {
	return s.order
}
