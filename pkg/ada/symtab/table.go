package symtab

import (
	"fmt"

	"github.com/adalore/adac/pkg/ada/core"
)

// Table owns the full set of symbols and scopes for one compilation, and
// implements the push/pop/declare/lookup contract.
type Table struct {
	symbols *core.Arena[*Symbol]
	scopes  []*Scope
	current ScopeID
}

// NewTable constructs a symbol table with its global (Standard) scope
// already open.
func NewTable() *Table {
	t := &Table{symbols: core.NewArena[*Symbol]()}
	root := newScope(core.GlobalScope, core.GlobalScope, false, core.NoSymbol, 0)
	t.scopes = append(t.scopes, root)
	t.current = core.GlobalScope

	return t
}

// Current returns the currently open scope's ID.
func (t *Table) Current() ScopeID {
	return t.current
}

// Scope returns the scope with the given ID.
func (t *Table) Scope(id ScopeID) *Scope {
	return t.scopes[id]
}

// NumScopes returns the number of scopes ever opened in this table
// (including the closed ones), for callers that need to find a particular
// scope by its Owner after resolution has finished.
func (t *Table) NumScopes() int {
	return len(t.scopes)
}

// ScopeOf returns the scope owned by the given subprogram or package
// symbol, if one was ever pushed for it.
func (t *Table) ScopeOf(owner core.SymbolID) (ScopeID, bool) {
	for i, s := range t.scopes {
		if s.Owner == owner {
			return ScopeID(i), true
		}
	}

	return 0, false
}

// Push opens a new scope nested in the current one, owned by the given
// symbol (NoSymbol for an anonymous block), and returns its ID.
func (t *Table) Push(owner core.SymbolID) ScopeID {
	parent := t.current
	id := ScopeID(len(t.scopes))
	level := t.scopes[parent].Level + 1
	t.scopes = append(t.scopes, newScope(id, parent, true, owner, level))
	t.current = id

	return id
}

// Pop closes the current scope, returning to its parent.  Popping the
// global scope panics, since it must remain open for the lifetime of the
// compilation.
func (t *Table) Pop() {
	s := t.scopes[t.current]
	if !s.HasParent {
		panic("cannot pop the global scope")
	}

	t.current = s.Parent
}

// NewSymbol allocates a symbol of the given kind and name, installing it in
// the current scope as immediately visible, and returns its handle.  It does
// not check for a conflicting homograph; call Declare for that.
func (t *Table) NewSymbol(kind Kind, name string) *Symbol {
	sym := &Symbol{Kind: kind, Name: name, DefiningScope: t.current, NestingLevel: t.scopes[t.current].Level}
	sym.Parent = t.enclosingOwner()
	idx := t.symbols.Add(sym)
	sym.ID = core.SymbolID(idx)

	return sym
}

// enclosingOwner finds the symbol owning the nearest enclosing scope that
// has one — the new symbol's parent package or subprogram, which mangling
// folds into the linker-visible name.
func (t *Table) enclosingOwner() core.SymbolID {
	for s := t.scopes[t.current]; ; {
		if s.Owner.Valid() {
			return s.Owner
		}

		if !s.HasParent {
			return core.NoSymbol
		}

		s = t.scopes[s.Parent]
	}
}

// Get returns the symbol for the given handle.
func (t *Table) Get(id core.SymbolID) *Symbol {
	return t.symbols.Get(uint32(id))
}

// AllSymbols returns every symbol ever allocated in this table, in
// allocation order. Used for whole-compilation sweeps (like emitting the
// forwarding bodies of derived operations) that run after resolution has
// popped the scopes a name lookup would have needed.
func (t *Table) AllSymbols() []core.SymbolID {
	out := make([]core.SymbolID, 0, t.symbols.Len())

	for i := 1; i <= t.symbols.Len(); i++ {
		out = append(out, core.SymbolID(i))
	}

	return out
}

// Declare installs a freshly allocated symbol into the current scope,
// applying Ada's "redeclaration of a non-overloadable name hides the
// earlier one" rule: if a non-overloadable homograph is already
// immediately visible in this scope, it is hidden rather than replaced (its
// declaration remains valid for any reference recorded before the
// redeclaration).
func (t *Table) Declare(sym *Symbol) {
	scope := t.scopes[sym.DefiningScope]
	chain := scope.names[sym.Name]

	if !sym.Kind.IsOverloadable() {
		for i := range chain {
			if chain[i].visibility != ImmediatelyVisible {
				continue
			}

			// Predefined names cannot be shadowed at the global scope
			// itself, only in inner scopes: the Standard binding stays
			// visible and keeps winning lookups.
			if scope.ID == core.GlobalScope && t.Get(chain[i].symbol).Flags.IsPredefined {
				continue
			}

			chain[i].visibility = Hidden
		}
	}

	sym.Visibility = ImmediatelyVisible
	scope.names[sym.Name] = append(chain, binding{sym.ID, ImmediatelyVisible})
	scope.order = append(scope.order, sym.ID)
}

// Use raises every exported symbol of the given package symbol to
// use_visible in the current scope, implementing a use-clause.  If a name
// is already use_visible in this scope from a *different* package, it
// becomes ambiguous rather than doubly use-visible.
func (t *Table) Use(pkg *Symbol) {
	scope := t.scopes[t.current]

	for _, exportID := range pkg.Exports {
		exp := t.Get(exportID)
		chain := scope.names[exp.Name]

		already := false

		for _, b := range chain {
			if b.visibility == UseVisible {
				if b.symbol != exportID {
					scope.ambiguousUse[exp.Name] = true
				}

				already = true
			}
		}

		if !already {
			scope.names[exp.Name] = append(chain, binding{exportID, UseVisible})
		}
	}
}

// ErrAmbiguous is returned by Lookup when a name resolves to more than one
// equally-visible candidate that lookup cannot itself disambiguate (e.g.
// two distinct use-visible homographs).
var ErrAmbiguous = fmt.Errorf("ambiguous name")

// ErrUndeclared is returned by Lookup when no visible candidate exists.
var ErrUndeclared = fmt.Errorf("undeclared name")

// Lookup returns the single most-visible, non-overloadable binding for name
// visible from the current scope outward.  For subprogram and
// enumeration-literal names, callers should use LookupAll and run overload
// resolution instead: Lookup returns an arbitrary one of several
// same-named overloads, which is only correct for non-overloadable kinds.
func (t *Table) Lookup(name string) (core.SymbolID, error) {
	all, ambiguous := t.lookupChain(name)

	if ambiguous {
		return core.NoSymbol, ErrAmbiguous
	}

	if len(all) == 0 {
		return core.NoSymbol, ErrUndeclared
	}

	return all[0], nil
}

// LookupAll returns every visible candidate for name from the current scope
// outward, for use as the starting candidate set of overload resolution.
func (t *Table) LookupAll(name string) []core.SymbolID {
	all, _ := t.lookupChain(name)
	return all
}

// Names returns every name with at least one non-hidden binding reachable
// from the current scope, used to build Levenshtein "did you mean"
// suggestion lists.
func (t *Table) Names() []string {
	seen := make(map[string]bool)
	var out []string

	for id := t.current; ; {
		scope := t.scopes[id]

		for name, chain := range scope.names {
			for _, b := range chain {
				if b.visibility != Hidden && !seen[name] {
					seen[name] = true
					out = append(out, name)
				}
			}
		}

		if !scope.HasParent {
			break
		}

		id = scope.Parent
	}

	return out
}

// lookupChain walks the scope chain outward from the current scope,
// collecting visible bindings.  A non-overloadable binding found at some
// scope stops the outward search (it shadows everything further out); an
// overloadable binding continues accumulating candidates from enclosing
// scopes too, since Ada overloading can mix declarations from nested
// scopes.
func (t *Table) lookupChain(name string) (candidates []core.SymbolID, ambiguous bool) {
	for id := t.current; ; {
		scope := t.scopes[id]

		if scope.ambiguousUse[name] {
			ambiguous = true
		}

		var best Visibility

		var bestAtScope []core.SymbolID

		stopHere := false

		for _, b := range scope.names[name] {
			if b.visibility == Hidden {
				continue
			}

			sym := t.Get(b.symbol)

			if b.visibility > best {
				best = b.visibility
				bestAtScope = []core.SymbolID{b.symbol}
			} else if b.visibility == best {
				bestAtScope = append(bestAtScope, b.symbol)
			}

			if !sym.Kind.IsOverloadable() {
				stopHere = true
			}
		}

		candidates = append(candidates, bestAtScope...)

		if stopHere || !scope.HasParent {
			break
		}

		id = scope.Parent
	}

	return candidates, ambiguous
}
