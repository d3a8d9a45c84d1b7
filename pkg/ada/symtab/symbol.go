package symtab

import (
	"github.com/adalore/adac/pkg/ada/core"
	"github.com/adalore/adac/pkg/ada/types"
	"github.com/adalore/adac/pkg/diagnostics"
)

// Param describes one formal parameter of a subprogram symbol.
type Param struct {
	Name    string
	Type    core.TypeID
	Mode    Mode
	Default core.NodeID // NoNode if the formal has no default expression.
}

// PragmaEffects collects the representation-affecting pragmas that may
// apply to a symbol: Inline, Import/Export with their external/link names,
// calling Convention, and a local Suppress/Unsuppress mask layered over the
// type's own.
type PragmaEffects struct {
	Inline       bool
	Imported     bool
	Exported     bool
	ExternalName string
	LinkName     string
	Convention   Convention
	Suppressed   types.CheckMask
}

// CodegenFlags are mutated by the code emitter as it processes a symbol, to
// avoid emitting a definition (or an external declaration) more than once.
type CodegenFlags struct {
	ExternallyDeclared bool
	BodyEmitted        bool
	IsPredefined       bool
	BodyClaimed        bool
}

// Symbol describes one named entity: a variable, type, subprogram,
// package, or any of the other closed set of symbol kinds.
type Symbol struct {
	ID   core.SymbolID
	Kind Kind
	Name string
	Span diagnostics.Span
	Type core.TypeID

	DefiningScope ScopeID
	Parent        core.SymbolID // enclosing package or subprogram symbol, NoSymbol at library level.

	// Overload is the next symbol sharing this name in the same scope
	// with a different profile; forms a singly linked chain.
	Overload core.SymbolID

	Visibility Visibility

	// Subprogram-only fields.
	Params []Param
	Result core.TypeID // NoType for a procedure.

	// Package-only field.
	Exports []core.SymbolID

	NestingLevel uint32
	FrameOffset  uint32

	Pragmas PragmaEffects
	Flags   CodegenFlags

	// Derived-operation fields: set when this symbol was synthesized as
	// the inherited primitive operation of a derived type.
	DerivedFrom       core.SymbolID
	DerivedFromType   core.TypeID

	// Generic fields.
	GenericTemplate core.SymbolID
	ExpandedSpec    core.NodeID
	ExpandedBody    core.NodeID
}

// Arity returns the number of formal parameters of a subprogram symbol.
func (s *Symbol) Arity() int {
	return len(s.Params)
}

// IsFunction reports whether this subprogram returns a value.
func (s *Symbol) IsFunction() bool {
	return s.Kind == Function
}

// MinArgs reports the minimum number of arguments a call must
// supply, accounting for trailing defaulted parameters.
func (s *Symbol) MinArgs() int {
	n := len(s.Params)

	for i := len(s.Params) - 1; i >= 0; i-- {
		if s.Params[i].Default == core.NoNode {
			return i + 1
		}

		n = i
	}

	return n
}
