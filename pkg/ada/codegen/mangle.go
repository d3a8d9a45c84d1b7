package codegen

import (
	"fmt"
	"strings"

	"github.com/adalore/adac/pkg/ada/symtab"
)

// Mangle computes sym's linker-visible external name, per the deterministic
// scheme: a dotted name becomes underscored, a nested subprogram's name
// incorporates its parent's mangled name, and an overloadable name
// disambiguates by appending its unique symbol id — so mangling is
// injective on distinct (symbol, unique id) pairs even when two overloads
// share every other part of their mangled prefix. A symbol introduced by
// pragma Import/Export with an explicit external or link name is mangled to
// that name verbatim instead, since the linker must match an existing
// entry point exactly.
func Mangle(syms *symtab.Table, sym *symtab.Symbol) string {
	if sym.Pragmas.Imported || sym.Pragmas.Exported {
		if sym.Pragmas.ExternalName != "" {
			return sym.Pragmas.ExternalName
		}

		if sym.Pragmas.LinkName != "" {
			return sym.Pragmas.LinkName
		}
	}

	parts := []string{sanitize(sym.Name)}

	for p := sym.Parent; p.Valid(); {
		parent := syms.Get(p)
		parts = append([]string{sanitize(parent.Name)}, parts...)
		p = parent.Parent
	}

	name := strings.Join(parts, "_")

	if sym.Kind.IsOverloadable() {
		name = fmt.Sprintf("%s__%d", name, uint32FromID(sym))
	}

	return name
}

// sanitize lowercases a simple Ada identifier and turns any embedded dots
// (from a dotted selected name recorded whole, e.g. a with-ed unit's
// mangled prefix) into underscores.
func sanitize(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), ".", "_")
}

func uint32FromID(sym *symtab.Symbol) uint32 {
	return uint32(sym.ID)
}
