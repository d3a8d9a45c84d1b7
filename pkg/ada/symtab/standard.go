package symtab

import (
	"math/big"

	"github.com/adalore/adac/pkg/ada/core"
	"github.com/adalore/adac/pkg/ada/types"
)

// Standard collects the handles of the predefined entities seeded into the
// global scope, for convenient reference elsewhere in the resolver and
// code emitter without repeated name lookups.
type Standard struct {
	Boolean          core.TypeID
	Character        core.TypeID
	Integer          core.TypeID
	ShortShortInt    core.TypeID
	ShortInt         core.TypeID
	LongInt          core.TypeID
	LongLongInt      core.TypeID
	Float            core.TypeID
	Duration         core.TypeID
	String           core.TypeID
	UniversalInteger core.TypeID
	UniversalReal    core.TypeID
	ErrorType        core.TypeID

	True  core.SymbolID
	False core.SymbolID
}

// SeedStandard populates the global scope with the Standard package's
// predefined types and literals, marking each is_predefined so that it
// cannot be shadowed anywhere except an inner scope (per spec, redeclaring
// a predefined name is legal everywhere but the global scope itself).
func SeedStandard(table *Table, reg *types.Registry) *Standard {
	std := &Standard{}

	mkScalar := func(kind types.Kind, name string, lo, hi int64) core.TypeID {
		id := reg.Allocate(kind, name)
		t := reg.Get(id)
		t.Low = types.ExactBound(big.NewInt(lo))
		t.High = types.ExactBound(big.NewInt(hi))
		declarePredefinedType(table, id, name)

		return id
	}

	std.ErrorType = reg.Allocate(types.Unknown, "<error>")
	std.Boolean = mkScalar(types.Boolean, "BOOLEAN", 0, 1)
	std.Character = mkScalar(types.CharacterKind, "CHARACTER", 0, 255)
	std.Integer = mkScalar(types.Integer, "INTEGER", -(1 << 31), (1<<31)-1)
	std.ShortShortInt = mkScalar(types.Integer, "SHORT_SHORT_INTEGER", -128, 127)
	std.ShortInt = mkScalar(types.Integer, "SHORT_INTEGER", -(1 << 15), (1<<15)-1)
	std.LongInt = mkScalar(types.Integer, "LONG_INTEGER", -(1 << 31), (1<<31)-1)
	std.LongLongInt = mkScalar(types.Integer, "LONG_LONG_INTEGER", -(1 << 63), (1<<63)-1)

	std.Float = reg.Allocate(types.FloatKind, "FLOAT")
	reg.Get(std.Float).Body = types.FloatBody{Digits: 6}
	declarePredefinedType(table, std.Float, "FLOAT")

	std.Duration = reg.Allocate(types.Fixed, "DURATION")
	dur := reg.Get(std.Duration)
	dur.Body = types.FixedBody{Delta: 0.00000005, Small: 0.00000005}
	dur.Low = types.ExactBound(big.NewInt(-86400))
	dur.High = types.ExactBound(big.NewInt(86400))
	declarePredefinedType(table, std.Duration, "DURATION")

	std.UniversalInteger = reg.Allocate(types.UniversalInteger, "universal_integer")
	std.UniversalReal = reg.Allocate(types.UniversalReal, "universal_real")

	boolBody := types.EnumBody{Literals: []string{"FALSE", "TRUE"}}
	reg.Get(std.Boolean).Body = boolBody

	falseSym := table.NewSymbol(Literal, "FALSE")
	falseSym.Type = std.Boolean
	falseSym.Flags.IsPredefined = true
	table.Declare(falseSym)
	std.False = falseSym.ID

	trueSym := table.NewSymbol(Literal, "TRUE")
	trueSym.Type = std.Boolean
	trueSym.Flags.IsPredefined = true
	table.Declare(trueSym)
	std.True = trueSym.ID

	std.String = reg.Allocate(types.StringKind, "STRING")
	reg.Get(std.String).Body = types.ArrayBody{
		Indices:     []core.TypeID{std.Integer},
		Element:     std.Character,
		Constrained: false,
	}
	declarePredefinedType(table, std.String, "STRING")

	// Standard's types are frozen at compiler initialization: their
	// representations are fixed by the language, so no later freeze point
	// can ever change them.
	for _, id := range []core.TypeID{
		std.Boolean, std.Character, std.Integer, std.ShortShortInt,
		std.ShortInt, std.LongInt, std.LongLongInt, std.Float,
		std.Duration, std.UniversalInteger, std.UniversalReal, std.String,
	} {
		if err := reg.Freeze(id); err != nil {
			panic("standard type failed to freeze: " + err.Error())
		}
	}

	return std
}

func declarePredefinedType(table *Table, id core.TypeID, name string) {
	sym := table.NewSymbol(TypeSym, name)
	sym.Type = id
	sym.Flags.IsPredefined = true
	table.Declare(sym)
}
