package symtab

import (
	"testing"

	"github.com/adalore/adac/pkg/ada/core"
	"github.com/adalore/adac/pkg/ada/types"
)

func TestDeclareShadowsNonOverloadable(t *testing.T) {
	table := NewTable()
	reg := types.NewRegistry()
	ty := reg.Allocate(types.Integer, "T")

	outer := table.NewSymbol(Variable, "X")
	outer.Type = ty
	table.Declare(outer)

	table.Push(core.NoSymbol)

	inner := table.NewSymbol(Variable, "X")
	inner.Type = ty
	table.Declare(inner)

	got, err := table.Lookup("X")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	if got != inner.ID {
		t.Fatalf("expected inner declaration to shadow outer")
	}

	table.Pop()

	got, err = table.Lookup("X")
	if err != nil {
		t.Fatalf("lookup after pop: %v", err)
	}

	if got != outer.ID {
		t.Fatalf("expected outer declaration visible again after pop")
	}
}

func TestUseVisibleAmbiguity(t *testing.T) {
	table := NewTable()

	pkgA := table.NewSymbol(PackageSym, "A")
	table.Declare(pkgA)
	table.Push(pkgA.ID)
	opA := table.NewSymbol(Function, "\"+\"")
	table.Declare(opA)
	pkgA.Exports = []core.SymbolID{opA.ID}
	table.Pop()

	pkgB := table.NewSymbol(PackageSym, "B")
	table.Declare(pkgB)
	table.Push(pkgB.ID)
	opB := table.NewSymbol(Function, "\"+\"")
	table.Declare(opB)
	pkgB.Exports = []core.SymbolID{opB.ID}
	table.Pop()

	table.Use(pkgA)
	table.Use(pkgB)

	_, err := table.Lookup("\"+\"")
	if err != ErrAmbiguous {
		t.Fatalf("expected ambiguous lookup, got %v", err)
	}
}

func TestResolveCallOverloadDisambiguation(t *testing.T) {
	table := NewTable()
	reg := types.NewRegistry()
	std := SeedStandard(table, reg)

	pInt := table.NewSymbol(Procedure, "P")
	pInt.Params = []Param{{Name: "X", Type: std.Integer}}
	table.Declare(pInt)

	pFloat := table.NewSymbol(Procedure, "P")
	pFloat.Params = []Param{{Name: "X", Type: std.Float}}
	table.Declare(pFloat)

	candidates := table.LookupAll("P")
	if len(candidates) != 2 {
		t.Fatalf("expected 2 overloads of P, got %d", len(candidates))
	}

	result := ResolveCall(table, reg, candidates, []core.TypeID{std.UniversalInteger}, core.NoType)
	if result.Symbol != pInt.ID {
		t.Fatalf("P(3) should resolve to the Integer overload")
	}

	resultF := ResolveCall(table, reg, candidates, []core.TypeID{std.Float}, core.NoType)
	if resultF.Symbol != pFloat.ID {
		t.Fatalf("P(3.0) should resolve to the Float overload")
	}
}

func TestResolveCallNoMatchingProfile(t *testing.T) {
	table := NewTable()
	reg := types.NewRegistry()
	std := SeedStandard(table, reg)

	p := table.NewSymbol(Procedure, "Q")
	p.Params = []Param{{Name: "X", Type: std.Boolean}}
	table.Declare(p)

	result := ResolveCall(table, reg, table.LookupAll("Q"), []core.TypeID{std.Float}, core.NoType)
	if result.Symbol != core.NoSymbol || result.Ambiguous != nil {
		t.Fatalf("expected no matching profile for Q(3.0)")
	}
}

func TestPredefinedNotShadowedAtGlobalScope(t *testing.T) {
	table := NewTable()
	reg := types.NewRegistry()
	std := SeedStandard(table, reg)

	redecl := table.NewSymbol(TypeSym, "BOOLEAN")
	redecl.Type = reg.Allocate(types.Integer, "BOOLEAN")
	table.Declare(redecl)

	got, err := table.Lookup("BOOLEAN")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	if table.Get(got).Type != std.Boolean {
		t.Fatalf("expected the predefined BOOLEAN to stay visible at the global scope")
	}

	table.Push(core.NoSymbol)

	inner := table.NewSymbol(TypeSym, "BOOLEAN")
	inner.Type = reg.Allocate(types.Integer, "BOOLEAN")
	table.Declare(inner)

	got, err = table.Lookup("BOOLEAN")
	if err != nil {
		t.Fatalf("lookup in inner scope: %v", err)
	}

	if got != inner.ID {
		t.Fatalf("expected an inner scope to be allowed to shadow a predefined name")
	}
}
