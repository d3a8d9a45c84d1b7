package resolver

import (
	"math/big"
	"testing"

	"github.com/adalore/adac/pkg/ada/ast"
	"github.com/adalore/adac/pkg/ada/core"
	"github.com/adalore/adac/pkg/ada/symtab"
	"github.com/adalore/adac/pkg/diagnostics"
)

func newTestContext() *Context {
	src := diagnostics.NewSourceFile("test.adb", nil)
	return NewContext(src)
}

func identNode(c *Context, name string) core.NodeID {
	return c.Tree.Add(ast.KindIdentifier, diagnostics.Span{}, ast.Identifier{Name: name})
}

func intLitNode(c *Context, v int64) core.NodeID {
	return c.Tree.Add(ast.KindIntegerLiteral, diagnostics.Span{}, ast.IntegerLiteral{Value: big.NewInt(v)})
}

func TestResolveObjectDeclFoldsConstantInitializer(t *testing.T) {
	c := newTestContext()

	declNode := c.Tree.Add(ast.KindObjectDecl, diagnostics.Span{}, ast.ObjectDecl{
		Names:    []string{"Answer"},
		Constant: true,
		Type:     identNode(c, "INTEGER"),
		Init:     intLitNode(c, 42),
	})

	ids := c.ResolveDeclaration(declNode)
	if c.HasErrors() {
		t.Fatalf("unexpected errors: %v", c.Diags.All())
	}

	if len(ids) != 1 {
		t.Fatalf("expected exactly one declared symbol, got %d", len(ids))
	}

	sym := c.Syms.Get(ids[0])
	if sym.Kind != symtab.Constant {
		t.Fatalf("expected a constant symbol, got %s", sym.Kind)
	}

	if sym.Type != c.Std.Integer {
		t.Fatalf("expected the constant's type to be Standard.Integer")
	}

	v, ok := c.constValues[sym.ID]
	if !ok {
		t.Fatalf("expected the initializer to be folded into constValues")
	}

	if v.Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("expected folded value 42, got %s", v)
	}
}

func TestResolveCallFormPicksOverloadByArgumentType(t *testing.T) {
	c := newTestContext()

	intSpec := c.Tree.Add(ast.KindSubprogramSpec, diagnostics.Span{}, ast.SubprogramSpec{
		Name: "Handle",
		Params: []ast.ParameterSpec{
			{Names: []string{"X"}, Mode: ast.ModeIn, Type: identNode(c, "INTEGER")},
		},
	})
	strSpec := c.Tree.Add(ast.KindSubprogramSpec, diagnostics.Span{}, ast.SubprogramSpec{
		Name: "Handle",
		Params: []ast.ParameterSpec{
			{Names: []string{"S"}, Mode: ast.ModeIn, Type: identNode(c, "STRING")},
		},
	})

	intIDs := c.ResolveDeclaration(intSpec)
	strIDs := c.ResolveDeclaration(strSpec)

	if c.HasErrors() {
		t.Fatalf("unexpected errors declaring overloads: %v", c.Diags.All())
	}

	handleInt, handleStr := intIDs[0], strIDs[0]

	intCall := c.Tree.Add(ast.KindApply, diagnostics.Span{}, ast.Apply{
		Prefix: identNode(c, "Handle"),
		Args:   []core.NodeID{intLitNode(c, 5)},
	})
	c.ResolveExpression(intCall, core.NoType)

	strCall := c.Tree.Add(ast.KindApply, diagnostics.Span{}, ast.Apply{
		Prefix: identNode(c, "Handle"),
		Args:   []core.NodeID{c.Tree.Add(ast.KindStringLiteral, diagnostics.Span{}, ast.StringLiteral{Value: "hi"})},
	})
	c.ResolveExpression(strCall, core.NoType)

	if c.HasErrors() {
		t.Fatalf("unexpected errors resolving calls: %v", c.Diags.All())
	}

	gotInt := c.Tree.Get(intCall).ResolvedSymbol
	gotStr := c.Tree.Get(strCall).ResolvedSymbol

	if gotInt != handleInt {
		t.Fatalf("Handle(5) resolved to %d, want the Integer overload %d", gotInt, handleInt)
	}

	if gotStr != handleStr {
		t.Fatalf("Handle(\"hi\") resolved to %d, want the String overload %d", gotStr, handleStr)
	}

	if gotInt == gotStr {
		t.Fatalf("expected the two calls to resolve to distinct overloads")
	}
}

func TestResolveSubtypeDeclReportsRangeOutsideBase(t *testing.T) {
	c := newTestContext()

	rng := c.Tree.Add(ast.KindRangeExpr, diagnostics.Span{}, ast.RangeExpr{
		Low:  intLitNode(c, 1_000_000_000),
		High: intLitNode(c, 3_000_000_000),
	})
	indication := c.Tree.Add(ast.KindSubtypeIndication, diagnostics.Span{}, ast.SubtypeIndication{
		Mark:       identNode(c, "INTEGER"),
		Constraint: rng,
	})
	subDecl := c.Tree.Add(ast.KindSubtypeDecl, diagnostics.Span{}, ast.SubtypeDecl{
		Name:       "Billions",
		Indication: indication,
	})

	c.ResolveDeclaration(subDecl)

	if !c.HasErrors() {
		t.Fatalf("expected an out-of-range diagnostic for a subtype constraint exceeding Integer's bounds")
	}

	found := false

	for _, d := range c.Diags.All() {
		if d.Severity() == diagnostics.Error {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected at least one error-severity diagnostic, got %v", c.Diags.All())
	}
}

func TestResolveSubtypeDeclAcceptsRangeWithinBase(t *testing.T) {
	c := newTestContext()

	rng := c.Tree.Add(ast.KindRangeExpr, diagnostics.Span{}, ast.RangeExpr{
		Low:  intLitNode(c, 0),
		High: intLitNode(c, 100),
	})
	indication := c.Tree.Add(ast.KindSubtypeIndication, diagnostics.Span{}, ast.SubtypeIndication{
		Mark:       identNode(c, "INTEGER"),
		Constraint: rng,
	})
	subDecl := c.Tree.Add(ast.KindSubtypeDecl, diagnostics.Span{}, ast.SubtypeDecl{
		Name:       "Percentage",
		Indication: indication,
	})

	ids := c.ResolveDeclaration(subDecl)

	if c.HasErrors() {
		t.Fatalf("unexpected errors for a range within Integer's bounds: %v", c.Diags.All())
	}

	sym := c.Syms.Get(ids[0])
	if sym.Kind != symtab.Subtype {
		t.Fatalf("expected a subtype symbol, got %s", sym.Kind)
	}

	ty := c.Types.Get(sym.Type)
	low, ok := ty.Low.TryExact()
	if !ok || low.Cmp(big.NewInt(0)) != 0 {
		t.Fatalf("expected the subtype's Low bound to be folded to 0, got %v", ty.Low)
	}
}

func TestTypeFrozenAtEndOfDeclarativePart(t *testing.T) {
	c := newTestContext()

	rangeDef := c.Tree.Add(ast.KindRangeExpr, diagnostics.Span{}, ast.RangeExpr{
		Low:  intLitNode(c, 1),
		High: intLitNode(c, 10),
	})
	typeDecl := c.Tree.Add(ast.KindTypeDecl, diagnostics.Span{}, ast.TypeDecl{
		Name:       "Small",
		Definition: rangeDef,
	})

	pkgSpec := c.Tree.Add(ast.KindPackageSpec, diagnostics.Span{}, ast.PackageSpec{
		Name:    "Holder",
		Visible: []core.NodeID{typeDecl},
	})

	c.ResolveDeclaration(pkgSpec)

	if c.HasErrors() {
		t.Fatalf("unexpected errors: %v", c.Diags.All())
	}

	ty := c.Types.Get(c.Tree.Get(typeDecl).ResolvedType)
	if !ty.Frozen {
		t.Fatalf("expected the type frozen at the end of the package's declarative part")
	}

	if ty.SizeBytes != 1 {
		t.Fatalf("expected range 1..10 to freeze to 1 byte, got %d", ty.SizeBytes)
	}
}

func TestTypeFrozenByObjectDeclaration(t *testing.T) {
	c := newTestContext()

	rangeDef := c.Tree.Add(ast.KindRangeExpr, diagnostics.Span{}, ast.RangeExpr{
		Low:  intLitNode(c, 0),
		High: intLitNode(c, 1000),
	})
	typeDecl := c.Tree.Add(ast.KindTypeDecl, diagnostics.Span{}, ast.TypeDecl{
		Name:       "Counter",
		Definition: rangeDef,
	})
	objDecl := c.Tree.Add(ast.KindObjectDecl, diagnostics.Span{}, ast.ObjectDecl{
		Names: []string{"C"},
		Type:  identNode(c, "Counter"),
	})

	specNode := c.Tree.Add(ast.KindSubprogramSpec, diagnostics.Span{}, ast.SubprogramSpec{Name: "Run"})
	bodyNode := c.Tree.Add(ast.KindSubprogramBody, diagnostics.Span{}, ast.SubprogramBody{
		Spec:         specNode,
		Declarations: []core.NodeID{typeDecl, objDecl},
	})

	c.ResolveDeclaration(bodyNode)

	if c.HasErrors() {
		t.Fatalf("unexpected errors: %v", c.Diags.All())
	}

	ty := c.Types.Get(c.Tree.Get(typeDecl).ResolvedType)
	if !ty.Frozen {
		t.Fatalf("expected the object declaration to freeze its type")
	}

	if ty.SizeBytes != 2 {
		t.Fatalf("expected range 0..1000 to freeze to 2 bytes, got %d", ty.SizeBytes)
	}
}

func TestFoldIntegerReembedsAndIsIdempotent(t *testing.T) {
	c := newTestContext()

	sum := c.Tree.Add(ast.KindBinaryOp, diagnostics.Span{}, ast.BinaryOp{
		Op:    "+",
		Left:  intLitNode(c, 2),
		Right: intLitNode(c, 3),
	})

	v, ok := c.FoldInteger(sum)
	if !ok || v.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("expected 2+3 to fold to 5, got %v (ok=%t)", v, ok)
	}

	if _, isLit := c.Tree.Get(sum).Payload.(ast.IntegerLiteral); !isLit {
		t.Fatalf("expected the folded result re-embedded as an integer literal")
	}

	v2, ok2 := c.FoldInteger(sum)
	if !ok2 || v2.Cmp(v) != 0 {
		t.Fatalf("expected a second fold to return the same value, got %v (ok=%t)", v2, ok2)
	}
}

func TestDerivedTypeInheritsPrimitiveOperations(t *testing.T) {
	c := newTestContext()

	rangeDef := c.Tree.Add(ast.KindRangeExpr, diagnostics.Span{}, ast.RangeExpr{
		Low:  intLitNode(c, 1),
		High: intLitNode(c, 100),
	})
	baseDecl := c.Tree.Add(ast.KindTypeDecl, diagnostics.Span{}, ast.TypeDecl{
		Name:       "Meters",
		Definition: rangeDef,
	})

	primSpec := c.Tree.Add(ast.KindSubprogramSpec, diagnostics.Span{}, ast.SubprogramSpec{
		Name: "Show",
		Params: []ast.ParameterSpec{
			{Names: []string{"M"}, Mode: ast.ModeIn, Type: identNode(c, "Meters")},
		},
	})

	derivedDecl := c.Tree.Add(ast.KindTypeDecl, diagnostics.Span{}, ast.TypeDecl{
		Name: "Feet",
		Definition: c.Tree.Add(ast.KindDerivedTypeDef, diagnostics.Span{}, ast.DerivedTypeDef{
			Parent: identNode(c, "Meters"),
		}),
	})

	pkgSpec := c.Tree.Add(ast.KindPackageSpec, diagnostics.Span{}, ast.PackageSpec{
		Name:    "Units",
		Visible: []core.NodeID{baseDecl, primSpec, derivedDecl},
	})

	c.ResolveDeclaration(pkgSpec)

	if c.HasErrors() {
		t.Fatalf("unexpected errors: %v", c.Diags.All())
	}

	feetTy := c.Tree.Get(derivedDecl).ResolvedType

	found := false

	for _, id := range c.Syms.AllSymbols() {
		sym := c.Syms.Get(id)
		if !sym.DerivedFrom.Valid() || sym.Name != "Show" {
			continue
		}

		if len(sym.Params) == 1 && sym.Params[0].Type == feetTy {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected an inherited Show operation whose formal has the derived type")
	}
}

func TestQualifiedCallResolvesThroughPackage(t *testing.T) {
	c := newTestContext()

	putSpec := c.Tree.Add(ast.KindSubprogramSpec, diagnostics.Span{}, ast.SubprogramSpec{
		Name: "Put_Line",
		Params: []ast.ParameterSpec{
			{Names: []string{"S"}, Mode: ast.ModeIn, Type: identNode(c, "STRING")},
		},
	})

	pkgSpec := c.Tree.Add(ast.KindPackageSpec, diagnostics.Span{}, ast.PackageSpec{
		Name:    "Text_IO",
		Visible: []core.NodeID{putSpec},
	})

	c.ResolveDeclaration(pkgSpec)

	call := c.Tree.Add(ast.KindApply, diagnostics.Span{}, ast.Apply{
		Prefix: c.Tree.Add(ast.KindSelectedComponent, diagnostics.Span{}, ast.SelectedComponent{
			Prefix:   identNode(c, "Text_IO"),
			Selector: "Put_Line",
		}),
		Args: []core.NodeID{
			c.Tree.Add(ast.KindStringLiteral, diagnostics.Span{}, ast.StringLiteral{Value: "hi"}),
		},
	})

	c.ResolveExpression(call, core.NoType)

	if c.HasErrors() {
		t.Fatalf("unexpected errors resolving qualified call: %v", c.Diags.All())
	}

	got := c.Tree.Get(call).ResolvedSymbol
	want := c.Tree.Get(putSpec).ResolvedSymbol

	if got != want {
		t.Fatalf("Text_IO.Put_Line(...) resolved to symbol %d, want %d", got, want)
	}
}

func TestGenericInstantiationExpandsTemplate(t *testing.T) {
	c := newTestContext()

	formal := c.Tree.Add(ast.KindGenericFormalType, diagnostics.Span{}, ast.GenericFormalType{Name: "Elem_T"})

	itemDecl := c.Tree.Add(ast.KindObjectDecl, diagnostics.Span{}, ast.ObjectDecl{
		Names: []string{"Item"},
		Type:  identNode(c, "Elem_T"),
	})
	item := c.Tree.Add(ast.KindPackageSpec, diagnostics.Span{}, ast.PackageSpec{
		Name:    "Holder",
		Visible: []core.NodeID{itemDecl},
	})

	gdecl := c.Tree.Add(ast.KindGenericDecl, diagnostics.Span{}, ast.GenericDecl{
		Formals: []core.NodeID{formal},
		Item:    item,
	})

	c.ResolveDeclaration(gdecl)

	if c.HasErrors() {
		t.Fatalf("unexpected errors declaring the generic: %v", c.Diags.All())
	}

	inst := c.Tree.Add(ast.KindGenericInstantiation, diagnostics.Span{}, ast.GenericInstantiation{
		Name:        "Int_Holder",
		GenericName: identNode(c, "Holder"),
		Actuals:     []core.NodeID{identNode(c, "INTEGER")},
	})

	ids := c.ResolveDeclaration(inst)

	if c.HasErrors() {
		t.Fatalf("unexpected errors instantiating: %v", c.Diags.All())
	}

	if len(ids) != 1 {
		t.Fatalf("expected exactly one instance symbol, got %d", len(ids))
	}

	sym := c.Syms.Get(ids[0])

	if sym.Name != "Int_Holder" {
		t.Fatalf("expected the instance declared as Int_Holder, got %q", sym.Name)
	}

	if sym.Kind != symtab.PackageSym {
		t.Fatalf("expected the instance to be a package, got %s", sym.Kind)
	}

	if !sym.GenericTemplate.Valid() {
		t.Fatalf("expected the instance to record its template")
	}

	if len(sym.Exports) != 1 {
		t.Fatalf("expected the instance to export Item, got %d exports", len(sym.Exports))
	}

	exported := c.Syms.Get(sym.Exports[0])

	if exported.Name != "Item" || exported.Type != c.Std.Integer {
		t.Fatalf("expected Item of type Integer in the instance, got %q of type %d", exported.Name, exported.Type)
	}

	wrong := c.Tree.Add(ast.KindGenericInstantiation, diagnostics.Span{}, ast.GenericInstantiation{
		Name:        "Bad_Holder",
		GenericName: identNode(c, "Holder"),
		Actuals:     nil,
	})

	c.ResolveDeclaration(wrong)

	if !c.HasErrors() {
		t.Fatalf("expected an error for a missing generic actual")
	}
}
