package codegen

import (
	"math/big"
	"strings"
	"testing"

	"github.com/adalore/adac/pkg/ada/ast"
	"github.com/adalore/adac/pkg/ada/core"
	"github.com/adalore/adac/pkg/ada/resolver"
	"github.com/adalore/adac/pkg/ada/symtab"
	"github.com/adalore/adac/pkg/ada/types"
	"github.com/adalore/adac/pkg/diagnostics"
)

func newTestContext(t *testing.T) *resolver.Context {
	t.Helper()
	return resolver.NewContext(diagnostics.NewSourceFile("test.adb", nil))
}

func ident(ctx *resolver.Context, name string) core.NodeID {
	return ctx.Tree.Add(ast.KindIdentifier, diagnostics.Span{}, ast.Identifier{Name: name})
}

// TestEmitSimpleProcedureCall drives the resolver and emitter together over
// a package body containing a parameterless procedure that calls another
// parameterless procedure, mirroring a Hello/TEXT_IO-style call: the
// callee's external declaration and the caller's definition and call
// instruction must all land in the rendered module, and the call target
// must be the callee's own mangled name, computed the same way the emitter
// computes it rather than hardcoded.
func TestEmitSimpleProcedureCall(t *testing.T) {
	ctx := newTestContext(t)

	calleeSpec := ctx.Tree.Add(ast.KindSubprogramSpec, diagnostics.Span{}, ast.SubprogramSpec{Name: "Greet"})

	callNode := ctx.Tree.Add(ast.KindApply, diagnostics.Span{}, ast.Apply{Prefix: ident(ctx, "Greet")})
	callStmt := ctx.Tree.Add(ast.KindCallStatement, diagnostics.Span{}, ast.CallStatement{Call: callNode})

	mainSpec := ctx.Tree.Add(ast.KindSubprogramSpec, diagnostics.Span{}, ast.SubprogramSpec{Name: "Main"})
	mainBody := ctx.Tree.Add(ast.KindSubprogramBody, diagnostics.Span{}, ast.SubprogramBody{
		Spec: mainSpec,
		Body: []core.NodeID{callStmt},
	})

	pkgBody := ctx.Tree.Add(ast.KindPackageBody, diagnostics.Span{}, ast.PackageBody{
		Name:         "Demo",
		Declarations: []core.NodeID{calleeSpec, mainBody},
	})

	cu := ctx.Tree.Add(ast.KindCompilationUnit, diagnostics.Span{}, ast.CompilationUnit{
		UnitName: "Demo",
		Body:     pkgBody,
		IsBody:   true,
	})

	ctx.ResolveCompilationUnit(cu)

	if ctx.HasErrors() {
		t.Fatalf("unexpected resolution errors: %v", ctx.Diags.All())
	}

	calleeSym := ctx.Syms.Get(ctx.Tree.Get(calleeSpec).ResolvedSymbol)
	mainSym := ctx.Syms.Get(ctx.Tree.Get(mainBody).ResolvedSymbol)

	mod := NewModule("demo")
	em := NewEmitter(ctx, mod)

	if err := em.EmitCompilationUnit(cu); err != nil {
		t.Fatalf("EmitCompilationUnit: %v", err)
	}

	var out strings.Builder
	if err := mod.WriteTo(&out); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	rendered := out.String()

	wantDeclare := "declare void @" + Mangle(ctx.Syms, calleeSym) + "()"
	if !strings.Contains(rendered, wantDeclare) {
		t.Fatalf("expected an external declaration %q, got:\n%s", wantDeclare, rendered)
	}

	wantDefine := "define void @" + Mangle(ctx.Syms, mainSym) + "()"
	if !strings.Contains(rendered, wantDefine) {
		t.Fatalf("expected a function definition %q, got:\n%s", wantDefine, rendered)
	}

	wantCall := "call void @" + Mangle(ctx.Syms, calleeSym) + "()"
	if !strings.Contains(rendered, wantCall) {
		t.Fatalf("expected a call instruction %q, got:\n%s", wantCall, rendered)
	}
}

// TestFatPointerRoundTrip exercises the unconstrained-array ABI directly:
// building a fat pointer for a one-dimensional array and then extracting its
// data pointer and bounds must round-trip through the exact extractvalue/
// getelementptr/load sequence the array indexing and slicing paths rely on.
func TestFatPointerRoundTrip(t *testing.T) {
	ctx := newTestContext(t)

	arrID := ctx.Types.Allocate(types.Array, "Buffer")
	arr := ctx.Types.Get(arrID)
	arr.Body = types.ArrayBody{
		Indices:     []core.TypeID{ctx.Std.Integer},
		Element:     ctx.Std.Integer,
		Constrained: false,
	}

	mod := NewModule("arrays")
	em := NewEmitter(ctx, mod)
	em.fn = mod.NewFunction("test_fn", "void @test_fn()")

	fp := em.buildFatPointer("%data", arrID, []boundPair{{low: "1", high: "10"}})

	if !strings.Contains(fp, "%") {
		t.Fatalf("expected buildFatPointer to return an SSA temporary, got %q", fp)
	}

	dataPtr := em.extractDataPtr(fp)
	low := em.extractBound(fp, arrID, 0, 0)
	high := em.extractBound(fp, arrID, 0, 1)

	rendered := em.fn.Render()

	if !strings.Contains(rendered, "extractvalue { ptr, ptr } "+fp+", 0") {
		t.Fatalf("expected the data pointer to be extracted from field 0, got:\n%s", rendered)
	}

	if dataPtr == "" || low == "" || high == "" {
		t.Fatalf("expected non-empty temporaries for data/low/high")
	}

	if !strings.Contains(rendered, "store i32 1,") || !strings.Contains(rendered, "store i32 10,") {
		t.Fatalf("expected the bounds structure to be stored with the given low/high literals, got:\n%s", rendered)
	}
}

// TestDiscriminantCheckRaisesConstraintError exercises the variant-part
// runtime check directly: selecting a variant whose discriminant value
// doesn't match the one actually stored must raise Constraint_Error via the
// same jump-sequence every other runtime check uses.
func TestDiscriminantCheckRaisesConstraintError(t *testing.T) {
	ctx := newTestContext(t)

	discType := ctx.Std.Integer

	recID := ctx.Types.Allocate(types.Record, "Shape")
	rec := ctx.Types.Get(recID)

	body := types.RecordBody{
		Discriminants: []types.Component{{Name: "Kind", Type: discType, Offset: 0}},
		Variants: []types.Variant{
			{Values: []*big.Int{big.NewInt(1)}, Parts: []types.Component{{Name: "Radius", Type: discType, Offset: 4}}},
		},
	}
	rec.Body = body

	mod := NewModule("records")
	em := NewEmitter(ctx, mod)
	em.fn = mod.NewFunction("check_variant", "void @check_variant(ptr %r)")

	em.emitVariantCheck(rec, body, body.Variants[0], "%r")

	rendered := em.fn.Render()

	if !strings.Contains(rendered, "icmp ne i32") {
		t.Fatalf("expected the discriminant value to be compared with icmp ne, got:\n%s", rendered)
	}

	if !strings.Contains(rendered, "discr_fail") || !strings.Contains(rendered, "discr_ok") {
		t.Fatalf("expected discr_fail/discr_ok labels, got:\n%s", rendered)
	}

	if !strings.Contains(rendered, "call void @__ada_raise(i32 1)") {
		t.Fatalf("expected a raise of Constraint_Error (exception id 1), got:\n%s", rendered)
	}

	if !strings.Contains(rendered, "unreachable") {
		t.Fatalf("expected the raise to be followed by unreachable, got:\n%s", rendered)
	}
}

// TestNestedSubprogramUsesStaticLink drives the resolver and emitter over a
// procedure with a nested procedure that assigns to its parent's local
// variable: the inner definition must accept an implicit static-link
// parameter, and the outer must build an environment record exposing its
// local to it.
func TestNestedSubprogramUsesStaticLink(t *testing.T) {
	ctx := newTestContext(t)

	counterDecl := ctx.Tree.Add(ast.KindObjectDecl, diagnostics.Span{}, ast.ObjectDecl{
		Names: []string{"Counter"},
		Type:  ident(ctx, "INTEGER"),
	})

	assign := ctx.Tree.Add(ast.KindAssignment, diagnostics.Span{}, ast.Assignment{
		Target: ident(ctx, "Counter"),
		Value: ctx.Tree.Add(ast.KindBinaryOp, diagnostics.Span{}, ast.BinaryOp{
			Op:    "+",
			Left:  ident(ctx, "Counter"),
			Right: ctx.Tree.Add(ast.KindIntegerLiteral, diagnostics.Span{}, ast.IntegerLiteral{Value: big.NewInt(1)}),
		}),
	})

	innerSpec := ctx.Tree.Add(ast.KindSubprogramSpec, diagnostics.Span{}, ast.SubprogramSpec{Name: "Bump"})
	innerBody := ctx.Tree.Add(ast.KindSubprogramBody, diagnostics.Span{}, ast.SubprogramBody{
		Spec: innerSpec,
		Body: []core.NodeID{assign},
	})

	innerCall := ctx.Tree.Add(ast.KindApply, diagnostics.Span{}, ast.Apply{Prefix: ident(ctx, "Bump")})
	innerCallStmt := ctx.Tree.Add(ast.KindCallStatement, diagnostics.Span{}, ast.CallStatement{Call: innerCall})

	outerSpec := ctx.Tree.Add(ast.KindSubprogramSpec, diagnostics.Span{}, ast.SubprogramSpec{Name: "Outer"})
	outerBody := ctx.Tree.Add(ast.KindSubprogramBody, diagnostics.Span{}, ast.SubprogramBody{
		Spec:         outerSpec,
		Declarations: []core.NodeID{counterDecl, innerBody},
		Body:         []core.NodeID{innerCallStmt},
	})

	pkgBody := ctx.Tree.Add(ast.KindPackageBody, diagnostics.Span{}, ast.PackageBody{
		Name:         "Nested",
		Declarations: []core.NodeID{outerBody},
	})

	cu := ctx.Tree.Add(ast.KindCompilationUnit, diagnostics.Span{}, ast.CompilationUnit{
		UnitName: "Nested",
		Body:     pkgBody,
		IsBody:   true,
	})

	ctx.ResolveCompilationUnit(cu)

	if ctx.HasErrors() {
		t.Fatalf("unexpected resolution errors: %v", ctx.Diags.All())
	}

	innerSym := ctx.Syms.Get(ctx.Tree.Get(innerBody).ResolvedSymbol)
	outerSym := ctx.Syms.Get(ctx.Tree.Get(outerBody).ResolvedSymbol)

	mod := NewModule("nested")
	em := NewEmitter(ctx, mod)

	if err := em.EmitCompilationUnit(cu); err != nil {
		t.Fatalf("EmitCompilationUnit: %v", err)
	}

	var out strings.Builder
	if err := mod.WriteTo(&out); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	rendered := out.String()

	wantInnerDefine := "define void @" + Mangle(ctx.Syms, innerSym) + "(ptr %__sl)"
	if !strings.Contains(rendered, wantInnerDefine) {
		t.Fatalf("expected the nested procedure to take a static-link parameter %q, got:\n%s", wantInnerDefine, rendered)
	}

	wantOuterDefine := "define void @" + Mangle(ctx.Syms, outerSym) + "()"
	if !strings.Contains(rendered, wantOuterDefine) {
		t.Fatalf("expected the outer procedure's own definition %q, got:\n%s", wantOuterDefine, rendered)
	}

	if !strings.Contains(rendered, "__ada_env_store") {
		t.Fatalf("expected the outer procedure to build an environment record capturing Counter, got:\n%s", rendered)
	}

	if !strings.Contains(rendered, "__ada_env_load") {
		t.Fatalf("expected the inner procedure to load Counter's address uplevel, got:\n%s", rendered)
	}
}

// TestBIPFunctionSignatureAndCall checks both sides of the build-in-place
// protocol: a function returning a limited type declares the five implicit
// __BIP* formals and returns void, and a call to it passes the caller-stack
// allocation form with a stack slot for the result.
func TestBIPFunctionSignatureAndCall(t *testing.T) {
	ctx := newTestContext(t)

	handleTy := ctx.Types.Allocate(types.LimitedPrivate, "Handle")

	makeSym := ctx.Syms.NewSymbol(symtab.Function, "Make")
	makeSym.Result = handleTy
	ctx.Syms.Declare(makeSym)

	mod := NewModule("bip")
	em := NewEmitter(ctx, mod)

	sig := em.signatureFor(makeSym)

	if !strings.HasPrefix(sig, "void @") {
		t.Fatalf("a build-in-place function must return void, got signature %q", sig)
	}

	for _, formal := range []string{"%__BIPalloc", "%__BIPaccess", "%__BIPmaster", "%__BIPchain", "%__BIPfinal"} {
		if !strings.Contains(sig, formal) {
			t.Fatalf("expected implicit formal %s in signature %q", formal, sig)
		}
	}

	em.fn = mod.NewFunction("caller", "void @caller()")
	em.emitCallTo(makeSym, nil, "ptr")

	rendered := em.fn.Render()

	if !strings.Contains(rendered, "i32 0, ptr %t") {
		t.Fatalf("expected a caller-stack allocation form and result slot in the call, got:\n%s", rendered)
	}

	if !strings.Contains(rendered, "call void @"+Mangle(ctx.Syms, makeSym)) {
		t.Fatalf("expected a void call to the BIP entry, got:\n%s", rendered)
	}
}

// TestCrossUnitCallEmitsElaborationCheck checks that a call to a subprogram
// living in another unit's package is guarded by a load of that package's
// elaboration flag.
func TestCrossUnitCallEmitsElaborationCheck(t *testing.T) {
	ctx := newTestContext(t)

	pkg := ctx.Syms.NewSymbol(symtab.PackageSym, "Lib")
	ctx.Syms.Declare(pkg)

	ctx.Syms.Push(pkg.ID)
	ping := ctx.Syms.NewSymbol(symtab.Procedure, "Ping")
	ctx.Syms.Declare(ping)
	ctx.Syms.Pop()

	mod := NewModule("elabcheck")
	em := NewEmitter(ctx, mod)
	em.fn = mod.NewFunction("caller", "void @caller()")

	em.emitCallTo(ping, nil, "")

	rendered := em.fn.Render()

	if !strings.Contains(rendered, "load i1, ptr @__elab_flag_lib") {
		t.Fatalf("expected a load of Lib's elaboration flag before the call, got:\n%s", rendered)
	}

	if !strings.Contains(rendered, "elab_fail") {
		t.Fatalf("expected an elab_fail branch target, got:\n%s", rendered)
	}

	var out strings.Builder
	if err := mod.WriteTo(&out); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	if !strings.Contains(out.String(), "@__elab_flag_lib = external global i1") {
		t.Fatalf("expected the flag declared as an external global, got:\n%s", out.String())
	}
}

// TestUnconstrainedArrayCallBuildsFatPointer drives the resolver and emitter
// over a function taking an unconstrained array and a call passing it a
// positional aggregate: the callee must take a single fat-pointer parameter,
// the call site must materialize bounds 1..3, and a reference to A'First in
// the callee must extract the low bound from the fat pointer rather than
// fold to a static value.
func TestUnconstrainedArrayCallBuildsFatPointer(t *testing.T) {
	ctx := newTestContext(t)

	typeDecl := ctx.Tree.Add(ast.KindTypeDecl, diagnostics.Span{}, ast.TypeDecl{
		Name: "Int_Array",
		Definition: ctx.Tree.Add(ast.KindArrayTypeDef, diagnostics.Span{}, ast.ArrayTypeDef{
			IndexSubtypes: []core.NodeID{ident(ctx, "INTEGER")},
			Unconstrained: true,
			Element:       ident(ctx, "INTEGER"),
		}),
	})

	sumSpec := ctx.Tree.Add(ast.KindSubprogramSpec, diagnostics.Span{}, ast.SubprogramSpec{
		Name:       "Sum",
		IsFunction: true,
		Params: []ast.ParameterSpec{
			{Names: []string{"A"}, Mode: ast.ModeIn, Type: ident(ctx, "Int_Array")},
		},
		Result: ident(ctx, "INTEGER"),
	})
	sumBody := ctx.Tree.Add(ast.KindSubprogramBody, diagnostics.Span{}, ast.SubprogramBody{
		Spec: sumSpec,
		Body: []core.NodeID{
			ctx.Tree.Add(ast.KindReturnStatement, diagnostics.Span{}, ast.ReturnStatement{
				Value: ctx.Tree.Add(ast.KindAttribute, diagnostics.Span{}, ast.Attribute{
					Prefix: ident(ctx, "A"),
					Name:   "First",
				}),
			}),
		},
	})

	lit := func(v int64) core.NodeID {
		return ctx.Tree.Add(ast.KindIntegerLiteral, diagnostics.Span{}, ast.IntegerLiteral{Value: big.NewInt(v)})
	}

	agg := ctx.Tree.Add(ast.KindAggregate, diagnostics.Span{}, ast.Aggregate{
		Assocs: []ast.AggregateAssoc{{Value: lit(1)}, {Value: lit(2)}, {Value: lit(3)}},
	})

	callerDecl := ctx.Tree.Add(ast.KindObjectDecl, diagnostics.Span{}, ast.ObjectDecl{
		Names: []string{"Total"},
		Type:  ident(ctx, "INTEGER"),
		Init: ctx.Tree.Add(ast.KindApply, diagnostics.Span{}, ast.Apply{
			Prefix: ident(ctx, "Sum"),
			Args:   []core.NodeID{agg},
		}),
	})

	mainSpec := ctx.Tree.Add(ast.KindSubprogramSpec, diagnostics.Span{}, ast.SubprogramSpec{Name: "Main"})
	mainBody := ctx.Tree.Add(ast.KindSubprogramBody, diagnostics.Span{}, ast.SubprogramBody{
		Spec:         mainSpec,
		Declarations: []core.NodeID{callerDecl},
	})

	pkgBody := ctx.Tree.Add(ast.KindPackageBody, diagnostics.Span{}, ast.PackageBody{
		Name:         "Arrays",
		Declarations: []core.NodeID{typeDecl, sumBody, mainBody},
	})

	cu := ctx.Tree.Add(ast.KindCompilationUnit, diagnostics.Span{}, ast.CompilationUnit{
		UnitName: "Arrays",
		Body:     pkgBody,
		IsBody:   true,
	})

	ctx.ResolveCompilationUnit(cu)

	if ctx.HasErrors() {
		t.Fatalf("unexpected resolution errors: %v", ctx.Diags.All())
	}

	sumSym := ctx.Syms.Get(ctx.Tree.Get(sumBody).ResolvedSymbol)

	mod := NewModule("arrays")
	em := NewEmitter(ctx, mod)

	if err := em.EmitCompilationUnit(cu); err != nil {
		t.Fatalf("EmitCompilationUnit: %v", err)
	}

	var out strings.Builder
	if err := mod.WriteTo(&out); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	rendered := out.String()

	wantDefine := "define i32 @" + Mangle(ctx.Syms, sumSym) + "(ptr %a)"
	if !strings.Contains(rendered, wantDefine) {
		t.Fatalf("expected Sum defined with a single pointer parameter %q, got:\n%s", wantDefine, rendered)
	}

	if !strings.Contains(rendered, "store i32 1,") || !strings.Contains(rendered, "store i32 3,") {
		t.Fatalf("expected the call site to store bounds 1 and 3 into the bounds structure, got:\n%s", rendered)
	}

	if !strings.Contains(rendered, "extractvalue { ptr, ptr }") {
		t.Fatalf("expected A'First to extract from the fat pointer, got:\n%s", rendered)
	}
}

// TestSliceAssignmentEmitsLengthCheck checks that assigning one
// unconstrained-array value to another runs a length check and a bytewise
// copy rather than a scalar store.
func TestSliceAssignmentEmitsLengthCheck(t *testing.T) {
	ctx := newTestContext(t)

	typeDecl := ctx.Tree.Add(ast.KindTypeDecl, diagnostics.Span{}, ast.TypeDecl{
		Name: "Int_Array",
		Definition: ctx.Tree.Add(ast.KindArrayTypeDef, diagnostics.Span{}, ast.ArrayTypeDef{
			IndexSubtypes: []core.NodeID{ident(ctx, "INTEGER")},
			Unconstrained: true,
			Element:       ident(ctx, "INTEGER"),
		}),
	})

	copySpec := ctx.Tree.Add(ast.KindSubprogramSpec, diagnostics.Span{}, ast.SubprogramSpec{
		Name: "Copy",
		Params: []ast.ParameterSpec{
			{Names: []string{"A"}, Mode: ast.ModeInOut, Type: ident(ctx, "Int_Array")},
			{Names: []string{"B"}, Mode: ast.ModeIn, Type: ident(ctx, "Int_Array")},
		},
	})
	copyBody := ctx.Tree.Add(ast.KindSubprogramBody, diagnostics.Span{}, ast.SubprogramBody{
		Spec: copySpec,
		Body: []core.NodeID{
			ctx.Tree.Add(ast.KindAssignment, diagnostics.Span{}, ast.Assignment{
				Target: ident(ctx, "A"),
				Value:  ident(ctx, "B"),
			}),
		},
	})

	pkgBody := ctx.Tree.Add(ast.KindPackageBody, diagnostics.Span{}, ast.PackageBody{
		Name:         "Slices",
		Declarations: []core.NodeID{typeDecl, copyBody},
	})

	cu := ctx.Tree.Add(ast.KindCompilationUnit, diagnostics.Span{}, ast.CompilationUnit{
		UnitName: "Slices",
		Body:     pkgBody,
		IsBody:   true,
	})

	ctx.ResolveCompilationUnit(cu)

	if ctx.HasErrors() {
		t.Fatalf("unexpected resolution errors: %v", ctx.Diags.All())
	}

	mod := NewModule("slices")
	em := NewEmitter(ctx, mod)

	if err := em.EmitCompilationUnit(cu); err != nil {
		t.Fatalf("EmitCompilationUnit: %v", err)
	}

	var out strings.Builder
	if err := mod.WriteTo(&out); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	rendered := out.String()

	if !strings.Contains(rendered, "length_fail") {
		t.Fatalf("expected a length check before the array copy, got:\n%s", rendered)
	}

	if !strings.Contains(rendered, "llvm.memcpy") {
		t.Fatalf("expected the assignment lowered to a bytewise copy, got:\n%s", rendered)
	}
}
