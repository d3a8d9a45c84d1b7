package driver

import (
	"strings"
	"testing"

	"github.com/adalore/adac/pkg/ada/ast"
	"github.com/adalore/adac/pkg/ada/core"
	"github.com/adalore/adac/pkg/ada/elaborate"
	"github.com/adalore/adac/pkg/diagnostics"
)

// TestCompileHelloAgainstTextIO drives the whole pipeline over the classic
// two-unit program: a Text_IO package spec exporting Put_Line, then a Hello
// procedure body withing it and calling Text_IO.Put_Line("hi"). The emitted
// module must call Put_Line's mangled entry and carry the string constant,
// the ALI record must list Text_IO as a with-dependency, and the
// elaboration order must place Text_IO's spec before Hello.
func TestCompileHelloAgainstTextIO(t *testing.T) {
	cc := New(diagnostics.NewSourceFile("hello.adb", nil))
	ctx := cc.Ctx

	ident := func(name string) core.NodeID {
		return ctx.Tree.Add(ast.KindIdentifier, diagnostics.Span{}, ast.Identifier{Name: name})
	}

	putSpec := ctx.Tree.Add(ast.KindSubprogramSpec, diagnostics.Span{}, ast.SubprogramSpec{
		Name: "Put_Line",
		Params: []ast.ParameterSpec{
			{Names: []string{"S"}, Mode: ast.ModeIn, Type: ident("STRING")},
		},
	})

	textIOSpec := ctx.Tree.Add(ast.KindPackageSpec, diagnostics.Span{}, ast.PackageSpec{
		Name:    "Text_IO",
		Visible: []core.NodeID{putSpec},
	})

	textIOUnit := ctx.Tree.Add(ast.KindCompilationUnit, diagnostics.Span{}, ast.CompilationUnit{
		UnitName: "Text_IO",
		Body:     textIOSpec,
	})

	if err := cc.CompileUnit(textIOUnit, []byte("package Text_IO is ... end Text_IO;")); err != nil {
		t.Fatalf("compiling Text_IO: %v", err)
	}

	call := ctx.Tree.Add(ast.KindApply, diagnostics.Span{}, ast.Apply{
		Prefix: ctx.Tree.Add(ast.KindSelectedComponent, diagnostics.Span{}, ast.SelectedComponent{
			Prefix:   ident("Text_IO"),
			Selector: "Put_Line",
		}),
		Args: []core.NodeID{
			ctx.Tree.Add(ast.KindStringLiteral, diagnostics.Span{}, ast.StringLiteral{Value: "hi"}),
		},
	})

	helloSpec := ctx.Tree.Add(ast.KindSubprogramSpec, diagnostics.Span{}, ast.SubprogramSpec{Name: "Hello"})
	helloBody := ctx.Tree.Add(ast.KindSubprogramBody, diagnostics.Span{}, ast.SubprogramBody{
		Spec: helloSpec,
		Body: []core.NodeID{
			ctx.Tree.Add(ast.KindCallStatement, diagnostics.Span{}, ast.CallStatement{Call: call}),
		},
	})

	withClause := ctx.Tree.Add(ast.KindWithClause, diagnostics.Span{}, ast.WithClause{Units: []string{"Text_IO"}})

	helloUnit := ctx.Tree.Add(ast.KindCompilationUnit, diagnostics.Span{}, ast.CompilationUnit{
		UnitName: "Hello",
		WithList: []core.NodeID{withClause},
		Body:     helloBody,
		IsBody:   true,
	})

	if err := cc.CompileUnit(helloUnit, []byte("with Text_IO; procedure Hello is ...")); err != nil {
		t.Fatalf("compiling Hello: %v", err)
	}

	mod, ok := cc.Modules["Hello"]
	if !ok {
		t.Fatalf("expected a module emitted for Hello")
	}

	var out strings.Builder
	if err := mod.WriteTo(&out); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	rendered := out.String()

	if !strings.Contains(rendered, `c"hi"`) {
		t.Fatalf("expected the string constant \"hi\" in the module, got:\n%s", rendered)
	}

	if !strings.Contains(rendered, "call void @text_io_put_line") {
		t.Fatalf("expected a call to Put_Line's mangled entry, got:\n%s", rendered)
	}

	aliFile, ok := cc.ALIs["Hello"]
	if !ok {
		t.Fatalf("expected an ALI record for Hello")
	}

	if len(aliFile.Withs) != 1 || aliFile.Withs[0].Name != "Text_IO" {
		t.Fatalf("expected Hello's ALI to list Text_IO as a with-dependency, got %+v", aliFile.Withs)
	}

	if aliFile.Withs[0].SourceFile != "text_io" {
		t.Fatalf("expected the hyphenated-lowercase source basename, got %q", aliFile.Withs[0].SourceFile)
	}

	order, err := cc.Order()
	if err != nil {
		t.Fatalf("Order: %v", err)
	}

	pos := make(map[string]int)
	for i, v := range order {
		pos[v.Unit.String()+"/"+v.Part.String()] = i
	}

	if pos["Text_IO/spec"] >= pos["Hello/body"] {
		t.Fatalf("Text_IO's spec must elaborate before Hello's body, got order %v", order)
	}

	textIOALI, ok := cc.ALIs["Text_IO"]
	if !ok {
		t.Fatalf("expected an ALI record for Text_IO")
	}

	if len(textIOALI.Exports) != 1 || textIOALI.Exports[0].Name != "Put_Line" {
		t.Fatalf("expected Text_IO's ALI to export Put_Line, got %+v", textIOALI.Exports)
	}
}

// TestOrderReportsCycle mirrors the two-package elaboration cycle scenario:
// A withs B and B withs A, both with bodies, must be reported as a cycle
// naming both units.
func TestOrderReportsCycle(t *testing.T) {
	cc := New(diagnostics.NewSourceFile("a.adb", nil))

	a := cc.Graph.AddUnit(dottedPath("A"), elaborate.Spec, false, false)
	aBody := cc.Graph.AddUnit(dottedPath("A"), elaborate.Body, false, false)
	b := cc.Graph.AddUnit(dottedPath("B"), elaborate.Spec, false, false)
	bBody := cc.Graph.AddUnit(dottedPath("B"), elaborate.Body, false, false)

	cc.Graph.AddEdge(a, aBody, elaborate.SpecBeforeBody)
	cc.Graph.AddEdge(b, bBody, elaborate.SpecBeforeBody)
	cc.Graph.AddEdge(a, b, elaborate.With)
	cc.Graph.AddEdge(b, a, elaborate.With)

	_, err := cc.Order()
	if err == nil {
		t.Fatalf("expected a cyclic elaboration error")
	}

	cyc, ok := err.(*elaborate.CycleError)
	if !ok {
		t.Fatalf("expected *elaborate.CycleError, got %T", err)
	}

	names := make(map[string]bool)
	for _, v := range cyc.Units {
		names[v.Unit.String()] = true
	}

	if !names["A"] || !names["B"] {
		t.Fatalf("expected the cycle listing to name both A and B, got %v", cyc.Units)
	}
}
