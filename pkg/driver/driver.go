// Package driver threads one program's compilation through every stage of
// the pipeline: a shared type registry and symbol table (via a single
// resolver.Context reused across units), the resolver, the code emitter,
// the elaboration-order graph, and the ALI writer.
//
// Lexing and parsing live outside this module: CompileUnit is handed an
// already-built compilation-unit node.
package driver

import (
	"fmt"
	"strings"

	"github.com/adalore/adac/pkg/ada/ast"
	"github.com/adalore/adac/pkg/ada/codegen"
	"github.com/adalore/adac/pkg/ada/core"
	"github.com/adalore/adac/pkg/ada/elaborate"
	"github.com/adalore/adac/pkg/ada/resolver"
	"github.com/adalore/adac/pkg/ada/symtab"
	"github.com/adalore/adac/pkg/ali"
	"github.com/adalore/adac/pkg/diagnostics"
	"github.com/adalore/adac/pkg/util/adapath"

	log "github.com/sirupsen/logrus"
)

// CompilationContext is the driver's single piece of state for one
// program: the resolver.Context every unit resolves against (so a later
// unit sees an earlier one's withed specs, per resolver.NewContext's own
// contract), the elaboration graph accumulating every unit's dependency
// edges, and the per-unit artifacts (LLVM module, ALI record) compiled so
// far, keyed by dotted unit name.
type CompilationContext struct {
	Ctx   *resolver.Context
	Graph *elaborate.Graph

	Modules map[string]*codegen.Module
	ALIs    map[string]*ali.File

	unitRoot map[string]elaborate.VertexID
}

// New constructs a CompilationContext over a fresh resolver.Context
// reading from src.
func New(src *diagnostics.SourceFile) *CompilationContext {
	return &CompilationContext{
		Ctx:      resolver.NewContext(src),
		Graph:    elaborate.New(),
		Modules:  make(map[string]*codegen.Module),
		ALIs:     make(map[string]*ali.File),
		unitRoot: make(map[string]elaborate.VertexID),
	}
}

// CompileUnit resolves, emits, and records the ALI data for one
// already-parsed compilation unit rooted at root, in that order, skipping
// code generation (but not the elaboration-graph bookkeeping) if resolution
// left any error. source is the unit's raw source text, needed only for the
// ALI record's checksum.
func (cc *CompilationContext) CompileUnit(root core.NodeID, source []byte) error {
	n := cc.Ctx.Tree.Get(root)

	cu, ok := n.Payload.(ast.CompilationUnit)
	if !ok {
		return fmt.Errorf("driver: node %d is not a compilation unit", root)
	}

	log.WithField("unit", cu.UnitName).WithField("body", cu.IsBody).Debug("resolving compilation unit")

	cc.Ctx.ResolveCompilationUnit(root)

	preelab, pure := cc.unitAttributes(cu)
	part := elaborate.Spec

	if cu.IsBody {
		part = elaborate.Body
	}

	unitPath := dottedPath(cu.UnitName)
	v := cc.Graph.AddUnit(unitPath, part, preelab, pure)
	cc.unitRoot[vertexKey(cu.UnitName, cu.IsBody)] = v

	cc.addWithEdges(v, cu)
	cc.addPragmaEdges(v, cu)

	if !cu.IsBody {
		if bodyV, ok := cc.unitRoot[vertexKey(cu.UnitName, true)]; ok {
			cc.Graph.AddEdge(v, bodyV, elaborate.SpecBeforeBody)
		}
	} else if specV, ok := cc.unitRoot[vertexKey(cu.UnitName, false)]; ok {
		cc.Graph.AddEdge(specV, v, elaborate.SpecBeforeBody)
	}

	if cc.Ctx.HasErrors() {
		return fmt.Errorf("driver: unit %q has unresolved errors, code generation skipped", cu.UnitName)
	}

	mod := codegen.NewModule(cu.UnitName)
	em := codegen.NewEmitter(cc.Ctx, mod)

	if err := em.EmitCompilationUnit(root); err != nil {
		return fmt.Errorf("driver: emitting unit %q: %w", cu.UnitName, err)
	}

	cc.Modules[cu.UnitName] = mod
	cc.ALIs[cu.UnitName] = ali.New(source, cc.withDependencies(cu), cc.exportedSymbols(n.ResolvedSymbol), ali.Attributes{
		Preelaborate: preelab,
		Pure:         pure,
		Elaborate:    pragmaUnits(cu, ast.PragmaElaborate),
		ElaborateAll: pragmaUnits(cu, ast.PragmaElaborateAll),
	})

	return nil
}

// Order computes a legal elaboration order over every unit compiled
// through this CompilationContext so far.
func (cc *CompilationContext) Order() ([]elaborate.Vertex, error) {
	return cc.Graph.Order()
}

func vertexKey(unitName string, isBody bool) string {
	if isBody {
		return unitName + "#body"
	}

	return unitName + "#spec"
}

func dottedPath(unitName string) adapath.Path {
	return adapath.NewAbsolutePath(strings.Split(unitName, ".")...)
}

// unitAttributes reports whether cu's context clause carries pragma
// Preelaborate or pragma Pure.
func (cc *CompilationContext) unitAttributes(cu ast.CompilationUnit) (preelaborate, pure bool) {
	for _, p := range cu.Pragmas {
		switch p.Kind {
		case ast.PragmaPreelaborate:
			preelaborate = true
		case ast.PragmaPure:
			pure = true
		}
	}

	return preelaborate, pure
}

func pragmaUnits(cu ast.CompilationUnit, kind ast.ElaborationPragmaKind) []string {
	var units []string

	for _, p := range cu.Pragmas {
		if p.Kind == kind && p.Unit != "" {
			units = append(units, p.Unit)
		}
	}

	return units
}

// addWithEdges adds a strong With edge from every unit named in cu's
// context clause to v, so that elaborate.Order refuses any program that
// tries to elaborate v before one of its own dependencies.
func (cc *CompilationContext) addWithEdges(v elaborate.VertexID, cu ast.CompilationUnit) {
	for _, withNode := range cu.WithList {
		wc, ok := cc.Ctx.Tree.Get(withNode).Payload.(ast.WithClause)
		if !ok {
			continue
		}

		for _, unitName := range wc.Units {
			withedV, ok := cc.unitRoot[vertexKey(unitName, false)]
			if !ok {
				// The withed unit has not been compiled through this
				// CompilationContext yet; the caller is responsible for
				// compiling units in an order where every with-ed spec
				// precedes its dependents (file search and compilation
				// order are the embedding driver's concern).
				continue
			}

			cc.Graph.AddEdge(withedV, v, elaborate.With)
		}
	}
}

// addPragmaEdges adds the strong Elaborate/Elaborate_All edges pragma
// Elaborate(U)/Elaborate_All(U) on cu's context clause require;
// resolver.checkElaborationPragma only validates that U was withed,
// it never builds the edge itself (pkg/ada/resolver/resolve.go). Must run
// after addWithEdges, since Graph.AddElaborateAll walks the with edges
// already recorded for v.
func (cc *CompilationContext) addPragmaEdges(v elaborate.VertexID, cu ast.CompilationUnit) {
	elaborateAll := false

	for _, p := range cu.Pragmas {
		switch p.Kind {
		case ast.PragmaElaborate:
			if namedV, ok := cc.unitRoot[vertexKey(p.Unit, false)]; ok {
				cc.Graph.AddEdge(namedV, v, elaborate.Elaborate)
			}
		case ast.PragmaElaborateAll:
			if _, ok := cc.unitRoot[vertexKey(p.Unit, false)]; ok {
				elaborateAll = true
			}
		}
	}

	if elaborateAll {
		cc.Graph.AddElaborateAll(v)
	}
}

// withDependencies renders cu's context clause as the ali.WithDependency
// list, resolving each withed unit's own already-compiled ALI path from
// cc.ALIs.
func (cc *CompilationContext) withDependencies(cu ast.CompilationUnit) []ali.WithDependency {
	var out []ali.WithDependency

	for _, withNode := range cu.WithList {
		wc, ok := cc.Ctx.Tree.Get(withNode).Payload.(ast.WithClause)
		if !ok {
			continue
		}

		for _, unitName := range wc.Units {
			dep := ali.WithDependency{
				Name:       unitName,
				SourceFile: dottedPath(unitName).FileBaseName(),
			}

			if _, ok := cc.ALIs[unitName]; ok {
				dep.ALIPath = dottedPath(unitName).FileBaseName() + ".ali"
			}

			out = append(out, dep)
		}
	}

	return out
}

// exportedSymbols walks unitSym's package exports (symtab.Symbol.Exports,
// populated by the resolver as it declares a package spec's visible part)
// and renders each as an ali.ExportedSymbol. A unit whose library item is
// not a package (a subprogram spec/body) exports nothing beyond its own
// name, which is already recoverable from the unit name itself, so it is
// recorded with no entries.
func (cc *CompilationContext) exportedSymbols(unitSym core.SymbolID) []ali.ExportedSymbol {
	if !unitSym.Valid() {
		return nil
	}

	sym := cc.Ctx.Syms.Get(unitSym)
	if sym.Kind != symtab.PackageSym {
		return nil
	}

	var out []ali.ExportedSymbol

	for _, id := range sym.Exports {
		exp := cc.Ctx.Syms.Get(id)

		kind, ok := aliSymbolKind(exp.Kind)
		if !ok {
			continue
		}

		line := cc.Ctx.Source.FindFirstEnclosingLine(exp.Span)

		out = append(out, ali.ExportedSymbol{
			Name:        exp.Name,
			MangledName: codegen.Mangle(cc.Ctx.Syms, exp),
			Kind:        kind,
			Line:        line.Number(),
		})
	}

	return out
}

func aliSymbolKind(k symtab.Kind) (ali.SymbolKind, bool) {
	switch k {
	case symtab.Function:
		return ali.FunctionSymbol, true
	case symtab.Procedure:
		return ali.ProcedureSymbol, true
	case symtab.TypeSym, symtab.Subtype:
		return ali.TypeSymbol, true
	case symtab.Variable, symtab.Constant:
		return ali.VariableSymbol, true
	case symtab.Exception:
		return ali.ExceptionSymbol, true
	default:
		return 0, false
	}
}
