package resolver

import (
	"fmt"
	"math/big"

	"github.com/adalore/adac/pkg/ada/ast"
	"github.com/adalore/adac/pkg/ada/core"
	"github.com/adalore/adac/pkg/ada/symtab"
	"github.com/adalore/adac/pkg/ada/types"
	"github.com/adalore/adac/pkg/diagnostics"
	"github.com/adalore/adac/pkg/util/adamath"
)

// ResolveDeclaration resolves one declaration, installing the symbol(s) it
// introduces into the current scope and returning their handles (so a
// caller building a package's export list, for instance, can collect
// them directly). Unrecognized payloads report an internal error and
// return nil.
func (c *Context) ResolveDeclaration(node core.NodeID) []core.SymbolID {
	n := c.Tree.Get(node)

	var ids []core.SymbolID

	switch p := n.Payload.(type) {
	case ast.ObjectDecl:
		ids = c.resolveObjectDecl(node, p)
	case ast.NumberDecl:
		ids = c.resolveNumberDecl(node, p)
	case ast.TypeDecl:
		ids = []core.SymbolID{c.resolveTypeDecl(node, p)}
	case ast.SubtypeDecl:
		ids = []core.SymbolID{c.resolveSubtypeDecl(node, p)}
	case ast.SubprogramSpec:
		ids = []core.SymbolID{c.resolveSubprogramSpec(node, p)}
	case ast.SubprogramBody:
		ids = []core.SymbolID{c.resolveSubprogramBody(node, p)}
	case ast.PackageSpec:
		ids = []core.SymbolID{c.resolvePackageSpec(node, p)}
	case ast.PackageBody:
		ids = []core.SymbolID{c.resolvePackageBody(node, p)}
	case ast.ExceptionDecl:
		ids = c.resolveExceptionDecl(node, p)
	case ast.GenericDecl:
		ids = c.resolveGenericDecl(node, p)
	case ast.GenericInstantiation:
		ids = c.resolveGenericInstantiation(node, p)
	default:
		c.report(diagnostics.Error, node, "internal error: not a declaration")
		return nil
	}

	c.DeclSymbols[node] = ids

	return ids
}

// resolveDeclarations resolves a whole declarative part in two phases:
// every type name is declared first (as an incomplete placeholder), so that a
// sibling declaration earlier in the list — most commonly two record
// types holding access types that designate one another — can still name
// it, and then every declaration is fully resolved in source order,
// overwriting the placeholders with their real definitions.
func (c *Context) resolveDeclarations(decls []core.NodeID) {
	c.pushFreezeRegion()

	for _, d := range decls {
		c.forwardDeclare(d)
	}

	for _, d := range decls {
		c.ResolveDeclaration(d)
	}

	c.popFreezeRegion()
}

// forwardDeclare installs just the name of a type declaration, deferring
// its definition to the later full resolution pass.
func (c *Context) forwardDeclare(node core.NodeID) {
	n := c.Tree.Get(node)

	if p, ok := n.Payload.(ast.TypeDecl); ok {
		id := c.Types.Allocate(types.Incomplete, p.Name)
		sym := c.Syms.NewSymbol(symtab.TypeSym, p.Name)
		sym.Type = id
		c.Syms.Declare(sym)
	}
}

func (c *Context) resolveObjectDecl(node core.NodeID, p ast.ObjectDecl) []core.SymbolID {
	ty := c.resolveIndexType(p.Type)
	c.FreezeAt(ty, FreezeObjectDecl, node)

	kind := symtab.Variable
	if p.Constant {
		kind = symtab.Constant
	}

	var ids []core.SymbolID

	for _, name := range p.Names {
		sym := c.Syms.NewSymbol(kind, name)
		sym.Type = ty
		sym.Span = c.Tree.Get(node).Span
		c.Syms.Declare(sym)
		ids = append(ids, sym.ID)

		// Keep the enclosing scope's frame-size accumulator current, so
		// the code emitter can size the subprogram's stack frame without
		// re-walking the declarations.
		scope := c.Syms.Scope(c.Syms.Current())
		sym.FrameOffset = scope.FrameSize
		scope.FrameSize += c.Types.Get(ty).SizeBytes

		if p.Init.Valid() {
			c.ResolveExpression(p.Init, ty)

			if p.Constant {
				if v, ok := c.FoldInteger(p.Init); ok {
					c.constValues[sym.ID] = v
				}
			}
		}
	}

	return ids
}

func (c *Context) resolveNumberDecl(node core.NodeID, p ast.NumberDecl) []core.SymbolID {
	intVal, isInt := c.FoldInteger(p.Value)

	ty := c.Std.UniversalInteger
	if !isInt {
		ty = c.Std.UniversalReal

		if _, ok := c.FoldReal(p.Value); !ok {
			c.report(diagnostics.Error, node, "number declaration requires a static expression")
		}
	}

	var ids []core.SymbolID

	for _, name := range p.Names {
		sym := c.Syms.NewSymbol(symtab.Constant, name)
		sym.Type = ty
		c.Syms.Declare(sym)
		ids = append(ids, sym.ID)

		if isInt {
			c.constValues[sym.ID] = intVal
		}
	}

	return ids
}

func (c *Context) resolveTypeDecl(node core.NodeID, p ast.TypeDecl) core.SymbolID {
	id, sym := c.claimForwardDeclared(p.Name)

	if sym == nil {
		id = c.Types.Allocate(types.Unknown, p.Name)
		sym = c.Syms.NewSymbol(symtab.TypeSym, p.Name)
		sym.Type = id
		c.Syms.Declare(sym)
	}

	c.Types.Get(id).DefiningSymbol = sym.ID

	c.Tree.Mutate(node, func(n *ast.Node) { n.ResolvedSymbol = sym.ID; n.ResolvedType = id })

	if err := c.resolveTypeDefinition(id, p.Definition); err != nil {
		c.report(diagnostics.Error, node, err.Error())
		return sym.ID
	}

	// The representation is not finalized here: freezing fires at the
	// earliest of an object declaration of the type, a subprogram body
	// using it, or the end of this declarative part.
	c.deferFreeze(id, node)

	return sym.ID
}

// claimForwardDeclared finds the incomplete placeholder forwardDeclare
// installed for name in the current scope, so the full type declaration
// completes that descriptor in place — a sibling declared earlier in the
// same region (e.g. an access type designating this one) then shares the
// completed descriptor rather than a dangling incomplete view.
func (c *Context) claimForwardDeclared(name string) (core.TypeID, *symtab.Symbol) {
	for _, cand := range c.Syms.LookupAll(name) {
		sym := c.Syms.Get(cand)
		if sym.Kind != symtab.TypeSym || sym.DefiningScope != c.Syms.Current() {
			continue
		}

		if c.Types.Get(sym.Type).Kind == types.Incomplete {
			c.Types.Get(sym.Type).Kind = types.Unknown
			return sym.Type, sym
		}
	}

	return core.NoType, nil
}

func (c *Context) resolveSubtypeDecl(node core.NodeID, p ast.SubtypeDecl) core.SymbolID {
	ind, ok := c.Tree.Get(p.Indication).Payload.(ast.SubtypeIndication)
	if !ok {
		c.report(diagnostics.Error, node, "internal error: subtype declaration without an indication")
		return core.NoSymbol
	}

	baseTy := c.resolveTypeMark(ind.Mark)
	base := c.Types.Get(baseTy)

	id := c.Types.Allocate(base.Kind, p.Name)
	t := c.Types.Get(id)
	t.BaseType = baseTy
	t.Body = base.Body
	t.Low, t.High = base.Low, base.High

	if ind.Constraint.Valid() {
		if rng, ok := c.Tree.Get(ind.Constraint).Payload.(ast.RangeExpr); ok {
			low, lok := c.FoldInteger(rng.Low)
			high, hok := c.FoldInteger(rng.High)

			if lok && hok {
				c.checkStaticRangeWithinBase(node, low, high, base)
				t.Low, t.High = types.ExactBound(low), types.ExactBound(high)
			}
		}
	}

	sym := c.Syms.NewSymbol(symtab.Subtype, p.Name)
	sym.Type = id
	c.Syms.Declare(sym)
	t.DefiningSymbol = sym.ID

	c.Tree.Mutate(node, func(n *ast.Node) { n.ResolvedSymbol = sym.ID; n.ResolvedType = id })

	c.deferFreeze(id, node)

	return sym.ID
}

// checkStaticRangeWithinBase reports "out of range" when a subtype's folded
// constraint bounds fall outside base's own bounds. The candidate range is
// tracked as an adamath.Interval and tested against base's bounds with
// Within; the check is skipped (not an error) when base's own bounds are
// not yet exact integers, e.g. an as-yet-unfrozen or real base type.
func (c *Context) checkStaticRangeWithinBase(node core.NodeID, low, high *big.Int, base *types.Type) {
	baseLow, lok := base.Low.TryExact()
	if !lok {
		return
	}

	baseHigh, hok := base.High.TryExact()
	if !hok {
		return
	}

	candidate := adamath.NewInterval(low, high)

	if !candidate.Within(baseLow, baseHigh) {
		c.report(diagnostics.Error, node,
			fmt.Sprintf("range %s .. %s is out of range for %s", low, high, base.Name))
	}
}

func (c *Context) resolveSubprogramSpec(node core.NodeID, p ast.SubprogramSpec) core.SymbolID {
	kind := symtab.Procedure
	if p.IsFunction {
		kind = symtab.Function
	}

	sym := c.Syms.NewSymbol(kind, p.Name)

	for _, param := range p.Params {
		ty := c.resolveIndexType(param.Type)
		mode := symtab.Mode(param.Mode)

		for _, name := range param.Names {
			sym.Params = append(sym.Params, symtab.Param{Name: name, Type: ty, Mode: mode, Default: param.Default})
		}
	}

	if p.IsFunction {
		sym.Result = c.resolveIndexType(p.Result)
	}

	c.Syms.Declare(sym)

	c.Tree.Mutate(node, func(n *ast.Node) { n.ResolvedSymbol = sym.ID })

	return sym.ID
}

func (c *Context) resolveSubprogramBody(node core.NodeID, p ast.SubprogramBody) core.SymbolID {
	spec, ok := c.Tree.Get(p.Spec).Payload.(ast.SubprogramSpec)
	if !ok {
		c.report(diagnostics.Error, node, "internal error: subprogram body without a spec")
		return core.NoSymbol
	}

	symID := c.resolveSubprogramSpec(p.Spec, spec)
	sym := c.Syms.Get(symID)
	sym.Flags.BodyClaimed = true

	// A subprogram body is the second freeze condition: every type its
	// profile mentions must have a final representation before the body's
	// code can be generated.
	for _, param := range sym.Params {
		c.FreezeAt(param.Type, FreezeSubprogramBody, node)
	}

	c.FreezeAt(sym.Result, FreezeSubprogramBody, node)

	c.Tree.Mutate(node, func(n *ast.Node) { n.ResolvedSymbol = symID })

	c.Syms.Push(symID)

	for _, param := range spec.Params {
		ty := c.resolveIndexType(param.Type)

		for _, name := range param.Names {
			psym := c.Syms.NewSymbol(symtab.Parameter, name)
			psym.Type = ty
			c.Syms.Declare(psym)
		}
	}

	c.resolveDeclarations(p.Declarations)

	for _, s := range p.Body {
		c.ResolveStatement(s)
	}

	for _, h := range p.Handlers {
		c.resolveExceptionHandler(h)
	}

	sym.Flags.BodyEmitted = false

	c.Syms.Pop()

	return symID
}

func (c *Context) resolvePackageSpec(node core.NodeID, p ast.PackageSpec) core.SymbolID {
	sym := c.Syms.NewSymbol(symtab.PackageSym, p.Name)
	c.Syms.Declare(sym)

	c.Tree.Mutate(node, func(n *ast.Node) { n.ResolvedSymbol = sym.ID })

	c.Syms.Push(sym.ID)
	c.pushFreezeRegion()

	for _, d := range p.Visible {
		c.forwardDeclare(d)
	}

	for _, d := range p.Visible {
		ids := c.ResolveDeclaration(d)
		sym.Exports = append(sym.Exports, ids...)
	}

	c.resolveDeclarations(p.Private)

	// End of the package spec's own declarative part: the third freeze
	// condition for anything the visible part declared and nothing used.
	c.popFreezeRegion()
	c.Syms.Pop()

	return sym.ID
}

func (c *Context) resolvePackageBody(node core.NodeID, p ast.PackageBody) core.SymbolID {
	var sym *symtab.Symbol

	for _, cand := range c.Syms.LookupAll(p.Name) {
		s := c.Syms.Get(cand)
		if s.Kind == symtab.PackageSym {
			sym = s
			break
		}
	}

	if sym == nil {
		sym = c.Syms.NewSymbol(symtab.PackageSym, p.Name)
		c.Syms.Declare(sym)
	}

	c.Tree.Mutate(node, func(n *ast.Node) { n.ResolvedSymbol = sym.ID })

	c.Syms.Push(sym.ID)

	c.resolveDeclarations(p.Declarations)

	for _, s := range p.Body {
		c.ResolveStatement(s)
	}

	c.Syms.Pop()

	return sym.ID
}

func (c *Context) resolveExceptionDecl(node core.NodeID, p ast.ExceptionDecl) []core.SymbolID {
	var ids []core.SymbolID

	for _, name := range p.Names {
		sym := c.Syms.NewSymbol(symtab.Exception, name)
		c.Syms.Declare(sym)
		ids = append(ids, sym.ID)
	}

	return ids
}

// resolveIndexType resolves a node that denotes a type in a position where
// Ada grammar allows either a type mark (an Identifier) or an anonymous
// range constraint (a bare RangeExpr, as in "array (1 .. 10) of ..."). A
// bare range allocates an anonymous Integer subtype with the folded
// bounds.
func (c *Context) resolveIndexType(node core.NodeID) core.TypeID {
	n := c.Tree.Get(node)

	if rng, ok := n.Payload.(ast.RangeExpr); ok {
		id := c.Types.Allocate(types.Integer, "")
		t := c.Types.Get(id)

		low, lok := c.FoldInteger(rng.Low)
		high, hok := c.FoldInteger(rng.High)

		if lok && hok {
			t.Low, t.High = types.ExactBound(low), types.ExactBound(high)
		}

		return id
	}

	return c.resolveTypeMark(node)
}

// resolveTypeDefinition fills in id's Kind and Body from def, the payload
// of an Ada type definition (or, for a plain "type T is range L .. H",
// the bare range expression itself).
func (c *Context) resolveTypeDefinition(id core.TypeID, def core.NodeID) error {
	n := c.Tree.Get(def)
	t := c.Types.Get(id)

	switch p := n.Payload.(type) {
	case ast.RangeExpr:
		t.Kind = types.Integer

		low, lok := c.FoldInteger(p.Low)
		high, hok := c.FoldInteger(p.High)

		if !lok || !hok {
			return fmt.Errorf("range bounds of %q must be static", t.Name)
		}

		t.Low, t.High = types.ExactBound(low), types.ExactBound(high)
	case ast.EnumTypeDef:
		t.Kind = types.Enumeration
		t.Body = types.EnumBody{Literals: p.Literals}

		for _, lit := range p.Literals {
			sym := c.Syms.NewSymbol(symtab.Literal, lit)
			sym.Type = id
			c.Syms.Declare(sym)
		}
	case ast.DerivedTypeDef:
		parentTy := c.resolveTypeMark(p.Parent)
		parent := c.Types.Get(parentTy)

		t.Kind = parent.Kind
		t.ParentType = parentTy
		t.Body = parent.Body
		t.Low, t.High = parent.Low, parent.High
	case ast.ArrayTypeDef:
		var indices []core.TypeID

		for _, idxNode := range p.IndexSubtypes {
			indices = append(indices, c.resolveIndexType(idxNode))
		}

		elemTy := c.resolveIndexType(p.Element)

		t.Kind = types.Array
		t.Body = types.ArrayBody{Indices: indices, Element: elemTy, Constrained: !p.Unconstrained}
	case ast.RecordTypeDef:
		t.Kind = types.Record
		t.Body = c.resolveRecordBody(p)
	case ast.AccessTypeDef:
		designated := c.resolveIndexType(p.Designated)
		t.Kind = types.Access
		t.Body = types.AccessBody{Designated: designated, IsAccessConstant: p.Constant}
	case ast.FixedTypeDef:
		t.Kind = types.Fixed

		delta := 0.0

		if dv, ok := c.FoldReal(p.Delta); ok {
			delta, _ = dv.Float64()
		}

		t.Body = types.FixedBody{Delta: delta, Small: delta}

		if p.Range.Valid() {
			if rng, ok := c.Tree.Get(p.Range).Payload.(ast.RangeExpr); ok {
				if low, ok := c.FoldReal(rng.Low); ok {
					f, _ := low.Float64()
					t.Low = types.FloatBound(f)
				}

				if high, ok := c.FoldReal(rng.High); ok {
					f, _ := high.Float64()
					t.High = types.FloatBound(f)
				}
			}
		}
	case ast.FloatTypeDef:
		digits := 6

		if d, ok := c.FoldInteger(p.Digits); ok {
			digits = int(d.Int64())
		}

		t.Kind = types.FloatKind
		t.Body = types.FloatBody{Digits: digits}
	case ast.SubtypeIndication:
		baseTy := c.resolveTypeMark(p.Mark)
		base := c.Types.Get(baseTy)

		t.Kind = base.Kind
		t.BaseType = baseTy
		t.Body = base.Body
		t.Low, t.High = base.Low, base.High
	default:
		return fmt.Errorf("type %q has no recognized definition", t.Name)
	}

	return nil
}

func (c *Context) resolveRecordBody(p ast.RecordTypeDef) types.RecordBody {
	expand := func(decls []ast.ComponentDecl) []types.Component {
		var out []types.Component

		for _, cd := range decls {
			ty := c.resolveIndexType(cd.Type)

			for _, name := range cd.Names {
				out = append(out, types.Component{Name: name, Type: ty})
			}
		}

		return out
	}

	var variants []types.Variant

	for _, vc := range p.Variants {
		variants = append(variants, types.Variant{
			Values: c.foldChoiceValues(vc.Values),
			Others: vc.Others,
			Parts:  expand(vc.Parts),
		})
	}

	return types.RecordBody{
		Discriminants: expand(p.Discriminants),
		Components:    expand(p.Components),
		Variants:      variants,
	}
}

// foldChoiceValues folds every static expression in a variant's "when"
// choice list, dropping (and leaving for a later legality check) any that
// are not static.
func (c *Context) foldChoiceValues(nodes []core.NodeID) []*big.Int {
	var out []*big.Int

	for _, n := range nodes {
		if v, ok := c.FoldInteger(n); ok {
			out = append(out, v)
		}
	}

	return out
}
