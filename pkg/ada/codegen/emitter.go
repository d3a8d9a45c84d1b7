package codegen

import (
	"fmt"
	"strings"

	"github.com/adalore/adac/pkg/ada/ast"
	"github.com/adalore/adac/pkg/ada/core"
	"github.com/adalore/adac/pkg/ada/resolver"
	"github.com/adalore/adac/pkg/ada/symtab"
	"github.com/adalore/adac/pkg/ada/types"
)

// Emitter walks a resolved compilation unit and feeds LLVM textual IR into a
// Module/Function pair. The tree is never mutated further here, only read,
// with every fact the emitter needs (resolved type, resolved symbol, folded
// constant) already recorded on it by the resolver pass.
type Emitter struct {
	ctx *resolver.Context
	mod *Module
	fn  *Function

	excIDs    map[core.SymbolID]ExceptionID
	nextExcID ExceptionID

	envStack []envFrame

	// loopStack tracks the enclosing loops of the statement currently being
	// emitted, innermost last, so exit/exit-when can resolve a bare or
	// labeled loop name to its continue/break targets.
	loopStack []loopLabels

	// locals holds the SSA pointer (an alloca result, or an incoming
	// reference-mode parameter) currently bound to each local symbol in
	// scope. Keyed by the symbol's own unique id, so nested subprograms
	// and sibling blocks never collide even though the map is not
	// itself scoped.
	locals map[core.SymbolID]string

	// bipDest is the in-place construction address of the build-in-place
	// function currently being emitted; empty outside one.
	bipDest string

	// currentUnit is the library item's own symbol, used to decide whether
	// a call crosses into another unit and so needs an elaboration check.
	currentUnit core.SymbolID
}

// NewEmitter constructs an Emitter targeting mod, against the facts ctx's
// resolver pass has already recorded.
func NewEmitter(ctx *resolver.Context, mod *Module) *Emitter {
	return &Emitter{
		ctx:       ctx,
		mod:       mod,
		excIDs:    make(map[core.SymbolID]ExceptionID),
		nextExcID: NumericError + 1,
		locals:    make(map[core.SymbolID]string),
	}
}

// EmitCompilationUnit emits the library item of one resolved compilation
// unit. The caller is responsible for checking ctx.HasErrors() first:
// emission is never attempted over a tree that resolution flagged.
func (e *Emitter) EmitCompilationUnit(node core.NodeID) error {
	n := e.ctx.Tree.Get(node)

	cu, ok := n.Payload.(ast.CompilationUnit)
	if !ok {
		return fmt.Errorf("codegen: node %d is not a compilation unit", node)
	}

	return e.emitLibraryItem(cu.Body)
}

func (e *Emitter) emitLibraryItem(node core.NodeID) error {
	n := e.ctx.Tree.Get(node)
	e.currentUnit = n.ResolvedSymbol

	switch p := n.Payload.(type) {
	case ast.SubprogramBody:
		e.emitSubprogramBody(n.ResolvedSymbol, p)
	case ast.PackageSpec:
		e.emitPackageSpec(p)
	case ast.PackageBody:
		e.emitPackageBody(p)
	case ast.SubprogramSpec:
		// A bare spec (e.g. for a pragma Import) needs only an external
		// declaration, not a definition.
		e.emitExternalSubprogram(n.ResolvedSymbol)
	case ast.GenericInstantiation:
		e.emitGenericInstantiation(n.ResolvedSymbol)
	default:
		return fmt.Errorf("codegen: library item of kind %s is not emittable", n.Kind)
	}

	return nil
}

func (e *Emitter) emitPackageSpec(p ast.PackageSpec) {
	for _, d := range p.Visible {
		e.emitDeclaration(d)
	}

	for _, d := range p.Private {
		e.emitDeclaration(d)
	}
}

func (e *Emitter) emitPackageBody(p ast.PackageBody) {
	for _, d := range p.Declarations {
		e.emitDeclaration(d)
	}

	// Every package body gets an elaboration routine and a flag global:
	// the routine runs the body's statement sequence exactly once, when
	// the elaboration orderer schedules this unit, and the flag backs the
	// elaboration checks other units emit before calling in.
	flag := elabFlagName(p.Name)
	e.mod.AddGlobal(fmt.Sprintf("@%s = global i1 false", flag))

	elabName := "__elab_" + sanitize(p.Name)
	fn := e.mod.NewFunction(elabName, fmt.Sprintf("void @%s()", elabName))

	savedFn := e.fn
	e.fn = fn

	e.fn.Emit(fmt.Sprintf("store i1 true, ptr @%s", flag))

	for _, s := range p.Body {
		e.emitStatement(s)
	}

	if !e.fn.IsTerminated() {
		e.fn.Terminate("ret void")
	}

	e.fn = savedFn
}

// elabFlagName is the global i1 recording whether a package's body has been
// elaborated yet.
func elabFlagName(pkg string) string {
	return "__elab_flag_" + sanitize(pkg)
}

// emitDeclaration emits the one part of a declaration that produces code of
// its own: a nested subprogram body, a library-level object's global, or a
// nested package. Type and subtype declarations need no code of their own
// — their representation was already fixed by freezing during resolution.
func (e *Emitter) emitDeclaration(node core.NodeID) {
	n := e.ctx.Tree.Get(node)

	switch p := n.Payload.(type) {
	case ast.SubprogramBody:
		e.emitSubprogramBody(n.ResolvedSymbol, p)
	case ast.SubprogramSpec:
		e.emitExternalSubprogram(n.ResolvedSymbol)
	case ast.ObjectDecl:
		e.emitLibraryObjectDecl(n.ResolvedSymbol, p)
	case ast.PackageSpec:
		e.emitPackageSpec(p)
	case ast.PackageBody:
		e.emitPackageBody(p)
	case ast.TypeDecl:
		// The declaration itself is representation-only, but if it
		// defined a derived type, the resolver already synthesized
		// its inherited primitive operations into the symbol table
		// and they still need their forwarding bodies emitted.
		e.emitDerivedOperationsFor(n.ResolvedType)
	case ast.GenericInstantiation:
		e.emitGenericInstantiation(n.ResolvedSymbol)
	default:
		// SubtypeDecl, NumberDecl, ExceptionDecl, ParameterSpec, and a
		// GenericDecl template: representation-only, nothing to emit.
	}
}

// emitGenericInstantiation emits the expanded copy an instantiation's
// resolution produced; the template itself never generates code.
func (e *Emitter) emitGenericInstantiation(sym core.SymbolID) {
	if !sym.Valid() {
		return
	}

	expanded := e.ctx.Syms.Get(sym).ExpandedSpec
	if expanded.Valid() {
		e.emitDeclaration(expanded)
	}
}

// emitLibraryObjectDecl emits a package-level variable or constant as a
// zero-initialized LLVM global. The declaration's initializer expression is
// not emitted, here or in the package's elaboration routine, so the global
// holds zero until a statement assigns it.
func (e *Emitter) emitLibraryObjectDecl(sym core.SymbolID, p ast.ObjectDecl) {
	if !sym.Valid() {
		return
	}

	s := e.ctx.Syms.Get(sym)
	llvmTy := e.ctx.Types.LLVMTypeString(s.Type)
	name := Mangle(e.ctx.Syms, s)

	e.mod.AddGlobal(fmt.Sprintf("@%s = global %s zeroinitializer", name, llvmTy))
}

func (e *Emitter) emitExternalSubprogram(sym core.SymbolID) {
	if !sym.Valid() {
		return
	}

	s := e.ctx.Syms.Get(sym)
	if s.Flags.ExternallyDeclared {
		return
	}

	s.Flags.ExternallyDeclared = true
	e.mod.DeclareExternal(e.signatureFor(s))
}

// signatureFor renders a subprogram symbol's LLVM definition/declaration
// signature: return type (void for a procedure), mangled name, and its
// formal parameters — by-copy for mode in scalars, by-reference (a bare
// ptr) for mode out/in out and for any composite passed via the fat-pointer
// or record-pointer ABI — prefixed with an implicit static-link formal if
// the subprogram is nested inside another subprogram.
func (e *Emitter) signatureFor(sym *symtab.Symbol) string {
	retTy := "void"
	if sym.IsFunction() && !e.isBIPFunction(sym) {
		retTy = e.ctx.Types.LLVMTypeString(sym.Result)
	}

	var parts []string

	if e.isNested(sym) {
		parts = append(parts, "ptr %__sl")
	}

	if e.isBIPFunction(sym) {
		parts = append(parts, bipFormals())
	}

	for _, p := range sym.Params {
		parts = append(parts, fmt.Sprintf("%s %%%s", e.paramLLVMType(p), sanitize(p.Name)))
	}

	return fmt.Sprintf("%s @%s(%s)", retTy, Mangle(e.ctx.Syms, sym), strings.Join(parts, ", "))
}

// isBIPFunction reports whether sym returns a limited type and so follows
// the build-in-place protocol: the declared result never travels by value,
// the five implicit __BIP* formals do instead.
func (e *Emitter) isBIPFunction(sym *symtab.Symbol) bool {
	if !sym.IsFunction() {
		return false
	}

	return e.ctx.Types.Get(sym.Result).Kind == types.LimitedPrivate
}

// paramLLVMType is the ABI type of one formal: a bare pointer for any mode
// that can write back to the actual, or for a type with no single
// fixed-size LLVM representation of its own (unconstrained arrays and
// discriminated records travel as fat/record pointers regardless of mode).
func (e *Emitter) paramLLVMType(p symtab.Param) string {
	t := e.ctx.Types.Get(p.Type)

	if p.Mode != symtab.ModeIn || t.IsUnconstrainedArray() || t.IsUnconstrainedRecord() {
		return "ptr"
	}

	return e.ctx.Types.LLVMTypeString(p.Type)
}

// isNested reports whether sym's own defining scope is owned by another
// subprogram, as opposed to a package or the library level — exactly the
// condition under which it must receive a static-link formal.
func (e *Emitter) isNested(sym *symtab.Symbol) bool {
	scope := e.ctx.Syms.Scope(sym.DefiningScope)
	if !scope.HasParent || !scope.Owner.Valid() {
		return false
	}

	owner := e.ctx.Syms.Get(scope.Owner)

	return owner.Kind == symtab.Procedure || owner.Kind == symtab.Function
}

// emitSubprogramBody emits one subprogram's full definition: prologue
// (parameter allocas, environment record if some nested body captures this
// subprogram's locals), its declarative part, its statements, and its
// top-level exception handlers if it has any.
func (e *Emitter) emitSubprogramBody(sym core.SymbolID, p ast.SubprogramBody) {
	if !sym.Valid() {
		return
	}

	s := e.ctx.Syms.Get(sym)
	if s.Flags.BodyEmitted {
		return
	}

	s.Flags.BodyEmitted = true

	savedFn, savedLocals := e.fn, e.locals
	e.locals = make(map[core.SymbolID]string)

	fn := e.mod.NewFunction(Mangle(e.ctx.Syms, s), e.signatureFor(s))
	e.fn = fn

	if e.isNested(s) {
		fn.SetStaticLink()
	}

	scopeID, hasScope := e.ctx.Syms.ScopeOf(sym)

	var capturable []core.SymbolID

	hasNested := hasScope && hasNestedSubprograms(e.ctx, p.Declarations)
	if hasScope {
		capturable = capturableLocals(e.ctx, scopeID)
		fn.SetFrameSize(e.ctx.Syms.Scope(scopeID).FrameSize)
	}

	e.allocParams(s)

	savedBIPDest := e.bipDest
	e.bipDest = ""

	if e.isBIPFunction(s) {
		e.bipDest = e.emitBIPAlloc(e.ctx.Types.LLVMTypeString(s.Result))
	}

	// Local object slots are allocated ahead of the environment record,
	// since the record captures their addresses; their initializers still
	// run in declaration order below.
	e.allocLocalObjects(p.Declarations)

	parentLink := "null"
	if e.isNested(s) {
		parentLink = "%__sl"
	}

	e.pushEnvFrame(sym, capturable, hasNested, parentLink, func(local core.SymbolID) string { return e.locals[local] })

	e.emitDeclarationsInBody(p.Declarations)

	if len(p.Handlers) > 0 {
		hf := e.enterProtectedRegion()

		for _, st := range p.Body {
			e.emitStatement(st)
		}

		e.emitHandlers(hf, p.Handlers, func(body []core.NodeID) {
			for _, st := range body {
				e.emitStatement(st)
			}
		})
	} else {
		for _, st := range p.Body {
			e.emitStatement(st)
		}
	}

	if !e.fn.IsTerminated() {
		if s.IsFunction() {
			e.fn.Terminate("unreachable")
		} else {
			e.fn.Terminate("ret void")
		}
	}

	e.popEnvFrame()

	e.bipDest = savedBIPDest
	e.fn, e.locals = savedFn, savedLocals
}

// emitDeclarationsInBody emits every local declaration of a subprogram or
// block's declarative part: nested subprogram bodies recurse fully, while
// object declarations allocate a stack slot and store their initializer.
func (e *Emitter) emitDeclarationsInBody(decls []core.NodeID) {
	for _, d := range decls {
		n := e.ctx.Tree.Get(d)

		switch p := n.Payload.(type) {
		case ast.SubprogramBody:
			e.emitSubprogramBody(n.ResolvedSymbol, p)
		case ast.SubprogramSpec:
			e.emitExternalSubprogram(n.ResolvedSymbol)
		case ast.ObjectDecl:
			e.emitLocalObjectDecl(d, p)
		case ast.TypeDecl:
			e.emitDerivedOperationsFor(n.ResolvedType)
		case ast.GenericInstantiation:
			e.emitGenericInstantiation(n.ResolvedSymbol)
		default:
			// Subtype/number/exception declarations carry no
			// runtime representation of their own.
		}
	}
}

// allocParams allocates a local stack slot for each by-copy parameter and
// stores the incoming SSA value into it (so every local reference, uplevel
// or not, resolves through a uniform pointer), and records the bare
// incoming pointer directly for by-reference parameters.
func (e *Emitter) allocParams(sym *symtab.Symbol) {
	scopeID, ok := e.ctx.Syms.ScopeOf(sym.ID)
	if !ok {
		return
	}

	i := 0

	for _, pid := range e.ctx.Syms.Scope(scopeID).Symbols() {
		p := e.ctx.Syms.Get(pid)
		if p.Kind != symtab.Parameter {
			continue
		}

		if i >= len(sym.Params) {
			break
		}

		formal := sym.Params[i]
		i++

		argName := "%" + sanitize(formal.Name)

		if e.paramLLVMType(formal) == "ptr" {
			// A reference-mode formal, or an unconstrained array/
			// discriminated record formal passed via the fat/record
			// pointer ABI, is already addressable as-is.
			e.locals[pid] = argName
			continue
		}

		llvmTy := e.ctx.Types.LLVMTypeString(formal.Type)

		slot := e.fn.Temp("ptr")
		e.fn.Emit(fmt.Sprintf("%s = alloca %s", slot, llvmTy))
		e.fn.Emit(fmt.Sprintf("store %s %s, ptr %s", llvmTy, argName, slot))
		e.locals[pid] = slot
	}
}

// allocLocalObjects allocates the stack slot of every object declared
// directly in a declarative part, recording each in locals, so that the
// environment record built right after can capture their addresses before
// any initializer or nested body runs.
func (e *Emitter) allocLocalObjects(decls []core.NodeID) {
	for _, d := range decls {
		n := e.ctx.Tree.Get(d)

		p, ok := n.Payload.(ast.ObjectDecl)
		if !ok {
			continue
		}

		ids := e.ctx.DeclSymbols[d]

		for i := range p.Names {
			if i >= len(ids) {
				break
			}

			sym := e.ctx.Syms.Get(ids[i])
			llvmTy := e.ctx.Types.LLVMTypeString(sym.Type)

			slot := e.fn.Temp("ptr")
			e.fn.Emit(fmt.Sprintf("%s = alloca %s", slot, llvmTy))
			e.locals[sym.ID] = slot
		}
	}
}

// emitLocalObjectDecl binds a variable or constant declared in a subprogram
// or block's declarative part to a stack slot — reusing the slot
// allocLocalObjects already opened for a subprogram-level declaration — and,
// if it has an initializer, stores the initializer's value into it. The
// resolver recorded this node's symbols in DeclSymbols, in the same order as
// p.Names, when it first declared them.
func (e *Emitter) emitLocalObjectDecl(node core.NodeID, p ast.ObjectDecl) {
	ids := e.ctx.DeclSymbols[node]

	for i := range p.Names {
		if i >= len(ids) {
			break
		}

		sym := e.ctx.Syms.Get(ids[i])
		llvmTy := e.ctx.Types.LLVMTypeString(sym.Type)

		slot, ok := e.locals[sym.ID]
		if !ok {
			slot = e.fn.Temp("ptr")
			e.fn.Emit(fmt.Sprintf("%s = alloca %s", slot, llvmTy))
			e.locals[sym.ID] = slot
		}

		if p.Init.Valid() {
			val, _ := e.emitExpression(p.Init, sym.Type)
			ty := e.ctx.Types.Get(sym.Type)
			e.emitRangeCheck(ty, val, llvmTy)
			e.fn.Emit(fmt.Sprintf("store %s %s, ptr %s", llvmTy, val, slot))
		}
	}
}
