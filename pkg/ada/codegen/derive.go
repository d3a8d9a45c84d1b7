package codegen

import (
	"fmt"
	"strings"

	"github.com/adalore/adac/pkg/ada/core"
	"github.com/adalore/adac/pkg/ada/symtab"
)

// emitDerivedOperationsFor emits a thin forwarding function for every
// symbol the resolver synthesized as one of typeID's inherited primitive
// operations. deriveOperations (pkg/ada/resolver/resolve.go) only ever
// records these in the symbol table when the derived type freezes, with no
// ast.SubprogramBody of their own, so they never surface through the
// AST-driven emitDeclaration walk; this is called instead, once per
// TypeDecl, with that declaration's own resolved type.
func (e *Emitter) emitDerivedOperationsFor(typeID core.TypeID) {
	if !typeID.Valid() {
		return
	}

	for _, id := range e.ctx.Syms.AllSymbols() {
		sym := e.ctx.Syms.Get(id)
		if !sym.DerivedFrom.Valid() {
			continue
		}

		if sym.Result != typeID && !paramsMentionType(sym.Params, typeID) {
			continue
		}

		e.emitForwardingBody(sym)
	}
}

// paramsMentionType reports whether any formal of params has type ty —
// the same profile-matching test deriveOperations itself used (as
// mentionsType) to decide which subprograms of the parent type to
// synthesize a derived counterpart for.
func paramsMentionType(params []symtab.Param, ty core.TypeID) bool {
	for _, p := range params {
		if p.Type == ty {
			return true
		}
	}

	return false
}

// emitForwardingBody defines derived as a direct forward to the parent
// operation it was synthesized from: derived's own formals, in order,
// become the parent's actuals. No conversion code is needed beyond the
// formals' own LLVM type, because a derived type always inherits its
// parent's representation unchanged (resolveTypeDefinition's
// ast.DerivedTypeDef case copies Body/Low/High from the parent rather than
// reconstructing them) and deriveOperations substituted only the type
// identity in derived's profile, never its representation.
func (e *Emitter) emitForwardingBody(derived *symtab.Symbol) {
	if derived.Flags.BodyEmitted {
		return
	}

	derived.Flags.BodyEmitted = true

	orig := e.ctx.Syms.Get(derived.DerivedFrom)

	if !orig.Flags.BodyClaimed && !orig.Flags.BodyEmitted {
		e.mod.DeclareExternal(e.signatureFor(orig))
	}

	savedFn, savedLocals := e.fn, e.locals
	e.locals = make(map[core.SymbolID]string)

	fn := e.mod.NewFunction(Mangle(e.ctx.Syms, derived), e.signatureFor(derived))
	e.fn = fn

	var argParts []string

	nested := e.isNested(derived)
	if nested {
		argParts = append(argParts, "ptr %__sl")
	}

	for _, formal := range derived.Params {
		argParts = append(argParts, fmt.Sprintf("%s %%%s", e.paramLLVMType(formal), sanitize(formal.Name)))
	}

	retTy := "void"
	if orig.IsFunction() {
		retTy = e.ctx.Types.LLVMTypeString(orig.Result)
	}

	callExpr := fmt.Sprintf("call %s @%s(%s)", retTy, Mangle(e.ctx.Syms, orig), strings.Join(argParts, ", "))

	if retTy == "void" {
		e.fn.Emit(callExpr)
		e.fn.Terminate("ret void")
	} else {
		t := e.fn.Temp(retTy)
		e.fn.Emit(fmt.Sprintf("%s = %s", t, callExpr))
		e.fn.Terminate(fmt.Sprintf("ret %s %s", retTy, t))
	}

	e.fn, e.locals = savedFn, savedLocals
}
