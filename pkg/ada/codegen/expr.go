package codegen

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/adalore/adac/pkg/ada/ast"
	"github.com/adalore/adac/pkg/ada/core"
	"github.com/adalore/adac/pkg/ada/symtab"
	"github.com/adalore/adac/pkg/ada/types"
)

// emitExpression emits the instructions computing node's value and returns
// it together with its LLVM type. contextType is the type the surrounding
// construct expects this value as; it only matters as a fallback when the
// node's own resolved type was never set (an earlier resolution error), so
// that code generation can still produce something rather than panic on an
// invalid type handle.
func (e *Emitter) emitExpression(node core.NodeID, contextType core.TypeID) (string, string) {
	n := e.ctx.Tree.Get(node)

	ty := n.ResolvedType
	if !ty.Valid() {
		ty = contextType
	}

	llvmTy := e.ctx.Types.LLVMTypeString(ty)

	switch p := n.Payload.(type) {
	case ast.IntegerLiteral:
		return p.Value.String(), llvmTy
	case ast.RealLiteral:
		return formatFloat(p.Value), llvmTy
	case ast.CharacterLiteral:
		return fmt.Sprintf("%d", int64(p.Value)), llvmTy
	case ast.StringLiteral:
		return e.emitStringLiteral(p.Value, ty)
	case ast.Identifier:
		return e.emitIdentifierLoad(n.ResolvedSymbol, llvmTy)
	case ast.SelectedComponent:
		return e.emitSelectedComponentLoad(node, p, llvmTy)
	case ast.BinaryOp:
		return e.emitBinaryOp(node, p, llvmTy)
	case ast.UnaryOp:
		return e.emitUnaryOp(node, p, llvmTy)
	case ast.Apply:
		return e.emitApply(node, p, ty, llvmTy)
	case ast.Attribute:
		return e.emitAttributeValue(node, p, llvmTy)
	case ast.QualifiedExpr:
		return e.emitExpression(p.Expr, ty)
	case ast.Aggregate:
		return e.emitAggregate(p, ty, llvmTy)
	default:
		return "undef", llvmTy
	}
}

// emitAddressOf emits the instructions computing node's address, for use as
// an assignment target, an in-out/out actual, or a record/array component
// prefix. Anything that is not one of the recognized lvalue forms falls
// back to its ordinary value, trusting that value is itself already a
// pointer (e.g. an access value that has been dereferenced upstream).
func (e *Emitter) emitAddressOf(node core.NodeID) string {
	n := e.ctx.Tree.Get(node)

	switch p := n.Payload.(type) {
	case ast.Identifier:
		return e.addressOfSymbol(n.ResolvedSymbol)
	case ast.SelectedComponent:
		if n.ResolvedSymbol.Valid() {
			return e.addressOfSymbol(n.ResolvedSymbol)
		}

		return e.addressOfSelectedComponent(p)
	case ast.Apply:
		return e.addressOfApply(node, p)
	default:
		val, _ := e.emitExpression(node, core.NoType)
		return val
	}
}

// addressOfSymbol resolves a referenced symbol to the SSA pointer holding
// its storage: a local in the current subprogram's own frame, a local
// captured uplevel from an enclosing one, or a library-level global.
func (e *Emitter) addressOfSymbol(sym core.SymbolID) string {
	if !sym.Valid() {
		return "null"
	}

	if addr, ok := e.locals[sym]; ok {
		return addr
	}

	s := e.ctx.Syms.Get(sym)

	if owner := owningSubprogram(e.ctx, s); owner.Valid() {
		if ptr, field, ok := e.findUplevel(owner, sym); ok {
			loaded := e.fn.Temp("ptr")
			e.fn.Emit(fmt.Sprintf("%s = call ptr @__ada_env_load(ptr %s, i32 %d)", loaded, ptr, field))

			return loaded
		}
	}

	return "@" + Mangle(e.ctx.Syms, s)
}

// frameLinkFor returns the SSA pointer to owner's own environment record, as
// seen from the subprogram currently being emitted, chasing the active
// chain's parent links the same way findUplevel does for a captured local.
// "null" is returned if owner has no active frame, which only happens when
// it has no nested subprogram to ever pass a static link to in the first
// place.
func (e *Emitter) frameLinkFor(owner core.SymbolID) string {
	for i := len(e.envStack) - 1; i >= 0; i-- {
		if e.envStack[i].sym != owner {
			continue
		}

		if ptr := e.reachEnv(i); ptr != "" {
			return ptr
		}

		return "null"
	}

	return "null"
}

// emitIdentifierLoad loads the current value of a referenced symbol. An
// enumeration (or Boolean) literal has no storage at all: its "value" is
// its representation constant, looked up directly in the enclosing type's
// literal list.
func (e *Emitter) emitIdentifierLoad(sym core.SymbolID, llvmTy string) (string, string) {
	if !sym.Valid() {
		return "undef", llvmTy
	}

	s := e.ctx.Syms.Get(sym)

	if s.Kind == symtab.Literal {
		return e.literalValue(s), llvmTy
	}

	addr := e.addressOfSymbol(sym)
	val := e.fn.Temp(llvmTy)
	e.fn.Emit(fmt.Sprintf("%s = load %s, ptr %s", val, llvmTy, addr))

	return val, llvmTy
}

// literalValue returns the representation value of an enumeration (or
// Boolean) literal symbol: its position among its type's literals, or the
// explicit value a representation clause assigned that position.
func (e *Emitter) literalValue(sym *symtab.Symbol) string {
	t := e.ctx.Types.Get(sym.Type)

	body, ok := t.Body.(types.EnumBody)
	if !ok {
		return "0"
	}

	for i, lit := range body.Literals {
		if lit == sym.Name {
			return fmt.Sprintf("%d", body.ValueOf(i))
		}
	}

	return "0"
}

// emitStringLiteral materializes a string literal as a private constant
// global and produces either the fat pointer or the plain sized-array value
// representing it, depending on whether arrTy (the context this literal is
// used in) is unconstrained.
func (e *Emitter) emitStringLiteral(s string, arrTy core.TypeID) (string, string) {
	name := e.mod.NewStringConstant(s)

	t := e.ctx.Types.Get(arrTy)
	if !t.IsUnconstrainedArray() {
		llvmTy := e.ctx.Types.LLVMTypeString(arrTy)

		val := e.fn.Temp(llvmTy)
		e.fn.Emit(fmt.Sprintf("%s = load %s, ptr @%s", val, llvmTy, name))

		return val, llvmTy
	}

	dataPtr := e.fn.Temp("ptr")
	e.fn.Emit(fmt.Sprintf("%s = getelementptr [%d x i8], ptr @%s, i32 0, i32 0", dataPtr, len(s), name))

	high := fmt.Sprintf("%d", len(s))
	fatPtr := e.buildFatPointer(dataPtr, arrTy, []boundPair{{low: "1", high: high}})

	return fatPtr, FatPointerType
}

// --- Record and array components -----------------------------------------

// emitSelectedComponentLoad loads the value of a selected-component
// expression: a package-qualified reference (the resolver already attached
// the target symbol directly to this node) or a record field access.
func (e *Emitter) emitSelectedComponentLoad(node core.NodeID, p ast.SelectedComponent, llvmTy string) (string, string) {
	n := e.ctx.Tree.Get(node)

	if n.ResolvedSymbol.Valid() {
		return e.emitIdentifierLoad(n.ResolvedSymbol, llvmTy)
	}

	addr := e.addressOfSelectedComponent(p)
	val := e.fn.Temp(llvmTy)
	e.fn.Emit(fmt.Sprintf("%s = load %s, ptr %s", val, llvmTy, addr))

	return val, llvmTy
}

// addressOfSelectedComponent computes the address of a record field: the
// prefix's own address offset by the field's byte offset, checking the
// governing discriminant first if the field lives inside a variant part.
func (e *Emitter) addressOfSelectedComponent(p ast.SelectedComponent) string {
	prefixAddr := e.emitAddressOf(p.Prefix)
	prefixNode := e.ctx.Tree.Get(p.Prefix)

	rec := e.ctx.Types.Get(prefixNode.ResolvedType)

	// An access-to-record prefix dereferences implicitly: load the access
	// value, check it against null, and select into the designated record.
	if ab, isAccess := rec.Body.(types.AccessBody); isAccess {
		ptrVal := e.fn.Temp("ptr")
		e.fn.Emit(fmt.Sprintf("%s = load ptr, ptr %s", ptrVal, prefixAddr))
		e.emitAccessCheck(rec, ptrVal)

		prefixAddr = ptrVal
		rec = e.ctx.Types.Get(ab.Designated)
	}

	body, ok := rec.Body.(types.RecordBody)
	if !ok {
		return prefixAddr
	}

	offset, variant, _, found := recordComponentOffset(body, p.Selector)
	if !found {
		return prefixAddr
	}

	if variant != nil && len(body.Discriminants) > 0 {
		e.emitVariantCheck(rec, body, *variant, prefixAddr)
	}

	gep := e.fn.Temp("ptr")
	e.fn.Emit(fmt.Sprintf("%s = getelementptr i8, ptr %s, i32 %d", gep, prefixAddr, offset))

	return gep
}

// recordComponentOffset locates name among a record type's discriminants,
// fixed components, and variant parts, returning its byte offset, declared
// type, and (for a variant component) the variant it belongs to.
func recordComponentOffset(body types.RecordBody, name string) (offset uint32, variant *types.Variant, ty core.TypeID, ok bool) {
	for _, c := range body.Discriminants {
		if c.Name == name {
			return c.Offset, nil, c.Type, true
		}
	}

	for _, c := range body.Components {
		if c.Name == name {
			return c.Offset, nil, c.Type, true
		}
	}

	for i := range body.Variants {
		v := &body.Variants[i]

		for _, c := range v.Parts {
			if c.Name == name {
				return c.Offset, v, c.Type, true
			}
		}
	}

	return 0, nil, core.NoType, false
}

// emitVariantCheck verifies, before a variant component's access, that the
// record's governing discriminant currently selects this variant.
func (e *Emitter) emitVariantCheck(rec *types.Type, body types.RecordBody, v types.Variant, recAddr string) {
	if v.Others || len(v.Values) == 0 {
		return
	}

	disc := body.Discriminants[0]
	discLLVMTy := e.ctx.Types.LLVMTypeString(disc.Type)

	gep := e.fn.Temp("ptr")
	e.fn.Emit(fmt.Sprintf("%s = getelementptr i8, ptr %s, i32 %d", gep, recAddr, disc.Offset))

	discVal := e.fn.Temp(discLLVMTy)
	e.fn.Emit(fmt.Sprintf("%s = load %s, ptr %s", discVal, discLLVMTy, gep))

	e.emitDiscriminantCheck(rec, discVal, discLLVMTy, v.Values[0].String())
}

// addressOfIndexApply computes the address of one element of an indexed
// array, honoring row-major layout across every dimension and emitting an
// index check per dimension.
func (e *Emitter) addressOfIndexApply(p ast.Apply) string {
	prefixNode := e.ctx.Tree.Get(p.Prefix)
	arrTy := prefixNode.ResolvedType
	t := e.ctx.Types.Get(arrTy)

	body, ok := t.Body.(types.ArrayBody)
	if !ok {
		return e.emitAddressOf(p.Prefix)
	}

	elemSize := e.ctx.Types.Get(body.Element).SizeBytes

	var dataPtr string

	lows := make([]string, len(body.Indices))
	highs := make([]string, len(body.Indices))

	if t.IsUnconstrainedArray() {
		fatPtr, _ := e.emitExpression(p.Prefix, arrTy)
		dataPtr = e.extractDataPtr(fatPtr)

		for dim := range body.Indices {
			lows[dim] = e.extractBound(fatPtr, arrTy, dim, 0)
			highs[dim] = e.extractBound(fatPtr, arrTy, dim, 1)
		}
	} else {
		dataPtr = e.emitAddressOf(p.Prefix)

		for dim, idxTyID := range body.Indices {
			idxTy := e.ctx.Types.Get(idxTyID)
			lows[dim] = boundLiteral(idxTy.Low)
			highs[dim] = boundLiteral(idxTy.High)
		}
	}

	var linear string

	for dim := range body.Indices {
		if dim >= len(p.Args) {
			break
		}

		idxLLVMTy := e.ctx.Types.LLVMTypeString(body.Indices[dim])

		idxVal, _ := e.emitExpression(p.Args[dim], body.Indices[dim])
		e.emitIndexCheck(t, idxVal, lows[dim], highs[dim], idxLLVMTy)

		rel := e.fn.Temp(idxLLVMTy)
		e.fn.Emit(fmt.Sprintf("%s = sub %s %s, %s", rel, idxLLVMTy, idxVal, lows[dim]))

		rel64 := e.fn.Temp("i64")
		e.fn.Emit(fmt.Sprintf("%s = sext %s %s to i64", rel64, idxLLVMTy, rel))

		// Every dimension to the right contributes a multiplier: this
		// index's own contribution is its offset scaled by the combined
		// length of the less-significant dimensions.
		for inner := dim + 1; inner < len(body.Indices); inner++ {
			innerLLVMTy := e.ctx.Types.LLVMTypeString(body.Indices[inner])
			innerLen := e.length(e.fn, lows[inner], highs[inner], innerLLVMTy)

			innerLen64 := e.fn.Temp("i64")
			e.fn.Emit(fmt.Sprintf("%s = sext %s %s to i64", innerLen64, innerLLVMTy, innerLen))

			scaled := e.fn.Temp("i64")
			e.fn.Emit(fmt.Sprintf("%s = mul i64 %s, %s", scaled, rel64, innerLen64))
			rel64 = scaled
		}

		if linear == "" {
			linear = rel64
		} else {
			sum := e.fn.Temp("i64")
			e.fn.Emit(fmt.Sprintf("%s = add i64 %s, %s", sum, linear, rel64))
			linear = sum
		}
	}

	byteOffset := e.fn.Temp("i64")
	e.fn.Emit(fmt.Sprintf("%s = mul i64 %s, %d", byteOffset, linear, elemSize))

	addr := e.fn.Temp("ptr")
	e.fn.Emit(fmt.Sprintf("%s = getelementptr i8, ptr %s, i64 %s", addr, dataPtr, byteOffset))

	return addr
}

// sliceAddressAndBounds computes the address of the first element a slice
// denotes along with its own (possibly narrower) low/high bounds, shared by
// both the value form ('X(Lo..Hi)' used as an expression) and the address
// form (as an assignment target).
func (e *Emitter) sliceAddressAndBounds(p ast.Apply) (addr string, arrTy core.TypeID, low, high string) {
	prefixNode := e.ctx.Tree.Get(p.Prefix)
	arrTy = prefixNode.ResolvedType
	t := e.ctx.Types.Get(arrTy)

	body, _ := t.Body.(types.ArrayBody)
	idxLLVMTy := e.ctx.Types.LLVMTypeString(body.Indices[0])

	var dataPtr, baseLow string

	if t.IsUnconstrainedArray() {
		fatPtr, _ := e.emitExpression(p.Prefix, arrTy)
		dataPtr = e.extractDataPtr(fatPtr)
		baseLow = e.extractBound(fatPtr, arrTy, 0, 0)
	} else {
		dataPtr = e.emitAddressOf(p.Prefix)
		idxTy := e.ctx.Types.Get(body.Indices[0])
		baseLow = boundLiteral(idxTy.Low)
	}

	rng := e.ctx.Tree.Get(p.Args[0]).Payload.(ast.RangeExpr)
	low, _ = e.emitExpression(rng.Low, body.Indices[0])
	high, _ = e.emitExpression(rng.High, body.Indices[0])

	offset := e.fn.Temp(idxLLVMTy)
	e.fn.Emit(fmt.Sprintf("%s = sub %s %s, %s", offset, idxLLVMTy, low, baseLow))

	offset64 := e.fn.Temp("i64")
	e.fn.Emit(fmt.Sprintf("%s = sext %s %s to i64", offset64, idxLLVMTy, offset))

	elemSize := e.ctx.Types.Get(body.Element).SizeBytes
	byteOffset := e.fn.Temp("i64")
	e.fn.Emit(fmt.Sprintf("%s = mul i64 %s, %d", byteOffset, offset64, elemSize))

	addr = e.fn.Temp("ptr")
	e.fn.Emit(fmt.Sprintf("%s = getelementptr i8, ptr %s, i64 %s", addr, dataPtr, byteOffset))

	return addr, arrTy, low, high
}

// --- Apply (call / index / slice / conversion) ----------------------------

func (e *Emitter) emitApply(node core.NodeID, p ast.Apply, contextType core.TypeID, llvmTy string) (string, string) {
	switch p.Form {
	case ast.ApplyCall:
		return e.emitCallApply(node, p, llvmTy)
	case ast.ApplyConversion:
		return e.emitConversionApply(node, p, llvmTy)
	case ast.ApplyIndex:
		addr := e.addressOfIndexApply(p)
		val := e.fn.Temp(llvmTy)
		e.fn.Emit(fmt.Sprintf("%s = load %s, ptr %s", val, llvmTy, addr))

		return val, llvmTy
	case ast.ApplySlice:
		addr, arrTy, low, high := e.sliceAddressAndBounds(p)
		return e.buildFatPointer(addr, arrTy, []boundPair{{low: low, high: high}}), FatPointerType
	default:
		return "undef", llvmTy
	}
}

func (e *Emitter) emitCallApply(node core.NodeID, p ast.Apply, llvmTy string) (string, string) {
	n := e.ctx.Tree.Get(node)
	if !n.ResolvedSymbol.Valid() {
		return "undef", llvmTy
	}

	sym := e.ctx.Syms.Get(n.ResolvedSymbol)

	return e.emitCallTo(sym, p.Args, llvmTy)
}

// emitCallTo emits a call to sym with argNodes as its actuals: a static
// link is prefixed if sym is nested, a build-in-place callee receives the
// five __BIP* actuals for a caller-stack result, each by-reference/
// fat-pointer formal receives the actual's address, and every other formal
// receives its value. A callee living in another unit's package gets an
// elaboration check against that package's flag first.
func (e *Emitter) emitCallTo(sym *symtab.Symbol, argNodes []core.NodeID, llvmTy string) (string, string) {
	e.emitCrossUnitElaborationCheck(sym)

	var argParts []string

	if e.isNested(sym) {
		owner := owningSubprogram(e.ctx, sym)
		argParts = append(argParts, "ptr "+e.frameLinkFor(owner))
	}

	bip := e.isBIPFunction(sym)

	var bipResultSlot string

	if bip {
		resultLLVMTy := e.ctx.Types.LLVMTypeString(sym.Result)

		bipResultSlot = e.fn.Temp("ptr")
		e.fn.Emit(fmt.Sprintf("%s = alloca %s", bipResultSlot, resultLLVMTy))

		accessSlot := e.fn.Temp("ptr")
		e.fn.Emit(fmt.Sprintf("%s = alloca ptr", accessSlot))

		argParts = append(argParts,
			fmt.Sprintf("i32 %d", BIPCallerStack),
			"ptr "+bipResultSlot,
			"ptr null",
			"ptr null",
			"ptr "+accessSlot)
	}

	for i, argNode := range argNodes {
		if i >= len(sym.Params) {
			break
		}

		formal := sym.Params[i]

		if e.ctx.Types.Get(formal.Type).IsUnconstrainedArray() {
			fat := e.fatPointerFor(argNode, formal.Type)

			slot := e.fn.Temp("ptr")
			e.fn.Emit(fmt.Sprintf("%s = alloca %s", slot, FatPointerType))
			e.fn.Emit(fmt.Sprintf("store %s %s, ptr %s", FatPointerType, fat, slot))
			argParts = append(argParts, "ptr "+slot)

			continue
		}

		argTy := e.paramLLVMType(formal)

		if argTy == "ptr" {
			argParts = append(argParts, "ptr "+e.emitAddressOf(argNode))
			continue
		}

		val, _ := e.emitExpression(argNode, formal.Type)
		argParts = append(argParts, fmt.Sprintf("%s %s", argTy, val))
	}

	callTarget := "@" + Mangle(e.ctx.Syms, sym)

	// A callee whose body no compilation unit claims (a bare spec, e.g. a
	// with-ed unit's subprogram) is declared external in this module;
	// per-module deduplication makes repeated calls harmless.
	if !sym.Flags.BodyClaimed && !sym.Flags.BodyEmitted {
		e.mod.DeclareExternal(e.signatureFor(sym))
	}

	retTy := "void"
	if sym.IsFunction() && !bip {
		retTy = e.ctx.Types.LLVMTypeString(sym.Result)
	}

	callExpr := fmt.Sprintf("call %s %s(%s)", retTy, callTarget, strings.Join(argParts, ", "))

	if retTy == "void" {
		e.fn.Emit(callExpr)

		if bip {
			// The result was constructed in place on this caller's stack;
			// its value is whatever now lives in the slot.
			resultLLVMTy := e.ctx.Types.LLVMTypeString(sym.Result)
			val := e.fn.Temp(resultLLVMTy)
			e.fn.Emit(fmt.Sprintf("%s = load %s, ptr %s", val, resultLLVMTy, bipResultSlot))

			return val, resultLLVMTy
		}

		return "", "void"
	}

	t := e.fn.Temp(retTy)
	e.fn.Emit(fmt.Sprintf("%s = %s", t, callExpr))

	return t, retTy
}

// emitCrossUnitElaborationCheck guards a call into another library unit's
// package with a load of that package's elaboration flag, raising
// Program_Error when the body has not run yet. Calls within the current
// unit, to imported/predefined entities, and to symbols outside any package
// need no check.
func (e *Emitter) emitCrossUnitElaborationCheck(sym *symtab.Symbol) {
	if sym.Pragmas.Imported || sym.Flags.IsPredefined || !sym.Kind.IsSubprogram() {
		return
	}

	pkg := e.enclosingPackage(sym)
	if !pkg.Valid() || pkg == e.currentUnit {
		return
	}

	pkgSym := e.ctx.Syms.Get(pkg)
	if pkgSym.Pragmas.Suppressed.IsSuppressed(types.ElaborationCheck) {
		return
	}

	flag := elabFlagName(pkgSym.Name)
	e.mod.DeclareExternalGlobal(flag, "i1")
	e.emitElaborationCheck(nil, flag)
}

// enclosingPackage walks sym's parent chain to the nearest package symbol.
func (e *Emitter) enclosingPackage(sym *symtab.Symbol) core.SymbolID {
	for p := sym.Parent; p.Valid(); {
		parent := e.ctx.Syms.Get(p)
		if parent.Kind == symtab.PackageSym {
			return p
		}

		p = parent.Parent
	}

	return core.NoSymbol
}

// emitConversionApply converts the value of a type-conversion's single
// argument to the conversion's own (already resolved) target type.
func (e *Emitter) emitConversionApply(node core.NodeID, p ast.Apply, llvmTy string) (string, string) {
	n := e.ctx.Tree.Get(node)
	if len(p.Args) == 0 {
		return "undef", llvmTy
	}

	targetTy := n.ResolvedType
	dstTy := e.ctx.Types.Get(targetTy)

	srcNode := e.ctx.Tree.Get(p.Args[0])
	srcTy := e.ctx.Types.Get(srcNode.ResolvedType)

	val, srcLLVMTy := e.emitExpression(p.Args[0], targetTy)

	return e.emitScalarConversion(val, srcLLVMTy, srcTy, dstTy, llvmTy), llvmTy
}

func (e *Emitter) emitScalarConversion(val, srcLLVMTy string, srcTy, dstTy *types.Type, dstLLVMTy string) string {
	converted := val

	switch {
	case srcTy.Kind.IsReal() && dstTy.Kind.IsReal():
		if srcLLVMTy != dstLLVMTy {
			op := "fpext"
			if srcLLVMTy == "double" && dstLLVMTy == "float" {
				op = "fptrunc"
			}

			t := e.fn.Temp(dstLLVMTy)
			e.fn.Emit(fmt.Sprintf("%s = %s %s %s to %s", t, op, srcLLVMTy, converted, dstLLVMTy))
			converted = t
		}
	case srcTy.Kind.IsReal():
		t := e.fn.Temp(dstLLVMTy)
		e.fn.Emit(fmt.Sprintf("%s = fptosi %s %s to %s", t, srcLLVMTy, converted, dstLLVMTy))
		converted = t
	case dstTy.Kind.IsReal():
		t := e.fn.Temp(dstLLVMTy)
		e.fn.Emit(fmt.Sprintf("%s = sitofp %s %s to %s", t, srcLLVMTy, converted, dstLLVMTy))
		converted = t
	default:
		if srcLLVMTy != dstLLVMTy {
			op := "trunc"
			if llvmWidth(dstLLVMTy) > llvmWidth(srcLLVMTy) {
				op = "sext"
			}

			t := e.fn.Temp(dstLLVMTy)
			e.fn.Emit(fmt.Sprintf("%s = %s %s %s to %s", t, op, srcLLVMTy, converted, dstLLVMTy))
			converted = t
		}
	}

	e.emitRangeCheck(dstTy, converted, dstLLVMTy)

	return converted
}

func llvmWidth(t string) int {
	switch t {
	case "i1":
		return 1
	case "i8":
		return 8
	case "i16":
		return 16
	case "i32":
		return 32
	case "i64":
		return 64
	case "i128":
		return 128
	default:
		return 32
	}
}

// addressOfApply computes the address an indexed or sliced Apply node
// denotes, for use as an assignment target.
func (e *Emitter) addressOfApply(node core.NodeID, p ast.Apply) string {
	switch p.Form {
	case ast.ApplyIndex:
		return e.addressOfIndexApply(p)
	case ast.ApplySlice:
		addr, _, _, _ := e.sliceAddressAndBounds(p)
		return addr
	default:
		val, _ := e.emitExpression(node, core.NoType)
		return val
	}
}

// --- Binary and unary operators -------------------------------------------

func (e *Emitter) emitBinaryOp(node core.NodeID, p ast.BinaryOp, llvmTy string) (string, string) {
	n := e.ctx.Tree.Get(node)

	if n.ResolvedSymbol.Valid() {
		sym := e.ctx.Syms.Get(n.ResolvedSymbol)
		if sym.Kind.IsSubprogram() {
			return e.emitCallTo(sym, []core.NodeID{p.Left, p.Right}, llvmTy)
		}
	}

	switch p.Op {
	case "and":
		return e.emitLogical("and", p.Left, p.Right)
	case "or":
		return e.emitLogical("or", p.Left, p.Right)
	case "xor":
		return e.emitLogical("xor", p.Left, p.Right)
	case "=", "/=", "<", "<=", ">", ">=":
		return e.emitComparison(p)
	case "&":
		return e.emitConcatenation(node, p)
	default:
		return e.emitArithmetic(node, p, llvmTy)
	}
}

func (e *Emitter) emitLogical(op string, left, right core.NodeID) (string, string) {
	l, _ := e.emitExpression(left, e.ctx.Std.Boolean)
	r, _ := e.emitExpression(right, e.ctx.Std.Boolean)

	t := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = %s i1 %s, %s", t, op, l, r))

	return t, "i1"
}

func (e *Emitter) emitComparison(p ast.BinaryOp) (string, string) {
	leftNode := e.ctx.Tree.Get(p.Left)
	ty := e.ctx.Types.Get(leftNode.ResolvedType)
	llvmTy := e.ctx.Types.LLVMTypeString(leftNode.ResolvedType)

	l, _ := e.emitExpression(p.Left, leftNode.ResolvedType)
	r, _ := e.emitExpression(p.Right, leftNode.ResolvedType)

	if ty.Kind == types.Array || ty.Kind == types.StringKind {
		return e.emitArrayComparison(p.Op, l, r, leftNode.ResolvedType)
	}

	pred := comparisonPredicate(p.Op, ty.Kind)

	result := e.fn.Temp("i1")

	if ty.Kind.IsReal() {
		e.fn.Emit(fmt.Sprintf("%s = fcmp %s %s %s, %s", result, pred, llvmTy, l, r))
	} else {
		e.fn.Emit(fmt.Sprintf("%s = icmp %s %s %s, %s", result, pred, llvmTy, l, r))
	}

	return result, "i1"
}

func comparisonPredicate(op string, k types.Kind) string {
	real := k.IsReal()

	switch op {
	case "=":
		if real {
			return "oeq"
		}

		return "eq"
	case "/=":
		if real {
			return "one"
		}

		return "ne"
	case "<":
		if real {
			return "olt"
		}

		return "slt"
	case "<=":
		if real {
			return "ole"
		}

		return "sle"
	case ">":
		if real {
			return "ogt"
		}

		return "sgt"
	case ">=":
		if real {
			return "oge"
		}

		return "sge"
	default:
		return "eq"
	}
}

func (e *Emitter) emitArrayComparison(op, l, r string, arrTy core.TypeID) (string, string) {
	t := e.ctx.Types.Get(arrTy)

	var eq string
	if t.IsUnconstrainedArray() {
		eq = e.compareFatPointers(l, r, arrTy)
	} else {
		eq = e.compareConstrainedArrays(l, r, arrTy)
	}

	if op == "/=" {
		neq := e.fn.Temp("i1")
		e.fn.Emit(fmt.Sprintf("%s = xor i1 %s, true", neq, eq))

		return neq, "i1"
	}

	return eq, "i1"
}

// compareConstrainedArrays compares two by-value array aggregates: each is
// spilled to a stack slot and the slots are compared byte for byte, since
// there is no bare "equal" instruction for an arbitrary-width LLVM array.
func (e *Emitter) compareConstrainedArrays(l, r string, arrTy core.TypeID) string {
	llvmTy := e.ctx.Types.LLVMTypeString(arrTy)
	t := e.ctx.Types.Get(arrTy)

	lSlot := e.fn.Temp("ptr")
	e.fn.Emit(fmt.Sprintf("%s = alloca %s", lSlot, llvmTy))
	e.fn.Emit(fmt.Sprintf("store %s %s, ptr %s", llvmTy, l, lSlot))

	rSlot := e.fn.Temp("ptr")
	e.fn.Emit(fmt.Sprintf("%s = alloca %s", rSlot, llvmTy))
	e.fn.Emit(fmt.Sprintf("store %s %s, ptr %s", llvmTy, r, rSlot))

	e.mod.DeclareExternal("i32 @memcmp(ptr, ptr, i64)")

	cmp := e.fn.Temp("i32")
	e.fn.Emit(fmt.Sprintf("%s = call i32 @memcmp(ptr %s, ptr %s, i64 %d)", cmp, lSlot, rSlot, t.SizeBytes))

	eq := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = icmp eq i32 %s, 0", eq, cmp))

	return eq
}

// emitConcatenation builds a new array value holding the left operand's
// elements followed by the right's, in a stack buffer sized to their
// combined length.
func (e *Emitter) emitConcatenation(node core.NodeID, p ast.BinaryOp) (string, string) {
	n := e.ctx.Tree.Get(node)
	arrTy := n.ResolvedType

	body, ok := e.ctx.Types.Get(arrTy).Body.(types.ArrayBody)
	if !ok {
		return "undef", FatPointerType
	}

	idxLLVMTy := e.ctx.Types.LLVMTypeString(body.Indices[0])
	elemSize := e.ctx.Types.Get(body.Element).SizeBytes

	lVal, _ := e.emitExpression(p.Left, arrTy)
	rVal, _ := e.emitExpression(p.Right, arrTy)

	lLow := e.extractBound(lVal, arrTy, 0, 0)
	lHigh := e.extractBound(lVal, arrTy, 0, 1)
	lLen := e.length(e.fn, lLow, lHigh, idxLLVMTy)

	rLow := e.extractBound(rVal, arrTy, 0, 0)
	rHigh := e.extractBound(rVal, arrTy, 0, 1)
	rLen := e.length(e.fn, rLow, rHigh, idxLLVMTy)

	totalLen := e.fn.Temp(idxLLVMTy)
	e.fn.Emit(fmt.Sprintf("%s = add %s %s, %s", totalLen, idxLLVMTy, lLen, rLen))

	lLen64 := e.fn.Temp("i64")
	e.fn.Emit(fmt.Sprintf("%s = sext %s %s to i64", lLen64, idxLLVMTy, lLen))

	rLen64 := e.fn.Temp("i64")
	e.fn.Emit(fmt.Sprintf("%s = sext %s %s to i64", rLen64, idxLLVMTy, rLen))

	lByteLen := e.fn.Temp("i64")
	e.fn.Emit(fmt.Sprintf("%s = mul i64 %s, %d", lByteLen, lLen64, elemSize))

	rByteLen := e.fn.Temp("i64")
	e.fn.Emit(fmt.Sprintf("%s = mul i64 %s, %d", rByteLen, rLen64, elemSize))

	totalBytes := e.fn.Temp("i64")
	e.fn.Emit(fmt.Sprintf("%s = add i64 %s, %s", totalBytes, lByteLen, rByteLen))

	data := e.fn.Temp("ptr")
	e.fn.Emit(fmt.Sprintf("%s = alloca i8, i64 %s", data, totalBytes))

	e.mod.DeclareExternal("void @llvm.memcpy.p0.p0.i64(ptr, ptr, i64, i1)")

	lData := e.extractDataPtr(lVal)
	e.fn.Emit(fmt.Sprintf("call void @llvm.memcpy.p0.p0.i64(ptr %s, ptr %s, i64 %s, i1 false)", data, lData, lByteLen))

	rDest := e.fn.Temp("ptr")
	e.fn.Emit(fmt.Sprintf("%s = getelementptr i8, ptr %s, i64 %s", rDest, data, lByteLen))

	rData := e.extractDataPtr(rVal)
	e.fn.Emit(fmt.Sprintf("call void @llvm.memcpy.p0.p0.i64(ptr %s, ptr %s, i64 %s, i1 false)", rDest, rData, rByteLen))

	fatPtr := e.buildFatPointer(data, arrTy, []boundPair{{low: "1", high: totalLen}})

	return fatPtr, FatPointerType
}

func (e *Emitter) emitUnaryOp(node core.NodeID, p ast.UnaryOp, llvmTy string) (string, string) {
	n := e.ctx.Tree.Get(node)

	if n.ResolvedSymbol.Valid() {
		sym := e.ctx.Syms.Get(n.ResolvedSymbol)
		if sym.Kind.IsSubprogram() {
			return e.emitCallTo(sym, []core.NodeID{p.Operand}, llvmTy)
		}
	}

	if p.Op == "not" {
		v, _ := e.emitExpression(p.Operand, e.ctx.Std.Boolean)

		t := e.fn.Temp("i1")
		e.fn.Emit(fmt.Sprintf("%s = xor i1 %s, true", t, v))

		return t, "i1"
	}

	operandNode := e.ctx.Tree.Get(p.Operand)
	ty := e.ctx.Types.Get(operandNode.ResolvedType)
	v, opLLVMTy := e.emitExpression(p.Operand, operandNode.ResolvedType)

	switch p.Op {
	case "-":
		if ty.Kind.IsReal() {
			t := e.fn.Temp(opLLVMTy)
			e.fn.Emit(fmt.Sprintf("%s = fneg %s %s", t, opLLVMTy, v))

			return t, opLLVMTy
		}

		return e.emitOverflowCheckedBinOp(ty, "sub", opLLVMTy, "0", v), opLLVMTy
	case "+":
		return v, opLLVMTy
	case "abs":
		if ty.Kind.IsReal() {
			isNeg := e.fn.Temp("i1")
			e.fn.Emit(fmt.Sprintf("%s = fcmp olt %s %s, 0.0", isNeg, opLLVMTy, v))

			neg := e.fn.Temp(opLLVMTy)
			e.fn.Emit(fmt.Sprintf("%s = fneg %s %s", neg, opLLVMTy, v))

			res := e.fn.Temp(opLLVMTy)
			e.fn.Emit(fmt.Sprintf("%s = select i1 %s, %s %s, %s %s", res, isNeg, opLLVMTy, neg, opLLVMTy, v))

			return res, opLLVMTy
		}

		isNeg := e.fn.Temp("i1")
		e.fn.Emit(fmt.Sprintf("%s = icmp slt %s %s, 0", isNeg, opLLVMTy, v))

		neg := e.emitOverflowCheckedBinOp(ty, "sub", opLLVMTy, "0", v)

		res := e.fn.Temp(opLLVMTy)
		e.fn.Emit(fmt.Sprintf("%s = select i1 %s, %s %s, %s %s", res, isNeg, opLLVMTy, neg, opLLVMTy, v))

		return res, opLLVMTy
	default:
		return v, opLLVMTy
	}
}

// --- Arithmetic ------------------------------------------------------------

func (e *Emitter) emitArithmetic(node core.NodeID, p ast.BinaryOp, llvmTy string) (string, string) {
	n := e.ctx.Tree.Get(node)
	ty := e.ctx.Types.Get(n.ResolvedType)

	l, _ := e.emitExpression(p.Left, n.ResolvedType)
	r, _ := e.emitExpression(p.Right, n.ResolvedType)

	if ty.Kind.IsReal() {
		return e.emitFloatArithmetic(p.Op, llvmTy, l, r), llvmTy
	}

	switch p.Op {
	case "+":
		return e.emitOverflowCheckedBinOp(ty, "add", llvmTy, l, r), llvmTy
	case "-":
		return e.emitOverflowCheckedBinOp(ty, "sub", llvmTy, l, r), llvmTy
	case "*":
		return e.emitOverflowCheckedBinOp(ty, "mul", llvmTy, l, r), llvmTy
	case "/":
		e.emitDivisionCheck(ty, llvmTy, l, r)

		t := e.fn.Temp(llvmTy)
		e.fn.Emit(fmt.Sprintf("%s = sdiv %s %s, %s", t, llvmTy, l, r))

		return t, llvmTy
	case "rem":
		e.emitDivisionCheck(ty, llvmTy, l, r)

		t := e.fn.Temp(llvmTy)
		e.fn.Emit(fmt.Sprintf("%s = srem %s %s, %s", t, llvmTy, l, r))

		return t, llvmTy
	case "mod":
		return e.emitModOp(ty, llvmTy, l, r), llvmTy
	case "**":
		return e.emitIntegerPower(ty, llvmTy, l, r), llvmTy
	default:
		return l, llvmTy
	}
}

func (e *Emitter) emitFloatArithmetic(op, llvmTy, l, r string) string {
	instr := "fadd"

	switch op {
	case "-":
		instr = "fsub"
	case "*":
		instr = "fmul"
	case "/":
		instr = "fdiv"
	}

	t := e.fn.Temp(llvmTy)
	e.fn.Emit(fmt.Sprintf("%s = %s %s %s, %s", t, instr, llvmTy, l, r))

	return t
}

// emitModOp implements Ada's "mod" (floored division remainder), which
// differs from "rem" (LLVM's srem) whenever the operands' signs disagree
// and the remainder is nonzero: the raw srem result is adjusted by adding
// the divisor back in.
func (e *Emitter) emitModOp(ty *types.Type, llvmTy, l, r string) string {
	e.emitDivisionCheck(ty, llvmTy, l, r)

	rem := e.fn.Temp(llvmTy)
	e.fn.Emit(fmt.Sprintf("%s = srem %s %s, %s", rem, llvmTy, l, r))

	remNeg := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = icmp slt %s %s, 0", remNeg, llvmTy, rem))

	divNeg := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = icmp slt %s %s, 0", divNeg, llvmTy, r))

	differ := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = xor i1 %s, %s", differ, remNeg, divNeg))

	nonZero := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = icmp ne %s %s, 0", nonZero, llvmTy, rem))

	needsAdjust := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = and i1 %s, %s", needsAdjust, differ, nonZero))

	adjusted := e.fn.Temp(llvmTy)
	e.fn.Emit(fmt.Sprintf("%s = add %s %s, %s", adjusted, llvmTy, rem, r))

	result := e.fn.Temp(llvmTy)
	e.fn.Emit(fmt.Sprintf("%s = select i1 %s, %s %s, %s %s", result, needsAdjust, llvmTy, adjusted, llvmTy, rem))

	return result
}

// emitIntegerPower lowers "**" as a runtime counted loop of checked
// multiplications, since the exponent need not be a compile-time constant.
func (e *Emitter) emitIntegerPower(ty *types.Type, llvmTy, base, exp string) string {
	resultSlot := e.fn.Temp("ptr")
	e.fn.Emit(fmt.Sprintf("%s = alloca %s", resultSlot, llvmTy))
	e.fn.Emit(fmt.Sprintf("store %s 1, ptr %s", llvmTy, resultSlot))

	counterSlot := e.fn.Temp("ptr")
	e.fn.Emit(fmt.Sprintf("%s = alloca i32", counterSlot))
	e.fn.Emit(fmt.Sprintf("store i32 0, ptr %s", counterSlot))

	condLabel := e.fn.NewLabel("pow_cond")
	bodyLabel := e.fn.NewLabel("pow_body")
	afterLabel := e.fn.NewLabel("pow_end")

	e.fn.Terminate(fmt.Sprintf("br label %%%s", condLabel))
	e.fn.OpenLabel(condLabel)

	counter := e.fn.Temp("i32")
	e.fn.Emit(fmt.Sprintf("%s = load i32, ptr %s", counter, counterSlot))

	cont := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = icmp slt i32 %s, %s", cont, counter, exp))
	e.fn.Terminate(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", cont, bodyLabel, afterLabel))

	e.fn.OpenLabel(bodyLabel)

	cur := e.fn.Temp(llvmTy)
	e.fn.Emit(fmt.Sprintf("%s = load %s, ptr %s", cur, llvmTy, resultSlot))

	next := e.emitOverflowCheckedBinOp(ty, "mul", llvmTy, cur, base)
	e.fn.Emit(fmt.Sprintf("store %s %s, ptr %s", llvmTy, next, resultSlot))

	nextCounter := e.fn.Temp("i32")
	e.fn.Emit(fmt.Sprintf("%s = add i32 %s, 1", nextCounter, counter))
	e.fn.Emit(fmt.Sprintf("store i32 %s, ptr %s", nextCounter, counterSlot))
	e.fn.Terminate(fmt.Sprintf("br label %%%s", condLabel))

	e.fn.OpenLabel(afterLabel)

	final := e.fn.Temp(llvmTy)
	e.fn.Emit(fmt.Sprintf("%s = load %s, ptr %s", final, llvmTy, resultSlot))

	return final
}

// --- Attributes ------------------------------------------------------------

func (e *Emitter) emitAttributeValue(node core.NodeID, p ast.Attribute, llvmTy string) (string, string) {
	prefixNode := e.ctx.Tree.Get(p.Prefix)
	prefixTy := prefixNode.ResolvedType
	t := e.ctx.Types.Get(prefixTy)

	isArray := t.Kind == types.Array || t.Kind == types.StringKind

	switch p.Name {
	case "First":
		return e.emitBoundAttribute(p.Prefix, prefixTy, t, isArray, 0, llvmTy)
	case "Last":
		return e.emitBoundAttribute(p.Prefix, prefixTy, t, isArray, 1, llvmTy)
	case "Length":
		return e.emitLengthAttribute(p.Prefix, prefixTy, t, isArray)
	case "Pos", "Val":
		val, _ := e.emitExpression(p.Prefix, prefixTy)
		return val, llvmTy
	case "Succ":
		val, opTy := e.emitExpression(p.Prefix, prefixTy)

		t2 := e.fn.Temp(opTy)
		e.fn.Emit(fmt.Sprintf("%s = add %s %s, 1", t2, opTy, val))
		e.emitRangeCheck(t, t2, opTy)

		return t2, opTy
	case "Pred":
		val, opTy := e.emitExpression(p.Prefix, prefixTy)

		t2 := e.fn.Temp(opTy)
		e.fn.Emit(fmt.Sprintf("%s = sub %s %s, 1", t2, opTy, val))
		e.emitRangeCheck(t, t2, opTy)

		return t2, opTy
	case "Size":
		return fmt.Sprintf("%d", t.SizeBytes*8), llvmTy
	default:
		return "undef", llvmTy
	}
}

func (e *Emitter) isTypeMark(node core.NodeID) bool {
	n := e.ctx.Tree.Get(node)
	if !n.ResolvedSymbol.Valid() {
		return false
	}

	sym := e.ctx.Syms.Get(n.ResolvedSymbol)

	return sym.Kind == symtab.TypeSym || sym.Kind == symtab.Subtype
}

func (e *Emitter) emitBoundAttribute(prefixNode core.NodeID, prefixTy core.TypeID, t *types.Type, isArray bool, which int, llvmTy string) (string, string) {
	if isArray {
		body, _ := t.Body.(types.ArrayBody)
		idxLLVMTy := e.ctx.Types.LLVMTypeString(body.Indices[0])

		if t.IsUnconstrainedArray() && !e.isTypeMark(prefixNode) {
			fatPtr, _ := e.emitExpression(prefixNode, prefixTy)
			return e.extractBound(fatPtr, prefixTy, 0, which), idxLLVMTy
		}

		idxTy := e.ctx.Types.Get(body.Indices[0])
		if which == 0 {
			return boundLiteral(idxTy.Low), idxLLVMTy
		}

		return boundLiteral(idxTy.High), idxLLVMTy
	}

	if which == 0 {
		return boundLiteral(t.Low), llvmTy
	}

	return boundLiteral(t.High), llvmTy
}

func (e *Emitter) emitLengthAttribute(prefixNode core.NodeID, prefixTy core.TypeID, t *types.Type, isArray bool) (string, string) {
	intLLVMTy := e.ctx.Types.LLVMTypeString(e.ctx.Std.Integer)

	if !isArray {
		return "1", intLLVMTy
	}

	body, _ := t.Body.(types.ArrayBody)
	idxLLVMTy := e.ctx.Types.LLVMTypeString(body.Indices[0])

	var low, high string

	if t.IsUnconstrainedArray() && !e.isTypeMark(prefixNode) {
		fatPtr, _ := e.emitExpression(prefixNode, prefixTy)
		low = e.extractBound(fatPtr, prefixTy, 0, 0)
		high = e.extractBound(fatPtr, prefixTy, 0, 1)
	} else {
		idxTy := e.ctx.Types.Get(body.Indices[0])
		low = boundLiteral(idxTy.Low)
		high = boundLiteral(idxTy.High)
	}

	length := e.length(e.fn, low, high, idxLLVMTy)

	if idxLLVMTy == intLLVMTy {
		return length, intLLVMTy
	}

	t2 := e.fn.Temp(intLLVMTy)
	e.fn.Emit(fmt.Sprintf("%s = sext %s %s to %s", t2, idxLLVMTy, length, intLLVMTy))

	return t2, intLLVMTy
}

// --- Aggregates --------------------------------------------------------------

func (e *Emitter) emitAggregate(p ast.Aggregate, ty core.TypeID, llvmTy string) (string, string) {
	t := e.ctx.Types.Get(ty)

	if t.IsUnconstrainedArray() {
		return e.emitUnconstrainedArrayAggregate(p, ty)
	}

	slot := e.fn.Temp("ptr")
	e.fn.Emit(fmt.Sprintf("%s = alloca %s", slot, llvmTy))

	switch t.Kind {
	case types.Array, types.StringKind:
		e.emitArrayAggregate(slot, p, t)
	case types.Record:
		e.emitRecordAggregate(slot, p, t)
	}

	val := e.fn.Temp(llvmTy)
	e.fn.Emit(fmt.Sprintf("%s = load %s, ptr %s", val, llvmTy, slot))

	return val, llvmTy
}

// emitUnconstrainedArrayAggregate materializes a positional aggregate used
// where an unconstrained array is expected: the element data goes into a
// stack buffer and the result is a fat pointer with bounds 1..n, the
// applicable positional-aggregate convention.
func (e *Emitter) emitUnconstrainedArrayAggregate(p ast.Aggregate, ty core.TypeID) (string, string) {
	t := e.ctx.Types.Get(ty)

	body, ok := t.Body.(types.ArrayBody)
	if !ok {
		return "undef", FatPointerType
	}

	elemLLVMTy := e.ctx.Types.LLVMTypeString(body.Element)
	elemSize := e.ctx.Types.Get(body.Element).SizeBytes
	n := len(p.Assocs)

	data := e.fn.Temp("ptr")
	e.fn.Emit(fmt.Sprintf("%s = alloca [%d x %s]", data, n, elemLLVMTy))

	for i, assoc := range p.Assocs {
		val, _ := e.emitExpression(assoc.Value, body.Element)

		gep := e.fn.Temp("ptr")
		e.fn.Emit(fmt.Sprintf("%s = getelementptr i8, ptr %s, i32 %d", gep, data, uint32(i)*elemSize))
		e.fn.Emit(fmt.Sprintf("store %s %s, ptr %s", elemLLVMTy, val, gep))
	}

	fat := e.buildFatPointer(data, ty, []boundPair{{low: "1", high: fmt.Sprintf("%d", n)}})

	return fat, FatPointerType
}

func (e *Emitter) emitArrayAggregate(slot string, p ast.Aggregate, t *types.Type) {
	body, ok := t.Body.(types.ArrayBody)
	if !ok {
		return
	}

	elemLLVMTy := e.ctx.Types.LLVMTypeString(body.Element)
	elemSize := e.ctx.Types.Get(body.Element).SizeBytes

	idxTy := e.ctx.Types.Get(body.Indices[0])

	pos := 0

	for _, assoc := range p.Assocs {
		idx := pos
		pos++

		if len(assoc.Choices) > 0 {
			if v, ok := e.ctx.FoldInteger(assoc.Choices[0]); ok && !idxTy.Low.IsUnset() && !idxTy.Low.IsDeferred() {
				rel := new(big.Int).Sub(v, idxTy.Low.Exact())
				idx = int(rel.Int64())
				pos = idx + 1
			}
		}

		val, _ := e.emitExpression(assoc.Value, body.Element)

		offset := uint32(idx) * elemSize
		gep := e.fn.Temp("ptr")
		e.fn.Emit(fmt.Sprintf("%s = getelementptr i8, ptr %s, i32 %d", gep, slot, offset))
		e.fn.Emit(fmt.Sprintf("store %s %s, ptr %s", elemLLVMTy, val, gep))
	}
}

func (e *Emitter) emitRecordAggregate(slot string, p ast.Aggregate, t *types.Type) {
	body, ok := t.Body.(types.RecordBody)
	if !ok {
		return
	}

	var fields []types.Component
	fields = append(fields, body.Discriminants...)
	fields = append(fields, body.Components...)

	pos := 0

	for _, assoc := range p.Assocs {
		var comp *types.Component

		if len(assoc.Choices) > 0 {
			if id, ok := e.ctx.Tree.Get(assoc.Choices[0]).Payload.(ast.Identifier); ok {
				for i := range fields {
					if fields[i].Name == id.Name {
						comp = &fields[i]
						break
					}
				}
			}
		} else if pos < len(fields) {
			comp = &fields[pos]
			pos++
		}

		if comp == nil {
			continue
		}

		val, _ := e.emitExpression(assoc.Value, comp.Type)
		compLLVMTy := e.ctx.Types.LLVMTypeString(comp.Type)

		gep := e.fn.Temp("ptr")
		e.fn.Emit(fmt.Sprintf("%s = getelementptr i8, ptr %s, i32 %d", gep, slot, comp.Offset))
		e.fn.Emit(fmt.Sprintf("store %s %s, ptr %s", compLLVMTy, val, gep))
	}
}

// formatFloat renders a float64 literal value in LLVM's hexadecimal
// floating-point constant syntax, the one textual form guaranteed to
// round-trip the exact bit pattern regardless of the target type's width.
func formatFloat(v float64) string {
	return fmt.Sprintf("0x%016X", math.Float64bits(v))
}
