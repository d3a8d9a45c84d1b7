package codegen

import (
	"fmt"
	"strings"

	"github.com/adalore/adac/pkg/ada/core"
	"github.com/adalore/adac/pkg/ada/types"
)

// FatPointerType is the LLVM type of every unconstrained array value
// crossing a subprogram boundary: a data pointer and a pointer to a bounds
// structure.
const FatPointerType = "{ ptr, ptr }"

// boundsStructType computes the LLVM type of the bounds structure an
// unconstrained array of arrTy carries: one (low, high) pair per dimension,
// each pair typed to that dimension's index type (a pair of i32 for
// String's Positive index, a pair of the index type's own width in
// general).
func (e *Emitter) boundsStructType(arrTy core.TypeID) string {
	t := e.ctx.Types.Get(arrTy)

	body, ok := t.Body.(types.ArrayBody)
	if !ok {
		return "{ i32, i32 }"
	}

	parts := make([]string, 0, len(body.Indices)*2)

	for _, idx := range body.Indices {
		w := e.ctx.Types.LLVMTypeString(idx)
		parts = append(parts, w, w)
	}

	return "{ " + strings.Join(parts, ", ") + " }"
}

// extractDataPtr pulls the data pointer out of a fat-pointer value.
func (e *Emitter) extractDataPtr(fatPtr string) string {
	t := e.fn.Temp("ptr")
	e.fn.Emit(fmt.Sprintf("%s = extractvalue %s %s, 0", t, FatPointerType, fatPtr))

	return t
}

// extractBoundsPtr pulls the bounds-structure pointer out of a fat-pointer
// value.
func (e *Emitter) extractBoundsPtr(fatPtr string) string {
	t := e.fn.Temp("ptr")
	e.fn.Emit(fmt.Sprintf("%s = extractvalue %s %s, 1", t, FatPointerType, fatPtr))

	return t
}

// extractBound loads the low or high bound of dimension dim out of a fat
// pointer's bounds structure. which is 0 for low, 1 for high; each
// dimension occupies two consecutive fields.
func (e *Emitter) extractBound(fatPtr string, arrTy core.TypeID, dim, which int) string {
	boundsTy := e.boundsStructType(arrTy)
	boundsPtr := e.extractBoundsPtr(fatPtr)

	idxTys := e.ctx.Types.Get(arrTy).Body.(types.ArrayBody).Indices
	fieldTy := e.ctx.Types.LLVMTypeString(idxTys[dim])

	field := dim*2 + which

	gep := e.fn.Temp("ptr")
	e.fn.Emit(fmt.Sprintf("%s = getelementptr %s, ptr %s, i32 0, i32 %d", gep, boundsTy, boundsPtr, field))

	val := e.fn.Temp(fieldTy)
	e.fn.Emit(fmt.Sprintf("%s = load %s, ptr %s", val, fieldTy, gep))

	return val
}

// length computes high - low + 1 in the index type's own width, clamped to
// zero by the runtime check inserted around every index/slice use — the
// expression itself does not clamp, matching Ada's "length of a null range
// is zero" rule only once a range check has already rejected an invalid
// bound pair upstream.
func (e *Emitter) length(fn *Function, low, high, idxLLVMTy string) string {
	diff := fn.Temp(idxLLVMTy)
	fn.Emit(fmt.Sprintf("%s = sub %s %s, %s", diff, idxLLVMTy, high, low))

	n := fn.Temp(idxLLVMTy)
	fn.Emit(fmt.Sprintf("%s = add %s %s, 1", n, idxLLVMTy, diff))

	return n
}

// buildFatPointer assembles a fat pointer for a locally constructed array
// value: the bounds structure is allocated on the stack alongside the data
// and both pointers are packed into the two-word ABI value.
func (e *Emitter) buildFatPointer(dataPtr string, arrTy core.TypeID, bounds []boundPair) string {
	boundsTy := e.boundsStructType(arrTy)

	slot := e.fn.Temp("ptr")
	e.fn.Emit(fmt.Sprintf("%s = alloca %s", slot, boundsTy))

	idxTys := e.ctx.Types.Get(arrTy).Body.(types.ArrayBody).Indices

	for dim, pair := range bounds {
		fieldTy := e.ctx.Types.LLVMTypeString(idxTys[dim])

		for which, v := range []string{pair.low, pair.high} {
			field := dim*2 + which
			gep := e.fn.Temp("ptr")
			e.fn.Emit(fmt.Sprintf("%s = getelementptr %s, ptr %s, i32 0, i32 %d", gep, boundsTy, slot, field))
			e.fn.Emit(fmt.Sprintf("store %s %s, ptr %s", fieldTy, v, gep))
		}
	}

	fp := e.fn.Temp(FatPointerType)
	e.fn.Emit(fmt.Sprintf("%s = insertvalue %s undef, ptr %s, 0", fp, FatPointerType, dataPtr))
	fp2 := e.fn.Temp(FatPointerType)
	e.fn.Emit(fmt.Sprintf("%s = insertvalue %s %s, ptr %s, 1", fp2, FatPointerType, fp, slot))

	return fp2
}

// boundPair is one dimension's (low, high) operand pair for buildFatPointer.
type boundPair struct {
	low, high string
}

// fatPointerFor produces the fat-pointer value carrying argNode's array
// value across an unconstrained-array parameter boundary: an already-
// unconstrained actual (including an aggregate the resolver typed against
// the formal) passes its own fat pointer through; a constrained actual
// pairs its data address with a literal bounds structure built from its
// frozen index bounds — the constrained-to-fat conversion helper.
func (e *Emitter) fatPointerFor(argNode core.NodeID, formalTy core.TypeID) string {
	n := e.ctx.Tree.Get(argNode)

	actualTy := n.ResolvedType
	if !actualTy.Valid() {
		actualTy = formalTy
	}

	at := e.ctx.Types.Get(actualTy)
	if at.IsUnconstrainedArray() {
		val, _ := e.emitExpression(argNode, formalTy)
		return val
	}

	addr := e.emitAddressOf(argNode)

	body, ok := at.Body.(types.ArrayBody)
	if !ok {
		return addr
	}

	bounds := make([]boundPair, 0, len(body.Indices))

	for _, idx := range body.Indices {
		it := e.ctx.Types.Get(idx)
		bounds = append(bounds, boundPair{low: boundLiteral(it.Low), high: boundLiteral(it.High)})
	}

	return e.buildFatPointer(addr, formalTy, bounds)
}

// compareFatPointers implements the two fat pointers' equality test: first
// lengths (cheap, catches almost every mismatch), then a bytewise data
// comparison only when the lengths agree.
func (e *Emitter) compareFatPointers(a, b string, arrTy core.TypeID) string {
	aLow := e.extractBound(a, arrTy, 0, 0)
	aHigh := e.extractBound(a, arrTy, 0, 1)
	bLow := e.extractBound(b, arrTy, 0, 0)
	bHigh := e.extractBound(b, arrTy, 0, 1)

	idxTy := e.ctx.Types.LLVMTypeString(e.ctx.Types.Get(arrTy).Body.(types.ArrayBody).Indices[0])

	aLen := e.length(e.fn, aLow, aHigh, idxTy)
	bLen := e.length(e.fn, bLow, bHigh, idxTy)

	lenEq := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = icmp eq %s %s, %s", lenEq, idxTy, aLen, bLen))

	aData := e.extractDataPtr(a)
	bData := e.extractDataPtr(b)

	elemSize := e.ctx.Types.Get(e.ctx.Types.Get(arrTy).Body.(types.ArrayBody).Element).SizeBytes

	nBytes := e.fn.Temp("i64")
	e.fn.Emit(fmt.Sprintf("%s = zext %s %s to i64", nBytes, idxTy, aLen))
	nBytesScaled := e.fn.Temp("i64")
	e.fn.Emit(fmt.Sprintf("%s = mul i64 %s, %d", nBytesScaled, nBytes, elemSize))

	cmp := e.fn.Temp("i32")
	e.fn.Emit(fmt.Sprintf("%s = call i32 @memcmp(ptr %s, ptr %s, i64 %s)", cmp, aData, bData, nBytesScaled))

	dataEq := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = icmp eq i32 %s, 0", dataEq, cmp))

	result := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = and i1 %s, %s", result, lenEq, dataEq))

	e.mod.DeclareExternal("i32 @memcmp(ptr, ptr, i64)")

	return result
}
