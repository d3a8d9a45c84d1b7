package codegen

import (
	"fmt"

	"github.com/adalore/adac/pkg/ada/types"
)

// ExceptionID is the globally-unique integer identifying a predefined or
// user-declared exception, stored in the thread-local slot a raise writes
// to and a handler dispatches on.
type ExceptionID int32

// Predefined exception identifiers. User-declared exceptions are assigned
// sequential ids above these by the emitter as it encounters their
// declarations.
const (
	ConstraintError ExceptionID = iota + 1
	ProgramError
	StorageError
	TaskingError
	NumericError
)

// emitRangeCheck emits, unless suppressed on ty, a check that val (of
// LLVM type llvmTy) falls within ty's frozen bounds, branching to a
// constraint-error raise on failure.
func (e *Emitter) emitRangeCheck(ty *types.Type, val, llvmTy string) {
	if ty.Suppressed.IsSuppressed(types.RangeCheck) || ty.Low.IsUnset() {
		return
	}

	lowLit := boundLiteral(ty.Low)
	highLit := boundLiteral(ty.High)

	tooLow := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = icmp slt %s %s, %s", tooLow, llvmTy, val, lowLit))
	tooHigh := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = icmp sgt %s %s, %s", tooHigh, llvmTy, val, highLit))

	bad := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = or i1 %s, %s", bad, tooLow, tooHigh))

	failLabel := e.fn.NewLabel("range_fail")
	okLabel := e.fn.NewLabel("range_ok")

	e.fn.Terminate(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", bad, failLabel, okLabel))

	e.fn.OpenLabel(failLabel)
	e.emitRaise(ConstraintError)

	e.fn.OpenLabel(okLabel)
}

// emitIndexCheck is emitRangeCheck specialized to an array dimension: the
// bounds come from the fat pointer (or, for a constrained array, the
// frozen index type) rather than from ty directly, but the comparison
// shape is identical.
func (e *Emitter) emitIndexCheck(ty *types.Type, idxVal, low, high, llvmTy string) {
	if ty.Suppressed.IsSuppressed(types.IndexCheck) {
		return
	}

	tooLow := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = icmp slt %s %s, %s", tooLow, llvmTy, idxVal, low))
	tooHigh := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = icmp sgt %s %s, %s", tooHigh, llvmTy, idxVal, high))

	bad := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = or i1 %s, %s", bad, tooLow, tooHigh))

	failLabel := e.fn.NewLabel("index_fail")
	okLabel := e.fn.NewLabel("index_ok")
	e.fn.Terminate(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", bad, failLabel, okLabel))

	e.fn.OpenLabel(failLabel)
	e.emitRaise(ConstraintError)

	e.fn.OpenLabel(okLabel)
}

// emitLengthCheck compares two array lengths (assigning between constrained
// arrays) and raises Constraint_Error on mismatch.
func (e *Emitter) emitLengthCheck(ty *types.Type, lenA, lenB, llvmTy string) {
	if ty.Suppressed.IsSuppressed(types.LengthCheck) {
		return
	}

	mismatch := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = icmp ne %s %s, %s", mismatch, llvmTy, lenA, lenB))

	failLabel := e.fn.NewLabel("length_fail")
	okLabel := e.fn.NewLabel("length_ok")
	e.fn.Terminate(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", mismatch, failLabel, okLabel))

	e.fn.OpenLabel(failLabel)
	e.emitRaise(ConstraintError)

	e.fn.OpenLabel(okLabel)
}

// emitOverflowCheckedBinOp emits LLVM's checked-arithmetic intrinsics
// and branch to a raise on the overflow bit, unless overflow checking is
// suppressed on ty.
func (e *Emitter) emitOverflowCheckedBinOp(ty *types.Type, op, llvmTy, lhs, rhs string) string {
	result := e.fn.Temp(llvmTy)

	if ty.Suppressed.IsSuppressed(types.OverflowCheck) {
		e.fn.Emit(fmt.Sprintf("%s = %s %s %s, %s", result, op, llvmTy, lhs, rhs))
		return result
	}

	intrinsic := overflowIntrinsic(op, llvmTy)
	structTy := fmt.Sprintf("{ %s, i1 }", llvmTy)

	packed := e.fn.Temp(structTy)
	e.fn.Emit(fmt.Sprintf("%s = call %s %s(%s %s, %s %s)", packed, structTy, intrinsic, llvmTy, lhs, llvmTy, rhs))

	value := e.fn.Temp(llvmTy)
	e.fn.Emit(fmt.Sprintf("%s = extractvalue %s %s, 0", value, structTy, packed))
	overflowed := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = extractvalue %s %s, 1", overflowed, structTy, packed))

	failLabel := e.fn.NewLabel("overflow_fail")
	okLabel := e.fn.NewLabel("overflow_ok")
	e.fn.Terminate(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", overflowed, failLabel, okLabel))

	e.fn.OpenLabel(failLabel)
	e.emitRaise(ConstraintError)

	e.fn.OpenLabel(okLabel)

	return value
}

func overflowIntrinsic(op, llvmTy string) string {
	name := map[string]string{"add": "sadd", "sub": "ssub", "mul": "smul"}[op]
	return fmt.Sprintf("@llvm.%s.with.overflow.%s", name, llvmTy)
}

// emitDivisionCheck guards a signed division/rem: divisor against zero, and
// (since overflow in two's complement division only happens at
// minint / -1) dividend against the signed minimum when the divisor is -1.
func (e *Emitter) emitDivisionCheck(ty *types.Type, llvmTy, dividend, divisor string) {
	if ty.Suppressed.IsSuppressed(types.DivisionCheck) {
		return
	}

	isZero := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = icmp eq %s %s, 0", isZero, llvmTy, divisor))

	isNegOne := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = icmp eq %s %s, -1", isNegOne, llvmTy, divisor))

	isMin := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = icmp eq %s %s, %s", isMin, llvmTy, dividend, signedMinLiteral(llvmTy)))

	overflows := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = and i1 %s, %s", overflows, isNegOne, isMin))

	bad := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = or i1 %s, %s", bad, isZero, overflows))

	failLabel := e.fn.NewLabel("div_fail")
	okLabel := e.fn.NewLabel("div_ok")
	e.fn.Terminate(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", bad, failLabel, okLabel))

	e.fn.OpenLabel(failLabel)
	e.emitRaise(ConstraintError)

	e.fn.OpenLabel(okLabel)
}

// signedMinLiteral is the smallest two's complement value of an LLVM
// integer type, the one dividend whose division by -1 overflows.
func signedMinLiteral(llvmTy string) string {
	switch llvmTy {
	case "i8":
		return "-128"
	case "i16":
		return "-32768"
	case "i32":
		return "-2147483648"
	case "i64":
		return "-9223372036854775808"
	case "i128":
		return "-170141183460469231731687303715884105728"
	default:
		return "-2147483648"
	}
}

// emitAccessCheck raises Constraint_Error if ptr is null, before a
// dereference.
func (e *Emitter) emitAccessCheck(ty *types.Type, ptr string) {
	if ty.Suppressed.IsSuppressed(types.AccessCheck) {
		return
	}

	isNull := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = icmp eq ptr %s, null", isNull, ptr))

	failLabel := e.fn.NewLabel("access_fail")
	okLabel := e.fn.NewLabel("access_ok")
	e.fn.Terminate(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", isNull, failLabel, okLabel))

	e.fn.OpenLabel(failLabel)
	e.emitRaise(ConstraintError)

	e.fn.OpenLabel(okLabel)
}

// emitDiscriminantCheck verifies, before a variant-component access or a
// whole-record assignment, that the live discriminant value(s) select the
// expected variant.
func (e *Emitter) emitDiscriminantCheck(ty *types.Type, discVal string, discTy string, expected string) {
	if ty.Suppressed.IsSuppressed(types.DiscriminantCheck) {
		return
	}

	mismatch := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = icmp ne %s %s, %s", mismatch, discTy, discVal, expected))

	failLabel := e.fn.NewLabel("discr_fail")
	okLabel := e.fn.NewLabel("discr_ok")
	e.fn.Terminate(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", mismatch, failLabel, okLabel))

	e.fn.OpenLabel(failLabel)
	e.emitRaise(ConstraintError)

	e.fn.OpenLabel(okLabel)
}

// emitElaborationCheck verifies, before a call into another unit, that the
// callee unit's elaboration flag has been set.
func (e *Emitter) emitElaborationCheck(ty *types.Type, unitFlagGlobal string) {
	if ty != nil && ty.Suppressed.IsSuppressed(types.ElaborationCheck) {
		return
	}

	flag := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = load i1, ptr @%s", flag, unitFlagGlobal))

	failLabel := e.fn.NewLabel("elab_fail")
	okLabel := e.fn.NewLabel("elab_ok")
	e.fn.Terminate(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", flag, okLabel, failLabel))

	e.fn.OpenLabel(failLabel)
	e.emitRaise(ProgramError)

	e.fn.OpenLabel(okLabel)
}

// boundLiteral renders a frozen scalar bound as an LLVM integer literal.
func boundLiteral(b types.Bound) string {
	if b.IsUnset() || b.IsDeferred() {
		return "0"
	}

	return b.String()
}
