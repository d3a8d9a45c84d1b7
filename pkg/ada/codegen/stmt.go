package codegen

import (
	"fmt"

	"github.com/adalore/adac/pkg/ada/ast"
	"github.com/adalore/adac/pkg/ada/core"
	"github.com/adalore/adac/pkg/ada/types"
)

// emitStatement emits one statement and, recursively, any nested statements
// and blocks it contains. Emitting into an already-terminated block (e.g.
// dead code following a return) is skipped outright, matching the
// resolver's "continue past an error" stance with the analogous "continue
// past unreachable code" one for code generation.
func (e *Emitter) emitStatement(node core.NodeID) {
	if e.fn.IsTerminated() {
		return
	}

	n := e.ctx.Tree.Get(node)

	switch p := n.Payload.(type) {
	case ast.Assignment:
		e.emitAssignment(p)
	case ast.IfStatement:
		e.emitIfStatement(p)
	case ast.LoopStatement:
		e.emitLoopStatement(node, p)
	case ast.CaseStatement:
		e.emitCaseStatement(p)
	case ast.BlockStatement:
		e.emitBlockStatement(p)
	case ast.CallStatement:
		e.emitExpression(p.Call, core.NoType)
	case ast.ReturnStatement:
		e.emitReturnStatement(p)
	case ast.ExitStatement:
		e.emitExitStatement(p)
	case ast.RaiseStatement:
		e.emitRaiseStatement(p)
	default:
		// A null statement emits nothing.
	}
}

func (e *Emitter) emitAssignment(p ast.Assignment) {
	targetNode := e.ctx.Tree.Get(p.Target)
	ty := e.ctx.Types.Get(targetNode.ResolvedType)

	if ty.IsUnconstrainedArray() {
		e.emitSliceAssignment(p, targetNode.ResolvedType)
		return
	}

	llvmTy := e.ctx.Types.LLVMTypeString(targetNode.ResolvedType)

	val, _ := e.emitExpression(p.Value, targetNode.ResolvedType)
	e.emitRangeCheck(ty, val, llvmTy)

	addr := e.emitAddressOf(p.Target)
	e.fn.Emit(fmt.Sprintf("store %s %s, ptr %s", llvmTy, val, addr))
}

// emitSliceAssignment copies one array-valued fat pointer into a slice (or
// other unconstrained-array lvalue): a length check first, then a bytewise
// copy of the data.
func (e *Emitter) emitSliceAssignment(p ast.Assignment, arrTy core.TypeID) {
	t := e.ctx.Types.Get(arrTy)

	body, ok := t.Body.(types.ArrayBody)
	if !ok {
		return
	}

	idxLLVMTy := e.ctx.Types.LLVMTypeString(body.Indices[0])
	elemSize := e.ctx.Types.Get(body.Element).SizeBytes

	var destAddr, destLen string

	if targetApply, ok := e.ctx.Tree.Get(p.Target).Payload.(ast.Apply); ok && targetApply.Form == ast.ApplySlice {
		addr, _, low, high := e.sliceAddressAndBounds(targetApply)
		destAddr = addr
		destLen = e.length(e.fn, low, high, idxLLVMTy)
	} else {
		destFat, _ := e.emitExpression(p.Target, arrTy)
		destAddr = e.extractDataPtr(destFat)
		destLow := e.extractBound(destFat, arrTy, 0, 0)
		destHigh := e.extractBound(destFat, arrTy, 0, 1)
		destLen = e.length(e.fn, destLow, destHigh, idxLLVMTy)
	}

	srcFat, _ := e.emitExpression(p.Value, arrTy)
	srcLow := e.extractBound(srcFat, arrTy, 0, 0)
	srcHigh := e.extractBound(srcFat, arrTy, 0, 1)
	srcLen := e.length(e.fn, srcLow, srcHigh, idxLLVMTy)

	e.emitLengthCheck(t, destLen, srcLen, idxLLVMTy)

	len64 := e.fn.Temp("i64")
	e.fn.Emit(fmt.Sprintf("%s = sext %s %s to i64", len64, idxLLVMTy, srcLen))

	byteLen := e.fn.Temp("i64")
	e.fn.Emit(fmt.Sprintf("%s = mul i64 %s, %d", byteLen, len64, elemSize))

	srcData := e.extractDataPtr(srcFat)

	e.mod.DeclareExternal("void @llvm.memcpy.p0.p0.i64(ptr, ptr, i64, i1)")
	e.fn.Emit(fmt.Sprintf("call void @llvm.memcpy.p0.p0.i64(ptr %s, ptr %s, i64 %s, i1 false)", destAddr, srcData, byteLen))
}

func (e *Emitter) emitIfStatement(p ast.IfStatement) {
	afterLabel := e.fn.NewLabel("if_end")

	for i, arm := range p.Arms {
		cond, _ := e.emitExpression(arm.Cond, e.ctx.Std.Boolean)

		thenLabel := e.fn.NewLabel("if_then")
		elseLabel := e.fn.NewLabel("if_else")

		e.fn.Terminate(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", cond, thenLabel, elseLabel))

		e.fn.OpenLabel(thenLabel)
		for _, s := range arm.Body {
			e.emitStatement(s)
		}

		if !e.fn.IsTerminated() {
			e.fn.Terminate(fmt.Sprintf("br label %%%s", afterLabel))
		}

		e.fn.OpenLabel(elseLabel)

		if i == len(p.Arms)-1 {
			for _, s := range p.Else {
				e.emitStatement(s)
			}

			if !e.fn.IsTerminated() {
				e.fn.Terminate(fmt.Sprintf("br label %%%s", afterLabel))
			}
		}
	}

	e.fn.OpenLabel(afterLabel)
}

func (e *Emitter) emitLoopStatement(node core.NodeID, p ast.LoopStatement) {
	switch {
	case p.IsForIn:
		e.emitForInLoop(node, p)
	case p.IsWhile:
		e.emitWhileLoop(p)
	default:
		e.emitBareLoop(p)
	}
}

func (e *Emitter) emitBareLoop(p ast.LoopStatement) {
	bodyLabel := e.fn.NewLabel("loop_body")
	afterLabel := e.fn.NewLabel("loop_end")

	e.fn.Terminate(fmt.Sprintf("br label %%%s", bodyLabel))
	e.fn.OpenLabel(bodyLabel)

	e.withLoopLabels(p.Label, bodyLabel, afterLabel, func() {
		for _, s := range p.Body {
			e.emitStatement(s)
		}
	})

	if !e.fn.IsTerminated() {
		e.fn.Terminate(fmt.Sprintf("br label %%%s", bodyLabel))
	}

	e.fn.OpenLabel(afterLabel)
}

func (e *Emitter) emitWhileLoop(p ast.LoopStatement) {
	condLabel := e.fn.NewLabel("loop_cond")
	bodyLabel := e.fn.NewLabel("loop_body")
	afterLabel := e.fn.NewLabel("loop_end")

	e.fn.Terminate(fmt.Sprintf("br label %%%s", condLabel))
	e.fn.OpenLabel(condLabel)

	cond, _ := e.emitExpression(p.Scheme, e.ctx.Std.Boolean)
	e.fn.Terminate(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", cond, bodyLabel, afterLabel))

	e.fn.OpenLabel(bodyLabel)
	e.withLoopLabels(p.Label, condLabel, afterLabel, func() {
		for _, s := range p.Body {
			e.emitStatement(s)
		}
	})

	if !e.fn.IsTerminated() {
		e.fn.Terminate(fmt.Sprintf("br label %%%s", condLabel))
	}

	e.fn.OpenLabel(afterLabel)
}

// emitForInLoop lowers "for I in Low .. High loop". The loop parameter's
// symbol was recorded in DeclSymbols by the resolver, since its own scope is
// popped again before codegen ever sees the tree.
func (e *Emitter) emitForInLoop(node core.NodeID, p ast.LoopStatement) {
	rng := e.ctx.Tree.Get(p.Scheme).Payload.(ast.RangeExpr)

	idxTy := e.ctx.Tree.Get(p.Scheme).ResolvedType
	if !idxTy.Valid() {
		idxTy = e.ctx.Std.Integer
	}

	llvmTy := e.ctx.Types.LLVMTypeString(idxTy)

	low, _ := e.emitExpression(rng.Low, idxTy)
	high, _ := e.emitExpression(rng.High, idxTy)

	slot := e.fn.Temp("ptr")
	e.fn.Emit(fmt.Sprintf("%s = alloca %s", slot, llvmTy))
	e.fn.Emit(fmt.Sprintf("store %s %s, ptr %s", llvmTy, low, slot))

	condLabel := e.fn.NewLabel("for_cond")
	bodyLabel := e.fn.NewLabel("for_body")
	stepLabel := e.fn.NewLabel("for_step")
	afterLabel := e.fn.NewLabel("for_end")

	e.fn.Terminate(fmt.Sprintf("br label %%%s", condLabel))
	e.fn.OpenLabel(condLabel)

	cur := e.fn.Temp(llvmTy)
	e.fn.Emit(fmt.Sprintf("%s = load %s, ptr %s", cur, llvmTy, slot))

	inRange := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = icmp sle %s %s, %s", inRange, llvmTy, cur, high))
	e.fn.Terminate(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", inRange, bodyLabel, afterLabel))

	e.fn.OpenLabel(bodyLabel)

	paramSym := e.introduceLoopParam(node, slot)

	e.withLoopLabels(p.Label, stepLabel, afterLabel, func() {
		for _, s := range p.Body {
			e.emitStatement(s)
		}
	})

	if paramSym.Valid() {
		delete(e.locals, paramSym)
	}

	if !e.fn.IsTerminated() {
		e.fn.Terminate(fmt.Sprintf("br label %%%s", stepLabel))
	}

	e.fn.OpenLabel(stepLabel)

	loaded := e.fn.Temp(llvmTy)
	e.fn.Emit(fmt.Sprintf("%s = load %s, ptr %s", loaded, llvmTy, slot))
	next := e.fn.Temp(llvmTy)
	e.fn.Emit(fmt.Sprintf("%s = add %s %s, 1", next, llvmTy, loaded))
	e.fn.Emit(fmt.Sprintf("store %s %s, ptr %s", llvmTy, next, slot))
	e.fn.Terminate(fmt.Sprintf("br label %%%s", condLabel))

	e.fn.OpenLabel(afterLabel)
}

// introduceLoopParam binds the for-loop parameter's symbol, recorded by the
// resolver in DeclSymbols, to the loop counter's stack slot, so that body
// statements referencing it by identifier resolve to the counter.
func (e *Emitter) introduceLoopParam(node core.NodeID, slot string) core.SymbolID {
	ids := e.ctx.DeclSymbols[node]
	if len(ids) == 0 {
		return core.NoSymbol
	}

	e.locals[ids[0]] = slot

	return ids[0]
}

type loopLabels struct {
	label      string
	continueTo string
	breakTo    string
}

func (e *Emitter) withLoopLabels(label, continueTo, breakTo string, body func()) {
	e.loopStack = append(e.loopStack, loopLabels{label: label, continueTo: continueTo, breakTo: breakTo})
	body()
	e.loopStack = e.loopStack[:len(e.loopStack)-1]
}

func (e *Emitter) emitCaseStatement(p ast.CaseStatement) {
	selTy := e.ctx.Tree.Get(p.Selector).ResolvedType
	llvmTy := e.ctx.Types.LLVMTypeString(selTy)

	sel, _ := e.emitExpression(p.Selector, selTy)

	afterLabel := e.fn.NewLabel("case_end")

	var othersArm *ast.CaseArm

	for i := range p.Arms {
		if p.Arms[i].Others {
			othersArm = &p.Arms[i]
			continue
		}

		arm := p.Arms[i]
		matchLabel := e.fn.NewLabel("case_match")
		nextLabel := e.fn.NewLabel("case_next")

		cond := ""

		for j, v := range arm.Values {
			val, _ := e.emitExpression(v, selTy)
			eq := e.fn.Temp("i1")
			e.fn.Emit(fmt.Sprintf("%s = icmp eq %s %s, %s", eq, llvmTy, sel, val))

			if j == 0 {
				cond = eq
			} else {
				combined := e.fn.Temp("i1")
				e.fn.Emit(fmt.Sprintf("%s = or i1 %s, %s", combined, cond, eq))
				cond = combined
			}
		}

		e.fn.Terminate(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", cond, matchLabel, nextLabel))

		e.fn.OpenLabel(matchLabel)
		for _, s := range arm.Body {
			e.emitStatement(s)
		}

		if !e.fn.IsTerminated() {
			e.fn.Terminate(fmt.Sprintf("br label %%%s", afterLabel))
		}

		e.fn.OpenLabel(nextLabel)
	}

	if othersArm != nil {
		for _, s := range othersArm.Body {
			e.emitStatement(s)
		}
	}

	if !e.fn.IsTerminated() {
		e.fn.Terminate(fmt.Sprintf("br label %%%s", afterLabel))
	}

	e.fn.OpenLabel(afterLabel)
}

func (e *Emitter) emitBlockStatement(p ast.BlockStatement) {
	savedLocals := make(map[core.SymbolID]string, len(e.locals))
	for k, v := range e.locals {
		savedLocals[k] = v
	}

	e.emitDeclarationsInBody(p.Declarations)

	if len(p.Handlers) > 0 {
		hf := e.enterProtectedRegion()

		for _, s := range p.Body {
			e.emitStatement(s)
		}

		e.emitHandlers(hf, p.Handlers, func(body []core.NodeID) {
			for _, s := range body {
				e.emitStatement(s)
			}
		})
	} else {
		for _, s := range p.Body {
			e.emitStatement(s)
		}
	}

	e.locals = savedLocals
}

func (e *Emitter) emitReturnStatement(p ast.ReturnStatement) {
	if !p.Value.Valid() {
		e.fn.Terminate("ret void")
		return
	}

	resultNode := e.ctx.Tree.Get(p.Value)
	llvmTy := e.ctx.Types.LLVMTypeString(resultNode.ResolvedType)

	val, _ := e.emitExpression(p.Value, resultNode.ResolvedType)

	if e.bipDest != "" {
		// Build-in-place: the result is constructed at the caller-chosen
		// destination; the declared value never travels through a ret.
		e.fn.Emit(fmt.Sprintf("store %s %s, ptr %s", llvmTy, val, e.bipDest))
		e.emitBIPReturn(e.bipDest)

		return
	}

	e.fn.Terminate(fmt.Sprintf("ret %s %s", llvmTy, val))
}

func (e *Emitter) emitExitStatement(p ast.ExitStatement) {
	target := e.findLoop(p.Label)
	if target == nil {
		e.fn.Terminate("unreachable")
		return
	}

	if !p.Condition.Valid() {
		e.fn.Terminate(fmt.Sprintf("br label %%%s", target.breakTo))
		return
	}

	cond, _ := e.emitExpression(p.Condition, e.ctx.Std.Boolean)

	takeLabel := e.fn.NewLabel("exit_take")
	skipLabel := e.fn.NewLabel("exit_skip")

	e.fn.Terminate(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", cond, takeLabel, skipLabel))

	e.fn.OpenLabel(takeLabel)
	e.fn.Terminate(fmt.Sprintf("br label %%%s", target.breakTo))

	e.fn.OpenLabel(skipLabel)
}

func (e *Emitter) findLoop(label string) *loopLabels {
	for i := len(e.loopStack) - 1; i >= 0; i-- {
		if label == "" || e.loopStack[i].label == label {
			return &e.loopStack[i]
		}
	}

	return nil
}

func (e *Emitter) emitRaiseStatement(p ast.RaiseStatement) {
	if !p.Exception.Valid() {
		e.emitReraise()
		return
	}

	excNode := e.ctx.Tree.Get(p.Exception)
	e.emitRaiseNamed(excNode.ResolvedSymbol)
}
