package codegen

import (
	"fmt"

	"github.com/adalore/adac/pkg/ada/ast"
	"github.com/adalore/adac/pkg/ada/core"
)

// jmpBufType is the sjlj jump-buffer representation this emitter targets:
// the same five-word layout LLVM's own (now-legacy) SJLJ exception lowering
// uses, addressed through the llvm.eh.sjlj.* intrinsics rather than a
// target-specific setjmp/longjmp pair.
const jmpBufType = "[5 x ptr]"

// handlerFrame tracks the state needed to finish a protected region once its
// body has been emitted: the jump buffer alloca'd at entry, and the label
// where the handler dispatch begins if setjmp returns non-zero (i.e. a
// longjmp landed here).
type handlerFrame struct {
	bufPtr        string
	dispatchLabel string
}

// enterProtectedRegion allocates a jump buffer on the current frame, pushes
// it onto the runtime's handler stack, and calls sjlj setjmp: control
// continues into the region's own body on the initial (zero) return, or
// jumps to the dispatch block when a later raise unwinds back to this
// buffer.
func (e *Emitter) enterProtectedRegion() *handlerFrame {
	e.mod.DeclareExternal("void @__ada_push_handler(ptr)")
	e.mod.DeclareExternal("i32 @llvm.eh.sjlj.setjmp(ptr)")

	buf := e.fn.Temp("ptr")
	e.fn.Emit(fmt.Sprintf("%s = alloca %s", buf, jmpBufType))
	e.fn.Emit(fmt.Sprintf("call void @__ada_push_handler(ptr %s)", buf))

	setjmpRes := e.fn.Temp("i32")
	e.fn.Emit(fmt.Sprintf("%s = call i32 @llvm.eh.sjlj.setjmp(ptr %s)", setjmpRes, buf))

	raised := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = icmp ne i32 %s, 0", raised, setjmpRes))

	bodyLabel := e.fn.NewLabel("protected_body")
	dispatchLabel := e.fn.NewLabel("handler_dispatch")
	e.fn.Terminate(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", raised, dispatchLabel, bodyLabel))
	e.fn.OpenLabel(bodyLabel)

	return &handlerFrame{bufPtr: buf, dispatchLabel: dispatchLabel}
}

// emitHandlers closes out a protected region: the normal-completion path
// pops the handler frame and falls through, while the dispatch block
// compares the raised exception against each "when" clause in order,
// emitting its statements on a match, an unconditional match for "others",
// and a re-raise to the caller if nothing in this handler list matches.
func (e *Emitter) emitHandlers(hf *handlerFrame, handlers []ast.ExceptionHandler, emitBody func([]core.NodeID)) {
	e.mod.DeclareExternal("void @__ada_pop_handler()")

	afterLabel := e.fn.NewLabel("after_protected")

	if !e.fn.IsTerminated() {
		e.fn.Emit("call void @__ada_pop_handler()")
		e.fn.Terminate(fmt.Sprintf("br label %%%s", afterLabel))
	}

	e.fn.OpenLabel(hf.dispatchLabel)
	e.fn.Emit("call void @__ada_pop_handler()")

	if len(handlers) == 0 {
		e.emitReraise()
		e.fn.OpenLabel(afterLabel)

		return
	}

	e.mod.DeclareExternal("i32 @__ada_current_exception()")

	excID := e.fn.Temp("i32")
	e.fn.Emit(fmt.Sprintf("%s = call i32 @__ada_current_exception()", excID))

	for i, h := range handlers {
		matchLabel := e.fn.NewLabel("handler_match")
		nextLabel := e.fn.NewLabel("handler_next")

		if h.Others {
			e.fn.Terminate(fmt.Sprintf("br label %%%s", matchLabel))
		} else {
			cond := "0"

			for j, excNode := range h.Exceptions {
				id := e.exceptionIDOf(excNode)
				eq := e.fn.Temp("i1")
				e.fn.Emit(fmt.Sprintf("%s = icmp eq i32 %s, %d", eq, excID, id))

				if j == 0 {
					cond = eq
				} else {
					combined := e.fn.Temp("i1")
					e.fn.Emit(fmt.Sprintf("%s = or i1 %s, %s", combined, cond, eq))
					cond = combined
				}
			}

			e.fn.Terminate(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", cond, matchLabel, nextLabel))
		}

		e.fn.OpenLabel(matchLabel)
		emitBody(h.Body)

		if !e.fn.IsTerminated() {
			e.fn.Terminate(fmt.Sprintf("br label %%%s", afterLabel))
		}

		if h.Others {
			break
		}

		e.fn.OpenLabel(nextLabel)

		if i == len(handlers)-1 {
			e.emitReraise()
		}
	}

	e.fn.OpenLabel(afterLabel)
}

// emitRaise stores id into the thread-local current-exception slot and
// performs a longjmp to the nearest handler buffer the runtime stack has
// registered.
func (e *Emitter) emitRaise(id ExceptionID) {
	e.mod.DeclareExternal("void @__ada_raise(i32)")
	e.fn.Emit(fmt.Sprintf("call void @__ada_raise(i32 %d)", int32(id)))
	e.fn.Terminate("unreachable")
}

// emitRaiseNamed raises a user-declared exception referenced by its
// resolved symbol.
func (e *Emitter) emitRaiseNamed(sym core.SymbolID) {
	e.emitRaise(e.exceptionID(sym))
}

// emitReraise propagates whatever exception is currently active to the
// next outer handler: since this frame's buffer has already been popped
// from the runtime stack, raising the same id again longjmps to whichever
// buffer is now on top.
func (e *Emitter) emitReraise() {
	e.mod.DeclareExternal("i32 @__ada_current_exception()")
	e.mod.DeclareExternal("void @__ada_raise(i32)")

	id := e.fn.Temp("i32")
	e.fn.Emit(fmt.Sprintf("%s = call i32 @__ada_current_exception()", id))
	e.fn.Emit(fmt.Sprintf("call void @__ada_raise(i32 %s)", id))
	e.fn.Terminate("unreachable")
}

// exceptionIDOf resolves a "when" clause exception-name node to its integer
// id, via the node's resolved symbol.
func (e *Emitter) exceptionIDOf(node core.NodeID) int32 {
	n := e.ctx.Tree.Get(node)
	return int32(e.exceptionID(n.ResolvedSymbol))
}

// exceptionID assigns (or recalls) the unique integer identifier for a
// user-declared exception symbol; predefined exceptions use the fixed
// ExceptionID constants directly and never go through this path.
func (e *Emitter) exceptionID(sym core.SymbolID) ExceptionID {
	if id, ok := e.excIDs[sym]; ok {
		return id
	}

	id := e.nextExcID
	e.nextExcID++
	e.excIDs[sym] = id

	return id
}
