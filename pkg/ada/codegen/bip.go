package codegen

import "fmt"

// BIPAllocForm is the allocation-form tag passed to a build-in-place
// function, selecting where the caller wants the result constructed.
type BIPAllocForm int32

const (
	BIPCallerStack BIPAllocForm = iota
	BIPSecondaryStack
	BIPHeap
	BIPUserPool
)

// bipFormalNames are the five fixed implicit formal parameter names every
// build-in-place function receives, in order, per the runtime calling
// convention: allocation form, destination address, finalization master,
// activation chain, access-result pointer.
var bipFormalNames = [...]string{
	"__BIPalloc", "__BIPaccess", "__BIPmaster", "__BIPchain", "__BIPfinal",
}

// bipFormals renders the five implicit formal parameter declarations a
// build-in-place function signature must carry ahead of its declared
// parameters, typed per the protocol: the allocation-form tag is an i32,
// the rest are opaque pointers the caller supplies (null where not
// applicable to the chosen form).
func bipFormals() string {
	return fmt.Sprintf("i32 %%%s, ptr %%%s, ptr %%%s, ptr %%%s, ptr %%%s",
		bipFormalNames[0], bipFormalNames[1], bipFormalNames[2], bipFormalNames[3], bipFormalNames[4])
}

// emitBIPAlloc emits the allocation-form dispatch at the entry of a
// function returning a limited type: branch on __BIPalloc to decide
// whether the result is constructed directly at __BIPaccess (caller-stack
// form) or a fresh allocation is requested: from the secondary stack for
// the secondary-stack form, otherwise from the heap allocator, which also
// registers the result with __BIPmaster for later finalization. The heap
// and user-pool forms both take the heap path; __ada_bip_pool_alloc is
// declared but not called.
//
// Per the recorded Open Question decision, this emitter does not attempt to
// interleave BIP finalization with exception propagation beyond registering
// the allocation with the finalization master up front: if the function
// body raises before completing the result, the master — not this
// function's own epilogue — is responsible for tearing down a partially
// built object, mirroring the ambiguity the source left unresolved.
func (e *Emitter) emitBIPAlloc(resultLLVMTy string) string {
	e.mod.DeclareExternal("ptr @__ada_bip_secondary_alloc(i64)")
	e.mod.DeclareExternal("ptr @__ada_bip_heap_alloc(i64, ptr)")
	e.mod.DeclareExternal("ptr @__ada_bip_pool_alloc(i64, ptr)")

	form := "%" + bipFormalNames[0]

	isCaller := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = icmp eq i32 %s, %d", isCaller, form, BIPCallerStack))

	callerLabel := e.fn.NewLabel("bip_caller")
	allocLabel := e.fn.NewLabel("bip_alloc")
	joinLabel := e.fn.NewLabel("bip_join")

	e.fn.Terminate(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", isCaller, callerLabel, allocLabel))

	e.fn.OpenLabel(callerLabel)
	e.fn.Terminate(fmt.Sprintf("br label %%%s", joinLabel))

	e.fn.OpenLabel(allocLabel)
	isSecondary := e.fn.Temp("i1")
	e.fn.Emit(fmt.Sprintf("%s = icmp eq i32 %s, %d", isSecondary, form, BIPSecondaryStack))

	secondaryLabel := e.fn.NewLabel("bip_secondary")
	heapOrPoolLabel := e.fn.NewLabel("bip_heap_or_pool")
	e.fn.Terminate(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", isSecondary, secondaryLabel, heapOrPoolLabel))

	e.fn.OpenLabel(secondaryLabel)
	secondaryPtr := e.fn.Temp("ptr")
	e.fn.Emit(fmt.Sprintf("%s = call ptr @__ada_bip_secondary_alloc(i64 ptrtoint (ptr getelementptr (%s, ptr null, i32 1) to i64))", secondaryPtr, resultLLVMTy))
	e.fn.Terminate(fmt.Sprintf("br label %%%s", joinLabel))

	e.fn.OpenLabel(heapOrPoolLabel)
	heapPtr := e.fn.Temp("ptr")
	e.fn.Emit(fmt.Sprintf("%s = call ptr @__ada_bip_heap_alloc(i64 ptrtoint (ptr getelementptr (%s, ptr null, i32 1) to i64), ptr %%%s)", heapPtr, resultLLVMTy, bipFormalNames[2]))
	e.fn.Terminate(fmt.Sprintf("br label %%%s", joinLabel))

	e.fn.OpenLabel(joinLabel)
	dest := e.fn.Temp("ptr")
	e.fn.Emit(fmt.Sprintf("%s = phi ptr [ %%%s, %%%s ], [ %s, %%%s ], [ %s, %%%s ]",
		dest, bipFormalNames[1], callerLabel, secondaryPtr, secondaryLabel, heapPtr, heapOrPoolLabel))

	return dest
}

// emitBIPReturn stores __BIPaccess (or the freshly allocated destination)
// into the implicit access-result formal and emits a plain void return —
// the function's actual result was already constructed in place at dest.
func (e *Emitter) emitBIPReturn(dest string) {
	e.fn.Emit(fmt.Sprintf("store ptr %s, ptr %%%s", dest, bipFormalNames[4]))
	e.fn.Terminate("ret void")
}
