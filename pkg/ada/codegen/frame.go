package codegen

import (
	"github.com/adalore/adac/pkg/ada/ast"
	"github.com/adalore/adac/pkg/ada/core"
	"github.com/adalore/adac/pkg/ada/resolver"
	"github.com/adalore/adac/pkg/ada/symtab"
)

// envFrame tracks one active subprogram's environment record while its body
// (and, transitively, any nested subprogram's body) is being emitted: the
// SSA pointer to the record as the current function sees it, and which
// field index each of that subprogram's own locals occupies.
type envFrame struct {
	sym   core.SymbolID
	ptr   string
	slots map[core.SymbolID]int
}

// hasNestedSubprograms reports whether a declarative part declares at least
// one nested subprogram body, which is exactly the condition under which a
// subprogram must build an environment record: if nothing nested ever
// references its locals, no record — and no uplevel-load indirection — is
// needed.
func hasNestedSubprograms(ctx *resolver.Context, decls []core.NodeID) bool {
	for _, d := range decls {
		if ctx.Tree.Get(d).Kind == ast.KindSubprogramBody {
			return true
		}
	}

	return false
}

// capturableLocals returns every parameter and object/number declared
// directly in a subprogram's own scope, in declaration order — the set of
// local bindings a nested subprogram could legally reference uplevel.
func capturableLocals(ctx *resolver.Context, scopeID symtab.ScopeID) []core.SymbolID {
	var out []core.SymbolID

	for _, id := range ctx.Syms.Scope(scopeID).Symbols() {
		sym := ctx.Syms.Get(id)

		switch sym.Kind {
		case symtab.Variable, symtab.Constant, symtab.Parameter:
			out = append(out, id)
		}
	}

	return out
}

// pushEnvFrame builds the current subprogram's environment record (if it
// has one — hasNested is false for a subprogram with no nested bodies, in
// which case pushEnvFrame still pushes a frame with no slots so downstream
// lookups of "am I inside a subprogram with an env" stay simple, but no
// record is actually allocated) and pushes it onto the active chain.
// parentLink is the enclosing environment pointer as visible *inside the
// function currently being emitted* — "%__sl" for a nested subprogram, since
// a record temporary allocated in the parent's own body is not a legal SSA
// name here — stored as field 0 so uplevel chains can be chased.
func (e *Emitter) pushEnvFrame(sym core.SymbolID, capturable []core.SymbolID, hasNested bool, parentLink string, localAddr func(core.SymbolID) string) {
	frame := envFrame{sym: sym, slots: make(map[core.SymbolID]int)}

	if !hasNested {
		e.envStack = append(e.envStack, frame)
		return
	}

	e.mod.DeclareExternal("void @__ada_env_store(ptr, i32, ptr)")
	e.mod.DeclareExternal("ptr @__ada_env_load(ptr, i32)")

	n := len(capturable)
	recordTy := envRecordLLVMType(n)

	record := e.fn.Temp("ptr")
	e.fn.Emit(formatAlloca(record, recordTy))

	e.fn.Emit(formatEnvStore(record, recordTy, 0, parentLink))

	for i, sid := range capturable {
		frame.slots[sid] = i + 1
		e.fn.Emit(formatEnvStore(record, recordTy, i+1, localAddr(sid)))
	}

	frame.ptr = record
	e.envStack = append(e.envStack, frame)
}

// reachEnv returns an SSA pointer to envStack[i]'s environment record as
// the function currently being emitted can see it: its own record directly,
// or the incoming static link chased through one chain load per intervening
// nesting level.  The empty string is only possible for the innermost frame
// when it allocated no record.
func (e *Emitter) reachEnv(i int) string {
	last := len(e.envStack) - 1
	if i == last {
		return e.envStack[i].ptr
	}

	e.mod.DeclareExternal("ptr @__ada_env_load(ptr, i32)")

	cur := "%__sl"

	for j := last - 1; j > i; j-- {
		loaded := e.fn.Temp("ptr")
		e.fn.Emit(loaded + " = call ptr @__ada_env_load(ptr " + cur + ", i32 0)")
		cur = loaded
	}

	return cur
}

// popEnvFrame removes the current subprogram's frame once its body has been
// fully emitted.
func (e *Emitter) popEnvFrame() {
	e.envStack = e.envStack[:len(e.envStack)-1]
}

// envRecordLLVMType is the LLVM type of an environment record with n
// capturable locals: one ptr for the parent-chain link plus one ptr per
// local, each holding the address of that local's own alloca rather than a
// copy of its value, per the "pointers to frame slots" model.
func envRecordLLVMType(n int) string {
	return arrayOfPtr(n + 1)
}

func arrayOfPtr(n int) string {
	return "[" + itoaInt(n) + " x ptr]"
}

func itoaInt(n int) string {
	if n == 0 {
		return "0"
	}

	neg := n < 0
	if neg {
		n = -n
	}

	var buf [12]byte

	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}

	if neg {
		i--
		buf[i] = '-'
	}

	return string(buf[i:])
}

func formatAlloca(dst, ty string) string {
	return dst + " = alloca " + ty
}

func formatEnvStore(record, recordTy string, field int, value string) string {
	return "call void @__ada_env_store(ptr " + record + ", i32 " + itoaInt(field) + ", ptr " + value + ")"
}

// findUplevel searches the active environment-frame chain (innermost last)
// for the subprogram owning sym, returning the pointer to that
// subprogram's record and the field index sym occupies within it. ok is
// false if sym is not captured by any active frame (e.g. it is a library-
// level object, which codegen accesses as a plain global instead).
func (e *Emitter) findUplevel(owner core.SymbolID, sym core.SymbolID) (ptr string, field int, ok bool) {
	for i := len(e.envStack) - 1; i >= 0; i-- {
		f := e.envStack[i]
		if f.sym != owner {
			continue
		}

		idx, found := f.slots[sym]
		if !found {
			return "", 0, false
		}

		return e.reachEnv(i), idx, true
	}

	return "", 0, false
}

// owningSubprogram walks a symbol's defining scope outward until it finds
// the subprogram (or package) that introduced it, used to classify a
// reference as local, uplevel, or library-level.
func owningSubprogram(ctx *resolver.Context, sym *symtab.Symbol) core.SymbolID {
	scope := ctx.Syms.Scope(sym.DefiningScope)

	for {
		if scope.Owner.Valid() {
			owner := ctx.Syms.Get(scope.Owner)
			if owner.Kind == symtab.Procedure || owner.Kind == symtab.Function {
				return scope.Owner
			}
		}

		if !scope.HasParent {
			return core.NoSymbol
		}

		scope = ctx.Syms.Scope(scope.Parent)
	}
}
