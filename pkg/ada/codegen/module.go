// Package codegen produces LLVM textual IR from a fully resolved
// compilation unit: an incremental Module/Function builder pair that the
// caller feeds declarations into one at a time, streamed out as text in a
// single forward pass once the unit is complete.
package codegen

import (
	"fmt"
	"io"
	"strings"
)

// Module accumulates every global, external declaration, and function
// definition produced while emitting one compilation unit, and streams them
// out as a single forward pass once translation is complete.
type Module struct {
	Name string

	globals  []string
	decls    []string
	declSeen map[string]bool
	funcs    []*Function
	strSeq   int
}

// NewModule constructs an empty module named after the compilation unit it
// will hold (conventionally the source file's basename).
func NewModule(name string) *Module {
	return &Module{Name: name, declSeen: make(map[string]bool)}
}

// AddGlobal appends one already-rendered "@name = ..." global definition.
func (m *Module) AddGlobal(line string) {
	m.globals = append(m.globals, line)
}

// DeclareExternal registers an external function declaration, deduplicating
// by its full signature so the same with-ed entry point is never declared
// twice in one module.
func (m *Module) DeclareExternal(signature string) {
	if m.declSeen[signature] {
		return
	}

	m.declSeen[signature] = true
	m.decls = append(m.decls, "declare "+signature)
}

// DeclareExternalGlobal registers an external global variable declaration,
// deduplicating by name, for data (like another unit's elaboration flag)
// defined by some other module at link time.
func (m *Module) DeclareExternalGlobal(name, llvmTy string) {
	key := "@" + name
	if m.declSeen[key] {
		return
	}

	m.declSeen[key] = true
	m.decls = append(m.decls, fmt.Sprintf("@%s = external global %s", name, llvmTy))
}

// NewStringConstant registers data as a new private, unnamed_addr string
// constant global and returns its name (without the leading '@'), for a
// string literal's data to point into.
func (m *Module) NewStringConstant(data string) string {
	name := fmt.Sprintf(".str.%d", m.strSeq)
	m.strSeq++

	m.AddGlobal(fmt.Sprintf("@%s = private unnamed_addr constant [%d x i8] c\"%s\"", name, len(data), escapeLLVMString(data)))

	return name
}

// escapeLLVMString renders data in LLVM's quoted-string constant syntax,
// hex-escaping anything outside printable ASCII along with the quote and
// backslash characters themselves.
func escapeLLVMString(data string) string {
	var b strings.Builder

	for i := 0; i < len(data); i++ {
		c := data[i]

		if c == '"' || c == '\\' || c < 0x20 || c > 0x7e {
			fmt.Fprintf(&b, "\\%02X", c)
			continue
		}

		b.WriteByte(c)
	}

	return b.String()
}

// NewFunction allocates a Function builder for a fresh definition and
// registers it with the module; the caller fills in its body, then the
// module streams it out in WriteTo.
func (m *Module) NewFunction(name, signature string) *Function {
	fn := newFunction(name, signature)
	m.funcs = append(m.funcs, fn)

	return fn
}

// WriteTo streams the complete module as LLVM textual IR: the target
// triple/datalayout are left to the driver (out of scope here), so this
// writes only the content this package owns — globals, external
// declarations, and function definitions, each separated by a blank line in
// source order.
func (m *Module) WriteTo(w io.Writer) error {
	bw := &errWriter{w: w}

	bw.printf("; ModuleID = '%s'\n\n", m.Name)

	for _, g := range m.globals {
		bw.printf("%s\n", g)
	}

	if len(m.globals) > 0 {
		bw.printf("\n")
	}

	for _, d := range m.decls {
		bw.printf("%s\n", d)
	}

	if len(m.decls) > 0 {
		bw.printf("\n")
	}

	for _, fn := range m.funcs {
		bw.printf("%s", fn.Render())
		bw.printf("\n")
	}

	return bw.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}

	_, e.err = fmt.Fprintf(e.w, format, args...)
}

// Function accumulates the body of one LLVM function definition: its
// signature line, a sequence of basic blocks (each a label plus
// instructions), and the temporary/label allocators used while emitting it.
type Function struct {
	Name      string
	signature string

	temps  *tempAllocator
	labels *labelAllocator

	blocks      []*block
	cur         *block
	frameSize   uint32
	staticLink  bool
}

type block struct {
	label        string
	lines        []string
	hasTerminator bool
}

func newFunction(name, signature string) *Function {
	entry := &block{label: "entry"}
	f := &Function{
		Name: name, signature: signature,
		temps: newTempAllocator(), labels: newLabelAllocator(),
		blocks: []*block{entry},
	}
	f.cur = entry

	return f
}

// Temp allocates a fresh SSA temporary of the given LLVM type.
func (f *Function) Temp(llvmType string) string {
	return f.temps.New(llvmType)
}

// TypeOf recovers the LLVM type last associated with a temporary, for
// instructions (like a subsequent store or call) that need to know what was
// last computed into it.
func (f *Function) TypeOf(temp string) (string, bool) {
	return f.temps.TypeOf(temp)
}

// NewLabel allocates a fresh, unique basic-block label with the given
// human-readable prefix (e.g. "if_then", "range_fail").
func (f *Function) NewLabel(prefix string) string {
	return f.labels.New(prefix)
}

// Emit appends one non-terminator instruction line to the current block.
// Emitting into a block that already has a terminator is a compiler bug:
// every basic block must have exactly one terminator, appearing last.
func (f *Function) Emit(line string) {
	if f.cur.hasTerminator {
		panic("codegen: emit into a terminated block: " + line)
	}

	f.cur.lines = append(f.cur.lines, line)
}

// Terminate appends the current block's terminator instruction (br, ret,
// unreachable, ...) and closes it.
func (f *Function) Terminate(line string) {
	if f.cur.hasTerminator {
		panic("codegen: block already terminated before: " + line)
	}

	f.cur.lines = append(f.cur.lines, line)
	f.cur.hasTerminator = true
}

// OpenLabel starts a fresh basic block under the given label. The block it
// switches away from must already be terminated — the caller is expected to
// have branched into the new label before calling this.
func (f *Function) OpenLabel(label string) {
	b := &block{label: label}
	f.blocks = append(f.blocks, b)
	f.cur = b
}

// CurrentLabel returns the label of the block currently being filled in.
func (f *Function) CurrentLabel() string {
	return f.cur.label
}

// IsTerminated reports whether the current block already has its
// terminator, so callers emitting conditional epilogues (e.g. after a loop
// body that may itself end in a return) know whether to add a fallthrough
// branch.
func (f *Function) IsTerminated() bool {
	return f.cur.hasTerminator
}

// SetFrameSize records the stack-frame size computed for this subprogram's
// locals, for the prologue's alloca.
func (f *Function) SetFrameSize(size uint32) {
	f.frameSize = size
}

// SetStaticLink marks this function as accepting an environment-pointer
// parameter as an implicit first formal, because some nested subprogram of
// it (or it itself, as a callee) references an uplevel variable.
func (f *Function) SetStaticLink() {
	f.staticLink = true
}

// Render produces the full "define ... { ... }" text for this function.
func (f *Function) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "define %s {\n", f.signature)

	for i, blk := range f.blocks {
		if i > 0 || blk.label != "entry" {
			fmt.Fprintf(&b, "%s:\n", blk.label)
		}

		for _, line := range blk.lines {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}

	b.WriteString("}\n")

	return b.String()
}
