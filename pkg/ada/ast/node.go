package ast

import (
	"github.com/adalore/adac/pkg/ada/core"
	"github.com/adalore/adac/pkg/diagnostics"
)

// Node is one element of the syntax tree.  Every node is owned by a Tree's
// node arena and referenced elsewhere only via its core.NodeID; Payload
// holds the kind-discriminated data listed in kind.go.
//
// ResolvedType and ResolvedSymbol start out core.NoType/core.NoSymbol and
// are filled in by the resolver; any expression node left with
// ResolvedType still unset after resolution indicates an error was
// reported at or below that node.
type Node struct {
	Kind Kind
	Span diagnostics.Span

	ResolvedType   core.TypeID
	ResolvedSymbol core.SymbolID

	Payload any
}

// Tree owns every node of one compilation unit's syntax tree.
type Tree struct {
	arena *core.Arena[Node]
	root  core.NodeID
}

// NewTree constructs an empty tree.
func NewTree() *Tree {
	return &Tree{arena: core.NewArena[Node]()}
}

// Add allocates a new node with the given kind, span, and payload, and
// returns its handle.
func (t *Tree) Add(kind Kind, span diagnostics.Span, payload any) core.NodeID {
	n := Node{Kind: kind, Span: span, Payload: payload}
	id := t.arena.Add(n)

	return core.NodeID(id)
}

// Get returns the node for the given handle.
func (t *Tree) Get(id core.NodeID) *Node {
	n := t.arena.Get(uint32(id))
	return &n
}

// Mutate applies fn to the node at id and writes the result back; used by
// the resolver to annotate a node with its resolved type/symbol without the
// caller needing to know the arena is value- rather than pointer-backed.
func (t *Tree) Mutate(id core.NodeID, fn func(*Node)) {
	n := t.arena.Get(uint32(id))
	fn(&n)
	t.arena.Set(uint32(id), n)
}

// SetRoot records the compilation unit's root node.
func (t *Tree) SetRoot(id core.NodeID) {
	t.root = id
}

// Root returns the compilation unit's root node.
func (t *Tree) Root() core.NodeID {
	return t.root
}

// Len returns the number of nodes allocated in this tree.
func (t *Tree) Len() int {
	return t.arena.Len()
}
