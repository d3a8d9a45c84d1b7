package codegen

import "fmt"

// tempRingSize bounds how far back TypeOf can recover a temporary's LLVM
// type. A function body only ever needs to recall the type of a value it is
// about to consume again (the very next instruction or two), so a small
// ring buffer serves the same purpose as an unbounded map at a fraction of
// the footprint.
const tempRingSize = 64

type tempEntry struct {
	name string
	typ  string
}

// tempAllocator hands out monotonically increasing SSA temporary names and
// remembers the LLVM type last stored into each.
type tempAllocator struct {
	seq  int
	ring [tempRingSize]tempEntry
	head int
}

func newTempAllocator() *tempAllocator {
	return &tempAllocator{}
}

// New allocates a fresh temporary of the given LLVM type and returns its
// "%tN" name.
func (a *tempAllocator) New(llvmType string) string {
	name := fmt.Sprintf("%%t%d", a.seq)
	a.seq++

	a.ring[a.head] = tempEntry{name: name, typ: llvmType}
	a.head = (a.head + 1) % tempRingSize

	return name
}

// TypeOf recovers the LLVM type associated with name, if it is still within
// the ring buffer's lookback window.
func (a *tempAllocator) TypeOf(name string) (string, bool) {
	for _, e := range a.ring {
		if e.name == name {
			return e.typ, true
		}
	}

	return "", false
}

// labelAllocator hands out unique, human-readable basic-block labels.
type labelAllocator struct {
	seq map[string]int
}

func newLabelAllocator() *labelAllocator {
	return &labelAllocator{seq: make(map[string]int)}
}

// New allocates a fresh label under the given prefix, e.g. "if_then3".
func (a *labelAllocator) New(prefix string) string {
	n := a.seq[prefix]
	a.seq[prefix] = n + 1

	return fmt.Sprintf("%s%d", prefix, n)
}
