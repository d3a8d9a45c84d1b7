package types

import "github.com/adalore/adac/pkg/ada/core"

// rootOf follows the base-type and parent-type chains to the ultimate
// ancestor of t, used to decide whether two types "share the same root".
func (r *Registry) rootOf(id core.TypeID) core.TypeID {
	for {
		t := r.Get(id)

		switch {
		case t.BaseType.Valid():
			id = t.BaseType
		case t.ParentType.Valid():
			id = t.ParentType
		default:
			return id
		}
	}
}

// Covers implements the `covers` compatibility predicate: whether a value
// of the actual type A is a legal operand where the expected type E is
// required.
func (r *Registry) Covers(expected, actual core.TypeID) bool {
	if expected == actual {
		return true
	}

	e, a := r.Get(expected), r.Get(actual)

	if e.Kind == Unknown || a.Kind == Unknown {
		// The error type covers, and is covered by, everything: this
		// lets resolution continue past an earlier error without
		// cascading unrelated "no matching profile" diagnostics.
		return true
	}

	if r.rootOf(expected) == r.rootOf(actual) {
		return true
	}

	if a.Kind == UniversalInteger && e.Kind.IsDiscrete() {
		return true
	}

	if a.Kind == UniversalReal && e.Kind.IsReal() {
		return true
	}

	if e.Kind == Access && a.Kind == Access {
		eb, aOK := e.Body.(AccessBody)
		ab, bOK := a.Body.(AccessBody)

		if aOK && bOK {
			return r.Covers(eb.Designated, ab.Designated) && r.Covers(ab.Designated, eb.Designated)
		}
	}

	if a.Kind == StringKind && e.Kind.IsComposite() {
		if eb, ok := e.Body.(ArrayBody); ok {
			elem := r.Get(eb.Element)
			return len(eb.Indices) == 1 && elem.Kind == CharacterKind
		}
	}

	return false
}

// LeastUpperBound returns the most specific type both a and b can be
// coerced to, or the error type if none exists.  Used when two branches of
// a conditional expression (or operands of an operator) disagree on a
// universal vs concrete type.
func (r *Registry) LeastUpperBound(a, b core.TypeID, errType core.TypeID) core.TypeID {
	if a == b {
		return a
	}

	at, bt := r.Get(a), r.Get(b)

	if at.Kind.IsUniversal() && !bt.Kind.IsUniversal() {
		return b
	}

	if bt.Kind.IsUniversal() && !at.Kind.IsUniversal() {
		return a
	}

	if r.rootOf(a) == r.rootOf(b) {
		return a
	}

	return errType
}

// HasUnderlying reports whether this type ultimately denotes a concrete
// representation, as opposed to an incomplete or private type whose full
// view has not yet been reached.
func (t *Type) HasUnderlying() bool {
	switch t.Kind {
	case Incomplete, Private, LimitedPrivate:
		return false
	default:
		return true
	}
}

// LLVMTypeString computes the textual LLVM IR type corresponding to this
// (frozen) descriptor.  Unconstrained arrays and unconstrained records with
// discriminants have no single LLVM type of their own: callers must use the
// fat-pointer ABI types instead, and passing one here returns "ptr" as a
// conservative placeholder for the underlying data pointer.
func (r *Registry) LLVMTypeString(id core.TypeID) string {
	t := r.Get(id)

	switch t.Kind {
	case Boolean:
		return "i1"
	case CharacterKind, Enumeration, Integer, Modular:
		return intWidthString(t.SizeBytes)
	case FloatKind, Fixed:
		if t.SizeBytes <= 4 {
			return "float"
		}

		return "double"
	case Access:
		return "ptr"
	case Array, StringKind:
		if t.IsUnconstrainedArray() {
			return "{ ptr, ptr }"
		}

		body := t.Body.(ArrayBody)
		elem := r.LLVMTypeString(body.Element)
		length := t.SizeBytes / max32(r.Get(body.Element).SizeBytes, 1)

		return bracketArray(length, elem)
	case Record:
		return "ptr"
	default:
		return "ptr"
	}
}

func max32(a, b uint32) uint32 {
	if a > b {
		return a
	}

	return b
}

func intWidthString(sizeBytes uint32) string {
	switch sizeBytes {
	case 1:
		return "i8"
	case 2:
		return "i16"
	case 4:
		return "i32"
	case 8:
		return "i64"
	case 16:
		return "i128"
	default:
		return "i32"
	}
}

func bracketArray(length uint32, elem string) string {
	return "[" + itoa(length) + " x " + elem + "]"
}

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}

	var buf [10]byte

	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}

	return string(buf[i:])
}
