// Package types implements the Ada type registry: allocation of type
// descriptors, the freezing protocol that finalizes their representation,
// and the compatibility predicates used throughout resolution.
package types

// Kind classifies a type descriptor.  The set is closed and exhaustive:
// every descriptor is one of exactly these kinds, and every switch over Kind
// in this package is expected to cover all of them.
type Kind uint8

const (
	// Unknown marks a descriptor allocated but not yet given a real kind,
	// or the "error type" used to let resolution continue past a type
	// error without cascading further diagnostics.
	Unknown Kind = iota
	Boolean
	CharacterKind
	Integer
	Modular
	Enumeration
	FloatKind
	Fixed
	Array
	Record
	StringKind
	Access
	UniversalInteger
	UniversalReal
	Task
	Subprogram
	Private
	LimitedPrivate
	Incomplete
	Package
)

func (k Kind) String() string {
	switch k {
	case Unknown:
		return "unknown"
	case Boolean:
		return "boolean"
	case CharacterKind:
		return "character"
	case Integer:
		return "integer"
	case Modular:
		return "modular"
	case Enumeration:
		return "enumeration"
	case FloatKind:
		return "float"
	case Fixed:
		return "fixed"
	case Array:
		return "array"
	case Record:
		return "record"
	case StringKind:
		return "string"
	case Access:
		return "access"
	case UniversalInteger:
		return "universal_integer"
	case UniversalReal:
		return "universal_real"
	case Task:
		return "task"
	case Subprogram:
		return "subprogram"
	case Private:
		return "private"
	case LimitedPrivate:
		return "limited_private"
	case Incomplete:
		return "incomplete"
	case Package:
		return "package"
	default:
		return "???"
	}
}

// IsDiscrete reports whether values of this kind are ordered, countable
// values usable as array indices, case-statement selectors, or loop
// parameters.
func (k Kind) IsDiscrete() bool {
	switch k {
	case Boolean, CharacterKind, Integer, Modular, Enumeration, UniversalInteger:
		return true
	default:
		return false
	}
}

// IsReal reports whether values of this kind are floating or fixed point.
func (k Kind) IsReal() bool {
	switch k {
	case FloatKind, Fixed, UniversalReal:
		return true
	default:
		return false
	}
}

// IsScalar reports whether this kind has a single linearly ordered value
// per object, as opposed to a composite (array/record) or reference
// (access) kind.
func (k Kind) IsScalar() bool {
	return k.IsDiscrete() || k.IsReal()
}

// IsUniversal reports whether this kind is a universal (compile-time-only)
// type.
func (k Kind) IsUniversal() bool {
	return k == UniversalInteger || k == UniversalReal
}

// IsComposite reports whether this kind is built from components.
func (k Kind) IsComposite() bool {
	return k == Array || k == Record || k == StringKind
}
