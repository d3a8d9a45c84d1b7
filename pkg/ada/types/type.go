package types

import (
	"fmt"
	"math/big"

	"github.com/adalore/adac/pkg/ada/core"
)

// Type is a single type or subtype descriptor.  Every Ada type and subtype
// appearing in a compilation has exactly one Type value, allocated by a
// Registry and referenced everywhere else by its core.TypeID.
type Type struct {
	ID             core.TypeID
	Kind           Kind
	Name           string
	DefiningSymbol core.SymbolID
	SizeBytes      uint32
	AlignBytes     uint32
	Low            Bound
	High           Bound
	// Modulus holds the modulus of a modular type; nil otherwise.
	Modulus *big.Int
	// BaseType is set for a subtype, identifying the type it constrains.
	BaseType core.TypeID
	// ParentType is set for a derived type, identifying its immediate
	// ancestor.
	ParentType core.TypeID
	Body       Body
	Suppressed CheckMask
	Frozen     bool
}

// IsSubtype reports whether this descriptor constrains a distinct base
// type, as opposed to being itself a base (first subtype) declaration.
func (t *Type) IsSubtype() bool {
	return t.BaseType.Valid()
}

// IsDerived reports whether this type was declared with "is new Parent".
func (t *Type) IsDerived() bool {
	return t.ParentType.Valid()
}

// IsUnconstrainedArray reports whether this is an array type whose index
// ranges are not fixed — such values are always passed via the fat-pointer
// ABI.
func (t *Type) IsUnconstrainedArray() bool {
	if t.Kind != Array && t.Kind != StringKind {
		return false
	}

	body, ok := t.Body.(ArrayBody)

	return ok && !body.Constrained
}

// IsUnconstrainedRecord reports whether this is a record with discriminants
// and no constraint — such values are always passed via the fat-pointer ABI,
// since their size is not statically known.  A subtype carrying a
// discriminant constraint has BaseType set and is constrained; the first
// subtype itself is not.
func (t *Type) IsUnconstrainedRecord() bool {
	if t.Kind != Record {
		return false
	}

	body, ok := t.Body.(RecordBody)

	return ok && len(body.Discriminants) > 0 && !t.BaseType.Valid()
}

// Registry owns every type descriptor allocated during a compilation.
type Registry struct {
	arena *core.Arena[*Type]
}

// NewRegistry constructs an empty type registry.
func NewRegistry() *Registry {
	return &Registry{arena: core.NewArena[*Type]()}
}

// Allocate reserves a fresh, unfrozen descriptor of the given kind and
// returns its handle.
func (r *Registry) Allocate(kind Kind, name string) core.TypeID {
	t := &Type{Kind: kind, Name: name, Low: UnsetBound(), High: UnsetBound()}
	id := r.arena.Add(t)
	t.ID = core.TypeID(id)

	return t.ID
}

// Get returns the descriptor for the given handle.
func (r *Registry) Get(id core.TypeID) *Type {
	return r.arena.Get(uint32(id))
}

// standardWidths are the representable scalar bit widths, per the freezing
// protocol's "round up to a standard width" rule.
var standardWidths = [...]uint{8, 16, 32, 64, 128}

func roundUpWidth(bits uint) uint {
	for _, w := range standardWidths {
		if bits <= w {
			return w
		}
	}

	return 128
}

// signedBitWidth returns the number of bits (including a sign bit) needed
// to represent every value in [low, high] in two's complement.
func signedBitWidth(low, high *big.Int) uint {
	bits := uint(1)

	if low.Sign() < 0 {
		// -2^(n-1) is representable in n bits; find smallest n such
		// that -2^(n-1) <= low.
		var bound big.Int
		bound.Neg(low)
		bound.Sub(&bound, big.NewInt(1))
		bits = uint(bound.BitLen()) + 1
	} else if low.Sign() > 0 {
		bits = uint(low.BitLen()) + 1
	}

	if hb := uint(high.BitLen()) + 1; hb > bits {
		bits = hb
	}

	if high.Sign() == 0 && low.Sign() == 0 {
		bits = 1
	}

	return bits
}

// bitsForModulus returns the number of unsigned bits needed to represent
// every value in [0, modulus).
func bitsForModulus(modulus *big.Int) uint {
	var top big.Int
	top.Sub(modulus, big.NewInt(1))

	if top.Sign() <= 0 {
		return 8
	}

	return uint(top.BitLen())
}

// Freeze finalizes a type's representation: its size, alignment, component
// offsets, and variant layout.  Freezing is idempotent: a second call on an
// already-frozen descriptor is a no-op. Freezing a composite or derived type
// transitively freezes every type it depends on (component types, element
// type, parent type).
func (r *Registry) Freeze(id core.TypeID) error {
	t := r.Get(id)
	if t.Frozen {
		return nil
	}

	if t.IsDerived() {
		if err := r.Freeze(t.ParentType); err != nil {
			return err
		}
	}

	switch t.Kind {
	case Unknown, UniversalInteger, UniversalReal:
		// Universal types have no runtime representation; freezing is a
		// no-op beyond marking them frozen.
	case Boolean, CharacterKind:
		t.SizeBytes, t.AlignBytes = 1, 1
	case Integer:
		if err := r.freezeScalarRange(t); err != nil {
			return err
		}
	case Modular:
		if t.Modulus == nil {
			return fmt.Errorf("modular type %q frozen without a modulus", t.Name)
		}

		width := roundUpWidth(bitsForModulus(t.Modulus))
		t.SizeBytes, t.AlignBytes = uint32(width/8), uint32(width/8)
	case Enumeration:
		if err := r.freezeEnum(t); err != nil {
			return err
		}
	case FloatKind:
		r.freezeFloat(t)
	case Fixed:
		if err := r.freezeFixed(t); err != nil {
			return err
		}
	case Array, StringKind:
		if err := r.freezeArray(t); err != nil {
			return err
		}
	case Record:
		if err := r.freezeRecord(t); err != nil {
			return err
		}
	case Access:
		t.SizeBytes, t.AlignBytes = 8, 8
	case Subprogram, Task, Private, LimitedPrivate, Incomplete, Package:
		// No runtime object representation of its own.
	default:
		return fmt.Errorf("freeze: unhandled kind %s", t.Kind)
	}

	if t.IsDerived() {
		parent := r.Get(t.ParentType)
		t.Suppressed = t.Suppressed.Merge(parent.Suppressed)
	}

	t.Frozen = true

	return nil
}

func (r *Registry) freezeScalarRange(t *Type) error {
	if t.IsSubtype() {
		base := r.Get(t.BaseType)
		if err := r.Freeze(t.BaseType); err != nil {
			return err
		}

		t.SizeBytes, t.AlignBytes = base.SizeBytes, base.AlignBytes

		return nil
	}

	if t.Low.IsDeferred() || t.High.IsDeferred() {
		return fmt.Errorf("cannot freeze %q: bounds not yet folded", t.Name)
	}

	low, high := boundAsInt(t.Low), boundAsInt(t.High)
	width := roundUpWidth(signedBitWidth(low, high))
	t.SizeBytes, t.AlignBytes = uint32(width/8), uint32(width/8)

	return nil
}

func boundAsInt(b Bound) *big.Int {
	if b.IsUnset() {
		return big.NewInt(0)
	}

	return b.Exact()
}

func (r *Registry) freezeEnum(t *Type) error {
	if t.IsSubtype() {
		base := r.Get(t.BaseType)
		if err := r.Freeze(t.BaseType); err != nil {
			return err
		}

		t.SizeBytes, t.AlignBytes = base.SizeBytes, base.AlignBytes

		return nil
	}

	body, ok := t.Body.(EnumBody)
	if !ok {
		return fmt.Errorf("enumeration type %q has no body", t.Name)
	}

	n := len(body.Literals)
	lo, hi := int64(0), int64(n-1)

	if body.RepValues != nil {
		lo, hi = body.RepValues[0], body.RepValues[0]

		for _, v := range body.RepValues {
			if v < lo {
				lo = v
			}

			if v > hi {
				hi = v
			}
		}
	}

	width := roundUpWidth(signedBitWidth(big.NewInt(lo), big.NewInt(hi)))
	t.SizeBytes, t.AlignBytes = uint32(width/8), uint32(width/8)

	return nil
}

func (r *Registry) freezeFloat(t *Type) {
	if t.IsSubtype() {
		base := r.Get(t.BaseType)
		_ = r.Freeze(t.BaseType)
		t.SizeBytes, t.AlignBytes = base.SizeBytes, base.AlignBytes

		return
	}

	digits := 6
	if body, ok := t.Body.(FloatBody); ok {
		digits = body.Digits
	}

	if digits <= 6 {
		t.SizeBytes, t.AlignBytes = 4, 4
	} else {
		t.SizeBytes, t.AlignBytes = 8, 8
	}
}

func (r *Registry) freezeFixed(t *Type) error {
	if t.Low.IsDeferred() || t.High.IsDeferred() {
		return fmt.Errorf("cannot freeze %q: bounds not yet folded", t.Name)
	}

	// A fixed point type's runtime representation is a scaled integer;
	// size follows the same rule as Integer over the (already
	// delta-scaled) bound values.
	low, high := boundAsInt(t.Low), boundAsInt(t.High)
	width := roundUpWidth(signedBitWidth(low, high))
	t.SizeBytes, t.AlignBytes = uint32(width/8), uint32(width/8)

	return nil
}

func (r *Registry) freezeArray(t *Type) error {
	body, ok := t.Body.(ArrayBody)
	if !ok {
		return fmt.Errorf("array type %q has no body", t.Name)
	}

	if err := r.Freeze(body.Element); err != nil {
		return err
	}

	for _, idx := range body.Indices {
		if err := r.Freeze(idx); err != nil {
			return err
		}
	}

	if !body.Constrained {
		// Size is deferred; values of this type are always carried by
		// the fat-pointer ABI.
		t.SizeBytes, t.AlignBytes = 0, uint32(r.Get(body.Element).AlignBytes)

		return nil
	}

	elem := r.Get(body.Element)
	length := uint64(1)

	for _, idx := range body.Indices {
		it := r.Get(idx)

		if it.Low.IsDeferred() || it.High.IsDeferred() {
			return fmt.Errorf("cannot freeze %q: index bounds not folded", t.Name)
		}

		lo, hi := boundAsInt(it.Low), boundAsInt(it.High)

		var diff big.Int

		diff.Sub(hi, lo)
		diff.Add(&diff, big.NewInt(1))

		if diff.Sign() < 0 {
			length *= 0
		} else {
			length *= diff.Uint64()
		}
	}

	size := length * uint64(elem.SizeBytes)
	align := elem.AlignBytes

	if align == 0 {
		align = 1
	}
	// Round size up to element alignment.
	if rem := size % uint64(align); rem != 0 {
		size += uint64(align) - rem
	}

	t.SizeBytes, t.AlignBytes = uint32(size), align

	return nil
}

func (r *Registry) freezeRecord(t *Type) error {
	body, ok := t.Body.(RecordBody)
	if !ok {
		return fmt.Errorf("record type %q has no body", t.Name)
	}

	var offset, maxAlign uint32

	layout := func(comps []Component) error {
		for i := range comps {
			c := &comps[i]
			if err := r.Freeze(c.Type); err != nil {
				return err
			}

			ct := r.Get(c.Type)
			align := ct.AlignBytes

			if align == 0 {
				align = 1
			}

			if rem := offset % align; rem != 0 {
				offset += align - rem
			}

			c.Offset = offset
			offset += ct.SizeBytes

			if align > maxAlign {
				maxAlign = align
			}
		}

		return nil
	}

	if err := layout(body.Discriminants); err != nil {
		return err
	}

	if err := layout(body.Components); err != nil {
		return err
	}

	if len(body.Variants) > 0 {
		// Start the variant area at an offset aligned for every arm's
		// components, so its size is exactly that of the largest arm.
		for vi := range body.Variants {
			for _, part := range body.Variants[vi].Parts {
				if err := r.Freeze(part.Type); err != nil {
					return err
				}

				if a := r.Get(part.Type).AlignBytes; a > 1 && offset%a != 0 {
					offset += a - offset%a
				}
			}
		}

		body.VariantOffset = offset

		var maxVariant uint32

		for vi := range body.Variants {
			v := &body.Variants[vi]
			saved := offset

			if err := layout(v.Parts); err != nil {
				return err
			}

			if sz := offset - saved; sz > maxVariant {
				maxVariant = sz
			}

			offset = saved
		}

		body.VariantSize = maxVariant
		offset += maxVariant
	}

	if maxAlign == 0 {
		maxAlign = 1
	}

	if rem := offset % maxAlign; rem != 0 {
		offset += maxAlign - rem
	}

	t.Body = body
	t.SizeBytes, t.AlignBytes = offset, maxAlign

	return nil
}
