package types

import (
	"math/big"

	"github.com/adalore/adac/pkg/ada/core"
)

// Body is the kind-discriminated payload of a type descriptor.  Only array,
// record, access, enumeration, fixed, and float descriptors carry a body;
// every other kind leaves it nil.
type Body interface {
	isTypeBody()
}

// ArrayBody describes an array type: its index subtypes (one per
// dimension), its element type, and whether it is constrained (i.e. the
// index ranges are fixed, as opposed to an unconstrained array type like
// Ada's String).
type ArrayBody struct {
	Indices     []core.TypeID
	Element     core.TypeID
	Constrained bool
}

func (ArrayBody) isTypeBody() {}

// Component describes one field of a record: its name, declared type, and
// (once the record is frozen) its byte offset within the layout.
type Component struct {
	Name   string
	Type   core.TypeID
	Offset uint32
}

// Variant describes one arm of a record's variant part: the discriminant
// values that select it (or Others if it is the catch-all arm) and its
// components. Once the record is frozen each component's Offset is measured
// from the start of the record; the variant area's own offset is
// RecordBody.VariantOffset.
type Variant struct {
	Values []*big.Int
	Others bool
	Parts  []Component
}

// RecordBody describes a record type: its fixed components (including any
// discriminants, which are always first), and its variant part if present.
type RecordBody struct {
	Components    []Component
	Discriminants []Component
	Variants      []Variant
	// VariantOffset is the byte offset of the variant area, valid once the
	// record is frozen.
	VariantOffset uint32
	// VariantSize is the size, in bytes, of the largest variant arm.
	VariantSize uint32
}

// HasVariants reports whether this record has a variant part at all.
func (r *RecordBody) HasVariants() bool {
	return len(r.Variants) > 0
}

// AccessBody describes an access (pointer) type.
type AccessBody struct {
	Designated       core.TypeID
	IsAccessConstant bool
}

func (AccessBody) isTypeBody() {}

// EnumBody describes an enumeration type's literals and, if a
// representation clause was given, their explicit values (otherwise nil,
// meaning the default 0..n-1 assignment applies).
type EnumBody struct {
	Literals  []string
	RepValues []int64
}

func (EnumBody) isTypeBody() {}

// ValueOf returns the representation value of the nth literal, applying the
// default 0..n-1 assignment if no representation clause was given.
func (e *EnumBody) ValueOf(n int) int64 {
	if e.RepValues != nil {
		return e.RepValues[n]
	}

	return int64(n)
}

// FixedBody describes a fixed-point type's delta, small, and scale.
type FixedBody struct {
	Delta float64
	Small float64
	Scale int32
}

func (FixedBody) isTypeBody() {}

// FloatBody describes a floating-point type's required decimal digits of
// precision.
type FloatBody struct {
	Digits int
}

func (FloatBody) isTypeBody() {}

func (RecordBody) isTypeBody() {}
