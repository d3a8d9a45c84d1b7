package types

import (
	"math/big"
	"testing"

	"github.com/adalore/adac/pkg/ada/core"
)

func TestFreezeScalarRoundsToStandardWidth(t *testing.T) {
	reg := NewRegistry()
	id := reg.Allocate(Integer, "Small_Range")
	ty := reg.Get(id)
	ty.Low = ExactBound(big.NewInt(0))
	ty.High = ExactBound(big.NewInt(100))

	if err := reg.Freeze(id); err != nil {
		t.Fatalf("freeze: %v", err)
	}

	if ty.SizeBytes != 1 {
		t.Fatalf("expected 1 byte (i8) for range 0..100, got %d", ty.SizeBytes)
	}
}

func TestFreezeIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	id := reg.Allocate(Integer, "T")
	ty := reg.Get(id)
	ty.Low = ExactBound(big.NewInt(-1000))
	ty.High = ExactBound(big.NewInt(1000))

	if err := reg.Freeze(id); err != nil {
		t.Fatalf("freeze: %v", err)
	}

	size1, align1 := ty.SizeBytes, ty.AlignBytes

	if err := reg.Freeze(id); err != nil {
		t.Fatalf("second freeze: %v", err)
	}

	if ty.SizeBytes != size1 || ty.AlignBytes != align1 {
		t.Fatalf("freeze not idempotent: (%d,%d) != (%d,%d)", ty.SizeBytes, ty.AlignBytes, size1, align1)
	}
}

func TestFreezeDeferredBoundFails(t *testing.T) {
	reg := NewRegistry()
	id := reg.Allocate(Integer, "Unfolded")
	ty := reg.Get(id)
	ty.Low = DeferredBound(core.NodeID(7))
	ty.High = ExactBound(big.NewInt(10))

	if err := reg.Freeze(id); err == nil {
		t.Fatal("expected freeze to fail on a deferred bound")
	}
}

func TestCoversUniversalInteger(t *testing.T) {
	reg := NewRegistry()
	intTy := reg.Allocate(Integer, "Integer")
	universal := reg.Allocate(UniversalInteger, "universal_integer")

	if !reg.Covers(intTy, universal) {
		t.Fatal("expected universal_integer to cover Integer formal")
	}

	floatTy := reg.Allocate(FloatKind, "Float")

	if reg.Covers(floatTy, universal) {
		t.Fatal("universal_integer should not cover a Float formal")
	}
}

func TestCoversStringLiteral(t *testing.T) {
	reg := NewRegistry()
	char := reg.Allocate(CharacterKind, "Character")
	idx := reg.Allocate(Integer, "Positive")
	str := reg.Allocate(StringKind, "String")
	reg.Get(str).Body = ArrayBody{Indices: []core.TypeID{idx}, Element: char, Constrained: false}

	other := reg.Allocate(StringKind, "Line_Buffer")
	reg.Get(other).Body = ArrayBody{Indices: []core.TypeID{idx}, Element: char, Constrained: true}

	if !reg.Covers(other, str) {
		t.Fatal("expected a string literal's type to cover a one-dimensional Character array formal")
	}
}

func TestFreezeRecordWithVariantLaysOutMaxVariantArea(t *testing.T) {
	reg := NewRegistry()
	intTy := reg.Allocate(Integer, "Integer")
	reg.Get(intTy).Low = ExactBound(big.NewInt(0))
	reg.Get(intTy).High = ExactBound(big.NewInt(1000))

	smallTy := reg.Allocate(Integer, "Byte")
	reg.Get(smallTy).Low = ExactBound(big.NewInt(0))
	reg.Get(smallTy).High = ExactBound(big.NewInt(10))

	rec := reg.Allocate(Record, "Rec")
	reg.Get(rec).Body = RecordBody{
		Discriminants: []Component{{Name: "N", Type: smallTy}},
		Variants: []Variant{
			{Values: []*big.Int{big.NewInt(0)}, Parts: []Component{{Name: "A", Type: smallTy}}},
			{Values: []*big.Int{big.NewInt(1)}, Parts: []Component{{Name: "B", Type: intTy}}},
		},
	}

	if err := reg.Freeze(rec); err != nil {
		t.Fatalf("freeze: %v", err)
	}

	ty := reg.Get(rec)
	body := ty.Body.(RecordBody)

	if body.VariantSize != reg.Get(intTy).SizeBytes {
		t.Fatalf("expected variant area sized to the larger arm (%d), got %d", reg.Get(intTy).SizeBytes, body.VariantSize)
	}
}
