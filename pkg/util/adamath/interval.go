// Package adamath provides exact-precision interval arithmetic over
// arbitrary-size integers, used to track the static bounds of scalar types
// and the value of statically foldable expressions.
package adamath

import (
	"fmt"
	"math/big"
)

// Interval represents a discrete, closed range of integers min..max.  It is
// used to represent the bounds of a scalar type (e.g. an integer subtype's
// range constraint) and, during constant folding, the statically known range
// of an expression.
type Interval struct {
	min big.Int
	max big.Int
}

// NewInterval constructs an interval covering exactly the given bounds.
func NewInterval(lower *big.Int, upper *big.Int) *Interval {
	var min, max big.Int
	//
	min.Set(lower)
	max.Set(upper)
	//
	return &Interval{min, max}
}

// NewSingleton constructs an interval containing exactly one value.
func NewSingleton(val *big.Int) *Interval {
	return NewInterval(val, val)
}

// Min returns the lower bound of this interval.
func (p *Interval) Min() *big.Int {
	var v big.Int
	v.Set(&p.min)

	return &v
}

// Max returns the upper bound of this interval.
func (p *Interval) Max() *big.Int {
	var v big.Int
	v.Set(&p.max)

	return &v
}

// BitWidth returns the minimum number of bits required to store all elements
// in this interval, treating it as an unsigned range (the caller is
// responsible for accounting for a sign bit where the range is signed).
func (p *Interval) BitWidth() uint {
	return uint(p.max.BitLen())
}

// Set assigns a given value to this interval.
func (p *Interval) Set(val *Interval) {
	p.min.Set(&val.min)
	p.max.Set(&val.max)
}

// Contains checks whether a given value lies within this interval.
func (p *Interval) Contains(val *big.Int) bool {
	return p.min.Cmp(val) <= 0 && p.max.Cmp(val) >= 0
}

// Within checks whether this interval is entirely contained within the given
// bounds.  This is the static check used to determine whether a range
// constraint is known, at compile time, never to raise Constraint_Error.
func (p *Interval) Within(lower *big.Int, upper *big.Int) bool {
	return p.min.Cmp(lower) >= 0 && p.max.Cmp(upper) <= 0
}

// Subsumes checks whether this interval entirely contains the other, i.e.
// whether every value of q is also a value of p.
func (p *Interval) Subsumes(q *Interval) bool {
	return p.min.Cmp(&q.min) <= 0 && p.max.Cmp(&q.max) >= 0
}

// Insert widens this interval, if necessary, to also cover the given
// interval.
func (p *Interval) Insert(val *Interval) {
	if p.min.Cmp(&val.min) > 0 {
		p.min.Set(&val.min)
	}

	if p.max.Cmp(&val.max) < 0 {
		p.max.Set(&val.max)
	}
}

// Add computes the interval of sums of a value from p and a value from q.
func (p *Interval) Add(q *Interval) {
	p.min.Add(&p.min, &q.min)
	p.max.Add(&p.max, &q.max)
}

// Sub computes the interval of differences of a value from p and a value
// from q.
func (p *Interval) Sub(q *Interval) {
	min := new(big.Int).Sub(&p.min, &q.max)
	max := new(big.Int).Sub(&p.max, &q.min)
	p.min.Set(min)
	p.max.Set(max)
}

// Mul computes the interval of products of a value from p and a value from
// q.
func (p *Interval) Mul(q *Interval) {
	var x1, x2, x3, x4 big.Int
	//
	x1.Mul(&p.min, &q.min)
	x2.Mul(&p.min, &q.max)
	x3.Mul(&p.max, &q.min)
	x4.Mul(&p.max, &q.max)
	//
	min := bigMin(bigMin(x1, x2), bigMin(x3, x4))
	max := bigMax(bigMax(x1, x2), bigMax(x3, x4))
	//
	p.min.Set(&min)
	p.max.Set(&max)
}

// Div computes the interval of quotients of a value from p and a value from
// q, assuming q does not straddle zero (division is not statically foldable
// when the divisor's range includes zero).
func (p *Interval) Div(q *Interval) bool {
	if q.Contains(big.NewInt(0)) {
		return false
	}

	var x1, x2, x3, x4 big.Int
	//
	x1.Quo(&p.min, &q.min)
	x2.Quo(&p.min, &q.max)
	x3.Quo(&p.max, &q.min)
	x4.Quo(&p.max, &q.max)
	//
	min := bigMin(bigMin(x1, x2), bigMin(x3, x4))
	max := bigMax(bigMax(x1, x2), bigMax(x3, x4))
	//
	p.min.Set(&min)
	p.max.Set(&max)

	return true
}

// Exp raises this interval to a fixed, non-negative exponent.
func (p *Interval) Exp(pow uint) {
	var val Interval
	// Clone p
	val.Set(p)
	//
	for i := uint(1); i < pow; i++ {
		p.Mul(&val)
	}
}

// Clone returns an independent copy of this interval.
func (p *Interval) Clone() *Interval {
	return NewInterval(&p.min, &p.max)
}

func (p *Interval) String() string {
	return fmt.Sprintf("%s..%s", p.min.String(), p.max.String())
}

func bigMin(x1 big.Int, x2 big.Int) big.Int {
	if x1.Cmp(&x2) < 0 {
		return x1
	}

	return x2
}

func bigMax(x1 big.Int, x2 big.Int) big.Int {
	if x1.Cmp(&x2) >= 0 {
		return x1
	}

	return x2
}
