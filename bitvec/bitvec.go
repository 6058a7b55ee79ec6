package bitvec

import "math/bits"

// Vector is the set of operations shared by all fixed-width bit vectors.
// Every operation returns a new value; vectors are never mutated in place.
type Vector[V any] interface {
	comparable

	// Set returns the vector with the bit at pos set to one.
	Set(pos uint) V
	// Unset returns the vector with the bit at pos set to zero.
	Unset(pos uint) V
	// Test reports whether the bit at pos is set.
	Test(pos uint) bool

	Shl(n uint) V
	Shr(n uint) V
	And(o V) V
	Or(o V) V
	Xor(o V) V
	AndNot(o V) V
	Not() V

	// OnesCount returns the number of set bits.
	OnesCount() int
	// TrailingZeros returns the index of the lowest set bit, or -1 if the
	// vector is zero.
	TrailingZeros() int
	// Less compares two vectors as unsigned integers.
	Less(o V) bool
	IsZero() bool

	// Bits extracts width (1..64) bits starting at pos.
	Bits(pos, width uint) uint64
	// OrLow ors x into the lowest word.
	OrLow(x uint64) V
	// Words returns the backing words, least significant first.
	Words() []uint64
	// Cap returns the number of bits the representation can hold.
	Cap() uint
}

// W64 is a single-word bit vector.
type W64 uint64

func (v W64) Set(pos uint) W64   { return v | 1<<pos }
func (v W64) Unset(pos uint) W64 { return v &^ (1 << pos) }
func (v W64) Test(pos uint) bool { return v>>pos&1 == 1 }
func (v W64) Shl(n uint) W64     { return v << n }
func (v W64) Shr(n uint) W64     { return v >> n }
func (v W64) And(o W64) W64      { return v & o }
func (v W64) Or(o W64) W64       { return v | o }
func (v W64) Xor(o W64) W64      { return v ^ o }
func (v W64) AndNot(o W64) W64   { return v &^ o }
func (v W64) Not() W64           { return ^v }
func (v W64) OnesCount() int     { return bits.OnesCount64(uint64(v)) }
func (v W64) Less(o W64) bool    { return v < o }
func (v W64) IsZero() bool       { return v == 0 }
func (v W64) OrLow(x uint64) W64 { return v | W64(x) }
func (v W64) Words() []uint64    { return []uint64{uint64(v)} }
func (v W64) Cap() uint          { return 64 }
func (v W64) Bits(pos, width uint) uint64 {
	return uint64(v>>pos) & lowMask(width)
}

func (v W64) TrailingZeros() int {
	if v == 0 {
		return -1
	}
	return bits.TrailingZeros64(uint64(v))
}

// lowMask returns a word with the lowest width bits set, 1 <= width <= 64.
func lowMask(width uint) uint64 {
	return ^uint64(0) >> (64 - width)
}
