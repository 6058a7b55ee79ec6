package bitvec

// Space fixes the number of significant bits of a vector and the mask derived
// from it. The zero Space has no significant bits.
type Space[V Vector[V]] struct {
	n    uint
	mask V
}

// NewSpace returns the space of the low n bits of V. n must not exceed the
// capacity of V.
func NewSpace[V Vector[V]](n uint) Space[V] {
	var zero V
	mask := zero
	if n > 0 {
		mask = zero.Not().Shr(zero.Cap() - n)
	}
	return Space[V]{n: n, mask: mask}
}

// SpaceOf returns a space whose significant bits are exactly the bits set in
// mask. The bits need not be contiguous.
func SpaceOf[V Vector[V]](mask V) Space[V] {
	return Space[V]{n: uint(mask.OnesCount()), mask: mask}
}

// Width returns the number of significant bits.
func (s Space[V]) Width() uint { return s.n }

// Mask returns the significant bits.
func (s Space[V]) Mask() V { return s.mask }

// Complement flips every significant bit of v and clears the rest.
func (s Space[V]) Complement(v V) V {
	return v.Not().And(s.mask)
}

// Contains reports whether v has no bits outside the space.
func (s Space[V]) Contains(v V) bool {
	return v.AndNot(s.mask).IsZero()
}

// Full reports whether v covers every significant bit.
func (s Space[V]) Full(v V) bool {
	return v.And(s.mask) == s.mask
}

// ShiftAppend shifts v left by one and appends bit at position zero. Bits
// pushed out of the space are dropped.
func (s Space[V]) ShiftAppend(v V, bit bool) V {
	v = v.Shl(1)
	if bit {
		v = v.OrLow(1)
	}
	return v.And(s.mask)
}

// ShiftPop removes the bit at position zero and shifts the rest down.
func (s Space[V]) ShiftPop(v V) (V, bool) {
	return v.Shr(1), v.Test(0)
}
