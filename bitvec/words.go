package bitvec

import "math/bits"

// W128 is a two-word bit vector.
type W128 [2]uint64

// W256 is a four-word bit vector.
type W256 [4]uint64

// W512 is an eight-word bit vector.
type W512 [8]uint64

func (v W128) Set(pos uint) W128   { v[pos/64] |= 1 << (pos % 64); return v }
func (v W128) Unset(pos uint) W128 { v[pos/64] &^= 1 << (pos % 64); return v }
func (v W128) Test(pos uint) bool  { return v[pos/64]>>(pos%64)&1 == 1 }
func (v W128) Shl(n uint) W128     { shl(v[:], n); return v }
func (v W128) Shr(n uint) W128     { shr(v[:], n); return v }
func (v W128) And(o W128) W128     { and(v[:], o[:]); return v }
func (v W128) Or(o W128) W128      { or(v[:], o[:]); return v }
func (v W128) Xor(o W128) W128     { xor(v[:], o[:]); return v }
func (v W128) AndNot(o W128) W128  { andNot(v[:], o[:]); return v }
func (v W128) Not() W128           { not(v[:]); return v }
func (v W128) OnesCount() int      { return onesCount(v[:]) }
func (v W128) TrailingZeros() int  { return trailingZeros(v[:]) }
func (v W128) Less(o W128) bool    { return less(v[:], o[:]) }
func (v W128) IsZero() bool        { return v == W128{} }
func (v W128) OrLow(x uint64) W128 { v[0] |= x; return v }
func (v W128) Words() []uint64     { return v[:] }
func (v W128) Cap() uint           { return 128 }

func (v W128) Bits(pos, width uint) uint64 { return extract(v[:], pos, width) }

func (v W256) Set(pos uint) W256   { v[pos/64] |= 1 << (pos % 64); return v }
func (v W256) Unset(pos uint) W256 { v[pos/64] &^= 1 << (pos % 64); return v }
func (v W256) Test(pos uint) bool  { return v[pos/64]>>(pos%64)&1 == 1 }
func (v W256) Shl(n uint) W256     { shl(v[:], n); return v }
func (v W256) Shr(n uint) W256     { shr(v[:], n); return v }
func (v W256) And(o W256) W256     { and(v[:], o[:]); return v }
func (v W256) Or(o W256) W256      { or(v[:], o[:]); return v }
func (v W256) Xor(o W256) W256     { xor(v[:], o[:]); return v }
func (v W256) AndNot(o W256) W256  { andNot(v[:], o[:]); return v }
func (v W256) Not() W256           { not(v[:]); return v }
func (v W256) OnesCount() int      { return onesCount(v[:]) }
func (v W256) TrailingZeros() int  { return trailingZeros(v[:]) }
func (v W256) Less(o W256) bool    { return less(v[:], o[:]) }
func (v W256) IsZero() bool        { return v == W256{} }
func (v W256) OrLow(x uint64) W256 { v[0] |= x; return v }
func (v W256) Words() []uint64     { return v[:] }
func (v W256) Cap() uint           { return 256 }

func (v W256) Bits(pos, width uint) uint64 { return extract(v[:], pos, width) }

func (v W512) Set(pos uint) W512   { v[pos/64] |= 1 << (pos % 64); return v }
func (v W512) Unset(pos uint) W512 { v[pos/64] &^= 1 << (pos % 64); return v }
func (v W512) Test(pos uint) bool  { return v[pos/64]>>(pos%64)&1 == 1 }
func (v W512) Shl(n uint) W512     { shl(v[:], n); return v }
func (v W512) Shr(n uint) W512     { shr(v[:], n); return v }
func (v W512) And(o W512) W512     { and(v[:], o[:]); return v }
func (v W512) Or(o W512) W512      { or(v[:], o[:]); return v }
func (v W512) Xor(o W512) W512     { xor(v[:], o[:]); return v }
func (v W512) AndNot(o W512) W512  { andNot(v[:], o[:]); return v }
func (v W512) Not() W512           { not(v[:]); return v }
func (v W512) OnesCount() int      { return onesCount(v[:]) }
func (v W512) TrailingZeros() int  { return trailingZeros(v[:]) }
func (v W512) Less(o W512) bool    { return less(v[:], o[:]) }
func (v W512) IsZero() bool        { return v == W512{} }
func (v W512) OrLow(x uint64) W512 { v[0] |= x; return v }
func (v W512) Words() []uint64     { return v[:] }
func (v W512) Cap() uint           { return 512 }

func (v W512) Bits(pos, width uint) uint64 { return extract(v[:], pos, width) }

// shl shifts w left by n bits in place, dropping bits shifted past the top.
func shl(w []uint64, n uint) {
	if n == 0 {
		return
	}
	ws, bs := int(n/64), n%64
	for i := len(w) - 1; i >= 0; i-- {
		var x uint64
		if j := i - ws; j >= 0 {
			x = w[j] << bs
			if bs != 0 && j > 0 {
				x |= w[j-1] >> (64 - bs)
			}
		}
		w[i] = x
	}
}

// shr shifts w right by n bits in place.
func shr(w []uint64, n uint) {
	if n == 0 {
		return
	}
	ws, bs := int(n/64), n%64
	for i := range w {
		var x uint64
		if j := i + ws; j < len(w) {
			x = w[j] >> bs
			if bs != 0 && j+1 < len(w) {
				x |= w[j+1] << (64 - bs)
			}
		}
		w[i] = x
	}
}

func and(w, o []uint64) {
	for i := range w {
		w[i] &= o[i]
	}
}

func or(w, o []uint64) {
	for i := range w {
		w[i] |= o[i]
	}
}

func xor(w, o []uint64) {
	for i := range w {
		w[i] ^= o[i]
	}
}

func andNot(w, o []uint64) {
	for i := range w {
		w[i] &^= o[i]
	}
}

func not(w []uint64) {
	for i := range w {
		w[i] = ^w[i]
	}
}

func onesCount(w []uint64) int {
	var n int
	for _, x := range w {
		n += bits.OnesCount64(x)
	}
	return n
}

func trailingZeros(w []uint64) int {
	for i, x := range w {
		if x != 0 {
			return i*64 + bits.TrailingZeros64(x)
		}
	}
	return -1
}

// less compares from the most significant word down.
func less(w, o []uint64) bool {
	for i := len(w) - 1; i >= 0; i-- {
		if w[i] != o[i] {
			return w[i] < o[i]
		}
	}
	return false
}

func extract(w []uint64, pos, width uint) uint64 {
	i, off := pos/64, pos%64
	x := w[i] >> off
	if off+width > 64 && int(i)+1 < len(w) {
		x |= w[i+1] << (64 - off)
	}
	return x & lowMask(width)
}
