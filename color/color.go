// Package color implements the algebra of color sets: bit sets with one bit
// per genome, where a set and its complement stand for the same split.
package color

import (
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/jcalabro/ksplit/bitvec"
)

// Space is the set of genomes color sets are taken from. Complements and
// representatives are computed with respect to it.
type Space[C bitvec.Vector[C]] struct {
	bitvec.Space[C]
}

// NewSpace returns the space of genomes 0..n-1.
func NewSpace[C bitvec.Vector[C]](n int) Space[C] {
	return Space[C]{bitvec.NewSpace[C](uint(n))}
}

// Within returns the space of the genomes in mask.
func Within[C bitvec.Vector[C]](mask C) Space[C] {
	return Space[C]{bitvec.SpaceOf(mask)}
}

// Represent returns the representative of the split c stands for, and whether
// c had to be complemented. The side with fewer genomes represents the split;
// on a tie the numerically smaller side does. Bits outside the space are
// ignored.
func (s Space[C]) Represent(c C) (C, bool) {
	c = c.And(s.Mask())
	count, n := uint(c.OnesCount()), s.Width()
	switch {
	case 2*count < n:
		return c, false
	case 2*count > n:
		return s.Complement(c), true
	}
	if comp := s.Complement(c); comp.Less(c) {
		return comp, true
	}
	return c, false
}

// IsRepresentative reports whether c is its own representative.
func (s Space[C]) IsRepresentative(c C) bool {
	r, flipped := s.Represent(c)
	return !flipped && r == c
}

// IsCompatible reports whether the splits c1 and c2 can be displayed in the
// same tree: at least one of the four intersections of their sides is empty.
func (s Space[C]) IsCompatible(c1, c2 C) bool {
	n1, n2 := s.Complement(c1), s.Complement(c2)
	c1, c2 = c1.And(s.Mask()), c2.And(s.Mask())
	return c1.And(c2).IsZero() || c1.And(n2).IsZero() ||
		n1.And(c2).IsZero() || n1.And(n2).IsZero()
}

// IsWeaklyCompatible reports whether the three splits are weakly compatible.
func (s Space[C]) IsWeaklyCompatible(c1, c2, c3 C) bool {
	n1, n2, n3 := s.Complement(c1), s.Complement(c2), s.Complement(c3)
	c1, c2, c3 = c1.And(s.Mask()), c2.And(s.Mask()), c3.And(s.Mask())
	empty := func(a, b, c C) bool { return a.And(b).And(c).IsZero() }
	return (empty(c1, c2, c3) || empty(c1, n2, n3) || empty(n1, c2, n3) || empty(n1, n2, c3)) &&
		(empty(n1, n2, n3) || empty(n1, c2, c3) || empty(c1, n2, c3) || empty(c1, c2, n3))
}

// Trivial reports whether c separates fewer than two genomes from the rest.
func (s Space[C]) Trivial(c C) bool {
	c = c.And(s.Mask())
	count := c.OnesCount()
	return count < 2 || int(s.Width())-count < 2
}

// Indices returns the genomes in c in ascending order.
func Indices[C bitvec.Vector[C]](c C) []int {
	b := bitset.From(c.Words())
	out := make([]int, 0, b.Count())
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		out = append(out, int(i))
	}
	return out
}

// Of returns the color set of the given genomes.
func Of[C bitvec.Vector[C]](genomes ...int) C {
	var c C
	for _, g := range genomes {
		c = c.Set(uint(g))
	}
	return c
}

// Format spells c as one '0' or '1' per genome of the space, genome 0 first.
func (s Space[C]) Format(c C) string {
	var sb strings.Builder
	sb.Grow(int(s.Width()))
	for i := uint(0); i < s.Width(); i++ {
		if c.Test(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
