package kmer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jcalabro/ksplit/bitvec"
)

// ErrLength is returned when a k-mer length is not positive or does not fit
// into the chosen representation.
var ErrLength = errors.New("kmer: invalid k-mer length")

// Codec converts between characters and k-mers of a fixed length.
type Codec[K bitvec.Vector[K]] struct {
	alpha   *Alphabet
	k       uint
	bits    uint
	mask    K
	reverse bool
	bins    Bins
}

// New returns a codec for k-mers of length k over alpha. If reverse is set and
// the alphabet has complements, k-mers are canonicalized to the smaller of
// the forward and reverse complement form. Shard bins are taken modulo q.
func New[K bitvec.Vector[K]](alpha *Alphabet, k int, reverse bool, q uint64) (*Codec[K], error) {
	var zero K
	if k < 1 || k > alpha.MaxK(zero.Cap()) {
		return nil, fmt.Errorf("%w: %d %s k-mers do not fit in %d bits",
			ErrLength, k, alpha.Name(), zero.Cap())
	}
	return &Codec[K]{
		alpha:   alpha,
		k:       uint(k),
		bits:    alpha.bits,
		mask:    bitvec.NewSpace[K](alpha.bits * uint(k)).Mask(),
		reverse: reverse && alpha.complementable,
		bins:    NewBins(q, alpha.bits, k),
	}, nil
}

// K returns the k-mer length.
func (c *Codec[K]) K() int { return int(c.k) }

// Alphabet returns the alphabet of the codec.
func (c *Codec[K]) Alphabet() *Alphabet { return c.alpha }

// Canonical reports whether k-mers are merged with their reverse complement.
func (c *Codec[K]) Canonical() bool { return c.reverse }

// Bins returns the shard mapping of the codec.
func (c *Codec[K]) Bins() Bins { return c.bins }

// Shift appends character ch to the low end of km and drops the symbol that
// leaves the window. It returns false if ch is not part of the alphabet, in
// which case km is returned unchanged.
func (c *Codec[K]) Shift(km K, ch byte) (K, bool) {
	x, ok := c.alpha.Encode(ch)
	if !ok {
		return km, false
	}
	return c.push(km, x), true
}

func (c *Codec[K]) push(km K, x uint64) K {
	return km.Shl(c.bits).OrLow(x).And(c.mask)
}

// symbol returns the i-th symbol counted from the low end.
func (c *Codec[K]) symbol(km K, i uint) uint64 {
	return km.Bits(i*c.bits, c.bits)
}

// ReverseComplement complements every symbol of km and reverses their order.
// For alphabets without complements km is returned unchanged.
func (c *Codec[K]) ReverseComplement(km K) K {
	if !c.alpha.complementable {
		return km
	}
	var rc K
	for i := uint(0); i < c.k; i++ {
		rc = rc.Shl(c.bits).OrLow(c.alpha.complement(c.symbol(km, i)))
	}
	return rc
}

// ReverseRepresent returns the reverse complement of km and true if it is
// smaller than km, and km and false otherwise. Amino acid k-mers are never
// inverted.
func (c *Codec[K]) ReverseRepresent(km K) (K, bool) {
	if !c.alpha.complementable {
		return km, false
	}
	if rc := c.ReverseComplement(km); rc.Less(km) {
		return rc, true
	}
	return km, false
}

// Bin returns the shard of km, computed symbol by symbol.
func (c *Codec[K]) Bin(km K) uint32 {
	var r uint64
	for i := c.k; i > 0; i-- {
		r = (r*c.bins.step + c.symbol(km, i-1)) % c.bins.q
	}
	return uint32(r)
}

// Encode returns the k-mer spelled by s, which must have exactly k valid
// characters. The k-mer is canonicalized if the codec merges reverse
// complements.
func (c *Codec[K]) Encode(s string) (K, error) {
	var km K
	if len(s) != int(c.k) {
		return km, fmt.Errorf("%w: %q has length %d, want %d", ErrLength, s, len(s), c.k)
	}
	for i := 0; i < len(s); i++ {
		var ok bool
		if km, ok = c.Shift(km, s[i]); !ok {
			return km, fmt.Errorf("kmer: invalid %s character %q in %q", c.alpha.Name(), s[i], s)
		}
	}
	if c.reverse {
		km, _ = c.ReverseRepresent(km)
	}
	return km, nil
}

// Decode spells km as upper case characters.
func (c *Codec[K]) Decode(km K) string {
	var sb strings.Builder
	sb.Grow(int(c.k))
	for i := c.k; i > 0; i-- {
		sb.WriteByte(c.alpha.Letter(c.symbol(km, i-1)))
	}
	return sb.String()
}
