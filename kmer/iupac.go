package kmer

import (
	"slices"

	"github.com/jcalabro/ksplit/bitvec"
)

const (
	baseA = 1 << iota
	baseC
	baseG
	baseT
)

// ambiguity maps IUPAC nucleotide codes to the set of bases they stand for.
var ambiguity = func() (t [256]uint8) {
	for c, m := range map[byte]uint8{
		'A': baseA, 'C': baseC, 'G': baseG, 'T': baseT, 'U': baseT,
		'R': baseA | baseG, 'Y': baseC | baseT, 'S': baseC | baseG,
		'W': baseA | baseT, 'K': baseG | baseT, 'M': baseA | baseC,
		'B': baseC | baseG | baseT, 'D': baseA | baseG | baseT,
		'H': baseA | baseC | baseT, 'V': baseA | baseC | baseG,
		'N': baseA | baseC | baseG | baseT,
	} {
		t[c] = m
		t[lower(c)] = m
	}
	return t
}()

func isGap(c byte) bool { return c == '.' || c == '-' }

// Ambiguous walks the k-mers of a nucleotide sequence that may contain IUPAC
// ambiguity codes. For every window it calls emit with the set of concrete
// k-mers the window stands for, canonicalized, deduplicated and sorted in
// ascending order. The set is only valid during the call.
//
// A window is resolved only if the product of the multiplicities of its k
// characters is at most maxIUPAC. Once a window exceeds the bound the walk
// waits until the product drops back and then restarts at the first position
// of the current window. Gaps ('.', '-') and characters that are no IUPAC code
// restart the walk at the next position.
//
// For alphabets without ambiguity codes every window yields a single k-mer.
func (c *Codec[K]) Ambiguous(seq []byte, maxIUPAC uint64, emit func(pos int, set []K)) {
	if len(seq) < int(c.k) {
		return
	}
	if !c.alpha.complementable {
		one := make([]K, 1)
		c.Kmers(seq, func(pos int, km K, _ uint32) {
			one[0] = km
			emit(pos, one)
		})
		return
	}
	x := &expansion[K]{
		codec: c,
		limit: float64(maxIUPAC),
		ping:  make(map[K]struct{}),
		pong:  make(map[K]struct{}),
	}
	for begin := 0; begin < len(seq); {
		begin = x.walk(seq, begin, emit)
	}
}

type expansion[K bitvec.Vector[K]] struct {
	codec      *Codec[K]
	limit      float64
	ping, pong map[K]struct{}
	factors    []float64
	out        []K
}

// walk resolves windows starting at begin and returns the position at which
// the next walk has to start.
func (x *expansion[K]) walk(seq []byte, begin int, emit func(int, []K)) int {
	c := x.codec
	clear(x.ping)
	clear(x.pong)
	var zero K
	x.ping[zero] = struct{}{}
	x.factors = x.factors[:0]
	product := 1.0
	wait := false

	for pos := begin; pos < len(seq); pos++ {
		bases := ambiguity[seq[pos]]
		if isGap(seq[pos]) || bases == 0 {
			return pos + 1
		}

		f := float64(popcount4(bases))
		x.factors = append(x.factors, f)
		product *= f
		if len(x.factors) > int(c.k) {
			product /= x.factors[0]
			x.factors = x.factors[1:]
		}
		if product > x.limit {
			wait = true
			continue
		}
		if wait {
			return pos - int(c.k) + 1
		}

		x.shift(bases)
		if pos+1-begin < int(c.k) {
			continue
		}
		x.out = x.out[:0]
		for km := range x.ping {
			if c.reverse {
				km, _ = c.ReverseRepresent(km)
			}
			x.out = append(x.out, km)
		}
		slices.SortFunc(x.out, compare[K])
		x.out = slices.Compact(x.out)
		emit(pos, x.out)
	}
	return len(seq)
}

// shift extends every k-mer of ping by each base in bases and swaps the sets.
func (x *expansion[K]) shift(bases uint8) {
	c := x.codec
	clear(x.pong)
	for km := range x.ping {
		for code := uint64(0); code < 4; code++ {
			if bases&(1<<code) != 0 {
				x.pong[c.push(km, code)] = struct{}{}
			}
		}
	}
	x.ping, x.pong = x.pong, x.ping
}

func popcount4(m uint8) int {
	return int(m&1 + m>>1&1 + m>>2&1 + m>>3&1)
}

func compare[K interface{ Less(K) bool }](a, b K) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	}
	return 0
}
