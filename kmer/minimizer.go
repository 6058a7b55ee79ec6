package kmer

import (
	"github.com/google/btree"

	"github.com/jcalabro/ksplit/bitvec"
)

type ranked[K bitvec.Vector[K]] struct {
	km  K
	bin uint32
	pos int
}

// Minimizer keeps the smallest k-mer among the last m consecutive k-mers of a
// walk. K-mers are kept twice: in sequence order to find the one leaving the
// window, and in value order to find the minimum.
type Minimizer[K bitvec.Vector[K]] struct {
	m       int
	queue   []ranked[K] // ring buffer in sequence order
	head    int
	size    int
	order   *btree.BTreeG[ranked[K]]
	last    int
	lastMin int
}

// NewMinimizer returns a minimizer over windows of m k-mers.
func NewMinimizer[K bitvec.Vector[K]](m int) *Minimizer[K] {
	if m < 1 {
		m = 1
	}
	return &Minimizer[K]{
		m:     m,
		queue: make([]ranked[K], m),
		order: btree.NewG(16, func(a, b ranked[K]) bool {
			if a.km != b.km {
				return a.km.Less(b.km)
			}
			return a.pos < b.pos
		}),
		last:    -2,
		lastMin: -1,
	}
}

// Reset forgets every k-mer seen so far.
func (w *Minimizer[K]) Reset() {
	w.order.Clear(false)
	w.head, w.size = 0, 0
	w.last, w.lastMin = -2, -1
}

// Push adds the k-mer ending at pos. A position that does not directly follow
// the previous one starts a new window. Once the window is full Push returns
// its smallest k-mer, or false if that minimizer was already returned for an
// earlier window.
func (w *Minimizer[K]) Push(pos int, km K, bin uint32) (K, uint32, bool) {
	if pos != w.last+1 {
		w.Reset()
	}
	w.last = pos

	if w.size == w.m {
		w.order.Delete(w.queue[w.head])
		w.head = (w.head + 1) % w.m
		w.size--
	}
	r := ranked[K]{km: km, bin: bin, pos: pos}
	w.queue[(w.head+w.size)%w.m] = r
	w.size++
	w.order.ReplaceOrInsert(r)

	if w.size < w.m {
		var zero K
		return zero, 0, false
	}
	best, _ := w.order.Min()
	if best.pos == w.lastMin {
		return best.km, best.bin, false
	}
	w.lastMin = best.pos
	return best.km, best.bin, true
}
