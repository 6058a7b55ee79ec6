package kmer

// window is the sliding state of a k-mer walk. Both registers start at zero
// so their bins can be rolled from the first symbol on.
type window[K any] struct {
	fw, rc     K
	fbin, rbin uint32
	filled     uint
}

// Kmers calls emit for every k-mer of seq with the position of its last
// character, the k-mer (canonicalized if the codec merges reverse complements)
// and its shard bin. Characters outside the alphabet restart the window at the
// next position; sequences shorter than k emit nothing.
func (c *Codec[K]) Kmers(seq []byte, emit func(pos int, km K, bin uint32)) {
	if len(seq) < int(c.k) {
		return
	}
	var w window[K]
	for pos := 0; pos < len(seq); pos++ {
		x, ok := c.alpha.Encode(seq[pos])
		if !ok {
			w = window[K]{}
			continue
		}
		c.slide(&w, x)
		if w.filled < c.k {
			continue
		}
		if c.reverse && w.rc.Less(w.fw) {
			emit(pos, w.rc, w.rbin)
		} else {
			emit(pos, w.fw, w.fbin)
		}
	}
}

func (c *Codec[K]) slide(w *window[K], x uint64) {
	w.fbin = c.bins.Forward(w.fbin, c.symbol(w.fw, c.k-1), x)
	w.fw = c.push(w.fw, x)
	if c.reverse {
		cx := c.alpha.complement(x)
		w.rbin = c.bins.Reverse(w.rbin, c.symbol(w.rc, 0), cx)
		var in K
		w.rc = w.rc.Shr(c.bits).Or(in.OrLow(cx).Shl(c.bits * (c.k - 1)))
	}
	if w.filled < c.k {
		w.filled++
	}
}
