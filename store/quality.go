package store

import (
	"github.com/jcalabro/ksplit/bitvec"
	"github.com/jcalabro/ksplit/bloom"
)

// seenCapacity sizes the bloom prefilter of the duplicate policy.
const seenCapacity = 1 << 20

// qualifier decides which occurrences of a k-mer reach the store.
type qualifier[K any] interface {
	// offer handles one occurrence of km in color by worker w.
	offer(w int, km K, bin uint32, color int)
	// finish ends the current genome of worker w.
	finish(w int)
}

type sink[K any] func(km K, bin uint32, color int)

func newQualifier[K bitvec.Vector[K], C bitvec.Vector[C]](s *Store[K, C], opts Options) qualifier[K] {
	emit := sink[K](s.Emplace)
	switch {
	case opts.Quality < 2:
		return passAll[K]{emit}
	case opts.QualityGlobal:
		return newPooled(emit, opts.Threads, opts.Quality)
	case opts.Quality == 2:
		return newDuplicates(emit, opts.Threads)
	default:
		return newCounter(emit, opts.Threads, opts.Quality)
	}
}

// passAll stores every occurrence.
type passAll[K any] struct {
	emit sink[K]
}

func (p passAll[K]) offer(_ int, km K, bin uint32, color int) { p.emit(km, bin, color) }
func (p passAll[K]) finish(int)                               {}

// duplicates stores a k-mer from its second occurrence in a genome on. Most
// k-mers of a genome occur once, so a bloom filter answers the first
// occurrence without touching the exact set.
type duplicates[K comparable] struct {
	emit  sink[K]
	seen  []map[K]bool // value: already stored
	bloom []*bloom.Filter[K]
}

func newDuplicates[K comparable](emit sink[K], threads int) *duplicates[K] {
	d := &duplicates[K]{
		emit:  emit,
		seen:  make([]map[K]bool, threads),
		bloom: make([]*bloom.Filter[K], threads),
	}
	for i := range d.seen {
		d.seen[i] = make(map[K]bool)
		d.bloom[i] = bloom.New[K](seenCapacity, 0.01)
	}
	return d
}

func (d *duplicates[K]) offer(w int, km K, bin uint32, color int) {
	seen := d.seen[w]
	if !d.bloom[w].TestAndAdd(km) {
		seen[km] = false
		return
	}
	stored, ok := seen[km]
	switch {
	case !ok:
		seen[km] = false
	case !stored:
		seen[km] = true
		d.emit(km, bin, color)
	}
}

func (d *duplicates[K]) finish(w int) {
	clear(d.seen[w])
	d.bloom[w].Clear()
}

// counter stores a k-mer once it occurred q times in a genome.
type counter[K comparable] struct {
	emit   sink[K]
	q      uint32
	counts []map[K]uint32
}

func newCounter[K comparable](emit sink[K], threads, q int) *counter[K] {
	c := &counter[K]{emit: emit, q: uint32(q), counts: make([]map[K]uint32, threads)}
	for i := range c.counts {
		c.counts[i] = make(map[K]uint32)
	}
	return c
}

func (c *counter[K]) offer(w int, km K, bin uint32, color int) {
	counts := c.counts[w]
	n := counts[km]
	if n >= c.q {
		return
	}
	n++
	counts[km] = n
	if n == c.q {
		c.emit(km, bin, color)
	}
}

func (c *counter[K]) finish(w int) {
	clear(c.counts[w])
}

// pending holds the colors of a k-mer that has not reached the threshold yet.
type pending struct {
	bin    uint32
	n      uint32
	colors []int
}

// pooled stores a k-mer once it occurred q times across all genomes read by
// the same worker. Colors seen before the threshold is reached are kept and
// stored together when it is.
type pooled[K comparable] struct {
	emit    sink[K]
	q       uint32
	waiting []map[K]*pending
	passed  []map[K]struct{}
}

func newPooled[K comparable](emit sink[K], threads, q int) *pooled[K] {
	p := &pooled[K]{
		emit:    emit,
		q:       uint32(q),
		waiting: make([]map[K]*pending, threads),
		passed:  make([]map[K]struct{}, threads),
	}
	for i := range p.waiting {
		p.waiting[i] = make(map[K]*pending)
		p.passed[i] = make(map[K]struct{})
	}
	return p
}

func (p *pooled[K]) offer(w int, km K, bin uint32, color int) {
	if _, ok := p.passed[w][km]; ok {
		p.emit(km, bin, color)
		return
	}
	waiting := p.waiting[w]
	pd, ok := waiting[km]
	if !ok {
		pd = &pending{bin: bin}
		waiting[km] = pd
	}
	pd.n++
	if len(pd.colors) == 0 || pd.colors[len(pd.colors)-1] != color {
		pd.colors = append(pd.colors, color)
	}
	if pd.n < p.q {
		return
	}
	for _, c := range pd.colors {
		p.emit(km, pd.bin, c)
	}
	delete(waiting, km)
	p.passed[w][km] = struct{}{}
}

func (p *pooled[K]) finish(int) {}
