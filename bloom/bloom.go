// Package bloom implements cache-line blocked bloom filters over k-mers.
//
// Each filter divides memory into 512-bit blocks. A k-mer hashes to one block
// and sets k bits inside it, one per segment of distinct size, so every
// membership test touches a single cache line. Filters are used as fast
// negative checks in front of exact sets: a negative answer is final, a
// positive answer must be confirmed.
package bloom

import (
	"math/bits"
	"sync/atomic"
)

// Filter is a bloom filter for use by a single goroutine.
type Filter[T comparable] struct {
	layout
	raw   []byte
	words []uint64
	count uint64
}

// New returns a filter sized for n k-mers at false positive rate p.
func New[T comparable](n uint64, p float64) *Filter[T] {
	numBlocks, k := Params(n, p)
	return NewWithParams[T](numBlocks, k)
}

// NewWithParams returns a filter of numBlocks blocks and k hash functions.
// Unsupported k fall back to 7.
func NewWithParams[T comparable](numBlocks uint64, k uint32) *Filter[T] {
	l := newLayout(numBlocks, k)
	raw, words := alignedWords[uint64](int(l.numBlocks * BlockWords))
	return &Filter[T]{layout: l, raw: raw, words: words}
}

// Add inserts km.
func (f *Filter[T]) Add(km T) {
	h := hashKey(&km)
	for i := uint32(0); i < f.k; i++ {
		w, m := f.bit(h, i)
		f.words[w] |= m
	}
	f.count++
}

// Test reports whether km may have been added.
func (f *Filter[T]) Test(km T) bool {
	h := hashKey(&km)
	for i := uint32(0); i < f.k; i++ {
		if w, m := f.bit(h, i); f.words[w]&m == 0 {
			return false
		}
	}
	return true
}

// TestAndAdd inserts km and reports whether it may have been present before.
func (f *Filter[T]) TestAndAdd(km T) bool {
	h := hashKey(&km)
	present := true
	for i := uint32(0); i < f.k; i++ {
		w, m := f.bit(h, i)
		if f.words[w]&m == 0 {
			present = false
			f.words[w] |= m
		}
	}
	f.count++
	return present
}

// Clear removes every k-mer.
func (f *Filter[T]) Clear() {
	clear(f.words)
	f.count = 0
}

// Cap returns the capacity in bits.
func (f *Filter[T]) Cap() uint64 { return f.numBlocks * BlockBits }

// K returns the number of hash functions.
func (f *Filter[T]) K() uint32 { return f.k }

// Count returns the number of insertions.
func (f *Filter[T]) Count() uint64 { return f.count }

// FillRatio returns the fraction of bits set.
func (f *Filter[T]) FillRatio() float64 {
	var set int
	for _, w := range f.words {
		set += bits.OnesCount64(w)
	}
	return float64(set) / float64(f.Cap())
}

// FalsePositiveRate estimates the current false positive rate.
func (f *Filter[T]) FalsePositiveRate() float64 {
	return FalsePositiveRate(f.numBlocks, f.k, f.count)
}

// AtomicFilter is a bloom filter safe for concurrent use.
type AtomicFilter[T comparable] struct {
	layout
	raw   []byte
	words []atomic.Uint64
	count atomic.Uint64
}

// NewAtomic returns a concurrent filter sized for n k-mers at false positive
// rate p.
func NewAtomic[T comparable](n uint64, p float64) *AtomicFilter[T] {
	numBlocks, k := Params(n, p)
	l := newLayout(numBlocks, k)
	raw, words := alignedWords[atomic.Uint64](int(l.numBlocks * BlockWords))
	return &AtomicFilter[T]{layout: l, raw: raw, words: words}
}

// Add inserts km.
func (f *AtomicFilter[T]) Add(km T) {
	h := hashKey(&km)
	for i := uint32(0); i < f.k; i++ {
		w, m := f.bit(h, i)
		f.words[w].Or(m)
	}
	f.count.Add(1)
}

// Test reports whether km may have been added. It is safe to call
// concurrently with Add.
func (f *AtomicFilter[T]) Test(km T) bool {
	h := hashKey(&km)
	for i := uint32(0); i < f.k; i++ {
		if w, m := f.bit(h, i); f.words[w].Load()&m == 0 {
			return false
		}
	}
	return true
}

// Cap returns the capacity in bits.
func (f *AtomicFilter[T]) Cap() uint64 { return f.numBlocks * BlockBits }

// Count returns the number of insertions.
func (f *AtomicFilter[T]) Count() uint64 { return f.count.Load() }

// FalsePositiveRate estimates the current false positive rate.
func (f *AtomicFilter[T]) FalsePositiveRate() float64 {
	return FalsePositiveRate(f.numBlocks, f.k, f.count.Load())
}
