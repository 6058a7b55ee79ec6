package store

import (
	"sync"
	"sync/atomic"

	"github.com/jcalabro/ksplit/bloom"
)

// blacklistCapacity sizes the bloom prefilter when no size hint is given.
const blacklistCapacity = 1 << 20

// Blacklist is a set of k-mers excluded from the store. A concurrent bloom
// filter rejects most lookups before the exact set is consulted.
type Blacklist[K comparable] struct {
	filter *bloom.AtomicFilter[K]
	mu     sync.RWMutex
	exact  map[K]struct{}
	size   atomic.Int64
}

// NewBlacklist returns an empty blacklist sized for about n k-mers.
func NewBlacklist[K comparable](n uint64) *Blacklist[K] {
	if n == 0 {
		n = blacklistCapacity
	}
	return &Blacklist[K]{
		filter: bloom.NewAtomic[K](n, 0.001),
		exact:  make(map[K]struct{}),
	}
}

// Add inserts km. It is safe for concurrent use.
func (b *Blacklist[K]) Add(km K) {
	b.mu.Lock()
	if _, ok := b.exact[km]; !ok {
		b.exact[km] = struct{}{}
		b.size.Add(1)
	}
	b.mu.Unlock()
	b.filter.Add(km)
}

// Contains reports whether km is blacklisted.
func (b *Blacklist[K]) Contains(km K) bool {
	if b.size.Load() == 0 || !b.filter.Test(km) {
		return false
	}
	b.mu.RLock()
	_, ok := b.exact[km]
	b.mu.RUnlock()
	return ok
}

// Len returns the number of blacklisted k-mers.
func (b *Blacklist[K]) Len() int { return int(b.size.Load()) }
