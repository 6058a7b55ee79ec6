// Package store accumulates, for every k-mer, the set of genomes (colors) it
// occurs in.
//
// The key space is split into a fixed number of shards, each guarded by its
// own spin lock, so concurrent workers only contend when they hit the same
// shard. A k-mer seen in a single genome is kept in a singleton table and only
// promoted to the color table once a second genome reports it.
package store

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/jcalabro/ksplit/bitvec"
	"github.com/jcalabro/ksplit/kmer"
)

// Shards is the number of independently locked partitions of the k-mer space.
// It is prime so k-mer values spread evenly over it.
const Shards = 1021

var (
	// ErrColor is returned when a store cannot hold the requested number of
	// colors.
	ErrColor = errors.New("store: invalid number of colors")

	// ErrThreads is returned when the number of workers is not positive.
	ErrThreads = errors.New("store: invalid number of workers")
)

// Options configures ingestion.
type Options struct {
	// Threads is the number of workers; every call that takes a worker
	// index expects a value in [0, Threads).
	Threads int
	// Window is the number of consecutive k-mers a minimizer is chosen
	// from. Values below 2 disable minimizers.
	Window int
	// MaxIUPAC bounds the number of concrete k-mers an ambiguous window may
	// stand for. Values below 2 disable IUPAC resolution.
	MaxIUPAC uint64
	// Quality is the number of occurrences a k-mer needs before it is
	// stored. Values below 2 store every occurrence.
	Quality int
	// QualityGlobal counts occurrences across all genomes a worker reads
	// instead of per genome.
	QualityGlobal bool
	// CountKmers keeps the number of distinct k-mers per color.
	CountKmers bool
}

// spinLock is a test-and-set lock that yields the processor while it waits.
// Critical sections are single map operations.
type spinLock struct {
	held atomic.Bool
}

func (l *spinLock) Lock() {
	for !l.held.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

func (l *spinLock) Unlock() {
	l.held.Store(false)
}

type shard[K, C comparable] struct {
	lock       spinLock
	colors     map[K]C
	singletons map[K]uint32
}

// Store maps k-mers of type K to color sets of type C.
type Store[K bitvec.Vector[K], C bitvec.Vector[C]] struct {
	codec   *kmer.Codec[K]
	genomes int
	opts    Options
	log     logrus.FieldLogger

	shards     []shard[K, C]
	singletons []atomic.Int64
	counts     []atomic.Int64

	blacklist *Blacklist[K]
	quality   qualifier[K]
	workers   []worker[K]
	add       func(w int, seq []byte, color int)
}

// New returns an empty store for the given number of genomes. The codec
// fixes the k-mer length and alphabet; its bins must use Shards shards.
func New[K bitvec.Vector[K], C bitvec.Vector[C]](codec *kmer.Codec[K], genomes int, opts Options, log logrus.FieldLogger) (*Store[K, C], error) {
	var zero C
	if genomes < 1 || uint(genomes) > zero.Cap() {
		return nil, fmt.Errorf("%w: %d genomes do not fit in %d bits", ErrColor, genomes, zero.Cap())
	}
	if opts.Threads < 1 {
		return nil, fmt.Errorf("%w: %d", ErrThreads, opts.Threads)
	}
	if q := codec.Bins().Q(); q != Shards {
		return nil, fmt.Errorf("store: codec maps k-mers to %d bins, want %d", q, Shards)
	}

	s := &Store[K, C]{
		codec:      codec,
		genomes:    genomes,
		opts:       opts,
		log:        log,
		shards:     make([]shard[K, C], Shards),
		singletons: make([]atomic.Int64, genomes),
		blacklist:  NewBlacklist[K](0),
		workers:    make([]worker[K], opts.Threads),
	}
	for i := range s.shards {
		s.shards[i].colors = make(map[K]C)
		s.shards[i].singletons = make(map[K]uint32)
	}
	if opts.CountKmers {
		s.counts = make([]atomic.Int64, genomes)
	}
	s.quality = newQualifier(s, opts)
	s.add = s.selectMode()

	log.WithFields(logrus.Fields{
		"k":        codec.K(),
		"alphabet": codec.Alphabet().Name(),
		"merged":   codec.Canonical(),
		"genomes":  genomes,
		"workers":  opts.Threads,
		"quality":  opts.Quality,
	}).Debug("store ready")
	return s, nil
}

// Codec returns the codec the store extracts k-mers with.
func (s *Store[K, C]) Codec() *kmer.Codec[K] { return s.codec }

// Genomes returns the number of colors.
func (s *Store[K, C]) Genomes() int { return s.genomes }

// Emplace records that km, which maps to shard bin, occurs in color.
//
// A k-mer already in the color table gains the color. A singleton of another
// color is promoted to the color table with both colors. A singleton of the
// same color is left alone. An unseen k-mer becomes a singleton.
func (s *Store[K, C]) Emplace(km K, bin uint32, color int) {
	sh := &s.shards[bin]
	var promoted, fresh, first bool
	var previous uint32

	sh.lock.Lock()
	if c, ok := sh.colors[km]; ok {
		first = !c.Test(uint(color))
		sh.colors[km] = c.Set(uint(color))
	} else if old, ok := sh.singletons[km]; ok {
		if old != uint32(color) {
			var c C
			sh.colors[km] = c.Set(uint(old)).Set(uint(color))
			delete(sh.singletons, km)
			promoted, first, previous = true, true, old
		}
	} else {
		sh.singletons[km] = uint32(color)
		fresh, first = true, true
	}
	sh.lock.Unlock()

	switch {
	case promoted:
		s.singletons[previous].Add(-1)
	case fresh:
		s.singletons[color].Add(1)
	}
	if first && s.counts != nil {
		s.counts[color].Add(1)
	}
}

// Lookup returns the colors of km, which may be a singleton.
func (s *Store[K, C]) Lookup(km K) (C, bool) {
	sh := &s.shards[s.codec.Bin(km)]
	sh.lock.Lock()
	defer sh.lock.Unlock()
	if c, ok := sh.colors[km]; ok {
		return c, true
	}
	var c C
	if color, ok := sh.singletons[km]; ok {
		return c.Set(uint(color)), true
	}
	return c, false
}

// Range calls fn for every stored k-mer and its colors, singletons included,
// until fn returns false. It must not run concurrently with ingestion.
func (s *Store[K, C]) Range(fn func(km K, colors C) bool) {
	for i := range s.shards {
		sh := &s.shards[i]
		for km, c := range sh.colors {
			if !fn(km, c) {
				return
			}
		}
		for km, color := range sh.singletons {
			var c C
			if !fn(km, c.Set(uint(color))) {
				return
			}
		}
	}
}

// DrainColors calls fn with the color set of every k-mer in the color table
// and releases the tables shard by shard. Singletons are dropped; their
// numbers remain available from SingletonCounts. The store holds no k-mers
// afterwards.
func (s *Store[K, C]) DrainColors(fn func(colors C)) {
	for i := range s.shards {
		sh := &s.shards[i]
		for _, c := range sh.colors {
			fn(c)
		}
		sh.colors = make(map[K]C)
		sh.singletons = make(map[K]uint32)
	}
}

// SingletonCounts returns, per color, the number of k-mers seen in that
// color only.
func (s *Store[K, C]) SingletonCounts() []int64 {
	out := make([]int64, len(s.singletons))
	for i := range s.singletons {
		out[i] = s.singletons[i].Load()
	}
	return out
}

// Stats summarizes the contents of a store.
type Stats struct {
	Kmers      int     // k-mers in the color table
	Singletons int     // k-mers in a single color
	PerColor   []int64 // distinct k-mers per color, if counted
}

// Stats counts the stored k-mers. It must not run concurrently with
// ingestion.
func (s *Store[K, C]) Stats() Stats {
	var st Stats
	for i := range s.shards {
		st.Kmers += len(s.shards[i].colors)
		st.Singletons += len(s.shards[i].singletons)
	}
	if s.counts != nil {
		st.PerColor = make([]int64, len(s.counts))
		for i := range s.counts {
			st.PerColor[i] = s.counts[i].Load()
		}
	}
	return st
}
