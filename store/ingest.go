package store

import (
	"iter"

	"github.com/jcalabro/ksplit/bitvec"
	"github.com/jcalabro/ksplit/kmer"
)

// worker is the state owned by one ingestion goroutine.
type worker[K bitvec.Vector[K]] struct {
	window *kmer.Minimizer[K]
}

// selectMode returns the extraction routine matching the options. It is
// chosen once so the per-sequence path does not branch on configuration.
func (s *Store[K, C]) selectMode() func(int, []byte, int) {
	minimizers := s.opts.Window > 1
	ambiguous := s.opts.MaxIUPAC > 1
	if minimizers {
		for i := range s.workers {
			s.workers[i].window = kmer.NewMinimizer[K](s.opts.Window)
		}
	}
	switch {
	case minimizers && ambiguous:
		return s.addAmbiguousMinimizers
	case minimizers:
		return s.addMinimizers
	case ambiguous:
		return s.addAmbiguous
	default:
		return s.addKmers
	}
}

// AddSequence extracts the k-mers of seq and records them for color. w is the
// index of the calling worker; no two goroutines may use the same index at
// the same time.
func (s *Store[K, C]) AddSequence(w int, seq []byte, color int) {
	s.add(w, seq, color)
}

// AddUnitig records the k-mers of a unitig of a colored de Bruijn graph. For
// every (offset, color) pair the k-mer starting at offset is recorded for
// color.
func (s *Store[K, C]) AddUnitig(w int, seq []byte, kmers iter.Seq2[int, int]) {
	k := s.codec.K()
	for offset, color := range kmers {
		if offset < 0 || offset+k > len(seq) {
			continue
		}
		s.addKmers(w, seq[offset:offset+k], color)
	}
}

// FinishColor tells the store that worker w has read every sequence of its
// current genome.
func (s *Store[K, C]) FinishColor(w int) {
	s.quality.finish(w)
}

// AddBlacklist adds the k-mers of seq to the blacklist. Blacklisted k-mers are
// never stored. It is safe to call concurrently, but must complete before
// ingestion starts.
func (s *Store[K, C]) AddBlacklist(seq []byte) {
	s.codec.Kmers(seq, func(_ int, km K, _ uint32) {
		s.blacklist.Add(km)
	})
}

// Blacklist returns the set of suppressed k-mers.
func (s *Store[K, C]) Blacklist() *Blacklist[K] { return s.blacklist }

func (s *Store[K, C]) offer(w int, km K, bin uint32, color int) {
	if s.blacklist.Contains(km) {
		return
	}
	s.quality.offer(w, km, bin, color)
}

func (s *Store[K, C]) addKmers(w int, seq []byte, color int) {
	s.codec.Kmers(seq, func(_ int, km K, bin uint32) {
		s.offer(w, km, bin, color)
	})
}

func (s *Store[K, C]) addAmbiguous(w int, seq []byte, color int) {
	s.codec.Ambiguous(seq, s.opts.MaxIUPAC, func(_ int, set []K) {
		for _, km := range set {
			s.offer(w, km, s.codec.Bin(km), color)
		}
	})
}

func (s *Store[K, C]) addMinimizers(w int, seq []byte, color int) {
	window := s.workers[w].window
	window.Reset()
	s.codec.Kmers(seq, func(pos int, km K, bin uint32) {
		if m, mbin, ok := window.Push(pos, km, bin); ok {
			s.offer(w, m, mbin, color)
		}
	})
}

func (s *Store[K, C]) addAmbiguousMinimizers(w int, seq []byte, color int) {
	window := s.workers[w].window
	window.Reset()
	s.codec.Ambiguous(seq, s.opts.MaxIUPAC, func(pos int, set []K) {
		// the set is sorted, its first k-mer is the smallest
		km := set[0]
		if m, mbin, ok := window.Push(pos, km, s.codec.Bin(km)); ok {
			s.offer(w, m, mbin, color)
		}
	})
}
