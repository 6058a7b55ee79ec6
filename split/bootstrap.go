package split

import (
	"math"
	"math/rand/v2"

	"github.com/jcalabro/ksplit/bitvec"
)

// binomial draws from Binomial(n, 1/n) by inversion.
type binomial struct {
	n     float64
	p0    float64 // probability of zero
	ratio float64 // p/(1-p)
}

func newBinomial(n uint64) binomial {
	if n <= 1 {
		return binomial{n: float64(n)}
	}
	f := float64(n)
	p := 1 / f
	return binomial{n: f, p0: math.Exp(f * math.Log1p(-p)), ratio: p / (1 - p)}
}

func (b binomial) draw(rng *rand.Rand) uint32 {
	if b.p0 == 0 {
		return uint32(b.n)
	}
	u := rng.Float64()
	pk, cdf := b.p0, b.p0
	var k float64
	for u > cdf && k < b.n {
		pk *= (b.n - k) / (k + 1) * b.ratio
		k++
		cdf += pk
		if pk == 0 {
			break
		}
	}
	return uint32(k)
}

// Bootstrap resamples the table and inserts the resampled splits into list.
// Every counted k-mer is replaced by a draw from Binomial(N, 1/N), where N is
// the total number of k-mers counted. It returns the resampled weight of every
// split, including those list had no room for.
func (w *Weights[C]) Bootstrap(list *TopList[C], mean Mean, rng *rand.Rand) map[C]float64 {
	b := newBinomial(w.Total())
	scores := make(map[C]float64, len(w.table))
	for _, c := range sortedKeys(w.table) {
		counts := w.table[c]
		var resampled [2]uint32
		for slot, n := range counts {
			for range n {
				resampled[slot] += b.draw(rng)
			}
		}
		weight := mean(resampled[0], resampled[1])
		scores[c] = weight
		offer(list, weight, c, MinWeight)
	}
	return scores
}

// Support counts how often splits recur across bootstrap replicates.
type Support[C bitvec.Vector[C]] struct {
	hits       map[C]int
	replicates int
}

// NewSupport returns an empty tally.
func NewSupport[C bitvec.Vector[C]]() *Support[C] {
	return &Support[C]{hits: make(map[C]int)}
}

// Observe records the splits of one replicate.
func (s *Support[C]) Observe(splits []C) {
	s.replicates++
	for _, c := range splits {
		s.hits[c]++
	}
}

// Replicates returns the number of replicates observed.
func (s *Support[C]) Replicates() int { return s.replicates }

// Fraction returns the share of replicates that contained c. It returns false
// if no replicate was observed.
func (s *Support[C]) Fraction(c C) (float64, bool) {
	if s.replicates == 0 {
		return 0, false
	}
	return float64(s.hits[c]) / float64(s.replicates), true
}
