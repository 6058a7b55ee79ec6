// Package split turns the colors of stored k-mers into weighted splits and
// keeps the heaviest of them in a bounded list.
package split

import (
	"maps"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/jcalabro/ksplit/bitvec"
	"github.com/jcalabro/ksplit/color"
)

// MinWeight is the smallest weight a compiled split may have. Splits of
// weight zero carry no information.
const MinWeight = math.SmallestNonzeroFloat64

// Source is a drained k-mer store.
type Source[C any] interface {
	// DrainColors calls fn once per stored multi-color k-mer.
	DrainColors(fn func(colors C))
	// SingletonCounts returns the number of k-mers seen in each color only.
	SingletonCounts() []int64
}

// Weights counts, for every split, the k-mers whose color set equals the
// representative side (slot 0) or its complement (slot 1).
type Weights[C bitvec.Vector[C]] struct {
	space color.Space[C]
	table map[C][2]uint32
	log   logrus.FieldLogger
}

// NewWeights returns an empty table for the splits of space.
func NewWeights[C bitvec.Vector[C]](space color.Space[C], log logrus.FieldLogger) *Weights[C] {
	return &Weights[C]{space: space, table: make(map[C][2]uint32), log: log}
}

// Space returns the genomes the splits are taken from.
func (w *Weights[C]) Space() color.Space[C] { return w.space }

// Add records n k-mers with color set c. Sets that cover no genome or every
// genome are dropped.
func (w *Weights[C]) Add(c C, n uint32) {
	rep, flipped := w.space.Represent(c)
	if rep.IsZero() || n == 0 {
		return
	}
	slot := 0
	if flipped {
		slot = 1
	}
	counts := w.table[rep]
	counts[slot] += n
	w.table[rep] = counts
}

// AddWeights drains src into the table. Singleton k-mers are counted towards
// the split of their color.
func (w *Weights[C]) AddWeights(src Source[C]) {
	src.DrainColors(func(c C) { w.Add(c, 1) })
	for i, n := range src.SingletonCounts() {
		if n <= 0 {
			continue
		}
		w.Add(color.Of[C](i), uint32(min(n, math.MaxUint32)))
	}
	w.log.WithField("splits", len(w.table)).Debug("weights accumulated")
}

// Len returns the number of distinct splits.
func (w *Weights[C]) Len() int { return len(w.table) }

// Get returns the counts of the split c stands for.
func (w *Weights[C]) Get(c C) ([2]uint32, bool) {
	rep, flipped := w.space.Represent(c)
	counts, ok := w.table[rep]
	if flipped {
		counts[0], counts[1] = counts[1], counts[0]
	}
	return counts, ok
}

// Total returns the number of k-mers counted.
func (w *Weights[C]) Total() uint64 {
	var n uint64
	for _, counts := range w.table {
		n += uint64(counts[0]) + uint64(counts[1])
	}
	return n
}

// Scores returns the weight of every split under mean.
func (w *Weights[C]) Scores(mean Mean) map[C]float64 {
	out := make(map[C]float64, len(w.table))
	for c, counts := range w.table {
		out[c] = mean(counts[0], counts[1])
	}
	return out
}

// Compile inserts every split weighing at least minValue into list. Once the
// list is full, splits lighter than its current minimum are rejected without
// touching the list.
func (w *Weights[C]) Compile(list *TopList[C], mean Mean, minValue float64) {
	for c, counts := range w.table {
		offer(list, mean(counts[0], counts[1]), c, minValue)
	}
	w.log.WithFields(logrus.Fields{
		"splits": len(w.table),
		"kept":   list.Len(),
		"bound":  list.Bound(),
	}).Debug("split list compiled")
}

// offer inserts c into list unless it is lighter than minValue or than
// every split of a full list.
func offer[C bitvec.Vector[C]](list *TopList[C], weight float64, c C, minValue float64) {
	if weight < minValue {
		return
	}
	if list.Full() {
		if low, _ := list.Min(); weight < low.Weight {
			return
		}
	}
	list.Insert(weight, c)
}

// sortedKeys returns the keys of m in ascending order so results do not
// depend on map iteration order.
func sortedKeys[C bitvec.Vector[C], V any](m map[C]V) []C {
	keys := make([]C, 0, len(m))
	for c := range maps.Keys(m) {
		keys = append(keys, c)
	}
	sortColors(keys)
	return keys
}
