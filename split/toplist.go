package split

import (
	"iter"
	"slices"

	"github.com/google/btree"
	"github.com/sirupsen/logrus"

	"github.com/jcalabro/ksplit/bitvec"
)

// Entry is a weighted split.
type Entry[C any] struct {
	Weight float64
	Color  C
}

// byWeight orders entries by descending weight, then ascending color.
func byWeight[C bitvec.Vector[C]](a, b Entry[C]) bool {
	if a.Weight != b.Weight {
		return a.Weight > b.Weight
	}
	return a.Color.Less(b.Color)
}

func compareColors[C bitvec.Vector[C]](a, b C) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	}
	return 0
}

func sortColors[C bitvec.Vector[C]](cs []C) {
	slices.SortFunc(cs, compareColors[C])
}

// TopList holds at most a fixed number of splits, heaviest first. A split is
// held at most once.
type TopList[C bitvec.Vector[C]] struct {
	bound int
	tree  *btree.BTreeG[Entry[C]]
	index map[C]float64
	log   logrus.FieldLogger
}

// NewTopList returns an empty list holding at most bound splits. A bound of
// zero or less holds any number.
func NewTopList[C bitvec.Vector[C]](bound int, log logrus.FieldLogger) *TopList[C] {
	return &TopList[C]{
		bound: bound,
		tree:  btree.NewG(16, byWeight[C]),
		index: make(map[C]float64),
		log:   log,
	}
}

// Bound returns the maximum number of splits, or zero if unbounded.
func (l *TopList[C]) Bound() int { return max(l.bound, 0) }

// Len returns the number of splits held.
func (l *TopList[C]) Len() int { return l.tree.Len() }

// Full reports whether another insertion would evict a split.
func (l *TopList[C]) Full() bool {
	return l.bound > 0 && l.tree.Len() >= l.bound
}

// Insert adds c with the given weight and evicts the lightest split if the
// list grows past its bound. A split already held keeps its weight unless the
// new one is strictly greater. Insert reports whether c is held afterwards.
func (l *TopList[C]) Insert(weight float64, c C) bool {
	if old, ok := l.index[c]; ok {
		l.log.WithFields(logrus.Fields{
			"old": old,
			"new": weight,
		}).Warn("duplicate split")
		if weight <= old {
			return true
		}
		l.tree.Delete(Entry[C]{Weight: old, Color: c})
	}
	l.tree.ReplaceOrInsert(Entry[C]{Weight: weight, Color: c})
	l.index[c] = weight
	if l.bound > 0 && l.tree.Len() > l.bound {
		evicted, _ := l.tree.DeleteMax()
		delete(l.index, evicted.Color)
		return evicted.Color != c
	}
	return true
}

// Delete removes c and reports whether it was held.
func (l *TopList[C]) Delete(c C) bool {
	weight, ok := l.index[c]
	if !ok {
		return false
	}
	l.tree.Delete(Entry[C]{Weight: weight, Color: c})
	delete(l.index, c)
	return true
}

// Weight returns the weight of c.
func (l *TopList[C]) Weight(c C) (float64, bool) {
	w, ok := l.index[c]
	return w, ok
}

// Min returns the lightest split held.
func (l *TopList[C]) Min() (Entry[C], bool) {
	return l.tree.Max()
}

// Max returns the heaviest split held.
func (l *TopList[C]) Max() (Entry[C], bool) {
	return l.tree.Min()
}

// All iterates over the splits, heaviest first.
func (l *TopList[C]) All() iter.Seq[Entry[C]] {
	return func(yield func(Entry[C]) bool) {
		l.tree.Ascend(func(e Entry[C]) bool { return yield(e) })
	}
}

// Colors returns the splits, heaviest first.
func (l *TopList[C]) Colors() []C {
	out := make([]C, 0, l.tree.Len())
	for e := range l.All() {
		out = append(out, e.Color)
	}
	return out
}

// Clear removes every split.
func (l *TopList[C]) Clear() {
	l.tree.Clear(false)
	clear(l.index)
}
