// Package filter selects subsets of weighted splits that fit into one tree,
// several trees, or a weakly compatible network.
package filter

import (
	"github.com/jcalabro/ksplit/bitvec"
	"github.com/jcalabro/ksplit/color"
	"github.com/jcalabro/ksplit/split"
)

// Progress is called after every split a filter looked at.
type Progress func(done, total int)

// Strict keeps every split of list, heaviest first, that is compatible with
// all splits kept before it, and removes the rest from list. It returns the
// kept splits.
func Strict[C bitvec.Vector[C]](space color.Space[C], list *split.TopList[C], progress Progress) [][]C {
	return NTree(space, list, 1, progress)
}

// NTree is Strict with n independent trees: a split joins the first tree it is
// compatible with, or is removed from list if there is none. It returns the
// kept splits of every tree.
func NTree[C bitvec.Vector[C]](space color.Space[C], list *split.TopList[C], n int, progress Progress) [][]C {
	forest := make([][]C, max(n, 1))
	greedy(list, progress, func(c C) bool {
		for i, tree := range forest {
			if compatibleWithAll(space, c, tree) {
				forest[i] = append(tree, c)
				return true
			}
		}
		return false
	})
	return forest
}

// Weakly keeps every split of list, heaviest first, that keeps the kept set
// weakly compatible, and removes the rest. It returns the kept splits as a
// single network.
func Weakly[C bitvec.Vector[C]](space color.Space[C], list *split.TopList[C], progress Progress) [][]C {
	var network []C
	greedy(list, progress, func(c C) bool {
		for _, p := range network {
			if space.IsCompatible(p, c) {
				continue
			}
			for _, q := range network {
				if !space.IsWeaklyCompatible(p, q, c) {
					return false
				}
			}
		}
		network = append(network, c)
		return true
	})
	return [][]C{network}
}

// greedy offers every split of list to accept in order and removes the
// rejected ones.
func greedy[C bitvec.Vector[C]](list *split.TopList[C], progress Progress, accept func(C) bool) {
	total := list.Len()
	var rejected []C
	done := 0
	for e := range list.All() {
		if !accept(e.Color) {
			rejected = append(rejected, e.Color)
		}
		done++
		if progress != nil {
			progress(done, total)
		}
	}
	for _, c := range rejected {
		list.Delete(c)
	}
}

func compatibleWithAll[C bitvec.Vector[C]](space color.Space[C], c C, tree []C) bool {
	for _, t := range tree {
		if !space.IsCompatible(t, c) {
			return false
		}
	}
	return true
}
