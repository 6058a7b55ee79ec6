// Package tree builds the tree displayed by a set of compatible splits and
// writes it in Newick format.
package tree

import (
	"errors"
	"fmt"
	"slices"

	gotree "github.com/evolbioinfo/gotree/tree"

	"github.com/jcalabro/ksplit/bitvec"
	"github.com/jcalabro/ksplit/color"
)

// ErrIncompatible is returned when a split cannot be added to a tree. Splits
// passed to Build are expected to be compatible, so this signals a broken
// filter rather than bad input.
var ErrIncompatible = errors.New("tree: incompatible split")

// Node is a subtree. Taxa holds the genomes below it and Weight the weight of
// the edge above it.
type Node[C bitvec.Vector[C]] struct {
	Taxa     C
	Weight   float64
	Children []*Node[C]
}

// Leaf reports whether n has no children.
func (n *Node[C]) Leaf() bool { return len(n.Children) == 0 }

// Build starts from a star tree over the genomes of space and refines it by
// every split in order. weight returns the weight of a split in either
// orientation.
func Build[C bitvec.Vector[C]](space color.Space[C], splits []C, weight func(C) float64) (*Node[C], error) {
	root := &Node[C]{Taxa: space.Mask()}
	for _, g := range color.Indices(space.Mask()) {
		leaf := color.Of[C](g)
		root.Children = append(root.Children, &Node[C]{Taxa: leaf, Weight: weight(leaf)})
	}
	for _, s := range splits {
		if err := root.refine(space, s.And(space.Mask()), weight); err != nil {
			return nil, fmt.Errorf("%w: %s", err, space.Format(s))
		}
	}
	return root, nil
}

func (n *Node[C]) refine(space color.Space[C], split C, weight func(C) float64) error {
	if space.Trivial(split) {
		return nil
	}

	var covered []*Node[C]
	var partial *Node[C]
	for _, child := range n.Children {
		common := split.And(child.Taxa)
		switch {
		case split == child.Taxa:
			return nil
		case common == split:
			return child.refine(space, split, weight)
		case common == child.Taxa:
			covered = append(covered, child)
		case !common.IsZero():
			if partial != nil {
				return ErrIncompatible
			}
			partial = child
		}
	}

	switch {
	case partial != nil:
		// the split can only cut the partially covered subtree from the
		// other side
		inverse := space.Complement(split)
		if len(covered) != len(n.Children)-1 || !inverse.AndNot(partial.Taxa).IsZero() {
			return ErrIncompatible
		}
		return partial.refine(space, inverse, weight)
	case len(covered) < 2:
		return fmt.Errorf("%w: split covers %d subtrees", ErrIncompatible, len(covered))
	}

	var taxa C
	for _, c := range covered {
		taxa = taxa.Or(c.Taxa)
	}
	n.Children = slices.DeleteFunc(n.Children, func(c *Node[C]) bool {
		return slices.Contains(covered, c)
	})
	n.Children = append(n.Children, &Node[C]{Taxa: taxa, Weight: weight(split), Children: covered})
	return nil
}

// Bipartitions returns the representatives of the non-trivial splits the tree
// displays, one per inner edge.
func (n *Node[C]) Bipartitions(space color.Space[C]) []C {
	var out []C
	var walk func(*Node[C])
	walk = func(node *Node[C]) {
		for _, child := range node.Children {
			if child.Leaf() {
				continue
			}
			if !space.Trivial(child.Taxa) {
				rep, _ := space.Represent(child.Taxa)
				out = append(out, rep)
			}
			walk(child)
		}
	}
	walk(n)
	return out
}

// Newick renders the tree rooted at n. Genome i is called name(i). If
// support is not nil, inner edges it reports a value for are labeled with it.
func (n *Node[C]) Newick(name func(int) string, support func(C) (float64, bool)) string {
	return n.Convert(name, support).Newick()
}

// Convert copies the tree rooted at n into a gotree tree. Edge lengths are
// the split weights; supports are set where support reports one.
func (n *Node[C]) Convert(name func(int) string, support func(C) (float64, bool)) *gotree.Tree {
	t := gotree.NewTree()
	root := t.NewNode()
	t.SetRoot(root)
	n.connect(t, root, name, support)
	return t
}

func (n *Node[C]) connect(t *gotree.Tree, parent *gotree.Node, name func(int) string, support func(C) (float64, bool)) {
	for _, child := range n.Children {
		node := t.NewNode()
		edge := t.ConnectNodes(parent, node)
		edge.SetLength(child.Weight)
		if child.Leaf() {
			node.SetName(name(child.Taxa.TrailingZeros()))
			continue
		}
		if support != nil {
			if s, ok := support(child.Taxa); ok {
				edge.SetSupport(s)
			}
		}
		child.connect(t, node, name, support)
	}
}
