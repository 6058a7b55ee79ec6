package filter

import (
	"errors"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/jcalabro/ksplit/bitvec"
	"github.com/jcalabro/ksplit/color"
)

// ErrNoPivot is returned when a set of splits has no split that separates its
// genomes.
var ErrNoPivot = errors.New("filter: no pivot split")

// GDAC selects a compatible subset of the weighted splits in table by divide
// and conquer. The heaviest split cuts the genomes in two; the splits are
// projected onto either side and filtered there recursively; each side's
// result is attached back at the split of that side that best explains the
// weights of the outer level.
//
// The keys of table are split representatives of space. If a side of some
// level receives no projected split, that level is returned unfiltered.
func GDAC[C bitvec.Vector[C]](space color.Space[C], table map[C]float64, log logrus.FieldLogger) (map[C]float64, error) {
	d := &gdac[C]{log: log}
	return d.filter(space.Mask(), table, 0)
}

type gdac[C bitvec.Vector[C]] struct {
	log logrus.FieldLogger
}

func (d *gdac[C]) filter(mask C, table map[C]float64, depth int) (map[C]float64, error) {
	space := color.Within(mask)
	switch len(table) {
	case 0, 1:
		return table, nil
	case 2:
		keys := sortedKeys(table)
		a, b := keys[0], keys[1]
		if space.Complement(a) == b.And(mask) {
			if table[b] > table[a] {
				a = b
			}
			return map[C]float64{a: table[a]}, nil
		}
	}

	pivot, ok := d.pivot(space, table)
	if !ok {
		return nil, fmt.Errorf("%w: %d splits over %d genomes", ErrNoPivot, len(table), space.Width())
	}
	out := make(map[C]float64)
	put(out, space, pivot, table[pivot])
	for _, side := range [2]C{pivot.And(mask), space.Complement(pivot)} {
		if side.OnesCount() < 2 {
			continue
		}
		filtered, err := d.filter(side, project(side, table), depth+1)
		if err != nil {
			return nil, err
		}
		if len(filtered) == 0 {
			d.log.WithFields(logrus.Fields{
				"depth":   depth,
				"genomes": space.Width(),
				"splits":  len(table),
			}).Debug("side without cut split, level left unfiltered")
			return table, nil
		}
		d.attach(out, space, side, filtered, table)
	}
	return out, nil
}

// pivot returns the heaviest split of table that separates the genomes of
// space.
func (d *gdac[C]) pivot(space color.Space[C], table map[C]float64) (C, bool) {
	var best C
	found := false
	for _, c := range sortedKeys(table) {
		if m := c.And(space.Mask()); m.IsZero() || space.Full(m) {
			continue
		}
		if !found || table[c] > table[best] {
			best, found = c, true
		}
	}
	return best, found
}

// project restricts every split of table to side and sums the weights of
// splits that coincide there.
func project[C bitvec.Vector[C]](side C, table map[C]float64) map[C]float64 {
	sub := color.Within(side)
	out := make(map[C]float64)
	for _, c := range sortedKeys(table) {
		rep, _ := sub.Represent(c.And(side))
		if rep.IsZero() {
			continue
		}
		out[rep] += table[c]
	}
	return out
}

// attach adds the filtered splits of side to out. The split of side whose two
// halves weigh most as splits of the outer level is the cut; every other
// split becomes the clade it forms below the cut.
func (d *gdac[C]) attach(out map[C]float64, space color.Space[C], side C, filtered, table map[C]float64) {
	sub := color.Within(side)
	lookup := func(c C) (float64, bool) {
		rep, _ := space.Represent(c)
		w, ok := table[rep]
		return w, ok
	}

	var cut C
	best := -1.0
	for _, c := range sortedKeys(filtered) {
		x, _ := lookup(c)
		y, _ := lookup(sub.Complement(c))
		if x+y > best {
			cut, best = c, x+y
		}
	}
	halves := [2]C{cut, sub.Complement(cut)}

	within := func(z C) bool {
		return z.AndNot(halves[0]).IsZero() || z.AndNot(halves[1]).IsZero()
	}
	for c, w := range filtered {
		if c == cut {
			continue
		}
		clade := c
		if !within(clade) {
			clade = sub.Complement(c)
		}
		if !within(clade) {
			d.log.WithField("split", space.Format(c)).Debug("split crosses the cut, dropped")
			continue
		}
		if outer, ok := lookup(clade); ok {
			w = outer
		} else {
			d.log.WithField("split", space.Format(clade)).Debug("clade not weighted at the outer level, keeping its inner weight")
		}
		put(out, space, clade, w)
	}
	for _, h := range halves {
		w, ok := lookup(h)
		if !ok {
			d.log.WithField("split", space.Format(h)).Debug("cut half not weighted at the outer level")
		}
		put(out, space, h, w)
	}
}

func put[C bitvec.Vector[C]](out map[C]float64, space color.Space[C], c C, w float64) {
	rep, _ := space.Represent(c)
	if rep.IsZero() {
		return
	}
	if old, ok := out[rep]; !ok || w > old {
		out[rep] = w
	}
}

func sortedKeys[C bitvec.Vector[C]](m map[C]float64) []C {
	keys := make([]C, 0, len(m))
	for c := range m {
		keys = append(keys, c)
	}
	slices.SortFunc(keys, func(a, b C) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	return keys
}
