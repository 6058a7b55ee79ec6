package tree

import (
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/evolbioinfo/gotree/io/newick"

	"github.com/jcalabro/ksplit/bitvec"
	"github.com/jcalabro/ksplit/color"
)

var names = []string{"A", "B", "C", "D", "E", "F", "G"}

func name(i int) string { return names[i] }

func weights(space color.Space[bitvec.W64], m map[bitvec.W64]float64) func(bitvec.W64) float64 {
	return func(c bitvec.W64) float64 {
		rep, _ := space.Represent(c)
		return m[rep]
	}
}

func TestBuildNewick(t *testing.T) {
	space := color.NewSpace[bitvec.W64](4)
	w := weights(space, map[bitvec.W64]float64{0b0011: 1, 0b0001: 0.5, 0b0010: 0.5, 0b0100: 0.5, 0b1000: 0.5})
	root, err := Build(space, []bitvec.W64{0b0011, 0b0001}, w)
	if err != nil {
		t.Fatal(err)
	}
	want := "(C:0.5,D:0.5,(A:0.5,B:0.5):1);"
	if got := root.Newick(name, nil); got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	// the complement orientation displays the same split
	root, err = Build(space, []bitvec.W64{0b1100}, w)
	if err != nil {
		t.Fatal(err)
	}
	want = "(A:0.5,B:0.5,(C:0.5,D:0.5):1);"
	if got := root.Newick(name, nil); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestNewickSupport(t *testing.T) {
	space := color.NewSpace[bitvec.W64](5)
	root, err := Build(space, []bitvec.W64{0b00011, 0b00111}, weights(space, map[bitvec.W64]float64{0b00011: 2, 0b11000: 1.25}))
	if err != nil {
		t.Fatal(err)
	}
	support := func(c bitvec.W64) (float64, bool) {
		if rep, _ := space.Represent(c); rep == 0b00011 {
			return 0.9, true
		}
		return 0, false
	}
	want := "(D:0,E:0,(C:0,(A:0,B:0)0.9:2):1.25);"
	got := root.Newick(name, support)
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	tr, err := newick.NewParser(strings.NewReader(got)).Parse()
	if err != nil {
		t.Fatalf("parse %s: %v", got, err)
	}
	tips := tr.AllTipNames()
	slices.Sort(tips)
	if !slices.Equal(tips, names[:5]) {
		t.Errorf("got tips %v, want %v", tips, names[:5])
	}
}

func TestConvert(t *testing.T) {
	space := color.NewSpace[bitvec.W64](4)
	w := weights(space, map[bitvec.W64]float64{0b0011: 1, 0b0001: 0.5, 0b0010: 0.25})
	root, err := Build(space, []bitvec.W64{0b0011}, w)
	if err != nil {
		t.Fatal(err)
	}
	tr := root.Convert(name, nil)
	tips := tr.AllTipNames()
	slices.Sort(tips)
	if !slices.Equal(tips, names[:4]) {
		t.Errorf("got tips %v, want %v", tips, names[:4])
	}
	if got := len(tr.Root().Neigh()); got != 3 {
		t.Errorf("root has %d neighbors, want 3", got)
	}
	if got, want := tr.Newick(), root.Newick(name, nil); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestRefineFromOtherSide(t *testing.T) {
	space := color.NewSpace[bitvec.W64](7)
	// the second split only fits below the first from its complement
	splits := []bitvec.W64{0b0000111, 0b1111100}
	root, err := Build(space, splits, func(bitvec.W64) float64 { return 1 })
	if err != nil {
		t.Fatal(err)
	}
	got := root.Bipartitions(space)
	want := []bitvec.W64{0b0000111, 0b0000011}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestIncompatible(t *testing.T) {
	space := color.NewSpace[bitvec.W64](4)
	_, err := Build(space, []bitvec.W64{0b0011, 0b0101}, func(bitvec.W64) float64 { return 0 })
	if !errors.Is(err, ErrIncompatible) {
		t.Errorf("got %v, want ErrIncompatible", err)
	}
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(19, 20))
	for _, n := range []int{4, 9, 30, 64} {
		space := color.NewSpace[bitvec.W64](n)
		for range 20 {
			var set []bitvec.W64
			for range 5 * n {
				c, _ := space.Represent(bitvec.W64(rng.Uint64()))
				if space.Trivial(c) || slices.Contains(set, c) {
					continue
				}
				compatible := true
				for _, s := range set {
					if !space.IsCompatible(s, c) {
						compatible = false
						break
					}
				}
				if compatible {
					set = append(set, c)
				}
			}

			root, err := Build(space, set, func(bitvec.W64) float64 { return 1 })
			if err != nil {
				t.Fatalf("n=%d: %v", n, err)
			}
			got := root.Bipartitions(space)
			slices.SortFunc(got, compare)
			want := slices.Clone(set)
			slices.SortFunc(want, compare)
			if !slices.Equal(got, want) {
				t.Fatalf("n=%d: got %d bipartitions, want %d", n, len(got), len(want))
			}
		}
	}
}

func compare(a, b bitvec.W64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
