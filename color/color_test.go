package color

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/jcalabro/ksplit/bitvec"
)

func TestRepresent(t *testing.T) {
	s := NewSpace[bitvec.W64](4)
	for _, tc := range []struct {
		in, want bitvec.W64
		flipped  bool
	}{
		{0b0001, 0b0001, false},
		{0b1110, 0b0001, true},
		{0b0011, 0b0011, false},
		{0b1100, 0b0011, true},
		{0b1010, 0b0101, true},
		{0b0101, 0b0101, false},
		{0b1111, 0b0000, true},
		{0b0000, 0b0000, false},
		{0b110000, 0b0000, false}, // outside the space
	} {
		got, flipped := s.Represent(tc.in)
		if got != tc.want || flipped != tc.flipped {
			t.Errorf("Represent(%04b) = %04b, %v; want %04b, %v", tc.in, got, flipped, tc.want, tc.flipped)
		}
	}
}

func TestRepresentIdempotent(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, n := range []int{1, 2, 7, 64} {
		s := NewSpace[bitvec.W64](n)
		for range 1000 {
			c := bitvec.W64(rng.Uint64())
			r, _ := s.Represent(c)
			again, flipped := s.Represent(r)
			if again != r || flipped {
				t.Fatalf("n=%d: Represent(Represent(%x)) = %x, %v; want %x, false", n, c, again, flipped, r)
			}
			if !s.IsRepresentative(r) {
				t.Fatalf("n=%d: %x is not its own representative", n, r)
			}
			// a set and its complement stand for the same split
			comp, _ := s.Represent(s.Complement(c))
			if comp != r {
				t.Fatalf("n=%d: complement of %x represents as %x, want %x", n, c, comp, r)
			}
		}
	}
}

func TestRepresentWide(t *testing.T) {
	s := NewSpace[bitvec.W256](200)
	var c bitvec.W256
	for i := uint(0); i < 150; i++ {
		c = c.Set(i)
	}
	r, flipped := s.Represent(c)
	if !flipped || r.OnesCount() != 50 || !r.Test(199) || r.Test(0) {
		t.Errorf("got %d bits, flipped %v", r.OnesCount(), flipped)
	}
}

func TestCompatible(t *testing.T) {
	s := NewSpace[bitvec.W64](6)
	for _, tc := range []struct {
		a, b bitvec.W64
		want bool
	}{
		{0b000011, 0b001100, true},  // disjoint
		{0b000011, 0b000111, true},  // nested
		{0b000011, 0b000110, false}, // overlapping
		{0b000011, 0b111100, true},  // complements
		{0b000111, 0b001110, false},
		{0b000001, 0b011110, true},
	} {
		if got := s.IsCompatible(tc.a, tc.b); got != tc.want {
			t.Errorf("IsCompatible(%06b, %06b) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestCompatibleSymmetry(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	s := NewSpace[bitvec.W64](10)
	for range 2000 {
		a := bitvec.W64(rng.Uint64()).And(s.Mask())
		b := bitvec.W64(rng.Uint64()).And(s.Mask())
		got := s.IsCompatible(a, b)
		if got != s.IsCompatible(b, a) {
			t.Fatalf("IsCompatible not symmetric for %x, %x", a, b)
		}
		if got != s.IsCompatible(s.Complement(a), b) {
			t.Fatalf("IsCompatible changed under complement for %x, %x", a, b)
		}
		// compatible splits are weakly compatible with anything
		c := bitvec.W64(rng.Uint64()).And(s.Mask())
		if got && s.IsCompatible(a, c) && s.IsCompatible(b, c) && !s.IsWeaklyCompatible(a, b, c) {
			t.Fatalf("pairwise compatible %x %x %x not weakly compatible", a, b, c)
		}
	}
}

func TestWeaklyCompatible(t *testing.T) {
	// four taxa on a circle: {0,1}|{2,3} and {1,2}|{0,3} form a network
	s := NewSpace[bitvec.W64](4)
	a, b := bitvec.W64(0b0011), bitvec.W64(0b0110)
	if s.IsCompatible(a, b) {
		t.Fatal("crossing splits reported compatible")
	}
	if !s.IsWeaklyCompatible(a, b, a) {
		t.Error("got not weakly compatible, want weakly compatible")
	}

	// three pairwise incompatible splits of eight taxa covering all eight
	// sign patterns
	s = NewSpace[bitvec.W64](8)
	x, y, z := bitvec.W64(0b00001111), bitvec.W64(0b00110011), bitvec.W64(0b01010101)
	if s.IsWeaklyCompatible(x, y, z) {
		t.Error("got weakly compatible, want not")
	}
}

func TestTrivial(t *testing.T) {
	s := NewSpace[bitvec.W64](5)
	for _, tc := range []struct {
		c    bitvec.W64
		want bool
	}{
		{0, true}, {0b1, true}, {0b11110, true}, {0b11111, true}, {0b11, false}, {0b111, false},
	} {
		if got := s.Trivial(tc.c); got != tc.want {
			t.Errorf("Trivial(%05b) = %v, want %v", tc.c, got, tc.want)
		}
	}
}

func TestIndices(t *testing.T) {
	want := []int{0, 5, 63, 64, 130, 511}
	c := Of[bitvec.W512](want...)
	if got := Indices(c); !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got := Indices(bitvec.W64(0)); len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}

func TestWithin(t *testing.T) {
	s := Within(bitvec.W64(0b101100))
	if s.Width() != 3 {
		t.Fatalf("got width %d, want 3", s.Width())
	}
	if got, flipped := s.Represent(0b101000); got != 0b000100 || !flipped {
		t.Errorf("got %06b, %v; want 000100, true", got, flipped)
	}
}

func TestFormat(t *testing.T) {
	s := NewSpace[bitvec.W64](5)
	if got := s.Format(0b00110); got != "01100" {
		t.Errorf("got %q, want %q", got, "01100")
	}
}
