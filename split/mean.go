package split

import (
	"errors"
	"fmt"
	"math"
)

// ErrMean is returned for an unknown mean function name.
var ErrMean = errors.New("split: unknown mean function")

// Mean combines the number of k-mers supporting a split and the number
// supporting its complement into one weight. All means are commutative and
// defined for zero counts.
type Mean func(supporting, opposing uint32) float64

// Arithmetic returns (a+b)/2.
func Arithmetic(a, b uint32) float64 {
	return (float64(a) + float64(b)) / 2
}

// Geometric returns sqrt(a*b).
func Geometric(a, b uint32) float64 {
	return math.Sqrt(float64(a) * float64(b))
}

// Geometric2 returns sqrt((a+1)(b+1))-1, which is positive whenever one of
// the counts is.
func Geometric2(a, b uint32) float64 {
	return math.Sqrt((float64(a)+1)*(float64(b)+1)) - 1
}

// ParseMean returns the mean function called name: "arith", "geom" or
// "geom2". The empty name selects geom2.
func ParseMean(name string) (Mean, error) {
	switch name {
	case "arith":
		return Arithmetic, nil
	case "geom":
		return Geometric, nil
	case "geom2", "":
		return Geometric2, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrMean, name)
}
