package ksplit

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/jcalabro/ksplit/filter"
	"github.com/jcalabro/ksplit/kmer"
	"github.com/jcalabro/ksplit/split"
	"github.com/jcalabro/ksplit/tree"
)

var (
	// ErrKmerLength is returned when k is not positive or k-mers of length k
	// do not fit into the widest representation.
	ErrKmerLength = errors.New("ksplit: invalid k-mer length")

	// ErrColorCount is returned when there are no genomes or more than the
	// widest color set holds.
	ErrColorCount = errors.New("ksplit: invalid number of genomes")

	// ErrFilter is returned for an unknown filter name.
	ErrFilter = errors.New("ksplit: invalid filter")

	// ErrTop is returned for a malformed list size.
	ErrTop = errors.New("ksplit: invalid list size")

	// ErrMean is returned for an unknown mean function.
	ErrMean = split.ErrMean

	// ErrNewick is returned when Newick output is requested without a filter
	// that produces trees.
	ErrNewick = errors.New("ksplit: newick output needs a tree filter")

	// ErrDrained is returned when k-mers are requested after the store was
	// compiled into splits.
	ErrDrained = errors.New("ksplit: k-mers already compiled into splits")

	// ErrNoPivot is returned when the divide and conquer filter finds no
	// split to divide a set of genomes by.
	ErrNoPivot = filter.ErrNoPivot

	// ErrIncompatible is returned when filtered splits do not form a tree.
	ErrIncompatible = tree.ErrIncompatible
)

// MaxGenomes is the largest number of genomes an engine can hold.
const MaxGenomes = 512

// maxKmerBits is the width of the widest k-mer representation.
const maxKmerBits = 256

// Options configures an Engine. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	// K is the k-mer length. Zero selects 31 for nucleotides and 10 for
	// amino acids.
	K int `toml:"k"`
	// Amino reads sequences as amino acids.
	Amino bool `toml:"amino"`
	// Reverse merges nucleotide k-mers with their reverse complement.
	Reverse bool `toml:"reverse"`
	// Window is the number of consecutive k-mers a minimizer is chosen from.
	Window int `toml:"window"`
	// MaxIUPAC bounds the number of concrete k-mers an ambiguous nucleotide
	// k-mer may stand for. Values above one enable ambiguity codes.
	MaxIUPAC uint64 `toml:"iupac"`
	// Quality is the number of times a k-mer must occur in a genome to be
	// stored.
	Quality int `toml:"quality"`
	// QualityGlobal counts occurrences across genomes instead.
	QualityGlobal bool `toml:"quality_global"`
	// Top bounds the number of splits kept: a number, a multiple of the
	// number of genomes such as "10n", or "all".
	Top string `toml:"top"`
	// Mean combines the weights of both sides of a split: "arith", "geom"
	// or "geom2".
	Mean string `toml:"mean"`
	// Filter selects a compatible subset: "strict", "weakly", "<n>tree" or
	// "gdac". Empty keeps every split.
	Filter string `toml:"filter"`
	// Bootstrap is the number of resampled replicates used to label tree
	// edges with their support.
	Bootstrap int `toml:"bootstrap"`
	// Seed seeds bootstrap resampling.
	Seed uint64 `toml:"seed"`
	// Threads is the number of ingestion workers.
	Threads int `toml:"threads"`
	// CountKmers keeps the number of distinct k-mers per genome.
	CountKmers bool `toml:"count_kmers"`
}

// DefaultOptions returns the options used when nothing else is configured.
func DefaultOptions() Options {
	return Options{
		Reverse:  true,
		Window:   1,
		MaxIUPAC: 1,
		Quality:  1,
		Top:      "all",
		Mean:     "geom2",
		Threads:  runtime.NumCPU(),
	}
}

type filterKind int

const (
	filterNone filterKind = iota
	filterStrict
	filterWeakly
	filterTrees
	filterGDAC
)

type filterMode struct {
	kind  filterKind
	trees int
}

// Trees reports whether the filter output can be rendered as Newick.
func (f filterMode) Trees() bool {
	return f.kind == filterStrict || f.kind == filterTrees || f.kind == filterGDAC
}

// NewickReady reports whether the configured filter yields splits that can be
// written as trees. It fails on an unknown filter.
func (o Options) NewickReady() (bool, error) {
	f, err := parseFilter(o.Filter)
	if err != nil {
		return false, err
	}
	return f.Trees(), nil
}

func parseFilter(s string) (filterMode, error) {
	switch s {
	case "":
		return filterMode{}, nil
	case "strict", "tree":
		return filterMode{kind: filterStrict, trees: 1}, nil
	case "weakly":
		return filterMode{kind: filterWeakly}, nil
	case "gdac":
		return filterMode{kind: filterGDAC, trees: 1}, nil
	}
	prefix, ok := strings.CutSuffix(s, "tree")
	if !ok {
		return filterMode{}, fmt.Errorf("%w: %q", ErrFilter, s)
	}
	n, err := strconv.Atoi(strings.TrimSuffix(prefix, "-"))
	if err != nil || n < 1 {
		return filterMode{}, fmt.Errorf("%w: %q", ErrFilter, s)
	}
	if n == 1 {
		return filterMode{kind: filterStrict, trees: 1}, nil
	}
	return filterMode{kind: filterTrees, trees: n}, nil
}

// parseTop returns the list bound described by s for n genomes. Zero means
// unbounded.
func parseTop(s string, n int) (int, error) {
	switch s {
	case "", "all":
		return 0, nil
	}
	if factor, ok := strings.CutSuffix(s, "n"); ok {
		x, err := strconv.ParseFloat(factor, 64)
		if err != nil || x <= 0 {
			return 0, fmt.Errorf("%w: %q", ErrTop, s)
		}
		return max(int(x*float64(n)), 1), nil
	}
	t, err := strconv.Atoi(s)
	if err != nil || t < 0 {
		return 0, fmt.Errorf("%w: %q", ErrTop, s)
	}
	return t, nil
}

// config is a validated set of options.
type config struct {
	Options
	alpha  *kmer.Alphabet
	mean   split.Mean
	filter filterMode
	top    int
}

func (o Options) resolve(genomes int) (config, error) {
	c := config{Options: o, alpha: kmer.Nucleotide}
	if o.Amino {
		c.alpha = kmer.Amino
	}
	if c.K == 0 {
		c.K = 31
		if o.Amino {
			c.K = 10
		}
	}
	if c.K < 1 || c.alpha.MaxK(maxKmerBits) < c.K {
		return c, fmt.Errorf("%w: %d %s k-mers do not fit in %d bits",
			ErrKmerLength, c.K, c.alpha.Name(), maxKmerBits)
	}
	if genomes < 1 || genomes > MaxGenomes {
		return c, fmt.Errorf("%w: %d, want 1 to %d", ErrColorCount, genomes, MaxGenomes)
	}
	if c.Threads < 1 {
		c.Threads = 1
	}
	c.Window = max(c.Window, 1)
	c.Quality = max(c.Quality, 1)

	var err error
	if c.mean, err = split.ParseMean(o.Mean); err != nil {
		return c, err
	}
	if c.filter, err = parseFilter(o.Filter); err != nil {
		return c, err
	}
	if c.top, err = parseTop(o.Top, genomes); err != nil {
		return c, err
	}
	return c, nil
}
