package ksplit

import (
	"io"

	"github.com/jcalabro/ksplit/split"
)

// Split is a weighted split read from a splits file.
type Split struct {
	Weight  float64
	Genomes []int
}

// ReadSplits parses a splits file. Genomes are looked up by name in names;
// names not found there are appended. It returns the splits and the extended
// list of names.
func ReadSplits(r io.Reader, names []string) ([]Split, []string, error) {
	records, err := split.ReadTSV(r)
	if err != nil {
		return nil, names, err
	}
	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}
	out := make([]Split, 0, len(records))
	for _, rec := range records {
		s := Split{Weight: rec.Weight, Genomes: make([]int, 0, len(rec.Genomes))}
		for _, name := range rec.Genomes {
			i, ok := index[name]
			if !ok {
				i = len(names)
				index[name] = i
				names = append(names, name)
			}
			s.Genomes = append(s.Genomes, i)
		}
		out = append(out, s)
	}
	return out, names, nil
}
