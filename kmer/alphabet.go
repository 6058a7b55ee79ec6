// Package kmer encodes biological sequences into fixed-width k-mers and walks
// the k-mers of a sequence, optionally resolving IUPAC ambiguity codes or
// subsampling by minimizers.
package kmer

// Alphabet maps sequence characters to fixed-width symbol codes.
type Alphabet struct {
	name    string
	bits    uint
	letters string
	code    [256]int8
	// complementable alphabets support reverse complements: the complement
	// of code x is x ^ (1<<bits - 1).
	complementable bool
}

// Nucleotide encodes A, C, G and T (or U) in two bits each.
var Nucleotide = newAlphabet("nucleotide", 2, "ACGT", true, map[byte]byte{'U': 'T'})

// Amino encodes the twenty standard residues, the ambiguity codes B, Z, J and
// X, the rare residues U and O and the stop symbol in five bits each.
var Amino = newAlphabet("amino", 5, "ACDEFGHIKLMNPQRSTVWYBZJXUO*", false, nil)

func newAlphabet(name string, bits uint, letters string, complementable bool, alias map[byte]byte) *Alphabet {
	a := &Alphabet{name: name, bits: bits, letters: letters, complementable: complementable}
	for i := range a.code {
		a.code[i] = -1
	}
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		a.code[c] = int8(i)
		a.code[lower(c)] = int8(i)
	}
	for from, to := range alias {
		a.code[from] = a.code[to]
		a.code[lower(from)] = a.code[to]
	}
	return a
}

func lower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

// Name returns the alphabet name.
func (a *Alphabet) Name() string { return a.name }

// Bits returns the number of bits per symbol.
func (a *Alphabet) Bits() uint { return a.bits }

// Encode returns the code of c, or false if c is not part of the alphabet.
// Lower case letters are accepted.
func (a *Alphabet) Encode(c byte) (uint64, bool) {
	x := a.code[c]
	return uint64(x), x >= 0
}

// Letter returns the upper case character of code x.
func (a *Alphabet) Letter(x uint64) byte {
	if x >= uint64(len(a.letters)) {
		return 'N'
	}
	return a.letters[x]
}

// MaxK returns the longest k-mer that fits into capacity bits.
func (a *Alphabet) MaxK(capacity uint) int {
	return int(capacity / a.bits)
}

func (a *Alphabet) complement(x uint64) uint64 {
	return x ^ (1<<a.bits - 1)
}
