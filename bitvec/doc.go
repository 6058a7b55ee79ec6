// Package bitvec provides fixed-width bit vectors used to encode k-mers and
// color sets.
//
// # Representations
//
// Two backing strategies are available, selected by the width a caller needs:
//
// [W64] stores up to 64 bits in a single machine word. It is the fastest
// option and covers k-mers up to k=32 (nucleotides) or k=12 (amino acids) and
// up to 64 genomes.
//
// [W128], [W256] and [W512] store 2, 4 and 8 words in a fixed-size array.
// They are comparable value types, so they can be used directly as map keys.
//
// All representations satisfy the [Vector] constraint and can be used
// interchangeably by generic code:
//
//	func popcount[V bitvec.Vector[V]](v V) int {
//		return v.OnesCount()
//	}
//
// # Spaces
//
// A [Space] fixes the number of significant bits (for example the number of
// genomes) and derives the mask used by [Space.Complement]. Operations on a
// vector never check positions against the configured width; callers are
// expected to stay within it.
package bitvec
