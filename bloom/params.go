package bloom

import "math"

const (
	// BlockBits is the number of bits per block, one cache line.
	BlockBits = 512
	// BlockWords is the number of words per block.
	BlockWords = BlockBits / 64

	ln2        = 0.6931471805599453
	ln2Squared = 0.4804530139182014
)

// partitions holds, for every supported number of hash functions k, k distinct
// segment sizes summing to BlockBits. Even k use primes only; odd k need one
// even filler since an odd count of odd numbers cannot sum to 512.
var partitions = map[uint32][]uint32{
	3:  {167, 173, 172},
	4:  {109, 127, 137, 139},
	5:  {97, 101, 103, 109, 102},
	6:  {61, 79, 83, 89, 97, 103},
	7:  {61, 67, 71, 79, 83, 89, 62},
	8:  {37, 47, 53, 61, 67, 71, 79, 97},
	9:  {41, 43, 47, 53, 59, 67, 71, 73, 58},
	10: {31, 37, 41, 43, 47, 53, 59, 61, 67, 73},
	11: {29, 31, 37, 41, 43, 44, 47, 53, 59, 61, 67},
	12: {17, 23, 29, 31, 37, 41, 43, 47, 53, 59, 61, 71},
	13: {17, 19, 23, 29, 31, 37, 41, 43, 47, 52, 53, 59, 61},
	14: {11, 13, 17, 19, 23, 29, 31, 37, 41, 47, 53, 59, 61, 71},
}

// Params returns the number of blocks and hash functions for a filter holding
// n k-mers at false positive rate p. k is clamped to [3, 14].
func Params(n uint64, p float64) (numBlocks uint64, k uint32) {
	n = max(n, 1)
	if p <= 0 {
		p = 0.0001
	}
	if p >= 1 {
		p = 0.99
	}
	bitsPerKmer := -math.Log(p) / ln2Squared
	numBlocks = uint64(math.Ceil(float64(n) * bitsPerKmer / BlockBits))

	actual := float64(numBlocks*BlockBits) / float64(n)
	k = uint32(math.Round(actual * ln2))
	return numBlocks, min(max(k, 3), 14)
}

// FalsePositiveRate estimates (1 - e^(-kn/m))^k for a filter of numBlocks
// blocks after n insertions.
func FalsePositiveRate(numBlocks uint64, k uint32, n uint64) float64 {
	m := float64(numBlocks * BlockBits)
	if m == 0 || n == 0 {
		return 0
	}
	kf := float64(k)
	return math.Pow(1-math.Exp(-kf*float64(n)/m), kf)
}

// layout locates the k bits of a hash inside a filter.
type layout struct {
	numBlocks uint64
	k         uint32
	sizes     []uint32
	offsets   []uint32
}

func newLayout(numBlocks uint64, k uint32) layout {
	numBlocks = max(numBlocks, 1)
	sizes, ok := partitions[k]
	if !ok {
		k = 7
		sizes = partitions[k]
	}
	l := layout{numBlocks: numBlocks, k: k, sizes: sizes, offsets: make([]uint32, k)}
	var sum uint32
	for i, s := range sizes {
		l.offsets[i] = sum
		sum += s
	}
	return l
}

// bit returns the word index and mask of the i-th bit of hash h. The upper
// half of the hash picks the block; the lower half is reduced modulo each
// segment size (one-hashing).
func (l *layout) bit(h uint64, i uint32) (int, uint64) {
	block := (h >> 32) % l.numBlocks
	pos := l.offsets[i] + uint32(h)%l.sizes[i]
	return int(block*BlockWords) + int(pos/64), 1 << (pos % 64)
}
