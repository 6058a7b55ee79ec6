package kmer

// Bins maps k-mers to one of q shards by their value modulo q. The modulus is
// maintained incrementally while a k-mer window slides over a sequence: a
// shift by one symbol is a linear transform of the remainder.
type Bins struct {
	q    uint64
	bits uint
	k    uint
	step uint64 // 2^b mod q
	top  uint64 // 2^(b(k-1)) mod q
	inv  uint64 // inverse of 2^b mod q
}

// NewBins returns the shard mapping for k-mers of k symbols of the given bit
// width. q must be an odd prime.
func NewBins(q uint64, bits uint, k int) Bins {
	b := Bins{q: q, bits: bits, k: uint(k)}
	b.step = powMod(2, uint64(bits), q)
	b.top = powMod(2, uint64(bits)*uint64(k-1), q)
	b.inv = powMod(b.step, q-2, q)
	return b
}

// Q returns the number of shards.
func (b Bins) Q() uint64 { return b.q }

// Forward returns the bin after shifting symbol added into a k-mer whose
// highest symbol dropped falls out of the window.
func (b Bins) Forward(bin uint32, dropped, added uint64) uint32 {
	x := (uint64(bin) + b.q - dropped%b.q*b.top%b.q) % b.q
	return uint32((x*b.step + added) % b.q)
}

// Reverse returns the bin of a reverse complement register after its lowest
// symbol dropped is shifted out and symbol added enters at the top.
func (b Bins) Reverse(bin uint32, dropped, added uint64) uint32 {
	x := (uint64(bin) + b.q - dropped%b.q) % b.q
	return uint32((x*b.inv + added%b.q*b.top) % b.q)
}

func powMod(base, exp, mod uint64) uint64 {
	result := uint64(1) % mod
	base %= mod
	for exp > 0 {
		if exp&1 == 1 {
			result = result * base % mod
		}
		base = base * base % mod
		exp >>= 1
	}
	return result
}
