package benchmarks

import (
	"encoding/binary"
	"math/rand/v2"
	"testing"

	bab "github.com/bits-and-blooms/bloom/v3"
	"github.com/cespare/xxhash/v2"
	atomicbloom "github.com/ericvolp12/atomic-bloom"
	"github.com/greatroar/blobloom"

	"github.com/jcalabro/ksplit/bitvec"
	"github.com/jcalabro/ksplit/bloom"
)

const (
	benchKmers  = 1 << 20
	benchFPRate = 0.01
)

// Random 31-mers, two bits per base, in the encodings each library takes.
// The wide k-mers stand for k = 63.
var (
	kmers     []bitvec.W64
	kmerBytes [][]byte
	kmerWide  []bitvec.W128
)

func init() {
	rng := rand.New(rand.NewPCG(1, 2))
	kmers = make([]bitvec.W64, benchKmers)
	kmerBytes = make([][]byte, benchKmers)
	kmerWide = make([]bitvec.W128, benchKmers)
	for i := range kmers {
		km := rng.Uint64() >> 2
		kmers[i] = bitvec.W64(km)
		kmerBytes[i] = binary.LittleEndian.AppendUint64(nil, km)
		kmerWide[i] = bitvec.W128{km, rng.Uint64() >> 2}
	}
}

func BenchmarkAdd_Filter(b *testing.B) {
	f := bloom.New[bitvec.W64](benchKmers, benchFPRate)
	b.ResetTimer()
	for i := range b.N {
		f.Add(kmers[i%benchKmers])
	}
}

func BenchmarkAdd_FilterWide(b *testing.B) {
	f := bloom.New[bitvec.W128](benchKmers, benchFPRate)
	b.ResetTimer()
	for i := range b.N {
		f.Add(kmerWide[i%benchKmers])
	}
}

func BenchmarkAdd_AtomicFilter(b *testing.B) {
	f := bloom.NewAtomic[bitvec.W64](benchKmers, benchFPRate)
	b.ResetTimer()
	for i := range b.N {
		f.Add(kmers[i%benchKmers])
	}
}

func BenchmarkAdd_BitsAndBlooms(b *testing.B) {
	f := bab.NewWithEstimates(benchKmers, benchFPRate)
	b.ResetTimer()
	for i := range b.N {
		f.Add(kmerBytes[i%benchKmers])
	}
}

func BenchmarkAdd_AtomicBloom(b *testing.B) {
	f := atomicbloom.NewWithEstimates(benchKmers, benchFPRate)
	b.ResetTimer()
	for i := range b.N {
		f.Add(kmerBytes[i%benchKmers])
	}
}

func BenchmarkAdd_Blobloom(b *testing.B) {
	f := blobloom.NewOptimized(blobloom.Config{
		Capacity: benchKmers,
		FPRate:   benchFPRate,
	})
	b.ResetTimer()
	for i := range b.N {
		f.Add(xxhash.Sum64(kmerBytes[i%benchKmers]))
	}
}

// The duplicate policy of the store calls TestAndAdd once per k-mer.
func BenchmarkTestAndAdd_Filter(b *testing.B) {
	f := bloom.New[bitvec.W64](benchKmers, benchFPRate)
	b.ResetTimer()
	for i := range b.N {
		f.TestAndAdd(kmers[i%benchKmers])
	}
}

func BenchmarkTestAndAdd_BitsAndBlooms(b *testing.B) {
	f := bab.NewWithEstimates(benchKmers, benchFPRate)
	b.ResetTimer()
	for i := range b.N {
		f.TestAndAdd(kmerBytes[i%benchKmers])
	}
}

func BenchmarkTest_Filter(b *testing.B) {
	f := bloom.New[bitvec.W64](benchKmers, benchFPRate)
	for _, km := range kmers {
		f.Add(km)
	}
	b.ResetTimer()
	for i := range b.N {
		f.Test(kmers[i%benchKmers])
	}
}

func BenchmarkTest_BitsAndBlooms(b *testing.B) {
	f := bab.NewWithEstimates(benchKmers, benchFPRate)
	for _, km := range kmerBytes {
		f.Add(km)
	}
	b.ResetTimer()
	for i := range b.N {
		f.Test(kmerBytes[i%benchKmers])
	}
}

func BenchmarkTest_Blobloom(b *testing.B) {
	f := blobloom.NewOptimized(blobloom.Config{
		Capacity: benchKmers,
		FPRate:   benchFPRate,
	})
	hashes := make([]uint64, benchKmers)
	for i, km := range kmerBytes {
		hashes[i] = xxhash.Sum64(km)
		f.Add(hashes[i])
	}
	b.ResetTimer()
	for i := range b.N {
		f.Has(hashes[i%benchKmers])
	}
}

// The blacklist is read by every ingestion worker at once.
func BenchmarkTestParallel_AtomicFilter(b *testing.B) {
	f := bloom.NewAtomic[bitvec.W64](benchKmers, benchFPRate)
	for _, km := range kmers {
		f.Add(km)
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			f.Test(kmers[i%benchKmers])
			i++
		}
	})
}

func BenchmarkTestParallel_AtomicBloom(b *testing.B) {
	f := atomicbloom.NewWithEstimates(benchKmers, benchFPRate)
	for _, km := range kmerBytes {
		f.Add(km)
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			f.Test(kmerBytes[i%benchKmers])
			i++
		}
	})
}

// TestFalsePositiveRates compares the measured rates of the filters on k-mers
// that were never added.
func TestFalsePositiveRates(t *testing.T) {
	const n = benchKmers / 2

	ours := bloom.New[bitvec.W64](n, benchFPRate)
	theirs := bab.NewWithEstimates(n, benchFPRate)
	for i := range n {
		ours.Add(kmers[i])
		theirs.Add(kmerBytes[i])
	}

	var fpOurs, fpTheirs int
	for i := n; i < benchKmers; i++ {
		if ours.Test(kmers[i]) {
			fpOurs++
		}
		if theirs.Test(kmerBytes[i]) {
			fpTheirs++
		}
	}
	rateOurs := float64(fpOurs) / n
	rateTheirs := float64(fpTheirs) / n
	t.Logf("blocked: %.4f (estimated %.4f), bits-and-blooms: %.4f", rateOurs, ours.FalsePositiveRate(), rateTheirs)
	if rateOurs > 3*benchFPRate {
		t.Errorf("false positive rate %.4f, want below %.4f", rateOurs, 3*benchFPRate)
	}
}
