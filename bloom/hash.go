package bloom

import (
	"unsafe"

	"github.com/zeebo/xxh3"
)

// cacheLineSize is the size of a CPU cache line in bytes.
const cacheLineSize = 64

// hashKey hashes the raw memory of a k-mer. Keys must be plain words without
// pointers or padding, which holds for every bitvec representation.
func hashKey[K any](km *K) uint64 {
	return xxh3.Hash(unsafe.Slice((*byte)(unsafe.Pointer(km)), unsafe.Sizeof(*km)))
}

// alignedWords allocates n words starting on a cache line boundary. The raw
// slice must be kept alive alongside the words.
func alignedWords[W any](n int) ([]byte, []W) {
	var w W
	size := int(unsafe.Sizeof(w))
	raw := make([]byte, n*size+cacheLineSize-1)
	addr := uintptr(unsafe.Pointer(&raw[0]))
	off := (cacheLineSize - int(addr%cacheLineSize)) % cacheLineSize
	return raw, unsafe.Slice((*W)(unsafe.Pointer(&raw[off])), n)
}
