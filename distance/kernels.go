package distance

import (
	"encoding/binary"
	"math/bits"
)

// kernelHamming is set once at init; capability detection may replace it.
var kernelHamming = hammingGeneric

func hammingGeneric(a, b []byte) int {
	total := 0
	for i := range a {
		total += bits.OnesCount8(a[i] ^ b[i])
	}
	return total
}

func hammingWord(a, b []byte) int {
	total := 0
	i := 0
	for ; i+32 <= len(a); i += 32 {
		total += bits.OnesCount64(binary.LittleEndian.Uint64(a[i:]) ^ binary.LittleEndian.Uint64(b[i:]))
		total += bits.OnesCount64(binary.LittleEndian.Uint64(a[i+8:]) ^ binary.LittleEndian.Uint64(b[i+8:]))
		total += bits.OnesCount64(binary.LittleEndian.Uint64(a[i+16:]) ^ binary.LittleEndian.Uint64(b[i+16:]))
		total += bits.OnesCount64(binary.LittleEndian.Uint64(a[i+24:]) ^ binary.LittleEndian.Uint64(b[i+24:]))
	}
	for ; i+8 <= len(a); i += 8 {
		total += bits.OnesCount64(binary.LittleEndian.Uint64(a[i:]) ^ binary.LittleEndian.Uint64(b[i:]))
	}
	for ; i < len(a); i++ {
		total += bits.OnesCount8(a[i] ^ b[i])
	}
	return total
}
