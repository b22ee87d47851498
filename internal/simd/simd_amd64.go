//go:build amd64

package simd

import (
	"math/bits"

	"golang.org/x/sys/cpu"
)

func init() {
	if cpu.X86.HasAVX2 || cpu.X86.HasAVX512F {
		scanImpl = scanSeparatorsSWAR
	} else {
		scanImpl = scanSeparatorsGeneric
	}
}

// scanSeparatorsGeneric is the fallback for AMD64 CPUs without wide-word
// support worth using. It matches the signature of scanSeparatorsSWAR.
func scanSeparatorsGeneric(data []byte, sep byte) uint64 {
	var count uint64
	for _, b := range data {
		if b == sep {
			count++
		}
	}
	return count
}

// scanSeparatorsSWAR counts occurrences of sep eight bytes at a time using
// the classic SWAR (SIMD Within A Register) broadcast-xor-then-zero-test
// trick, rather than real AVX2/AVX512 intrinsics (no assembly is linked into
// this package). Selected only on CPUs that advertise AVX2/AVX512, as a
// proxy for "wide loads pay off on this core"; the arithmetic itself is
// plain Go and gives the same count on any amd64.
func scanSeparatorsSWAR(data []byte, sep byte) uint64 {
	var count uint64
	broadcast := uint64(0x0101010101010101) * uint64(sep)

	i := 0
	for ; i+8 <= len(data); i += 8 {
		word := uint64(data[i]) | uint64(data[i+1])<<8 | uint64(data[i+2])<<16 | uint64(data[i+3])<<24 |
			uint64(data[i+4])<<32 | uint64(data[i+5])<<40 | uint64(data[i+6])<<48 | uint64(data[i+7])<<56
		x := word ^ broadcast
		// Bytes of x that were equal to sep are now 0x00. Adding 0x7F to
		// the low seven bits of each byte cannot carry into the next byte,
		// so y has its high bit clear exactly in the bytes that are 0x00.
		y := (x&0x7F7F7F7F7F7F7F7F + 0x7F7F7F7F7F7F7F7F) | x | 0x7F7F7F7F7F7F7F7F
		count += uint64(bits.OnesCount64(^y))
	}

	for ; i < len(data); i++ {
		if data[i] == sep {
			count++
		}
	}

	return count
}
