package bio

import (
	"encoding/binary"
)

// Uint64LE is the 8-byte little-endian form of n, as committed to in bids.
func Uint64LE(n uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, n)
	return b
}
