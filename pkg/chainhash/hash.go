// Package chainhash defines the 256-bit hash type used throughout the SPV
// engine for block, header, and transaction identity, and the BLAKE3
// primitives used to compute it.
package chainhash

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"
)

// Size is the length of a hash in bytes.
const Size = 32

// Hash represents a 256-bit hash value, most significant byte first as
// produced by BLAKE3. Wire encoding carries the bytes in that order; the
// hex string form reverses them to match the network's (Bitcoin-style)
// display convention.
type Hash [Size]byte

// IsZero reports whether the hash is all zeros.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// String returns the hash in reversed (little-endian) hex, matching how
// block explorers and the wire format display hashes.
func (h Hash) String() string {
	var reversed Hash
	for i := 0; i < Size; i++ {
		reversed[i] = h[Size-1-i]
	}
	return hex.EncodeToString(reversed[:])
}

// Bytes returns a copy of the hash's internal big-endian byte representation.
func (h Hash) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, h[:])
	return b
}

// Compare returns -1, 0 or 1 if h is less than, equal to, or greater than o,
// treating both as big-endian integers.
func (h Hash) Compare(o Hash) int {
	return bytes.Compare(h[:], o[:])
}

// MarshalJSON encodes the hash as reversed hex.
func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON decodes a reversed-hex string into a hash.
func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*h = Hash{}
		return nil
	}
	decoded, err := NewFromStr(s)
	if err != nil {
		return err
	}
	*h = decoded
	return nil
}

// NewFromStr parses a reversed-hex hash string, the inverse of String.
func NewFromStr(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("invalid hash hex: %w", err)
	}
	if len(b) != Size {
		return Hash{}, fmt.Errorf("hash must be %d bytes, got %d", Size, len(b))
	}
	var h Hash
	for i := 0; i < Size; i++ {
		h[i] = b[Size-1-i]
	}
	return h, nil
}

// Sum computes the BLAKE3-256 hash of data.
func Sum(data []byte) Hash {
	return Hash(blake3.Sum256(data))
}

// DoubleSum computes Sum(Sum(data)).
func DoubleSum(data []byte) Hash {
	first := Sum(data)
	return Sum(first[:])
}

// Concat hashes the concatenation of two hashes, the pairing step used to
// build Merkle trees.
func Concat(a, b Hash) Hash {
	var buf [2 * Size]byte
	copy(buf[:Size], a[:])
	copy(buf[Size:], b[:])
	return Sum(buf[:])
}
