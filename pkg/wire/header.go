// Package wire defines the on-the-wire block and header formats consumed by
// the chain engine: the 80-byte header, compact difficulty targets, Merkle
// roots, and the filtered-block payload used for Bloom-filtered sync.
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/lumenforge/spvchain/pkg/chainhash"
)

// HeaderSize is the length in bytes of the serialized header: version(4) |
// prev-hash(32) | merkle-root(32) | timestamp(4) | bits(4) | nonce(4).
const HeaderSize = 4 + chainhash.Size + chainhash.Size + 4 + 4 + 4

// Header is a block header. Immutable once constructed; its hash is a pure
// function of these fields.
type Header struct {
	Version    uint32
	PrevHash   chainhash.Hash
	MerkleRoot chainhash.Hash
	Timestamp  uint32
	Bits       uint32 // compact difficulty target ("nBits")
	Nonce      uint32
}

// Bytes serializes the header to its canonical 80-byte wire form.
func (h *Header) Bytes() []byte {
	buf := make([]byte, 0, HeaderSize)
	buf = binary.LittleEndian.AppendUint32(buf, h.Version)
	buf = append(buf, h.PrevHash[:]...)
	buf = append(buf, h.MerkleRoot[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, h.Timestamp)
	buf = binary.LittleEndian.AppendUint32(buf, h.Bits)
	buf = binary.LittleEndian.AppendUint32(buf, h.Nonce)
	return buf
}

// Hash returns the header's identity: BLAKE3-256 of its wire bytes.
func (h *Header) Hash() chainhash.Hash {
	return chainhash.Sum(h.Bytes())
}

// DecodeHeader parses an 80-byte header from its wire form.
func DecodeHeader(b []byte) (*Header, error) {
	if len(b) != HeaderSize {
		return nil, fmt.Errorf("wire: header must be %d bytes, got %d", HeaderSize, len(b))
	}
	h := &Header{}
	off := 0
	h.Version = binary.LittleEndian.Uint32(b[off:])
	off += 4
	copy(h.PrevHash[:], b[off:off+chainhash.Size])
	off += chainhash.Size
	copy(h.MerkleRoot[:], b[off:off+chainhash.Size])
	off += chainhash.Size
	h.Timestamp = binary.LittleEndian.Uint32(b[off:])
	off += 4
	h.Bits = binary.LittleEndian.Uint32(b[off:])
	off += 4
	h.Nonce = binary.LittleEndian.Uint32(b[off:])
	return h, nil
}
