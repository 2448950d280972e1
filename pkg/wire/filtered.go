package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/lumenforge/spvchain/pkg/chainhash"
)

// FilteredBlock is the wire payload for a Bloom-filtered block summary
// (spec §6): header(80) || total-tx-count(u32 LE) || hashes(varint n, then
// n*32 bytes) || flags(varint m, then m bytes of Merkle-path bits).
type FilteredBlock struct {
	Header       Header
	TotalTxCount uint32
	Hashes       []chainhash.Hash
	Flags        []byte
}

// Encode serializes the filtered block to its wire form.
func (fb *FilteredBlock) Encode() []byte {
	buf := new(bytes.Buffer)
	buf.Write(fb.Header.Bytes())

	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], fb.TotalTxCount)
	buf.Write(u32[:])

	writeUvarint(buf, uint64(len(fb.Hashes)))
	for _, h := range fb.Hashes {
		buf.Write(h[:])
	}

	writeUvarint(buf, uint64(len(fb.Flags)))
	buf.Write(fb.Flags)

	return buf.Bytes()
}

// DecodeFilteredBlock parses a filtered-block payload from its wire form.
func DecodeFilteredBlock(b []byte) (*FilteredBlock, error) {
	if len(b) < HeaderSize+4 {
		return nil, fmt.Errorf("wire: filtered block too short (%d bytes)", len(b))
	}

	header, err := DecodeHeader(b[:HeaderSize])
	if err != nil {
		return nil, fmt.Errorf("wire: filtered block header: %w", err)
	}
	off := HeaderSize

	totalTxCount := binary.LittleEndian.Uint32(b[off:])
	off += 4

	n, read, err := readUvarint(b[off:])
	if err != nil {
		return nil, fmt.Errorf("wire: filtered block hash count: %w", err)
	}
	off += read

	if uint64(len(b)-off) < n*chainhash.Size {
		return nil, fmt.Errorf("wire: filtered block truncated hash list")
	}
	hashes := make([]chainhash.Hash, n)
	for i := range hashes {
		copy(hashes[i][:], b[off:off+chainhash.Size])
		off += chainhash.Size
	}

	m, read, err := readUvarint(b[off:])
	if err != nil {
		return nil, fmt.Errorf("wire: filtered block flag count: %w", err)
	}
	off += read

	if uint64(len(b)-off) < m {
		return nil, fmt.Errorf("wire: filtered block truncated flags")
	}
	flags := make([]byte, m)
	copy(flags, b[off:off+int(m)])

	return &FilteredBlock{
		Header:       *header,
		TotalTxCount: totalTxCount,
		Hashes:       hashes,
		Flags:        flags,
	}, nil
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func readUvarint(b []byte) (uint64, int, error) {
	v, n := binary.Uvarint(b)
	if n <= 0 {
		return 0, 0, fmt.Errorf("malformed varint")
	}
	return v, n, nil
}
