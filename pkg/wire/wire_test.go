package wire

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/lumenforge/spvchain/pkg/chainhash"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := &Header{
		Version:    1,
		PrevHash:   chainhash.Sum([]byte("prev")),
		MerkleRoot: chainhash.Sum([]byte("root")),
		Timestamp:  1700000000,
		Bits:       0x1d00ffff,
		Nonce:      42,
	}

	b := h.Bytes()
	if len(b) != HeaderSize {
		t.Fatalf("Bytes() length = %d, want %d", len(b), HeaderSize)
	}

	got, err := DecodeHeader(b)
	if err != nil {
		t.Fatalf("DecodeHeader() error: %v", err)
	}
	if *got != *h {
		t.Fatalf("DecodeHeader() = %+v, want %+v", got, h)
	}
}

func TestHeaderHashDeterministic(t *testing.T) {
	h := &Header{Version: 1, Nonce: 7}
	if h.Hash() != h.Hash() {
		t.Fatal("Hash() must be deterministic")
	}
}

func TestCompactTargetRoundTrip(t *testing.T) {
	cases := []uint32{0x1d00ffff, 0x1b0404cb, 0x207fffff}
	for _, bits := range cases {
		target := CompactToBig(bits)
		got := BigToCompact(target)
		if got != bits {
			t.Errorf("BigToCompact(CompactToBig(%#x)) = %#x, want %#x", bits, got, bits)
		}
	}
}

func TestCalcWorkDecreasesWithEasierTarget(t *testing.T) {
	hardWork := CalcWork(0x1b0404cb)
	easyWork := CalcWork(0x1d00ffff)
	if hardWork.Cmp(easyWork) <= 0 {
		t.Fatal("a lower (harder) target must represent more work")
	}
}

func TestCheckProofOfWork(t *testing.T) {
	target := big.NewInt(0).SetBytes([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
	bits := BigToCompact(target)

	belowTarget := make([]byte, 32) // all zero: definitely <= target
	if !CheckProofOfWork(belowTarget, bits) {
		t.Error("zero hash should satisfy any positive target")
	}

	aboveTarget := make([]byte, 32)
	for i := range aboveTarget {
		aboveTarget[i] = 0xff
	}
	if CheckProofOfWork(aboveTarget, bits) {
		t.Error("all-ones hash should not satisfy a small target")
	}
}

func TestComputeMerkleRootSingle(t *testing.T) {
	h := chainhash.Sum([]byte("only"))
	if got := ComputeMerkleRoot([]chainhash.Hash{h}); got != h {
		t.Errorf("single-hash Merkle root = %s, want %s", got, h)
	}
}

func TestComputeMerkleRootEmpty(t *testing.T) {
	if got := ComputeMerkleRoot(nil); !got.IsZero() {
		t.Errorf("empty Merkle root = %s, want zero", got)
	}
}

func TestComputeMerkleRootOddCount(t *testing.T) {
	hashes := []chainhash.Hash{
		chainhash.Sum([]byte("a")),
		chainhash.Sum([]byte("b")),
		chainhash.Sum([]byte("c")),
	}
	// Must not panic and must be deterministic.
	r1 := ComputeMerkleRoot(hashes)
	r2 := ComputeMerkleRoot(hashes)
	if r1 != r2 {
		t.Fatal("Merkle root must be deterministic")
	}
}

func TestFilteredBlockRoundTrip(t *testing.T) {
	fb := &FilteredBlock{
		Header: Header{
			Version:   1,
			Timestamp: 1700000000,
			Bits:      0x1d00ffff,
		},
		TotalTxCount: 3,
		Hashes: []chainhash.Hash{
			chainhash.Sum([]byte("a")),
			chainhash.Sum([]byte("b")),
			chainhash.Sum([]byte("c")),
		},
		Flags: []byte{0b00000111},
	}

	encoded := fb.Encode()
	got, err := DecodeFilteredBlock(encoded)
	if err != nil {
		t.Fatalf("DecodeFilteredBlock() error: %v", err)
	}

	if got.TotalTxCount != fb.TotalTxCount {
		t.Errorf("TotalTxCount = %d, want %d", got.TotalTxCount, fb.TotalTxCount)
	}
	if len(got.Hashes) != len(fb.Hashes) {
		t.Fatalf("Hashes length = %d, want %d", len(got.Hashes), len(fb.Hashes))
	}
	for i := range fb.Hashes {
		if got.Hashes[i] != fb.Hashes[i] {
			t.Errorf("Hashes[%d] = %s, want %s", i, got.Hashes[i], fb.Hashes[i])
		}
	}
	if !bytes.Equal(got.Flags, fb.Flags) {
		t.Errorf("Flags = %v, want %v", got.Flags, fb.Flags)
	}
}
