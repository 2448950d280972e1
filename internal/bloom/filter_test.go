package bloom

import (
	"bytes"
	"errors"
	"testing"
)

func TestFilterInsertContains(t *testing.T) {
	f := New(100, 0.01, 0, UpdateAll)

	present := [][]byte{[]byte("alice"), []byte("bob"), []byte("carol")}
	for _, item := range present {
		f.Insert(item)
	}

	for _, item := range present {
		if !f.Contains(item) {
			t.Errorf("Contains(%q) = false, want true after Insert", item)
		}
	}
}

func TestFilterAbsentUsuallyFalse(t *testing.T) {
	f := New(10, 0.0001, 1234, UpdateNone)
	f.Insert([]byte("inserted"))

	if f.Contains([]byte("never-inserted-distinct-value")) {
		t.Skip("false positive with low-p filter is possible but rare; not a correctness failure")
	}
}

func TestFilterSizeClampedToMax(t *testing.T) {
	f := New(100_000_000, 0.000001, 0, UpdateAll)
	if f.Size() > maxFilterBytes {
		t.Errorf("Size() = %d, want <= %d", f.Size(), maxFilterBytes)
	}
	if f.K() > maxHashFuncs {
		t.Errorf("K() = %d, want <= %d", f.K(), maxHashFuncs)
	}
}

func TestFilterMergeRequiresCompatibility(t *testing.T) {
	a := New(50, 0.01, 42, UpdateAll)
	b := New(50, 0.01, 42, UpdateAll)

	a.Insert([]byte("a-only"))
	b.Insert([]byte("b-only"))

	if err := a.Merge(b); err != nil {
		t.Fatalf("Merge() of compatible filters error: %v", err)
	}
	if !a.Contains([]byte("a-only")) || !a.Contains([]byte("b-only")) {
		t.Error("Merge() result should contain elements inserted into either source filter")
	}
}

func TestFilterMergeRejectsIncompatible(t *testing.T) {
	a := New(50, 0.01, 42, UpdateAll)
	differentTweak := New(50, 0.01, 99, UpdateAll)
	differentSize := New(5000, 0.01, 42, UpdateAll)

	if err := a.Merge(differentTweak); !errors.Is(err, ErrArgument) {
		t.Errorf("Merge() with differing tweak = %v, want ErrArgument", err)
	}
	if err := a.Merge(differentSize); !errors.Is(err, ErrArgument) {
		t.Errorf("Merge() with differing size = %v, want ErrArgument", err)
	}
	if err := a.Merge(nil); !errors.Is(err, ErrArgument) {
		t.Errorf("Merge(nil) = %v, want ErrArgument", err)
	}
}

func TestFilterEncodeDecodeRoundTrip(t *testing.T) {
	f := New(200, 0.005, 0xdeadbeef, UpdateP2PubkeyOnly)
	f.Insert([]byte("round"))
	f.Insert([]byte("trip"))

	encoded := f.Encode()
	got, err := DecodeFilter(encoded)
	if err != nil {
		t.Fatalf("DecodeFilter() error: %v", err)
	}

	if got.K() != f.K() || got.Tweak() != f.Tweak() || got.UpdateFlag() != f.UpdateFlag() {
		t.Errorf("DecodeFilter() params = (k=%d,tweak=%d,flag=%d), want (k=%d,tweak=%d,flag=%d)",
			got.K(), got.Tweak(), got.UpdateFlag(), f.K(), f.Tweak(), f.UpdateFlag())
	}
	if !bytes.Equal(got.bits, f.bits) {
		t.Error("DecodeFilter() bit array mismatch")
	}
	if !got.Contains([]byte("round")) || !got.Contains([]byte("trip")) {
		t.Error("decoded filter lost inserted membership")
	}
}

func TestDecodeFilterRejectsOversizedK(t *testing.T) {
	f := New(50, 0.01, 0, UpdateAll)
	encoded := f.Encode()

	// Corrupt the k field (immediately after the varint-prefixed bit array)
	// to exceed maxHashFuncs.
	off := 1 + len(f.bits) // 1-byte varint length prefix for small sizes
	encoded[off] = 255
	encoded[off+1] = 0
	encoded[off+2] = 0
	encoded[off+3] = 0

	if _, err := DecodeFilter(encoded); err == nil {
		t.Error("DecodeFilter() with k > maxHashFuncs should fail")
	}
}
