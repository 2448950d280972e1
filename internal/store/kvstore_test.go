package store

import (
	"math/big"
	"testing"

	"github.com/lumenforge/spvchain/pkg/chainhash"
	"github.com/lumenforge/spvchain/pkg/wire"
)

func testStoredBlock(prev chainhash.Hash, height uint64, work int64) *StoredBlock {
	return &StoredBlock{
		Header: wire.Header{
			PrevHash: prev,
			Nonce:    uint32(height),
		},
		CumulativeWork: big.NewInt(work),
		Height:         height,
	}
}

func TestKVStorePutAndGet(t *testing.T) {
	st := NewKVStore(NewMemoryDB())

	sb := testStoredBlock(chainhash.Hash{}, 1, 100)
	if err := st.Put(sb); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	got, ok, err := st.Get(sb.Hash())
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !ok {
		t.Fatal("Get() expected ok=true")
	}
	if got.Height != sb.Height || got.CumulativeWork.Cmp(sb.CumulativeWork) != 0 {
		t.Errorf("Get() = %+v, want %+v", got, sb)
	}
}

func TestKVStoreGetMissing(t *testing.T) {
	st := NewKVStore(NewMemoryDB())
	_, ok, err := st.Get(chainhash.Hash{0xFF})
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if ok {
		t.Fatal("Get() expected ok=false for missing block")
	}
}

func TestKVStoreHeadPointer(t *testing.T) {
	st := NewKVStore(NewMemoryDB())

	if _, ok, err := st.GetHead(); err != nil || ok {
		t.Fatalf("GetHead() on empty store: ok=%v err=%v", ok, err)
	}

	sb := testStoredBlock(chainhash.Hash{}, 1, 100)
	if err := st.PutHead(sb); err != nil {
		t.Fatalf("PutHead() error: %v", err)
	}

	head, ok, err := st.GetHead()
	if err != nil || !ok {
		t.Fatalf("GetHead() error=%v ok=%v", err, ok)
	}
	if head.Hash() != sb.Hash() {
		t.Errorf("GetHead() = %s, want %s", head.Hash(), sb.Hash())
	}
}

func TestKVStoreUndoDataAndPruning(t *testing.T) {
	st := NewKVStore(NewMemoryDB())

	sb := testStoredBlock(chainhash.Hash{}, 1, 100)
	undo := &UndoData{}
	if err := st.PutWithUndo(sb, undo); err != nil {
		t.Fatalf("PutWithUndo() error: %v", err)
	}

	_, gotUndo, err := st.GetUndoable(sb.Hash())
	if err != nil {
		t.Fatalf("GetUndoable() error: %v", err)
	}
	if gotUndo == nil {
		t.Fatal("GetUndoable() expected non-nil undo data")
	}

	if err := st.PruneBody(sb.Hash()); err != nil {
		t.Fatalf("PruneBody() error: %v", err)
	}

	if _, _, err := st.GetUndoable(sb.Hash()); err != ErrPruned {
		t.Fatalf("GetUndoable() after prune = %v, want ErrPruned", err)
	}
}
