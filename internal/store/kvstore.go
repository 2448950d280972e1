package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lumenforge/spvchain/pkg/chainhash"
)

// Key prefixes, following the teacher's b/ h/ x/ d/ scheme.
var (
	prefixBlock = []byte("b/") // b/<hash(32)> -> StoredBlock JSON
	prefixUndo  = []byte("d/") // d/<hash(32)> -> UndoData JSON
	keyHead     = []byte("s/head")
)

// KVStore implements Store over any DB, giving the block-store's key-prefix
// scheme and JSON encoding a single home shared by MemoryDB and BadgerDB.
type KVStore struct {
	db DB
}

// NewKVStore wraps db with the Store contract.
func NewKVStore(db DB) *KVStore {
	return &KVStore{db: db}
}

func blockKey(hash chainhash.Hash) []byte {
	key := make([]byte, len(prefixBlock)+chainhash.Size)
	copy(key, prefixBlock)
	copy(key[len(prefixBlock):], hash[:])
	return key
}

func undoKey(hash chainhash.Hash) []byte {
	key := make([]byte, len(prefixUndo)+chainhash.Size)
	copy(key, prefixUndo)
	copy(key[len(prefixUndo):], hash[:])
	return key
}

func (k *KVStore) Get(hash chainhash.Hash) (*StoredBlock, bool, error) {
	data, err := k.db.Get(blockKey(hash))
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store get %s: %w", hash, err)
	}
	var sb StoredBlock
	if err := json.Unmarshal(data, &sb); err != nil {
		return nil, false, fmt.Errorf("store get %s: decode: %w", hash, err)
	}
	return &sb, true, nil
}

func (k *KVStore) GetHead() (*StoredBlock, bool, error) {
	hashBytes, err := k.db.Get(keyHead)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store get head: %w", err)
	}
	if len(hashBytes) != chainhash.Size {
		return nil, false, fmt.Errorf("store get head: corrupt pointer (%d bytes)", len(hashBytes))
	}
	var hash chainhash.Hash
	copy(hash[:], hashBytes)
	return k.Get(hash)
}

func (k *KVStore) PutHead(sb *StoredBlock) error {
	hash := sb.Hash()
	if err := k.Put(sb); err != nil {
		return err
	}
	if err := k.db.Put(keyHead, hash[:]); err != nil {
		return fmt.Errorf("store put head: %w", err)
	}
	return nil
}

func (k *KVStore) Put(sb *StoredBlock) error {
	data, err := json.Marshal(sb)
	if err != nil {
		return fmt.Errorf("store put: encode: %w", err)
	}
	if err := k.db.Put(blockKey(sb.Hash()), data); err != nil {
		return fmt.Errorf("store put: %w", err)
	}
	return nil
}

func (k *KVStore) PutWithUndo(sb *StoredBlock, undo *UndoData) error {
	if err := k.Put(sb); err != nil {
		return err
	}
	data, err := json.Marshal(undo)
	if err != nil {
		return fmt.Errorf("store put undo: encode: %w", err)
	}
	if err := k.db.Put(undoKey(sb.Hash()), data); err != nil {
		return fmt.Errorf("store put undo: %w", err)
	}
	return nil
}

func (k *KVStore) GetUndoable(hash chainhash.Hash) (*StoredBlock, *UndoData, error) {
	sb, ok, err := k.Get(hash)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("store get undoable %s: %w", hash, ErrNotFound)
	}

	data, err := k.db.Get(undoKey(hash))
	if errors.Is(err, ErrNotFound) {
		return sb, nil, ErrPruned
	}
	if err != nil {
		return nil, nil, fmt.Errorf("store get undoable %s: %w", hash, err)
	}
	var undo UndoData
	if err := json.Unmarshal(data, &undo); err != nil {
		return nil, nil, fmt.Errorf("store get undoable %s: decode: %w", hash, err)
	}
	return sb, &undo, nil
}

func (k *KVStore) PruneBody(hash chainhash.Hash) error {
	sb, ok, err := k.Get(hash)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("store prune %s: %w", hash, ErrNotFound)
	}
	sb.Transactions = nil
	if err := k.Put(sb); err != nil {
		return err
	}
	if err := k.db.Delete(undoKey(hash)); err != nil {
		return fmt.Errorf("store prune %s: delete undo: %w", hash, err)
	}
	return nil
}

func (k *KVStore) Close() error {
	return k.db.Close()
}
