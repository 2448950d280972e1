package utxo

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/lumenforge/spvchain/internal/store"
	"github.com/lumenforge/spvchain/pkg/chainhash"
	"github.com/lumenforge/spvchain/pkg/tx"
)

// prefixUTXO keys the set: "u/" + txid(32) + index(4, big-endian).
var prefixUTXO = []byte("u/")

// Store implements Set backed by a store.DB, sharing the same key-value
// abstraction as the block store so both can live in one database.
type Store struct {
	db store.DB
}

// NewStore creates a UTXO store backed by db.
func NewStore(db store.DB) *Store {
	return &Store{db: db}
}

func utxoKey(op tx.Outpoint) []byte {
	key := make([]byte, len(prefixUTXO)+chainhash.Size+4)
	copy(key, prefixUTXO)
	copy(key[len(prefixUTXO):], op.TxID[:])
	binary.BigEndian.PutUint32(key[len(prefixUTXO)+chainhash.Size:], op.Index)
	return key
}

// Get retrieves a UTXO by its outpoint.
func (s *Store) Get(outpoint tx.Outpoint) (*UTXO, error) {
	data, err := s.db.Get(utxoKey(outpoint))
	if err != nil {
		return nil, fmt.Errorf("utxo get %s: %w", outpoint, err)
	}
	var u UTXO
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("utxo get %s: decode: %w", outpoint, err)
	}
	return &u, nil
}

// Put stores a UTXO, replacing any existing entry at the same outpoint.
func (s *Store) Put(u *UTXO) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("utxo put %s: encode: %w", u.Outpoint, err)
	}
	if err := s.db.Put(utxoKey(u.Outpoint), data); err != nil {
		return fmt.Errorf("utxo put %s: %w", u.Outpoint, err)
	}
	return nil
}

// Delete removes the UTXO at outpoint.
func (s *Store) Delete(outpoint tx.Outpoint) error {
	if err := s.db.Delete(utxoKey(outpoint)); err != nil {
		return fmt.Errorf("utxo delete %s: %w", outpoint, err)
	}
	return nil
}

// Has reports whether an unspent output exists at outpoint.
func (s *Store) Has(outpoint tx.Outpoint) (bool, error) {
	ok, err := s.db.Has(utxoKey(outpoint))
	if err != nil {
		return false, fmt.Errorf("utxo has %s: %w", outpoint, err)
	}
	return ok, nil
}

// ForEach visits every UTXO currently in the set. Iteration order is
// whatever the underlying DB's ForEach provides; callers needing a stable
// order must sort the results themselves.
func (s *Store) ForEach(fn func(*UTXO) error) error {
	return s.db.ForEach(prefixUTXO, func(_, value []byte) error {
		var u UTXO
		if err := json.Unmarshal(value, &u); err != nil {
			return fmt.Errorf("utxo foreach: decode: %w", err)
		}
		return fn(&u)
	})
}
