package utxo

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/lumenforge/spvchain/pkg/chainhash"
	"github.com/lumenforge/spvchain/pkg/wire"
)

// Commitment computes a Merkle root over every UTXO currently in store, a
// fingerprint a full-mode node can compare against a peer's to confirm its
// UTXO set matches at a given height without transferring the whole set.
func Commitment(store *Store) (chainhash.Hash, error) {
	var hashes []chainhash.Hash

	err := store.ForEach(func(u *UTXO) error {
		hashes = append(hashes, hashUTXO(u))
		return nil
	})
	if err != nil {
		return chainhash.Hash{}, fmt.Errorf("utxo commitment: %w", err)
	}

	if len(hashes) == 0 {
		return chainhash.Hash{}, nil
	}

	// Map iteration order is nondeterministic; sort before hashing so the
	// commitment is a pure function of set membership.
	sort.Slice(hashes, func(i, j int) bool {
		return hashes[i].Compare(hashes[j]) < 0
	})

	return wire.ComputeMerkleRoot(hashes), nil
}

// hashUTXO produces a deterministic hash of a UTXO's identity and contents:
// txid(32) | index(4) | value(8) | script_type(1) | script_data.
func hashUTXO(u *UTXO) chainhash.Hash {
	var buf []byte
	buf = append(buf, u.Outpoint.TxID[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, u.Outpoint.Index)
	buf = binary.LittleEndian.AppendUint64(buf, u.Value)
	buf = append(buf, byte(u.Script.Type))
	buf = append(buf, u.Script.Data...)
	return chainhash.Sum(buf)
}
