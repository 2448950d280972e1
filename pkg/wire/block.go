package wire

import (
	"github.com/lumenforge/spvchain/pkg/chainhash"
	"github.com/lumenforge/spvchain/pkg/tx"
)

// Block is a header plus, optionally, transactions (spec §3). A header-only
// block has no transactions; a filtered block carries every transaction
// hash in the full block plus the subset of full transactions matching a
// Bloom filter.
type Block struct {
	Header *Header

	// Transactions is set for a full block.
	Transactions []*tx.Transaction

	// TxHashes is the complete set of transaction hashes in the original
	// full block. Set for filtered blocks; for a full block it can always
	// be recomputed from Transactions.
	TxHashes []chainhash.Hash

	// FilteredTxs is the subset of Transactions that matched the filter
	// the remote peer applied. Every hash here must be present in
	// TxHashes (spec §3 invariant).
	FilteredTxs []*tx.Transaction
}

// IsFiltered reports whether this block arrived as a Bloom-filtered summary
// rather than with full transaction bodies.
func (b *Block) IsFiltered() bool {
	return b.Transactions == nil && b.TxHashes != nil
}

// Hash returns the block's identity, which is its header's hash.
func (b *Block) Hash() chainhash.Hash {
	return b.Header.Hash()
}

// AllTxHashes returns the complete set of transaction hashes carried or
// implied by the block: TxHashes if set (filtered mode), otherwise computed
// from Transactions.
func (b *Block) AllTxHashes() []chainhash.Hash {
	if b.TxHashes != nil {
		return b.TxHashes
	}
	hashes := make([]chainhash.Hash, len(b.Transactions))
	for i, t := range b.Transactions {
		hashes[i] = t.Hash()
	}
	return hashes
}

// RelevantTransactions returns the transactions the caller actually has
// bodies for: Transactions in full mode, FilteredTxs in filtered mode.
func (b *Block) RelevantTransactions() []*tx.Transaction {
	if b.Transactions != nil {
		return b.Transactions
	}
	return b.FilteredTxs
}
