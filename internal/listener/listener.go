// Package listener fans out chain-engine events to observers (wallets, UI,
// RPC subscribers) under the "copy rule": every listener after the first to
// see a given transaction gets an independent copy, so one listener's
// mutation of its own view never corrupts another's (spec component C8).
package listener

import (
	"github.com/lumenforge/spvchain/internal/store"
	"github.com/lumenforge/spvchain/pkg/chainhash"
	"github.com/lumenforge/spvchain/pkg/tx"
)

// Kind classifies why a listener is being notified of a transaction.
type Kind int

const (
	// BestChain means the transaction was included in a block that
	// extended the current best chain.
	BestChain Kind = iota
	// SideChain means the transaction was seen in a block on a branch
	// that is not (yet, or ever) the best chain.
	SideChain
)

// Listener is the contract every observer implements (spec §4.4, §6).
type Listener interface {
	// IsRelevant reports whether t matters to this listener, e.g. it pays
	// to or spends from an address the listener watches.
	IsRelevant(t *tx.Transaction) bool
	// IsTransactionRelevant is the filtered-block variant of IsRelevant,
	// consulted before a hash's full body is known.
	IsTransactionRelevant(hash chainhash.Hash) bool

	// ReceiveFromBlock delivers a relevant transaction's body.
	ReceiveFromBlock(t *tx.Transaction, block *store.StoredBlock, kind Kind) error
	// NotifyTxInBlock delivers a filtered block's matched hash, when no
	// transaction body is available.
	NotifyTxInBlock(hash chainhash.Hash, block *store.StoredBlock, kind Kind) error
	// NotifyNewBestBlock fires once per extension, after all per-transaction
	// callbacks for that block have been delivered.
	NotifyNewBestBlock(block *store.StoredBlock) error
	// Reorganize fires once per re-org, in listener registration order.
	Reorganize(split *store.StoredBlock, oldBlocks, newBlocks []*store.StoredBlock) error
}

// copyTransaction returns an independent copy of t so later listeners in
// the fan-out cannot observe mutations made by earlier ones.
func copyTransaction(t *tx.Transaction) *tx.Transaction {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Inputs = append([]tx.Input(nil), t.Inputs...)
	cp.Outputs = append([]tx.Output(nil), t.Outputs...)
	return &cp
}
