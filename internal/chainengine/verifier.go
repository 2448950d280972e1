package chainengine

import (
	"github.com/lumenforge/spvchain/internal/connector"
	"github.com/lumenforge/spvchain/internal/store"
	"github.com/lumenforge/spvchain/internal/utxo"
	"github.com/lumenforge/spvchain/pkg/tx"
)

// Verifier is the capability that distinguishes header-only (SPV) operation
// from full transaction verification, so a single Engine implementation
// serves both without an inheritance hierarchy (spec §9 design note).
type Verifier interface {
	// ShouldVerifyTransactions reports whether the engine must reject a
	// block that lacks transaction bodies and must connect/disconnect
	// transactions against a UTXO set.
	ShouldVerifyTransactions() bool
	// Connect applies transactions mined at height to whatever state this
	// verifier maintains, returning undo data sufficient to reverse it.
	// A header-only verifier's Connect is a no-op returning nil undo.
	Connect(transactions []*tx.Transaction, height uint64) (*store.UndoData, error)
	// Disconnect reverses exactly what the matching Connect call did.
	Disconnect(undo *store.UndoData) error
}

// HeaderOnlyVerifier runs the engine in SPV mode: trust rests on proof of
// work and checkpoints alone, no UTXO bookkeeping is performed.
type HeaderOnlyVerifier struct{}

func (HeaderOnlyVerifier) ShouldVerifyTransactions() bool { return false }

func (HeaderOnlyVerifier) Connect([]*tx.Transaction, uint64) (*store.UndoData, error) {
	return nil, nil
}

func (HeaderOnlyVerifier) Disconnect(*store.UndoData) error { return nil }

// FullVerifier runs the engine in full-verification mode, applying and
// reverting a block's effect on set via the transaction connector.
type FullVerifier struct {
	Set utxo.Set
}

// NewFullVerifier returns a Verifier backed by set.
func NewFullVerifier(set utxo.Set) *FullVerifier {
	return &FullVerifier{Set: set}
}

func (f *FullVerifier) ShouldVerifyTransactions() bool { return true }

func (f *FullVerifier) Connect(transactions []*tx.Transaction, height uint64) (*store.UndoData, error) {
	return connector.Connect(transactions, height, f.Set)
}

func (f *FullVerifier) Disconnect(undo *store.UndoData) error {
	return connector.Disconnect(undo, f.Set)
}
