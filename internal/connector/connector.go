// Package connector applies and reverts a block's effect on the UTXO set in
// full-verification mode (spec component C6). It never touches script
// execution or signature checking — those are called, if at all, as an
// opaque predicate by a collaborator outside the chain engine.
package connector

import (
	"fmt"

	"github.com/lumenforge/spvchain/internal/store"
	"github.com/lumenforge/spvchain/internal/utxo"
	"github.com/lumenforge/spvchain/pkg/tx"
)

// CoinbaseMaturity is the number of confirmations a coinbase output must
// accumulate before another transaction may spend it.
const CoinbaseMaturity uint64 = 20

// ErrImmatureCoinbase reports a transaction that spends a coinbase output
// before it has accumulated CoinbaseMaturity confirmations.
type ErrImmatureCoinbase struct {
	Outpoint   tx.Outpoint
	SpendingAt uint64
	MinedAt    uint64
}

func (e *ErrImmatureCoinbase) Error() string {
	return fmt.Sprintf("connector: coinbase output %s mined at height %d is not yet spendable at height %d",
		e.Outpoint, e.MinedAt, e.SpendingAt)
}

// Connect applies every transaction in transactions, in order, to set as
// part of a block mined at height: inputs are spent
// (except the zero outpoint marking a coinbase input) and outputs become new
// UTXOs. It returns the undo data needed to exactly reverse the change.
//
// The block's first transaction (index 0) is treated as the coinbase.
func Connect(transactions []*tx.Transaction, height uint64, set utxo.Set) (*store.UndoData, error) {
	undo := &store.UndoData{}

	for txIdx, transaction := range transactions {
		txHash := transaction.Hash()
		isCoinbase := txIdx == 0

		for _, in := range transaction.Inputs {
			if in.PrevOut.IsZero() {
				continue
			}
			spent, err := set.Get(in.PrevOut)
			if err != nil {
				return nil, fmt.Errorf("connector: spend %s: %w", in.PrevOut, err)
			}
			if spent.Coinbase && height-spent.Height < CoinbaseMaturity {
				return nil, &ErrImmatureCoinbase{Outpoint: in.PrevOut, SpendingAt: height, MinedAt: spent.Height}
			}

			undo.OutputsConsumed = append(undo.OutputsConsumed, store.UndoOutput{
				Outpoint: in.PrevOut,
				Output:   tx.Output{Value: spent.Value, Script: spent.Script},
				Height:   spent.Height,
				Coinbase: spent.Coinbase,
			})
			if err := set.Delete(in.PrevOut); err != nil {
				return nil, fmt.Errorf("connector: spend %s: %w", in.PrevOut, err)
			}
		}

		for i, out := range transaction.Outputs {
			outpoint := tx.Outpoint{TxID: txHash, Index: uint32(i)}
			u := &utxo.UTXO{
				Outpoint: outpoint,
				Value:    out.Value,
				Script:   out.Script,
				Height:   height,
				Coinbase: isCoinbase,
			}
			if err := set.Put(u); err != nil {
				return nil, fmt.Errorf("connector: create output %s: %w", outpoint, err)
			}
			undo.OutputsAdded = append(undo.OutputsAdded, outpoint)
		}
	}

	return undo, nil
}

// Disconnect reverts exactly what Connect did: deletes every output it
// added, then restores every output it consumed. Outputs are deleted in
// reverse order so a transaction's own outputs never outlive an attempt to
// recreate an input they might shadow.
func Disconnect(undo *store.UndoData, set utxo.Set) error {
	for i := len(undo.OutputsAdded) - 1; i >= 0; i-- {
		op := undo.OutputsAdded[i]
		if err := set.Delete(op); err != nil {
			return fmt.Errorf("connector: remove added output %s: %w", op, err)
		}
	}

	for i := len(undo.OutputsConsumed) - 1; i >= 0; i-- {
		c := undo.OutputsConsumed[i]
		u := &utxo.UTXO{
			Outpoint: c.Outpoint,
			Value:    c.Output.Value,
			Script:   c.Output.Script,
			Height:   c.Height,
			Coinbase: c.Coinbase,
		}
		if err := set.Put(u); err != nil {
			return fmt.Errorf("connector: restore consumed output %s: %w", c.Outpoint, err)
		}
	}

	return nil
}
