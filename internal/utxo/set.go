// Package utxo manages the unspent-transaction-output set that full mode
// consults and mutates as blocks connect and disconnect.
package utxo

import (
	"github.com/lumenforge/spvchain/pkg/script"
	"github.com/lumenforge/spvchain/pkg/tx"
)

// UTXO is an unspent output together with the provenance full mode needs to
// enforce coinbase maturity.
type UTXO struct {
	Outpoint tx.Outpoint   `json:"outpoint"`
	Value    uint64        `json:"value"`
	Script   script.Script `json:"script"`
	Height   uint64        `json:"height"`
	Coinbase bool          `json:"coinbase"`
}

// Set is the storage contract the transaction connector mutates.
type Set interface {
	Get(outpoint tx.Outpoint) (*UTXO, error)
	Put(u *UTXO) error
	Delete(outpoint tx.Outpoint) error
	Has(outpoint tx.Outpoint) (bool, error)
}
