package store

import (
	"encoding/json"
	"math/big"

	"github.com/lumenforge/spvchain/pkg/chainhash"
	"github.com/lumenforge/spvchain/pkg/tx"
	"github.com/lumenforge/spvchain/pkg/wire"
)

// StoredBlock is the triple (header, cumulative_work, height) the chain
// tree is built from (spec §3). A stored block has at most one parent, by
// hash, but may have any number of children.
type StoredBlock struct {
	Header         wire.Header
	CumulativeWork *big.Int
	Height         uint64

	// Transactions is present only when the store still holds the body
	// (full or filtered mode, before pruning). A header-only stored block
	// has a nil slice.
	Transactions []*tx.Transaction
}

// Hash returns the stored block's identity.
func (s *StoredBlock) Hash() chainhash.Hash {
	return s.Header.Hash()
}

type storedBlockJSON struct {
	Header         wire.Header
	CumulativeWork string
	Height         uint64
	Transactions   []*tx.Transaction `json:"transactions,omitempty"`
}

// MarshalJSON encodes the stored block, representing CumulativeWork as a
// decimal string since big.Int has no native JSON form that round-trips
// precisely.
func (s *StoredBlock) MarshalJSON() ([]byte, error) {
	work := "0"
	if s.CumulativeWork != nil {
		work = s.CumulativeWork.String()
	}
	return json.Marshal(storedBlockJSON{
		Header:         s.Header,
		CumulativeWork: work,
		Height:         s.Height,
		Transactions:   s.Transactions,
	})
}

func (s *StoredBlock) UnmarshalJSON(data []byte) error {
	var j storedBlockJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	s.Header = j.Header
	s.Height = j.Height
	s.Transactions = j.Transactions
	s.CumulativeWork = new(big.Int)
	if j.CumulativeWork != "" {
		s.CumulativeWork.SetString(j.CumulativeWork, 10)
	}
	return nil
}

// UndoData records exactly what a block's connection did to the UTXO set,
// sufficient to replay or revert it (spec §3, "UTXO delta").
type UndoData struct {
	OutputsAdded    []tx.Outpoint
	OutputsConsumed []UndoOutput
}

// UndoOutput is a consumed UTXO paired with enough of its prior state that a
// revert can recreate it exactly, including the height it was mined at (full
// mode needs this to re-enforce coinbase maturity after a reorg).
type UndoOutput struct {
	Outpoint tx.Outpoint
	Output   tx.Output
	Height   uint64
	Coinbase bool
}
