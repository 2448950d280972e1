// Package tx defines the transaction type the Transaction Connector applies
// to and reverts from the UTXO set.
package tx

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"strconv"

	"github.com/lumenforge/spvchain/pkg/chainhash"
	"github.com/lumenforge/spvchain/pkg/script"
)

// Outpoint references a specific output of a transaction.
type Outpoint struct {
	TxID  chainhash.Hash `json:"txid"`
	Index uint32         `json:"index"`
}

// IsZero reports whether the outpoint has a zero TxID and index, the
// coinbase-input marker.
func (o Outpoint) IsZero() bool {
	return o.TxID.IsZero() && o.Index == 0
}

// String renders the outpoint as "<txid>:<index>" for diagnostics.
func (o Outpoint) String() string {
	return o.TxID.String() + ":" + strconv.FormatUint(uint64(o.Index), 10)
}

// Transaction moves value between outpoints.
type Transaction struct {
	Version  uint32   `json:"version"`
	Inputs   []Input  `json:"inputs"`
	Outputs  []Output `json:"outputs"`
	LockTime uint64   `json:"locktime"`
}

// Input references a UTXO being spent.
type Input struct {
	PrevOut   Outpoint `json:"prevout"`
	Signature []byte   `json:"signature"`
	PubKey    []byte   `json:"pubkey"`
}

type inputJSON struct {
	PrevOut   Outpoint `json:"prevout"`
	Signature *string  `json:"signature"`
	PubKey    *string  `json:"pubkey"`
}

func (in Input) MarshalJSON() ([]byte, error) {
	j := inputJSON{PrevOut: in.PrevOut}
	if in.Signature != nil {
		s := hex.EncodeToString(in.Signature)
		j.Signature = &s
	}
	if in.PubKey != nil {
		p := hex.EncodeToString(in.PubKey)
		j.PubKey = &p
	}
	return json.Marshal(j)
}

func (in *Input) UnmarshalJSON(data []byte) error {
	var j inputJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	in.PrevOut = j.PrevOut
	if j.Signature != nil {
		b, err := hex.DecodeString(*j.Signature)
		if err != nil {
			return err
		}
		in.Signature = b
	}
	if j.PubKey != nil {
		b, err := hex.DecodeString(*j.PubKey)
		if err != nil {
			return err
		}
		in.PubKey = b
	}
	return nil
}

// Output defines a new UTXO.
type Output struct {
	Value  uint64        `json:"value"`
	Script script.Script `json:"script"`
}

// Hash computes the transaction ID: BLAKE3 over the signing bytes, which
// exclude the signatures of spending inputs to avoid a circular dependency
// between signing and ID (a coinbase input's Signature data is included).
func (t *Transaction) Hash() chainhash.Hash {
	return chainhash.Sum(t.SigningBytes())
}

// SigningBytes returns the canonical byte representation used for both
// signing and transaction identity.
//
// Format: version(4) | input_count(4) |
// [prevout(36) + (coinbase with data only: sig_len(4) + sig)]... |
// output_count(4) | [value(8) + script_type(1) + script_data_len(4) + script_data]... |
// locktime(8)
func (t *Transaction) SigningBytes() []byte {
	var buf []byte

	buf = binary.LittleEndian.AppendUint32(buf, t.Version)

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(t.Inputs)))
	for _, in := range t.Inputs {
		buf = append(buf, in.PrevOut.TxID[:]...)
		buf = binary.LittleEndian.AppendUint32(buf, in.PrevOut.Index)
		// Coinbase inputs carry arbitrary data (e.g. height) in Signature;
		// include it so every coinbase transaction gets a distinct ID.
		if in.PrevOut.IsZero() && len(in.Signature) > 0 {
			buf = binary.LittleEndian.AppendUint32(buf, uint32(len(in.Signature)))
			buf = append(buf, in.Signature...)
		}
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(t.Outputs)))
	for _, out := range t.Outputs {
		buf = binary.LittleEndian.AppendUint64(buf, out.Value)
		buf = append(buf, byte(out.Script.Type))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(out.Script.Data)))
		buf = append(buf, out.Script.Data...)
	}

	buf = binary.LittleEndian.AppendUint64(buf, t.LockTime)

	return buf
}

// IsFinal reports whether the transaction may be included in a block at the
// given height with the given block timestamp. A LockTime below the
// threshold that separates block heights from Unix timestamps (500000000,
// the Bitcoin-style convention the engine inherits) is compared against
// height; otherwise it is compared against timestamp. LockTime 0 is always
// final.
func (t *Transaction) IsFinal(height uint64, timestamp uint32) bool {
	if t.LockTime == 0 {
		return true
	}
	const lockTimeThreshold = 500000000
	if t.LockTime < lockTimeThreshold {
		return height >= t.LockTime
	}
	return uint64(timestamp) >= t.LockTime
}
