package tx

import (
	"testing"

	"github.com/lumenforge/spvchain/pkg/chainhash"
	"github.com/lumenforge/spvchain/pkg/script"
)

func TestTransactionHashDeterministic(t *testing.T) {
	transaction := &Transaction{
		Version: 1,
		Inputs:  []Input{{PrevOut: Outpoint{TxID: chainhash.Hash{0x01}, Index: 0}}},
		Outputs: []Output{{Value: 1000, Script: script.Script{Type: script.TypeP2PKH}}},
	}

	h1 := transaction.Hash()
	h2 := transaction.Hash()
	if h1 != h2 {
		t.Error("Hash() should be deterministic")
	}
	if h1.IsZero() {
		t.Error("Hash() should not be zero")
	}
}

func TestTransactionHashChangesWithContent(t *testing.T) {
	tx1 := &Transaction{
		Version: 1,
		Inputs:  []Input{{PrevOut: Outpoint{TxID: chainhash.Hash{0x01}, Index: 0}}},
		Outputs: []Output{{Value: 1000, Script: script.Script{Type: script.TypeP2PKH}}},
	}
	tx2 := &Transaction{
		Version: 1,
		Inputs:  []Input{{PrevOut: Outpoint{TxID: chainhash.Hash{0x01}, Index: 0}}},
		Outputs: []Output{{Value: 2000, Script: script.Script{Type: script.TypeP2PKH}}},
	}

	if tx1.Hash() == tx2.Hash() {
		t.Error("different transactions should have different hashes")
	}
}

func TestTransactionHashIgnoresSignature(t *testing.T) {
	transaction := &Transaction{
		Version: 1,
		Inputs:  []Input{{PrevOut: Outpoint{TxID: chainhash.Hash{0x01}, Index: 0}}},
		Outputs: []Output{{Value: 1000, Script: script.Script{Type: script.TypeP2PKH}}},
	}

	h1 := transaction.Hash()
	transaction.Inputs[0].Signature = []byte("some signature")
	transaction.Inputs[0].PubKey = []byte("some key")
	h2 := transaction.Hash()

	if h1 != h2 {
		t.Error("Hash() should ignore signature and pubkey")
	}
}

func TestIsFinal(t *testing.T) {
	cases := []struct {
		name      string
		lockTime  uint64
		height    uint64
		timestamp uint32
		want      bool
	}{
		{"zero locktime always final", 0, 0, 0, true},
		{"height locktime not yet reached", 100, 99, 0, false},
		{"height locktime reached", 100, 100, 0, true},
		{"timestamp locktime not yet reached", 600000000, 1000, 599999999, false},
		{"timestamp locktime reached", 600000000, 1000, 600000000, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			transaction := &Transaction{LockTime: c.lockTime}
			if got := transaction.IsFinal(c.height, c.timestamp); got != c.want {
				t.Errorf("IsFinal(%d, %d) = %v, want %v", c.height, c.timestamp, got, c.want)
			}
		})
	}
}

func TestValidateRejectsDuplicateInput(t *testing.T) {
	transaction := &Transaction{
		Version: 1,
		Inputs: []Input{
			{PrevOut: Outpoint{TxID: chainhash.Hash{0x01}, Index: 0}, PubKey: []byte("k"), Signature: []byte("s")},
			{PrevOut: Outpoint{TxID: chainhash.Hash{0x01}, Index: 0}, PubKey: []byte("k"), Signature: []byte("s")},
		},
		Outputs: []Output{{Value: 1, Script: script.Script{Type: script.TypeP2PKH}}},
	}
	if err := transaction.Validate(); err == nil {
		t.Fatal("expected duplicate input to be rejected")
	}
}
