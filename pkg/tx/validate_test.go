package tx

import (
	"errors"
	"testing"

	"github.com/lumenforge/spvchain/pkg/crypto"
	"github.com/lumenforge/spvchain/pkg/script"
)

func validTransaction(t *testing.T) *Transaction {
	t.Helper()
	return &Transaction{
		Version: 1,
		Inputs: []Input{{
			PrevOut:   Outpoint{TxID: [32]byte{1}, Index: 0},
			Signature: []byte{0xAB},
			PubKey:    []byte{0xCD},
		}},
		Outputs: []Output{{Value: 1000, Script: script.Script{Type: script.TypeP2PKH}}},
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := validTransaction(t).Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_NoInputs(t *testing.T) {
	txn := validTransaction(t)
	txn.Inputs = nil
	if err := txn.Validate(); !errors.Is(err, ErrNoInputs) {
		t.Errorf("Validate() error = %v, want %v", err, ErrNoInputs)
	}
}

func TestValidate_NoOutputs(t *testing.T) {
	txn := validTransaction(t)
	txn.Outputs = nil
	if err := txn.Validate(); !errors.Is(err, ErrNoOutputs) {
		t.Errorf("Validate() error = %v, want %v", err, ErrNoOutputs)
	}
}

func TestValidate_DuplicateInput(t *testing.T) {
	txn := validTransaction(t)
	txn.Inputs = append(txn.Inputs, txn.Inputs[0])
	if err := txn.Validate(); !errors.Is(err, ErrDuplicateInput) {
		t.Errorf("Validate() error = %v, want %v", err, ErrDuplicateInput)
	}
}

func TestValidate_ZeroOutput(t *testing.T) {
	txn := validTransaction(t)
	txn.Outputs[0].Value = 0
	if err := txn.Validate(); !errors.Is(err, ErrZeroOutput) {
		t.Errorf("Validate() error = %v, want %v", err, ErrZeroOutput)
	}
}

func TestValidate_MissingSignature(t *testing.T) {
	txn := validTransaction(t)
	txn.Inputs[0].Signature = nil
	if err := txn.Validate(); !errors.Is(err, ErrMissingSig) {
		t.Errorf("Validate() error = %v, want %v", err, ErrMissingSig)
	}
}

func TestValidate_MissingPubKey(t *testing.T) {
	txn := validTransaction(t)
	txn.Inputs[0].PubKey = nil
	if err := txn.Validate(); !errors.Is(err, ErrMissingPubKey) {
		t.Errorf("Validate() error = %v, want %v", err, ErrMissingPubKey)
	}
}

func TestValidate_CoinbaseSkipsSignatureChecks(t *testing.T) {
	txn := &Transaction{
		Version: 1,
		Inputs:  []Input{{PrevOut: Outpoint{}}}, // zero outpoint: coinbase
		Outputs: []Output{{Value: 5000, Script: script.Script{Type: script.TypeP2PKH}}},
	}
	if err := txn.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil for coinbase input", err)
	}
}

func TestValidate_OutputOverflow(t *testing.T) {
	txn := validTransaction(t)
	txn.Outputs = []Output{
		{Value: ^uint64(0), Script: script.Script{Type: script.TypeP2PKH}},
		{Value: 1, Script: script.Script{Type: script.TypeP2PKH}},
	}
	if err := txn.Validate(); !errors.Is(err, ErrOutputOverflow) {
		t.Errorf("Validate() error = %v, want %v", err, ErrOutputOverflow)
	}
}

func TestTransaction_VerifySignatures(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}

	txn := &Transaction{
		Version: 1,
		Inputs: []Input{{
			PrevOut: Outpoint{TxID: [32]byte{1}, Index: 0},
			PubKey:  key.PublicKey(),
		}},
		Outputs: []Output{{Value: 1000, Script: script.Script{Type: script.TypeP2PKH}}},
	}

	hash := txn.Hash()
	sig, err := key.Sign(hash[:])
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	txn.Inputs[0].Signature = sig

	if err := txn.VerifySignatures(script.SchnorrVerifier{}); err != nil {
		t.Errorf("VerifySignatures() error = %v, want nil", err)
	}
}

func TestTransaction_VerifySignatures_WrongKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}
	other, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}

	txn := &Transaction{
		Version: 1,
		Inputs: []Input{{
			PrevOut: Outpoint{TxID: [32]byte{1}, Index: 0},
			PubKey:  other.PublicKey(),
		}},
		Outputs: []Output{{Value: 1000, Script: script.Script{Type: script.TypeP2PKH}}},
	}

	hash := txn.Hash()
	sig, err := key.Sign(hash[:])
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	txn.Inputs[0].Signature = sig

	if err := txn.VerifySignatures(script.SchnorrVerifier{}); !errors.Is(err, ErrInvalidSig) {
		t.Errorf("VerifySignatures() error = %v, want %v", err, ErrInvalidSig)
	}
}

func TestTransaction_VerifySignatures_SkipsCoinbase(t *testing.T) {
	txn := &Transaction{
		Version: 1,
		Inputs:  []Input{{PrevOut: Outpoint{}}},
		Outputs: []Output{{Value: 5000, Script: script.Script{Type: script.TypeP2PKH}}},
	}
	if err := txn.VerifySignatures(script.SchnorrVerifier{}); err != nil {
		t.Errorf("VerifySignatures() error = %v, want nil for coinbase input", err)
	}
}
