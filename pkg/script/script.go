// Package script holds the opaque locking-script type carried by outputs and
// the Verifier collaborator that tx.VerifySignatures calls to check a spend
// against it. Script execution is outside the chain engine's concern: the
// engine never calls a Verifier.
package script

import (
	"encoding/hex"
	"encoding/json"
)

// Type identifies the kind of locking condition a script expresses.
type Type uint8

const (
	TypeP2PKH Type = 0x01 // pay to public key hash
	TypeP2SH  Type = 0x02 // pay to script hash
)

func (t Type) String() string {
	switch t {
	case TypeP2PKH:
		return "P2PKH"
	case TypeP2SH:
		return "P2SH"
	default:
		return "Unknown"
	}
}

// Script is the locking condition attached to a transaction output. The
// chain engine never interprets Data itself; it is opaque payload for
// whatever Verifier the caller supplies.
type Script struct {
	Type Type   `json:"type"`
	Data []byte `json:"data"`
}

type scriptJSON struct {
	Type Type   `json:"type"`
	Data string `json:"data"`
}

func (s Script) MarshalJSON() ([]byte, error) {
	return json.Marshal(scriptJSON{Type: s.Type, Data: hex.EncodeToString(s.Data)})
}

func (s *Script) UnmarshalJSON(data []byte) error {
	var j scriptJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	s.Type = j.Type
	if j.Data != "" {
		b, err := hex.DecodeString(j.Data)
		if err != nil {
			return err
		}
		s.Data = b
	}
	return nil
}

// Verifier checks a spend's signature against a locking script.
// tx.VerifySignatures calls it as an opaque predicate; the Transaction
// Connector does not call it and never inspects script bytes.
type Verifier interface {
	// Verify reports whether signature over hash is valid for publicKey.
	Verify(hash, signature, publicKey []byte) bool
}
