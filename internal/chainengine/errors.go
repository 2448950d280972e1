package chainengine

import (
	"errors"
	"fmt"

	"github.com/lumenforge/spvchain/pkg/chainhash"
)

// ErrStoreFailure marks an error originating from the underlying block
// store (I/O, corruption) as opposed to a consensus-rule violation. It wraps
// whatever the store returned; callers should treat it as fatal to the
// current add/reorg (spec §7, "Store").
var ErrStoreFailure = errors.New("chainengine: store failure")

// ErrArgument marks API misuse. No Engine method returns it; AddListener,
// for one, accepts any value, nil included, without an error.
var ErrArgument = errors.New("chainengine: invalid argument")

// VerificationError reports that a candidate block violated a consensus
// rule: bad proof of work, a bad Merkle root, a non-final transaction, a
// failed checkpoint, or an impossible re-org split point. The block is
// dropped and the store is left untouched.
type VerificationError struct {
	Hash chainhash.Hash
	Err  error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("chainengine: block %s failed verification: %v", e.Hash, e.Err)
}

func (e *VerificationError) Unwrap() error { return e.Err }

// PrunedError reports that a re-organization needs undo data the store no
// longer holds for Hash. The re-org is abandoned; the caller may fetch full
// blocks for the affected range and retry.
type PrunedError struct {
	Hash chainhash.Hash
}

func (e *PrunedError) Error() string {
	return fmt.Sprintf("chainengine: undo data for block %s was pruned", e.Hash)
}

func wrapStore(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStoreFailure, err)
}
