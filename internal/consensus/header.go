package consensus

import (
	"errors"
	"fmt"

	"github.com/lumenforge/spvchain/pkg/chainhash"
	"github.com/lumenforge/spvchain/pkg/chainparams"
	"github.com/lumenforge/spvchain/pkg/wire"
)

// maxFutureDrift bounds how far a header's timestamp may sit ahead of the
// verifying node's own clock, the standard SPV tolerance for clock skew
// across the network.
const maxFutureDrift = 2 * 60 * 60 // seconds

var (
	// ErrTimestampTooOld reports a header whose timestamp does not advance
	// past the median of recent ancestors.
	ErrTimestampTooOld = errors.New("consensus: header timestamp is not greater than the median of recent ancestors")
	// ErrTimestampTooNew reports a header claiming to be from too far in
	// the future relative to the verifier's clock.
	ErrTimestampTooNew = errors.New("consensus: header timestamp too far in the future")
	// ErrBadMerkleRoot reports a Merkle root that does not match the
	// block's actual transaction set.
	ErrBadMerkleRoot = errors.New("consensus: merkle root does not match transactions")
	// ErrCheckpointMismatch reports a block at a checkpointed height whose
	// hash does not match the pinned value.
	ErrCheckpointMismatch = errors.New("consensus: block conflicts with a checkpoint")
	// ErrCheckpointTimeTooOld reports a side-chain candidate dated before
	// the most recent checkpoint the node has passed.
	ErrCheckpointTimeTooOld = errors.New("consensus: block predates the last checkpoint")
)

// CheckTimestamp verifies header.Timestamp is strictly after medianTimePast
// (the median of the preceding 11 block timestamps, conventionally) and not
// more than maxFutureDrift ahead of now.
func CheckTimestamp(header *wire.Header, medianTimePast uint32, now uint32) error {
	if header.Timestamp <= medianTimePast {
		return ErrTimestampTooOld
	}
	if int64(header.Timestamp) > int64(now)+maxFutureDrift {
		return ErrTimestampTooNew
	}
	return nil
}

// CheckMerkleRoot recomputes the Merkle root from txHashes and compares it
// against the header's claimed root. Callers only invoke this when the
// block's contents are already known to matter (full mode, or a listener
// found something relevant) — recomputing is wasted work otherwise.
func CheckMerkleRoot(header *wire.Header, txHashes []chainhash.Hash) error {
	computed := wire.ComputeMerkleRoot(txHashes)
	if computed != header.MerkleRoot {
		return fmt.Errorf("%w: got %s, want %s", ErrBadMerkleRoot, computed, header.MerkleRoot)
	}
	return nil
}

// CheckCheckpoint verifies a candidate block against the checkpoint map:
// a block at a pinned height must carry the pinned hash, and a block dated
// before the most recently passed checkpoint's timestamp is rejected
// outright (it can only be forging a cheap side chain).
func CheckCheckpoint(height int64, hash chainhash.Hash, timestamp uint32, checkpointTimestamp uint32, params *chainparams.Params) error {
	if !params.PassesCheckpoint(height, hash) {
		return ErrCheckpointMismatch
	}
	if checkpointTimestamp > 0 && timestamp < checkpointTimestamp {
		return ErrCheckpointTimeTooOld
	}
	return nil
}
