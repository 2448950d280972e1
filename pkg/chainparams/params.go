// Package chainparams carries the network-parameters contract the chain
// engine consults but never mutates: the genesis block, proof-of-work
// limits, retarget cadence, checkpoints, and the testnet flag. Modeled on
// the chaincfg.Params pattern used throughout the btcd/ppcd/exccd family.
package chainparams

import (
	"math/big"
	"time"

	"github.com/lumenforge/spvchain/pkg/chainhash"
	"github.com/lumenforge/spvchain/pkg/wire"
)

// Checkpoint is a hard-coded (height, hash) pair a candidate block at that
// height must match.
type Checkpoint struct {
	Height int64
	Hash   chainhash.Hash
}

// Params describes a network's consensus parameters.
type Params struct {
	Name string

	// GenesisHeader and GenesisHash describe the root of the chain.
	GenesisHeader wire.Header
	GenesisHash   chainhash.Hash

	// PowLimit is the easiest allowed proof-of-work target on this network.
	PowLimit     *big.Int
	PowLimitBits uint32

	// TargetSpacing is the intended time between blocks.
	TargetSpacing time.Duration
	// RetargetInterval is the number of blocks between difficulty
	// adjustments.
	RetargetInterval int64
	// RetargetAdjustmentFactor bounds how far a single retarget may move
	// difficulty: new target is clamped to [old/factor, old*factor].
	RetargetAdjustmentFactor int64

	// ReduceMinDifficulty enables the testnet "easy block" rule: if no
	// block has arrived within ReduceMinDifficultyGap, the next block may
	// be mined at PowLimit.
	ReduceMinDifficulty    bool
	ReduceMinDifficultyGap time.Duration

	// Checkpoints are ordered oldest-to-newest.
	Checkpoints []Checkpoint

	IsTestnet bool
}

// WorkRequired returns the difficulty target, expanded to a big.Int, that a
// plain (non-retarget) block must carry: its parent's.
func (p *Params) WorkRequired(parentBits uint32) *big.Int {
	return wire.CompactToBig(parentBits)
}

// PriorCheckpoint returns the newest checkpoint at or below height, or nil
// if none qualifies.
func (p *Params) PriorCheckpoint(height int64) *Checkpoint {
	var best *Checkpoint
	for i := range p.Checkpoints {
		c := &p.Checkpoints[i]
		if c.Height <= height && (best == nil || c.Height > best.Height) {
			best = c
		}
	}
	return best
}

// PassesCheckpoint reports whether a candidate block at height with the
// given hash is consistent with any checkpoint fixed at that exact height.
// A height with no checkpoint always passes.
func (p *Params) PassesCheckpoint(height int64, hash chainhash.Hash) bool {
	for _, c := range p.Checkpoints {
		if c.Height == height {
			return c.Hash == hash
		}
	}
	return true
}
