package consensus

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/lumenforge/spvchain/pkg/chainparams"
	"github.com/lumenforge/spvchain/pkg/wire"
)

// PoW verification errors.
var (
	ErrInsufficientWork = errors.New("consensus: hash does not meet difficulty target")
	ErrBadDifficulty    = errors.New("consensus: block difficulty does not match expected target")
)

// VerifyProofOfWork checks that header's own hash satisfies the target its
// Bits field encodes.
func VerifyProofOfWork(header *wire.Header) error {
	hash := header.Hash()
	if !wire.CheckProofOfWork(hash[:], header.Bits) {
		return fmt.Errorf("%w: bits=%#x", ErrInsufficientWork, header.Bits)
	}
	return nil
}

// ShouldRetarget reports whether height is a difficulty-adjustment boundary
// under params. Height 0 (genesis) never retargets.
func ShouldRetarget(height int64, params *chainparams.Params) bool {
	return height > 0 && params.RetargetInterval > 0 && height%params.RetargetInterval == 0
}

// ExpectedBits computes the target a block at height must carry.
//
// Off a retarget boundary the target must equal the parent's, except for the
// testnet relaxation: if the new block's timestamp is more than
// ReduceMinDifficultyGap after the parent's, the network permits mining at
// PowLimit to keep testnet moving during a quiet period.
//
// On a retarget boundary, the new target is the parent's target scaled by
// the ratio of actual to expected elapsed time over the interval, clamped to
// [parent/factor, parent*factor] as CalcNextTarget does.
func ExpectedBits(height int64, newTimestamp uint32, parentBits uint32, parentTimestamp uint32, intervalStartTimestamp uint32, params *chainparams.Params) uint32 {
	if !ShouldRetarget(height, params) {
		if params.ReduceMinDifficulty {
			gap := int64(newTimestamp) - int64(parentTimestamp)
			if gap > int64(params.ReduceMinDifficultyGap.Seconds()) {
				return params.PowLimitBits
			}
		}
		return parentBits
	}

	actualTimespan := int64(parentTimestamp) - int64(intervalStartTimestamp)
	expectedTimespan := params.RetargetInterval * int64(params.TargetSpacing.Seconds())
	return CalcNextTarget(parentBits, actualTimespan, expectedTimespan, params)
}

// VerifyDifficultyTransition checks that header's Bits field matches what
// ExpectedBits computes at height.
func VerifyDifficultyTransition(header *wire.Header, height int64, parentBits uint32, parentTimestamp uint32, intervalStartTimestamp uint32, params *chainparams.Params) error {
	expected := ExpectedBits(height, header.Timestamp, parentBits, parentTimestamp, intervalStartTimestamp, params)
	if header.Bits != expected {
		return fmt.Errorf("%w: height %d has bits %#x, want %#x", ErrBadDifficulty, height, header.Bits, expected)
	}
	return nil
}

// CalcNextTarget computes the new compact target after a retarget period,
// clamping the elapsed-time ratio to [1/factor, factor] and the resulting
// target to the network's PoW limit.
func CalcNextTarget(parentBits uint32, actualTimespan, expectedTimespan int64, params *chainparams.Params) uint32 {
	if actualTimespan <= 0 {
		actualTimespan = 1
	}
	if expectedTimespan <= 0 {
		expectedTimespan = 1
	}

	factor := params.RetargetAdjustmentFactor
	if factor <= 0 {
		factor = 4
	}

	minSpan := expectedTimespan / factor
	maxSpan := expectedTimespan * factor
	if minSpan <= 0 {
		minSpan = 1
	}
	if actualTimespan < minSpan {
		actualTimespan = minSpan
	}
	if actualTimespan > maxSpan {
		actualTimespan = maxSpan
	}

	parentTarget := wire.CompactToBig(parentBits)
	newTarget := new(big.Int).Mul(parentTarget, big.NewInt(expectedTimespan))
	newTarget.Div(newTarget, big.NewInt(actualTimespan))

	if params.PowLimit != nil && newTarget.Cmp(params.PowLimit) > 0 {
		newTarget = params.PowLimit
	}

	return wire.BigToCompact(newTarget)
}
