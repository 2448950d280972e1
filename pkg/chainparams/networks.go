package chainparams

import (
	"math/big"
	"time"

	"github.com/lumenforge/spvchain/pkg/chainhash"
	"github.com/lumenforge/spvchain/pkg/wire"
)

var bigOne = big.NewInt(1)

// mainPowLimit is the easiest allowed mainnet target: 2^224 - 1.
var mainPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 224), bigOne)

// testPowLimit is the easiest allowed testnet target: 2^256 - 1. Its compact
// form, 0x2100ffff, expands to 0xffff * 2^240, which all but about one in
// 65,536 header hashes satisfy, so testnet blocks need no real mining.
var testPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 256), bigOne)

// Mainnet returns the consensus parameters for the production network.
func Mainnet() *Params {
	genesis := wire.Header{
		Version:    1,
		PrevHash:   chainhash.Hash{},
		Timestamp:  1704067200, // 2024-01-01T00:00:00Z
		Bits:       wire.BigToCompact(mainPowLimit),
		Nonce:      0,
		MerkleRoot: chainhash.Hash{},
	}

	p := &Params{
		Name:                     "mainnet",
		GenesisHeader:            genesis,
		PowLimit:                 mainPowLimit,
		PowLimitBits:             wire.BigToCompact(mainPowLimit),
		TargetSpacing:            10 * time.Minute,
		RetargetInterval:         2016,
		RetargetAdjustmentFactor: 4,
		ReduceMinDifficulty:      false,
		Checkpoints:              nil,
		IsTestnet:                false,
	}
	p.GenesisHash = genesis.Hash()
	return p
}

// Testnet returns the consensus parameters for the test network, including
// the relaxed "20-minute easy block" difficulty rule.
func Testnet() *Params {
	genesis := wire.Header{
		Version:    1,
		PrevHash:   chainhash.Hash{},
		Timestamp:  1704067200,
		Bits:       wire.BigToCompact(testPowLimit),
		Nonce:      0,
		MerkleRoot: chainhash.Hash{},
	}

	p := &Params{
		Name:                     "testnet",
		GenesisHeader:            genesis,
		PowLimit:                 testPowLimit,
		PowLimitBits:             wire.BigToCompact(testPowLimit),
		TargetSpacing:            10 * time.Minute,
		RetargetInterval:         2016,
		RetargetAdjustmentFactor: 4,
		ReduceMinDifficulty:      true,
		ReduceMinDifficultyGap:   20 * time.Minute,
		Checkpoints:              nil,
		IsTestnet:                true,
	}
	p.GenesisHash = genesis.Hash()
	return p
}
