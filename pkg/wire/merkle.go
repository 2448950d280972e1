package wire

import "github.com/lumenforge/spvchain/pkg/chainhash"

// ComputeMerkleRoot calculates the Merkle root of a sequence of transaction
// hashes.
//
//   - 0 hashes: the zero hash.
//   - 1 hash: that hash.
//   - otherwise: pairwise hash, duplicating the last element when the level
//     has an odd count, until one hash remains.
func ComputeMerkleRoot(txHashes []chainhash.Hash) chainhash.Hash {
	if len(txHashes) == 0 {
		return chainhash.Hash{}
	}
	if len(txHashes) == 1 {
		return txHashes[0]
	}

	level := make([]chainhash.Hash, len(txHashes))
	copy(level, txHashes)

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([]chainhash.Hash, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next[i/2] = chainhash.Concat(level[i], level[i+1])
		}
		level = next
	}

	return level[0]
}
