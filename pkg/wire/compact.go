package wire

import "math/big"

// maxUint256 is 2^256 - 1: plus one, it is CalcWork's numerator, and it is
// the largest target CheckProofOfWork accepts.
var (
	one        = big.NewInt(1)
	maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(one, 256), one)
)

// CompactToBig expands a compact ("nBits") difficulty target into a big.Int.
// Layout: the low 3 bytes are the mantissa, the high byte is the exponent;
// value = mantissa * 256^(exponent-3).
func CompactToBig(bits uint32) *big.Int {
	mantissa := bits & 0x007fffff
	exponent := bits >> 24

	var result *big.Int
	if exponent <= 3 {
		mantissa >>= 8 * (3 - exponent)
		result = big.NewInt(int64(mantissa))
	} else {
		result = big.NewInt(int64(mantissa))
		result.Lsh(result, uint(8*(exponent-3)))
	}

	if bits&0x00800000 != 0 {
		result.Neg(result)
	}
	return result
}

// BigToCompact condenses a big.Int target into its compact ("nBits") form,
// the inverse of CompactToBig.
func BigToCompact(target *big.Int) uint32 {
	if target.Sign() == 0 {
		return 0
	}

	negative := target.Sign() < 0
	work := new(big.Int).Abs(target)

	exponent := uint(len(work.Bytes()))
	var mantissa uint32
	if exponent <= 3 {
		mantissa = uint32(work.Uint64())
		mantissa <<= 8 * (3 - exponent)
	} else {
		shifted := new(big.Int).Rsh(work, 8*(exponent-3))
		mantissa = uint32(shifted.Uint64())
	}

	// Mantissa's high bit must stay clear; it doubles as a sign flag.
	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exponent++
	}

	bits := uint32(exponent)<<24 | mantissa
	if negative {
		bits |= 0x00800000
	}
	return bits
}

// CalcWork returns the work represented by a compact difficulty target,
// defined as 2^256 / (target+1) so that a lower target yields more work.
func CalcWork(bits uint32) *big.Int {
	target := CompactToBig(bits)
	if target.Sign() <= 0 {
		return big.NewInt(0)
	}
	denom := new(big.Int).Add(target, one)
	work := new(big.Int).Div(new(big.Int).Add(maxUint256, one), denom)
	return work
}

// CheckProofOfWork reports whether hash, read as a big-endian integer, is at
// or below the target encoded by bits.
func CheckProofOfWork(hash []byte, bits uint32) bool {
	target := CompactToBig(bits)
	if target.Sign() <= 0 || target.Cmp(maxUint256) > 0 {
		return false
	}
	hashInt := new(big.Int).SetBytes(hash)
	return hashInt.Cmp(target) <= 0
}
