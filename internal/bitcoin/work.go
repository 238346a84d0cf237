package bitcoin

import "math/big"

// CompactToBig expands a compact ("nBits") difficulty target into its full
// big.Int form. The format packs a base-256 exponent into the high byte and
// a 3-byte mantissa into the rest, the same encoding used throughout the
// Bitcoin/Litecoin header and difficulty-adjustment rules (out of scope
// here beyond this single conversion, which cumulative-work accounting
// needs).
func CompactToBig(compact uint32) *big.Int {
	mantissa := int64(compact & 0x007fffff)
	exponent := compact >> 24

	if exponent <= 3 {
		return big.NewInt(mantissa >> (8 * (3 - exponent)))
	}

	return new(big.Int).Lsh(big.NewInt(mantissa), uint(8*(exponent-3)))
}

var twoTo256 = new(big.Int).Lsh(big.NewInt(1), 256)

// WorkFromBits returns the amount of chain work a single block with the
// given difficulty bits contributes: floor(2^256 / (target+1)). Chaining
// the validation engine's block-by-block call to this and summing onto the
// previous block's cumulative work is how StoredBlock.ChainWork is derived;
// this package does not do that summation itself, since ordering and
// chain-selection are the validator's job, not the store's.
func WorkFromBits(bits uint32) *big.Int {
	target := CompactToBig(bits)
	if target.Sign() <= 0 {
		return big.NewInt(0)
	}

	denominator := new(big.Int).Add(target, big.NewInt(1))
	return new(big.Int).Div(twoTo256, denominator)
}
