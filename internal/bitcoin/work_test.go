package bitcoin

import (
	"math/big"
	"testing"
)

func TestCompactToBigKnownGenesisTarget(t *testing.T) {
	// 0x1d00ffff is the classic "difficulty 1" target used by Bitcoin's
	// genesis block.
	got := CompactToBig(0x1d00ffff)
	want, _ := new(big.Int).SetString("ffff0000000000000000000000000000000000000000000000000000", 16)
	if got.Cmp(want) != 0 {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestWorkFromBitsDecreasesWithLargerTarget(t *testing.T) {
	harder := WorkFromBits(0x1d00ffff)
	easier := WorkFromBits(0x1e00ffff)

	if harder.Cmp(easier) <= 0 {
		t.Fatalf("expected work for a smaller target to be larger: harder=%s easier=%s", harder, easier)
	}
}

func TestWorkFromBitsZeroTarget(t *testing.T) {
	if got := WorkFromBits(0); got.Sign() != 0 {
		t.Fatalf("expected zero work for a zero target, got %s", got)
	}
}
