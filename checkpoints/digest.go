package checkpoints

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"
)

// newDigest starts the SHA-256 accumulator used to compute an archive's
// integrity hash. Binary archives feed it every byte from the checkpoint
// count onward (signatures excluded); textual archives feed it the
// big-endian checkpoint count followed by each decoded record's raw
// bytes, in order. The two must agree for the same underlying checkpoint
// sequence (spec.md §8, "Archive digest").
func newDigest() hash.Hash {
	return sha256.New()
}

// writeCheckpointCount hashes n as a big-endian uint32, matching the wire
// representation the binary format already uses natively — the textual
// format stores the count as a decimal text line, so it must reconstruct
// these four bytes explicitly to produce a matching digest.
func writeCheckpointCount(h hash.Hash, n int32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(n))
	h.Write(buf[:])
}

func sumDigest(h hash.Hash) [32]byte {
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
