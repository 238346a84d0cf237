// Package bitcoin provides the narrow block-header type the store and
// checkpoint reader operate on. Everything about actual chain validation
// (proof-of-work checks, difficulty-transition rules) lives outside this
// module; this package only knows how to (de)serialize a header and hash it.
package bitcoin

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
)

// HeaderSize is the fixed wire size of a block header.
const HeaderSize = 80

var ErrShortHeader = errors.New("bitcoin: header buffer shorter than 80 bytes")

// Header is the 80-byte Bitcoin/Litecoin block header, verbatim.
type Header struct {
	Version       int32
	PrevBlockHash [32]byte
	MerkleRoot    [32]byte
	TimeSeconds   uint32
	Bits          uint32
	Nonce         uint32
}

// DeserializeHeader decodes the 80-byte wire format into a Header.
func DeserializeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, ErrShortHeader
	}

	var h Header
	h.Version = int32(binary.LittleEndian.Uint32(b[0:4]))
	copy(h.PrevBlockHash[:], b[4:36])
	copy(h.MerkleRoot[:], b[36:68])
	h.TimeSeconds = binary.LittleEndian.Uint32(b[68:72])
	h.Bits = binary.LittleEndian.Uint32(b[72:76])
	h.Nonce = binary.LittleEndian.Uint32(b[76:80])

	return h, nil
}

// Serialize encodes the header into its canonical 80-byte wire form.
func (h Header) Serialize() [HeaderSize]byte {
	var out [HeaderSize]byte

	binary.LittleEndian.PutUint32(out[0:4], uint32(h.Version))
	copy(out[4:36], h.PrevBlockHash[:])
	copy(out[36:68], h.MerkleRoot[:])
	binary.LittleEndian.PutUint32(out[68:72], h.TimeSeconds)
	binary.LittleEndian.PutUint32(out[72:76], h.Bits)
	binary.LittleEndian.PutUint32(out[76:80], h.Nonce)

	return out
}

// Hash returns the double-SHA256 of the serialized header. This is the
// header's identity throughout the store and checkpoint archive.
func (h Header) Hash() [32]byte {
	raw := h.Serialize()
	first := sha256.Sum256(raw[:])
	return sha256.Sum256(first[:])
}
