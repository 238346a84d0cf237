package spvstore

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/dot5enko/spvstore/bits"
	"github.com/dot5enko/spvstore/internal/bitcoin"
)

// StoredBlock is the immutable triple a store slot and a checkpoint record
// both carry: a block header, the cumulative chain work up to and
// including that block, and its height. Identity is Hash(), the header's
// double-SHA256.
type StoredBlock struct {
	Header    bitcoin.Header
	ChainWork *big.Int
	Height    int32
}

func (s StoredBlock) Hash() [32]byte {
	return s.Header.Hash()
}

const heightWidth = 4

// RecordCodec encodes/decodes a StoredBlock to/from a fixed-width byte
// record body (chain_work || height || header — no hash: the enclosing
// slot or archive entry carries that separately). It is pure: the only
// errors it returns are a too-short buffer (on encode or decode), a nil or
// negative chain work on encode, and work overflow on encode.
type RecordCodec interface {
	Version() uint8
	RecordWidth() int
	Encode(b StoredBlock, out []byte) error
	Decode(in []byte) (StoredBlock, error)
}

type recordCodec struct {
	version   uint8
	workWidth int
}

// NewRecordCodec builds a RecordCodec for an arbitrary chain-work field
// width. The store uses the two fixed instances below (CodecV1, CodecV2);
// the checkpoint archive reader uses this directly because its V2 record
// predates the store's 32-byte widening and still uses a 28-byte work
// field (see checkpoints package).
func NewRecordCodec(version uint8, workWidth int) RecordCodec {
	return recordCodec{version: version, workWidth: workWidth}
}

func (c recordCodec) Version() uint8 { return c.version }

func (c recordCodec) RecordWidth() int {
	return c.workWidth + heightWidth + bitcoin.HeaderSize
}

func (c recordCodec) Encode(b StoredBlock, out []byte) error {
	width := c.RecordWidth()
	if len(out) < width {
		return fmt.Errorf("spvstore: encode buffer too short: need %d bytes, got %d", width, len(out))
	}
	if b.ChainWork == nil || b.ChainWork.Sign() < 0 {
		return fmt.Errorf("spvstore: chain work must be non-negative")
	}

	workBytes := b.ChainWork.Bytes()
	if len(workBytes) > c.workWidth {
		return ErrWorkOverflow
	}

	workField := make([]byte, c.workWidth)
	copy(workField[c.workWidth-len(workBytes):], workBytes)

	w := bits.NewEncodeBuffer(out[:width], binary.BigEndian)
	if _, err := w.Write(workField); err != nil {
		return err
	}
	w.PutInt32(b.Height)
	header := b.Header.Serialize()
	if _, err := w.Write(header[:]); err != nil {
		return err
	}

	return nil
}

func (c recordCodec) Decode(in []byte) (StoredBlock, error) {
	width := c.RecordWidth()
	if len(in) < width {
		return StoredBlock{}, fmt.Errorf("spvstore: short record: need %d bytes, got %d", width, len(in))
	}

	r := bits.NewReader(bytes.NewReader(in[:width]), binary.BigEndian)

	workBytes := make([]byte, c.workWidth)
	if err := r.ReadBytes(c.workWidth, workBytes); err != nil {
		return StoredBlock{}, fmt.Errorf("spvstore: decode chain work: %w", err)
	}

	height, err := r.ReadI32()
	if err != nil {
		return StoredBlock{}, fmt.Errorf("spvstore: decode height: %w", err)
	}

	headerBytes := make([]byte, bitcoin.HeaderSize)
	if err := r.ReadBytes(bitcoin.HeaderSize, headerBytes); err != nil {
		return StoredBlock{}, fmt.Errorf("spvstore: decode header: %w", err)
	}

	header, err := bitcoin.DeserializeHeader(headerBytes)
	if err != nil {
		return StoredBlock{}, err
	}

	return StoredBlock{
		Header:    header,
		ChainWork: new(big.Int).SetBytes(workBytes),
		Height:    height,
	}, nil
}

// CodecV1 and CodecV2 are the store's two on-disk record versions: they
// differ only in the width of the chain-work field (12 bytes vs. 32).
var (
	CodecV1 RecordCodec = NewRecordCodec(1, 12)
	CodecV2 RecordCodec = NewRecordCodec(2, 32)
)

// HashSize is the width of a block hash, and thus of a slot's hash prefix.
const HashSize = 32

// RecordWidthV1 / RecordWidthV2 are the full on-disk slot widths (hash
// prefix plus codec body): 128 and 148 bytes respectively.
var (
	RecordWidthV1 = HashSize + CodecV1.RecordWidth()
	RecordWidthV2 = HashSize + CodecV2.RecordWidth()
)

func codecForVersion(version uint8) (RecordCodec, error) {
	switch version {
	case 1:
		return CodecV1, nil
	case 2:
		return CodecV2, nil
	default:
		return nil, NewCorrupt(fmt.Sprintf("unsupported record version %d", version))
	}
}

func recordWidthForVersion(version uint8) (int, error) {
	switch version {
	case 1:
		return RecordWidthV1, nil
	case 2:
		return RecordWidthV2, nil
	default:
		return 0, NewCorrupt(fmt.Sprintf("unsupported record version %d", version))
	}
}
