// Package checkpoints parses signed checkpoint archives — binary or
// textual, interchangeably — and exposes a time-indexed lookup used to
// bootstrap a fresh spvstore.Store without replaying the whole chain.
package checkpoints

import (
	"bufio"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/dot5enko/spvstore/spvstore"
)

const (
	binaryMagic   = "CHECKPOINTS 1"
	textualMagic  = "TXT CHECKPOINTS 1"
	maxSignatures = 256
	signatureSize = 65
)

// Archive's two record codecs predate the store's own V1/V2 codecs and
// use a narrower work field (28 bytes, not 32) in their V2 form — the
// archive format froze at 112 bytes per record body before the store's
// V2 widened further.
var (
	archiveCodecV1 spvstore.RecordCodec = spvstore.NewRecordCodec(1, 12)
	archiveCodecV2 spvstore.RecordCodec = spvstore.NewRecordCodec(2, 28)
)

type archiveEntry struct {
	timeSeconds int64
	block       spvstore.StoredBlock
}

// Archive is a parsed, time-ordered set of checkpoints plus the integrity
// digest computed while reading it.
type Archive struct {
	entries  []archiveEntry
	dataHash [32]byte
}

// Len returns the number of checkpoints loaded.
func (a *Archive) Len() int { return len(a.entries) }

// DataHash returns the SHA-256 digest computed over the checkpoint
// records (not the signatures).
func (a *Archive) DataHash() [32]byte { return a.dataHash }

// Parse sniffs the first byte of r to choose between ParseBinary and
// ParseTextual, mirroring CheckpointManager's constructor.
func Parse(r io.Reader) (*Archive, error) {
	br := bufio.NewReader(r)
	first, err := br.Peek(1)
	if err != nil {
		return nil, fmt.Errorf("checkpoints: empty stream: %w", err)
	}

	switch first[0] {
	case binaryMagic[0]:
		return ParseBinary(br)
	case textualMagic[0]:
		return ParseTextual(br)
	default:
		return nil, ErrBadMagic
	}
}

func readFull(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return ErrTruncated
		}
		return err
	}
	return nil
}

// ParseBinary reads the "CHECKPOINTS 1" wire format: a fixed magic, an
// int32 signature count, that many 65-byte ECDSA signatures (read and
// discarded: they are neither verified nor kept on the Archive), an int32
// checkpoint count, then that many fixed-width V1 records.
func ParseBinary(r io.Reader) (*Archive, error) {
	magicBuf := make([]byte, len(binaryMagic))
	if err := readFull(r, magicBuf); err != nil {
		return nil, err
	}
	if string(magicBuf) != binaryMagic {
		return nil, ErrBadMagic
	}

	var numSignatures int32
	if err := binary.Read(r, binary.BigEndian, &numSignatures); err != nil {
		return nil, ErrTruncated
	}
	if numSignatures < 0 || numSignatures > maxSignatures {
		return nil, ErrTooManySignatures
	}

	sigBuf := make([]byte, signatureSize)
	for i := int32(0); i < numSignatures; i++ {
		if err := readFull(r, sigBuf); err != nil {
			return nil, err
		}
		// Signature bytes are read and discarded, never verified, per
		// spec.md §9 — a future verification hook would live here.
	}

	digest := newDigest()
	tee := io.TeeReader(r, digest)

	var numCheckpoints int32
	if err := binary.Read(tee, binary.BigEndian, &numCheckpoints); err != nil {
		return nil, ErrTruncated
	}
	if numCheckpoints <= 0 {
		return nil, ErrNoCheckpoints
	}

	recordBuf := make([]byte, archiveCodecV1.RecordWidth())
	entries := make([]archiveEntry, 0, numCheckpoints)
	for i := int32(0); i < numCheckpoints; i++ {
		if err := readFull(tee, recordBuf); err != nil {
			return nil, err
		}
		block, err := archiveCodecV1.Decode(recordBuf)
		if err != nil {
			return nil, fmt.Errorf("checkpoints: decoding checkpoint %d: %w", i, err)
		}
		entries = append(entries, archiveEntry{timeSeconds: int64(block.Header.TimeSeconds), block: block})
	}

	return finishArchive(entries, sumDigest(digest)), nil
}

// ParseTextual reads the line-oriented "TXT CHECKPOINTS 1" format: a
// magic line, a signature count line, that many (skipped) signature
// lines, a checkpoint count line, then that many base64 (no padding)
// lines, each one record.
func ParseTextual(r io.Reader) (*Archive, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)

	readLine := func() (string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", ErrTruncated
		}
		return scanner.Text(), nil
	}

	magic, err := readLine()
	if err != nil {
		return nil, err
	}
	if magic != textualMagic {
		return nil, ErrBadMagic
	}

	numSigsLine, err := readLine()
	if err != nil {
		return nil, err
	}
	numSigs, err := strconv.Atoi(strings.TrimSpace(numSigsLine))
	if err != nil {
		return nil, fmt.Errorf("checkpoints: malformed signature count: %w", err)
	}
	if numSigs < 0 || numSigs > maxSignatures {
		return nil, ErrTooManySignatures
	}
	for i := 0; i < numSigs; i++ {
		if _, err := readLine(); err != nil {
			return nil, err
		}
	}

	numCheckpointsLine, err := readLine()
	if err != nil {
		return nil, err
	}
	numCheckpoints, err := strconv.Atoi(strings.TrimSpace(numCheckpointsLine))
	if err != nil {
		return nil, fmt.Errorf("checkpoints: malformed checkpoint count: %w", err)
	}
	if numCheckpoints <= 0 {
		return nil, ErrNoCheckpoints
	}

	digest := newDigest()
	writeCheckpointCount(digest, int32(numCheckpoints))

	entries := make([]archiveEntry, 0, numCheckpoints)
	for i := 0; i < numCheckpoints; i++ {
		line, err := readLine()
		if err != nil {
			return nil, err
		}

		raw, err := base64.RawStdEncoding.DecodeString(strings.TrimSpace(line))
		if err != nil {
			return nil, fmt.Errorf("checkpoints: decoding base64 checkpoint %d: %w", i, err)
		}
		digest.Write(raw)

		codec, err := archiveCodecForLength(len(raw))
		if err != nil {
			return nil, err
		}
		block, err := codec.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("checkpoints: decoding checkpoint %d: %w", i, err)
		}
		entries = append(entries, archiveEntry{timeSeconds: int64(block.Header.TimeSeconds), block: block})
	}

	return finishArchive(entries, sumDigest(digest)), nil
}

func archiveCodecForLength(n int) (spvstore.RecordCodec, error) {
	switch n {
	case archiveCodecV1.RecordWidth():
		return archiveCodecV1, nil
	case archiveCodecV2.RecordWidth():
		return archiveCodecV2, nil
	default:
		return nil, ErrUnknownRecordLength
	}
}

func finishArchive(entries []archiveEntry, digest [32]byte) *Archive {
	sort.Slice(entries, func(i, j int) bool { return entries[i].timeSeconds < entries[j].timeSeconds })
	return &Archive{entries: entries, dataHash: digest}
}

// CheckpointBefore returns the last loaded checkpoint whose header time is
// <= timeSecs, or a synthesized genesis StoredBlock (from params) if none
// qualifies.
func (a *Archive) CheckpointBefore(timeSecs int64, params spvstore.Params) spvstore.StoredBlock {
	if idx, ok := a.floorIndex(timeSecs); ok {
		return a.entries[idx].block
	}
	return spvstore.GenesisStoredBlock(params)
}

// CheckpointsBefore returns the checkpoint(s) a fresh store should be
// seeded with for timeSecs: the qualifying checkpoint plus, when present
// in the archive, its height-minus-one companion (spec.md §9, the
// Litecoin difficulty-retarget quirk). If no checkpoint qualifies, it
// returns just a synthesized genesis block built from params.
func (a *Archive) CheckpointsBefore(timeSecs int64, params spvstore.Params) []spvstore.StoredBlock {
	idx, ok := a.floorIndex(timeSecs)
	if !ok {
		return []spvstore.StoredBlock{spvstore.GenesisStoredBlock(params)}
	}

	primary := a.entries[idx].block
	if before, found := a.blockAtHeight(primary.Height - 1); found {
		return []spvstore.StoredBlock{before, primary}
	}
	return []spvstore.StoredBlock{primary}
}

func (a *Archive) floorIndex(timeSecs int64) (int, bool) {
	i := sort.Search(len(a.entries), func(i int) bool { return a.entries[i].timeSeconds > timeSecs })
	if i == 0 {
		return 0, false
	}
	return i - 1, true
}

func (a *Archive) blockAtHeight(height int32) (spvstore.StoredBlock, bool) {
	for _, e := range a.entries {
		if e.block.Height == height {
			return e.block, true
		}
	}
	return spvstore.StoredBlock{}, false
}
