package spvstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/dot5enko/spvstore/internal/blog"
	fileio "github.com/dot5enko/spvstore/io"
)

// migrateV1ToV2 implements spec.md's five-step V1->V2 migration: read the
// old chain-head/cursor, replay every occupied V1 slot oldest-first into
// a freshly allocated V2-sized temp file, then atomically rename it over
// path. f arrives already holding the exclusive lock on the V1 file; that
// lock is released only once the temp file is fully written and closed,
// immediately before the rename.
func migrateV1ToV2(params Params, f *fileio.File, oldView prologueView, capacity uint32) (*Store, error) {
	path := f.Raw().Name()
	blog.Warn("migrating store to V2 format: %s", path)

	oldRecordWidth := CodecV1.RecordWidth()
	oldSlotWidth := HashSize + oldRecordWidth
	oldCursorSlot := (oldView.ringCursor() - uint32(FilePrologueBytes)) / uint32(oldSlotWidth)
	// A foreign V1 file's bytes at offsetHeadVersion are arbitrary "reserved"
	// data, not this package's seqlock counter — chainHeadHash's spin-wait
	// would hang forever if that byte happens to be odd. Read the field
	// directly instead.
	oldChainHead := oldView.rawChainHeadHash()

	tmpPath := filepath.Join(filepath.Dir(path), fmt.Sprintf(".%s.migrate-%s", filepath.Base(path), uuid.NewString()))
	tmp := fileio.NewFile(tmpPath)
	if err := tmp.Open(0644); err != nil {
		unlockAndClose(f)
		return nil, fmt.Errorf("spvstore: migration temp file: %w", err)
	}

	newSize := FileSize(capacity)
	if err := tmp.Truncate(newSize); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		unlockAndClose(f)
		return nil, fmt.Errorf("spvstore: migration truncate: %w", err)
	}

	// A truncate-extend is zero-filled on every platform this runs on, but
	// empty-slot detection (isEmptySlotHash) depends on that being true; fill
	// the slot region explicitly rather than assume it of an arbitrary
	// filesystem.
	if err := tmp.FillZeroes(int64(FilePrologueBytes), int(newSize-int64(FilePrologueBytes))); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		unlockAndClose(f)
		return nil, fmt.Errorf("spvstore: migration zero-fill: %w", err)
	}

	newRecordWidth := CodecV2.RecordWidth()
	newSlotWidth := HashSize + newRecordWidth

	oldRecordBuf := make([]byte, oldRecordWidth)
	newSlot := make([]byte, newSlotWidth)
	oldSlot := make([]byte, oldSlotWidth)

	var written uint32
	for probes := uint32(0); probes < capacity; probes++ {
		oldIdx := (oldCursorSlot + probes) % capacity
		oldOff := int64(FilePrologueBytes) + int64(oldIdx)*int64(oldSlotWidth)

		if err := f.ReadAt(oldSlot, oldOff); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			unlockAndClose(f)
			return nil, fmt.Errorf("spvstore: migration read: %w", err)
		}

		if isEmptySlotHash(oldSlot[:HashSize]) {
			continue
		}

		copy(oldRecordBuf, oldSlot[HashSize:])
		block, err := CodecV1.Decode(oldRecordBuf)
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			unlockAndClose(f)
			return nil, fmt.Errorf("spvstore: migration decode: %w", err)
		}

		copy(newSlot[:HashSize], oldSlot[:HashSize])
		if err := CodecV2.Encode(block, newSlot[HashSize:]); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			unlockAndClose(f)
			return nil, fmt.Errorf("spvstore: migration encode: %w", err)
		}

		newOff := int64(FilePrologueBytes) + int64(written)*int64(newSlotWidth)
		if err := tmp.WriteAt(newSlot, newOff); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			unlockAndClose(f)
			return nil, fmt.Errorf("spvstore: migration write: %w", err)
		}
		written++
	}

	newPrologue := make([]byte, FilePrologueBytes)
	newView := prologueView{mem: newPrologue}
	newView.setMagic(magicV2)
	newView.setRingCursor(uint32(FilePrologueBytes) + written*uint32(newSlotWidth))
	newView.setChainHeadHash(oldChainHead)

	if err := tmp.WriteAt(newPrologue, 0); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		unlockAndClose(f)
		return nil, fmt.Errorf("spvstore: migration prologue write: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		unlockAndClose(f)
		return nil, fmt.Errorf("spvstore: migration temp close: %w", err)
	}

	// Old file's lock is released here, right before the swap; the rename
	// below is the commit point.
	unlockAndClose(f)

	if err := os.Rename(tmpPath, path); err != nil {
		return nil, fmt.Errorf("spvstore: migration rename: %w", err)
	}

	newF, err := openLocked(path)
	if err != nil {
		return nil, err
	}

	mapped, err := mapFile(newF, newSize)
	if err != nil {
		return nil, err
	}

	s := &Store{
		params:    params,
		capacity:  capacity,
		version:   2,
		codec:     CodecV2,
		slotWidth: newSlotWidth,
		mapped:    mapped,
		prologue:  prologueView{mem: mapped.region[:FilePrologueBytes]},
		cache:     newProbeCache(defaultProbeCacheSize),
	}

	blog.Info("migration complete", "path", path, "capacity", capacity, "cursor", s.prologue.ringCursor())
	return s, nil
}
