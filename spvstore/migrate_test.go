package spvstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestMigrateV1ToV2Scenario hand-crafts a V1 file with only the genesis
// record present (spec.md §8 scenario 7): genesis at slot 0, V1 cursor at
// PROLOGUE + RECORD_SIZE_V1. Opening it with this (V2-only) implementation
// must migrate in place and leave the cursor at PROLOGUE + RECORD_SIZE_V2.
func TestMigrateV1ToV2Scenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v1store.dat")
	params := testParams()
	capacity := uint32(8)

	genesis := GenesisStoredBlock(params)
	genesisHash := genesis.Hash()

	v1RecordWidth := CodecV1.RecordWidth()
	v1SlotWidth := HashSize + v1RecordWidth
	fileSize := int64(FilePrologueBytes) + int64(capacity)*int64(v1SlotWidth)

	buf := make([]byte, fileSize)
	view := prologueView{mem: buf[:FilePrologueBytes]}
	view.setMagic(magicV1)
	view.setRingCursor(uint32(FilePrologueBytes) + uint32(v1SlotWidth))
	view.setChainHeadHash(genesisHash)

	slot0 := buf[FilePrologueBytes : FilePrologueBytes+v1SlotWidth]
	copy(slot0[:HashSize], genesisHash[:])
	require.NoError(t, CodecV1.Encode(genesis, slot0[HashSize:]))

	require.NoError(t, os.WriteFile(path, buf, 0644))

	s, err := Open(params, path, capacity, false)
	require.NoError(t, err)
	defer s.Close()

	head := s.GetChainHead()
	require.Equal(t, genesisHash, head.Hash())
	require.Equal(t, genesis.Height, head.Height)
	require.Zero(t, genesis.ChainWork.Cmp(head.ChainWork))

	wantCursor := uint32(FilePrologueBytes) + uint32(RecordWidthV2)
	require.Equal(t, wantCursor, s.RingCursor())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, FileSize(capacity), info.Size())
}

// TestMigratePreservesOtherRecords exercises the universal migration
// property with more than just genesis present: every hash that existed
// pre-migration must decode to the same header/height/work post-migration.
func TestMigratePreservesOtherRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v1store.dat")
	params := testParams()
	capacity := uint32(8)

	genesis := GenesisStoredBlock(params)
	b1 := childBlock(genesis, 1)
	b2 := childBlock(b1, 2)
	blocks := []StoredBlock{genesis, b1, b2}

	v1RecordWidth := CodecV1.RecordWidth()
	v1SlotWidth := HashSize + v1RecordWidth
	fileSize := int64(FilePrologueBytes) + int64(capacity)*int64(v1SlotWidth)

	buf := make([]byte, fileSize)
	view := prologueView{mem: buf[:FilePrologueBytes]}
	view.setMagic(magicV1)
	view.setRingCursor(uint32(FilePrologueBytes) + uint32(len(blocks))*uint32(v1SlotWidth))
	view.setChainHeadHash(b2.Hash())

	for i, b := range blocks {
		off := FilePrologueBytes + i*v1SlotWidth
		slot := buf[off : off+v1SlotWidth]
		hash := b.Hash()
		copy(slot[:HashSize], hash[:])
		require.NoError(t, CodecV1.Encode(b, slot[HashSize:]))
	}

	require.NoError(t, os.WriteFile(path, buf, 0644))

	s, err := Open(params, path, capacity, false)
	require.NoError(t, err)
	defer s.Close()

	for _, want := range blocks {
		got, ok := s.Get(want.Hash())
		require.True(t, ok, "expected %x to survive migration", want.Hash())
		require.Equal(t, want.Header, got.Header)
		require.Equal(t, want.Height, got.Height)
		require.Zero(t, want.ChainWork.Cmp(got.ChainWork))
	}

	require.Equal(t, b2.Hash(), s.GetChainHead().Hash())
}
