package checkpoints

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/dot5enko/spvstore/spvstore"
	"github.com/stretchr/testify/require"
)

func TestSeedPutsAndSetsChainHead(t *testing.T) {
	params := testArchiveParams()

	blocks := []spvstore.StoredBlock{
		sampleCheckpoint(1000, 1400000000),
		sampleCheckpoint(2000, 1450000000),
	}
	archive, err := ParseBinary(bytes.NewReader(buildBinaryArchive(t, blocks)))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "seeded.dat")
	store, err := spvstore.Open(params, path, 16, false)
	require.NoError(t, err)
	defer store.Close()

	walletBirthday := int64(1450000000) + walletSafetyMarginSecs + 10
	require.NoError(t, Seed(store, archive, walletBirthday))

	head := store.GetChainHead()
	require.Equal(t, int32(2000), head.Height)

	got, ok := store.Get(blocks[1].Hash())
	require.True(t, ok)
	require.Equal(t, blocks[1].Header, got.Header)
}

func TestSeedFallsBackToGenesisWhenArchiveHasNoEarlyCheckpoint(t *testing.T) {
	params := testArchiveParams()

	blocks := []spvstore.StoredBlock{sampleCheckpoint(1000, 1500000000)}
	archive, err := ParseBinary(bytes.NewReader(buildBinaryArchive(t, blocks)))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "seeded.dat")
	store, err := spvstore.Open(params, path, 16, false)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, Seed(store, archive, 0))

	head := store.GetChainHead()
	require.Equal(t, int32(0), head.Height)
	require.Equal(t, spvstore.GenesisStoredBlock(params).Hash(), head.Hash())
}
