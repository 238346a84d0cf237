package checkpoints

import (
	"bytes"
	"testing"

	"github.com/dot5enko/spvstore/spvstore"
	"github.com/stretchr/testify/require"
)

func TestWriteBinaryThenParseRoundTrip(t *testing.T) {
	blocks := []spvstore.StoredBlock{
		sampleCheckpoint(0, 1500000000),
		sampleCheckpoint(5000, 1550000000),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBinary(&buf, blocks))

	archive, err := ParseBinary(&buf)
	require.NoError(t, err)
	require.Equal(t, len(blocks), archive.Len())
}

func TestWriteTextualThenParseRoundTrip(t *testing.T) {
	blocks := []spvstore.StoredBlock{
		sampleCheckpoint(0, 1500000000),
		sampleCheckpoint(5000, 1550000000),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTextual(&buf, blocks))

	archive, err := ParseTextual(&buf)
	require.NoError(t, err)
	require.Equal(t, len(blocks), archive.Len())
}

func TestWriteBinaryRejectsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.ErrorIs(t, WriteBinary(&buf, nil), ErrNoCheckpoints)
}
