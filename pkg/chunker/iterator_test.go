package chunker

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chunkpace/chunkpace/pkg/source"
	"github.com/chunkpace/chunkpace/pkg/units"
)

func TestAll_FullCoverage(t *testing.T) {
	t.Parallel()

	data := randomData(128 * units.KiB)
	c := NewCursor(source.FromBytes(data), ampleProbe)
	require.NoError(t, c.SetMode(Percent(25)))

	var reassembled []byte

	for chunk, err := range c.All() {
		require.NoError(t, err)

		reassembled = append(reassembled, chunk...)
	}

	assert.Equal(t, data, reassembled)
}

func TestAll_EarlyBreak_LeavesCursorPositioned(t *testing.T) {
	t.Parallel()

	data := randomData(1000)
	c := NewCursor(source.FromBytes(data), ampleProbe)
	require.NoError(t, c.SetMode(Bytes(100)))

	seen := 0

	for _, err := range c.All() {
		require.NoError(t, err)

		seen++
		if seen == 3 {
			break
		}
	}

	assert.Equal(t, int64(300), c.Position())
	assert.False(t, c.Done())
}

func TestAll_ReadFailure_YieldedOnce(t *testing.T) {
	t.Parallel()

	src := &failingSource{data: randomData(256)}
	c := NewCursor(src, ampleProbe)
	require.NoError(t, c.SetMode(Bytes(256)))

	var (
		chunks int
		errs   int
	)

	for chunk, err := range c.All() {
		if err != nil {
			errs++

			assert.Nil(t, chunk)

			continue
		}

		chunks++
	}

	assert.Equal(t, 1, chunks)
	assert.Equal(t, 1, errs)
}

func TestAll_EmptySource_NoElements(t *testing.T) {
	t.Parallel()

	c := NewCursor(source.FromBytes(nil), ampleProbe)

	for range c.All() {
		t.Fatal("empty source must not yield")
	}

	assert.True(t, c.Done())
}

func TestAll_ChunksDoNotAlias(t *testing.T) {
	t.Parallel()

	data := randomData(400)
	c := NewCursor(source.FromBytes(data), ampleProbe)
	require.NoError(t, c.SetMode(Bytes(100)))

	var chunks [][]byte
	for chunk, err := range c.All() {
		require.NoError(t, err)

		chunks = append(chunks, chunk)
	}

	require.Len(t, chunks, 4)
	assert.Equal(t, data, bytes.Join(chunks, nil))
}
