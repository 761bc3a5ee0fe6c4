package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalStore(t *testing.T) *Local {
	t.Helper()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestLocalPutAndStat(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	content := []byte("0123456789")
	locator, err := store.Put(ctx, bytes.NewReader(content), int64(len(content)), "clip.mp4")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(locator, ".mp4"))
	assert.NotContains(t, locator, "/")

	exists, err := store.Exists(ctx, locator)
	require.NoError(t, err)
	assert.True(t, exists)

	size, err := store.Size(ctx, locator)
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)
}

func TestLocalOpenRangeWindows(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	content := []byte("abcdefghijklmnopqrstuvwxyz")
	locator, err := store.Put(ctx, bytes.NewReader(content), int64(len(content)), "clip.mp3")
	require.NoError(t, err)

	tests := []struct {
		start, end int64
		want       string
	}{
		{0, 25, "abcdefghijklmnopqrstuvwxyz"},
		{0, 4, "abcde"},
		{10, 15, "klmnop"},
		{25, 25, "z"},
	}

	for _, tt := range tests {
		rc, err := store.OpenRange(ctx, locator, tt.start, tt.end)
		require.NoError(t, err)

		got, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, tt.want, string(got))
	}
}

func TestLocalMissingBlob(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	exists, err := store.Exists(ctx, "nope.mp4")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.Size(ctx, "nope.mp4")
	assert.Error(t, err)
}

func TestLocalRejectsTraversalLocators(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	for _, locator := range []string{"../escape", "a/b.mp4", `a\b.mp4`, ""} {
		_, err := store.Exists(ctx, locator)
		assert.Error(t, err, locator)
	}
}

func TestLocalRemove(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	locator, err := store.Put(ctx, strings.NewReader("x"), 1, "a.mp4")
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, locator))

	exists, err := store.Exists(ctx, locator)
	require.NoError(t, err)
	assert.False(t, exists)

	// Removing an already-absent blob is not an error.
	assert.NoError(t, store.Remove(ctx, locator))
}
