package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSaveWritesFileAndReturnsReference(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir)
	require.NoError(t, err)

	ref, err := store.Save(context.Background(), "rex.JPG", strings.NewReader("image-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ref, ".jpg"), "reference %q should keep a lowercased extension", ref)
	assert.NotContains(t, ref, "rex", "reference must not leak the client filename")

	data, err := os.ReadFile(filepath.Join(dir, ref))
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))
}

func TestLocalSaveUniqueReferences(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	a, err := store.Save(context.Background(), "same.png", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := store.Save(context.Background(), "same.png", strings.NewReader("b"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNewLocalCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err := NewLocal(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
