package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dupesweep/dupesweep/internal/hasher"
	"github.com/dupesweep/dupesweep/internal/testutil"
)

func TestRecursiveHashMirroredTreesMatch(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateTree(map[string]string{
		"left/a.txt":     "alpha",
		"left/sub/b.txt": "beta",
	})
	f.MirrorTree("left", "right")

	eng, _ := newEngine(t)

	h1, err := eng.RecursiveHash(context.Background(), filepath.Join(f.RootDir, "left"), 0)
	require.NoError(t, err)
	h2, err := eng.RecursiveHash(context.Background(), filepath.Join(f.RootDir, "right"), 0)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.NotEmpty(t, h1)
}

func TestRecursiveHashIgnoresFileNames(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("one/x.txt", []byte("same content"))
	f.CreateFile("two/totally-different-name.dat", []byte("same content"))

	eng, _ := newEngine(t)

	h1, err := eng.RecursiveHash(context.Background(), filepath.Join(f.RootDir, "one"), 0)
	require.NoError(t, err)
	h2, err := eng.RecursiveHash(context.Background(), filepath.Join(f.RootDir, "two"), 0)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
}

func TestRecursiveHashDiffersOnContent(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("one/a.txt", []byte("first"))
	f.CreateFile("two/a.txt", []byte("second"))

	eng, _ := newEngine(t)

	h1, err := eng.RecursiveHash(context.Background(), filepath.Join(f.RootDir, "one"), 0)
	require.NoError(t, err)
	h2, err := eng.RecursiveHash(context.Background(), filepath.Join(f.RootDir, "two"), 0)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestRecursiveHashOfFileEqualsFullHash(t *testing.T) {
	f := testutil.NewFixture(t)
	path := f.CreateFile("file.txt", []byte("content"))

	eng, _ := newEngine(t)

	got, err := eng.RecursiveHash(context.Background(), path, 0)
	require.NoError(t, err)

	want, err := hasher.FullHash(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRecursiveHashEmptyDir(t *testing.T) {
	f := testutil.NewFixture(t)
	dir := f.CreateDir("empty")

	eng, _ := newEngine(t)

	got, err := eng.RecursiveHash(context.Background(), dir, 0)
	require.NoError(t, err)
	assert.Equal(t, hasher.EmptyHash(), got)
}

func TestRecursiveHashMissingRoot(t *testing.T) {
	eng, _ := newEngine(t)

	_, err := eng.RecursiveHash(context.Background(), filepath.Join(t.TempDir(), "nope"), 0)
	assert.Error(t, err)
}

func TestRecursiveHashCancelled(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("a.txt", []byte("x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng, _ := newEngine(t)

	hash, err := eng.RecursiveHash(ctx, f.RootDir, 0)
	require.NoError(t, err)
	assert.Empty(t, hash)
}
