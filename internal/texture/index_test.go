package texture

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte{0}, 0644))
}

func TestBuildIndexRanking(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "body.bmp"))
	touch(t, filepath.Join(root, "body.dds"))
	touch(t, filepath.Join(root, "sub", "wall.jpg"))
	touch(t, filepath.Join(root, "readme.txt"))

	idx := BuildIndex(root)
	assert.Equal(t, 2, idx.Len())

	p, ok := idx.ResolvePath("body.bmp")
	require.True(t, ok)
	assert.Equal(t, ".dds", filepath.Ext(p))

	c := idx.Candidates("body.tga")
	require.Len(t, c, 2)
	assert.Equal(t, ".dds", filepath.Ext(c[0]))
	assert.Equal(t, ".bmp", filepath.Ext(c[1]))
}

func TestResolvePathStripsDirectories(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "wall.bmp"))

	idx := BuildIndex(root)
	_, ok := idx.ResolvePath("Texture\\wall.tga")
	assert.True(t, ok)
	_, ok = idx.ResolvePath("unknown.bmp")
	assert.False(t, ok)
}

func TestBuildIndexMissingDir(t *testing.T) {
	idx := BuildIndex(filepath.Join(t.TempDir(), "absent"))
	assert.Zero(t, idx.Len())
}

func TestCacheFallsBackPastUndecodable(t *testing.T) {
	root := t.TempDir()
	// The dds ranks first but cannot be decoded; the png behind it can.
	touch(t, filepath.Join(root, "body.dds"))

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 2, 2))))
	require.NoError(t, os.WriteFile(filepath.Join(root, "body.png"), buf.Bytes(), 0644))

	cache := NewCache(BuildIndex(root))
	img := cache.Resolve("body.bmp")
	require.NotNil(t, img)
	assert.Equal(t, 2, img.Bounds().Dx())

	// Second hit comes from the cache.
	assert.Same(t, img, cache.Resolve("body.bmp"))
	assert.Nil(t, cache.Resolve("absent.bmp"))
}
