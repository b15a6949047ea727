package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omsi-o3d-tools/internal/crypto"
	"omsi-o3d-tools/internal/o3d"
)

func writeSampleO3D(t *testing.T, path string) {
	t.Helper()
	m := &o3d.Model{
		Vertices: []o3d.Vertex{
			{Position: [3]float32{0, 0, 0}, Normal: [3]float32{0, 0, 1}},
			{Position: [3]float32{1, 0, 0}, Normal: [3]float32{0, 0, 1}},
			{Position: [3]float32{0, 1, 0}, Normal: [3]float32{0, 0, 1}},
		},
		Triangles: []o3d.Triangle{{Index: [3]uint32{0, 1, 2}}},
	}
	raw, err := o3d.Encode(m, o3d.EncodeOptions{}, crypto.Defaults())
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, raw, 0644))
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeSampleO3D(t, filepath.Join(root, "model", "body.o3d"))
	require.NoError(t, os.WriteFile(filepath.Join(root, "bus.cfg"), []byte("[mesh]\nmodel\\body.o3d\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "readme.txt"), []byte("x"), 0644))

	items, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, items, 2)

	kinds := map[string]string{}
	for _, it := range items {
		kinds[filepath.Base(it.Path)] = it.Kind
	}
	assert.Equal(t, "cfg", kinds["bus.cfg"])
	assert.Equal(t, "o3d", kinds["body.o3d"])
}

func TestRunDecodesAndVerifies(t *testing.T) {
	root := t.TempDir()
	writeSampleO3D(t, filepath.Join(root, "body.o3d"))
	require.NoError(t, os.WriteFile(filepath.Join(root, "bus.cfg"), []byte("[mesh]\nbody.o3d\n[matl]\nmissing.bmp\n0\n"), 0644))

	items, err := Scan(root)
	require.NoError(t, err)

	cfg := Config{
		Root:    root,
		Cipher:  crypto.Defaults(),
		Workers: 2,
		Verify:  true,
	}
	results := Run(cfg, items)
	require.Len(t, results, 2)

	for _, r := range results {
		assert.True(t, r.Success, "%s: %s", r.Path, r.Error)
		if r.Kind == "o3d" {
			assert.Empty(t, r.Warnings, "byte-identical round trip expected")
		}
		if r.Kind == "cfg" {
			assert.Equal(t, 1, r.Missing)
		}
	}
}

func TestRunReportsBrokenModel(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "junk.o3d"), []byte{0x00, 0x01, 0x02}, 0644))

	items, err := Scan(root)
	require.NoError(t, err)
	results := Run(Config{Root: root, Cipher: crypto.Defaults(), Workers: 1}, items)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.NotEmpty(t, results[0].Error)
}

func TestWriteManifest(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "manifest.json")
	results := []Result{{
		Path:    filepath.Join(root, "a", "b.o3d"),
		Kind:    "o3d",
		Success: true,
	}}
	require.NoError(t, WriteManifest(out, root, results))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	var entries []ManifestEntry
	require.NoError(t, json.Unmarshal(raw, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "a/b.o3d", entries[0].Path)
	assert.True(t, entries[0].Success)
}
