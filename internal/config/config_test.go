package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omsi-o3d-tools/internal/crypto"
)

func TestLoadAndResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"base_dir": "`+filepath.ToSlash(dir)+`",
		"output_dir": "out",
		"workers": 3
	}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	cfg.Resolve(Flags{})

	assert.Equal(t, dir, cfg.BaseDir)
	assert.Equal(t, filepath.Join(dir, "out"), cfg.OutputDir)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 256, cfg.RenderSize)
	assert.Equal(t, 2, cfg.Supersample)
	assert.Equal(t, 90, cfg.WebPQuality)
}

func TestFlagsOverrideFile(t *testing.T) {
	cfg := Config{BaseDir: "/a", Workers: 2, WebPQuality: 50}
	cfg.Resolve(Flags{BaseDir: "/b", Workers: 8, Quality: 75})
	assert.Equal(t, "/b", cfg.BaseDir)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 75, cfg.WebPQuality)
}

func TestCipherSeedParsing(t *testing.T) {
	var cfg Config
	ciph, err := cfg.Cipher()
	require.NoError(t, err)
	assert.Equal(t, crypto.DefaultSeed, ciph.DefaultSeed)

	cfg.Seed = "0xDEADBEEF"
	ciph, err = cfg.Cipher()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), ciph.DefaultSeed)

	cfg.Seed = "xyz"
	_, err = cfg.Cipher()
	assert.Error(t, err)
}
