// Package config loads tool settings from an optional JSON file and
// merges CLI flag overrides on top.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"omsi-o3d-tools/internal/crypto"
)

// Config holds the shared settings of the cmd tools.
type Config struct {
	// Paths
	BaseDir     string   `json:"base_dir"`   // asset root (an OMSI install or extracted addon)
	OutputDir   string   `json:"output_dir"` // previews, manifests, exports
	TextureDirs []string `json:"texture_dirs"`

	// Render settings
	RenderSize  int `json:"render_size"`
	Supersample int `json:"supersample"`
	WebPQuality int `json:"webp_quality"`
	Workers     int `json:"workers"`

	// Codec settings
	Seed string `json:"seed"` // hex cipher seed, empty = format default
}

// Load reads a JSON config file. Fields missing in the file keep their
// zero values until Resolve fills the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	BaseDir   string
	OutputDir string
	Quality   int
	Workers   int
	Seed      string
}

// Resolve merges flags over the file settings and fills remaining empty
// fields with auto-detected defaults.
func (c *Config) Resolve(flags Flags) {
	if flags.BaseDir != "" {
		c.BaseDir = flags.BaseDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Quality > 0 {
		c.WebPQuality = flags.Quality
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Seed != "" {
		c.Seed = flags.Seed
	}

	if c.BaseDir == "" {
		c.BaseDir = detectBaseDir()
	}

	if c.BaseDir != "" {
		if c.OutputDir == "" {
			c.OutputDir = filepath.Join(c.BaseDir, "renders")
		} else if !filepath.IsAbs(c.OutputDir) {
			c.OutputDir = filepath.Join(c.BaseDir, c.OutputDir)
		}
		if len(c.TextureDirs) == 0 {
			c.TextureDirs = defaultTextureDirs(c.BaseDir)
		} else {
			for i, d := range c.TextureDirs {
				if !filepath.IsAbs(d) {
					c.TextureDirs[i] = filepath.Join(c.BaseDir, d)
				}
			}
		}
	}

	if c.RenderSize <= 0 {
		c.RenderSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.WebPQuality <= 0 {
		c.WebPQuality = 90
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Cipher returns the seed policy the settings describe.
func (c *Config) Cipher() (crypto.Config, error) {
	if c.Seed == "" {
		return crypto.Defaults(), nil
	}
	s := strings.TrimPrefix(strings.ToLower(c.Seed), "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return crypto.Config{}, fmt.Errorf("config: seed %q is not a 32-bit hex value: %w", c.Seed, err)
	}
	return crypto.Config{DefaultSeed: uint32(v)}, nil
}

// detectBaseDir looks for an OMSI-style asset tree next to the binary or
// the working directory: a root holding Vehicles/ or Sceneryobjects/.
func detectBaseDir() string {
	exe, _ := os.Executable()
	if exe != "" {
		dir := filepath.Dir(exe)
		for _, base := range []string{dir, filepath.Dir(dir)} {
			if isAssetRoot(base) {
				return base
			}
		}
	}

	cwd, _ := os.Getwd()
	for _, base := range []string{cwd, filepath.Dir(cwd)} {
		if isAssetRoot(base) {
			return base
		}
	}
	return ""
}

func isAssetRoot(base string) bool {
	for _, marker := range []string{"Vehicles", "Sceneryobjects", "vehicles", "sceneryobjects"} {
		if st, err := os.Stat(filepath.Join(base, marker)); err == nil && st.IsDir() {
			return true
		}
	}
	return false
}

func defaultTextureDirs(base string) []string {
	var dirs []string
	for _, d := range []string{"texture", "Texture"} {
		p := filepath.Join(base, d)
		if st, err := os.Stat(p); err == nil && st.IsDir() {
			dirs = append(dirs, p)
		}
	}
	if len(dirs) == 0 {
		dirs = []string{filepath.Join(base, "texture")}
	}
	return dirs
}
