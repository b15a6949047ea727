package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ManifestEntry is one processed file in the output manifest.
type ManifestEntry struct {
	Path     string   `json:"path"`
	Kind     string   `json:"kind"`
	Success  bool     `json:"success"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Missing  int      `json:"missing,omitempty"`
	Image    string   `json:"image,omitempty"`
}

// WriteManifest writes the run's results as manifest.json. Paths are
// recorded relative to root when possible.
func WriteManifest(path, root string, results []Result) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		rel, err := filepath.Rel(root, r.Path)
		if err != nil {
			rel = r.Path
		}
		entries[i] = ManifestEntry{
			Path:     filepath.ToSlash(rel),
			Kind:     r.Kind,
			Success:  r.Success,
			Error:    r.Error,
			Warnings: r.Warnings,
			Missing:  r.Missing,
			Image:    r.Image,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
