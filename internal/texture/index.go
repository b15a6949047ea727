// Package texture locates and decodes the image files model configs
// reference, with a stem index over the configured texture directories
// and a concurrency-safe decode cache.
package texture

import (
	"os"
	"path/filepath"
	"strings"
)

// formatRank orders candidate files sharing a stem. A .dds beats the
// extension a config states, matching the simulator's lookup; the rest
// follow in decreasing fidelity.
var formatRank = map[string]int{
	".dds":  0,
	".tga":  1,
	".bmp":  2,
	".png":  3,
	".jpg":  4,
	".jpeg": 5,
}

// Index maps lowercase texture stems to the files that carry them,
// best-ranked first.
type Index struct {
	entries map[string][]string
}

// BuildIndex walks the given directories and records every texture file
// by stem. Missing directories are skipped silently; an index over zero
// directories is empty but usable.
func BuildIndex(dirs ...string) *Index {
	idx := &Index{entries: make(map[string][]string)}

	for _, dir := range dirs {
		filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			rank, ok := formatRank[ext]
			if !ok {
				return nil
			}
			stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
			idx.insert(stem, path, rank)
			return nil
		})
	}
	return idx
}

func (idx *Index) insert(stem, path string, rank int) {
	list := idx.entries[stem]
	pos := len(list)
	for i, p := range list {
		if rank < formatRank[strings.ToLower(filepath.Ext(p))] {
			pos = i
			break
		}
	}
	list = append(list, "")
	copy(list[pos+1:], list[pos:])
	list[pos] = path
	idx.entries[stem] = list
}

// ResolvePath returns the best-ranked file for a texture name, or
// ("", false). Directory prefixes and the stated extension are ignored;
// only the stem matters.
func (idx *Index) ResolvePath(texName string) (string, bool) {
	c := idx.Candidates(texName)
	if len(c) == 0 {
		return "", false
	}
	return c[0], true
}

// Candidates returns every indexed file for a texture name, best first.
func (idx *Index) Candidates(texName string) []string {
	texName = strings.ReplaceAll(texName, "\\", "/")
	base := filepath.Base(texName)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
	return idx.entries[stem]
}

// Len returns the number of distinct stems indexed.
func (idx *Index) Len() int {
	return len(idx.entries)
}
