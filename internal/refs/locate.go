package refs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Locate resolves every reference in the set against the source file's
// directory layout and marks the ones that cannot be found. Scenery
// files (.sco) keep their meshes in model/ and textures in texture/;
// model configs keep meshes beside the config and textures in
// ../texture.
func (s *Set) Locate() {
	scenery := strings.EqualFold(filepath.Ext(s.Source), ".sco")
	base := filepath.Dir(s.Source)

	for i := range s.Models {
		dir := base
		if scenery {
			dir = filepath.Join(base, "model")
		}
		s.locateIn(&s.Models[i], dir)
	}
	for i := range s.Configs {
		s.locateIn(&s.Configs[i], base)
	}

	texDir := filepath.Join(base, "..", "texture")
	if scenery {
		texDir = filepath.Join(base, "texture")
	}
	for i := range s.Textures {
		s.locateTexture(&s.Textures[i], texDir, base)
	}
}

func (s *Set) locateIn(ref *Reference, dir string) {
	name := normPath(ref.Path)
	if p := firstExisting(
		filepath.Join(dir, name),
		filepath.Join(dir, strings.ToLower(name)),
	); p != "" {
		ref.Resolved = p
		return
	}
	s.miss(ref)
}

// locateTexture follows the reference importer's lookup order: the
// texture directory with a .dds override, then a walk up the directory
// tree trying <dir>/<name> and <dir>/texture/<name>.
func (s *Set) locateTexture(ref *Reference, texDir, baseDir string) {
	name := strings.ToLower(normPath(ref.Path))
	primary := filepath.Join(texDir, name)

	if p := ddsOverride(primary); p != "" {
		ref.Resolved = p
		return
	}
	if fileExists(primary) {
		ref.Resolved = primary
		return
	}

	for dir := baseDir; ; {
		if p := firstExisting(
			filepath.Join(dir, name),
			filepath.Join(dir, "texture", name),
		); p != "" {
			ref.Resolved = p
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	s.miss(ref)
}

func (s *Set) miss(ref *Reference) {
	ref.Missing = true
	s.Warnings = append(s.Warnings,
		fmt.Sprintf("missing %s %s (referenced by [%s])", ref.Kind, ref.Path, ref.Section))
}

// ddsOverride returns the sibling .dds for a texture path when present;
// a .dds beats the extension the config states.
func ddsOverride(path string) string {
	ext := filepath.Ext(path)
	if strings.EqualFold(ext, ".dds") {
		return ""
	}
	dds := strings.TrimSuffix(path, ext) + ".dds"
	if fileExists(dds) {
		return dds
	}
	return ""
}

func normPath(p string) string {
	return filepath.FromSlash(strings.ReplaceAll(p, "\\", "/"))
}

func firstExisting(paths ...string) string {
	for _, p := range paths {
		if fileExists(p) {
			return p
		}
	}
	return ""
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}
