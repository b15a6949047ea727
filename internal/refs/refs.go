// Package refs discovers the files a config depends on (meshes,
// textures, nested configs), locates them on disk, and assigns output
// paths when exporting.
package refs

import (
	"strings"

	"omsi-o3d-tools/internal/cfg"
)

// Kind classifies a reference.
type Kind int

const (
	KindModel Kind = iota
	KindTexture
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindModel:
		return "model"
	case KindTexture:
		return "texture"
	case KindConfig:
		return "config"
	}
	return "unknown"
}

// Reference is one path-valued parameter found in a document.
type Reference struct {
	Kind     Kind
	Section  string
	Path     string // as written
	Resolved string // on-disk location, "" until located or when missing
	Missing  bool
}

// Set is the result of a collection pass. Missing files and structural
// oddities are warnings, never errors; a partial scene is still usable.
type Set struct {
	Source   string
	Models   []Reference
	Textures []Reference
	Configs  []Reference
	Warnings []string
}

// pathSlots maps section names to the positional parameters that carry
// file paths.
var pathSlots = map[string]struct {
	param int
	kind  Kind
}{
	"mesh":             {0, KindModel},
	"model":            {0, KindConfig},
	"matl":             {0, KindTexture},
	"matl_change":      {0, KindTexture},
	"matl_transmap":    {0, KindTexture},
	"matl_envmap":      {0, KindTexture},
	"matl_envmap_mask": {0, KindTexture},
	"matl_bumpmap":     {0, KindTexture},
	"matl_nightmap":    {0, KindTexture},
	"matl_lightmap":    {0, KindTexture},
}

// Collect walks every section of a document and gathers its references
// in order, deduplicated case-insensitively. Mesh blocks carrying a
// skip_export marker contribute nothing.
func Collect(doc *cfg.Document, source string) *Set {
	set := &Set{Source: source}
	seen := map[string]bool{}

	skipBlock := false
	for _, s := range doc.Sections {
		name := strings.ToLower(s.Name)
		if name == "mesh" || name == "lod" {
			skipBlock = name == "mesh" && HasSkipMarker(s)
		}
		if skipBlock {
			continue
		}

		slot, ok := pathSlots[name]
		if !ok {
			continue
		}
		v := s.Param(slot.param)
		if v == "" {
			continue
		}
		key := slot.kind.String() + "|" + strings.ToLower(v)
		if seen[key] {
			continue
		}
		seen[key] = true

		ref := Reference{Kind: slot.kind, Section: s.Name, Path: v}
		switch slot.kind {
		case KindModel:
			set.Models = append(set.Models, ref)
		case KindTexture:
			set.Textures = append(set.Textures, ref)
		case KindConfig:
			set.Configs = append(set.Configs, ref)
		}
	}
	return set
}

// HasSkipMarker reports whether a section carries a skip_export
// property, either as a bare line or as a skip_export=value pair.
func HasSkipMarker(s *cfg.Section) bool {
	for _, p := range s.Props {
		if strings.EqualFold(p.Key, "skip_export") || strings.EqualFold(p.Value(), "skip_export") {
			return true
		}
	}
	return false
}

// All returns every reference in the set, models first.
func (s *Set) All() []Reference {
	out := make([]Reference, 0, len(s.Models)+len(s.Textures)+len(s.Configs))
	out = append(out, s.Models...)
	out = append(out, s.Textures...)
	out = append(out, s.Configs...)
	return out
}

// MissingCount reports how many references could not be located.
func (s *Set) MissingCount() int {
	n := 0
	for _, r := range s.All() {
		if r.Missing {
			n++
		}
	}
	return n
}
