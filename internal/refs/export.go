package refs

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"omsi-o3d-tools/internal/cfg"
)

// Object is one exportable mesh as the host integration sees it: a name,
// an optional grouping label (LOD_<n> labels select a detail group), and
// the skip marker that keeps it out of the export entirely.
type Object struct {
	Name  string
	Label string
	Skip  bool
}

// PlannedFile is one model file the export will emit.
type PlannedFile struct {
	Object Object
	Path   string
}

// Plan is the resolved output layout of one export. CfgPath is empty for
// model-only exports.
type Plan struct {
	CfgPath string
	Files   []PlannedFile
}

// PlanExport applies the file-splitting policy to a target path:
//
//	one object  -> name.o3d               one file, named as given
//	several     -> name.o3d               name-<object>.o3d per object
//	several     -> name.cfg               name.cfg plus <object>.o3d per
//	                                      object, no prefix
//
// Skip-marked objects contribute no files. A target with any other
// extension is an error.
func PlanExport(target string, objects []Object) (*Plan, error) {
	active := make([]Object, 0, len(objects))
	for _, o := range objects {
		if !o.Skip {
			active = append(active, o)
		}
	}
	if len(active) == 0 {
		return nil, fmt.Errorf("refs: nothing to export to %s: every object is skipped", target)
	}

	dir := filepath.Dir(target)
	ext := filepath.Ext(target)
	stem := strings.TrimSuffix(filepath.Base(target), ext)

	plan := &Plan{}
	switch strings.ToLower(ext) {
	case ".o3d":
		if len(active) == 1 {
			plan.Files = []PlannedFile{{Object: active[0], Path: target}}
			break
		}
		for _, o := range active {
			plan.Files = append(plan.Files, PlannedFile{
				Object: o,
				Path:   filepath.Join(dir, stem+"-"+o.Name+".o3d"),
			})
		}
	case ".cfg":
		plan.CfgPath = target
		for _, o := range active {
			plan.Files = append(plan.Files, PlannedFile{
				Object: o,
				Path:   filepath.Join(dir, o.Name+".o3d"),
			})
		}
	default:
		return nil, fmt.Errorf("refs: export target %s: extension %q selects no layout", target, ext)
	}
	return plan, nil
}

// Document builds the companion config for the plan: objects grouped by
// their LOD labels in ascending threshold order, ungrouped objects first
// under no [LOD] header. Mesh paths are the planned file names relative
// to the config location.
func (p *Plan) Document() *cfg.Document {
	doc := &cfg.Document{EOL: "\r\n", FinalEOL: true}

	type group struct {
		threshold float64
		files     []PlannedFile
	}
	var plain []PlannedFile
	lods := map[float64]*group{}
	for _, f := range p.Files {
		t, ok := cfg.ParseLODLabel(f.Object.Label)
		if !ok {
			plain = append(plain, f)
			continue
		}
		g := lods[t]
		if g == nil {
			g = &group{threshold: t}
			lods[t] = g
		}
		g.files = append(g.files, f)
	}
	ordered := make([]*group, 0, len(lods))
	for _, g := range lods {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].threshold < ordered[j].threshold
	})

	base := filepath.Dir(p.CfgPath)
	for _, f := range plain {
		doc.AddSection("mesh", p.meshPath(f, base))
	}
	for _, g := range ordered {
		doc.AddSection("LOD", strconv.FormatFloat(g.threshold, 'f', -1, 64))
		for _, f := range g.files {
			doc.AddSection("mesh", p.meshPath(f, base))
		}
	}
	return doc
}

func (p *Plan) meshPath(f PlannedFile, base string) string {
	if p.CfgPath == "" {
		return filepath.Base(f.Path)
	}
	rel, err := filepath.Rel(base, f.Path)
	if err != nil {
		return filepath.Base(f.Path)
	}
	return toConfigPath(rel)
}

// StripSkipped removes every mesh block carrying a skip marker from a
// document in place. A mesh block is the [mesh] section and everything
// after it up to the next [mesh] or [LOD] header.
func StripSkipped(doc *cfg.Document) {
	kept := doc.Sections[:0]
	dropping := false
	for _, s := range doc.Sections {
		if s.Is("mesh") || s.Is("lod") {
			dropping = s.Is("mesh") && HasSkipMarker(s)
		}
		if !dropping {
			kept = append(kept, s)
		}
	}
	doc.Sections = kept
}

// RewriteTexturePaths repoints every located texture reference in the
// document at a path relative to outDir, using the backslash separators
// config files conventionally carry. Missing textures keep their
// original value.
func RewriteTexturePaths(doc *cfg.Document, set *Set, outDir string) {
	byPath := map[string]string{}
	for _, ref := range set.Textures {
		if !ref.Missing && ref.Resolved != "" {
			byPath[strings.ToLower(ref.Path)] = ref.Resolved
		}
	}

	for _, s := range doc.Sections {
		slot, ok := pathSlots[strings.ToLower(s.Name)]
		if !ok || slot.kind != KindTexture {
			continue
		}
		if slot.param >= len(s.Props) {
			continue
		}
		prop := s.Props[slot.param]
		resolved, ok := byPath[strings.ToLower(prop.Value())]
		if !ok {
			continue
		}
		rel, err := filepath.Rel(outDir, resolved)
		if err != nil {
			continue
		}
		prop.SetValue(toConfigPath(rel))
	}
}

// toConfigPath renders a filesystem path the way config files spell
// paths, with backslash separators.
func toConfigPath(p string) string {
	return strings.ReplaceAll(filepath.ToSlash(p), "/", "\\")
}
