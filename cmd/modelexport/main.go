// modelexport re-exports the models of a config under a new name,
// applying the file-splitting policy: a lone object keeps the target
// name, several objects split into prefixed .o3d files or into a
// companion .cfg plus one .o3d per object.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"omsi-o3d-tools/internal/cfg"
	"omsi-o3d-tools/internal/config"
	"omsi-o3d-tools/internal/o3d"
	"omsi-o3d-tools/internal/refs"
)

func main() {
	in := flag.String("in", "", "Source config (.cfg/.sco)")
	out := flag.String("out", "", "Export target (.o3d or .cfg)")
	only := flag.String("objects", "", "Comma-separated object names to export (default: all)")
	fresh := flag.Bool("fresh", false, "Emit a minimal generated config instead of rewriting the source")
	seed := flag.String("seed", "", "Hex cipher seed override")
	dryRun := flag.Bool("n", false, "Plan only, write nothing")
	flag.Parse()

	if *in == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "usage: modelexport -in src.cfg -out target.{o3d,cfg} [-objects A,B] [-fresh] [-n]")
		os.Exit(1)
	}

	toolCfg := config.Config{Seed: *seed}
	ciph, err := toolCfg.Cipher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	doc, parseWarns, err := cfg.ParseFile(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, w := range parseWarns {
		fmt.Fprintf(os.Stderr, "Warning: %s: %s\n", *in, w)
	}

	set := refs.Collect(doc, *in)
	set.Locate()
	for _, w := range set.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	objects, sources := buildObjects(doc, *only)
	if len(objects) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no exportable objects selected")
		os.Exit(1)
	}

	plan, err := refs.PlanExport(*out, objects)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if plan.CfgPath != "" {
		fmt.Printf("plan: %s\n", plan.CfgPath)
	}
	for _, f := range plan.Files {
		fmt.Printf("plan: %s (from %s)\n", f.Path, sources[strings.ToLower(f.Object.Name)])
	}
	if *dryRun {
		return
	}

	outDir := filepath.Dir(*out)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	srcByName := resolvedModels(set)
	for _, f := range plan.Files {
		src := srcByName[strings.ToLower(f.Object.Name)]
		if src == "" {
			fmt.Fprintf(os.Stderr, "Error: no located model for object %q\n", f.Object.Name)
			os.Exit(1)
		}
		m, err := o3d.DecodeFile(src, ciph)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		raw, err := o3d.Encode(m, o3d.OptionsFor(m), ciph)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(f.Path, raw, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if plan.CfgPath == "" {
		return
	}

	var outDoc *cfg.Document
	if *fresh {
		outDoc = plan.Document()
	} else {
		outDoc = rewriteSource(doc, plan, set, outDir)
	}
	if err := os.WriteFile(plan.CfgPath, outDoc.Serialize(), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s and %d model file(s)\n", plan.CfgPath, len(plan.Files))
}

// buildObjects derives the exportable object list from the document's
// mesh blocks: one object per [mesh], named after the file stem, with
// the current [LOD] threshold as grouping label and the skip marker
// honored. sources maps lowercased object names to the stated mesh path.
func buildObjects(doc *cfg.Document, only string) ([]refs.Object, map[string]string) {
	selected := map[string]bool{}
	if only != "" {
		for _, n := range strings.Split(only, ",") {
			selected[strings.ToLower(strings.TrimSpace(n))] = true
		}
	}

	var objects []refs.Object
	sources := map[string]string{}
	label := ""
	for _, s := range doc.Sections {
		switch {
		case s.Is("lod"):
			if v, ok := s.Float(0); ok {
				label = cfg.LODLabel(v)
			}
		case s.Is("mesh"):
			path := s.Param(0)
			if path == "" {
				continue
			}
			name := strings.TrimSuffix(filepath.Base(strings.ReplaceAll(path, "\\", "/")), filepath.Ext(path))
			if len(selected) > 0 && !selected[strings.ToLower(name)] {
				continue
			}
			objects = append(objects, refs.Object{
				Name:  name,
				Label: label,
				Skip:  refs.HasSkipMarker(s),
			})
			sources[strings.ToLower(name)] = path
		}
	}
	return objects, sources
}

func resolvedModels(set *refs.Set) map[string]string {
	out := map[string]string{}
	for _, r := range set.Models {
		if r.Missing {
			continue
		}
		base := filepath.Base(strings.ReplaceAll(r.Path, "\\", "/"))
		stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
		out[stem] = r.Resolved
	}
	return out
}

// rewriteSource keeps the source document's materials and lights but
// drops skip-marked mesh blocks, repoints [mesh] entries at the planned
// files and makes texture paths relative to the output directory.
func rewriteSource(doc *cfg.Document, plan *refs.Plan, set *refs.Set, outDir string) *cfg.Document {
	refs.StripSkipped(doc)

	planned := map[string]string{}
	for _, f := range plan.Files {
		planned[strings.ToLower(f.Object.Name)] = filepath.Base(f.Path)
	}
	for _, s := range doc.Sections {
		if !s.Is("mesh") || len(s.Props) == 0 {
			continue
		}
		path := strings.ReplaceAll(s.Param(0), "\\", "/")
		stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		if name, ok := planned[stem]; ok {
			s.Props[0].SetValue(name)
		}
	}

	refs.RewriteTexturePaths(doc, set, outDir)
	return doc
}
