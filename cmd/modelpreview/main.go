// modelpreview renders a webp thumbnail of an O3D file or of every
// located mesh of a config, merged into one frame.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"omsi-o3d-tools/internal/cfg"
	"omsi-o3d-tools/internal/config"
	"omsi-o3d-tools/internal/crypto"
	"omsi-o3d-tools/internal/o3d"
	"omsi-o3d-tools/internal/postprocess"
	"omsi-o3d-tools/internal/raster"
	"omsi-o3d-tools/internal/refs"
	"omsi-o3d-tools/internal/texture"

	"github.com/HugoSmits86/nativewebp"
)

func main() {
	in := flag.String("in", "", "Input .o3d or config file")
	out := flag.String("out", "", "Output .webp (default: input name with .webp)")
	size := flag.Int("size", 0, "Output edge length (default 256)")
	ss := flag.Int("supersample", 0, "Supersample factor (default 2)")
	yaw := flag.Float64("yaw", 0, "Camera yaw in degrees")
	pitch := flag.Float64("pitch", 0, "Camera pitch in degrees")
	seed := flag.String("seed", "", "Hex cipher seed override")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: modelpreview -in model.o3d [-out x.webp] [-size N] [-yaw D] [-pitch D]")
		os.Exit(1)
	}
	target := *out
	if target == "" {
		target = strings.TrimSuffix(*in, filepath.Ext(*in)) + ".webp"
	}

	toolCfg := config.Config{Seed: *seed}
	toolCfg.Resolve(config.Flags{})
	ciph, err := toolCfg.Cipher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var model *o3d.Model
	var texDirs []string
	if strings.EqualFold(filepath.Ext(*in), ".o3d") {
		model, err = o3d.DecodeFile(*in, ciph)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		texDirs = []string{filepath.Join(filepath.Dir(*in), "..", "texture")}
	} else {
		model, texDirs, err = loadConfigModel(*in, ciph)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	resolver := texture.NewCache(texture.BuildIndex(texDirs...))

	renderSize := *size
	if renderSize <= 0 {
		renderSize = toolCfg.RenderSize
	}
	factor := *ss
	if factor <= 0 {
		factor = toolCfg.Supersample
	}

	img := raster.RenderModel(model, resolver, raster.Options{
		Size:        renderSize,
		Supersample: factor,
		Yaw:         *yaw,
		Pitch:       *pitch,
	})
	if factor > 1 {
		img = postprocess.Downsample(img, renderSize)
	}

	f, err := os.Create(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	if err := nativewebp.Encode(f, img, nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error: webp encode: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s -> %s (%dpx)\n", *in, target, renderSize)
}

// loadConfigModel decodes every located, non-skipped mesh of a config
// and merges them into one render candidate. The texture search
// directories follow the config's layout.
func loadConfigModel(path string, ciph crypto.Config) (*o3d.Model, []string, error) {
	doc, warns, err := cfg.ParseFile(path)
	if err != nil {
		return nil, nil, err
	}
	for _, w := range warns {
		fmt.Fprintf(os.Stderr, "Warning: %s: %s\n", path, w)
	}

	set := refs.Collect(doc, path)
	set.Locate()
	for _, w := range set.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	var models []*o3d.Model
	for _, ref := range set.Models {
		if ref.Missing || !strings.EqualFold(filepath.Ext(ref.Resolved), ".o3d") {
			continue
		}
		m, err := o3d.DecodeFile(ref.Resolved, ciph)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			continue
		}
		models = append(models, m)
	}
	if len(models) == 0 {
		return nil, nil, fmt.Errorf("modelpreview: %s: no decodable meshes", path)
	}

	base := filepath.Dir(path)
	texDirs := []string{
		filepath.Join(base, "texture"),
		filepath.Join(base, "..", "texture"),
	}
	return raster.MergeModels(models), texDirs, nil
}
