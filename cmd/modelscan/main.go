// modelscan batch-processes an asset tree: decodes every model file,
// parses every config, audits references, and writes a JSON manifest.
// Optionally verifies byte-identical re-encodes and renders previews.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"omsi-o3d-tools/internal/batch"
	"omsi-o3d-tools/internal/config"
	"omsi-o3d-tools/internal/texture"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	root := flag.String("root", "", "Tree to scan (default: base directory)")
	baseDir := flag.String("base", "", "Asset base directory (default: auto-detect)")
	outputDir := flag.String("output", "", "Output directory for manifest and previews")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	quality := flag.Int("quality", 0, "WebP quality 1-100 (default: 90)")
	seed := flag.String("seed", "", "Hex cipher seed override")
	verify := flag.Bool("verify", false, "Verify re-encode round trips")
	previews := flag.Bool("previews", false, "Render webp previews for model files")
	testN := flag.Int("test", 0, "Process only the first N files")
	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{
		BaseDir:   *baseDir,
		OutputDir: *outputDir,
		Quality:   *quality,
		Workers:   *workers,
		Seed:      *seed,
	})

	scanRoot := *root
	if scanRoot == "" {
		scanRoot = cfg.BaseDir
	}
	if scanRoot == "" {
		fmt.Fprintln(os.Stderr, "Error: no tree to scan. Use -root or -base, or run inside an asset directory.")
		os.Exit(1)
	}

	ciph, err := cfg.Cipher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	items, err := batch.Scan(scanRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *testN > 0 && *testN < len(items) {
		items = items[:*testN]
	}
	if len(items) == 0 {
		fmt.Println("No model or config files found.")
		os.Exit(0)
	}

	var resolver texture.Resolver
	if *previews {
		idx := texture.BuildIndex(cfg.TextureDirs...)
		resolver = texture.NewCache(idx)
		fmt.Printf("Textures: %d indexed\n", idx.Len())
	}

	fmt.Printf("O3D/CFG asset scan\n")
	fmt.Printf("Files: %d, Workers: %d\n", len(items), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	results := batch.Run(batch.Config{
		Root:        scanRoot,
		OutputDir:   cfg.OutputDir,
		Cipher:      ciph,
		TexResolver: resolver,
		RenderSize:  cfg.RenderSize,
		Supersample: cfg.Supersample,
		Workers:     cfg.Workers,
		Verify:      *verify,
		Previews:    *previews,
	}, items)

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())

	success, failed, warned, missing := 0, 0, 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errors = append(errors, r)
		}
		if len(r.Warnings) > 0 {
			warned++
		}
		missing += r.Missing
	}
	fmt.Printf("Processed: %d/%d, warnings on %d file(s), %d missing reference(s)\n",
		success, len(items), warned, missing)

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := 20
		if len(errors) < limit {
			limit = len(errors)
		}
		for _, e := range errors[:limit] {
			fmt.Printf("  %s: %s\n", e.Path, e.Error)
		}
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := batch.WriteManifest(manifestPath, scanRoot, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
