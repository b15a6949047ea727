// Package batch scans an asset tree for model and config files and
// processes them with a worker pool: decode or parse, audit references,
// optionally verify the re-encode round trip and render previews.
package batch

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"omsi-o3d-tools/internal/crypto"
	"omsi-o3d-tools/internal/o3d"
	"omsi-o3d-tools/internal/postprocess"
	"omsi-o3d-tools/internal/raster"
	"omsi-o3d-tools/internal/refs"
	"omsi-o3d-tools/internal/texture"

	"github.com/HugoSmits86/nativewebp"
)

// Item is one file selected by a scan.
type Item struct {
	Path string
	Kind string // "o3d" or "cfg"
}

// Scan walks root and collects every model and config file. Order is the
// filesystem walk order, so runs are reproducible.
func Scan(root string) ([]Item, error) {
	var items []Item
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".o3d":
			items = append(items, Item{Path: path, Kind: "o3d"})
		case ".cfg", ".sco", ".bus", ".ovh":
			items = append(items, Item{Path: path, Kind: "cfg"})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch: scan %s: %w", root, err)
	}
	return items, nil
}

// Config holds the shared resources for a batch run.
type Config struct {
	Root        string
	OutputDir   string
	Cipher      crypto.Config
	TexResolver texture.Resolver
	RenderSize  int
	Supersample int
	Workers     int

	// Verify re-encodes every decoded model with its original header
	// configuration and compares the bytes.
	Verify bool

	// Previews renders a webp thumbnail per model file.
	Previews bool
}

// Result is the outcome of processing one item.
type Result struct {
	Path     string
	Kind     string
	Success  bool
	Error    string
	Warnings []string
	Missing  int
	Image    string
}

// Run processes all items with a worker pool, printing a progress line
// every couple of seconds.
func Run(cfg Config, items []Item) []Result {
	total := len(items)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					fmt.Printf("  [%d/%d] %.1f files/sec\n", p, total, float64(p)/elapsed)
				}
			}
		}
	}()

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	itemChan := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range itemChan {
				results[idx] = processItem(cfg, items[idx])
				processed.Add(1)
			}
		}()
	}
	for i := range items {
		itemChan <- i
	}
	close(itemChan)
	wg.Wait()
	close(done)

	return results
}

func processItem(cfg Config, item Item) Result {
	switch item.Kind {
	case "o3d":
		return processModel(cfg, item)
	default:
		return processConfig(cfg, item)
	}
}

func processModel(cfg Config, item Item) Result {
	res := Result{Path: item.Path, Kind: item.Kind}

	raw, err := os.ReadFile(item.Path)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	m, err := o3d.Decode(raw, cfg.Cipher)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	if cfg.Verify {
		enc, err := o3d.Encode(m, o3d.OptionsFor(m), cfg.Cipher)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("re-encode: %v", err))
		} else if !bytes.Equal(raw, enc) {
			res.Warnings = append(res.Warnings, "re-encode differs from source bytes")
		}
	}

	if cfg.Previews {
		name, err := renderPreview(cfg, item.Path, m)
		if err != nil {
			res.Warnings = append(res.Warnings, err.Error())
		} else {
			res.Image = name
		}
	}

	res.Success = true
	return res
}

func processConfig(cfg Config, item Item) Result {
	res := Result{Path: item.Path, Kind: item.Kind}

	sets, warns := refs.CollectTree(item.Path)
	if len(sets) == 0 {
		res.Error = strings.Join(warns, "; ")
		return res
	}
	res.Warnings = append(res.Warnings, warns...)
	for _, set := range sets {
		res.Warnings = append(res.Warnings, set.Warnings...)
		res.Missing += set.MissingCount()
	}
	res.Success = true
	return res
}

// renderPreview writes a webp thumbnail next to the run's manifest,
// mirroring the source path under the output directory.
func renderPreview(cfg Config, srcPath string, m *o3d.Model) (string, error) {
	img := raster.RenderModel(m, cfg.TexResolver, raster.Options{
		Size:        cfg.RenderSize,
		Supersample: cfg.Supersample,
	})
	if cfg.Supersample > 1 {
		img = postprocess.Downsample(img, cfg.RenderSize)
	}

	name := previewName(cfg.Root, srcPath)
	outPath := filepath.Join(cfg.OutputDir, name)
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return "", fmt.Errorf("preview: %v", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("preview: %v", err)
	}
	defer f.Close()
	if err := nativewebp.Encode(f, img, nil); err != nil {
		return "", fmt.Errorf("preview: webp encode: %v", err)
	}
	return name, nil
}

// previewName maps a source file to its manifest-relative image name.
func previewName(root, srcPath string) string {
	rel, err := filepath.Rel(root, srcPath)
	if err != nil {
		rel = filepath.Base(srcPath)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ".webp"
	return filepath.ToSlash(rel)
}
