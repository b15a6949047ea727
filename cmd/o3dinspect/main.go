// o3dinspect dumps the structure of O3D model files: header, counts,
// bounds, materials and bones.
package main

import (
	"flag"
	"fmt"
	"os"

	"omsi-o3d-tools/internal/config"
	"omsi-o3d-tools/internal/o3d"
)

func main() {
	seed := flag.String("seed", "", "Hex cipher seed override (default: format default)")
	verbose := flag.Bool("v", false, "Dump per-material and per-bone detail")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: o3dinspect [-seed HEX] [-v] file.o3d ...")
		os.Exit(1)
	}

	cfg := config.Config{Seed: *seed}
	ciph, err := cfg.Cipher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	failed := 0
	for _, path := range flag.Args() {
		m, err := o3d.DecodeFile(path, ciph)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			failed++
			continue
		}
		dump(path, m, *verbose)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func dump(path string, m *o3d.Model, verbose bool) {
	h := m.Header
	fmt.Printf("%s\n", path)
	fmt.Printf("  Version: %d", h.Version)
	if h.LongHeader() {
		fmt.Printf(" (extended header)")
	}
	fmt.Println()
	if h.Encrypted() {
		fmt.Printf("  Encrypted: yes, key %#08x, alt-seed %v\n", h.Key, h.AltSeed)
	} else {
		fmt.Printf("  Encrypted: no\n")
	}
	fmt.Printf("  Indices: %d-bit\n", map[bool]int{false: 16, true: 32}[h.LongIndices])
	fmt.Printf("  Vertices: %d, Triangles: %d, Materials: %d, Bones: %d\n",
		len(m.Vertices), len(m.Triangles), len(m.Materials), len(m.Bones))

	if len(m.Vertices) > 0 {
		min, max := m.Bounds()
		fmt.Printf("  BBox: X[%.2f, %.2f] Y[%.2f, %.2f] Z[%.2f, %.2f]\n",
			min[0], max[0], min[1], max[1], min[2], max[2])
		fmt.Printf("  Size: %.2f x %.2f x %.2f\n",
			max[0]-min[0], max[1]-min[1], max[2]-min[2])
	}
	if m.HasTransform {
		fmt.Printf("  Transform: present\n")
	}

	if !verbose {
		return
	}
	for i, mat := range m.Materials {
		fmt.Printf("  Material[%d]: diffuse(%.2f %.2f %.2f %.2f) specular(%.2f %.2f %.2f) power %.1f texture %q\n",
			i, mat.Diffuse[0], mat.Diffuse[1], mat.Diffuse[2], mat.Diffuse[3],
			mat.Specular[0], mat.Specular[1], mat.Specular[2], mat.SpecularPower, mat.Texture)
	}
	for i, b := range m.Bones {
		fmt.Printf("  Bone[%d]: %q weights=%d\n", i, b.Name, len(b.Weights))
	}
}
