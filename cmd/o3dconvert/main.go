// o3dconvert decodes an O3D file and re-encodes it with a different
// header configuration: target version, index width, encryption.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"omsi-o3d-tools/internal/config"
	"omsi-o3d-tools/internal/o3d"
)

func main() {
	in := flag.String("in", "", "Input .o3d file")
	out := flag.String("out", "", "Output .o3d file")
	version := flag.Int("version", 0, "Target format version (default: keep source version)")
	long := flag.Bool("long", false, "Force 32-bit triangle indices")
	encrypt := flag.Bool("encrypt", false, "Encrypt the output payload")
	key := flag.String("key", "", "Hex header key for encrypted output")
	altseed := flag.Bool("altseed", false, "Use the header key as the cipher seed")
	seed := flag.String("seed", "", "Hex default cipher seed override")
	flag.Parse()

	if *in == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "usage: o3dconvert -in src.o3d -out dst.o3d [-version N] [-long] [-encrypt -key HEX [-altseed]] [-seed HEX]")
		os.Exit(1)
	}

	cfg := config.Config{Seed: *seed}
	ciph, err := cfg.Cipher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	m, err := o3d.DecodeFile(*in, ciph)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := o3d.OptionsFor(m)
	if *version > 0 {
		opts.Version = byte(*version)
	}
	if *long {
		opts.LongIndices = true
	}
	opts.Encrypt = *encrypt
	opts.AltSeed = *altseed
	if *key != "" {
		k, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(*key), "0x"), 16, 32)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: key %q is not a 32-bit hex value\n", *key)
			os.Exit(1)
		}
		opts.Key = uint32(k)
	}
	if *encrypt && opts.Key == o3d.PlainKey {
		fmt.Fprintln(os.Stderr, "Error: encrypting requires -key with a value other than ffffffff")
		os.Exit(1)
	}

	raw, err := o3d.Encode(m, opts, ciph)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, raw, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s -> %s (%d vertices, %d triangles, %d bytes)\n",
		*in, *out, len(m.Vertices), len(m.Triangles), len(raw))
}
