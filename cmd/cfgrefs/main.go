// cfgrefs parses model and scenery configs, lists the files they
// reference and reports which ones are missing on disk.
package main

import (
	"flag"
	"fmt"
	"os"

	"omsi-o3d-tools/internal/cfg"
	"omsi-o3d-tools/internal/refs"
)

func main() {
	tree := flag.Bool("tree", false, "Follow nested configs recursively")
	quiet := flag.Bool("q", false, "Only report missing references")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: cfgrefs [-tree] [-q] file.cfg ...")
		os.Exit(1)
	}

	missing := 0
	for _, path := range flag.Args() {
		var sets []*refs.Set
		if *tree {
			var warns []string
			sets, warns = refs.CollectTree(path)
			for _, w := range warns {
				fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
			}
		} else {
			doc, parseWarns, err := cfg.ParseFile(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			for _, w := range parseWarns {
				fmt.Fprintf(os.Stderr, "Warning: %s: %s\n", path, w)
			}
			set := refs.Collect(doc, path)
			set.Locate()
			sets = []*refs.Set{set}
		}

		for _, set := range sets {
			if !*quiet {
				fmt.Printf("%s\n", set.Source)
			}
			for _, r := range set.All() {
				switch {
				case r.Missing:
					fmt.Printf("  MISSING %-7s %s\n", r.Kind, r.Path)
				case !*quiet:
					fmt.Printf("  %-7s %s -> %s\n", r.Kind, r.Path, r.Resolved)
				}
			}
			missing += set.MissingCount()
		}
	}

	if missing > 0 {
		fmt.Fprintf(os.Stderr, "%d missing reference(s)\n", missing)
		os.Exit(1)
	}
}
