package refs

import (
	"fmt"
	"path/filepath"
	"strings"

	"omsi-o3d-tools/internal/cfg"
)

// CollectTree collects references for a config and every nested config it
// reaches, breadth-first. Traversal uses an explicit worklist with a
// visited set, so reference cycles terminate and are reported as
// warnings. One Set is returned per config actually parsed, root first.
func CollectTree(path string) ([]*Set, []string) {
	var sets []*Set
	var warns []string
	visited := map[string]bool{visitKey(path): true}
	work := []string{path}

	for len(work) > 0 {
		p := work[0]
		work = work[1:]

		doc, parseWarns, err := cfg.ParseFile(p)
		if err != nil {
			warns = append(warns, err.Error())
			continue
		}
		for _, w := range parseWarns {
			warns = append(warns, fmt.Sprintf("%s: %s", p, w))
		}

		set := Collect(doc, p)
		set.Locate()
		sets = append(sets, set)

		for _, ref := range set.Configs {
			if ref.Missing {
				continue
			}
			key := visitKey(ref.Resolved)
			if visited[key] {
				warns = append(warns, fmt.Sprintf(
					"%s: nested config %s already visited, skipping (reference cycle)", p, ref.Path))
				continue
			}
			visited[key] = true
			work = append(work, ref.Resolved)
		}
	}
	return sets, warns
}

func visitKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return strings.ToLower(filepath.Clean(abs))
}
