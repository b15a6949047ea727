package cfg

import (
	"strconv"
	"strings"
)

// LODGroup collects the meshes active below one minimum on-screen size
// threshold.
type LODGroup struct {
	Threshold float64
	Meshes    []string
}

// Label renders the group's canonical label, LOD_<number>.
func (g LODGroup) Label() string {
	return LODLabel(g.Threshold)
}

// LODLabel formats a threshold as a grouping label.
func LODLabel(threshold float64) string {
	return "LOD_" + strconv.FormatFloat(threshold, 'f', -1, 64)
}

// ParseLODLabel recognizes labels of the form LOD_<number> and returns
// the threshold. Anything else, including labels like "Misc" or a
// non-numeric suffix, is not a LOD group.
func ParseLODLabel(label string) (float64, bool) {
	rest, ok := strings.CutPrefix(label, "LOD_")
	if !ok || rest == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(rest, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
