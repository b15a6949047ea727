package cfg

import "strings"

// The section vocabulary the semantic extractors understand. Everything
// else passes through as an unknown section, parameters untouched.
var recognized = map[string]struct{}{
	"groups":           {},
	"friendlyname":     {},
	"lod":              {},
	"viewpoint":        {},
	"mesh":             {},
	"model":            {},
	"surface":          {},
	"interiorlight":    {},
	"spotlight":        {},
	"light_enh":        {},
	"light_enh_2":      {},
	"matl":             {},
	"matl_change":      {},
	"matl_alpha":       {},
	"matl_transmap":    {},
	"matl_envmap":      {},
	"matl_envmap_mask": {},
	"matl_bumpmap":     {},
	"matl_nightmap":    {},
	"matl_lightmap":    {},
	"matl_allcolor":    {},
	"matl_nozwrite":    {},
	"matl_nozcheck":    {},
	"alphascale":       {},
}

// Recognized reports whether the section name is part of the extractor
// vocabulary.
func Recognized(name string) bool {
	_, ok := recognized[strings.ToLower(name)]
	return ok
}
