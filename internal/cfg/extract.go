package cfg

import (
	"sort"
	"strings"
)

// ModelConfig is the semantic view of a model or scenery config: meshes
// with their materials, lights, and LOD grouping, in document order.
type ModelConfig struct {
	FriendlyName string
	Groups       []string
	IsScenery    bool
	Meshes       []MeshEntry
	Lights       []Light
	LODs         []LODGroup
}

// MeshEntry is one [mesh] directive with the state that was current
// when it appeared.
type MeshEntry struct {
	Path      string
	Viewpoint int
	LOD       float64
	Materials []MaterialDef
}

// MaterialDef accumulates a [matl] block and the matl_* sections that
// follow it.
type MaterialDef struct {
	Texture         string
	Variable        string
	Alpha           int
	AlphaScale      float64
	Transmap        string
	Envmap          string
	EnvmapStrength  float64
	EnvmapMask      string
	Bumpmap         string
	BumpmapStrength float64
	Nightmap        string
	Lightmap        string
	AllColor        *AllColor
	NoZWrite        bool
	NoZCheck        bool
}

// AllColor is the full 14-float material color block.
type AllColor struct {
	Diffuse       [4]float64
	Ambient       [3]float64
	Specular      [3]float64
	Emission      [3]float64
	SpecularPower float64
}

// Light is one light directive. Interior lights are fully decoded; the
// enhanced variants keep their parameters verbatim alongside the kind.
type Light struct {
	Kind     string
	Variable string
	Range    float64
	Color    [3]float64
	Position [3]float64
	Params   []string
}

// Extract runs the ordered semantic pass over a parsed document: [LOD]
// changes the active threshold, [mesh] opens a mesh, [matl] opens a
// material on that mesh, matl_* sections modify the open material.
func Extract(doc *Document) *ModelConfig {
	mc := &ModelConfig{}
	groups := map[float64]*LODGroup{}
	ensureLOD := func(t float64) *LODGroup {
		if g, ok := groups[t]; ok {
			return g
		}
		g := &LODGroup{Threshold: t}
		groups[t] = g
		return g
	}

	var curLOD float64
	var pendingViewpoint *int
	curMesh := func() *MeshEntry {
		if len(mc.Meshes) == 0 {
			return nil
		}
		return &mc.Meshes[len(mc.Meshes)-1]
	}
	curMat := func() *MaterialDef {
		m := curMesh()
		if m == nil || len(m.Materials) == 0 {
			return nil
		}
		return &m.Materials[len(m.Materials)-1]
	}

	for _, s := range doc.Sections {
		switch strings.ToLower(s.Name) {
		case "friendlyname":
			mc.FriendlyName = s.Param(0)
		case "groups":
			mc.Groups = append(mc.Groups, s.Params()...)
		case "surface":
			mc.IsScenery = true
		case "lod":
			if v, ok := s.Float(0); ok {
				curLOD = v
				ensureLOD(v)
			}
		case "viewpoint":
			if v, ok := s.Int(0); ok {
				if m := curMesh(); m != nil {
					m.Viewpoint = v
				} else {
					vp := v
					pendingViewpoint = &vp
				}
			}
		case "mesh":
			e := MeshEntry{Path: s.Param(0), LOD: curLOD}
			if pendingViewpoint != nil {
				e.Viewpoint = *pendingViewpoint
				pendingViewpoint = nil
			}
			mc.Meshes = append(mc.Meshes, e)
			g := ensureLOD(curLOD)
			g.Meshes = append(g.Meshes, e.Path)
		case "matl", "matl_change":
			if m := curMesh(); m != nil {
				mat := MaterialDef{Texture: strings.ToLower(s.Param(0))}
				if s.Is("matl_change") {
					mat.Variable = s.Param(1)
				}
				m.Materials = append(m.Materials, mat)
			}
		case "matl_alpha":
			if m := curMat(); m != nil {
				if v, ok := s.Int(0); ok {
					m.Alpha = v
				}
			}
		case "alphascale":
			if m := curMat(); m != nil {
				if v, ok := s.Float(0); ok {
					m.AlphaScale = v
				}
			}
		case "matl_transmap":
			if m := curMat(); m != nil {
				m.Transmap = s.Param(0)
			}
		case "matl_envmap":
			if m := curMat(); m != nil {
				m.Envmap = s.Param(0)
				if v, ok := s.Float(1); ok {
					m.EnvmapStrength = v
				}
			}
		case "matl_envmap_mask":
			if m := curMat(); m != nil {
				m.EnvmapMask = s.Param(0)
			}
		case "matl_bumpmap":
			if m := curMat(); m != nil {
				m.Bumpmap = s.Param(0)
				if v, ok := s.Float(1); ok {
					m.BumpmapStrength = v
				}
			}
		case "matl_nightmap":
			if m := curMat(); m != nil {
				m.Nightmap = s.Param(0)
			}
		case "matl_lightmap":
			if m := curMat(); m != nil {
				m.Lightmap = s.Param(0)
			}
		case "matl_nozwrite":
			if m := curMat(); m != nil {
				m.NoZWrite = true
			}
		case "matl_nozcheck":
			if m := curMat(); m != nil {
				m.NoZCheck = true
			}
		case "matl_allcolor":
			if m := curMat(); m != nil {
				m.AllColor = readAllColor(s)
			}
		case "interiorlight":
			l := Light{
				Kind:     "interiorlight",
				Variable: s.Param(0),
				Params:   s.Params(),
			}
			l.Range, _ = s.Float(1)
			for i := 0; i < 3; i++ {
				l.Color[i], _ = s.Float(2 + i)
				l.Position[i], _ = s.Float(5 + i)
			}
			mc.Lights = append(mc.Lights, l)
		case "spotlight", "light_enh", "light_enh_2":
			mc.Lights = append(mc.Lights, Light{
				Kind:   strings.ToLower(s.Name),
				Params: s.Params(),
			})
		}
	}

	for _, g := range groups {
		mc.LODs = append(mc.LODs, *g)
	}
	sort.Slice(mc.LODs, func(i, j int) bool {
		return mc.LODs[i].Threshold < mc.LODs[j].Threshold
	})
	return mc
}

func readAllColor(s *Section) *AllColor {
	var f [14]float64
	for i := range f {
		f[i], _ = s.Float(i)
	}
	return &AllColor{
		Diffuse:       [4]float64{f[0], f[1], f[2], f[3]},
		Ambient:       [3]float64{f[4], f[5], f[6]},
		Specular:      [3]float64{f[7], f[8], f[9]},
		Emission:      [3]float64{f[10], f[11], f[12]},
		SpecularPower: f[13],
	}
}
