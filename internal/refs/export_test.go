package refs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omsi-o3d-tools/internal/cfg"
)

func plannedNames(p *Plan) []string {
	out := make([]string, len(p.Files))
	for i, f := range p.Files {
		out[i] = filepath.Base(f.Path)
	}
	return out
}

func TestPlanExportSingleObject(t *testing.T) {
	p, err := PlanExport(filepath.Join("out", "Body.o3d"), []Object{{Name: "Body"}})
	require.NoError(t, err)
	assert.Empty(t, p.CfgPath)
	assert.Equal(t, []string{"Body.o3d"}, plannedNames(p))
}

func TestPlanExportMultipleObjectsToO3D(t *testing.T) {
	objs := []Object{{Name: "Body"}, {Name: "Wheel_H"}}
	p, err := PlanExport(filepath.Join("out", "Car.o3d"), objs)
	require.NoError(t, err)
	assert.Empty(t, p.CfgPath)
	assert.Equal(t, []string{"Car-Body.o3d", "Car-Wheel_H.o3d"}, plannedNames(p))
}

func TestPlanExportToCfg(t *testing.T) {
	objs := []Object{{Name: "Body"}, {Name: "Wheel_H"}}
	p, err := PlanExport(filepath.Join("out", "Car.cfg"), objs)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "Car.cfg"), p.CfgPath)
	assert.Equal(t, []string{"Body.o3d", "Wheel_H.o3d"}, plannedNames(p))
}

func TestPlanExportSkipsMarkedObjects(t *testing.T) {
	objs := []Object{{Name: "Body"}, {Name: "Helper", Skip: true}}
	p, err := PlanExport("Car.o3d", objs)
	require.NoError(t, err)
	assert.Equal(t, []string{"Car.o3d"}, plannedNames(p))

	_, err = PlanExport("Car.o3d", []Object{{Name: "Helper", Skip: true}})
	assert.Error(t, err)
}

func TestPlanExportUnknownExtension(t *testing.T) {
	_, err := PlanExport("Car.obj", []Object{{Name: "Body"}})
	assert.Error(t, err)
}

func TestPlanDocumentGroupsByLOD(t *testing.T) {
	objs := []Object{
		{Name: "Body_Far", Label: "LOD_50"},
		{Name: "Body", Label: "LOD_0"},
		{Name: "Antenna", Label: "Misc"},
	}
	p, err := PlanExport(filepath.Join("out", "Car.cfg"), objs)
	require.NoError(t, err)

	doc := p.Document()
	var trace []string
	for _, s := range doc.Sections {
		trace = append(trace, s.Name+":"+s.Param(0))
	}
	// Ungrouped first, then LOD groups by ascending threshold.
	assert.Equal(t, []string{
		"mesh:Antenna.o3d",
		"LOD:0",
		"mesh:Body.o3d",
		"LOD:50",
		"mesh:Body_Far.o3d",
	}, trace)
}

func TestStripSkipped(t *testing.T) {
	text := "[mesh]\nbody.o3d\n[matl]\nbody.bmp\n0\n[mesh]\nhelper.o3d\nskip_export\n[matl]\nhelper.bmp\n0\n[interiorlight]\nv\n"
	doc, _ := cfg.ParseString(text)
	StripSkipped(doc)

	var names []string
	for _, s := range doc.Sections {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"mesh", "matl", "interiorlight"}, names)
	assert.Equal(t, "body.o3d", doc.Sections[0].Param(0))
}

func TestRewriteTexturePaths(t *testing.T) {
	root := t.TempDir()
	tex := filepath.Join(root, "texture", "body.bmp")
	writeFile(t, tex)

	doc, _ := cfg.ParseString("[mesh]\nbody.o3d\n[matl]\nbody.bmp\n0\n")
	set := Collect(doc, filepath.Join(root, "thing.sco"))
	set.Locate()
	require.Zero(t, set.Textures[0].Missing)

	outDir := filepath.Join(root, "export")
	RewriteTexturePaths(doc, set, outDir)
	assert.Equal(t, "..\\texture\\body.bmp", doc.Section("matl").Param(0))
}
