package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omsi-o3d-tools/internal/o3d"
)

func quadModel() *o3d.Model {
	return &o3d.Model{
		Vertices: []o3d.Vertex{
			{Position: [3]float32{-1, -1, 0}, Normal: [3]float32{0, 0, 1}, UV: [2]float32{0, 0}},
			{Position: [3]float32{1, -1, 0}, Normal: [3]float32{0, 0, 1}, UV: [2]float32{1, 0}},
			{Position: [3]float32{1, 1, 0}, Normal: [3]float32{0, 0, 1}, UV: [2]float32{1, 1}},
			{Position: [3]float32{-1, 1, 0}, Normal: [3]float32{0, 0, 1}, UV: [2]float32{0, 1}},
		},
		Triangles: []o3d.Triangle{
			{Index: [3]uint32{0, 1, 2}},
			{Index: [3]uint32{0, 2, 3}},
		},
		Materials: []o3d.Material{
			{Diffuse: [4]float32{0.9, 0.2, 0.2, 1}},
		},
	}
}

func countOpaque(pix []uint8) int {
	n := 0
	for i := 3; i < len(pix); i += 4 {
		if pix[i] > 0 {
			n++
		}
	}
	return n
}

func TestRenderModelCoversPixels(t *testing.T) {
	img := RenderModel(quadModel(), nil, Options{Size: 64, Supersample: 1})
	require.Equal(t, 64, img.Bounds().Dx())
	covered := countOpaque(img.Pix)
	assert.Greater(t, covered, 64, "a centered quad should cover a good chunk of the frame")
}

func TestRenderModelEmpty(t *testing.T) {
	img := RenderModel(&o3d.Model{}, nil, Options{Size: 32, Supersample: 1})
	assert.Zero(t, countOpaque(img.Pix))
}

func TestRenderModelBadIndicesDoNotPanic(t *testing.T) {
	m := quadModel()
	m.Triangles = append(m.Triangles, o3d.Triangle{Index: [3]uint32{90, 91, 92}})
	assert.NotPanics(t, func() {
		RenderModel(m, nil, Options{Size: 32, Supersample: 1})
	})
}

func TestMergeModelsOffsetsIndices(t *testing.T) {
	a := quadModel()
	b := quadModel()
	merged := MergeModels([]*o3d.Model{a, b})
	require.Len(t, merged.Vertices, 8)
	require.Len(t, merged.Triangles, 4)
	assert.Equal(t, uint32(4), merged.Triangles[2].Index[0])
	assert.Equal(t, uint16(1), merged.Triangles[2].Material)
}
