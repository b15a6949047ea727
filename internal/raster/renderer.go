// Package raster renders decoded models into thumbnail images with a
// z-buffered software pipeline: orbit camera from the model bounds,
// perspective projection, Gouraud shading from the stored vertex
// normals, per-material diffuse and texture.
package raster

import (
	"image"
	"math"
	"strings"

	"omsi-o3d-tools/internal/mathutil"
	"omsi-o3d-tools/internal/o3d"
	"omsi-o3d-tools/internal/texture"
)

// Options controls a render pass. Zero values pick the defaults.
type Options struct {
	Size        int // output edge length, default 256
	Supersample int // render-scale multiplier, default 2

	// Orbit angles in degrees. Zero values take the stock three-quarter
	// view.
	Yaw   float64
	Pitch float64
}

const (
	defaultSize  = 256
	defaultSS    = 2
	defaultYaw   = 35
	defaultPitch = -22
)

// RenderModel draws one model into an NRGBA frame at Size*Supersample
// resolution; callers downsample afterwards. Models with no vertices or
// no triangles produce an empty transparent frame.
func RenderModel(m *o3d.Model, resolver texture.Resolver, opts Options) *image.NRGBA {
	size := opts.Size
	if size <= 0 {
		size = defaultSize
	}
	ss := opts.Supersample
	if ss <= 0 {
		ss = defaultSS
	}
	renderSize := size * ss

	img := image.NewNRGBA(image.Rect(0, 0, renderSize, renderSize))
	if len(m.Vertices) == 0 || len(m.Triangles) == 0 {
		return img
	}

	yaw := opts.Yaw
	pitch := opts.Pitch
	if yaw == 0 && pitch == 0 {
		yaw, pitch = defaultYaw, defaultPitch
	}
	view := mathutil.Mat3Mul(
		mathutil.RotX(mathutil.Deg2Rad(pitch)),
		mathutil.RotY(mathutil.Deg2Rad(yaw)),
	)

	world := mathutil.Mat4Identity()
	if m.HasTransform {
		world = mathutil.Mat4FromF32(m.Transform)
	}
	applyWorld := !world.IsIdentity()

	// Transform every vertex into view space and track the bounds.
	n := len(m.Vertices)
	vx := make([]float64, n)
	vy := make([]float64, n)
	vz := make([]float64, n)
	pu := make([]float64, n)
	pv := make([]float64, n)
	shade := make([]float64, n)

	lc := DefaultLightConfig()
	bbMin := mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	bbMax := mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i, v := range m.Vertices {
		p := mathutil.Vec3{float64(v.Position[0]), float64(v.Position[1]), float64(v.Position[2])}
		if applyWorld {
			p = world.MulPoint(p)
		}
		p = view.MulVec3(p)
		vx[i], vy[i], vz[i] = p[0], p[1], p[2]
		for k := 0; k < 3; k++ {
			bbMin[k] = math.Min(bbMin[k], p[k])
			bbMax[k] = math.Max(bbMax[k], p[k])
		}

		nrm := view.MulVec3(mathutil.Vec3{
			float64(v.Normal[0]), float64(v.Normal[1]), float64(v.Normal[2]),
		}).Normalize()
		shade[i] = lc.ComputeShade(nrm)

		pu[i] = float64(v.UV[0])
		pv[i] = float64(v.UV[1])
	}

	center := bbMin.Add(bbMax).Scale(0.5)
	span := math.Max(bbMax[0]-bbMin[0], bbMax[1]-bbMin[1])
	span = math.Max(span, 0.001)
	depth := math.Max(bbMax[2]-bbMin[2], 0.001)

	// Perspective projection: camera on the +Z side of the view-space
	// bounds, far enough that the whole span fits with a margin.
	margin := float64(16 * ss)
	dist := span*2.5 + depth
	focal := (float64(renderSize) - 2*margin) * dist / span
	cx := float64(renderSize) / 2
	cy := float64(renderSize) / 2

	px := make([]float64, n)
	py := make([]float64, n)
	pz := make([]float64, n)
	for i := 0; i < n; i++ {
		x := vx[i] - center[0]
		y := vy[i] - center[1]
		z := vz[i] - center[2]
		w := dist - z
		if w < 1e-6 {
			w = 1e-6
		}
		px[i] = cx + x*focal/w
		py[i] = cy - y*focal/w
		pz[i] = -w // larger is closer
	}

	fb := NewFrameBuffer(renderSize, renderSize)

	// One texture and tint per material; triangles without a material
	// entry fall back to neutral grey.
	type matState struct {
		tex     *image.NRGBA
		r, g, b float64
		a       uint8
	}
	states := make([]matState, len(m.Materials))
	for i, mat := range m.Materials {
		st := matState{
			r: float64(mat.Diffuse[0]),
			g: float64(mat.Diffuse[1]),
			b: float64(mat.Diffuse[2]),
			a: clamp255(float64(mat.Diffuse[3]) * 255),
		}
		if resolver != nil && mat.Texture != "" {
			st.tex = resolver.Resolve(strings.ToLower(mat.Texture))
		}
		states[i] = st
	}
	neutral := matState{r: 0.62, g: 0.62, b: 0.66, a: 255}

	for _, tri := range m.Triangles {
		st := neutral
		if int(tri.Material) < len(states) {
			st = states[tri.Material]
		}
		vi := [3]int{int(tri.Index[0]), int(tri.Index[1]), int(tri.Index[2])}
		RasterizeTriangle(fb, px, py, pz, pu, pv, shade, vi, st.tex, st.r, st.g, st.b, st.a, &lc)
	}

	copy(img.Pix, fb.Color)
	return img
}

// MergeModels concatenates several decoded models into one render
// candidate, offsetting indices. Materials keep their per-model blocks.
func MergeModels(models []*o3d.Model) *o3d.Model {
	out := &o3d.Model{}
	for _, m := range models {
		vbase := uint32(len(out.Vertices))
		mbase := uint16(len(out.Materials))

		if m.HasTransform {
			world := mathutil.Mat4FromF32(m.Transform)
			for _, v := range m.Vertices {
				p := world.MulPoint(mathutil.Vec3{
					float64(v.Position[0]), float64(v.Position[1]), float64(v.Position[2]),
				})
				v.Position = [3]float32{float32(p[0]), float32(p[1]), float32(p[2])}
				out.Vertices = append(out.Vertices, v)
			}
		} else {
			out.Vertices = append(out.Vertices, m.Vertices...)
		}

		for _, t := range m.Triangles {
			for k := 0; k < 3; k++ {
				t.Index[k] += vbase
			}
			t.Material += mbase
			out.Triangles = append(out.Triangles, t)
		}
		out.Materials = append(out.Materials, m.Materials...)
	}
	return out
}
