package raster

import (
	"image"
	"math"
)

// RasterizeTriangle draws one triangle with z-buffering, per-vertex
// Gouraud shading, bilinear texture sampling and ACES tone mapping.
// px/py/pz/pu/pv/shade are per-vertex arrays; tint is the material
// diffuse in linear 0..1 and multiplies the texel (or stands alone when
// tex is nil).
//
// This is the hot path; the pixel loop allocates nothing. Out-of-range
// indices drop the triangle instead of panicking, so hand-built models
// render safely.
func RasterizeTriangle(
	fb *FrameBuffer,
	px, py, pz, pu, pv, shade []float64,
	vi [3]int,
	tex *image.NRGBA,
	tintR, tintG, tintB float64,
	alpha uint8,
	lc *LightConfig,
) {
	nv := len(px)
	for _, i := range vi {
		if i < 0 || i >= nv {
			return
		}
	}

	x0, y0, z0 := px[vi[0]], py[vi[0]], pz[vi[0]]
	x1, y1, z1 := px[vi[1]], py[vi[1]], pz[vi[1]]
	x2, y2, z2 := px[vi[2]], py[vi[2]], pz[vi[2]]

	u0, v0 := pu[vi[0]], pv[vi[0]]
	u1, v1 := pu[vi[1]], pv[vi[1]]
	u2, v2 := pu[vi[2]], pv[vi[2]]

	s0, s1, s2 := shade[vi[0]], shade[vi[1]], shade[vi[2]]

	// Bounding box clipped to the frame
	w, h := fb.Width, fb.Height
	minX := int(math.Min(math.Min(x0, x1), x2))
	maxX := int(math.Max(math.Max(x0, x1), x2)) + 1
	minY := int(math.Min(math.Min(y0, y1), y2))
	maxY := int(math.Max(math.Max(y0, y1), y2)) + 1
	if minX < 0 {
		minX = 0
	}
	if maxX >= w {
		maxX = w - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= h {
		maxY = h - 1
	}
	if minX >= maxX || minY >= maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	exposure := lc.Exposure
	invGamma := lc.InvGamma
	hasTex := tex != nil

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) - y2
		rowOff := sy * w
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}

			lr, lg, lb := tintR, tintG, tintB
			ca := alpha
			if hasTex {
				u := w0*u0 + w1*u1 + w2*u2
				v := w0*v0 + w1*v1 + w2*v2
				cr, cg, cb, ta := SampleTexture(tex, u, v)
				if ta < 8 {
					continue
				}
				lr *= srgbToLinear[cr]
				lg *= srgbToLinear[cg]
				lb *= srgbToLinear[cb]
				ca = ta
			}
			fb.ZBuf[zIdx] = z

			s := (w0*s0 + w1*s1 + w2*s2) * exposure

			fr := math.Pow(ACESTonemap(lr*s), invGamma)
			fg := math.Pow(ACESTonemap(lg*s), invGamma)
			fbv := math.Pow(ACESTonemap(lb*s), invGamma)

			pxIdx := zIdx * 4
			fb.Color[pxIdx] = clamp255(fr * 255)
			fb.Color[pxIdx+1] = clamp255(fg * 255)
			fb.Color[pxIdx+2] = clamp255(fbv * 255)
			fb.Color[pxIdx+3] = ca
		}
	}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
