// Package o3d decodes and encodes the O3D binary mesh format: versioned
// header, vertex/triangle/material/bone sections, optional per-file
// transform, optional payload encryption.
package o3d

import "github.com/chewxy/math32"

const (
	MinVersion     = 1
	MaxVersion     = 7
	DefaultVersion = 7

	// PlainKey in the header key field marks an unencrypted payload.
	PlainKey uint32 = 0xFFFFFFFF
)

// section tags
const (
	tagVertices  = 0x17
	tagTriangles = 0x49
	tagMaterials = 0x26
	tagBones     = 0x54
	tagTransform = 0x79
)

// extended header option bits
const (
	optLongIndices = 1 << 0
	optAltSeed     = 1 << 1
)

// Header mirrors the file header. Version >= 3 files carry the extended
// header (options byte + key); older files have neither flags nor
// encryption.
type Header struct {
	Version     byte
	LongIndices bool
	AltSeed     bool
	Key         uint32
}

// LongHeader reports whether counts are 32-bit (materials stay 16-bit
// regardless).
func (h Header) LongHeader() bool { return h.Version >= 3 }

// Encrypted reports whether the payload is ciphered.
func (h Header) Encrypted() bool { return h.LongHeader() && h.Key != PlainKey }

// Vertex is position, normal and UV, stored as 8 consecutive floats.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
}

// Triangle is three vertex indices plus a material index. The material
// index is not checked against the embedded list; model configs may
// supply materials externally.
type Triangle struct {
	Index    [3]uint32
	Material uint16
}

// Material is an embedded material record: 11 floats and a texture name.
type Material struct {
	Diffuse       [4]float32
	Specular      [3]float32
	Emission      [3]float32
	SpecularPower float32
	Texture       string
}

// BoneWeight binds one vertex to a bone with a blend weight.
type BoneWeight struct {
	Vertex uint32
	Weight float32
}

// Bone is a named weight set. Parent is -1 for roots; the file stores no
// hierarchy, so decoded bones are always roots, but host-built models may
// carry one and it is validated on encode.
type Bone struct {
	Name    string
	Parent  int32
	Weights []BoneWeight
}

// Model is a fully decoded O3D file.
type Model struct {
	Header    Header
	Vertices  []Vertex
	Triangles []Triangle
	Materials []Material
	Bones     []Bone

	// Transform is the optional model matrix, row-major.
	Transform    [16]float32
	HasTransform bool
}

// Bounds returns the axis-aligned bounding box of the vertex positions.
// With no vertices the result is +Inf/-Inf.
func (m *Model) Bounds() (min, max [3]float32) {
	min = [3]float32{math32.Inf(1), math32.Inf(1), math32.Inf(1)}
	max = [3]float32{math32.Inf(-1), math32.Inf(-1), math32.Inf(-1)}
	for _, v := range m.Vertices {
		for i := 0; i < 3; i++ {
			min[i] = math32.Min(min[i], v.Position[i])
			max[i] = math32.Max(max[i], v.Position[i])
		}
	}
	return min, max
}

// IdentityTransform returns the identity model matrix.
func IdentityTransform() [16]float32 {
	return [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}
