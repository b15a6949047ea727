package o3d

import (
	"fmt"
	"os"

	"omsi-o3d-tools/internal/crypto"
	"omsi-o3d-tools/internal/cursor"
)

// DecodeFile reads and decodes one O3D file.
func DecodeFile(path string, ciph crypto.Config) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("o3d: read %s: %w", path, err)
	}
	m, err := Decode(raw, ciph)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Decode parses a complete in-memory O3D buffer. Encrypted payloads are
// deciphered with the seed the header describes; ciph supplies the
// default seed for files that do not carry their own.
func Decode(data []byte, ciph crypto.Config) (*Model, error) {
	r := cursor.NewReader(data)

	sig, err := r.Bytes(2)
	if err != nil {
		return nil, fmt.Errorf("o3d: header: %w", err)
	}
	if sig[0] != 0x84 || sig[1] != 0x19 {
		return nil, fmt.Errorf("o3d: bad signature % x: %w", sig, ErrMalformedGeometry)
	}

	version, err := r.Byte()
	if err != nil {
		return nil, fmt.Errorf("o3d: header: %w", err)
	}
	if version < MinVersion || version > MaxVersion {
		return nil, fmt.Errorf("o3d: version %d: %w", version, ErrUnsupportedVersion)
	}

	hdr := Header{Version: version, Key: PlainKey}
	if hdr.LongHeader() {
		opts, err := r.Byte()
		if err != nil {
			return nil, fmt.Errorf("o3d: extended header: %w", err)
		}
		key, err := r.Uint32()
		if err != nil {
			return nil, fmt.Errorf("o3d: extended header: %w", err)
		}
		hdr.LongIndices = opts&optLongIndices != 0
		hdr.AltSeed = opts&optAltSeed != 0
		hdr.Key = key
	}

	payload := r.Rest()
	if hdr.Encrypted() {
		payload = crypto.Decrypt(payload, ciph.Resolve(hdr.AltSeed, hdr.Key))
		if len(payload) > 0 && !knownTag(payload[0]) {
			return nil, fmt.Errorf("o3d: key %#08x: %w", hdr.Key, ErrDecryptionIntegrity)
		}
	}

	m := &Model{Header: hdr}
	if err := decodePayload(m, payload); err != nil {
		return nil, err
	}
	if err := m.validateIndices(); err != nil {
		return nil, err
	}
	return m, nil
}

func knownTag(b byte) bool {
	switch b {
	case tagVertices, tagTriangles, tagMaterials, tagBones, tagTransform:
		return true
	}
	return false
}

func decodePayload(m *Model, payload []byte) error {
	r := cursor.NewReader(payload)
	// A single trailing byte is ignored, as the reference importer does.
	for r.Remaining() > 1 {
		tag, err := r.Byte()
		if err != nil {
			return fmt.Errorf("o3d: section tag: %w", err)
		}
		switch tag {
		case tagVertices:
			err = m.readVertices(r)
		case tagTriangles:
			err = m.readTriangles(r)
		case tagMaterials:
			err = m.readMaterials(r)
		case tagBones:
			err = m.readBones(r)
		case tagTransform:
			err = m.readTransform(r)
		default:
			return fmt.Errorf("o3d: unknown section tag %#02x at offset %d: %w",
				tag, r.Offset()-1, ErrMalformedGeometry)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// sectionCount reads a section element count, 32-bit under the long
// header, 16-bit otherwise.
func sectionCount(r *cursor.Reader, long bool) (int, error) {
	if long {
		n, err := r.Uint32()
		return int(n), err
	}
	n, err := r.Uint16()
	return int(n), err
}

func (m *Model) readVertices(r *cursor.Reader) error {
	n, err := sectionCount(r, m.Header.LongHeader())
	if err != nil {
		return fmt.Errorf("o3d: vertex count: %w", err)
	}
	if need := n * 32; need > r.Remaining() {
		return fmt.Errorf("o3d: vertex list wants %d bytes, %d left: %w",
			need, r.Remaining(), cursor.ErrOutOfBounds)
	}
	m.Vertices = make([]Vertex, n)
	for i := range m.Vertices {
		v := &m.Vertices[i]
		for j := 0; j < 3; j++ {
			v.Position[j], _ = r.Float32()
		}
		for j := 0; j < 3; j++ {
			v.Normal[j], _ = r.Float32()
		}
		v.UV[0], _ = r.Float32()
		v.UV[1], _ = r.Float32()
	}
	return nil
}

func (m *Model) readTriangles(r *cursor.Reader) error {
	n, err := sectionCount(r, m.Header.LongHeader())
	if err != nil {
		return fmt.Errorf("o3d: triangle count: %w", err)
	}
	idxw := 2
	if m.Header.LongIndices {
		idxw = 4
	}
	if need := n * (3*idxw + 2); need > r.Remaining() {
		return fmt.Errorf("o3d: triangle list wants %d bytes, %d left: %w",
			need, r.Remaining(), cursor.ErrOutOfBounds)
	}
	m.Triangles = make([]Triangle, n)
	for i := range m.Triangles {
		t := &m.Triangles[i]
		for j := 0; j < 3; j++ {
			if m.Header.LongIndices {
				v, _ := r.Uint32()
				t.Index[j] = v
			} else {
				v, _ := r.Uint16()
				t.Index[j] = uint32(v)
			}
		}
		t.Material, _ = r.Uint16()
	}
	return nil
}

func (m *Model) readMaterials(r *cursor.Reader) error {
	// Materials keep the 16-bit count even under the long header.
	n, err := r.Uint16()
	if err != nil {
		return fmt.Errorf("o3d: material count: %w", err)
	}
	if need := int(n) * 45; need > r.Remaining() {
		return fmt.Errorf("o3d: material list wants at least %d bytes, %d left: %w",
			need, r.Remaining(), cursor.ErrOutOfBounds)
	}
	m.Materials = make([]Material, n)
	for i := range m.Materials {
		mat := &m.Materials[i]
		for j := 0; j < 4; j++ {
			mat.Diffuse[j], _ = r.Float32()
		}
		for j := 0; j < 3; j++ {
			mat.Specular[j], _ = r.Float32()
		}
		for j := 0; j < 3; j++ {
			mat.Emission[j], _ = r.Float32()
		}
		mat.SpecularPower, _ = r.Float32()
		name, err := r.PascalString()
		if err != nil {
			return fmt.Errorf("o3d: material %d name: %w", i, err)
		}
		mat.Texture = name
	}
	return nil
}

func (m *Model) readBones(r *cursor.Reader) error {
	n, err := sectionCount(r, m.Header.LongHeader())
	if err != nil {
		return fmt.Errorf("o3d: bone count: %w", err)
	}
	if n > r.Remaining() {
		return fmt.Errorf("o3d: bone list wants at least %d bytes, %d left: %w",
			n, r.Remaining(), cursor.ErrOutOfBounds)
	}
	m.Bones = make([]Bone, 0, n)
	for i := 0; i < n; i++ {
		name, err := r.PascalString()
		if err != nil {
			return fmt.Errorf("o3d: bone %d name: %w", i, err)
		}
		wn, err := r.Uint16()
		if err != nil {
			return fmt.Errorf("o3d: bone %q weight count: %w", name, err)
		}
		idxw := 2
		if m.Header.LongIndices {
			idxw = 4
		}
		if need := int(wn) * (idxw + 4); need > r.Remaining() {
			return fmt.Errorf("o3d: bone %q wants %d weight bytes, %d left: %w",
				name, need, r.Remaining(), cursor.ErrOutOfBounds)
		}
		b := Bone{Name: name, Parent: -1, Weights: make([]BoneWeight, wn)}
		for j := range b.Weights {
			if m.Header.LongIndices {
				b.Weights[j].Vertex, _ = r.Uint32()
			} else {
				v, _ := r.Uint16()
				b.Weights[j].Vertex = uint32(v)
			}
			b.Weights[j].Weight, _ = r.Float32()
		}
		m.Bones = append(m.Bones, b)
	}
	return nil
}

func (m *Model) readTransform(r *cursor.Reader) error {
	raw, err := r.Bytes(64)
	if err != nil {
		return fmt.Errorf("o3d: transform: %w", err)
	}
	tr := cursor.NewReader(raw)
	// Stored column-major; kept row-major in memory.
	for k := 0; k < 16; k++ {
		v, _ := tr.Float32()
		m.Transform[(k%4)*4+k/4] = v
	}
	m.HasTransform = true
	return nil
}

func (m *Model) validateIndices() error {
	nv := uint32(len(m.Vertices))
	for i, t := range m.Triangles {
		for _, ix := range t.Index {
			if ix >= nv {
				return fmt.Errorf("o3d: triangle %d references vertex %d of %d: %w",
					i, ix, nv, ErrMalformedGeometry)
			}
		}
	}
	for _, b := range m.Bones {
		for _, w := range b.Weights {
			if w.Vertex >= nv {
				return fmt.Errorf("o3d: bone %q references vertex %d of %d: %w",
					b.Name, w.Vertex, nv, ErrMalformedGeometry)
			}
		}
	}
	return nil
}
