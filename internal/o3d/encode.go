package o3d

import (
	"fmt"
	"math"

	"omsi-o3d-tools/internal/crypto"
	"omsi-o3d-tools/internal/cursor"
)

// EncodeOptions selects the target header layout. The zero value encodes
// an unencrypted DefaultVersion file with automatic index width.
type EncodeOptions struct {
	// Version is the target format version; 0 means DefaultVersion.
	Version byte

	// LongIndices forces 32-bit triangle indices. They are selected
	// automatically whenever the vertex count exceeds 16-bit range.
	LongIndices bool

	// Encrypt ciphers the payload. Requires a version with the extended
	// header. Key is written to the header; AltSeed additionally makes
	// that key the cipher seed, otherwise the configured default seed is
	// used.
	Encrypt bool
	AltSeed bool
	Key     uint32
}

// OptionsFor reproduces the header configuration of a decoded model, so a
// re-encode emits the same layout the file came with.
func OptionsFor(m *Model) EncodeOptions {
	return EncodeOptions{
		Version:     m.Header.Version,
		LongIndices: m.Header.LongIndices,
		Encrypt:     m.Header.Encrypted(),
		AltSeed:     m.Header.AltSeed,
		Key:         m.Header.Key,
	}
}

// Encode serializes a model. Counts are computed from the slices; the
// long header follows the version, upgrading the version when a count
// cannot fit the short layout.
func Encode(m *Model, opts EncodeOptions, ciph crypto.Config) ([]byte, error) {
	version := opts.Version
	if version == 0 {
		version = DefaultVersion
	}
	if version < MinVersion || version > MaxVersion {
		return nil, fmt.Errorf("o3d: cannot encode version %d: %w", version, ErrUnsupportedVersion)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	if version < 3 && (len(m.Vertices) > math.MaxUint16 ||
		len(m.Triangles) > math.MaxUint16 || len(m.Bones) > math.MaxUint16) {
		version = 3
	}
	if len(m.Materials) > math.MaxUint16 {
		return nil, fmt.Errorf("o3d: %d materials exceed the 16-bit count: %w",
			len(m.Materials), ErrMalformedGeometry)
	}
	if opts.Encrypt && version < 3 {
		return nil, fmt.Errorf("o3d: version %d cannot carry encryption: %w",
			version, ErrUnsupportedVersion)
	}
	if opts.Encrypt && opts.Key == PlainKey {
		return nil, fmt.Errorf("o3d: key %#08x is reserved for plaintext: %w",
			PlainKey, ErrMalformedGeometry)
	}

	hdr := Header{Version: version, Key: PlainKey}
	if hdr.LongHeader() {
		hdr.LongIndices = opts.LongIndices || len(m.Vertices) > math.MaxUint16
		hdr.AltSeed = opts.AltSeed
		if opts.Encrypt {
			hdr.Key = opts.Key
		}
	}

	payload, err := encodePayload(m, hdr)
	if err != nil {
		return nil, err
	}
	if hdr.Encrypted() {
		payload = crypto.Encrypt(payload, ciph.Resolve(hdr.AltSeed, hdr.Key))
	}

	w := cursor.NewWriter()
	w.Byte(0x84)
	w.Byte(0x19)
	w.Byte(hdr.Version)
	if hdr.LongHeader() {
		var ob byte
		if hdr.LongIndices {
			ob |= optLongIndices
		}
		if hdr.AltSeed {
			ob |= optAltSeed
		}
		w.Byte(ob)
		w.Uint32(hdr.Key)
	}
	w.Raw(payload)
	return w.Bytes(), nil
}

func writeCount(w *cursor.Writer, long bool, n int) {
	if long {
		w.Uint32(uint32(n))
	} else {
		w.Uint16(uint16(n))
	}
}

func encodePayload(m *Model, hdr Header) ([]byte, error) {
	w := cursor.NewWriter()
	long := hdr.LongHeader()

	w.Byte(tagVertices)
	writeCount(w, long, len(m.Vertices))
	for _, v := range m.Vertices {
		for j := 0; j < 3; j++ {
			w.Float32(v.Position[j])
		}
		for j := 0; j < 3; j++ {
			w.Float32(v.Normal[j])
		}
		w.Float32(v.UV[0])
		w.Float32(v.UV[1])
	}

	w.Byte(tagTriangles)
	writeCount(w, long, len(m.Triangles))
	for _, t := range m.Triangles {
		for j := 0; j < 3; j++ {
			if hdr.LongIndices {
				w.Uint32(t.Index[j])
			} else {
				w.Uint16(uint16(t.Index[j]))
			}
		}
		w.Uint16(t.Material)
	}

	if len(m.Materials) > 0 {
		w.Byte(tagMaterials)
		w.Uint16(uint16(len(m.Materials)))
		for i, mat := range m.Materials {
			for j := 0; j < 4; j++ {
				w.Float32(mat.Diffuse[j])
			}
			for j := 0; j < 3; j++ {
				w.Float32(mat.Specular[j])
			}
			for j := 0; j < 3; j++ {
				w.Float32(mat.Emission[j])
			}
			w.Float32(mat.SpecularPower)
			if err := w.PascalString(mat.Texture); err != nil {
				return nil, fmt.Errorf("o3d: material %d: %w", i, err)
			}
		}
	}

	if len(m.Bones) > 0 {
		w.Byte(tagBones)
		writeCount(w, long, len(m.Bones))
		for _, b := range m.Bones {
			if err := w.PascalString(b.Name); err != nil {
				return nil, fmt.Errorf("o3d: bone %q: %w", b.Name, err)
			}
			if len(b.Weights) > math.MaxUint16 {
				return nil, fmt.Errorf("o3d: bone %q has %d weights, max %d: %w",
					b.Name, len(b.Weights), math.MaxUint16, ErrMalformedGeometry)
			}
			w.Uint16(uint16(len(b.Weights)))
			for _, bw := range b.Weights {
				if hdr.LongIndices {
					w.Uint32(bw.Vertex)
				} else {
					w.Uint16(uint16(bw.Vertex))
				}
				w.Float32(bw.Weight)
			}
		}
	}

	if m.HasTransform {
		w.Byte(tagTransform)
		// Row-major in memory, column-major on the wire.
		for k := 0; k < 16; k++ {
			w.Float32(m.Transform[(k%4)*4+k/4])
		}
	}
	return w.Bytes(), nil
}

// Validate checks the structural invariants an encoder relies on:
// triangle and weight indices inside the vertex range, bone parents -1 or
// a valid bone index with no cycles.
func (m *Model) Validate() error {
	if err := m.validateIndices(); err != nil {
		return err
	}
	nb := len(m.Bones)
	for _, b := range m.Bones {
		if b.Parent < -1 || int(b.Parent) >= nb {
			return fmt.Errorf("o3d: bone %q parent %d out of range: %w",
				b.Name, b.Parent, ErrMalformedGeometry)
		}
	}
	for i := range m.Bones {
		cur, steps := i, 0
		for m.Bones[cur].Parent != -1 {
			cur = int(m.Bones[cur].Parent)
			steps++
			if steps > nb {
				return fmt.Errorf("o3d: bone %q parent chain loops: %w",
					m.Bones[i].Name, ErrMalformedGeometry)
			}
		}
	}
	return nil
}
