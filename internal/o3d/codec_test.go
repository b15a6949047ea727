package o3d

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omsi-o3d-tools/internal/crypto"
	"omsi-o3d-tools/internal/cursor"
)

func sampleModel() *Model {
	return &Model{
		Vertices: []Vertex{
			{Position: [3]float32{0, 0, 0}, Normal: [3]float32{0, 0, 1}, UV: [2]float32{0, 0}},
			{Position: [3]float32{1, 0, 0}, Normal: [3]float32{0, 0, 1}, UV: [2]float32{1, 0}},
			{Position: [3]float32{0, 1, 0.25}, Normal: [3]float32{0, 1, 0}, UV: [2]float32{0, 1}},
			{Position: [3]float32{-2.5, 1.5, 3}, Normal: [3]float32{1, 0, 0}, UV: [2]float32{0.5, 0.5}},
		},
		Triangles: []Triangle{
			{Index: [3]uint32{0, 1, 2}, Material: 0},
			{Index: [3]uint32{2, 1, 3}, Material: 1},
		},
		Materials: []Material{
			{Diffuse: [4]float32{1, 1, 1, 1}, Specular: [3]float32{0.5, 0.5, 0.5}, SpecularPower: 20, Texture: "body.bmp"},
			{Diffuse: [4]float32{0.8, 0, 0, 1}, Emission: [3]float32{0.1, 0, 0}, SpecularPower: 4, Texture: "décor_tête.tga"},
		},
		Bones: []Bone{
			{Name: "Wheel_VL", Parent: -1, Weights: []BoneWeight{{Vertex: 0, Weight: 1}, {Vertex: 2, Weight: 0.5}}},
			{Name: "Tür_vorn", Parent: -1, Weights: []BoneWeight{{Vertex: 3, Weight: 0.25}}},
		},
		Transform: [16]float32{
			1, 0, 0, 4,
			0, 1, 0, 5,
			0, 0, 1, 6,
			0, 0, 0, 1,
		},
		HasTransform: true,
	}
}

func assertSameGeometry(t *testing.T, want, got *Model) {
	t.Helper()
	assert.Equal(t, want.Vertices, got.Vertices)
	assert.Equal(t, want.Triangles, got.Triangles)
	assert.Equal(t, want.Materials, got.Materials)
	assert.Equal(t, want.Bones, got.Bones)
	assert.Equal(t, want.HasTransform, got.HasTransform)
	if want.HasTransform {
		assert.Equal(t, want.Transform, got.Transform)
	}
}

func TestRoundTripDefaults(t *testing.T) {
	m := sampleModel()
	ciph := crypto.Defaults()

	raw, err := Encode(m, EncodeOptions{}, ciph)
	require.NoError(t, err)

	got, err := Decode(raw, ciph)
	require.NoError(t, err)

	assert.Equal(t, byte(DefaultVersion), got.Header.Version)
	assert.False(t, got.Header.Encrypted())
	assertSameGeometry(t, m, got)
	for i, v := range got.Vertices {
		assert.InDelta(t, float64(m.Vertices[i].Normal[2]), float64(v.Normal[2]), 1e-5)
		assert.InDelta(t, float64(m.Vertices[i].UV[0]), float64(v.UV[0]), 1e-5)
	}
}

func TestReencodeByteIdentical(t *testing.T) {
	ciph := crypto.Defaults()
	for name, opts := range map[string]EncodeOptions{
		"defaults":    {},
		"short":       {Version: 2},
		"v3":          {Version: 3},
		"longIndices": {LongIndices: true},
		"encrypted":   {Encrypt: true, AltSeed: true, Key: 0x00C0FFEE},
		"defaultSeed": {Encrypt: true, Key: 0x1234},
	} {
		t.Run(name, func(t *testing.T) {
			raw, err := Encode(sampleModel(), opts, ciph)
			require.NoError(t, err)

			dec, err := Decode(raw, ciph)
			require.NoError(t, err)

			again, err := Encode(dec, OptionsFor(dec), ciph)
			require.NoError(t, err)
			assert.Equal(t, raw, again)
		})
	}
}

func TestShortHeaderLayout(t *testing.T) {
	ciph := crypto.Defaults()
	raw, err := Encode(sampleModel(), EncodeOptions{Version: 2}, ciph)
	require.NoError(t, err)

	// magic, version, then immediately the first section tag: no options
	// byte, no key field.
	assert.Equal(t, byte(0x84), raw[0])
	assert.Equal(t, byte(0x19), raw[1])
	assert.Equal(t, byte(2), raw[2])
	assert.Equal(t, byte(tagVertices), raw[3])

	got, err := Decode(raw, ciph)
	require.NoError(t, err)
	assert.False(t, got.Header.LongHeader())
	assert.False(t, got.Header.LongIndices)
	assertSameGeometry(t, sampleModel(), got)
}

func TestVersion3UsesLongHeader(t *testing.T) {
	ciph := crypto.Defaults()
	raw, err := Encode(sampleModel(), EncodeOptions{Version: 3}, ciph)
	require.NoError(t, err)

	assert.Equal(t, byte(3), raw[2])
	// options byte + key, then the vertex tag and a 32-bit count.
	assert.Equal(t, byte(tagVertices), raw[8])
	assert.Equal(t, byte(4), raw[9])
	assert.Equal(t, []byte{0, 0, 0}, raw[10:13])

	got, err := Decode(raw, ciph)
	require.NoError(t, err)
	assert.True(t, got.Header.LongHeader())
	assertSameGeometry(t, sampleModel(), got)
}

func TestTriangleIndexWidths(t *testing.T) {
	ciph := crypto.Defaults()
	m := sampleModel()

	short, err := Encode(m, EncodeOptions{}, ciph)
	require.NoError(t, err)
	long, err := Encode(m, EncodeOptions{LongIndices: true}, ciph)
	require.NoError(t, err)

	// Two extra bytes per index, six per triangle.
	assert.Equal(t, len(short)+6*len(m.Triangles)+2*3, len(long))

	gotShort, err := Decode(short, ciph)
	require.NoError(t, err)
	assert.False(t, gotShort.Header.LongIndices)

	gotLong, err := Decode(long, ciph)
	require.NoError(t, err)
	assert.True(t, gotLong.Header.LongIndices)
	assert.Equal(t, gotShort.Triangles, gotLong.Triangles)
}

func TestAutoLongIndicesAt70kVertices(t *testing.T) {
	ciph := crypto.Defaults()
	m := &Model{Vertices: make([]Vertex, 70000)}
	for i := range m.Vertices {
		m.Vertices[i].Position = [3]float32{float32(i), 0, 0}
	}
	m.Triangles = []Triangle{{Index: [3]uint32{0, 66000, 69999}}}

	raw, err := Encode(m, EncodeOptions{}, ciph)
	require.NoError(t, err)

	got, err := Decode(raw, ciph)
	require.NoError(t, err)
	assert.True(t, got.Header.LongIndices)
	assert.Equal(t, uint32(66000), got.Triangles[0].Index[1])
	assert.Len(t, got.Vertices, 70000)
}

func TestEncryptedRoundTrip(t *testing.T) {
	ciph := crypto.Defaults()
	m := sampleModel()

	t.Run("alt seed from header", func(t *testing.T) {
		raw, err := Encode(m, EncodeOptions{Encrypt: true, AltSeed: true, Key: 0x00C0FFEE}, ciph)
		require.NoError(t, err)

		got, err := Decode(raw, ciph)
		require.NoError(t, err)
		assert.True(t, got.Header.Encrypted())
		assert.True(t, got.Header.AltSeed)
		assertSameGeometry(t, m, got)
	})

	t.Run("default seed", func(t *testing.T) {
		raw, err := Encode(m, EncodeOptions{Encrypt: true, Key: 0x1234}, ciph)
		require.NoError(t, err)

		got, err := Decode(raw, ciph)
		require.NoError(t, err)
		assert.True(t, got.Header.Encrypted())
		assert.False(t, got.Header.AltSeed)
		assertSameGeometry(t, m, got)
	})
}

func TestDecryptionIntegrity(t *testing.T) {
	ciph := crypto.Defaults()

	t.Run("tampered alt key", func(t *testing.T) {
		raw, err := Encode(sampleModel(), EncodeOptions{Encrypt: true, AltSeed: true, Key: 0x00C0FFEE}, ciph)
		require.NoError(t, err)

		raw[7] ^= 0xFF // high byte of the little-endian key field
		_, err = Decode(raw, ciph)
		assert.True(t, errors.Is(err, ErrDecryptionIntegrity), "got %v", err)
	})

	t.Run("mismatched default seed", func(t *testing.T) {
		raw, err := Encode(sampleModel(), EncodeOptions{Encrypt: true, Key: 0x1234}, ciph)
		require.NoError(t, err)

		_, err = Decode(raw, crypto.Config{DefaultSeed: 0xDEADBEEF})
		assert.True(t, errors.Is(err, ErrDecryptionIntegrity), "got %v", err)
	})
}

func TestUnsupportedVersion(t *testing.T) {
	ciph := crypto.Defaults()

	for _, v := range []byte{0, 8, 200} {
		_, err := Decode([]byte{0x84, 0x19, v, 0x00}, ciph)
		assert.True(t, errors.Is(err, ErrUnsupportedVersion), "version %d: %v", v, err)
	}

	_, err := Encode(sampleModel(), EncodeOptions{Version: 9}, ciph)
	assert.True(t, errors.Is(err, ErrUnsupportedVersion))

	_, err = Encode(sampleModel(), EncodeOptions{Version: 2, Encrypt: true, Key: 1}, ciph)
	assert.True(t, errors.Is(err, ErrUnsupportedVersion), "short versions cannot encrypt")
}

func TestBadSignature(t *testing.T) {
	_, err := Decode([]byte("BMD\x0c"), crypto.Defaults())
	assert.True(t, errors.Is(err, ErrMalformedGeometry))
}

func TestTruncatedVertexList(t *testing.T) {
	// Header claims 10 vertices, buffer holds 3.
	w := cursor.NewWriter()
	w.Byte(0x84)
	w.Byte(0x19)
	w.Byte(1)
	w.Byte(tagVertices)
	w.Uint16(10)
	for i := 0; i < 3*8; i++ {
		w.Float32(1)
	}

	m, err := Decode(w.Bytes(), crypto.Defaults())
	assert.Nil(t, m, "no partial mesh")
	assert.True(t, errors.Is(err, cursor.ErrOutOfBounds), "got %v", err)
}

func TestTriangleIndexOutOfRange(t *testing.T) {
	w := cursor.NewWriter()
	w.Byte(0x84)
	w.Byte(0x19)
	w.Byte(1)
	w.Byte(tagVertices)
	w.Uint16(1)
	for i := 0; i < 8; i++ {
		w.Float32(0)
	}
	w.Byte(tagTriangles)
	w.Uint16(1)
	w.Uint16(0)
	w.Uint16(5)
	w.Uint16(0)
	w.Uint16(0) // material

	_, err := Decode(w.Bytes(), crypto.Defaults())
	assert.True(t, errors.Is(err, ErrMalformedGeometry), "got %v", err)
}

func TestUnknownSectionTag(t *testing.T) {
	w := cursor.NewWriter()
	w.Byte(0x84)
	w.Byte(0x19)
	w.Byte(1)
	w.Byte(0x33)
	w.Uint16(0)

	_, err := Decode(w.Bytes(), crypto.Defaults())
	assert.True(t, errors.Is(err, ErrMalformedGeometry), "got %v", err)
}

func TestTrailingByteIgnored(t *testing.T) {
	ciph := crypto.Defaults()
	raw, err := Encode(sampleModel(), EncodeOptions{}, ciph)
	require.NoError(t, err)

	got, err := Decode(append(raw, 0x00), ciph)
	require.NoError(t, err)
	assertSameGeometry(t, sampleModel(), got)
}

func TestShortVersionUpgradedForBigCounts(t *testing.T) {
	ciph := crypto.Defaults()
	m := &Model{Vertices: make([]Vertex, 70000)}

	raw, err := Encode(m, EncodeOptions{Version: 1}, ciph)
	require.NoError(t, err)

	got, err := Decode(raw, ciph)
	require.NoError(t, err)
	assert.Equal(t, byte(3), got.Header.Version)
	assert.Len(t, got.Vertices, 70000)
}

func TestValidateRejectsBadBones(t *testing.T) {
	m := sampleModel()
	m.Bones[0].Parent = 5
	assert.True(t, errors.Is(m.Validate(), ErrMalformedGeometry))

	m = sampleModel()
	m.Bones[0].Parent = 1
	m.Bones[1].Parent = 0
	assert.True(t, errors.Is(m.Validate(), ErrMalformedGeometry), "parent cycle")

	m = sampleModel()
	m.Bones[0].Parent = 1
	assert.NoError(t, m.Validate(), "chain to a root is fine")
}

func TestBounds(t *testing.T) {
	m := sampleModel()
	min, max := m.Bounds()
	assert.Equal(t, [3]float32{-2.5, 0, 0}, min)
	assert.Equal(t, [3]float32{1, 1.5, 3}, max)
}
