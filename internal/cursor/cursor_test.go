package cursor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderPrimitives(t *testing.T) {
	w := NewWriter()
	w.Byte(0x17)
	w.Uint16(0xBEEF)
	w.Uint32(0xDEADBEEF)
	w.Float32(1.5)
	w.Raw([]byte{1, 2, 3})

	r := NewReader(w.Bytes())
	b, err := r.Byte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x17), b)

	u16, err := r.Uint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), u16)

	u32, err := r.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), u32)

	f, err := r.Float32()
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), f)

	rest, err := r.Bytes(3)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, rest)
	assert.Equal(t, 0, r.Remaining())
}

func TestReaderOutOfBounds(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})

	_, err := r.Uint32()
	assert.True(t, errors.Is(err, ErrOutOfBounds))
	assert.Equal(t, 0, r.Offset(), "failed read must not advance")

	v, err := r.Uint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0201), v)

	_, err = r.Byte()
	assert.True(t, errors.Is(err, ErrOutOfBounds))
}

func TestReaderOffsetTracking(t *testing.T) {
	r := NewReader(make([]byte, 10))
	require.NoError(t, r.Skip(4))
	assert.Equal(t, 4, r.Offset())
	assert.Equal(t, 6, r.Remaining())
	assert.Len(t, r.Rest(), 6)
	assert.Equal(t, 10, r.Offset())
	assert.True(t, errors.Is(r.Skip(1), ErrOutOfBounds))
}

func TestPascalStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "Body", "Fahrer_süd", "roof_éclairage.bmp"} {
		w := NewWriter()
		require.NoError(t, w.PascalString(s))

		r := NewReader(w.Bytes())
		got, err := r.PascalString()
		require.NoError(t, err)
		assert.Equal(t, s, got)
		assert.Equal(t, 0, r.Remaining())
	}
}

func TestPascalStringTruncated(t *testing.T) {
	r := NewReader([]byte{5, 'a', 'b'})
	_, err := r.PascalString()
	assert.True(t, errors.Is(err, ErrOutOfBounds))
	assert.Equal(t, 0, r.Offset())
}

func TestPascalStringTooLong(t *testing.T) {
	w := NewWriter()
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	assert.Error(t, w.PascalString(string(long)))
}

func TestWriterGrows(t *testing.T) {
	w := NewWriter()
	for i := 0; i < 1000; i++ {
		w.Uint32(uint32(i))
	}
	assert.Equal(t, 4000, w.Offset())
	assert.Len(t, w.Bytes(), 4000)
}
