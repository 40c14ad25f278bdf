package bitio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderGetUintLSBFirst(t *testing.T) {
	// 0b10110000 is read MSB-first within the byte (1,0,1,1,...) but the
	// first bit read becomes the LEAST significant bit of the result, so
	// bits [1,0,1,1] assemble as 0b1101 = 13.
	r := NewReader([]byte{0b10110000}, 0)
	v, err := r.GetUint(4)
	require.NoError(t, err)
	assert.Equal(t, uint32(13), v)
}

func TestReaderTruncated(t *testing.T) {
	r := NewReader([]byte{0xFF}, 0)
	_, err := r.GetUint(8)
	require.NoError(t, err)
	_, err = r.GetUint(1)
	require.Error(t, err)
}

func TestReaderTotalBitsRead(t *testing.T) {
	r := NewReader([]byte{0x00, 0x00}, 0)
	_, err := r.GetUint(12)
	require.NoError(t, err)
	assert.Equal(t, int64(12), r.TotalBitsRead())
	assert.False(t, r.AtByteBoundary())
	_, err = r.GetUint(4)
	require.NoError(t, err)
	assert.True(t, r.AtByteBoundary())
}

func TestOggWriterFlushPageRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewOggWriter(&buf)
	require.NoError(t, w.PutUint(0x12345678, 32))
	w.SetGranule(1000)
	require.NoError(t, w.FlushPage(false, true))

	out := buf.Bytes()
	require.True(t, len(out) >= 27)
	assert.Equal(t, "OggS", string(out[0:4]))
	assert.Equal(t, byte(2|4), out[5]) // first-page | last-page flags

	crc := uint32(out[22]) | uint32(out[23])<<8 | uint32(out[24])<<16 | uint32(out[25])<<24
	zeroed := make([]byte, len(out))
	copy(zeroed, out)
	zeroed[22], zeroed[23], zeroed[24], zeroed[25] = 0, 0, 0, 0
	assert.Equal(t, Checksum(zeroed), crc)
}

func TestChecksumDeterministic(t *testing.T) {
	data := []byte("OggS\x00\x02test page payload data")
	a := Checksum(data)
	b := Checksum(data)
	assert.Equal(t, a, b)
	assert.NotZero(t, a)
}
