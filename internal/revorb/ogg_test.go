package revorb

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wwiseaudio/wwtools/internal/bitio"
)

func buildOnePagePacket(t *testing.T, payload []byte, granule uint32, last bool) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := bitio.NewOggWriter(&buf)
	for _, b := range payload {
		require.NoError(t, w.PutUint(uint32(b), 8))
	}
	w.SetGranule(granule)
	require.NoError(t, w.FlushPage(false, last))
	return buf.Bytes()
}

func TestReadPagesRoundTrip(t *testing.T) {
	data := buildOnePagePacket(t, []byte("hello vorbis packet"), 4242, true)

	pages, err := readPages(data)
	require.NoError(t, err)
	require.Len(t, pages, 1)

	p := pages[0]
	assert.True(t, p.first)
	assert.True(t, p.last)
	assert.Equal(t, uint64(4242), p.granule)
	assert.Equal(t, []byte("hello vorbis packet"), p.payload)
}

func TestPacketsCompletedHereSingleSegment(t *testing.T) {
	data := buildOnePagePacket(t, []byte("short"), 0, false)
	pages, err := readPages(data)
	require.NoError(t, err)

	packets := pages[0].packetsCompletedHere()
	require.Len(t, packets, 1)
	assert.Equal(t, []byte("short"), packets[0])
}

func TestWritePageRewritesGranuleAndCRC(t *testing.T) {
	data := buildOnePagePacket(t, []byte("payload"), 1, true)
	pages, err := readPages(data)
	require.NoError(t, err)

	pages[0].granule = 9999
	out := writePage(pages[0])

	reparsed, err := readPages(out)
	require.NoError(t, err)
	require.Len(t, reparsed, 1)
	assert.Equal(t, uint64(9999), reparsed[0].granule)
	assert.Equal(t, []byte("payload"), reparsed[0].payload)
}

func TestReadPagesRejectsBadMagic(t *testing.T) {
	data := buildOnePagePacket(t, []byte("x"), 0, true)
	data[0] = 'X' // corrupt the "OggS" magic
	_, err := readPages(data)
	require.Error(t, err)
}
