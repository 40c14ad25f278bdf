package wem

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wwiseaudio/wwtools/internal/bitio"
)

func putU16(buf *bytes.Buffer, v uint16) { binary.Write(buf, binary.LittleEndian, v) } //nolint:errcheck
func putU32(buf *bytes.Buffer, v uint32) { binary.Write(buf, binary.LittleEndian, v) } //nolint:errcheck

// buildSetupPayload writes a single-codebook, single-floor, single-residue,
// single-mapping, single-mode compact setup packet body, exercising every
// rebuild* helper in setup.go with internally consistent ids (codebook
// count, floor count, etc. all equal to 1).
func buildSetupPayload() []byte {
	var b bitBuilder
	b.putUint(0, 8) // codebookCountLess1 -> 1 codebook

	// codebook (inline, compact, non-ordered, no lookup table)
	b.putUint(1, 4)
	b.putUint(2, 14)
	b.putUint(0, 1)
	b.putUint(3, 3)
	b.putUint(0, 1)
	b.putUint(2, 3)
	b.putUint(5, 3)
	b.putUint(0, 1)

	// floor
	b.putUint(0, 6)
	b.putUint(1, 5)
	b.putUint(0, 4)
	b.putUint(0, 3)
	b.putUint(0, 2)
	b.putUint(1, 8)
	b.putUint(0, 2)
	b.putUint(2, 4)
	b.putUint(3, 2)

	// residue
	b.putUint(0, 6)
	b.putUint(0, 2)
	b.putUint(10, 24)
	b.putUint(20, 24)
	b.putUint(5, 24)
	b.putUint(0, 6)
	b.putUint(0, 8)
	b.putUint(2, 3)
	b.putUint(0, 1)
	b.putUint(0, 8)

	// mapping
	b.putUint(0, 6)
	b.putUint(0, 1)
	b.putUint(0, 1)
	b.putUint(0, 2)
	b.putUint(0, 8)
	b.putUint(0, 8)
	b.putUint(0, 8)

	// mode
	b.putUint(0, 6)
	b.putUint(0, 1)
	b.putUint(0, 8)

	return b.bytes()
}

// buildSyntheticWem assembles a minimal, non-triad, 6-byte-packet-header WEM
// with one setup packet and two audio packets, exercising the Parse/fmt/
// vorb/data chunk walk and the non-mod-packets branch of generateAudioPages.
func buildSyntheticWem(t *testing.T) (data []byte, setupPacketSize int, audio1Granule, audio2Granule uint32, audio1, audio2 []byte) {
	t.Helper()
	setup := buildSetupPayload()
	setupPacketSize = len(setup)
	firstAudioOffset := uint32(6 + setupPacketSize)
	audio1 = []byte{0xAB, 0xCD, 0xEF}
	audio2 = []byte{0x12, 0x34}
	audio1Granule, audio2Granule = 100, 200

	var fmtBuf bytes.Buffer
	putU16(&fmtBuf, 0xFFFF) // codec id
	putU16(&fmtBuf, 1)      // channels
	putU32(&fmtBuf, 44100)  // sample rate
	putU32(&fmtBuf, 16000)  // avg bytes per second
	putU16(&fmtBuf, 0)      // block align
	putU16(&fmtBuf, 0)      // bits per sample
	putU16(&fmtBuf, 0)      // extra size
	require.Equal(t, 18, fmtBuf.Len())

	var vorbBuf bytes.Buffer
	putU32(&vorbBuf, 1000)                 // sample count, offset 0x00
	vorbBuf.Write(make([]byte, 0x18-0x04)) // padding to offset 0x18
	putU32(&vorbBuf, 0)                    // setup packet offset, 0x18
	putU32(&vorbBuf, firstAudioOffset)     // first audio packet offset, 0x1C
	vorbBuf.Write(make([]byte, 0x2C-0x20)) // padding to offset 0x2C
	putU32(&vorbBuf, 0)                    // uid, 0x2C
	vorbBuf.WriteByte(8)                   // blockSize0Pow, 0x30
	vorbBuf.WriteByte(10)                  // blockSize1Pow, 0x31
	require.Equal(t, 0x32, vorbBuf.Len())

	var dataBuf bytes.Buffer
	putU16(&dataBuf, uint16(setupPacketSize))
	putU32(&dataBuf, 0) // setup packet granule, must be 0
	dataBuf.Write(setup)
	putU16(&dataBuf, uint16(len(audio1)))
	putU32(&dataBuf, audio1Granule)
	dataBuf.Write(audio1)
	putU16(&dataBuf, uint16(len(audio2)))
	putU32(&dataBuf, audio2Granule)
	dataBuf.Write(audio2)

	var body bytes.Buffer
	writeChunk(&body, "fmt ", fmtBuf.Bytes())
	writeChunk(&body, "vorb", vorbBuf.Bytes())
	writeChunk(&body, "data", dataBuf.Bytes())

	var file bytes.Buffer
	file.WriteString("RIFF")
	putU32(&file, uint32(4+body.Len())) // covers "WAVE" plus the chunks
	file.WriteString("WAVE")
	file.Write(body.Bytes())

	return file.Bytes(), setupPacketSize, audio1Granule, audio2Granule, audio1, audio2
}

func TestParseSyntheticWem(t *testing.T) {
	data, _, _, _, _, _ := buildSyntheticWem(t)

	d, err := Parse(data, Options{InlineCodebooks: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, d.channels)
	assert.EqualValues(t, 44100, d.sampleRate)
	assert.EqualValues(t, 1000, d.sampleCount)
	assert.False(t, d.headerTriadPresent)
	assert.False(t, d.noGranule)
	assert.False(t, d.modPackets)
	assert.EqualValues(t, 8, d.blockSize0Pow)
	assert.EqualValues(t, 10, d.blockSize1Pow)
}

func TestConvertEndToEndNonTriad(t *testing.T) {
	data, _, granule1, granule2, audio1, audio2 := buildSyntheticWem(t)

	out, err := Convert(data, Options{InlineCodebooks: true})
	require.NoError(t, err)

	pages := splitOggPages(t, out)
	require.Len(t, pages, 5, "identification, comment, setup, and two audio pages")

	for i, p := range pages {
		assert.Equal(t, "OggS", string(p[0:4]), "page %d magic", i)
	}

	assert.EqualValues(t, 2, pages[0][5]&2, "first page bit set on page 0")
	for i := 1; i < len(pages); i++ {
		assert.EqualValues(t, 0, pages[i][5]&2, "first page bit unset on page %d", i)
	}
	assert.EqualValues(t, 4, pages[4][5]&4, "last page bit set on final page")
	for i := 0; i < 4; i++ {
		assert.EqualValues(t, 0, pages[i][5]&4, "last page bit unset on page %d", i)
	}

	audio1Payload := oggPagePayload(t, pages[3])
	assert.Equal(t, audio1, audio1Payload)
	audio2Payload := oggPagePayload(t, pages[4])
	assert.Equal(t, audio2, audio2Payload)

	assert.EqualValues(t, granule1, binary.LittleEndian.Uint64(pages[3][6:14]))
	assert.EqualValues(t, granule2, binary.LittleEndian.Uint64(pages[4][6:14]))

	setupPayload := oggPagePayload(t, pages[2])
	r := bitio.NewReader(setupPayload, 0)
	packetType, err := r.GetUint(8)
	require.NoError(t, err)
	assert.EqualValues(t, 5, packetType)
}

// splitOggPages walks a concatenated OGG byte stream and returns each
// page's full bytes (header, segment table, and payload together).
func splitOggPages(t *testing.T, data []byte) [][]byte {
	t.Helper()
	var pages [][]byte
	offset := 0
	for offset < len(data) {
		require.GreaterOrEqual(t, len(data)-offset, 27)
		nseg := int(data[offset+26])
		require.GreaterOrEqual(t, len(data)-offset, 27+nseg)
		segTable := data[offset+27 : offset+27+nseg]
		total := 0
		for _, s := range segTable {
			total += int(s)
		}
		pageLen := 27 + nseg + total
		require.GreaterOrEqual(t, len(data)-offset, pageLen)
		pages = append(pages, data[offset:offset+pageLen])
		offset += pageLen
	}
	return pages
}
