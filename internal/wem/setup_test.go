package wem

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wwiseaudio/wwtools/internal/bitio"
)

func TestFormatUint(t *testing.T) {
	assert.Equal(t, "LoopStart=0", formatUint("LoopStart=", 0))
	assert.Equal(t, "LoopEnd=501", formatUint("LoopEnd=", 501))
	assert.Equal(t, "LoopStart=1234567890", formatUint("LoopStart=", 1234567890))
}

// bitBuilder packs values LSB-first within each byte, matching the
// convention bitio.Reader/bitio.OggWriter both use.
type bitBuilder struct {
	buf   []byte
	cur   byte
	nbits uint
}

func (b *bitBuilder) putUint(v uint32, n uint) {
	for i := uint(0); i < n; i++ {
		if (v>>i)&1 != 0 {
			b.cur |= 1 << b.nbits
		}
		b.nbits++
		if b.nbits == 8 {
			b.buf = append(b.buf, b.cur)
			b.cur = 0
			b.nbits = 0
		}
	}
}

func (b *bitBuilder) bytes() []byte {
	if b.nbits > 0 {
		return append(append([]byte{}, b.buf...), b.cur)
	}
	return b.buf
}

// oggPagePayload extracts the single packet's payload from one freshly
// flushed OGG page via its own segment table.
func oggPagePayload(t *testing.T, page []byte) []byte {
	t.Helper()
	require.GreaterOrEqual(t, len(page), 27)
	nseg := int(page[26])
	require.GreaterOrEqual(t, len(page), 27+nseg)
	segTable := page[27 : 27+nseg]
	total := 0
	for _, s := range segTable {
		total += int(s)
	}
	start := 27 + nseg
	require.GreaterOrEqual(t, len(page), start+total)
	return page[start : start+total]
}

func flushToPayload(t *testing.T, w *bitio.OggWriter, buf *bytes.Buffer) []byte {
	t.Helper()
	require.NoError(t, w.FlushPage(false, true))
	return oggPagePayload(t, buf.Bytes())
}

func TestRebuildFloorsSingleFloor(t *testing.T) {
	var b bitBuilder
	b.putUint(0, 6) // floorCountLess1 -> 1 floor
	b.putUint(1, 5) // partitions
	b.putUint(0, 4) // partition 0's class
	b.putUint(0, 3) // class 0 dimensions-1
	b.putUint(0, 2) // class 0 subclasses -> 0, no masterbook field
	b.putUint(1, 8) // bookPlus1 for the single subclass slot (book 0)
	b.putUint(0, 2) // multiplier-1
	b.putUint(2, 4) // rangebits
	b.putUint(3, 2) // the single floor value (rangebits wide)

	var buf bytes.Buffer
	w := bitio.NewOggWriter(&buf)
	r := bitio.NewReader(b.bytes(), 0)
	d := &Descriptor{}

	floorCount, err := d.rebuildFloors(r, w, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, floorCount)

	payload := flushToPayload(t, w, &buf)
	v := bitio.NewReader(payload, 0)

	floorCountLess1, err := v.GetUint(6)
	require.NoError(t, err)
	assert.EqualValues(t, 0, floorCountLess1)
	floorType, err := v.GetUint(16)
	require.NoError(t, err)
	assert.EqualValues(t, 1, floorType)
	partitions, err := v.GetUint(5)
	require.NoError(t, err)
	assert.EqualValues(t, 1, partitions)
	class, err := v.GetUint(4)
	require.NoError(t, err)
	assert.EqualValues(t, 0, class)
	dimLess1, err := v.GetUint(3)
	require.NoError(t, err)
	assert.EqualValues(t, 0, dimLess1)
	subclasses, err := v.GetUint(2)
	require.NoError(t, err)
	assert.EqualValues(t, 0, subclasses)
	bookPlus1, err := v.GetUint(8)
	require.NoError(t, err)
	assert.EqualValues(t, 1, bookPlus1)
	multLess1, err := v.GetUint(2)
	require.NoError(t, err)
	assert.EqualValues(t, 0, multLess1)
	rangebits, err := v.GetUint(4)
	require.NoError(t, err)
	assert.EqualValues(t, 2, rangebits)
	value, err := v.GetUint(uint(rangebits))
	require.NoError(t, err)
	assert.EqualValues(t, 3, value)
}

func TestRebuildResiduesSingleResidue(t *testing.T) {
	var b bitBuilder
	b.putUint(0, 6)   // residueCountLess1 -> 1 residue
	b.putUint(0, 2)   // residue type
	b.putUint(10, 24) // begin
	b.putUint(20, 24) // end
	b.putUint(5, 24)  // partition size - 1
	b.putUint(0, 6)   // classifications - 1 -> 1 classification
	b.putUint(0, 8)   // classbook
	b.putUint(2, 3)   // cascade low bits (binary 010 -> bit 1 set)
	b.putUint(0, 1)   // cascade high flag
	b.putUint(0, 8)   // book for cascade bit 1

	var buf bytes.Buffer
	w := bitio.NewOggWriter(&buf)
	r := bitio.NewReader(b.bytes(), 0)
	d := &Descriptor{}

	residueCount, err := d.rebuildResidues(r, w, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, residueCount)

	payload := flushToPayload(t, w, &buf)
	v := bitio.NewReader(payload, 0)

	residueCountLess1, err := v.GetUint(6)
	require.NoError(t, err)
	assert.EqualValues(t, 0, residueCountLess1)
	residueType, err := v.GetUint(16)
	require.NoError(t, err)
	assert.EqualValues(t, 0, residueType)
	begin, err := v.GetUint(24)
	require.NoError(t, err)
	assert.EqualValues(t, 10, begin)
	end, err := v.GetUint(24)
	require.NoError(t, err)
	assert.EqualValues(t, 20, end)
	partitionSizeLess1, err := v.GetUint(24)
	require.NoError(t, err)
	assert.EqualValues(t, 5, partitionSizeLess1)
	classificationsLess1, err := v.GetUint(6)
	require.NoError(t, err)
	assert.EqualValues(t, 0, classificationsLess1)
	classbook, err := v.GetUint(8)
	require.NoError(t, err)
	assert.EqualValues(t, 0, classbook)
	lowBits, err := v.GetUint(3)
	require.NoError(t, err)
	assert.EqualValues(t, 2, lowBits)
	flag, err := v.GetUint(1)
	require.NoError(t, err)
	assert.EqualValues(t, 0, flag)
	book, err := v.GetUint(8)
	require.NoError(t, err)
	assert.EqualValues(t, 0, book)
}

func TestRebuildMappingsSingleMapping(t *testing.T) {
	var b bitBuilder
	b.putUint(0, 6) // mappingCountLess1 -> 1 mapping
	b.putUint(0, 1) // submapsFlag -> 1 submap
	b.putUint(0, 1) // squarePolarFlag
	b.putUint(0, 2) // reserved
	b.putUint(0, 8) // submap 0 time config
	b.putUint(0, 8) // submap 0 floor number
	b.putUint(0, 8) // submap 0 residue number

	var buf bytes.Buffer
	w := bitio.NewOggWriter(&buf)
	r := bitio.NewReader(b.bytes(), 0)
	d := &Descriptor{channels: 2}

	mappingCount, err := d.rebuildMappings(r, w, 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, mappingCount)

	payload := flushToPayload(t, w, &buf)
	v := bitio.NewReader(payload, 0)

	mappingCountLess1, err := v.GetUint(6)
	require.NoError(t, err)
	assert.EqualValues(t, 0, mappingCountLess1)
	mappingType, err := v.GetUint(16)
	require.NoError(t, err)
	assert.EqualValues(t, 0, mappingType)
	submapsFlag, err := v.GetUint(1)
	require.NoError(t, err)
	assert.EqualValues(t, 0, submapsFlag)
	squarePolarFlag, err := v.GetUint(1)
	require.NoError(t, err)
	assert.EqualValues(t, 0, squarePolarFlag)
	reserved, err := v.GetUint(2)
	require.NoError(t, err)
	assert.EqualValues(t, 0, reserved)
	timeConfig, err := v.GetUint(8)
	require.NoError(t, err)
	assert.EqualValues(t, 0, timeConfig)
	floorNumber, err := v.GetUint(8)
	require.NoError(t, err)
	assert.EqualValues(t, 0, floorNumber)
	residueNumber, err := v.GetUint(8)
	require.NoError(t, err)
	assert.EqualValues(t, 0, residueNumber)
}

func TestRebuildModesTwoModes(t *testing.T) {
	var b bitBuilder
	b.putUint(1, 6) // modeCountLess1 -> 2 modes
	b.putUint(0, 1) // mode 0 blockflag (short)
	b.putUint(0, 8) // mode 0 mapping
	b.putUint(1, 1) // mode 1 blockflag (long)
	b.putUint(0, 8) // mode 1 mapping

	var buf bytes.Buffer
	w := bitio.NewOggWriter(&buf)
	r := bitio.NewReader(b.bytes(), 0)
	d := &Descriptor{}

	res, err := d.rebuildModes(r, w, 1)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, res.modeBlockflag)
	assert.EqualValues(t, 1, res.modeBits) // Ilog(modeCount-1) = Ilog(1)

	payload := flushToPayload(t, w, &buf)
	v := bitio.NewReader(payload, 0)

	modeCountLess1, err := v.GetUint(6)
	require.NoError(t, err)
	assert.EqualValues(t, 1, modeCountLess1)
	for i, wantFlag := range []uint32{0, 1} {
		blockFlag, err := v.GetUint(1)
		require.NoError(t, err)
		assert.EqualValuesf(t, wantFlag, blockFlag, "mode %d blockflag", i)
		windowType, err := v.GetUint(16)
		require.NoError(t, err)
		assert.EqualValues(t, 0, windowType)
		transformType, err := v.GetUint(16)
		require.NoError(t, err)
		assert.EqualValues(t, 0, transformType)
		mapping, err := v.GetUint(8)
		require.NoError(t, err)
		assert.EqualValues(t, 0, mapping)
	}
}

func TestRebuildCodebooksInlineRebuilds(t *testing.T) {
	var b bitBuilder
	b.putUint(1, 4)  // dimensions
	b.putUint(2, 14) // entries
	b.putUint(0, 1)  // ordered = false
	b.putUint(3, 3)  // codewordLengthLength
	b.putUint(0, 1)  // sparse = false
	b.putUint(2, 3)  // entry 0 codeword length
	b.putUint(5, 3)  // entry 1 codeword length
	b.putUint(0, 1)  // lookup type = none

	var buf bytes.Buffer
	w := bitio.NewOggWriter(&buf)
	r := bitio.NewReader(b.bytes(), 0)
	d := &Descriptor{inlineCodebooks: true}

	require.NoError(t, d.rebuildCodebooks(r, w, 1))

	payload := flushToPayload(t, w, &buf)
	v := bitio.NewReader(payload, 0)
	id, err := v.GetUint(24)
	require.NoError(t, err)
	assert.EqualValues(t, 0x564342, id)
	dims, err := v.GetUint(16)
	require.NoError(t, err)
	assert.EqualValues(t, 1, dims)
}

func TestRebuildCodebooksInlineFullSetupCopies(t *testing.T) {
	var b bitBuilder
	b.putUint(0x564342, 24) // canonical sync
	b.putUint(1, 16)        // dimensions
	b.putUint(2, 24)        // entries
	b.putUint(0, 1)         // ordered = false
	b.putUint(0, 1)         // sparse = false
	b.putUint(2, 5)         // entry 0 codeword length
	b.putUint(5, 5)         // entry 1 codeword length
	b.putUint(0, 4)         // lookup type = none

	var buf bytes.Buffer
	w := bitio.NewOggWriter(&buf)
	r := bitio.NewReader(b.bytes(), 0)
	d := &Descriptor{inlineCodebooks: true, fullSetup: true}

	require.NoError(t, d.rebuildCodebooks(r, w, 1))

	payload := flushToPayload(t, w, &buf)
	assert.Equal(t, b.bytes(), payload)
}
