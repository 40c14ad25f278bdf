package wem

import (
	"bytes"
	"encoding/binary"

	"github.com/wwiseaudio/wwtools/internal/wwerr"
)

var fmtGUID = []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71}

// Parse decodes a WEM byte buffer's RIFF/fmt/vorb/smpl chunks into a
// Descriptor, per spec.md §4.3.1-§4.3.4.
func Parse(data []byte, opts Options) (*Descriptor, error) {
	d := &Descriptor{
		data:            data,
		inlineCodebooks: opts.InlineCodebooks,
		fullSetup:       opts.FullSetup,
		codebooksData:   opts.CodebooksData,
	}

	if err := d.parseRIFFHeader(); err != nil {
		return nil, err
	}
	if err := d.walkChunks(); err != nil {
		return nil, err
	}
	if err := d.parseFmt(); err != nil {
		return nil, err
	}
	d.parseCue()
	if err := d.parseSmplPre(); err != nil {
		return nil, err
	}
	if err := d.parseVorb(opts.ForcePacketFormat); err != nil {
		return nil, err
	}
	if err := d.finishLoops(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Descriptor) u16(off int64) (uint16, error) {
	if off+2 > int64(len(d.data)) {
		return 0, &wwerr.Truncated{What: "16-bit field", Need: int(off + 2), Have: len(d.data)}
	}
	if d.littleEndian {
		return binary.LittleEndian.Uint16(d.data[off : off+2]), nil
	}
	return binary.BigEndian.Uint16(d.data[off : off+2]), nil
}

func (d *Descriptor) u32(off int64) (uint32, error) {
	if off+4 > int64(len(d.data)) {
		return 0, &wwerr.Truncated{What: "32-bit field", Need: int(off + 4), Have: len(d.data)}
	}
	if d.littleEndian {
		return binary.LittleEndian.Uint32(d.data[off : off+4]), nil
	}
	return binary.BigEndian.Uint32(d.data[off : off+4]), nil
}

func (d *Descriptor) parseRIFFHeader() error {
	if len(d.data) < 12 {
		return &wwerr.Truncated{What: "RIFF header", Need: 12, Have: len(d.data)}
	}
	switch {
	case bytes.Equal(d.data[0:4], []byte("RIFF")):
		d.littleEndian = true
	case bytes.Equal(d.data[0:4], []byte("RIFX")):
		d.littleEndian = false
	default:
		return wwerr.NewParseError(0, "missing RIFF")
	}

	size, err := d.u32(4)
	if err != nil {
		return err
	}
	d.riffSize = int64(size) + 8

	if d.riffSize > int64(len(d.data)) {
		return wwerr.NewParseError(4, "RIFF truncated (header claims %d bytes but only %d available, this is likely a streaming/prefetch WEM that requires the full .wem file)", d.riffSize, len(d.data))
	}

	if !bytes.Equal(d.data[8:12], []byte("WAVE")) {
		return wwerr.NewParseError(8, "missing WAVE")
	}
	return nil
}

func (d *Descriptor) walkChunks() error {
	offset := int64(12)
	for offset < d.riffSize {
		if offset+8 > d.riffSize {
			return wwerr.NewParseError(offset, "chunk header truncated")
		}
		tag := d.data[offset : offset+4]
		size, err := d.u32(offset + 4)
		if err != nil {
			return err
		}
		c := chunk{offset: offset + 8, size: int64(size)}

		switch {
		case bytes.Equal(tag, []byte("fmt ")):
			d.fmtChunk = c
		case bytes.Equal(tag, []byte("cue ")):
			d.cueChunk = c
			d.haveCue = true
		case bytes.Equal(tag, []byte("LIST")):
			d.listChunk = c
			d.haveList = true
		case bytes.Equal(tag, []byte("smpl")):
			d.smplChunk = c
			d.haveSmpl = true
		case bytes.Equal(tag, []byte("vorb")):
			d.vorbChunk = c
			d.haveVorb = true
		case bytes.Equal(tag, []byte("data")):
			d.dataChunk = c
		}

		offset = offset + 8 + int64(size)
	}
	if offset > d.riffSize {
		return wwerr.NewParseError(offset, "chunk truncated")
	}

	if d.fmtChunk.offset == 0 && d.dataChunk.offset == 0 {
		return wwerr.NewParseError(-1, "expected fmt, data chunks")
	}
	return nil
}

func (d *Descriptor) parseFmt() error {
	fmtSize := d.fmtChunk.size

	if !d.haveVorb && fmtSize != 0x42 {
		return wwerr.NewParseError(d.fmtChunk.offset, "expected 0x42 fmt if vorb missing")
	}
	if d.haveVorb && fmtSize != 0x28 && fmtSize != 0x18 && fmtSize != 0x12 {
		return wwerr.NewParseError(d.fmtChunk.offset, "bad fmt size")
	}
	if !d.haveVorb && fmtSize == 0x42 {
		// vorb is embedded within the extended fmt chunk.
		d.vorbChunk = chunk{offset: d.fmtChunk.offset + 0x18, size: -1}
		d.haveVorb = true
	}

	off := d.fmtChunk.offset
	codecID, err := d.u16(off)
	if err != nil {
		return err
	}
	if codecID != 0xFFFF {
		return wwerr.NewParseError(off, "bad codec id")
	}
	off += 2

	channels, err := d.u16(off)
	if err != nil {
		return err
	}
	d.channels = uint32(channels)
	off += 2

	sampleRate, err := d.u32(off)
	if err != nil {
		return err
	}
	d.sampleRate = sampleRate
	off += 4

	avgBPS, err := d.u32(off)
	if err != nil {
		return err
	}
	d.avgBytesPerSecond = avgBPS
	off += 4

	blockAlign, err := d.u16(off)
	if err != nil {
		return err
	}
	if blockAlign != 0 {
		return wwerr.NewParseError(off, "bad block align")
	}
	off += 2

	bps, err := d.u16(off)
	if err != nil {
		return err
	}
	if bps != 0 {
		return wwerr.NewParseError(off, "expected 0 bps")
	}
	off += 2

	extraSize, err := d.u16(off)
	if err != nil {
		return err
	}
	if int64(extraSize) != fmtSize-0x12 {
		return wwerr.NewParseError(off, "bad extra fmt length")
	}
	off += 2

	if fmtSize-0x12 >= 2 {
		extUnk, err := d.u16(off)
		if err != nil {
			return err
		}
		d.extUnknown = uint32(extUnk)
		if fmtSize-0x12 >= 6 {
			subtype, err := d.u32(off + 2)
			if err != nil {
				return err
			}
			d.subtype = subtype
		}
	}

	if fmtSize == 0x28 {
		guidOff := d.fmtChunk.offset + 0x12
		if guidOff+16 > int64(len(d.data)) {
			return &wwerr.Truncated{What: "fmt extra signature", Need: int(guidOff + 16), Have: len(d.data)}
		}
		if !bytes.Equal(d.data[guidOff:guidOff+16], fmtGUID) {
			return wwerr.NewParseError(guidOff, "expected signature in extra fmt?")
		}
	}
	return nil
}

func (d *Descriptor) parseCue() {
	if !d.haveCue {
		return
	}
	if v, err := d.u32(d.cueChunk.offset); err == nil {
		d.cueCount = v
	}
}

func (d *Descriptor) parseSmplPre() error {
	if !d.haveSmpl {
		return nil
	}
	loopCount, err := d.u32(d.smplChunk.offset + 0x1C)
	if err != nil {
		return err
	}
	d.loopCount = loopCount
	if d.loopCount != 1 {
		return wwerr.NewParseError(d.smplChunk.offset+0x1C, "expected one loop")
	}

	loopStart, err := d.u32(d.smplChunk.offset + 0x2C)
	if err != nil {
		return err
	}
	loopEnd, err := d.u32(d.smplChunk.offset + 0x30)
	if err != nil {
		return err
	}
	d.loopStart = loopStart
	d.loopEnd = loopEnd
	return nil
}

func (d *Descriptor) parseVorb(force ForcePacketFormat) error {
	switch d.vorbChunk.size {
	case -1, 0x28, 0x2A, 0x2C, 0x32, 0x34:
	default:
		return &wwerr.UnsupportedVersion{Field: "vorb chunk size", Value: d.vorbChunk.size}
	}

	sampleCount, err := d.u32(d.vorbChunk.offset + 0x00)
	if err != nil {
		return err
	}
	d.sampleCount = sampleCount

	var postHeaderOffset int64
	switch d.vorbChunk.size {
	case -1, 0x2A:
		d.noGranule = true
		modSignal, err := d.u32(d.vorbChunk.offset + 0x4)
		if err != nil {
			return err
		}
		if modSignal != 0x4A && modSignal != 0x4B && modSignal != 0x69 && modSignal != 0x70 {
			d.modPackets = true
		}
		postHeaderOffset = d.vorbChunk.offset + 0x10
	default:
		postHeaderOffset = d.vorbChunk.offset + 0x18
	}

	switch force {
	case ForceNoModPackets:
		d.modPackets = false
	case ForceModPackets:
		d.modPackets = true
	}

	setupOffset, err := d.u32(postHeaderOffset)
	if err != nil {
		return err
	}
	d.setupPacketOffset = setupOffset

	firstAudioOffset, err := d.u32(postHeaderOffset + 4)
	if err != nil {
		return err
	}
	d.firstAudioPacketOffset = firstAudioOffset

	var blockInfoOffset int64
	switch d.vorbChunk.size {
	case -1, 0x2A:
		blockInfoOffset = d.vorbChunk.offset + 0x24
	case 0x32, 0x34:
		blockInfoOffset = d.vorbChunk.offset + 0x2C
	}

	switch d.vorbChunk.size {
	case 0x28, 0x2C:
		d.headerTriadPresent = true
		d.oldPacketHeaders = true
	case -1, 0x2A, 0x32, 0x34:
		uid, err := d.u32(blockInfoOffset)
		if err != nil {
			return err
		}
		d.uid = uid
		if blockInfoOffset+6 > int64(len(d.data)) {
			return &wwerr.Truncated{What: "block size exponents", Need: int(blockInfoOffset + 6), Have: len(d.data)}
		}
		d.blockSize0Pow = d.data[blockInfoOffset+4]
		d.blockSize1Pow = d.data[blockInfoOffset+5]
	}
	return nil
}

func (d *Descriptor) finishLoops() error {
	if d.loopCount == 0 {
		return nil
	}
	if d.loopEnd == 0 {
		d.loopEnd = d.sampleCount
	} else {
		d.loopEnd++
	}
	if d.loopStart >= d.sampleCount || d.loopEnd > d.sampleCount || d.loopStart > d.loopEnd {
		return wwerr.NewParseError(-1, "loops out of range")
	}
	return nil
}
