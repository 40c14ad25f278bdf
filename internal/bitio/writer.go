package bitio

import (
	"io"

	"github.com/wwiseaudio/wwtools/internal/wwerr"
)

const (
	headerBytes  = 27
	maxSegments  = 255
	segmentSize  = 255
	maxPayload   = segmentSize * maxSegments
)

// OggWriter accumulates bits LSB-first (the Vorbis packing convention) and
// flushes them as complete OGG pages with correct headers, segment tables,
// and CRC checksums — the Go realization of
// original_source/src/ww2ogg/bitstream.h's Bitoggstream.
type OggWriter struct {
	w io.Writer

	bitBuffer  byte
	bitsStored uint

	payload     []byte // accumulated payload bytes for the current page
	first       bool
	continued   bool
	granule     uint64
	seqno       uint32
	granuleHi32 bool // true once a 0xFFFFFFFF placeholder granule was seen
}

// NewOggWriter creates a writer over w, starting at the beginning-of-stream
// page (serial number fixed at 1, per spec).
func NewOggWriter(w io.Writer) *OggWriter {
	return &OggWriter{w: w, first: true}
}

// PutBit accumulates a single bit, LSB-first within the partial byte.
func (o *OggWriter) PutBit(bit bool) error {
	if bit {
		o.bitBuffer |= 1 << o.bitsStored
	}
	o.bitsStored++
	if o.bitsStored == 8 {
		return o.flushBits()
	}
	return nil
}

// PutUint writes n bits of v, LSB-first.
func (o *OggWriter) PutUint(v uint32, n uint) error {
	for i := uint(0); i < n; i++ {
		if err := o.PutBit((v & (1 << i)) != 0); err != nil {
			return err
		}
	}
	return nil
}

// SetGranule sets the granule position that will be written into the page
// currently being accumulated. A granule of 0xFFFFFFFF is a Vorbis
// placeholder and is written with all-ones high bits too, per spec.
func (o *OggWriter) SetGranule(g uint32) {
	o.granule = uint64(g)
	o.granuleHi32 = g == 0xFFFFFFFF
}

func (o *OggWriter) flushBits() error {
	if o.bitsStored == 0 {
		return nil
	}
	if len(o.payload) == maxPayload {
		return &wwerr.PacketTooLarge{Limit: maxPayload}
	}
	o.payload = append(o.payload, o.bitBuffer)
	o.bitsStored = 0
	o.bitBuffer = 0
	return nil
}

// FlushPage emits a complete OGG page for the currently accumulated
// payload. next_continued marks whether the next page continues the
// packet in flight; last marks the end-of-stream page. A no-op when there
// is no pending payload and no partial byte.
func (o *OggWriter) FlushPage(nextContinued, last bool) error {
	if err := o.flushBits(); err != nil {
		return err
	}
	if len(o.payload) == 0 {
		return nil
	}

	segments := (len(o.payload) + segmentSize) / segmentSize
	if segments == maxSegments+1 {
		segments = maxSegments
	}

	page := make([]byte, headerBytes+segments+len(o.payload))
	copy(page[0:4], "OggS")
	page[4] = 0
	var flags byte
	if o.continued {
		flags |= 1
	}
	if o.first {
		flags |= 2
	}
	if last {
		flags |= 4
	}
	page[5] = flags

	putLE32(page[6:10], uint32(o.granule))
	if o.granuleHi32 {
		putLE32(page[10:14], 0xFFFFFFFF)
	} else {
		putLE32(page[10:14], 0)
	}
	putLE32(page[14:18], 1) // stream serial number, fixed
	putLE32(page[18:22], o.seqno)
	putLE32(page[22:26], 0) // CRC placeholder
	page[26] = byte(segments)

	bytesLeft := len(o.payload)
	for i := 0; i < segments; i++ {
		if bytesLeft >= segmentSize {
			page[27+i] = segmentSize
			bytesLeft -= segmentSize
		} else {
			page[27+i] = byte(bytesLeft)
		}
	}
	copy(page[headerBytes+segments:], o.payload)

	crc := Checksum(page)
	putLE32(page[22:26], crc)

	if _, err := o.w.Write(page); err != nil {
		return err
	}

	o.seqno++
	o.first = false
	o.continued = nextContinued
	o.payload = o.payload[:0]
	return nil
}

// Close best-effort-flushes any pending partial page, swallowing the
// error — mirroring the teacher-facing Bitoggstream destructor's
// best-effort final flush.
func (o *OggWriter) Close() {
	_ = o.FlushPage(false, false)
}

func putLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
