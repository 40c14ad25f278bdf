package revorb

import (
	"encoding/binary"

	"github.com/wwiseaudio/wwtools/internal/bitio"
	"github.com/wwiseaudio/wwtools/internal/wwerr"
)

// page is a single parsed OGG page. The on-wire page is a 27-byte header,
// then segmentTable, then payload; writePage rebuilds it from these fields,
// so changing only the granule field leaves every other byte identical
// apart from the recomputed CRC.
type page struct {
	version       byte
	continued     bool
	first         bool
	last          bool
	granule       uint64
	serial        uint32
	seqno         uint32
	segmentTable  []byte
	payload       []byte
	payloadStart  int // offset of payload within the original buffer
}

// packetsCompletedHere splits payload into the packets that finish on this
// page, per the lacing rules: a run of 255-valued segments plus one
// terminating (<255) segment is one packet; a page can complete zero or
// more packets and end with an unterminated in-flight one.
func (p *page) packetsCompletedHere() [][]byte {
	var packets [][]byte
	var cur []byte
	pos := 0
	for _, seg := range p.segmentTable {
		cur = append(cur, p.payload[pos:pos+int(seg)]...)
		pos += int(seg)
		if seg < 255 {
			packets = append(packets, cur)
			cur = nil
		}
	}
	return packets
}

// readPages parses every OGG page in data, in order.
func readPages(data []byte) ([]page, error) {
	var pages []page
	offset := 0
	for offset < len(data) {
		if offset+27 > len(data) {
			return nil, wwerr.NewParseError(int64(offset), "truncated OGG page header")
		}
		if string(data[offset:offset+4]) != "OggS" {
			return nil, wwerr.NewParseError(int64(offset), "missing OggS magic")
		}
		version := data[offset+4]
		flags := data[offset+5]
		granule := binary.LittleEndian.Uint64(data[offset+6 : offset+14])
		serial := binary.LittleEndian.Uint32(data[offset+14 : offset+18])
		seqno := binary.LittleEndian.Uint32(data[offset+18 : offset+22])
		segCount := int(data[offset+26])

		segTableStart := offset + 27
		if segTableStart+segCount > len(data) {
			return nil, wwerr.NewParseError(int64(offset), "truncated OGG segment table")
		}
		segTable := data[segTableStart : segTableStart+segCount]

		payloadStart := segTableStart + segCount
		payloadLen := 0
		for _, s := range segTable {
			payloadLen += int(s)
		}
		if payloadStart+payloadLen > len(data) {
			return nil, wwerr.NewParseError(int64(offset), "truncated OGG page payload")
		}

		pages = append(pages, page{
			version:      version,
			continued:    flags&1 != 0,
			first:        flags&2 != 0,
			last:         flags&4 != 0,
			granule:      granule,
			serial:       serial,
			seqno:        seqno,
			segmentTable: segTable,
			payload:      data[payloadStart : payloadStart+payloadLen],
			payloadStart: payloadStart,
		})

		offset = payloadStart + payloadLen
	}
	return pages, nil
}

// writePage renders p back to on-wire bytes with its current granule
// value and a freshly computed CRC — used after the granule field has
// been corrected.
func writePage(p page) []byte {
	buf := make([]byte, 27+len(p.segmentTable)+len(p.payload))
	copy(buf[0:4], "OggS")
	buf[4] = p.version
	var flags byte
	if p.continued {
		flags |= 1
	}
	if p.first {
		flags |= 2
	}
	if p.last {
		flags |= 4
	}
	buf[5] = flags
	binary.LittleEndian.PutUint64(buf[6:14], p.granule)
	binary.LittleEndian.PutUint32(buf[14:18], p.serial)
	binary.LittleEndian.PutUint32(buf[18:22], p.seqno)
	binary.LittleEndian.PutUint32(buf[22:26], 0) // CRC placeholder
	buf[26] = byte(len(p.segmentTable))
	copy(buf[27:27+len(p.segmentTable)], p.segmentTable)
	copy(buf[27+len(p.segmentTable):], p.payload)

	crc := bitio.Checksum(buf)
	binary.LittleEndian.PutUint32(buf[22:26], crc)
	return buf
}
