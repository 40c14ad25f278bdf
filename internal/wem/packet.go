package wem

import "github.com/wwiseaudio/wwtools/internal/wwerr"

// packetHeader describes a single Wwise audio/setup packet header, in
// whichever of the three on-disk styles is active for this WEM: 6-byte
// (size+granule), 2-byte (size only, no_granule WEMs), or 8-byte (size+
// granule, old_packet_headers WEMs). Grounded on wwriff.cpp's Packet and
// Packet8 classes.
type packetHeader struct {
	headerSize int64
	size       uint32
	granule    uint32
	payload    int64 // offset of the packet payload
	next       int64 // offset of the next packet header
}

func (d *Descriptor) readPacket(offset int64, oldStyle, noGranule bool) (packetHeader, error) {
	if oldStyle {
		return d.readPacket8(offset)
	}
	return d.readPacket6(offset, noGranule)
}

func (d *Descriptor) readPacket6(offset int64, noGranule bool) (packetHeader, error) {
	headerSize := int64(6)
	if noGranule {
		headerSize = 2
	}
	size16, err := d.u16(offset)
	if err != nil {
		return packetHeader{}, err
	}
	var granule uint32
	if !noGranule {
		granule, err = d.u32(offset + 2)
		if err != nil {
			return packetHeader{}, err
		}
	}
	size := uint32(size16)
	return packetHeader{
		headerSize: headerSize,
		size:       size,
		granule:    granule,
		payload:    offset + headerSize,
		next:       offset + headerSize + int64(size),
	}, nil
}

func (d *Descriptor) readPacket8(offset int64) (packetHeader, error) {
	size, err := d.u32(offset)
	if err != nil {
		return packetHeader{}, err
	}
	granule, err := d.u32(offset + 4)
	if err != nil {
		return packetHeader{}, err
	}
	return packetHeader{
		headerSize: 8,
		size:       size,
		granule:    granule,
		payload:    offset + 8,
		next:       offset + 8 + int64(size),
	}, nil
}

func (d *Descriptor) byteAt(offset int64) (byte, error) {
	if offset < 0 || offset >= int64(len(d.data)) {
		return 0, wwerr.NewParseError(offset, "file truncated")
	}
	return d.data[offset], nil
}
