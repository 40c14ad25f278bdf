package wem

import (
	"github.com/wwiseaudio/wwtools/internal/bitio"
	"github.com/wwiseaudio/wwtools/internal/codebook"
	"github.com/wwiseaudio/wwtools/internal/wwerr"
)

// generateHeaderWithTriad copies the three Vorbis header packets verbatim
// for WEMs that already carry them (old 8-byte packet headers), per
// spec.md §4.3.7.
func (d *Descriptor) generateHeaderWithTriad(w *bitio.OggWriter) error {
	offset := d.dataChunk.offset + int64(d.setupPacketOffset)

	offset, err := d.copyTriadPacket(w, offset, 1)
	if err != nil {
		return err
	}
	offset, err = d.copyTriadPacket(w, offset, 3)
	if err != nil {
		return err
	}
	offset, err = d.copySetupTriadPacket(w, offset)
	if err != nil {
		return err
	}

	if offset != d.dataChunk.offset+int64(d.firstAudioPacketOffset) {
		return wwerr.NewParseError(-1, "first audio packet doesn't follow setup packet")
	}
	return nil
}

func (d *Descriptor) copyTriadPacket(w *bitio.OggWriter, offset int64, wantType byte) (int64, error) {
	pkt, err := d.readPacket8(offset)
	if err != nil {
		return 0, err
	}
	if pkt.granule != 0 {
		return 0, wwerr.NewParseError(-1, "information or comment packet granule != 0")
	}

	first, err := d.byteAt(pkt.payload)
	if err != nil {
		return 0, err
	}
	if first != wantType {
		return 0, wwerr.NewParseError(pkt.payload, "wrong type for header packet")
	}
	if err := w.PutUint(uint32(first), 8); err != nil {
		return 0, err
	}
	for i := uint32(1); i < pkt.size; i++ {
		v, err := d.byteAt(pkt.payload + int64(i))
		if err != nil {
			return 0, err
		}
		if err := w.PutUint(uint32(v), 8); err != nil {
			return 0, err
		}
	}
	if err := w.FlushPage(false, false); err != nil {
		return 0, err
	}
	return pkt.next, nil
}

func (d *Descriptor) copySetupTriadPacket(w *bitio.OggWriter, offset int64) (int64, error) {
	pkt, err := d.readPacket8(offset)
	if err != nil {
		return 0, err
	}
	if pkt.granule != 0 {
		return 0, wwerr.NewParseError(-1, "setup packet granule != 0")
	}

	r := bitio.NewReader(d.data, int(pkt.payload))

	packetType, err := r.GetUint(8)
	if err != nil {
		return 0, err
	}
	if packetType != 5 {
		return 0, wwerr.NewParseError(-1, "wrong type for setup packet")
	}
	if err := w.PutUint(packetType, 8); err != nil {
		return 0, err
	}
	for i := 0; i < 6; i++ {
		c, err := r.GetUint(8)
		if err != nil {
			return 0, err
		}
		if err := w.PutUint(c, 8); err != nil {
			return 0, err
		}
	}

	codebookCountLess1, err := r.GetUint(8)
	if err != nil {
		return 0, err
	}
	codebookCount := codebookCountLess1 + 1
	if err := w.PutUint(codebookCountLess1, 8); err != nil {
		return 0, err
	}

	for i := uint32(0); i < codebookCount; i++ {
		if err := codebook.Copy(r, w); err != nil {
			return 0, err
		}
	}

	targetBits := int64(pkt.size) * 8
	for r.TotalBitsRead() < targetBits {
		bit, err := r.GetUint(1)
		if err != nil {
			return 0, err
		}
		if err := w.PutUint(bit, 1); err != nil {
			return 0, err
		}
	}

	if err := w.FlushPage(false, false); err != nil {
		return 0, err
	}
	return pkt.next, nil
}
