package wem

import (
	"github.com/wwiseaudio/wwtools/internal/bitio"
	"github.com/wwiseaudio/wwtools/internal/wwerr"
)

// generateAudioPages iterates the data chunk's audio packets and emits one
// OGG page per packet, per spec.md §4.3.6.
func (d *Descriptor) generateAudioPages(w *bitio.OggWriter, hdr headerResult) error {
	dataEnd := d.dataChunk.offset + d.dataChunk.size
	offset := d.dataChunk.offset + int64(d.firstAudioPacketOffset)
	prevBlockflag := false

	for offset < dataEnd {
		pkt, err := d.readPacket(offset, d.oldPacketHeaders, d.noGranule)
		if err != nil {
			return err
		}
		if offset+pkt.headerSize > dataEnd {
			return wwerr.NewParseError(offset, "page header truncated")
		}

		granule := pkt.granule
		if granule == 0xFFFFFFFF {
			w.SetGranule(1)
		} else {
			w.SetGranule(granule)
		}

		var heldRemainder uint32

		if d.modPackets {
			if len(hdr.modeBlockflag) == 0 {
				return wwerr.NewParseError(-1, "didn't load mode_blockflag")
			}
			if err := w.PutUint(0, 1); err != nil { // packet type, 0 == audio
				return err
			}

			r := bitio.NewReader(d.data, int(pkt.payload))
			modeNumber, err := r.GetUint(hdr.modeBits)
			if err != nil {
				return err
			}
			if err := w.PutUint(modeNumber, hdr.modeBits); err != nil {
				return err
			}
			remainder, err := r.GetUint(8 - hdr.modeBits)
			if err != nil {
				return err
			}
			heldRemainder = remainder

			if hdr.modeBlockflag[modeNumber] {
				nextBlockflag := false
				if pkt.next+pkt.headerSize <= dataEnd {
					nextPkt, err := d.readPacket(pkt.next, false, d.noGranule)
					if err == nil && nextPkt.size > 0 {
						nr := bitio.NewReader(d.data, int(nextPkt.payload))
						nextMode, err := nr.GetUint(hdr.modeBits)
						if err == nil {
							nextBlockflag = hdr.modeBlockflag[nextMode]
						}
					}
				}

				prevBit := uint32(0)
				if prevBlockflag {
					prevBit = 1
				}
				if err := w.PutUint(prevBit, 1); err != nil {
					return err
				}
				nextBit := uint32(0)
				if nextBlockflag {
					nextBit = 1
				}
				if err := w.PutUint(nextBit, 1); err != nil {
					return err
				}
			}

			prevBlockflag = hdr.modeBlockflag[modeNumber]

			if err := w.PutUint(heldRemainder, 8-hdr.modeBits); err != nil {
				return err
			}
		} else {
			v, err := d.byteAt(pkt.payload)
			if err != nil {
				return err
			}
			if err := w.PutUint(uint32(v), 8); err != nil {
				return err
			}
		}

		for i := uint32(1); i < pkt.size; i++ {
			v, err := d.byteAt(pkt.payload + int64(i))
			if err != nil {
				return err
			}
			if err := w.PutUint(uint32(v), 8); err != nil {
				return err
			}
		}

		offset = pkt.next
		if err := w.FlushPage(false, offset == dataEnd); err != nil {
			return err
		}
	}
	if offset > dataEnd {
		return wwerr.NewParseError(offset, "page truncated")
	}
	return nil
}
