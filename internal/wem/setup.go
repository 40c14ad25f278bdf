package wem

import (
	"github.com/wwiseaudio/wwtools/internal/bitio"
	"github.com/wwiseaudio/wwtools/internal/codebook"
	"github.com/wwiseaudio/wwtools/internal/wwerr"
)

const vendorString = "converted from Audiokinetic Wwise by ww2ogg 0.24"

// headerResult carries the per-mode block-size flags the audio-packet loop
// needs to reconstruct "modified" packet first bytes.
type headerResult struct {
	modeBlockflag []bool
	modeBits      uint
}

// generateIdentification writes the identification packet (type 1) on its
// own OGG page, per spec.md §4.3.5.1.
func (d *Descriptor) generateIdentification(w *bitio.OggWriter) error {
	if err := writeVorbisPacketHeader(w, 1); err != nil {
		return err
	}
	if err := w.PutUint(0, 32); err != nil { // version
		return err
	}
	if err := w.PutUint(d.channels, 8); err != nil {
		return err
	}
	if err := w.PutUint(d.sampleRate, 32); err != nil {
		return err
	}
	if err := w.PutUint(0, 32); err != nil { // bitrate_maximum
		return err
	}
	if err := w.PutUint(d.avgBytesPerSecond*8, 32); err != nil { // bitrate_nominal
		return err
	}
	if err := w.PutUint(0, 32); err != nil { // bitrate_minimum
		return err
	}
	if err := w.PutUint(uint32(d.blockSize0Pow), 4); err != nil {
		return err
	}
	if err := w.PutUint(uint32(d.blockSize1Pow), 4); err != nil {
		return err
	}
	if err := w.PutUint(1, 1); err != nil { // framing
		return err
	}
	return w.FlushPage(false, false)
}

// generateComment writes the comment packet (type 3), including loop tags
// when a single loop is present, per spec.md §4.3.5.2.
func (d *Descriptor) generateComment(w *bitio.OggWriter) error {
	if err := writeVorbisPacketHeader(w, 3); err != nil {
		return err
	}
	if err := writeVorbisString(w, vendorString); err != nil {
		return err
	}

	if d.loopCount == 0 {
		if err := w.PutUint(0, 32); err != nil {
			return err
		}
	} else {
		if err := w.PutUint(2, 32); err != nil {
			return err
		}
		if err := writeVorbisString(w, formatUint("LoopStart=", d.loopStart)); err != nil {
			return err
		}
		if err := writeVorbisString(w, formatUint("LoopEnd=", d.loopEnd)); err != nil {
			return err
		}
	}

	if err := w.PutUint(1, 1); err != nil {
		return err
	}
	return w.FlushPage(false, false)
}

func writeVorbisPacketHeader(w *bitio.OggWriter, packetType uint32) error {
	if err := w.PutUint(packetType, 8); err != nil {
		return err
	}
	for _, c := range []byte("vorbis") {
		if err := w.PutUint(uint32(c), 8); err != nil {
			return err
		}
	}
	return nil
}

func writeVorbisString(w *bitio.OggWriter, s string) error {
	if err := w.PutUint(uint32(len(s)), 32); err != nil {
		return err
	}
	for _, c := range []byte(s) {
		if err := w.PutUint(uint32(c), 8); err != nil {
			return err
		}
	}
	return nil
}

func formatUint(prefix string, v uint32) string {
	// avoid importing strconv/fmt for a single-field render; matches the
	// trivial "LoopStart=<n>" shape the comment packet needs.
	digits := [10]byte{}
	i := len(digits)
	if v == 0 {
		i--
		digits[i] = '0'
	}
	for v > 0 {
		i--
		digits[i] = byte('0' + v%10)
		v /= 10
	}
	return prefix + string(digits[i:])
}

// generateSetup reconstructs the setup packet (type 5): codebooks, time
// placeholder, and — unless full_setup — floors/residues/mappings/modes,
// per spec.md §4.3.5.3 and glossary §G1.
func (d *Descriptor) generateSetup(w *bitio.OggWriter) (headerResult, error) {
	var res headerResult

	pkt, err := d.readPacket(d.dataChunk.offset+int64(d.setupPacketOffset), false, d.noGranule)
	if err != nil {
		return res, err
	}
	if pkt.granule != 0 {
		return res, wwerr.NewParseError(-1, "setup packet granule != 0")
	}

	r := bitio.NewReader(d.data, int(pkt.payload))

	if err := writeVorbisPacketHeader(w, 5); err != nil {
		return res, err
	}

	codebookCountLess1, err := r.GetUint(8)
	if err != nil {
		return res, err
	}
	codebookCount := codebookCountLess1 + 1
	if err := w.PutUint(codebookCountLess1, 8); err != nil {
		return res, err
	}

	if err := d.rebuildCodebooks(r, w, codebookCount); err != nil {
		return res, err
	}

	// time domain transform placeholder
	if err := w.PutUint(0, 6); err != nil {
		return res, err
	}
	if err := w.PutUint(0, 16); err != nil {
		return res, err
	}

	if d.fullSetup {
		targetBits := int64(pkt.size) * 8
		for r.TotalBitsRead() < targetBits {
			bit, err := r.GetUint(1)
			if err != nil {
				return res, err
			}
			if err := w.PutUint(bit, 1); err != nil {
				return res, err
			}
		}
	} else {
		floorCount, err := d.rebuildFloors(r, w, codebookCount)
		if err != nil {
			return res, err
		}
		residueCount, err := d.rebuildResidues(r, w, codebookCount)
		if err != nil {
			return res, err
		}
		mappingCount, err := d.rebuildMappings(r, w, floorCount, residueCount)
		if err != nil {
			return res, err
		}
		res, err = d.rebuildModes(r, w, mappingCount)
		if err != nil {
			return res, err
		}
		if err := w.PutUint(1, 1); err != nil { // framing
			return res, err
		}
	}

	if err := w.FlushPage(false, false); err != nil {
		return res, err
	}

	if (r.TotalBitsRead()+7)/8 != int64(pkt.size) {
		return res, wwerr.NewParseError(-1, "didn't read exactly setup packet")
	}
	if pkt.next != d.dataChunk.offset+int64(d.firstAudioPacketOffset) {
		return res, wwerr.NewParseError(-1, "first audio packet doesn't follow setup packet")
	}
	return res, nil
}

func (d *Descriptor) rebuildCodebooks(r *bitio.Reader, w *bitio.OggWriter, count uint32) error {
	if d.inlineCodebooks {
		for i := uint32(0); i < count; i++ {
			var err error
			if d.fullSetup {
				err = codebook.Copy(r, w)
			} else {
				err = codebook.Rebuild(r, 0, w)
			}
			if err != nil {
				return err
			}
		}
		return nil
	}

	lib, err := codebook.Load(d.codebooksData)
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		id, err := r.GetUint(10)
		if err != nil {
			return err
		}
		err = lib.RebuildByID(int(id), w)
		if err != nil {
			if _, ok := err.(*wwerr.InvalidCodebookID); ok && id == 0x342 {
				hint, peekErr := r.GetUint(14)
				if peekErr == nil && hint == 0x1590 {
					return wwerr.NewParseError(-1, "invalid codebook id 0x342, try --full-setup")
				}
			}
			return err
		}
	}
	return nil
}

func (d *Descriptor) rebuildFloors(r *bitio.Reader, w *bitio.OggWriter, codebookCount uint32) (uint32, error) {
	floorCountLess1, err := r.GetUint(6)
	if err != nil {
		return 0, err
	}
	floorCount := floorCountLess1 + 1
	if err := w.PutUint(floorCountLess1, 6); err != nil {
		return 0, err
	}

	for i := uint32(0); i < floorCount; i++ {
		if err := w.PutUint(1, 16); err != nil { // floor type, always 1
			return 0, err
		}

		partitions, err := r.GetUint(5)
		if err != nil {
			return 0, err
		}
		if err := w.PutUint(partitions, 5); err != nil {
			return 0, err
		}

		partitionClassList := make([]uint32, partitions)
		var maxClass uint32
		for j := uint32(0); j < partitions; j++ {
			class, err := r.GetUint(4)
			if err != nil {
				return 0, err
			}
			if err := w.PutUint(class, 4); err != nil {
				return 0, err
			}
			partitionClassList[j] = class
			if class > maxClass {
				maxClass = class
			}
		}

		classDimensions := make([]uint32, maxClass+1)
		for j := uint32(0); j <= maxClass; j++ {
			dimLess1, err := r.GetUint(3)
			if err != nil {
				return 0, err
			}
			if err := w.PutUint(dimLess1, 3); err != nil {
				return 0, err
			}
			classDimensions[j] = dimLess1 + 1

			subclasses, err := r.GetUint(2)
			if err != nil {
				return 0, err
			}
			if err := w.PutUint(subclasses, 2); err != nil {
				return 0, err
			}

			if subclasses != 0 {
				masterbook, err := r.GetUint(8)
				if err != nil {
					return 0, err
				}
				if err := w.PutUint(masterbook, 8); err != nil {
					return 0, err
				}
				if masterbook >= codebookCount {
					return 0, wwerr.NewParseError(-1, "invalid floor1 masterbook")
				}
			}

			for k := uint32(0); k < (1 << subclasses); k++ {
				bookPlus1, err := r.GetUint(8)
				if err != nil {
					return 0, err
				}
				if err := w.PutUint(bookPlus1, 8); err != nil {
					return 0, err
				}
				book := int64(bookPlus1) - 1
				if book >= 0 && uint32(book) >= codebookCount {
					return 0, wwerr.NewParseError(-1, "invalid floor1 subclass book")
				}
			}
		}

		multLess1, err := r.GetUint(2)
		if err != nil {
			return 0, err
		}
		if err := w.PutUint(multLess1, 2); err != nil {
			return 0, err
		}

		rangebits, err := r.GetUint(4)
		if err != nil {
			return 0, err
		}
		if err := w.PutUint(rangebits, 4); err != nil {
			return 0, err
		}

		for j := uint32(0); j < partitions; j++ {
			class := partitionClassList[j]
			for k := uint32(0); k < classDimensions[class]; k++ {
				x, err := r.GetUint(uint(rangebits))
				if err != nil {
					return 0, err
				}
				if err := w.PutUint(x, uint(rangebits)); err != nil {
					return 0, err
				}
			}
		}
	}
	return floorCount, nil
}

func (d *Descriptor) rebuildResidues(r *bitio.Reader, w *bitio.OggWriter, codebookCount uint32) (uint32, error) {
	residueCountLess1, err := r.GetUint(6)
	if err != nil {
		return 0, err
	}
	residueCount := residueCountLess1 + 1
	if err := w.PutUint(residueCountLess1, 6); err != nil {
		return 0, err
	}

	for i := uint32(0); i < residueCount; i++ {
		residueType, err := r.GetUint(2)
		if err != nil {
			return 0, err
		}
		if err := w.PutUint(residueType, 16); err != nil {
			return 0, err
		}
		if residueType > 2 {
			return 0, wwerr.NewParseError(-1, "invalid residue type")
		}

		begin, err := r.GetUint(24)
		if err != nil {
			return 0, err
		}
		end, err := r.GetUint(24)
		if err != nil {
			return 0, err
		}
		partitionSizeLess1, err := r.GetUint(24)
		if err != nil {
			return 0, err
		}
		classificationsLess1, err := r.GetUint(6)
		if err != nil {
			return 0, err
		}
		classbook, err := r.GetUint(8)
		if err != nil {
			return 0, err
		}
		classifications := classificationsLess1 + 1

		if err := w.PutUint(begin, 24); err != nil {
			return 0, err
		}
		if err := w.PutUint(end, 24); err != nil {
			return 0, err
		}
		if err := w.PutUint(partitionSizeLess1, 24); err != nil {
			return 0, err
		}
		if err := w.PutUint(classificationsLess1, 6); err != nil {
			return 0, err
		}
		if err := w.PutUint(classbook, 8); err != nil {
			return 0, err
		}

		if classbook >= codebookCount {
			return 0, wwerr.NewParseError(-1, "invalid residue classbook")
		}

		cascade := make([]uint32, classifications)
		for j := uint32(0); j < classifications; j++ {
			lowBits, err := r.GetUint(3)
			if err != nil {
				return 0, err
			}
			if err := w.PutUint(lowBits, 3); err != nil {
				return 0, err
			}

			flag, err := r.GetUint(1)
			if err != nil {
				return 0, err
			}
			if err := w.PutUint(flag, 1); err != nil {
				return 0, err
			}

			var highBits uint32
			if flag != 0 {
				highBits, err = r.GetUint(5)
				if err != nil {
					return 0, err
				}
				if err := w.PutUint(highBits, 5); err != nil {
					return 0, err
				}
			}
			cascade[j] = highBits*8 + lowBits
		}

		for j := uint32(0); j < classifications; j++ {
			for k := uint32(0); k < 8; k++ {
				if cascade[j]&(1<<k) == 0 {
					continue
				}
				book, err := r.GetUint(8)
				if err != nil {
					return 0, err
				}
				if err := w.PutUint(book, 8); err != nil {
					return 0, err
				}
				if book >= codebookCount {
					return 0, wwerr.NewParseError(-1, "invalid residue book")
				}
			}
		}
	}
	return residueCount, nil
}

func (d *Descriptor) rebuildMappings(r *bitio.Reader, w *bitio.OggWriter, floorCount, residueCount uint32) (uint32, error) {
	mappingCountLess1, err := r.GetUint(6)
	if err != nil {
		return 0, err
	}
	mappingCount := mappingCountLess1 + 1
	if err := w.PutUint(mappingCountLess1, 6); err != nil {
		return 0, err
	}

	for i := uint32(0); i < mappingCount; i++ {
		if err := w.PutUint(0, 16); err != nil { // mapping type, always 0
			return 0, err
		}

		submapsFlag, err := r.GetUint(1)
		if err != nil {
			return 0, err
		}
		if err := w.PutUint(submapsFlag, 1); err != nil {
			return 0, err
		}

		submaps := uint32(1)
		if submapsFlag != 0 {
			submapsLess1, err := r.GetUint(4)
			if err != nil {
				return 0, err
			}
			submaps = submapsLess1 + 1
			if err := w.PutUint(submapsLess1, 4); err != nil {
				return 0, err
			}
		}

		squarePolarFlag, err := r.GetUint(1)
		if err != nil {
			return 0, err
		}
		if err := w.PutUint(squarePolarFlag, 1); err != nil {
			return 0, err
		}

		if squarePolarFlag != 0 {
			couplingStepsLess1, err := r.GetUint(8)
			if err != nil {
				return 0, err
			}
			couplingSteps := couplingStepsLess1 + 1
			if err := w.PutUint(couplingStepsLess1, 8); err != nil {
				return 0, err
			}

			bits := codebook.Ilog(d.channels - 1)
			for j := uint32(0); j < couplingSteps; j++ {
				magnitude, err := r.GetUint(bits)
				if err != nil {
					return 0, err
				}
				angle, err := r.GetUint(bits)
				if err != nil {
					return 0, err
				}
				if err := w.PutUint(magnitude, bits); err != nil {
					return 0, err
				}
				if err := w.PutUint(angle, bits); err != nil {
					return 0, err
				}
				if angle == magnitude || magnitude >= d.channels || angle >= d.channels {
					return 0, wwerr.NewParseError(-1, "invalid coupling")
				}
			}
		}

		reserved, err := r.GetUint(2)
		if err != nil {
			return 0, err
		}
		if err := w.PutUint(reserved, 2); err != nil {
			return 0, err
		}
		if reserved != 0 {
			return 0, wwerr.NewParseError(-1, "mapping reserved field nonzero")
		}

		if submaps > 1 {
			for j := uint32(0); j < d.channels; j++ {
				mux, err := r.GetUint(4)
				if err != nil {
					return 0, err
				}
				if err := w.PutUint(mux, 4); err != nil {
					return 0, err
				}
				if mux >= submaps {
					return 0, wwerr.NewParseError(-1, "mapping_mux >= submaps")
				}
			}
		}

		for j := uint32(0); j < submaps; j++ {
			timeConfig, err := r.GetUint(8)
			if err != nil {
				return 0, err
			}
			if err := w.PutUint(timeConfig, 8); err != nil {
				return 0, err
			}

			floorNumber, err := r.GetUint(8)
			if err != nil {
				return 0, err
			}
			if err := w.PutUint(floorNumber, 8); err != nil {
				return 0, err
			}
			if floorNumber >= floorCount {
				return 0, wwerr.NewParseError(-1, "invalid floor mapping")
			}

			residueNumber, err := r.GetUint(8)
			if err != nil {
				return 0, err
			}
			if err := w.PutUint(residueNumber, 8); err != nil {
				return 0, err
			}
			if residueNumber >= residueCount {
				return 0, wwerr.NewParseError(-1, "invalid residue mapping")
			}
		}
	}
	return mappingCount, nil
}

func (d *Descriptor) rebuildModes(r *bitio.Reader, w *bitio.OggWriter, mappingCount uint32) (headerResult, error) {
	var res headerResult

	modeCountLess1, err := r.GetUint(6)
	if err != nil {
		return res, err
	}
	modeCount := modeCountLess1 + 1
	if err := w.PutUint(modeCountLess1, 6); err != nil {
		return res, err
	}

	res.modeBlockflag = make([]bool, modeCount)
	res.modeBits = codebook.Ilog(modeCount - 1)

	for i := uint32(0); i < modeCount; i++ {
		blockFlag, err := r.GetUint(1)
		if err != nil {
			return res, err
		}
		if err := w.PutUint(blockFlag, 1); err != nil {
			return res, err
		}
		res.modeBlockflag[i] = blockFlag != 0

		if err := w.PutUint(0, 16); err != nil { // windowtype, always 0
			return res, err
		}
		if err := w.PutUint(0, 16); err != nil { // transformtype, always 0
			return res, err
		}

		mapping, err := r.GetUint(8)
		if err != nil {
			return res, err
		}
		if err := w.PutUint(mapping, 8); err != nil {
			return res, err
		}
		if mapping >= mappingCount {
			return res, wwerr.NewParseError(-1, "invalid mode mapping")
		}
	}
	return res, nil
}
