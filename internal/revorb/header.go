package revorb

import (
	"io"

	"github.com/wwiseaudio/wwtools/internal/bitio"
	"github.com/wwiseaudio/wwtools/internal/codebook"
	"github.com/wwiseaudio/wwtools/internal/wwerr"
)

// parseIdentification reads the canonical identification packet's channel
// count and block-size exponents, the fields revorb.cpp's vorbis_info gets
// from vorbis_synthesis_headerin before any packet is decoded.
func parseIdentification(payload []byte) (channels, blockSize0, blockSize1 uint32, err error) {
	r := bitio.NewReader(payload, 0)

	packetType, err := r.GetUint(8)
	if err != nil {
		return 0, 0, 0, err
	}
	if packetType != 1 {
		return 0, 0, 0, wwerr.NewParseError(-1, "not an identification packet")
	}
	for i := 0; i < 6; i++ { // "vorbis"
		if _, err = r.GetUint(8); err != nil {
			return 0, 0, 0, err
		}
	}
	if _, err = r.GetUint(32); err != nil { // version
		return 0, 0, 0, err
	}
	if channels, err = r.GetUint(8); err != nil {
		return 0, 0, 0, err
	}
	if _, err = r.GetUint(32); err != nil { // sample rate
		return 0, 0, 0, err
	}
	if _, err = r.GetUint(32); err != nil { // bitrate maximum
		return 0, 0, 0, err
	}
	if _, err = r.GetUint(32); err != nil { // bitrate nominal
		return 0, 0, 0, err
	}
	if _, err = r.GetUint(32); err != nil { // bitrate minimum
		return 0, 0, 0, err
	}
	exp0, err := r.GetUint(4)
	if err != nil {
		return 0, 0, 0, err
	}
	exp1, err := r.GetUint(4)
	if err != nil {
		return 0, 0, 0, err
	}
	return channels, 1 << exp0, 1 << exp1, nil
}

// parseSetupModes walks the canonical setup packet far enough to learn each
// mode's blockflag — mirroring internal/wem's generateSetup/rebuildModes,
// but reading a setup packet already in canonical form rather than
// translating from Wwise's compact one. codebooks and the floor/residue/
// mapping sections are skipped rather than reinterpreted: this function
// only needs to land on the modes list with the reader correctly aligned.
func parseSetupModes(payload []byte, channels uint32) (modeBlockflag []bool, modeBits uint, err error) {
	r := bitio.NewReader(payload, 0)

	packetType, err := r.GetUint(8)
	if err != nil {
		return nil, 0, err
	}
	if packetType != 5 {
		return nil, 0, wwerr.NewParseError(-1, "not a setup packet")
	}
	for i := 0; i < 6; i++ { // "vorbis"
		if _, err = r.GetUint(8); err != nil {
			return nil, 0, err
		}
	}

	codebookCountLess1, err := r.GetUint(8)
	if err != nil {
		return nil, 0, err
	}
	codebookCount := codebookCountLess1 + 1

	sink := bitio.NewOggWriter(io.Discard)
	for i := uint32(0); i < codebookCount; i++ {
		if err := codebook.Copy(r, sink); err != nil {
			return nil, 0, err
		}
	}

	if _, err = r.GetUint(6); err != nil { // time domain transform count - 1
		return nil, 0, err
	}
	if _, err = r.GetUint(16); err != nil { // time domain transform placeholder
		return nil, 0, err
	}

	if err := skipFloors(r); err != nil {
		return nil, 0, err
	}
	if err := skipResidues(r); err != nil {
		return nil, 0, err
	}
	if err := skipMappings(r, channels); err != nil {
		return nil, 0, err
	}

	modeCountLess1, err := r.GetUint(6)
	if err != nil {
		return nil, 0, err
	}
	modeCount := modeCountLess1 + 1

	modeBlockflag = make([]bool, modeCount)
	for i := uint32(0); i < modeCount; i++ {
		blockflag, err := r.GetUint(1)
		if err != nil {
			return nil, 0, err
		}
		modeBlockflag[i] = blockflag != 0
		if _, err := r.GetUint(16); err != nil { // windowtype
			return nil, 0, err
		}
		if _, err := r.GetUint(16); err != nil { // transformtype
			return nil, 0, err
		}
		if _, err := r.GetUint(8); err != nil { // mapping
			return nil, 0, err
		}
	}
	return modeBlockflag, codebook.Ilog(modeCount - 1), nil
}

func skipFloors(r *bitio.Reader) error {
	countLess1, err := r.GetUint(6)
	if err != nil {
		return err
	}
	count := countLess1 + 1

	for i := uint32(0); i < count; i++ {
		floorType, err := r.GetUint(16)
		if err != nil {
			return err
		}
		if floorType != 1 {
			return wwerr.NewParseError(-1, "unsupported floor type in setup packet")
		}

		partitions, err := r.GetUint(5)
		if err != nil {
			return err
		}
		partitionClass := make([]uint32, partitions)
		var maxClass uint32
		for j := uint32(0); j < partitions; j++ {
			class, err := r.GetUint(4)
			if err != nil {
				return err
			}
			partitionClass[j] = class
			if class > maxClass {
				maxClass = class
			}
		}

		classDimensions := make([]uint32, maxClass+1)
		for j := uint32(0); j <= maxClass; j++ {
			dimLess1, err := r.GetUint(3)
			if err != nil {
				return err
			}
			classDimensions[j] = dimLess1 + 1

			subclasses, err := r.GetUint(2)
			if err != nil {
				return err
			}
			if subclasses != 0 {
				if _, err := r.GetUint(8); err != nil { // masterbook
					return err
				}
			}
			for k := uint32(0); k < (1 << subclasses); k++ {
				if _, err := r.GetUint(8); err != nil { // subclass book + 1
					return err
				}
			}
		}

		if _, err := r.GetUint(2); err != nil { // multiplier - 1
			return err
		}
		rangebits, err := r.GetUint(4)
		if err != nil {
			return err
		}
		for j := uint32(0); j < partitions; j++ {
			for k := uint32(0); k < classDimensions[partitionClass[j]]; k++ {
				if _, err := r.GetUint(uint(rangebits)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func skipResidues(r *bitio.Reader) error {
	countLess1, err := r.GetUint(6)
	if err != nil {
		return err
	}
	count := countLess1 + 1

	for i := uint32(0); i < count; i++ {
		if _, err := r.GetUint(16); err != nil { // residue type
			return err
		}
		if _, err := r.GetUint(24); err != nil { // begin
			return err
		}
		if _, err := r.GetUint(24); err != nil { // end
			return err
		}
		if _, err := r.GetUint(24); err != nil { // partition size - 1
			return err
		}
		classificationsLess1, err := r.GetUint(6)
		if err != nil {
			return err
		}
		classifications := classificationsLess1 + 1
		if _, err := r.GetUint(8); err != nil { // classbook
			return err
		}

		cascade := make([]uint32, classifications)
		for j := uint32(0); j < classifications; j++ {
			lowBits, err := r.GetUint(3)
			if err != nil {
				return err
			}
			flag, err := r.GetUint(1)
			if err != nil {
				return err
			}
			var highBits uint32
			if flag != 0 {
				highBits, err = r.GetUint(5)
				if err != nil {
					return err
				}
			}
			cascade[j] = highBits*8 + lowBits
		}

		for j := uint32(0); j < classifications; j++ {
			for k := uint32(0); k < 8; k++ {
				if cascade[j]&(1<<k) == 0 {
					continue
				}
				if _, err := r.GetUint(8); err != nil { // book
					return err
				}
			}
		}
	}
	return nil
}

func skipMappings(r *bitio.Reader, channels uint32) error {
	countLess1, err := r.GetUint(6)
	if err != nil {
		return err
	}
	count := countLess1 + 1

	for i := uint32(0); i < count; i++ {
		if _, err := r.GetUint(16); err != nil { // mapping type
			return err
		}

		submapsFlag, err := r.GetUint(1)
		if err != nil {
			return err
		}
		submaps := uint32(1)
		if submapsFlag != 0 {
			submapsLess1, err := r.GetUint(4)
			if err != nil {
				return err
			}
			submaps = submapsLess1 + 1
		}

		squarePolarFlag, err := r.GetUint(1)
		if err != nil {
			return err
		}
		if squarePolarFlag != 0 {
			couplingStepsLess1, err := r.GetUint(8)
			if err != nil {
				return err
			}
			couplingSteps := couplingStepsLess1 + 1
			bits := codebook.Ilog(channels - 1)
			for j := uint32(0); j < couplingSteps; j++ {
				if _, err := r.GetUint(bits); err != nil { // magnitude
					return err
				}
				if _, err := r.GetUint(bits); err != nil { // angle
					return err
				}
			}
		}

		if _, err := r.GetUint(2); err != nil { // reserved
			return err
		}

		if submaps > 1 {
			for j := uint32(0); j < channels; j++ {
				if _, err := r.GetUint(4); err != nil { // mux
					return err
				}
			}
		}

		for j := uint32(0); j < submaps; j++ {
			if _, err := r.GetUint(8); err != nil { // time config
				return err
			}
			if _, err := r.GetUint(8); err != nil { // floor number
				return err
			}
			if _, err := r.GetUint(8); err != nil { // residue number
				return err
			}
		}
	}
	return nil
}
