package revorb

import (
	"github.com/wwiseaudio/wwtools/internal/bitio"
	"github.com/wwiseaudio/wwtools/internal/wwerr"
)

// blockSizeOracle answers vorbis_packet_blocksize(vi, packet) for the
// audio packets of one stream, per original_source/src/revorb/revorb.cpp's
// Revorb(). It is built once from the stream's identification and setup
// packets and then consulted per audio packet — no PCM is ever decoded,
// matching revorb.cpp's use of vorbis_packet_blocksize rather than
// vorbis_synthesis/vorbis_synthesis_pcmout.
type blockSizeOracle struct {
	blockSize     [2]uint32 // index 0: short block, index 1: long block
	modeBlockflag []bool
	modeBits      uint
}

func newBlockSizeOracle(identPayload, setupPayload []byte) (*blockSizeOracle, error) {
	channels, bs0, bs1, err := parseIdentification(identPayload)
	if err != nil {
		return nil, &wwerr.RegranulationFailed{Reason: "parsing identification packet: " + err.Error()}
	}
	modeBlockflag, modeBits, err := parseSetupModes(setupPayload, channels)
	if err != nil {
		return nil, &wwerr.RegranulationFailed{Reason: "parsing setup packet: " + err.Error()}
	}
	return &blockSizeOracle{
		blockSize:     [2]uint32{bs0, bs1},
		modeBlockflag: modeBlockflag,
		modeBits:      modeBits,
	}, nil
}

// blockSizeOf returns the block size of one audio packet, read from its
// mode number per the Vorbis audio packet header (packet type bit, then
// mode number, per spec.md §G1's audio-packet layout).
func (o *blockSizeOracle) blockSizeOf(packet []byte) (uint32, error) {
	r := bitio.NewReader(packet, 0)

	packetType, err := r.GetUint(1)
	if err != nil {
		return 0, err
	}
	if packetType != 0 {
		return 0, wwerr.NewParseError(-1, "not an audio packet")
	}

	mode, err := r.GetUint(o.modeBits)
	if err != nil {
		return 0, err
	}
	if int(mode) >= len(o.modeBlockflag) {
		return 0, wwerr.NewParseError(-1, "mode number out of range")
	}
	if o.modeBlockflag[mode] {
		return o.blockSize[1], nil
	}
	return o.blockSize[0], nil
}
