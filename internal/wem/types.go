// Package wem parses the Wwise WEM container (a RIFF wrapper around a
// stripped Vorbis bitstream) and reconstructs a standards-compliant OGG
// Vorbis stream from it, grounded on
// original_source/src/ww2ogg/wwriff.{h,cpp}.
package wem

// ForcePacketFormat overrides the mod_packets flag derived from the vorb
// chunk, mirroring the command-line overrides in wwriff.h.
type ForcePacketFormat int

const (
	NoForcePacketFormat ForcePacketFormat = iota
	ForceModPackets
	ForceNoModPackets
)

// Options configures how a Descriptor rebuilds the Vorbis header.
type Options struct {
	// CodebooksData is the packed external codebook library, used unless
	// InlineCodebooks is set.
	CodebooksData []byte
	// InlineCodebooks treats the setup packet's codebooks as already
	// present in the WEM rather than referenced by external id.
	InlineCodebooks bool
	// FullSetup treats inline codebooks as already fully canonical
	// (skips floor/residue/mapping/mode reconstruction).
	FullSetup bool
	ForcePacketFormat ForcePacketFormat
}

// chunk records a RIFF subchunk's payload location.
type chunk struct {
	offset int64
	size   int64
}

// Descriptor holds every field decoded from a WEM's fmt/vorb/smpl chunks —
// the Go analogue of WwiseRiffVorbis's private field list.
type Descriptor struct {
	data []byte

	littleEndian bool
	riffSize     int64

	fmtChunk  chunk
	cueChunk  chunk
	listChunk chunk
	smplChunk chunk
	vorbChunk chunk
	dataChunk chunk
	haveCue   bool
	haveList  bool
	haveSmpl  bool
	haveVorb  bool

	channels           uint32
	sampleRate         uint32
	avgBytesPerSecond  uint32
	extUnknown         uint32
	subtype            uint32

	cueCount uint32

	loopCount uint32
	loopStart uint32
	loopEnd   uint32

	sampleCount             uint32
	setupPacketOffset       uint32
	firstAudioPacketOffset  uint32
	uid                     uint32
	blockSize0Pow           uint8
	blockSize1Pow           uint8

	headerTriadPresent bool
	oldPacketHeaders   bool
	noGranule          bool
	modPackets         bool

	inlineCodebooks bool
	fullSetup       bool
	codebooksData   []byte
}
