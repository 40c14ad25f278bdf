package wem

import (
	"bytes"
	"fmt"

	"github.com/wwiseaudio/wwtools/internal/bitio"
)

// Convert parses a WEM byte buffer and returns a well-formed (but not yet
// regranulated — see internal/revorb) Vorbis-in-OGG byte stream.
func Convert(data []byte, opts Options) ([]byte, error) {
	d, err := Parse(data, opts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := bitio.NewOggWriter(&buf)

	if d.headerTriadPresent {
		if err := d.generateHeaderWithTriad(w); err != nil {
			return nil, err
		}
	} else {
		if err := d.generateIdentification(w); err != nil {
			return nil, err
		}
		if err := d.generateComment(w); err != nil {
			return nil, err
		}
		hdr, err := d.generateSetup(w)
		if err != nil {
			return nil, err
		}
		if err := d.generateAudioPages(w, hdr); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	// Header-triad WEMs still have ordinary audio packets after the triad.
	if err := d.generateAudioPages(w, headerResult{}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GetInfo renders a human-readable summary of the WEM's decoded fields,
// the Go analogue of WwiseRiffVorbis::GetInfo.
func GetInfo(data []byte, opts Options) (string, error) {
	d, err := Parse(data, opts)
	if err != nil {
		return "", err
	}

	var sb bytes.Buffer
	if d.littleEndian {
		sb.WriteString("RIFF WAVE")
	} else {
		sb.WriteString("RIFX WAVE")
	}
	fmt.Fprintf(&sb, " %d channel", d.channels)
	if d.channels != 1 {
		sb.WriteString("s")
	}
	fmt.Fprintf(&sb, " %d Hz %d bps\n", d.sampleRate, d.avgBytesPerSecond*8)
	fmt.Fprintf(&sb, "%d samples\n", d.sampleCount)

	if d.loopCount != 0 {
		fmt.Fprintf(&sb, "loop from %d to %d\n", d.loopStart, d.loopEnd)
	}

	switch {
	case d.oldPacketHeaders:
		sb.WriteString("- 8 byte (old) packet headers\n")
	case d.noGranule:
		sb.WriteString("- 2 byte packet headers, no granule\n")
	default:
		sb.WriteString("- 6 byte packet headers\n")
	}

	if d.headerTriadPresent {
		sb.WriteString("- Vorbis header triad present\n")
	}

	if d.fullSetup || d.headerTriadPresent {
		sb.WriteString("- full setup header\n")
	} else {
		sb.WriteString("- stripped setup header\n")
	}

	if d.inlineCodebooks || d.headerTriadPresent {
		sb.WriteString("- inline codebooks\n")
	}

	if d.modPackets {
		sb.WriteString("- modified Vorbis packets\n")
	} else {
		sb.WriteString("- standard Vorbis packets\n")
	}

	return sb.String(), nil
}
