// Package wwtools converts Wwise WEM audio assets into standards-compliant
// OGG Vorbis files and extracts/reports on embedded audio within Wwise BNK
// soundbanks, grounded on original_source/src/wwtools.cpp's wem_to_ogg and
// bnk_extract wiring.
package wwtools

import (
	"fmt"

	"github.com/wwiseaudio/wwtools/internal/bnk"
	"github.com/wwiseaudio/wwtools/internal/revorb"
	"github.com/wwiseaudio/wwtools/internal/wem"
)

// BnkWem is one WEM referenced by a BNK, with its streaming status — the
// Go analogue of the original's wwtools::BnkWem struct.
type BnkWem struct {
	ID       uint32
	Streamed bool
	Data     []byte // full WEM for embedded entries, nil for streamed ones
}

// WemToOgg converts a single WEM byte buffer into a well-formed OGG Vorbis
// byte stream: C3 reconstructs the header and audio pages, then C4
// corrects the granule positions C3 leaves as placeholders.
func WemToOgg(data []byte, opts wem.Options) ([]byte, error) {
	unregranulated, err := wem.Convert(data, opts)
	if err != nil {
		return nil, fmt.Errorf("converting WEM to OGG: %w", err)
	}
	out, err := revorb.Regranulate(unregranulated)
	if err != nil {
		return nil, fmt.Errorf("regranulating: %w", err)
	}
	return out, nil
}

// WemInfo reports the decoded fields of a WEM without converting it.
func WemInfo(data []byte, opts wem.Options) (string, error) {
	return wem.GetInfo(data, opts)
}

// BnkExtract decodes every WEM reference in a BNK soundbank, embedded or
// streamed, mirroring wwtools::bnk_extract.
func BnkExtract(data []byte) ([]BnkWem, error) {
	b, err := bnk.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing BNK: %w", err)
	}
	entries := b.Entries()
	out := make([]BnkWem, len(entries))
	for i, e := range entries {
		out[i] = BnkWem{ID: e.ID, Streamed: e.Streamed, Data: e.Data}
	}
	return out, nil
}

// BnkEventReport renders the event -> audio-file report for a BNK
// soundbank, optionally filtered to a single decimal event id.
func BnkEventReport(data []byte, eventIDFilter string) (string, error) {
	b, err := bnk.Parse(data)
	if err != nil {
		return "", fmt.Errorf("parsing BNK: %w", err)
	}
	return b.EventReport(eventIDFilter), nil
}

// BnkInfo renders a human-readable BNK header/data-index summary.
func BnkInfo(data []byte) (string, error) {
	b, err := bnk.Parse(data)
	if err != nil {
		return "", fmt.Errorf("parsing BNK: %w", err)
	}
	return b.GetInfo(), nil
}
