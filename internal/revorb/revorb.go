// Package revorb recomputes OGG page granule positions for a Vorbis
// stream whose packet framing is already correct but whose granule field
// is a placeholder — the second pass C3's WEM reconstruction (internal/wem)
// leaves for this package to fix, grounded on
// original_source/src/revorb/revorb.{h,cpp}.
package revorb

import (
	"github.com/wwiseaudio/wwtools/internal/wwerr"
)

const noGranule = 0xFFFFFFFFFFFFFFFF

// Regranulate takes a well-formed OGG Vorbis byte stream (correct packet
// framing, placeholder granule positions) and returns an equivalent stream
// with every page's granule position corrected, per spec.md §4.4.
//
// Granule positions accumulate by (lastBlockSize+blockSize)/4 per audio
// packet — the overlap-add sample count libvorbis's own revorb derives via
// vorbis_packet_blocksize, per
// original_source/src/revorb/revorb.cpp's Revorb().
func Regranulate(data []byte) ([]byte, error) {
	pages, err := readPages(data)
	if err != nil {
		return nil, &wwerr.RegranulationFailed{Reason: err.Error()}
	}
	if len(pages) < 4 {
		return nil, &wwerr.RegranulationFailed{Reason: "fewer than 3 header pages + 1 audio page"}
	}

	oracle, err := newBlockSizeOracle(pages[0].payload, pages[2].payload)
	if err != nil {
		return nil, err
	}

	// The first three pages are the identification/comment/setup packets;
	// their granule position is always 0 and needs no correction.
	for i := 0; i < 3; i++ {
		pages[i].granule = 0
	}

	var granule uint64
	var lastBlockSize uint32
	for i := 3; i < len(pages); i++ {
		packets := pages[i].packetsCompletedHere()
		if len(packets) == 0 {
			pages[i].granule = noGranule
			continue
		}
		for _, packet := range packets {
			bs, err := oracle.blockSizeOf(packet)
			if err != nil {
				return nil, &wwerr.RegranulationFailed{Reason: "reading packet block size: " + err.Error()}
			}
			if lastBlockSize != 0 {
				granule += uint64(lastBlockSize+bs) / 4
			}
			lastBlockSize = bs
		}
		pages[i].granule = granule
	}
	pages[len(pages)-1].last = true

	out := make([]byte, 0, len(data))
	for _, p := range pages {
		out = append(out, writePage(p)...)
	}
	return out, nil
}
