package bnk

import (
	"fmt"
	"strconv"
	"strings"
)

// Entry is one embedded-or-streamed WEM reference, as zipped together by
// Entries.
type Entry struct {
	ID       uint32
	Streamed bool
	Data     []byte // full WEM for embedded entries, nil for streamed ones
}

// Extract returns the embedded WEM payloads found via DIDX+DATA, in DIDX
// order, per spec.md §4.5's extract(bnk) operation. Returns nil (not an
// error) when DATA is missing.
func (b *Bank) Extract() [][]byte {
	if !b.haveDATA || !b.haveDIDX {
		return nil
	}
	out := make([][]byte, 0, len(b.didx))
	for _, e := range b.didx {
		end := e.offset + e.size
		if int64(end) > int64(len(b.dataPayload)) {
			continue
		}
		out = append(out, b.dataPayload[e.offset:end])
	}
	return out
}

// WemIDs returns the DIDX ids in order.
func (b *Bank) WemIDs() []uint32 {
	ids := make([]uint32, len(b.didx))
	for i, e := range b.didx {
		ids[i] = e.id
	}
	return ids
}

// StreamedIDs scans HIRC for SFX/Voice objects flagged as streamed and
// returns their audio file ids.
func (b *Bank) StreamedIDs() []uint32 {
	var ids []uint32
	for _, o := range b.hirc {
		if o.objType != objectTypeSoundEffectOrVoice {
			continue
		}
		sfx, err := o.asSoundEffectOrVoice()
		if err != nil {
			continue
		}
		if sfx.includedOrStreamed != 0 {
			ids = append(ids, sfx.audioFileID)
		}
	}
	return ids
}

// Entries zips DIDX ids and payloads together, marking an entry streamed
// when its id appears in StreamedIDs. Loading a streamed entry's external
// <id>.wem file is the CLI's job, not this package's.
func (b *Bank) Entries() []Entry {
	streamed := make(map[uint32]bool)
	for _, id := range b.StreamedIDs() {
		streamed[id] = true
	}

	payloads := b.Extract()
	entries := make([]Entry, len(b.didx))
	for i, e := range b.didx {
		entries[i] = Entry{ID: e.id, Streamed: streamed[e.id]}
		if !entries[i].Streamed && i < len(payloads) {
			entries[i].Data = payloads[i]
		}
	}
	return entries
}

// GetInfo renders a human-readable summary of the bank header and data
// index, the Go analogue of wwtools::bnk::GetInfo.
func (b *Bank) GetInfo() string {
	var sb strings.Builder
	if b.haveBKHD {
		fmt.Fprintf(&sb, "Version: %d\n", b.bkhdVersion)
		fmt.Fprintf(&sb, "Soundbank ID: %d\n", b.bkhdID)
	}
	if b.haveDIDX {
		fmt.Fprintf(&sb, "%d embedded WEM files:\n", len(b.didx))
		for _, e := range b.didx {
			fmt.Fprintf(&sb, "\t%d\n", e.id)
		}
	}
	return sb.String()
}

func actionTypeLabel(t byte) string {
	switch t {
	case ActionTypePlay:
		return "play"
	case ActionTypePause:
		return "pause"
	case ActionTypeStop:
		return "stop"
	case ActionTypeResume:
		return "resume"
	default:
		return strconv.Itoa(int(t))
	}
}
