package bnk

import (
	"encoding/binary"

	"github.com/wwiseaudio/wwtools/internal/wwerr"
)

// Parse decodes a BNK byte buffer's top-level sections and the ones this
// package understands (BKHD, DIDX, DATA, HIRC, STID), per spec.md §4.5.
// Unrecognised sections are skipped, not rejected.
func Parse(data []byte) (*Bank, error) {
	b := &Bank{data: data}

	sections, err := splitSections(data)
	if err != nil {
		return nil, err
	}

	for _, s := range sections {
		switch s.Tag {
		case "BKHD":
			if err := b.parseBKHD(s.Payload); err != nil {
				return nil, err
			}
		case "DIDX":
			if err := b.parseDIDX(s.Payload); err != nil {
				return nil, err
			}
		case "DATA":
			b.dataPayload = s.Payload
			b.haveDATA = true
		case "HIRC":
			if err := b.parseHIRC(s.Payload); err != nil {
				return nil, err
			}
		case "STID":
			if err := b.parseSTID(s.Payload); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

func splitSections(data []byte) ([]Section, error) {
	var sections []Section
	offset := 0
	for offset < len(data) {
		if offset+8 > len(data) {
			return nil, wwerr.NewParseError(int64(offset), "truncated BNK section header")
		}
		tag := string(data[offset : offset+4])
		size := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		payloadStart := offset + 8
		if int64(payloadStart)+int64(size) > int64(len(data)) {
			return nil, wwerr.NewParseError(int64(offset), "truncated BNK section %q", tag)
		}
		sections = append(sections, Section{Tag: tag, Payload: data[payloadStart : payloadStart+int(size)]})
		offset = payloadStart + int(size)
	}
	return sections, nil
}

func (b *Bank) parseBKHD(payload []byte) error {
	if len(payload) < 8 {
		return &wwerr.Truncated{What: "BKHD", Need: 8, Have: len(payload)}
	}
	b.bkhdVersion = binary.LittleEndian.Uint32(payload[0:4])
	b.bkhdID = binary.LittleEndian.Uint32(payload[4:8])
	b.haveBKHD = true
	return nil
}

func (b *Bank) parseDIDX(payload []byte) error {
	if len(payload)%12 != 0 {
		return wwerr.NewParseError(-1, "DIDX size %d not a multiple of 12", len(payload))
	}
	count := len(payload) / 12
	b.didx = make([]didxEntry, count)
	for i := 0; i < count; i++ {
		off := i * 12
		b.didx[i] = didxEntry{
			id:     binary.LittleEndian.Uint32(payload[off : off+4]),
			offset: binary.LittleEndian.Uint32(payload[off+4 : off+8]),
			size:   binary.LittleEndian.Uint32(payload[off+8 : off+12]),
		}
	}
	b.haveDIDX = true
	return nil
}

func (b *Bank) parseSTID(payload []byte) error {
	// Layout: 4-byte unknown flag, 4-byte entry count, then per entry:
	// {id:4, name_len:1, name:name_len bytes of ASCII}.
	if len(payload) < 8 {
		return &wwerr.Truncated{What: "STID", Need: 8, Have: len(payload)}
	}
	count := binary.LittleEndian.Uint32(payload[4:8])
	pos := 8
	entries := make([]stidEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		if pos+5 > len(payload) {
			return &wwerr.Truncated{What: "STID entry", Need: pos + 5, Have: len(payload)}
		}
		id := binary.LittleEndian.Uint32(payload[pos : pos+4])
		nameLen := int(payload[pos+4])
		pos += 5
		if pos+nameLen > len(payload) {
			return &wwerr.Truncated{What: "STID name", Need: pos + nameLen, Have: len(payload)}
		}
		entries = append(entries, stidEntry{id: id, name: string(payload[pos : pos+nameLen])})
		pos += nameLen
	}
	b.stid = entries
	b.haveSTID = true
	return nil
}
