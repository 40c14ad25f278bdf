package bnk

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSection(buf *bytes.Buffer, tag string, payload []byte) {
	buf.WriteString(tag)
	var sz [4]byte
	binary.LittleEndian.PutUint32(sz[:], uint32(len(payload)))
	buf.Write(sz[:])
	buf.Write(payload)
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func TestEventReportEmptyHIRC(t *testing.T) {
	var buf bytes.Buffer
	writeSection(&buf, "BKHD", append(le32(1), le32(42)...))
	writeSection(&buf, "HIRC", le32(0)) // zero objects

	b, err := Parse(buf.Bytes())
	require.NoError(t, err)
	report := b.EventReport("")
	assert.Equal(t, "Found 0 event(s)\n0 of them point to files in this BNK\n\n", report)
}

// buildHircPayload assembles a count + {type,size,id,payload} record list.
func buildHircPayload(records [][]byte) []byte {
	var buf bytes.Buffer
	buf.Write(le32(uint32(len(records))))
	for _, r := range records {
		buf.Write(r)
	}
	return buf.Bytes()
}

func buildHircRecord(objType byte, id uint32, payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(objType)
	buf.Write(le32(uint32(4 + len(payload)))) // size covers id + payload
	buf.Write(le32(id))
	buf.Write(payload)
	return buf.Bytes()
}

func buildEventPayload(actionIDs []uint32) []byte {
	var buf bytes.Buffer
	buf.Write(le32(uint32(len(actionIDs))))
	for _, id := range actionIDs {
		buf.Write(le32(id))
	}
	return buf.Bytes()
}

func buildEventActionPayload(actionType byte, targetObject uint32) []byte {
	return append([]byte{actionType}, le32(targetObject)...)
}

// buildSoundStructure builds a minimal sound_structure blob whose parent id
// sits right after the header per glossary parent-id offset logic: byte 0
// override_parent_fx, byte 1 num_effects, then bus_id(4), then parent_id(4).
func buildSoundStructure(numEffects byte, parentID uint32) []byte {
	// byte0 override_parent_fx, byte1 num_effects, then (1+numEffects*7)
	// bytes of effects data when present, then bus_id(4), then parent_id(4)
	// — matching parentID()'s offset math (6 + (1+numEffects*7) when
	// numEffects>0).
	var buf bytes.Buffer
	buf.WriteByte(0)
	buf.WriteByte(numEffects)
	if numEffects > 0 {
		buf.Write(make([]byte, 1+int(numEffects)*7))
	}
	buf.Write(make([]byte, 4)) // bus_id
	buf.Write(le32(parentID))
	return buf.Bytes()
}

func buildSoundEffectPayload(streamed byte, audioFileID uint32, soundStructure []byte) []byte {
	var buf bytes.Buffer
	buf.Write(make([]byte, 4)) // plugin id
	buf.WriteByte(streamed)
	buf.Write(le32(audioFileID))
	buf.Write(make([]byte, 5)) // in-memory media size (4) + source bits (1)
	buf.Write(soundStructure)
	return buf.Bytes()
}

func TestEventReportDirectAndChildMatches(t *testing.T) {
	// event 100 -> event-action 200 (play) -> SFX 300 (direct match)
	// event 101 -> event-action 201 (stop) -> SFX 301's parent (400, child match)
	sfxDirect := buildHircRecord(objectTypeSoundEffectOrVoice, 300,
		buildSoundEffectPayload(0, 9001, buildSoundStructure(0, 0)))
	sfxChild := buildHircRecord(objectTypeSoundEffectOrVoice, 301,
		buildSoundEffectPayload(0, 9002, buildSoundStructure(0, 400)))
	actionPlay := buildHircRecord(objectTypeEventAction, 200, buildEventActionPayload(ActionTypePlay, 300))
	actionStop := buildHircRecord(objectTypeEventAction, 201, buildEventActionPayload(ActionTypeStop, 400))
	event1 := buildHircRecord(objectTypeEvent, 100, buildEventPayload([]uint32{200}))
	event2 := buildHircRecord(objectTypeEvent, 101, buildEventPayload([]uint32{201}))

	hirc := buildHircPayload([][]byte{sfxDirect, sfxChild, actionPlay, actionStop, event1, event2})

	var buf bytes.Buffer
	writeSection(&buf, "BKHD", append(le32(1), le32(42)...))
	writeSection(&buf, "HIRC", hirc)
	writeSection(&buf, "STID", buildStidPayload(map[uint32]string{100: "ev_play_direct"}))

	b, err := Parse(buf.Bytes())
	require.NoError(t, err)

	report := b.EventReport("")
	assert.Contains(t, report, "Found 2 event(s)\n")
	assert.Contains(t, report, "2 of them point to files in this BNK\n\n")
	assert.Contains(t, report, "100 (ev_play_direct)\n\tplay 9001\n")
	assert.Contains(t, report, "101 (can't find name)\n\tstop 9002 (child)\n")
}

func buildStidPayload(entries map[uint32]string) []byte {
	var buf bytes.Buffer
	buf.Write(make([]byte, 4)) // unknown
	buf.Write(le32(uint32(len(entries))))
	for id, name := range entries {
		buf.Write(le32(id))
		buf.WriteByte(byte(len(name)))
		buf.WriteString(name)
	}
	return buf.Bytes()
}

func TestExtractZipsDIDXAndDATA(t *testing.T) {
	wem1 := []byte("first-wem-bytes-")
	wem2 := []byte("second!!")

	var didx bytes.Buffer
	didx.Write(le32(1)) // id
	didx.Write(le32(0)) // offset
	didx.Write(le32(uint32(len(wem1))))
	didx.Write(le32(2))
	didx.Write(le32(uint32(len(wem1))))
	didx.Write(le32(uint32(len(wem2))))

	var data bytes.Buffer
	data.Write(wem1)
	data.Write(wem2)

	var buf bytes.Buffer
	writeSection(&buf, "BKHD", append(le32(1), le32(42)...))
	writeSection(&buf, "DIDX", didx.Bytes())
	writeSection(&buf, "DATA", data.Bytes())

	b, err := Parse(buf.Bytes())
	require.NoError(t, err)

	blobs := b.Extract()
	require.Len(t, blobs, 2)
	assert.Equal(t, wem1, blobs[0])
	assert.Equal(t, wem2, blobs[1])

	entries := b.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, uint32(1), entries[0].ID)
	assert.False(t, entries[0].Streamed)
	assert.Equal(t, wem1, entries[0].Data)
}

func TestParentIDWithEffects(t *testing.T) {
	sfx := buildHircRecord(objectTypeSoundEffectOrVoice, 1,
		buildSoundEffectPayload(0, 1, buildSoundStructure(2, 777)))
	hirc := buildHircPayload([][]byte{sfx})

	var buf bytes.Buffer
	writeSection(&buf, "HIRC", hirc)
	b, err := Parse(buf.Bytes())
	require.NoError(t, err)

	obj := b.hirc[0]
	sound, err := obj.asSoundEffectOrVoice()
	require.NoError(t, err)
	assert.Equal(t, uint32(777), sound.parentID())
}
