// Package bnk descends a Wwise BNK soundbank's chunked section tree,
// extracts embedded WEM payloads, and resolves event -> event-action ->
// sound-object reference chains into a human-readable report, grounded on
// original_source/src/bnk.cpp and src/bnk.h.
package bnk

// HIRC object type tags, as laid out by Wwise's hierarchy section. These
// numeric codes are the ones long documented by community Wwise BNK
// parsers (wwiser, vgmstream, bnkextr) rather than anything this package
// invents.
const (
	objectTypeSoundEffectOrVoice = 2
	objectTypeEventAction        = 3
	objectTypeEvent              = 4
)

// EventAction action-type byte values, per Wwise's AkActionType
// enumeration as documented by the same community parsers.
const (
	ActionTypeStop   = 1
	ActionTypePause  = 2
	ActionTypeResume = 3
	ActionTypePlay   = 4
)

// Section is one top-level {tag, payload} BNK chunk.
type Section struct {
	Tag     string
	Payload []byte
}

// didxEntry is one Data Index record: a WEM id plus its byte range within
// the following DATA section's payload.
type didxEntry struct {
	id     uint32
	offset uint32
	size   uint32
}

// hircObject is one parsed Hierarchy object: its type tag, id, and raw
// payload (the bytes after the id field, up to the object's declared
// size).
type hircObject struct {
	objType byte
	id      uint32
	payload []byte
}

// event is a parsed HIRC Event object: an id plus the EventAction ids it
// references.
type event struct {
	id      uint32
	actions []uint32
}

// eventAction is a parsed HIRC EventAction object.
type eventAction struct {
	id           uint32
	actionType   byte
	targetObject uint32
}

// soundEffectOrVoice is a parsed HIRC SFX/Voice object.
type soundEffectOrVoice struct {
	id                  uint32
	includedOrStreamed  byte
	audioFileID         uint32
	soundStructure      []byte
}

// stidEntry is one String-ID mapping record.
type stidEntry struct {
	id   uint32
	name string
}

// Bank is a parsed BNK file: its top-level sections decoded into the
// structures the extract/report operations need.
type Bank struct {
	data []byte

	bkhdVersion uint32
	bkhdID      uint32
	haveBKHD    bool

	didx     []didxEntry
	haveDIDX bool

	dataPayload []byte
	haveDATA    bool

	hirc     []hircObject
	haveHIRC bool

	stid     []stidEntry
	haveSTID bool
}
