package bnk

import (
	"encoding/binary"

	"github.com/wwiseaudio/wwtools/internal/wwerr"
)

// parseHIRC decodes the Hierarchy section's object list: a 4-byte object
// count followed by {type:1, size:4 (covers id+payload), id:4, payload}
// records.
func (b *Bank) parseHIRC(payload []byte) error {
	if len(payload) < 4 {
		return &wwerr.Truncated{What: "HIRC", Need: 4, Have: len(payload)}
	}
	count := binary.LittleEndian.Uint32(payload[0:4])
	pos := 4

	objects := make([]hircObject, 0, count)
	for i := uint32(0); i < count; i++ {
		if pos+9 > len(payload) {
			return &wwerr.Truncated{What: "HIRC object header", Need: pos + 9, Have: len(payload)}
		}
		objType := payload[pos]
		size := binary.LittleEndian.Uint32(payload[pos+1 : pos+5])
		id := binary.LittleEndian.Uint32(payload[pos+5 : pos+9])

		objEnd := pos + 5 + int(size)
		if objEnd > len(payload) {
			return &wwerr.Truncated{What: "HIRC object payload", Need: objEnd, Have: len(payload)}
		}
		objects = append(objects, hircObject{
			objType: objType,
			id:      id,
			payload: payload[pos+9 : objEnd],
		})
		pos = objEnd
	}

	b.hirc = objects
	b.haveHIRC = true
	return nil
}

// asEvent decodes an Event object's payload: a 4-byte action-id count
// followed by that many 4-byte action ids.
func (o *hircObject) asEvent() (event, error) {
	if len(o.payload) < 4 {
		return event{}, &wwerr.Truncated{What: "Event object", Need: 4, Have: len(o.payload)}
	}
	count := binary.LittleEndian.Uint32(o.payload[0:4])
	need := 4 + int(count)*4
	if len(o.payload) < need {
		return event{}, &wwerr.Truncated{What: "Event action list", Need: need, Have: len(o.payload)}
	}
	actions := make([]uint32, count)
	for i := uint32(0); i < count; i++ {
		actions[i] = binary.LittleEndian.Uint32(o.payload[4+i*4 : 8+i*4])
	}
	return event{id: o.id, actions: actions}, nil
}

// asEventAction decodes an EventAction object's payload: {action_type:1,
// target_object_id:4, ...trailing parameters ignored}.
func (o *hircObject) asEventAction() (eventAction, error) {
	if len(o.payload) < 5 {
		return eventAction{}, &wwerr.Truncated{What: "EventAction object", Need: 5, Have: len(o.payload)}
	}
	return eventAction{
		id:           o.id,
		actionType:   o.payload[0],
		targetObject: binary.LittleEndian.Uint32(o.payload[1:5]),
	}, nil
}

// akBankSourceDataSize is sizeof(AkBankSourceData): plugin id (4) + stream
// type (1) + source/audio file id (4) + in-memory media size (4) +
// source bits (1), the widely documented Wwise sound-source header.
const akBankSourceDataSize = 14

// asSoundEffectOrVoice decodes a Sound SFX/Voice object's payload: a
// leading AkBankSourceData record followed by the node's NodeBaseParams
// blob, the "sound_structure" glossary §G2 parses for the parent id.
func (o *hircObject) asSoundEffectOrVoice() (soundEffectOrVoice, error) {
	if len(o.payload) < akBankSourceDataSize {
		return soundEffectOrVoice{}, &wwerr.Truncated{What: "AkBankSourceData", Need: akBankSourceDataSize, Have: len(o.payload)}
	}
	return soundEffectOrVoice{
		id:                 o.id,
		includedOrStreamed: o.payload[4],
		audioFileID:        binary.LittleEndian.Uint32(o.payload[5:9]),
		soundStructure:     o.payload[akBankSourceDataSize:],
	}, nil
}

// parentID implements glossary §G2's sound_structure parent-id offset.
func (s *soundEffectOrVoice) parentID() uint32 {
	blob := s.soundStructure
	if len(blob) < 2 {
		return 0
	}
	offset := 6
	numEffects := int(blob[1])
	if numEffects > 0 {
		offset += 1 + numEffects*7
	}
	if len(blob) < offset+4 {
		return 0
	}
	return binary.LittleEndian.Uint32(blob[offset : offset+4])
}
