package bnk

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// matchedSFX is one event-action -> SFX resolution, tagged with whether it
// was reached through a parent container rather than directly.
type matchedSFX struct {
	actionType byte
	sfx        *soundEffectOrVoice
	isChild    bool
}

// EventReport resolves event -> event-action -> SFX chains into the
// human-readable format spec.md §4.5's event_report describes.
// eventIDFilter, if non-empty, restricts the report to the event whose
// decimal id matches it exactly.
//
// Unlike the original's per-lookup linear scans over the whole HIRC object
// list (O(N^2) in the number of objects), this precomputes id-keyed maps
// once so each event-action and SFX resolves in O(1).
func (b *Bank) EventReport(eventIDFilter string) string {
	if !b.haveHIRC {
		return ""
	}

	eventActionsByID := make(map[uint32]eventAction)
	sfxList := make([]*soundEffectOrVoice, 0)
	var events []event

	for i := range b.hirc {
		o := &b.hirc[i]
		switch o.objType {
		case objectTypeEvent:
			ev, err := o.asEvent()
			if err == nil {
				events = append(events, ev)
			}
		case objectTypeEventAction:
			ea, err := o.asEventAction()
			if err == nil {
				eventActionsByID[ea.id] = ea
			}
		case objectTypeSoundEffectOrVoice:
			sfx, err := o.asSoundEffectOrVoice()
			if err == nil {
				sfxList = append(sfxList, &sfx)
			}
		}
	}

	numEvents := 0
	eventToActions := make(map[uint32][]eventAction)
	for _, ev := range events {
		numEvents++
		if eventIDFilter != "" && strconv.FormatUint(uint64(ev.id), 10) != eventIDFilter {
			continue
		}
		for _, actionID := range ev.actions {
			ea, ok := eventActionsByID[actionID]
			if !ok || ea.targetObject == 0 {
				continue
			}
			eventToActions[ev.id] = append(eventToActions[ev.id], ea)
		}
	}

	sfxByID := make(map[uint32]*soundEffectOrVoice, len(sfxList))
	sfxByParentID := make(map[uint32][]*soundEffectOrVoice)
	for _, sfx := range sfxList {
		sfxByID[sfx.id] = sfx
		pid := sfx.parentID()
		if pid != 0 {
			sfxByParentID[pid] = append(sfxByParentID[pid], sfx)
		}
	}

	eventToSFX := make(map[uint32][]matchedSFX)
	for eventID, actions := range eventToActions {
		for _, ea := range actions {
			if direct, ok := sfxByID[ea.targetObject]; ok {
				eventToSFX[eventID] = append(eventToSFX[eventID], matchedSFX{actionType: ea.actionType, sfx: direct, isChild: false})
			}
			for _, child := range sfxByParentID[ea.targetObject] {
				eventToSFX[eventID] = append(eventToSFX[eventID], matchedSFX{actionType: ea.actionType, sfx: child, isChild: true})
			}
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d event(s)\n", numEvents)
	fmt.Fprintf(&sb, "%d of them point to files in this BNK\n\n", len(eventToSFX))

	ids := make([]uint32, 0, len(eventToSFX))
	for id := range eventToSFX {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, eventID := range ids {
		name := b.lookupEventName(eventID)
		if name == "" {
			name = "can't find name"
		}
		fmt.Fprintf(&sb, "%d (%s)\n", eventID, name)
		for _, m := range eventToSFX[eventID] {
			childSuffix := ""
			if m.isChild {
				childSuffix = " (child)"
			}
			fmt.Fprintf(&sb, "\t%s %d%s\n", actionTypeLabel(m.actionType), m.sfx.audioFileID, childSuffix)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (b *Bank) lookupEventName(id uint32) string {
	for _, e := range b.stid {
		if e.id == id {
			return e.name
		}
	}
	return ""
}
