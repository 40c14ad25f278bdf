// Package codebook decodes Vorbis codebooks from Wwise's packed external
// blob, rebuilds them into canonical Vorbis wire format, and copies
// already-canonical inline codebooks verbatim.
package codebook

import (
	"encoding/binary"

	"github.com/wwiseaudio/wwtools/internal/bitio"
	"github.com/wwiseaudio/wwtools/internal/wwerr"
)

const syncPattern = 0x564342 // "BCV", the canonical Vorbis codebook sync

// Ilog returns the number of bits required to represent v (0 for v == 0),
// ported from Tremor's ilog helper.
func Ilog(v uint32) uint {
	var ret uint
	for v != 0 {
		ret++
		v >>= 1
	}
	return ret
}

// Quantvals computes floor(entries^(1/dimensions)) via Tremor's
// _book_maptype1_quantvals integer search.
func Quantvals(entries, dimensions uint32) uint32 {
	bits := Ilog(entries)
	vals := entries >> (uint(bits-1) * uint(dimensions-1) / uint(dimensions))

	for {
		var acc, acc1 uint64 = 1, 1
		for i := uint32(0); i < dimensions; i++ {
			acc *= uint64(vals)
			acc1 *= uint64(vals + 1)
		}
		if acc <= uint64(entries) && acc1 > uint64(entries) {
			return vals
		}
		if acc > uint64(entries) {
			vals--
		} else {
			vals++
		}
	}
}

// Library is a packed table of compact-form Wwise codebooks, as embedded in
// the "packed codebooks" asset shipped alongside the converter.
type Library struct {
	data    []byte   // compact codebook blobs, concatenated
	offsets []uint32 // one entry per codebook plus a trailing sentinel
}

// Load parses a packed codebooks blob per spec.md §6: compact codebooks,
// then a 32-bit LE offset table (one entry per codebook plus sentinel),
// then a final 32-bit LE offset-to-offset-table value.
func Load(blob []byte) (*Library, error) {
	if len(blob) < 4 {
		return nil, &wwerr.Truncated{What: "packed codebooks blob", Need: 4, Have: len(blob)}
	}
	offsetOffset := binary.LittleEndian.Uint32(blob[len(blob)-4:])
	if int(offsetOffset) > len(blob) {
		return nil, wwerr.NewParseError(-1, "packed codebooks: offset-to-offset-table %d exceeds blob size %d", offsetOffset, len(blob))
	}
	count := (len(blob) - int(offsetOffset)) / 4
	if count < 1 {
		return nil, wwerr.NewParseError(-1, "packed codebooks: degenerate offset table (count=%d)", count)
	}

	offsets := make([]uint32, count)
	for i := 0; i < count; i++ {
		pos := int(offsetOffset) + i*4
		if pos+4 > len(blob) {
			return nil, &wwerr.Truncated{What: "packed codebooks offset table", Need: pos + 4, Have: len(blob)}
		}
		offsets[i] = binary.LittleEndian.Uint32(blob[pos : pos+4])
	}

	return &Library{data: blob[:offsetOffset], offsets: offsets}, nil
}

// Count returns the number of real codebooks in the library (the offset
// table carries one extra trailing sentinel entry).
func (l *Library) Count() int {
	return len(l.offsets) - 1
}

func (l *Library) codebookSpan(id int) (start, size uint32, ok bool) {
	if id < 0 || id >= l.Count() {
		return 0, 0, false
	}
	return l.offsets[id], l.offsets[id+1] - l.offsets[id], true
}

// RebuildByID looks up codebook id in the packed library and rebuilds it
// into canonical Vorbis form on w.
func (l *Library) RebuildByID(id int, w *bitio.OggWriter) error {
	start, size, ok := l.codebookSpan(id)
	if !ok {
		return &wwerr.InvalidCodebookID{ID: id}
	}
	r := bitio.NewReader(l.data, int(start))
	return Rebuild(r, int64(size), w)
}

// Rebuild translates a single compact-form Wwise codebook read from r into
// canonical Vorbis form written to w. cbSize is the codebook's declared
// byte size; pass 0 to skip the trailing size-consistency check (used when
// rebuilding from an inline, sizeless bitstream).
func Rebuild(r *bitio.Reader, cbSize int64, w *bitio.OggWriter) error {
	dimensions, err := r.GetUint(4)
	if err != nil {
		return err
	}
	entries, err := r.GetUint(14)
	if err != nil {
		return err
	}

	if err := w.PutUint(syncPattern, 24); err != nil {
		return err
	}
	if err := w.PutUint(dimensions, 16); err != nil {
		return err
	}
	if err := w.PutUint(entries, 24); err != nil {
		return err
	}

	ordered, err := r.GetUint(1)
	if err != nil {
		return err
	}
	if err := w.PutUint(ordered, 1); err != nil {
		return err
	}

	if ordered != 0 {
		initialLength, err := r.GetUint(5)
		if err != nil {
			return err
		}
		if err := w.PutUint(initialLength, 5); err != nil {
			return err
		}

		var currentEntry uint32
		for currentEntry < entries {
			bits := Ilog(entries - currentEntry)
			number, err := r.GetUint(bits)
			if err != nil {
				return err
			}
			if err := w.PutUint(number, bits); err != nil {
				return err
			}
			currentEntry += number
		}
		if currentEntry > entries {
			return wwerr.NewParseError(-1, "current_entry out of range")
		}
	} else {
		codewordLengthLength, err := r.GetUint(3)
		if err != nil {
			return err
		}
		sparse, err := r.GetUint(1)
		if err != nil {
			return err
		}
		if codewordLengthLength == 0 || codewordLengthLength > 5 {
			return wwerr.NewParseError(-1, "nonsense codeword length")
		}
		if err := w.PutUint(sparse, 1); err != nil {
			return err
		}

		for i := uint32(0); i < entries; i++ {
			present := true
			if sparse != 0 {
				p, err := r.GetUint(1)
				if err != nil {
					return err
				}
				if err := w.PutUint(p, 1); err != nil {
					return err
				}
				present = p != 0
			}
			if present {
				codewordLength, err := r.GetUint(uint(codewordLengthLength))
				if err != nil {
					return err
				}
				if err := w.PutUint(codewordLength, 5); err != nil {
					return err
				}
			}
		}
	}

	lookupType, err := r.GetUint(1)
	if err != nil {
		return err
	}
	if err := w.PutUint(lookupType, 4); err != nil {
		return err
	}
	if err := lookupTableBody(r, w, entries, dimensions, lookupType); err != nil {
		return err
	}

	if cbSize != 0 {
		actual := r.TotalBitsRead()/8 + 1
		if actual != cbSize {
			return &wwerr.SizeMismatch{Expected: cbSize, Actual: actual}
		}
	}
	return nil
}

// Copy validates an already-canonical codebook (24-bit sync + 16-bit
// dimensions + 24-bit entries already present) and copies it bit-for-bit
// to w, still decoding enough of the structure (entries, dimensions,
// quantvals) to know exactly how many bits the lookup table occupies.
func Copy(r *bitio.Reader, w *bitio.OggWriter) error {
	id, err := r.GetUint(24)
	if err != nil {
		return err
	}
	dimensions, err := r.GetUint(16)
	if err != nil {
		return err
	}
	entries, err := r.GetUint(24)
	if err != nil {
		return err
	}
	if id != syncPattern {
		return wwerr.NewParseError(-1, "invalid codebook identifier")
	}

	if err := w.PutUint(id, 24); err != nil {
		return err
	}
	if err := w.PutUint(dimensions, 16); err != nil {
		return err
	}
	if err := w.PutUint(entries, 24); err != nil {
		return err
	}

	ordered, err := r.GetUint(1)
	if err != nil {
		return err
	}
	if err := w.PutUint(ordered, 1); err != nil {
		return err
	}

	if ordered != 0 {
		initialLength, err := r.GetUint(5)
		if err != nil {
			return err
		}
		if err := w.PutUint(initialLength, 5); err != nil {
			return err
		}

		var currentEntry uint32
		for currentEntry < entries {
			bits := Ilog(entries - currentEntry)
			number, err := r.GetUint(bits)
			if err != nil {
				return err
			}
			if err := w.PutUint(number, bits); err != nil {
				return err
			}
			currentEntry += number
		}
		if currentEntry > entries {
			return wwerr.NewParseError(-1, "current_entry out of range")
		}
	} else {
		sparse, err := r.GetUint(1)
		if err != nil {
			return err
		}
		if err := w.PutUint(sparse, 1); err != nil {
			return err
		}

		for i := uint32(0); i < entries; i++ {
			present := true
			if sparse != 0 {
				p, err := r.GetUint(1)
				if err != nil {
					return err
				}
				if err := w.PutUint(p, 1); err != nil {
					return err
				}
				present = p != 0
			}
			if present {
				codewordLength, err := r.GetUint(5)
				if err != nil {
					return err
				}
				if err := w.PutUint(codewordLength, 5); err != nil {
					return err
				}
			}
		}
	}

	lookupType, err := r.GetUint(4)
	if err != nil {
		return err
	}
	if err := w.PutUint(lookupType, 4); err != nil {
		return err
	}
	return lookupTableBody(r, w, entries, dimensions, lookupType)
}

// lookupTableBody copies the lookup-type-1 body (min/max/value_length/
// sequence_flag plus quantvals values) bit-for-bit; lookup type 0 has no
// body, and type 2 (or anything else) is a hard error, matching both
// Rebuild and Copy in the original source.
func lookupTableBody(r *bitio.Reader, w *bitio.OggWriter, entries, dimensions, lookupType uint32) error {
	switch lookupType {
	case 0:
		return nil
	case 1:
		min, err := r.GetUint(32)
		if err != nil {
			return err
		}
		max, err := r.GetUint(32)
		if err != nil {
			return err
		}
		valueLength, err := r.GetUint(4)
		if err != nil {
			return err
		}
		sequenceFlag, err := r.GetUint(1)
		if err != nil {
			return err
		}
		if err := w.PutUint(min, 32); err != nil {
			return err
		}
		if err := w.PutUint(max, 32); err != nil {
			return err
		}
		if err := w.PutUint(valueLength, 4); err != nil {
			return err
		}
		if err := w.PutUint(sequenceFlag, 1); err != nil {
			return err
		}

		quantvals := Quantvals(entries, dimensions)
		for i := uint32(0); i < quantvals; i++ {
			val, err := r.GetUint(uint(valueLength + 1))
			if err != nil {
				return err
			}
			if err := w.PutUint(val, uint(valueLength+1)); err != nil {
				return err
			}
		}
		return nil
	case 2:
		return wwerr.NewParseError(-1, "didn't expect lookup type 2")
	default:
		return wwerr.NewParseError(-1, "invalid lookup type")
	}
}
