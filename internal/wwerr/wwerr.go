// Package wwerr defines the sentinel error kinds surfaced by the WEM/BNK
// parsing and transcoding pipeline.
package wwerr

import "fmt"

// ParseError reports a generic malformed-input condition: bad magic,
// truncated chunk, an unexpected field value, or a size mismatch.
type ParseError struct {
	Msg    string
	Offset int64 // -1 when not applicable
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Msg)
	}
	return fmt.Sprintf("parse error: %s", e.Msg)
}

func NewParseError(offset int64, format string, args ...any) *ParseError {
	return &ParseError{Msg: fmt.Sprintf(format, args...), Offset: offset}
}

// UnsupportedVersion reports a recognised-but-unhandled field value, e.g. an
// unknown vorb chunk size.
type UnsupportedVersion struct {
	Field string
	Value any
}

func (e *UnsupportedVersion) Error() string {
	return fmt.Sprintf("unsupported %s: %v", e.Field, e.Value)
}

// InvalidCodebookID reports a codebook id outside the packed table's range.
type InvalidCodebookID struct {
	ID   int
	Hint string
}

func (e *InvalidCodebookID) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid codebook id %d, try %s", e.ID, e.Hint)
	}
	return fmt.Sprintf("invalid codebook id %d, try --inline-codebooks", e.ID)
}

// Truncated reports that the input buffer ended in the middle of a
// structure that demanded more bytes.
type Truncated struct {
	What string
	Need int
	Have int
}

func (e *Truncated) Error() string {
	return fmt.Sprintf("truncated input: need %d bytes for %s, have %d", e.Need, e.What, e.Have)
}

// SizeMismatch reports that a parsed structure did not consume the number
// of bytes its declared size demanded.
type SizeMismatch struct {
	Expected int64
	Actual   int64
}

func (e *SizeMismatch) Error() string {
	return fmt.Sprintf("expected %d bytes, read %d", e.Expected, e.Actual)
}

// PacketTooLarge reports that an Ogg packet being assembled exceeded the
// maximum page payload a single packet's lacing values can describe
// (255 segments of 255 bytes). Fatal: the packet cannot be framed.
type PacketTooLarge struct {
	Limit int
}

func (e *PacketTooLarge) Error() string {
	return fmt.Sprintf("ran out of space in an Ogg packet: exceeded %d-byte limit", e.Limit)
}

// RegranulationFailed reports that C4 could not reproduce a valid OGG
// stream from the C3-produced input.
type RegranulationFailed struct {
	Reason string
}

func (e *RegranulationFailed) Error() string {
	return fmt.Sprintf("regranulation failed: %s", e.Reason)
}

// StreamedWemMissing reports that a BNK entry flagged as streamed had no
// accompanying external <id>.wem supplied by the caller. Non-fatal: the
// caller is expected to continue processing the remaining entries.
type StreamedWemMissing struct {
	ID uint32
}

func (e *StreamedWemMissing) Error() string {
	return fmt.Sprintf("streamed wem %d.wem not supplied", e.ID)
}
