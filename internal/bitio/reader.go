package bitio

import "github.com/wwiseaudio/wwtools/internal/wwerr"

// Reader consumes bits from an underlying byte slice LSB-first within each
// byte (bit 0 of a byte is read first), the same order OggWriter packs
// them in. Multi-bit reads (GetUint) assemble the result with the first bit
// read becoming the least-significant bit of the returned value — this is
// the Wwise "compact" encoding convention used for packed codebooks and the
// almost-Vorbis setup-packet bitstream (original_source/src/ww2ogg/bitstream.h
// Bitstream + BitUint<N>::operator>>).
type Reader struct {
	data         []byte
	pos          int // next unread byte index
	bitBuffer    byte
	bitsLeft     uint
	totalBitsRead int64
}

// NewReader wraps data for bit-level reading starting at byte offset start.
func NewReader(data []byte, start int) *Reader {
	return &Reader{data: data, pos: start}
}

// GetBit reads a single bit, LSB-first within the current byte.
func (r *Reader) GetBit() (bool, error) {
	if r.bitsLeft == 0 {
		if r.pos >= len(r.data) {
			return false, &wwerr.Truncated{What: "bit", Need: 1, Have: 0}
		}
		r.bitBuffer = r.data[r.pos]
		r.pos++
		r.bitsLeft = 8
	}
	r.totalBitsRead++
	r.bitsLeft--
	return r.bitBuffer&(0x80>>r.bitsLeft) != 0, nil
}

// GetUint reads n bits (n <= 32) and assembles them with the first bit read
// as the least-significant bit of the result.
func (r *Reader) GetUint(n uint) (uint32, error) {
	var total uint32
	for i := uint(0); i < n; i++ {
		bit, err := r.GetBit()
		if err != nil {
			return 0, err
		}
		if bit {
			total |= 1 << i
		}
	}
	return total, nil
}

// TotalBitsRead returns the number of bits consumed so far.
func (r *Reader) TotalBitsRead() int64 {
	return r.totalBitsRead
}

// BytePos returns the index of the next unread byte — valid only when the
// reader sits on a byte boundary.
func (r *Reader) BytePos() int {
	return r.pos
}

// AtByteBoundary reports whether the reader has consumed a whole number of
// bytes from its start.
func (r *Reader) AtByteBoundary() bool {
	return r.bitsLeft == 0
}

// Remaining reports how many unread bytes remain in the underlying slice
// after the current byte position (ignoring any partially-consumed byte).
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}
