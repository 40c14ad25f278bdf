package bitio

// CRC32 table for the OGG page checksum, precomputed once at init time the
// way the teacher's ogg_utils.go precomputes its own CRC table — except this
// one is the single canonical implementation (the teacher carries two
// competing CRC routines in the same package; that duplication is not
// reproduced here).
var crcTable [256]uint32

const crcPolynomial = 0x04c11db7

func init() {
	for i := 0; i < 256; i++ {
		r := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if r&0x80000000 != 0 {
				r = (r << 1) ^ crcPolynomial
			} else {
				r <<= 1
			}
		}
		crcTable[i] = r
	}
}

// Checksum computes the OGG page CRC32 over data, which must already have
// its CRC field (bytes 22..25) zeroed. Initial value 0, no reflection, no
// final XOR — this matches the "from Tremor/lowmem" routine named in
// original_source/src/ww2ogg/crc.h.
func Checksum(data []byte) uint32 {
	var crc uint32
	for _, b := range data {
		crc = (crc << 8) ^ crcTable[byte(crc>>24)^b]
	}
	return crc
}
