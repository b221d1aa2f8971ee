package binarchive

import (
	"io"

	"golang.org/x/exp/constraints"
)

// Worst-case byte counts for LEB128-encoded values, used by callers that
// pre-reserve buffers before writing.
const (
	LEB128Max32 = 5
	LEB128Max64 = 10
)

// putUvarint appends the unsigned LEB128 encoding of v to dst and returns
// the extended slice. Groups are 7 bits, little-endian, with the high bit
// of every byte but the last set as a continuation marker.
func putUvarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// putVarint appends the signed, DWARF-style LEB128 encoding of v (sign
// extension in the terminating group; not ZigZag).
func putVarint(dst []byte, v int64) []byte {
	more := true
	for more {
		b := byte(v & 0x7F)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			more = false
		} else {
			b |= 0x80
		}
		dst = append(dst, b)
	}
	return dst
}

type byteReader interface {
	ReadByte() (byte, error)
}

// readUvarint consumes an unsigned LEB128 group sequence, failing with
// ErrCorruptStream on overflow of the 64-bit target width or premature
// end of stream.
func readUvarint(r byteReader) (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF {
				return 0, ErrCorruptStream
			}
			return 0, err
		}
		if shift >= 64 || (shift == 63 && b > 1) {
			return 0, ErrCorruptStream
		}
		result |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
}

// readVarint consumes a signed DWARF-style LEB128 group sequence.
func readVarint(r byteReader) (int64, error) {
	var result int64
	var shift uint
	var b byte
	var err error
	for {
		b, err = r.ReadByte()
		if err != nil {
			if err == io.EOF {
				return 0, ErrCorruptStream
			}
			return 0, err
		}
		if shift >= 64 {
			return 0, ErrCorruptStream
		}
		result |= int64(b&0x7F) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	if shift < 64 && b&0x40 != 0 {
		result |= -1 << shift
	}
	return result, nil
}

// uvarintSize reports the number of bytes putUvarint would emit for v,
// without allocating.
func uvarintSize(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// varintSize reports the number of bytes putVarint would emit for v.
func varintSize(v int64) int {
	n := 0
	more := true
	for more {
		b := byte(v & 0x7F)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			more = false
		}
		n++
	}
	return n
}

// compactUnsigned and compactSigned admit any Go unsigned/signed integer
// kind into the LEB128 codec used throughout the primitive and array
// codecs.
func compactUnsigned[T constraints.Unsigned](dst []byte, v T) []byte {
	return putUvarint(dst, uint64(v))
}
func compactSigned[T constraints.Signed](dst []byte, v T) []byte {
	return putVarint(dst, int64(v))
}
