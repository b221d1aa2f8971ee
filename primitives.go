package binarchive

import (
	"math"
	"unicode/utf16"

	"github.com/streamforge/binarchive/internal/base"
)

// Char is the wire analogue of a 16-bit UTF-16 code unit; Go's own rune is
// an alias of int32 and travels through the Int32 tags, since the format
// only names a single 16-bit "char" primitive.
type Char uint16

// Guid is a raw 16-byte wire identifier, written and read verbatim with
// no interning (value type).
type Guid [16]byte

// Decimal is the 128-bit decimal wire primitive, stored as its four
// raw 32-bit limbs exactly as the source lays them out, each limb
// byte-swapped on its own on endianness mismatch.
type Decimal [16]byte

// DateTimeOffset pairs a tick count with a UTC offset in ticks.
type DateTimeOffset struct {
	Ticks       int64
	OffsetTicks int64
}

// DateOnly is a calendar date with no time-of-day component.
type DateOnly struct {
	Year  int32
	Month uint8
	Day   uint8
}

// TimeOfDay is a time-of-day with no calendar date component, stored as
// nanoseconds since midnight.
type TimeOfDay struct {
	Nanoseconds int64
}

func (ws *WriteSession) writeTag(t Tag) error { return ws.bw.writeByte(byte(t)) }

// writeUvarintRaw/writeVarintRaw emit a bare LEB128 group sequence with no
// tag, the building block for every length, id, rank and version field.
func (ws *WriteSession) writeUvarintRaw(v uint64) error {
	var scratch [LEB128Max64]byte
	return ws.bw.writeOversized(putUvarint(scratch[:0], v))
}
func (ws *WriteSession) writeVarintRaw(v int64) error {
	var scratch [LEB128Max64]byte
	return ws.bw.writeOversized(putVarint(scratch[:0], v))
}

func (ws *WriteSession) writeBool(v bool) error {
	if v {
		return ws.writeTag(TagBoolTrue)
	}
	return ws.writeTag(TagBoolFalse)
}

func (rs *ReadSession) readBool(t Tag) (bool, error) {
	switch t {
	case TagBoolTrue:
		return true, nil
	case TagBoolFalse:
		return false, nil
	default:
		return false, ErrCorruptStream
	}
}

func (ws *WriteSession) writeByteValue(v byte) error {
	if err := ws.writeTag(TagByte); err != nil {
		return err
	}
	return ws.bw.writeByte(v)
}
func (rs *ReadSession) readByteValue() (byte, error) { return rs.readRawByte() }

func (ws *WriteSession) writeSByteValue(v int8) error {
	if err := ws.writeTag(TagSByte); err != nil {
		return err
	}
	return ws.bw.writeByte(byte(v))
}
func (rs *ReadSession) readSByteValue() (int8, error) {
	b, err := rs.readRawByte()
	return int8(b), err
}

func (ws *WriteSession) writeNativeUint32(v uint32) error {
	span, err := ws.bw.getSpan(4)
	if err != nil {
		return err
	}
	v = wireOrder32(v)
	span[0] = byte(v)
	span[1] = byte(v >> 8)
	span[2] = byte(v >> 16)
	span[3] = byte(v >> 24)
	return ws.bw.advance(4)
}

func (rs *ReadSession) readNativeUint32() (uint32, error) {
	var buf [4]byte
	if err := rs.readFull(buf[:]); err != nil {
		return 0, err
	}
	v := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
	return valueFromWire32(v, rs.sourceLittleEndian), nil
}

func (ws *WriteSession) writeNativeUint64(v uint64) error {
	span, err := ws.bw.getSpan(8)
	if err != nil {
		return err
	}
	v = wireOrder64(v)
	for i := 0; i < 8; i++ {
		span[i] = byte(v >> (8 * i))
	}
	return ws.bw.advance(8)
}

func (rs *ReadSession) readNativeUint64() (uint64, error) {
	var buf [8]byte
	if err := rs.readFull(buf[:]); err != nil {
		return 0, err
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(buf[i]) << (8 * i)
	}
	return valueFromWire64(v, rs.sourceLittleEndian), nil
}

func (ws *WriteSession) writeNativeUint16(v uint16) error {
	span, err := ws.bw.getSpan(2)
	if err != nil {
		return err
	}
	v = wireOrder16(v)
	span[0] = byte(v)
	span[1] = byte(v >> 8)
	return ws.bw.advance(2)
}

func (rs *ReadSession) readNativeUint16() (uint16, error) {
	var buf [2]byte
	if err := rs.readFull(buf[:]); err != nil {
		return 0, err
	}
	v := uint16(buf[0]) | uint16(buf[1])<<8
	return valueFromWire16(v, rs.sourceLittleEndian), nil
}

// useCompact reports whether the size-mode codec should prefer the
// LEB128 encoding over the nativeWidth-byte native layout for v: the
// LEB128 threshold law requires a strictly smaller encoded form.
func useCompactUnsigned(v uint64, nativeWidth int, optimization Optimization) bool {
	return optimization == OptimizeForSize && uvarintSize(v) < nativeWidth
}
func useCompactSigned(v int64, nativeWidth int, optimization Optimization) bool {
	return optimization == OptimizeForSize && varintSize(v) < nativeWidth
}

/***************************************
 * Char
 ***************************************/

func (ws *WriteSession) writeChar(v Char) error {
	if useCompactUnsigned(uint64(v), 2, ws.optimization) {
		if err := ws.writeTag(TagCharLEB128); err != nil {
			return err
		}
		return ws.bw.writeOversized(putUvarint(nil, uint64(v)))
	}
	if err := ws.writeTag(TagCharNative); err != nil {
		return err
	}
	return ws.writeNativeUint16(uint16(v))
}

func (rs *ReadSession) readChar(t Tag) (Char, error) {
	switch t {
	case TagCharLEB128:
		v, err := readUvarint(rs.r)
		return Char(v), err
	case TagCharNative:
		v, err := rs.readNativeUint16()
		return Char(v), err
	default:
		return 0, ErrCorruptStream
	}
}

/***************************************
 * Signed/unsigned 16/32/64
 ***************************************/

func (ws *WriteSession) writeInt16(v int16) error {
	if useCompactSigned(int64(v), 2, ws.optimization) {
		if err := ws.writeTag(TagInt16LEB128); err != nil {
			return err
		}
		return ws.bw.writeOversized(putVarint(nil, int64(v)))
	}
	if err := ws.writeTag(TagInt16Native); err != nil {
		return err
	}
	return ws.writeNativeUint16(uint16(v))
}
func (rs *ReadSession) readInt16(t Tag) (int16, error) {
	switch t {
	case TagInt16LEB128:
		v, err := readVarint(rs.r)
		return int16(v), err
	case TagInt16Native:
		v, err := rs.readNativeUint16()
		return int16(v), err
	default:
		return 0, ErrCorruptStream
	}
}

func (ws *WriteSession) writeUint16(v uint16) error {
	if useCompactUnsigned(uint64(v), 2, ws.optimization) {
		if err := ws.writeTag(TagUInt16LEB128); err != nil {
			return err
		}
		return ws.bw.writeOversized(putUvarint(nil, uint64(v)))
	}
	if err := ws.writeTag(TagUInt16Native); err != nil {
		return err
	}
	return ws.writeNativeUint16(v)
}
func (rs *ReadSession) readUint16(t Tag) (uint16, error) {
	switch t {
	case TagUInt16LEB128:
		v, err := readUvarint(rs.r)
		return uint16(v), err
	case TagUInt16Native:
		return rs.readNativeUint16()
	default:
		return 0, ErrCorruptStream
	}
}

func (ws *WriteSession) writeInt32(v int32) error {
	if useCompactSigned(int64(v), 4, ws.optimization) {
		if err := ws.writeTag(TagInt32LEB128); err != nil {
			return err
		}
		return ws.bw.writeOversized(putVarint(nil, int64(v)))
	}
	if err := ws.writeTag(TagInt32Native); err != nil {
		return err
	}
	return ws.writeNativeUint32(uint32(v))
}
func (rs *ReadSession) readInt32(t Tag) (int32, error) {
	switch t {
	case TagInt32LEB128:
		v, err := readVarint(rs.r)
		return int32(v), err
	case TagInt32Native:
		v, err := rs.readNativeUint32()
		return int32(v), err
	default:
		return 0, ErrCorruptStream
	}
}

func (ws *WriteSession) writeUint32(v uint32) error {
	if useCompactUnsigned(uint64(v), 4, ws.optimization) {
		if err := ws.writeTag(TagUInt32LEB128); err != nil {
			return err
		}
		return ws.bw.writeOversized(putUvarint(nil, uint64(v)))
	}
	if err := ws.writeTag(TagUInt32Native); err != nil {
		return err
	}
	return ws.writeNativeUint32(v)
}
func (rs *ReadSession) readUint32(t Tag) (uint32, error) {
	switch t {
	case TagUInt32LEB128:
		v, err := readUvarint(rs.r)
		return uint32(v), err
	case TagUInt32Native:
		return rs.readNativeUint32()
	default:
		return 0, ErrCorruptStream
	}
}

func (ws *WriteSession) writeInt64(v int64) error {
	if useCompactSigned(v, 8, ws.optimization) {
		if err := ws.writeTag(TagInt64LEB128); err != nil {
			return err
		}
		return ws.bw.writeOversized(putVarint(nil, v))
	}
	if err := ws.writeTag(TagInt64Native); err != nil {
		return err
	}
	return ws.writeNativeUint64(uint64(v))
}
func (rs *ReadSession) readInt64(t Tag) (int64, error) {
	switch t {
	case TagInt64LEB128:
		return readVarint(rs.r)
	case TagInt64Native:
		v, err := rs.readNativeUint64()
		return int64(v), err
	default:
		return 0, ErrCorruptStream
	}
}

func (ws *WriteSession) writeUint64(v uint64) error {
	if useCompactUnsigned(v, 8, ws.optimization) {
		if err := ws.writeTag(TagUInt64LEB128); err != nil {
			return err
		}
		return ws.bw.writeOversized(putUvarint(nil, v))
	}
	if err := ws.writeTag(TagUInt64Native); err != nil {
		return err
	}
	return ws.writeNativeUint64(v)
}
func (rs *ReadSession) readUint64(t Tag) (uint64, error) {
	switch t {
	case TagUInt64LEB128:
		return readUvarint(rs.r)
	case TagUInt64Native:
		return rs.readNativeUint64()
	default:
		return 0, ErrCorruptStream
	}
}

/***************************************
 * Float / Decimal / Guid
 ***************************************/

func (ws *WriteSession) writeFloat32(v float32) error {
	if err := ws.writeTag(TagFloat32); err != nil {
		return err
	}
	return ws.writeNativeUint32(math.Float32bits(v))
}
func (rs *ReadSession) readFloat32() (float32, error) {
	v, err := rs.readNativeUint32()
	return math.Float32frombits(v), err
}

func (ws *WriteSession) writeFloat64(v float64) error {
	if err := ws.writeTag(TagFloat64); err != nil {
		return err
	}
	return ws.writeNativeUint64(math.Float64bits(v))
}
func (rs *ReadSession) readFloat64() (float64, error) {
	v, err := rs.readNativeUint64()
	return math.Float64frombits(v), err
}

func (ws *WriteSession) writeDecimal(v Decimal) error {
	if err := ws.writeTag(TagDecimal); err != nil {
		return err
	}
	return ws.writeRawSwapped(v[:])
}
func (rs *ReadSession) readDecimal() (Decimal, error) {
	var v Decimal
	err := rs.readRawSwapped(v[:])
	return v, err
}

func (ws *WriteSession) writeGuid(v Guid) error {
	if err := ws.writeTag(TagGuid); err != nil {
		return err
	}
	span, err := ws.bw.getSpan(16)
	if err != nil {
		return err
	}
	copy(span, v[:])
	return ws.bw.advance(16)
}
func (rs *ReadSession) readGuid() (Guid, error) {
	var v Guid
	err := rs.readFull(v[:])
	return v, err
}

// writeRawSwapped/readRawSwapped handle a fixed-width raw payload (the
// 128-bit decimal) treated as consecutive 32-bit limbs in the host's own
// layout: the writer emits the bytes as stored, the reader swaps each
// limb when the producer's recorded endianness differs from the host's.
func (ws *WriteSession) writeRawSwapped(raw []byte) error {
	span, err := ws.bw.getSpan(len(raw))
	if err != nil {
		return err
	}
	copy(span, raw)
	return ws.bw.advance(len(raw))
}
func (rs *ReadSession) readRawSwapped(dst []byte) error {
	if err := rs.readFull(dst); err != nil {
		return err
	}
	if rs.sourceLittleEndian != hostLittleEndian {
		for off := 0; off+4 <= len(dst); off += 4 {
			dst[off], dst[off+3] = dst[off+3], dst[off]
			dst[off+1], dst[off+2] = dst[off+2], dst[off+1]
		}
	}
	return nil
}

/***************************************
 * DateTime family
 ***************************************/

func (ws *WriteSession) writeDateTimeTicks(ticks int64) error {
	if err := ws.writeTag(TagDateTime); err != nil {
		return err
	}
	return ws.writeNativeUint64(uint64(ticks))
}
func (rs *ReadSession) readDateTimeTicks() (int64, error) {
	v, err := rs.readNativeUint64()
	return int64(v), err
}

func (ws *WriteSession) writeDateTimeOffset(v DateTimeOffset) error {
	if err := ws.writeTag(TagDateTimeOffset); err != nil {
		return err
	}
	if err := ws.writeNativeUint64(uint64(v.Ticks)); err != nil {
		return err
	}
	return ws.writeNativeUint64(uint64(v.OffsetTicks))
}
func (rs *ReadSession) readDateTimeOffset() (DateTimeOffset, error) {
	ticks, err := rs.readNativeUint64()
	if err != nil {
		return DateTimeOffset{}, err
	}
	offset, err := rs.readNativeUint64()
	if err != nil {
		return DateTimeOffset{}, err
	}
	return DateTimeOffset{Ticks: int64(ticks), OffsetTicks: int64(offset)}, nil
}

func (ws *WriteSession) writeDateOnly(v DateOnly) error {
	if ws.optimization == OptimizeForSize {
		if err := ws.writeTag(TagDateOnlyLEB128); err != nil {
			return err
		}
		if err := ws.writeVarintRaw(int64(v.Year)); err != nil {
			return err
		}
		if err := ws.bw.writeByte(v.Month); err != nil {
			return err
		}
		return ws.bw.writeByte(v.Day)
	}
	if err := ws.writeTag(TagDateOnly); err != nil {
		return err
	}
	if err := ws.writeNativeUint32(uint32(v.Year)); err != nil {
		return err
	}
	if err := ws.bw.writeByte(v.Month); err != nil {
		return err
	}
	return ws.bw.writeByte(v.Day)
}
func (rs *ReadSession) readDateOnly(t Tag) (DateOnly, error) {
	var year int32
	switch t {
	case TagDateOnlyLEB128:
		v, err := readVarint(rs.r)
		if err != nil {
			return DateOnly{}, err
		}
		year = int32(v)
	case TagDateOnly:
		v, err := rs.readNativeUint32()
		if err != nil {
			return DateOnly{}, err
		}
		year = int32(v)
	default:
		return DateOnly{}, ErrCorruptStream
	}
	month, err := rs.readRawByte()
	if err != nil {
		return DateOnly{}, err
	}
	day, err := rs.readRawByte()
	if err != nil {
		return DateOnly{}, err
	}
	return DateOnly{Year: year, Month: month, Day: day}, nil
}

func (ws *WriteSession) writeTimeOfDay(v TimeOfDay) error {
	if useCompactSigned(v.Nanoseconds, 8, ws.optimization) {
		if err := ws.writeTag(TagTimeOfDayLEB128); err != nil {
			return err
		}
		return ws.writeVarintRaw(v.Nanoseconds)
	}
	if err := ws.writeTag(TagTimeOfDay); err != nil {
		return err
	}
	return ws.writeNativeUint64(uint64(v.Nanoseconds))
}
func (rs *ReadSession) readTimeOfDay(t Tag) (TimeOfDay, error) {
	switch t {
	case TagTimeOfDayLEB128:
		v, err := readVarint(rs.r)
		return TimeOfDay{Nanoseconds: v}, err
	case TagTimeOfDay:
		v, err := rs.readNativeUint64()
		return TimeOfDay{Nanoseconds: int64(v)}, err
	default:
		return TimeOfDay{}, ErrCorruptStream
	}
}

/***************************************
 * Strings
 ***************************************/

func (ws *WriteSession) writeStringUTF8(s string) error {
	if err := ws.writeTag(TagStringUTF8); err != nil {
		return err
	}
	raw := base.UnsafeBytesFromString(s)
	if err := ws.bw.writeOversized(putUvarint(nil, uint64(len(raw)))); err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	return ws.bw.writeOversized(raw)
}
func (rs *ReadSession) readStringUTF8() (string, error) {
	n, err := readUvarint(rs.r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if err := rs.readFull(buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func (ws *WriteSession) writeStringUTF16(s string) error {
	if err := ws.writeTag(TagStringUTF16); err != nil {
		return err
	}
	units := utf16.Encode([]rune(s))
	if err := ws.bw.writeOversized(putUvarint(nil, uint64(len(units)))); err != nil {
		return err
	}
	for _, u := range units {
		if err := ws.writeNativeUint16(u); err != nil {
			return err
		}
	}
	return nil
}
func (rs *ReadSession) readStringUTF16() (string, error) {
	n, err := readUvarint(rs.r)
	if err != nil {
		return "", err
	}
	units := make([]uint16, n)
	for i := range units {
		if units[i], err = rs.readNativeUint16(); err != nil {
			return "", err
		}
	}
	return string(utf16.Decode(units)), nil
}
