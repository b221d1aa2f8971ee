package binarchive

import (
	"bufio"
	"io"
	"reflect"
	"sync/atomic"

	"github.com/streamforge/binarchive/internal/base"
)

var LogSerialize = base.NewLogCategory("Serialize")

var gTolerantDeserializationDefault atomic.Bool

// Marshaler is the internal-encoder half of the custom-type dispatcher:
// a type cooperates with its own encoding by implementing MarshalArchive
// on its serializable form.
type Marshaler interface {
	MarshalArchive(w *ArchiveWrite) error
}

// Unmarshaler is the internal-encoder decode counterpart.
type Unmarshaler interface {
	UnmarshalArchive(r *ArchiveRead) error
}

// ExternalCodec is the external-encoder registration contract: a
// standalone handler, independent of the target type's own methods.
type ExternalCodec interface {
	Encode(w *ArchiveWrite, obj any) error
	Decode(r *ArchiveRead) (any, error)
	Version() uint32
}

/***************************************
 * WriteSession
 ***************************************/

// WriteSession is the mutable serializer state for one top-level Encode
// call: the type and object intern tables, the currently-under-encoding
// set used for cycle detection, and the buffered writer bound to the
// sink.
type WriteSession struct {
	bw               *bufferedWriter
	optimization     Optimization
	versionOverrides map[reflect.Type]uint32

	currentType reflect.Type
	nextTypeID  int
	typeIDs     map[string]int // keyed by the descriptor's fully-decomposed name

	nextObjectID int
	objectIDs    map[uintptr]int
	encoding     map[uintptr]bool
}

func (ws *WriteSession) versionFor(t reflect.Type, registeredMax uint32) uint32 {
	if v, ok := ws.versionOverrides[t]; ok {
		return v
	}
	return registeredMax
}

/***************************************
 * ReadSession
 ***************************************/

// ReadSession is the mutable deserializer state for one top-level Decode
// call, the mirror of WriteSession.
type ReadSession struct {
	r        *bufio.Reader
	tolerant bool

	sourceLittleEndian bool

	currentType reflect.Type
	nextTypeID  int
	types       map[int]reflect.Type

	nextObjectID int
	objects      map[int]any
}

func (rs *ReadSession) readRawByte() (byte, error) {
	b, err := rs.r.ReadByte()
	if err == io.EOF {
		return 0, ErrCorruptStream
	}
	return b, err
}

func (rs *ReadSession) readFull(dst []byte) error {
	if _, err := io.ReadFull(rs.r, dst); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return ErrCorruptStream
		}
		return err
	}
	return nil
}

func (rs *ReadSession) readTag() (Tag, error) {
	b, err := rs.readRawByte()
	if err != nil {
		return 0, err
	}
	t := Tag(b)
	if !t.known() {
		return 0, ErrCorruptStream
	}
	return t, nil
}

func (rs *ReadSession) expectTag(want Tag) error {
	t, err := rs.readTag()
	if err != nil {
		return err
	}
	if t != want {
		return ErrCorruptStream
	}
	return nil
}

/***************************************
 * ArchiveWrite / ArchiveRead facade
 ***************************************/

// ArchiveWrite is the scoped handle passed to a custom encoder for the
// duration of a single MarshalArchive/Encode call.
type ArchiveWrite struct {
	session *WriteSession
	typ     reflect.Type
	version uint32
}

func (w *ArchiveWrite) Version() uint32      { return w.version }
func (w *ArchiveWrite) Type() reflect.Type    { return w.typ }

func (w *ArchiveWrite) Bool(v bool) error           { return w.session.writeBool(v) }
func (w *ArchiveWrite) Byte(v byte) error           { return w.session.writeByteValue(v) }
func (w *ArchiveWrite) SByte(v int8) error          { return w.session.writeSByteValue(v) }
func (w *ArchiveWrite) Int16(v int16) error         { return w.session.writeInt16(v) }
func (w *ArchiveWrite) UInt16(v uint16) error       { return w.session.writeUint16(v) }
func (w *ArchiveWrite) Int32(v int32) error         { return w.session.writeInt32(v) }
func (w *ArchiveWrite) UInt32(v uint32) error       { return w.session.writeUint32(v) }
func (w *ArchiveWrite) Int64(v int64) error         { return w.session.writeInt64(v) }
func (w *ArchiveWrite) UInt64(v uint64) error       { return w.session.writeUint64(v) }
func (w *ArchiveWrite) Float32(v float32) error     { return w.session.writeFloat32(v) }
func (w *ArchiveWrite) Float64(v float64) error     { return w.session.writeFloat64(v) }
func (w *ArchiveWrite) Char(v Char) error           { return w.session.writeChar(v) }
func (w *ArchiveWrite) Decimal(v Decimal) error     { return w.session.writeDecimal(v) }
func (w *ArchiveWrite) Guid(v Guid) error           { return w.session.writeGuid(v) }
func (w *ArchiveWrite) DateTimeOffset(v DateTimeOffset) error { return w.session.writeDateTimeOffset(v) }
func (w *ArchiveWrite) DateOnly(v DateOnly) error   { return w.session.writeDateOnly(v) }
func (w *ArchiveWrite) TimeOfDay(v TimeOfDay) error { return w.session.writeTimeOfDay(v) }

// String writes a UTF-8 string through the full reference-interning
// path, so a repeated value emits only an id.
func (w *ArchiveWrite) String(s string) error {
	return w.session.encodeValue(reflect.ValueOf(s))
}

// StringUTF16 writes the string as UTF-16 code units instead of UTF-8
// bytes, with the same interning discipline.
func (w *ArchiveWrite) StringUTF16(s string) error {
	return w.session.encodeStringUTF16(reflect.ValueOf(s))
}

// Object recurses into the generic dispatcher for an arbitrary nested
// value (primitive, array, enum, or another custom type).
func (w *ArchiveWrite) Object(v any) error {
	return w.session.encodeValue(reflect.ValueOf(v))
}

// WriteBuffer frames a raw byte blob with tag Buffer + LEB128 length.
func (w *ArchiveWrite) WriteBuffer(data []byte) error {
	if err := w.session.writeTag(TagBuffer); err != nil {
		return err
	}
	if err := w.session.bw.writeOversized(putUvarint(nil, uint64(len(data)))); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return w.session.bw.writeOversized(data)
}

// WriteStream drains src into a recycled buffer first so that the total
// length is known up front, then frames it exactly like WriteBuffer. This
// is the Open Question decision recorded in DESIGN.md: option (a), a
// single length-prefixed blob, keeping Write/Read symmetric.
func (w *ArchiveWrite) WriteStream(src io.Reader) error {
	tmp := base.TransientBuffer.Allocate()
	defer base.TransientBuffer.Release(tmp)
	if _, err := base.TransientIoCopy(tmp, src, base.TransientPage64KiB); err != nil {
		return err
	}
	return w.WriteBuffer(tmp.Bytes())
}

// WriteBase emits a BaseArchiveStart frame and delegates to baseObj's
// own MarshalArchive with a fresh ArchiveWrite scoped to baseType. There
// is no matching end tag: the base archive terminates implicitly when
// the parent encoder returns.
func (w *ArchiveWrite) WriteBase(baseType reflect.Type, baseObj Marshaler, version uint32) error {
	if err := w.session.writeTag(TagBaseArchiveStart); err != nil {
		return err
	}
	if err := w.session.bw.writeOversized(putUvarint(nil, uint64(version))); err != nil {
		return err
	}
	sub := &ArchiveWrite{session: w.session, typ: baseType, version: version}
	return baseObj.MarshalArchive(sub)
}

// ArchiveRead is the scoped handle passed to a custom decoder.
type ArchiveRead struct {
	session *ReadSession
	typ     reflect.Type
	version uint32
}

func (r *ArchiveRead) Version() uint32   { return r.version }
func (r *ArchiveRead) Type() reflect.Type { return r.typ }

func (r *ArchiveRead) Bool() (bool, error) {
	t, err := r.session.readTag()
	if err != nil {
		return false, err
	}
	return r.session.readBool(t)
}
func (r *ArchiveRead) Byte() (byte, error)   { return r.session.readByteValueTagged() }
func (r *ArchiveRead) SByte() (int8, error)  { return r.session.readSByteValueTagged() }
func (r *ArchiveRead) Int16() (int16, error) {
	t, err := r.session.readTag()
	if err != nil {
		return 0, err
	}
	return r.session.readInt16(t)
}
func (r *ArchiveRead) UInt16() (uint16, error) {
	t, err := r.session.readTag()
	if err != nil {
		return 0, err
	}
	return r.session.readUint16(t)
}
func (r *ArchiveRead) Int32() (int32, error) {
	t, err := r.session.readTag()
	if err != nil {
		return 0, err
	}
	return r.session.readInt32(t)
}
func (r *ArchiveRead) UInt32() (uint32, error) {
	t, err := r.session.readTag()
	if err != nil {
		return 0, err
	}
	return r.session.readUint32(t)
}
func (r *ArchiveRead) Int64() (int64, error) {
	t, err := r.session.readTag()
	if err != nil {
		return 0, err
	}
	return r.session.readInt64(t)
}
func (r *ArchiveRead) UInt64() (uint64, error) {
	t, err := r.session.readTag()
	if err != nil {
		return 0, err
	}
	return r.session.readUint64(t)
}
func (r *ArchiveRead) Float32() (float32, error) {
	if err := r.session.expectTag(TagFloat32); err != nil {
		return 0, err
	}
	return r.session.readFloat32()
}
func (r *ArchiveRead) Float64() (float64, error) {
	if err := r.session.expectTag(TagFloat64); err != nil {
		return 0, err
	}
	return r.session.readFloat64()
}
func (r *ArchiveRead) Char() (Char, error) {
	t, err := r.session.readTag()
	if err != nil {
		return 0, err
	}
	return r.session.readChar(t)
}
func (r *ArchiveRead) Decimal() (Decimal, error) {
	if err := r.session.expectTag(TagDecimal); err != nil {
		return Decimal{}, err
	}
	return r.session.readDecimal()
}
func (r *ArchiveRead) Guid() (Guid, error) {
	if err := r.session.expectTag(TagGuid); err != nil {
		return Guid{}, err
	}
	return r.session.readGuid()
}
func (r *ArchiveRead) DateTimeOffset() (DateTimeOffset, error) {
	if err := r.session.expectTag(TagDateTimeOffset); err != nil {
		return DateTimeOffset{}, err
	}
	return r.session.readDateTimeOffset()
}
func (r *ArchiveRead) DateOnly() (DateOnly, error) {
	t, err := r.session.readTag()
	if err != nil {
		return DateOnly{}, err
	}
	return r.session.readDateOnly(t)
}
func (r *ArchiveRead) TimeOfDay() (TimeOfDay, error) {
	t, err := r.session.readTag()
	if err != nil {
		return TimeOfDay{}, err
	}
	return r.session.readTimeOfDay(t)
}

func (r *ArchiveRead) String() (string, error) {
	v, err := r.session.decodeValue()
	if err != nil {
		return "", err
	}
	s, _ := v.(string)
	return s, nil
}

func (r *ArchiveRead) Object() (any, error) {
	return r.session.decodeValue()
}

func (r *ArchiveRead) ReadBuffer() ([]byte, error) {
	t, err := r.session.readTag()
	if err != nil {
		return nil, err
	}
	if t != TagBuffer {
		return nil, ErrCorruptStream
	}
	n, err := readUvarint(r.session.r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if err := r.session.readFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (r *ArchiveRead) ReadStream(dst io.Writer) error {
	buf, err := r.ReadBuffer()
	if err != nil {
		return err
	}
	_, err = dst.Write(buf)
	return err
}

// PrepareBaseArchive reads BaseArchiveStart + LEB128 version, validates it
// against maxVersion, and returns an ArchiveRead scoped to baseType.
func (r *ArchiveRead) PrepareBaseArchive(baseType reflect.Type, maxVersion uint32) (*ArchiveRead, error) {
	t, err := r.session.readTag()
	if err != nil {
		return nil, err
	}
	if t != TagBaseArchiveStart {
		return nil, ErrCorruptStream
	}
	version, err := readUvarint(r.session.r)
	if err != nil {
		return nil, err
	}
	if uint32(version) > maxVersion {
		return nil, &VersionNotSupportedError{Type: baseType, GotVersion: uint32(version), MaxVersion: maxVersion}
	}
	return &ArchiveRead{session: r.session, typ: baseType, version: uint32(version)}, nil
}

func (rs *ReadSession) readByteValueTagged() (byte, error) {
	t, err := rs.readTag()
	if err != nil {
		return 0, err
	}
	if t != TagByte {
		return 0, ErrCorruptStream
	}
	return rs.readRawByte()
}
func (rs *ReadSession) readSByteValueTagged() (int8, error) {
	t, err := rs.readTag()
	if err != nil {
		return 0, err
	}
	if t != TagSByte {
		return 0, ErrCorruptStream
	}
	b, err := rs.readRawByte()
	return int8(b), err
}

/***************************************
 * Top-level driver
 ***************************************/

// Encode resets a fresh WriteSession, writes the endianness indicator
// byte, then runs the generic dispatcher on root.
func Encode(w io.Writer, root any, opts ...EncodeOption) (err error) {
	o := newEncodeOptions()
	for _, opt := range opts {
		opt(o)
	}
	ws := &WriteSession{
		bw:               newBufferedWriter(w),
		optimization:     o.optimization,
		versionOverrides: o.versionOverrides,
		typeIDs:          make(map[string]int),
		objectIDs:        make(map[uintptr]int),
		encoding:         make(map[uintptr]bool),
	}
	endianByte := byte(0)
	if hostLittleEndian {
		endianByte = 1
	}
	if err = ws.bw.writeByte(endianByte); err != nil {
		return err
	}
	err = base.Recover(func() error {
		return ws.encodeValue(reflect.ValueOf(root))
	})
	if closeErr := ws.bw.close(); err == nil {
		err = closeErr
	}
	return err
}

// Decode resets a fresh ReadSession, reads the endianness indicator byte,
// then runs the generic dispatcher to reconstruct the root value.
func Decode(r io.Reader, opts ...DecodeOption) (result any, err error) {
	o := newDecodeOptions()
	for _, opt := range opts {
		opt(o)
	}
	rs := &ReadSession{
		r:        bufio.NewReader(r),
		tolerant: o.tolerant,
		types:    make(map[int]reflect.Type),
		objects:  make(map[int]any),
	}
	endianByte, err := rs.readRawByte()
	if err != nil {
		return nil, err
	}
	rs.sourceLittleEndian = endianByte == 1
	err = base.Recover(func() error {
		var e error
		result, e = rs.decodeValue()
		return e
	})
	return result, err
}
