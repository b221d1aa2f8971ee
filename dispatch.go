package binarchive

import (
	"reflect"
	"time"
)

/***************************************
 * Generic dispatch
 *
 * The driver routes a value through the predefined primitive table, the
 * array codecs, the type-object path, the enum codec, or the custom-type
 * dispatcher, in that order. Anything left over is not serializable.
 ***************************************/

// PlainObject is the wire analogue of a fresh bare object: it carries no
// state of its own but owns a reference identity, so two paths reaching
// the same *PlainObject decode to the same instance.
type PlainObject struct{}

var guidType = reflect.TypeOf(Guid{})
var dateTimeOffsetType = reflect.TypeOf(DateTimeOffset{})
var dateOnlyType = reflect.TypeOf(DateOnly{})
var timeOfDayType = reflect.TypeOf(TimeOfDay{})
var timeTimeType = reflect.TypeOf(time.Time{})
var reflectTypeType = reflect.TypeOf((*reflect.Type)(nil)).Elem()

// the predefined table is always resolvable, so element type metadata for
// arrays of builtins decodes without any user registration
func init() {
	for _, t := range []reflect.Type{
		reflect.TypeOf((*any)(nil)).Elem(),
		reflect.TypeOf(false),
		reflect.TypeOf(""),
		reflect.TypeOf(byte(0)),
		reflect.TypeOf(int8(0)),
		reflect.TypeOf(int16(0)),
		reflect.TypeOf(int32(0)),
		reflect.TypeOf(int64(0)),
		reflect.TypeOf(int(0)),
		reflect.TypeOf(uint16(0)),
		reflect.TypeOf(uint32(0)),
		reflect.TypeOf(uint64(0)),
		reflect.TypeOf(uint(0)),
		reflect.TypeOf(float32(0)),
		reflect.TypeOf(float64(0)),
		charType,
		guidType,
		decimalType,
		dateTimeOffsetType,
		dateOnlyType,
		timeOfDayType,
		timeTimeType,
		reflect.TypeOf(PlainObject{}),
		reflect.TypeOf((*PlainObject)(nil)),
		reflect.TypeOf(MultiArray{}),
		reflect.TypeOf((*MultiArray)(nil)),
	} {
		registerResolvableType(t)
	}
}

func (ws *WriteSession) encodeValue(v reflect.Value) error {
	if !v.IsValid() {
		return ws.writeTag(TagNull)
	}
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return ws.writeTag(TagNull)
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		if v.IsNil() {
			return ws.writeTag(TagNull)
		}
	}

	t := v.Type()

	// values that themselves denote a type
	if t.Implements(reflectTypeType) {
		return ws.encodeTypeObject(v.Interface().(reflect.Type))
	}

	switch t {
	case charType:
		return ws.writeChar(v.Interface().(Char))
	case guidType:
		return ws.writeGuid(v.Interface().(Guid))
	case decimalType:
		return ws.writeDecimal(v.Interface().(Decimal))
	case dateTimeOffsetType:
		return ws.writeDateTimeOffset(v.Interface().(DateTimeOffset))
	case dateOnlyType:
		return ws.writeDateOnly(v.Interface().(DateOnly))
	case timeOfDayType:
		return ws.writeTimeOfDay(v.Interface().(TimeOfDay))
	case timeTimeType:
		return ws.writeDateTimeTicks(v.Interface().(time.Time).UnixNano())
	}

	if m, ok := v.Interface().(*MultiArray); ok {
		return ws.encodeMultiArray(m)
	}
	if p, ok := v.Interface().(*PlainObject); ok {
		return ws.encodePlainObject(p)
	}

	// registered enums take precedence over the raw integer kinds
	if isRegisteredEnum(t) {
		return ws.encodeEnum(v)
	}

	switch v.Kind() {
	case reflect.Bool:
		return ws.writeBool(v.Bool())
	case reflect.Uint8:
		return ws.writeByteValue(byte(v.Uint()))
	case reflect.Int8:
		return ws.writeSByteValue(int8(v.Int()))
	case reflect.Int16:
		return ws.writeInt16(int16(v.Int()))
	case reflect.Int32:
		return ws.writeInt32(int32(v.Int()))
	case reflect.Int64, reflect.Int:
		return ws.writeInt64(v.Int())
	case reflect.Uint16:
		return ws.writeUint16(uint16(v.Uint()))
	case reflect.Uint32:
		return ws.writeUint32(uint32(v.Uint()))
	case reflect.Uint64, reflect.Uint:
		return ws.writeUint64(v.Uint())
	case reflect.Float32:
		return ws.writeFloat32(float32(v.Float()))
	case reflect.Float64:
		return ws.writeFloat64(v.Float())
	case reflect.String:
		return ws.encodeString(v)
	case reflect.Slice:
		return ws.encodeArray1D(v)
	case reflect.Array:
		// value arrays have no reference identity; encode through a
		// fresh slice so the intern id sequence matches the decoder's
		slice := reflect.MakeSlice(reflect.SliceOf(t.Elem()), v.Len(), v.Len())
		reflect.Copy(slice, v)
		return ws.encodeArray1D(slice)
	}

	// everything else needs a registered internal or external encoder
	return ws.encodeCustom(v)
}

// encodeString writes a reference-interned UTF-8 string: the first
// encounter emits the full payload and records an id, subsequent
// encounters emit AlreadySerialized + id.
func (ws *WriteSession) encodeString(v reflect.Value) error {
	id, key, internable, found := ws.lookupObject(v)
	if found {
		return ws.writeAlreadySerialized(id)
	}
	if err := ws.writeStringUTF8(v.String()); err != nil {
		return err
	}
	if internable {
		ws.internObject(key)
	}
	return nil
}

// encodeStringUTF16 is the UTF-16 counterpart of encodeString, reached
// through the archive facade; the interning discipline is identical, only
// the payload encoding differs.
func (ws *WriteSession) encodeStringUTF16(v reflect.Value) error {
	id, key, internable, found := ws.lookupObject(v)
	if found {
		return ws.writeAlreadySerialized(id)
	}
	if err := ws.writeStringUTF16(v.String()); err != nil {
		return err
	}
	if internable {
		ws.internObject(key)
	}
	return nil
}

func (ws *WriteSession) encodePlainObject(p *PlainObject) error {
	key := reflect.ValueOf(p).Pointer()
	if id, ok := ws.objectIDs[key]; ok {
		return ws.writeAlreadySerialized(id)
	}
	if err := ws.writeTag(TagObject); err != nil {
		return err
	}
	ws.internObject(key)
	return nil
}

// encodeTypeObject emits a value that is itself a type: the TypeObject
// tag, the decomposed type, and an object-id assignment so repeated
// emissions of the same type object back-reference.
func (ws *WriteSession) encodeTypeObject(rt reflect.Type) error {
	key := reflect.ValueOf(rt).Pointer()
	if id, ok := ws.objectIDs[key]; ok {
		return ws.writeAlreadySerialized(id)
	}
	if err := ws.writeTag(TagTypeObject); err != nil {
		return err
	}
	if err := ws.writeTypeDescriptor(buildTypeDescriptor(rt)); err != nil {
		return err
	}
	ws.currentType = rt
	ws.internObject(key)
	return nil
}

/***************************************
 * Decode dispatch
 ***************************************/

func (rs *ReadSession) decodeValue() (any, error) {
	t, err := rs.readTag()
	if err != nil {
		return nil, err
	}
	return rs.decodeTagged(t)
}

func (rs *ReadSession) decodeTagged(t Tag) (any, error) {
	switch t {
	case TagNull:
		return nil, nil
	case TagAlreadySerialized:
		return rs.readAlreadySerialized()

	case TagType, TagTypeID:
		rt, err := rs.readTypeMetadata(t)
		if err != nil {
			return nil, err
		}
		next, err := rs.readTag()
		if err != nil {
			return nil, err
		}
		return rs.decodeTypedTagged(next, rt)

	// when the writer suppressed a repeated type emission, the typed frame
	// arrives bare and applies to the current deserialized type
	case TagEnum, TagArchiveStart, TagArrayOfObjects, TagMultidimensionalArrayOfObjects:
		return rs.decodeTypedTagged(t, rs.currentType)

	case TagTypeObject:
		next, err := rs.readTag()
		if err != nil {
			return nil, err
		}
		rt, err := rs.readTypeMetadata(next)
		if err != nil {
			return nil, err
		}
		rs.internObjectOnDecode(rs.nextReadObjectID(), rt)
		return rt, nil

	case TagObject:
		obj := new(PlainObject)
		rs.internObjectOnDecode(rs.nextReadObjectID(), obj)
		return obj, nil

	case TagBuffer:
		n, err := readUvarint(rs.r)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if err := rs.readFull(buf); err != nil {
			return nil, err
		}
		return buf, nil

	case TagBoolFalse:
		return false, nil
	case TagBoolTrue:
		return true, nil
	case TagByte:
		return rs.readByteValue()
	case TagSByte:
		return rs.readSByteValue()
	case TagCharNative, TagCharLEB128:
		return rs.readChar(t)
	case TagInt16Native, TagInt16LEB128:
		return rs.readInt16(t)
	case TagInt32Native, TagInt32LEB128:
		return rs.readInt32(t)
	case TagInt64Native, TagInt64LEB128:
		return rs.readInt64(t)
	case TagUInt16Native, TagUInt16LEB128:
		return rs.readUint16(t)
	case TagUInt32Native, TagUInt32LEB128:
		return rs.readUint32(t)
	case TagUInt64Native, TagUInt64LEB128:
		return rs.readUint64(t)
	case TagFloat32:
		return rs.readFloat32()
	case TagFloat64:
		return rs.readFloat64()
	case TagDecimal:
		return rs.readDecimal()
	case TagGuid:
		return rs.readGuid()
	case TagDateTime:
		ticks, err := rs.readDateTimeTicks()
		if err != nil {
			return nil, err
		}
		return time.Unix(0, ticks).UTC(), nil
	case TagDateTimeOffset:
		return rs.readDateTimeOffset()
	case TagDateOnly, TagDateOnlyLEB128:
		return rs.readDateOnly(t)
	case TagTimeOfDay, TagTimeOfDayLEB128:
		return rs.readTimeOfDay(t)

	case TagStringUTF8:
		s, err := rs.readStringUTF8()
		if err != nil {
			return nil, err
		}
		if len(s) > 0 {
			rs.internObjectOnDecode(rs.nextReadObjectID(), s)
		}
		return s, nil
	case TagStringUTF16:
		s, err := rs.readStringUTF16()
		if err != nil {
			return nil, err
		}
		if len(s) > 0 {
			rs.internObjectOnDecode(rs.nextReadObjectID(), s)
		}
		return s, nil
	}

	if arr, handled, err := rs.decodeArrayTagged(t); handled {
		return arr, err
	}
	return nil, ErrCorruptStream
}

// decodeTypedTagged handles the frames that are preceded by type metadata
// on the wire (or by a suppressed repeat of the current type).
func (rs *ReadSession) decodeTypedTagged(t Tag, rt reflect.Type) (any, error) {
	if rt == nil {
		return nil, ErrCorruptStream
	}
	switch t {
	case TagEnum:
		return rs.decodeEnumPayload(rt)
	case TagArchiveStart:
		return rs.decodeCustom(rt)
	case TagArrayOfObjects:
		return rs.decodeArrayOfObjects(rt)
	case TagMultidimensionalArrayOfObjects:
		return rs.decodeMultiArrayOfObjects(rt)
	default:
		return nil, ErrCorruptStream
	}
}

// decodeArrayTagged dispatches the dedicated 1-D and multidimensional
// primitive array tags. handled reports whether t belonged to this family
// at all.
func (rs *ReadSession) decodeArrayTagged(t Tag) (result any, handled bool, err error) {
	// multidimensional primitive tags carry rank+bounds instead of a length
	if kind, compactMode, packed, ok := multiArrayTagInfo(t); ok {
		m, err := rs.decodeMultiArrayPrimitive(kind, compactMode, packed)
		return m, true, err
	}

	kind, compactMode, packed, ok := array1DTagInfo(t)
	if !ok {
		return nil, false, nil
	}
	n64, err := readUvarint(rs.r)
	if err != nil {
		return nil, true, err
	}
	n := int(n64)

	var arr any
	switch kind {
	case elemBool:
		arr, err = rs.decodeBoolElements(n, packed)
	case elemByte, elemSByte, elemFloat32, elemFloat64, elemDecimal:
		arr, err = rs.decodeFixedWidthElements(kind, n)
	default:
		arr, err = rs.decodeVariableWidthElements(kind, compactMode, n)
	}
	if err != nil {
		return nil, true, err
	}
	// primitive elements never consume object ids, so interning after the
	// fill keeps the id sequence in lockstep with the encoder's
	// intern-before-elements order
	if n > 0 {
		rs.internObjectOnDecode(rs.nextReadObjectID(), arr)
	}
	return arr, true, nil
}

func array1DTagInfo(t Tag) (kind arrayElementKind, compactMode, packed, ok bool) {
	switch t {
	case TagArrayBool:
		return elemBool, false, false, true
	case TagArrayBoolPacked:
		return elemBool, false, true, true
	case TagArrayByte:
		return elemByte, false, false, true
	case TagArraySByte:
		return elemSByte, false, false, true
	case TagArrayFloat32:
		return elemFloat32, false, false, true
	case TagArrayFloat64:
		return elemFloat64, false, false, true
	case TagArrayDecimal:
		return elemDecimal, false, false, true
	case TagArrayCharNative:
		return elemChar, false, false, true
	case TagArrayCharCompact:
		return elemChar, true, false, true
	case TagArrayInt16Native:
		return elemInt16, false, false, true
	case TagArrayInt16Compact:
		return elemInt16, true, false, true
	case TagArrayInt32Native:
		return elemInt32, false, false, true
	case TagArrayInt32Compact:
		return elemInt32, true, false, true
	case TagArrayInt64Native:
		return elemInt64, false, false, true
	case TagArrayInt64Compact:
		return elemInt64, true, false, true
	case TagArrayUInt16Native:
		return elemUint16, false, false, true
	case TagArrayUInt16Compact:
		return elemUint16, true, false, true
	case TagArrayUInt32Native:
		return elemUint32, false, false, true
	case TagArrayUInt32Compact:
		return elemUint32, true, false, true
	case TagArrayUInt64Native:
		return elemUint64, false, false, true
	case TagArrayUInt64Compact:
		return elemUint64, true, false, true
	default:
		return 0, false, false, false
	}
}

func multiArrayTagInfo(t Tag) (kind arrayElementKind, compactMode, packed, ok bool) {
	switch t {
	case TagMDArrayBool:
		return elemBool, false, false, true
	case TagMDArrayBoolPacked:
		return elemBool, false, true, true
	case TagMDArrayByte:
		return elemByte, false, false, true
	case TagMDArraySByte:
		return elemSByte, false, false, true
	case TagMDArrayFloat32:
		return elemFloat32, false, false, true
	case TagMDArrayFloat64:
		return elemFloat64, false, false, true
	case TagMDArrayDecimal:
		return elemDecimal, false, false, true
	case TagMDArrayCharNative:
		return elemChar, false, false, true
	case TagMDArrayCharCompact:
		return elemChar, true, false, true
	case TagMDArrayInt16Native:
		return elemInt16, false, false, true
	case TagMDArrayInt16Compact:
		return elemInt16, true, false, true
	case TagMDArrayInt32Native:
		return elemInt32, false, false, true
	case TagMDArrayInt32Compact:
		return elemInt32, true, false, true
	case TagMDArrayInt64Native:
		return elemInt64, false, false, true
	case TagMDArrayInt64Compact:
		return elemInt64, true, false, true
	case TagMDArrayUInt16Native:
		return elemUint16, false, false, true
	case TagMDArrayUInt16Compact:
		return elemUint16, true, false, true
	case TagMDArrayUInt32Native:
		return elemUint32, false, false, true
	case TagMDArrayUInt32Compact:
		return elemUint32, true, false, true
	case TagMDArrayUInt64Native:
		return elemUint64, false, false, true
	case TagMDArrayUInt64Compact:
		return elemUint64, true, false, true
	default:
		return 0, false, false, false
	}
}
