package binarchive

import (
	"math"
	"reflect"
)

/***************************************
 * Array codecs
 *
 * Arrays are reference types: they are interned before their elements are
 * written, so a back-edge inside the element set can refer to the array
 * itself via AlreadySerialized.
 ***************************************/

// arrayElementKind classifies a slice/array element type into the fixed
// tag families. Unrecognized element kinds fall back to the generic
// array-of-objects path.
type arrayElementKind int

const (
	elemUnknown arrayElementKind = iota
	elemBool
	elemByte
	elemSByte
	elemFloat32
	elemFloat64
	elemDecimal
	elemChar
	elemInt16
	elemInt32
	elemInt64
	elemUint16
	elemUint32
	elemUint64
)

var decimalType = reflect.TypeOf(Decimal{})
var charType = reflect.TypeOf(Char(0))

func classifyElement(t reflect.Type) arrayElementKind {
	switch t {
	case decimalType:
		return elemDecimal
	case charType:
		return elemChar
	}
	switch t.Kind() {
	case reflect.Bool:
		return elemBool
	case reflect.Uint8:
		return elemByte
	case reflect.Int8:
		return elemSByte
	case reflect.Float32:
		return elemFloat32
	case reflect.Float64:
		return elemFloat64
	case reflect.Int16:
		return elemInt16
	case reflect.Int32:
		return elemInt32
	case reflect.Int64, reflect.Int:
		return elemInt64
	case reflect.Uint16:
		return elemUint16
	case reflect.Uint32:
		return elemUint32
	case reflect.Uint64, reflect.Uint:
		return elemUint64
	default:
		return elemUnknown
	}
}

// elementTypeOf maps an element kind back to the concrete type the decoder
// allocates for it.
func elementTypeOf(kind arrayElementKind) reflect.Type {
	switch kind {
	case elemBool:
		return reflect.TypeOf(false)
	case elemByte:
		return reflect.TypeOf(byte(0))
	case elemSByte:
		return reflect.TypeOf(int8(0))
	case elemFloat32:
		return reflect.TypeOf(float32(0))
	case elemFloat64:
		return reflect.TypeOf(float64(0))
	case elemDecimal:
		return decimalType
	case elemChar:
		return charType
	case elemInt16:
		return reflect.TypeOf(int16(0))
	case elemInt32:
		return reflect.TypeOf(int32(0))
	case elemInt64:
		return reflect.TypeOf(int64(0))
	case elemUint16:
		return reflect.TypeOf(uint16(0))
	case elemUint32:
		return reflect.TypeOf(uint32(0))
	default:
		return reflect.TypeOf(uint64(0))
	}
}

// internArrayBeforeElements checks the object intern table for v (a slice
// acting as a reference type) and, if not yet seen, assigns its id
// immediately so back-references inside elements resolve to the
// not-yet-finished array. Returns alreadySeen=true when an
// AlreadySerialized frame was emitted in place of the array.
func (ws *WriteSession) internArrayBeforeElements(v reflect.Value) (alreadySeen bool, err error) {
	key, internable := internableKey(v)
	if !internable {
		return false, nil
	}
	if id, ok := ws.objectIDs[key]; ok {
		return true, ws.writeAlreadySerialized(id)
	}
	ws.internObject(key)
	return false, nil
}

// encodeArray1D writes a one-dimensional, zero-based slice or array.
func (ws *WriteSession) encodeArray1D(v reflect.Value) error {
	alreadySeen, err := ws.internArrayBeforeElements(v)
	if err != nil || alreadySeen {
		return err
	}

	elemType := v.Type().Elem()
	kind := classifyElement(elemType)
	n := v.Len()

	switch kind {
	case elemBool:
		return ws.encodeBoolArray(v, n)
	case elemByte, elemSByte, elemFloat32, elemFloat64, elemDecimal:
		return ws.encodeFixedWidthArray(v, kind, n)
	case elemChar, elemInt16, elemInt32, elemInt64, elemUint16, elemUint32, elemUint64:
		return ws.encodeVariableWidthArray(v, kind, n)
	default:
		return ws.encodeArrayOfObjects(v, n)
	}
}

func (ws *WriteSession) encodeBoolArray(v reflect.Value, n int) error {
	if ws.optimization == OptimizeForSpeed {
		if err := ws.writeTag(TagArrayBool); err != nil {
			return err
		}
		if err := ws.writeUvarintRaw(uint64(n)); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			b := byte(0)
			if v.Index(i).Bool() {
				b = 1
			}
			if err := ws.bw.writeByte(b); err != nil {
				return err
			}
		}
		return nil
	}
	if err := ws.writeTag(TagArrayBoolPacked); err != nil {
		return err
	}
	if err := ws.writeUvarintRaw(uint64(n)); err != nil {
		return err
	}
	return ws.writePackedBools(v, 0, n)
}

// writePackedBools packs n elements starting at off, one bit per element,
// tail-padded with zeroes.
func (ws *WriteSession) writePackedBools(v reflect.Value, off, n int) error {
	packed := make([]byte, (n+7)/8)
	for i := 0; i < n; i++ {
		if v.Index(off + i).Bool() {
			packed[i/8] |= 1 << uint(i%8)
		}
	}
	return ws.bw.writeOversized(packed)
}

func (rs *ReadSession) decodeBoolElements(n int, packed bool) ([]bool, error) {
	result := make([]bool, n)
	if !packed {
		for i := 0; i < n; i++ {
			b, err := rs.readRawByte()
			if err != nil {
				return nil, err
			}
			result[i] = b != 0
		}
		return result, nil
	}
	raw := make([]byte, (n+7)/8)
	if err := rs.readFull(raw); err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		result[i] = raw[i/8]&(1<<uint(i%8)) != 0
	}
	return result, nil
}

// encodeFixedWidthArray writes always-native elements; byte, sbyte,
// float32/64 and decimal never choose LEB128.
func (ws *WriteSession) encodeFixedWidthArray(v reflect.Value, kind arrayElementKind, n int) error {
	tag := map[arrayElementKind]Tag{
		elemByte: TagArrayByte, elemSByte: TagArraySByte,
		elemFloat32: TagArrayFloat32, elemFloat64: TagArrayFloat64, elemDecimal: TagArrayDecimal,
	}[kind]
	if err := ws.writeTag(tag); err != nil {
		return err
	}
	if err := ws.writeUvarintRaw(uint64(n)); err != nil {
		return err
	}
	return ws.writeFixedWidthElements(v, kind, 0, n)
}

func (ws *WriteSession) writeFixedWidthElements(v reflect.Value, kind arrayElementKind, off, n int) error {
	for i := off; i < off+n; i++ {
		elem := v.Index(i)
		var err error
		switch kind {
		case elemByte:
			err = ws.bw.writeByte(byte(elem.Uint()))
		case elemSByte:
			err = ws.bw.writeByte(byte(int8(elem.Int())))
		case elemFloat32:
			err = ws.writeNativeUint32(math.Float32bits(float32(elem.Float())))
		case elemFloat64:
			err = ws.writeNativeUint64(math.Float64bits(elem.Float()))
		case elemDecimal:
			d := elem.Interface().(Decimal)
			err = ws.writeRawSwapped(d[:])
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (rs *ReadSession) decodeFixedWidthElements(kind arrayElementKind, n int) (any, error) {
	switch kind {
	case elemByte:
		buf := make([]byte, n)
		return buf, rs.readFull(buf)
	case elemSByte:
		result := make([]int8, n)
		for i := range result {
			b, err := rs.readRawByte()
			if err != nil {
				return nil, err
			}
			result[i] = int8(b)
		}
		return result, nil
	case elemFloat32:
		result := make([]float32, n)
		for i := range result {
			v, err := rs.readFloat32()
			if err != nil {
				return nil, err
			}
			result[i] = v
		}
		return result, nil
	case elemFloat64:
		result := make([]float64, n)
		for i := range result {
			v, err := rs.readFloat64()
			if err != nil {
				return nil, err
			}
			result[i] = v
		}
		return result, nil
	case elemDecimal:
		result := make([]Decimal, n)
		for i := range result {
			if err := rs.readRawSwapped(result[i][:]); err != nil {
				return nil, err
			}
		}
		return result, nil
	default:
		return nil, ErrCorruptStream
	}
}

// encodeVariableWidthArray writes char/int16/32/64/uint16/32/64 elements.
// In size mode, a prefix bitmap records per-element native-vs-LEB128
// choice before the elements themselves.
func (ws *WriteSession) encodeVariableWidthArray(v reflect.Value, kind arrayElementKind, n int) error {
	nativeTag, compactTag := variableWidthTags(kind, false)
	speed := ws.optimization == OptimizeForSpeed
	tag := compactTag
	if speed {
		tag = nativeTag
	}
	if err := ws.writeTag(tag); err != nil {
		return err
	}
	if err := ws.writeUvarintRaw(uint64(n)); err != nil {
		return err
	}
	return ws.writeVariableWidthElements(v, kind, 0, n, !speed)
}

// writeVariableWidthElements emits [bitmap +] elements for the half-open
// range [off, off+n) of v.
func (ws *WriteSession) writeVariableWidthElements(v reflect.Value, kind arrayElementKind, off, n int, compactMode bool) error {
	nativeWidth := variableWidthNativeSize(kind)
	choices := make([]bool, n) // true = compact/LEB128
	if compactMode {
		bitmap := make([]byte, (n+7)/8)
		for i := 0; i < n; i++ {
			choices[i] = elementWantsCompact(v.Index(off+i), kind, nativeWidth)
			if choices[i] {
				bitmap[i/8] |= 1 << uint(i%8)
			}
		}
		if err := ws.bw.writeOversized(bitmap); err != nil {
			return err
		}
	}
	for i := 0; i < n; i++ {
		if err := writeVariableWidthElement(ws, v.Index(off+i), kind, compactMode && choices[i]); err != nil {
			return err
		}
	}
	return nil
}

func variableWidthTags(kind arrayElementKind, multidim bool) (native, compact Tag) {
	if multidim {
		switch kind {
		case elemChar:
			return TagMDArrayCharNative, TagMDArrayCharCompact
		case elemInt16:
			return TagMDArrayInt16Native, TagMDArrayInt16Compact
		case elemInt32:
			return TagMDArrayInt32Native, TagMDArrayInt32Compact
		case elemInt64:
			return TagMDArrayInt64Native, TagMDArrayInt64Compact
		case elemUint16:
			return TagMDArrayUInt16Native, TagMDArrayUInt16Compact
		case elemUint32:
			return TagMDArrayUInt32Native, TagMDArrayUInt32Compact
		case elemUint64:
			return TagMDArrayUInt64Native, TagMDArrayUInt64Compact
		default:
			return 0, 0
		}
	}
	switch kind {
	case elemChar:
		return TagArrayCharNative, TagArrayCharCompact
	case elemInt16:
		return TagArrayInt16Native, TagArrayInt16Compact
	case elemInt32:
		return TagArrayInt32Native, TagArrayInt32Compact
	case elemInt64:
		return TagArrayInt64Native, TagArrayInt64Compact
	case elemUint16:
		return TagArrayUInt16Native, TagArrayUInt16Compact
	case elemUint32:
		return TagArrayUInt32Native, TagArrayUInt32Compact
	case elemUint64:
		return TagArrayUInt64Native, TagArrayUInt64Compact
	default:
		return 0, 0
	}
}

func variableWidthNativeSize(kind arrayElementKind) int {
	switch kind {
	case elemChar, elemInt16, elemUint16:
		return 2
	case elemInt32, elemUint32:
		return 4
	default:
		return 8
	}
}

func elementWantsCompact(elem reflect.Value, kind arrayElementKind, nativeWidth int) bool {
	switch kind {
	case elemChar, elemUint16, elemUint32, elemUint64:
		return uvarintSize(elem.Uint()) < nativeWidth
	default:
		return varintSize(elem.Int()) < nativeWidth
	}
}

func writeVariableWidthElement(ws *WriteSession, elem reflect.Value, kind arrayElementKind, compact bool) error {
	switch kind {
	case elemChar, elemUint16:
		v := uint16(elem.Uint())
		if compact {
			return ws.writeUvarintRaw(uint64(v))
		}
		return ws.writeNativeUint16(v)
	case elemInt16:
		v := int16(elem.Int())
		if compact {
			return ws.writeVarintRaw(int64(v))
		}
		return ws.writeNativeUint16(uint16(v))
	case elemInt32:
		v := int32(elem.Int())
		if compact {
			return ws.writeVarintRaw(int64(v))
		}
		return ws.writeNativeUint32(uint32(v))
	case elemInt64:
		v := elem.Int()
		if compact {
			return ws.writeVarintRaw(v)
		}
		return ws.writeNativeUint64(uint64(v))
	case elemUint32:
		v := uint32(elem.Uint())
		if compact {
			return ws.writeUvarintRaw(uint64(v))
		}
		return ws.writeNativeUint32(v)
	case elemUint64:
		v := elem.Uint()
		if compact {
			return ws.writeUvarintRaw(v)
		}
		return ws.writeNativeUint64(v)
	default:
		return ErrCorruptStream
	}
}

// decodeVariableWidthElements reads [bitmap +] n elements into a typed
// slice of the kind's element type.
func (rs *ReadSession) decodeVariableWidthElements(kind arrayElementKind, compactMode bool, n int) (any, error) {
	choices := make([]bool, n)
	if compactMode {
		bitmap := make([]byte, (n+7)/8)
		if err := rs.readFull(bitmap); err != nil {
			return nil, err
		}
		for i := range choices {
			choices[i] = bitmap[i/8]&(1<<uint(i%8)) != 0
		}
	}

	switch kind {
	case elemChar:
		result := make([]Char, n)
		for i := range result {
			v, err := readVariableWidthUnsigned(rs, choices[i], 2)
			if err != nil {
				return nil, err
			}
			result[i] = Char(v)
		}
		return result, nil
	case elemInt16:
		result := make([]int16, n)
		for i := range result {
			v, err := readVariableWidthSigned(rs, choices[i], 2)
			if err != nil {
				return nil, err
			}
			result[i] = int16(v)
		}
		return result, nil
	case elemInt32:
		result := make([]int32, n)
		for i := range result {
			v, err := readVariableWidthSigned(rs, choices[i], 4)
			if err != nil {
				return nil, err
			}
			result[i] = int32(v)
		}
		return result, nil
	case elemInt64:
		result := make([]int64, n)
		for i := range result {
			v, err := readVariableWidthSigned(rs, choices[i], 8)
			if err != nil {
				return nil, err
			}
			result[i] = v
		}
		return result, nil
	case elemUint16:
		result := make([]uint16, n)
		for i := range result {
			v, err := readVariableWidthUnsigned(rs, choices[i], 2)
			if err != nil {
				return nil, err
			}
			result[i] = uint16(v)
		}
		return result, nil
	case elemUint32:
		result := make([]uint32, n)
		for i := range result {
			v, err := readVariableWidthUnsigned(rs, choices[i], 4)
			if err != nil {
				return nil, err
			}
			result[i] = uint32(v)
		}
		return result, nil
	case elemUint64:
		result := make([]uint64, n)
		for i := range result {
			v, err := readVariableWidthUnsigned(rs, choices[i], 8)
			if err != nil {
				return nil, err
			}
			result[i] = v
		}
		return result, nil
	default:
		return nil, ErrCorruptStream
	}
}

func readVariableWidthUnsigned(rs *ReadSession, compact bool, width int) (uint64, error) {
	if compact {
		return readUvarint(rs.r)
	}
	switch width {
	case 2:
		v, err := rs.readNativeUint16()
		return uint64(v), err
	case 4:
		v, err := rs.readNativeUint32()
		return uint64(v), err
	default:
		return rs.readNativeUint64()
	}
}
func readVariableWidthSigned(rs *ReadSession, compact bool, width int) (int64, error) {
	if compact {
		return readVarint(rs.r)
	}
	switch width {
	case 2:
		v, err := rs.readNativeUint16()
		return int64(int16(v)), err
	case 4:
		v, err := rs.readNativeUint32()
		return int64(int32(v)), err
	default:
		v, err := rs.readNativeUint64()
		return int64(v), err
	}
}

// encodeArrayOfObjects handles any element type not covered by the fixed
// primitive families: element type metadata is emitted first, then the
// tag, then the length, then each element through the generic dispatcher.
func (ws *WriteSession) encodeArrayOfObjects(v reflect.Value, n int) error {
	elemType := v.Type().Elem()
	if err := ws.writeTypeMetadata(elemType); err != nil {
		return err
	}
	if err := ws.writeTag(TagArrayOfObjects); err != nil {
		return err
	}
	if err := ws.writeUvarintRaw(uint64(n)); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := ws.encodeValue(v.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

// decodeArrayOfObjects mirrors encodeArrayOfObjects: it allocates the
// typed slice with its exact length first, interns it so back-edges in the
// elements can refer to the owning array, then fills elements.
func (rs *ReadSession) decodeArrayOfObjects(elemType reflect.Type) (any, error) {
	if elemType == nil {
		return nil, ErrCorruptStream
	}
	n, err := readUvarint(rs.r)
	if err != nil {
		return nil, err
	}
	arr := reflect.MakeSlice(reflect.SliceOf(elemType), int(n), int(n))
	result := arr.Interface()
	if n > 0 {
		rs.internObjectOnDecode(rs.nextReadObjectID(), result)
	}
	for i := 0; i < int(n); i++ {
		ev, err := rs.decodeValue()
		if err != nil {
			return nil, err
		}
		if err := assignElement(arr.Index(i), ev); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func assignElement(dst reflect.Value, ev any) error {
	if ev == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	v := reflect.ValueOf(ev)
	if !v.Type().AssignableTo(dst.Type()) {
		if !v.Type().ConvertibleTo(dst.Type()) {
			return ErrCorruptStream
		}
		v = v.Convert(dst.Type())
	}
	dst.Set(v)
	return nil
}

/***************************************
 * Multidimensional arrays
 ***************************************/

// MultiArray is a row-major, possibly lower-bound-shifted multidimensional
// array value. Go has no native multidimensional array type with runtime
// shape, so this is the domain type the multidimensional codecs operate
// over. Elements are stored flattened with the rightmost index varying
// fastest.
type MultiArray struct {
	LowerBounds []int
	Counts      []int
	Elem        reflect.Type
	Data        []any
}

func NewMultiArray(elem reflect.Type, lowerBounds, counts []int) *MultiArray {
	m := &MultiArray{
		LowerBounds: lowerBounds,
		Counts:      counts,
		Elem:        elem,
	}
	m.Data = make([]any, m.totalCount())
	return m
}

func (m *MultiArray) Rank() int { return len(m.Counts) }

func (m *MultiArray) totalCount() int {
	total := 1
	for _, c := range m.Counts {
		total *= c
	}
	return total
}

// At returns the element at the given (lower-bound-shifted) indices.
func (m *MultiArray) At(indices ...int) any {
	return m.Data[m.flatten(indices)]
}
func (m *MultiArray) Set(v any, indices ...int) {
	m.Data[m.flatten(indices)] = v
}

func (m *MultiArray) flatten(indices []int) int {
	flat := 0
	for i, idx := range indices {
		flat = flat*m.Counts[i] + (idx - m.LowerBounds[i])
	}
	return flat
}

// dataValue views the flattened elements as a typed slice for the
// primitive element writers.
func (m *MultiArray) dataValue() reflect.Value {
	arr := reflect.MakeSlice(reflect.SliceOf(m.Elem), len(m.Data), len(m.Data))
	for i, ev := range m.Data {
		if ev != nil {
			arr.Index(i).Set(reflect.ValueOf(ev).Convert(m.Elem))
		}
	}
	return arr
}

// encodeMultiArray writes rank, then (lowerBound, count) per dimension,
// then the flattened row-major element list: rightmost index fastest.
// Primitive element kinds use their dedicated multidimensional tags with
// no type metadata; anything else goes through the generic object path.
func (ws *WriteSession) encodeMultiArray(m *MultiArray) error {
	key, internable := internableKey(reflect.ValueOf(m))
	if internable {
		if id, ok := ws.objectIDs[key]; ok {
			return ws.writeAlreadySerialized(id)
		}
		ws.internObject(key)
	}

	kind := classifyElement(m.Elem)
	n := len(m.Data)

	switch kind {
	case elemBool:
		tag := TagMDArrayBool
		packed := ws.optimization != OptimizeForSpeed
		if packed {
			tag = TagMDArrayBoolPacked
		}
		if err := ws.writeMultiArrayHeader(tag, m); err != nil {
			return err
		}
		data := m.dataValue()
		if packed {
			return ws.writePackedBools(data, 0, n)
		}
		for i := 0; i < n; i++ {
			b := byte(0)
			if data.Index(i).Bool() {
				b = 1
			}
			if err := ws.bw.writeByte(b); err != nil {
				return err
			}
		}
		return nil

	case elemByte, elemSByte, elemFloat32, elemFloat64, elemDecimal:
		tag := map[arrayElementKind]Tag{
			elemByte: TagMDArrayByte, elemSByte: TagMDArraySByte,
			elemFloat32: TagMDArrayFloat32, elemFloat64: TagMDArrayFloat64, elemDecimal: TagMDArrayDecimal,
		}[kind]
		if err := ws.writeMultiArrayHeader(tag, m); err != nil {
			return err
		}
		return ws.writeFixedWidthElements(m.dataValue(), kind, 0, n)

	case elemChar, elemInt16, elemInt32, elemInt64, elemUint16, elemUint32, elemUint64:
		nativeTag, compactTag := variableWidthTags(kind, true)
		compactMode := ws.optimization != OptimizeForSpeed
		tag := nativeTag
		if compactMode {
			tag = compactTag
		}
		if err := ws.writeMultiArrayHeader(tag, m); err != nil {
			return err
		}
		return ws.writeVariableWidthElements(m.dataValue(), kind, 0, n, compactMode)

	default:
		if err := ws.writeTypeMetadata(m.Elem); err != nil {
			return err
		}
		if err := ws.writeMultiArrayHeader(TagMultidimensionalArrayOfObjects, m); err != nil {
			return err
		}
		for _, elem := range m.Data {
			if err := ws.encodeValue(reflect.ValueOf(elem)); err != nil {
				return err
			}
		}
		return nil
	}
}

func (ws *WriteSession) writeMultiArrayHeader(tag Tag, m *MultiArray) error {
	if err := ws.writeTag(tag); err != nil {
		return err
	}
	if err := ws.writeUvarintRaw(uint64(m.Rank())); err != nil {
		return err
	}
	for i := 0; i < m.Rank(); i++ {
		if err := ws.writeVarintRaw(int64(m.LowerBounds[i])); err != nil {
			return err
		}
		if err := ws.writeUvarintRaw(uint64(m.Counts[i])); err != nil {
			return err
		}
	}
	return nil
}

// readMultiArrayShape consumes rank and per-dimension (lowerBound, count)
// and allocates the MultiArray with its exact shape, interned before
// elements are filled.
func (rs *ReadSession) readMultiArrayShape(elemType reflect.Type) (*MultiArray, error) {
	rank, err := readUvarint(rs.r)
	if err != nil {
		return nil, err
	}
	lowerBounds := make([]int, rank)
	counts := make([]int, rank)
	for i := range lowerBounds {
		lb, err := readVarint(rs.r)
		if err != nil {
			return nil, err
		}
		count, err := readUvarint(rs.r)
		if err != nil {
			return nil, err
		}
		lowerBounds[i] = int(lb)
		counts[i] = int(count)
	}
	m := NewMultiArray(elemType, lowerBounds, counts)
	rs.internObjectOnDecode(rs.nextReadObjectID(), m)
	return m, nil
}

// decodeMultiArrayPrimitive handles the dedicated multidimensional
// primitive tags (no preceding type metadata on the wire).
func (rs *ReadSession) decodeMultiArrayPrimitive(kind arrayElementKind, compactMode, packed bool) (*MultiArray, error) {
	m, err := rs.readMultiArrayShape(elementTypeOf(kind))
	if err != nil {
		return nil, err
	}
	n := len(m.Data)

	var flat any
	switch kind {
	case elemBool:
		flat, err = rs.decodeBoolElements(n, packed)
	case elemByte, elemSByte, elemFloat32, elemFloat64, elemDecimal:
		flat, err = rs.decodeFixedWidthElements(kind, n)
	default:
		flat, err = rs.decodeVariableWidthElements(kind, compactMode, n)
	}
	if err != nil {
		return nil, err
	}
	fv := reflect.ValueOf(flat)
	for i := 0; i < n; i++ {
		m.Data[i] = fv.Index(i).Interface()
	}
	return m, nil
}

// decodeMultiArrayOfObjects handles TagMultidimensionalArrayOfObjects,
// whose element type metadata was read by the caller.
func (rs *ReadSession) decodeMultiArrayOfObjects(elemType reflect.Type) (*MultiArray, error) {
	if elemType == nil {
		return nil, ErrCorruptStream
	}
	m, err := rs.readMultiArrayShape(elemType)
	if err != nil {
		return nil, err
	}
	for i := range m.Data {
		v, err := rs.decodeValue()
		if err != nil {
			return nil, err
		}
		m.Data[i] = v
	}
	return m, nil
}
