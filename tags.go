package binarchive

// Tag is the one-byte discriminator that precedes every encoded value on
// the wire. The tag space is closed: any byte read at a tag position that
// does not match a constant below is ErrCorruptStream.
type Tag byte

const (
	TagNull             Tag = 0x00
	TagAlreadySerialized Tag = 0x01
	TagType             Tag = 0x02
	TagTypeID           Tag = 0x03
	TagTypeObject       Tag = 0x04
	TagObject           Tag = 0x05
	TagBuffer           Tag = 0x06
	TagEnum             Tag = 0x07
	TagArchiveStart     Tag = 0x08
	TagArchiveEnd       Tag = 0x09
	TagBaseArchiveStart Tag = 0x0A

	TagBoolFalse Tag = 0x0B
	TagBoolTrue  Tag = 0x0C

	TagByte  Tag = 0x0D
	TagSByte Tag = 0x0E

	TagCharNative Tag = 0x0F
	TagCharLEB128 Tag = 0x10

	TagInt16Native Tag = 0x11
	TagInt16LEB128 Tag = 0x12
	TagInt32Native Tag = 0x13
	TagInt32LEB128 Tag = 0x14
	TagInt64Native Tag = 0x15
	TagInt64LEB128 Tag = 0x16

	TagUInt16Native Tag = 0x17
	TagUInt16LEB128 Tag = 0x18
	TagUInt32Native Tag = 0x19
	TagUInt32LEB128 Tag = 0x1A
	TagUInt64Native Tag = 0x1B
	TagUInt64LEB128 Tag = 0x1C

	TagFloat32 Tag = 0x1D
	TagFloat64 Tag = 0x1E
	TagDecimal Tag = 0x1F

	TagStringUTF8  Tag = 0x20
	TagStringUTF16 Tag = 0x21

	TagDateTime       Tag = 0x22
	TagDateTimeOffset Tag = 0x23
	TagDateOnly       Tag = 0x24
	TagTimeOfDay      Tag = 0x25

	TagGuid Tag = 0x26

	// 1-D array tags, paired native/compact where the element is
	// variable-width; fixed-width elements have a single native tag.
	TagArrayBool    Tag = 0x27
	TagArrayByte    Tag = 0x28
	TagArraySByte   Tag = 0x29
	TagArrayFloat32 Tag = 0x2A
	TagArrayFloat64 Tag = 0x2B
	TagArrayDecimal Tag = 0x2C

	TagArrayCharNative   Tag = 0x2D
	TagArrayCharCompact  Tag = 0x2E
	TagArrayInt16Native  Tag = 0x2F
	TagArrayInt16Compact Tag = 0x30
	TagArrayInt32Native  Tag = 0x31
	TagArrayInt32Compact Tag = 0x32
	TagArrayInt64Native  Tag = 0x33
	TagArrayInt64Compact Tag = 0x34

	TagArrayUInt16Native  Tag = 0x35
	TagArrayUInt16Compact Tag = 0x36
	TagArrayUInt32Native  Tag = 0x37
	TagArrayUInt32Compact Tag = 0x38
	TagArrayUInt64Native  Tag = 0x39
	TagArrayUInt64Compact Tag = 0x3A

	// Multidimensional counterparts of the above.
	TagMDArrayBool    Tag = 0x3B
	TagMDArrayByte    Tag = 0x3C
	TagMDArraySByte   Tag = 0x3D
	TagMDArrayFloat32 Tag = 0x3E
	TagMDArrayFloat64 Tag = 0x3F
	TagMDArrayDecimal Tag = 0x40

	TagMDArrayCharNative   Tag = 0x41
	TagMDArrayCharCompact  Tag = 0x42
	TagMDArrayInt16Native  Tag = 0x43
	TagMDArrayInt16Compact Tag = 0x44
	TagMDArrayInt32Native  Tag = 0x45
	TagMDArrayInt32Compact Tag = 0x46
	TagMDArrayInt64Native  Tag = 0x47
	TagMDArrayInt64Compact Tag = 0x48

	TagMDArrayUInt16Native  Tag = 0x49
	TagMDArrayUInt16Compact Tag = 0x4A
	TagMDArrayUInt32Native  Tag = 0x4B
	TagMDArrayUInt32Compact Tag = 0x4C
	TagMDArrayUInt64Native  Tag = 0x4D
	TagMDArrayUInt64Compact Tag = 0x4E

	TagArrayOfObjects                 Tag = 0x4F
	TagMultidimensionalArrayOfObjects Tag = 0x50

	// Bit-packed size-mode variants of the bool array tags.
	TagArrayBoolPacked   Tag = 0x51
	TagMDArrayBoolPacked Tag = 0x52

	// LEB128 size-mode variants of the date-only and time-only tags.
	TagDateOnlyLEB128  Tag = 0x53
	TagTimeOfDayLEB128 Tag = 0x54
)

func (t Tag) known() bool {
	return t <= TagTimeOfDayLEB128
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return "Tag(?)"
}

var tagNames = map[Tag]string{
	TagNull: "Null", TagAlreadySerialized: "AlreadySerialized", TagType: "Type",
	TagTypeID: "TypeId", TagTypeObject: "TypeObject", TagObject: "Object",
	TagBuffer: "Buffer", TagEnum: "Enum", TagArchiveStart: "ArchiveStart",
	TagArchiveEnd: "ArchiveEnd", TagBaseArchiveStart: "BaseArchiveStart",
	TagBoolFalse: "BoolFalse", TagBoolTrue: "BoolTrue",
	TagByte: "Byte", TagSByte: "SByte",
	TagCharNative: "CharNative", TagCharLEB128: "CharLEB128",
	TagInt16Native: "Int16Native", TagInt16LEB128: "Int16LEB128",
	TagInt32Native: "Int32Native", TagInt32LEB128: "Int32LEB128",
	TagInt64Native: "Int64Native", TagInt64LEB128: "Int64LEB128",
	TagUInt16Native: "UInt16Native", TagUInt16LEB128: "UInt16LEB128",
	TagUInt32Native: "UInt32Native", TagUInt32LEB128: "UInt32LEB128",
	TagUInt64Native: "UInt64Native", TagUInt64LEB128: "UInt64LEB128",
	TagFloat32: "Float32", TagFloat64: "Float64", TagDecimal: "Decimal",
	TagStringUTF8: "StringUTF8", TagStringUTF16: "StringUTF16",
	TagDateTime: "DateTime", TagDateTimeOffset: "DateTimeOffset",
	TagDateOnly: "DateOnly", TagTimeOfDay: "TimeOfDay", TagGuid: "Guid",
	TagArrayBool: "ArrayBool", TagArrayByte: "ArrayByte", TagArraySByte: "ArraySByte",
	TagArrayFloat32: "ArrayFloat32", TagArrayFloat64: "ArrayFloat64", TagArrayDecimal: "ArrayDecimal",
	TagArrayCharNative: "ArrayCharNative", TagArrayCharCompact: "ArrayCharCompact",
	TagArrayInt16Native: "ArrayInt16Native", TagArrayInt16Compact: "ArrayInt16Compact",
	TagArrayInt32Native: "ArrayInt32Native", TagArrayInt32Compact: "ArrayInt32Compact",
	TagArrayInt64Native: "ArrayInt64Native", TagArrayInt64Compact: "ArrayInt64Compact",
	TagArrayUInt16Native: "ArrayUInt16Native", TagArrayUInt16Compact: "ArrayUInt16Compact",
	TagArrayUInt32Native: "ArrayUInt32Native", TagArrayUInt32Compact: "ArrayUInt32Compact",
	TagArrayUInt64Native: "ArrayUInt64Native", TagArrayUInt64Compact: "ArrayUInt64Compact",
	TagMDArrayBool: "MDArrayBool", TagMDArrayByte: "MDArrayByte", TagMDArraySByte: "MDArraySByte",
	TagMDArrayFloat32: "MDArrayFloat32", TagMDArrayFloat64: "MDArrayFloat64", TagMDArrayDecimal: "MDArrayDecimal",
	TagMDArrayCharNative: "MDArrayCharNative", TagMDArrayCharCompact: "MDArrayCharCompact",
	TagMDArrayInt16Native: "MDArrayInt16Native", TagMDArrayInt16Compact: "MDArrayInt16Compact",
	TagMDArrayInt32Native: "MDArrayInt32Native", TagMDArrayInt32Compact: "MDArrayInt32Compact",
	TagMDArrayInt64Native: "MDArrayInt64Native", TagMDArrayInt64Compact: "MDArrayInt64Compact",
	TagMDArrayUInt16Native: "MDArrayUInt16Native", TagMDArrayUInt16Compact: "MDArrayUInt16Compact",
	TagMDArrayUInt32Native: "MDArrayUInt32Native", TagMDArrayUInt32Compact: "MDArrayUInt32Compact",
	TagMDArrayUInt64Native: "MDArrayUInt64Native", TagMDArrayUInt64Compact: "MDArrayUInt64Compact",
	TagArrayOfObjects: "ArrayOfObjects", TagMultidimensionalArrayOfObjects: "MultidimensionalArrayOfObjects",
	TagArrayBoolPacked: "ArrayBoolPacked", TagMDArrayBoolPacked: "MDArrayBoolPacked",
	TagDateOnlyLEB128: "DateOnlyLEB128", TagTimeOfDayLEB128: "TimeOfDayLEB128",
}
