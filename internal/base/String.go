package base

import (
	"bytes"
	"fmt"
	"strings"
	"unsafe"
)

/***************************************
 * Avoid allocation for string/[]byte conversions
 ***************************************/

func UnsafeBytesFromString(in string) []byte {
	return unsafe.Slice(unsafe.StringData(in), len(in))
}
func UnsafeStringFromBytes(raw []byte) string {
	// from func (strings.Builder) String() string
	return unsafe.String(unsafe.SliceData(raw), len(raw))
}
func UnsafeStringFromBuffer(buf *bytes.Buffer) string {
	return UnsafeStringFromBytes(buf.Bytes())
}

/***************************************
 * StringVariant implements fmt.Stringer
 ***************************************/

type StringerString struct {
	Value string
}

func (x StringerString) String() string {
	return x.Value
}

/***************************************
 * Create fmt.Stringer from a func
 ***************************************/

type lambdaStringer func() string

func (x lambdaStringer) String() string {
	return x()
}
func MakeStringer(fn func() string) fmt.Stringer {
	return lambdaStringer(fn)
}

/***************************************
 * Join fmt.Stringer lazily
 ***************************************/

type jointStringer[T fmt.Stringer] struct {
	it    []T
	delim string
}

func (join jointStringer[T]) String() string {
	var notFirst bool
	sb := strings.Builder{}
	for _, x := range join.it {
		if notFirst {
			sb.WriteString(join.delim)
		}
		sb.WriteString(x.String())
		notFirst = true
	}
	return sb.String()
}

func Join[T fmt.Stringer](delim string, it ...T) fmt.Stringer {
	return jointStringer[T]{delim: delim, it: it}
}
func JoinString[T fmt.Stringer](delim string, it ...T) string {
	return Join(delim, it...).String()
}

func MakeString(x any) string {
	switch it := x.(type) {
	case string:
		return it
	case fmt.Stringer:
		return it.String()
	case []byte:
		return UnsafeStringFromBytes(it)
	default:
		return fmt.Sprint(x)
	}
}

/***************************************
 * FourCC
 ***************************************/

type FourCC uint32

func BytesToFourCC(a, b, c, d byte) FourCC {
	return FourCC(uint32(a) | (uint32(b) << 8) | (uint32(c) << 16) | (uint32(d) << 24))
}
func MakeFourCC(a, b, c, d rune) FourCC {
	return BytesToFourCC(byte(a), byte(b), byte(c), byte(d))
}
func (x FourCC) Valid() bool { return x != 0 }
func (x FourCC) Bytes() (result [4]byte) {
	result[0] = byte((uint32(x) >> 0) & 0xFF)
	result[1] = byte((uint32(x) >> 8) & 0xFF)
	result[2] = byte((uint32(x) >> 16) & 0xFF)
	result[3] = byte((uint32(x) >> 24) & 0xFF)
	return
}
func (x FourCC) String() string {
	raw := x.Bytes()
	return string(raw[:])
}
