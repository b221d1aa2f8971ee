package binarchive

import (
	"bytes"
	"reflect"
	"testing"
)

func TestBoolArrayPackedBits(t *testing.T) {
	root := []bool{true, false, true, true, false, false, false, true, true}
	raw := encodeBytes(t, root)
	// bit i of the packed payload is element i: 0b10001101 = elements
	// 0, 2, 3, 7; the ninth element spills into bit 0 of the tail byte
	want := []byte{endianByte(), byte(TagArrayBoolPacked), 9, 0b10001101, 0b00000001}
	if !bytes.Equal(raw, want) {
		t.Fatalf("got % x, want % x", raw, want)
	}
	got := roundTrip(t, root)
	if !reflect.DeepEqual(got, root) {
		t.Fatalf("round trip: got %v", got)
	}
}

func TestBoolArraySpeedMode(t *testing.T) {
	root := []bool{true, false, true}
	raw := encodeBytes(t, root, WithSpeedOverSize())
	want := []byte{endianByte(), byte(TagArrayBool), 3, 1, 0, 1}
	if !bytes.Equal(raw, want) {
		t.Fatalf("got % x, want % x", raw, want)
	}
	got := roundTrip(t, root, WithSpeedOverSize())
	if !reflect.DeepEqual(got, root) {
		t.Fatalf("round trip: got %v", got)
	}
}

func TestSharedStringArray(t *testing.T) {
	hello := "hello"
	root := []string{hello, hello}
	raw := encodeBytes(t, root)
	if n := bytes.Count(raw, []byte("hello")); n != 1 {
		t.Fatalf("payload %q appears %d times, want 1", hello, n)
	}
	got := roundTrip(t, root)
	decoded, ok := got.([]string)
	if !ok {
		t.Fatalf("got %T", got)
	}
	if !reflect.DeepEqual(decoded, root) {
		t.Fatalf("round trip: got %v", decoded)
	}
}

func TestFixedWidthArrayRoundTrips(t *testing.T) {
	values := []any{
		[]byte{0, 1, 2, 255},
		[]int8{-128, 0, 127},
		[]float32{1.5, -2.5},
		[]float64{3.14159, -1e9},
		[]Decimal{{1}, {2}},
	}
	for _, v := range values {
		got := roundTrip(t, v)
		if !reflect.DeepEqual(got, v) {
			t.Errorf("round trip %T: got %#v", v, got)
		}
	}
}

func TestVariableWidthArrayBitmap(t *testing.T) {
	// small values pick LEB128, the large one stays native
	root := []int32{1, 2, 0x7FFFFFFF, 3}
	raw := encodeBytes(t, root)
	if raw[1] != byte(TagArrayInt32Compact) {
		t.Fatalf("tag: got %#x", raw[1])
	}
	// bitmap covers 4 elements in one byte: 1101
	if raw[3] != 0b00001011 {
		t.Fatalf("bitmap: got %#b", raw[3])
	}
	got := roundTrip(t, root)
	if !reflect.DeepEqual(got, root) {
		t.Fatalf("round trip: got %v", got)
	}
}

func TestVariableWidthArrayRoundTrips(t *testing.T) {
	values := []any{
		[]Char{'a', 'b', 0xFFFF},
		[]int16{-1, 0x7FFF, -0x8000},
		[]uint16{0, 0xFFFF},
		[]int32{-5, 5, 1 << 30},
		[]uint32{0x7F, 1 << 31},
		[]int64{-1 << 62, 1},
		[]uint64{1, 1 << 63},
	}
	for _, mode := range [][]EncodeOption{nil, {WithSpeedOverSize()}} {
		for _, v := range values {
			got := roundTrip(t, v, mode...)
			if !reflect.DeepEqual(got, v) {
				t.Errorf("round trip %T: got %#v", v, got)
			}
		}
	}
}

func TestArrayOfObjectsRoundTrip(t *testing.T) {
	root := []any{int32(1), "two", true, nil}
	got := roundTrip(t, root)
	decoded, ok := got.([]any)
	if !ok {
		t.Fatalf("got %T", got)
	}
	if !reflect.DeepEqual(decoded, root) {
		t.Fatalf("round trip: got %#v", decoded)
	}
}

func TestArraySelfReference(t *testing.T) {
	root := make([]any, 2)
	root[0] = "payload"
	root[1] = root

	got := roundTrip(t, root)
	decoded, ok := got.([]any)
	if !ok {
		t.Fatalf("got %T", got)
	}
	if decoded[0] != "payload" {
		t.Fatalf("element 0: got %v", decoded[0])
	}
	inner, ok := decoded[1].([]any)
	if !ok {
		t.Fatalf("element 1: got %T", decoded[1])
	}
	if reflect.ValueOf(decoded).Pointer() != reflect.ValueOf(inner).Pointer() {
		t.Fatal("self reference lost: inner slice is a different instance")
	}
}

func TestMultiArrayInt32Compact(t *testing.T) {
	m := NewMultiArray(reflect.TypeOf(int32(0)), []int{1, 1}, []int{2, 2})
	m.Set(int32(10), 1, 1)
	m.Set(int32(20), 1, 2)
	m.Set(int32(30), 2, 1)
	m.Set(int32(40), 2, 2)

	raw := encodeBytes(t, m)
	want := []byte{
		endianByte(), byte(TagMDArrayInt32Compact),
		2,    // rank
		1, 2, // dim 0: lower bound, count
		1, 2, // dim 1: lower bound, count
		0b00001111,     // all four elements fit LEB128
		10, 20, 30, 40, // the elements
	}
	if !bytes.Equal(raw, want) {
		t.Fatalf("got % x, want % x", raw, want)
	}

	got := roundTrip(t, m)
	decoded, ok := got.(*MultiArray)
	if !ok {
		t.Fatalf("got %T", got)
	}
	if !reflect.DeepEqual(decoded.LowerBounds, m.LowerBounds) ||
		!reflect.DeepEqual(decoded.Counts, m.Counts) ||
		!reflect.DeepEqual(decoded.Data, m.Data) {
		t.Fatalf("round trip: got %#v, want %#v", decoded, m)
	}
	if v := decoded.At(2, 1); v != int32(30) {
		t.Fatalf("At(2,1): got %v", v)
	}
}

func TestMultiArrayOfObjects(t *testing.T) {
	m := NewMultiArray(reflect.TypeOf(""), []int{0}, []int{3})
	m.Set("a", 0)
	m.Set("b", 1)
	m.Set("a", 2)

	got := roundTrip(t, m)
	decoded, ok := got.(*MultiArray)
	if !ok {
		t.Fatalf("got %T", got)
	}
	if !reflect.DeepEqual(decoded.Data, m.Data) {
		t.Fatalf("round trip: got %#v", decoded.Data)
	}
}

func TestValueArrayEncodesAsSlice(t *testing.T) {
	got := roundTrip(t, [3]int32{7, 8, 9})
	if !reflect.DeepEqual(got, []int32{7, 8, 9}) {
		t.Fatalf("got %#v", got)
	}
}

func TestEmptyArrayRoundTrip(t *testing.T) {
	got := roundTrip(t, []int32{})
	decoded, ok := got.([]int32)
	if !ok {
		t.Fatalf("got %T", got)
	}
	if len(decoded) != 0 {
		t.Fatalf("got %v", decoded)
	}
}
