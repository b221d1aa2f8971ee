package binarchive

import (
	"bytes"
	"testing"
)

func TestUvarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 0x7F, 0x80, 0x1FFF, 0xFFFFFFFF, 1<<63 - 1}
	for _, v := range cases {
		buf := putUvarint(nil, v)
		if len(buf) != uvarintSize(v) {
			t.Fatalf("uvarintSize mismatch for %d: got %d, want %d", v, uvarintSize(v), len(buf))
		}
		got, err := readUvarint(bytes.NewReader(buf))
		if err != nil {
			t.Fatalf("readUvarint(%d): %v", v, err)
		}
		if got != v {
			t.Fatalf("roundtrip(%d) = %d", v, got)
		}
	}
}

func TestVarintRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 63, -64, 64, -65, 1 << 40, -(1 << 40)}
	for _, v := range cases {
		buf := putVarint(nil, v)
		if len(buf) != varintSize(v) {
			t.Fatalf("varintSize mismatch for %d: got %d, want %d", v, varintSize(v), len(buf))
		}
		got, err := readVarint(bytes.NewReader(buf))
		if err != nil {
			t.Fatalf("readVarint(%d): %v", v, err)
		}
		if got != v {
			t.Fatalf("roundtrip(%d) = %d", v, got)
		}
	}
}

func TestUvarintWorstCase(t *testing.T) {
	if n := uvarintSize(uint64(^uint32(0))); n > LEB128Max32 {
		t.Fatalf("uint32 max encoded in %d bytes, want <= %d", n, LEB128Max32)
	}
	if n := uvarintSize(^uint64(0)); n > LEB128Max64 {
		t.Fatalf("uint64 max encoded in %d bytes, want <= %d", n, LEB128Max64)
	}
}

func TestCompactHelpersAnyWidth(t *testing.T) {
	if got := compactUnsigned(nil, uint16(0x80)); len(got) != 2 {
		t.Fatalf("uint16: got % x", got)
	}
	if got := compactUnsigned(nil, uint64(1)); len(got) != 1 {
		t.Fatalf("uint64: got % x", got)
	}
	if got := compactSigned(nil, int32(-1)); len(got) != 1 || got[0] != 0x7F {
		t.Fatalf("int32: got % x", got)
	}
	if got := compactSigned(nil, int64(-129)); len(got) != 2 {
		t.Fatalf("int64: got % x", got)
	}
}

func TestReadUvarintTruncated(t *testing.T) {
	_, err := readUvarint(bytes.NewReader([]byte{0x80}))
	if err != ErrCorruptStream {
		t.Fatalf("got %v, want ErrCorruptStream", err)
	}
}
