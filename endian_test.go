package binarchive

import (
	"bytes"
	"testing"
)

func TestSwapHelpers(t *testing.T) {
	if got := swap16(0x1234); got != 0x3412 {
		t.Fatalf("swap16: got %#x", got)
	}
	if got := swap32(0x12345678); got != 0x78563412 {
		t.Fatalf("swap32: got %#x", got)
	}
	if got := swap64(0x0123456789ABCDEF); got != 0xEFCDAB8967452301 {
		t.Fatalf("swap64: got %#x", got)
	}
}

func TestValueFromWire(t *testing.T) {
	if got := valueFromWire32(0xDEADBEEF, true); got != 0xDEADBEEF {
		t.Fatalf("little-endian source swapped: got %#x", got)
	}
	if got := valueFromWire32(0xDEADBEEF, false); got != swap32(0xDEADBEEF) {
		t.Fatalf("big-endian source not swapped: got %#x", got)
	}
}

func TestWireOrderRoundTrip(t *testing.T) {
	// whatever layout the writer produced, reading it back under the
	// host's own endianness flag must return the original value
	v := uint32(0x12345678)
	laidOut := wireOrder32(v)
	if got := valueFromWire32(laidOut, hostLittleEndian); got != v {
		t.Fatalf("got %#x, want %#x", got, v)
	}
}

// TestForeignEndianStreamDecodes crafts a stream as the opposite-endian
// producer would have written it and checks the decoder swaps native
// payloads back.
func TestForeignEndianStreamDecodes(t *testing.T) {
	foreignEndian := byte(0)
	if !hostLittleEndian {
		foreignEndian = 1
	}
	// a native uint32 payload laid out in the producer's byte order
	value := uint32(0xDEADBEEF)
	laidOut := swap32(value) // producer's order differs from host's
	raw := []byte{
		foreignEndian, byte(TagUInt32Native),
		byte(laidOut), byte(laidOut >> 8), byte(laidOut >> 16), byte(laidOut >> 24),
	}
	if !hostLittleEndian {
		// readNativeUint32 assembles little-endian first, so feed the
		// bytes in stream order regardless of host
		raw = []byte{
			foreignEndian, byte(TagUInt32Native),
			byte(laidOut >> 24), byte(laidOut >> 16), byte(laidOut >> 8), byte(laidOut),
		}
	}
	result, err := Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	if result != value {
		t.Fatalf("got %#x, want %#x", result, value)
	}
}
