package binarchive

import (
	"bytes"
	"testing"
)

func TestBufferedWriterSmallWrites(t *testing.T) {
	var sink bytes.Buffer
	bw := newBufferedWriter(&sink)
	for i := 0; i < 10; i++ {
		if err := bw.writeByte(byte(i)); err != nil {
			t.Fatalf("writeByte: %v", err)
		}
	}
	if err := bw.close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if sink.Len() != 10 {
		t.Fatalf("got %d bytes, want 10", sink.Len())
	}
	for i, b := range sink.Bytes() {
		if b != byte(i) {
			t.Fatalf("byte %d = %d, want %d", i, b, i)
		}
	}
}

func TestBufferedWriterOversizedSpan(t *testing.T) {
	var sink bytes.Buffer
	bw := newBufferedWriter(&sink)
	if err := bw.writeByte(0xAA); err != nil {
		t.Fatal(err)
	}
	big := bytes.Repeat([]byte{0x42}, bufferedWriterFlushLimit+1024)
	if err := bw.writeOversized(big); err != nil {
		t.Fatalf("writeOversized: %v", err)
	}
	if err := bw.writeByte(0xBB); err != nil {
		t.Fatal(err)
	}
	if err := bw.close(); err != nil {
		t.Fatal(err)
	}
	want := append(append([]byte{0xAA}, big...), 0xBB)
	if !bytes.Equal(sink.Bytes(), want) {
		t.Fatalf("got %d bytes, want %d", sink.Len(), len(want))
	}
}

func TestBufferedWriterAdvancePastSpanRejected(t *testing.T) {
	var sink bytes.Buffer
	bw := newBufferedWriter(&sink)
	span, err := bw.getSpan(4)
	if err != nil {
		t.Fatal(err)
	}
	if len(span) < 4 {
		t.Fatalf("span shorter than requested: %d", len(span))
	}
	if err := bw.advance(len(span) + 1); err != ErrCorruptStream {
		t.Fatalf("got %v, want ErrCorruptStream", err)
	}
}

func TestBufferedWriterRejectsNegativeSize(t *testing.T) {
	var sink bytes.Buffer
	bw := newBufferedWriter(&sink)
	if _, err := bw.getSpan(-1); err != ErrCorruptStream {
		t.Fatalf("got %v, want ErrCorruptStream", err)
	}
}
