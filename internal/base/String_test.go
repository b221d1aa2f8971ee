package base

import (
	"bytes"
	"strings"
	"testing"
)

func TestUnsafeBytesFromStringAndUnsafeStringFromBytes(t *testing.T) {
	s := "hello"
	b := UnsafeBytesFromString(s)
	if string(b) != s {
		t.Errorf("UnsafeBytesFromString failed: got %q, want %q", string(b), s)
	}
	s2 := UnsafeStringFromBytes(b)
	if s2 != s {
		t.Errorf("UnsafeStringFromBytes failed: got %q, want %q", s2, s)
	}
}

func TestUnsafeStringFromBuffer(t *testing.T) {
	buf := bytes.NewBufferString("buffer")
	s := UnsafeStringFromBuffer(buf)
	if s != "buffer" {
		t.Errorf("UnsafeStringFromBuffer failed: got %q", s)
	}
}

func TestStringerString(t *testing.T) {
	ss := StringerString{"abc"}
	if ss.String() != "abc" {
		t.Errorf("StringerString.String() failed: got %q", ss.String())
	}
}

func TestMakeStringer(t *testing.T) {
	s := MakeStringer(func() string { return "lambda" })
	if s.String() != "lambda" {
		t.Errorf("MakeStringer failed: got %q", s.String())
	}
}

type testStringer struct{ v string }

func (t testStringer) String() string { return t.v }

func TestJoinAndJoinString(t *testing.T) {
	a := testStringer{"a"}
	b := testStringer{"b"}
	c := testStringer{"c"}
	joined := Join(",", a, b, c)
	if joined.String() != "a,b,c" {
		t.Errorf("Join failed: got %q", joined.String())
	}
	joinedStr := JoinString("-", a, b, c)
	if joinedStr != "a-b-c" {
		t.Errorf("JoinString failed: got %q", joinedStr)
	}
}

func TestMakeString(t *testing.T) {
	if MakeString("abc") != "abc" {
		t.Errorf("MakeString string failed")
	}
	if MakeString([]byte("def")) != "def" {
		t.Errorf("MakeString []byte failed")
	}
	s := StringerString{"ghi"}
	if MakeString(s) != "ghi" {
		t.Errorf("MakeString Stringer failed")
	}
	if !strings.HasPrefix(MakeString(123), "123") {
		t.Errorf("MakeString default failed")
	}
}

func TestFourCC(t *testing.T) {
	f := MakeFourCC('A', 'B', 'C', 'D')
	if f.String() != "ABCD" {
		t.Errorf("FourCC.String() failed: got %q", f.String())
	}
	b := f.Bytes()
	if string(b[:]) != "ABCD" {
		t.Errorf("FourCC.Bytes() failed: got %q", string(b[:]))
	}
	if !f.Valid() {
		t.Errorf("FourCC.Valid() failed")
	}
}
