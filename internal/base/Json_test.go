package base

import (
	"bytes"
	"testing"
)

type jsonTestStringer struct{ v string }

func (x jsonTestStringer) String() string { return x.v }
func (x *jsonTestStringer) Set(s string) error {
	x.v = s
	return nil
}

func TestMarshalUnmarshalJSON(t *testing.T) {
	src := jsonTestStringer{v: "archive"}
	data, err := MarshalJSON(src)
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if string(data) != `"archive"` {
		t.Errorf("MarshalJSON failed: got %q", string(data))
	}

	var dst jsonTestStringer
	if err := UnmarshalJSON(&dst, data); err != nil {
		t.Fatalf("UnmarshalJSON failed: %v", err)
	}
	if dst.v != "archive" {
		t.Errorf("UnmarshalJSON failed: got %q", dst.v)
	}
}

func TestJsonSerializeDeserialize(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	var buf bytes.Buffer
	src := payload{Name: "typeintern", Count: 3}
	if err := JsonSerialize(src, &buf); err != nil {
		t.Fatalf("JsonSerialize failed: %v", err)
	}

	var dst payload
	if err := JsonDeserialize(&dst, bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("JsonDeserialize failed: %v", err)
	}
	if dst != src {
		t.Errorf("round-trip mismatch: got %+v, want %+v", dst, src)
	}
}

func TestJsonSerializePrettyPrint(t *testing.T) {
	var compact, pretty bytes.Buffer
	src := JsonMap{"a": 1, "b": 2}

	if err := JsonSerialize(src, &compact); err != nil {
		t.Fatalf("JsonSerialize failed: %v", err)
	}
	if err := JsonSerialize(src, &pretty, OptionJsonPrettyPrint(true)); err != nil {
		t.Fatalf("JsonSerialize failed: %v", err)
	}
	if compact.Len() == 0 || pretty.Len() == 0 {
		t.Fatalf("expected non-empty output")
	}
	if compact.Len() >= pretty.Len() {
		t.Errorf("expected pretty-printed output to be larger than compact output")
	}
}

func TestPrettyPrint(t *testing.T) {
	s := PrettyPrint(JsonMap{"key": "value"})
	if len(s) == 0 {
		t.Fatalf("PrettyPrint returned empty string")
	}
	if (PrettyPrinter{Ref: JsonMap{"key": "value"}}).String() != s {
		t.Errorf("PrettyPrinter.String() mismatch")
	}
}
