package binarchive

import (
	"bytes"
	"reflect"
	"testing"
)

func TestTypeDescriptorName(t *testing.T) {
	cases := []struct {
		typ  reflect.Type
		want string
	}{
		{reflect.TypeOf(point{}), "github.com/streamforge/binarchive.point"},
		{reflect.TypeOf((*point)(nil)), "*github.com/streamforge/binarchive.point"},
		{reflect.TypeOf([]int32{}), "[]int32"},
		{reflect.TypeOf(""), "string"},
	}
	for _, tc := range cases {
		if got := typeDescriptorName(tc.typ); got != tc.want {
			t.Errorf("typeDescriptorName(%v) = %q, want %q", tc.typ, got, tc.want)
		}
	}
}

func TestSplitGenericArgs(t *testing.T) {
	cases := []struct {
		in       string
		wantName string
		wantArgs []string
	}{
		{"pkg.Foo", "pkg.Foo", nil},
		{"pkg.Foo[int]", "pkg.Foo", []string{"int"}},
		{"pkg.Foo[int,string]", "pkg.Foo", []string{"int", "string"}},
		{"pkg.Foo[pkg.Bar[int]]", "pkg.Foo", []string{"pkg.Bar[int]"}},
		{"pkg.Foo[pkg.Bar[int],bool]", "pkg.Foo", []string{"pkg.Bar[int]", "bool"}},
	}
	for _, tc := range cases {
		name, args := splitGenericArgs(tc.in)
		if name != tc.wantName || !reflect.DeepEqual(args, tc.wantArgs) {
			t.Errorf("splitGenericArgs(%q) = %q %v, want %q %v", tc.in, name, args, tc.wantName, tc.wantArgs)
		}
	}
}

func TestBuildTypeDescriptorGeneric(t *testing.T) {
	td := TypeDescriptor{Name: "pkg.List", Args: []TypeDescriptor{{Name: "int32"}}}
	if key := typeDescriptorKey(td); key != "pkg.List[int32]" {
		t.Fatalf("got %q", key)
	}
}

func TestTypeIdBackReference(t *testing.T) {
	// A, B, A: the third element must reference A's type by id, so A's
	// name appears exactly once on the wire
	root := []any{&point{X: 1}, &shape{Name: "s"}, &point{X: 2}}
	raw := encodeBytes(t, root)
	if n := bytes.Count(raw, []byte("binarchive.point")); n != 1 {
		t.Fatalf("point type name appears %d times, want 1", n)
	}
	if n := bytes.Count(raw, []byte("binarchive.shape")); n != 1 {
		t.Fatalf("shape type name appears %d times, want 1", n)
	}

	got := roundTrip(t, root)
	decoded := got.([]any)
	if decoded[0].(*point).X != 1 || decoded[2].(*point).X != 2 {
		t.Fatalf("round trip: got %#v", decoded)
	}
}

func TestTypeGuidStable(t *testing.T) {
	a := TypeGuid(reflect.TypeOf(point{}))
	b := TypeGuid(reflect.TypeOf(point{}))
	if a != b {
		t.Fatal("TypeGuid not stable")
	}
	if a == (Guid{}) {
		t.Fatal("TypeGuid is zero")
	}
	if TypeGuid(reflect.TypeOf(shape{})) == a {
		t.Fatal("distinct types share a guid")
	}
}
