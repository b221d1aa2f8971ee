package binarchive

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

/***************************************
 * Test fixtures
 ***************************************/

type point struct {
	X, Y int32
}

func (p *point) MarshalArchive(w *ArchiveWrite) error {
	if err := w.Int32(p.X); err != nil {
		return err
	}
	return w.Int32(p.Y)
}
func (p *point) UnmarshalArchive(r *ArchiveRead) error {
	var err error
	if p.X, err = r.Int32(); err != nil {
		return err
	}
	p.Y, err = r.Int32()
	return err
}

type shape struct {
	Name string
}

func (s *shape) MarshalArchive(w *ArchiveWrite) error {
	return w.String(s.Name)
}
func (s *shape) UnmarshalArchive(r *ArchiveRead) error {
	var err error
	s.Name, err = r.String()
	return err
}

var shapeType = reflect.TypeOf((*shape)(nil))

type circle struct {
	shape
	Radius float64
}

func (c *circle) MarshalArchive(w *ArchiveWrite) error {
	if err := w.WriteBase(shapeType, &c.shape, 1); err != nil {
		return err
	}
	return w.Float64(c.Radius)
}
func (c *circle) UnmarshalArchive(r *ArchiveRead) error {
	br, err := r.PrepareBaseArchive(shapeType, 1)
	if err != nil {
		return err
	}
	if err := c.shape.UnmarshalArchive(br); err != nil {
		return err
	}
	c.Radius, err = r.Float64()
	return err
}

type node struct {
	Label string
	Next  *node
}

func (n *node) MarshalArchive(w *ArchiveWrite) error {
	if err := w.String(n.Label); err != nil {
		return err
	}
	return w.Object(n.Next)
}
func (n *node) UnmarshalArchive(r *ArchiveRead) error {
	var err error
	if n.Label, err = r.String(); err != nil {
		return err
	}
	obj, err := r.Object()
	if err != nil {
		return err
	}
	if obj != nil {
		n.Next = obj.(*node)
	}
	return nil
}

type wideString struct {
	Value string
}

func (s *wideString) MarshalArchive(w *ArchiveWrite) error {
	return w.StringUTF16(s.Value)
}
func (s *wideString) UnmarshalArchive(r *ArchiveRead) error {
	var err error
	s.Value, err = r.String()
	return err
}

type blobCarrier struct {
	Payload []byte
}

func (b *blobCarrier) MarshalArchive(w *ArchiveWrite) error {
	return w.WriteStream(bytes.NewReader(b.Payload))
}
func (b *blobCarrier) UnmarshalArchive(r *ArchiveRead) error {
	var sink bytes.Buffer
	if err := r.ReadStream(&sink); err != nil {
		return err
	}
	b.Payload = sink.Bytes()
	return nil
}

type poisoned struct{}

var errPoisoned = errors.New("poisoned encoder")

func (p *poisoned) MarshalArchive(w *ArchiveWrite) error {
	return errPoisoned
}
func (p *poisoned) UnmarshalArchive(r *ArchiveRead) error {
	return nil
}

// pair is served by an external codec instead of its own methods.
type pair struct {
	K, V string
}

type pairCodec struct{}

func (pairCodec) Encode(w *ArchiveWrite, obj any) error {
	p := obj.(pair)
	if err := w.String(p.K); err != nil {
		return err
	}
	return w.String(p.V)
}
func (pairCodec) Decode(r *ArchiveRead) (any, error) {
	var p pair
	var err error
	if p.K, err = r.String(); err != nil {
		return nil, err
	}
	p.V, err = r.String()
	return p, err
}
func (pairCodec) Version() uint32 { return 1 }

type colorEnum int32

const (
	colorRed colorEnum = iota
	colorGreen
	colorBlue
)

func init() {
	for _, err := range []error{
		RegisterType[point](2),
		RegisterType[shape](1),
		RegisterType[circle](1),
		RegisterType[node](1),
		RegisterType[wideString](1),
		RegisterType[blobCarrier](1),
		RegisterType[poisoned](1),
	} {
		if err != nil {
			panic(err)
		}
	}
	RegisterExternalCodec(reflect.TypeOf(pair{}), pairCodec{})
	RegisterEnumCoercion(func(raw int64) colorEnum { return colorEnum(raw) })
}

/***************************************
 * Custom type round trips
 ***************************************/

func TestCustomTypeRoundTrip(t *testing.T) {
	root := &point{X: -7, Y: 1 << 20}
	got := roundTrip(t, root)
	decoded, ok := got.(*point)
	if !ok {
		t.Fatalf("got %T", got)
	}
	if *decoded != *root {
		t.Fatalf("got %+v, want %+v", decoded, root)
	}
}

func TestSharedReferenceIdentity(t *testing.T) {
	shared := &point{X: 1, Y: 2}
	root := []any{shared, shared}
	got := roundTrip(t, root)
	decoded := got.([]any)
	first, ok1 := decoded[0].(*point)
	second, ok2 := decoded[1].(*point)
	if !ok1 || !ok2 {
		t.Fatalf("got %T, %T", decoded[0], decoded[1])
	}
	if first != second {
		t.Fatal("identity lost: decoded two distinct instances")
	}
	if *first != *shared {
		t.Fatalf("got %+v", first)
	}
}

func TestTypeMetadataEmittedOnce(t *testing.T) {
	root := []any{&point{X: 1}, &point{X: 2}, &point{X: 3}}
	raw := encodeBytes(t, root)
	if n := bytes.Count(raw, []byte("point")); n != 1 {
		t.Fatalf("type name appears %d times, want 1", n)
	}
}

func TestExternalCodecRoundTrip(t *testing.T) {
	root := pair{K: "key", V: "value"}
	got := roundTrip(t, root)
	decoded, ok := got.(pair)
	if !ok {
		t.Fatalf("got %T", got)
	}
	if decoded != root {
		t.Fatalf("got %+v", decoded)
	}
}

func TestNotSerializable(t *testing.T) {
	type anonymous struct{ A int }
	var buf bytes.Buffer
	err := Encode(&buf, anonymous{A: 1})
	if !errors.Is(err, ErrNotSerializable) {
		t.Fatalf("got %v, want ErrNotSerializable", err)
	}
}

func TestUserSerializerErrorPropagates(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, &poisoned{})
	if !errors.Is(err, ErrUserSerializer) {
		t.Fatalf("got %v, want ErrUserSerializer", err)
	}
	if !errors.Is(err, errPoisoned) {
		t.Fatalf("inner error lost: %v", err)
	}
}

/***************************************
 * Versioning
 ***************************************/

func TestVersionOverrideWritten(t *testing.T) {
	root := &point{X: 1, Y: 2}
	// the registered max is 2; force version 1 on the wire
	raw := encodeBytes(t, root, WithVersionOverride(reflect.TypeOf(root), 1))
	result, err := Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	if *result.(*point) != *root {
		t.Fatalf("got %+v", result)
	}
}

func TestVersionRejection(t *testing.T) {
	root := &point{X: 1, Y: 2}
	raw := encodeBytes(t, root, WithVersionOverride(reflect.TypeOf(root), 3))
	_, err := Decode(bytes.NewReader(raw))
	if !errors.Is(err, ErrVersionNotSupported) {
		t.Fatalf("got %v, want ErrVersionNotSupported", err)
	}
	var vErr *VersionNotSupportedError
	if !errors.As(err, &vErr) {
		t.Fatalf("got %T", err)
	}
	if vErr.GotVersion != 3 || vErr.MaxVersion != 2 {
		t.Fatalf("got version %d / max %d", vErr.GotVersion, vErr.MaxVersion)
	}
}

/***************************************
 * Base archive chaining
 ***************************************/

func TestBaseArchiveChaining(t *testing.T) {
	root := &circle{shape: shape{Name: "unit"}, Radius: 2.5}
	got := roundTrip(t, root)
	decoded, ok := got.(*circle)
	if !ok {
		t.Fatalf("got %T", got)
	}
	if decoded.Name != "unit" || decoded.Radius != 2.5 {
		t.Fatalf("got %+v", decoded)
	}
}

func TestBaseArchiveVersionRejected(t *testing.T) {
	// a base archive carrying version 9 must fail against max 1
	ws := &circle{shape: shape{Name: "x"}, Radius: 1}
	raw := encodeBytes(t, ws)
	// corrupt the base archive version in place: find BaseArchiveStart
	idx := bytes.IndexByte(raw, byte(TagBaseArchiveStart))
	if idx < 0 {
		t.Fatal("no BaseArchiveStart frame found")
	}
	raw[idx+1] = 9
	_, err := Decode(bytes.NewReader(raw))
	if !errors.Is(err, ErrVersionNotSupported) {
		t.Fatalf("got %v, want ErrVersionNotSupported", err)
	}
}

/***************************************
 * Cycles
 ***************************************/

func TestCycleDetection(t *testing.T) {
	a := &node{Label: "a"}
	b := &node{Label: "b"}
	a.Next = b
	b.Next = a

	var buf bytes.Buffer
	err := Encode(&buf, a)
	if !errors.Is(err, ErrCyclicDependencyDetected) {
		t.Fatalf("got %v, want ErrCyclicDependencyDetected", err)
	}
}

func TestBackEdgeAfterInterningSucceeds(t *testing.T) {
	// the shared tail is fully interned before the second reference
	tail := &node{Label: "tail"}
	root := []any{tail, &node{Label: "head", Next: tail}}

	got := roundTrip(t, root)
	decoded := got.([]any)
	first := decoded[0].(*node)
	second := decoded[1].(*node)
	if second.Next != first {
		t.Fatal("identity lost across the back edge")
	}
}

/***************************************
 * Archive facade extras
 ***************************************/

func TestUTF16StringRoundTrip(t *testing.T) {
	root := &wideString{Value: "héllo wörld \U0001F600"}
	raw := encodeBytes(t, root)
	if !bytes.Contains(raw, []byte{byte(TagStringUTF16)}) {
		t.Fatal("no UTF-16 string frame emitted")
	}
	got := roundTrip(t, root)
	if got.(*wideString).Value != root.Value {
		t.Fatalf("got %q", got.(*wideString).Value)
	}
}

func TestWriteStreamReadStream(t *testing.T) {
	payload := bytes.Repeat([]byte("stream"), 1000)
	root := &blobCarrier{Payload: payload}
	got := roundTrip(t, root)
	if !bytes.Equal(got.(*blobCarrier).Payload, payload) {
		t.Fatal("stream payload mismatch")
	}
}

func TestEnumRoundTrip(t *testing.T) {
	got := roundTrip(t, colorBlue)
	decoded, ok := got.(colorEnum)
	if !ok {
		t.Fatalf("got %T", got)
	}
	if decoded != colorBlue {
		t.Fatalf("got %v", decoded)
	}
}

func TestTypeObjectRoundTrip(t *testing.T) {
	root := reflect.TypeOf((*point)(nil))
	got := roundTrip(t, root)
	decoded, ok := got.(reflect.Type)
	if !ok {
		t.Fatalf("got %T", got)
	}
	if decoded != root {
		t.Fatalf("got %v, want %v", decoded, root)
	}
}

func TestPlainObjectIdentity(t *testing.T) {
	obj := &PlainObject{}
	root := []any{obj, obj}
	got := roundTrip(t, root)
	decoded := got.([]any)
	if decoded[0].(*PlainObject) != decoded[1].(*PlainObject) {
		t.Fatal("plain object identity lost")
	}
}

func TestArchiveBalanceViolation(t *testing.T) {
	root := &point{X: 1, Y: 2}
	raw := encodeBytes(t, root)
	// replace the terminating ArchiveEnd with garbage
	if raw[len(raw)-1] != byte(TagArchiveEnd) {
		t.Fatalf("stream does not end with ArchiveEnd: %#x", raw[len(raw)-1])
	}
	raw[len(raw)-1] = byte(TagNull)
	_, err := Decode(bytes.NewReader(raw))
	if err != ErrCorruptStream {
		t.Fatalf("got %v, want ErrCorruptStream", err)
	}
}

func TestRegisterTypeValidation(t *testing.T) {
	type notMarshaler struct{}
	err := RegisterType[notMarshaler](1)
	if err == nil || !strings.Contains(err.Error(), "Marshaler") {
		t.Fatalf("got %v", err)
	}
}
