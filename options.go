package binarchive

import "reflect"

// Optimization selects between native fixed-width encoding and the more
// compact LEB128/packed encodings where the primitive and array codecs
// offer a choice.
type Optimization int32

const (
	// OptimizeForSize prefers LEB128/bit-packed encodings whenever they are
	// strictly smaller than the native layout; ties go native. This is the
	// default.
	OptimizeForSize Optimization = iota
	// OptimizeForSpeed always emits the native fixed-width layout,
	// trading stream size for branch-free encode/decode.
	OptimizeForSpeed
)

type encodeOptions struct {
	optimization     Optimization
	versionOverrides map[reflect.Type]uint32
}

func newEncodeOptions() *encodeOptions {
	return &encodeOptions{optimization: OptimizeForSize}
}

// EncodeOption configures a single call to Encode.
type EncodeOption func(*encodeOptions)

// WithSpeedOverSize selects OptimizeForSpeed for this encode: integers,
// chars and array elements are always written in native fixed-width form.
func WithSpeedOverSize() EncodeOption {
	return func(o *encodeOptions) { o.optimization = OptimizeForSpeed }
}

// WithSizeOverSpeed selects OptimizeForSize explicitly (the default).
func WithSizeOverSpeed() EncodeOption {
	return func(o *encodeOptions) { o.optimization = OptimizeForSize }
}

// WithVersionOverride forces the archive version written for t, regardless
// of its registered maximum version.
func WithVersionOverride(t reflect.Type, version uint32) EncodeOption {
	return func(o *encodeOptions) {
		if o.versionOverrides == nil {
			o.versionOverrides = make(map[reflect.Type]uint32)
		}
		o.versionOverrides[t] = version
	}
}

type decodeOptions struct {
	tolerant bool
}

func newDecodeOptions() *decodeOptions {
	return &decodeOptions{tolerant: gTolerantDeserializationDefault.Load()}
}

// DecodeOption configures a single call to Decode.
type DecodeOption func(*decodeOptions)

// WithTolerantResolution enables the resolver's simple-name and
// name-only fallback passes for this decode.
func WithTolerantResolution() DecodeOption {
	return func(o *decodeOptions) { o.tolerant = true }
}

// WithExactResolution disables tolerant fallback for this decode, even if
// SetTolerantDeserializationDefault(true) was called process-wide.
func WithExactResolution() DecodeOption {
	return func(o *decodeOptions) { o.tolerant = false }
}

// SetTolerantDeserializationDefault changes the process-wide default for
// tolerant deserialization; individual Decode calls may still override it
// with WithTolerantResolution/WithExactResolution.
func SetTolerantDeserializationDefault(enabled bool) {
	gTolerantDeserializationDefault.Store(enabled)
}
