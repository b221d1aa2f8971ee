package binarchive

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrCorruptStream is returned for any structural violation of the wire
// format: an unknown tag, a truncated read, an unbalanced archive, or a
// malformed LEB128 group. It is always fatal to the current decode.
var ErrCorruptStream = errors.New("binarchive: corrupt stream")

// ErrCyclicDependencyDetected is returned when an object under encoding is
// reached a second time before its own encode has completed and it could
// be interned.
var ErrCyclicDependencyDetected = errors.New("binarchive: cyclic dependency detected")

// VersionNotSupportedError reports that a stream carries a version for a
// registered type greater than the type's registered maximum.
type VersionNotSupportedError struct {
	Type        reflect.Type
	GotVersion  uint32
	MaxVersion  uint32
}

func (e *VersionNotSupportedError) Error() string {
	return fmt.Sprintf("binarchive: version %d not supported for type %s (max %d)",
		e.GotVersion, typeDescriptorName(e.Type), e.MaxVersion)
}
func (e *VersionNotSupportedError) Is(target error) bool { return target == ErrVersionNotSupported }

// ErrVersionNotSupported is the sentinel against which VersionNotSupportedError matches via errors.Is.
var ErrVersionNotSupported = errors.New("binarchive: version not supported")

// NotSerializableError reports that a type has neither an internal nor an
// external encoder registration.
type NotSerializableError struct {
	Type reflect.Type
}

func (e *NotSerializableError) Error() string {
	return fmt.Sprintf("binarchive: type %s is not serializable", typeDescriptorName(e.Type))
}
func (e *NotSerializableError) Is(target error) bool { return target == ErrNotSerializable }

var ErrNotSerializable = errors.New("binarchive: not serializable")

// TypeResolutionFailedError reports that the tolerant resolver found zero
// candidates for a wire type name.
type TypeResolutionFailedError struct {
	TypeName string
}

func (e *TypeResolutionFailedError) Error() string {
	return fmt.Sprintf("binarchive: could not resolve type %q", e.TypeName)
}
func (e *TypeResolutionFailedError) Is(target error) bool { return target == ErrTypeResolutionFailed }

var ErrTypeResolutionFailed = errors.New("binarchive: type resolution failed")

// AmbiguousTypeResolutionError reports that the tolerant resolver found
// more than one candidate for a wire type name at some pass.
type AmbiguousTypeResolutionError struct {
	TypeName   string
	Candidates []reflect.Type
}

func (e *AmbiguousTypeResolutionError) Error() string {
	return fmt.Sprintf("binarchive: ambiguous type resolution for %q (%d candidates)",
		e.TypeName, len(e.Candidates))
}
func (e *AmbiguousTypeResolutionError) Is(target error) bool {
	return target == ErrAmbiguousTypeResolution
}

var ErrAmbiguousTypeResolution = errors.New("binarchive: ambiguous type resolution")

// UserSerializerError wraps an error returned from within a registered
// custom encoder or decoder, propagated unchanged to the caller of
// Encode/Decode. A panic raised there is not wrapped: Encode/Decode
// recover it and return it as a plain error.
type UserSerializerError struct {
	Type reflect.Type
	Err  error
}

func (e *UserSerializerError) Error() string {
	return fmt.Sprintf("binarchive: user serializer for %s failed: %v", typeDescriptorName(e.Type), e.Err)
}
func (e *UserSerializerError) Unwrap() error { return e.Err }
func (e *UserSerializerError) Is(target error) bool { return target == ErrUserSerializer }

var ErrUserSerializer = errors.New("binarchive: user serializer error")
