package binarchive

import (
	"fmt"
	"reflect"

	"github.com/streamforge/binarchive/internal/base"
)

// internalRegistration records a type that cooperates with its own
// encoding.
type internalRegistration struct {
	maxVersion uint32
}

// externalRegistration records a standalone handler matched to a target
// type.
type externalRegistration struct {
	codec      ExternalCodec
	maxVersion uint32
}

var internalRegistry = base.NewSharedMapT[reflect.Type, internalRegistration]()
var externalRegistry = base.NewSharedMapT[reflect.Type, externalRegistration]()

// RegisterType registers T as an internal encoder: *T must implement
// both Marshaler and Unmarshaler. Validation happens once, at
// registration time, and the declared version is captured.
func RegisterType[T any](maxVersion uint32) error {
	var zero T
	ptrType := reflect.TypeOf(&zero)
	valueType := ptrType.Elem()

	if !ptrType.Implements(marshalerType) {
		return fmt.Errorf("binarchive: %s does not implement Marshaler", typeDescriptorName(valueType))
	}
	if !ptrType.Implements(unmarshalerType) {
		return fmt.Errorf("binarchive: %s does not implement Unmarshaler", typeDescriptorName(valueType))
	}

	internalRegistry.Add(valueType, internalRegistration{maxVersion: maxVersion})
	internalRegistry.Add(ptrType, internalRegistration{maxVersion: maxVersion})
	registerResolvableType(valueType)
	registerResolvableType(ptrType)
	base.LogDebug(LogSerialize, "registered internal encoder for %s (max version %d)",
		typeDescriptorName(valueType), maxVersion)
	return nil
}

// RegisterExternalCodec registers a standalone handler for targetType,
// independent of any methods targetType itself may have.
func RegisterExternalCodec(targetType reflect.Type, codec ExternalCodec) {
	externalRegistry.Add(targetType, externalRegistration{codec: codec, maxVersion: codec.Version()})
	registerResolvableType(targetType)
	base.LogDebug(LogSerialize, "registered external encoder for %s (max version %d)",
		typeDescriptorName(targetType), codec.Version())
}

// externalGenericRegistry matches handlers by generic definition: keyed
// by the base name of a generic instantiation ("pkg.List"), it serves
// every closed form of that generic that has no exact registration.
var externalGenericRegistry = base.NewSharedMapT[string, externalRegistration]()

// RegisterExternalGenericCodec registers codec for every closed
// instantiation of the generic type that sample instantiates. Each
// instantiation the decoder may encounter must still be made resolvable
// with RegisterResolvableType (Go cannot construct generic
// instantiations at runtime); sample itself is registered here.
func RegisterExternalGenericCodec(sample reflect.Type, codec ExternalCodec) error {
	baseName, args := splitGenericArgs(typeDescriptorName(sample))
	if len(args) == 0 {
		return fmt.Errorf("binarchive: %s is not a generic instantiation", typeDescriptorName(sample))
	}
	externalGenericRegistry.Add(baseName, externalRegistration{codec: codec, maxVersion: codec.Version()})
	registerResolvableType(sample)
	base.LogDebug(LogSerialize, "registered external encoder for generic %s (max version %d)",
		baseName, codec.Version())
	return nil
}

// RegisterResolvableType makes t resolvable by its wire name during
// decode without attaching any codec, e.g. a closed generic
// instantiation served by a generic external codec.
func RegisterResolvableType(t reflect.Type) {
	registerResolvableType(t)
}

// lookupExternal finds the external registration for t: by exact type
// equality first, then, for a generic instantiation, by its generic
// definition's base name.
func lookupExternal(t reflect.Type) (externalRegistration, bool) {
	if reg, ok := externalRegistry.Get(t); ok {
		return reg, true
	}
	if baseName, args := splitGenericArgs(typeDescriptorName(t)); len(args) > 0 {
		if reg, ok := externalGenericRegistry.Get(baseName); ok {
			return reg, true
		}
	}
	return externalRegistration{}, false
}

var marshalerType = reflect.TypeOf((*Marshaler)(nil)).Elem()
var unmarshalerType = reflect.TypeOf((*Unmarshaler)(nil)).Elem()

/***************************************
 * Custom-type dispatcher
 ***************************************/

// encodeCustom implements the encode-side archive framing: cycle-detection
// entry, type metadata, ArchiveStart + version, the encoder invocation,
// object interning, ArchiveEnd; the cycle-detection exit runs on return.
func (ws *WriteSession) encodeCustom(v reflect.Value) error {
	t := v.Type()

	var marshaler Marshaler
	var maxVersion uint32
	var isInternal bool
	if reg, ok := internalRegistry.Get(t); ok {
		m, ok := v.Interface().(Marshaler)
		if !ok {
			// MarshalArchive hangs off the pointer receiver; take an
			// addressable copy for a value-typed registration
			pv := reflect.New(t)
			pv.Elem().Set(v)
			if m, ok = pv.Interface().(Marshaler); !ok {
				return &NotSerializableError{Type: t}
			}
		}
		marshaler = m
		maxVersion = reg.maxVersion
		isInternal = true
	}

	var extCodec ExternalCodec
	if !isInternal {
		if reg, ok := lookupExternal(t); ok {
			extCodec = reg.codec
			maxVersion = reg.maxVersion
		} else {
			return &NotSerializableError{Type: t}
		}
	}

	key, internable := internableKey(v)
	if internable {
		if id, ok := ws.objectIDs[key]; ok {
			return ws.writeAlreadySerialized(id)
		}
		if err := ws.enterEncoding(key); err != nil {
			return err
		}
		defer ws.exitEncoding(key)
	}

	if err := ws.writeTypeMetadata(t); err != nil {
		return err
	}
	version := ws.versionFor(t, maxVersion)
	if err := ws.writeTag(TagArchiveStart); err != nil {
		return err
	}
	if err := ws.bw.writeOversized(putUvarint(nil, uint64(version))); err != nil {
		return err
	}

	aw := &ArchiveWrite{session: ws, typ: t, version: version}
	var encodeErr error
	if isInternal {
		encodeErr = marshaler.MarshalArchive(aw)
	} else {
		encodeErr = extCodec.Encode(aw, v.Interface())
	}
	if encodeErr != nil {
		return &UserSerializerError{Type: t, Err: encodeErr}
	}

	if internable {
		ws.internObject(key)
	}
	return ws.writeTag(TagArchiveEnd)
}

// decodeCustom mirrors encodeCustom on the read side; the ArchiveStart
// tag has already been consumed by the dispatcher.
func (rs *ReadSession) decodeCustom(t reflect.Type) (any, error) {
	version, err := readUvarint(rs.r)
	if err != nil {
		return nil, err
	}

	var maxVersion uint32
	var isInternal bool
	var extReg externalRegistration
	if reg, ok := internalRegistry.Get(t); ok {
		maxVersion = reg.maxVersion
		isInternal = true
	} else if reg, ok := lookupExternal(t); ok {
		extReg = reg
		maxVersion = reg.maxVersion
	} else {
		return nil, &NotSerializableError{Type: t}
	}
	if uint32(version) > maxVersion {
		return nil, &VersionNotSupportedError{Type: t, GotVersion: uint32(version), MaxVersion: maxVersion}
	}

	ar := &ArchiveRead{session: rs, typ: t, version: uint32(version)}

	var result any
	var decodeErr error
	if isInternal {
		var instance reflect.Value
		if t.Kind() == reflect.Ptr {
			instance = reflect.New(t.Elem())
		} else {
			instance = reflect.New(t)
		}
		unmarshaler, ok := instance.Interface().(Unmarshaler)
		if !ok {
			return nil, &NotSerializableError{Type: t}
		}
		decodeErr = unmarshaler.UnmarshalArchive(ar)
		if t.Kind() == reflect.Ptr {
			result = instance.Interface()
		} else {
			result = instance.Elem().Interface()
		}
	} else {
		result, decodeErr = extReg.codec.Decode(ar)
	}
	if decodeErr != nil {
		return nil, &UserSerializerError{Type: t, Err: decodeErr}
	}

	end, err := rs.readTag()
	if err != nil {
		return nil, err
	}
	if end != TagArchiveEnd {
		return nil, ErrCorruptStream
	}

	// the encoder only interned reference-typed objects; mirror that so
	// the id sequences stay in lockstep
	if _, internable := internableKey(reflect.ValueOf(result)); internable {
		rs.internObjectOnDecode(rs.nextReadObjectID(), result)
	}
	return result, nil
}

/***************************************
 * Enumeration codec
 ***************************************/

var enumCoercers = base.NewSharedMapT[reflect.Type, func(int64) reflect.Value]()

// RegisterEnumCoercion installs the cast-back function for an enum type;
// call it once per enum type before decoding any stream that may contain
// it.
func RegisterEnumCoercion[T ~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64](coerce func(int64) T) {
	var zero T
	t := reflect.TypeOf(zero)
	enumCoercers.Add(t, func(raw int64) reflect.Value {
		return reflect.ValueOf(coerce(raw))
	})
	registerResolvableType(t)
}

func isRegisteredEnum(t reflect.Type) bool {
	_, ok := enumCoercers.Get(t)
	return ok
}

func (ws *WriteSession) encodeEnum(v reflect.Value) error {
	t := v.Type()
	if err := ws.writeTypeMetadata(t); err != nil {
		return err
	}
	if err := ws.writeTag(TagEnum); err != nil {
		return err
	}
	var raw int64
	switch v.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		raw = v.Int()
	default:
		raw = int64(v.Uint())
	}
	return ws.writeVarintRaw(raw)
}

// decodeEnumPayload reads the signed LEB128 value following an Enum tag
// and casts it back through the registered coercion.
func (rs *ReadSession) decodeEnumPayload(t reflect.Type) (any, error) {
	raw, err := readVarint(rs.r)
	if err != nil {
		return nil, err
	}
	coerce, ok := enumCoercers.Get(t)
	if !ok {
		return nil, &NotSerializableError{Type: t}
	}
	return coerce(raw).Interface(), nil
}
