package binarchive

import (
	"reflect"
	"strings"

	"github.com/streamforge/binarchive/internal/base"
)

// TypeDescriptor is the wire identity of a runtime type: a fully-qualified
// name plus, for closed constructed generics, each type argument's own
// descriptor recursively.
type TypeDescriptor struct {
	Name string
	Args []TypeDescriptor
}

// typeGuid derives a stable 16-byte identifier from a TypeDescriptor's
// fully-decomposed name, for the diagnostic dump and for callers that
// want a Guid-typed identity for a wire type.
func typeGuid(td TypeDescriptor) Guid {
	fp := base.StringFingerprint(typeDescriptorKey(td))
	var g Guid
	copy(g[:], fp[:16])
	return g
}

func typeDescriptorKey(td TypeDescriptor) string {
	if len(td.Args) == 0 {
		return td.Name
	}
	sb := strings.Builder{}
	sb.WriteString(td.Name)
	sb.WriteByte('[')
	for i, a := range td.Args {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(typeDescriptorKey(a))
	}
	sb.WriteByte(']')
	return sb.String()
}

// typeDescriptorName synthesizes a stable name for a reflect.Type:
// "pkgPath.Name", with a leading "*" for one level of pointer
// indirection, falling back to reflect.Type.String() for unnamed types
// (slices, maps, anonymous structs) that have no package path of their
// own.
func typeDescriptorName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Kind() == reflect.Ptr {
		return "*" + typeDescriptorName(t.Elem())
	}
	if t.PkgPath() == "" || t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// buildTypeDescriptor decomposes a reflect.Type into a TypeDescriptor,
// splitting Go's monomorphized generic instantiation names ("pkg.Foo[int]")
// into a base name plus recursively-decomposed argument descriptors. Go
// has no runtime notion of an open generic definition distinct from its
// instantiations: every reflect.Type reaching this function is already
// closed.
func buildTypeDescriptor(t reflect.Type) TypeDescriptor {
	return buildTypeDescriptorFromName(typeDescriptorName(t))
}

func buildTypeDescriptorFromName(name string) TypeDescriptor {
	baseName, args := splitGenericArgs(name)
	if len(args) == 0 {
		return TypeDescriptor{Name: name}
	}
	descriptors := make([]TypeDescriptor, len(args))
	for i, a := range args {
		descriptors[i] = buildTypeDescriptorFromName(a)
	}
	return TypeDescriptor{Name: baseName, Args: descriptors}
}

// splitGenericArgs parses "pkg.Foo[a,b]" into ("pkg.Foo", ["a", "b"]),
// respecting nested brackets so "pkg.Foo[pkg.Bar[int]]" yields a single
// top-level argument "pkg.Bar[int]". Returns (name, nil) when there is no
// top-level bracket pair.
func splitGenericArgs(name string) (string, []string) {
	open := strings.IndexByte(name, '[')
	if open < 0 || !strings.HasSuffix(name, "]") {
		return name, nil
	}
	baseName := name[:open]
	inner := name[open+1 : len(name)-1]
	var args []string
	depth := 0
	start := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, inner[start:i])
				start = i + 1
			}
		}
	}
	args = append(args, inner[start:])
	return baseName, args
}

/***************************************
 * Type intern table
 ***************************************/

// writeTypeMetadata emits the Type/TypeId frame for t, with the
// "currentType" suppression optimization: if t is the same type
// already declared as the immediately preceding value's type, nothing is
// written at all.
func (ws *WriteSession) writeTypeMetadata(t reflect.Type) error {
	if ws.currentType == t {
		return nil
	}
	ws.currentType = t
	return ws.writeTypeDescriptor(buildTypeDescriptor(t))
}

// preSerializedTypeNames caches the full tag+length+name+arity frame for
// non-generic types, so a session's first emission of a hot type skips
// re-encoding the name. Shared process-wide; append-mostly. Generic
// frames are not cacheable: their argument encoding depends on the
// session's intern state.
var preSerializedTypeNames = base.NewSharedMapT[string, []byte]()

// writeTypeDescriptor writes td as a fresh Type frame or a TypeId
// back-reference, interning by the descriptor's fully-decomposed key. A
// closed generic writes its base name, the argument count, then each
// argument descriptor through this same path recursively, so repeated
// arguments back-reference their own interned ids.
func (ws *WriteSession) writeTypeDescriptor(td TypeDescriptor) error {
	key := typeDescriptorKey(td)
	if id, ok := ws.typeIDs[key]; ok {
		if err := ws.writeTag(TagTypeID); err != nil {
			return err
		}
		return ws.writeUvarintRaw(uint64(id))
	}
	ws.typeIDs[key] = ws.nextTypeID
	ws.nextTypeID++

	if len(td.Args) == 0 {
		frame, ok := preSerializedTypeNames.Get(key)
		if !ok {
			frame = []byte{byte(TagType)}
			frame = putUvarint(frame, uint64(len(td.Name)))
			frame = append(frame, td.Name...)
			frame = putUvarint(frame, 0)
			preSerializedTypeNames.Add(key, frame)
		}
		return ws.bw.writeOversized(frame)
	}

	if err := ws.writeTag(TagType); err != nil {
		return err
	}
	if err := ws.writeUvarintRaw(uint64(len(td.Name))); err != nil {
		return err
	}
	if err := ws.bw.writeOversized(base.UnsafeBytesFromString(td.Name)); err != nil {
		return err
	}
	if err := ws.writeUvarintRaw(uint64(len(td.Args))); err != nil {
		return err
	}
	for _, a := range td.Args {
		if err := ws.writeTypeDescriptor(a); err != nil {
			return err
		}
	}
	return nil
}

// readTypeMetadata mirrors writeTypeDescriptor on decode: it consumes a
// Type or TypeId tag already read by the caller's dispatch and resolves a
// live reflect.Type via the tolerant resolver. A fresh frame reserves its
// id before its generic arguments are read, matching the encoder's
// preorder assignment, and each argument is read through this same path
// recursively (so argument back-references resolve by id).
func (rs *ReadSession) readTypeMetadata(t Tag) (reflect.Type, error) {
	switch t {
	case TagTypeID:
		id, err := readUvarint(rs.r)
		if err != nil {
			return nil, err
		}
		rt, ok := rs.types[int(id)]
		if !ok {
			return nil, ErrCorruptStream
		}
		rs.currentType = rt
		return rt, nil
	case TagType:
		id := rs.nextTypeID
		rs.nextTypeID++

		nameLen, err := readUvarint(rs.r)
		if err != nil {
			return nil, err
		}
		nameBuf := make([]byte, nameLen)
		if err := rs.readFull(nameBuf); err != nil {
			return nil, err
		}
		argCount, err := readUvarint(rs.r)
		if err != nil {
			return nil, err
		}
		args := make([]string, argCount)
		for i := range args {
			argTag, err := rs.readTag()
			if err != nil {
				return nil, err
			}
			argType, err := rs.readTypeMetadata(argTag)
			if err != nil {
				return nil, err
			}
			args[i] = typeDescriptorName(argType)
		}
		fullName := string(nameBuf)
		if len(args) > 0 {
			fullName += "[" + strings.Join(args, ",") + "]"
		}
		rt, err := resolveTypeName(fullName, rs.tolerant)
		if err != nil {
			return nil, err
		}
		rs.types[id] = rt
		rs.currentType = rt
		return rt, nil
	default:
		return nil, ErrCorruptStream
	}
}
