package binarchive

import (
	"io"
	"reflect"

	"github.com/streamforge/binarchive/internal/base"
)

/***************************************
 * Diagnostic dump
 *
 * A debug-only JSON rendering of the type graph reachable from a set of
 * values, never the wire format itself.
 ***************************************/

// DescribeType exposes the TypeDescriptor the encoder would record for t.
func DescribeType(t reflect.Type) TypeDescriptor {
	return buildTypeDescriptor(t)
}

// TypeFingerprint returns the full digest of a type's decomposed wire
// name; the first 16 bytes are the Guid the diagnostic dump reports.
func TypeFingerprint(t reflect.Type) base.Fingerprint {
	return base.StringFingerprint(typeDescriptorKey(buildTypeDescriptor(t)))
}

// TypeGuid is the 16-byte truncation of TypeFingerprint, usable directly
// as the Guid wire primitive.
func TypeGuid(t reflect.Type) Guid {
	return typeGuid(buildTypeDescriptor(t))
}

type typeDump struct {
	Name string     `json:"name"`
	Guid string     `json:"guid"`
	Args []typeDump `json:"args,omitempty"`
}

func makeTypeDump(td TypeDescriptor) typeDump {
	result := typeDump{
		Name: td.Name,
		Guid: base.StringFingerprint(typeDescriptorKey(td)).Guid(),
	}
	for _, a := range td.Args {
		result.Args = append(result.Args, makeTypeDump(a))
	}
	return result
}

type typeGraphDump struct {
	Types []typeDump `json:"types"`
}

// DumpTypeGraph renders the runtime types of roots (and, for registered
// generics, their argument descriptors) as indented JSON, for inspection
// of what an encode session would intern.
func DumpTypeGraph(dst io.Writer, roots ...any) error {
	var dump typeGraphDump
	seen := map[string]bool{}
	for _, root := range roots {
		if root == nil {
			continue
		}
		td := buildTypeDescriptor(reflect.TypeOf(root))
		key := typeDescriptorKey(td)
		if seen[key] {
			continue
		}
		seen[key] = true
		dump.Types = append(dump.Types, makeTypeDump(td))
	}
	return base.JsonSerialize(dump, dst, base.OptionJsonPrettyPrint(true))
}

// DumpRegisteredTypes renders every type currently known to the tolerant
// resolver, in no particular order.
func DumpRegisteredTypes(dst io.Writer) error {
	var dump typeGraphDump
	typeRegistry.Range(func(name string, t reflect.Type) error {
		dump.Types = append(dump.Types, makeTypeDump(buildTypeDescriptor(t)))
		return nil
	})
	return base.JsonSerialize(dump, dst, base.OptionJsonPrettyPrint(true))
}
