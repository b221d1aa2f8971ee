package binarchive

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/streamforge/binarchive/internal/base"
)

// typeRegistry is the process-wide type-name -> type cache the resolver
// consults: a SharedMapT (sync.Map-backed), so reads stay lock-free on
// the decode hot path while registration remains safe from any
// goroutine.
var typeRegistry = base.NewSharedMapT[string, reflect.Type]()

// registerResolvableType makes t a candidate for the tolerant resolver's
// three passes, keyed by its full synthesized name.
func registerResolvableType(t reflect.Type) {
	typeRegistry.Add(typeDescriptorName(t), t)
}

var re_moduleMajorVersion = regexp.MustCompile(`/v[0-9]+$`)

// stripModuleMajorVersion removes a trailing Go module major-version
// segment ("/v2", "/v3", ...) from a package path, the real Go analogue
// of relaxing a CLR assembly identity to its "simple name": a module that
// bumped major version keeps the same import path shape but for the
// version suffix.
func stripModuleMajorVersion(pkgPath string) string {
	return re_moduleMajorVersion.ReplaceAllString(pkgPath, "")
}

func splitPkgAndName(qualifiedName string) (pkgPath, name string) {
	// qualifiedName is "pkgPath.TypeName" or "pkgPath.TypeName[args]";
	// the package path may itself contain dots, so split on the last dot
	// that precedes the bare type name (i.e. before any '[').
	base := qualifiedName
	if i := strings.IndexByte(base, '['); i >= 0 {
		base = base[:i]
	}
	dot := strings.LastIndexByte(base, '.')
	if dot < 0 {
		return "", qualifiedName
	}
	return base[:dot], qualifiedName[dot+1:]
}

// resolveTypeName applies the tolerant resolver's three passes against
// the process-wide registry. Non-exact resolution is
// only accepted when tolerant is true, even if a unique candidate exists
// at a looser pass.
func resolveTypeName(name string, tolerant bool) (reflect.Type, error) {
	if t, ok := typeRegistry.Get(name); ok {
		return t, nil
	}

	pkgPath, simpleName := splitPkgAndName(name)

	// Pass 2: simple-name fallback — relax the module major-version
	// segment of the package path.
	strippedPkg := stripModuleMajorVersion(pkgPath)
	var simpleCandidates []reflect.Type
	typeRegistry.Range(func(candidateName string, t reflect.Type) error {
		cPkg, cName := splitPkgAndName(candidateName)
		if cName == simpleName && stripModuleMajorVersion(cPkg) == strippedPkg {
			simpleCandidates = append(simpleCandidates, t)
		}
		return nil
	})
	if len(simpleCandidates) == 1 {
		if !tolerant {
			return nil, &TypeResolutionFailedError{TypeName: name}
		}
		return simpleCandidates[0], nil
	}
	if len(simpleCandidates) > 1 {
		return nil, &AmbiguousTypeResolutionError{TypeName: name, Candidates: simpleCandidates}
	}

	// Pass 3: name-only fallback — ignore the package path entirely.
	var nameOnlyCandidates []reflect.Type
	typeRegistry.Range(func(candidateName string, t reflect.Type) error {
		_, cName := splitPkgAndName(candidateName)
		if cName == simpleName {
			nameOnlyCandidates = append(nameOnlyCandidates, t)
		}
		return nil
	})
	if len(nameOnlyCandidates) == 1 {
		if !tolerant {
			return nil, &TypeResolutionFailedError{TypeName: name}
		}
		return nameOnlyCandidates[0], nil
	}
	if len(nameOnlyCandidates) > 1 {
		return nil, &AmbiguousTypeResolutionError{TypeName: name, Candidates: nameOnlyCandidates}
	}

	return nil, &TypeResolutionFailedError{TypeName: name}
}
