package binarchive

import (
	"reflect"
	"unsafe"

	"github.com/streamforge/binarchive/internal/base"
)

/***************************************
 * Object intern table
 ***************************************/

// internableKey returns a process-stable identity key for a reference-
// typed value (pointer, map, chan, func, slice, or non-empty string) and
// reports whether v is interning-eligible at all. Value types (numbers,
// bools, structs passed by value, zero-length strings/slices) are never
// interned.
func internableKey(v reflect.Value) (uintptr, bool) {
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		if v.IsNil() {
			return 0, false
		}
		return v.Pointer(), true
	case reflect.Slice:
		if v.IsNil() || v.Len() == 0 {
			return 0, false
		}
		return v.Pointer(), true
	case reflect.String:
		if v.Len() == 0 {
			return 0, false
		}
		s := v.String()
		return uintptr(unsafe.Pointer(unsafe.StringData(s))), true
	default:
		return 0, false
	}
}

// lookupObject reports the id already assigned to v's identity key, if
// any; callers emit an AlreadySerialized tag in that case rather than
// re-encoding the value.
func (ws *WriteSession) lookupObject(v reflect.Value) (id int, key uintptr, internable bool, found bool) {
	key, internable = internableKey(v)
	if !internable {
		return 0, 0, false, false
	}
	id, found = ws.objectIDs[key]
	return id, key, internable, found
}

// internObject records the mapping for key -> next id, once per value:
// custom objects and strings call it after their encoding, arrays before
// their elements so a self-reference resolves to the array's own id.
func (ws *WriteSession) internObject(key uintptr) int {
	base.Assert(func() bool {
		_, duplicate := ws.objectIDs[key]
		return !duplicate
	})
	id := ws.nextObjectID
	ws.nextObjectID++
	ws.objectIDs[key] = id
	return id
}

// enterEncoding/exitEncoding maintain the "currently being encoded" set
// used for cycle detection: an object reappearing here before its own
// encoding finished (so no id has been interned for it yet) means a
// genuine unbroken cycle.
func (ws *WriteSession) enterEncoding(key uintptr) error {
	if ws.encoding[key] {
		return ErrCyclicDependencyDetected
	}
	ws.encoding[key] = true
	return nil
}
func (ws *WriteSession) exitEncoding(key uintptr) {
	delete(ws.encoding, key)
}

func (ws *WriteSession) writeAlreadySerialized(id int) error {
	if err := ws.writeTag(TagAlreadySerialized); err != nil {
		return err
	}
	return ws.bw.writeOversized(putUvarint(nil, uint64(id)))
}

// internObjectOnDecode records id -> obj for later AlreadySerialized
// lookups and assigns the next read-side object id.
func (rs *ReadSession) internObjectOnDecode(id int, obj any) {
	rs.objects[id] = obj
}

func (rs *ReadSession) nextReadObjectID() int {
	id := rs.nextObjectID
	rs.nextObjectID++
	return id
}

func (rs *ReadSession) readAlreadySerialized() (any, error) {
	id, err := readUvarint(rs.r)
	if err != nil {
		return nil, err
	}
	obj, ok := rs.objects[int(id)]
	if !ok {
		return nil, ErrCorruptStream
	}
	return obj, nil
}
