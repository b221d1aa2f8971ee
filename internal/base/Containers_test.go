package base

import (
	"fmt"
	"sort"
	"sync"
	"testing"
)

func TestSharedMapAddGet(t *testing.T) {
	m := NewSharedMapT[string, int]()
	if _, ok := m.Get("missing"); ok {
		t.FailNow()
	}
	m.Add("one", 1)
	m.Add("two", 2)
	if v, ok := m.Get("one"); !ok || v != 1 {
		t.Errorf("invalid get: %v != %v || %v != %v", ok, true, v, 1)
	}
	if v, ok := m.Get("two"); !ok || v != 2 {
		t.Errorf("invalid get: %v != %v || %v != %v", ok, true, v, 2)
	}
	if m.Len() != 2 {
		t.Errorf("invalid len: %v != %v", m.Len(), 2)
	}
}

func TestSharedMapFindOrAdd(t *testing.T) {
	m := NewSharedMapT[string, int]()
	if v, loaded := m.FindOrAdd("key", 1); loaded || v != 1 {
		t.Errorf("invalid find-or-add: %v != %v || %v != %v", loaded, false, v, 1)
	}
	if v, loaded := m.FindOrAdd("key", 2); !loaded || v != 1 {
		t.Errorf("invalid find-or-add: %v != %v || %v != %v", loaded, true, v, 1)
	}
}

func TestSharedMapDelete(t *testing.T) {
	m := NewSharedMapT[int, string]()
	m.Add(1, "one")
	m.Delete(1)
	if _, ok := m.Get(1); ok {
		t.FailNow()
	}
	m.Add(2, "two")
	if v, loaded := m.LoadAndDelete(2); !loaded || v != "two" {
		t.Errorf("invalid load-and-delete: %v != %v || %v != %v", loaded, true, v, "two")
	}
	if _, loaded := m.LoadAndDelete(2); loaded {
		t.FailNow()
	}
}

func TestSharedMapRange(t *testing.T) {
	m := NewSharedMapT[int, int]()
	for i := 0; i < 5; i++ {
		m.Add(i, i*i)
	}
	seen := 0
	if err := m.Range(func(k, v int) error {
		if v != k*k {
			t.Errorf("invalid entry: %v -> %v", k, v)
		}
		seen++
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if seen != 5 {
		t.Errorf("invalid range count: %v != %v", seen, 5)
	}

	failed := fmt.Errorf("stop")
	if err := m.Range(func(int, int) error { return failed }); err != failed {
		t.Errorf("range did not propagate the error: %v", err)
	}
}

func TestSharedMapKeysValues(t *testing.T) {
	m := NewSharedMapT[int, int]()
	m.Add(3, 30)
	m.Add(1, 10)
	m.Add(2, 20)
	keys := m.Keys()
	sort.Ints(keys)
	if len(keys) != 3 || keys[0] != 1 || keys[2] != 3 {
		t.Errorf("invalid keys: %v", keys)
	}
	values := m.Values()
	sort.Ints(values)
	if len(values) != 3 || values[0] != 10 || values[2] != 30 {
		t.Errorf("invalid values: %v", values)
	}
	pinned := m.Pin()
	if len(pinned) != 3 || pinned[2] != 20 {
		t.Errorf("invalid pin: %v", pinned)
	}
}

func TestSharedMapConcurrent(t *testing.T) {
	m := NewSharedMapT[int, int]()
	wg := sync.WaitGroup{}
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				m.Add(w*100+i, i)
			}
		}(w)
	}
	wg.Wait()
	if m.Len() != 800 {
		t.Errorf("invalid len: %v != %v", m.Len(), 800)
	}
}

func TestSharedStringMapShards(t *testing.T) {
	m := NewSharedStringMap[int](4)
	for i := 0; i < 100; i++ {
		m.Add(fmt.Sprint("key-", i), i)
	}
	if m.Len() != 100 {
		t.Errorf("invalid len: %v != %v", m.Len(), 100)
	}
	for i := 0; i < 100; i++ {
		if v, ok := m.Get(fmt.Sprint("key-", i)); !ok || v != i {
			t.Errorf("invalid get: %v != %v || %v != %v", ok, true, v, i)
		}
	}
	m.Delete("key-42")
	if _, ok := m.Get("key-42"); ok {
		t.FailNow()
	}
	if len(m.Keys()) != 99 {
		t.FailNow()
	}
	m.Clear()
	if m.Len() != 0 {
		t.FailNow()
	}
}

func TestFnv1aStable(t *testing.T) {
	const basis = 14695981039346656037
	if Fnv1a("", basis) != basis {
		t.FailNow()
	}
	if Fnv1a("hello world", basis) != Fnv1a("hello world", basis) {
		t.FailNow()
	}
	if Fnv1a("hello world", basis) == Fnv1a("hello worle", basis) {
		t.FailNow()
	}
	// the unrolled loop must agree with the reference recurrence
	reference := func(s string) (h uint64) {
		const prime64 = 1099511628211
		h = basis
		for i := 0; i < len(s); i++ {
			h = (h ^ uint64(s[i])) * prime64
		}
		return
	}
	for _, s := range []string{"a", "ab", "abc", "abcd", "abcdefg", "abcdefgh", "abcdefghijklmnop", "abcdefghijklmnopq"} {
		if got := Fnv1a(s, basis); got != reference(s) {
			t.Errorf("Fnv1a(%q) = %v, want %v", s, got, reference(s))
		}
	}
}
