package base

import (
	"math/rand"
	"sync"
)

/***************************************
 * Shared map
 ***************************************/

type SharedMapT[K comparable, V any] struct {
	intern sync.Map
}

func NewSharedMapT[K comparable, V any]() *SharedMapT[K, V] {
	return &SharedMapT[K, V]{sync.Map{}}
}
func (shared *SharedMapT[K, V]) Len() (count int) {
	shared.intern.Range(func(_, _ interface{}) bool {
		count++
		return true
	})
	return count
}
func (shared *SharedMapT[K, V]) Clear() {
	shared.intern = sync.Map{}
}
func (shared *SharedMapT[K, V]) Keys() (result []K) {
	result = make([]K, 0, shared.Len())
	shared.intern.Range(func(k, _ interface{}) bool {
		result = append(result, k.(K))
		return true
	})
	return
}
func (shared *SharedMapT[K, V]) Values() (result []V) {
	result = make([]V, 0, shared.Len())
	shared.intern.Range(func(_, v interface{}) bool {
		result = append(result, v.(V))
		return true
	})
	return
}
func (shared *SharedMapT[K, V]) Range(each func(K, V) error) (lastErr error) {
	shared.intern.Range(func(k, v interface{}) bool {
		if err := each(k.(K), v.(V)); err == nil {
			return true
		} else {
			lastErr = err
			return false
		}
	})

	return lastErr
}
func (shared *SharedMapT[K, V]) Add(key K, value V) V {
	shared.intern.Store(key, value)
	return value
}
func (shared *SharedMapT[K, V]) FindOrAdd(key K, value V) (V, bool) {
	actual, loaded := shared.intern.LoadOrStore(key, value)
	return actual.(V), loaded
}
func (shared *SharedMapT[K, V]) Get(key K) (result V, ok bool) {
	if value, ok := shared.intern.Load(key); ok {
		return value.(V), true
	} else {
		return result, false
	}
}
func (shared *SharedMapT[K, V]) Delete(key K) {
	shared.intern.Delete(key)
}
func (shared *SharedMapT[K, V]) LoadAndDelete(key K) (V, bool) {
	if value, loaded := shared.intern.LoadAndDelete(key); loaded {
		return value.(V), true
	} else {
		var defaultValue V
		return defaultValue, false
	}
}
func (shared *SharedMapT[K, V]) Pin() map[K]V {
	result := make(map[K]V, shared.Len())
	shared.Range(func(k K, v V) error {
		result[k] = v
		return nil
	})
	return result
}

/***************************************
 * Shared string map
 ***************************************/

// state-less FNV1a hasher
func Fnv1a(s string, basis uint64) (h uint64) {
	const prime64 = 1099511628211
	h = basis
	/*
		This is an unrolled version of this algorithm:

		for _, c := range s {
			h = (h ^ uint64(c)) * prime64
		}

		It seems to be ~1.5x faster than the simple loop in BenchmarkHash64:

		- BenchmarkHash64/hash_function-4   30000000   56.1 ns/op   642.15 MB/s   0 B/op   0 allocs/op
		- BenchmarkHash64/hash_function-4   50000000   38.6 ns/op   932.35 MB/s   0 B/op   0 allocs/op

	*/
	for len(s) >= 8 {
		h = (h ^ uint64(s[0])) * prime64
		h = (h ^ uint64(s[1])) * prime64
		h = (h ^ uint64(s[2])) * prime64
		h = (h ^ uint64(s[3])) * prime64
		h = (h ^ uint64(s[4])) * prime64
		h = (h ^ uint64(s[5])) * prime64
		h = (h ^ uint64(s[6])) * prime64
		h = (h ^ uint64(s[7])) * prime64
		s = s[8:]
	}

	if len(s) >= 4 {
		h = (h ^ uint64(s[0])) * prime64
		h = (h ^ uint64(s[1])) * prime64
		h = (h ^ uint64(s[2])) * prime64
		h = (h ^ uint64(s[3])) * prime64
		s = s[4:]
	}

	if len(s) >= 2 {
		h = (h ^ uint64(s[0])) * prime64
		h = (h ^ uint64(s[1])) * prime64
		s = s[2:]
	}

	if len(s) > 0 {
		h = (h ^ uint64(s[0])) * prime64
	}
	return
}

// lower contentions using mutiple shards

type SharedStringMapT[V any] struct {
	basis  uint64
	shards []*SharedMapT[string, V]
}

func NewSharedStringMap[V any](numShards int) *SharedStringMapT[V] {
	shards := make([]*SharedMapT[string, V], numShards)
	for i := range shards {
		shards[i] = NewSharedMapT[string, V]()
	}
	return &SharedStringMapT[V]{basis: rand.Uint64() + 14695981039346656037, shards: shards}
}

func (x *SharedStringMapT[V]) getShard(key string) *SharedMapT[string, V] {
	return x.shards[Fnv1a(key, x.basis)%uint64(len(x.shards))]
}
func (x *SharedStringMapT[V]) Len() (count int) {
	for _, shard := range x.shards {
		count += shard.Len()
	}
	return
}
func (x *SharedStringMapT[V]) Clear() {
	for _, shard := range x.shards {
		shard.Clear()
	}
}
func (x *SharedStringMapT[V]) Keys() (result []string) {
	for _, shard := range x.shards {
		result = append(result, shard.Keys()...)
	}
	return
}
func (x *SharedStringMapT[V]) Values() (result []V) {
	for _, shard := range x.shards {
		result = append(result, shard.Values()...)
	}
	return
}
func (x *SharedStringMapT[V]) Range(each func(string, V) error) error {
	for _, shard := range x.shards {
		if err := shard.Range(each); err != nil {
			return err
		}
	}
	return nil
}
func (x *SharedStringMapT[V]) Add(key string, value V) V {
	return x.getShard(key).Add(key, value)
}
func (x *SharedStringMapT[V]) FindOrAdd(key string, value V) (V, bool) {
	return x.getShard(key).FindOrAdd(key, value)
}
func (x *SharedStringMapT[V]) Get(key string) (result V, ok bool) {
	return x.getShard(key).Get(key)
}
func (x *SharedStringMapT[V]) Delete(key string) {
	x.getShard(key).Delete(key)
}
