package kv

// TreeMap is an ordered, string-keyed map with at-most-one entry per
// key. It is not safe for concurrent use. Keys behave like C strings:
// an embedded NUL byte truncates the key for short-key comparisons, so
// callers must not rely on NUL-bearing keys. A key of exactly the
// comparison prefix width (8 bytes) aliases every longer key sharing
// its first 8 bytes; see compareTreeMapKeys.
type TreeMap[V any] interface {
	// Put stores val under key, overwriting in place when the key is
	// already present.
	Put(key string, val V) error
	Get(key string) (val V, exists bool)
	Remove(key string) (val V, exists bool)
	Len() int64
	// Foreach visits entries in ascending key-record order until the
	// action returns false.
	Foreach(action func(key string, val V) bool)
	Release()
}
