package kvstore

import "fmt"

// Store is the byte-level key/value backend a program's state lives in.
// Get returns (nil, nil) when the key is absent; callers distinguish
// absence from an empty value with Has.
type Store interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Has(key []byte) (bool, error)

	// ForEach iterates entries whose key starts with prefix, in ascending
	// key order. If fn returns false, iteration stops early.
	ForEach(prefix []byte, fn func(key, value []byte) bool) error

	Close() error
}

// Factory creates a store instance rooted at the given path.
type Factory func(path string) (Store, error)

var factories = map[string]Factory{}

// Register registers a backend factory under the given name.
func Register(name string, factory Factory) {
	factories[name] = factory
}

// Open creates a store using the named backend.
func Open(backend, path string) (Store, error) {
	factory, ok := factories[backend]
	if !ok {
		return nil, fmt.Errorf("unknown kvstore backend: %s", backend)
	}
	return factory(path)
}

// Available returns the registered backend names.
func Available() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	return names
}

// prefixUpperBound returns the smallest key greater than every key with the
// given prefix, or nil if no such bound exists.
func prefixUpperBound(prefix []byte) []byte {
	upper := make([]byte, len(prefix))
	copy(upper, prefix)
	for i := len(upper) - 1; i >= 0; i-- {
		if upper[i] < 0xff {
			upper[i]++
			return upper[:i+1]
		}
	}
	return nil
}
