package kvstore

import (
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/pierrec/lz4"
)

// Value encoding: one flag byte followed by the payload. Small values are
// stored raw since the block header would eat the savings.
const (
	valueRaw        byte = 0
	valueCompressed byte = 1

	minCompressSize = 128
)

func init() {
	Register("pebble", func(path string) (Store, error) {
		return NewPebble(path, true)
	})
}

// Pebble stores program state in a PebbleDB database with optional LZ4
// compression of larger values.
type Pebble struct {
	db       *pebble.DB
	compress bool
}

// NewPebble opens (or creates) a Pebble store at the given path.
func NewPebble(path string, compress bool) (*Pebble, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", path, err)
	}
	return &Pebble{db: db, compress: compress}, nil
}

func (p *Pebble) Get(key []byte) ([]byte, error) {
	value, closer, err := p.db.Get(key)
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pebble get: %w", err)
	}
	defer closer.Close()
	return decodeValue(value)
}

func (p *Pebble) Put(key, value []byte) error {
	encoded := encodeValue(value, p.compress)
	if err := p.db.Set(key, encoded, pebble.Sync); err != nil {
		return fmt.Errorf("pebble put: %w", err)
	}
	return nil
}

func (p *Pebble) Delete(key []byte) error {
	if err := p.db.Delete(key, pebble.Sync); err != nil {
		return fmt.Errorf("pebble delete: %w", err)
	}
	return nil
}

func (p *Pebble) Has(key []byte) (bool, error) {
	_, closer, err := p.db.Get(key)
	if err == pebble.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("pebble has: %w", err)
	}
	closer.Close()
	return true, nil
}

func (p *Pebble) ForEach(prefix []byte, fn func(key, value []byte) bool) error {
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return fmt.Errorf("pebble iterator: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		key := make([]byte, len(iter.Key()))
		copy(key, iter.Key())
		value, err := decodeValue(iter.Value())
		if err != nil {
			return err
		}
		if !fn(key, value) {
			break
		}
	}
	return iter.Error()
}

func (p *Pebble) Close() error {
	return p.db.Close()
}

func encodeValue(value []byte, compress bool) []byte {
	if compress && len(value) >= minCompressSize {
		buf := make([]byte, 1+lz4.CompressBlockBound(len(value)))
		n, err := lz4.CompressBlock(value, buf[1:], nil)
		// n == 0 means the block is incompressible; fall through to raw.
		if err == nil && n > 0 && n < len(value) {
			buf[0] = valueCompressed
			return buf[:1+n]
		}
	}
	out := make([]byte, 1+len(value))
	out[0] = valueRaw
	copy(out[1:], value)
	return out
}

func decodeValue(encoded []byte) ([]byte, error) {
	if len(encoded) == 0 {
		return nil, fmt.Errorf("corrupted value: empty")
	}
	payload := encoded[1:]
	switch encoded[0] {
	case valueRaw:
		out := make([]byte, len(payload))
		copy(out, payload)
		return out, nil
	case valueCompressed:
		for size := len(payload) * 4; size <= len(payload)*64; size *= 2 {
			buf := make([]byte, size)
			n, err := lz4.UncompressBlock(payload, buf)
			if err == nil {
				return buf[:n], nil
			}
		}
		return nil, fmt.Errorf("lz4 decompression failed")
	default:
		return nil, fmt.Errorf("corrupted value: unknown flag %d", encoded[0])
	}
}
