package state

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/Natashkinsasha/near-nft-template/internal/state/kvstore"
)

// action describes how a tracked entry differs from the base store.
type action int

const (
	actionCache action = iota
	actionInsert
	actionModify
	actionErase
)

type trackedEntry struct {
	action   action
	original []byte // nil for inserts
	current  []byte // nil after erase
}

// Table wraps a Store and buffers every mutation an invocation makes.
// Commit applies the buffered changes atomically and reports the storage
// byte delta; Discard throws them away. This is what makes a failed entry
// point leave no trace.
type Table struct {
	base  kvstore.Store
	items map[string]*trackedEntry
}

// NewTable creates a change-tracking view over base.
func NewTable(base kvstore.Store) *Table {
	return &Table{
		base:  base,
		items: make(map[string]*trackedEntry),
	}
}

// Get reads an entry, observing buffered writes first.
func (t *Table) Get(key []byte) ([]byte, error) {
	if entry, ok := t.items[string(key)]; ok {
		if entry.action == actionErase {
			return nil, nil
		}
		return entry.current, nil
	}
	value, err := t.base.Get(key)
	if err != nil {
		return nil, err
	}
	if value != nil {
		t.items[string(key)] = &trackedEntry{action: actionCache, original: value, current: value}
	}
	return value, nil
}

// Has reports whether the entry exists in the merged view.
func (t *Table) Has(key []byte) (bool, error) {
	if entry, ok := t.items[string(key)]; ok {
		return entry.action != actionErase, nil
	}
	return t.base.Has(key)
}

// Put inserts or replaces an entry.
func (t *Table) Put(key, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	if entry, ok := t.items[string(key)]; ok {
		switch entry.action {
		case actionInsert:
			entry.current = stored
		case actionErase:
			if entry.original != nil {
				entry.action = actionModify
			} else {
				entry.action = actionInsert
			}
			entry.current = stored
		default:
			entry.action = actionModify
			entry.current = stored
		}
		return nil
	}

	original, err := t.base.Get(key)
	if err != nil {
		return err
	}
	if original == nil {
		t.items[string(key)] = &trackedEntry{action: actionInsert, current: stored}
	} else {
		t.items[string(key)] = &trackedEntry{action: actionModify, original: original, current: stored}
	}
	return nil
}

// Delete removes an entry. Deleting an absent entry is a no-op.
func (t *Table) Delete(key []byte) error {
	if entry, ok := t.items[string(key)]; ok {
		if entry.action == actionInsert {
			// Never existed in the base store.
			delete(t.items, string(key))
			return nil
		}
		entry.action = actionErase
		entry.current = nil
		return nil
	}

	original, err := t.base.Get(key)
	if err != nil {
		return err
	}
	if original == nil {
		return nil
	}
	t.items[string(key)] = &trackedEntry{action: actionErase, original: original}
	return nil
}

// ForEach iterates the merged view in ascending key order.
func (t *Table) ForEach(prefix []byte, fn func(key, value []byte) bool) error {
	merged := make(map[string][]byte)
	err := t.base.ForEach(prefix, func(key, value []byte) bool {
		merged[string(key)] = value
		return true
	})
	if err != nil {
		return err
	}
	for key, entry := range t.items {
		if !bytes.HasPrefix([]byte(key), prefix) {
			continue
		}
		if entry.action == actionErase {
			delete(merged, key)
		} else {
			merged[key] = entry.current
		}
	}

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if !fn([]byte(key), merged[key]) {
			return nil
		}
	}
	return nil
}

// StorageDelta returns the net storage change, in bytes, of the buffered
// mutations: created entries count key+value, deleted entries count
// negatively, modified entries count the size difference.
func (t *Table) StorageDelta() int64 {
	var delta int64
	for key, entry := range t.items {
		switch entry.action {
		case actionInsert:
			delta += int64(len(key) + len(entry.current))
		case actionErase:
			delta -= int64(len(key) + len(entry.original))
		case actionModify:
			delta += int64(len(entry.current)) - int64(len(entry.original))
		}
	}
	return delta
}

// Commit writes the buffered mutations to the base store and returns the
// storage byte delta. The table must not be reused afterwards.
func (t *Table) Commit() (int64, error) {
	delta := t.StorageDelta()
	for key, entry := range t.items {
		switch entry.action {
		case actionInsert, actionModify:
			if err := t.base.Put([]byte(key), entry.current); err != nil {
				return 0, fmt.Errorf("state commit: %w", err)
			}
		case actionErase:
			if err := t.base.Delete([]byte(key)); err != nil {
				return 0, fmt.Errorf("state commit: %w", err)
			}
		}
	}
	t.items = make(map[string]*trackedEntry)
	return delta, nil
}

// Discard drops all buffered mutations.
func (t *Table) Discard() {
	t.items = make(map[string]*trackedEntry)
}

// GetMsg decodes the entry at key into v. Returns (false, nil) when absent.
func (t *Table) GetMsg(key []byte, v any) (bool, error) {
	data, err := t.Get(key)
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if err := Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode state entry %q: %w", key, err)
	}
	return true, nil
}

// PutMsg encodes v canonically and stores it at key.
func (t *Table) PutMsg(key []byte, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return fmt.Errorf("encode state entry %q: %w", key, err)
	}
	return t.Put(key, data)
}
