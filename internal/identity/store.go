package identity

import "sync"

// Store associates an opaque value with an object reference.
//
// Writes prefer the hidden metadata slot on keys that carry one (see Meta);
// keys that cannot be tagged (foreign objects like *http.Request) silently
// fall back to a reference-identity side table. Reads consult the slot first,
// including values that were explicitly set to nil, and only then the side
// table, so a slot write always shadows an older side-table entry.
//
// Multiple stores may coexist over the same views without interference: each
// store writes to its own slot compartment and owns its own side table.
type Store struct {
	name     string
	fallback sync.Map // refKey -> any
}

// NewStore creates a store. The name only identifies the store in logs and
// debugging; identity comes from the Store pointer itself.
func NewStore(name string) *Store {
	return &Store{name: name}
}

// Name returns the store's diagnostic name.
func (s *Store) Name() string {
	return s.name
}

// Set associates value with key. A nil key is a silent no-op, as is a key
// with no reference identity (strings, numbers, struct values): such keys can
// never be looked up again, so storing under them would only leak.
func (s *Store) Set(key, value any) {
	if key == nil {
		return
	}

	if sl := slotsOf(key); sl != nil {
		sl.set(s, value)
		return
	}

	if rk, ok := referenceKey(key); ok {
		s.fallback.Store(rk, value)
	}
}

// Get returns the value associated with key. The second return reports
// whether a value is present; a present nil value is returned as (nil, true).
// A nil key returns (nil, false) and never panics.
func (s *Store) Get(key any) (any, bool) {
	if key == nil {
		return nil, false
	}

	if sl := slotsOf(key); sl != nil {
		if v, ok := sl.get(s); ok {
			return v, ok
		}
	}

	if rk, ok := referenceKey(key); ok {
		return s.fallback.Load(rk)
	}

	return nil, false
}

// Delete removes any association for key, in both the slot and the side
// table. Deleting an absent key is a no-op.
func (s *Store) Delete(key any) {
	if key == nil {
		return
	}

	if sl := slotsOf(key); sl != nil {
		sl.delete(s)
	}

	if rk, ok := referenceKey(key); ok {
		s.fallback.Delete(rk)
	}
}
