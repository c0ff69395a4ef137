package identity

import "sync"

// Meta is the hidden metadata slot a view type opts into by embedding it.
// Each Store writes to its own compartment of the slot, so any number of
// stores can tag the same view without interfering with each other.
//
// A Meta must be created with NewMeta. The zero value carries no slot state
// and behaves like an untaggable view: stores silently fall back to their
// side tables. Copies of an initialized Meta share the same slot state, which
// is what keeps tags visible across shallow copies of a view.
type Meta struct {
	s *slots
}

// NewMeta returns an initialized metadata slot.
func NewMeta() Meta {
	return Meta{s: &slots{}}
}

// IdentityMeta implements Carrier. Embedding Meta in a view type is enough
// to satisfy the interface.
func (m Meta) IdentityMeta() Meta {
	return m
}

// Carrier is implemented by view types that can hold hidden metadata.
// Embed Meta to implement it:
//
//	type requestView struct {
//	    identity.Meta
//	    Raw *http.Request
//	}
//
//	view := &requestView{Meta: identity.NewMeta(), Raw: req}
type Carrier interface {
	IdentityMeta() Meta
}

// slots holds per-store values for one view. Presence in the map is what
// distinguishes "set to nil" from "never set".
type slots struct {
	mu     sync.RWMutex
	values map[*Store]any
}

func (s *slots) get(owner *Store) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[owner]

	return v, ok
}

func (s *slots) set(owner *Store, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.values == nil {
		s.values = make(map[*Store]any, 1)
	}

	s.values[owner] = value
}

func (s *slots) delete(owner *Store) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, owner)
}

// slotsOf returns the slot state for a key, or nil if the key cannot carry
// hidden metadata (it is not a Carrier, or its Meta is the zero value).
func slotsOf(key any) *slots {
	c, ok := key.(Carrier)
	if !ok {
		return nil
	}

	return c.IdentityMeta().s
}
