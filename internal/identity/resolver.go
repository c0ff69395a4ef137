package identity

// Resolver maps any view of a request to a single canonical reference.
//
// Resolution is idempotent while a view's relation slots are unchanged, the
// canonical reference of a canonical reference is itself, and two views
// related through a relation slot converge on the same canonical reference
// no matter which of them is resolved first. Content equality never implies
// identity: a freshly constructed view is always its own canonical.
//
// The resolver memoizes results in its own Store instance, so its bookkeeping
// gets the same slot-or-side-table treatment as any other per-view state.
type Resolver struct {
	tags *Store
}

// NewResolver creates a resolver with an independent memoization store.
func NewResolver() *Resolver {
	return &Resolver{tags: NewStore("identity.canonical")}
}

// Resolve returns the canonical reference for view.
//
// Non-reference inputs (nil, strings, numbers, struct values) are returned
// unchanged; Resolve never fails. For references the result is always one of
// the views themselves, chosen as follows: a previously memoized canonical
// wins; otherwise the first present relation slot (raw before request) names
// the candidate, falling back to the view itself. When the candidate was
// already resolved through another view, its canonical is adopted, so
// resolution order does not matter.
//
// Memoization is best-effort. Views that cannot carry a hidden slot end up
// in the side table instead; see Forget for reclaiming those entries.
func (r *Resolver) Resolve(view any) any {
	if !isReference(view) {
		return view
	}

	// Fast path: slot or side-table hit.
	if c, ok := r.tags.Get(view); ok {
		return c
	}

	candidate := pickRelation(view)

	if !sameReference(candidate, view) {
		// The related view may have been resolved first. Adopting its
		// canonical is what makes convergence order-independent.
		if c, ok := r.tags.Get(candidate); ok {
			r.tags.Set(view, c)
			return c
		}
	}

	// Candidate becomes canonical: a fixed point for itself, the target for
	// the view that led here.
	r.tags.Set(candidate, candidate)

	if !sameReference(candidate, view) {
		r.tags.Set(view, candidate)
	}

	return candidate
}

// Forget drops the memoized canonical for view and for the relation it points
// at. Slot-carried entries die with their views anyway; this exists so that
// request-scoped callers can release side-table entries for foreign objects
// once a request completes.
func (r *Resolver) Forget(view any) {
	if !isReference(view) {
		return
	}

	if candidate := pickRelation(view); !sameReference(candidate, view) {
		r.tags.Delete(candidate)
	}

	r.tags.Delete(view)
}
