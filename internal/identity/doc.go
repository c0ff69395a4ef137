// Package identity resolves the many objects a pipeline may use to represent
// one request down to a single canonical reference, and associates state with
// that reference.
//
// # The problem
//
// A request travels through middleware, guards, interceptors, and handlers,
// and each stage may hold a different object for it: the raw *http.Request,
// a framework wrapper around it, an independently constructed view, or a
// shallow copy produced by Request.WithContext. Keying state by whichever
// object a stage happens to hold loses that state at every boundary where the
// objects differ.
//
// # The solution
//
// Two cooperating pieces:
//
//   - Resolver maps any view of a request to one canonical reference. Views
//     declare a relation to a "more canonical" view (a Raw or Request slot);
//     the resolver follows that relation one hop and memoizes the result, so
//     all related views converge on the same reference no matter which is
//     resolved first.
//
//   - Store associates a value with an object reference. Views that embed
//     Meta get a hidden-slot fast path; everything else falls back to a
//     reference-identity side table. Attachment failure is never an error,
//     only a silent downgrade to the side table.
//
// The resolver's own memoization is itself a Store instance, so Store is the
// single storage primitive underneath both.
//
// # Lifetime
//
// Slot-based state lives and dies with the view that carries it. Side-table
// entries pin their key until Store.Delete or Resolver.Forget is called;
// request-scoped users (see the scope middleware) release entries when the
// request completes.
//
// All operations are synchronous and safe for concurrent use. Distinct
// requests never share a view reference, so operations on different requests
// need no coordination; interleaved writes to the same view are last-write-wins.
package identity
