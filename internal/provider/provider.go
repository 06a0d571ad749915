// Package provider implements synthetic-children decoders for Rust standard
// collections: slices, Vec, and the hashbrown-backed HashMap/HashSet. Each
// provider reconstructs a collection's logical contents from its raw byte
// layout, without executing any code in the target.
package provider

import "memlens/internal/value"

// Provider is the contract a host debugger drives. The host calls Update
// whenever the underlying value may have changed (stop, step, frame switch),
// then issues any number of child queries against the geometry that Update
// computed. Calls are strictly sequential; a provider instance is never
// shared across values.
type Provider interface {
	// Update recomputes the collection geometry from scratch. On failure the
	// provider degrades to zero children and keeps the error for Err.
	Update() error

	// ChildCount returns the number of logical children, 0 after a failed
	// Update.
	ChildCount() int

	// ChildAt materializes the logical child at index, valid for
	// 0 <= index < ChildCount().
	ChildAt(index int) (*value.Value, error)

	// ChildIndexForName maps a "[<decimal>]" child name back to its index,
	// NotFound for anything else.
	ChildIndexForName(name string) int

	// HasChildren reports whether the value gets a synthetic expansion at
	// all. True for every recognized collection, even an empty one.
	HasChildren() bool

	// Err returns the diagnostic from the last failed Update, nil when the
	// provider is ready.
	Err() error
}
