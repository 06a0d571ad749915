package provider

import "memlens/internal/value"

// Factory creates a provider bound to one inspected value. Instantiation is
// lazy: the registry only matches names at registration-lookup time and the
// host constructs providers per value, per its own lifetime rules.
type Factory func(*value.Value) Provider

type registration struct {
	matches func(string) bool
	factory Factory
}

// Registry maps fully qualified type names to provider factories. First
// matching registration wins.
type Registry struct {
	entries []registration
}

// NewRegistry returns a registry with the built-in collection providers
// registered.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(MatchesSlice, func(v *value.Value) Provider { return NewSlice(v) })
	r.Register(MatchesVec, func(v *value.Value) Provider { return NewVec(v) })
	r.Register(MatchesHashMap, func(v *value.Value) Provider { return NewHashMap(v) })
	r.Register(MatchesHashSet, func(v *value.Value) Provider { return NewHashSet(v) })
	return r
}

// Register appends a matcher/factory pair.
func (r *Registry) Register(matches func(string) bool, factory Factory) {
	r.entries = append(r.entries, registration{matches: matches, factory: factory})
}

// Lookup returns the factory for a type name, or false when no decoder
// applies and the host should fall back to the generic field-by-field view.
func (r *Registry) Lookup(typeName string) (Factory, bool) {
	for _, e := range r.entries {
		if e.matches(typeName) {
			return e.factory, true
		}
	}
	return nil, false
}

// ProviderFor instantiates the matching provider for a value, if any.
func (r *Registry) ProviderFor(v *value.Value) (Provider, bool) {
	if v == nil || v.Type() == nil {
		return nil, false
	}
	f, ok := r.Lookup(v.Type().Name)
	if !ok {
		return nil, false
	}
	return f(v), true
}
