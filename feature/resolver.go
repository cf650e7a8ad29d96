package feature

// IDResolver maps a feature to its animation identity.
// Resolution order is fixed: configured property, the feature's own ID,
// then positional index. The state manager and the interaction handler
// must share one resolver so pointer events land on the same identities
// the state map was built with.
type IDResolver struct {
	// Property names the feature property holding the id, empty to skip
	Property string
}

// Resolve returns the animation id for a feature at the given position
func (r IDResolver) Resolve(f Feature, index int) any {
	if r.Property != "" {
		if v, ok := f.Properties[r.Property]; ok && v != nil {
			return v
		}
	}
	if f.ID != nil {
		return f.ID
	}
	return index
}

// ResolveProperties resolves an id from a bare property bag, used when the
// host pointer source delivers properties without the full feature
func (r IDResolver) ResolveProperties(id any, props map[string]any) any {
	if r.Property != "" {
		if v, ok := props[r.Property]; ok && v != nil {
			return v
		}
	}
	return id
}
