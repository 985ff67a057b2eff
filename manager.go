package gshader

import "fmt"

// FeatureManager holds one feature implementation per feature type. The
// order of first registration is the priority order features are processed
// and printed in. The zero value is ready to use.
//
// Registration is configuration time wiring: the manager must not be
// modified while a [Generator] uses it.
type FeatureManager struct {
	order    []FeatureType
	features map[FeatureType]Feature
}

// Register registers f as the implementation of t. It panics if t already
// has an implementation; call [FeatureManager.Unregister] first to replace it.
// A type keeps the priority of its first registration.
func (m *FeatureManager) Register(t FeatureType, f Feature) {
	if f == nil {
		panic(fmt.Sprintf("gshader: nil feature registered for %s", t))
	}
	if m.features == nil {
		m.features = make(map[FeatureType]Feature)
	}
	old, ok := m.features[t]
	if ok && old != nil {
		panic(fmt.Sprintf("gshader: feature %s already registered as %q", t, old.Name()))
	}
	if !ok {
		m.order = append(m.order, t)
	}
	m.features[t] = f
}

// Unregister removes the implementation of t. Unregistering a type that has
// no implementation does nothing.
func (m *FeatureManager) Unregister(t FeatureType) {
	if _, ok := m.features[t]; ok {
		m.features[t] = nil
	}
}

// Get returns the implementation of t or nil.
func (m *FeatureManager) Get(t FeatureType) Feature {
	return m.features[t]
}

// Types returns the types with an implementation in priority order.
func (m *FeatureManager) Types() []FeatureType {
	types := make([]FeatureType, 0, len(m.order))
	for _, t := range m.order {
		if m.features[t] != nil {
			types = append(types, t)
		}
	}
	return types
}

// Priority returns the processing position of t or -1 if t was never registered.
func (m *FeatureManager) Priority(t FeatureType) int {
	for i, ot := range m.order {
		if ot == t {
			return i
		}
	}
	return -1
}
