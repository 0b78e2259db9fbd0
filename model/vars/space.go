package vars

import (
	"strings"

	"github.com/viant/gxl/model/value"
)

// Space is a three layer variable store: inherited, global and named scopes.
// Names are case-insensitive.
type Space struct {
	inherited value.Object
	global    value.Object
	nameds    map[string]value.Object
	current   string
}

// New creates a space whose global layer starts as a clone of inherited.
func New(inherited value.Object) *Space {
	if inherited == nil {
		inherited = value.Object{}
	}
	return &Space{
		inherited: inherited,
		global:    inherited.Clone(),
		nameds:    map[string]value.Object{},
	}
}

// Inherited returns the process init layer.
func (s *Space) Inherited() value.Object {
	return s.inherited
}

// Isolated returns a fresh space built from the inherited layer only.
func (s *Space) Isolated() *Space {
	return New(s.inherited)
}

// Lookup walks nameds[current], global, inherited.
func (s *Space) Lookup(name string) (value.Value, bool) {
	if s.current != "" {
		if v, ok := s.nameds[s.current].Get(name); ok {
			return v, true
		}
	}
	if v, ok := s.global.Get(name); ok {
		return v, true
	}
	return s.inherited.Get(name)
}

// Set writes to the active named scope, or to global.
func (s *Space) Set(name string, v value.Value) {
	if s.current != "" {
		s.nameds[s.current].Set(name, v)
		return
	}
	s.global.Set(name, v)
}

// SetGlobal writes to global regardless of the active scope.
func (s *Space) SetGlobal(name string, v value.Value) {
	s.global.Set(name, v)
}

// Delete removes name from the layer Set would write to.
func (s *Space) Delete(name string) {
	if s.current != "" {
		s.nameds[s.current].Delete(name)
		return
	}
	s.global.Delete(name)
}

// Export writes props as PREFIX_NAME and as a nested PREFIX object so both ${PREFIX_NAME}
// and ${prefix.name} resolve to the same value.
func (s *Space) Export(prefix string, props value.Object) {
	prefix = value.Key(prefix)
	nested := value.Object{}
	if existing, ok := s.Lookup(prefix); ok && existing.Kind == value.KindObject {
		nested = existing.Object.Clone()
	}
	for k, v := range props {
		s.Set(prefix+"_"+k, v)
		nested.Set(k, v)
	}
	s.Set(prefix, value.NewObject(nested))
}

// Enter activates a named scope, creating it when absent.
func (s *Space) Enter(name string) (previous string) {
	previous = s.current
	name = value.Key(name)
	if _, ok := s.nameds[name]; !ok {
		s.nameds[name] = value.Object{}
	}
	s.current = name
	return previous
}

// Leave restores the previously active scope.
func (s *Space) Leave(previous string) {
	s.current = previous
}

// Current returns the active named scope, empty for global.
func (s *Space) Current() string {
	return s.current
}

// Named returns the dictionary of a named scope.
func (s *Space) Named(name string) (value.Object, bool) {
	dict, ok := s.nameds[value.Key(name)]
	return dict, ok
}

// Clone returns a deep copy; the inherited layer is shared as it is never mutated after init.
func (s *Space) Clone() *Space {
	nameds := make(map[string]value.Object, len(s.nameds))
	for k, v := range s.nameds {
		nameds[k] = v.Clone()
	}
	return &Space{
		inherited: s.inherited,
		global:    s.global.Clone(),
		nameds:    nameds,
		current:   s.current,
	}
}

// Adopt replaces the receiver state with other's, keeping pointer identity for callers sharing s.
func (s *Space) Adopt(other *Space) {
	if other == nil || other == s {
		return
	}
	*s = *other
}

// Flatten returns all visible names, later layers overriding earlier ones.
func (s *Space) Flatten() value.Object {
	ret := s.inherited.Clone()
	for k, v := range s.global {
		ret[k] = v
	}
	if s.current != "" {
		for k, v := range s.nameds[s.current] {
			ret[k] = v
		}
	}
	return ret
}

// Environ renders scalar globals as KEY=VALUE pairs for child processes.
func (s *Space) Environ() map[string]string {
	ret := map[string]string{}
	for k, v := range s.Flatten() {
		if v.Kind == value.KindList || v.Kind == value.KindObject || v.Kind == value.KindNull {
			continue
		}
		if strings.ContainsAny(k, ".[]") {
			continue
		}
		ret[k] = v.Raw()
	}
	return ret
}
