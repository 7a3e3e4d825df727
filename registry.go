package lcd

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Registry is a named set of DataStructs. Fields declared with
// StructFieldRef / StructListFieldRef are bound by Link, which makes mutually
// recursive structs possible. A Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	structs map[string]*DataStruct
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{structs: map[string]*DataStruct{}}
}

// Register adds structs by name. Registering a name twice fails with
// ErrDuplicateStruct and leaves the registry unchanged.
func (r *Registry) Register(structs ...*DataStruct) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]struct{}{}
	for _, s := range structs {
		if s == nil {
			return ErrNilStruct
		}
		if _, ok := r.structs[s.name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateStruct, s.name)
		}
		if _, ok := seen[s.name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateStruct, s.name)
		}
		seen[s.name] = struct{}{}
	}
	for _, s := range structs {
		r.structs[s.name] = s
	}
	return nil
}

// Lookup returns the struct registered under name.
func (r *Registry) Lookup(name string) (*DataStruct, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.structs[name]
	return s, ok
}

// MustLookup is like Lookup but panics when name is unknown.
func (r *Registry) MustLookup(name string) *DataStruct {
	s, ok := r.Lookup(name)
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrUnknownStruct, name))
	}
	return s
}

// Names returns the registered names sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.structs))
	for n := range r.structs {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Link binds every by-name struct reference of the registered structs. All
// unknown names are reported together, each wrapping ErrUnknownStruct.
// References that are already bound are left untouched.
func (r *Registry) Link() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var errs []error
	names := make([]string, 0, len(r.structs))
	for n := range r.structs {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		s := r.structs[n]
		for _, nf := range s.fields {
			ref := nf.field.ref()
			if ref == nil || ref.resolve() != nil {
				continue
			}
			target, ok := r.structs[ref.name]
			if !ok {
				errs = append(errs, fmt.Errorf("%w: %s (field %s.%s)", ErrUnknownStruct, ref.name, s.name, nf.name))
				continue
			}
			ref.target.CompareAndSwap(nil, target)
		}
	}
	return errors.Join(errs...)
}
