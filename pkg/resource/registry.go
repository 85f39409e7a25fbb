package resource

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrUnknownResource is returned by Registry.Lookup for a not registered name.
	ErrUnknownResource = errors.New("unknown resource")
	// ErrInvalidDescriptor is returned by Registry.Register for an incomplete definition.
	ErrInvalidDescriptor = errors.New("invalid resource descriptor")
)

// Registry maps resource names to descriptors.
// Resources are registered at configuration time, lookups are safe for concurrent use.
type Registry struct {
	lock      *sync.RWMutex
	resources map[string]Descriptor
}

func NewRegistry() *Registry {
	return &Registry{lock: &sync.RWMutex{}, resources: make(map[string]Descriptor)}
}

func (r *Registry) Register(name string, d Descriptor) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidDescriptor)
	}
	if d.Fetch == nil {
		return fmt.Errorf(`%w "%s": fetch function is not set`, ErrInvalidDescriptor, name)
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	if _, found := r.resources[name]; found {
		return fmt.Errorf(`%w "%s": already registered`, ErrInvalidDescriptor, name)
	}
	r.resources[name] = d
	return nil
}

// MustRegister is like Register, but panics on an error.
func (r *Registry) MustRegister(name string, d Descriptor) *Registry {
	if err := r.Register(name, d); err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Lookup(name string) (Descriptor, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	d, found := r.resources[name]
	if !found {
		return Descriptor{}, fmt.Errorf(`%w "%s"`, ErrUnknownResource, name)
	}
	return d, nil
}

// Names returns sorted names of all registered resources.
func (r *Registry) Names() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	out := make([]string, 0, len(r.resources))
	for name := range r.resources {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
