package funcs

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// Registry maps function names to Go functions.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]any
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]any)}
}

// Register adds fn under name, replacing any previous entry.
func (r *Registry) Register(name string, fn any) error {
	if name == "" {
		return fmt.Errorf("register: empty function name")
	}

	if fn == nil || reflect.TypeOf(fn).Kind() != reflect.Func {
		return fmt.Errorf("register %q: %T is not a function", name, fn)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.funcs[name] = fn

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, fn any) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// Get returns the function registered under name.
func (r *Registry) Get(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.funcs[name]

	return fn, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := NewRegistry()
	for k, v := range r.funcs {
		c.funcs[k] = v
	}

	return c
}

// Default returns a registry holding the builtin functions.
func Default() *Registry {
	r := NewRegistry()

	r.MustRegister("identity", Identity)
	r.MustRegister("format", fmt.Sprintf)
	r.MustRegister("concat", Concat)
	r.MustRegister("join", Join)
	r.MustRegister("split", Split)
	r.MustRegister("split_trim", SplitTrim)
	r.MustRegister("trim", Trim)
	r.MustRegister("upper", Upper)
	r.MustRegister("lower", Lower)
	r.MustRegister("title", Title)
	r.MustRegister("len", Len)
	r.MustRegister("safe_int", SafeInt)
	r.MustRegister("none_to", NoneTo)

	return r
}
