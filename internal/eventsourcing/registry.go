package eventsourcing

import (
	"reflect"
	"sort"
)

// Factory returns a new, empty instance of a concrete event type.
type Factory func() Event

// Registry maps event types to stable wire names. It is filled once at
// startup and sealed; lookups after Seal are safe for concurrent use.
type Registry struct {
	byName map[string]Factory
	byType map[reflect.Type]string
	sealed bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Factory),
		byType: make(map[reflect.Type]string),
	}
}

// Register records the event type built by f under its own type name.
func (r *Registry) Register(f Factory) bool {
	if f == nil {
		return false
	}
	e := f()
	if e == nil {
		return false
	}
	return r.RegisterAs(typeName(reflect.TypeOf(e)), f)
}

// RegisterAs records the event type built by f under name. It reports false
// when the registry is sealed, f yields no concrete type, or either the name
// or the type is already registered.
func (r *Registry) RegisterAs(name string, f Factory) bool {
	if r.sealed || f == nil || name == "" {
		return false
	}
	e := f()
	if e == nil {
		return false
	}
	t := reflect.TypeOf(e)
	if _, ok := r.byName[name]; ok {
		return false
	}
	if _, ok := r.byType[t]; ok {
		return false
	}
	r.byName[name] = f
	r.byType[t] = name
	return true
}

// Seal makes the registry read-only.
func (r *Registry) Seal() {
	r.sealed = true
}

// NameFor returns the wire name of the event's type.
func (r *Registry) NameFor(e Event) (string, bool) {
	if e == nil {
		return "", false
	}
	name, ok := r.byType[reflect.TypeOf(e)]
	return name, ok
}

// New returns an empty event for a wire name.
func (r *Registry) New(name string) (Event, bool) {
	f, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return f(), true
}

// Names returns the registered wire names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
