package resolve

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrEmptyTypeName is returned when a type is registered without a name
	ErrEmptyTypeName = errors.New("resolve: empty type name")
	// ErrInvalidTypeName is returned for type names containing a comma
	ErrInvalidTypeName = errors.New("resolve: invalid type name")
	// ErrNilType is returned when a nil sample is registered
	ErrNilType = errors.New("resolve: nil type")
	// ErrTypeConflict is returned when a name is re-registered with a different type
	ErrTypeConflict = errors.New("resolve: conflicting type registration")
)

// Module is a loaded unit of types addressable by its fully qualified identity
type Module interface {
	// FullName returns the fully qualified identity string
	FullName() string
	// Lookup returns the Go type registered under typeName
	Lookup(typeName string) (reflect.Type, bool)
}

// TypeModule is an in-memory Module holding a named set of Go types
type TypeModule struct {
	id    Identity
	mu    sync.RWMutex
	types map[string]reflect.Type
}

// NewModule creates an empty in-memory module
func NewModule(id Identity) *TypeModule {
	return &TypeModule{
		id:    id,
		types: make(map[string]reflect.Type),
	}
}

// Identity returns the module identity
func (m *TypeModule) Identity() Identity {
	return m.id
}

// FullName returns the fully qualified identity string
func (m *TypeModule) FullName() string {
	return m.id.String()
}

// Register associates name with the type of sample.
// Pointer samples register their element type. Re-registering the same
// (name, type) pair is a no-op.
func (m *TypeModule) Register(name string, sample any) error {
	if err := ValidateTypeName(name); err != nil {
		return err
	}
	t := reflect.TypeOf(sample)
	if t == nil {
		return ErrNilType
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.types[name]; ok {
		if old == t {
			return nil
		}
		return ErrTypeConflict
	}
	m.types[name] = t
	return nil
}

// ValidateTypeName reports whether name can appear in a qualified type reference
func ValidateTypeName(name string) error {
	if name == "" {
		return ErrEmptyTypeName
	}
	if strings.Contains(name, ",") {
		return ErrInvalidTypeName
	}
	return nil
}

// Lookup returns the Go type registered under typeName
func (m *TypeModule) Lookup(typeName string) (reflect.Type, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.types[typeName]
	return t, ok
}

// Types returns the registered type names in sorted order
func (m *TypeModule) Types() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.types))
	for name := range m.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
