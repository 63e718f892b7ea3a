package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/aescanero/botutils/pkg/resolve"
)

const typeSeparator = ", "

var (
	// ErrInvalidEnvelope is returned for payloads that are not typed envelopes
	ErrInvalidEnvelope = errors.New("codec: invalid envelope")
	// ErrUnknownType is returned when a module does not define the requested type
	ErrUnknownType = errors.New("codec: unknown type")
)

// Envelope is the stored form of a typed value
type Envelope struct {
	Type  string          `json:"$type"`
	Value json.RawMessage `json:"value"`
}

// Resolver finds modules by fully qualified identity
type Resolver interface {
	Resolve(fullName string) (resolve.Module, error)
}

// Codec encodes and decodes typed envelopes
type Codec struct {
	resolver Resolver
}

// New creates a codec resolving modules through resolver
func New(resolver Resolver) *Codec {
	return &Codec{resolver: resolver}
}

// QualifiedTypeName joins a type name and a module full name
func QualifiedTypeName(typeName, moduleFullName string) string {
	return typeName + typeSeparator + moduleFullName
}

// SplitQualifiedTypeName splits "<TypeName>, <ModuleFullName>"
func SplitQualifiedTypeName(qualified string) (typeName, moduleFullName string, err error) {
	typeName, moduleFullName, ok := strings.Cut(qualified, typeSeparator)
	if !ok || typeName == "" || moduleFullName == "" {
		return "", "", fmt.Errorf("%w: bad type reference %q", ErrInvalidEnvelope, qualified)
	}
	return typeName, moduleFullName, nil
}

// Encode wraps v in an envelope naming typeName from module m
func (c *Codec) Encode(m resolve.Module, typeName string, v any) ([]byte, error) {
	if m == nil {
		return nil, resolve.ErrNilModule
	}
	if err := resolve.ValidateTypeName(typeName); err != nil {
		return nil, fmt.Errorf("%w: %q", err, typeName)
	}
	t, ok := m.Lookup(typeName)
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrUnknownType, typeName, m.FullName())
	}
	vt := reflect.TypeOf(v)
	for vt != nil && vt.Kind() == reflect.Pointer {
		vt = vt.Elem()
	}
	if vt != t {
		return nil, fmt.Errorf("%w: value of type %v is not %s", ErrUnknownType, reflect.TypeOf(v), typeName)
	}

	value, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}

	data, err := json.Marshal(Envelope{
		Type:  QualifiedTypeName(typeName, m.FullName()),
		Value: value,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}

	return data, nil
}

// Decode resolves the envelope type and returns a pointer to a new value
func (c *Codec) Decode(data []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing $type", ErrInvalidEnvelope)
	}

	typeName, moduleName, err := SplitQualifiedTypeName(env.Type)
	if err != nil {
		return nil, err
	}

	m, err := c.resolver.Resolve(moduleName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", env.Type, err)
	}

	t, ok := m.Lookup(typeName)
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrUnknownType, typeName, moduleName)
	}

	ptr := reflect.New(t)
	if len(env.Value) > 0 {
		if err := json.Unmarshal(env.Value, ptr.Interface()); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", env.Type, err)
		}
	}

	return ptr.Interface(), nil
}
