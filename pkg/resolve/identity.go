package resolve

import (
	"errors"
	"fmt"
	"strings"
)

const (
	versionField = "Version="
	cultureField = "Culture="
	keyField     = "PublicKeyToken="
)

// ErrInvalidIdentity is returned for malformed identity strings
var ErrInvalidIdentity = errors.New("resolve: invalid module identity")

// Identity is the fully qualified identity of a module
type Identity struct {
	Name           string
	Version        string
	Culture        string
	PublicKeyToken string
}

// String renders the identity as
// "Name, Version=V, Culture=C, PublicKeyToken=K". Empty parts are omitted.
func (id Identity) String() string {
	var b strings.Builder
	b.WriteString(id.Name)
	for _, f := range []struct{ prefix, value string }{
		{versionField, id.Version},
		{cultureField, id.Culture},
		{keyField, id.PublicKeyToken},
	} {
		if f.value == "" {
			continue
		}
		b.WriteString(", ")
		b.WriteString(f.prefix)
		b.WriteString(f.value)
	}
	return b.String()
}

// ParseIdentity parses a fully qualified identity string
func ParseIdentity(s string) (Identity, error) {
	parts := strings.Split(s, ",")
	id := Identity{Name: strings.TrimSpace(parts[0])}
	if id.Name == "" {
		return Identity{}, fmt.Errorf("%w %q: empty name", ErrInvalidIdentity, s)
	}

	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		var field *string
		var value string
		switch {
		case strings.HasPrefix(part, versionField):
			field, value = &id.Version, strings.TrimPrefix(part, versionField)
		case strings.HasPrefix(part, cultureField):
			field, value = &id.Culture, strings.TrimPrefix(part, cultureField)
		case strings.HasPrefix(part, keyField):
			field, value = &id.PublicKeyToken, strings.TrimPrefix(part, keyField)
		default:
			return Identity{}, fmt.Errorf("%w %q: unknown field %q", ErrInvalidIdentity, s, part)
		}
		if value == "" || *field != "" {
			return Identity{}, fmt.Errorf("%w %q: bad field %q", ErrInvalidIdentity, s, part)
		}
		*field = value
	}

	return id, nil
}
