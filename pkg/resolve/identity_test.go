package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityString(t *testing.T) {
	tests := []struct {
		name string
		id   Identity
		want string
	}{
		{"full", Identity{Name: "Bot.Dialogs", Version: "1.2.0", PublicKeyToken: "abc123"}, "Bot.Dialogs, Version=1.2.0, PublicKeyToken=abc123"},
		{"name only", Identity{Name: "Bot.Dialogs"}, "Bot.Dialogs"},
		{"no key", Identity{Name: "Bot.Dialogs", Version: "1.2.0"}, "Bot.Dialogs, Version=1.2.0"},
		{"culture", Identity{Name: "Bot.Dialogs", Version: "1.2.0", Culture: "neutral", PublicKeyToken: "null"}, "Bot.Dialogs, Version=1.2.0, Culture=neutral, PublicKeyToken=null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.id.String())
		})
	}
}

func TestParseIdentity(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Identity
	}{
		{"full", "Bot.Dialogs, Version=1.2.0, PublicKeyToken=abc123", Identity{Name: "Bot.Dialogs", Version: "1.2.0", PublicKeyToken: "abc123"}},
		{"name only", "Bot.Dialogs", Identity{Name: "Bot.Dialogs"}},
		{"culture", "Bot.Dialogs, Version=1.2.0, Culture=neutral, PublicKeyToken=null", Identity{Name: "Bot.Dialogs", Version: "1.2.0", Culture: "neutral", PublicKeyToken: "null"}},
		{"culture only", "Bot.Dialogs, Culture=neutral", Identity{Name: "Bot.Dialogs", Culture: "neutral"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIdentity(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestParseIdentityErrors(t *testing.T) {
	for _, input := range []string{
		"",
		", Version=1.0.0",
		"Bot.Dialogs, Locale=en",
		"Bot.Dialogs, Version=",
		"Bot.Dialogs, Version=1.0.0, Version=2.0.0",
	} {
		_, err := ParseIdentity(input)
		assert.ErrorIs(t, err, ErrInvalidIdentity, input)
	}
}
