package state

import "github.com/aescanero/botutils/pkg/resolve"

// BuiltinIdentity identifies the module holding the service's own state types
var BuiltinIdentity = resolve.Identity{Name: "Botutils.State", Version: "1.0.0"}

// BotData is free-form bag state for a user, conversation or member
type BotData map[string]any

// ConversationReference points back at a conversation for proactive messages
type ConversationReference struct {
	ChannelID      string `json:"channelId"`
	ServiceURL     string `json:"serviceUrl"`
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId,omitempty"`
	BotID          string `json:"botId,omitempty"`
}

// BuiltinModule returns a module defining BotData and ConversationReference
func BuiltinModule() *resolve.TypeModule {
	m := resolve.NewModule(BuiltinIdentity)
	// Registration only fails on empty names or conflicts
	_ = m.Register("BotData", BotData{})
	_ = m.Register("ConversationReference", ConversationReference{})
	return m
}
