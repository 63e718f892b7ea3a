package config

import "os"

// App setting keys read from the process environment
const (
	// KeyStateEndpoint is the bot state endpoint key
	KeyStateEndpoint = "BotStateEndpoint"
	// KeyOpenIDMetadata is the OpenID metadata url key
	KeyOpenIDMetadata = "BotOpenIdMetadata"
	// KeyAppID is the Microsoft app id key
	KeyAppID = "MicrosoftAppId"
	// KeyAppPassword is the Microsoft app password key
	KeyAppPassword = "MicrosoftAppPassword"
	// KeyTableStorageConnectionString is the key for the table storage connection string
	KeyTableStorageConnectionString = "AzureWebJobsStorage"
	// KeyUseTableStorageForConversationState flags table storage as the conversation state store
	KeyUseTableStorageForConversationState = "UseTableStorageForConversationState"
)

// Fallback values for settings with a documented default
const (
	DefaultStateEndpoint  = "https://state.botframework.com/"
	DefaultOpenIDMetadata = "https://login.botframework.com/v1/.well-known/openidconfiguration"
)

// AppSetting returns the raw value of key and whether it is set
func AppSetting(key string) (string, bool) {
	return os.LookupEnv(key)
}

// WithDefault returns the value of key, or def when it is unset or empty
func WithDefault(key, def string) string {
	if v, ok := AppSetting(key); ok && v != "" {
		return v
	}
	return def
}

// StateAPIURL returns the state api endpoint.
// An empty key reads KeyStateEndpoint.
func StateAPIURL(key string) string {
	if key == "" {
		key = KeyStateEndpoint
	}
	return WithDefault(key, DefaultStateEndpoint)
}

// OpenIDConfigurationURL returns the OpenID configuration url.
// An empty key reads KeyOpenIDMetadata.
func OpenIDConfigurationURL(key string) string {
	if key == "" {
		key = KeyOpenIDMetadata
	}
	return WithDefault(key, DefaultOpenIDMetadata)
}
