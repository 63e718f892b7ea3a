// Package config provides configuration management for the bot support service.
//
// Configuration is loaded from environment variables using the env package.
// All configuration values have sensible defaults for development use.
//
// Single app settings can also be read directly:
//
//	url := config.StateAPIURL("")             // BotStateEndpoint or the public default
//	id, ok := config.AppSetting(config.KeyAppID)
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("HTTP server will listen on %s\n", cfg.GetHTTPAddr())
package config
