// Package appinfo reports application identity for health endpoints.
package appinfo

import (
	"os"
	"runtime/debug"
	"strings"
)

// GetEnvironment returns the normalized current environment, preferring
// ENVIRONMENT over GO_ENV and defaulting to "development".
func GetEnvironment() string {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = os.Getenv("GO_ENV")
	}
	if env == "" {
		env = "development"
	}
	switch strings.ToLower(env) {
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	case "dev", "development":
		return "development"
	default:
		return env
	}
}

// GetVersion returns the application version from VERSION, build info, or
// "0.0.0-unknown" when neither is available.
func GetVersion() string {
	if version := os.Getenv("VERSION"); version != "" {
		return version
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				return setting.Value
			}
		}
	}

	return "0.0.0-unknown"
}
