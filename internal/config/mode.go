package config

import (
	"log/slog"
	"os"
	"strings"
)

// Mode selects development or production-like build options.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// ModeEnv overrides the configured mode when set.
const ModeEnv = "HOTBUNDLE_MODE"

// NormalizeMode maps user input onto a Mode, returning "" when unrecognized.
// Any value starting with "pro" counts as production.
func NormalizeMode(raw string) Mode {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case v == "":
		return ""
	case strings.HasPrefix(v, "pro"):
		return ModeProduction
	case strings.HasPrefix(v, "dev"):
		return ModeDevelopment
	default:
		return ""
	}
}

// ResolveMode determines the effective mode. Precedence:
// 1. HOTBUNDLE_MODE
// 2. configured mode
// 3. fallback: development
func ResolveMode(configured Mode) Mode {
	if env := os.Getenv(ModeEnv); env != "" {
		if m := NormalizeMode(env); m != "" {
			if configured != "" && m != configured {
				slog.Info("Overriding configured mode", "env", ModeEnv, "configured", configured, "effective", m)
			}
			return m
		}
		slog.Warn("Ignoring unrecognized mode", "env", ModeEnv, "value", env)
	}
	if m := NormalizeMode(string(configured)); m != "" {
		return m
	}
	return ModeDevelopment
}

// Production reports whether minification is on and source maps are off.
func (m Mode) Production() bool { return m == ModeProduction }
