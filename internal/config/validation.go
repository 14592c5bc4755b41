package config

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	ferrors "git.home.luguber.info/inful/hotbundle/internal/foundation/errors"
)

// Validate checks the configuration for values the pipeline cannot run with.
func Validate(c *Config) error {
	if _, err := regexp.Compile(c.Eligibility.Extensions); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "invalid eligibility.extensions pattern").
			WithContext("pattern", c.Eligibility.Extensions).Fatal().Build()
	}
	for _, pattern := range c.Eligibility.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return ferrors.ConfigError("invalid eligibility.exclude glob").
				WithContext("pattern", pattern).Build()
		}
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return ferrors.ConfigError("server.port out of range").WithContext("port", c.Server.Port).Build()
	}
	if !strings.HasPrefix(c.Server.HMRPath, "/") {
		return ferrors.ConfigError("server.hmr_path must start with /").
			WithContext("hmr_path", c.Server.HMRPath).Build()
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return ferrors.ConfigError("metrics.path must start with /").
			WithContext("path", c.Metrics.Path).Build()
	}
	if strings.TrimSpace(c.Entries.App) == "" {
		return ferrors.ConfigError("entries.app is required").Build()
	}
	rel, err := filepath.Rel(c.PublicRoot(), c.OutRoot())
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ferrors.ConfigError("out_dir must be inside public_dir so outputs are servable").
			WithContext("out_dir", c.OutDir).
			WithContext("public_dir", c.PublicDir).Build()
	}
	if c.Watch.Debounce < 0 || c.Watch.PollInterval < 0 {
		return ferrors.ConfigError("watch durations must not be negative").Build()
	}
	if c.NATS.ConnectRetries < 0 {
		return ferrors.ConfigError("nats.connect_retries must not be negative").Build()
	}
	return nil
}
