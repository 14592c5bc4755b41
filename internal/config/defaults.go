package config

import "time"

// DefaultExtensions matches the module kinds that receive instrumentation.
const DefaultExtensions = `\.[tj]sx?$`

func applyDefaults(c *Config) {
	if c.SourceDir == "" {
		c.SourceDir = "app"
	}
	if c.PublicDir == "" {
		c.PublicDir = "public"
	}
	if c.OutDir == "" {
		c.OutDir = "public/build"
	}
	if c.Entries.App == "" {
		c.Entries.App = "app/entry.client.tsx"
	}
	if c.Entries.Vendor == nil {
		c.Entries.Vendor = []string{"react", "react-dom"}
		if len(c.Refresh.Command) > 0 {
			c.Entries.Vendor = append(c.Entries.Vendor, "react-refresh/runtime")
		}
	}
	if c.Eligibility.Extensions == "" {
		c.Eligibility.Extensions = DefaultExtensions
	}
	if c.Eligibility.Exclude == nil {
		c.Eligibility.Exclude = []string{"**/node_modules/**", "**/vendor/**", "**/*.d.ts"}
	}
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Server.HMRPath == "" {
		c.Server.HMRPath = "/__hmr__"
	}
	if c.Bootstrap.File == "" {
		c.Bootstrap.File = "index.html"
	}
	if c.Bootstrap.Title == "" {
		c.Bootstrap.Title = "hotbundle"
	}
	if c.Refresh.Timeout <= 0 {
		c.Refresh.Timeout = 10 * time.Second
	}
	if c.History.Path == "" {
		c.History.Path = ":memory:"
	}
	if c.NATS.Subject == "" {
		c.NATS.Subject = "hotbundle.updates"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}
