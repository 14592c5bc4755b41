package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/hotbundle/internal/foundation/errors"
)

// DefaultFile is the configuration file looked up when -c is not given.
const DefaultFile = "hotbundle.yaml"

// Config represents the application configuration.
type Config struct {
	Mode        Mode              `yaml:"mode"`
	Root        string            `yaml:"root"`
	SourceDir   string            `yaml:"source_dir"`
	PublicDir   string            `yaml:"public_dir"`
	OutDir      string            `yaml:"out_dir"`
	Entries     EntriesConfig     `yaml:"entries"`
	Eligibility EligibilityConfig `yaml:"eligibility"`
	Watch       WatchConfig       `yaml:"watch"`
	Server      ServerConfig      `yaml:"server"`
	Bootstrap   BootstrapConfig   `yaml:"bootstrap"`
	Refresh     RefreshConfig     `yaml:"refresh"`
	History     HistoryConfig     `yaml:"history"`
	NATS        NATSConfig        `yaml:"nats"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// EntriesConfig names the application entry and any extra vendor entries.
// The hot-update support entry is built in and always present.
type EntriesConfig struct {
	App    string   `yaml:"app"`
	Vendor []string `yaml:"vendor,omitempty"`
}

// EligibilityConfig controls which modules receive hot-update instrumentation.
type EligibilityConfig struct {
	Extensions string   `yaml:"extensions"` // regular expression matched against the path
	Exclude    []string `yaml:"exclude"`    // doublestar globs, relative to source_dir
}

// WatchConfig controls the filesystem watcher.
type WatchConfig struct {
	Debounce     time.Duration `yaml:"debounce"`      // 0 disables the quiet window
	PollInterval time.Duration `yaml:"poll_interval"` // 0 disables the polling fallback
	Gitignore    bool          `yaml:"gitignore"`
}

// ServerConfig controls the dev HTTP server and the update transport.
type ServerConfig struct {
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"`
	HMRPath          string `yaml:"hmr_path"`
	ReloadOnRecovery bool   `yaml:"reload_on_recovery"`
}

// BootstrapConfig controls the generated index document.
type BootstrapConfig struct {
	File     string `yaml:"file"`     // relative to public_dir
	Template string `yaml:"template"` // optional HTML template, relative to root
	Title    string `yaml:"title"`
}

// RefreshConfig selects the refresh-instrumentation collaborator.
type RefreshConfig struct {
	Command []string      `yaml:"command,omitempty"` // empty disables refresh wrapping
	Timeout time.Duration `yaml:"timeout"`
}

// HistoryConfig controls the generation history store.
type HistoryConfig struct {
	Path string `yaml:"path"` // sqlite file; ":memory:" keeps history in-process
}

// NATSConfig enables publishing update messages to a NATS subject.
type NATSConfig struct {
	URL            string `yaml:"url"`
	Subject        string `yaml:"subject"`
	ConnectRetries int    `yaml:"connect_retries"` // extra connect attempts at startup
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load loads configuration from the specified file, applies defaults and validates it.
func Load(configPath string) (*Config, error) {
	loadEnvFile()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferrors.ConfigError("configuration file not found").
				WithContext("path", configPath).Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath).Fatal().Build()
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to unmarshal config").
			WithContext("path", configPath).Fatal().Build()
	}
	if cfg.Root == "" {
		cfg.Root = filepath.Dir(configPath)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied, rooted at root.
func Default(root string) (*Config, error) {
	cfg := &Config{Root: root}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) finalize() error {
	applyDefaults(c)
	c.Mode = ResolveMode(c.Mode)
	abs, err := filepath.Abs(c.Root)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "resolve root").Fatal().Build()
	}
	c.Root = abs
	return Validate(c)
}

// SourceRoot is the absolute watched-source directory.
func (c *Config) SourceRoot() string { return c.abs(c.SourceDir) }

// PublicRoot is the absolute directory served to the browser.
func (c *Config) PublicRoot() string { return c.abs(c.PublicDir) }

// OutRoot is the absolute build output directory.
func (c *Config) OutRoot() string { return c.abs(c.OutDir) }

// AppEntryPath is the absolute path of the application entry.
func (c *Config) AppEntryPath() string { return c.abs(c.Entries.App) }

// BootstrapPath is the absolute path of the bootstrap document.
func (c *Config) BootstrapPath() string {
	return filepath.Join(c.PublicRoot(), filepath.FromSlash(c.Bootstrap.File))
}

// TemplatePath is the absolute path of the bootstrap template, or "" when none is configured.
func (c *Config) TemplatePath() string {
	if c.Bootstrap.Template == "" {
		return ""
	}
	return c.abs(c.Bootstrap.Template)
}

// Addr is the listen address of the dev server.
func (c *Config) Addr() string { return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port) }

func (c *Config) abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.Root, filepath.FromSlash(p))
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).Build()
	}

	example := Config{}
	applyDefaults(&example)
	example.Mode = ModeDevelopment
	example.Root = ""
	example.History.Path = ".hotbundle/history.db"

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}
	header := "# hotbundle configuration\n# Values may reference environment variables as ${NAME}.\n"
	if err := os.WriteFile(configPath, append([]byte(header), data...), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
