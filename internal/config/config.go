package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glyph-dev/glyph/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "glyph.json"

	// DefaultPort is the default development server port.
	DefaultPort = 4800

	// DefaultHost is the default development server host.
	DefaultHost = "localhost"

	// DefaultOutput is the default build output directory.
	DefaultOutput = "dist"

	// DefaultComponents is the default component source directory.
	DefaultComponents = "components"

	// DefaultCacheDir is the default artifact cache directory.
	DefaultCacheDir = ".glyph-cache"
)

// Config represents the complete glyph.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Version is the project version.
	Version string `json:"version,omitempty"`

	// Components is the directory containing .glyph component files.
	Components string `json:"components,omitempty"`

	// Dev contains development server configuration.
	Dev DevConfig `json:"dev,omitempty"`

	// Build contains build configuration.
	Build BuildConfig `json:"build,omitempty"`

	// Deploy contains deployment configuration.
	Deploy DeployConfig `json:"deploy,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// DevConfig contains development server settings.
type DevConfig struct {
	// Port is the port to run the dev server on.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// LiveReload enables browser reload on rebuild.
	LiveReload *bool `json:"liveReload,omitempty"`

	// Watch contains extra paths to watch for changes beyond the
	// components directory.
	Watch []string `json:"watch,omitempty"`
}

// BuildConfig contains build settings.
type BuildConfig struct {
	// Output is the output directory for compiled artifacts.
	Output string `json:"output,omitempty"`

	// Cache is the artifact cache directory.
	Cache string `json:"cache,omitempty"`

	// NoCache disables the artifact cache.
	NoCache bool `json:"noCache,omitempty"`

	// Parallelism caps concurrent component compilations. Zero means one
	// per CPU.
	Parallelism int `json:"parallelism,omitempty"`
}

// DeployConfig contains artifact upload settings.
type DeployConfig struct {
	// Bucket is the S3 bucket receiving the dist directory.
	Bucket string `json:"bucket,omitempty"`

	// Region is the bucket's AWS region.
	Region string `json:"region,omitempty"`

	// Prefix is the object key prefix inside the bucket.
	Prefix string `json:"prefix,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Version:    "0.1.0",
		Components: DefaultComponents,
		Dev: DevConfig{
			Port: DefaultPort,
			Host: DefaultHost,
		},
		Build: BuildConfig{
			Output: DefaultOutput,
			Cache:  DefaultCacheDir,
		},
	}
}

// Load reads configuration from the specified directory. It looks for
// glyph.json in the directory; a missing file yields the defaults.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := New()
		cfg.configPath = path
		return cfg, nil
	}
	return LoadFile(path)
}

// Find searches dir and its parents for glyph.json and loads the first one
// found. When no config exists anywhere up the tree, defaults anchored at dir
// are returned, so a bare directory of components is a valid project.
func Find(dir string) (*Config, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.New("G401").Wrap(err)
	}
	for d := abs; ; d = filepath.Dir(d) {
		path := filepath.Join(d, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
		if filepath.Dir(d) == d {
			break
		}
	}
	cfg := New()
	cfg.configPath = filepath.Join(abs, ConfigFileName)
	return cfg, nil
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("G400").
				WithDetail("no " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("create " + ConfigFileName + " or run from the project root")
		}
		return nil, errors.New("G401").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("G401").
			WithDetail("failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("G401").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("G401").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// ComponentsDir returns the component directory resolved against the config
// file location.
func (c *Config) ComponentsDir() string {
	return c.resolve(c.Components)
}

// OutputDir returns the build output directory resolved against the config
// file location.
func (c *Config) OutputDir() string {
	return c.resolve(c.Build.Output)
}

// CacheDir returns the artifact cache directory resolved against the config
// file location, or "" when caching is disabled.
func (c *Config) CacheDir() string {
	if c.Build.NoCache {
		return ""
	}
	return c.resolve(c.Build.Cache)
}

// LiveReload reports whether the dev server should push reload events.
// Defaults to on.
func (c *Config) LiveReload() bool {
	return c.Dev.LiveReload == nil || *c.Dev.LiveReload
}

// DevAddress returns the listen address of the dev server.
func (c *Config) DevAddress() string {
	return fmt.Sprintf("%s:%d", c.Dev.Host, c.Dev.Port)
}

// DevURL returns the URL of the dev server.
func (c *Config) DevURL() string {
	return fmt.Sprintf("http://%s:%d", c.Dev.Host, c.Dev.Port)
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if dir := c.Dir(); dir != "" {
		return filepath.Join(dir, p)
	}
	return p
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Components == "" {
		c.Components = DefaultComponents
	}
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
	if c.Build.Output == "" {
		c.Build.Output = DefaultOutput
	}
	if c.Build.Cache == "" {
		c.Build.Cache = DefaultCacheDir
	}
}
