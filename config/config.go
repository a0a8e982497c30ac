// Package config stores named InfluxDB connection profiles.
//
// Profiles live at $INFLUXINV_CONFIG, or $XDG_CONFIG_HOME/influxinv/config.yaml
// (defaults to ~/.config/influxinv/config.yaml), as named contexts with a
// current-context selector.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfig  = "INFLUXINV_CONFIG"
	EnvContext = "INFLUXINV_CONTEXT"
)

// Context describes how to reach one InfluxDB server.
type Context struct {
	URL       string `yaml:"url"`
	API       string `yaml:"api,omitempty"`       // v1 or v2
	Transport string `yaml:"transport,omitempty"` // client or http, v1 only
	Username  string `yaml:"username,omitempty"`
	Password  string `yaml:"password,omitempty"`
	Token     string `yaml:"token,omitempty"`
	Org       string `yaml:"org,omitempty"`
	Flux      bool   `yaml:"flux,omitempty"`
}

// Config holds named contexts and the current selection.
type Config struct {
	CurrentContext string             `yaml:"current-context"`
	Contexts       map[string]Context `yaml:"contexts"`
}

// Path returns the config file location.
func Path() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfig)); p != "" {
		return p
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".config", "influxinv", "config.yaml")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "influxinv", "config.yaml")
}

// Load reads the config file. A missing file yields an empty Config.
func Load() (*Config, error) {
	data, err := os.ReadFile(Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{Contexts: make(map[string]Context)}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]Context)
	}
	return &cfg, nil
}

// Save writes the config to disk, creating directories as needed. The file
// may hold credentials, so it is private to the user.
func (c *Config) Save() error {
	p := Path()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(p, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Current returns the current context name and value.
// The bool is false when no current context is set.
func (c *Config) Current() (string, Context, bool) {
	if c.CurrentContext == "" {
		return "", Context{}, false
	}
	ctx, ok := c.Contexts[c.CurrentContext]
	if !ok {
		return "", Context{}, false
	}
	return c.CurrentContext, ctx, true
}

// Resolve picks the profile to connect with: the explicit name, then
// $INFLUXINV_CONTEXT, then current-context. An unknown explicit or
// environment name is an error; having no profile at all is not.
func (c *Config) Resolve(name string) (string, Context, error) {
	if name == "" {
		name = strings.TrimSpace(os.Getenv(EnvContext))
	}
	if name == "" {
		current, ctx, _ := c.Current()
		return current, ctx, nil
	}
	ctx, ok := c.Contexts[name]
	if !ok {
		return "", Context{}, fmt.Errorf("context %q not found", name)
	}
	return name, ctx, nil
}

// Use sets the current context. It returns an error if the name doesn't exist.
func (c *Config) Use(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	c.CurrentContext = name
	return nil
}

// Set adds or updates a named context.
func (c *Config) Set(name string, ctx Context) {
	if c.Contexts == nil {
		c.Contexts = make(map[string]Context)
	}
	c.Contexts[name] = ctx
}

// Remove deletes a context. If it was the current context, current-context
// is cleared.
func (c *Config) Remove(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	delete(c.Contexts, name)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return nil
}
