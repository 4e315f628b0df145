package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/linkguard/internal/config/layer"
	"github.com/dshills/linkguard/internal/config/loader"
)

// DefaultWarningMessage is shown when a nesting attempt is blocked.
const DefaultWarningMessage = "Links cannot be placed inside other links."

// DefaultMaxPasses bounds the consistency pass re-runs per transaction.
const DefaultMaxPasses = 16

// maxIncludeDepth limits nested @include directives.
const maxIncludeDepth = 8

// Config is the linkguard configuration.
type Config struct {
	Links    Links             `yaml:"links" toml:"links"`
	Warnings Warnings          `yaml:"warnings" toml:"warnings"`
	Commands map[string]string `yaml:"commands" toml:"commands"`
	Logging  Logging           `yaml:"logging" toml:"logging"`
}

// Links configures the link attribute kinds and overlap policy.
type Links struct {
	// AttributeKeys lists the link attribute kinds. Empty means the built-in list.
	AttributeKeys []string `yaml:"attributeKeys,omitempty" toml:"attributeKeys,omitempty"`
	// MergeOverlapping replaces links partially covered by a link command.
	MergeOverlapping bool `yaml:"mergeOverlapping" toml:"mergeOverlapping"`
	// MaxPasses bounds the post-commit fixed point loop.
	MaxPasses int `yaml:"maxPasses" toml:"maxPasses"`
}

// Warnings configures user-facing nesting warnings.
type Warnings struct {
	Show    bool   `yaml:"show" toml:"show"`
	Message string `yaml:"message" toml:"message"`
}

// Logging configures the structured logger.
type Logging struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Links: Links{
			MergeOverlapping: true,
			MaxPasses:        DefaultMaxPasses,
		},
		Warnings: Warnings{
			Show:    true,
			Message: DefaultWarningMessage,
		},
		Commands: map[string]string{
			"link":     "linkHref",
			"anchor":   "anchorHref",
			"email":    "emailHref",
			"document": "documentHref",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	fs        loader.FileSystem
	envPrefix string
	env       bool
	overrides map[string]any
}

// WithFS reads configuration files through fsys.
func WithFS(fsys loader.FileSystem) LoadOption {
	return func(o *loadOptions) {
		o.fs = fsys
	}
}

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) LoadOption {
	return func(o *loadOptions) {
		o.envPrefix = prefix
	}
}

// WithoutEnv skips the environment layer.
func WithoutEnv() LoadOption {
	return func(o *loadOptions) {
		o.env = false
	}
}

// WithOverrides adds a top priority layer, typically built from command-line
// flags. Keys are dot-separated setting paths.
func WithOverrides(values map[string]any) LoadOption {
	return func(o *loadOptions) {
		for path, v := range values {
			layer.SetByPath(o.overrides, path, v)
		}
	}
}

// Load builds the configuration from defaults, the file at path (TOML or
// YAML, skipped when path is empty), the environment and overrides, in
// increasing priority. The result is validated.
func Load(path string, opts ...LoadOption) (*Config, error) {
	o := loadOptions{
		fs:        loader.DefaultFS(),
		envPrefix: loader.DefaultEnvPrefix,
		env:       true,
		overrides: make(map[string]any),
	}
	for _, opt := range opts {
		opt(&o)
	}

	defaults, err := toMap(Default())
	if err != nil {
		return nil, err
	}
	layers := []*layer.Layer{layer.New("defaults", layer.SourceBuiltin, defaults)}

	if path != "" {
		if _, err := o.fs.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		data, err := loader.LoadWithIncludes(o.fs, path, maxIncludeDepth)
		if err != nil {
			return nil, err
		}
		l := layer.New("file", layer.SourceFile, data)
		l.Path = path
		layers = append(layers, l)
	}

	if o.env {
		data, err := loader.NewEnvLoader(o.envPrefix).Load()
		if err != nil {
			return nil, err
		}
		layers = append(layers, layer.New("env", layer.SourceEnv, data))
	}

	if len(o.overrides) > 0 {
		layers = append(layers, layer.New("args", layer.SourceArgs, o.overrides))
	}

	cfg, err := fromMap(layer.Merge(layers...))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// toMap converts a config into the nested map shape the layers use.
func toMap(c *Config) (map[string]any, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	out := make(map[string]any)
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return out, nil
}

// fromMap decodes merged layers into a Config.
func fromMap(m map[string]any) (*Config, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &c, nil
}

// Validate checks the configuration and reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(path, msg string, v any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: v})
	}

	seen := make(map[string]bool, len(c.Links.AttributeKeys))
	for _, k := range c.Links.AttributeKeys {
		switch {
		case strings.TrimSpace(k) == "":
			invalid("links.attributeKeys", "empty attribute key", k)
		case seen[k]:
			invalid("links.attributeKeys", "duplicate attribute key", k)
		}
		seen[k] = true
	}
	if c.Links.MaxPasses < 0 {
		invalid("links.maxPasses", "must not be negative", c.Links.MaxPasses)
	}
	if c.Warnings.Show && c.Warnings.Message == "" {
		invalid("warnings.message", "required when warnings are shown", c.Warnings.Message)
	}
	for name := range c.Commands {
		if strings.TrimSpace(name) == "" {
			invalid("commands", "empty command name", name)
		}
	}
	if _, err := parseLevel(c.Logging.Level); err != nil {
		invalid("logging.level", err.Error(), c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		invalid("logging.format", "must be text or json", c.Logging.Format)
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

// ResolveCommands maps every configured command to one of keys. A command
// whose key is missing or unregistered falls back to command+"Href", then
// to the first key; each fallback is logged.
func (c *Config) ResolveCommands(keys []string, logger *slog.Logger) map[string]string {
	if logger == nil {
		logger = slog.Default()
	}
	registered := make(map[string]bool, len(keys))
	for _, k := range keys {
		registered[k] = true
	}

	names := make([]string, 0, len(c.Commands))
	for name := range c.Commands {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]string, len(names))
	for _, name := range names {
		key := c.Commands[name]
		if registered[key] {
			out[name] = key
			continue
		}
		if len(keys) == 0 {
			logger.Warn("dropping link command without attribute keys", "command", name)
			continue
		}
		resolved := name + "Href"
		if !registered[resolved] {
			resolved = keys[0]
		}
		logger.Warn("link command mapped by fallback", "command", name, "configured", key, "key", resolved)
		out[name] = resolved
	}
	return out
}

// WriteYAML writes the configuration as YAML.
func (c *Config) WriteYAML(w io.Writer) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
