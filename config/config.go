// Package config provides YAML configuration and names-file loading for
// livecheck.
//
// This package lets the livecheck binary run from a configuration file, as
// an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	max_workers: 4
//	max_requests_per_second: 5
//	retry_limit: 5
//	retry_interval: 5s
//	base_url: ${LIVECHECK_BASE_URL:-https://www.twitch.tv}
//	names_file: streamer_list.txt
//	classifier: marker:isLiveBroadcast
//	listen: :8080
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by [Parse] to unset fields.
const (
	DefaultMaxWorkers           = 1
	DefaultMaxRequestsPerSecond = 5
	DefaultRetryLimit           = 5
	DefaultRetryInterval        = 5 * time.Second
	DefaultTick                 = 100 * time.Millisecond
	DefaultFetchTimeout         = 10 * time.Second
	DefaultRenderInterval       = 500 * time.Millisecond
	DefaultBaseURL              = "https://www.twitch.tv"
	DefaultNamesFile            = "streamer_list.txt"
)

// Fetcher kinds accepted in the fetcher field.
const (
	FetcherHTTP    = "http"
	FetcherBrowser = "browser"
)

// minRetryInterval keeps a misconfigured run from hammering the site.
const minRetryInterval = 100 * time.Millisecond

// Config is the root configuration structure for livecheck.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML, or [Default] for a
// config with every default applied.
type Config struct {
	// Title is the status page title.
	Title string `yaml:"title"`

	// MaxWorkers is the maximum number of checks in flight. Defaults to 1.
	MaxWorkers int `yaml:"max_workers"`

	// MaxRequestsPerSecond caps dispatches per one-second window.
	// Defaults to 5.
	MaxRequestsPerSecond int `yaml:"max_requests_per_second"`

	// RetryLimit is the maximum number of attempts per name, counting the
	// first. Defaults to 5.
	RetryLimit int `yaml:"retry_limit"`

	// RetryInterval is the delay before an ambiguous name is retried.
	// Accepts duration strings like "5s", "500ms". Defaults to 5s.
	RetryInterval Duration `yaml:"retry_interval"`

	// Tick is the dispatcher loop period. Defaults to 100ms.
	Tick Duration `yaml:"tick"`

	// FetchTimeout is the deadline of a single fetch. Defaults to 10s.
	FetchTimeout Duration `yaml:"fetch_timeout"`

	// RenderInterval is how often progress is printed. Defaults to 500ms.
	RenderInterval Duration `yaml:"render_interval"`

	// BaseURL is the site names are appended to.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	BaseURL string `yaml:"base_url"`

	// Fetcher selects how pages are retrieved: "http" (default) or
	// "browser" for headless Chrome.
	Fetcher string `yaml:"fetcher"`

	// Classifier determines how a page is interpreted.
	Classifier ClassifierConfig `yaml:"classifier"`

	// NamesFile is the names file read when no names are given on the
	// command line. Relative paths are resolved against the working
	// directory. Defaults to streamer_list.txt when Names is empty.
	NamesFile string `yaml:"names_file"`

	// Names lists names inline, checked before those from NamesFile.
	Names []string `yaml:"names"`

	// Listen is the address of the optional status server, e.g. ":8080".
	Listen string `yaml:"listen"`
}

// ClassifierConfig specifies how a fetched page is classified.
//
// It supports two formats in YAML:
//
// Shorthand string:
//
//	classifier: default
//	classifier: marker:isLiveBroadcast
//	classifier: mention
//
// Structured object:
//
//	classifier:
//	  type: marker
//	  marker: isLiveBroadcast
type ClassifierConfig struct {
	// Type is the classifier type: "default", "marker", "mention".
	Type string

	// Marker is the live marker (for type: marker).
	Marker string
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// UnmarshalYAML implements yaml.Unmarshaler for ClassifierConfig.
func (c *ClassifierConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		return c.parseShorthand(s)
	}

	if node.Kind == yaml.MappingNode {
		// temporary struct to avoid infinite recursion
		var raw struct {
			Type   string `yaml:"type"`
			Marker string `yaml:"marker"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		c.Type = raw.Type
		c.Marker = raw.Marker
		return nil
	}

	return fmt.Errorf("classifier must be a string or object, got %v", node.Kind)
}

// parseShorthand parses classifier shorthand syntax.
//
// Supported formats:
//   - "default" → live marker, then name mention
//   - "mention" → name mention only
//   - "marker:text" → live marker only
func (c *ClassifierConfig) parseShorthand(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if typ, value, ok := strings.Cut(s, ":"); ok {
		if typ != "marker" {
			return fmt.Errorf("unknown classifier type %q", typ)
		}
		c.Type = typ
		c.Marker = value
		return nil
	}

	switch s {
	case "default", "mention":
		c.Type = s
	default:
		return fmt.Errorf("unknown classifier %q (expected 'default', 'mention', or 'marker:text')", s)
	}
	return nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses a YAML configuration file.
//
// Returns an error if the file cannot be read or parsed. A missing file is
// reported as a [*FileError].
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in BaseURL and Listen. Defaults are
// applied to every unset field, then the result is validated.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for _, field := range []*string{&cfg.BaseURL, &cfg.Listen} {
		expanded, err := expandEnvVars(*field)
		if err != nil {
			return nil, err
		}
		*field = expanded
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.MaxWorkers == 0 {
		c.MaxWorkers = DefaultMaxWorkers
	}
	if c.MaxRequestsPerSecond == 0 {
		c.MaxRequestsPerSecond = DefaultMaxRequestsPerSecond
	}
	if c.RetryLimit == 0 {
		c.RetryLimit = DefaultRetryLimit
	}
	if c.RetryInterval == 0 {
		c.RetryInterval = Duration(DefaultRetryInterval)
	}
	if c.Tick == 0 {
		c.Tick = Duration(DefaultTick)
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = Duration(DefaultFetchTimeout)
	}
	if c.RenderInterval == 0 {
		c.RenderInterval = Duration(DefaultRenderInterval)
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Fetcher == "" {
		c.Fetcher = FetcherHTTP
	}
	if c.Classifier.Type == "" {
		c.Classifier.Type = "default"
	}
	if c.NamesFile == "" && len(c.Names) == 0 {
		c.NamesFile = DefaultNamesFile
	}
}

// Validate reports the first invalid field. It is called by [Parse] and
// should be called again after command-line overrides are applied.
func (c *Config) Validate() error {
	if c.MaxWorkers < 1 {
		return fmt.Errorf("max_workers must be at least 1, got %d", c.MaxWorkers)
	}
	if c.MaxRequestsPerSecond < 1 {
		return fmt.Errorf("max_requests_per_second must be at least 1, got %d", c.MaxRequestsPerSecond)
	}
	if c.RetryLimit < 1 {
		return fmt.Errorf("retry_limit must be at least 1, got %d", c.RetryLimit)
	}
	if c.RetryInterval.Duration() < minRetryInterval {
		return fmt.Errorf("retry_interval must be at least %s, got %s", minRetryInterval, c.RetryInterval.Duration())
	}
	if c.Tick.Duration() <= 0 {
		return fmt.Errorf("tick must be positive, got %s", c.Tick.Duration())
	}
	if c.FetchTimeout.Duration() <= 0 {
		return fmt.Errorf("fetch_timeout must be positive, got %s", c.FetchTimeout.Duration())
	}
	if c.RenderInterval.Duration() <= 0 {
		return fmt.Errorf("render_interval must be positive, got %s", c.RenderInterval.Duration())
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("base_url scheme must be http or https, got %q", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return errors.New("base_url must include a host")
	}

	switch c.Fetcher {
	case FetcherHTTP, FetcherBrowser:
	default:
		return fmt.Errorf("fetcher must be %q or %q, got %q", FetcherHTTP, FetcherBrowser, c.Fetcher)
	}

	if err := validateClassifier(c.Classifier); err != nil {
		return err
	}

	for i, name := range c.Names {
		if err := ValidateName(name); err != nil {
			return fmt.Errorf("names[%d]: %w", i, err)
		}
	}

	return nil
}

// validateClassifier validates a classifier configuration.
func validateClassifier(c ClassifierConfig) error {
	switch c.Type {
	case "", "default", "mention":
		return nil
	case "marker":
		if c.Marker == "" {
			return errors.New("classifier type 'marker' requires a marker")
		}
		return nil
	default:
		return fmt.Errorf("unknown classifier type %q", c.Type)
	}
}
