package config

import (
	"encoding/json"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vango-dev/webcast/internal/errors"
	"github.com/vango-dev/webcast/pkg/session"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "webcast.json"

	// DefaultArchivePrefix is the object key prefix for archived payloads.
	DefaultArchivePrefix = "webcast"

	// DefaultMetricsNamespace is the Prometheus namespace for session metrics.
	DefaultMetricsNamespace = "webcast"
)

// Config represents the complete webcast.json configuration.
type Config struct {
	// URL is the push endpoint (ws:// or wss://).
	URL string `json:"url,omitempty"`

	// ClientParams are the base query parameters sent by every client.
	ClientParams map[string]string `json:"clientParams,omitempty"`

	// Params are per-stream query parameters; they win over ClientParams.
	Params map[string]string `json:"params,omitempty"`

	// Headers are extra handshake headers.
	Headers map[string]string `json:"headers,omitempty"`

	// Cookie is the serialized cookie sent with the handshake.
	Cookie string `json:"cookie,omitempty"`

	// CookieFile names a file holding the cookie, read at connect time.
	// Relative paths resolve against the config file's directory.
	CookieFile string `json:"cookieFile,omitempty"`

	// HandshakeTimeout bounds the dial (e.g., "15s"). Empty means none.
	HandshakeTimeout string `json:"handshakeTimeout,omitempty"`

	// Metrics contains the admin endpoint configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Archive contains payload archive configuration.
	Archive ArchiveConfig `json:"archive,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// MetricsConfig contains the admin endpoint configuration.
type MetricsConfig struct {
	// Addr is the listen address for /metrics and /healthz. Empty disables it.
	Addr string `json:"addr,omitempty"`

	// Namespace is the Prometheus namespace.
	Namespace string `json:"namespace,omitempty"`
}

// ArchiveConfig contains payload archive settings.
type ArchiveConfig struct {
	// Bucket is the S3 bucket. Empty disables archiving.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is prepended to every object key.
	Prefix string `json:"prefix,omitempty"`

	// Region is the AWS region of the bucket.
	Region string `json:"region,omitempty"`

	// Endpoint overrides the S3 endpoint (for S3-compatible stores).
	Endpoint string `json:"endpoint,omitempty"`

	// PathStyle forces path-style addressing.
	PathStyle bool `json:"pathStyle,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Metrics: MetricsConfig{
			Namespace: DefaultMetricsNamespace,
		},
		Archive: ArchiveConfig{
			Prefix: DefaultArchivePrefix,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for webcast.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("W101").
				WithDetail("No " + filepath.Base(path) + " found in " + filepath.Dir(path))
		}
		return nil, errors.New("W102").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("W102").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that the file is valid JSON")
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
		return errors.New("W102").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.New("W102").Wrap(err)
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

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
	if c.Archive.Prefix == "" {
		c.Archive.Prefix = DefaultArchivePrefix
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("W103")
	}
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return errors.New("W104").
			WithDetail("url must be a ws:// or wss:// URL, got " + c.URL)
	}

	if _, err := parseDuration(c.HandshakeTimeout); err != nil {
		return errors.New("W104").
			WithDetail("handshakeTimeout must be a duration such as \"15s\"")
	}

	if _, err := c.LogLevel(); err != nil {
		return errors.New("W104").
			WithDetail("log.level must be one of debug, info, warn, error")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("W104").
			WithDetail("log.format must be \"text\" or \"json\"")
	}

	if c.Cookie != "" && c.CookieFile != "" {
		return errors.New("W104").
			WithDetail("cookie and cookieFile are mutually exclusive")
	}
	return nil
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.Log.Level))
	return level, err
}

// CookiePath returns the absolute path to the cookie file, or "" if none.
func (c *Config) CookiePath() string {
	if c.CookieFile == "" {
		return ""
	}
	if filepath.IsAbs(c.CookieFile) {
		return c.CookieFile
	}
	return filepath.Join(c.Dir(), c.CookieFile)
}

// Credentials returns the credential source described by the config.
// A cookie file is re-read on every call so a refreshed cookie is picked
// up by the next session.
func (c *Config) Credentials() session.CredentialSource {
	switch {
	case c.Cookie != "":
		return session.StaticCredentials(c.Cookie)
	case c.CookieFile != "":
		path := c.CookiePath()
		return session.CredentialFunc(func() (string, error) {
			data, err := os.ReadFile(path)
			if err != nil {
				return "", errors.New("W106").Wrap(err)
			}
			return strings.TrimSpace(string(data)), nil
		})
	default:
		return nil
	}
}

// SessionConfig builds the session configuration. Call Validate first.
// The keepalive interval is not configurable here; sessions always use
// protocol.KeepaliveInterval.
func (c *Config) SessionConfig() (*session.Config, error) {
	handshake, err := parseDuration(c.HandshakeTimeout)
	if err != nil {
		return nil, errors.New("W104").Wrap(err)
	}

	sc := session.DefaultConfig()
	sc.URL = c.URL
	sc.ClientParams = cloneMap(c.ClientParams)
	sc.Params = cloneMap(c.Params)
	sc.Headers = cloneMap(c.Headers)
	sc.Credentials = c.Credentials()
	sc.HandshakeTimeout = handshake
	return sc, nil
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// parseDuration parses s, treating "" as zero.
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
