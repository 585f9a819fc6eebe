// Package config loads the process-wide configuration once at start-up.
//
// Sources, lowest precedence first: built-in defaults, an optional YAML file,
// an optional .env file, then the process environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration. It is built once in main and passed to
// constructors; nothing reads it from global state.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	S3      S3Config      `yaml:"s3"`
	AI      AIConfig      `yaml:"ai"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `yaml:"port"`
	BindAddress  string `yaml:"bind_address"`
	Environment  string `yaml:"environment"`
	BodyLimit    string `yaml:"max_upload_size"`
	ReadTimeout  int    `yaml:"read_timeout_seconds"`
	WriteTimeout int    `yaml:"write_timeout_seconds"`
	IdleTimeout  int    `yaml:"idle_timeout_seconds"`
}

// StorageConfig contains local file storage settings
type StorageConfig struct {
	UploadsDirectory  string   `yaml:"uploads_directory"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
}

// S3Config selects and configures the remote object storage backend.
type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	UseSSL          bool   `yaml:"use_ssl"`
}

// AIConfig configures the external chat-completion service.
type AIConfig struct {
	Enabled   bool   `yaml:"enabled"`
	APIKey    string `yaml:"api_key"`
	APIURL    string `yaml:"api_url"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`

	// Timeout bounds a whole completion call; ResponseHeaderTimeout only the
	// wait for the first response byte.
	Timeout               time.Duration `yaml:"timeout"`
	ResponseHeaderTimeout time.Duration `yaml:"response_header_timeout"`
}

// Usable reports whether the completion service can actually be called.
func (c AIConfig) Usable() bool {
	return c.Enabled && c.APIKey != "" && c.APIURL != ""
}

// LoggingConfig contains log output settings
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// DefaultS3Endpoint is the AWS S3 global endpoint.
const DefaultS3Endpoint = "s3.amazonaws.com"

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8888,
			BindAddress:  "0.0.0.0",
			Environment:  "development",
			BodyLimit:    "16M",
			ReadTimeout:  30,
			WriteTimeout: 120,
			IdleTimeout:  120,
		},
		Storage: StorageConfig{
			UploadsDirectory:  "./uploads",
			AllowedExtensions: []string{"pdf", "png", "jpg", "jpeg", "gif", "mp4", "mov"},
		},
		S3: S3Config{
			Enabled:  false,
			Region:   "us-east-1",
			Endpoint: DefaultS3Endpoint,
			UseSSL:   true,
		},
		AI: AIConfig{
			Enabled:   true,
			APIURL:    "https://api.openai.com/v1/chat/completions",
			Model:     "gpt-3.5-turbo",
			MaxTokens: 500,

			Timeout:               60 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled:  true,
			Endpoint: "/metrics",
		},
	}
}

// Load builds the configuration. configPath names an optional YAML file and
// envFile an optional dotenv file; either may be empty or point at a missing
// file.
//
// Load always returns a usable Config. When any source is broken the error is
// returned alongside a config with S3 and AI switched off; every other valid
// setting is kept.
func Load(configPath, envFile string) (*Config, error) {
	cfg := DefaultConfig()

	var errs []error
	if configPath != "" {
		errs = append(errs, cfg.loadFile(configPath))
	}

	if envFile != "" {
		// godotenv never overrides variables already set in the environment
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to load env file %s: %w", envFile, err))
		}
	}

	errs = append(errs, cfg.applyEnvironmentOverrides(), cfg.validate())

	err := errors.Join(errs...)
	if err != nil {
		cfg.disableExternal()
	}
	cfg.resolvePaths()
	return cfg, err
}

// disableExternal turns S3 and AI off and repairs the settings the server
// cannot start without.
func (c *Config) disableExternal() {
	c.S3.Enabled = false
	c.AI.Enabled = false

	defaults := DefaultConfig()
	if !validPort(c.Server.Port) {
		c.Server.Port = defaults.Server.Port
	}
	if len(c.Storage.AllowedExtensions) == 0 {
		c.Storage.AllowedExtensions = defaults.Storage.AllowedExtensions
	}
	if c.Storage.UploadsDirectory == "" {
		c.Storage.UploadsDirectory = defaults.Storage.UploadsDirectory
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *Config) applyEnvironmentOverrides() error {
	var errs []error

	errs = append(errs, envInt("PORT", &c.Server.Port))
	envString("BIND_ADDRESS", &c.Server.BindAddress)
	envString("APP_ENV", &c.Server.Environment)
	envString("MAX_UPLOAD_SIZE", &c.Server.BodyLimit)
	envString("UPLOAD_DIR", &c.Storage.UploadsDirectory)
	envString("LOG_LEVEL", &c.Logging.Level)

	errs = append(errs, envBool("USE_S3", &c.S3.Enabled))
	envString("AWS_ACCESS_KEY_ID", &c.S3.AccessKeyID)
	envString("AWS_SECRET_ACCESS_KEY", &c.S3.SecretAccessKey)
	envString("AWS_STORAGE_BUCKET_NAME", &c.S3.Bucket)
	envString("AWS_REGION", &c.S3.Region)
	envString("S3_ENDPOINT", &c.S3.Endpoint)
	errs = append(errs, envBool("S3_USE_SSL", &c.S3.UseSSL))

	errs = append(errs, envBool("USE_AI_SERVICE", &c.AI.Enabled))
	envString("AI_API_KEY", &c.AI.APIKey)
	envString("AI_API_URL", &c.AI.APIURL)
	envString("AI_MODEL", &c.AI.Model)
	errs = append(errs, envInt("AI_MAX_TOKENS", &c.AI.MaxTokens))
	errs = append(errs, envDuration("AI_TIMEOUT", &c.AI.Timeout))
	errs = append(errs, envDuration("AI_RESPONSE_HEADER_TIMEOUT", &c.AI.ResponseHeaderTimeout))

	errs = append(errs, envBool("METRICS_ENABLED", &c.Metrics.Enabled))
	envString("METRICS_ENDPOINT", &c.Metrics.Endpoint)

	return errors.Join(errs...)
}

func (c *Config) validate() error {
	if !validPort(c.Server.Port) {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if len(c.Storage.AllowedExtensions) == 0 {
		return errors.New("allowed_extensions must not be empty")
	}
	if c.S3.Enabled {
		var missing []string
		if c.S3.AccessKeyID == "" {
			missing = append(missing, "AWS_ACCESS_KEY_ID")
		}
		if c.S3.SecretAccessKey == "" {
			missing = append(missing, "AWS_SECRET_ACCESS_KEY")
		}
		if c.S3.Bucket == "" {
			missing = append(missing, "AWS_STORAGE_BUCKET_NAME")
		}
		if len(missing) > 0 {
			return fmt.Errorf("USE_S3 is set but %s missing", strings.Join(missing, ", "))
		}
		if err := checkEndpoint(c.S3.Endpoint); err != nil {
			return err
		}
	}
	return nil
}

func validPort(port int) bool {
	return port > 0 && port <= 65535
}

// checkEndpoint accepts host or host:port. The client picks the scheme from
// S3_USE_SSL, so URLs are rejected here.
func checkEndpoint(endpoint string) error {
	if endpoint == "" {
		return nil
	}
	if strings.ContainsAny(endpoint, "/?#@") {
		return fmt.Errorf("S3_ENDPOINT must be host[:port], got %q", endpoint)
	}
	host := endpoint
	if strings.Contains(endpoint, ":") {
		h, port, err := net.SplitHostPort(endpoint)
		if err != nil {
			return fmt.Errorf("S3_ENDPOINT %q: %w", endpoint, err)
		}
		if n, err := strconv.Atoi(port); err != nil || !validPort(n) {
			return fmt.Errorf("S3_ENDPOINT %q: invalid port", endpoint)
		}
		host = h
	}
	if host == "" {
		return fmt.Errorf("S3_ENDPOINT %q: empty host", endpoint)
	}
	return nil
}

// resolvePaths converts the uploads directory to an absolute path
func (c *Config) resolvePaths() {
	if abs, err := filepath.Abs(c.Storage.UploadsDirectory); err == nil {
		c.Storage.UploadsDirectory = abs
	}
}

// IsProduction reports whether logs should be machine readable.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "prod" || env == "production"
}

// GetUploadDir returns the uploads directory path
func (c *Config) GetUploadDir() string {
	return c.Storage.UploadsDirectory
}

// GetServerAddr returns the server bind address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// EnsureDirectories creates all necessary directories
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Storage.UploadsDirectory, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", c.Storage.UploadsDirectory, err)
	}
	return nil
}

func envString(key string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, v)
	}
	*dst = n
	return nil
}

// envDuration accepts whole seconds or a Go duration string such as "90s".
func envDuration(key string, dst *time.Duration) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(secs) * time.Second
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q", key, v)
	}
	*dst = d
	return nil
}

func envBool(key string, dst *bool) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	b, err := parseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v)
}
