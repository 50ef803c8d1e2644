package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"redmine-upload/pkg/redmine"
)

const (
	// ConfigPathEnv points at an explicit config file.
	ConfigPathEnv = "REDMINE_UPLOAD_CONFIG_PATH"

	secretMask = "********"
)

// Config holds the complete application configuration
type Config struct {
	Redmine RedmineConfig `yaml:"redmine" json:"redmine"`
	File    FileConfig    `yaml:"file" json:"file"`
	HTTP    HTTPConfig    `yaml:"http" json:"http"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// RedmineConfig identifies the server, credentials and target project
type RedmineConfig struct {
	Host     string `yaml:"host" json:"host"`
	APIKey   string `yaml:"apiKey" json:"apiKey"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	Project  string `yaml:"project" json:"project"`
}

// FileConfig describes the file to upload and the metadata attached to it
type FileConfig struct {
	Path        string `yaml:"path" json:"path"`
	Token       string `yaml:"token" json:"token"`
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`
}

// HTTPConfig holds transport settings
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// DefaultConfig Default configuration values
var DefaultConfig = Config{
	HTTP: HTTPConfig{
		Timeout: redmine.DefaultTimeout,
	},
	Logging: LoggingConfig{
		Level:  "INFO",
		Format: "text",
	},
}

// LoadConfig loads configuration from multiple sources in order of precedence:
// 1. Environment variables (highest precedence)
// 2. Configuration file
// 3. Default values (lowest precedence)
//
// Command-line flags are applied on top by the caller, so the result is not
// validated here. Call Validate once every override is in place.
func LoadConfig() (*Config, string, error) {
	return load(searchPaths())
}

// LoadConfigFrom behaves like LoadConfig but reads only the given file,
// which must exist. An empty path falls back to the search list.
func LoadConfigFrom(path string) (*Config, string, error) {
	if path == "" {
		return LoadConfig()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, "", fmt.Errorf("failed to load config file: %w", err)
	}
	return load([]string{path})
}

func load(paths []string) (*Config, string, error) {
	config := DefaultConfig

	path, err := loadFromFile(&config, paths)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config file: %w", err)
	}

	if e := loadFromEnv(&config); e != nil {
		return nil, "", fmt.Errorf("failed to load environment variables: %w", e)
	}

	return &config, path, nil
}

func searchPaths() []string {
	paths := []string{
		os.Getenv(ConfigPathEnv),
		"./redmine-upload.yaml",
		"./config/redmine-upload.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "redmine-upload", "config.yaml"))
	}
	return paths
}

// loadFromFile loads the first YAML file found in paths
func loadFromFile(config *Config, paths []string) (string, error) {
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return "", fmt.Errorf("failed to parse config file %s: %w", path, err)
		}

		return path, nil
	}

	return "built-in defaults (no config file found)", nil
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(config *Config) error {
	strVars := map[string]*string{
		"REDMINE_HOST":     &config.Redmine.Host,
		"REDMINE_API_KEY":  &config.Redmine.APIKey,
		"REDMINE_USERNAME": &config.Redmine.Username,
		"REDMINE_PASSWORD": &config.Redmine.Password,
		"REDMINE_PROJECT":  &config.Redmine.Project,
		"FILE_PATH":        &config.File.Path,
		"FILE_TOKEN":       &config.File.Token,
		"FILE_NAME":        &config.File.Name,
		"FILE_VERSION":     &config.File.Version,
		"FILE_DESCRIPTION": &config.File.Description,
		"LOG_LEVEL":        &config.Logging.Level,
		"LOG_FORMAT":       &config.Logging.Format,
	}
	for name, dst := range strVars {
		if val := os.Getenv(name); val != "" {
			*dst = val
		}
	}

	if val := os.Getenv("REDMINE_HTTP_TIMEOUT"); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid REDMINE_HTTP_TIMEOUT %q: %w", val, err)
		}
		config.HTTP.Timeout = timeout
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("invalid http timeout: %s", c.HTTP.Timeout)
	}

	validLevels := map[string]bool{
		"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true,
	}
	if !validLevels[strings.ToUpper(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if format := strings.ToLower(c.Logging.Format); format != "text" && format != "json" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}

// ValidateConnection checks the settings every Redmine call needs
func (c *Config) ValidateConnection() error {
	if c.Redmine.Host == "" {
		return fmt.Errorf("redmine host is required (--host or REDMINE_HOST)")
	}
	u, err := url.Parse(c.Redmine.Host)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid redmine host: %s", c.Redmine.Host)
	}
	if c.Redmine.APIKey == "" && (c.Redmine.Username == "") != (c.Redmine.Password == "") {
		return fmt.Errorf("username and password must be provided together")
	}
	return nil
}

// Connection returns the parameters used to build a Redmine client
func (c *Config) Connection() redmine.ConnectionParams {
	return redmine.ConnectionParams{
		Host:     c.Redmine.Host,
		APIKey:   c.Redmine.APIKey,
		Username: c.Redmine.Username,
		Password: c.Redmine.Password,
	}
}

// AttachmentRequest returns the file metadata for an attach call
func (c *Config) AttachmentRequest() redmine.FileAttachmentRequest {
	return redmine.FileAttachmentRequest{
		Token:       redmine.UploadToken(c.File.Token),
		Filename:    c.File.Name,
		VersionID:   c.File.Version,
		Description: c.File.Description,
	}
}

// Masked returns a copy with credentials hidden, suitable for display
func (c *Config) Masked() Config {
	masked := *c
	if masked.Redmine.APIKey != "" {
		masked.Redmine.APIKey = secretMask
	}
	if masked.Redmine.Password != "" {
		masked.Redmine.Password = secretMask
	}
	return masked
}

func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c *Config) SaveToFile(path string) error {
	data, err := c.ToYAML()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	// may hold credentials
	return os.WriteFile(path, data, 0o600)
}

// LoadFromFile loads a specific configuration file
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// GenerateDefaultConfig creates a default configuration file
func GenerateDefaultConfig(path string) error {
	config := DefaultConfig
	config.Redmine.Host = "https://redmine.example.com"
	return config.SaveToFile(path)
}
