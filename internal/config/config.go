// Package config handles the iris CLI credential file.
//
// The file lives under the user config directory unless overridden with
// --config or IRIS_CONFIG, and contains:
//
//	api_key: "sk_live_..."            - API key sent as a bearer token
//	user_id: 42                       - Acting user for user-scoped commands
//	base_url: "https://..."           - Optional API host override
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the credential file.
const FileName = "credentials.yaml"

// EnvPath overrides the credential file location.
const EnvPath = "IRIS_CONFIG"

// customPath holds an optional custom credential file path.
// When empty, Load() uses IRIS_CONFIG or the default location.
var customPath string

var urlPattern = regexp.MustCompile(`^https?://[^\s]+$`)

// SetPath sets a custom credential file path for Load() and Save() to use.
// Pass an empty string to reset to the default path.
func SetPath(path string) {
	customPath = path
}

// GetPath returns the credential file path: the custom path if set, then
// IRIS_CONFIG, then DefaultPath().
func GetPath() (string, error) {
	if customPath != "" {
		return customPath, nil
	}
	if env := strings.TrimSpace(os.Getenv(EnvPath)); env != "" {
		return env, nil
	}
	return DefaultPath()
}

// DefaultPath returns <user config dir>/iris/credentials.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config directory: %w", err)
	}
	return filepath.Join(dir, "iris", FileName), nil
}

// Credentials is the content of the credential file.
type Credentials struct {
	APIKey  string `yaml:"api_key"`
	UserID  int    `yaml:"user_id,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// Load reads the credential file from GetPath().
func Load() (*Credentials, error) {
	path, err := GetPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads and parses a credential file from a specific path.
func LoadFrom(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err // Return unwrapped for os.IsNotExist() checks
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &creds, nil
}

// Save writes the credentials to GetPath(), creating the directory.
func (c *Credentials) Save() error {
	path, err := GetPath()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}

	header := "# Generated by: iris login\n# Contains a secret API key - keep private\n\n"
	if err := os.WriteFile(path, []byte(header+string(data)), 0600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Remove deletes the credential file. A missing file is not an error.
func Remove() (string, error) {
	path, err := GetPath()
	if err != nil {
		return "", err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return path, fmt.Errorf("removing %s: %w", path, err)
	}
	return path, nil
}

// Validate checks that the stored values are usable.
func (c *Credentials) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("api_key is required")
	}
	if c.UserID < 0 {
		return fmt.Errorf("user_id must be positive")
	}
	if c.BaseURL != "" && !urlPattern.MatchString(c.BaseURL) {
		return fmt.Errorf("base_url must be a valid HTTP(S) URL")
	}
	return nil
}

// MaskAPIKey keeps the first and last four characters of key.
func MaskAPIKey(key string) string {
	key = strings.TrimSpace(key)
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
