package shared

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sethvargo/go-envconfig"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file and overlaid with environment variables.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Server      ServerConfig      `toml:"server"`
	Client      ClientConfig      `toml:"client"`
	Database    DatabaseConfig    `toml:"database"`
	Export      ExportConfig      `toml:"export"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify application credentials and the optional stored access token.
//
// AuthURL and TokenURL override the provider endpoints and are normally left empty.
type SpotifyConfig struct {
	ClientID     string   `toml:"client_id" env:"SPOTIFY_CLIENT_ID, overwrite"`
	ClientSecret string   `toml:"client_secret" env:"SPOTIFY_CLIENT_SECRET, overwrite"`
	RedirectURI  string   `toml:"redirect_uri" env:"SPOTIFY_REDIRECT_URI, overwrite"`
	AccessToken  string   `toml:"access_token" env:"SPOTIFY_ACCESS_TOKEN, overwrite"`
	Scopes       []string `toml:"scopes"`
	AuthURL      string   `toml:"auth_url,omitempty"`
	TokenURL     string   `toml:"token_url,omitempty"`
}

// ServerConfig contains settings for the temporary redirect listener.
type ServerConfig struct {
	CallbackTimeout time.Duration `toml:"callback_timeout"`
}

// ClientConfig contains Web API client settings: response cache and retry policy.
type ClientConfig struct {
	BaseURL         string        `toml:"base_url" env:"SPOTYLOG_API_URL, overwrite"`
	CacheTTL        time.Duration `toml:"cache_ttl"`
	CacheMaxEntries int           `toml:"cache_max_entries"`
	RetryAttempts   int           `toml:"retry_attempts"`
	RetryBase       time.Duration `toml:"retry_base"`
	RetryCap        time.Duration `toml:"retry_cap"`
}

// DatabaseConfig contains the snapshot store location.
type DatabaseConfig struct {
	Path string `toml:"path" env:"SPOTYLOG_DATABASE, overwrite"`
}

// ExportConfig contains defaults for file exports.
type ExportConfig struct {
	Format    string `toml:"format"`
	Directory string `toml:"directory"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level" env:"SPOTYLOG_LOG_LEVEL, overwrite"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ApplyEnv overlays environment variables onto the config.
//
// A nil lookuper reads the process environment. Unset variables leave the existing value untouched.
func ApplyEnv(ctx context.Context, config *Config, lookup envconfig.Lookuper) error {
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   config,
		Lookuper: lookup,
	}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Resolve loads the config at path when it exists, falling back to defaults, then applies the environment.
func Resolve(ctx context.Context, path string, lookup envconfig.Lookuper) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		}
	}

	if err := ApplyEnv(ctx, config, lookup); err != nil {
		return nil, err
	}
	return config, nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig encodes the config as TOML and writes it to path, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// HasCredentials reports whether both the client id and secret are set and not the example placeholders.
func (c SpotifyConfig) HasCredentials() bool {
	if c.ClientID == "" || c.ClientSecret == "" {
		return false
	}
	return c.ClientID != "your_spotify_client_id" && c.ClientSecret != "your_spotify_client_secret"
}
