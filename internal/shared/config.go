package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that take precedence over values from config.toml.
const (
	EnvSpotifyID          = "SPOTIFY_ID"
	EnvSpotifySecret      = "SPOTIFY_SECRET"
	EnvSpotifyRedirectURI = "SPOTIFY_REDIRECT_URI"
	EnvGetSongBPMKey      = "GETSONGBPM_API_KEY"
	EnvReferencePath      = "CAMSORT_REFERENCE"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Reference   ReferenceConfig   `toml:"reference"`
	Database    DatabaseConfig    `toml:"database"`
	Lookup      LookupConfig      `toml:"lookup"`
	Server      ServerConfig      `toml:"server"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify    SpotifyConfig    `toml:"spotify"`
	GetSongBPM GetSongBPMConfig `toml:"getsongbpm"`
}

// SpotifyConfig contains Spotify API credentials and the last issued OAuth token.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`
	TokenExpiry  string `toml:"token_expiry"`
}

// GetSongBPMConfig contains credentials for the BPM/key lookup API.
type GetSongBPMConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// ReferenceConfig points at the local reference dataset.
type ReferenceConfig struct {
	Path string `toml:"path"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LookupConfig tunes the external lookup phase.
type LookupConfig struct {
	Enabled        bool    `toml:"enabled"`
	Cache          bool    `toml:"cache"`
	Concurrency    int     `toml:"concurrency"`
	RatePerSecond  float64 `toml:"rate_per_second"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	MaxRetries     int     `toml:"max_retries"`
}

// ServerConfig contains settings for the local OAuth callback listener.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Map returns the Spotify credentials keyed the way services.NewSpotifyService expects them.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
	}
}

// Token returns the stored OAuth token, or nil when no access token has been saved.
func (s SpotifyConfig) Token() *oauth2.Token {
	if s.AccessToken == "" {
		return nil
	}
	token := &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    "Bearer",
	}
	if expiry, err := time.Parse(time.RFC3339, s.TokenExpiry); err == nil {
		token.Expiry = expiry
	}
	return token
}

// Update stores token fields so they can be persisted with [SaveConfig].
func (s *SpotifyConfig) Update(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidCredentials)
	}
	s.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		s.RefreshToken = token.RefreshToken
	}
	if !token.Expiry.IsZero() {
		s.TokenExpiry = token.Expiry.Format(time.RFC3339)
	}
	return nil
}

// Timeout returns the per-request lookup timeout.
func (l LookupConfig) Timeout() time.Duration {
	if l.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
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

// SaveConfig writes config to path as TOML.
func SaveConfig(path string, config *Config) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
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

// LoadEnv loads variables from the given .env files (".env" when none are given) and applies
// any overrides to config. Missing .env files are ignored.
func LoadEnv(config *Config, files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
	config.ApplyEnv()
}

// ApplyEnv overrides credentials and paths from the process environment.
func (c *Config) ApplyEnv() {
	for env, dst := range map[string]*string{
		EnvSpotifyID:          &c.Credentials.Spotify.ClientID,
		EnvSpotifySecret:      &c.Credentials.Spotify.ClientSecret,
		EnvSpotifyRedirectURI: &c.Credentials.Spotify.RedirectURI,
		EnvGetSongBPMKey:      &c.Credentials.GetSongBPM.APIKey,
		EnvReferencePath:      &c.Reference.Path,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
}

// Validate checks the settings the sort pipeline cannot run without.
func (c *Config) Validate() error {
	if c.Credentials.Spotify.ClientID == "" || c.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: spotify client_id and client_secret are required", ErrMissingCredentials)
	}
	if c.Lookup.Concurrency < 0 {
		return fmt.Errorf("%w: lookup.concurrency must not be negative", ErrInvalidConfig)
	}
	if c.Lookup.RatePerSecond < 0 {
		return fmt.Errorf("%w: lookup.rate_per_second must not be negative", ErrInvalidConfig)
	}
	return nil
}
