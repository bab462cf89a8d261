// Package config handles Notely configuration.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration
type Config struct {
	// Paths
	DataDir string `json:"data_dir" mapstructure:"data_dir"`

	LogLevel string `json:"log_level" mapstructure:"log_level"`

	// Server
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Auth
	Auth AuthConfig `json:"auth" mapstructure:"auth"`

	// Services
	AI          AIConfig          `json:"ai" mapstructure:"ai"`
	Translation TranslationConfig `json:"translation" mapstructure:"translation"`
	Market      MarketConfig      `json:"market" mapstructure:"market"`

	// Background jobs
	Reminders RemindersConfig `json:"reminders" mapstructure:"reminders"`
}

// ServerConfig for HTTP server
type ServerConfig struct {
	Port           int      `json:"port" mapstructure:"port"`
	Host           string   `json:"host" mapstructure:"host"`
	AllowedOrigins []string `json:"allowed_origins" mapstructure:"allowed_origins"`
}

// AuthConfig for session token verification. An empty secret runs the
// server in single-user mode.
type AuthConfig struct {
	JWTSecret string `json:"jwt_secret,omitempty" mapstructure:"jwt_secret"`
}

// AIConfig for the text-generation providers
type AIConfig struct {
	Provider   string `json:"provider" mapstructure:"provider"` // openai, anthropic, cohere, ollama; empty picks the first configured
	Model      string `json:"model" mapstructure:"model"`
	BaseURL    string `json:"base_url" mapstructure:"base_url"`
	TimeoutSec int    `json:"timeout_sec" mapstructure:"timeout_sec"`

	OpenAIKey    string `json:"openai_api_key,omitempty" mapstructure:"openai_api_key"`
	AnthropicKey string `json:"anthropic_api_key,omitempty" mapstructure:"anthropic_api_key"`
	CohereKey    string `json:"cohere_api_key,omitempty" mapstructure:"cohere_api_key"`
	OllamaHost   string `json:"ollama_host" mapstructure:"ollama_host"`
}

// TranslationConfig for the translation chain
type TranslationConfig struct {
	TimeoutSec int `json:"timeout_sec" mapstructure:"timeout_sec"`

	MyMemory       MyMemoryConfig       `json:"mymemory" mapstructure:"mymemory"`
	LibreTranslate LibreTranslateConfig `json:"libretranslate" mapstructure:"libretranslate"`
	Google         GoogleConfig         `json:"google" mapstructure:"google"`
	Cohere         CohereConfig         `json:"cohere" mapstructure:"cohere"`
}

// MyMemoryConfig for the MyMemory provider
type MyMemoryConfig struct {
	Enabled    bool   `json:"enabled" mapstructure:"enabled"`
	BaseURL    string `json:"base_url" mapstructure:"base_url"`
	Email      string `json:"email" mapstructure:"email"`
	TimeoutSec int    `json:"timeout_sec" mapstructure:"timeout_sec"`
}

// LibreTranslateConfig for the LibreTranslate provider
type LibreTranslateConfig struct {
	Enabled    bool   `json:"enabled" mapstructure:"enabled"`
	BaseURL    string `json:"base_url" mapstructure:"base_url"`
	APIKey     string `json:"api_key,omitempty" mapstructure:"api_key"`
	TimeoutSec int    `json:"timeout_sec" mapstructure:"timeout_sec"`
}

// GoogleConfig for Google Cloud Translation
type GoogleConfig struct {
	APIKey      string `json:"api_key,omitempty" mapstructure:"api_key"`
	AccessToken string `json:"access_token,omitempty" mapstructure:"access_token"`
}

// CohereConfig for prompt-based translation; the key is shared with AI
type CohereConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Model   string `json:"model" mapstructure:"model"`
}

// MarketConfig for the market data lookup
type MarketConfig struct {
	CoinGeckoURL string `json:"coingecko_url" mapstructure:"coingecko_url"`
	StooqURL     string `json:"stooq_url" mapstructure:"stooq_url"`
	CacheTTLSec  int    `json:"cache_ttl_sec" mapstructure:"cache_ttl_sec"`
	TimeoutSec   int    `json:"timeout_sec" mapstructure:"timeout_sec"`
}

// RemindersConfig for the reminder sweeper
type RemindersConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Schedule string `json:"schedule" mapstructure:"schedule"`
}

// Seconds converts a *Sec setting to a duration
func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// Default returns default configuration
func Default() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		DataDir:  filepath.Join(home, ".notely"),
		LogLevel: "info",
		Server: ServerConfig{
			Port:           8080,
			Host:           "localhost",
			AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		},
		AI: AIConfig{
			TimeoutSec: 30,
		},
		Translation: TranslationConfig{
			TimeoutSec: 15,
			MyMemory: MyMemoryConfig{
				Enabled:    true,
				BaseURL:    "https://api.mymemory.translated.net",
				TimeoutSec: 10,
			},
			LibreTranslate: LibreTranslateConfig{
				Enabled:    true,
				BaseURL:    "https://libretranslate.de",
				TimeoutSec: 15,
			},
			Cohere: CohereConfig{
				Enabled: true,
				Model:   "command-r",
			},
		},
		Market: MarketConfig{
			CoinGeckoURL: "https://api.coingecko.com/api/v3",
			StooqURL:     "https://stooq.com",
			CacheTTLSec:  60,
			TimeoutSec:   10,
		},
		Reminders: RemindersConfig{
			Enabled:  true,
			Schedule: "@every 1m",
		},
	}
}

// envAliases are the conventional variable names accepted next to the
// NOTELY_ prefixed ones
var envAliases = map[string][]string{
	"ai.openai_api_key":                  {"OPENAI_API_KEY"},
	"ai.anthropic_api_key":               {"ANTHROPIC_API_KEY"},
	"ai.cohere_api_key":                  {"COHERE_API_KEY"},
	"ai.ollama_host":                     {"OLLAMA_HOST"},
	"auth.jwt_secret":                    nil,
	"translation.google.api_key":         {"GOOGLE_TRANSLATE_API_KEY"},
	"translation.google.access_token":    {"GOOGLE_TRANSLATE_ACCESS_TOKEN"},
	"translation.libretranslate.api_key": {"LIBRETRANSLATE_API_KEY"},
}

// DefaultPath returns the config file used when none is given
func DefaultPath() string {
	dir := os.Getenv("NOTELY_DATA_DIR")
	if dir == "" {
		dir = Default().DataDir
	}
	return filepath.Join(dir, "config.json")
}

func newViper(path string) (*viper.Viper, error) {
	v := viper.New()

	// Defaults come from Default() so every key is known for env lookup
	base, err := json.Marshal(Default())
	if err != nil {
		return nil, err
	}
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(base)); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	v.SetEnvPrefix("NOTELY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		prefixed := "NOTELY_" + strings.ToUpper(strings.NewReplacer(".", "_").Replace(key))
		if err := v.BindEnv(append([]string{key, prefixed}, names...)...); err != nil {
			return nil, err
		}
	}

	if path == "" {
		return v, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return v, nil // Use defaults
		}
		return nil, err
	}

	v.SetConfigFile(path)
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		v.SetConfigType(ext)
	}
	if err := v.MergeInConfig(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Load loads config from file, falling back to defaults. Environment
// variables override both.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	v, err := newViper(path)
	if err != nil {
		return nil, err
	}
	return decode(v)
}

// Watch re-reads path whenever it changes and hands the new config to
// onChange. The file must exist.
func Watch(path string, onChange func(*Config)) error {
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	v, err := newViper(path)
	if err != nil {
		return err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		fresh, err := newViper(path)
		if err != nil {
			return
		}
		if cfg, err := decode(fresh); err == nil {
			onChange(cfg)
		}
	})
	v.WatchConfig()
	return nil
}

// Save saves config to file
func (c *Config) Save(path string) error {
	if path == "" {
		path = filepath.Join(c.DataDir, "config.json")
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	// Secrets never go to disk
	safeCfg := *c
	safeCfg.Auth.JWTSecret = ""
	safeCfg.AI.OpenAIKey = ""
	safeCfg.AI.AnthropicKey = ""
	safeCfg.AI.CohereKey = ""
	safeCfg.Translation.Google = GoogleConfig{}
	safeCfg.Translation.LibreTranslate.APIKey = ""

	data, err := json.MarshalIndent(safeCfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// DatabasePath returns the SQLite file inside the data dir
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "notely.db")
}

// Addr returns the server listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
