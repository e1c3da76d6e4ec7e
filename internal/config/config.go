// Package config loads careerscout settings from defaults, an optional config
// file, a .env file and CAREERSCOUT_* environment variables, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/FranksOps/careerscout/internal/fingerprint"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CAREERSCOUT_SERVER_ADDR.
const EnvPrefix = "CAREERSCOUT"

// Config holds application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Search   SearchConfig   `mapstructure:"search"`
	GitHub   GitHubConfig   `mapstructure:"github"`
	LinkedIn LinkedInConfig `mapstructure:"linkedin"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Log      LogConfig      `mapstructure:"log"`
	AI       AIConfig       `mapstructure:"ai"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type SearchConfig struct {
	Timeout          time.Duration `mapstructure:"timeout"`
	PerPlatformLimit int           `mapstructure:"per_platform_limit"`
	Platforms        []string      `mapstructure:"platforms"`
	CourseraURL      string        `mapstructure:"coursera_url"`
	UdemyURL         string        `mapstructure:"udemy_url"`
	YouTubeURL       string        `mapstructure:"youtube_url"`
}

type GitHubConfig struct {
	BaseURL             string        `mapstructure:"base_url"`
	Token               string        `mapstructure:"token"`
	Timeout             time.Duration `mapstructure:"timeout"`
	LanguageConcurrency int           `mapstructure:"language_concurrency"`
}

type LinkedInConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type FetchConfig struct {
	Fingerprint   string   `mapstructure:"fingerprint"`
	Proxies       []string `mapstructure:"proxies"`
	ProxyFile     string   `mapstructure:"proxy_file"`
	UserAgents    []string `mapstructure:"user_agents"`
	RPS           float64  `mapstructure:"rps"`
	Jitter        float64  `mapstructure:"jitter"`
	RespectRobots bool     `mapstructure:"respect_robots"`
	MaxBodyBytes  int64    `mapstructure:"max_body_bytes"`
}

type AuditConfig struct {
	// Backend is one of none, sqlite, postgres, json or csv.
	Backend string `mapstructure:"backend"`
	DSN     string `mapstructure:"dsn"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AIConfig is loaded for the text-generation features that share this
// configuration; nothing in careerscout calls the AI provider.
type AIConfig struct {
	APIKey string `mapstructure:"api_key"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")

	v.SetDefault("search.timeout", 10*time.Second)
	v.SetDefault("search.per_platform_limit", 5)
	v.SetDefault("search.platforms", []string{"coursera", "udemy", "youtube"})
	v.SetDefault("search.coursera_url", "")
	v.SetDefault("search.udemy_url", "")
	v.SetDefault("search.youtube_url", "")

	v.SetDefault("github.base_url", "https://api.github.com")
	v.SetDefault("github.token", "")
	v.SetDefault("github.timeout", 30*time.Second)
	v.SetDefault("github.language_concurrency", 4)

	v.SetDefault("linkedin.base_url", "https://www.linkedin.com")

	v.SetDefault("fetch.fingerprint", string(fingerprint.ProfileChrome))
	v.SetDefault("fetch.proxies", []string{})
	v.SetDefault("fetch.proxy_file", "")
	v.SetDefault("fetch.user_agents", []string{})
	v.SetDefault("fetch.rps", 0.0)
	v.SetDefault("fetch.jitter", 0.0)
	v.SetDefault("fetch.respect_robots", false)
	v.SetDefault("fetch.max_body_bytes", 8<<20)

	v.SetDefault("audit.backend", "none")
	v.SetDefault("audit.dsn", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("ai.api_key", "")
}

// New returns a viper instance with defaults and environment binding applied.
// Callers may bind command-line flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configFile (or careerscout.yaml from the working directory or
// $HOME/.careerscout when empty) into v and decodes the result. A missing
// default config file or .env file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("careerscout")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.careerscout")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Search.Timeout <= 0 {
		return fmt.Errorf("search.timeout must be positive, got %s", c.Search.Timeout)
	}
	if c.Search.PerPlatformLimit <= 0 {
		return fmt.Errorf("search.per_platform_limit must be positive, got %d", c.Search.PerPlatformLimit)
	}
	if c.GitHub.Timeout <= 0 {
		return fmt.Errorf("github.timeout must be positive, got %s", c.GitHub.Timeout)
	}
	if _, err := fingerprint.ParseProfile(c.Fetch.Fingerprint); err != nil {
		return fmt.Errorf("fetch.fingerprint: %w", err)
	}
	switch c.Audit.Backend {
	case "", "none", "json", "csv", "sqlite", "postgres":
	default:
		return fmt.Errorf("audit.backend: unknown backend %q", c.Audit.Backend)
	}
	if c.Audit.Backend != "" && c.Audit.Backend != "none" && c.Audit.DSN == "" {
		return fmt.Errorf("audit.dsn is required for the %s backend", c.Audit.Backend)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	return nil
}
