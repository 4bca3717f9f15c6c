// Package config loads contribmix settings once at process start.
//
// Settings come, in increasing precedence, from built-in defaults, an
// optional YAML file, a .env file and the process environment. The result
// is an immutable Config passed explicitly to every component.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/gauthierbraillon/contribmix/pkg/tokenstore"
)

// Token sources reported by Config.GitHubTokenSource.
const (
	TokenFromEnv   = "env"
	TokenFromStore = "store"
	TokenMissing   = "none"
)

// Config is the complete contribmix configuration.
type Config struct {
	Port string `mapstructure:"port"`

	GitHubToken    string `mapstructure:"github_token"`
	GitHubAPIURL   string `mapstructure:"github_api_url"`
	LeetCodeAPIURL string `mapstructure:"leetcode_api_url"`

	EmailUser string `mapstructure:"email_user"`
	EmailPass string `mapstructure:"email_pass"`
	SMTPHost  string `mapstructure:"smtp_host"`
	SMTPPort  string `mapstructure:"smtp_port"`
	ContactTo string `mapstructure:"contact_to"`

	ContactRatePerMinute float64 `mapstructure:"contact_rate_per_minute"`
	ContactBurst         int     `mapstructure:"contact_burst"`

	AdapterTimeout time.Duration `mapstructure:"adapter_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	StaticDir      string        `mapstructure:"static_dir"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	ConfigDir string `mapstructure:"contribmix_config_dir"`

	// GitHubTokenSource tells where GitHubToken came from.
	GitHubTokenSource string `mapstructure:"-"`
}

// Load reads configuration. cfgFile may be empty.
func Load(cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	resolveGitHubToken(&cfg)
	if cfg.ContactTo == "" {
		cfg.ContactTo = cfg.EmailUser
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// DefaultConfigDir is where tokens are stored when CONTRIBMIX_CONFIG_DIR is unset.
func DefaultConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "contribmix")
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// MailConfigured reports whether the contact relay can authenticate.
func (c *Config) MailConfigured() bool {
	return c.EmailUser != "" && c.EmailPass != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "3001")
	v.SetDefault("github_token", "")
	v.SetDefault("github_api_url", "https://api.github.com")
	v.SetDefault("leetcode_api_url", "https://leetcode.com")
	v.SetDefault("email_user", "")
	v.SetDefault("email_pass", "")
	v.SetDefault("smtp_host", "smtp.gmail.com")
	v.SetDefault("smtp_port", "587")
	v.SetDefault("contact_to", "")
	v.SetDefault("contact_rate_per_minute", 5.0)
	v.SetDefault("contact_burst", 3)
	v.SetDefault("adapter_timeout", "8s")
	v.SetDefault("allowed_origins", []string{"*"})
	v.SetDefault("static_dir", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("contribmix_config_dir", DefaultConfigDir())
}

func resolveGitHubToken(cfg *Config) {
	if cfg.GitHubToken != "" {
		cfg.GitHubTokenSource = TokenFromEnv
		return
	}
	cfg.GitHubTokenSource = TokenMissing
	token, err := tokenstore.New(cfg.ConfigDir).Load("github")
	if err != nil {
		return
	}
	cfg.GitHubToken = token.Value
	cfg.GitHubTokenSource = TokenFromStore
}

func validate(cfg *Config) error {
	if port, err := strconv.Atoi(cfg.Port); err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port %q", cfg.Port)
	}
	if cfg.AdapterTimeout <= 0 {
		return fmt.Errorf("adapter timeout must be positive, got %s", cfg.AdapterTimeout)
	}
	if cfg.ContactRatePerMinute <= 0 || cfg.ContactBurst <= 0 {
		return errors.New("contact rate and burst must be positive")
	}
	return nil
}
