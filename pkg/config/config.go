package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
	"github.com/thebartekbanach/tinyrelay/pkg/keys"
)

// Config holds everything the relay server needs at startup.
type Config struct {
	ListenAddr          string   `mapstructure:"listen_addr"`
	UpstreamURL         string   `mapstructure:"upstream_url"`
	MaxBodyBytes        int64    `mapstructure:"max_body_bytes"`
	AllowedProxyDomains []string `mapstructure:"allowed_proxy_domains"`
	DebugErrors         bool     `mapstructure:"debug_errors"`
	SentryDSN           string   `mapstructure:"sentry_dsn"`
	Environment         string   `mapstructure:"environment"`
	LogLevel            string   `mapstructure:"log_level"`
	LogPretty           bool     `mapstructure:"log_pretty"`

	// Keys maps slot selectors to secrets. Slots are read from the unprefixed
	// API_KEY_n environment variables so existing deployments keep working.
	Keys map[string]string `mapstructure:"keys"`
}

const (
	envPrefix           = "RELAY"
	defaultMaxBodyBytes = 48 << 20
)

// Load reads the optional config file at path (empty means relay.yaml in the working
// directory, if present) and overlays RELAY_* and API_KEY_* environment variables.
func Load(path string) (*Config, error) {
	return load(viper.New(), path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	v.SetDefault("listen_addr", ":8787")
	v.SetDefault("upstream_url", "https://api.tinify.com")
	v.SetDefault("max_body_bytes", defaultMaxBodyBytes)
	v.SetDefault("allowed_proxy_domains", "*")
	v.SetDefault("debug_errors", false)
	v.SetDefault("environment", "production")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	for _, slot := range keys.Slots {
		if err := v.BindEnv("keys."+strings.ToLower(slot), slot); err != nil {
			return nil, fmt.Errorf("binding %s: %w", slot, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("relay")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{
		ListenAddr:          v.GetString("listen_addr"),
		UpstreamURL:         v.GetString("upstream_url"),
		MaxBodyBytes:        v.GetInt64("max_body_bytes"),
		AllowedProxyDomains: splitList(v.GetStringSlice("allowed_proxy_domains")),
		DebugErrors:         v.GetBool("debug_errors"),
		SentryDSN:           v.GetString("sentry_dsn"),
		Environment:         v.GetString("environment"),
		LogLevel:            v.GetString("log_level"),
		LogPretty:           v.GetBool("log_pretty"),
		Keys:                make(map[string]string, len(keys.Slots)),
	}

	for _, slot := range keys.Slots {
		cfg.Keys[slot] = v.GetString("keys." + strings.ToLower(slot))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return ErrListenAddrRequired
	}

	parsed, err := url.Parse(c.UpstreamURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("%w: %q", ErrInvalidUpstreamURL, c.UpstreamURL)
	}

	if c.MaxBodyBytes <= 0 {
		return ErrInvalidMaxBodyBytes
	}

	return nil
}

// splitList accepts both yaml lists and comma separated env values.
func splitList(values []string) []string {
	result := []string{}
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				result = append(result, part)
			}
		}
	}

	return result
}

var (
	ErrListenAddrRequired  = errors.New("listen_addr is required")
	ErrInvalidUpstreamURL  = errors.New("upstream_url must be an absolute http(s) url")
	ErrInvalidMaxBodyBytes = errors.New("max_body_bytes must be positive")
)
