// Package config assembles the crawl configuration once at startup.
// Credentials resolve through an ordered chain: explicit flag, then
// environment variable, failing fast with a descriptive error if neither
// is present. Nothing is resolved lazily.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConsumerKey    = "TWITTER_CONSUMER_KEY"
	EnvConsumerSecret = "TWITTER_CONSUMER_SECRET"

	DefaultPageSize = 100
	DefaultTimeout  = 30 * time.Second
)

// Duration wraps time.Duration for YAML unmarshaling from strings like "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// Options are the raw flag values the CLI collected. Zero values mean
// "not passed".
type Options struct {
	ConsumerKey    string
	ConsumerSecret string
	PageSize       int
	File           string // optional YAML tuning file
}

// Config is the fully-resolved configuration for one run.
type Config struct {
	ConsumerKey    string
	ConsumerSecret string
	PageSize       int
	APIBaseURL     string // empty means the client default
	Timeout        time.Duration
}

// fileConfig is the optional YAML tuning file. Credentials never live
// here; they come from flags or the environment only.
type fileConfig struct {
	PageSize   int      `yaml:"page_size"`
	APIBaseURL string   `yaml:"api_base_url"`
	Timeout    Duration `yaml:"timeout"`
}

// Load resolves the configuration: defaults, then the tuning file, then
// flags, with credentials from the flag/env chain.
func Load(opts Options) (*Config, error) {
	cfg := &Config{
		PageSize: DefaultPageSize,
		Timeout:  DefaultTimeout,
	}

	if opts.File != "" {
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		if fc.PageSize != 0 {
			cfg.PageSize = fc.PageSize
		}
		if fc.APIBaseURL != "" {
			cfg.APIBaseURL = fc.APIBaseURL
		}
		if fc.Timeout.Duration != 0 {
			cfg.Timeout = fc.Timeout.Duration
		}
	}

	if opts.PageSize != 0 {
		cfg.PageSize = opts.PageSize
	}

	var err error
	cfg.ConsumerKey, err = resolve(opts.ConsumerKey, EnvConsumerKey, "consumer-key", "Twitter API consumer key")
	if err != nil {
		return nil, err
	}
	cfg.ConsumerSecret, err = resolve(opts.ConsumerSecret, EnvConsumerSecret, "consumer-secret", "Twitter API consumer secret")
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// resolve walks the credential priority chain: flag value, then env var.
func resolve(flagVal, envVar, flagName, what string) (string, error) {
	if flagVal != "" {
		return flagVal, nil
	}
	if v := os.Getenv(envVar); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%s is required: pass --%s or set $%s", what, flagName, envVar)
}

func validate(cfg *Config) error {
	if cfg.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if cfg.PageSize <= 0 {
		return errors.New("page_size must be positive")
	}
	return nil
}
