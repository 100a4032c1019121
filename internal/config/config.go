package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/mitchellh/go-homedir"
	"github.com/natefinch/atomic"
	"github.com/phaseboard/timeline/internal/domain"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory and the
// home directory.
const FileName = ".timeline.yaml"

// EnvPrefix prefixes every environment override, e.g. TIMELINE_DB_PATH.
const EnvPrefix = "TIMELINE"

// Config holds all runtime settings.
type Config struct {
	DB    DBConfig    `mapstructure:"db" yaml:"db"`
	Store StoreConfig `mapstructure:"store" yaml:"store"`
	HTTP  HTTPConfig  `mapstructure:"http" yaml:"http"`
	Log   LogConfig   `mapstructure:"log" yaml:"log"`
	Suite []string    `mapstructure:"suite" yaml:"suite" validate:"dive,required,notblank"`
}

type DBConfig struct {
	Path string `mapstructure:"path" yaml:"path" validate:"required"`
}

type StoreConfig struct {
	MaxRetries    int `mapstructure:"max_retries" yaml:"max_retries" validate:"min=1,max=20"`
	BusyTimeoutMs int `mapstructure:"busy_timeout_ms" yaml:"busy_timeout_ms" validate:"min=0,max=600000"`
}

type HTTPConfig struct {
	Addr    string `mapstructure:"addr" yaml:"addr" validate:"required,hostname_port"`
	Metrics bool   `mapstructure:"metrics" yaml:"metrics"`
}

type LogConfig struct {
	UseCases bool `mapstructure:"use_cases" yaml:"use_cases"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		DB:    DBConfig{Path: filepath.Join("~", ".timeline", "timeline.db")},
		Store: StoreConfig{MaxRetries: 3, BusyTimeoutMs: 5000},
		HTTP:  HTTPConfig{Addr: "127.0.0.1:8080", Metrics: true},
		Log:   LogConfig{UseCases: false},
		Suite: slices.Clone(domain.DefaultSuite),
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// Load reads configuration from path, or from FileName in the working
// directory and then the home directory when path is empty. Environment
// variables override file values; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	// Env values arrive as one string; split lists on commas.
	if raw := os.Getenv(EnvPrefix + "_SUITE"); raw != "" {
		cfg.Suite = splitList(raw)
	}
	for i, title := range cfg.Suite {
		cfg.Suite[i] = strings.TrimSpace(title)
	}

	expanded, err := homedir.Expand(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("expanding db.path: %w", err)
	}
	cfg.DB.Path = expanded

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// WriteDefault writes the default configuration to path. An existing file
// is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("db.path", cfg.DB.Path)
	v.SetDefault("store.max_retries", cfg.Store.MaxRetries)
	v.SetDefault("store.busy_timeout_ms", cfg.Store.BusyTimeoutMs)
	v.SetDefault("http.addr", cfg.HTTP.Addr)
	v.SetDefault("http.metrics", cfg.HTTP.Metrics)
	v.SetDefault("log.use_cases", cfg.Log.UseCases)
	v.SetDefault("suite", cfg.Suite)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
