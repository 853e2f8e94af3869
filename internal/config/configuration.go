package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	// HTTP server
	Addr   string `mapstructure:"PLCMP_ADDR" validate:"required"`
	Prefix string `mapstructure:"PLCMP_PREFIX" validate:"required,startswith=/"`

	// Signing key for component state tokens
	Secret string `mapstructure:"PLCMP_SECRET" validate:"required,min=16"`

	// Logging
	LogLevel  string `mapstructure:"PLCMP_LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"PLCMP_LOG_FORMAT" validate:"oneof=text json"`
}

// use reflect to bind environment variables based on mapstructure tags
func bindEnv(c Config) {
	typ := reflect.TypeOf(c)
	for i := 0; i < typ.NumField(); i++ {
		if tag := typ.Field(i).Tag.Get("mapstructure"); tag != "" {
			viper.BindEnv(tag)
		}
	}
}

func LoadConfig(ctx context.Context) (*Config, error) {
	bindEnv(Config{})
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("PLCMP_ADDR", ":8080")
	viper.SetDefault("PLCMP_PREFIX", "/_pl/")
	viper.SetDefault("PLCMP_LOG_LEVEL", "info")
	viper.SetDefault("PLCMP_LOG_FORMAT", "text")

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	slog.InfoContext(ctx, "Loaded configuration",
		"addr", cfg.Addr,
		"prefix", cfg.Prefix,
		"log_level", cfg.LogLevel,
		"log_format", cfg.LogFormat,
	)

	return &cfg, nil
}

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level()}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
