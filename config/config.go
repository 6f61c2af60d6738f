// Package config loads the fiado settings from a file, the environment and
// defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/fiado/docstore"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables read, like FIADO_STORE_DRIVER.
const EnvPrefix = "FIADO"

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type LedgerConfig struct {
	RejectNegative bool `mapstructure:"reject_negative"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

type Config struct {
	Store    docstore.Options `mapstructure:"store"`
	Gemini   GeminiConfig     `mapstructure:"gemini"`
	Ledger   LedgerConfig     `mapstructure:"ledger"`
	Log      LogConfig        `mapstructure:"log"`
	Server   ServerConfig     `mapstructure:"server"`
	Currency string           `mapstructure:"currency" validate:"len=3"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", "dir")
	v.SetDefault("store.dir", ".fiado")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.redis_url", "redis://localhost:6379/0")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("ledger.reject_negative", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("server.addr", "localhost:8080")
	v.SetDefault("currency", "BRL")
}

// Load reads the configuration.
//
// With an empty path, an optional fiado.yaml in the working directory is
// read. Otherwise the file at path must exist. Environment variables override
// the file, and the Gemini key also falls back to GEMINI_API_KEY.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("gemini.api_key", EnvPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, err
	}

	if path == "" {
		v.SetConfigName("fiado")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Currency = strings.ToUpper(c.Currency)
	if err := validator.New().Struct(c); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &c, nil
}
