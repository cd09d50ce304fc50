// Package config loads the notes client settings from an optional yaml file
// and NOTES_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"github.com/spf13/viper"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileName is looked up in the working directory and in ~/.config/notes
const FileName = "notes-client"

type Config struct {
	ServerURL         string        `mapstructure:"server_url"`
	DatabasePath      string        `mapstructure:"database_path"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	ProbeInterval     time.Duration `mapstructure:"probe_interval"`
	ReconnectBase     time.Duration `mapstructure:"reconnect_base"`
	ReconnectAttempts int           `mapstructure:"reconnect_attempts"`
	EchoWindow        time.Duration `mapstructure:"echo_window"`
}

// Load reads path when given, otherwise the first notes-client.yaml found;
// no file at all means defaults and environment only.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("database_path", "notes.db")
	v.SetDefault("request_timeout", "10s")
	v.SetDefault("poll_interval", "0s")
	v.SetDefault("probe_interval", "5s")
	v.SetDefault("reconnect_base", "1s")
	v.SetDefault("reconnect_attempts", 5)
	v.SetDefault("echo_window", "2s")

	v.SetEnvPrefix("NOTES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "notes"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.ServerURL == "" {
		return Config{}, errors.New("server_url is required")
	}
	return cfg, nil
}
