// Package config loads service configuration from defaults, an optional YAML
// file, LIFT_-prefixed environment variables and command-line flags, in
// ascending precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type BrokerConfig struct {
	URL          string `mapstructure:"url"`
	ClientID     string `mapstructure:"client_id"`
	EventsTopic  string `mapstructure:"events_topic"`
	CommandTopic string `mapstructure:"command_topic"`
}

type HistoryConfig struct {
	Capacity int `mapstructure:"capacity"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// RedisConfig enables the hot-state mirror when Addr is non-empty.
type RedisConfig struct {
	Addr string        `mapstructure:"addr"`
	TTL  time.Duration `mapstructure:"ttl"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	Broker  BrokerConfig  `mapstructure:"broker"`
	History HistoryConfig `mapstructure:"history"`
	Storage StorageConfig `mapstructure:"storage"`
	Redis   RedisConfig   `mapstructure:"redis"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Log     LogConfig     `mapstructure:"log"`

	levelVar *slog.LevelVar
}

// LogLevel returns the live log level. The level follows log.level across
// config file reloads without restarting the service.
func (c *Config) LogLevel() *slog.LevelVar { return c.levelVar }

func setDefaults(v *viper.Viper) {
	v.SetDefault("broker.url", "tcp://localhost:1883")
	v.SetDefault("broker.client_id", "lift-telemetry-service")
	v.SetDefault("broker.events_topic", "lift/controller/events")
	v.SetDefault("broker.command_topic", "lift/controller/cmd")
	v.SetDefault("history.capacity", 10)
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.dsn", "lift_telemetry.db")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.ttl", 5*time.Minute)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func LoadConfig() (*Config, error) {
	return loadConfig(os.Args[1:])
}

func loadConfig(args []string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	fs := pflag.NewFlagSet("lift-telemetry-service", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	configFile := fs.String("config_file", "", "path to the configuration file")
	fs.String("broker.url", "", "MQTT broker URL")
	fs.String("broker.events_topic", "", "inbound telemetry topic")
	fs.String("broker.command_topic", "", "outbound command topic")
	fs.String("storage.driver", "", "event log driver (sqlite or postgres)")
	fs.String("storage.dsn", "", "event log DSN")
	fs.String("http.addr", "", "HTTP listen address")
	fs.String("log.level", "", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil && !errors.Is(err, pflag.ErrHelp) {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	v.SetEnvPrefix("LIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if *configFile != "" {
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", *configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/lift-telemetry-service")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{levelVar: new(slog.LevelVar)}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.levelVar.Set(parseLevel(cfg.Log.Level))

	// Reloads adjust the log level only; everything else needs a restart.
	if v.ConfigFileUsed() != "" {
		v.OnConfigChange(func(e fsnotify.Event) {
			var next Config
			if err := v.Unmarshal(&next); err != nil {
				slog.Warn("config reload ignored", slog.Any("error", err))
				return
			}
			cfg.levelVar.Set(parseLevel(next.Log.Level))
			slog.Info("log level applied",
				slog.String("level", next.Log.Level),
				slog.String("file", e.Name),
			)
		})
		v.WatchConfig()
	}

	return cfg, nil
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
