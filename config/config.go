// Package config loads connection definitions and logging, slow-log, pool
// and Redis settings from a file and NAMEDSQL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/shrek82/namedsql/core"
	"github.com/shrek82/namedsql/dialect"
	"github.com/shrek82/namedsql/logger"
)

// EnvPrefix is prepended to every environment override, e.g.
// NAMEDSQL_LOG_LEVEL for log.level.
const EnvPrefix = "NAMEDSQL"

// Config is the decoded configuration.
type Config struct {
	Connections []core.ConnectionConfig

	LogLevel  logger.LogLevel
	LogFormat logger.LogFormat

	// SlowThreshold enables the slow statement log when positive.
	SlowThreshold time.Duration
	SlowLogPath   string

	// RedisAddr enables event publishing when set.
	RedisAddr    string
	RedisChannel string

	Pool core.Options
}

// connectionEntry is the on-disk form of a connection; the driver is a
// name such as "sqlite" or "postgres".
type connectionEntry struct {
	Name     string            `mapstructure:"name"`
	Driver   string            `mapstructure:"driver"`
	Host     string            `mapstructure:"host"`
	Database string            `mapstructure:"database"`
	User     string            `mapstructure:"user"`
	Password string            `mapstructure:"password"`
	Port     int               `mapstructure:"port"`
	Params   map[string]string `mapstructure:"params"`
}

// New returns a viper instance with defaults and environment binding set.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", string(logger.LogFormatText))
	v.SetDefault("slow_threshold", time.Duration(0))
	v.SetDefault("slow_log", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.channel", "namedsql:events")
	v.SetDefault("pool.max_idle_conns", 0)
	v.SetDefault("pool.conn_max_lifetime", time.Duration(0))
	v.SetDefault("pool.connect_timeout", 10*time.Second)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path, or when path is empty looks for namedsql.{yaml,json,toml}
// in the working directory and $HOME/.config/namedsql. A missing file is
// only an error when path was given explicitly.
func Load(path string) (*Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("namedsql")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/namedsql")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return Decode(v)
}

// Decode converts the settings held by v.
func Decode(v *viper.Viper) (*Config, error) {
	level, err := logger.ParseLevel(v.GetString("log.level"))
	if err != nil {
		return nil, err
	}
	format := logger.LogFormat(strings.ToLower(v.GetString("log.format")))
	if format != logger.LogFormatText && format != logger.LogFormatJSON {
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	cfg := &Config{
		LogLevel:      level,
		LogFormat:     format,
		SlowThreshold: v.GetDuration("slow_threshold"),
		SlowLogPath:   v.GetString("slow_log"),
		RedisAddr:     v.GetString("redis.addr"),
		RedisChannel:  v.GetString("redis.channel"),
		Pool: core.Options{
			MaxIdleConns:    v.GetInt("pool.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("pool.conn_max_lifetime"),
			ConnectTimeout:  v.GetDuration("pool.connect_timeout"),
		},
	}

	var entries []connectionEntry
	if err := v.UnmarshalKey("connections", &entries); err != nil {
		return nil, fmt.Errorf("decoding connections: %w", err)
	}

	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		d, err := dialect.ParseDriver(e.Driver)
		if err != nil {
			return nil, fmt.Errorf("connection %d (%q): %w", i, e.Name, err)
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("%w: connection name %q is defined twice", core.ErrInvalidConfig, e.Name)
		}
		seen[e.Name] = true

		c := core.ConnectionConfig{
			Name:         e.Name,
			Driver:       d,
			Host:         e.Host,
			DatabaseName: e.Database,
			User:         e.User,
			Password:     e.Password,
			Port:         e.Port,
			Params:       e.Params,
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		cfg.Connections = append(cfg.Connections, c)
	}
	return cfg, nil
}

// Connection returns the connection named name.
func (c *Config) Connection(name string) (core.ConnectionConfig, bool) {
	for _, conn := range c.Connections {
		if conn.Name == name {
			return conn, true
		}
	}
	return core.ConnectionConfig{}, false
}

// Logger builds a logger from the log settings.
func (c *Config) Logger() logger.Logger {
	l := logger.NewStdLogger()
	l.SetLevel(c.LogLevel)
	l.SetFormat(c.LogFormat)
	return l
}
