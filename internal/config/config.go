// Package config resolves connection and logging settings from the
// environment and command-line overrides.
package config

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-sql-driver/mysql"

	myerrors "github.com/tordrt/myschema/internal/errors"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "MYSCHEMA_"

// Config holds the MySQL target and logging settings
type Config struct {
	Host           string        `env:"HOST"            envDefault:"127.0.0.1"`
	Port           int           `env:"PORT"            envDefault:"3306"`
	User           string        `env:"USER"            envDefault:"root"`
	Password       string        `env:"PASSWORD"`
	Database       string        `env:"DATABASE"`
	LogLevel       string        `env:"LOG_LEVEL"       envDefault:"info"` // debug, info, warn, error
	LogFormat      string        `env:"LOG_FORMAT"      envDefault:"text"` // text, json
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	return LoadWithOverrides(nil)
}

// LoadWithOverrides reads the environment, then applies flag overrides keyed
// by flag name. Empty string overrides are ignored.
func LoadWithOverrides(overrides map[string]any) (*Config, error) {
	cfg := &Config{}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, myerrors.Wrap(err, myerrors.ErrTypeConfig, "failed to parse environment variables")
	}

	applyOverrides(cfg, overrides)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyOverrides(cfg *Config, overrides map[string]any) {
	for key, value := range overrides {
		switch v := value.(type) {
		case string:
			if v == "" {
				continue
			}
			switch key {
			case "host":
				cfg.Host = v
			case "user":
				cfg.User = v
			case "password":
				cfg.Password = v
			case "database":
				cfg.Database = v
			case "log-level":
				cfg.LogLevel = v
			case "log-format":
				cfg.LogFormat = v
			}
		case int:
			if key == "port" {
				cfg.Port = v
			}
		case time.Duration:
			if key == "connect-timeout" {
				cfg.ConnectTimeout = v
			}
		}
	}
}

// Validate checks the values a connection or logger cannot work without
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return myerrors.Newf(myerrors.ErrTypeConfig, "invalid port: %d (must be 1-65535)", c.Port)
	}

	if strings.TrimSpace(c.Host) == "" {
		return myerrors.New(myerrors.ErrTypeConfig, "host is required")
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return myerrors.Newf(myerrors.ErrTypeConfig, "invalid log format: %s (must be text or json)", c.LogFormat)
	}

	if c.ConnectTimeout <= 0 {
		return myerrors.Newf(myerrors.ErrTypeConfig, "connect timeout must be positive: %s", c.ConnectTimeout)
	}

	return nil
}

// MySQLDSN returns a go-sql-driver DSN for the configured server. An empty
// database connects at server level.
func (c *Config) MySQLDSN(database string) string {
	dsn := mysql.NewConfig()
	dsn.User = c.User
	dsn.Passwd = c.Password
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	dsn.DBName = database
	dsn.ParseTime = true
	dsn.MultiStatements = false
	dsn.Timeout = c.ConnectTimeout
	dsn.Params = map[string]string{"charset": "utf8mb4"}
	return dsn.FormatDSN()
}
