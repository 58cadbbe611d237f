// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

// Package config loads Postline's settings.
//
// Sources are layered lowest to highest: flag defaults, the YAML config file,
// POSTLINE_* environment variables (a .env file is read into the environment
// first), and finally flags set explicitly on the command line.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/postline/postline/internal/logging"
	"github.com/postline/postline/internal/xdg"
)

// EnvPrefix prefixes every environment variable. Sections and keys are
// separated by a double underscore: POSTLINE_SESSION__COOKIE_NAME.
const EnvPrefix = "POSTLINE_"

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// minSecretLength is the shortest accepted cookie signing secret.
const minSecretLength = 32

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Log      LogConfig      `koanf:"log"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Session  SessionConfig  `koanf:"session"`
	CORS     CORSConfig     `koanf:"cors"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	Environment     string        `koanf:"environment"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LogConfig configures slog output.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// DatabaseConfig configures PostgreSQL.
type DatabaseConfig struct {
	URL            string        `koanf:"url"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	AutoMigrate    bool          `koanf:"auto_migrate"`
}

// RedisConfig configures the session backend.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// SessionConfig configures the session cookie.
type SessionConfig struct {
	CookieName    string        `koanf:"cookie_name"`
	Secret        string        `koanf:"secret"`
	EncryptionKey string        `koanf:"encryption_key"`
	TTL           time.Duration `koanf:"ttl"`
	Touch         bool          `koanf:"touch"`
	Secure        bool          `koanf:"secure"`
}

// CORSConfig lists the browser origins allowed to call the API. Entries are
// glob patterns such as https://*.example.com.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// MetricsConfig configures the observability listener. An empty address
// disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// Load reads configuration using the flags registered by RegisterFlags.
func Load(flags *pflag.FlagSet) (*Config, error) {
	if err := loadDotEnv(flags); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path := configPath(flags); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_INVALID").With("path", path).Wrap(err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, oops.Code("CONFIG_ENV_INVALID").Wrap(err)
	}

	// Unchanged flags only fill keys no other source set.
	if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagKey(flags)), nil); err != nil {
		return nil, oops.Code("CONFIG_FLAGS_INVALID").Wrap(err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_DECODE_FAILED").Wrap(err)
	}
	return &cfg, nil
}

// envKey maps POSTLINE_SESSION__COOKIE_NAME to session.cookie_name.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ToLower(strings.ReplaceAll(s, "__", "."))
}

func loadDotEnv(flags *pflag.FlagSet) error {
	f := flags.Lookup(flagEnvFile)
	if f == nil || f.Value.String() == "" {
		return nil
	}
	if err := godotenv.Load(f.Value.String()); err != nil {
		if !f.Changed && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return oops.Code("CONFIG_ENV_FILE_INVALID").With("path", f.Value.String()).Wrap(err)
	}
	return nil
}

// configPath returns the --config value, or the XDG default when that file
// exists. An explicit path that does not exist fails at load time.
func configPath(flags *pflag.FlagSet) string {
	if f := flags.Lookup(flagConfig); f != nil && f.Value.String() != "" {
		return f.Value.String()
	}
	path, err := xdg.ConfigFile()
	if err != nil {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// Validate checks that the configuration can start a server.
func (c *Config) Validate() error {
	var errs []error
	fail := func(key, format string, args ...any) {
		errs = append(errs, oops.With("key", key).Errorf(format, args...))
	}

	if c.Server.Addr == "" {
		fail("server.addr", "server.addr is required")
	}
	if c.Server.Environment != EnvDevelopment && c.Server.Environment != EnvProduction {
		fail("server.environment", "server.environment must be %q or %q, got %q",
			EnvDevelopment, EnvProduction, c.Server.Environment)
	}
	if c.Server.ShutdownTimeout <= 0 {
		fail("server.shutdown_timeout", "server.shutdown_timeout must be positive")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		fail("log.format", "log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		fail("log.level", "log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	if c.Database.URL == "" {
		fail("database.url", "database.url is required")
	}
	if c.Redis.Addr == "" {
		fail("redis.addr", "redis.addr is required")
	}
	if c.Session.CookieName == "" {
		fail("session.cookie_name", "session.cookie_name is required")
	}
	if len(c.Session.Secret) < minSecretLength {
		fail("session.secret", "session.secret must be at least %d bytes", minSecretLength)
	}
	if n := len(c.Session.EncryptionKey); n != 0 && n != 16 && n != 24 && n != 32 {
		fail("session.encryption_key", "session.encryption_key must be 16, 24 or 32 bytes, got %d", n)
	}
	if c.Session.TTL <= 0 {
		fail("session.ttl", "session.ttl must be positive")
	}
	if c.IsProduction() && !c.Session.Secure {
		fail("session.secure", "session.secure must be enabled in production")
	}
	for _, pattern := range c.CORS.AllowedOrigins {
		if _, err := glob.Compile(pattern); err != nil {
			fail("cors.allowed_origins", "invalid origin pattern %q: %v", pattern, err)
		}
	}

	if len(errs) > 0 {
		return oops.Code("CONFIG_INVALID").Wrap(errors.Join(errs...))
	}
	return nil
}
