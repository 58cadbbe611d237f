// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package config

import (
	"time"

	"github.com/knadh/koanf/providers/posflag"
	"github.com/spf13/pflag"
)

// Flags that select sources rather than carry settings.
const (
	flagConfig  = "config"
	flagEnvFile = "env-file"
)

// Default values.
const (
	DefaultAddr            = ":4000"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultConnectTimeout  = 30 * time.Second
	DefaultRedisAddr       = "localhost:6379"
	DefaultCookieName      = "cookieId"
	DefaultSessionTTL      = 10 * 365 * 24 * time.Hour
	DefaultMetricsAddr     = "127.0.0.1:9100"
)

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"addr":             "server.addr",
	"environment":      "server.environment",
	"shutdown-timeout": "server.shutdown_timeout",
	"log-format":       "log.format",
	"log-level":        "log.level",
	"database-url":     "database.url",
	"connect-timeout":  "database.connect_timeout",
	"auto-migrate":     "database.auto_migrate",
	"redis-addr":       "redis.addr",
	"redis-password":   "redis.password",
	"redis-db":         "redis.db",
	"cookie-name":      "session.cookie_name",
	"session-secret":   "session.secret",
	"encryption-key":   "session.encryption_key",
	"session-ttl":      "session.ttl",
	"session-touch":    "session.touch",
	"secure-cookies":   "session.secure",
	"cors-origins":     "cors.allowed_origins",
	"metrics-addr":     "metrics.addr",
}

// RegisterFlags adds every setting, with its default, to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(flagConfig, "", "config file path (default: $XDG_CONFIG_HOME/postline/config.yaml)")
	fs.String(flagEnvFile, ".env", "dotenv file loaded into the environment when present")

	fs.String("addr", DefaultAddr, "HTTP listen address")
	fs.String("environment", EnvDevelopment, "development or production")
	fs.Duration("shutdown-timeout", DefaultShutdownTimeout, "graceful shutdown timeout")
	fs.String("log-format", "json", "log format (json or text)")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("database-url", "", "PostgreSQL connection URL")
	fs.Duration("connect-timeout", DefaultConnectTimeout, "how long to wait for PostgreSQL and Redis at startup")
	fs.Bool("auto-migrate", false, "apply pending migrations before serving")
	fs.String("redis-addr", DefaultRedisAddr, "Redis address")
	fs.String("redis-password", "", "Redis password")
	fs.Int("redis-db", 0, "Redis database number")
	fs.String("cookie-name", DefaultCookieName, "session cookie name")
	fs.String("session-secret", "", "session cookie signing secret (at least 32 bytes)")
	fs.String("encryption-key", "", "optional session cookie encryption key (16, 24 or 32 bytes)")
	fs.Duration("session-ttl", DefaultSessionTTL, "session lifetime")
	fs.Bool("session-touch", false, "extend the session TTL on every read")
	fs.Bool("secure-cookies", false, "mark the session cookie Secure")
	fs.StringSlice("cors-origins", nil, "allowed CORS origin patterns")
	fs.String("metrics-addr", DefaultMetricsAddr, "metrics and health listen address (empty disables)")
}

// flagKey returns the posflag callback translating flag names to config keys.
// Flags without a key are skipped.
func flagKey(fs *pflag.FlagSet) func(*pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return "", nil
		}
		return key, posflag.FlagVal(fs, f)
	}
}
