// Package config loads runtime settings from defaults, an optional YAML file
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	ServerPort      string
	Env             string
	LogLevel        string
	Storage         string
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBSSLMode       string
	DBMigrate       bool
	JWTSecret       string
	JWTTTL          time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

var defaults = map[string]any{
	"server_port":      "8080",
	"env":              "dev",
	"log_level":        "info",
	"storage":          StoragePostgres,
	"db_host":          "localhost",
	"db_port":          "5432",
	"db_user":          "messagely",
	"db_password":      "messagely_dev_password",
	"db_name":          "messagely",
	"db_sslmode":       "disable",
	"db_migrate":       true,
	"jwt_secret":       "dev-secret-change-me",
	"jwt_ttl":          "0s",
	"request_timeout":  "10s",
	"shutdown_timeout": "10s",
	"cors_origins":     "*",
}

// Load reads the configuration. A YAML file is merged in when MESSAGELY_CONFIG
// points at one; environment variables always win.
func Load() (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	if path := v.GetString("messagely_config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	return parse(v)
}

func parse(v *viper.Viper) (*Config, error) {
	jwtTTL, err := time.ParseDuration(v.GetString("jwt_ttl"))
	if err != nil {
		return nil, fmt.Errorf("parsing JWT_TTL: %w", err)
	}
	requestTimeout, err := time.ParseDuration(v.GetString("request_timeout"))
	if err != nil {
		return nil, fmt.Errorf("parsing REQUEST_TIMEOUT: %w", err)
	}
	shutdownTimeout, err := time.ParseDuration(v.GetString("shutdown_timeout"))
	if err != nil {
		return nil, fmt.Errorf("parsing SHUTDOWN_TIMEOUT: %w", err)
	}

	cfg := &Config{
		ServerPort:      v.GetString("server_port"),
		Env:             v.GetString("env"),
		LogLevel:        v.GetString("log_level"),
		Storage:         strings.ToLower(v.GetString("storage")),
		DBHost:          v.GetString("db_host"),
		DBPort:          v.GetString("db_port"),
		DBUser:          v.GetString("db_user"),
		DBPassword:      v.GetString("db_password"),
		DBName:          v.GetString("db_name"),
		DBSSLMode:       v.GetString("db_sslmode"),
		DBMigrate:       v.GetBool("db_migrate"),
		JWTSecret:       v.GetString("jwt_secret"),
		JWTTTL:          jwtTTL,
		RequestTimeout:  requestTimeout,
		ShutdownTimeout: shutdownTimeout,
		CORSOrigins:     splitList(v.GetString("cors_origins")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.JWTTTL < 0 {
		return errors.New("JWT_TTL must not be negative")
	}
	switch c.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE %q", c.Storage)
	}
	return nil
}

// DatabaseURL returns the pgx connection string.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
