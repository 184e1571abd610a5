// Package config loads the service configuration with Viper.
//
// Values are layered: built-in defaults < optional YAML file < environment
// variables prefixed with GOV_ (GOV_DATABASE_HOST overrides database.host).
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/yukikurage/governance-api/internal/constants"
	"github.com/yukikurage/governance-api/internal/governance"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Session    SessionConfig    `mapstructure:"session"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Governance GovernanceConfig `mapstructure:"governance"`
}

type ServerConfig struct {
	Port    int    `mapstructure:"port"`
	GinMode string `mapstructure:"gin_mode"`
}

type DatabaseConfig struct {
	// Driver is one of mysql, postgres or sqlite.
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type SessionConfig struct {
	Secret string `mapstructure:"secret"`
	// CookieName must match the cookie issued by the application that logs users in.
	CookieName string `mapstructure:"cookie_name"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type GovernanceConfig struct {
	// CompletionMode is TEST or PRODUCTION.
	CompletionMode string `mapstructure:"completion_mode"`
}

// Mode returns the parsed completion mode. Validate has already rejected bad values.
func (g GovernanceConfig) Mode() governance.Mode {
	mode, err := governance.ParseMode(g.CompletionMode)
	if err != nil {
		return governance.ModeProduction
	}
	return mode
}

// IsProduction reports whether the server runs in gin release mode.
func (c *Config) IsProduction() bool {
	return c.Server.GinMode == "release"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.gin_mode", "debug")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "govuser")
	v.SetDefault("database.password", "govpassword")
	v.SetDefault("database.name", "governance")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)

	v.SetDefault("session.secret", "default-secret-key-change-me")
	v.SetDefault("session.cookie_name", constants.SessionCookieName)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("governance.completion_mode", string(governance.ModeTest))
}

// Load reads configuration from configPath (optional) and the environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("GOV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if _, err := governance.ParseMode(c.Governance.CompletionMode); err != nil {
		return fmt.Errorf("invalid governance.completion_mode: %w", err)
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("session.cookie_name must not be empty")
	}
	if c.IsProduction() && c.Session.Secret == "default-secret-key-change-me" {
		return fmt.Errorf("session.secret must be set in release mode")
	}
	return nil
}
