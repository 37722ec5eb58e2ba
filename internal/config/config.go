// Package config loads the tracker configuration and the server password table.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type DiscordConfig struct {
	// Token is the bot token, without the "Bot " prefix.
	Token string `mapstructure:"token"`
	// Channel is the id of the channel holding the live displays.
	Channel string `mapstructure:"channel"`
	// Prefix starts every operator command.
	Prefix string `mapstructure:"prefix"`
}

// ServerConfig points at the A2S query endpoint of the game server.
type ServerConfig struct {
	Host    string        `mapstructure:"host"`
	Port    int           `mapstructure:"port"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type TrackerConfig struct {
	// Interval is the wait between two poll cycles.
	Interval time.Duration `mapstructure:"interval"`
	// StaleAfter is how long failed polls go on before a warning is logged.
	StaleAfter time.Duration `mapstructure:"stale_after"`
	// Credentials is the path of the server password file.
	Credentials string `mapstructure:"credentials"`
}

type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is "console" or "json".
	Format string `mapstructure:"format"`
}

type Config struct {
	Discord DiscordConfig `mapstructure:"discord"`
	Server  ServerConfig  `mapstructure:"server"`
	Tracker TrackerConfig `mapstructure:"tracker"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Validate checks every setting and reports all the violations at once.
func (c Config) Validate() error {
	var errs []string

	if c.Discord.Token == "" {
		errs = append(errs, "discord.token must not be empty")
	}
	if _, err := strconv.ParseUint(c.Discord.Channel, 10, 64); err != nil {
		errs = append(errs, fmt.Sprintf("discord.channel must be a numeric channel id, got %q", c.Discord.Channel))
	}
	if strings.TrimSpace(c.Discord.Prefix) == "" {
		errs = append(errs, "discord.prefix must not be empty")
	}

	if c.Server.Host == "" {
		errs = append(errs, "server.host must not be empty")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.Timeout <= 0 {
		errs = append(errs, "server.timeout must be positive")
	}

	if c.Tracker.Interval <= 0 {
		errs = append(errs, "tracker.interval must be positive")
	}
	if c.Tracker.StaleAfter <= 0 {
		errs = append(errs, "tracker.stale_after must be positive")
	}
	if c.Tracker.Credentials == "" {
		errs = append(errs, "tracker.credentials must not be empty")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, fmt.Sprintf("logging.level must be one of [debug, info, warn, error], got %q", c.Logging.Level))
	}
	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[c.Logging.Format] {
		errs = append(errs, fmt.Sprintf("logging.format must be one of [console, json], got %q", c.Logging.Format))
	}

	if len(errs) > 0 {
		return &ConfigError{Op: "validate", Err: fmt.Errorf("%s", strings.Join(errs, "; "))}
	}
	return nil
}

// Load reads the configuration file at path, lets ARMATRACKER_* environment
// variables override it, and validates the result.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("ARMATRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, &ConfigError{Op: "read", Path: path, Err: err}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already configured viper instance.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, &ConfigError{Op: "unmarshal", Path: v.ConfigFileUsed(), Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Keys without a default are invisible to AutomaticEnv during Unmarshal
	v.SetDefault("discord.token", "")
	v.SetDefault("discord.channel", "")
	v.SetDefault("discord.prefix", ">")

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 2303)
	v.SetDefault("server.timeout", "3s")

	v.SetDefault("tracker.interval", "5s")
	v.SetDefault("tracker.stale_after", "1m")
	v.SetDefault("tracker.credentials", "server.json")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}
