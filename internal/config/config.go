package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
)

// Config holds defaults for probe invocations. Command-line flags override
// every field.
type Config struct {
	DefaultIdentity string        `toml:"default_identity"`
	Port            int           `toml:"port"`
	Timeout         time.Duration `toml:"-"`
	TimeoutStr      string        `toml:"timeout"`
	Delay           time.Duration `toml:"-"`
	DelayStr        string        `toml:"delay"`
	LogLevel        string        `toml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		DefaultIdentity: "",
		Port:            161,
		Timeout:         15 * time.Second,
		TimeoutStr:      "15s",
		Delay:           10 * time.Second,
		DelayStr:        "10s",
		LogLevel:        "warn",
	}
}

// LoadConfig reads path over the defaults. A missing file yields defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.TimeoutStr != "" {
		if cfg.Timeout, err = time.ParseDuration(cfg.TimeoutStr); err != nil {
			return nil, fmt.Errorf("parse %s: timeout: %w", path, err)
		}
	}
	if cfg.DelayStr != "" {
		if cfg.Delay, err = time.ParseDuration(cfg.DelayStr); err != nil {
			return nil, fmt.Errorf("parse %s: delay: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values no probe run could use.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Delay <= 0 {
		return errors.New("delay must be positive")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Encode writes the config as TOML.
func (c *Config) Encode(w io.Writer) error {
	c.TimeoutStr = c.Timeout.String()
	c.DelayStr = c.Delay.String()
	return toml.NewEncoder(w).Encode(c)
}

func SaveConfig(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return cfg.Encode(f)
}
