// Package config loads batch defaults for the rioalpha commands from a TOML
// file. Command line flags take precedence over anything set here.
package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jpfielding/alpha.go/pkg/logging"
)

// Config mirrors the TOML file:
//
//	[alpha]
//	workers = 4
//	blocksize = 256
//	threshold = 7
//	sieve_size = 0
//	creation_options = { compress = "deflate", tiled = "yes" }
//
//	[logging]
//	level = "INFO"
//	logfile = "rioalpha.log"
//	max_log_size = 50
//	max_log_age = 30
//	json = false
type Config struct {
	Alpha   AlphaConfig
	Logging LogConfig
}

type AlphaConfig struct {
	Workers   int
	Blocksize int
	Threshold int
	SieveSize int `toml:"sieve_size"`
	// CreationOptions are applied before any --co flags.
	CreationOptions map[string]string `toml:"creation_options"`
}

type LogConfig struct {
	Level   string
	Logfile string
	MaxSize int `toml:"max_log_size"`
	MaxAge  int `toml:"max_log_age"`
	JSON    bool
}

// File converts the logging section for the rotating sink.
func (c LogConfig) File() logging.FileConfig {
	return logging.FileConfig{Logfile: c.Logfile, MaxSize: c.MaxSize, MaxAge: c.MaxAge}
}

// Default is the configuration used when no file is given.
func Default() Config {
	return Config{
		Alpha: AlphaConfig{
			Blocksize: 256,
			Threshold: 7,
		},
		Logging: LogConfig{
			Level:   "INFO",
			MaxSize: 100,
			MaxAge:  28,
		},
	}
}

// Load reads filename over the defaults. An empty filename returns Default.
// A relative logfile is resolved against the config file's directory.
func Load(filename string) (Config, error) {
	c := Default()
	if filename == "" {
		return c, nil
	}
	md, err := toml.DecodeFile(filename, &c)
	if err != nil {
		return c, fmt.Errorf("could not decode TOML config %s: %w", filename, err)
	}
	for _, k := range md.Undecoded() {
		slog.Warn("unknown config key", slog.String("key", k.String()), slog.String("file", filename))
	}
	if c.Logging.Logfile != "" && !filepath.IsAbs(c.Logging.Logfile) {
		c.Logging.Logfile = filepath.Join(filepath.Dir(filename), c.Logging.Logfile)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("config %s: %w", filename, err)
	}
	return c, nil
}

// Validate rejects settings no command could use.
func (c Config) Validate() error {
	switch {
	case c.Alpha.Workers < 0:
		return fmt.Errorf("workers must be >= 0, got %d", c.Alpha.Workers)
	case c.Alpha.Blocksize < 0:
		return fmt.Errorf("blocksize must be >= 0, got %d", c.Alpha.Blocksize)
	case c.Alpha.Threshold < 0:
		return fmt.Errorf("threshold must be >= 0, got %d", c.Alpha.Threshold)
	case c.Alpha.SieveSize < 0:
		return fmt.Errorf("sieve_size must be >= 0, got %d", c.Alpha.SieveSize)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Logging.Level))); err != nil {
		return fmt.Errorf("logging level: %w", err)
	}
	return nil
}

// SlogLevel parses the logging level, defaulting to INFO.
func (c LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Level))); err != nil {
		return slog.LevelInfo
	}
	return level
}
