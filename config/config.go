// Package config loads host settings from an optional .env file, an
// optional YAML file and NIGHTKEEP_* environment variables, in that order
// of increasing precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "NIGHTKEEP_"

// Config holds the host configuration. The simulation core never reads it.
type Config struct {
	SaveDB     string `yaml:"save_db"`
	ContentDir string `yaml:"content_dir"` // empty = embedded content
	Seed       string `yaml:"seed"`
	Lesson     string `yaml:"lesson"`
	Autosave   bool   `yaml:"autosave"`
	LogLevel   string `yaml:"log_level"`
	LogFile    string `yaml:"log_file"` // empty = logs discarded
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		SaveDB:   "nightkeep.db",
		Autosave: true,
		LogLevel: "info",
	}
}

// Load builds the configuration. A .env file next to path (or in the
// working directory when path is empty) is read first if present; it never
// replaces variables already set in the environment. path itself must exist
// when given.
func Load(path string) (*Config, error) {
	cfg := Default()

	envFile := ".env"
	if path != "" {
		envFile = filepath.Join(filepath.Dir(path), ".env")
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"SAVE_DB":     &c.SaveDB,
		"CONTENT_DIR": &c.ContentDir,
		"SEED":        &c.Seed,
		"LESSON":      &c.Lesson,
		"LOG_LEVEL":   &c.LogLevel,
		"LOG_FILE":    &c.LogFile,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv(EnvPrefix + "AUTOSAVE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sAUTOSAVE: %w", EnvPrefix, err)
		}
		c.Autosave = b
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// NewLogger returns a text logger writing to LogFile, or a discarding
// logger when no file is set. The returned close function is never nil.
func NewLogger(c *Config) (*slog.Logger, func() error, error) {
	lvl, err := c.Level()
	if err != nil {
		return nil, nil, err
	}
	if c.LogFile == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() error { return nil }, nil
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	log := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: lvl}))
	return log, f.Close, nil
}
