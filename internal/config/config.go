package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Defs struct {
		Files    []string `yaml:"files"`
		Dirs     []string `yaml:"dirs"`
		Validate bool     `yaml:"validate"`
	} `yaml:"defs"`
	Environment struct {
		// Scripts run into the realm, in order.
		Prelude           []string `yaml:"prelude"`
		MaxPrototypeDepth int      `yaml:"max_prototype_depth"`
	} `yaml:"environment"`
	Log LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Defs.Validate = true
	cfg.Environment.MaxPrototypeDepth = 256
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return &cfg
}

func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML config over the defaults
	cfg := Default()
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	// 3. Override with Environment Variables if present
	if defs := os.Getenv("DEFLENS_DEFS"); defs != "" {
		cfg.Defs.Files = splitList(defs)
	}
	if prelude := os.Getenv("DEFLENS_PRELUDE"); prelude != "" {
		cfg.Environment.Prelude = splitList(prelude)
	}
	if level := os.Getenv("DEFLENS_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if depth := os.Getenv("DEFLENS_MAX_PROTOTYPE_DEPTH"); depth != "" {
		n, err := strconv.Atoi(depth)
		if err != nil {
			return nil, fmt.Errorf("DEFLENS_MAX_PROTOTYPE_DEPTH: %w", err)
		}
		cfg.Environment.MaxPrototypeDepth = n
	}

	if cfg.Environment.MaxPrototypeDepth <= 0 {
		cfg.Environment.MaxPrototypeDepth = 256
	}
	return cfg, nil
}

// NewLogger builds the process logger described by c, writing to w.
func NewLogger(c LogConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.Level))); err != nil {
		return nil, fmt.Errorf("log level %q: %w", c.Level, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(c.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", c.Format)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
