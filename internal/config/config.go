// Package config loads server settings from a JSON file and the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/benbeisheim/chessai-backend/internal/search"
)

type Config struct {
	Addr            string            `json:"addr"`
	AllowedOrigins  []string          `json:"allowed_origins"`
	ReadBufferSize  int               `json:"read_buffer_size"`
	WriteBufferSize int               `json:"write_buffer_size"`
	Difficulty      search.Difficulty `json:"difficulty"`
	Tolerance       int               `json:"tolerance"`
	Seed            int64             `json:"seed"` // 0 picks moves from the process-wide source
	MaxGames        int               `json:"max_games"`
	LogLevel        string            `json:"log_level"`
	LogPretty       bool              `json:"log_pretty"`
}

func Default() Config {
	return Config{
		Addr:            ":3000",
		AllowedOrigins:  []string{"http://localhost:5173"},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Difficulty:      search.Medium,
		Tolerance:       search.DefaultTolerance,
		MaxGames:        1000,
		LogLevel:        "info",
		LogPretty:       true,
	}
}

// Load overlays the JSON file at path, if any, on the defaults and then
// applies the CHESS_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("CHESS_ADDR"); ok {
		c.Addr = v
	}
	if v, ok := lookup("CHESS_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := lookup("CHESS_DIFFICULTY"); ok {
		d, err := search.ParseDifficulty(v)
		if err != nil {
			return fmt.Errorf("config: CHESS_DIFFICULTY: %w", err)
		}
		c.Difficulty = d
	}
	if v, ok := lookup("CHESS_ALLOWED_ORIGINS"); ok {
		c.AllowedOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, origin)
			}
		}
	}
	return nil
}

func (c Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("config: addr %q: %w", c.Addr, err)
	}
	if !c.Difficulty.Valid() {
		return fmt.Errorf("config: invalid difficulty %d", int(c.Difficulty))
	}
	if c.Tolerance < 0 {
		return errors.New("config: tolerance must not be negative")
	}
	if c.MaxGames < 1 {
		return errors.New("config: max_games must be positive")
	}
	if c.ReadBufferSize < 0 || c.WriteBufferSize < 0 {
		return errors.New("config: buffer sizes must not be negative")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Level is the parsed LogLevel, defaulting to info.
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// Origins joins AllowedOrigins the way the CORS middleware expects them.
func (c Config) Origins() string {
	return strings.Join(c.AllowedOrigins, ", ")
}
