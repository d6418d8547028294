// Package config loads the yaml configuration of the gomoku server and
// experiment commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/zeu5/fights/gomoku"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Gomoku    GomokuConfig    `yaml:"gomoku"`
	Redis     RedisConfig     `yaml:"redis"`
	Records   RecordsConfig   `yaml:"records"`
	Log       LogConfig       `yaml:"log"`
	WebSocket WebSocketConfig `yaml:"websocket"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// ShutdownTimeout bounds graceful shutdown of the http server
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// GomokuConfig is the board used when a session is created without one
type GomokuConfig struct {
	Width        int      `yaml:"width"`
	Height       int      `yaml:"height"`
	WinCondition int      `yaml:"win_condition"`
	Participants []string `yaml:"participants"`
}

// RedisConfig enables the session mirror when Addr is set
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// RecordsConfig enables the sqlite game store when Path is set
type RecordsConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type WebSocketConfig struct {
	ReadBufferSize  int `yaml:"read_buffer_size"`
	WriteBufferSize int `yaml:"write_buffer_size"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            "0.0.0.0:3000",
			ShutdownTimeout: 5 * time.Second,
		},
		Gomoku: GomokuConfig{
			Width:        10,
			Height:       10,
			WinCondition: 5,
			Participants: []string{"0", "1"},
		},
		Redis: RedisConfig{
			Prefix: "fights:session:",
			TTL:    time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "logfmt",
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is empty", ErrInvalid)
	}
	g := c.Gomoku
	if g.Width <= 0 || g.Height <= 0 || g.Width > gomoku.MaxBoardSize || g.Height > gomoku.MaxBoardSize {
		return fmt.Errorf("%w: gomoku board %dx%d, sides must be within [1, %d]", ErrInvalid, g.Width, g.Height, gomoku.MaxBoardSize)
	}
	if g.WinCondition <= 0 || g.WinCondition > max(g.Width, g.Height) {
		return fmt.Errorf("%w: gomoku.win_condition %d on a %dx%d board", ErrInvalid, g.WinCondition, g.Width, g.Height)
	}
	if len(g.Participants) != 2 || g.Participants[0] == g.Participants[1] {
		return fmt.Errorf("%w: gomoku.participants needs two distinct ids, got %v", ErrInvalid, g.Participants)
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("%w: redis.ttl is negative", ErrInvalid)
	}
	switch c.Log.Format {
	case "logfmt", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	if c.WebSocket.ReadBufferSize < 0 || c.WebSocket.WriteBufferSize < 0 {
		return fmt.Errorf("%w: websocket buffer sizes must not be negative", ErrInvalid)
	}
	return nil
}
