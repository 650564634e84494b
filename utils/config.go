// File: utils/config.go
package utils

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces every environment override, e.g. PONGO_BOARD_WIDTH.
const EnvPrefix = "PONGO_"

// ConfigFileEnv names the variable holding an optional YAML config path.
const ConfigFileEnv = "PONGO_CONFIG"

// Config holds all configurable game and server parameters.
type Config struct {
	// Timing
	TickPeriod time.Duration `json:"tickPeriod" koanf:"tick_period"` // Time between simulation ticks

	// Board
	BoardWidth  float64 `json:"boardWidth" koanf:"board_width"`
	BoardHeight float64 `json:"boardHeight" koanf:"board_height"`

	// Paddles
	PaddleWidth  float64 `json:"paddleWidth" koanf:"paddle_width"`
	PaddleHeight float64 `json:"paddleHeight" koanf:"paddle_height"`
	PaddleMargin float64 `json:"paddleMargin" koanf:"paddle_margin"` // Gap between board edge and paddle

	// Ball
	BallSize    float64 `json:"ballSize" koanf:"ball_size"`
	ServeSpeedX float64 `json:"serveSpeedX" koanf:"serve_speed_x"` // Horizontal speed after a serve
	ServeSpeedY float64 `json:"serveSpeedY" koanf:"serve_speed_y"` // Vertical speed magnitude after a serve
	SpinFactor  float64 `json:"spinFactor" koanf:"spin_factor"`    // Vertical speed added per unit of hit offset

	// AI
	AISpeed    float64 `json:"aiSpeed" koanf:"ai_speed"`         // Max AI paddle displacement per tick
	AIDeadZone float64 `json:"aiDeadZone" koanf:"ai_dead_zone"` // Center distance the AI tolerates before moving

	// Server
	Addr           string `json:"addr" koanf:"addr"`
	MaxSessions    int    `json:"maxSessions" koanf:"max_sessions"`
	LogLevel       string `json:"logLevel" koanf:"log_level"`
	MetricsEnabled bool   `json:"metricsEnabled" koanf:"metrics_enabled"`

	// Terminal client
	Sound bool `json:"sound" koanf:"sound"`
}

// DefaultConfig returns a Config struct with default values.
func DefaultConfig() Config {
	return Config{
		TickPeriod: Period,

		BoardWidth:  BoardWidth,
		BoardHeight: BoardHeight,

		PaddleWidth:  PaddleWidth,
		PaddleHeight: PaddleHeight,
		PaddleMargin: PaddleMargin,

		BallSize:    BallSize,
		ServeSpeedX: ServeSpeedX,
		ServeSpeedY: ServeSpeedY,
		SpinFactor:  SpinFactor,

		AISpeed:    AISpeed,
		AIDeadZone: AIDeadZone,

		Addr:           ":3001",
		MaxSessions:    MaxSessions,
		LogLevel:       "info",
		MetricsEnabled: true,

		Sound: false,
	}
}

// Validate reports configurations the physics cannot run with.
func (c Config) Validate() error {
	switch {
	case c.BoardWidth <= 0 || c.BoardHeight <= 0:
		return fmt.Errorf("%w: board must have positive dimensions, got %vx%v", ErrInvalidConfig, c.BoardWidth, c.BoardHeight)
	case c.PaddleWidth <= 0 || c.PaddleHeight <= 0:
		return fmt.Errorf("%w: paddle must have positive dimensions", ErrInvalidConfig)
	case c.PaddleHeight > c.BoardHeight:
		return fmt.Errorf("%w: paddle height %v exceeds board height %v", ErrInvalidConfig, c.PaddleHeight, c.BoardHeight)
	case c.PaddleMargin < 0 || 2*(c.PaddleMargin+c.PaddleWidth) >= c.BoardWidth:
		return fmt.Errorf("%w: paddle margin %v does not fit the board", ErrInvalidConfig, c.PaddleMargin)
	case c.BallSize <= 0 || c.BallSize > c.BoardHeight:
		return fmt.Errorf("%w: ball size %v out of range", ErrInvalidConfig, c.BallSize)
	case c.AISpeed < 0 || c.AIDeadZone < 0:
		return fmt.Errorf("%w: AI speed and dead zone must not be negative", ErrInvalidConfig)
	case c.TickPeriod <= 0:
		return fmt.Errorf("%w: tick period must be positive", ErrInvalidConfig)
	case c.MaxSessions <= 0:
		return fmt.Errorf("%w: max sessions must be positive", ErrInvalidConfig)
	}
	return nil
}

// Load builds a Config by layering, lowest precedence first:
//  1. DefaultConfig()
//  2. the YAML file named by PONGO_CONFIG, if set
//  3. PONGO_* environment variables (PONGO_BOARD_WIDTH -> board_width)
func Load(_ context.Context) (Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("%w: reading %s: %v", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("%w: environment: %v", ErrLoadConfig, err)
	}

	cfg := DefaultConfig()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
