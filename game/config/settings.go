package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Settings holds the runtime configuration of the server.
type Settings struct {
	Host            string        `env:"GAME2048_HOST" envDefault:"localhost"`
	Port            int           `env:"GAME2048_PORT" envDefault:"8080"`
	Debug           bool          `env:"GAME2048_DEBUG"`
	Seed            int64         `env:"GAME2048_SEED"` // 0 draws a fresh seed per session
	SessionTTL      time.Duration `env:"GAME2048_SESSION_TTL" envDefault:"24h"`
	CleanupInterval time.Duration `env:"GAME2048_CLEANUP_INTERVAL" envDefault:"1h"`
	OTelEndpoint    string        `env:"GAME2048_OTEL_ENDPOINT"`
	Ngrok           NgrokSettings
}

// NgrokSettings configures the optional public tunnel.
type NgrokSettings struct {
	Enabled   bool   `env:"NGROK_ENABLED"`
	AuthToken string `env:"NGROK_AUTHTOKEN"`
	Domain    string `env:"NGROK_DOMAIN"`
}

// Load reads .env files (missing files are ignored), then the process
// environment. With no arguments godotenv looks for ./.env.
func Load(envFiles ...string) (*Settings, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	var s Settings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// Also support the underscore spelling
	if s.Ngrok.AuthToken == "" {
		s.Ngrok.AuthToken = os.Getenv("NGROK_AUTH_TOKEN")
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that the settings can start a server.
func (s *Settings) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, s.Port)
	}
	if s.SessionTTL <= 0 {
		return fmt.Errorf("%w: session TTL must be positive", ErrInvalidConfig)
	}
	if s.CleanupInterval <= 0 {
		return fmt.Errorf("%w: cleanup interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// Addr returns the host:port the HTTP server listens on.
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// FixedSeed reports the configured seed, if any.
func (s *Settings) FixedSeed() (int64, bool) {
	return s.Seed, s.Seed != 0
}
