package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Env        string `env:"ENV" envDefault:"development"`
	APIBaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8001"`
	TokenFile  string `env:"TOKEN_FILE"`

	PollInterval   time.Duration `env:"POLL_INTERVAL" envDefault:"5s"`
	BannerTTL      time.Duration `env:"BANNER_TTL" envDefault:"3s"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"0s"`

	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFile  string     `env:"LOG_FILE" envDefault:"valtokens.log"`

	DevServer DevServerConfig `envPrefix:"DEVSERVER_"`
}

type DevServerConfig struct {
	Addr           string        `env:"ADDR" envDefault:":8001"`
	JWTSecret      string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	TokenExpiry    time.Duration `env:"TOKEN_EXPIRY" envDefault:"30m"`
	GameExpiry     time.Duration `env:"GAME_EXPIRY" envDefault:"30m"`
	LoginPerMinute int           `env:"LOGIN_PER_MINUTE" envDefault:"10"`
	LoginBurst     int           `env:"LOGIN_BURST" envDefault:"5"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if cfg.TokenFile == "" {
		cfg.TokenFile = defaultTokenFile()
	}

	if cfg.IsProduction() && (cfg.DevServer.JWTSecret == "" || cfg.DevServer.JWTSecret == "dev-secret-change-me") {
		return nil, fmt.Errorf("DEVSERVER_JWT_SECRET must be set in production")
	}

	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".valtokens", "session.json")
	}
	return filepath.Join(dir, "valtokens", "session.json")
}
