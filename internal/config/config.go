// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full set of server settings. Every field has a default
// suitable for local development.
type Config struct {
	Port      string `env:"PORT" envDefault:"5175"`
	Env       string `env:"APP_ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"` // console | json

	DBPath string `env:"DB_PATH" envDefault:"./data/app.db"`

	WordsFile     string `env:"WORDS_FILE"`
	AnswersFile   string `env:"WORDS_ANSWERS_FILE"`
	AllowedFile   string `env:"WORDS_ALLOWED_FILE"`
	OverridesFile string `env:"OVERRIDES_FILE"`

	// Timezone decides which calendar day "today" is when the client does
	// not send its own date key.
	Timezone string `env:"DAILY_TZ" envDefault:"Local"`

	ClientOrigin      string        `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	AnonCookie        string        `env:"ANON_COOKIE" envDefault:"wordle_anon"`
	JWTSecret         string        `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH"`
	AdminTokenTTL     time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"12h"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}

// Production reports whether cookies should be marked Secure.
func (c Config) Production() bool {
	return c.Env == "production"
}

// Location resolves Timezone, falling back to the host's local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load DAILY_TZ %q: %w", c.Timezone, err)
	}
	return loc, nil
}
