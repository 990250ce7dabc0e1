// Package config reads the service and CLI settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mna11/ReadMe3D/internal/core/domain"
	"github.com/mna11/ReadMe3D/internal/core/scene"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type DB struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
}

// Enabled reports whether a database was configured at all.
func (d DB) Enabled() bool {
	return d.Name != ""
}

func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		d.User, d.Password, net.JoinHostPort(d.Host, d.Port), d.Name)
}

type Redis struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (r Redis) Enabled() bool {
	return r.Host != ""
}

type GitHub struct {
	Token    string
	Endpoint string
	Timeout  time.Duration
}

type Render struct {
	WindowSize    int
	PadMissing    bool
	Seed          uint64
	Title         string
	HeightFormula scene.HeightFormula
	PNGScale      float64
}

// SceneConfig applies the render settings to the stock layout.
func (r Render) SceneConfig() scene.Config {
	sc := scene.DefaultConfig()
	sc.WindowSize = r.WindowSize
	sc.HeightFormula = r.HeightFormula
	return sc
}

type Config struct {
	Port            string
	DB              DB
	Redis           Redis
	GitHub          GitHub
	Render          Render
	CacheTTL        time.Duration
	RateLimit       int
	RateWindow      time.Duration
	JWTSecret       string
	JWTIssuer       string
	TokenDuration   time.Duration
	RefreshUsers    []string
	RefreshInterval time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[CONFIG] Ignoring unreadable .env: %v", err)
	}
	return FromEnv()
}

// FromEnv is Load without the .env lookup.
func FromEnv() (*Config, error) {
	var errs []error

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		DB: DB{
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     os.Getenv("DB_NAME"),
		},
		Redis: Redis{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0, &errs),
		},
		GitHub: GitHub{
			Token:    os.Getenv("GITHUB_TOKEN"),
			Endpoint: os.Getenv("GITHUB_ENDPOINT"),
			Timeout:  getEnvDuration("GITHUB_TIMEOUT", 10*time.Second, &errs),
		},
		Render: Render{
			WindowSize:    getEnvInt("WINDOW_SIZE", domain.DefaultWindow, &errs),
			PadMissing:    getEnvBool("PAD_MISSING", false, &errs),
			Seed:          getEnvUint64("SEED", 0, &errs),
			Title:         os.Getenv("CITY_TITLE"),
			HeightFormula: scene.HeightFormula(getEnv("HEIGHT_FORMULA", string(scene.HeightLinear))),
			PNGScale:      getEnvFloat("PNG_SCALE", 1, &errs),
		},
		CacheTTL:        getEnvDuration("CACHE_TTL", 30*time.Minute, &errs),
		RateLimit:       getEnvInt("RATE_LIMIT", 100, &errs),
		RateWindow:      getEnvDuration("RATE_WINDOW", time.Minute, &errs),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTIssuer:       getEnv("JWT_ISSUER", "readme3d"),
		TokenDuration:   getEnvDuration("TOKEN_DURATION", 30*24*time.Hour, &errs),
		RefreshUsers:    splitList(os.Getenv("REFRESH_USERS")),
		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", time.Hour, &errs),
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if !domain.ValidWindowSize(c.Render.WindowSize) {
		return fmt.Errorf("%w: WINDOW_SIZE: %w", ErrInvalidConfig, domain.ErrInvalidWindowSize)
	}
	switch c.Render.HeightFormula {
	case scene.HeightLinear, scene.HeightLog:
	default:
		return fmt.Errorf("%w: HEIGHT_FORMULA %q", ErrInvalidConfig, c.Render.HeightFormula)
	}
	if c.Render.PNGScale <= 0 {
		return fmt.Errorf("%w: PNG_SCALE must be positive", ErrInvalidConfig)
	}
	if c.GitHub.Timeout <= 0 || c.CacheTTL <= 0 || c.RateWindow <= 0 {
		return fmt.Errorf("%w: durations must be positive", ErrInvalidConfig)
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("%w: RATE_LIMIT must be positive", ErrInvalidConfig)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, key, v))
		return fallback
	}
	return n
}

func getEnvUint64(key string, fallback uint64, errs *[]error) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%w: %s=%q is not an unsigned integer", ErrInvalidConfig, key, v))
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64, errs *[]error) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, key, v))
		return fallback
	}
	return f
}

func getEnvBool(key string, fallback bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidConfig, key, v))
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%w: %s=%q is not a duration", ErrInvalidConfig, key, v))
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
