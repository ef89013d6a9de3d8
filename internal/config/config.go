// config — загрузка конфигурации клиента (CLI, веб-шлюз, fake-бэкенд).
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
//
// ENV всегда накладывается поверх файла. Переменные из ./.env, если он
// есть, подгружаются в окружение до чтения (уже заданные не перетираются).
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Бэкенды хранилища токенов.
const (
	TokensFile   = "file"
	TokensMemory = "memory"
	TokensRedis  = "redis"
)

type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	API      APIConfig     `yaml:"api"`
	Tokens   TokensConfig  `yaml:"tokens"`
	HTTP     HTTPConfig    `yaml:"http"`
	Metrics  MetricsConfig `yaml:"metrics"`
	Fake     FakeConfig    `yaml:"fake_backend"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// APIConfig — REST-бэкенд бронирования.
type APIConfig struct {
	BaseURL   string `yaml:"base_url"   env:"API_BASE_URL"   env-default:"http://localhost:8080"`
	UserAgent string `yaml:"user_agent" env:"API_USER_AGENT" env-default:"ticket-booking-client"`
}

// TokensConfig — где хранить пару токенов.
//
// file — JSON-файл на origin бэкенда в Dir (CLI между запусками);
// memory — до конца процесса; redis — хэш на сессию (веб-шлюз).
type TokensConfig struct {
	Backend  string        `yaml:"backend"   env:"TOKENS_BACKEND"   env-default:"file"`
	Dir      string        `yaml:"dir"       env:"TOKENS_DIR"`
	RedisURL string        `yaml:"redis_url" env:"TOKENS_REDIS_URL" env-default:"redis://localhost:6379/0"`
	Prefix   string        `yaml:"prefix"    env:"TOKENS_PREFIX"    env-default:"ticket-client:tokens:"`
	TTL      time.Duration `yaml:"ttl"       env:"TOKENS_TTL"       env-default:"168h"`
}

// Directory — каталог файлового хранилища; по умолчанию
// <UserConfigDir>/ticket-booking-client.
func (t TokensConfig) Directory() (string, error) {
	if t.Dir != "" {
		return t.Dir, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve tokens dir: %w", err)
	}

	return filepath.Join(base, "ticket-booking-client"), nil
}

// HTTPConfig — листенер веб-шлюза.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"127.0.0.1"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"3000"`
}

func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// MetricsConfig — отдельный HTTP для Prometheus.
type MetricsConfig struct {
	Host string `yaml:"host" env:"METRICS_HOST" env-default:"127.0.0.1"`
	Port string `yaml:"port" env:"METRICS_PORT" env-default:"3001"`
}

func (m MetricsConfig) Addr() string { return net.JoinHostPort(m.Host, m.Port) }

// FakeConfig — локальный стенд бэкенда.
type FakeConfig struct {
	Host       string        `yaml:"host"        env:"FAKE_HOST"        env-default:"127.0.0.1"`
	Port       string        `yaml:"port"        env:"FAKE_PORT"        env-default:"8080"`
	Secret     string        `yaml:"secret"      env:"FAKE_JWT_SECRET"  env-default:"fake-backend-secret"`
	AccessTTL  time.Duration `yaml:"access_ttl"  env:"FAKE_ACCESS_TTL"  env-default:"15m"`
	RefreshTTL time.Duration `yaml:"refresh_ttl" env:"FAKE_REFRESH_TTL" env-default:"168h"`
	Seed       bool          `yaml:"seed"        env:"FAKE_SEED"        env-default:"true"`
}

func (f FakeConfig) Addr() string { return net.JoinHostPort(f.Host, f.Port) }

// TimeoutConfig — таймауты. Request == 0 — без ограничения на запрос.
type TimeoutConfig struct {
	Request  time.Duration `yaml:"request"  env:"REQUEST_TIMEOUT"  env-default:"15s"`
	Shutdown time.Duration `yaml:"shutdown" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Validate проверяет значения, которые cleanenv проверить не может.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url: expected absolute http(s) URL, got %q", c.API.BaseURL)
	}

	switch c.Tokens.Backend {
	case TokensFile, TokensMemory, TokensRedis:
	default:
		return fmt.Errorf("tokens.backend: expected file, memory or redis, got %q", c.Tokens.Backend)
	}

	if c.Timeouts.Request < 0 {
		return fmt.Errorf("timeouts.request: must not be negative")
	}

	return nil
}

// MustLoad — паника при ошибке загрузки.
func MustLoad(path string) *Config {
	cfg, err := Load(path)

	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func load(path string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
	}

	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 1) --config
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, nil
}
