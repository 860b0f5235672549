// Package config загружает настройки клиента синхронизации и dev backend:
// YAML файл, затем .env, затем переменные окружения TRENDY_*.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/iudanet/trendysync/internal/client/breaker"
	"github.com/iudanet/trendysync/internal/client/sync"
)

// EnvPrefix префикс переменных окружения
const EnvPrefix = "TRENDY_"

// MaxPageSize верхняя граница страницы changefeed на сервере
const MaxPageSize = 500

// Config настройки приложения
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	Backend BackendConfig `yaml:"backend"`
	// URL сервера trendy API
	ServerURL string `yaml:"server_url"`
	// Пространство имён курсора: production, staging, dev
	Environment string `yaml:"environment"`
	// Каталог локальных баз (state.db, store.db)
	DataDir        string        `yaml:"data_dir"`
	Sync           SyncConfig    `yaml:"sync"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// SyncConfig параметры движка синхронизации
type SyncConfig struct {
	PageSize             int           `yaml:"page_size"`
	BatchSize            int           `yaml:"batch_size"`
	BreakerThreshold     int           `yaml:"breaker_threshold"`
	BreakerBaseBackoff   time.Duration `yaml:"breaker_base_backoff"`
	BreakerMaxBackoff    time.Duration `yaml:"breaker_max_backoff"`
	BreakerMaxMultiplier float64       `yaml:"breaker_max_multiplier"`
}

// LogConfig формат и уровень логов
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// NewLogger создает slog логгер с уровнем и форматом из конфигурации.
// Неизвестный уровень трактуется как info.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// MetricsConfig экспорт метрик синхронизации
type MetricsConfig struct {
	// Файл для node_exporter textfile collector, пусто - не писать
	Textfile string `yaml:"textfile"`
}

// BackendConfig настройки dev backend (cmd/server)
type BackendConfig struct {
	Addr          string        `yaml:"addr"`
	DBPath        string        `yaml:"db_path"`
	JWTSecret     string        `yaml:"jwt_secret"`
	AccessTTL     time.Duration `yaml:"access_ttl"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl"`
	RateWindow    time.Duration `yaml:"rate_window"`
	RateLimit     int           `yaml:"rate_limit"`
	AuthRateLimit int           `yaml:"auth_rate_limit"`
	Faults        bool          `yaml:"faults"` // включает /debug/faults
}

// Default возвращает настройки по умолчанию
func Default() *Config {
	bc := breaker.DefaultConfig()
	sc := sync.DefaultConfig()
	return &Config{
		ServerURL:      "http://localhost:8080",
		Environment:    sc.Environment,
		DataDir:        defaultDataDir(),
		RequestTimeout: 30 * time.Second,
		Sync: SyncConfig{
			PageSize:             sc.PageSize,
			BatchSize:            sc.BatchSize,
			BreakerThreshold:     bc.Threshold,
			BreakerBaseBackoff:   bc.BaseBackoff,
			BreakerMaxBackoff:    bc.MaxBackoff,
			BreakerMaxMultiplier: bc.MaxMultiplier,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Backend: BackendConfig{
			Addr:          ":8080",
			DBPath:        "trendy-dev.db",
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    30 * 24 * time.Hour,
			RateWindow:    time.Minute,
			RateLimit:     600,
			AuthRateLimit: 20,
		},
	}
}

// Load читает YAML (если path не пуст), .env из текущего каталога
// и переменные окружения, затем проверяет результат
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	// .env не обязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v, ok := getEnvStr("SERVER_URL"); ok {
		c.ServerURL = v
	}
	if v, ok := getEnvStr("ENVIRONMENT"); ok {
		c.Environment = v
	}
	if v, ok := getEnvStr("DATA_DIR"); ok {
		c.DataDir = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := getEnvStr("LOG_FORMAT"); ok {
		c.Log.Format = v
	}
	if v, ok := getEnvStr("METRICS_TEXTFILE"); ok {
		c.Metrics.Textfile = v
	}
	if v, ok := getEnvStr("BACKEND_ADDR"); ok {
		c.Backend.Addr = v
	}
	if v, ok := getEnvStr("BACKEND_DB_PATH"); ok {
		c.Backend.DBPath = v
	}
	if v, ok := getEnvStr("JWT_SECRET"); ok {
		c.Backend.JWTSecret = v
	}
	if v, ok, err := getEnvBool("BACKEND_FAULTS"); err != nil {
		return err
	} else if ok {
		c.Backend.Faults = v
	}

	ints := []struct {
		dst *int
		key string
	}{
		{&c.Sync.PageSize, "SYNC_PAGE_SIZE"},
		{&c.Sync.BatchSize, "SYNC_BATCH_SIZE"},
		{&c.Sync.BreakerThreshold, "SYNC_BREAKER_THRESHOLD"},
		{&c.Backend.RateLimit, "BACKEND_RATE_LIMIT"},
		{&c.Backend.AuthRateLimit, "BACKEND_AUTH_RATE_LIMIT"},
	}
	for _, it := range ints {
		v, ok, err := getEnvInt(it.key)
		if err != nil {
			return err
		}
		if ok {
			*it.dst = v
		}
	}

	durations := []struct {
		dst *time.Duration
		key string
	}{
		{&c.RequestTimeout, "REQUEST_TIMEOUT"},
		{&c.Sync.BreakerBaseBackoff, "SYNC_BREAKER_BASE_BACKOFF"},
		{&c.Sync.BreakerMaxBackoff, "SYNC_BREAKER_MAX_BACKOFF"},
		{&c.Backend.AccessTTL, "JWT_ACCESS_TTL"},
		{&c.Backend.RefreshTTL, "JWT_REFRESH_TTL"},
		{&c.Backend.RateWindow, "BACKEND_RATE_WINDOW"},
	}
	for _, it := range durations {
		v, ok, err := getEnvDur(it.key)
		if err != nil {
			return err
		}
		if ok {
			*it.dst = v
		}
	}

	return nil
}

// Validate проверяет значения после всех переопределений
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("server_url %q must be an http(s) URL", c.ServerURL))
	}
	if strings.TrimSpace(c.Environment) == "" {
		errs = append(errs, errors.New("environment is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}
	if c.Sync.PageSize <= 0 || c.Sync.PageSize > MaxPageSize {
		errs = append(errs, fmt.Errorf("sync.page_size must be in 1..%d", MaxPageSize))
	}
	if c.Sync.BatchSize <= 0 {
		errs = append(errs, errors.New("sync.batch_size must be positive"))
	}
	if c.Sync.BreakerThreshold <= 0 {
		errs = append(errs, errors.New("sync.breaker_threshold must be positive"))
	}
	if c.Sync.BreakerBaseBackoff <= 0 || c.Sync.BreakerMaxBackoff < c.Sync.BreakerBaseBackoff {
		errs = append(errs, errors.New("sync.breaker_max_backoff must be at least breaker_base_backoff > 0"))
	}
	if c.Sync.BreakerMaxMultiplier < 1 {
		errs = append(errs, errors.New("sync.breaker_max_multiplier must be >= 1"))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug|info|warn|error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of text|json", c.Log.Format))
	}

	return errors.Join(errs...)
}

// ValidateBackend дополнительные проверки для cmd/server
func (c *Config) ValidateBackend() error {
	var errs []error
	if len(c.Backend.JWTSecret) < 16 {
		errs = append(errs, errors.New("backend.jwt_secret must be at least 16 characters (TRENDY_JWT_SECRET)"))
	}
	if c.Backend.AccessTTL <= 0 || c.Backend.RefreshTTL <= 0 {
		errs = append(errs, errors.New("backend token TTLs must be positive"))
	}
	if c.Backend.RateLimit < 0 || c.Backend.AuthRateLimit < 0 {
		errs = append(errs, errors.New("backend rate limits must not be negative"))
	}
	if (c.Backend.RateLimit > 0 || c.Backend.AuthRateLimit > 0) && c.Backend.RateWindow <= 0 {
		errs = append(errs, errors.New("backend.rate_window must be positive"))
	}
	return errors.Join(errs...)
}

// SyncEngineConfig настройки для sync.NewEngine
func (c *Config) SyncEngineConfig() sync.Config {
	sc := sync.DefaultConfig()
	sc.Environment = c.Environment
	sc.PageSize = c.Sync.PageSize
	sc.BatchSize = c.Sync.BatchSize
	sc.Breaker = breaker.Config{
		Threshold:     c.Sync.BreakerThreshold,
		BaseBackoff:   c.Sync.BreakerBaseBackoff,
		MaxBackoff:    c.Sync.BreakerMaxBackoff,
		MaxMultiplier: c.Sync.BreakerMaxMultiplier,
	}
	return sc
}

// StatePath путь к bbolt базе состояния
func (c *Config) StatePath() string {
	return filepath.Join(c.DataDir, "state.db")
}

// StorePath путь к SQLite базе сущностей и очереди
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, "store.db")
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "trendysync")
	}
	return ".trendysync"
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(EnvPrefix + key))
	return v, v != ""
}

func getEnvInt(key string) (int, bool, error) {
	s, ok := getEnvStr(key)
	if !ok {
		return 0, false, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return i, true, nil
}

func getEnvBool(key string) (bool, bool, error) {
	s, ok := getEnvStr(key)
	if !ok {
		return false, false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, false, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return b, true, nil
}

func getEnvDur(key string) (time.Duration, bool, error) {
	s, ok := getEnvStr(key)
	if !ok {
		return 0, false, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, false, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return d, true, nil
}
