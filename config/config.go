package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the search agent
type Config struct {
	General     GeneralConfig     `mapstructure:"general"`
	Server      ServerConfig      `mapstructure:"server"`
	Embedding   EmbeddingConfig   `mapstructure:"embedding"`
	Summarizer  SummarizerConfig  `mapstructure:"summarizer"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Acquisition AcquisitionConfig `mapstructure:"acquisition"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Recent      RecentConfig      `mapstructure:"recent"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	LogLevel    string `mapstructure:"log_level"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address       string `mapstructure:"address"`
	StreamEnabled bool   `mapstructure:"stream_enabled"`
}

func (s ServerConfig) Validate() error {
	if strings.TrimSpace(s.Address) == "" {
		return fmt.Errorf("server.address required")
	}
	return nil
}

// Model backends understood by the provider factory.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// EmbeddingConfig selects the model that turns queries into vectors.
type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider"`
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
}

func (e EmbeddingConfig) Validate() error {
	if err := validateProvider("embedding.provider", e.Provider); err != nil {
		return err
	}
	if strings.TrimSpace(e.Model) == "" {
		return fmt.Errorf("embedding.model required")
	}
	if e.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must be >= 0")
	}
	return nil
}

// SummarizerConfig selects the model used per source and its generation bounds.
type SummarizerConfig struct {
	Provider      string  `mapstructure:"provider"`
	Model         string  `mapstructure:"model"`
	APIKey        string  `mapstructure:"api_key"`
	BaseURL       string  `mapstructure:"base_url"`
	MaxInputChars int     `mapstructure:"max_input_chars"`
	MinLength     int     `mapstructure:"min_length"`
	MaxLength     int     `mapstructure:"max_length"`
	Temperature   float64 `mapstructure:"temperature"`
}

func (s SummarizerConfig) Validate() error {
	if err := validateProvider("summarizer.provider", s.Provider); err != nil {
		return err
	}
	if strings.TrimSpace(s.Model) == "" {
		return fmt.Errorf("summarizer.model required")
	}
	if s.MaxInputChars <= 0 {
		return fmt.Errorf("summarizer.max_input_chars must be > 0")
	}
	if s.MinLength < 0 || s.MaxLength <= 0 || s.MinLength > s.MaxLength {
		return fmt.Errorf("summarizer length bounds invalid: min=%d max=%d", s.MinLength, s.MaxLength)
	}
	return nil
}

// Cache backends.
const (
	BackendMemory   = "memory"
	BackendBadger   = "badger"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// CacheConfig controls the semantic dedup cache.
type CacheConfig struct {
	Backend   string  `mapstructure:"backend"`
	Threshold float64 `mapstructure:"threshold"`
	UseIndex  bool    `mapstructure:"use_index"`
}

func (c CacheConfig) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendBadger, BackendPostgres:
	default:
		return fmt.Errorf("cache.backend %q unsupported (memory, badger, postgres)", c.Backend)
	}
	if c.Threshold < -1 || c.Threshold > 1 {
		return fmt.Errorf("cache.threshold must be within [-1, 1]")
	}
	if c.UseIndex && c.Backend != BackendPostgres {
		return fmt.Errorf("cache.use_index requires the postgres backend")
	}
	return nil
}

// AcquisitionConfig controls web search and page fetching.
type AcquisitionConfig struct {
	Primary       string             `mapstructure:"primary"`
	Fallback      string             `mapstructure:"fallback"`
	MaxResults    int                `mapstructure:"max_results"`
	SearchTimeout time.Duration      `mapstructure:"search_timeout"`
	FetchTimeout  time.Duration      `mapstructure:"fetch_timeout"`
	MaxChars      int                `mapstructure:"max_chars"`
	Workers       int                `mapstructure:"workers"`
	Fetcher       string             `mapstructure:"fetcher"`
	UserAgent     string             `mapstructure:"user_agent"`
	Headless      bool               `mapstructure:"headless"`
	BraveAPIKey   string             `mapstructure:"brave_api_key"`
	SerperAPIKey  string             `mapstructure:"serper_api_key"`
	SourcePolicy  SourcePolicyConfig `mapstructure:"source_policy"`
}

func (a AcquisitionConfig) Validate() error {
	if strings.TrimSpace(a.Primary) == "" {
		return fmt.Errorf("acquisition.primary required")
	}
	if a.MaxResults <= 0 {
		return fmt.Errorf("acquisition.max_results must be > 0")
	}
	if a.SearchTimeout <= 0 || a.FetchTimeout <= 0 {
		return fmt.Errorf("acquisition timeouts must be > 0")
	}
	if a.MaxChars <= 0 {
		return fmt.Errorf("acquisition.max_chars must be > 0")
	}
	return a.SourcePolicy.Validate()
}

// Normalize fills derived defaults.
func (a AcquisitionConfig) Normalize() AcquisitionConfig {
	if a.Workers <= 0 {
		a.Workers = runtime.NumCPU() / 2
		if a.Workers < 1 {
			a.Workers = 1
		}
	}
	if a.Fetcher == "" {
		a.Fetcher = "http"
	}
	a.SourcePolicy = a.SourcePolicy.Normalize()
	return a
}

// StorageConfig groups connection settings for backing services.
type StorageConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Badger   BadgerConfig   `mapstructure:"badger"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (r RedisConfig) Validate() error {
	if strings.TrimSpace(r.Host) == "" {
		return fmt.Errorf("storage.redis.host required")
	}
	if strings.TrimSpace(r.Port) == "" {
		return fmt.Errorf("storage.redis.port required")
	}
	return nil
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// PostgresConfig contains Postgres connection settings
type PostgresConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	DBName   string        `mapstructure:"dbname"`
	SSLMode  string        `mapstructure:"sslmode"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (p PostgresConfig) Validate() error {
	if strings.TrimSpace(p.URL) != "" {
		return nil
	}
	if strings.TrimSpace(p.Host) == "" {
		return fmt.Errorf("storage.postgres.host required when url is not provided")
	}
	if strings.TrimSpace(p.DBName) == "" {
		return fmt.Errorf("storage.postgres.dbname required when url is not provided")
	}
	return nil
}

// DSN builds a connection string from the configured parts.
func (p PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	port := p.Port
	if port == "" {
		port = "5432"
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, port, p.DBName, ssl)
}

// BadgerConfig locates the embedded record store.
type BadgerConfig struct {
	Dir      string `mapstructure:"dir"`
	InMemory bool   `mapstructure:"in_memory"`
}

func (b BadgerConfig) Validate() error {
	if !b.InMemory && strings.TrimSpace(b.Dir) == "" {
		return fmt.Errorf("storage.badger.dir required unless in_memory is set")
	}
	return nil
}

// RecentConfig controls the recent-queries list.
type RecentConfig struct {
	Capacity int    `mapstructure:"capacity"`
	Backend  string `mapstructure:"backend"`
	Key      string `mapstructure:"key"`
}

func (r RecentConfig) Validate() error {
	if r.Capacity <= 0 {
		return fmt.Errorf("recent.capacity must be > 0")
	}
	switch r.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("recent.backend %q unsupported (memory, redis)", r.Backend)
	}
	return nil
}

// TelemetryConfig contains telemetry and monitoring settings
type TelemetryConfig struct {
	MetricsEnabled   bool    `mapstructure:"metrics_enabled"`
	SentryDSN        string  `mapstructure:"sentry_dsn"`
	SentrySampleRate float64 `mapstructure:"sentry_sample_rate"`
}

func (t TelemetryConfig) Validate() error {
	if t.SentrySampleRate < 0 || t.SentrySampleRate > 1 {
		return fmt.Errorf("telemetry.sentry_sample_rate must be within [0, 1]")
	}
	return nil
}

func validateProvider(field, p string) error {
	switch p {
	case ProviderOpenAI, ProviderOllama, ProviderGemini:
		return nil
	default:
		return fmt.Errorf("%s %q unsupported (openai, ollama, gemini)", field, p)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.log_level", "info")
	v.SetDefault("general.environment", "development")
	v.SetDefault("server.address", ":10001")
	v.SetDefault("server.stream_enabled", true)

	v.SetDefault("embedding.provider", ProviderOpenAI)
	v.SetDefault("embedding.model", "text-embedding-3-small")
	v.SetDefault("embedding.dimensions", 0)
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.base_url", "")

	v.SetDefault("summarizer.provider", ProviderOpenAI)
	v.SetDefault("summarizer.model", "gpt-4o-mini")
	v.SetDefault("summarizer.api_key", "")
	v.SetDefault("summarizer.base_url", "")
	v.SetDefault("summarizer.max_input_chars", 1024)
	v.SetDefault("summarizer.min_length", 30)
	v.SetDefault("summarizer.max_length", 120)
	v.SetDefault("summarizer.temperature", 0.2)

	v.SetDefault("cache.backend", BackendBadger)
	v.SetDefault("cache.threshold", 0.8)
	v.SetDefault("cache.use_index", false)

	v.SetDefault("acquisition.primary", "duckduckgo")
	v.SetDefault("acquisition.fallback", "google")
	v.SetDefault("acquisition.max_results", 5)
	v.SetDefault("acquisition.search_timeout", 10*time.Second)
	v.SetDefault("acquisition.fetch_timeout", 10*time.Second)
	v.SetDefault("acquisition.max_chars", 5000)
	v.SetDefault("acquisition.workers", 0)
	v.SetDefault("acquisition.fetcher", "http")
	v.SetDefault("acquisition.user_agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")
	v.SetDefault("acquisition.headless", true)
	v.SetDefault("acquisition.brave_api_key", "")
	v.SetDefault("acquisition.serper_api_key", "")
	v.SetDefault("acquisition.source_policy.disallow", []string{})

	v.SetDefault("storage.postgres.url", "")
	v.SetDefault("storage.postgres.host", "")
	v.SetDefault("storage.postgres.port", "5432")
	v.SetDefault("storage.postgres.user", "")
	v.SetDefault("storage.postgres.password", "")
	v.SetDefault("storage.postgres.dbname", "")
	v.SetDefault("storage.postgres.sslmode", "disable")
	v.SetDefault("storage.postgres.timeout", 5*time.Second)
	v.SetDefault("storage.redis.host", "localhost")
	v.SetDefault("storage.redis.port", "6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.timeout", 5*time.Second)
	v.SetDefault("storage.badger.dir", "./data/records")
	v.SetDefault("storage.badger.in_memory", false)

	v.SetDefault("recent.capacity", 10)
	v.SetDefault("recent.backend", BackendMemory)
	v.SetDefault("recent.key", "searchagent:recent")

	v.SetDefault("telemetry.metrics_enabled", true)
	v.SetDefault("telemetry.sentry_dsn", "")
	v.SetDefault("telemetry.sentry_sample_rate", 1.0)
}

// Load reads config from path (or the default search paths when empty),
// applies SEARCHAGENT_* env overrides and validates every section in use.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	setDefaults(v)

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		if exe, err := os.Executable(); err == nil {
			exeDir := filepath.Dir(exe)
			v.AddConfigPath(exeDir)
			v.AddConfigPath(filepath.Join(exeDir, "..", "config"))
		}
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("SEARCHAGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Acquisition = cfg.Acquisition.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section, including the storage sections the
// selected backends depend on.
func (c *Config) Validate() error {
	checks := []func() error{
		c.Server.Validate,
		c.Embedding.Validate,
		c.Summarizer.Validate,
		c.Cache.Validate,
		c.Acquisition.Validate,
		c.Recent.Validate,
		c.Telemetry.Validate,
	}
	switch c.Cache.Backend {
	case BackendPostgres:
		checks = append(checks, c.Storage.Postgres.Validate)
	case BackendBadger:
		checks = append(checks, c.Storage.Badger.Validate)
	}
	if c.Recent.Backend == BackendRedis {
		checks = append(checks, c.Storage.Redis.Validate)
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// LoadConfig loads config from file and panics on error
func LoadConfig(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	return cfg
}
