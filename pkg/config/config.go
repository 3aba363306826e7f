package config

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Scheduling SchedulingConfig
	Invoices   InvoicesConfig
	Uploads    UploadsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulingConfig holds the booking calendar knobs: narration throughput,
// the early-booking discount ladder, and which narration styles go through
// manual coordination before they can be scheduled like a solo read.
type SchedulingConfig struct {
	WordsPerDay        int
	Timezone           string
	DiscountTiers      []DiscountTierConfig
	MultiVoiceStyles   []string
	AvailabilityTTL    time.Duration
	AvailabilityCached bool
}

// DiscountTierConfig is one rung of the discount ladder.
type DiscountTierConfig struct {
	MinDaysOut int
	Label      string
}

// InvoicesConfig controls ledger exports and signed download links.
type InvoicesConfig struct {
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

// UploadsConfig bounds file uploads for the admin content editor.
type UploadsConfig struct {
	StorageDir       string
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	wordsPerDay := v.GetInt("SCHEDULING_WORDS_PER_DAY")
	if wordsPerDay <= 0 {
		wordsPerDay = 6975
	}
	cfg.Scheduling = SchedulingConfig{
		WordsPerDay:        wordsPerDay,
		Timezone:           v.GetString("SCHEDULING_TIMEZONE"),
		DiscountTiers:      parseDiscountTiers(v.GetString("SCHEDULING_DISCOUNT_TIERS")),
		MultiVoiceStyles:   splitAndTrim(v.GetString("SCHEDULING_MULTI_VOICE_STYLES")),
		AvailabilityTTL:    parseDuration(v.GetString("AVAILABILITY_CACHE_TTL"), 5*time.Minute),
		AvailabilityCached: v.GetBool("AVAILABILITY_CACHE_ENABLED"),
	}

	cfg.Invoices = InvoicesConfig{
		StorageDir:        v.GetString("INVOICES_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("INVOICES_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("INVOICES_SIGNED_URL_TTL"), 24*time.Hour),
		WorkerConcurrency: v.GetInt("INVOICES_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("INVOICES_WORKER_RETRIES"),
	}

	maxUploadSize := v.GetInt64("UPLOADS_MAX_FILE_SIZE")
	if maxUploadSize <= 0 {
		maxUploadSize = 25 * 1024 * 1024
	}
	cfg.Uploads = UploadsConfig{
		StorageDir:       v.GetString("UPLOADS_STORAGE_DIR"),
		MaxFileSizeBytes: maxUploadSize,
		AllowedMIMEs:     splitAndTrim(v.GetString("UPLOADS_ALLOWED_MIME_TYPES")),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "studio_ops")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULING_WORDS_PER_DAY", 6975)
	v.SetDefault("SCHEDULING_TIMEZONE", "America/New_York")
	v.SetDefault("SCHEDULING_DISCOUNT_TIERS", "120:8%,90:7%,60:6%,30:5%")
	v.SetDefault("SCHEDULING_MULTI_VOICE_STYLES", "duet,multi-cast")
	v.SetDefault("AVAILABILITY_CACHE_TTL", "5m")
	v.SetDefault("AVAILABILITY_CACHE_ENABLED", false)

	v.SetDefault("INVOICES_STORAGE_DIR", "./exports")
	v.SetDefault("INVOICES_SIGNED_URL_SECRET", "dev_invoices_secret")
	v.SetDefault("INVOICES_SIGNED_URL_TTL", "24h")
	v.SetDefault("INVOICES_WORKER_CONCURRENCY", 1)
	v.SetDefault("INVOICES_WORKER_RETRIES", 3)

	v.SetDefault("UPLOADS_STORAGE_DIR", "./uploads")
	v.SetDefault("UPLOADS_MAX_FILE_SIZE", 25*1024*1024)
	v.SetDefault("UPLOADS_ALLOWED_MIME_TYPES", "audio/mpeg,audio/wav,image/jpeg,image/png,application/pdf")
}

// parseDiscountTiers reads a "minDaysOut:label" comma list, e.g. "120:8%,90:7%".
// Malformed entries are dropped.
func parseDiscountTiers(raw string) []DiscountTierConfig {
	parts := splitAndTrim(raw)
	tiers := make([]DiscountTierConfig, 0, len(parts))
	for _, part := range parts {
		fields := strings.SplitN(part, ":", 2)
		if len(fields) != 2 {
			continue
		}
		days, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		label := strings.TrimSpace(fields[1])
		if err != nil || days <= 0 || label == "" {
			continue
		}
		tiers = append(tiers, DiscountTierConfig{MinDaysOut: days, Label: label})
	}
	return tiers
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
