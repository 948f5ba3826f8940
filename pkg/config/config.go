package config

import (
	"errors"
	"io/fs"
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
	Log        LogConfig
	CORS       CORSConfig
	Scheduler  SchedulerConfig
	Events     EventsConfig
	Attendance AttendanceConfig
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
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type LogConfig struct {
	Level  string
	Format string
}

// CORSConfig lists the admin console origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string
}

// SchedulerConfig controls the periodic event status loop.
type SchedulerConfig struct {
	Enabled  bool
	Interval time.Duration
}

// EventsConfig bounds the accepted event duration.
type EventsConfig struct {
	MinDuration time.Duration
	MaxDuration time.Duration
}

// AttendanceConfig tunes finalization thresholds and the finalization lock.
type AttendanceConfig struct {
	PresentRatio    float64
	IdleRatio       float64
	FinalizeLockTTL time.Duration
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
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
		Enabled:  v.GetBool("ENABLE_REDIS"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	cfg.Scheduler = SchedulerConfig{
		Enabled:  v.GetBool("ENABLE_STATUS_SCHEDULER"),
		Interval: parseDuration(v.GetString("SCHEDULER_INTERVAL"), 30*time.Second),
	}

	cfg.Events = EventsConfig{
		MinDuration: parseDuration(v.GetString("EVENT_MIN_DURATION"), 30*time.Minute),
		MaxDuration: parseDuration(v.GetString("EVENT_MAX_DURATION"), 6*time.Hour),
	}

	cfg.Attendance = AttendanceConfig{
		PresentRatio:    parseRatio(v.GetString("ATTENDANCE_PRESENT_RATIO"), 0.70),
		IdleRatio:       parseRatio(v.GetString("ATTENDANCE_IDLE_RATIO"), 0.30),
		FinalizeLockTTL: parseDuration(v.GetString("FINALIZE_LOCK_TTL"), 5*time.Minute),
	}
	if cfg.Attendance.IdleRatio > cfg.Attendance.PresentRatio {
		return nil, errors.New("ATTENDANCE_IDLE_RATIO must not exceed ATTENDANCE_PRESENT_RATIO")
	}
	if cfg.Events.MinDuration > cfg.Events.MaxDuration {
		return nil, errors.New("EVENT_MIN_DURATION must not exceed EVENT_MAX_DURATION")
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
	v.SetDefault("DB_NAME", "event_attendance")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("ENABLE_REDIS", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CORS_ALLOWED_ORIGINS", "")

	v.SetDefault("ENABLE_STATUS_SCHEDULER", true)
	v.SetDefault("SCHEDULER_INTERVAL", "30s")

	v.SetDefault("EVENT_MIN_DURATION", "30m")
	v.SetDefault("EVENT_MAX_DURATION", "6h")

	v.SetDefault("ATTENDANCE_PRESENT_RATIO", "0.70")
	v.SetDefault("ATTENDANCE_IDLE_RATIO", "0.30")
	v.SetDefault("FINALIZE_LOCK_TTL", "5m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}

	return d
}

func parseRatio(raw string, fallback float64) float64 {
	if raw == "" {
		return fallback
	}

	r, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || r < 0 || r > 1 {
		return fallback
	}

	return r
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
