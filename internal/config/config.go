package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	Redis        RedisConfig
	Push         PushConfig
	Geofence     GeofenceConfig
	Notification NotificationConfig
	Jobs         JobsConfig
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int32
	MinConns    int32
	AutoMigrate bool // apply embedded migrations on start
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Timezone       string
	AllowedOrigins []string
}

// RedisConfig is optional. An empty Addr keeps last-known positions in memory.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	PositionTTL time.Duration
}

type PushConfig struct {
	RelayURL    string
	AccessToken string
	Timeout     time.Duration
}

type GeofenceConfig struct {
	RadiusMeters      float64
	MinDistanceMeters float64
	MaxPositionAge    time.Duration // older device reports do not count for push-in
}

type NotificationConfig struct {
	WorkerCount   int
	BatchSize     int
	QueueSize     int
	FlushInterval time.Duration
}

type JobsConfig struct {
	StaleSessionHours int
	Interval          time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file loaded, using process environment", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	autoMigrate, err := strconv.ParseBool(getEnv("DB_AUTO_MIGRATE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_AUTO_MIGRATE: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:        getEnv("DB_HOST", "localhost"),
		Port:        dbPort,
		User:        getEnv("DB_USER", "postgres"),
		Password:    getEnv("DB_PASSWORD", ""),
		Name:        getEnv("DB_NAME", "faena"),
		SSLMode:     getEnv("DB_SSL_MODE", "disable"),
		MaxConns:    int32(maxConns),
		MinConns:    int32(minConns),
		AutoMigrate: autoMigrate,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Timezone:       getEnv("APP_TIMEZONE", "UTC"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:8081"}),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "12h"),
	}

	// Redis configuration
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	positionTTL, err := time.ParseDuration(getEnv("REDIS_POSITION_TTL", "12h"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_POSITION_TTL: %w", err)
	}

	config.Redis = RedisConfig{
		Addr:        getEnv("REDIS_ADDR", ""),
		Password:    getEnv("REDIS_PASSWORD", ""),
		DB:          redisDB,
		PositionTTL: positionTTL,
	}

	// Push relay configuration
	pushTimeout, err := time.ParseDuration(getEnv("PUSH_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PUSH_TIMEOUT: %w", err)
	}

	config.Push = PushConfig{
		RelayURL:    getEnv("PUSH_RELAY_URL", "https://exp.host/--/api/v2/push/send"),
		AccessToken: getEnv("PUSH_ACCESS_TOKEN", ""),
		Timeout:     pushTimeout,
	}

	// Geofence configuration
	radius, err := strconv.ParseFloat(getEnv("GEOFENCE_RADIUS_METERS", "200"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GEOFENCE_RADIUS_METERS: %w", err)
	}
	minDistance, err := strconv.ParseFloat(getEnv("GEOFENCE_MIN_DISTANCE_METERS", "10"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GEOFENCE_MIN_DISTANCE_METERS: %w", err)
	}
	maxPositionAge, err := time.ParseDuration(getEnv("LOCATION_MAX_AGE", "2m"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOCATION_MAX_AGE: %w", err)
	}

	config.Geofence = GeofenceConfig{
		RadiusMeters:      radius,
		MinDistanceMeters: minDistance,
		MaxPositionAge:    maxPositionAge,
	}

	// Notification worker configuration
	workers, err := strconv.Atoi(getEnv("NOTIFICATION_WORKERS", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_WORKERS: %w", err)
	}
	batchSize, err := strconv.Atoi(getEnv("NOTIFICATION_BATCH_SIZE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_BATCH_SIZE: %w", err)
	}
	queueSize, err := strconv.Atoi(getEnv("NOTIFICATION_QUEUE_SIZE", "1000"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_QUEUE_SIZE: %w", err)
	}
	flushInterval, err := time.ParseDuration(getEnv("NOTIFICATION_FLUSH_INTERVAL", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_FLUSH_INTERVAL: %w", err)
	}

	config.Notification = NotificationConfig{
		WorkerCount:   workers,
		BatchSize:     batchSize,
		QueueSize:     queueSize,
		FlushInterval: flushInterval,
	}

	// Background jobs
	staleHours, err := strconv.Atoi(getEnv("STALE_SESSION_HOURS", "16"))
	if err != nil {
		return nil, fmt.Errorf("invalid STALE_SESSION_HOURS: %w", err)
	}
	jobInterval, err := time.ParseDuration(getEnv("JOBS_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid JOBS_INTERVAL: %w", err)
	}

	config.Jobs = JobsConfig{
		StaleSessionHours: staleHours,
		Interval:          jobInterval,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("JWT_ACCESS_EXPIRATION_TIME is invalid: %w", err)
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE is invalid: %w", err)
	}
	if c.Geofence.RadiusMeters <= 0 {
		return fmt.Errorf("GEOFENCE_RADIUS_METERS must be positive")
	}
	if c.Geofence.MinDistanceMeters < 0 {
		return fmt.Errorf("GEOFENCE_MIN_DISTANCE_METERS must not be negative")
	}
	if c.Geofence.MaxPositionAge <= 0 {
		return fmt.Errorf("LOCATION_MAX_AGE must be positive")
	}
	if c.Jobs.StaleSessionHours <= 0 {
		return fmt.Errorf("STALE_SESSION_HOURS must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// LogLevel maps LOG_LEVEL onto slog levels, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback []string) []string {
	value := getEnv(env, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
