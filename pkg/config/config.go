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
	Env  string
	Port int

	Frontend  FrontendConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Timetable TimetableConfig
}

// FrontendConfig points at the built single-page app served in production.
type FrontendConfig struct {
	DistDir string
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
	AutoMigrate  bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Issuer            string
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

// TimetableConfig carries generator defaults and export calendar settings.
type TimetableConfig struct {
	Days             []int
	PeriodsPerDay    int
	CacheTTL         time.Duration
	Timezone         string
	FirstPeriodStart string
	PeriodLength     time.Duration
}

// IsProduction reports whether the production static-serving mode is active.
func (c *Config) IsProduction() bool {
	return c != nil && c.Env == EnvProduction
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = resolveEnv(v)
	cfg.Port = v.GetInt("PORT")

	cfg.Frontend = FrontendConfig{DistDir: v.GetString("FRONTEND_DIST_DIR")}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Issuer:            v.GetString("JWT_ISSUER"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Timetable = TimetableConfig{
		Days:             parseDays(v.GetString("TIMETABLE_DAYS")),
		PeriodsPerDay:    v.GetInt("TIMETABLE_PERIODS_PER_DAY"),
		CacheTTL:         parseDuration(v.GetString("TIMETABLE_CACHE_TTL"), 10*time.Minute),
		Timezone:         v.GetString("TIMETABLE_TIMEZONE"),
		FirstPeriodStart: v.GetString("TIMETABLE_FIRST_PERIOD_START"),
		PeriodLength:     parseDuration(v.GetString("TIMETABLE_PERIOD_LENGTH"), 45*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "")
	v.SetDefault("NODE_ENV", EnvDevelopment)
	v.SetDefault("PORT", 5000)
	v.SetDefault("FRONTEND_DIST_DIR", "./frontend/dist")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "schedulifyx")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "schedulifyx")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("TIMETABLE_DAYS", "1,2,3,4,5")
	v.SetDefault("TIMETABLE_PERIODS_PER_DAY", 6)
	v.SetDefault("TIMETABLE_CACHE_TTL", "10m")
	v.SetDefault("TIMETABLE_TIMEZONE", "UTC")
	v.SetDefault("TIMETABLE_FIRST_PERIOD_START", "08:00")
	v.SetDefault("TIMETABLE_PERIOD_LENGTH", "45m")
}

// resolveEnv prefers ENV and falls back to NODE_ENV so deployments of the
// previous stack keep their production switch.
func resolveEnv(v *viper.Viper) string {
	env := strings.ToLower(strings.TrimSpace(v.GetString("ENV")))
	if env == "" {
		env = strings.ToLower(strings.TrimSpace(v.GetString("NODE_ENV")))
	}
	if env == "" {
		return EnvDevelopment
	}
	return env
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
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

func parseDays(raw string) []int {
	var days []int
	seen := make(map[int]bool)
	for _, part := range splitAndTrim(raw) {
		day, err := strconv.Atoi(part)
		if err != nil || day < 1 || day > 7 || seen[day] {
			continue
		}
		seen[day] = true
		days = append(days, day)
	}
	if len(days) == 0 {
		return []int{1, 2, 3, 4, 5}
	}
	return days
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
