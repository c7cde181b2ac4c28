package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultJWTSecret = "change-me-jwt-secret"
	defaultDSN       = "file:travelbooking.db?_pragma=foreign_keys(1)"
)

type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Database     DatabaseConfig     `mapstructure:"database"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Chapa        ChapaConfig        `mapstructure:"chapa"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Notification NotificationConfig `mapstructure:"notification"`
}

type AppConfig struct {
	Env           string   `mapstructure:"env"`
	Port          string   `mapstructure:"port"`
	LogLevel      string   `mapstructure:"log_level"`
	PublicBaseURL string   `mapstructure:"public_base_url"`
	CORSOrigins   []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type ChapaConfig struct {
	SecretKey string        `mapstructure:"secret_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Currency  string        `mapstructure:"currency"`
}

// RedisConfig selects the durable notification queue. An empty Addr keeps
// jobs in process memory.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

type NotificationConfig struct {
	Workers    int           `mapstructure:"workers"`
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	SMTP       SMTPConfig    `mapstructure:"smtp"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.public_base_url", "")
	v.SetDefault("app.cors_origins", []string{})

	v.SetDefault("database.url", defaultDSN)

	v.SetDefault("jwt.secret", defaultJWTSecret)
	v.SetDefault("jwt.ttl", "24h")

	v.SetDefault("chapa.secret_key", "")
	v.SetDefault("chapa.base_url", "https://api.chapa.co")
	v.SetDefault("chapa.timeout", "15s")
	v.SetDefault("chapa.currency", "ETB")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key", "travelbooking:notifications")

	v.SetDefault("notification.workers", 2)
	v.SetDefault("notification.max_retries", 3)
	v.SetDefault("notification.retry_delay", "5s")
	v.SetDefault("notification.smtp.host", "")
	v.SetDefault("notification.smtp.port", 587)
	v.SetDefault("notification.smtp.username", "")
	v.SetDefault("notification.smtp.password", "")
	v.SetDefault("notification.smtp.from", "no-reply@travelbooking.local")
}

// Load reads .env, then an optional YAML file, then the environment.
// Keys map to variables with dots replaced by underscores, so
// chapa.secret_key is CHAPA_SECRET_KEY.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("app.env", "APP_ENV", "ENV")
	_ = v.BindEnv("app.port", "APP_PORT", "PORT")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.App.Env = strings.ToLower(strings.TrimSpace(cfg.App.Env))

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return isProdLike(c.App.Env)
}

func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.Database.URL) == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.Chapa.Timeout <= 0 {
		return fmt.Errorf("CHAPA_TIMEOUT must be > 0")
	}
	if cfg.Notification.Workers < 1 {
		return fmt.Errorf("NOTIFICATION_WORKERS must be >= 1")
	}
	if cfg.Notification.MaxRetries < 0 {
		return fmt.Errorf("NOTIFICATION_MAX_RETRIES must be >= 0")
	}
	if cfg.Notification.RetryDelay < 0 {
		return fmt.Errorf("NOTIFICATION_RETRY_DELAY must be >= 0")
	}

	if isProdLike(cfg.App.Env) {
		if isEmptyOrDefault(cfg.JWT.Secret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if strings.TrimSpace(cfg.Chapa.SecretKey) == "" {
			return fmt.Errorf("in prod/release CHAPA_SECRET_KEY must be set")
		}
		if cfg.Database.URL == defaultDSN {
			return fmt.Errorf("in prod/release DATABASE_URL must be set")
		}
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}
