package main

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type appConfig struct {
	ServerAddr      string        `mapstructure:"SERVER_ADDR" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`

	DatabaseDSN    string `mapstructure:"DB_DSN" validate:"required"`
	MigrationsPath string `mapstructure:"MIGRATIONS_PATH" validate:"required"`

	RedisAddr   string `mapstructure:"REDIS_ADDR" validate:"required"`
	RedisDB     int    `mapstructure:"REDIS_DB" validate:"gte=0,lte=16"`
	RedisPrefix string `mapstructure:"REDIS_PREFIX"`

	JWTSecret  string        `mapstructure:"JWT_SECRET" validate:"required,min=32"`
	JWTIssuer  string        `mapstructure:"JWT_ISSUER"`
	AccessTTL  time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`
	RefreshTTL time.Duration `mapstructure:"REFRESH_TOKEN_TTL"`

	CodeTTL    time.Duration `mapstructure:"CODE_TTL"`
	CodeDigits int           `mapstructure:"CODE_DIGITS" validate:"omitempty,gte=4,lte=10"`

	SMTPHost     string `mapstructure:"SMTP_HOST" validate:"required"`
	SMTPPort     int    `mapstructure:"SMTP_PORT" validate:"required"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	FromEmail    string `mapstructure:"FROM_EMAIL" validate:"required,email"`
}

func loadConfig(path string) (*appConfig, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg appConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
