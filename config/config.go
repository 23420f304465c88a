package config

import (
	"errors"
	"os"
	"tenantry/common"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type ServiceConfig struct {
	ListenAddr string `env:"LISTEN_ADDR" env-default:":8080"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info"`

	InitialAdminPassword string `env:"INITIAL_ADMIN_PASSWORD" env-default:"admin123"`

	TokenExpiration time.Duration `env:"TOKEN_EXPIRATION" env-default:"24h"`
	DomainCacheTTL  time.Duration `env:"DOMAIN_CACHE_TTL" env-default:"1m"`

	// login attempts per second and burst, per client address
	LoginRate  float64 `env:"LOGIN_RATE" env-default:"1"`
	LoginBurst int     `env:"LOGIN_BURST" env-default:"5"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"3s"`
}

// LoadEnvFile loads envFile into the process environment when it exists.
func LoadEnvFile(envFile string) {
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		common.Log.Debugf("no %s file found, using environment variables or defaults", envFile)
		return
	}
	if err := godotenv.Load(envFile); err != nil {
		common.Log.WithError(err).Warnf("failed to load %s file", envFile)
		return
	}
	common.Log.Infof("configuration loaded from %s", envFile)
}

func ParseServiceConfigFromEnv() (*ServiceConfig, error) {
	c := ServiceConfig{}
	if err := cleanenv.ReadEnv(&c); err != nil {
		return nil, err
	}
	if c.TokenExpiration <= 0 {
		return nil, errors.New("TOKEN_EXPIRATION must be positive")
	}
	if c.DomainCacheTTL <= 0 {
		return nil, errors.New("DOMAIN_CACHE_TTL must be positive")
	}
	if c.LoginRate <= 0 || c.LoginBurst <= 0 {
		return nil, errors.New("LOGIN_RATE and LOGIN_BURST must be positive")
	}
	return &c, nil
}
