package config

import (
	"errors"

	"github.com/GearShare/service-rental/internal/platform/config"
)

const devJWTSecret = "dev-only-secret-change-me"

// StorageConfig controls where and how item images are stored.
type StorageConfig struct {
	UploadDir    string
	MaxBytes     int64
	MaxDimension int
}

// ServiceConfig holds all configuration for the rental service.
type ServiceConfig struct {
	Port        string
	AppEnv      string
	DBConfig    config.DatabaseConfig
	JWTConfig   config.JWTConfig
	KafkaConfig config.KafkaConfig
	Storage     StorageConfig
	CORSOrigins []string
	SeedDemo    bool
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *ServiceConfig) IsDevelopment() bool { return c.AppEnv == "development" }

// Load reads configuration from RENTAL_* environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("RENTAL")
	if err != nil {
		return nil, err
	}

	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 10<<20)
	v.SetDefault("IMAGE_MAX_DIMENSION", 1600)
	v.SetDefault("CORS_ORIGINS", "http://localhost:4200,https://localhost:4200")
	v.SetDefault("SEED_DEMO", false)

	cfg := &ServiceConfig{
		Port:        config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:      config.GetAppEnv(v),
		DBConfig:    config.LoadDatabaseConfig(v, "gearshare"),
		JWTConfig:   config.LoadJWTConfig(v),
		KafkaConfig: config.LoadKafkaConfig(v),
		Storage: StorageConfig{
			UploadDir:    v.GetString("UPLOAD_DIR"),
			MaxBytes:     v.GetInt64("UPLOAD_MAX_BYTES"),
			MaxDimension: v.GetInt("IMAGE_MAX_DIMENSION"),
		},
		CORSOrigins: config.SplitList(v.GetString("CORS_ORIGINS")),
		SeedDemo:    v.GetBool("SEED_DEMO"),
	}

	if cfg.JWTConfig.Secret == "" {
		if !cfg.IsDevelopment() {
			return nil, errors.New("RENTAL_JWT_SECRET is required outside development")
		}
		cfg.JWTConfig.Secret = devJWTSecret
	}
	if cfg.Storage.MaxBytes <= 0 {
		return nil, errors.New("RENTAL_UPLOAD_MAX_BYTES must be positive")
	}
	return cfg, nil
}
