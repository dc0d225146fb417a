// Package config holds the environment-driven configuration helpers shared by
// the service binaries.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the key/value connection string used by the GORM driver.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// MigrationURL returns the URL form understood by the migrate pgx/v5 driver.
func (c DatabaseConfig) MigrationURL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// KafkaConfig holds event bus settings. An empty broker list disables
// publishing.
type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
}

// Load reads an optional .env file and returns a viper instance bound to
// environment variables named PREFIX_KEY.
func Load(prefix string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SERVICE_PORT", ":8080")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("JWT_ISSUER", "gearshare")
	v.SetDefault("JWT_TTL", "60m")

	return v, nil
}

// GetAppEnv returns the deployment environment name.
func GetAppEnv(v *viper.Viper) string {
	return strings.ToLower(v.GetString("APP_ENV"))
}

// GetServicePort returns the listen address for key, prefixing ":" when only
// a port number was given.
func GetServicePort(v *viper.Viper, key string) string {
	port := v.GetString(key)
	if port != "" && !strings.Contains(port, ":") {
		port = ":" + port
	}
	return port
}

// LoadDatabaseConfig reads DB_* keys, falling back to defaultName for DB_NAME.
func LoadDatabaseConfig(v *viper.Viper, defaultName string) DatabaseConfig {
	v.SetDefault("DB_NAME", defaultName)
	return DatabaseConfig{
		Host:     v.GetString("DB_HOST"),
		Port:     v.GetString("DB_PORT"),
		User:     v.GetString("DB_USER"),
		Password: v.GetString("DB_PASSWORD"),
		DBName:   v.GetString("DB_NAME"),
		SSLMode:  v.GetString("DB_SSLMODE"),
	}
}

// LoadJWTConfig reads JWT_* keys.
func LoadJWTConfig(v *viper.Viper) JWTConfig {
	return JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
		TTL:    v.GetDuration("JWT_TTL"),
	}
}

// LoadKafkaConfig reads KAFKA_BROKERS (comma separated) and KAFKA_TOPIC_PREFIX.
func LoadKafkaConfig(v *viper.Viper) KafkaConfig {
	return KafkaConfig{
		Brokers:     SplitList(v.GetString("KAFKA_BROKERS")),
		TopicPrefix: v.GetString("KAFKA_TOPIC_PREFIX"),
	}
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
