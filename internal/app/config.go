package app

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/orderdesk-backend/internal/platform/envutil"
	"github.com/yungbote/orderdesk-backend/internal/platform/logger"
)

type ServerConfig struct {
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // postgres or sqlite
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	Path     string `yaml:"path"` // sqlite only
}

type RedisConfig struct {
	Addr    string `yaml:"addr"` // empty means in-memory event bus
	Channel string `yaml:"channel"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type TelemetryConfig struct {
	ServiceName string `yaml:"service_name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type Config struct {
	LogMode   string          `yaml:"log_mode"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

func defaultConfig() Config {
	return Config{
		LogMode: "development",
		Server: ServerConfig{
			Port:        "8080",
			CORSOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Driver:  "postgres",
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			Name:    "orderdesk",
			SSLMode: "disable",
		},
		Redis: RedisConfig{
			Channel: "domain-events",
		},
		Auth: AuthConfig{
			JWTSecret: "defaultsecret",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "orderdesk",
			Environment: "development",
			Version:     "dev",
		},
	}
}

// LoadConfig reads the optional YAML file at path, then applies environment
// overrides. A missing file is fine; a malformed one is not.
func LoadConfig(path string, log *logger.Logger) (Config, error) {
	cfg := defaultConfig()

	path = strings.TrimSpace(path)
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config %q: %w", path, err)
			}
			if log != nil {
				log.Warn("config file not found, using defaults", "path", path)
			}
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	cfg.LogMode = envutil.GetEnv("LOG_MODE", cfg.LogMode, log)
	cfg.Server.Port = envutil.GetEnv("PORT", cfg.Server.Port, log)
	cfg.Database.Driver = envutil.GetEnv("DB_DRIVER", cfg.Database.Driver, log)
	cfg.Database.Host = envutil.GetEnv("POSTGRES_HOST", cfg.Database.Host, log)
	cfg.Database.Port = envutil.GetEnv("POSTGRES_PORT", cfg.Database.Port, log)
	cfg.Database.User = envutil.GetEnv("POSTGRES_USER", cfg.Database.User, log)
	cfg.Database.Password = envutil.GetEnv("POSTGRES_PASSWORD", cfg.Database.Password, log)
	cfg.Database.Name = envutil.GetEnv("POSTGRES_NAME", cfg.Database.Name, log)
	cfg.Database.SSLMode = envutil.GetEnv("POSTGRES_SSLMODE", cfg.Database.SSLMode, log)
	cfg.Database.Path = envutil.GetEnv("SQLITE_PATH", cfg.Database.Path, log)
	cfg.Redis.Addr = envutil.GetEnv("REDIS_ADDR", cfg.Redis.Addr, log)
	cfg.Redis.Channel = envutil.GetEnv("REDIS_CHANNEL", cfg.Redis.Channel, log)
	cfg.Auth.JWTSecret = envutil.GetEnv("JWT_SECRET_KEY", cfg.Auth.JWTSecret, log)
	cfg.Telemetry.Environment = envutil.GetEnv("APP_ENV", cfg.Telemetry.Environment, log)

	return cfg, nil
}
