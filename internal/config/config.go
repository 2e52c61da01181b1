package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Data     DataConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DataConfig selects where the trip dataset is loaded from.
// Source "csv" reads CSVPath directly; "database" reloads previously
// ingested trips from PostgreSQL.
type DataConfig struct {
	Source    string
	CSVPath   string
	BatchSize int
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string
}

// LoadConfig reads configuration from environment variables with sensible
// defaults. Variables use the RIDE_ prefix with underscores, e.g.
// RIDE_SERVER_PORT, RIDE_DATABASE_HOST, RIDE_DATA_CSV_PATH.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RIDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "ride_analytics")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.conn_max_idle_time", "5m")

	v.SetDefault("data.source", "csv")
	v.SetDefault("data.csv_path", "./pune_uber_rides.csv")
	v.SetDefault("data.batch_size", 1000)

	v.SetDefault("logging.level", "info")

	cfg := &Config{
		Server: ServerConfig{
			Host:         v.GetString("server.host"),
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			IdleTimeout:  v.GetDuration("server.idle_timeout"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Database:        v.GetString("database.database"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetDuration("database.conn_max_idle_time"),
		},
		Data: DataConfig{
			Source:    v.GetString("data.source"),
			CSVPath:   v.GetString("data.csv_path"),
			BatchSize: v.GetInt("data.batch_size"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("logging.level"),
		},
	}

	return cfg, nil
}

// Validate checks the configuration for invalid combinations.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Data.Source {
	case "csv":
		if c.Data.CSVPath == "" {
			return fmt.Errorf("data source is csv but no csv path configured")
		}
	case "database":
		if c.Database.Host == "" || c.Database.Database == "" {
			return fmt.Errorf("data source is database but database connection is not configured")
		}
	default:
		return fmt.Errorf("invalid data source %q, expected csv or database", c.Data.Source)
	}

	if c.Data.BatchSize <= 0 {
		return fmt.Errorf("invalid batch size: %d", c.Data.BatchSize)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level %q", c.Logging.Level)
	}

	return nil
}
