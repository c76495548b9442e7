package config

import "time"

// Config holds all configuration for the application
type Config struct {
	Environment string           `mapstructure:"environment"`
	Server      ServerConfig     `mapstructure:"server"`
	Neo4j       Neo4jConfig      `mapstructure:"neo4j"`
	Migrations  MigrationsConfig `mapstructure:"migrations"`
	Logger      LoggerConfig     `mapstructure:"logger"`
}

// ServerConfig contains settings for the status HTTP server
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
}

// Neo4jConfig contains graph store connection settings
type Neo4jConfig struct {
	URI                          string        `mapstructure:"uri"`
	Username                     string        `mapstructure:"username"`
	Password                     string        `mapstructure:"password"`
	Realm                        string        `mapstructure:"realm"`
	MaxConnectionPoolSize        int           `mapstructure:"maxConnectionPoolSize"`
	ConnectionAcquisitionTimeout time.Duration `mapstructure:"connectionAcquisitionTimeout"` // seconds
	ConnectTimeout               time.Duration `mapstructure:"connectTimeout"`               // seconds
	RetryAttempts                int           `mapstructure:"retryAttempts"`
	RetryDelay                   time.Duration `mapstructure:"retryDelay"` // seconds
}

// MigrationsConfig contains settings for locating and scoping migrations
type MigrationsConfig struct {
	Path           string `mapstructure:"path"`
	Project        string `mapstructure:"project"`
	Database       string `mapstructure:"database"`
	SchemaDatabase string `mapstructure:"schemaDatabase"`
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
