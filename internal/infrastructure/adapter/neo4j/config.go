package neo4j

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config represents graph store connection configuration
type Config struct {
	URI                          string        `mapstructure:"uri"`
	Username                     string        `mapstructure:"username"`
	Password                     string        `mapstructure:"password"`
	Realm                        string        `mapstructure:"realm"`
	MaxConnectionPoolSize        int           `mapstructure:"max_connection_pool_size"`
	ConnectionAcquisitionTimeout time.Duration `mapstructure:"connection_acquisition_timeout"`
	ConnectTimeout               time.Duration `mapstructure:"connect_timeout"`
	UserAgent                    string        `mapstructure:"user_agent"`
	RetryAttempts                int           `mapstructure:"retry_attempts"` // total attempts including the first
	RetryDelay                   time.Duration `mapstructure:"retry_delay"`
}

// DefaultConfig returns a Config with default values. Credentials are never
// defaulted; they must come from configuration or flags.
func DefaultConfig() *Config {
	return &Config{
		URI:                          "bolt://localhost:7687",
		MaxConnectionPoolSize:        10,
		ConnectionAcquisitionTimeout: 30 * time.Second,
		ConnectTimeout:               5 * time.Second,
		UserAgent:                    "graph-migrator",
		RetryAttempts:                3,
		RetryDelay:                   5 * time.Second,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.URI == "" {
		return errors.New("store URI is required")
	}

	validSchemes := []string{"bolt://", "bolt+s://", "bolt+ssc://", "neo4j://", "neo4j+s://", "neo4j+ssc://"}
	valid := false
	for _, scheme := range validSchemes {
		if strings.HasPrefix(c.URI, scheme) {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unsupported store URI scheme: %s", c.URI)
	}

	if c.Username == "" && c.Password != "" {
		return errors.New("password given without a username")
	}
	if c.MaxConnectionPoolSize <= 0 {
		return fmt.Errorf("connection pool size must be positive, got: %d", c.MaxConnectionPoolSize)
	}
	if c.ConnectionAcquisitionTimeout <= 0 {
		return errors.New("connection acquisition timeout must be positive")
	}
	if c.ConnectTimeout <= 0 {
		return errors.New("connect timeout must be positive")
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1, got: %d", c.RetryAttempts)
	}
	if c.RetryDelay <= 0 {
		return errors.New("retry delay must be positive")
	}
	return nil
}

// WithCredentials returns a copy of the config with updated credentials
func (c *Config) WithCredentials(username, password string) *Config {
	newConfig := *c
	newConfig.Username = username
	newConfig.Password = password
	return &newConfig
}

// WithURI returns a copy of the config with an updated store URI
func (c *Config) WithURI(uri string) *Config {
	newConfig := *c
	newConfig.URI = uri
	return &newConfig
}
