package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"./.env",
	"../.env",
	"../../.env",
	"./configs/.env",
	"../configs/.env",
	"../../configs/.env",
}

// LoadConfig loads configuration from file based on the environment.
// A missing config file is not an error; defaults, environment variables
// and command line flags cover the common case.
func LoadConfig() (*Config, error) {
	// Load environment variables from .env file first
	_ = loadDotEnvFile()

	// Get environment
	env := getEnvironment()

	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")

	// Add config paths
	for _, path := range ConfigPaths {
		v.AddConfigPath(path)
	}

	// Set default values for non-critical settings
	setDefaults(v)

	// Read the config file when one exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Set environment variables to override config
	v.SetEnvPrefix("GM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Process environment variable overrides for sensitive values
	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	// Set the environment in the config
	config.Environment = env

	// Convert time.Duration fields from their raw values
	processDurations(&config)

	return &config, nil
}

// loadDotEnvFile attempts to load environment variables from .env files
func loadDotEnvFile() error {
	var lastError error

	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return nil // Successfully loaded .env file
			} else {
				lastError = err
			}
		}
	}

	// Return the last error encountered if no .env file was successfully loaded
	if lastError != nil {
		return fmt.Errorf("could not load any .env file: %w", lastError)
	}

	return fmt.Errorf("no .env file found in search paths")
}

// setDefaults sets default values for non-critical configuration
func setDefaults(v *viper.Viper) {
	// Non-critical server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 15)       // seconds
	v.SetDefault("server.writeTimeout", 15)      // seconds
	v.SetDefault("server.idleTimeout", 60)       // seconds
	v.SetDefault("server.readHeaderTimeout", 10) // seconds
	v.SetDefault("server.shutdownTimeout", 10)   // seconds

	// Graph store defaults for non-sensitive settings
	v.SetDefault("neo4j.uri", "bolt://localhost:7687")
	v.SetDefault("neo4j.maxConnectionPoolSize", 10)
	v.SetDefault("neo4j.connectionAcquisitionTimeout", 30) // seconds
	v.SetDefault("neo4j.connectTimeout", 5)                // seconds
	v.SetDefault("neo4j.retryAttempts", 3)
	v.SetDefault("neo4j.retryDelay", 5) // seconds

	// Migration defaults
	v.SetDefault("migrations.path", "./migrations")
	v.SetDefault("migrations.project", "")
	v.SetDefault("migrations.database", "")
	v.SetDefault("migrations.schemaDatabase", "")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
}

// getEnvironment determines the environment to use based on GM_ENV environment variable
func getEnvironment() string {
	env := os.Getenv("GM_ENV")
	if env == "" {
		// Default to development if not specified
		env = Development
	}
	return strings.ToLower(env)
}

// processEnvOverrides ensures environment variables override config values
// This function prioritizes environment variables over configuration file values
func processEnvOverrides(v *viper.Viper) {
	// Graph store sensitive information
	if uri := os.Getenv("GM_NEO4J_URI"); uri != "" {
		v.Set("neo4j.uri", uri)
	}
	if username := os.Getenv("GM_NEO4J_USERNAME"); username != "" {
		v.Set("neo4j.username", username)
	}
	if password := os.Getenv("GM_NEO4J_PASSWORD"); password != "" {
		v.Set("neo4j.password", password)
	}
	if realm := os.Getenv("GM_NEO4J_REALM"); realm != "" {
		v.Set("neo4j.realm", realm)
	}

	// Graph store performance settings
	if poolSize := getEnvInt("GM_NEO4J_MAX_POOL_SIZE", 0); poolSize > 0 {
		v.Set("neo4j.maxConnectionPoolSize", poolSize)
	}
	if acquisitionTimeout := getEnvInt("GM_NEO4J_ACQUISITION_TIMEOUT_SECONDS", 0); acquisitionTimeout > 0 {
		v.Set("neo4j.connectionAcquisitionTimeout", acquisitionTimeout)
	}
	if connectTimeout := getEnvInt("GM_NEO4J_CONNECT_TIMEOUT_SECONDS", 0); connectTimeout > 0 {
		v.Set("neo4j.connectTimeout", connectTimeout)
	}
	if retryAttempts := getEnvInt("GM_NEO4J_RETRY_ATTEMPTS", 0); retryAttempts > 0 {
		v.Set("neo4j.retryAttempts", retryAttempts)
	}
	if retryDelay := getEnvInt("GM_NEO4J_RETRY_DELAY_SECONDS", 0); retryDelay > 0 {
		v.Set("neo4j.retryDelay", retryDelay)
	}

	// Migration settings
	if path := os.Getenv("GM_MIGRATIONS_PATH"); path != "" {
		v.Set("migrations.path", path)
	}
	if project := os.Getenv("GM_MIGRATIONS_PROJECT"); project != "" {
		v.Set("migrations.project", project)
	}
	if database := os.Getenv("GM_MIGRATIONS_DATABASE"); database != "" {
		v.Set("migrations.database", database)
	}
	if schemaDatabase := os.Getenv("GM_MIGRATIONS_SCHEMA_DATABASE"); schemaDatabase != "" {
		v.Set("migrations.schemaDatabase", schemaDatabase)
	}

	// Server settings
	if serverHost := os.Getenv("GM_SERVER_HOST"); serverHost != "" {
		v.Set("server.host", serverHost)
	}
	if serverPort := os.Getenv("GM_SERVER_PORT"); serverPort != "" {
		v.Set("server.port", serverPort)
	}

	// Logger settings
	if logLevel := os.Getenv("GM_LOGGER_LEVEL"); logLevel != "" {
		v.Set("logger.level", logLevel)
	}
	if logFormat := os.Getenv("GM_LOGGER_FORMAT"); logFormat != "" {
		v.Set("logger.format", logFormat)
	}
}

// Helper function to get environment variable as int
func getEnvInt(name string, defaultVal int) int {
	valStr := os.Getenv(name)
	if valStr == "" {
		return defaultVal
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}

// processDurations converts time.Duration fields from their raw values to actual durations
func processDurations(config *Config) {
	// Convert seconds to time.Duration
	config.Server.ReadTimeout = time.Duration(config.Server.ReadTimeout) * time.Second
	config.Server.WriteTimeout = time.Duration(config.Server.WriteTimeout) * time.Second
	config.Server.IdleTimeout = time.Duration(config.Server.IdleTimeout) * time.Second
	config.Server.ReadHeaderTimeout = time.Duration(config.Server.ReadHeaderTimeout) * time.Second
	config.Server.ShutdownTimeout = time.Duration(config.Server.ShutdownTimeout) * time.Second

	config.Neo4j.ConnectionAcquisitionTimeout = time.Duration(config.Neo4j.ConnectionAcquisitionTimeout) * time.Second
	config.Neo4j.ConnectTimeout = time.Duration(config.Neo4j.ConnectTimeout) * time.Second
	config.Neo4j.RetryDelay = time.Duration(config.Neo4j.RetryDelay) * time.Second
}
