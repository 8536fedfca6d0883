// Package config provides configuration management using Viper
package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Top-N extraction modes
const (
	// TopNModeConcat joins every digit in the question ("top 1 and 0" -> 10).
	TopNModeConcat = "concat"
	// TopNModeFirst takes the first contiguous run of digits.
	TopNModeFirst = "first"
)

const defaultPrivateKey = "88888888888888888888888888888888"

// Config holds all configuration parameters for the application
type Config struct {
	// Application settings
	AppName     string   `mapstructure:"appname"`
	AppPort     string   `mapstructure:"appport"`
	Environment string   `mapstructure:"environment"`
	LogLevel    LogLevel `mapstructure:"loglevel"`
	PrivateKey  string   `mapstructure:"privatekey"`
	// APIKey guards the query history and metrics endpoints. Empty leaves them open.
	APIKey string `mapstructure:"apikey"`

	// File paths
	DatabasePath          string `mapstructure:"storagepath"`
	DatabaseName          string `mapstructure:"-"` // Derived from other settings
	DatasetPath           string `mapstructure:"datasetpath"`
	PublicDirectory       string `mapstructure:"publicdir"`
	PublicAssetsUrlPrefix string `mapstructure:"publicassetsurlprefix"`

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Database settings
	DatabaseMaxOpenConns int `mapstructure:"dbmaxopenconns"`
	DatabaseMaxIdleConns int `mapstructure:"dbmaxidleconns"`

	// Question handling
	TopNMode string `mapstructure:"topnmode"`

	// Job scheduling settings
	JobIntervalSeconds int `mapstructure:"jobintervalseconds"`

	// Data retention settings
	HistoryRetentionDays int `mapstructure:"historyretentiondays"`
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	once.Do(func() {
		v := viper.New()

		v.SetDefault("appname", "salesbi")
		v.SetDefault("appport", "3000")
		v.SetDefault("environment", Development)
		v.SetDefault("loglevel", string(LogLevelDebug))
		v.SetDefault("privatekey", defaultPrivateKey)
		v.SetDefault("apikey", "")
		v.SetDefault("storagepath", "storage")
		v.SetDefault("datasetpath", filepath.Join("data", "Sales_data.xlsx"))
		v.SetDefault("publicdir", "web")
		v.SetDefault("publicassetsurlprefix", "/")
		v.SetDefault("logsdir", "logs")
		v.SetDefault("logsmaxsizeinmb", 20)
		v.SetDefault("logsmaxbackups", 10)
		v.SetDefault("logsmaxageindays", 30)
		v.SetDefault("dbmaxopenconns", 0)
		v.SetDefault("dbmaxidleconns", 0)
		v.SetDefault("topnmode", TopNModeConcat)
		v.SetDefault("jobintervalseconds", 86400)
		v.SetDefault("historyretentiondays", 90)

		v.BindEnv("appname", "SALESBI_APP_NAME")
		v.BindEnv("appport", "SALESBI_APP_PORT")
		v.BindEnv("environment", "SALESBI_ENV")
		v.BindEnv("loglevel", "SALESBI_LOG_LEVEL")
		v.BindEnv("privatekey", "SALESBI_PRIVATE_KEY")
		v.BindEnv("apikey", "SALESBI_API_KEY")
		v.BindEnv("storagepath", "SALESBI_STORAGE_PATH")
		v.BindEnv("datasetpath", "SALESBI_DATASET_PATH")
		v.BindEnv("publicdir", "SALESBI_PUBLIC_DIR")
		v.BindEnv("publicassetsurlprefix", "SALESBI_PUBLIC_ASSETS_URL_PREFIX")
		v.BindEnv("logsdir", "SALESBI_LOGS_DIR")
		v.BindEnv("logsmaxsizeinmb", "SALESBI_LOGS_MAX_SIZE_IN_MB")
		v.BindEnv("logsmaxbackups", "SALESBI_LOGS_MAX_BACKUPS")
		v.BindEnv("logsmaxageindays", "SALESBI_LOGS_MAX_AGE_IN_DAYS")
		v.BindEnv("dbmaxopenconns", "SALESBI_DB_MAX_OPEN_CONNS")
		v.BindEnv("dbmaxidleconns", "SALESBI_DB_MAX_IDLE_CONNS")
		v.BindEnv("topnmode", "SALESBI_TOP_N_MODE")
		v.BindEnv("jobintervalseconds", "SALESBI_JOB_INTERVAL_SECONDS")
		v.BindEnv("historyretentiondays", "SALESBI_HISTORY_RETENTION_DAYS")

		cfg = &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			log.Fatalf("config: failed to unmarshal configuration: %v", err)
		}

		if err := cfg.validate(); err != nil {
			log.Fatalf("config: invalid configuration: %v", err)
		}

		// Set derived values
		cfg.DatabaseName = cfg.GetDatabasePath()

		if cfg.IsProduction() && cfg.PrivateKey == defaultPrivateKey {
			log.Fatal("Production requires a unique SALESBI_PRIVATE_KEY (cannot use default)")
		}
	})
	return cfg
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	validModes := map[string]bool{
		TopNModeConcat: true,
		TopNModeFirst:  true,
	}
	if !validModes[c.TopNMode] {
		return fmt.Errorf("invalid top-n mode: %s", c.TopNMode)
	}

	if c.DatasetPath == "" {
		return fmt.Errorf("dataset path is required")
	}

	if c.PrivateKey == "" {
		return fmt.Errorf("private key is required")
	}

	if c.HistoryRetentionDays < 0 {
		return fmt.Errorf("invalid history retention: %d days", c.HistoryRetentionDays)
	}

	return nil
}

// GetDatabasePath returns the appropriate database path based on environment
func (c *Config) GetDatabasePath() string {
	if c.DatabaseName == "" {
		c.DatabaseName = filepath.Join(c.DatabasePath,
			fmt.Sprintf("%s-%s.db", c.AppName, c.Environment))
	}
	return c.DatabaseName
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsTest returns true if the environment is test
func (c *Config) IsTest() bool {
	return c.Environment == Test
}

// GetPort returns the HTTP server port (implements cartridge.Config interface).
func (c *Config) GetPort() string {
	return c.AppPort
}

// GetPublicDirectory returns the path to public/static assets (implements cartridge.Config interface).
func (c *Config) GetPublicDirectory() string {
	return c.PublicDirectory
}

// GetAssetsPrefix returns the URL prefix for static assets (implements cartridge.Config interface).
func (c *Config) GetAssetsPrefix() string {
	return c.PublicAssetsUrlPrefix
}

// GetAppName returns the application name (implements cartridge.FactoryConfig interface).
func (c *Config) GetAppName() string {
	return c.AppName
}

// DatabaseDSN returns the database connection string (implements cartridge.FactoryConfig interface).
func (c *Config) DatabaseDSN() string {
	return c.GetDatabasePath()
}

// GetSessionSecret returns the cookie encryption key (implements cartridge.FactoryConfig interface).
func (c *Config) GetSessionSecret() string {
	return c.PrivateKey
}

// UseFirstNumber reports whether top-N bounds come from the first number in a question
// rather than from every digit in it.
func (c *Config) UseFirstNumber() bool {
	return c.TopNMode == TopNModeFirst
}

// GetMaxOpenConns returns the appropriate MaxOpenConns value based on environment.
// The history database sees a handful of writes per question, so the pool stays small.
func (c *Config) GetMaxOpenConns() int {
	if c.DatabaseMaxOpenConns > 0 {
		return c.DatabaseMaxOpenConns
	}

	if c.Environment == Test {
		return 1
	}

	return 4
}

// GetMaxIdleConns returns the appropriate MaxIdleConns value based on environment
func (c *Config) GetMaxIdleConns() int {
	if c.DatabaseMaxIdleConns > 0 {
		return c.DatabaseMaxIdleConns
	}

	if c.Environment == Test {
		return 1
	}

	return 2
}

// GetLogLevel returns the log level as a string (implements cartridge.LogConfigProvider).
func (c *Config) GetLogLevel() string {
	return string(c.LogLevel)
}

// GetLogDirectory returns the logs directory (implements cartridge.LogConfigProvider).
func (c *Config) GetLogDirectory() string {
	return c.LogsDirectory
}

// GetLogMaxSizeMB returns the max log file size in MB (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxSizeMB() int {
	return c.LogsMaxSizeInMb
}

// GetLogMaxBackups returns the max number of log backups (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxBackups() int {
	return c.LogsMaxBackups
}

// GetLogMaxAgeDays returns the max age in days for log files (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxAgeDays() int {
	return c.LogsMaxAgeInDays
}

// Reset clears the cached configuration; intended for tests.
func Reset() {
	once = sync.Once{}
	cfg = nil
}
