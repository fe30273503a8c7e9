package config

import (
	"errors"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Storage drivers understood by STORAGE_DRIVER.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageMongo  = "mongo"
)

// Config holds all application configuration
type Config struct {
	AppPort               int    `mapstructure:"APP_PORT"`
	LogLevel              string `mapstructure:"LOG_LEVEL"`
	LogFormat             string `mapstructure:"LOG_FORMAT"`
	RequestLoggingEnabled bool   `mapstructure:"REQUEST_LOGGING_ENABLED"`
	RouteMetricsEnabled   bool   `mapstructure:"ROUTE_METRICS_ENABLED"`

	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	StorageDir    string `mapstructure:"STORAGE_DIR"`
	SQLitePath    string `mapstructure:"SQLITE_PATH"`
	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDBName   string `mapstructure:"MONGO_DB_NAME"`

	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	AIModel      string `mapstructure:"AI_MODEL"`
	AILiveModel  string `mapstructure:"AI_LIVE_MODEL"`
	AIBaseURL    string `mapstructure:"AI_BASE_URL"`
	AILiveURL    string `mapstructure:"AI_LIVE_URL"`
	AITimeoutSec int    `mapstructure:"AI_TIMEOUT_SEC"`
	AIRatePerMin int    `mapstructure:"AI_RATE_PER_MIN"`

	AutosaveDebounceMs   int  `mapstructure:"AUTOSAVE_DEBOUNCE_MS"`
	AutosaveFlushOnClose bool `mapstructure:"AUTOSAVE_FLUSH_ON_CLOSE"`
	DictationFrameSize   int  `mapstructure:"DICTATION_FRAME_SIZE"`

	WSMaxSessionSec int `mapstructure:"WS_MAX_SESSION_SEC"`
	WSOutboxBuffer  int `mapstructure:"WS_OUTBOX_BUFFER"`

	AuthJWTSecret string `mapstructure:"AUTH_JWT_SECRET"`

	ExportS3Bucket    string `mapstructure:"EXPORT_S3_BUCKET"`
	ExportS3Prefix    string `mapstructure:"EXPORT_S3_PREFIX"`
	ExportS3Region    string `mapstructure:"EXPORT_S3_REGION"`
	ExportS3Endpoint  string `mapstructure:"EXPORT_S3_ENDPOINT"`
	ExportS3AccessKey string `mapstructure:"EXPORT_S3_ACCESS_KEY"`
	ExportS3SecretKey string `mapstructure:"EXPORT_S3_SECRET_KEY"`

	PyroscopeServerAddress string `mapstructure:"PYROSCOPE_SERVER_ADDRESS"`
}

var (
	cachedConfig *Config
	configMutex  sync.RWMutex
)

// keys lists every variable Load binds, so AutomaticEnv also works for keys
// that have no default.
var keys = []string{
	"APP_PORT", "LOG_LEVEL", "LOG_FORMAT", "REQUEST_LOGGING_ENABLED", "ROUTE_METRICS_ENABLED",
	"STORAGE_DRIVER", "STORAGE_DIR", "SQLITE_PATH", "MONGO_URI", "MONGO_DB_NAME",
	"GEMINI_API_KEY", "AI_MODEL", "AI_LIVE_MODEL", "AI_BASE_URL", "AI_LIVE_URL",
	"AI_TIMEOUT_SEC", "AI_RATE_PER_MIN",
	"AUTOSAVE_DEBOUNCE_MS", "AUTOSAVE_FLUSH_ON_CLOSE", "DICTATION_FRAME_SIZE",
	"WS_MAX_SESSION_SEC", "WS_OUTBOX_BUFFER", "AUTH_JWT_SECRET",
	"EXPORT_S3_BUCKET", "EXPORT_S3_PREFIX", "EXPORT_S3_REGION", "EXPORT_S3_ENDPOINT",
	"EXPORT_S3_ACCESS_KEY", "EXPORT_S3_SECRET_KEY",
	"PYROSCOPE_SERVER_ADDRESS",
}

// Load loads configuration from environment variables and .env file
// It caches the result for subsequent calls
func Load() (Config, error) {
	configMutex.RLock()
	if cachedConfig != nil {
		defer configMutex.RUnlock()
		return *cachedConfig, nil
	}
	configMutex.RUnlock()

	configMutex.Lock()
	defer configMutex.Unlock()

	// Double-check in case another goroutine loaded it while we waited for the lock
	if cachedConfig != nil {
		return *cachedConfig, nil
	}

	v := viper.New()

	v.SetDefault("APP_PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("REQUEST_LOGGING_ENABLED", false)
	v.SetDefault("ROUTE_METRICS_ENABLED", true)
	v.SetDefault("STORAGE_DRIVER", StorageFile)
	v.SetDefault("STORAGE_DIR", "./data")
	v.SetDefault("SQLITE_PATH", "./data/lumina.db")
	v.SetDefault("MONGO_URI", "mongodb://mongo:27017")
	v.SetDefault("MONGO_DB_NAME", "lumina")
	v.SetDefault("AI_MODEL", "gemini-3-flash-preview")
	v.SetDefault("AI_LIVE_MODEL", "gemini-2.5-flash-native-audio-preview-09-2025")
	v.SetDefault("AI_BASE_URL", "https://generativelanguage.googleapis.com/")
	v.SetDefault("AI_LIVE_URL", "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent")
	v.SetDefault("AI_TIMEOUT_SEC", 60)
	v.SetDefault("AI_RATE_PER_MIN", 30)
	v.SetDefault("AUTOSAVE_DEBOUNCE_MS", 800)
	v.SetDefault("AUTOSAVE_FLUSH_ON_CLOSE", false)
	v.SetDefault("DICTATION_FRAME_SIZE", 4096)
	v.SetDefault("WS_MAX_SESSION_SEC", 900)
	v.SetDefault("WS_OUTBOX_BUFFER", 256)
	v.SetDefault("EXPORT_S3_PREFIX", "lumina")
	v.SetDefault("EXPORT_S3_REGION", "us-east-1")

	// Configure Viper to read from .env file (if present)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	// Try to read .env file (it's okay if it doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	// Override with OS environment variables
	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	cachedConfig = &cfg

	return cfg, nil
}

// ResetCache clears the cached configuration (for testing purposes)
func ResetCache() {
	configMutex.Lock()
	defer configMutex.Unlock()
	cachedConfig = nil
}

// ExportS3Enabled reports whether enough S3 settings are present to upload exports.
func (c Config) ExportS3Enabled() bool {
	return c.ExportS3Bucket != "" && c.ExportS3AccessKey != "" && c.ExportS3SecretKey != ""
}

// AuthEnabled reports whether API requests must carry a bearer token.
func (c Config) AuthEnabled() bool {
	return c.AuthJWTSecret != ""
}

// Validate checks if required configuration fields are properly set
func (c Config) Validate() error {
	if c.AppPort <= 0 {
		return errors.New("APP_PORT must be greater than 0")
	}
	if c.LogLevel == "" {
		return errors.New("LOG_LEVEL cannot be empty")
	}
	if c.LogFormat == "" {
		return errors.New("LOG_FORMAT cannot be empty")
	}
	switch c.StorageDriver {
	case StorageFile:
		if c.StorageDir == "" {
			return errors.New("STORAGE_DIR cannot be empty")
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH cannot be empty")
		}
	case StorageMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI cannot be empty")
		}
		if c.MongoDBName == "" {
			return errors.New("MONGO_DB_NAME cannot be empty")
		}
	default:
		return errors.New("STORAGE_DRIVER must be one of file, sqlite, mongo")
	}
	if c.AIModel == "" {
		return errors.New("AI_MODEL cannot be empty")
	}
	if c.AITimeoutSec <= 0 {
		return errors.New("AI_TIMEOUT_SEC must be greater than 0")
	}
	if c.AIRatePerMin < 0 {
		return errors.New("AI_RATE_PER_MIN cannot be negative")
	}
	if c.AutosaveDebounceMs <= 0 {
		return errors.New("AUTOSAVE_DEBOUNCE_MS must be greater than 0")
	}
	if c.DictationFrameSize <= 0 {
		return errors.New("DICTATION_FRAME_SIZE must be greater than 0")
	}
	if c.WSMaxSessionSec <= 0 {
		return errors.New("WS_MAX_SESSION_SEC must be greater than 0")
	}
	if c.WSOutboxBuffer <= 0 {
		return errors.New("WS_OUTBOX_BUFFER must be greater than 0")
	}
	if c.AuthJWTSecret != "" && len(c.AuthJWTSecret) < 32 {
		return errors.New("AUTH_JWT_SECRET must be at least 32 characters")
	}
	return nil
}
