package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// baseValidConfig returns a fully-valid configuration object that callers
// can tweak inside table tests.
func baseValidConfig() Config {
	return Config{
		AppPort:            8080,
		LogLevel:           "info",
		LogFormat:          "json",
		StorageDriver:      StorageFile,
		StorageDir:         "./data",
		SQLitePath:         "./data/lumina.db",
		MongoURI:           "mongodb://localhost:27017",
		MongoDBName:        "test",
		AIModel:            "gemini-3-flash-preview",
		AITimeoutSec:       60,
		AIRatePerMin:       30,
		AutosaveDebounceMs: 800,
		DictationFrameSize: 4096,
		WSMaxSessionSec:    900,
		WSOutboxBuffer:     256,
	}
}

// clearConfigEnvVars removes every environment variable that the Config loader
// consumes so each test starts with a clean slate.
func clearConfigEnvVars(t *testing.T) {
	t.Helper()

	for _, k := range keys {
		if err := os.Unsetenv(k); err != nil {
			t.Logf("warning: failed to unset %s: %v", k, err)
		}
	}
}

func TestConfigLoadDefaults(t *testing.T) {
	clearConfigEnvVars(t)
	ResetCache()
	t.Cleanup(ResetCache)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.AppPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, StorageFile, cfg.StorageDriver)
	assert.Equal(t, "./data", cfg.StorageDir)
	assert.Equal(t, "gemini-3-flash-preview", cfg.AIModel)
	assert.Equal(t, 800, cfg.AutosaveDebounceMs)
	assert.False(t, cfg.AutosaveFlushOnClose)
	assert.Equal(t, 4096, cfg.DictationFrameSize)
	assert.Equal(t, 900, cfg.WSMaxSessionSec)
	assert.Equal(t, 256, cfg.WSOutboxBuffer)
	assert.Empty(t, cfg.GeminiAPIKey)
	assert.False(t, cfg.AuthEnabled())
	assert.False(t, cfg.ExportS3Enabled())
}

func TestConfigLoadFromEnv(t *testing.T) {
	clearConfigEnvVars(t)
	ResetCache()
	t.Cleanup(ResetCache)

	t.Setenv("APP_PORT", "9090")
	t.Setenv("STORAGE_DRIVER", " SQLite ")
	t.Setenv("SQLITE_PATH", "/tmp/notes.db")
	t.Setenv("GEMINI_API_KEY", "key-123")
	t.Setenv("AUTOSAVE_DEBOUNCE_MS", "250")
	t.Setenv("AUTOSAVE_FLUSH_ON_CLOSE", "true")
	t.Setenv("EXPORT_S3_BUCKET", "backups")
	t.Setenv("EXPORT_S3_ACCESS_KEY", "ak")
	t.Setenv("EXPORT_S3_SECRET_KEY", "sk")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.AppPort)
	assert.Equal(t, StorageSQLite, cfg.StorageDriver)
	assert.Equal(t, "/tmp/notes.db", cfg.SQLitePath)
	assert.Equal(t, "key-123", cfg.GeminiAPIKey)
	assert.Equal(t, 250, cfg.AutosaveDebounceMs)
	assert.True(t, cfg.AutosaveFlushOnClose)
	assert.True(t, cfg.ExportS3Enabled())
}

func TestConfigLoadCaches(t *testing.T) {
	clearConfigEnvVars(t)
	ResetCache()
	t.Cleanup(ResetCache)

	first, err := Load()
	require.NoError(t, err)

	t.Setenv("APP_PORT", "7070")
	second, err := Load()
	require.NoError(t, err)
	assert.Equal(t, first.AppPort, second.AppPort, "cached config should ignore later env changes")

	ResetCache()
	third, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, third.AppPort)
}

func TestConfigLoadInvalid(t *testing.T) {
	clearConfigEnvVars(t)
	ResetCache()
	t.Cleanup(ResetCache)

	t.Setenv("STORAGE_DRIVER", "postgres")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_DRIVER")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "zero port", mutate: func(c *Config) { c.AppPort = 0 }, wantErr: "APP_PORT"},
		{name: "empty log level", mutate: func(c *Config) { c.LogLevel = "" }, wantErr: "LOG_LEVEL"},
		{name: "empty log format", mutate: func(c *Config) { c.LogFormat = "" }, wantErr: "LOG_FORMAT"},
		{name: "unknown driver", mutate: func(c *Config) { c.StorageDriver = "redis" }, wantErr: "STORAGE_DRIVER"},
		{name: "file without dir", mutate: func(c *Config) { c.StorageDir = "" }, wantErr: "STORAGE_DIR"},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.StorageDriver = StorageSQLite; c.SQLitePath = "" },
			wantErr: "SQLITE_PATH",
		},
		{
			name:    "mongo without uri",
			mutate:  func(c *Config) { c.StorageDriver = StorageMongo; c.MongoURI = "" },
			wantErr: "MONGO_URI",
		},
		{
			name:    "mongo without db",
			mutate:  func(c *Config) { c.StorageDriver = StorageMongo; c.MongoDBName = "" },
			wantErr: "MONGO_DB_NAME",
		},
		{name: "empty model", mutate: func(c *Config) { c.AIModel = "" }, wantErr: "AI_MODEL"},
		{name: "zero ai timeout", mutate: func(c *Config) { c.AITimeoutSec = 0 }, wantErr: "AI_TIMEOUT_SEC"},
		{name: "negative rate", mutate: func(c *Config) { c.AIRatePerMin = -1 }, wantErr: "AI_RATE_PER_MIN"},
		{name: "zero debounce", mutate: func(c *Config) { c.AutosaveDebounceMs = 0 }, wantErr: "AUTOSAVE_DEBOUNCE_MS"},
		{name: "zero frame size", mutate: func(c *Config) { c.DictationFrameSize = 0 }, wantErr: "DICTATION_FRAME_SIZE"},
		{name: "zero ws session", mutate: func(c *Config) { c.WSMaxSessionSec = 0 }, wantErr: "WS_MAX_SESSION_SEC"},
		{name: "zero ws buffer", mutate: func(c *Config) { c.WSOutboxBuffer = 0 }, wantErr: "WS_OUTBOX_BUFFER"},
		{name: "short jwt secret", mutate: func(c *Config) { c.AuthJWTSecret = "short" }, wantErr: "AUTH_JWT_SECRET"},
		{
			name:   "long jwt secret",
			mutate: func(c *Config) { c.AuthJWTSecret = "this-is-a-super-secret-jwt-key-with-32-plus-chars" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseValidConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
