package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("AUTH_ENABLED", "false")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.False(t, cfg.AuthEnabled)
	assert.Equal(t, "/api", cfg.APIPrefix)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("AUTH_ENABLED", "")

	cfg := Load()

	assert.Equal(t, BackendFirestore, cfg.StoreBackend)
	assert.True(t, cfg.AuthEnabled)
	assert.True(t, cfg.NeedsFirebase())
	assert.Equal(t, 900, cfg.MinIO.PresignExpirySec)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *AppConfig)
		wantErr string
	}{
		{
			name:   "memory backend",
			mutate: func(c *AppConfig) { c.StoreBackend = BackendMemory },
		},
		{
			name:   "firestore backend",
			mutate: func(c *AppConfig) { c.StoreBackend = BackendFirestore },
		},
		{
			name: "postgres backend complete",
			mutate: func(c *AppConfig) {
				c.StoreBackend = BackendPostgres
				c.Database.Host, c.Database.User, c.Database.Name = "h", "u", "n"
			},
		},
		{
			name:    "postgres backend missing host",
			mutate:  func(c *AppConfig) { c.StoreBackend = BackendPostgres },
			wantErr: "DB_HOST",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *AppConfig) { c.StoreBackend = "mongo" },
			wantErr: "unknown STORE_BACKEND",
		},
		{
			name: "prefix without slash",
			mutate: func(c *AppConfig) {
				c.StoreBackend = BackendMemory
				c.APIPrefix = "api"
			},
			wantErr: "API_PREFIX",
		},
		{
			name: "missing port",
			mutate: func(c *AppConfig) {
				c.StoreBackend = BackendMemory
				c.Port = ""
			},
			wantErr: "PORT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &AppConfig{Port: "8080", APIPrefix: "/api"}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestNeedsFirebase(t *testing.T) {
	assert.False(t, (&AppConfig{StoreBackend: BackendMemory}).NeedsFirebase())
	assert.True(t, (&AppConfig{StoreBackend: BackendMemory, AuthEnabled: true}).NeedsFirebase())
	assert.True(t, (&AppConfig{StoreBackend: BackendFirestore}).NeedsFirebase())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}
