package config

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, "userdb", cfg.DB.Name)
	assert.Equal(t, 10, cfg.DB.MaxOpenConns)
	assert.Equal(t, 5, cfg.DB.ConnectRetrySeconds)
	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, "http://localhost:5173", cfg.CORS.AllowedOrigin)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USER", "svc")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "people")
	t.Setenv("PORT", "8081")
	t.Setenv("DB_MAX_OPEN_CONNS", "4")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, "svc", cfg.DB.User)
	assert.Equal(t, "pw", cfg.DB.Password)
	assert.Equal(t, "people", cfg.DB.Name)
	assert.Equal(t, "8081", cfg.App.Port)
	assert.Equal(t, 4, cfg.DB.MaxOpenConns)
	assert.Equal(t, "postgres://svc:pw@db.internal:5432/people?sslmode=disable", cfg.DB.DSN())
}

func TestDatabaseConfig_DSNEscapesCredentials(t *testing.T) {
	db := DatabaseConfig{
		Host:     "localhost",
		Port:     "5432",
		User:     "app user",
		Password: `p@ss w'o\rd:/?#`,
		Name:     "userdb",
		SSLMode:  "require",
	}

	u, err := url.Parse(db.DSN())
	require.NoError(t, err)

	pw, ok := u.User.Password()
	require.True(t, ok)
	assert.Equal(t, db.Password, pw)
	assert.Equal(t, "app user", u.User.Username())
	assert.Equal(t, "localhost:5432", u.Host)
	assert.Equal(t, "/userdb", u.Path)
	assert.Equal(t, "require", u.Query().Get("sslmode"))
}

func TestLoadConfig_AppEnvFile(t *testing.T) {
	dir := t.TempDir()
	content := "DB_DRIVER=sqlite\nDB_PATH=/tmp/users.db\nCORS_ALLOWED_ORIGIN=http://example.test\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "/tmp/users.db", cfg.DB.Path)
	assert.Equal(t, "http://example.test", cfg.CORS.AllowedOrigin)
}

func TestLoadConfig_ProductionLoggerDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.True(t, cfg.Logger.EnableSampling)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{
			name:   "unknown driver",
			mutate: func(c *Config) { c.DB.Driver = "oracle" },
			errMsg: "unsupported DB_DRIVER",
		},
		{
			name: "sqlite without path",
			mutate: func(c *Config) {
				c.DB.Driver = DriverSQLite
				c.DB.Path = ""
			},
			errMsg: "DB_PATH",
		},
		{
			name:   "zero pool size",
			mutate: func(c *Config) { c.DB.MaxOpenConns = 0 },
			errMsg: "DB_MAX_OPEN_CONNS",
		},
		{
			name:   "zero retry delay",
			mutate: func(c *Config) { c.DB.ConnectRetrySeconds = 0 },
			errMsg: "DB_CONNECT_RETRY_SECONDS",
		},
		{
			name:   "empty port",
			mutate: func(c *Config) { c.App.Port = "" },
			errMsg: "PORT",
		},
		{
			name: "unknown trace exporter",
			mutate: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.Exporter = "zipkin"
			},
			errMsg: "TRACING_EXPORTER",
		},
		{
			name:   "origin without scheme",
			mutate: func(c *Config) { c.CORS.AllowedOrigin = "localhost:5173" },
			errMsg: "CORS_ALLOWED_ORIGIN",
		},
		{
			name: "rate limit without burst",
			mutate: func(c *Config) {
				c.RateLimit.Enabled = true
				c.RateLimit.BurstCapacity = 0
			},
			errMsg: "RATE_LIMIT_BURST_CAPACITY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
