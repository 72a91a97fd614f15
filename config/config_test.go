package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farellandr/eventpass/internal/models"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := loadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageMemory, cfg.StorageBackend)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "DATABASE")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("EVENT_VENUE", "Centro de Convenções")

	cfg, err := loadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StorageDatabase, cfg.StorageBackend)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "Centro de Convenções", cfg.Logistics().Venue)
}

func TestLoadConfig_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := loadFrom(viper.New())
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestValidate_RejectsUnknownBackend(t *testing.T) {
	cfg := &Config{StorageBackend: "redis", JWTSecret: "x", SessionTTL: time.Hour, AdminUsername: "a", AdminPassword: "b"}
	assert.ErrorContains(t, cfg.Validate(), "STORAGE_BACKEND")

	cfg.StorageBackend = StorageDatabase
	cfg.DBDriver = "mysql"
	assert.ErrorContains(t, cfg.Validate(), "DB_DRIVER")
}

func TestInitDatabase_SQLiteMigratesSchema(t *testing.T) {
	cfg := &Config{DBDriver: DriverSQLite, DBPath: filepath.Join(t.TempDir(), "eventpass.db")}

	db, err := InitDatabase(cfg)
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable(&models.Registration{}))
	assert.True(t, db.Migrator().HasTable(&models.EventInfo{}))
	assert.True(t, db.Migrator().HasTable(&models.Admin{}))
}
