package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_SQLiteDefaults(t *testing.T) {
	t.Setenv("ENV_TYPE", "LOCAL")
	t.Setenv("LOCAL_DB_DRIVER", "sqlite")
	t.Setenv("LOCAL_DB_NAME", "propertypro.db")
	t.Setenv("TRIAGE_TIMEOUT", "2s")
	t.Setenv("AUTH_DEV_LOGIN", "")

	cfg := LoadConfig()

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "propertypro.db", cfg.GetDSN())
	assert.Equal(t, 2*time.Second, cfg.TriageTimeout)
	assert.Equal(t, 15*time.Second, cfg.AssistantTimeout)
	assert.False(t, cfg.AuthDevLogin)
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.RedisEnabled())
}

func TestDevLoginRequiresCustomSecret(t *testing.T) {
	t.Setenv("ENV_TYPE", "LOCAL")
	t.Setenv("LOCAL_DB_DRIVER", "sqlite")
	t.Setenv("AUTH_DEV_LOGIN", "true")
	t.Setenv("JWT_SECRET_KEY", DefaultJWTSecretKey)

	cfg := LoadConfig()
	assert.True(t, cfg.AuthDevLogin)
	assert.Error(t, cfg.Validate())

	t.Setenv("JWT_SECRET_KEY", "a-real-secret")
	assert.NoError(t, LoadConfig().Validate())
}

func TestLoadConfig_PostgresRequiresCredentials(t *testing.T) {
	t.Setenv("ENV_TYPE", "SERVER")
	t.Setenv("SERVER_DB_DRIVER", "postgres")
	t.Setenv("SERVER_DB_USER", "")
	t.Setenv("SERVER_DB_PASSWORD", "")

	assert.Panics(t, func() { LoadConfig() })
}

func TestGetDSN_Postgres(t *testing.T) {
	cfg := &Config{DBDriver: "postgres", DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "pp", DBPort: "5432"}
	assert.Equal(t, "host=db user=u password=p dbname=pp port=5432 sslmode=disable TimeZone=UTC", cfg.GetDSN())

	cfg.DBDriver = "mysql"
	cfg.DBPort = "3306"
	assert.Equal(t, "u:p@tcp(db:3306)/pp?charset=utf8mb4&parseTime=True&loc=UTC", cfg.GetDSN())
}

func TestGetEnvAsDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_TIMEOUT", "soon")
	assert.Equal(t, 3*time.Second, getEnvAsDuration("SOME_TIMEOUT", 3*time.Second))
}
