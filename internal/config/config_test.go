package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("ADMIN_API_KEY", "secret")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.False(t, cfg.Server.DisableWebhookValidation)
	assert.Equal(t, time.Hour, cfg.Jobs.ReminderInterval)
	assert.Equal(t, 24*time.Hour, cfg.Jobs.ReminderAfter)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("ADMIN_API_KEY", "secret")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("MARKET_API_URL", "https://precios.example.com/")
	t.Setenv("MARKET_CACHE_TTL", "30m")
	t.Setenv("DISABLE_WEBHOOK_VALIDATION", "true")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "https://precios.example.com", cfg.Market.APIURL)
	assert.Equal(t, 30*time.Minute, cfg.Market.CacheTTL)
	assert.True(t, cfg.Server.DisableWebhookValidation)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("ADMIN_API_KEY", "secret")
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresAdminKeyOutsideDevelopment(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("ADMIN_API_KEY", "")

	t.Setenv("ENVIRONMENT", "production")
	_, err := Load()
	assert.ErrorContains(t, err, "ADMIN_API_KEY")

	t.Setenv("ENVIRONMENT", "development")
	_, err = Load()
	assert.NoError(t, err)
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", db.DSN())

	db.InstanceConnectionName = "proj:region:inst"
	assert.Equal(t, "host=/cloudsql/proj:region:inst user=u password=p dbname=n sslmode=disable", db.DSN())
}

func TestTwilioConfigured(t *testing.T) {
	assert.False(t, (&TwilioConfig{AccountSID: "AC1"}).TwilioConfigured())
	assert.True(t, (&TwilioConfig{AccountSID: "AC1", AuthToken: "t", WhatsAppFrom: "whatsapp:+1"}).TwilioConfigured())
}
