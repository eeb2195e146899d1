package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("LEDGER_OVERDRAW_POLICY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.App.IsDevelopment())
	assert.Equal(t, 24*time.Hour, cfg.Alerts.DedupWindow)
	assert.Equal(t, 7, cfg.Alerts.ExpiryWarningDays)
	assert.Equal(t, 3, cfg.Alerts.ExpiryUrgentDays)
	assert.Equal(t, "admin@example.com", cfg.App.AdminEmail)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "prod-secret")
	t.Setenv("ALERT_DEDUP_WINDOW", "90m")
	t.Setenv("LEDGER_OVERDRAW_POLICY", "REJECT")
	t.Setenv("HTTP_PORT", "8081")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, cfg.Alerts.DedupWindow)
	assert.Equal(t, "reject", cfg.Ledger.OverdrawPolicy)
	assert.Equal(t, "0.0.0.0:8081", cfg.HTTP.Addr())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad policy", map[string]string{"LEDGER_OVERDRAW_POLICY": "ignore"}},
		{"bad window", map[string]string{"ALERT_DEDUP_WINDOW": "tomorrow"}},
		{"zero window", map[string]string{"ALERT_DEDUP_WINDOW": "0s"}},
		{"urgent exceeds warning", map[string]string{"ALERT_EXPIRY_URGENT_DAYS": "9"}},
		{"production without secret", map[string]string{"APP_ENV": "production", "JWT_SECRET": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", "development")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDBConfig_DSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "inv", Password: "p@ss", Name: "stock", SSLMode: "disable"}
	assert.Equal(t, "postgres://inv:p%40ss@db:5432/stock?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://override"
	assert.Equal(t, "postgres://override", c.DSN())
}

func TestAppConfig_Location(t *testing.T) {
	assert.Equal(t, time.UTC, AppConfig{}.Location())
	assert.Equal(t, time.UTC, AppConfig{Timezone: "Mars/Olympus"}.Location())
	assert.Equal(t, "Asia/Jakarta", AppConfig{Timezone: "Asia/Jakarta"}.Location().String())
}
