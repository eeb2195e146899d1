package app

import (
	"context"
	"testing"
	"time"

	"inventory-plus/internal/model"
	"inventory-plus/internal/testutil"
	"inventory-plus/pkg/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedAdmin(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := &config.Config{
		App:    config.AppConfig{Env: "development", Name: "Inventory Plus"},
		Alerts: config.AlertConfig{DedupWindow: time.Hour, ExpiryWarningDays: 7, ExpiryUrgentDays: 3, ScanBatchSize: 10},
		Ledger: config.LedgerConfig{OverdrawPolicy: "clamp"},
	}
	c := Build(cfg, db, nil, &testutil.Mailer{}, zerolog.Nop())
	ctx := context.Background()

	created, err := c.SeedAdmin(ctx, "root@example.com", "")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = c.SeedAdmin(ctx, "root@example.com", "changeme")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = c.SeedAdmin(ctx, "root@example.com", "changeme")
	require.NoError(t, err)
	assert.False(t, created)

	res, err := c.Auth.Login(ctx, "root@example.com", "changeme")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, res.User.Role)
	assert.Equal(t, model.AllCapabilities, res.Capabilities)
}
