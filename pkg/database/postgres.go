package database

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"inventory-plus/pkg/config"
)

// Connect opens the PostgreSQL pool through gorm.
func Connect(cfg config.DBConfig, debug bool, log zerolog.Logger) (*gorm.DB, error) {
	level := logger.Warn
	if debug {
		level = logger.Info
	}

	gormLogger := logger.New(
		&log,
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // pgbouncer/Supabase transaction mode
	}), &gorm.Config{
		Logger:      gormLogger,
		PrepareStmt: false,
		NowFunc:     func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info().Str("host", cfg.Host).Str("db", cfg.Name).Msg("database connection established")
	return db, nil
}
