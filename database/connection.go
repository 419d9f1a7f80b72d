package database

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/agrocredito/agrocredito-backend/internal/config"
	"github.com/agrocredito/agrocredito-backend/internal/models"
)

// Connect opens the configured database. PostgreSQL serves production (over
// the Cloud SQL socket on Cloud Run), SQLite serves local runs.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		if cfg.InstanceConnectionName != "" {
			log.Info().Str("instance", cfg.InstanceConnectionName).Msg("Connecting to Cloud SQL via socket")
		} else {
			log.Info().Str("host", cfg.Host).Int("port", cfg.Port).Msg("Connecting to PostgreSQL")
		}
		dialector = postgres.Open(cfg.DSN())
	case "sqlite":
		log.Info().Str("path", cfg.SQLitePath).Msg("Connecting to SQLite")
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(log.Logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// SQLite allows one writer at a time
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	log.Info().Str("driver", cfg.Driver).Msg("Database connected")
	return db, nil
}

// gormWriter routes gorm's log lines into zerolog. gorm only emits warnings,
// errors and slow queries at the configured level.
type gormWriter struct {
	logger zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.logger.Warn().Msgf(format, args...)
}

func newGormLogger(logger zerolog.Logger) gormlogger.Interface {
	return gormlogger.New(gormWriter{logger: logger.With().Str("component", "gorm").Logger()}, gormlogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Migrate creates or updates the tables
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.IntakeSession{},
		&models.Assessment{},
		&models.LoanApplication{},
		&models.InboundMessage{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info().Msg("Database migrations completed")
	return nil
}
