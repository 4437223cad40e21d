package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/EmpoweredVote/roadgeo/internal/config"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the store named by cfg.URL and verifies it is reachable.
// postgres:// URLs (and key=value DSNs) open PostGIS through pgx; sqlite:,
// file: and *.db URLs open the plain SQLite store.
func Open(cfg config.Database) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.URL)
	if err != nil {
		return nil, err
	}

	// Slow queries surface at warn level through logrus.
	lg := logger.New(
		logrus.StandardLogger(),
		logger.Config{
			SlowThreshold:             cfg.SlowThreshold,
			LogLevel:                  gormLevel(),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	d, err := gorm.Open(dialector, &gorm.Config{Logger: lg})
	if err != nil {
		return nil, Classify(fmt.Errorf("open database: %w", err))
	}

	sqlDB, err := d.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, Classify(fmt.Errorf("ping database: %w", err))
	}

	logrus.WithField("dialect", d.Dialector.Name()).Info("connected to database")
	return d, nil
}

func dialectorFor(url string) (gorm.Dialector, error) {
	url = strings.TrimSpace(url)
	switch {
	case url == "":
		return nil, fmt.Errorf("database url is empty")
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), nil
	case strings.HasPrefix(url, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(url, "sqlite://")), nil
	case strings.HasPrefix(url, "sqlite:"):
		return sqlite.Open(strings.TrimPrefix(url, "sqlite:")), nil
	case strings.HasPrefix(url, "file:"), strings.HasSuffix(url, ".db"), url == ":memory:":
		return sqlite.Open(url), nil
	default:
		// host=... user=... style DSN
		return postgres.Open(url), nil
	}
}

func gormLevel() logger.LogLevel {
	switch logrus.GetLevel() {
	case logrus.TraceLevel:
		return logger.Info
	case logrus.DebugLevel, logrus.InfoLevel, logrus.WarnLevel:
		return logger.Warn
	default:
		return logger.Error
	}
}

// IsPostgres reports whether d talks to PostgreSQL, and so whether PostGIS
// operators are available.
func IsPostgres(d *gorm.DB) bool {
	return d.Dialector.Name() == "postgres"
}
