// Package repository provides methods to work with DB
package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"time"

	"github.com/atwam/idmark/internal/model"
	"github.com/atwam/idmark/internal/repository/imgpostgres"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

type MarkRepo interface {
	Create(ctx context.Context, m *model.Mark) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.Mark, error)
	GetList(ctx context.Context, req *model.ListRequest) ([]model.Mark, error)
	SaveResult(ctx context.Context, m *model.Mark) error
	UpdateStatus(ctx context.Context, id string, newStat model.Status, errMsg ...string) error
	FetchOrphans(ctx context.Context, limit int) ([]string, error)
}

func NewPostgresMarkRepo(dbconn *dbpg.DB) MarkRepo {
	return imgpostgres.PostgresRepo{DB: dbconn}
}

func ConnectWithRetries(appConfig *config.Config, retryCount int, idleTime time.Duration) *dbpg.DB {
	dbOptions := dbpg.Options{
		MaxOpenConns:    5,
		MaxIdleConns:    5,
		ConnMaxLifetime: 10 * time.Minute,
	}
	dsnLink := appConfig.GetString("POSTGRES_DSN")
	var dbConn *dbpg.DB
	var err error

	for i := 0; i < retryCount; i++ {
		dbConn, err = dbpg.New(dsnLink, nil, &dbOptions)
		if err == nil {
			break
		}
		zlog.Logger.Warn().Err(err).Dur("wait", idleTime).Msg("Failed to connect to PGDB, waiting before next retry")
		time.Sleep(idleTime)
	}

	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Failed to connect to DB. Exiting the app...")
	}

	return dbConn
}

func MigrateWithRetries(db *sql.DB, migrationsPath string, retries int, idle time.Duration) {
	for i := 0; i < retries; i++ {
		zlog.Logger.Info().Int("try", i+1).Msg("Running migrations")
		err := runMigrate(db, migrationsPath)
		if err == nil {
			return
		}
		zlog.Logger.Warn().Err(err).Int("try", i+1).Dur("wait", idle).Msg("Migration try was unsuccessful")
		time.Sleep(idle)
	}
	zlog.Logger.Fatal().Msg("Out of migration retries. Exiting...")
}

func runMigrate(db *sql.DB, migrationsPath string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		return err
	}

	sourceURL := "file://" + absPath
	zlog.Logger.Info().Str("source", sourceURL).Msg("Running migrations")

	m, err := migrate.NewWithDatabaseInstance(
		sourceURL,
		"postgres",
		driver,
	)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	zlog.Logger.Info().Msg("Database migrations applied successfully")
	return nil
}
