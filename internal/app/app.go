package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/config"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/constants"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/repositories"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/session"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
)

const (
	maxRetries     = 5
	initialBackoff = 500 * time.Millisecond
)

// App holds the process-wide resources. DB is nil when sessions live in
// memory.
type App struct {
	Config   *config.Config
	DB       *pgxpool.Pool
	Sessions session.Store
}

func NewApp(cfg *config.Config) (*App, error) {
	if !cfg.LDFlag_UsePostgresSessions {
		utils.Logger.Info("Postgres sessions disabled; keeping sessions in memory.")
		return &App{Config: cfg, Sessions: session.NewMemoryStore()}, nil
	}

	var (
		dbPool  *pgxpool.Pool
		err     error
		backoff = initialBackoff
	)

	for i := 1; i <= maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), constants.DBConnectTimeout)
		dbPool, err = newDBPool(ctx, cfg.DBUrl)
		cancel()
		if err == nil {
			utils.Logger.Infof("Successfully connected to database on attempt %d", i)
			break
		}

		utils.Logger.WithError(err).Warnf(
			"Failed to connect to database on attempt %d/%d. Retrying in %v...",
			i, maxRetries, backoff,
		)

		if i == maxRetries {
			return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", maxRetries, err)
		}

		time.Sleep(backoff)
		backoff *= 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.DBConnectTimeout)
	defer cancel()
	if err := repositories.EnsureSchema(ctx, dbPool); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("ensure portal schema: %w", err)
	}

	return &App{
		Config:   cfg,
		DB:       dbPool,
		Sessions: repositories.NewSessionRepository(dbPool, cfg.SessionTokenKey),
	}, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
		utils.Logger.Info("Database connection closed.")
	}
}

// newDBPool retires idle sockets before intermediary proxies drop them and
// keeps the rest warm.
func newDBPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnIdleTime = 2 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second
	return pgxpool.ConnectConfig(ctx, cfg)
}
