package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	adapterrepo "github.com/eslsoft/leitbox/internal/adapter/repository"
	"github.com/eslsoft/leitbox/internal/infrastructure/config"
	"github.com/eslsoft/leitbox/internal/infrastructure/server"
	"github.com/eslsoft/leitbox/internal/repository"
	"github.com/eslsoft/leitbox/internal/usecase"
)

// Container aggregates the application dependencies produced by Wire.
type Container struct {
	Logger *logrus.Logger
	Server *server.Server
}

// provideStore builds the Postgres-backed store with the configured
// catalog cache TTL.
func provideStore(cfg *config.Config, pool *pgxpool.Pool) repository.Store {
	return adapterrepo.NewStore(pool, cfg.Engine.CatalogCacheTTL)
}

func provideQueueUsecase(cfg *config.Config, store repository.Store) usecase.QueueUsecase {
	return usecase.NewQueueUsecase(store, cfg.Engine.QueueCap)
}

func provideTestUsecase(cfg *config.Config, store repository.Store) usecase.TestUsecase {
	return usecase.NewTestUsecase(store, cfg.Engine.TestLimit)
}
