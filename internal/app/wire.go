//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/eslsoft/leitbox/internal/adapter/grading"
	"github.com/eslsoft/leitbox/internal/adapter/httpapi"
	"github.com/eslsoft/leitbox/internal/infrastructure/config"
	"github.com/eslsoft/leitbox/internal/infrastructure/database"
	"github.com/eslsoft/leitbox/internal/infrastructure/server"
	"github.com/eslsoft/leitbox/internal/usecase"
)

var configSet = wire.NewSet(
	config.Load,
)

var databaseSet = wire.NewSet(
	database.NewConnection,
	provideStore,
)

var usecaseSet = wire.NewSet(
	provideQueueUsecase,
	provideTestUsecase,
	usecase.NewOutcomeUsecase,
)

var serviceSet = wire.NewSet(
	grading.NewClient,
	httpapi.NewService,
)

var serverSet = wire.NewSet(
	server.NewLogger,
	server.NewServer,
)

// Initialize builds the application container using Wire.
func Initialize() (*Container, func(), error) {
	wire.Build(
		configSet,
		databaseSet,
		usecaseSet,
		serviceSet,
		serverSet,
		wire.Struct(new(Container), "Logger", "Server"),
	)
	return nil, nil, nil
}
