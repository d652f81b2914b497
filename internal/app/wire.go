//go:build wireinject

package app

import (
	"ballooner/internal/config"
	"ballooner/internal/overlay"
	"ballooner/internal/transport/http/api"

	"github.com/google/wire"
)

var providerSet = wire.NewSet(
	provideBackendClient,
	provideCropper,
	provideRegistry,
	overlay.NewProjector,
	provideRecorder,
	provideAnalyzer,
	provideClickRouter,
	api.NewHandler,
	provideServer,
	newApp,
)

func buildAppWithWire(cfg *config.Config) (*App, error) {
	wire.Build(providerSet)
	return nil, nil
}
