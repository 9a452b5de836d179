//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"timeclock/internal"
	"timeclock/internal/controllers"
	"timeclock/internal/persistence"
	"timeclock/internal/providers"
	"timeclock/internal/services"
	"timeclock/internal/session"
	"timeclock/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewClock,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		session.NewCodec,
		services.NewRosterService,
		services.NewDirectoryPhotoSink,
		services.NewClockService,

		persistence.NewZstdCompressor,
		persistence.NewChecksumStore,
		persistence.NewManager,
		persistence.NewScheduler,

		controllers.NewClockController,
		controllers.NewRosterController,
		controllers.NewSnapshotController,
		controllers.NewHealthController,

		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
