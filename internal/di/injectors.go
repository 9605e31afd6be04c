//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"shortsd/internal"
	"shortsd/internal/catalog"
	"shortsd/internal/controllers"
	"shortsd/internal/genre"
	"shortsd/internal/jobs"
	"shortsd/internal/media"
	"shortsd/internal/provider"
	"shortsd/internal/providers"
	"shortsd/internal/services"
	"shortsd/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		catalog.NewCatalogProvider,
		wire.Bind(new(services.CatalogInterface), new(*catalog.Store)),
		wire.Bind(new(providers.VideoCounter), new(*catalog.Store)),
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		provider.NewClient,
		wire.Bind(new(provider.Source), new(*provider.Client)),
		media.NewFFmpegTranscoder,
		wire.Bind(new(media.Transcoder), new(*media.FFmpegTranscoder)),
		media.NewYouTubeResolver,
		wire.Bind(new(media.Resolver), new(*media.YouTubeResolver)),
		genre.NewDefaultClassifier,

		services.NewIngestionService,
		services.NewRankingService,
		services.NewMediaService,
		services.NewPipelineService,

		jobs.NewZstdCompressor,
		jobs.NewBackupManager,
		jobs.NewScheduler,

		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewHandler,
		internal.NewApp,
	)

	return nil, nil, nil
}
