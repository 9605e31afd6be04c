package internal

import (
	"net/http"
	"shortsd/internal/controllers"
	"shortsd/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/api/files", http.HandlerFunc(apiController.GetFiles))
	routers.Get("/api/trending", http.HandlerFunc(apiController.GetTrending))
	routers.Get("/api/top", http.HandlerFunc(apiController.GetTop))
	routers.Get("/api/genres", http.HandlerFunc(apiController.GetGenres))
	routers.Get("/api/videos_by_genre", http.HandlerFunc(apiController.GetVideosByGenre))
	routers.Get("/api/search_queries", http.HandlerFunc(apiController.GetSearchQueries))
	routers.Get("/api/genre_queries", http.HandlerFunc(apiController.GetGenreQueries))
	routers.Get("/api/search_links", http.HandlerFunc(apiController.SearchLinks))
	routers.Get("/api/search_direct_links", http.HandlerFunc(apiController.SearchDirectLinks))
	routers.Get("/api/download/{id}", http.HandlerFunc(apiController.DownloadInfo))
	routers.Get("/api/direct_download/{id}", http.HandlerFunc(apiController.DirectDownload))
	routers.Get("/download/{id}", http.HandlerFunc(apiController.ServeAudio))

	routers.Post("/api/run_pipeline", http.HandlerFunc(apiController.RunPipeline))
	routers.Post("/api/search", http.HandlerFunc(apiController.Search))
	routers.Post("/api/search_and_download", http.HandlerFunc(apiController.SearchAndDownload))
	return routers
}
