package services

import (
	"context"

	"shortsd/internal/models"
)

// CatalogInterface is the persistence surface the services and controllers
// depend on. It is implemented by *catalog.Store.
type CatalogInterface interface {
	UpsertVideo(ctx context.Context, v models.Video) error
	AppendSnapshot(ctx context.Context, snap models.Snapshot) error
	RecentSnapshots(ctx context.Context, videoID string, limit int) ([]models.Snapshot, error)
	ShortFormCandidates(ctx context.Context, limit int) ([]models.VideoSummary, error)
	GetVideo(ctx context.Context, videoID string) (models.Video, error)
	VideosByGenre(ctx context.Context, genres []string, minConfidence float64) ([]models.GenreListing, error)
	GenreStatistics(ctx context.Context) (map[string]int, error)
	LatestListings(ctx context.Context, limit int) ([]models.Listing, error)
	SearchListings(ctx context.Context, query string, limit int) ([]models.Listing, error)
	DownloadStates(ctx context.Context, titleQuery string, limit int) ([]models.DownloadState, error)
	MarkDownload(ctx context.Context, d models.Download) error
	NotDownloaded(ctx context.Context, ids []string) ([]string, error)
	GetDownload(ctx context.Context, videoID string) (models.DownloadState, error)
	Downloads(ctx context.Context) ([]models.DownloadedFile, error)
	CountVideos(ctx context.Context) (int, error)
	Export(ctx context.Context) (*models.Dump, error)
	Import(ctx context.Context, dump *models.Dump) error
}
