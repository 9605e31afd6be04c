package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"shortsd/internal/catalog"
	"shortsd/internal/media"
	"shortsd/internal/models"
	"shortsd/internal/providers"
	"shortsd/internal/structures"
)

// DownloadReport lists what happened to each requested id.
type DownloadReport struct {
	Requested  int      `json:"requested"`
	Skipped    []string `json:"skipped"`
	Downloaded []string `json:"downloaded"`
	Failed     []string `json:"failed"`
}

type MediaServiceInterface interface {
	DirectLink(ctx context.Context, videoID string) (models.Video, models.AudioStream, error)
	Download(ctx context.Context, ids []string) (DownloadReport, error)
	AudioFile(ctx context.Context, videoID string) (string, error)
}

type MediaService struct {
	resolver media.Resolver
	catalog  CatalogInterface
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	dir      string
	now      func() time.Time
}

func NewMediaService(conf *structures.Config, resolver media.Resolver, catalog CatalogInterface,
	logger providers.Logger, metrics providers.MetricsProviderInterface) MediaServiceInterface {
	return &MediaService{
		resolver: resolver,
		catalog:  catalog,
		logger:   logger,
		metrics:  metrics,
		dir:      conf.Media.Dir,
		now:      time.Now,
	}
}

// DirectLink resolves the best audio stream of a stored video without
// downloading it.
func (s *MediaService) DirectLink(ctx context.Context, videoID string) (models.Video, models.AudioStream, error) {
	video, err := s.catalog.GetVideo(ctx, videoID)
	if err != nil {
		return video, models.AudioStream{}, err
	}
	stream, err := s.resolver.ResolveAudio(ctx, videoID)
	if err != nil {
		return video, stream, err
	}
	return video, stream, nil
}

// Download fetches audio for every id not downloaded yet into a YYYY/MM
// directory below the media root. Failures are logged and reported, they do
// not stop the batch.
func (s *MediaService) Download(ctx context.Context, ids []string) (DownloadReport, error) {
	report := DownloadReport{
		Requested:  len(ids),
		Skipped:    []string{},
		Downloaded: []string{},
		Failed:     []string{},
	}

	pending, err := s.catalog.NotDownloaded(ctx, ids)
	if err != nil {
		return report, err
	}
	pendingSet := make(map[string]struct{}, len(pending))
	for _, id := range pending {
		pendingSet[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := pendingSet[id]; !ok {
			report.Skipped = append(report.Skipped, id)
		}
	}
	if len(pending) == 0 {
		s.logger.Infof(providers.TypeApp, "Nothing to download")
		return report, nil
	}

	now := s.now().UTC()
	dir := filepath.Join(s.dir, fmt.Sprintf("%04d", now.Year()), fmt.Sprintf("%02d", int(now.Month())))

	for _, id := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		fetched, err := s.resolver.DownloadAudio(ctx, id, dir)
		if err != nil {
			s.logger.Warnf(providers.TypeApp, "Download of %s failed: %s", id, err)
			s.metrics.IncDownloads("error")
			report.Failed = append(report.Failed, id)
			continue
		}
		if fetched.Warning != nil {
			s.logger.Warnf(providers.TypeApp, "Download of %s kept as %s: %s", id, fetched.Format, fetched.Warning)
		}

		err = s.catalog.MarkDownload(ctx, models.Download{
			VideoID:      id,
			AudioPath:    fetched.Path,
			DownloadedAt: s.now(),
			DurationSec:  fetched.DurationSec,
			Format:       fetched.Format,
		})
		if err != nil {
			return report, err
		}
		s.logger.Infof(providers.TypeApp, "Downloaded %s to %s", id, fetched.Path)
		s.metrics.IncDownloads("ok")
		report.Downloaded = append(report.Downloaded, id)
	}
	return report, nil
}

// AudioFile returns the path of a stored audio file. A video without a
// download or whose file vanished yields catalog.ErrNotFound.
func (s *MediaService) AudioFile(ctx context.Context, videoID string) (string, error) {
	state, err := s.catalog.GetDownload(ctx, videoID)
	if err != nil {
		return "", err
	}
	if !state.IsDownloaded() {
		return "", fmt.Errorf("audio of %s: %w", videoID, catalog.ErrNotFound)
	}
	path := *state.AudioPath
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("audio file %s: %w", path, catalog.ErrNotFound)
		}
		return "", err
	}
	return path, nil
}
