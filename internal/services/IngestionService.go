package services

import (
	"context"
	"fmt"
	"time"

	"shortsd/internal/genre"
	"shortsd/internal/provider"
	"shortsd/internal/providers"
	"shortsd/internal/structures"
)

const (
	SourcePopular = "popular"
	SourceSearch  = "search"
	SourceQuery   = "query"
)

type IngestionServiceInterface interface {
	FetchPopular(ctx context.Context) (int, error)
	SearchTrending(ctx context.Context) (int, error)
	SearchQuery(ctx context.Context, query string, maxResults int) (int, error)
}

// IngestionService pulls items from the provider, keeps the short-form ones,
// classifies them and records a snapshot for each.
type IngestionService struct {
	source     provider.Source
	catalog    CatalogInterface
	classifier *genre.Classifier
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface

	region    string
	shortsMax int
	queries   []string
	searchMax int
	now       func() time.Time
}

func NewIngestionService(conf *structures.Config, source provider.Source, catalog CatalogInterface,
	classifier *genre.Classifier, logger providers.Logger, metrics providers.MetricsProviderInterface) IngestionServiceInterface {
	return newIngestionService(conf, source, catalog, classifier, logger, metrics)
}

func newIngestionService(conf *structures.Config, source provider.Source, catalog CatalogInterface,
	classifier *genre.Classifier, logger providers.Logger, metrics providers.MetricsProviderInterface) *IngestionService {
	return &IngestionService{
		source:     source,
		catalog:    catalog,
		classifier: classifier,
		logger:     logger,
		metrics:    metrics,
		region:     conf.Provider.Region,
		shortsMax:  conf.Ingestion.ShortsMaxSeconds,
		queries:    append([]string(nil), conf.Provider.SearchQueries...),
		searchMax:  conf.Provider.SearchMaxResults,
		now:        time.Now,
	}
}

// FetchPopular walks every page of the mostPopular chart.
func (s *IngestionService) FetchPopular(ctx context.Context) (int, error) {
	total := 0
	cursor := ""
	for {
		page, err := s.source.FetchPage(ctx, cursor)
		if err != nil {
			s.metrics.AddIngested(SourcePopular, total)
			return total, err
		}

		n, err := s.store(ctx, page.Items)
		total += n
		if err != nil {
			s.metrics.AddIngested(SourcePopular, total)
			return total, err
		}

		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	s.logger.Infof(providers.TypeIngest, "Stored %d short-form items from the popular chart", total)
	s.metrics.AddIngested(SourcePopular, total)
	return total, nil
}

// SearchTrending runs every configured search query. A failing query is
// logged and skipped.
func (s *IngestionService) SearchTrending(ctx context.Context) (int, error) {
	total := 0
	for _, q := range s.queries {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		n, err := s.searchAndStore(ctx, q, s.searchMax)
		total += n
		if err != nil {
			if ctx.Err() != nil {
				return total, ctx.Err()
			}
			s.logger.Warnf(providers.TypeIngest, "Search %q failed: %s", q, err)
			continue
		}
		s.logger.Debugf(providers.TypeIngest, "Search %q stored %d items", q, n)
	}

	s.logger.Infof(providers.TypeIngest, "Stored %d short-form items from %d search queries", total, len(s.queries))
	s.metrics.AddIngested(SourceSearch, total)
	return total, nil
}

// SearchQuery runs one ad hoc query.
func (s *IngestionService) SearchQuery(ctx context.Context, query string, maxResults int) (int, error) {
	n, err := s.searchAndStore(ctx, query, maxResults)
	s.metrics.AddIngested(SourceQuery, n)
	if err != nil {
		return n, err
	}
	s.logger.Infof(providers.TypeIngest, "Stored %d short-form items for query %q", n, query)
	return n, nil
}

func (s *IngestionService) searchAndStore(ctx context.Context, query string, maxResults int) (int, error) {
	items, err := s.source.Search(ctx, query, maxResults)
	if err != nil {
		return 0, err
	}
	return s.store(ctx, items)
}

func (s *IngestionService) store(ctx context.Context, items []provider.Item) (int, error) {
	now := s.now()
	stored := 0
	for _, it := range items {
		video, snap := it.Normalize(s.region, s.shortsMax, now)
		if !video.IsShort {
			continue
		}
		video = s.classifier.Annotate(video)

		if err := s.catalog.UpsertVideo(ctx, video); err != nil {
			return stored, fmt.Errorf("storing %s: %w", video.ID, err)
		}
		if err := s.catalog.AppendSnapshot(ctx, snap); err != nil {
			return stored, fmt.Errorf("storing snapshot of %s: %w", video.ID, err)
		}
		stored++
	}
	return stored, nil
}
