package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"shortsd/internal/genre"
	"shortsd/internal/provider"
	"shortsd/internal/structures"
	"shortsd/internal/testutil"

	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu       sync.Mutex
	pages    map[string]provider.Page
	pageErr  error
	results  map[string][]provider.Item
	failing  map[string]error
	searches []string
	block    chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		pages:   map[string]provider.Page{},
		results: map[string][]provider.Item{},
		failing: map[string]error{},
	}
}

func (f *fakeSource) FetchPage(ctx context.Context, cursor string) (provider.Page, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return provider.Page{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pageErr != nil {
		return provider.Page{}, f.pageErr
	}
	return f.pages[cursor], nil
}

func (f *fakeSource) Search(_ context.Context, query string, _ int) ([]provider.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, query)
	if err, ok := f.failing[query]; ok {
		return nil, err
	}
	return f.results[query], nil
}

func strp(s string) *string { return &s }

func item(id, title, duration, views string) provider.Item {
	return provider.Item{
		ID:             id,
		Snippet:        provider.Snippet{Title: title, ChannelTitle: "chan", PublishedAt: "2025-01-01T00:00:00Z"},
		ContentDetails: provider.ContentDetails{Duration: duration},
		Statistics:     provider.Statistics{ViewCount: strp(views)},
	}
}

func testConfig() *structures.Config {
	return &structures.Config{
		Provider: structures.ProviderConfig{
			Region:           "US",
			SearchMaxResults: 50,
			SearchQueries:    []string{"q1", "q2", "q3"},
		},
		Ingestion: structures.IngestionConfig{ShortsMaxSeconds: 60},
		Ranking:   structures.RankingConfig{CandidateWindow: 500, TopN: 10},
	}
}

type fixture struct {
	conf      *structures.Config
	source    *fakeSource
	catalog   CatalogInterface
	logger    *testutil.MockLogger
	metrics   *testutil.MockMetrics
	resolver  *testutil.MockResolver
	ingestion *IngestionService
	ranking   RankingServiceInterface
	media     *MediaService
	pipeline  *PipelineService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		conf:     testConfig(),
		source:   newFakeSource(),
		catalog:  testutil.NewCatalog(t),
		logger:   &testutil.MockLogger{},
		metrics:  testutil.NewMockMetrics(),
		resolver: testutil.NewMockResolver(),
	}
	f.conf.Media.Dir = t.TempDir()

	f.ingestion = newIngestionService(f.conf, f.source, f.catalog, genre.NewDefaultClassifier(), f.logger, f.metrics)
	f.ingestion.now = func() time.Time { return time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC) }
	f.ranking = NewRankingService(f.conf, f.catalog)
	f.media = NewMediaService(f.conf, f.resolver, f.catalog, f.logger, f.metrics).(*MediaService)
	f.media.now = func() time.Time { return time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC) }
	f.pipeline = NewPipelineService(f.conf, f.ingestion, f.ranking, f.media, f.logger, f.metrics).(*PipelineService)
	return f
}

var errBoom = errors.New("boom")

// mustCount unwraps a (count, error) result.
func mustCount(t *testing.T) func(int, error) int {
	return func(n int, err error) int {
		t.Helper()
		require.NoError(t, err)
		return n
	}
}
