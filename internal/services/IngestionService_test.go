package services

import (
	"context"
	"testing"

	"shortsd/internal/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchPopular_PagesAndFiltersShorts(t *testing.T) {
	f := newFixture(t)
	f.source.pages[""] = provider.Page{
		Items: []provider.Item{
			item("a", "hip hop rap beat", "PT30S", "100"),
			item("long", "long video", "PT5M", "100"),
		},
		NextCursor: "p2",
	}
	f.source.pages["p2"] = provider.Page{
		Items: []provider.Item{item("b", "orchestra", "PT60S", "5")},
	}

	n := mustCount(t)(f.ingestion.FetchPopular(context.Background()))
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, f.metrics.Ingested[SourcePopular])

	ctx := context.Background()
	a, err := f.catalog.GetVideo(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "hip_hop", a.PrimaryGenre)
	assert.True(t, a.IsShort)
	assert.Equal(t, "US", a.Region)

	b, err := f.catalog.GetVideo(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "classical", b.PrimaryGenre)

	_, err = f.catalog.GetVideo(ctx, "long")
	assert.Error(t, err)

	snaps, err := f.catalog.RecentSnapshots(ctx, "a", 5)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "2025-03-02", snaps[0].Date)
	assert.Equal(t, int64(100), snaps[0].ViewCount)
}

func TestFetchPopular_ProviderErrorSurfaces(t *testing.T) {
	f := newFixture(t)
	f.source.pageErr = errBoom

	_, err := f.ingestion.FetchPopular(context.Background())
	assert.ErrorIs(t, err, errBoom)
}

func TestSearchTrending_SkipsFailingQueries(t *testing.T) {
	f := newFixture(t)
	f.source.results["q1"] = []provider.Item{item("a", "pop hit", "PT20S", "1")}
	f.source.failing["q2"] = errBoom
	f.source.results["q3"] = []provider.Item{item("b", "jazz", "PT20S", "1"), item("c", "x", "PT2M", "1")}

	n := mustCount(t)(f.ingestion.SearchTrending(context.Background()))
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"q1", "q2", "q3"}, f.source.searches)
	assert.Equal(t, 1, f.logger.Count("warn"))
	assert.Equal(t, 2, f.metrics.Ingested[SourceSearch])
}

func TestSearchTrending_StopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.ingestion.SearchTrending(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.source.searches)
}

func TestSearchQuery_AppendsSnapshotPerRun(t *testing.T) {
	f := newFixture(t)
	f.source.results["moto"] = []provider.Item{item("a", "moto x3m", "PT15S", "10")}

	assert.Equal(t, 1, mustCount(t)(f.ingestion.SearchQuery(context.Background(), "moto", 5)))
	f.source.results["moto"] = []provider.Item{item("a", "moto x3m", "PT15S", "40")}
	assert.Equal(t, 1, mustCount(t)(f.ingestion.SearchQuery(context.Background(), "moto", 5)))

	snaps, err := f.catalog.RecentSnapshots(context.Background(), "a", 5)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, int64(40), snaps[0].ViewCount)
}
