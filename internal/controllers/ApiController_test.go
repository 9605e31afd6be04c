package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"shortsd/internal/catalog"
	"shortsd/internal/models"
	"shortsd/internal/services"
	"shortsd/internal/structures"
	"shortsd/internal/testutil"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- local mocks (scoped to controller tests) ---

type stubPipeline struct {
	runs     int
	runErr   error
	searches []string
	found    int
	err      error
	running  bool
	download func(query string, maxResults int, download bool) (services.SearchDownloadResult, error)
}

func (p *stubPipeline) Run(_ context.Context) (services.PipelineResult, error) {
	p.runs++
	return services.PipelineResult{Popular: 3, Searched: 2}, p.runErr
}

func (p *stubPipeline) Search(_ context.Context, query string, _ int) (int, error) {
	p.searches = append(p.searches, query)
	return p.found, p.err
}

func (p *stubPipeline) SearchAndDownload(_ context.Context, query string, maxResults int, download bool) (services.SearchDownloadResult, error) {
	p.searches = append(p.searches, query)
	if p.download != nil {
		return p.download(query, maxResults, download)
	}
	return services.SearchDownloadResult{Found: p.found}, p.err
}

func (p *stubPipeline) Running() bool { return p.running }

// --- helpers ---

type fixture struct {
	store    *catalog.Store
	pipeline *stubPipeline
	resolver *testutil.MockResolver
	media    services.MediaServiceInterface
	cache    *testutil.MockCache
	ac       *ApiController
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conf := &structures.Config{
		WebServer: structures.Server{Port: 8080},
		Provider:  structures.ProviderConfig{SearchQueries: []string{"trending sounds"}},
		Ranking:   structures.RankingConfig{CandidateWindow: 100, TopN: 2},
		Media:     structures.MediaConfig{Dir: t.TempDir(), PublicURL: "https://shorts.example/"},
	}
	f := &fixture{
		store:    testutil.NewCatalog(t),
		pipeline: &stubPipeline{},
		resolver: testutil.NewMockResolver(),
		cache:    testutil.NewMockCache(),
	}
	logger := &testutil.MockLogger{}
	f.media = services.NewMediaService(conf, f.resolver, f.store, logger, testutil.NewMockMetrics())
	ranking := services.NewRankingService(conf, f.store)
	f.ac = NewApiController(conf, logger, f.store, ranking, f.pipeline, f.media, f.cache)
	return f
}

func (f *fixture) seed(t *testing.T, id, title, genre string, views ...int64) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.store.UpsertVideo(ctx, models.Video{
		ID: id, Title: title, ChannelTitle: "chan", DurationSec: 30, IsShort: true,
		PrimaryGenre: genre, GenreConfidence: 0.5,
	}))
	for i, v := range views {
		require.NoError(t, f.store.AppendSnapshot(ctx, models.Snapshot{
			VideoID: id, Date: "2025-03-0" + string(rune('1'+i)), ViewCount: v,
		}))
	}
}

func get(handler http.HandlerFunc, target string, pathValues ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func post(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

// --- listing endpoints ---

func TestGetTrending_ReturnsListingsAndCaches(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a", "alpha", "pop", 10, 20)

	rr := get(f.ac.GetTrending, "/api/trending")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	listings := decode[[]models.Listing](t, rr)
	require.Len(t, listings, 1)
	assert.Equal(t, int64(20), listings[0].Stats.ViewCount)

	f.seed(t, "b", "beta", "rock", 5)
	rr = get(f.ac.GetTrending, "/api/trending")
	assert.Len(t, decode[[]models.Listing](t, rr), 1, "second call is served from cache")
}

func TestGetTrending_EmptyCatalog(t *testing.T) {
	f := newFixture(t)
	rr := get(f.ac.GetTrending, "/api/trending")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestGetTop(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "slow", "slow", "pop", 100, 110)
	f.seed(t, "fast", "fast", "pop", 100, 1000)
	f.seed(t, "mid", "mid", "pop", 100, 400)

	rr := get(f.ac.GetTop, "/api/top")
	require.Equal(t, http.StatusOK, rr.Code)
	top := decode[[]models.RankedVideo](t, rr)
	require.Len(t, top, 2)
	assert.Equal(t, "fast", top[0].VideoID)
	assert.Equal(t, "mid", top[1].VideoID)

	rr = get(f.ac.GetTop, "/api/top?n=1")
	assert.Len(t, decode[[]models.RankedVideo](t, rr), 1)

	rr = get(f.ac.GetTop, "/api/top?n=0")
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestGetTop_InvalidN(t *testing.T) {
	f := newFixture(t)
	rr := get(f.ac.GetTop, "/api/top?n=abc")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "error", decode[statusResponse](t, rr).Status)
}

func TestGetGenres(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a", "alpha", "pop", 1)
	f.seed(t, "b", "beta", "pop", 1)
	f.seed(t, "c", "gamma", "rock", 1)

	rr := get(f.ac.GetGenres, "/api/genres")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]int{"pop": 2, "rock": 1}, decode[map[string]int](t, rr))
}

func TestGetVideosByGenre(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a", "alpha", "pop", 1)
	f.seed(t, "c", "gamma", "rock", 1)

	rr := get(f.ac.GetVideosByGenre, "/api/videos_by_genre?genres=pop")
	require.Equal(t, http.StatusOK, rr.Code)
	videos := decode[[]models.GenreListing](t, rr)
	require.Len(t, videos, 1)
	assert.Equal(t, "a", videos[0].VideoID)

	rr = get(f.ac.GetVideosByGenre, "/api/videos_by_genre?genres=pop,rock")
	assert.Len(t, decode[[]models.GenreListing](t, rr), 2)

	rr = get(f.ac.GetVideosByGenre, "/api/videos_by_genre?genres=pop&min_confidence=0.9")
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestGetVideosByGenre_NoGenres(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a", "alpha", "pop", 1)

	rr := get(f.ac.GetVideosByGenre, "/api/videos_by_genre")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestGetVideosByGenre_InvalidConfidence(t *testing.T) {
	f := newFixture(t)
	for _, raw := range []string{"high", "NaN", "nan", "Inf", "-Inf", "+Infinity"} {
		rr := get(f.ac.GetVideosByGenre, "/api/videos_by_genre?genres=pop&min_confidence="+url.QueryEscape(raw))
		assert.Equal(t, http.StatusBadRequest, rr.Code, raw)
		assert.Contains(t, rr.Body.String(), "finite number", raw)
	}
}

func TestGetSearchQueries(t *testing.T) {
	f := newFixture(t)
	rr := get(f.ac.GetSearchQueries, "/api/search_queries")
	assert.JSONEq(t, `["trending sounds"]`, rr.Body.String())
}

func TestGetGenreQueries(t *testing.T) {
	f := newFixture(t)

	rr := get(f.ac.GetGenreQueries, "/api/genre_queries?genres=rock")
	queries := decode[[]string](t, rr)
	assert.Contains(t, queries, "rock viral")

	rr = get(f.ac.GetGenreQueries, "/api/genre_queries?genres=polka")
	assert.JSONEq(t, `[]`, rr.Body.String())
}

// --- pipeline endpoints ---

func TestRunPipeline_PurgesCache(t *testing.T) {
	f := newFixture(t)
	f.cache.Set("trending", []byte("[]"))

	rr := post(f.ac.RunPipeline, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, f.pipeline.runs)
	assert.Equal(t, 1, f.cache.PurgeCount())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "success", body["status"])
	assert.EqualValues(t, 3, body["popular"])
	assert.EqualValues(t, 2, body["searched"])
	assert.Equal(t, []any{}, body["top"])
}

func TestRunPipeline_Busy(t *testing.T) {
	f := newFixture(t)
	f.pipeline.runErr = services.ErrPipelineBusy

	rr := post(f.ac.RunPipeline, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, 0, f.cache.PurgeCount())
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	f.pipeline.found = 4

	rr := post(f.ac.Search, `{"query":"  lofi  ","max_results":10}`)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[searchResponse](t, rr)
	assert.Equal(t, 4, resp.Found)
	assert.Equal(t, []string{"lofi"}, f.pipeline.searches)
	assert.Equal(t, 1, f.cache.PurgeCount())
}

func TestSearch_Validation(t *testing.T) {
	f := newFixture(t)

	cases := map[string]string{
		"empty body":    ``,
		"invalid json":  `not json`,
		"empty query":   `{"query":"   "}`,
		"zero results":  `{"query":"x","max_results":0}`,
		"string result": `{"query":"x","max_results":"many"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rr := post(f.ac.Search, body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
	assert.Empty(t, f.pipeline.searches)
}

func TestSearch_OversizedBody(t *testing.T) {
	f := newFixture(t)
	big := `{"query":"` + strings.Repeat("x", maxRequestBodySize) + `"}`
	rr := post(f.ac.Search, big)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSearch_ProviderFailure(t *testing.T) {
	f := newFixture(t)
	f.pipeline.err = assert.AnError

	rr := post(f.ac.Search, `{"query":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, assert.AnError.Error(), decode[statusResponse](t, rr).Message)
}

// --- link endpoints ---

func TestSearchLinks(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a", "Moto X3M remix", "pop", 1)
	f.seed(t, "b", "unrelated", "pop", 1)

	rr := get(f.ac.SearchLinks, "/api/search_links?query=moto")
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[linksResponse[storedLink]](t, rr)
	require.Equal(t, 1, resp.Found)
	link := resp.Links[0]
	assert.Equal(t, "https://www.youtube.com/watch?v=a", link.YoutubeURL)
	assert.Equal(t, "https://shorts.example/download/a", link.DownloadURL)
	assert.Equal(t, "https://shorts.example/api/download/a", link.APIDownloadURL)
	assert.Empty(t, f.pipeline.searches, "stored links never hit the provider")
}

func TestSearchLinks_Validation(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusBadRequest, get(f.ac.SearchLinks, "/api/search_links").Code)
	assert.Equal(t, http.StatusBadRequest, get(f.ac.SearchLinks, "/api/search_links?query=x&max_results=-1").Code)
	assert.Equal(t, http.StatusBadRequest, get(f.ac.SearchLinks, "/api/search_links?query=x&max_results=ten").Code)
}

func TestSearchDirectLinks(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a", "Moto X3M remix", "pop", 10, 25)

	rr := get(f.ac.SearchDirectLinks, "/api/search_direct_links?query=moto&max_results=3")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"moto"}, f.pipeline.searches)

	resp := decode[linksResponse[directLink]](t, rr)
	require.Len(t, resp.Links, 1)
	assert.Equal(t, "https://shorts.example/api/direct_download/a", resp.Links[0].DirectDownloadURL)
	assert.Equal(t, "https://shorts.example/api/download/a", resp.Links[0].DownloadInfoURL)
	assert.Equal(t, int64(25), resp.Links[0].Stats.ViewCount)
}

func TestSearchDirectLinks_Busy(t *testing.T) {
	f := newFixture(t)
	f.pipeline.err = services.ErrPipelineBusy

	rr := get(f.ac.SearchDirectLinks, "/api/search_direct_links?query=moto")
	assert.Equal(t, http.StatusConflict, rr.Code)
}

// --- download endpoints ---

func TestDownloadInfo(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a", "alpha", "pop", 1)

	rr := get(f.ac.DownloadInfo, "/api/download/a", "id", "a")
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[downloadInfoResponse](t, rr)
	assert.False(t, resp.Video.IsDownloaded)
	assert.Nil(t, resp.Video.DownloadedAt)
	assert.Equal(t, "https://shorts.example/download/a", resp.Video.DownloadURL)

	_, err := f.media.Download(context.Background(), []string{"a"})
	require.NoError(t, err)

	rr = get(f.ac.DownloadInfo, "/api/download/a", "id", "a")
	resp = decode[downloadInfoResponse](t, rr)
	assert.True(t, resp.Video.IsDownloaded)
	assert.NotNil(t, resp.Video.DownloadedAt)
}

func TestDownloadInfo_NotFound(t *testing.T) {
	f := newFixture(t)
	rr := get(f.ac.DownloadInfo, "/api/download/zzz", "id", "zzz")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "error", decode[statusResponse](t, rr).Status)
}

func TestDirectDownload(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a", "alpha", "pop", 1)
	f.resolver.Streams["a"] = models.AudioStream{VideoID: "a", URL: "https://cdn.example/a", Format: "m4a", MimeType: "audio/mp4", Bitrate: 128000}

	rr := get(f.ac.DirectDownload, "/api/direct_download/a", "id", "a")
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[directDownloadResponse](t, rr)
	assert.Equal(t, "https://cdn.example/a", resp.DirectDownloadURL)
	assert.Equal(t, "m4a", resp.Format)
	assert.Equal(t, "alpha", resp.Title)
}

func TestDirectDownload_Errors(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "noaudio", "silent", "pop", 1)

	assert.Equal(t, http.StatusNotFound, get(f.ac.DirectDownload, "/", "id", "missing").Code)
	assert.Equal(t, http.StatusInternalServerError, get(f.ac.DirectDownload, "/", "id", "noaudio").Code)
}

func TestSearchAndDownload_NothingFound(t *testing.T) {
	f := newFixture(t)

	rr := post(f.ac.SearchAndDownload, `{"query":"nothing"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[searchDownloadResponse](t, rr)
	assert.Equal(t, 0, resp.Found)
	assert.NotNil(t, resp.DownloadLinks)
	assert.Empty(t, resp.DownloadLinks)
}

func TestSearchAndDownload_Downloads(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a", "moto one", "pop", 1)
	f.seed(t, "b", "moto two", "pop", 1)
	f.pipeline.download = func(query string, maxResults int, download bool) (services.SearchDownloadResult, error) {
		assert.Equal(t, "moto", query)
		assert.Equal(t, 5, maxResults)
		assert.True(t, download)
		report, err := f.media.Download(context.Background(), []string{"a"})
		return services.SearchDownloadResult{Found: 2, Downloaded: true, Report: &report}, err
	}

	rr := post(f.ac.SearchAndDownload, `{"query":"moto","download":true}`)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[searchDownloadResponse](t, rr)
	assert.True(t, resp.Downloaded)
	require.NotNil(t, resp.Report)
	assert.Equal(t, []string{"a"}, resp.Report.Downloaded)
	require.Len(t, resp.DownloadLinks, 2)

	byID := map[string]downloadLink{}
	for _, l := range resp.DownloadLinks {
		byID[l.VideoID] = l
	}
	assert.True(t, byID["a"].IsDownloaded)
	assert.Equal(t, "https://shorts.example/download/a", byID["a"].DownloadURL)
	assert.False(t, byID["b"].IsDownloaded)
	assert.Equal(t, "https://shorts.example/api/download/b", byID["b"].DownloadURL)
	assert.Equal(t, 1, f.cache.PurgeCount())
}

func TestSearchAndDownload_Validation(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusBadRequest, post(f.ac.SearchAndDownload, `{"query":""}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(f.ac.SearchAndDownload, `{"query":"x","max_results":-2}`).Code)
}

func TestServeAudio(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a", "alpha", "pop", 1)
	_, err := f.media.Download(context.Background(), []string{"a"})
	require.NoError(t, err)

	rr := get(f.ac.ServeAudio, "/download/a", "id", "a")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `attachment; filename="a.m4a"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "audio:a", rr.Body.String())
}

func TestServeAudio_NotDownloaded(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a", "alpha", "pop", 1)

	assert.Equal(t, http.StatusNotFound, get(f.ac.ServeAudio, "/download/a", "id", "a").Code)
	assert.Equal(t, http.StatusNotFound, get(f.ac.ServeAudio, "/download/x", "id", "x").Code)
}

func TestPublicBaseURL_FallsBackToPort(t *testing.T) {
	conf := &structures.Config{WebServer: structures.Server{Port: 5002}}
	assert.Equal(t, "http://localhost:5002", publicBaseURL(conf))
}
