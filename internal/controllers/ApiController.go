package controllers

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"shortsd/internal/genre"
	"shortsd/internal/media"
	"shortsd/internal/models"
	"shortsd/internal/providers"
	"shortsd/internal/services"
	"shortsd/internal/structures"

	json "github.com/goccy/go-json"
)

const (
	maxRequestBodySize   = 1 << 20 // 1 MB
	trendingLimit        = 10
	defaultMinConfidence = 0.1
	maxSearchResults     = 50
)

type ApiController struct {
	logger   providers.Logger
	catalog  services.CatalogInterface
	ranking  services.RankingServiceInterface
	pipeline services.PipelineServiceInterface
	media    services.MediaServiceInterface
	cache    providers.CacheProviderInterface
	queries  []string
	baseURL  string
}

func NewApiController(conf *structures.Config, logger providers.Logger, catalog services.CatalogInterface,
	ranking services.RankingServiceInterface, pipeline services.PipelineServiceInterface,
	mediaService services.MediaServiceInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:   logger,
		catalog:  catalog,
		ranking:  ranking,
		pipeline: pipeline,
		media:    mediaService,
		cache:    cache,
		queries:  conf.Provider.SearchQueries,
		baseURL:  publicBaseURL(conf),
	}
}

// publicBaseURL is the prefix of links handed out to clients.
func publicBaseURL(conf *structures.Config) string {
	if conf.Media.PublicURL != "" {
		return strings.TrimRight(conf.Media.PublicURL, "/")
	}
	return "http://localhost:" + strconv.Itoa(conf.WebServer.Port)
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		ac.logger.Errorf(providers.TypeGet, "Computing %s: %s", cacheKey, err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

// fail logs err and writes it with the matching status code.
func (ac *ApiController) fail(w http.ResponseWriter, t providers.TypeEnum, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		ac.logger.Errorf(t, "Request failed: %s", err)
	} else {
		ac.logger.Debugf(t, "Request rejected: %s", err)
	}
	writeError(w, code, err.Error())
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parameter '%s' must be an integer", name)
	}
	return n, nil
}

// resultLimit validates a max_results value against the provider page limit.
func resultLimit(n int) (int, error) {
	if n < 1 {
		return 0, errors.New("parameter 'max_results' must be positive")
	}
	if n > maxSearchResults {
		return maxSearchResults, nil
	}
	return n, nil
}

// listParam accepts both repeated and comma separated values.
func listParam(r *http.Request, name string) []string {
	var out []string
	for _, raw := range r.URL.Query()[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (ac *ApiController) youtubeURL(id string) string { return media.WatchURL(id) }
func (ac *ApiController) fileURL(id string) string    { return ac.baseURL + "/download/" + id }
func (ac *ApiController) infoURL(id string) string    { return ac.baseURL + "/api/download/" + id }
func (ac *ApiController) directURL(id string) string  { return ac.baseURL + "/api/direct_download/" + id }

func (ac *ApiController) downloadLink(s models.DownloadState) downloadLink {
	link := downloadLink{
		VideoID:         s.VideoID,
		Title:           s.Title,
		ChannelTitle:    s.ChannelTitle,
		DurationSec:     s.DurationSec,
		PrimaryGenre:    s.PrimaryGenre,
		GenreConfidence: s.GenreConfidence,
		IsDownloaded:    s.IsDownloaded(),
		YoutubeURL:      ac.youtubeURL(s.VideoID),
		DownloadURL:     ac.infoURL(s.VideoID),
		DownloadedAt:    s.DownloadedAt,
	}
	if link.IsDownloaded {
		link.DownloadURL = ac.fileURL(s.VideoID)
	}
	return link
}

func (ac *ApiController) GetFiles(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "files", func() (any, error) {
		return ac.catalog.Downloads(r.Context())
	})
}

func (ac *ApiController) GetTrending(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "trending", func() (any, error) {
		return ac.catalog.LatestListings(r.Context(), trendingLimit)
	})
}

func (ac *ApiController) GetTop(w http.ResponseWriter, r *http.Request) {
	n, err := intParam(r, "n", ac.ranking.DefaultN())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ac.serveFromCacheOrCompute(w, "top:"+strconv.Itoa(n), func() (any, error) {
		return ac.ranking.TopN(r.Context(), n)
	})
}

func (ac *ApiController) GetGenres(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "genres", func() (any, error) {
		return ac.catalog.GenreStatistics(r.Context())
	})
}

func (ac *ApiController) GetVideosByGenre(w http.ResponseWriter, r *http.Request) {
	genres := listParam(r, "genres")
	minConfidence := defaultMinConfidence
	if raw := strings.TrimSpace(r.URL.Query().Get("min_confidence")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			writeError(w, http.StatusBadRequest, "parameter 'min_confidence' must be a finite number")
			return
		}
		minConfidence = v
	}
	if len(genres) == 0 {
		writeJSON(w, http.StatusOK, []models.GenreListing{})
		return
	}

	sorted := append([]string(nil), genres...)
	sort.Strings(sorted)
	key := "genre:" + strings.Join(sorted, ",") + ":" + strconv.FormatFloat(minConfidence, 'f', -1, 64)
	ac.serveFromCacheOrCompute(w, key, func() (any, error) {
		return ac.catalog.VideosByGenre(r.Context(), genres, minConfidence)
	})
}

func (ac *ApiController) GetSearchQueries(w http.ResponseWriter, _ *http.Request) {
	queries := ac.queries
	if queries == nil {
		queries = []string{}
	}
	writeJSON(w, http.StatusOK, queries)
}

func (ac *ApiController) GetGenreQueries(w http.ResponseWriter, r *http.Request) {
	queries := genre.SearchQueries(listParam(r, "genres"))
	if queries == nil {
		queries = []string{}
	}
	writeJSON(w, http.StatusOK, queries)
}

func (ac *ApiController) RunPipeline(w http.ResponseWriter, r *http.Request) {
	res, err := ac.pipeline.Run(r.Context())
	if err != nil {
		ac.fail(w, providers.TypePost, err)
		return
	}
	ac.cache.Purge()
	if res.Top == nil {
		res.Top = []models.RankedVideo{}
	}
	writeJSON(w, http.StatusOK, pipelineResponse{
		Status:         "success",
		Message:        "pipeline finished successfully",
		PipelineResult: res,
	})
}

type searchRequest struct {
	Query      string `json:"query"`
	MaxResults *int   `json:"max_results"`
	Download   bool   `json:"download"`
}

// limit returns the requested result count or def.
func (s searchRequest) limit(def int) (int, error) {
	if s.MaxResults == nil {
		return def, nil
	}
	return resultLimit(*s.MaxResults)
}

func (ac *ApiController) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, "search query must not be empty")
		return
	}
	limit, err := req.limit(maxSearchResults)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	found, err := ac.pipeline.Search(r.Context(), query, limit)
	if err != nil {
		ac.fail(w, providers.TypePost, err)
		return
	}
	ac.cache.Purge()
	writeJSON(w, http.StatusOK, searchResponse{
		Status:  "success",
		Message: fmt.Sprintf("found %d shorts for query '%s'", found, query),
		Found:   found,
	})
}

// queryAndLimit reads the required query and the max_results parameter.
func queryAndLimit(r *http.Request, def int) (string, int, error) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		return "", 0, errors.New("parameter 'query' is required")
	}
	n, err := intParam(r, "max_results", def)
	if err != nil {
		return "", 0, err
	}
	n, err = resultLimit(n)
	return query, n, err
}

// SearchLinks lists stored videos matching the query with links into this
// server. It does not call the provider.
func (ac *ApiController) SearchLinks(w http.ResponseWriter, r *http.Request) {
	query, limit, err := queryAndLimit(r, 10)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	listings, err := ac.catalog.SearchListings(r.Context(), query, limit)
	if err != nil {
		ac.fail(w, providers.TypeGet, err)
		return
	}
	links := make([]storedLink, 0, len(listings))
	for _, l := range listings {
		links = append(links, storedLink{
			VideoID:         l.VideoID,
			Title:           l.Title,
			ChannelTitle:    l.ChannelTitle,
			DurationSec:     l.DurationSec,
			PrimaryGenre:    l.PrimaryGenre,
			GenreConfidence: l.GenreConfidence,
			YoutubeURL:      ac.youtubeURL(l.VideoID),
			DownloadURL:     ac.fileURL(l.VideoID),
			APIDownloadURL:  ac.infoURL(l.VideoID),
		})
	}
	writeJSON(w, http.StatusOK, linksResponse[storedLink]{
		Status:  "success",
		Message: fmt.Sprintf("found %d tracks for query '%s'", len(links), query),
		Query:   query,
		Found:   len(links),
		Links:   links,
	})
}

// SearchDirectLinks searches the provider first and then lists the matching
// stored videos with their latest statistics.
func (ac *ApiController) SearchDirectLinks(w http.ResponseWriter, r *http.Request) {
	query, limit, err := queryAndLimit(r, 5)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := ac.pipeline.Search(r.Context(), query, limit); err != nil {
		ac.fail(w, providers.TypeGet, err)
		return
	}
	ac.cache.Purge()

	listings, err := ac.catalog.SearchListings(r.Context(), query, limit)
	if err != nil {
		ac.fail(w, providers.TypeGet, err)
		return
	}
	links := make([]directLink, 0, len(listings))
	for _, l := range listings {
		links = append(links, directLink{
			VideoID:           l.VideoID,
			Title:             l.Title,
			ChannelTitle:      l.ChannelTitle,
			DurationSec:       l.DurationSec,
			PrimaryGenre:      l.PrimaryGenre,
			GenreConfidence:   l.GenreConfidence,
			YoutubeURL:        ac.youtubeURL(l.VideoID),
			DirectDownloadURL: ac.directURL(l.VideoID),
			DownloadInfoURL:   ac.infoURL(l.VideoID),
			Stats:             l.Stats,
		})
	}
	writeJSON(w, http.StatusOK, linksResponse[directLink]{
		Status:  "success",
		Message: fmt.Sprintf("found %d tracks for query '%s'", len(links), query),
		Query:   query,
		Found:   len(links),
		Links:   links,
	})
}

func (ac *ApiController) DownloadInfo(w http.ResponseWriter, r *http.Request) {
	state, err := ac.catalog.GetDownload(r.Context(), r.PathValue("id"))
	if err != nil {
		ac.fail(w, providers.TypeGet, err)
		return
	}
	link := ac.downloadLink(state)
	link.DownloadURL = ac.fileURL(state.VideoID)
	writeJSON(w, http.StatusOK, downloadInfoResponse{Status: "success", Video: link})
}

func (ac *ApiController) DirectDownload(w http.ResponseWriter, r *http.Request) {
	video, stream, err := ac.media.DirectLink(r.Context(), r.PathValue("id"))
	if err != nil {
		ac.fail(w, providers.TypeGet, fmt.Errorf("resolving direct link: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, directDownloadResponse{
		Status:            "success",
		Message:           "direct audio link resolved",
		VideoID:           video.ID,
		Title:             video.Title,
		ChannelTitle:      video.ChannelTitle,
		DurationSec:       video.DurationSec,
		YoutubeURL:        ac.youtubeURL(video.ID),
		DirectDownloadURL: stream.URL,
		Format:            stream.Format,
		MimeType:          stream.MimeType,
		Bitrate:           stream.Bitrate,
	})
}

func (ac *ApiController) SearchAndDownload(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, "parameter 'query' is required")
		return
	}
	limit, err := req.limit(5)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := ac.pipeline.SearchAndDownload(r.Context(), query, limit, req.Download)
	if err != nil {
		ac.fail(w, providers.TypePost, err)
		return
	}
	ac.cache.Purge()

	resp := searchDownloadResponse{
		Status:        "success",
		Query:         query,
		Downloaded:    res.Downloaded,
		Report:        res.Report,
		DownloadLinks: []downloadLink{},
	}
	if res.Found == 0 {
		resp.Message = fmt.Sprintf("nothing found for query '%s'", query)
		writeJSON(w, http.StatusOK, resp)
		return
	}

	states, err := ac.catalog.DownloadStates(r.Context(), query, limit)
	if err != nil {
		ac.fail(w, providers.TypePost, err)
		return
	}
	for _, s := range states {
		resp.DownloadLinks = append(resp.DownloadLinks, ac.downloadLink(s))
	}
	resp.Found = len(resp.DownloadLinks)
	resp.Message = fmt.Sprintf("found %d tracks for query '%s'", resp.Found, query)
	if res.Downloaded {
		resp.Message += " and downloaded"
	}
	writeJSON(w, http.StatusOK, resp)
}

// ServeAudio streams a stored audio file as an attachment.
func (ac *ApiController) ServeAudio(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	path, err := ac.media.AudioFile(r.Context(), id)
	if err != nil {
		ac.fail(w, providers.TypeGet, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s%s"`, id, filepath.Ext(path)))
	http.ServeFile(w, r, path)
}
