package controllers

import (
	"errors"
	"net/http"

	"shortsd/internal/catalog"
	"shortsd/internal/models"
	"shortsd/internal/services"

	json "github.com/goccy/go-json"
)

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type searchResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Found   int    `json:"found"`
}

type pipelineResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	services.PipelineResult
}

// storedLink is a catalog listing with links into this server.
type storedLink struct {
	VideoID         string  `json:"video_id"`
	Title           string  `json:"title"`
	ChannelTitle    string  `json:"channel_title"`
	DurationSec     int     `json:"duration_sec"`
	PrimaryGenre    *string `json:"primary_genre"`
	GenreConfidence float64 `json:"genre_confidence"`
	YoutubeURL      string  `json:"youtube_url"`
	DownloadURL     string  `json:"download_url"`
	APIDownloadURL  string  `json:"api_download_url"`
}

type directLink struct {
	VideoID           string              `json:"video_id"`
	Title             string              `json:"title"`
	ChannelTitle      string              `json:"channel_title"`
	DurationSec       int                 `json:"duration_sec"`
	PrimaryGenre      *string             `json:"primary_genre"`
	GenreConfidence   float64             `json:"genre_confidence"`
	YoutubeURL        string              `json:"youtube_url"`
	DirectDownloadURL string              `json:"direct_download_url"`
	DownloadInfoURL   string              `json:"download_info_url"`
	Stats             models.ListingStats `json:"stats"`
}

type linksResponse[T any] struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Query   string `json:"query"`
	Found   int    `json:"found"`
	Links   []T    `json:"links"`
}

// downloadLink describes the download state of one video.
type downloadLink struct {
	VideoID         string  `json:"video_id"`
	Title           string  `json:"title"`
	ChannelTitle    string  `json:"channel_title"`
	DurationSec     int     `json:"duration_sec"`
	PrimaryGenre    *string `json:"primary_genre"`
	GenreConfidence float64 `json:"genre_confidence"`
	IsDownloaded    bool    `json:"is_downloaded"`
	YoutubeURL      string  `json:"youtube_url"`
	DownloadURL     string  `json:"download_url"`
	DownloadedAt    *string `json:"downloaded_at"`
}

type downloadInfoResponse struct {
	Status string       `json:"status"`
	Video  downloadLink `json:"video"`
}

type searchDownloadResponse struct {
	Status        string                   `json:"status"`
	Message       string                   `json:"message"`
	Query         string                   `json:"query"`
	Found         int                      `json:"found"`
	Downloaded    bool                     `json:"downloaded"`
	Report        *services.DownloadReport `json:"report,omitempty"`
	DownloadLinks []downloadLink           `json:"download_links"`
}

type directDownloadResponse struct {
	Status            string `json:"status"`
	Message           string `json:"message"`
	VideoID           string `json:"video_id"`
	Title             string `json:"title"`
	ChannelTitle      string `json:"channel_title"`
	DurationSec       int    `json:"duration_sec"`
	YoutubeURL        string `json:"youtube_url"`
	DirectDownloadURL string `json:"direct_download_url"`
	Format            string `json:"format"`
	MimeType          string `json:"mime_type"`
	Bitrate           int    `json:"bitrate"`
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	gson, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(gson)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, statusResponse{Status: "error", Message: message})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrPipelineBusy):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
