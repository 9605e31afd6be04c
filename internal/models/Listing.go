package models

// ListingStats is the nested stats block of a serving listing. LastUpdated
// is nil for a video without snapshots.
type ListingStats struct {
	ViewCount    int64   `json:"view_count"`
	LikeCount    int64   `json:"like_count"`
	CommentCount int64   `json:"comment_count"`
	LastUpdated  *string `json:"last_updated"`
}

// Listing projects a Video plus its latest Snapshot.
type Listing struct {
	VideoID         string       `json:"video_id"`
	Title           string       `json:"title"`
	ChannelTitle    string       `json:"channel_title"`
	DurationSec     int          `json:"duration_sec"`
	PrimaryGenre    *string      `json:"primary_genre"`
	GenreConfidence float64      `json:"genre_confidence"`
	Stats           ListingStats `json:"stats"`
}

// GenreListing is a video row returned by genre queries.
type GenreListing struct {
	VideoID         string  `json:"video_id"`
	Title           string  `json:"title"`
	ChannelTitle    string  `json:"channel_title"`
	PublishedAt     string  `json:"published_at"`
	DurationSec     int     `json:"duration_sec"`
	PrimaryGenre    string  `json:"primary_genre"`
	GenreConfidence float64 `json:"genre_confidence"`
}

// DownloadedFile joins a Download with its Video.
type DownloadedFile struct {
	VideoID         string  `json:"video_id"`
	AudioPath       string  `json:"audio_path"`
	DownloadedAt    string  `json:"downloaded_at"`
	DurationSec     int     `json:"duration_sec"`
	Title           string  `json:"title"`
	ChannelTitle    string  `json:"channel_title"`
	PublishedAt     string  `json:"published_at"`
	PrimaryGenre    *string `json:"primary_genre"`
	GenreConfidence float64 `json:"genre_confidence"`
}

// DownloadState is a Video with its optional Download.
type DownloadState struct {
	VideoID         string  `json:"video_id"`
	Title           string  `json:"title"`
	ChannelTitle    string  `json:"channel_title"`
	DurationSec     int     `json:"duration_sec"`
	PrimaryGenre    *string `json:"primary_genre"`
	GenreConfidence float64 `json:"genre_confidence"`
	AudioPath       *string `json:"-"`
	DownloadedAt    *string `json:"downloaded_at"`
}

// IsDownloaded reports whether an audio file was recorded for the video.
func (d DownloadState) IsDownloaded() bool {
	return d.AudioPath != nil
}
