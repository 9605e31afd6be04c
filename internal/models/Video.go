package models

import "time"

// Video is a short-form candidate as observed on the provider.
// Description, Tags and GenreScores are only carried between ingestion and
// classification; the catalog persists the derived genre summary.
type Video struct {
	ID              string             `json:"video_id"`
	Title           string             `json:"title"`
	Description     string             `json:"-"`
	Tags            []string           `json:"-"`
	ChannelTitle    string             `json:"channel_title"`
	PublishedAt     string             `json:"published_at"`
	DurationSec     int                `json:"duration_sec"`
	IsShort         bool               `json:"is_short"`
	Region          string             `json:"region"`
	FirstSeen       time.Time          `json:"first_seen"`
	LastSeen        time.Time          `json:"last_seen"`
	PrimaryGenre    string             `json:"primary_genre,omitempty"`
	GenreConfidence float64            `json:"genre_confidence"`
	GenreScores     map[string]float64 `json:"genre_scores,omitempty"`
}

// VideoSummary is the ranking candidate shape.
type VideoSummary struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channel_title"`
	DurationSec  int    `json:"duration_sec"`
}

// RankedVideo is a VideoSummary with its trend score.
type RankedVideo struct {
	VideoSummary
	Score float64 `json:"trend_score"`
}
