package models

import "time"

const DateLayout = "2006-01-02"

// Snapshot is one day of popularity counters for a video. Like and comment
// counts are nil when the provider omitted them.
type Snapshot struct {
	VideoID      string `json:"video_id"`
	Date         string `json:"snapshot_date"`
	ViewCount    int64  `json:"view_count"`
	LikeCount    *int64 `json:"like_count"`
	CommentCount *int64 `json:"comment_count"`
}

// DateOf formats t as a snapshot date in UTC.
func DateOf(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
