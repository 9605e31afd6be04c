package models

import "time"

type Download struct {
	VideoID      string    `json:"video_id"`
	AudioPath    string    `json:"audio_path"`
	DownloadedAt time.Time `json:"downloaded_at"`
	DurationSec  int       `json:"duration_sec"`
	Format       string    `json:"format"`
}

// AudioStream is a remotely resolved audio rendition.
type AudioStream struct {
	VideoID  string `json:"video_id"`
	URL      string `json:"direct_download_url"`
	Format   string `json:"format"`
	MimeType string `json:"mime_type"`
	Bitrate  int    `json:"bitrate"`
}
