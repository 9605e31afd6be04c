package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"shortsd/internal/models"
)

// MarkDownload records an audio file for a video, replacing any previous
// record. A zero DownloadedAt is stamped with the store clock.
func (s *Store) MarkDownload(ctx context.Context, d models.Download) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := d.DownloadedAt
	if at.IsZero() {
		at = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO downloads (video_id, audio_path, downloaded_at, duration_sec, format)
		VALUES (?, ?, ?, ?, ?)
	`, d.VideoID, d.AudioPath, formatTime(at), d.DurationSec, d.Format)
	if err != nil {
		return fmt.Errorf("recording download of %s: %w", d.VideoID, err)
	}
	return nil
}

// NotDownloaded returns the ids that have no download record, keeping the
// order of ids.
func (s *Store) NotDownloaded(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT video_id FROM downloads WHERE video_id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying downloads: %w", err)
	}
	defer rows.Close()

	done := make(map[string]struct{}, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning download id: %w", err)
		}
		done[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := done[id]; !ok {
			out = append(out, id)
		}
	}
	return out, nil
}

// Downloads lists every downloaded file joined with its video, newest first.
func (s *Store) Downloads(ctx context.Context) ([]models.DownloadedFile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.video_id, d.audio_path, d.downloaded_at, d.duration_sec,
			v.title, v.channel_title, v.published_at, v.primary_genre, v.genre_confidence
		FROM downloads d
		JOIN videos v ON d.video_id = v.video_id
		ORDER BY d.downloaded_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying downloaded files: %w", err)
	}
	defer rows.Close()

	out := []models.DownloadedFile{}
	for rows.Next() {
		var (
			f     models.DownloadedFile
			genre sql.NullString
		)
		if err := rows.Scan(&f.VideoID, &f.AudioPath, &f.DownloadedAt, &f.DurationSec,
			&f.Title, &f.ChannelTitle, &f.PublishedAt, &genre, &f.GenreConfidence); err != nil {
			return nil, fmt.Errorf("scanning downloaded file: %w", err)
		}
		f.PrimaryGenre = nullableString(genre)
		out = append(out, f)
	}
	return out, rows.Err()
}
