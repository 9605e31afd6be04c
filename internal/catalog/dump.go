package catalog

import (
	"context"
	"fmt"

	"shortsd/internal/models"
)

// Export reads the whole catalog into a Dump.
func (s *Store) Export(ctx context.Context) (*models.Dump, error) {
	dump := &models.Dump{
		Version:   models.DumpVersion,
		Videos:    []models.Video{},
		Snapshots: []models.Snapshot{},
		Downloads: []models.Download{},
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+videoColumns+` FROM videos ORDER BY video_id`)
	if err != nil {
		return nil, fmt.Errorf("exporting videos: %w", err)
	}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning video row: %w", err)
		}
		dump.Videos = append(dump.Videos, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT video_id, snapshot_date, view_count, like_count, comment_count
		FROM stats ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("exporting snapshots: %w", err)
	}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		dump.Snapshots = append(dump.Snapshots, snap)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT video_id, audio_path, downloaded_at, duration_sec, format
		FROM downloads ORDER BY video_id`)
	if err != nil {
		return nil, fmt.Errorf("exporting downloads: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			d  models.Download
			at string
		)
		if err := rows.Scan(&d.VideoID, &d.AudioPath, &at, &d.DurationSec, &d.Format); err != nil {
			return nil, fmt.Errorf("scanning download row: %w", err)
		}
		d.DownloadedAt = parseTime(at)
		dump.Downloads = append(dump.Downloads, d)
	}
	return dump, rows.Err()
}

// Import loads a Dump in a single transaction. Videos and downloads are
// replaced by id, snapshots are appended.
func (s *Store) Import(ctx context.Context, dump *models.Dump) error {
	if dump == nil {
		return nil
	}
	if dump.Version != models.DumpVersion {
		return fmt.Errorf("unsupported dump version %d", dump.Version)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting import: %w", err)
	}
	defer tx.Rollback()

	for _, v := range dump.Videos {
		var genre interface{}
		if v.PrimaryGenre != "" {
			genre = v.PrimaryGenre
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO videos (`+videoColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(video_id) DO UPDATE SET
				title=excluded.title, channel_title=excluded.channel_title,
				published_at=excluded.published_at, duration_sec=excluded.duration_sec,
				is_short=excluded.is_short, region=excluded.region,
				first_seen=excluded.first_seen, last_seen=excluded.last_seen,
				primary_genre=excluded.primary_genre, genre_confidence=excluded.genre_confidence
		`, v.ID, v.Title, v.ChannelTitle, v.PublishedAt, v.DurationSec, boolToInt(v.IsShort),
			v.Region, formatTime(v.FirstSeen), formatTime(v.LastSeen), genre, v.GenreConfidence)
		if err != nil {
			return fmt.Errorf("importing video %s: %w", v.ID, err)
		}
	}

	for _, snap := range dump.Snapshots {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO stats (video_id, snapshot_date, view_count, like_count, comment_count)
			VALUES (?, ?, ?, ?, ?)
		`, snap.VideoID, snap.Date, snap.ViewCount, nullInt(snap.LikeCount), nullInt(snap.CommentCount))
		if err != nil {
			return fmt.Errorf("importing snapshot of %s: %w", snap.VideoID, err)
		}
	}

	for _, d := range dump.Downloads {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO downloads (video_id, audio_path, downloaded_at, duration_sec, format)
			VALUES (?, ?, ?, ?, ?)
		`, d.VideoID, d.AudioPath, formatTime(d.DownloadedAt), d.DurationSec, d.Format)
		if err != nil {
			return fmt.Errorf("importing download of %s: %w", d.VideoID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing import: %w", err)
	}
	return nil
}
