package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"shortsd/internal/models"
)

// AppendSnapshot stores one more snapshot. Existing rows are never touched.
func (s *Store) AppendSnapshot(ctx context.Context, snap models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stats (video_id, snapshot_date, view_count, like_count, comment_count)
		VALUES (?, ?, ?, ?, ?)
	`, snap.VideoID, snap.Date, snap.ViewCount, nullInt(snap.LikeCount), nullInt(snap.CommentCount))
	if err != nil {
		return fmt.Errorf("inserting snapshot for %s: %w", snap.VideoID, err)
	}
	return nil
}

// RecentSnapshots returns up to limit snapshots of a video, newest date
// first. Same-day snapshots are ordered by insertion, latest first.
func (s *Store) RecentSnapshots(ctx context.Context, videoID string, limit int) ([]models.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT video_id, snapshot_date, view_count, like_count, comment_count
		FROM stats
		WHERE video_id = ?
		ORDER BY snapshot_date DESC, id DESC
		LIMIT ?
	`, videoID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots for %s: %w", videoID, err)
	}
	defer rows.Close()

	var out []models.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func scanSnapshot(row rowScanner) (models.Snapshot, error) {
	var (
		snap            models.Snapshot
		likes, comments sql.NullInt64
	)
	if err := row.Scan(&snap.VideoID, &snap.Date, &snap.ViewCount, &likes, &comments); err != nil {
		return snap, fmt.Errorf("scanning snapshot row: %w", err)
	}
	snap.LikeCount = nullableInt(likes)
	snap.CommentCount = nullableInt(comments)
	return snap, nil
}

func nullInt(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
