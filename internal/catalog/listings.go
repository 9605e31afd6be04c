package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shortsd/internal/models"
)

// latestStatsJoin picks the newest snapshot row of every video.
const latestStatsJoin = `
	LEFT JOIN (
		SELECT video_id, view_count, like_count, comment_count, snapshot_date,
			ROW_NUMBER() OVER (PARTITION BY video_id ORDER BY snapshot_date DESC, id DESC) AS rn
		FROM stats
	) s ON v.video_id = s.video_id AND s.rn = 1`

const listingColumns = `v.video_id, v.title, v.channel_title, v.duration_sec,
	v.primary_genre, v.genre_confidence,
	s.view_count, s.like_count, s.comment_count, s.snapshot_date`

// LatestListings returns the most recently seen short-form videos together
// with their latest snapshot.
func (s *Store) LatestListings(ctx context.Context, limit int) ([]models.Listing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+listingColumns+`
		FROM videos v`+latestStatsJoin+`
		WHERE v.is_short = 1
		ORDER BY v.last_seen DESC, v.video_id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying listings: %w", err)
	}
	return collectListings(rows)
}

// SearchListings is LatestListings narrowed to videos whose title or channel
// contains query.
func (s *Store) SearchListings(ctx context.Context, query string, limit int) ([]models.Listing, error) {
	pattern := likePattern(query)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+listingColumns+`
		FROM videos v`+latestStatsJoin+`
		WHERE v.is_short = 1
			AND (v.title LIKE ? ESCAPE '\' OR v.channel_title LIKE ? ESCAPE '\')
		ORDER BY v.last_seen DESC, v.video_id
		LIMIT ?
	`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("searching listings: %w", err)
	}
	return collectListings(rows)
}

func collectListings(rows *sql.Rows) ([]models.Listing, error) {
	defer rows.Close()

	out := []models.Listing{}
	for rows.Next() {
		var (
			l                      models.Listing
			genre, date            sql.NullString
			views, likes, comments sql.NullInt64
		)
		if err := rows.Scan(&l.VideoID, &l.Title, &l.ChannelTitle, &l.DurationSec,
			&genre, &l.GenreConfidence, &views, &likes, &comments, &date); err != nil {
			return nil, fmt.Errorf("scanning listing row: %w", err)
		}
		l.PrimaryGenre = nullableString(genre)
		l.Stats = models.ListingStats{
			ViewCount:    views.Int64,
			LikeCount:    likes.Int64,
			CommentCount: comments.Int64,
			LastUpdated:  nullableString(date),
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

const downloadStateColumns = `v.video_id, v.title, v.channel_title, v.duration_sec,
	v.primary_genre, v.genre_confidence, d.audio_path, d.downloaded_at`

// DownloadStates lists short-form videos with their download record, most
// recently seen first. An empty titleQuery matches every video.
func (s *Store) DownloadStates(ctx context.Context, titleQuery string, limit int) ([]models.DownloadState, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+downloadStateColumns+`
		FROM videos v
		LEFT JOIN downloads d ON v.video_id = d.video_id
		WHERE v.is_short = 1 AND v.title LIKE ? ESCAPE '\'
		ORDER BY v.last_seen DESC, v.video_id
		LIMIT ?
	`, likePattern(titleQuery), limit)
	if err != nil {
		return nil, fmt.Errorf("querying download states: %w", err)
	}
	defer rows.Close()

	out := []models.DownloadState{}
	for rows.Next() {
		st, err := scanDownloadState(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// GetDownload returns one video with its download record or ErrNotFound
// when the video is unknown.
func (s *Store) GetDownload(ctx context.Context, videoID string) (models.DownloadState, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+downloadStateColumns+`
		FROM videos v
		LEFT JOIN downloads d ON v.video_id = d.video_id
		WHERE v.video_id = ?
	`, videoID)
	st, err := scanDownloadState(row)
	if errors.Is(err, sql.ErrNoRows) {
		return st, fmt.Errorf("video %s: %w", videoID, ErrNotFound)
	}
	return st, err
}

func scanDownloadState(row rowScanner) (models.DownloadState, error) {
	var (
		st                    models.DownloadState
		genre, path, fetched sql.NullString
	)
	err := row.Scan(&st.VideoID, &st.Title, &st.ChannelTitle, &st.DurationSec,
		&genre, &st.GenreConfidence, &path, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return st, err
	}
	if err != nil {
		return st, fmt.Errorf("scanning download state: %w", err)
	}
	st.PrimaryGenre = nullableString(genre)
	st.AudioPath = nullableString(path)
	st.DownloadedAt = nullableString(fetched)
	return st, nil
}

func likePattern(q string) string {
	var b []rune
	for _, r := range q {
		if r == '%' || r == '_' || r == '\\' {
			b = append(b, '\\')
		}
		b = append(b, r)
	}
	return "%" + string(b) + "%"
}
