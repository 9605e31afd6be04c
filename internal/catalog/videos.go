package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"shortsd/internal/models"
)

// UpsertVideo creates the video or refreshes it. first_seen survives
// updates, last_seen is bumped to now and the genre fields are overwritten.
func (s *Store) UpsertVideo(ctx context.Context, v models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := formatTime(s.now())
	var genre interface{}
	if v.PrimaryGenre != "" {
		genre = v.PrimaryGenre
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO videos (
			video_id, title, channel_title, published_at, duration_sec,
			is_short, region, first_seen, last_seen, primary_genre, genre_confidence
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(video_id) DO UPDATE SET
			title=excluded.title, channel_title=excluded.channel_title,
			published_at=excluded.published_at, duration_sec=excluded.duration_sec,
			is_short=excluded.is_short, region=excluded.region,
			last_seen=excluded.last_seen,
			primary_genre=excluded.primary_genre, genre_confidence=excluded.genre_confidence
	`,
		v.ID, v.Title, v.ChannelTitle, v.PublishedAt, v.DurationSec,
		boolToInt(v.IsShort), v.Region, now, now, genre, v.GenreConfidence,
	)
	if err != nil {
		return fmt.Errorf("upserting video %s: %w", v.ID, err)
	}
	return nil
}

const videoColumns = `video_id, title, channel_title, published_at, duration_sec,
	is_short, region, first_seen, last_seen, primary_genre, genre_confidence`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideo(row rowScanner) (models.Video, error) {
	var (
		v                   models.Video
		isShort             int
		firstSeen, lastSeen string
		genre               sql.NullString
	)
	err := row.Scan(&v.ID, &v.Title, &v.ChannelTitle, &v.PublishedAt, &v.DurationSec,
		&isShort, &v.Region, &firstSeen, &lastSeen, &genre, &v.GenreConfidence)
	if err != nil {
		return v, err
	}
	v.IsShort = isShort != 0
	v.FirstSeen = parseTime(firstSeen)
	v.LastSeen = parseTime(lastSeen)
	v.PrimaryGenre = genre.String
	return v, nil
}

// GetVideo returns a single video or ErrNotFound.
func (s *Store) GetVideo(ctx context.Context, videoID string) (models.Video, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE video_id = ?`, videoID)
	v, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return v, fmt.Errorf("video %s: %w", videoID, ErrNotFound)
	}
	if err != nil {
		return v, fmt.Errorf("querying video %s: %w", videoID, err)
	}
	return v, nil
}

// ShortFormCandidates returns up to limit short-form videos, most recently
// seen first.
func (s *Store) ShortFormCandidates(ctx context.Context, limit int) ([]models.VideoSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT video_id, title, channel_title, duration_sec
		FROM videos
		WHERE is_short = 1
		ORDER BY last_seen DESC, video_id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying candidates: %w", err)
	}
	defer rows.Close()

	var out []models.VideoSummary
	for rows.Next() {
		var v models.VideoSummary
		if err := rows.Scan(&v.VideoID, &v.Title, &v.ChannelTitle, &v.DurationSec); err != nil {
			return nil, fmt.Errorf("scanning candidate row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// VideosByGenre returns videos whose stored primary genre is one of genres
// with at least minConfidence, most confident first.
func (s *Store) VideosByGenre(ctx context.Context, genres []string, minConfidence float64) ([]models.GenreListing, error) {
	if len(genres) == 0 {
		return []models.GenreListing{}, nil
	}

	args := make([]any, 0, len(genres)+1)
	for _, g := range genres {
		args = append(args, g)
	}
	args = append(args, minConfidence)

	rows, err := s.db.QueryContext(ctx, `
		SELECT video_id, title, channel_title, published_at, duration_sec,
			primary_genre, genre_confidence
		FROM videos
		WHERE primary_genre IN (`+placeholders(len(genres))+`) AND genre_confidence >= ?
		ORDER BY genre_confidence DESC, last_seen DESC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying videos by genre: %w", err)
	}
	defer rows.Close()

	out := []models.GenreListing{}
	for rows.Next() {
		var g models.GenreListing
		if err := rows.Scan(&g.VideoID, &g.Title, &g.ChannelTitle, &g.PublishedAt,
			&g.DurationSec, &g.PrimaryGenre, &g.GenreConfidence); err != nil {
			return nil, fmt.Errorf("scanning genre row: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// GenreStatistics counts stored videos per primary genre.
func (s *Store) GenreStatistics(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT primary_genre, COUNT(*)
		FROM videos
		WHERE primary_genre IS NOT NULL
		GROUP BY primary_genre
	`)
	if err != nil {
		return nil, fmt.Errorf("querying genre statistics: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var genre string
		var count int
		if err := rows.Scan(&genre, &count); err != nil {
			return nil, fmt.Errorf("scanning genre statistics: %w", err)
		}
		stats[genre] = count
	}
	return stats, rows.Err()
}

// CountVideos returns the number of stored videos.
func (s *Store) CountVideos(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM videos").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting videos: %w", err)
	}
	return count, nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
