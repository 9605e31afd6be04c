package trend

import (
	"context"
	"fmt"
	"sort"

	"shortsd/internal/models"
)

// DefaultCandidateWindow bounds how many recently seen videos are scored.
const DefaultCandidateWindow = 500

// snapshotDepth is how many snapshots Score looks at.
const snapshotDepth = 2

// Candidate is a video with the snapshots it is scored from.
type Candidate struct {
	Video     models.VideoSummary
	Snapshots []models.Snapshot
}

// Rank scores candidates and returns at most n of them, best first. Equal
// scores keep their input order.
func Rank(candidates []Candidate, n int) []models.RankedVideo {
	if n <= 0 {
		return []models.RankedVideo{}
	}

	ranked := make([]models.RankedVideo, len(candidates))
	for i, c := range candidates {
		ranked[i] = models.RankedVideo{VideoSummary: c.Video, Score: Score(c.Snapshots)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// CandidateSource is the read side of the catalog the ranker depends on.
type CandidateSource interface {
	ShortFormCandidates(ctx context.Context, limit int) ([]models.VideoSummary, error)
	RecentSnapshots(ctx context.Context, videoID string, limit int) ([]models.Snapshot, error)
}

type Ranker struct {
	source CandidateSource
	window int
}

func NewRanker(source CandidateSource, window int) *Ranker {
	if window <= 0 {
		window = DefaultCandidateWindow
	}
	return &Ranker{source: source, window: window}
}

func (r *Ranker) Window() int {
	return r.window
}

// TopN ranks the most recently seen short-form videos and returns the best n.
func (r *Ranker) TopN(ctx context.Context, n int) ([]models.RankedVideo, error) {
	videos, err := r.source.ShortFormCandidates(ctx, r.window)
	if err != nil {
		return nil, fmt.Errorf("loading candidates: %w", err)
	}

	candidates := make([]Candidate, 0, len(videos))
	for _, v := range videos {
		snaps, err := r.source.RecentSnapshots(ctx, v.VideoID, snapshotDepth)
		if err != nil {
			return nil, fmt.Errorf("loading snapshots for %s: %w", v.VideoID, err)
		}
		candidates = append(candidates, Candidate{Video: v, Snapshots: snaps})
	}
	return Rank(candidates, n), nil
}
