package services

import (
	"context"

	"shortsd/internal/models"
	"shortsd/internal/structures"
	"shortsd/internal/trend"
)

type RankingServiceInterface interface {
	TopN(ctx context.Context, n int) ([]models.RankedVideo, error)
	DefaultN() int
}

type RankingService struct {
	ranker   *trend.Ranker
	defaultN int
}

func NewRankingService(conf *structures.Config, catalog CatalogInterface) RankingServiceInterface {
	return &RankingService{
		ranker:   trend.NewRanker(catalog, conf.Ranking.CandidateWindow),
		defaultN: conf.Ranking.TopN,
	}
}

func (s *RankingService) TopN(ctx context.Context, n int) ([]models.RankedVideo, error) {
	return s.ranker.TopN(ctx, n)
}

// DefaultN is the configured size of the trending list.
func (s *RankingService) DefaultN() int {
	return s.defaultN
}
