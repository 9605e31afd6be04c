package services

import (
	"context"
	"errors"
	"fmt"

	"shortsd/internal/models"
	"shortsd/internal/providers"
	"shortsd/internal/structures"

	"go.uber.org/atomic"
)

var ErrPipelineBusy = errors.New("pipeline is already running")

type PipelineResult struct {
	Popular  int                  `json:"popular"`
	Searched int                  `json:"searched"`
	Top      []models.RankedVideo `json:"top"`
}

type SearchDownloadResult struct {
	Found      int             `json:"found"`
	Downloaded bool            `json:"downloaded"`
	Report     *DownloadReport `json:"report,omitempty"`
}

type PipelineServiceInterface interface {
	Run(ctx context.Context) (PipelineResult, error)
	Search(ctx context.Context, query string, maxResults int) (int, error)
	SearchAndDownload(ctx context.Context, query string, maxResults int, download bool) (SearchDownloadResult, error)
	Running() bool
}

// PipelineService serialises every ingestion run behind one flag.
type PipelineService struct {
	ingestion IngestionServiceInterface
	ranking   RankingServiceInterface
	media     MediaServiceInterface
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
	topN      int

	running atomic.Bool
}

func NewPipelineService(conf *structures.Config, ingestion IngestionServiceInterface, ranking RankingServiceInterface,
	media MediaServiceInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) PipelineServiceInterface {
	return &PipelineService{
		ingestion: ingestion,
		ranking:   ranking,
		media:     media,
		logger:    logger,
		metrics:   metrics,
		topN:      conf.Ranking.TopN,
	}
}

func (p *PipelineService) Running() bool {
	return p.running.Load()
}

func (p *PipelineService) exclusive(fn func() error) error {
	if !p.running.CompareAndSwap(false, true) {
		p.metrics.IncPipelineRuns("busy")
		return ErrPipelineBusy
	}
	defer p.running.Store(false)

	if err := fn(); err != nil {
		p.metrics.IncPipelineRuns("error")
		return err
	}
	p.metrics.IncPipelineRuns("success")
	return nil
}

// Run fetches the popular chart, runs the trending searches and ranks the
// catalog.
func (p *PipelineService) Run(ctx context.Context) (PipelineResult, error) {
	var res PipelineResult
	err := p.exclusive(func() error {
		p.logger.Infof(providers.TypeIngest, "Pipeline: fetching popular shorts")
		n, err := p.ingestion.FetchPopular(ctx)
		res.Popular = n
		if err != nil {
			return fmt.Errorf("fetching popular shorts: %w", err)
		}

		p.logger.Infof(providers.TypeIngest, "Pipeline: searching trending sounds")
		n, err = p.ingestion.SearchTrending(ctx)
		res.Searched = n
		if err != nil {
			return fmt.Errorf("searching trending sounds: %w", err)
		}

		p.logger.Infof(providers.TypeIngest, "Pipeline: ranking")
		top, err := p.ranking.TopN(ctx, p.topN)
		if err != nil {
			return fmt.Errorf("ranking: %w", err)
		}
		res.Top = top
		p.logger.Infof(providers.TypeIngest, "Pipeline finished: %d popular, %d searched, %d ranked",
			res.Popular, res.Searched, len(top))
		return nil
	})
	if err != nil && !errors.Is(err, ErrPipelineBusy) {
		p.logger.Errorf(providers.TypeIngest, "Pipeline failed: %s", err)
	}
	return res, err
}

func (p *PipelineService) Search(ctx context.Context, query string, maxResults int) (int, error) {
	var found int
	err := p.exclusive(func() error {
		var err error
		found, err = p.ingestion.SearchQuery(ctx, query, maxResults)
		return err
	})
	return found, err
}

// SearchAndDownload runs one query and, when download is set, fetches the
// audio of the maxResults best ranked videos.
func (p *PipelineService) SearchAndDownload(ctx context.Context, query string, maxResults int, download bool) (SearchDownloadResult, error) {
	var res SearchDownloadResult
	err := p.exclusive(func() error {
		found, err := p.ingestion.SearchQuery(ctx, query, maxResults)
		res.Found = found
		if err != nil {
			return err
		}
		if !download || found == 0 {
			return nil
		}

		top, err := p.ranking.TopN(ctx, maxResults)
		if err != nil {
			return fmt.Errorf("ranking: %w", err)
		}
		ids := make([]string, 0, len(top))
		for _, v := range top {
			ids = append(ids, v.VideoID)
		}
		report, err := p.media.Download(ctx, ids)
		if err != nil {
			return fmt.Errorf("downloading audio: %w", err)
		}
		res.Downloaded = true
		res.Report = &report
		return nil
	})
	return res, err
}
