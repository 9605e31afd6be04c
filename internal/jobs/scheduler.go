package jobs

import (
	"context"
	"errors"
	"shortsd/internal/jobs/interfaces"
	"shortsd/internal/providers"
	"shortsd/internal/services"
	"shortsd/internal/structures"
	"sync"
	"time"

	"github.com/roylee0704/gron"
)

const backupTimeout = 2 * time.Minute

type Scheduler struct {
	config   *structures.Config
	logger   providers.Logger
	pipeline services.PipelineServiceInterface
	cache    providers.CacheProviderInterface
	backup   *BackupManager
	metrics  providers.MetricsProviderInterface
	cron     *gron.Cron
	opsMu    sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	if interval := s.config.Persistence.SaveInterval; interval > 0 {
		s.cron.AddFunc(gron.Every(interval), func() {
			if err := s.save(); err != nil {
				s.logger.Errorf(providers.TypeApp, "Error while backing up catalog: %s", err)
				return
			}
			s.logger.Infof(providers.TypeApp, "Catalog backed up to %s", s.config.Persistence.FilePath)
		})
	}

	if interval := s.config.Ingestion.Interval; interval > 0 {
		s.cron.AddFunc(gron.Every(interval), s.runPipeline)
		s.logger.Infof(providers.TypeApp, "Pipeline scheduled every %s", interval)
	}

	s.cron.Start()
}

func (s *Scheduler) runPipeline() {
	res, err := s.pipeline.Run(s.ctx)
	if errors.Is(err, services.ErrPipelineBusy) {
		s.logger.Infof(providers.TypeIngest, "Scheduled pipeline skipped, a run is in progress")
		return
	}
	if err != nil {
		s.logger.Errorf(providers.TypeIngest, "Scheduled pipeline failed: %s", err)
		return
	}
	s.cache.Purge()
	s.logger.Infof(providers.TypeIngest, "Scheduled pipeline stored %d items", res.Popular+res.Searched)
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	s.cancel()
}

// Restore loads the backup file into an empty catalog.
func (s *Scheduler) Restore() error {
	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()

	restored, err := s.backup.LoadFromFile(ctx, s.config.Persistence.FilePath)
	if err != nil {
		return err
	}
	if restored {
		s.cache.Purge()
	}
	return nil
}

func (s *Scheduler) Persist() error {
	s.logger.Infof(providers.TypeApp, "Backing up catalog to file...")
	err := s.save()
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while backing up catalog: %s", err)
		return err
	}
	return nil
}

func (s *Scheduler) save() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()

	start := time.Now()
	err := s.backup.SaveToFile(ctx, s.config.Persistence.FilePath)
	s.metrics.ObservePersistenceDuration(time.Since(start))
	return err
}

func NewScheduler(config *structures.Config, logger providers.Logger, pipeline services.PipelineServiceInterface,
	cache providers.CacheProviderInterface, backup *BackupManager, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		config:   config,
		logger:   logger,
		pipeline: pipeline,
		cache:    cache,
		backup:   backup,
		metrics:  metrics,
		ctx:      ctx,
		cancel:   cancel,
	}
}
