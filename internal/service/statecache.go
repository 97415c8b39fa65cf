package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/kehm/eckochain-client/internal/usecase"
)

// CacheService runs the metadata cache reconciler on a fixed schedule.
// A failed run is logged and the job waits for its next tick; there is no
// retry beyond the natural interval.
type CacheService struct {
	cache    *usecase.CacheUsecase
	interval int
	cron     *cron.Cron
}

func NewCacheService(cache *usecase.CacheUsecase, intervalMin int) *CacheService {
	return &CacheService{
		cache:    cache,
		interval: intervalMin,
		cron:     cron.New(),
	}
}

// Start schedules the job and runs one refresh immediately.
func (s *CacheService) Start() error {
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %dm", s.interval), s.run)
	if err != nil {
		return err
	}
	s.cron.Start()
	go s.run()
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (s *CacheService) Stop() {
	<-s.cron.Stop().Done()
}

func (s *CacheService) run() {
	slog.Info("running state cache job", slog.String("module", "cache"))
	written, err := s.cache.Refresh(context.Background(), nil)
	if err != nil {
		slog.Error("state cache job failed",
			slog.String("error", err.Error()),
			slog.String("module", "cache"),
		)
		return
	}
	slog.Info("state cache job succeeded",
		slog.Int("written", written),
		slog.String("module", "cache"),
	)
}
