// Package backfill geocodes stored breweries that have no coordinates yet, so that
// nearby searches can use distance filtering for them instead of the text fallback.
package backfill

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/hopmap/internal/geocoding"
	"github.com/UnknownOlympus/hopmap/internal/metrics"
	"github.com/UnknownOlympus/hopmap/internal/models"
	"github.com/UnknownOlympus/hopmap/internal/repository"
)

// BatchSize is the number of breweries fetched per polling round.
const BatchSize = 100

// Service polls the repository for breweries without coordinates and geocodes
// them with a fixed pool of workers.
type Service struct {
	log          *slog.Logger
	repo         repository.Interface
	provider     geocoding.Provider
	providerName string // label for request duration metrics
	metrics      *metrics.Metrics
	numWorkers   int
	pollInterval time.Duration
	region       string // appended to each address, e.g. "Ohio"
}

// NewService creates a backfill service. A non-positive worker count is treated as one worker.
func NewService(
	log *slog.Logger,
	repo repository.Interface,
	provider geocoding.Provider,
	providerName string,
	metrics *metrics.Metrics,
	numWorkers int,
	pollInterval time.Duration,
	region string,
) *Service {
	if numWorkers < 1 {
		numWorkers = 1
	}

	return &Service{
		log:          log,
		repo:         repo,
		provider:     provider,
		providerName: providerName,
		metrics:      metrics,
		numWorkers:   numWorkers,
		pollInterval: pollInterval,
		region:       region,
	}
}

// Run processes one batch immediately and then one per poll interval until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	s.log.InfoContext(ctx, "Coordinate backfill started", "interval", s.pollInterval, "workers", s.numWorkers)
	s.ProcessBatch(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.InfoContext(ctx, "Coordinate backfill stopped")
			return
		case <-ticker.C:
			s.log.DebugContext(ctx, "Polling for breweries without coordinates")
			s.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch geocodes up to BatchSize breweries and returns the number that were updated.
func (s *Service) ProcessBatch(ctx context.Context) int {
	tasks, err := s.repo.FetchBreweriesForGeocoding(ctx, BatchSize)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to fetch breweries for geocoding", "error", err)
		return 0
	}
	if len(tasks) == 0 {
		s.log.DebugContext(ctx, "No breweries to geocode")
		return 0
	}

	s.log.InfoContext(ctx, "Found breweries to geocode, starting worker pool",
		"jobs", len(tasks),
		"num_workers", s.numWorkers)

	jobs := make(chan models.Task, len(tasks))
	var (
		wgr     sync.WaitGroup
		mu      sync.Mutex
		updated int
	)

	for i := 1; i <= s.numWorkers; i++ {
		wgr.Add(1)
		go func(idx int) {
			defer wgr.Done()
			n := s.worker(ctx, idx, jobs)
			mu.Lock()
			updated += n
			mu.Unlock()
		}(i)
	}

	for _, task := range tasks {
		jobs <- task
	}
	close(jobs)

	wgr.Wait()
	s.log.InfoContext(ctx, "Backfill batch finished", "jobs", len(tasks), "updated", updated)

	return updated
}

func (s *Service) worker(ctx context.Context, idx int, jobs <-chan models.Task) int {
	updated := 0
	for task := range jobs {
		if ctx.Err() != nil {
			continue
		}
		s.metrics.ActiveWorkers.Inc()
		if s.process(ctx, idx, task) {
			updated++
		}
		s.metrics.ActiveWorkers.Dec()
	}

	return updated
}

func (s *Service) process(ctx context.Context, idx int, task models.Task) bool {
	s.log.DebugContext(ctx, "Geocoding brewery", "worker", idx, "brewery", task.ID)

	startTime := time.Now()
	coords, err := s.provider.Geocode(ctx, s.query(task.Address))
	s.metrics.RequestSeconds.WithLabelValues(s.providerName).Observe(time.Since(startTime).Seconds())
	if err == nil && coords == nil {
		err = geocoding.ErrEmptyResponse
	}

	if err != nil {
		s.log.ErrorContext(ctx, "Failed to geocode brewery", "worker", idx, "brewery", task.ID, "error", err)
		s.metrics.TaskProcessed.WithLabelValues("failure").Inc()
		s.metrics.APIErrors.Inc()

		if err = s.repo.IncrementFailureCount(ctx, task.ID, err.Error()); err != nil {
			s.log.ErrorContext(ctx, "Could not update failure count",
				"worker", idx,
				"brewery", task.ID,
				"error", err)
		}
		return false
	}

	s.metrics.TaskProcessed.WithLabelValues("success").Inc()

	if err = s.repo.UpdateBreweryCoordinates(ctx, task.ID, *coords); err != nil {
		s.log.ErrorContext(ctx, "Failed to store brewery coordinates",
			"worker", idx,
			"brewery", task.ID,
			"error", err)
		return false
	}

	s.log.DebugContext(ctx, "Brewery geocoded", "worker", idx, "brewery", task.ID)
	return true
}

func (s *Service) query(address string) string {
	if s.region == "" {
		return address
	}
	return address + ", " + s.region
}
