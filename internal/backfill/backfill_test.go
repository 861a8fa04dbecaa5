package backfill_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/hopmap/internal/backfill"
	"github.com/UnknownOlympus/hopmap/internal/geocoding"
	"github.com/UnknownOlympus/hopmap/internal/metrics"
	"github.com/UnknownOlympus/hopmap/internal/models"
	"github.com/UnknownOlympus/hopmap/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func newBackfill(t *testing.T) (*backfill.Service, *mocks.Interface, *mocks.Provider, *metrics.Metrics) {
	t.Helper()
	mockRepo := mocks.NewInterface(t)
	mockProvider := mocks.NewProvider(t)
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	svc := backfill.NewService(slog.Default(), mockRepo, mockProvider, "google", appMetrics, 2, time.Hour, "Ohio")

	return svc, mockRepo, mockProvider, appMetrics
}

func TestProcessBatch(t *testing.T) {
	ctx := t.Context()

	t.Run("successful processing", func(t *testing.T) {
		svc, mockRepo, mockProvider, appMetrics := newBackfill(t)
		tasks := []models.Task{{ID: "b1", Address: "1 High St, Columbus"}}
		coords := &models.Coordinates{Latitude: 39.96, Longitude: -83.0}

		mockRepo.On("FetchBreweriesForGeocoding", ctx, backfill.BatchSize).Return(tasks, nil).Once()
		mockProvider.On("Geocode", ctx, "1 High St, Columbus, Ohio").Return(coords, nil).Once()
		mockRepo.On("UpdateBreweryCoordinates", ctx, "b1", *coords).Return(nil).Once()

		assert.Equal(t, 1, svc.ProcessBatch(ctx))
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.TaskProcessed.WithLabelValues("success")), 0)
		assert.InDelta(t, 0, testutil.ToFloat64(appMetrics.ActiveWorkers), 0)
	})

	t.Run("fetch returns error", func(t *testing.T) {
		svc, mockRepo, _, _ := newBackfill(t)

		mockRepo.On("FetchBreweriesForGeocoding", ctx, backfill.BatchSize).Return(nil, assert.AnError).Once()

		assert.Zero(t, svc.ProcessBatch(ctx))
	})

	t.Run("fetch returns empty list", func(t *testing.T) {
		svc, mockRepo, mockProvider, _ := newBackfill(t)

		mockRepo.On("FetchBreweriesForGeocoding", ctx, backfill.BatchSize).Return([]models.Task{}, nil).Once()

		assert.Zero(t, svc.ProcessBatch(ctx))
		mockProvider.AssertNotCalled(t, "Geocode")
	})

	t.Run("provider error increments failure count", func(t *testing.T) {
		svc, mockRepo, mockProvider, appMetrics := newBackfill(t)
		tasks := []models.Task{{ID: "b2", Address: "nowhere"}}
		geocodeErr := errors.New("geocoding failed")

		mockRepo.On("FetchBreweriesForGeocoding", ctx, backfill.BatchSize).Return(tasks, nil).Once()
		mockProvider.On("Geocode", ctx, "nowhere, Ohio").Return(nil, geocodeErr).Once()
		mockRepo.On("IncrementFailureCount", ctx, "b2", geocodeErr.Error()).Return(nil).Once()

		assert.Zero(t, svc.ProcessBatch(ctx))
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.TaskProcessed.WithLabelValues("failure")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.APIErrors), 0)
	})

	t.Run("nil coordinates count as a failure", func(t *testing.T) {
		svc, mockRepo, mockProvider, appMetrics := newBackfill(t)
		tasks := []models.Task{{ID: "b3", Address: "3 Main St"}}

		mockRepo.On("FetchBreweriesForGeocoding", ctx, backfill.BatchSize).Return(tasks, nil).Once()
		mockProvider.On("Geocode", ctx, "3 Main St, Ohio").Return(nil, nil).Once()
		mockRepo.On("IncrementFailureCount", ctx, "b3", geocoding.ErrEmptyResponse.Error()).Return(nil).Once()

		assert.Zero(t, svc.ProcessBatch(ctx))
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.TaskProcessed.WithLabelValues("failure")), 0)
		mockRepo.AssertNotCalled(t, "UpdateBreweryCoordinates")
	})

	t.Run("failure count update error is logged", func(t *testing.T) {
		svc, mockRepo, mockProvider, _ := newBackfill(t)
		tasks := []models.Task{{ID: "b2", Address: "nowhere"}}

		mockRepo.On("FetchBreweriesForGeocoding", ctx, backfill.BatchSize).Return(tasks, nil).Once()
		mockProvider.On("Geocode", ctx, "nowhere, Ohio").Return(nil, assert.AnError).Once()
		mockRepo.On("IncrementFailureCount", ctx, "b2", assert.AnError.Error()).Return(assert.AnError).Once()

		assert.Zero(t, svc.ProcessBatch(ctx))
	})

	t.Run("coordinate update error is not counted", func(t *testing.T) {
		svc, mockRepo, mockProvider, _ := newBackfill(t)
		tasks := []models.Task{{ID: "b1", Address: "1 High St"}}
		coords := &models.Coordinates{Latitude: 39.96, Longitude: -83.0}

		mockRepo.On("FetchBreweriesForGeocoding", ctx, backfill.BatchSize).Return(tasks, nil).Once()
		mockProvider.On("Geocode", ctx, "1 High St, Ohio").Return(coords, nil).Once()
		mockRepo.On("UpdateBreweryCoordinates", ctx, "b1", *coords).Return(assert.AnError).Once()

		assert.Zero(t, svc.ProcessBatch(ctx))
	})

	t.Run("every task is handled by the pool", func(t *testing.T) {
		svc, mockRepo, mockProvider, _ := newBackfill(t)
		tasks := []models.Task{
			{ID: "b1", Address: "a"},
			{ID: "b2", Address: "b"},
			{ID: "b3", Address: "c"},
		}
		coords := &models.Coordinates{Latitude: 40, Longitude: -82}

		mockRepo.On("FetchBreweriesForGeocoding", ctx, backfill.BatchSize).Return(tasks, nil).Once()
		for _, task := range tasks {
			mockProvider.On("Geocode", ctx, task.Address+", Ohio").Return(coords, nil).Once()
			mockRepo.On("UpdateBreweryCoordinates", ctx, task.ID, *coords).Return(nil).Once()
		}

		assert.Equal(t, 3, svc.ProcessBatch(ctx))
	})
}

func TestRun(t *testing.T) {
	t.Run("stops when context is cancelled", func(t *testing.T) {
		svc, mockRepo, _, _ := newBackfill(t)
		ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
		defer cancel()

		mockRepo.On("FetchBreweriesForGeocoding", ctx, backfill.BatchSize).Return([]models.Task{}, nil).Once()

		done := make(chan struct{})
		go func() {
			svc.Run(ctx)
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("backfill did not stop after cancellation")
		}
	})
}
