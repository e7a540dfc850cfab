// Package pipeline orchestrates the observation ingest loop: resolve a
// weather station for every indexed coordinate, then repeatedly fetch each
// station's latest observation and publish it to the sink.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/GNSkier/MoonRabbit/internal/domain"
	"github.com/GNSkier/MoonRabbit/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Publisher writes an observation to the destination.
type Publisher interface {
	Publish(ctx context.Context, obs domain.Observation) error
}

// Pipeline drives station discovery and the observation sweep loop.
type Pipeline struct {
	index     domain.RegionIndex
	resolver  domain.StationResolver
	fetcher   domain.ObservationFetcher
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock

	pacing       time.Duration
	pollInterval time.Duration

	stations []domain.Station
	ready    atomic.Bool
}

// New creates a Pipeline over a region index and its collaborators.
func New(
	index domain.RegionIndex,
	resolver domain.StationResolver,
	fetcher domain.ObservationFetcher,
	publisher Publisher,
	logger *slog.Logger,
	metrics *observability.Metrics,
	pacing, pollInterval time.Duration,
) *Pipeline {
	return &Pipeline{
		index:        index,
		resolver:     resolver,
		fetcher:      fetcher,
		publisher:    publisher,
		logger:       logger,
		metrics:      metrics,
		clock:        clockwork.NewRealClock(),
		pacing:       pacing,
		pollInterval: pollInterval,
	}
}

// SetClock replaces the pipeline clock. Passing nil restores the real clock.
func (p *Pipeline) SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	p.clock = c
}

// CheckReadiness returns nil once the pipeline has published at least one
// observation, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no observations published yet")
	}
	return nil
}

// Stations returns the stations found by DiscoverStations, in discovery order.
func (p *Pipeline) Stations() []domain.Station {
	return p.stations
}

// DiscoverStations resolves the nearest station for every coordinate in the
// index, walking regions in sorted order. A station serving several
// coordinates is kept once, the first time it appears. Lookup failures and
// coordinates with no station are skipped so one bad point cannot stall the
// sweep. Returns an error only when the context is cancelled.
func (p *Pipeline) DiscoverStations(ctx context.Context) error {
	seen := make(map[string]struct{})
	p.stations = p.stations[:0]

	for _, region := range p.index.Regions() {
		for _, coord := range p.index[region] {
			if err := ctx.Err(); err != nil {
				return err
			}

			station, err := p.resolver.NearestStation(ctx, coord.Lat, coord.Lon)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				p.logger.Warn("station lookup failed, skipping coordinate",
					"error", err, "region", region, "lat", coord.Lat, "lon", coord.Lon)
				continue
			}
			if station.ID == "" {
				p.logger.Warn("no station for coordinate, skipping",
					"region", region, "lat", coord.Lat, "lon", coord.Lon)
				continue
			}
			if _, dup := seen[station.ID]; dup {
				continue
			}
			seen[station.ID] = struct{}{}
			station.State = region
			p.stations = append(p.stations, station)

			if !p.sleep(ctx, p.pacing) {
				return ctx.Err()
			}
		}
	}

	p.metrics.StationsDiscovered.Set(float64(len(p.stations)))
	p.logger.Info("station discovery complete",
		"stations", len(p.stations), "coordinates", p.index.Len())
	return nil
}

// Run discovers stations once, then sweeps their latest observations until
// the context is cancelled, pausing pollInterval between sweeps.
func (p *Pipeline) Run(ctx context.Context) error {
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	if err := p.DiscoverStations(ctx); err != nil {
		p.logger.Info("pipeline stopping during discovery", "reason", err)
		return nil
	}
	if len(p.stations) == 0 {
		return errors.New("no stations discovered, nothing to poll")
	}

	p.logger.Info("pipeline started",
		"stations", len(p.stations), "poll_interval", p.pollInterval)

	for {
		p.sweep(ctx)
		if ctx.Err() != nil {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
		if !p.sleep(ctx, p.pollInterval) {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// sweep fetches and publishes the latest observation for every discovered
// station. Per-station failures are logged and skipped.
func (p *Pipeline) sweep(ctx context.Context) {
	for _, station := range p.stations {
		if ctx.Err() != nil {
			return
		}

		obs, err := p.fetcher.LatestObservation(ctx, station.ID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("observation fetch failed, skipping station",
				"error", err, "station", station.ID)
			continue
		}

		if err := p.publisher.Publish(ctx, obs); err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("publish failed", "error", err, "station", station.ID)
			p.metrics.PublishErrors.Inc()
			continue
		}

		p.metrics.ObservationsPublished.Inc()
		p.ready.Store(true)

		if !p.sleep(ctx, p.pacing) {
			return
		}
	}
}

// sleep pauses for d on the pipeline clock. Returns false when the context is
// cancelled first.
func (p *Pipeline) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-p.clock.After(d):
		return true
	}
}
