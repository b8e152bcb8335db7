package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/velibmap/velib-go/internal/feed"
	"github.com/velibmap/velib-go/internal/models"
	"github.com/velibmap/velib-go/internal/snapshot"
	"github.com/velibmap/velib-go/internal/station"
)

type clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Result summarizes one poll.
type Result struct {
	FetchedAt time.Time
	Total     int
	Rejected  int
	Saved     int
}

// Poller periodically copies the station feed into a snapshot store.
type Poller struct {
	fetcher feed.Fetcher
	store   snapshot.Store
	clock   clock
}

func New(fetcher feed.Fetcher, store snapshot.Store) *Poller {
	return &Poller{
		fetcher: fetcher,
		store:   store,
		clock:   systemClock{},
	}
}

// PollOnce fetches the feed and saves every well-formed record under a single
// timestamp. Nothing is saved when the fetch fails.
func (p *Poller) PollOnce(ctx context.Context) (Result, error) {
	raw, err := p.fetcher.FetchStations(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("polling station feed: %w", err)
	}

	result := Result{
		FetchedAt: p.clock.Now().UTC(),
		Total:     len(raw),
	}

	records := make([]models.StationRecord, 0, len(raw))
	for _, r := range raw {
		record, err := station.Parse(r)
		if err != nil {
			result.Rejected++
			log.Debug().Err(err).Str("code", r.Code).Msg("Skipping malformed station record")
			continue
		}
		records = append(records, record)
	}

	if err := p.store.SaveBatch(ctx, result.FetchedAt, records); err != nil {
		return result, fmt.Errorf("saving snapshots: %w", err)
	}
	result.Saved = len(records)

	log.Info().
		Int("total", result.Total).
		Int("rejected", result.Rejected).
		Int("saved", result.Saved).
		Time("fetched_at", result.FetchedAt).
		Msg("Polled station feed")

	return result, nil
}

// Start polls immediately, then on every tick of schedule until ctx is done.
// A tick that fires while the previous poll still runs is skipped.
func (p *Poller) Start(ctx context.Context, schedule string) error {
	logger := cronLogger{}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger)))

	if _, err := c.AddFunc(schedule, func() { p.run(ctx) }); err != nil {
		return fmt.Errorf("invalid poll schedule %q: %w", schedule, err)
	}

	p.run(ctx)
	c.Start()
	log.Info().Str("schedule", schedule).Msg("Poller started")

	<-ctx.Done()
	<-c.Stop().Done()
	log.Info().Msg("Poller stopped")
	return nil
}

func (p *Poller) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := p.PollOnce(ctx); err != nil {
		log.Error().Err(err).Msg("Poll failed")
	}
}

// cronLogger routes scheduler messages through zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
