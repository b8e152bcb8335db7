package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/velibmap/velib-go/internal/config"
	"github.com/velibmap/velib-go/internal/feed"
	"github.com/velibmap/velib-go/internal/poller"
	"github.com/velibmap/velib-go/internal/snapshot"
)

var newDynamoClient = func(ctx context.Context) (snapshot.DynamoDBClient, error) {
	return snapshot.NewDynamoClient(ctx)
}

func run(ctx context.Context, cfg *config.Config) error {
	client, err := newDynamoClient(ctx)
	if err != nil {
		return err
	}

	store := snapshot.NewDynamoStore(client, cfg.SnapshotTable, config.GetCacheConfig())
	p := poller.New(feed.NewFromConfig(cfg), store)

	log.Info().
		Str("table", cfg.SnapshotTable).
		Str("dataset", cfg.FeedDataset).
		Msg("Starting station poller")

	return p.Start(ctx, cfg.PollSchedule)
}

func main() {
	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Poller failed")
	}
}
