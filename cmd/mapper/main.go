package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/velibmap/velib-go/internal/config"
	"github.com/velibmap/velib-go/internal/render"
	"github.com/velibmap/velib-go/internal/snapshot"
)

var (
	newDynamoClient = func(ctx context.Context) (snapshot.DynamoDBClient, error) {
		return snapshot.NewDynamoClient(ctx)
	}
	newS3Client = func(ctx context.Context) (render.S3Client, error) {
		return render.NewS3Client(ctx)
	}
)

type options struct {
	source  string
	commune string
	out     string
	bucket  string
	dir     string
	watch   bool
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "mapper",
		Short: "Renders every Vélib station on a clustered map",
		Long: `Renders every Vélib station of a commune on a clustered marker map, from
the live feed or from the snapshots saved by the poller, and writes the page
to a local directory or an S3 bucket.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMapper(cmd.Context(), cfg, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.source, "source", sourceFeed, "where stations come from: feed or store")
	flags.StringVar(&opts.commune, "commune", "Paris", "only map stations of this commune, empty for all")
	flags.StringVar(&opts.out, "out", "map.html", "name of the rendered page")
	flags.StringVar(&opts.bucket, "bucket", cfg.MapBucket, "S3 bucket to upload to instead of --dir")
	flags.StringVar(&opts.dir, "dir", cfg.MapDir, "directory to write the page to")
	flags.BoolVar(&opts.watch, "watch", false, "re-render on the poll schedule until interrupted")

	return cmd
}

func runMapper(ctx context.Context, cfg *config.Config, opts *options) error {
	src, err := newSource(ctx, cfg, opts.source)
	if err != nil {
		return err
	}
	store, err := newStore(ctx, opts)
	if err != nil {
		return err
	}

	m := &mapper{source: src, store: store, commune: opts.commune, name: opts.out}

	if _, err := m.renderOnce(ctx); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(cfg.PollSchedule, func() {
		if _, err := m.renderOnce(ctx); err != nil {
			log.Error().Err(err).Msg("Rendering map failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", cfg.PollSchedule, err)
	}

	c.Start()
	log.Info().Str("schedule", cfg.PollSchedule).Msg("Watching for station updates")
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func newStore(ctx context.Context, opts *options) (render.Store, error) {
	if opts.bucket == "" {
		return render.NewFileStore(opts.dir), nil
	}

	client, err := newS3Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating S3 client: %w", err)
	}
	return render.NewS3Store(client, opts.bucket), nil
}

func main() {
	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
