package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/velibmap/velib-go/internal/config"
	"github.com/velibmap/velib-go/internal/feed"
	"github.com/velibmap/velib-go/internal/models"
	"github.com/velibmap/velib-go/internal/render"
	"github.com/velibmap/velib-go/internal/snapshot"
	"github.com/velibmap/velib-go/internal/station"
)

const (
	sourceFeed  = "feed"
	sourceStore = "store"
)

// stationSource lists the stations of a commune; an empty commune means all.
type stationSource interface {
	Stations(ctx context.Context, commune string) ([]models.StationRecord, error)
}

type feedSource struct {
	fetcher feed.Fetcher
}

func (s *feedSource) Stations(ctx context.Context, commune string) ([]models.StationRecord, error) {
	raw, err := s.fetcher.FetchStations(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]models.StationRecord, 0, len(raw))
	rejected := 0
	for _, r := range raw {
		record, err := station.Parse(r)
		if err != nil {
			rejected++
			continue
		}
		if commune != "" && record.Commune != commune {
			continue
		}
		records = append(records, record)
	}

	log.Debug().Int("total", len(raw)).Int("rejected", rejected).Int("kept", len(records)).Msg("Loaded stations from feed")
	return records, nil
}

type storeSource struct {
	store snapshot.Store
}

func (s *storeSource) Stations(ctx context.Context, commune string) ([]models.StationRecord, error) {
	snapshots, err := s.store.ListByCommune(ctx, commune)
	if err != nil {
		return nil, err
	}

	records := make([]models.StationRecord, len(snapshots))
	for i, snap := range snapshots {
		records[i] = snap.StationRecord
	}
	return records, nil
}

func newSource(ctx context.Context, cfg *config.Config, name string) (stationSource, error) {
	switch name {
	case sourceFeed:
		return &feedSource{fetcher: feed.NewFromConfig(cfg)}, nil
	case sourceStore:
		client, err := newDynamoClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("creating DynamoDB client: %w", err)
		}
		return &storeSource{store: snapshot.NewDynamoStore(client, cfg.SnapshotTable, config.GetCacheConfig())}, nil
	default:
		return nil, fmt.Errorf("unknown source %q, want %q or %q", name, sourceFeed, sourceStore)
	}
}

type mapper struct {
	source  stationSource
	store   render.Store
	commune string
	name    string
}

// renderOnce draws the current stations and publishes the page, returning
// where it was saved.
func (m *mapper) renderOnce(ctx context.Context) (string, error) {
	records, err := m.source.Stations(ctx, m.commune)
	if err != nil {
		return "", fmt.Errorf("loading stations: %w", err)
	}

	title := "Stations Vélib"
	if m.commune != "" {
		title += " - " + m.commune
	}

	html, err := render.MapHTML(render.MapView{
		Title:   title,
		Center:  render.ParisCenter,
		Zoom:    render.CityZoom,
		Markers: render.MarkersFromStations(records),
	})
	if err != nil {
		return "", err
	}

	location, err := m.store.Save(ctx, m.name, html)
	if err != nil {
		return "", err
	}

	log.Info().Int("station_count", len(records)).Str("location", location).Msg("Rendered station map")
	return location, nil
}
