package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/velibmap/velib-go/internal/config"
	"github.com/velibmap/velib-go/internal/models"
	"github.com/velibmap/velib-go/pkg/http/client"
)

// The Explore API refuses pages larger than this.
const maxPageSize = 100

// Fetcher returns the current batch of station records from the feed.
type Fetcher interface {
	FetchStations(ctx context.Context) ([]models.RawStation, error)
}

type Client struct {
	httpClient client.Interface
	dataset    string
	maxRecords int
}

func NewClient(httpClient client.Interface, dataset string, maxRecords int) *Client {
	if maxRecords <= 0 {
		maxRecords = maxPageSize
	}
	return &Client{
		httpClient: httpClient,
		dataset:    dataset,
		maxRecords: maxRecords,
	}
}

type recordsResponse struct {
	TotalCount *int               `json:"total_count"`
	Results    *[]json.RawMessage `json:"results"`
}

// FetchStations pages through the dataset until maxRecords records were read
// or the dataset is exhausted.
func (c *Client) FetchStations(ctx context.Context) ([]models.RawStation, error) {
	stations := make([]models.RawStation, 0, c.maxRecords)

	for offset := 0; offset < c.maxRecords; {
		limit := min(maxPageSize, c.maxRecords-offset)

		page, total, err := c.fetchPage(ctx, offset, limit)
		if err != nil {
			return nil, err
		}
		stations = append(stations, page...)
		offset += len(page)

		if len(page) < limit || (total != nil && offset >= *total) {
			break
		}
	}

	log.Debug().Int("station_count", len(stations)).Str("dataset", c.dataset).Msg("Fetched station feed")
	return stations, nil
}

func (c *Client) fetchPage(ctx context.Context, offset, limit int) ([]models.RawStation, *int, error) {
	path := fmt.Sprintf("/api/explore/v2.1/catalog/datasets/%s/records", url.PathEscape(c.dataset))
	query := url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}

	resp, err := c.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching stations: %w", err)
	}
	if !resp.OK() {
		log.Error().Int("status", resp.StatusCode).Int("offset", offset).Msg("Station feed request failed")
		return nil, nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	var body recordsResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	if body.Results == nil {
		return nil, nil, fmt.Errorf("%w: missing results", ErrUnexpectedResponse)
	}

	stations := make([]models.RawStation, len(*body.Results))
	for i, rec := range *body.Results {
		stations[i] = decodeRecord(rec)
	}

	return stations, body.TotalCount, nil
}

func unmarshalUseNumber(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// NewFromConfig builds a Client for the feed described by cfg.
func NewFromConfig(cfg *config.Config) *Client {
	httpClient := client.New(client.Options{
		BaseURL:   cfg.FeedBaseURL,
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.UserAgent,
	})
	return NewClient(httpClient, cfg.FeedDataset, cfg.FeedMaxRecords)
}
