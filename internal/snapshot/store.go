package snapshot

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
	"github.com/velibmap/velib-go/internal/config"
	"github.com/velibmap/velib-go/internal/models"
)

// Store persists timestamped station observations.
type Store interface {
	SaveBatch(ctx context.Context, fetchedAt time.Time, records []models.StationRecord) error
	ListByCommune(ctx context.Context, commune string) ([]models.Snapshot, error)
}

// item is the DynamoDB layout of one observation: hash key stationCode,
// range key fetchedAt.
type item struct {
	StationKey        string  `dynamodbav:"stationCode"`
	FetchedAt         string  `dynamodbav:"fetchedAt"`
	Code              string  `dynamodbav:"code,omitempty"`
	Name              string  `dynamodbav:"name"`
	Latitude          float64 `dynamodbav:"latitude"`
	Longitude         float64 `dynamodbav:"longitude"`
	AvailabilityCount int     `dynamodbav:"availabilityCount"`
	Commune           string  `dynamodbav:"commune"`
	Capacity          int     `dynamodbav:"capacity"`
	DocksAvailable    int     `dynamodbav:"docksAvailable"`
	MechanicalBikes   int     `dynamodbav:"mechanicalBikes"`
	EBikes            int     `dynamodbav:"ebikes"`
	IsRenting         bool    `dynamodbav:"isRenting"`
	IsReturning       bool    `dynamodbav:"isReturning"`
	DueDate           string  `dynamodbav:"dueDate,omitempty"`
	TTL               int64   `dynamodbav:"ttl"`
}

// DynamoStore keeps snapshots in a DynamoDB table
type DynamoStore struct {
	client    DynamoDBClient
	tableName string
	config    *config.CacheConfig
	sleep     func(time.Duration)
}

func NewDynamoStore(client DynamoDBClient, tableName string, cacheConfig *config.CacheConfig) *DynamoStore {
	if cacheConfig == nil {
		cacheConfig = config.GetCacheConfig()
	}
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		config:    cacheConfig,
		sleep:     time.Sleep,
	}
}

// SaveBatch writes one item per record, all stamped with fetchedAt.
func (s *DynamoStore) SaveBatch(ctx context.Context, fetchedAt time.Time, records []models.StationRecord) error {
	requests, err := s.writeRequests(fetchedAt, records)
	if err != nil {
		return err
	}

	batchSize := s.config.BatchSize
	if batchSize <= 0 {
		batchSize = 25
	}
	for i := 0; i < len(requests); i += batchSize {
		end := min(i+batchSize, len(requests))
		if err := s.writeBatch(ctx, requests[i:end]); err != nil {
			return err
		}
	}

	log.Debug().
		Int("station_count", len(requests)).
		Time("fetched_at", fetchedAt).
		Str("table", s.tableName).
		Msg("Saved station snapshots")

	return nil
}

func (s *DynamoStore) writeRequests(fetchedAt time.Time, records []models.StationRecord) ([]types.WriteRequest, error) {
	fetchedAt = fetchedAt.UTC()
	ttl := fetchedAt.Add(s.config.GetSnapshotTTL()).Unix()

	// A batch may not contain the same key twice; the last record wins.
	position := make(map[string]int, len(records))
	requests := make([]types.WriteRequest, 0, len(records))

	for _, record := range records {
		it := toItem(record, fetchedAt, ttl)
		av, err := attributevalue.MarshalMap(it)
		if err != nil {
			return nil, fmt.Errorf("marshaling snapshot item: %w", err)
		}

		request := types.WriteRequest{PutRequest: &types.PutRequest{Item: av}}
		if idx, seen := position[it.StationKey]; seen {
			requests[idx] = request
			continue
		}
		position[it.StationKey] = len(requests)
		requests = append(requests, request)
	}

	return requests, nil
}

func (s *DynamoStore) writeBatch(ctx context.Context, requests []types.WriteRequest) error {
	attempts := max(1, s.config.MaxBatchRetries)

	var lastErr error
	for retry := 0; retry < attempts; retry++ {
		if retry > 0 {
			// exponential backoff
			s.sleep(time.Duration(1<<(retry-1)) * 100 * time.Millisecond)
		}

		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				s.tableName: requests,
			},
		})
		if err != nil {
			lastErr = err
			continue
		}

		unprocessed := out.UnprocessedItems[s.tableName]
		if len(unprocessed) == 0 {
			return nil
		}
		requests = unprocessed
		lastErr = fmt.Errorf("%d items unprocessed", len(unprocessed))
	}

	return fmt.Errorf("batch writing snapshots after %d attempts: %w", attempts, lastErr)
}

// ListByCommune returns the latest snapshot of every station in commune,
// ordered by station key. An empty commune lists every station.
func (s *DynamoStore) ListByCommune(ctx context.Context, commune string) ([]models.Snapshot, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
	}
	if commune != "" {
		input.FilterExpression = aws.String("#commune = :commune")
		input.ExpressionAttributeNames = map[string]string{"#commune": "commune"}
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":commune": &types.AttributeValueMemberS{Value: commune},
		}
	}

	latest := make(map[string]item)
	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scanning snapshots: %w", err)
		}

		var items []item
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("unmarshaling snapshot items: %w", err)
		}
		for _, it := range items {
			if current, ok := latest[it.StationKey]; !ok || it.FetchedAt > current.FetchedAt {
				latest[it.StationKey] = it
			}
		}
	}

	keys := make([]string, 0, len(latest))
	for k := range latest {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	snapshots := make([]models.Snapshot, 0, len(keys))
	for _, k := range keys {
		snap, err := latest[k].toSnapshot()
		if err != nil {
			log.Warn().Err(err).Str("station", k).Msg("Skipping snapshot with invalid timestamp")
			continue
		}
		snapshots = append(snapshots, snap)
	}

	log.Debug().Str("commune", commune).Int("station_count", len(snapshots)).Msg("Listed station snapshots")
	return snapshots, nil
}

func toItem(record models.StationRecord, fetchedAt time.Time, ttl int64) item {
	return item{
		StationKey:        stationKey(record),
		FetchedAt:         fetchedAt.Format(time.RFC3339),
		Code:              record.Code,
		Name:              record.Name,
		Latitude:          record.Coordinates.Latitude,
		Longitude:         record.Coordinates.Longitude,
		AvailabilityCount: record.AvailabilityCount,
		Commune:           record.Commune,
		Capacity:          record.Capacity,
		DocksAvailable:    record.DocksAvailable,
		MechanicalBikes:   record.MechanicalBikes,
		EBikes:            record.EBikes,
		IsRenting:         record.IsRenting,
		IsReturning:       record.IsReturning,
		DueDate:           record.DueDate,
		TTL:               ttl,
	}
}

func (it item) toSnapshot() (models.Snapshot, error) {
	fetchedAt, err := time.Parse(time.RFC3339, it.FetchedAt)
	if err != nil {
		return models.Snapshot{}, err
	}

	return models.Snapshot{
		StationRecord: models.StationRecord{
			StationDetails: models.StationDetails{
				Code:            it.Code,
				Commune:         it.Commune,
				Capacity:        it.Capacity,
				DocksAvailable:  it.DocksAvailable,
				MechanicalBikes: it.MechanicalBikes,
				EBikes:          it.EBikes,
				IsRenting:       it.IsRenting,
				IsReturning:     it.IsReturning,
				DueDate:         it.DueDate,
			},
			Name:              it.Name,
			Coordinates:       models.Location{Latitude: it.Latitude, Longitude: it.Longitude},
			AvailabilityCount: it.AvailabilityCount,
		},
		FetchedAt: fetchedAt,
	}, nil
}

// stationKey falls back to the name, then the position, for stations the
// feed publishes without a code.
func stationKey(record models.StationRecord) string {
	switch {
	case record.Code != "":
		return record.Code
	case record.Name != models.DefaultStationName && record.Name != "":
		return record.Name
	default:
		return fmt.Sprintf("%.6f,%.6f", record.Coordinates.Latitude, record.Coordinates.Longitude)
	}
}
