package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"
	"github.com/velibmap/velib-go/internal/config"
	"github.com/velibmap/velib-go/internal/feed"
	"github.com/velibmap/velib-go/internal/geocode"
	"github.com/velibmap/velib-go/internal/handler"
	"github.com/velibmap/velib-go/internal/station"
)

var (
	lambdaStart   = lambda.Start // Allow mocking of lambda.Start in tests
	nearbyHandler *handler.NearbyHandler
	setupOnce     sync.Once
	initHandler   = defaultInitHandler
)

func defaultInitHandler(_ context.Context) (*handler.NearbyHandler, error) {
	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()

	geocoder, err := geocode.NewFromConfig(cfg, config.GetCacheConfig())
	if err != nil {
		return nil, fmt.Errorf("initializing geocoder: %w", err)
	}

	service := handler.NewNearbyService(geocoder, feed.NewFromConfig(cfg), station.NewFinder(cfg.MaxDistance))
	return handler.NewNearbyHandler(service), nil
}

func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if nearbyHandler == nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"responseType":"error","error":"Handler not initialized"}`,
		}, fmt.Errorf("handler not initialized")
	}
	return nearbyHandler.HandleRequest(ctx, request)
}

func InitializeService() error {
	var initError error
	setupOnce.Do(func() {
		log.Debug().Msg("Initializing nearby service...")
		var err error
		nearbyHandler, err = initHandler(context.Background())
		if err != nil {
			initError = fmt.Errorf("failed to initialize handler: %w", err)
			log.Error().Err(err).Msg("Failed to initialize handler")
			return
		}
		log.Debug().Msg("Nearby service initialized successfully")
	})
	return initError
}

func init() {
	if err := InitializeService(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize service")
	}
}

func main() {
	lambdaStart(handleRequest)
}
