package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velibmap/velib-go/internal/api"
	"github.com/velibmap/velib-go/internal/geocode"
	"github.com/velibmap/velib-go/internal/models"
)

func TestNearbyHandler_HandleRequest(t *testing.T) {
	tests := []struct {
		name           string
		params         map[string]string
		geocoder       *mockGeocoder
		fetcher        *mockFetcher
		expectedStatus int
		expectedError  string
		expectedNames  []string
	}{
		{
			name:           "successful lookup",
			params:         map[string]string{"address": "Place du Châtelet"},
			geocoder:       &mockGeocoder{},
			fetcher:        &mockFetcher{},
			expectedStatus: http.StatusOK,
			expectedNames:  []string{"Rivoli - Sébastopol", "Pont Neuf - Quai du Louvre"},
		},
		{
			name:           "custom radius",
			params:         map[string]string{"address": "Place du Châtelet", "radius": "300"},
			geocoder:       &mockGeocoder{},
			fetcher:        &mockFetcher{},
			expectedStatus: http.StatusOK,
			expectedNames:  []string{"Rivoli - Sébastopol"},
		},
		{
			name:           "missing address",
			params:         map[string]string{},
			geocoder:       &mockGeocoder{},
			fetcher:        &mockFetcher{},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Address required",
		},
		{
			name:           "invalid radius",
			params:         map[string]string{"address": "Place du Châtelet", "radius": "-5"},
			geocoder:       &mockGeocoder{},
			fetcher:        &mockFetcher{},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid radius",
		},
		{
			name:   "address not found",
			params: map[string]string{"address": "nowhere"},
			geocoder: &mockGeocoder{geocodeFn: func(ctx context.Context, address string) (models.Location, error) {
				return models.Location{}, geocode.ErrNotFound
			}},
			fetcher:        &mockFetcher{},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Address not found",
		},
		{
			name:     "feed unavailable",
			params:   map[string]string{"address": "Place du Châtelet"},
			geocoder: &mockGeocoder{},
			fetcher: &mockFetcher{fetchFn: func(ctx context.Context) ([]models.RawStation, error) {
				return nil, errors.New("feed down")
			}},
			expectedStatus: http.StatusBadGateway,
			expectedError:  "Station feed unavailable",
		},
		{
			name:   "geocoder unavailable",
			params: map[string]string{"address": "Place du Châtelet"},
			geocoder: &mockGeocoder{geocodeFn: func(ctx context.Context, address string) (models.Location, error) {
				return models.Location{}, errors.New("timeout")
			}},
			fetcher:        &mockFetcher{},
			expectedStatus: http.StatusBadGateway,
			expectedError:  "Geocoding service unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewNearbyHandler(newTestService(tt.geocoder, tt.fetcher))

			response, err := h.HandleRequest(context.Background(), events.APIGatewayProxyRequest{
				QueryStringParameters: tt.params,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, response.StatusCode)
			assert.Equal(t, "*", response.Headers["Access-Control-Allow-Origin"])

			if tt.expectedError != "" {
				var errorResp api.ErrorResponse
				require.NoError(t, json.Unmarshal([]byte(response.Body), &errorResp))
				assert.Equal(t, "error", errorResp.ResponseType)
				assert.Equal(t, tt.expectedError, errorResp.Error)
				return
			}

			var nearbyResp api.NearbyResponse
			require.NoError(t, json.Unmarshal([]byte(response.Body), &nearbyResp))
			assert.Equal(t, "nearby", nearbyResp.ResponseType)
			assert.Equal(t, chatelet, nearbyResp.Origin)
			assert.Equal(t, tt.expectedNames, stationNames(nearbyResp.Stations))
		})
	}
}

func TestErrorStatus_Unknown(t *testing.T) {
	message, status := errorStatus(errors.New("boom"))

	assert.Equal(t, "Internal Server Error", message)
	assert.Equal(t, http.StatusInternalServerError, status)
}
