package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velibmap/velib-go/internal/api"
	"github.com/velibmap/velib-go/internal/geocode"
	"github.com/velibmap/velib-go/internal/models"
)

func newTestRouter(geocoder *mockGeocoder, fetcher *mockFetcher) *mux.Router {
	r := mux.NewRouter()
	NewWebHandler(newTestService(geocoder, fetcher)).Register(r)
	return r
}

func serve(r http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestWebHandler_Form(t *testing.T) {
	rec := serve(newTestRouter(&mockGeocoder{}, &mockFetcher{}), http.MethodGet, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `<form action="/velib" method="get">`)
}

func TestWebHandler_Results(t *testing.T) {
	rec := serve(newTestRouter(&mockGeocoder{}, &mockFetcher{}), http.MethodGet, "/velib?address=Place+du+Ch%C3%A2telet")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<h3>Résultats pour Place du Châtelet</h3>")
	assert.Contains(t, body, "Rivoli - Sébastopol")
	assert.Contains(t, body, "Pont Neuf - Quai du Louvre")
	assert.NotContains(t, body, "Benjamin Godard")
}

func TestWebHandler_Results_Errors(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		geocoder       *mockGeocoder
		fetcher        *mockFetcher
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "missing address",
			target:         "/velib",
			geocoder:       &mockGeocoder{},
			fetcher:        &mockFetcher{},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Veuillez fournir une adresse",
		},
		{
			name:   "address not found",
			target: "/velib?address=nulle+part",
			geocoder: &mockGeocoder{geocodeFn: func(ctx context.Context, address string) (models.Location, error) {
				return models.Location{}, geocode.ErrNotFound
			}},
			fetcher:        &mockFetcher{},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Adresse non trouvée",
		},
		{
			name:     "feed unavailable",
			target:   "/velib?address=Chatelet",
			geocoder: &mockGeocoder{},
			fetcher: &mockFetcher{fetchFn: func(ctx context.Context) ([]models.RawStation, error) {
				return nil, errors.New("status 503")
			}},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Erreur lors de la récupération des données",
		},
		{
			name:     "geocoder failure does not leak upstream details",
			target:   "/velib?address=Chatelet",
			geocoder: &mockGeocoder{geocodeFn: func(ctx context.Context, address string) (models.Location, error) {
				return models.Location{}, errors.New(`Get "https://nominatim.example/search": dial tcp: i/o timeout`)
			}},
			fetcher:        &mockFetcher{},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Erreur lors de la récupération des données",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(newTestRouter(tt.geocoder, tt.fetcher), http.MethodGet, tt.target)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var errorResp api.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errorResp))
			assert.Equal(t, tt.expectedError, errorResp.Error)
		})
	}
}

func TestWebHandler_Nearby(t *testing.T) {
	r := newTestRouter(&mockGeocoder{}, &mockFetcher{})

	rec := serve(r, http.MethodGet, "/api/nearby?address=Chatelet&radius=250")

	assert.Equal(t, http.StatusOK, rec.Code)
	var nearbyResp api.NearbyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &nearbyResp))
	assert.Equal(t, "Chatelet", nearbyResp.Address)
	assert.Equal(t, 250.0, nearbyResp.Radius)
	assert.Equal(t, []string{"Rivoli - Sébastopol"}, stationNames(nearbyResp.Stations))

	rec = serve(r, http.MethodGet, "/api/nearby?address=Chatelet&radius=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(r, http.MethodGet, "/api/nearby")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"responseType":"error","error":"Address required"}`, rec.Body.String())
}

func TestWebHandler_Health(t *testing.T) {
	rec := serve(newTestRouter(&mockGeocoder{}, &mockFetcher{}), http.MethodGet, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestWebHandler_MethodNotAllowed(t *testing.T) {
	rec := serve(newTestRouter(&mockGeocoder{}, &mockFetcher{}), http.MethodPost, "/velib")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
