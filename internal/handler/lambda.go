package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/velibmap/velib-go/internal/api"
)

type NearbyHandler struct {
	service *NearbyService
}

func NewNearbyHandler(service *NearbyService) *NearbyHandler {
	return &NearbyHandler{
		service: service,
	}
}

func (h *NearbyHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	params := request.QueryStringParameters

	radius, ok, err := api.ParseRadius(params)
	if err != nil {
		return api.Error(err.Error(), http.StatusBadRequest)
	}
	if !ok {
		radius = -1
	}

	result, err := h.service.Lookup(ctx, params["address"], radius)
	if err != nil {
		message, status := errorStatus(err)
		return api.Error(message, status)
	}

	return api.Success(api.NewNearbyResponse(result.Address, result.Origin, result.Radius, result.Stations))
}

// errorStatus maps a Lookup error to the message and status returned by the
// JSON endpoints.
func errorStatus(err error) (string, int) {
	switch {
	case errors.Is(err, ErrAddressRequired):
		return "Address required", http.StatusBadRequest
	case errors.Is(err, ErrAddressNotFound):
		return "Address not found", http.StatusBadRequest
	case errors.Is(err, ErrUpstream):
		return "Station feed unavailable", http.StatusBadGateway
	case errors.Is(err, ErrGeocoding):
		return "Geocoding service unavailable", http.StatusBadGateway
	default:
		return "Internal Server Error", http.StatusInternalServerError
	}
}
