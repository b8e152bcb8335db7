package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog/log"
	"github.com/velibmap/velib-go/internal/models"
)

// MaxRadius caps the radius a caller may ask for, in meters.
const MaxRadius = 5000.0

type APIResponse struct {
	ResponseType string `json:"responseType"`
}

func (r APIResponse) GetResponseType() string {
	return r.ResponseType
}

type NearbyResponse struct {
	APIResponse
	Address  string                 `json:"address"`
	Origin   models.Location        `json:"origin"`
	Radius   float64                `json:"radius"`
	Stations []models.RankedStation `json:"stations"`
}

type ErrorResponse struct {
	APIResponse
	Error string `json:"error"`
}

func NewNearbyResponse(address string, origin models.Location, radius float64, stations []models.RankedStation) *NearbyResponse {
	if stations == nil {
		stations = []models.RankedStation{}
	}
	return &NearbyResponse{
		APIResponse: APIResponse{ResponseType: "nearby"},
		Address:     address,
		Origin:      origin,
		Radius:      radius,
		Stations:    stations,
	}
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		APIResponse: APIResponse{ResponseType: "error"},
		Error:       message,
	}
}

func jsonHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                "application/json",
		"Access-Control-Allow-Origin": "*",
	}
}

// Response helpers
func Success(body interface{}) (events.APIGatewayProxyResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return Error("Internal Server Error", http.StatusInternalServerError)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    jsonHeaders(),
		Body:       string(jsonBody),
	}, nil
}

func Error(message string, statusCode int) (events.APIGatewayProxyResponse, error) {
	body, _ := json.Marshal(NewErrorResponse(message))

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    jsonHeaders(),
		Body:       string(body),
	}, nil
}

// WriteJSON is Success for net/http handlers.
func WriteJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		WriteError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	for k, v := range jsonHeaders() {
		w.Header().Set(k, v)
	}
	w.WriteHeader(statusCode)
	if _, err := w.Write(jsonBody); err != nil {
		log.Error().Err(err).Msg("Error writing response")
	}
}

// WriteError is Error for net/http handlers.
func WriteError(w http.ResponseWriter, message string, statusCode int) {
	WriteJSON(w, statusCode, NewErrorResponse(message))
}

// Parameter parsing helpers

// ParseRadius reads the optional radius parameter in meters. ok is false when
// the parameter is absent, in which case the caller picks its default.
func ParseRadius(params map[string]string) (radius float64, ok bool, err error) {
	radiusStr, has := params["radius"]
	if !has || radiusStr == "" {
		return 0, false, nil
	}

	radius, err = strconv.ParseFloat(radiusStr, 64)
	if err != nil || !(radius >= 0 && radius <= MaxRadius) {
		return 0, false, InvalidRadiusError{}
	}

	return radius, true, nil
}

// QueryParams flattens a URL query to the single-value map API Gateway hands
// to Lambda handlers.
func QueryParams(r *http.Request) map[string]string {
	params := make(map[string]string)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	return params
}

type InvalidRadiusError struct{}

func (e InvalidRadiusError) Error() string {
	return "Invalid radius"
}
