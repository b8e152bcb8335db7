package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/velibmap/velib-go/internal/api"
	"github.com/velibmap/velib-go/internal/render"
)

// WebHandler serves the search form, the results page and the JSON API.
type WebHandler struct {
	service *NearbyService
}

func NewWebHandler(service *NearbyService) *WebHandler {
	return &WebHandler{
		service: service,
	}
}

// Register mounts the handler's routes on r.
func (h *WebHandler) Register(r *mux.Router) {
	r.HandleFunc("/", h.Form).Methods(http.MethodGet)
	r.HandleFunc("/velib", h.Results).Methods(http.MethodGet)
	r.HandleFunc("/api/nearby", h.Nearby).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
}

func (h *WebHandler) Form(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.RenderForm(w); err != nil {
		log.Error().Err(err).Msg("Error rendering form")
	}
}

// Results renders the stations around ?address= on a map. Failures are
// reported as JSON.
func (h *WebHandler) Results(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")

	result, err := h.service.Lookup(r.Context(), address, -1)
	if err != nil {
		switch {
		case errors.Is(err, ErrAddressRequired):
			api.WriteError(w, "Veuillez fournir une adresse", http.StatusBadRequest)
		case errors.Is(err, ErrAddressNotFound):
			api.WriteError(w, "Adresse non trouvée", http.StatusBadRequest)
		default:
			// Lookup already logged the cause
			api.WriteError(w, "Erreur lors de la récupération des données", http.StatusInternalServerError)
		}
		return
	}

	view := render.MapView{
		Center:  result.Origin,
		Zoom:    render.DefaultZoom,
		Markers: render.MarkersFromRanked(result.Stations),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.RenderResults(w, result.Address, result.Radius, view); err != nil {
		log.Error().Err(err).Msg("Error rendering results")
	}
}

func (h *WebHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	params := api.QueryParams(r)

	radius, ok, err := api.ParseRadius(params)
	if err != nil {
		api.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !ok {
		radius = -1
	}

	result, err := h.service.Lookup(r.Context(), params["address"], radius)
	if err != nil {
		message, status := errorStatus(err)
		api.WriteError(w, message, status)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewNearbyResponse(result.Address, result.Origin, result.Radius, result.Stations))
}

func (h *WebHandler) Health(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
