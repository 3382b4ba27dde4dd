package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"timeclock.service/internal/api/handler"
)

// NewRouter sets up the gorilla/mux router and defines all API routes.
func NewRouter(service handler.TimeClockService) *mux.Router {
	h := handler.NewTimeClockHandler(service)

	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/time-clock-events", h.Create).Methods(http.MethodPost)
	api.HandleFunc("/time-clock-events", h.ListDay).Methods(http.MethodGet)
	api.HandleFunc("/time-clock-events/{id}", h.Update).Methods(http.MethodPost)
	api.HandleFunc("/time-clock-events/{id}", h.Get).Methods(http.MethodGet)
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Service is operational."))
	}).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}
