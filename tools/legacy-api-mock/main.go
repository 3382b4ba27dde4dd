package main

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"timeclock.service/internal/ports/messaging"
	"timeclock.service/pkg/logger"
)

// failureRate makes the mock return 503 for a share of requests so the
// sync worker's retries and circuit breaker can be observed locally.
const failureRate = 0.1

func recordHandler(w http.ResponseWriter, r *http.Request) {
	var event messaging.EventRecorded
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	if rand.Float64() < failureRate {
		log.Warn().Str("event_id", event.EventID).Msg("Simulating legacy outage")
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	log.Info().
		Str("event_id", event.EventID).
		Int64("shop_id", event.ShopID).
		Int64("user_id", event.UserID).
		Str("type", event.Type).
		Str("time_at", event.TimeAt).
		Str("operation", event.Operation).
		Msg("Received time clock event")
	w.WriteHeader(http.StatusOK)
}

func main() {
	logger.Setup(os.Getenv("IS_LOCAL_DEV") != "false")

	mux := http.NewServeMux()
	mux.HandleFunc("/", recordHandler)

	srv := &http.Server{Addr: ":8081", Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	log.Info().Msg("Legacy API mock server starting on port 8081...")
	log.Fatal().Err(srv.ListenAndServe()).Msg("legacy api mock stopped")
}
