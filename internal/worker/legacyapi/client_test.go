package legacyapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeclock.service/internal/ports/messaging"
)

func TestHTTPClient_RecordEvent(t *testing.T) {
	var got messaging.EventRecorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	event := messaging.EventRecorded{EventID: "e1", ShopID: 1, UserID: 2, Type: "day_in", TimeAt: "08:00:00"}
	require.NoError(t, NewHTTPClient(srv.URL).RecordEvent(context.Background(), event))
	assert.Equal(t, event, got)
}

func TestHTTPClient_RecordEventServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewHTTPClient(srv.URL).RecordEvent(context.Background(), messaging.EventRecorded{EventID: "e1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
