package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"timeclock.service/internal/core/apperror"
)

// envelope is the body of every API response.
type envelope struct {
	Status    bool   `json:"status"`
	Code      int    `json:"code"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
	Data      any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to write response")
	}
}

func success(w http.ResponseWriter, r *http.Request, code int, message string, data any) {
	writeJSON(w, r, code, envelope{Status: true, Code: code, Message: message, Data: data})
}

// fail writes err using its AppError status; anything else is a generic 500.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperror.From(err)
	writeJSON(w, r, appErr.HTTPStatus, envelope{
		Status:    false,
		Code:      appErr.HTTPStatus,
		Message:   appErr.Message,
		ErrorCode: appErr.Code,
	})
}
