package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/trace"

	"timeclock.service/internal/core/apperror"
	"timeclock.service/internal/core/model"
	"timeclock.service/pkg/logger"
	"timeclock.service/pkg/telemetry"
)

// TimeClockService is what the handler needs from the core service.
type TimeClockService interface {
	Create(ctx context.Context, in model.CreateEventInput) (*model.TimeClockEvent, error)
	Update(ctx context.Context, id uuid.UUID, in model.UpdateEventInput) (*model.TimeClockEvent, error)
	Get(ctx context.Context, id uuid.UUID) (*model.TimeClockEvent, error)
	ListDay(ctx context.Context, key model.DayKey) ([]model.TimeClockEvent, error)
}

type TimeClockHandler struct {
	Service  TimeClockService
	validate *validator.Validate
}

func NewTimeClockHandler(service TimeClockService) *TimeClockHandler {
	return &TimeClockHandler{Service: service, validate: newValidator()}
}

// Create handles POST /time-clock-events.
func (h *TimeClockHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, badRequest())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		fail(w, r, mapValidationError(err))
		return
	}

	in, err := req.toInput()
	if err != nil {
		fail(w, r, err)
		return
	}

	ctx := withEmployee(r.Context(), in.ShopID, in.UserID)
	event, err := h.Service.Create(ctx, in)
	if err != nil {
		fail(w, r, err)
		return
	}

	success(w, r, http.StatusCreated, "Time clock event recorded", event)
}

// Update handles POST /time-clock-events/{id}.
func (h *TimeClockHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	var req UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, badRequest())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		fail(w, r, mapValidationError(err))
		return
	}

	in, err := req.toInput()
	if err != nil {
		fail(w, r, err)
		return
	}

	event, err := h.Service.Update(r.Context(), id, in)
	if err != nil {
		fail(w, r, err)
		return
	}

	success(w, r, http.StatusOK, "Time clock event updated", event)
}

// Get handles GET /time-clock-events/{id}.
func (h *TimeClockHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	event, err := h.Service.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}

	success(w, r, http.StatusOK, "Time clock event", event)
}

// ListDay handles GET /time-clock-events?shop_id=&user_id=&date=.
func (h *TimeClockHandler) ListDay(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	shopID, _ := strconv.ParseInt(q.Get("shop_id"), 10, 64)
	userID, _ := strconv.ParseInt(q.Get("user_id"), 10, 64)
	query := ListDayQuery{ShopID: shopID, UserID: userID, Date: q.Get("date")}

	if err := h.validate.Struct(query); err != nil {
		fail(w, r, mapValidationError(err))
		return
	}
	key, err := query.key()
	if err != nil {
		fail(w, r, invalidInput("date must be a date formatted YYYY-MM-DD"))
		return
	}

	events, err := h.Service.ListDay(withEmployee(r.Context(), shopID, userID), key)
	if err != nil {
		fail(w, r, err)
		return
	}
	if events == nil {
		events = []model.TimeClockEvent{}
	}

	success(w, r, http.StatusOK, "Time clock events", events)
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, apperror.ErrNotFound
	}
	return id, nil
}

// withEmployee tags the request span, context and logger with the employee.
func withEmployee(ctx context.Context, shopID, userID int64) context.Context {
	e := telemetry.Employee{ShopID: shopID, UserID: userID}
	trace.SpanFromContext(ctx).SetAttributes(e.Attributes()...)
	return logger.EnrichContextWithLogger(telemetry.WithEmployee(ctx, e))
}
