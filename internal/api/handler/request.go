package handler

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"timeclock.service/internal/core/apperror"
	"timeclock.service/internal/core/clock"
	"timeclock.service/internal/core/model"
)

// CreateEventRequest is the body of POST /time-clock-events.
type CreateEventRequest struct {
	ShopID      int64   `json:"shop_id" validate:"required,gt=0"`
	UserID      int64   `json:"user_id" validate:"required,gt=0"`
	ClockDate   string  `json:"clock_date" validate:"required,datetime=2006-01-02"`
	Time        string  `json:"time" validate:"required"`
	Type        string  `json:"type" validate:"required,oneof=day_in day_out break_start break_end"`
	ShiftStart  *string `json:"shift_start" validate:"required_with=ShiftEnd"`
	ShiftEnd    *string `json:"shift_end" validate:"required_with=ShiftStart"`
	BufferTime  float64 `json:"buffer_time" validate:"gte=0,lte=24"`
	Comment     *string `json:"comment" validate:"omitempty,max=500"`
	CreatedFrom *string `json:"created_from" validate:"omitempty,max=100"`
}

// UpdateEventRequest is the body of POST /time-clock-events/{id}; absent
// fields keep their stored value.
type UpdateEventRequest struct {
	Time        *string `json:"time"`
	Type        *string `json:"type" validate:"omitempty,oneof=day_in day_out break_start break_end"`
	Comment     *string `json:"comment" validate:"omitempty,max=500"`
	UpdatedFrom *string `json:"updated_from" validate:"omitempty,max=100"`
}

// ListDayQuery holds the query parameters of GET /time-clock-events.
type ListDayQuery struct {
	ShopID int64  `json:"shop_id" validate:"required,gt=0"`
	UserID int64  `json:"user_id" validate:"required,gt=0"`
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// mapValidationError reports the first failing field as INVALID_INPUT.
func mapValidationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return invalidInput("Invalid input")
	}

	e := errs[0]
	switch e.Tag() {
	case "required", "required_with":
		return invalidInput("%s is required", e.Field())
	case "oneof":
		return invalidInput("%s must be one of: %s", e.Field(), e.Param())
	case "datetime":
		return invalidInput("%s must be a date formatted YYYY-MM-DD", e.Field())
	default:
		return invalidInput("%s is invalid", e.Field())
	}
}

func invalidInput(format string, args ...any) error {
	return apperror.Validation(apperror.CodeInvalidInput, format, args...)
}

func badRequest() error {
	return apperror.New(apperror.CodeInvalidInput, "Invalid request body", http.StatusBadRequest)
}

func parseTime(field, value string) (clock.TimeOfDay, error) {
	t, err := clock.ParseTimeOfDay(value)
	if err != nil {
		return 0, invalidInput("%s must be a time formatted HH:MM or HH:MM:SS", field)
	}
	return t, nil
}

func parseOptionalTime(field string, value *string) (*clock.TimeOfDay, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := parseTime(field, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// bufferMinutes converts the hours supplied by clients to whole minutes.
func bufferMinutes(hours float64) int {
	return int(math.Round(hours * 60))
}

func (r CreateEventRequest) toInput() (model.CreateEventInput, error) {
	date, err := clock.ParseDate(r.ClockDate)
	if err != nil {
		return model.CreateEventInput{}, invalidInput("clock_date must be a date formatted YYYY-MM-DD")
	}
	at, err := parseTime("time", r.Time)
	if err != nil {
		return model.CreateEventInput{}, err
	}
	start, err := parseOptionalTime("shift_start", r.ShiftStart)
	if err != nil {
		return model.CreateEventInput{}, err
	}
	end, err := parseOptionalTime("shift_end", r.ShiftEnd)
	if err != nil {
		return model.CreateEventInput{}, err
	}

	return model.CreateEventInput{
		ShopID:        r.ShopID,
		UserID:        r.UserID,
		DateAt:        date,
		TimeAt:        at,
		Type:          model.EventType(r.Type),
		ShiftStart:    start,
		ShiftEnd:      end,
		BufferMinutes: bufferMinutes(r.BufferTime),
		Comment:       r.Comment,
		CreatedFrom:   r.CreatedFrom,
	}, nil
}

func (r UpdateEventRequest) toInput() (model.UpdateEventInput, error) {
	in := model.UpdateEventInput{Comment: r.Comment, UpdatedFrom: r.UpdatedFrom}
	if r.Time != nil {
		at, err := parseTime("time", *r.Time)
		if err != nil {
			return model.UpdateEventInput{}, err
		}
		in.TimeAt = &at
	}
	if r.Type != nil {
		t := model.EventType(*r.Type)
		in.Type = &t
	}
	return in, nil
}

func (q ListDayQuery) key() (model.DayKey, error) {
	date, err := clock.ParseDate(q.Date)
	if err != nil {
		return model.DayKey{}, fmt.Errorf("parse date: %w", err)
	}
	return model.DayKey{ShopID: q.ShopID, UserID: q.UserID, DateAt: date}, nil
}
