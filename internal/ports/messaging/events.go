package messaging

import "time"

// Operations carried by EventRecorded.
const (
	OperationCreate = "create"
	OperationUpdate = "update"
)

// EventRecorded is the JSON payload sent via SQS to the legacy sync queue
// whenever an event is created or edited.
type EventRecorded struct {
	EventID          string    `json:"eventId"`
	ShopID           int64     `json:"shopId"`
	UserID           int64     `json:"userId"`
	Type             string    `json:"type"`
	DateAt           string    `json:"dateAt"`
	TimeAt           string    `json:"timeAt"`
	FormatedDateTime time.Time `json:"formatedDateTime"`
	Operation        string    `json:"operation"`
}

// ShiftClosed is the JSON payload sent via SQS to the email queue when a
// day_out closes a shift.
type ShiftClosed struct {
	EventID        string    `json:"eventId"`
	ShopID         int64     `json:"shopId"`
	UserID         int64     `json:"userId"`
	DateAt         string    `json:"dateAt"`
	ShiftStartedAt time.Time `json:"shiftStartedAt"`
	ShiftEndedAt   time.Time `json:"shiftEndedAt"`
	BreakMinutes   int       `json:"breakMinutes"`
	HoursWorked    float64   `json:"hoursWorked"`
}
