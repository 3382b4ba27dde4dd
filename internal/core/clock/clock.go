// Package clock holds the wall-clock arithmetic used by the time clock engine:
// parsing of times of day, the buffered shift window and the normalization of a
// (date, time) pair into an orderable timestamp.
package clock

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const day = 24 * 60 * 60

// DateLayout is the layout of nominal attendance dates.
const DateLayout = "2006-01-02"

// TimeOfDay is a wall-clock time expressed in seconds since midnight.
type TimeOfDay int

// At builds a TimeOfDay, panicking on out of range values. Meant for literals.
func At(hour, minute, second int) TimeOfDay {
	t, err := fromParts(hour, minute, second)
	if err != nil {
		panic(err)
	}
	return t
}

func fromParts(hour, minute, second int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return 0, fmt.Errorf("time %02d:%02d:%02d out of range", hour, minute, second)
	}
	return TimeOfDay(hour*3600 + minute*60 + second), nil
}

// ParseTimeOfDay accepts H:M or H:M:S and pads missing seconds with zero.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q: expected H:M or H:M:S", s)
	}
	if len(parts) == 2 {
		parts = append(parts, "0")
	}

	var v [3]int
	for i, p := range parts {
		// Postgres may hand back fractional seconds.
		if i == 2 {
			p, _, _ = strings.Cut(p, ".")
		}
		n, err := strconv.Atoi(p)
		if err != nil || len(p) == 0 || len(p) > 2 {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		v[i] = n
	}
	return fromParts(v[0], v[1], v[2])
}

// ParseDate parses a nominal attendance date (YYYY-MM-DD) as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return d, nil
}

// Of returns the wall-clock part of a timestamp.
func Of(ts time.Time) TimeOfDay {
	return TimeOfDay(ts.Hour()*3600 + ts.Minute()*60 + ts.Second())
}

func (t TimeOfDay) Hour() int   { return int(t) / 3600 }
func (t TimeOfDay) Minute() int { return int(t) % 3600 / 60 }
func (t TimeOfDay) Second() int { return int(t) % 60 }

// Duration is the offset of t from midnight.
func (t TimeOfDay) Duration() time.Duration { return time.Duration(t) * time.Second }

// Add moves t around the 24h dial.
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	s := (int(t) + int(d/time.Second)) % day
	if s < 0 {
		s += day
	}
	return TimeOfDay(s)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Scan implements sql.Scanner for TIME and text columns.
func (t *TimeOfDay) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return t.UnmarshalText([]byte(v))
	case []byte:
		return t.UnmarshalText(v)
	case time.Time:
		*t = Of(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}

// Value implements driver.Valuer.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}
