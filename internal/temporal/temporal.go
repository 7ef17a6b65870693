// Package temporal normalizes caller-supplied temporal endpoints into the
// canonical timestamp literals the WOUDC filter language expects.
package temporal

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Canonical layouts used by the WOUDC service. Filter literals use a space
// separator, not RFC 3339's "T".
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// OpenMarker is the string form of an unbounded endpoint, as used in
// datetime interval query parameters ("2001-01-01/..").
const OpenMarker = ".."

var (
	// ErrInvalidDirection is returned when a direction is neither begin nor end.
	ErrInvalidDirection = errors.New("direction must be begin or end")

	// ErrInvalidEndpoint is returned when a value cannot be interpreted as a
	// date, a datetime, or an open-range marker.
	ErrInvalidEndpoint = errors.New("invalid temporal endpoint")
)

// Direction tags which side of a temporal range an endpoint belongs to.
// The begin side of a bare date gets 00:00:00, the end side 23:59:59, so a
// date-only range covers whole days inclusively.
type Direction string

const (
	Begin Direction = "begin"
	End   Direction = "end"
)

// Kind discriminates the endpoint variants.
type Kind int

const (
	// Unbounded means no constraint in that direction. It is the zero value.
	Unbounded Kind = iota
	// CalendarDate carries a date with no time-of-day.
	CalendarDate
	// DateTime carries a full timestamp.
	DateTime
)

// Endpoint is one side of a temporal range: a calendar date, a full
// datetime, or unbounded. The zero value is unbounded.
type Endpoint struct {
	kind Kind
	t    time.Time
}

// Date returns a calendar-date endpoint.
func Date(year int, month time.Month, day int) Endpoint {
	return Endpoint{kind: CalendarDate, t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Time returns a datetime endpoint carrying t's full time-of-day.
func Time(t time.Time) Endpoint {
	return Endpoint{kind: DateTime, t: t}
}

// Open returns an unbounded endpoint.
func Open() Endpoint {
	return Endpoint{kind: Unbounded}
}

// Parse interprets a string endpoint at the caller boundary. Accepted forms:
// "2012-10-30" (date), "2012-10-30 11:11:11" or "2012-10-30T11:11:11"
// (datetime), and "" or ".." (unbounded).
func Parse(s string) (Endpoint, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == OpenMarker {
		return Open(), nil
	}

	if t, err := time.Parse(DateLayout, s); err == nil {
		return Endpoint{kind: CalendarDate, t: t}, nil
	}

	for _, layout := range []string{DateTimeLayout, "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return Endpoint{kind: DateTime, t: t}, nil
		}
	}

	return Endpoint{}, fmt.Errorf("%w: %q", ErrInvalidEndpoint, s)
}

// Kind reports the endpoint variant.
func (e Endpoint) Kind() Kind {
	return e.kind
}

// IsOpen reports whether the endpoint is unbounded.
func (e Endpoint) IsOpen() bool {
	return e.kind == Unbounded
}

// Normalize renders an endpoint as a canonical "YYYY-MM-DD HH:MM:SS"
// literal. Bare dates get a direction-dependent time-of-day; datetimes keep
// their own. An unbounded endpoint yields the empty string, the open-range
// sentinel recognized by the filter builder.
//
// Normalize is pure and idempotent: re-parsing and normalizing its own
// output returns the same literal.
func Normalize(e Endpoint, direction Direction) (string, error) {
	var defaultTime string
	switch direction {
	case Begin:
		defaultTime = "00:00:00"
	case End:
		defaultTime = "23:59:59"
	default:
		return "", fmt.Errorf("%w, got %q", ErrInvalidDirection, direction)
	}

	switch e.kind {
	case Unbounded:
		return "", nil
	case CalendarDate:
		return e.t.Format(DateLayout) + " " + defaultTime, nil
	case DateTime:
		return e.t.Format(DateTimeLayout), nil
	default:
		return "", fmt.Errorf("%w: unknown kind %d", ErrInvalidEndpoint, e.kind)
	}
}
