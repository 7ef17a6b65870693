package woudc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ozonewatch/woudc-client/internal/ogcapi"
)

func TestDatetimeInterval(t *testing.T) {
	tests := []struct {
		name   string
		filter *Filter
		want   string
	}{
		{"nil filter", nil, ""},
		{"no bounds", &Filter{}, ""},
		{
			"closed interval",
			&Filter{TemporalBegin: "2000-11-11 00:00:00", TemporalEnd: "2000-12-12 23:59:59"},
			"2000-11-11T00:00:00Z/2000-12-12T23:59:59Z",
		},
		{
			"open begin",
			&Filter{TemporalEnd: "2000-12-12 23:59:59"},
			"../2000-12-12T23:59:59Z",
		},
		{
			"open end",
			&Filter{TemporalBegin: "2000-11-11 00:00:00"},
			"2000-11-11T00:00:00Z/..",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := datetimeInterval(tt.filter)
			if err != nil {
				t.Fatalf("datetimeInterval failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDatetimeIntervalBadLiteral(t *testing.T) {
	_, err := datetimeInterval(&Filter{TemporalBegin: "eleventh of november"})
	if err == nil {
		t.Fatal("expected an error for a malformed literal")
	}
}

func TestTranslateOGCAPIError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"no results", fmt.Errorf("%w: bad json", ogcapi.ErrNoResults), ErrNoResults},
		{"transport", fmt.Errorf("%w: status 502", ogcapi.ErrTransport), ErrTransport},
		{"unclassified", errors.New("boom"), ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateOGCAPIError(tt.in)
			if !errors.Is(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
