// Package integration exercises the full service stack against a simulated
// WOUDC upstream: router, handlers, query engine, pagination loop, and the
// transport clients, with only the remote service faked.
package integration

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/ozonewatch/woudc-client/pkg/server"
)

// fakeWFS serves GeoJSON pages the way the WFS flavor of the WOUDC service
// does: startindex/maxfeatures paging over a fixed feature set.
type fakeWFS struct {
	total    int
	requests []string
}

func (f *fakeWFS) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.requests = append(f.requests, r.URL.RawQuery)

		start, _ := strconv.Atoi(r.URL.Query().Get("startindex"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("maxfeatures"))
		if limit <= 0 {
			limit = f.total
		}

		end := start + limit
		if end > f.total {
			end = f.total
		}
		if start > f.total {
			start = f.total
		}

		features := make([]map[string]any, 0, end-start)
		for i := start; i < end; i++ {
			features = append(features, map[string]any{
				"type": "Feature",
				"id":   fmt.Sprintf("obs-%04d", i),
				"geometry": map[string]any{
					"type":        "Point",
					"coordinates": []float64{-79.4, 43.7},
				},
				"properties": map[string]any{
					"instance_datetime": fmt.Sprintf("2000-01-01 %02d:%02d:00", i/60%24, i%60),
					"platform_id":       "077",
					"rank":              float64(f.total - i),
				},
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"type":          "FeatureCollection",
			"totalFeatures": f.total,
			"features":      features,
		})
	}
}

func newStack(t *testing.T, upstream string, pageSize int) *httptest.Server {
	t.Helper()

	srv, err := server.New(server.Options{
		BaseURL:  upstream,
		Protocol: server.ProtocolWFS,
		PageSize: pageSize,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("failed to build server: %v", err)
	}

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if v != nil {
		if err := json.Unmarshal(body, v); err != nil {
			t.Fatalf("failed to parse body: %v\n%s", err, body)
		}
	}
	return resp.StatusCode
}

func TestItemsPaginatesAcrossUpstreamPages(t *testing.T) {
	upstream := &fakeWFS{total: 23}
	us := httptest.NewServer(upstream.handler())
	defer us.Close()

	ts := newStack(t, us.URL, 10)

	var fc struct {
		Features       []json.RawMessage `json:"features"`
		NumberMatched  int               `json:"numberMatched"`
		NumberReturned int               `json:"numberReturned"`
	}
	status := getJSON(t, ts.URL+"/collections/totalozone/items", &fc)

	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if fc.NumberReturned != 23 {
		t.Errorf("expected 23 features, got %d", fc.NumberReturned)
	}
	if fc.NumberMatched != 23 {
		t.Errorf("expected numberMatched 23, got %d", fc.NumberMatched)
	}
	// 23 features at a page size of 10: two full pages and one short page.
	if len(upstream.requests) != 3 {
		t.Errorf("expected 3 upstream requests, got %d: %v",
			len(upstream.requests), upstream.requests)
	}
}

func TestItemsHonorsLimit(t *testing.T) {
	upstream := &fakeWFS{total: 23}
	us := httptest.NewServer(upstream.handler())
	defer us.Close()

	ts := newStack(t, us.URL, 10)

	var fc struct {
		Features       []json.RawMessage `json:"features"`
		NumberReturned int               `json:"numberReturned"`
	}
	status := getJSON(t, ts.URL+"/collections/totalozone/items?limit=5", &fc)

	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if fc.NumberReturned != 5 || len(fc.Features) != 5 {
		t.Errorf("expected 5 features, got %d", len(fc.Features))
	}
	// The first page already covers the cap; no further fetches.
	if len(upstream.requests) != 1 {
		t.Errorf("expected 1 upstream request, got %d: %v",
			len(upstream.requests), upstream.requests)
	}
}

func TestItemsSortsAggregatedResult(t *testing.T) {
	upstream := &fakeWFS{total: 15}
	us := httptest.NewServer(upstream.handler())
	defer us.Close()

	ts := newStack(t, us.URL, 10)

	var fc struct {
		Features []struct {
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	status := getJSON(t, ts.URL+"/collections/totalozone/items?sortby=rank", &fc)

	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	// rank decreases with the upstream index, so ascending sort reverses
	// delivery order across page boundaries.
	last := -1.0
	for i, f := range fc.Features {
		rank, ok := f.Properties["rank"].(float64)
		if !ok {
			t.Fatalf("feature %d has no numeric rank", i)
		}
		if rank < last {
			t.Fatalf("feature %d out of order: %v after %v", i, rank, last)
		}
		last = rank
	}
}

func TestItemsForwardsFilterParameters(t *testing.T) {
	upstream := &fakeWFS{total: 1}
	us := httptest.NewServer(upstream.handler())
	defer us.Close()

	ts := newStack(t, us.URL, 10)

	status := getJSON(t, ts.URL+
		"/collections/totalozone/items?bbox=-142,42,-52,84&datetime=2000-11-11/2000-12-12"+
		"&property_name=platform_id&property_value=077", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	if len(upstream.requests) == 0 {
		t.Fatal("expected an upstream request")
	}
	query := upstream.requests[0]
	for _, want := range []string{"filter=", "typename=totalozone", "maxfeatures=10"} {
		if !strings.Contains(query, want) {
			t.Errorf("expected upstream query to contain %q, got %q", want, query)
		}
	}
}

func TestUpstreamFailureIsBadGateway(t *testing.T) {
	us := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend exploded", http.StatusInternalServerError)
	}))
	defer us.Close()

	ts := newStack(t, us.URL, 10)

	status := getJSON(t, ts.URL+"/collections/totalozone/items", nil)
	if status != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", status)
	}
}

func TestUnparseableUpstreamPayloadIsEmptyCollection(t *testing.T) {
	us := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		io.WriteString(w, `<ows:ExceptionReport>no such layer</ows:ExceptionReport>`)
	}))
	defer us.Close()

	ts := newStack(t, us.URL, 10)

	var fc struct {
		Features       []json.RawMessage `json:"features"`
		NumberReturned int               `json:"numberReturned"`
	}
	status := getJSON(t, ts.URL+"/collections/totalozone/items", &fc)

	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if fc.NumberReturned != 0 || len(fc.Features) != 0 {
		t.Errorf("expected empty collection, got %d features", len(fc.Features))
	}
}

func TestMetadataStations(t *testing.T) {
	upstream := &fakeWFS{total: 4}
	us := httptest.NewServer(upstream.handler())
	defer us.Close()

	ts := newStack(t, us.URL, 10)

	var fc struct {
		NumberReturned int `json:"numberReturned"`
	}
	status := getJSON(t, ts.URL+"/metadata/stations", &fc)

	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if fc.NumberReturned != 4 {
		t.Errorf("expected 4 stations, got %d", fc.NumberReturned)
	}
}
