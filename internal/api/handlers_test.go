package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	geojson "github.com/paulmach/go.geojson"

	"github.com/ozonewatch/woudc-client/internal/config"
	"github.com/ozonewatch/woudc-client/internal/temporal"
	"github.com/ozonewatch/woudc-client/internal/woudc"
)

// mockEngine is a test engine that returns configurable results.
type mockEngine struct {
	fc  *woudc.FeatureCollection
	err error

	// Record of GetData calls for verification
	datasets []string
	options  []woudc.QueryOptions
}

func (m *mockEngine) GetData(_ context.Context, dataset string, opts woudc.QueryOptions) (*woudc.FeatureCollection, error) {
	m.datasets = append(m.datasets, dataset)
	m.options = append(m.options, opts)
	if m.err != nil {
		return nil, m.err
	}
	return m.fc, nil
}

func (m *mockEngine) GetStationMetadata(context.Context) (*woudc.FeatureCollection, error) {
	return m.fc, m.err
}

func (m *mockEngine) GetInstrumentMetadata(context.Context) (*woudc.FeatureCollection, error) {
	return m.fc, m.err
}

func (m *mockEngine) GetContributorMetadata(context.Context) (*woudc.FeatureCollection, error) {
	return m.fc, m.err
}

func testCollection(n int) *woudc.FeatureCollection {
	features := make([]*geojson.Feature, n)
	for i := range features {
		f := geojson.NewPointFeature([]float64{0, 0})
		f.ID = fmt.Sprintf("f-%d", i)
		features[i] = f
	}
	return &woudc.FeatureCollection{
		Type:           "FeatureCollection",
		Features:       features,
		NumberMatched:  n,
		NumberReturned: n,
	}
}

func newTestRouter(engine Engine) http.Handler {
	cfg := &config.Config{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handlers := NewHandlers(cfg, engine, config.BuiltinDatasets(), logger)
	return NewRouter(handlers, logger, nil)
}

func doRequest(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest("GET", path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestItems(t *testing.T) {
	engine := &mockEngine{fc: testCollection(3)}
	router := newTestRouter(engine)

	rec := doRequest(t, router, "/collections/totalozone/items")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if ct := rec.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("expected geo+json content type, got %s", ct)
	}

	var fc woudc.FeatureCollection
	if err := json.Unmarshal(rec.Body.Bytes(), &fc); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if fc.NumberReturned != 3 {
		t.Errorf("expected 3 features, got %d", fc.NumberReturned)
	}

	if len(engine.datasets) != 1 || engine.datasets[0] != "totalozone" {
		t.Errorf("expected one GetData call for totalozone, got %v", engine.datasets)
	}
}

func TestItemsUnknownDataset(t *testing.T) {
	engine := &mockEngine{fc: testCollection(0)}
	router := newTestRouter(engine)

	rec := doRequest(t, router, "/collections/nonexistent/items")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if len(engine.datasets) != 0 {
		t.Error("expected no engine call for an unknown dataset")
	}
}

func TestItemsParsesQueryParameters(t *testing.T) {
	engine := &mockEngine{fc: testCollection(0)}
	router := newTestRouter(engine)

	rec := doRequest(t, router,
		"/collections/totalozone/items?bbox=-142,42,-52,84"+
			"&datetime=2000-11-11/2000-12-12"+
			"&property_name=platform_id&property_value=023"+
			"&properties=instance_datetime,platform_id"+
			"&sortby=-instance_datetime&startindex=50&limit=200")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	opts := engine.options[0]
	if len(opts.BBox) != 4 || opts.BBox[0] != -142 || opts.BBox[3] != 84 {
		t.Errorf("unexpected bbox %v", opts.BBox)
	}
	if len(opts.Temporal) != 2 {
		t.Fatalf("expected 2 temporal endpoints, got %d", len(opts.Temporal))
	}
	if opts.Temporal[0].Kind() != temporal.CalendarDate {
		t.Errorf("expected calendar date begin, got %v", opts.Temporal[0].Kind())
	}
	if opts.PropertyName != "platform_id" || opts.PropertyValue != "023" {
		t.Errorf("unexpected attribute filter %q=%q", opts.PropertyName, opts.PropertyValue)
	}
	if len(opts.Variables) != 2 {
		t.Errorf("unexpected variables %v", opts.Variables)
	}
	if opts.SortBy != "instance_datetime" || opts.SortOrder != woudc.SortDesc {
		t.Errorf("unexpected sort %q %q", opts.SortBy, opts.SortOrder)
	}
	if opts.StartIndex != 50 {
		t.Errorf("expected start index 50, got %d", opts.StartIndex)
	}
	if opts.Limit != 200 {
		t.Errorf("expected limit 200, got %d", opts.Limit)
	}
}

func TestItemsOpenInterval(t *testing.T) {
	engine := &mockEngine{fc: testCollection(0)}
	router := newTestRouter(engine)

	rec := doRequest(t, router, "/collections/totalozone/items?datetime=../2000-12-12")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	opts := engine.options[0]
	if opts.Temporal[0].Kind() != temporal.Unbounded {
		t.Errorf("expected open begin, got %v", opts.Temporal[0].Kind())
	}
	if opts.Temporal[1].Kind() != temporal.CalendarDate {
		t.Errorf("expected bounded end, got %v", opts.Temporal[1].Kind())
	}
}

func TestItemsBadParameters(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"malformed bbox value", "/collections/totalozone/items?bbox=a,b,c,d"},
		{"malformed datetime", "/collections/totalozone/items?datetime=tomorrow"},
		{"three-part interval", "/collections/totalozone/items?datetime=2000/2001/2002"},
		{"non-integer startindex", "/collections/totalozone/items?startindex=ten"},
		{"non-integer limit", "/collections/totalozone/items?limit=many"},
		{"zero limit", "/collections/totalozone/items?limit=0"},
		{"negative limit", "/collections/totalozone/items?limit=-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &mockEngine{fc: testCollection(0)}
			router := newTestRouter(engine)

			rec := doRequest(t, router, tt.path)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if len(engine.datasets) != 0 {
				t.Error("expected no engine call for bad parameters")
			}
		})
	}
}

func TestItemsEngineErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			"invalid argument",
			fmt.Errorf("%w: bbox must be minx, miny, maxx, maxy", woudc.ErrInvalidArgument),
			http.StatusBadRequest,
		},
		{
			"missing sort property",
			fmt.Errorf("%w: %q", woudc.ErrMissingProperty, "no_such_property"),
			http.StatusBadRequest,
		},
		{
			"transport failure",
			fmt.Errorf("%w: connection reset", woudc.ErrTransport),
			http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &mockEngine{err: tt.err}
			router := newTestRouter(engine)

			rec := doRequest(t, router, "/collections/totalozone/items")
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCollections(t *testing.T) {
	router := newTestRouter(&mockEngine{fc: testCollection(0)})

	rec := doRequest(t, router, "/collections")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Collections []struct {
			ID string `json:"id"`
		} `json:"collections"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if len(resp.Collections) == 0 {
		t.Fatal("expected built-in datasets in response")
	}
	if resp.Collections[0].ID != "totalozone" {
		t.Errorf("expected totalozone first, got %s", resp.Collections[0].ID)
	}
}

func TestCollection(t *testing.T) {
	router := newTestRouter(&mockEngine{fc: testCollection(0)})

	rec := doRequest(t, router, "/collections/ozonesonde")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, router, "/collections/nonexistent")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestMetadataEndpoints(t *testing.T) {
	router := newTestRouter(&mockEngine{fc: testCollection(2)})

	for _, path := range []string{"/metadata/stations", "/metadata/instruments", "/metadata/contributors"} {
		rec := doRequest(t, router, path)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
			continue
		}

		var fc woudc.FeatureCollection
		if err := json.Unmarshal(rec.Body.Bytes(), &fc); err != nil {
			t.Errorf("%s: failed to parse response: %v", path, err)
			continue
		}
		if fc.NumberReturned != 2 {
			t.Errorf("%s: expected 2 features, got %d", path, fc.NumberReturned)
		}
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&mockEngine{fc: testCollection(0)})

	rec := doRequest(t, router, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %s", resp["status"])
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	router := newTestRouter(&mockEngine{fc: testCollection(0)})

	rec := doRequest(t, router, "/no/such/endpoint")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var resp ServiceError
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Code != ErrCodeNotFound {
		t.Errorf("expected NotFound code, got %s", resp.Code)
	}
}
