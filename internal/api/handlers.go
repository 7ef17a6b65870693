package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ozonewatch/woudc-client/internal/config"
	"github.com/ozonewatch/woudc-client/internal/temporal"
	"github.com/ozonewatch/woudc-client/internal/woudc"
)

// Engine is the query capability the handlers expose over HTTP.
type Engine interface {
	GetData(ctx context.Context, dataset string, opts woudc.QueryOptions) (*woudc.FeatureCollection, error)
	GetStationMetadata(ctx context.Context) (*woudc.FeatureCollection, error)
	GetInstrumentMetadata(ctx context.Context) (*woudc.FeatureCollection, error)
	GetContributorMetadata(ctx context.Context) (*woudc.FeatureCollection, error)
}

// Handlers contains all HTTP handlers for the service.
type Handlers struct {
	cfg      *config.Config
	engine   Engine
	datasets *config.DatasetRegistry
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance with the given dependencies.
func NewHandlers(
	cfg *config.Config,
	engine Engine,
	datasets *config.DatasetRegistry,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		cfg:      cfg,
		engine:   engine,
		datasets: datasets,
		logger:   logger,
	}
}

// LandingPage returns the service description.
// GET /
func (h *Handlers) LandingPage(w http.ResponseWriter, r *http.Request) {
	landing := map[string]any{
		"title":       "WOUDC data access service",
		"description": "Query facade over the World Ozone and Ultraviolet Radiation Data Centre archive",
		"links": []map[string]string{
			{"rel": "self", "href": "/", "type": "application/json"},
			{"rel": "data", "href": "/collections", "type": "application/json"},
			{"rel": "health", "href": "/health", "type": "application/json"},
		},
	}

	WriteJSON(w, http.StatusOK, landing)
}

// Collections returns the list of all available datasets.
// GET /collections
func (h *Handlers) Collections(w http.ResponseWriter, r *http.Request) {
	datasets := h.datasets.All()

	collections := make([]map[string]any, 0, len(datasets))
	for _, d := range datasets {
		collections = append(collections, h.describeDataset(d))
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"collections": collections,
	})
}

// Collection returns a single dataset description by ID.
// GET /collections/{datasetId}
func (h *Handlers) Collection(w http.ResponseWriter, r *http.Request) {
	datasetID := chi.URLParam(r, "datasetId")
	if datasetID == "" {
		WriteBadRequest(w, "dataset ID is required")
		return
	}

	dataset := h.datasets.Get(datasetID)
	if dataset == nil {
		WriteNotFound(w, fmt.Sprintf("dataset %q not found", datasetID))
		return
	}

	WriteJSON(w, http.StatusOK, h.describeDataset(dataset))
}

// Items downloads every matching feature of a dataset.
// GET /collections/{datasetId}/items
func (h *Handlers) Items(w http.ResponseWriter, r *http.Request) {
	datasetID := chi.URLParam(r, "datasetId")
	if datasetID == "" {
		WriteBadRequest(w, "dataset ID is required")
		return
	}

	if !h.datasets.Has(datasetID) {
		WriteNotFound(w, fmt.Sprintf("dataset %q not found", datasetID))
		return
	}

	opts, err := parseQueryOptions(r)
	if err != nil {
		WriteInvalidParameter(w, fmt.Sprintf("invalid query parameters: %v", err))
		return
	}

	fc, err := h.engine.GetData(r.Context(), datasetID, *opts)
	if err != nil {
		h.writeEngineError(w, r, datasetID, err)
		return
	}

	WriteGeoJSON(w, http.StatusOK, fc)
}

// Stations downloads WOUDC station metadata.
// GET /metadata/stations
func (h *Handlers) Stations(w http.ResponseWriter, r *http.Request) {
	h.serveMetadata(w, r, woudc.CollectionStations, h.engine.GetStationMetadata)
}

// Instruments downloads WOUDC instrument metadata.
// GET /metadata/instruments
func (h *Handlers) Instruments(w http.ResponseWriter, r *http.Request) {
	h.serveMetadata(w, r, woudc.CollectionInstruments, h.engine.GetInstrumentMetadata)
}

// Contributors downloads WOUDC contributor metadata.
// GET /metadata/contributors
func (h *Handlers) Contributors(w http.ResponseWriter, r *http.Request) {
	h.serveMetadata(w, r, woudc.CollectionContributors, h.engine.GetContributorMetadata)
}

func (h *Handlers) serveMetadata(
	w http.ResponseWriter,
	r *http.Request,
	name string,
	fetch func(context.Context) (*woudc.FeatureCollection, error),
) {
	fc, err := fetch(r.Context())
	if err != nil {
		h.writeEngineError(w, r, name, err)
		return
	}

	WriteGeoJSON(w, http.StatusOK, fc)
}

// Health returns the health status of the service.
// GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"status": "ok",
	}

	WriteJSON(w, http.StatusOK, response)
}

// writeEngineError maps engine errors onto HTTP status codes.
func (h *Handlers) writeEngineError(w http.ResponseWriter, r *http.Request, dataset string, err error) {
	switch {
	case errors.Is(err, woudc.ErrInvalidArgument):
		WriteInvalidParameter(w, err.Error())
	case errors.Is(err, woudc.ErrMissingProperty):
		WriteInvalidParameter(w, err.Error())
	default:
		h.logger.Error("upstream query failed",
			slog.String("request_id", GetRequestID(r.Context())),
			slog.String("dataset", dataset),
			slog.String("error", err.Error()),
		)
		WriteUpstreamError(w, "upstream WOUDC service error")
	}
}

// describeDataset renders one dataset registry entry.
func (h *Handlers) describeDataset(d *config.DatasetConfig) map[string]any {
	desc := map[string]any{
		"id":    d.ID,
		"title": d.Title,
		"links": []map[string]string{
			{"rel": "items", "href": "/collections/" + d.ID + "/items", "type": "application/geo+json"},
		},
	}
	if d.Description != "" {
		desc["description"] = d.Description
	}
	if len(d.Queryables) > 0 {
		desc["queryables"] = d.Queryables
	}
	return desc
}

// parseQueryOptions translates items query parameters into engine options.
func parseQueryOptions(r *http.Request) (*woudc.QueryOptions, error) {
	q := r.URL.Query()
	opts := &woudc.QueryOptions{}

	if raw := q.Get("bbox"); raw != "" {
		bbox, err := parseBBox(raw)
		if err != nil {
			return nil, err
		}
		opts.BBox = bbox
	}

	if raw := q.Get("datetime"); raw != "" {
		period, err := parseDatetime(raw)
		if err != nil {
			return nil, err
		}
		opts.Temporal = period
	}

	opts.PropertyName = q.Get("property_name")
	opts.PropertyValue = q.Get("property_value")

	if raw := q.Get("properties"); raw != "" {
		opts.Variables = strings.Split(raw, ",")
	}

	if raw := q.Get("sortby"); raw != "" {
		opts.SortBy, opts.SortOrder = parseSortBy(raw)
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return nil, fmt.Errorf("limit must be a positive integer, got %q", raw)
		}
		opts.Limit = limit
	}

	if raw := q.Get("startindex"); raw != "" {
		start, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("startindex must be an integer, got %q", raw)
		}
		opts.StartIndex = start
	}

	return opts, nil
}

// parseBBox parses "minx,miny,maxx,maxy". Element count is validated by the
// engine, so only number syntax is checked here.
func parseBBox(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	bbox := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("bbox value %q is not a number", part)
		}
		bbox = append(bbox, v)
	}
	return bbox, nil
}

// parseDatetime parses an instant or a "start/end" interval into a pair of
// temporal endpoints. A single instant is treated as a degenerate interval.
func parseDatetime(raw string) ([]temporal.Endpoint, error) {
	parts := strings.Split(raw, "/")
	switch len(parts) {
	case 1:
		e, err := temporal.Parse(parts[0])
		if err != nil {
			return nil, err
		}
		return []temporal.Endpoint{e, e}, nil
	case 2:
		begin, err := temporal.Parse(parts[0])
		if err != nil {
			return nil, err
		}
		end, err := temporal.Parse(parts[1])
		if err != nil {
			return nil, err
		}
		return []temporal.Endpoint{begin, end}, nil
	default:
		return nil, fmt.Errorf("datetime must be an instant or a start/end interval, got %q", raw)
	}
}

// parseSortBy parses a sort specifier with an optional +/- direction prefix.
func parseSortBy(raw string) (string, woudc.SortOrder) {
	switch {
	case strings.HasPrefix(raw, "-"):
		return strings.TrimPrefix(raw, "-"), woudc.SortDesc
	case strings.HasPrefix(raw, "+"):
		return strings.TrimPrefix(raw, "+"), woudc.SortAsc
	default:
		return raw, woudc.SortAsc
	}
}
