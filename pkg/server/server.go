// Package server provides a public API for embedding the WOUDC client service.
package server

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ozonewatch/woudc-client/internal/api"
	"github.com/ozonewatch/woudc-client/internal/config"
	"github.com/ozonewatch/woudc-client/internal/metrics"
	"github.com/ozonewatch/woudc-client/internal/ogcapi"
	"github.com/ozonewatch/woudc-client/internal/wfs"
	"github.com/ozonewatch/woudc-client/internal/woudc"
)

// Protocol specifies which flavor of the WOUDC service to talk.
type Protocol string

const (
	// ProtocolWFS queries the WFS 1.1.0 endpoint.
	ProtocolWFS Protocol = "wfs"
	// ProtocolOGCAPI queries the OGC-API-Features endpoint.
	ProtocolOGCAPI Protocol = "ogcapi"
)

// Options configures the WOUDC client server.
type Options struct {
	// BaseURL is the WOUDC service URL.
	// Default: "https://geo.woudc.org/ows"
	BaseURL string

	// Protocol specifies the upstream service flavor.
	// Default: ProtocolWFS
	Protocol Protocol

	// Timeout is the upstream request timeout.
	// Default: 120s
	Timeout time.Duration

	// PageSize is the number of features requested per upstream page.
	// Default: 25000
	PageSize int

	// DatasetsDir is the path to dataset definition JSON files.
	// Default: "" (uses the built-in registry)
	DatasetsDir string

	// EnableMetrics exposes a Prometheus endpoint at /metrics.
	// Default: false
	EnableMetrics bool

	// Logger is the slog logger to use.
	// Default: slog.Default()
	Logger *slog.Logger
}

// Server is a WOUDC query service that can be embedded in another application.
type Server struct {
	router chi.Router
	engine *woudc.Client
}

// New creates a new WOUDC client server with the given options.
func New(opts Options) (*Server, error) {
	// Apply defaults
	if opts.BaseURL == "" {
		opts.BaseURL = "https://geo.woudc.org/ows"
	}
	if opts.Protocol == "" {
		opts.Protocol = ProtocolWFS
	}
	if opts.Timeout == 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.PageSize == 0 {
		opts.PageSize = woudc.DefaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	// Build internal config
	cfg := &config.Config{
		WOUDC: config.WOUDCConfig{
			BaseURL:  opts.BaseURL,
			Protocol: string(opts.Protocol),
			Timeout:  opts.Timeout,
			PageSize: opts.PageSize,
		},
	}

	// Load datasets
	var datasets *config.DatasetRegistry
	if opts.DatasetsDir != "" {
		loaded, err := config.LoadDatasets(opts.DatasetsDir)
		if err != nil {
			opts.Logger.Warn("failed to load datasets, using built-in registry",
				"dir", opts.DatasetsDir,
				"error", err,
			)
			datasets = config.BuiltinDatasets()
		} else {
			datasets = loaded
		}
	} else {
		datasets = config.BuiltinDatasets()
	}

	// Create the feature source for the chosen protocol
	var source woudc.FeatureSource
	switch opts.Protocol {
	case ProtocolOGCAPI:
		client := ogcapi.NewClient(opts.BaseURL, opts.Timeout).WithLogger(opts.Logger)
		source = woudc.NewOGCAPISource(client)
		opts.Logger.Info("using OGC API source", "base_url", opts.BaseURL)
	default:
		client := wfs.NewClient(opts.BaseURL, opts.Timeout).WithLogger(opts.Logger)
		source = woudc.NewWFSSource(client)
		opts.Logger.Info("using WFS source", "base_url", opts.BaseURL)
	}

	var provider *metrics.Provider
	if opts.EnableMetrics {
		provider = metrics.Init()
		source = provider.InstrumentSource(source)
	}

	// Create the query engine
	engine := woudc.NewClient(source).
		WithLogger(opts.Logger).
		WithPageSize(opts.PageSize)

	// Create handlers and router
	handlers := api.NewHandlers(cfg, engine, datasets, opts.Logger)
	router := api.NewRouter(handlers, opts.Logger, provider)

	return &Server{
		router: router,
		engine: engine,
	}, nil
}

// Router returns the chi.Router for mounting in another application.
func (s *Server) Router() chi.Router {
	return s.router
}

// Engine returns the underlying query engine for direct use.
func (s *Server) Engine() *woudc.Client {
	return s.engine
}
