package wfs

import "errors"

var (
	// ErrTransport is the class of network and protocol failures. The
	// pagination driver aborts on it without returning partial data.
	ErrTransport = errors.New("wfs transport failure")

	// ErrNoResults marks the service convention of answering a query that
	// matches nothing with a payload that does not parse as GeoJSON. It is
	// not a defect: callers surface it as an empty result.
	ErrNoResults = errors.New("query produced no results")
)
