package woudc

import "errors"

var (
	// ErrInvalidArgument is returned for malformed caller input. It is
	// always raised before any network call and is never retried.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMissingProperty is returned when the sort key is absent on a
	// feature during the final sort. A partial sort would be misleading,
	// so the whole call fails.
	ErrMissingProperty = errors.New("sort property missing from feature")

	// ErrTransport is the engine-level class of network and protocol
	// failures. It aborts aggregation; callers must treat it as "no
	// trustworthy result", never as a partial one.
	ErrTransport = errors.New("feature source transport failure")

	// ErrNoResults is the engine-level form of the first-page parse
	// failure convention. GetData recovers it into an empty collection.
	ErrNoResults = errors.New("query produced no results")
)
