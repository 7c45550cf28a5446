package repo

import "errors"

// Sentinel errors shared by every backend. Backends translate their
// driver-specific failures into these so callers never branch on the
// physical engine.
var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEventID is returned by Add when the event_id already
	// exists. Producers treat it as success (an idempotent retry), not
	// as a failure.
	ErrDuplicateEventID = errors.New("duplicate event id")

	// ErrUnavailable wraps backend-unreachable failures (connection
	// refused, database locked beyond its busy timeout). Fatal to the
	// current operation; the engine itself never retries it.
	ErrUnavailable = errors.New("storage unavailable")
)
