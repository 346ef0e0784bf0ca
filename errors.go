package shmbuf

import "errors"

// Status is the construction-time outcome of a Region Provider, in the
// style of a bus-facing error code: a comparable string newtype that
// implements error directly, so callers can compare a Status against a
// sentinel with == or errors.Is without an extra accessor.
type Status string

func (s Status) Error() string { return string(s) }

// Canonical statuses, per spec section 6.
const (
	StatusOK               Status = "ok"
	StatusCreationFailed   Status = "creation_failed"
	StatusOpenFailed       Status = "open_failed"
	StatusSizeSetFailed    Status = "size_set_failed"
	StatusMappingFailed    Status = "mapping_failed"
	StatusInvalidName      Status = "invalid_name"
	StatusAlreadyDestroyed Status = "already_destroyed"
	StatusCorruptHeader    Status = "corrupt_header"
)

// opError wraps a Status with the failing operation and the underlying
// cause, so the cause survives for errors.Unwrap while Status stays the
// stable, comparable value callers switch on.
type opError struct {
	Op     string
	Status Status
	Err    error
}

func (e *opError) Error() string {
	if e.Err != nil {
		return e.Op + ": " + string(e.Status) + ": " + e.Err.Error()
	}
	return e.Op + ": " + string(e.Status)
}

func (e *opError) Unwrap() error { return e.Err }

func wrapStatus(op string, status Status, err error) error {
	return &opError{Op: op, Status: status, Err: err}
}

// statusOf extracts the Status a construction error carries, defaulting
// to StatusOK for a nil error. Used by the facades to populate Err().
func statusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	var oe *opError
	if errors.As(err, &oe) {
		return oe.Status
	}
	return StatusMappingFailed
}

// Transient and programmer-error sentinels at the Ring View / facade
// level. These are distinct from Status: a Status means the region
// never came up; these mean a single call was rejected.
var (
	// ErrZeroLength is returned by Write when asked to send a
	// zero-length payload; the wire format reserves a length prefix of
	// 0 to mean "no frame" (spec section 4.2.3).
	ErrZeroLength = errors.New("shmbuf: zero-length payload is reserved")

	// ErrTooLarge is returned by Write when the payload can never fit
	// the ring regardless of occupancy (payload + 4 > capacity). This
	// resolves spec section 9's first open question in favour of
	// failing fast instead of returning "full" forever.
	ErrTooLarge = errors.New("shmbuf: payload exceeds ring capacity")

	// ErrInvalidRing is returned once a Ring View has detected a
	// corrupted header (a capacity field that isn't a sane power of
	// two) and marked itself permanently invalid.
	ErrInvalidRing = errors.New("shmbuf: ring header is invalid")

	// ErrClosed is returned by Producer.Write when the facade is not
	// valid: after Close, or after a failed construction.
	ErrClosed = errors.New("shmbuf: channel is closed")
)
