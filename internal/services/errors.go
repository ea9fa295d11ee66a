package services

import (
	"errors"
)

// Resolution errors. All are recoverable; none is retried automatically.
var (
	ErrCapabilityUnavailable = errors.New("capability unavailable")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrPositionUnavailable   = errors.New("position unavailable")
	ErrTimeout               = errors.New("timeout")
	ErrInvalidQuery          = errors.New("invalid query")
	ErrNotFound              = errors.New("not found")
	ErrSearchFailed          = errors.New("search failed")
	ErrUnknownEntity         = errors.New("unknown entity")
)

var errorKinds = []struct {
	err     error
	kind    string
	message string
}{
	{ErrCapabilityUnavailable, "CapabilityUnavailable", "Geolocation is not supported by this browser."},
	{ErrPermissionDenied, "PermissionDenied", "Location access denied by user."},
	{ErrPositionUnavailable, "PositionUnavailable", "Location information is unavailable."},
	{ErrTimeout, "Timeout", "Location request timed out."},
	{ErrInvalidQuery, "InvalidQuery", "Please enter an address."},
	{ErrNotFound, "NotFound", "Address not found"},
	{ErrSearchFailed, "SearchFailed", "Search failed. Please try again."},
	{ErrUnknownEntity, "UnknownEntity", ""},
}

// Kind returns the stable name of a resolution error, or "" for anything else.
func Kind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return ""
}

// Message returns the user-visible status string for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.message
		}
	}
	return "Unable to retrieve your location."
}
