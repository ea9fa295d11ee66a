// Package sensor models the device geolocation capability used by the
// position resolver.
package sensor

import (
	"context"
	"fmt"
	"math"
	"time"
)

// FailureCode mirrors the browser Geolocation API error codes.
type FailureCode int

const (
	PermissionDenied    FailureCode = 1
	PositionUnavailable FailureCode = 2
	Timeout             FailureCode = 3
)

func (c FailureCode) String() string {
	switch c {
	case PermissionDenied:
		return "PERMISSION_DENIED"
	case PositionUnavailable:
		return "POSITION_UNAVAILABLE"
	case Timeout:
		return "TIMEOUT"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(c))
	}
}

// Failure is the error returned when a sensor cannot produce a reading.
type Failure struct {
	Code    FailureCode
	Message string
}

func (f *Failure) Error() string {
	if f.Message == "" {
		return "sensor failure: " + f.Code.String()
	}
	return fmt.Sprintf("sensor failure: %s: %s", f.Code, f.Message)
}

// Options are the acquisition parameters for a single reading.
type Options struct {
	Timeout      time.Duration
	MaximumAge   time.Duration // a cached reading up to this old is acceptable
	HighAccuracy bool
}

// Reading is one position fix.
type Reading struct {
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	AccuracyM float64   `json:"accuracy_m,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Sensor returns the device's current position or a *Failure.
type Sensor interface {
	CurrentPosition(ctx context.Context, opts Options) (Reading, error)
}

// checkRange rejects coordinates outside WGS84 bounds.
func checkRange(r Reading) error {
	if math.IsNaN(r.Lat) || math.IsNaN(r.Lon) || math.Abs(r.Lat) > 90 || math.Abs(r.Lon) > 180 {
		return &Failure{Code: PositionUnavailable, Message: fmt.Sprintf("coordinates out of range: %g, %g", r.Lat, r.Lon)}
	}
	return nil
}

// timeoutFailure converts a context expiry into the TIMEOUT code.
func timeoutFailure(ctx context.Context) error {
	return &Failure{Code: Timeout, Message: ctx.Err().Error()}
}
