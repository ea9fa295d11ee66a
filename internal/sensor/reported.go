package sensor

import (
	"context"
	"time"
)

// Reported replays the outcome of a geolocation call already made by the
// client (the browser's navigator.geolocation). Exactly one of Reading and
// Failure should be set.
type Reported struct {
	Reading *Reading
	Failure *Failure

	now func() time.Time
}

func NewReported(r *Reading, f *Failure) *Reported {
	return &Reported{Reading: r, Failure: f, now: time.Now}
}

func (s *Reported) CurrentPosition(ctx context.Context, opts Options) (Reading, error) {
	if err := ctx.Err(); err != nil {
		return Reading{}, timeoutFailure(ctx)
	}
	if s.Failure != nil {
		return Reading{}, s.Failure
	}
	if s.Reading == nil {
		return Reading{}, &Failure{Code: PositionUnavailable, Message: "no reading reported"}
	}

	now := time.Now
	if s.now != nil {
		now = s.now
	}
	r := *s.Reading
	if err := checkRange(r); err != nil {
		return Reading{}, err
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = now()
	}
	if opts.MaximumAge > 0 && now().Sub(r.Timestamp) > opts.MaximumAge {
		return Reading{}, &Failure{Code: PositionUnavailable, Message: "reported reading is stale"}
	}
	return r, nil
}
