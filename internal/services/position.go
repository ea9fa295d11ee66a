package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"healthmap/internal/geocoder"
	"healthmap/internal/metrics"
	"healthmap/internal/models"
	"healthmap/internal/sensor"

	"go.uber.org/zap"
)

// Sensor acquisition bounds, matching the browser geolocation options the map
// client uses.
const (
	SensorTimeout    = 10 * time.Second
	SensorMaximumAge = 60 * time.Second
)

// PositionResolver tracks the best-known user position for one session.
//
// Calls are neither coalesced nor cancelled. Sequence numbers are assigned
// when a call completes, so the last call to finish determines the final
// position and status regardless of the order calls were issued in.
type PositionResolver struct {
	geocoder geocoder.Geocoder
	metrics  *metrics.Collector
	logr     *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	status   models.ResolverStatus
	position *models.ResolvedPosition
	lastErr  error
	seq      uint64
}

func NewPositionResolver(g geocoder.Geocoder, m *metrics.Collector, logr *zap.Logger) *PositionResolver {
	if logr == nil {
		logr = zap.NewNop()
	}
	return &PositionResolver{
		geocoder: g,
		metrics:  m,
		logr:     logr,
		now:      time.Now,
		status:   models.StatusIdle,
	}
}

// LocateViaSensor reads the device position from s. A nil sensor means the
// capability is absent. On failure the previously resolved position is kept.
func (r *PositionResolver) LocateViaSensor(ctx context.Context, s sensor.Sensor) (models.ResolvedPosition, error) {
	if s == nil {
		r.fail(models.SourceSensor, ErrCapabilityUnavailable)
		return models.ResolvedPosition{}, ErrCapabilityUnavailable
	}

	r.begin(models.StatusLocating)

	ctx, cancel := context.WithTimeout(ctx, SensorTimeout)
	defer cancel()

	reading, err := s.CurrentPosition(ctx, sensor.Options{
		Timeout:      SensorTimeout,
		MaximumAge:   SensorMaximumAge,
		HighAccuracy: true,
	})
	if err != nil {
		err = sensorError(err)
		r.fail(models.SourceSensor, err)
		return models.ResolvedPosition{}, err
	}

	return r.commit(models.ResolvedPosition{
		Lat:       reading.Lat,
		Lon:       reading.Lon,
		AccuracyM: reading.AccuracyM,
		Source:    models.SourceSensor,
	}), nil
}

// LocateViaAddress geocodes query and takes the first match. Blank queries
// are rejected before any lookup and do not change resolver state.
func (r *PositionResolver) LocateViaAddress(ctx context.Context, query string) (models.ResolvedPosition, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return models.ResolvedPosition{}, ErrInvalidQuery
	}
	if r.geocoder == nil {
		r.fail(models.SourceSearch, ErrSearchFailed)
		return models.ResolvedPosition{}, ErrSearchFailed
	}

	r.begin(models.StatusSearching)

	matches, err := r.geocoder.Search(ctx, q, 1)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrSearchFailed, err)
		r.fail(models.SourceSearch, err)
		return models.ResolvedPosition{}, err
	}
	if len(matches) == 0 {
		r.fail(models.SourceSearch, ErrNotFound)
		return models.ResolvedPosition{}, ErrNotFound
	}

	m := matches[0]
	return r.commit(models.ResolvedPosition{
		Lat:    m.Lat,
		Lon:    m.Lon,
		Label:  m.DisplayName,
		Source: models.SourceSearch,
	}), nil
}

// Snapshot returns a copy of the resolver state.
func (r *PositionResolver) Snapshot() models.PositionSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := models.PositionSnapshot{Status: r.status}
	if r.position != nil {
		p := *r.position
		snap.Position = &p
	}
	if r.lastErr != nil {
		snap.Message = Message(r.lastErr)
		snap.ErrorKind = Kind(r.lastErr)
	}
	return snap
}

// Position returns the current resolved position, if any.
func (r *PositionResolver) Position() (models.ResolvedPosition, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.position == nil {
		return models.ResolvedPosition{}, false
	}
	return *r.position, true
}

func (r *PositionResolver) begin(status models.ResolverStatus) {
	r.mu.Lock()
	r.status = status
	r.lastErr = nil
	r.mu.Unlock()
}

func (r *PositionResolver) commit(p models.ResolvedPosition) models.ResolvedPosition {
	r.mu.Lock()
	r.seq++
	p.Seq = r.seq
	p.ResolvedAt = r.now()
	r.position = &p
	r.status = models.StatusResolved
	r.lastErr = nil
	r.mu.Unlock()

	r.metrics.ObserveResolution(string(p.Source), "resolved")
	r.logr.Debug("position resolved",
		zap.String("source", string(p.Source)),
		zap.Float64("lat", p.Lat),
		zap.Float64("lon", p.Lon),
		zap.Uint64("seq", p.Seq))
	return p
}

// fail records err as the current status. The stored position is untouched.
func (r *PositionResolver) fail(source models.PositionSource, err error) {
	r.mu.Lock()
	r.seq++
	r.status = models.StatusError
	r.lastErr = err
	r.mu.Unlock()

	r.metrics.ObserveResolution(string(source), Kind(err))
	r.logr.Info("position resolution failed",
		zap.String("source", string(source)),
		zap.String("kind", Kind(err)),
		zap.Error(err))
}

func sensorError(err error) error {
	var f *sensor.Failure
	if errors.As(err, &f) {
		switch f.Code {
		case sensor.PermissionDenied:
			return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
		case sensor.Timeout:
			return fmt.Errorf("%w: %w", ErrTimeout, err)
		default:
			return fmt.Errorf("%w: %w", ErrPositionUnavailable, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrPositionUnavailable, err)
}
