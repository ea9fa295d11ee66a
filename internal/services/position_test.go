package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"healthmap/internal/geocoder"
	"healthmap/internal/metrics"
	"healthmap/internal/models"
	"healthmap/internal/sensor"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeGeocoder struct {
	mu      sync.Mutex
	calls   []string
	matches []geocoder.Match
	err     error
}

func (g *fakeGeocoder) Search(_ context.Context, query string, limit int) ([]geocoder.Match, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, query)
	if g.err != nil {
		return nil, g.err
	}
	if len(g.matches) > limit {
		return g.matches[:limit], nil
	}
	return g.matches, nil
}

func (g *fakeGeocoder) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

// gatedGeocoder blocks each query until its gate is released.
type gatedGeocoder struct {
	started chan string
	gates   map[string]chan struct{}
	results map[string]geocoder.Match
}

func (g *gatedGeocoder) Search(_ context.Context, query string, _ int) ([]geocoder.Match, error) {
	g.started <- query
	<-g.gates[query]
	return []geocoder.Match{g.results[query]}, nil
}

func TestLocateViaAddressCairns(t *testing.T) {
	geo := &fakeGeocoder{matches: []geocoder.Match{{Lat: -16.9186, Lon: 145.7781}}}
	m, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	r := NewPositionResolver(geo, m, nil)

	pos, err := r.LocateViaAddress(context.Background(), "Cairns")
	if err != nil {
		t.Fatalf("LocateViaAddress: %v", err)
	}
	if pos.Lat != -16.9186 || pos.Lon != 145.7781 {
		t.Errorf("position = (%v, %v), want (-16.9186, 145.7781)", pos.Lat, pos.Lon)
	}
	if pos.Source != models.SourceSearch {
		t.Errorf("source = %q, want search", pos.Source)
	}

	snap := r.Snapshot()
	if snap.Status != models.StatusResolved || snap.Position == nil || *snap.Position != pos {
		t.Errorf("snapshot = %+v", snap)
	}
	if got := testutil.ToFloat64(m.Resolutions.WithLabelValues("search", "resolved")); got != 1 {
		t.Errorf("resolutions{search,resolved} = %v, want 1", got)
	}
}

func TestLocateViaAddressBlankQuery(t *testing.T) {
	for _, q := range []string{"", " ", "\t\n  "} {
		geo := &fakeGeocoder{matches: []geocoder.Match{{Lat: 1, Lon: 2}}}
		r := NewPositionResolver(geo, nil, nil)

		_, err := r.LocateViaAddress(context.Background(), q)
		if !errors.Is(err, ErrInvalidQuery) {
			t.Errorf("query %q: err = %v, want ErrInvalidQuery", q, err)
		}
		if n := geo.callCount(); n != 0 {
			t.Errorf("query %q: geocoder called %d times", q, n)
		}
		if got := r.Snapshot().Status; got != models.StatusIdle {
			t.Errorf("query %q: status = %q, want idle", q, got)
		}
	}
}

func TestLocateViaAddressFailuresKeepPosition(t *testing.T) {
	tests := []struct {
		name string
		geo  *fakeGeocoder
		want error
		msg  string
	}{
		{"no match", &fakeGeocoder{}, ErrNotFound, "Address not found"},
		{"transport", &fakeGeocoder{err: errors.New("connection refused")}, ErrSearchFailed, "Search failed. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewPositionResolver(tt.geo, nil, nil)
			prior, err := r.LocateViaSensor(context.Background(), sensor.Fixed{Reading: sensor.Reading{Lat: -16.9, Lon: 145.7}})
			if err != nil {
				t.Fatal(err)
			}

			_, err = r.LocateViaAddress(context.Background(), "nowhere")
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}

			snap := r.Snapshot()
			if snap.Status != models.StatusError {
				t.Errorf("status = %q, want error", snap.Status)
			}
			if snap.Message != tt.msg {
				t.Errorf("message = %q, want %q", snap.Message, tt.msg)
			}
			if snap.Position == nil || *snap.Position != prior {
				t.Errorf("prior position lost: %+v", snap.Position)
			}
		})
	}
}

func TestLocateViaSensorFailureCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
		kind string
	}{
		{"permission denied", &sensor.Failure{Code: sensor.PermissionDenied}, ErrPermissionDenied, "PermissionDenied"},
		{"unavailable", &sensor.Failure{Code: sensor.PositionUnavailable}, ErrPositionUnavailable, "PositionUnavailable"},
		{"timeout", &sensor.Failure{Code: sensor.Timeout}, ErrTimeout, "Timeout"},
		{"unknown code", &sensor.Failure{Code: 42}, ErrPositionUnavailable, "PositionUnavailable"},
		{"deadline", context.DeadlineExceeded, ErrTimeout, "Timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geo := &fakeGeocoder{matches: []geocoder.Match{{Lat: -16.9186, Lon: 145.7781}}}
			r := NewPositionResolver(geo, nil, nil)
			prior, err := r.LocateViaAddress(context.Background(), "Cairns")
			if err != nil {
				t.Fatal(err)
			}

			_, err = r.LocateViaSensor(context.Background(), sensor.Fixed{Err: tt.err})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}

			snap := r.Snapshot()
			if snap.ErrorKind != tt.kind {
				t.Errorf("error kind = %q, want %q", snap.ErrorKind, tt.kind)
			}
			if snap.Position == nil || *snap.Position != prior {
				t.Errorf("prior position not preserved: %+v", snap.Position)
			}
		})
	}
}

func TestLocateViaSensorPermissionDeniedMessage(t *testing.T) {
	r := NewPositionResolver(nil, nil, nil)
	_, err := r.LocateViaSensor(context.Background(), sensor.Fixed{Err: &sensor.Failure{Code: sensor.PermissionDenied}})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v", err)
	}
	snap := r.Snapshot()
	if snap.Message != "Location access denied by user." {
		t.Errorf("message = %q", snap.Message)
	}
	if snap.Position != nil {
		t.Errorf("position = %+v, want none", snap.Position)
	}
}

func TestLocateViaSensorCapabilityUnavailable(t *testing.T) {
	r := NewPositionResolver(nil, nil, nil)
	_, err := r.LocateViaSensor(context.Background(), nil)
	if !errors.Is(err, ErrCapabilityUnavailable) {
		t.Fatalf("err = %v, want ErrCapabilityUnavailable", err)
	}
	if _, ok := r.Position(); ok {
		t.Error("position set without a sensor")
	}
	if got := r.Snapshot().Message; got != "Geolocation is not supported by this browser." {
		t.Errorf("message = %q", got)
	}
}

func TestLocateViaSensorSuccess(t *testing.T) {
	r := NewPositionResolver(nil, nil, nil)
	pos, err := r.LocateViaSensor(context.Background(), sensor.Fixed{Reading: sensor.Reading{Lat: -16.92, Lon: 145.77, AccuracyM: 12}})
	if err != nil {
		t.Fatal(err)
	}
	if pos.Source != models.SourceSensor || pos.AccuracyM != 12 {
		t.Errorf("position = %+v", pos)
	}
	if pos.Seq == 0 {
		t.Error("seq not assigned")
	}
}

func TestLastCompletionWins(t *testing.T) {
	geo := &gatedGeocoder{
		started: make(chan string, 2),
		gates: map[string]chan struct{}{
			"first":  make(chan struct{}),
			"second": make(chan struct{}),
		},
		results: map[string]geocoder.Match{
			"first":  {Lat: -16.0, Lon: 145.0},
			"second": {Lat: -17.0, Lon: 146.0},
		},
	}
	r := NewPositionResolver(geo, nil, nil)
	ctx := context.Background()

	results := make(chan models.ResolvedPosition, 2)
	locate := func(q string) {
		pos, err := r.LocateViaAddress(ctx, q)
		if err != nil {
			t.Errorf("%s: %v", q, err)
		}
		results <- pos
	}

	go locate("first")
	<-geo.started
	go locate("second")
	<-geo.started

	// the later-issued call finishes first
	close(geo.gates["second"])
	second := <-results
	close(geo.gates["first"])
	first := <-results

	final, ok := r.Position()
	if !ok {
		t.Fatal("no position")
	}
	if final.Lat != -16.0 || final.Lon != 145.0 {
		t.Errorf("final = (%v, %v), want the last completed result (-16, 145)", final.Lat, final.Lon)
	}
	if first.Seq <= second.Seq {
		t.Errorf("seq first=%d second=%d, want completion order", first.Seq, second.Seq)
	}
}

func TestErrorHelpers(t *testing.T) {
	if Kind(nil) != "" || Message(nil) != "" {
		t.Error("nil error should have no kind or message")
	}
	if got := Kind(errors.New("other")); got != "" {
		t.Errorf("Kind(other) = %q", got)
	}
	if got := Message(errors.New("other")); got != "Unable to retrieve your location." {
		t.Errorf("Message(other) = %q", got)
	}
	if got := Kind(ErrInvalidQuery); got != "InvalidQuery" {
		t.Errorf("Kind(ErrInvalidQuery) = %q", got)
	}
}
