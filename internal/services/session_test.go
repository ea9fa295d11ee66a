package services

import (
	"testing"
	"time"

	"healthmap/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSessionStoreGetCreatesOnce(t *testing.T) {
	m, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	store := NewSessionStore(nil, time.Hour, m, nil)

	a := store.Get("s1")
	b := store.Get("s1")
	if a != b {
		t.Error("Get returned a different session for the same id")
	}
	store.Get("s2")
	if store.Len() != 2 {
		t.Errorf("len = %d, want 2", store.Len())
	}
	if got := testutil.ToFloat64(m.ActiveSessions); got != 2 {
		t.Errorf("active sessions gauge = %v, want 2", got)
	}

	// sessions are isolated from each other
	a.State.SelectService("cairns-hospital")
	if store.Get("s2").State.Snapshot().ServiceID != "" {
		t.Error("selection leaked between sessions")
	}
}

func TestSessionStoreSweep(t *testing.T) {
	store := NewSessionStore(nil, time.Minute, nil, nil)
	now := time.Now()
	store.now = func() time.Time { return now }

	store.Get("stale")
	now = now.Add(2 * time.Minute)
	store.Get("fresh")

	if removed := store.Sweep(); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, ok := store.Lookup("stale"); ok {
		t.Error("stale session survived sweep")
	}
	if _, ok := store.Lookup("fresh"); !ok {
		t.Error("fresh session was swept")
	}
}

func TestSessionStoreNoExpiry(t *testing.T) {
	store := NewSessionStore(nil, 0, nil, nil)
	store.Get("s1")
	if removed := store.Sweep(); removed != 0 {
		t.Errorf("removed = %d with expiry disabled", removed)
	}
}
