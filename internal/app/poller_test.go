package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/five82/imagestrip/internal/protocol"
	"github.com/five82/imagestrip/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	// Verify that backoff never exceeds maxBackoff regardless of input
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 20; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	fail  int // number of leading calls that fail
}

func (f *fakeFetcher) FetchStatus(_ context.Context, id string) (*protocol.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.fail {
		return nil, errors.New("connection refused")
	}
	return &protocol.Status{ID: id, Images: 3, Visible: []int{0, 1}}, nil
}

func TestRefreshCountsFailures(t *testing.T) {
	store := &state.Store{}
	f := &fakeFetcher{fail: 2}
	ctx := context.Background()

	if got := refresh(ctx, store, f, "s1", nil); got != 1 {
		t.Fatalf("first failure count = %d, want 1", got)
	}
	if got := refresh(ctx, store, f, "s1", nil); got != 2 {
		t.Fatalf("second failure count = %d, want 2", got)
	}
	if !store.Snapshot().IsOffline() {
		t.Fatalf("store should report offline after two failures")
	}
	if got := refresh(ctx, store, f, "s1", nil); got != 0 {
		t.Fatalf("failure count after success = %d, want 0", got)
	}
	snap := store.Snapshot()
	if !snap.HasStatus || snap.Status.ID != "s1" || snap.Status.Images != 3 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestStartPollerUpdatesStore(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &state.Store{}
	StartPoller(ctx, store, &fakeFetcher{}, "s2", 10*time.Millisecond, nil)

	deadline := time.Now().Add(2 * time.Second)
	for !store.Snapshot().HasStatus {
		if time.Now().After(deadline) {
			t.Fatalf("poller never populated the store")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := store.Snapshot().Status.ID; got != "s2" {
		t.Fatalf("status id = %q, want s2", got)
	}
}
