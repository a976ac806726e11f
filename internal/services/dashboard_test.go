package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"payments-dashboard/internal/ingest"
)

type fakeLoader struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (f *fakeLoader) Load(ctx context.Context) (*ingest.Snapshot, error) {
	f.calls.Add(1)
	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return fullSnapshot(sampleRows()...), nil
}

func (f *fakeLoader) Source() string { return "fake://payments" }

func testDashboard(loader SnapshotLoader) *Dashboard {
	return NewDashboard(loader, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestDashboard_SnapshotIsCached(t *testing.T) {
	loader := &fakeLoader{}
	d := testDashboard(loader)

	first, err := d.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	second, _ := d.Snapshot(context.Background())

	if first != second {
		t.Error("Snapshot() should return the cached instance")
	}
	if n := loader.calls.Load(); n != 1 {
		t.Errorf("loader called %d times, want 1", n)
	}
}

func TestDashboard_ConcurrentCallersShareOneFetch(t *testing.T) {
	loader := &fakeLoader{delay: 50 * time.Millisecond}
	d := testDashboard(loader)

	var wg sync.WaitGroup
	snaps := make([]*ingest.Snapshot, 20)
	for i := range snaps {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := d.Snapshot(context.Background())
			if err != nil {
				t.Errorf("Snapshot() error = %v", err)
				return
			}
			snaps[i] = snap
		}(i)
	}
	wg.Wait()

	if n := loader.calls.Load(); n != 1 {
		t.Errorf("loader called %d times, want 1", n)
	}
	for i := 1; i < len(snaps); i++ {
		if snaps[i] != snaps[0] {
			t.Fatal("callers received different snapshots")
		}
	}
}

func TestDashboard_Invalidate(t *testing.T) {
	loader := &fakeLoader{}
	d := testDashboard(loader)

	first, _ := d.Snapshot(context.Background())
	d.Invalidate()
	second, err := d.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if first == second {
		t.Error("Invalidate() should force a fresh snapshot")
	}
	if n := loader.calls.Load(); n != 2 {
		t.Errorf("loader called %d times, want 2", n)
	}
}

func TestDashboard_LoadFailureKeepsNoState(t *testing.T) {
	loader := &fakeLoader{err: ingest.ErrSourceUnavailable}
	d := testDashboard(loader)

	if _, err := d.Snapshot(context.Background()); !errors.Is(err, ingest.ErrSourceUnavailable) {
		t.Fatalf("error = %v, want ErrSourceUnavailable", err)
	}
	if _, err := d.Snapshot(context.Background()); err == nil {
		t.Fatal("second call should retry and fail again")
	}
	if n := loader.calls.Load(); n != 2 {
		t.Errorf("loader called %d times, want 2", n)
	}

	stats := d.Stats()
	if stats["loaded"] != false {
		t.Errorf("stats = %v, want loaded=false", stats)
	}
}

func TestDashboard_FailedReloadKeepsCurrent(t *testing.T) {
	loader := &fakeLoader{}
	d := testDashboard(loader)

	first, err := d.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	loader.err = errors.New("boom")
	if _, err := d.Load(context.Background()); err == nil {
		t.Fatal("Load() should fail")
	}

	current, _ := d.Snapshot(context.Background())
	if current != first {
		t.Error("failed reload replaced the current snapshot")
	}
}

func TestDashboard_CallerCancel(t *testing.T) {
	loader := &fakeLoader{delay: 200 * time.Millisecond}
	d := testDashboard(loader)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := d.Snapshot(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want DeadlineExceeded", err)
	}
}

func TestDashboard_Stats(t *testing.T) {
	d := testDashboard(&fakeLoader{})
	if _, err := d.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	stats := d.Stats()
	if stats["loaded"] != true || stats["rows"] != len(sampleRows()) {
		t.Errorf("stats = %v", stats)
	}
	if stats["source"] != "fake://payments" {
		t.Errorf("source = %v", stats["source"])
	}
	if stats["loads"] != int64(1) {
		t.Errorf("loads = %v, want 1", stats["loads"])
	}
}
