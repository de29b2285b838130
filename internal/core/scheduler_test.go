package core

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMemoryRunStore_Prune(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRunStore(10)
	now := time.Now().UTC()

	for i, age := range []time.Duration{72 * time.Hour, 48 * time.Hour, time.Hour, 0} {
		store.Save(ctx, RunSummary{ID: string(rune('a' + i)), CreatedAt: now.Add(-age)})
	}

	removed, err := store.Prune(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("Prune() removed = %d, want 2", removed)
	}

	runs, _ := store.List(ctx, RunFilter{})
	if len(runs) != 2 || runs[0].ID != "d" || runs[1].ID != "c" {
		t.Errorf("remaining runs = %+v, want d, c", runs)
	}
}

func TestRunRetentionJob(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRunStore(10)
	store.Save(ctx, RunSummary{ID: "old", CreatedAt: time.Now().Add(-48 * time.Hour)})
	store.Save(ctx, RunSummary{ID: "new", CreatedAt: time.Now()})

	svc := NewService(testConfig(), store)
	if got := svc.runRetentionJob(ctx, 24*time.Hour); got != 1 {
		t.Errorf("runRetentionJob() = %d, want 1", got)
	}
	if got := testutil.ToFloat64(svc.metrics.prunedTotal); got != 1 {
		t.Errorf("pruned counter = %v, want 1", got)
	}
	if _, err := svc.GetRun(ctx, "old"); err == nil {
		t.Error("old run should be gone")
	}
}

func TestStartRetentionScheduler_StopsOnCancel(t *testing.T) {
	svc := NewService(testConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		svc.StartRetentionScheduler(ctx, RetentionConfig{MaxAge: time.Hour, CheckInterval: time.Millisecond})
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func TestStartRetentionScheduler_Disabled(t *testing.T) {
	svc := NewService(testConfig(), nil)

	done := make(chan struct{})
	go func() {
		svc.StartRetentionScheduler(context.Background(), RetentionConfig{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled scheduler should return immediately")
	}
}
