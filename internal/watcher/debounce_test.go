package watcher

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestDebouncer_FiresOnce(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func(path string) {
		if path == "/in/a.txt" {
			calls.Add(1)
		}
	})

	d.Add("/in/a.txt")
	if !d.IsPending("/in/a.txt") {
		t.Error("path should be pending right after Add")
	}
	if !waitFor(t, time.Second, func() bool { return calls.Load() == 1 }) {
		t.Fatalf("callback not called, calls=%d", calls.Load())
	}
	if d.PendingCount() != 0 {
		t.Errorf("expected nothing pending, got %d", d.PendingCount())
	}
}

func TestDebouncer_CoalescesRapidEvents(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(80*time.Millisecond, func(string) { calls.Add(1) })

	for i := 0; i < 5; i++ {
		d.Add("/in/a.txt")
		time.Sleep(20 * time.Millisecond)
	}
	if calls.Load() != 0 {
		t.Fatal("callback fired before events settled")
	}

	waitFor(t, time.Second, func() bool { return calls.Load() > 0 })
	time.Sleep(120 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 call, got %d", got)
	}
}

func TestDebouncer_MultiplePaths(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]int)
	d := NewDebouncer(20*time.Millisecond, func(path string) {
		mu.Lock()
		seen[path]++
		mu.Unlock()
	})

	d.Add("/in/a.txt")
	d.Add("/in/b.txt")
	d.Add("/in/c.txt")

	ok := waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 3
	})
	if !ok {
		t.Fatalf("expected 3 paths, saw %v", seen)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func(string) { calls.Add(1) })

	d.Add("/in/a.txt")
	d.Cancel("/in/a.txt")
	d.Cancel("/in/unknown.txt")

	time.Sleep(100 * time.Millisecond)
	if calls.Load() != 0 {
		t.Error("cancelled path should not fire")
	}
}

func TestDebouncer_StopIgnoresLaterAdds(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(20*time.Millisecond, func(string) { calls.Add(1) })

	d.Add("/in/a.txt")
	d.Add("/in/b.txt")
	d.Stop()
	d.Add("/in/c.txt")

	if d.PendingCount() != 0 {
		t.Errorf("expected nothing pending after Stop, got %d", d.PendingCount())
	}
	time.Sleep(80 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("no callback expected after Stop, got %d", calls.Load())
	}
}

func TestDebouncer_ConcurrentAdds(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func(string) { calls.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Add("/in/same.txt")
		}()
	}
	wg.Wait()

	waitFor(t, time.Second, func() bool { return calls.Load() > 0 })
	time.Sleep(80 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("expected a single call for one path, got %d", got)
	}
}
