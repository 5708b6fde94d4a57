package retry

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

var errLoad = errors.New("load failed")

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 3 * time.Second},
	}
	for _, tt := range tests {
		if got := Backoff(tt.attempt); got != tt.want {
			t.Errorf("Backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestFailRetriesRemoteWithLinearBackoff(t *testing.T) {
	tr := NewTracker()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for attempt := 1; attempt <= MaxRetries; attempt++ {
		d := tr.Fail("m1", "https://example.com/a.jpg", errLoad, now)
		if !d.Retry {
			t.Fatalf("attempt %d: expected retry", attempt)
		}
		if d.Delay != time.Duration(attempt)*time.Second {
			t.Errorf("attempt %d: delay = %v", attempt, d.Delay)
		}
		s := tr.Get("m1")
		if s.Status != StatusRetrying || s.Attempts != attempt {
			t.Errorf("attempt %d: state = %+v", attempt, s)
		}
		if !s.NextRetryAt.Equal(now.Add(d.Delay)) {
			t.Errorf("attempt %d: next retry at %v", attempt, s.NextRetryAt)
		}
	}

	d := tr.Fail("m1", "https://example.com/a.jpg", errLoad, now)
	if d.Retry {
		t.Error("expected no retry after the cap")
	}
	s := tr.Get("m1")
	if s.Status != StatusErrored {
		t.Errorf("status = %q, want errored", s.Status)
	}
	if s.LastError != errLoad.Error() {
		t.Errorf("last error = %q", s.LastError)
	}
}

func TestCounterNeverExceedsCap(t *testing.T) {
	tr := NewTracker()
	now := time.Now()
	for i := 0; i < 50; i++ {
		tr.Fail("m1", "http://example.com/v.mp4", errLoad, now)
		if got := tr.Get("m1").Attempts; got > MaxRetries {
			t.Fatalf("after %d failures attempts = %d, cap is %d", i+1, got, MaxRetries)
		}
	}
	if tr.Get("m1").Status != StatusErrored {
		t.Error("expected errored state")
	}
}

func TestInlineURIsAreNeverRetried(t *testing.T) {
	for _, u := range []string{"data:image/png;base64,AAAA", "blob:https://example.com/x", "/relative.png"} {
		tr := NewTracker()
		d := tr.Fail("m1", u, errLoad, time.Now())
		if d.Retry {
			t.Errorf("%q: expected no retry", u)
		}
		s := tr.Get("m1")
		if s.Status != StatusErrored || s.Attempts != 0 {
			t.Errorf("%q: state = %+v", u, s)
		}
	}
}

func TestManualRetryResetsCounter(t *testing.T) {
	tr := NewTracker()
	for i := 0; i <= MaxRetries; i++ {
		tr.Fail("m1", "https://example.com/a.jpg", errLoad, time.Now())
	}
	tr.ManualRetry("m1")

	s := tr.Get("m1")
	if s.Status != StatusLoading || s.Attempts != 0 || s.LastError != "" {
		t.Errorf("after manual retry: %+v", s)
	}

	d := tr.Fail("m1", "https://example.com/a.jpg", errLoad, time.Now())
	if !d.Retry || d.Delay != time.Second {
		t.Errorf("expected a fresh first retry, got %+v", d)
	}
}

func TestSucceed(t *testing.T) {
	tr := NewTracker()
	tr.Fail("m1", "https://example.com/a.jpg", errLoad, time.Now())
	tr.Succeed("m1")

	s := tr.Get("m1")
	if s.Status != StatusLoaded || s.LastError != "" || !s.NextRetryAt.IsZero() {
		t.Errorf("state = %+v", s)
	}
}

func TestItemsAreIndependent(t *testing.T) {
	tr := NewTracker()
	for i := 0; i <= MaxRetries; i++ {
		tr.Fail("a", "https://example.com/a.jpg", errLoad, time.Now())
	}
	tr.Fail("b", "https://example.com/b.jpg", errLoad, time.Now())

	snap := tr.Snapshot()
	if snap["a"].Status != StatusErrored {
		t.Errorf("a = %+v", snap["a"])
	}
	if snap["b"].Status != StatusRetrying || snap["b"].Attempts != 1 {
		t.Errorf("b = %+v", snap["b"])
	}
	if got := tr.Get("unknown"); got.Status != StatusLoading {
		t.Errorf("unknown item = %+v", got)
	}
}

func TestTrackerConcurrentUse(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("m%d", i%4)
			for j := 0; j < 10; j++ {
				tr.Fail(id, "https://example.com/x.jpg", errLoad, time.Now())
				_ = tr.Snapshot()
			}
		}(i)
	}
	wg.Wait()

	for id, s := range tr.Snapshot() {
		if s.Attempts > MaxRetries {
			t.Errorf("%s: attempts = %d", id, s.Attempts)
		}
	}
}

func TestErrorDoesNotRetry(t *testing.T) {
	tr := NewTracker()
	tr.Error("m1", errLoad)

	s := tr.Get("m1")
	if s.Status != StatusErrored || s.Attempts != 0 || s.LastError != errLoad.Error() {
		t.Errorf("state = %+v", s)
	}
}
