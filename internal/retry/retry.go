// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package retry tracks the loading state of gallery items. Each item has an
// independent counter; failures of remote files are retried with a linear
// backoff up to a fixed cap, after which the item is marked errored until a
// manual retry resets it.
package retry

import (
	"sync"
	"time"

	"greetcards/internal/mediatype"
)

const (
	// MaxRetries is the number of automatic retries after the first failure.
	MaxRetries = 3

	// BaseDelay is multiplied by the attempt number to get the backoff.
	BaseDelay = time.Second
)

// Status is the loading state of one item.
type Status string

const (
	StatusLoading  Status = "loading"
	StatusLoaded   Status = "loaded"
	StatusRetrying Status = "retrying"
	StatusErrored  Status = "errored"
)

// State is a snapshot of one item's loading state.
type State struct {
	Status      Status    `json:"status"`
	Attempts    int       `json:"attempts"`
	NextRetryAt time.Time `json:"next_retry_at,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
}

// Decision is returned by Fail and tells the caller whether and when to
// try loading the item again.
type Decision struct {
	Retry bool
	Delay time.Duration
}

// Backoff returns the delay before the given retry attempt (1-based).
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(attempt) * BaseDelay
}

// Tracker holds the state of many items. It is safe for concurrent use.
type Tracker struct {
	mu    sync.Mutex
	items map[string]*State
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{items: make(map[string]*State)}
}

func (t *Tracker) state(id string) *State {
	s, ok := t.items[id]
	if !ok {
		s = &State{Status: StatusLoading}
		t.items[id] = s
	}
	return s
}

// Fail records a load failure for item id. Only HTTP(S) URLs are retried;
// data: and blob: URIs error out immediately. Once Attempts reaches
// MaxRetries the item is errored and further failures do not increment
// the counter.
func (t *Tracker) Fail(id, rawURL string, cause error, now time.Time) Decision {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.state(id)
	if cause != nil {
		s.LastError = cause.Error()
	}
	s.NextRetryAt = time.Time{}

	if !mediatype.IsRemote(rawURL) || s.Attempts >= MaxRetries {
		s.Status = StatusErrored
		return Decision{}
	}

	s.Attempts++
	delay := Backoff(s.Attempts)
	s.Status = StatusRetrying
	s.NextRetryAt = now.Add(delay)
	return Decision{Retry: true, Delay: delay}
}

// Error marks item id as errored without scheduling a retry. It is used
// for failures that a retry cannot fix, such as an unsupported URL.
func (t *Tracker) Error(id string, cause error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.state(id)
	s.Status = StatusErrored
	s.NextRetryAt = time.Time{}
	if cause != nil {
		s.LastError = cause.Error()
	}
}

// Succeed marks item id as loaded.
func (t *Tracker) Succeed(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.state(id)
	s.Status = StatusLoaded
	s.NextRetryAt = time.Time{}
	s.LastError = ""
}

// ManualRetry resets the counter of item id and puts it back to loading.
func (t *Tracker) ManualRetry(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.items[id] = &State{Status: StatusLoading}
}

// Get returns the state of item id. Unknown items report loading.
func (t *Tracker) Get(id string) State {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.items[id]; ok {
		return *s
	}
	return State{Status: StatusLoading}
}

// Snapshot returns a copy of every tracked item's state.
func (t *Tracker) Snapshot() map[string]State {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]State, len(t.items))
	for id, s := range t.items {
		out[id] = *s
	}
	return out
}
