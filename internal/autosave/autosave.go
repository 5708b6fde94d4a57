// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package autosave keeps in-progress greeting drafts. Writes are debounced
// per draft: every edit restarts a fixed idle timer and only the last value
// is written when it fires. Stored drafts older than the TTL are treated as
// absent and removed on read.
package autosave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"greetcards/internal/models"
)

const (
	// DefaultDelay is the idle time after the last edit before a draft is written.
	DefaultDelay = time.Second

	// DefaultTTL is how long a stored draft stays valid.
	DefaultTTL = 24 * time.Hour

	writeTimeout = 5 * time.Second
)

// ErrClosed is returned by Schedule after Flush has stopped the saver.
var ErrClosed = errors.New("autosave: saver closed")

// Draft is one stored snapshot of the editor state.
type Draft struct {
	ID      string          `json:"id"`
	Data    models.Greeting `json:"data"`
	SavedAt time.Time       `json:"saved_at"`
}

// Backend persists drafts. Get returns (nil, nil) when the draft does not
// exist.
type Backend interface {
	Get(ctx context.Context, id string) (*Draft, error)
	Set(ctx context.Context, d *Draft, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type pendingWrite struct {
	draft Draft
	timer *time.Timer

	// Set once the write has started.
	done      chan struct{}
	discarded bool
}

// Saver debounces draft writes to a Backend. Writes of one draft run one
// at a time and in schedule order.
type Saver struct {
	backend Backend
	delay   time.Duration
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	pending map[string]*pendingWrite // waiting for the timer
	writing map[string]*pendingWrite // latest write handed to the backend
	closed  bool
}

// NewSaver creates a saver. Zero delay or ttl select the defaults.
func NewSaver(backend Backend, delay, ttl time.Duration) *Saver {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Saver{
		backend: backend,
		delay:   delay,
		ttl:     ttl,
		now:     time.Now,
		pending: make(map[string]*pendingWrite),
		writing: make(map[string]*pendingWrite),
	}
}

// TTL returns the draft lifetime.
func (s *Saver) TTL() time.Duration {
	return s.ttl
}

// Schedule queues data as the latest value of draft id. Any write still
// pending for the same id is cancelled.
func (s *Saver) Schedule(id string, data models.Greeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	if p, ok := s.pending[id]; ok {
		p.timer.Stop()
	}

	p := &pendingWrite{draft: Draft{ID: id, Data: data, SavedAt: s.now()}}
	p.timer = time.AfterFunc(s.delay, func() { s.fire(id, p) })
	s.pending[id] = p
	return nil
}

// fire writes p unless a newer edit has replaced it in the meantime.
func (s *Saver) fire(id string, p *pendingWrite) {
	s.mu.Lock()
	if s.pending[id] != p {
		s.mu.Unlock()
		return
	}
	prev := s.start(id, p)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := s.write(ctx, id, p, prev); err != nil {
		slog.Error("autosave write failed", "draft", id, "error", err)
		return
	}
	slog.Debug("draft saved", "draft", id)
}

// start moves p from pending to writing and returns the write it has to
// wait for, if any. s.mu must be held.
func (s *Saver) start(id string, p *pendingWrite) *pendingWrite {
	delete(s.pending, id)
	prev := s.writing[id]
	p.done = make(chan struct{})
	s.writing[id] = p
	return prev
}

// write stores p after prev has finished, unless the draft was discarded
// in the meantime.
func (s *Saver) write(ctx context.Context, id string, p, prev *pendingWrite) error {
	defer func() {
		s.mu.Lock()
		if s.writing[id] == p {
			delete(s.writing, id)
		}
		close(p.done)
		s.mu.Unlock()
	}()

	if prev != nil {
		<-prev.done
	}

	s.mu.Lock()
	discarded := p.discarded
	s.mu.Unlock()
	if discarded {
		return nil
	}
	return s.backend.Set(ctx, &p.draft, s.ttl)
}

// Load returns the latest value of draft id: the pending or in-flight edit
// if there is one, otherwise the stored draft. Expired drafts are deleted
// and reported as absent with (nil, nil).
func (s *Saver) Load(ctx context.Context, id string) (*Draft, error) {
	s.mu.Lock()
	p, ok := s.pending[id]
	if !ok {
		if w, writing := s.writing[id]; writing && !w.discarded {
			p, ok = w, true
		}
	}
	if ok {
		d := p.draft
		s.mu.Unlock()
		return &d, nil
	}
	s.mu.Unlock()

	d, err := s.backend.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	if d == nil {
		return nil, nil
	}

	if s.now().Sub(d.SavedAt) > s.ttl {
		if err := s.backend.Delete(ctx, id); err != nil {
			slog.Warn("failed to delete expired draft", "draft", id, "error", err)
		}
		return nil, nil
	}

	return d, nil
}

// Discard cancels any pending write and deletes the stored draft. A write
// already in progress is allowed to finish before the delete.
func (s *Saver) Discard(ctx context.Context, id string) error {
	s.mu.Lock()
	if p, ok := s.pending[id]; ok {
		p.timer.Stop()
		delete(s.pending, id)
	}
	w := s.writing[id]
	if w != nil {
		w.discarded = true
	}
	s.mu.Unlock()

	if w != nil {
		if err := wait(ctx, w); err != nil {
			return fmt.Errorf("discard draft: %w", err)
		}
	}

	if err := s.backend.Delete(ctx, id); err != nil {
		return fmt.Errorf("discard draft: %w", err)
	}
	return nil
}

// Flush writes every pending draft immediately and stops the saver. It is
// called during shutdown.
func (s *Saver) Flush(ctx context.Context) error {
	type job struct {
		id      string
		p, prev *pendingWrite
	}

	s.mu.Lock()
	s.closed = true
	jobs := make([]job, 0, len(s.pending))
	for id, p := range s.pending {
		p.timer.Stop()
		jobs = append(jobs, job{id: id, p: p, prev: s.start(id, p)})
	}
	inFlight := make([]*pendingWrite, 0, len(s.writing))
	for _, w := range s.writing {
		inFlight = append(inFlight, w)
	}
	s.mu.Unlock()

	var errs []error
	for _, j := range jobs {
		if err := s.write(ctx, j.id, j.p, j.prev); err != nil {
			errs = append(errs, fmt.Errorf("flush draft %s: %w", j.id, err))
		}
	}
	for _, w := range inFlight {
		if err := wait(ctx, w); err != nil {
			errs = append(errs, fmt.Errorf("flush draft %s: %w", w.draft.ID, err))
		}
	}
	if len(jobs) > 0 {
		slog.Info("flushed pending drafts", "count", len(jobs), "failed", len(errs))
	}
	return errors.Join(errs...)
}

// wait blocks until the write w has finished or ctx is done.
func wait(ctx context.Context, w *pendingWrite) error {
	select {
	case <-w.done:
		return nil
	default:
	}
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending reports how many drafts are waiting to be written.
func (s *Saver) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
