// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package probe checks that the gallery URLs of a greeting are reachable.
// Every item is probed independently with its own retry counter, so one
// slow or broken item never holds up the others.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"greetcards/internal/mediatype"
	"greetcards/internal/models"
	"greetcards/internal/retry"
)

// DefaultConcurrency bounds the number of in-flight probes per Check call.
const DefaultConcurrency = 4

var (
	errUnsupported  = errors.New("unsupported media url")
	errNotFetchable = errors.New("url is not fetchable from the server")
)

// Result is the outcome of probing one gallery item.
type Result struct {
	ID         string               `json:"id"`
	URL        string               `json:"url"`
	Resolution mediatype.Resolution `json:"resolution"`
	State      retry.State          `json:"state"`
	HTTPStatus int                  `json:"http_status,omitempty"`
}

// Prober issues the HTTP checks.
type Prober struct {
	client      *http.Client
	concurrency int
	userAgent   string

	// allowInternal disables the literal address check; the dialer guard
	// lives in the client built by NewClient.
	allowInternal bool

	// sleep waits between retries; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// New creates a prober that uses the given HTTP client. A nil client gets
// NewClient with a 10s timeout, which refuses non-public addresses.
func New(client *http.Client) *Prober {
	if client == nil {
		client = NewClient(10 * time.Second)
	}
	return &Prober{
		client:      client,
		concurrency: DefaultConcurrency,
		userAgent:   "greetcards-probe/1.0",
		sleep:       sleepCtx,
		now:         time.Now,
	}
}

// WithConcurrency sets the maximum number of parallel probes.
func (p *Prober) WithConcurrency(n int) *Prober {
	if n > 0 {
		p.concurrency = n
	}
	return p
}

// Check probes every item and returns one result per item, in input order.
// Embedded platform URLs are resolved but never fetched.
func (p *Prober) Check(ctx context.Context, items []models.MediaItem) []Result {
	tracker := retry.NewTracker()
	results := make([]Result, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, item := range items {
		g.Go(func() error {
			// Items are tracked by position; ids may repeat or be empty.
			key := strconv.Itoa(i)
			results[i] = p.checkOne(gctx, tracker, key, item.URL)
			results[i].ID = item.ID
			if item.ID == "" {
				results[i].ID = key
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (p *Prober) checkOne(ctx context.Context, tracker *retry.Tracker, id, rawURL string) Result {
	res := Result{
		ID:         id,
		URL:        rawURL,
		Resolution: mediatype.Resolve(rawURL, mediatype.Options{Muted: true}),
	}
	url := res.Resolution.URL

	switch {
	case res.Resolution.Kind.IsEmbed():
		if res.Resolution.Invalid {
			tracker.Error(id, mediatype.ErrInvalidEmbed)
		} else {
			tracker.Succeed(id)
		}
		res.State = tracker.Get(id)
		return res

	case res.Resolution.Kind == mediatype.KindUnsupported:
		tracker.Error(id, errUnsupported)
		res.State = tracker.Get(id)
		return res

	case strings.HasPrefix(strings.ToLower(url), "data:"),
		strings.HasPrefix(strings.ToLower(url), "blob:"):
		// Inline and browser-local objects load on the client.
		tracker.Succeed(id)
		res.State = tracker.Get(id)
		return res

	case !mediatype.IsRemote(url):
		tracker.Error(id, errNotFetchable)
		res.State = tracker.Get(id)
		return res
	}

	if !p.allowInternal {
		if err := checkHost(url); err != nil {
			tracker.Error(id, err)
			res.State = tracker.Get(id)
			return res
		}
	}

	for {
		status, err := p.fetch(ctx, url)
		res.HTTPStatus = status
		if err == nil {
			tracker.Succeed(id)
			break
		}
		if errors.Is(err, ErrBlockedAddress) {
			tracker.Error(id, err)
			break
		}

		d := tracker.Fail(id, url, err, p.now())
		if !d.Retry {
			break
		}
		if err := p.sleep(ctx, d.Delay); err != nil {
			break
		}
	}

	res.State = tracker.Get(id)
	return res
}

// fetch issues a HEAD request and falls back to a one-byte ranged GET for
// servers that do not implement HEAD.
func (p *Prober) fetch(ctx context.Context, url string) (int, error) {
	status, err := p.do(ctx, http.MethodHead, url)
	if err != nil {
		return status, err
	}
	if status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented {
		status, err = p.do(ctx, http.MethodGet, url)
		if err != nil {
			return status, err
		}
	}
	if status >= 400 {
		return status, fmt.Errorf("probe %s: status %d", url, status)
	}
	return status, nil
}

func (p *Prober) do(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, fmt.Errorf("probe request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	if method == http.MethodGet {
		req.Header.Set("Range", "bytes=0-0")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	return resp.StatusCode, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
