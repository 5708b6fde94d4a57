// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package autosave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"greetcards/internal/cache"
)

const keyPrefix = cache.DraftKeyPrefix

// RedisBackend stores drafts as JSON in Valkey with a key expiry equal to
// the draft TTL.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend creates a draft backend on the given Valkey client.
func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

// Get loads a draft. Missing or expired keys return (nil, nil).
func (b *RedisBackend) Get(ctx context.Context, id string) (*Draft, error) {
	payload, err := b.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("draft get: %w", err)
	}

	var d Draft
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("draft unmarshal: %w", err)
	}
	return &d, nil
}

// Set writes a draft and resets its expiry.
func (b *RedisBackend) Set(ctx context.Context, d *Draft, ttl time.Duration) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("draft marshal: %w", err)
	}
	if err := b.client.Set(ctx, keyPrefix+d.ID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("draft set: %w", err)
	}
	return nil
}

// Delete removes a draft. Deleting a missing draft is not an error.
func (b *RedisBackend) Delete(ctx context.Context, id string) error {
	if err := b.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("draft delete: %w", err)
	}
	return nil
}

// MemoryBackend keeps drafts in process memory. It is used when Valkey is
// not configured and in tests. Expiry is left to Saver.Load.
type MemoryBackend struct {
	mu     sync.RWMutex
	drafts map[string]Draft
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{drafts: make(map[string]Draft)}
}

func (b *MemoryBackend) Get(_ context.Context, id string) (*Draft, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	d, ok := b.drafts[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (b *MemoryBackend) Set(_ context.Context, d *Draft, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.drafts[d.ID] = *d
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.drafts, id)
	return nil
}

// Len returns the number of stored drafts.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.drafts)
}
