// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cache provides the Valkey (Redis-compatible) client and the
// rendered-page cache of public greetings. Pages and auto-save drafts share
// one Valkey database and are told apart by key prefix.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// Keyspaces held in the shared database.
const (
	PageKeyPrefix  = "page:"
	DraftKeyPrefix = "draft:"
)

// ConnectValkey creates a Valkey client named "greetcards" and verifies the
// connection with a ping. It logs how many pages and drafts survived from a
// previous run.
func ConnectValkey(host, port, password string) (*redis.Client, error) {
	addr := net.JoinHostPort(host, port)
	client := redis.NewClient(&redis.Options{
		Addr:       addr,
		Password:   password,
		ClientName: "greetcards",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping: %w", err)
	}

	usage, err := KeyUsage(ctx, client)
	if err != nil {
		slog.Warn("valkey key usage unavailable", "error", err)
	}
	slog.Info("valkey connected", "addr", addr, "pages", usage.Pages, "drafts", usage.Drafts)
	return client, nil
}

// Usage is the number of keys in each greetcards keyspace.
type Usage struct {
	Pages  int `json:"pages"`
	Drafts int `json:"drafts"`
}

// KeyUsage counts cached pages and stored drafts. It scans instead of
// using KEYS so a large database is not blocked.
func KeyUsage(ctx context.Context, client *redis.Client) (Usage, error) {
	var u Usage
	var err error
	if u.Pages, err = countKeys(ctx, client, PageKeyPrefix); err != nil {
		return Usage{}, err
	}
	if u.Drafts, err = countKeys(ctx, client, DraftKeyPrefix); err != nil {
		return Usage{}, err
	}
	return u, nil
}

func countKeys(ctx context.Context, client *redis.Client, prefix string) (int, error) {
	var (
		cursor uint64
		n      int
	)
	for {
		keys, next, err := client.Scan(ctx, cursor, prefix+"*", scanBatch).Result()
		if err != nil {
			return 0, fmt.Errorf("scan %s: %w", prefix, err)
		}
		n += len(keys)
		if cursor = next; cursor == 0 {
			return n, nil
		}
	}
}
