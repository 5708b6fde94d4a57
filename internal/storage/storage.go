// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage uploads greeting media to object storage. Two backends
// are available: an S3-compatible bucket (AWS, MinIO, CEPH) and Supabase
// Storage. Both serve files from public URLs.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"strconv"
	"strings"
	"time"
)

// cacheControl is sent with every upload. Keys are never reused, so
// objects can be cached forever.
const cacheControl = "public, max-age=31536000, immutable"

// ObjectStore is the subset of object storage operations the upload
// service needs.
type ObjectStore interface {
	Name() string
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	FileURL(key string) string
	ExtractKey(rawURL string) (string, bool)
}

// Key builds an object key of the form {kind}s/{unixmillis}_{random}.{ext},
// for example "images/1767225600000_3f9a1c0b.jpg".
func Key(kind, ext string, now time.Time) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "bin"
	}
	return kind + "s/" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + randomToken() + "." + ext
}

func randomToken() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return strconv.FormatInt(time.Now().UnixNano()%1e8, 36)
	}
	return hex.EncodeToString(b)
}
