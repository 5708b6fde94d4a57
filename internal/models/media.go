// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadKind groups uploads by what the editor uses them for. It also
// names the storage prefix ("images/", "videos/", "audios/").
type UploadKind string

const (
	UploadImage UploadKind = "image"
	UploadVideo UploadKind = "video"
	UploadAudio UploadKind = "audio"
)

// Media represents a file uploaded to object storage for use in a greeting.
// Metadata is stored in PostgreSQL when available; the file itself lives in
// the bucket.
type Media struct {
	ID              uuid.UUID  `json:"id"`
	Kind            UploadKind `json:"kind"`
	Filename        string     `json:"filename"`
	OriginalName    string     `json:"original_name"`
	ContentType     string     `json:"content_type"`
	SizeBytes       int64      `json:"size_bytes"`
	Backend         string     `json:"backend"`
	StorageKey      string     `json:"storage_key"`
	ThumbKey        *string    `json:"thumb_key,omitempty"`
	DurationSeconds *float64   `json:"duration_seconds,omitempty"`
	URL             string     `json:"url"`
	ThumbURL        string     `json:"thumb_url,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// IsImage returns true if the media item is an image type.
func (m *Media) IsImage() bool {
	return strings.HasPrefix(m.ContentType, "image/")
}

// IsVideo returns true if the media item is a video type.
func (m *Media) IsVideo() bool {
	return strings.HasPrefix(m.ContentType, "video/")
}

// HumanSize returns a human-readable file size string.
func (m *Media) HumanSize() string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case m.SizeBytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(m.SizeBytes)/float64(mb))
	case m.SizeBytes >= kb:
		return fmt.Sprintf("%.0f KB", float64(m.SizeBytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", m.SizeBytes)
	}
}
