// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package upload accepts media files from the editor, checks them against
// the upload policy and stores them in object storage.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"greetcards/internal/models"
	"greetcards/internal/storage"
)

var (
	ErrNoStorage       = errors.New("object storage is not configured")
	ErrUnsupportedType = errors.New("file type is not allowed")
	ErrTooLarge        = errors.New("file is too large")
	ErrTooLong         = errors.New("video is too long")
	ErrEmpty           = errors.New("file is empty")
)

// Policy holds the per-kind upload limits.
type Policy struct {
	MaxImageBytes    int64
	MaxVideoBytes    int64
	MaxAudioBytes    int64
	MaxVideoDuration time.Duration
}

// DefaultPolicy returns the limits the editor advertises to users.
func DefaultPolicy() Policy {
	return Policy{
		MaxImageBytes:    10 << 20,
		MaxVideoBytes:    50 << 20,
		MaxAudioBytes:    10 << 20,
		MaxVideoDuration: 30 * time.Second,
	}
}

// Limit returns the size cap for kind.
func (p Policy) Limit(kind models.UploadKind) int64 {
	switch kind {
	case models.UploadVideo:
		return p.MaxVideoBytes
	case models.UploadAudio:
		return p.MaxAudioBytes
	default:
		return p.MaxImageBytes
	}
}

// MaxRequestBytes is the largest body an upload request may carry.
func (p Policy) MaxRequestBytes() int64 {
	return max(p.MaxImageBytes, p.MaxVideoBytes, p.MaxAudioBytes)
}

// allowedTypes maps accepted MIME types to their upload kind.
var allowedTypes = map[string]models.UploadKind{
	"image/jpeg":      models.UploadImage,
	"image/png":       models.UploadImage,
	"image/gif":       models.UploadImage,
	"image/webp":      models.UploadImage,
	"image/avif":      models.UploadImage,
	"video/mp4":       models.UploadVideo,
	"video/webm":      models.UploadVideo,
	"video/quicktime": models.UploadVideo,
	"audio/mpeg":      models.UploadAudio,
	"audio/ogg":       models.UploadAudio,
	"audio/wav":       models.UploadAudio,
}

// extensionTypes resolves formats the content sniffer does not recognise.
var extensionTypes = map[string]string{
	".avif": "image/avif",
	".mov":  "video/quicktime",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
}

// Classify returns the upload kind of an accepted content type.
func Classify(contentType string) (models.UploadKind, bool) {
	kind, ok := allowedTypes[contentType]
	return kind, ok
}

// DetectContentType sniffs data and falls back to the file extension for
// formats the sniffer reports as generic.
func DetectContentType(filename string, data []byte) string {
	ct := http.DetectContentType(data)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	switch ct {
	case "audio/wave":
		return "audio/wav"
	case "application/octet-stream", "application/ogg", "text/plain":
		if t, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]; ok {
			return t
		}
	}
	return ct
}

// extensionFromType returns a file extension for known MIME types.
func extensionFromType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	case "image/avif":
		return "avif"
	case "video/mp4":
		return "mp4"
	case "video/webm":
		return "webm"
	case "video/quicktime":
		return "mov"
	case "audio/mpeg":
		return "mp3"
	case "audio/ogg":
		return "ogg"
	case "audio/wav":
		return "wav"
	default:
		return ""
	}
}

// MediaRecorder persists upload metadata. It is optional: without a
// database the files are still stored, just not indexed.
type MediaRecorder interface {
	Record(ctx context.Context, m *models.Media) error
	Forget(ctx context.Context, key string) (*models.Media, error)
}

// Service stores uploads in an ObjectStore.
type Service struct {
	objects  storage.ObjectStore
	recorder MediaRecorder
	policy   Policy
	now      func() time.Time
}

// NewService creates an upload service. objects may be nil, in which case
// every upload fails with ErrNoStorage.
func NewService(objects storage.ObjectStore, recorder MediaRecorder, policy Policy) *Service {
	return &Service{objects: objects, recorder: recorder, policy: policy, now: time.Now}
}

// Enabled reports whether an object store is configured.
func (s *Service) Enabled() bool {
	return s.objects != nil
}

// Policy returns the limits enforced by the service.
func (s *Service) Policy() Policy {
	return s.policy
}

// Upload checks and stores one file. reportedDuration is the client's
// measurement in seconds and is only used when the container cannot be
// probed (WebM).
func (s *Service) Upload(ctx context.Context, filename string, data []byte, reportedDuration float64) (*models.Media, error) {
	if s.objects == nil {
		return nil, ErrNoStorage
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	contentType := DetectContentType(filename, data)
	kind, ok := Classify(contentType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	if limit := s.policy.Limit(kind); int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d MB", ErrTooLarge, kind, limit>>20)
	}

	var duration *float64
	if kind == models.UploadVideo {
		d := videoDuration(contentType, data, reportedDuration)
		if d > s.policy.MaxVideoDuration.Seconds() {
			return nil, fmt.Errorf("%w: %.1fs exceeds %s", ErrTooLong, d, s.policy.MaxVideoDuration)
		}
		if d > 0 {
			duration = &d
		}
	}

	now := s.now()
	ext := extensionFromType(contentType)
	key := storage.Key(string(kind), ext, now)
	if err := s.objects.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	m := &models.Media{
		Kind:            kind,
		Filename:        filepath.Base(key),
		OriginalName:    filepath.Base(filename),
		ContentType:     contentType,
		SizeBytes:       int64(len(data)),
		Backend:         s.objects.Name(),
		StorageKey:      key,
		DurationSeconds: duration,
		URL:             s.objects.FileURL(key),
		CreatedAt:       now.UTC(),
	}

	if thumbableTypes[contentType] {
		s.attachThumbnail(ctx, m, data, now)
	}

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, m); err != nil {
			s.deleteObjects(ctx, m)
			return nil, err
		}
	}

	slog.Info("media uploaded", "key", key, "type", contentType, "size", m.HumanSize(), "backend", m.Backend)
	return m, nil
}

// attachThumbnail uploads a thumbnail for large raster images. Failures
// are logged and leave the media without a thumbnail.
func (s *Service) attachThumbnail(ctx context.Context, m *models.Media, data []byte, now time.Time) {
	thumb, err := generateThumbnail(bytes.NewReader(data), thumbMaxWidth)
	if err != nil {
		slog.Warn("thumbnail generation failed", "error", err, "key", m.StorageKey)
		return
	}
	if thumb == nil {
		return
	}

	tk := storage.Key("thumb", "jpg", now)
	if err := s.objects.Upload(ctx, tk, "image/jpeg", bytes.NewReader(thumb), int64(len(thumb))); err != nil {
		slog.Warn("thumbnail upload failed", "error", err, "key", tk)
		return
	}
	m.ThumbKey = &tk
	m.ThumbURL = s.objects.FileURL(tk)
}

// Owns reports whether rawURL points at an object in this service's store.
func (s *Service) Owns(rawURL string) bool {
	if s.objects == nil {
		return false
	}
	_, ok := s.objects.ExtractKey(rawURL)
	return ok
}

// Remove deletes the object behind rawURL, its thumbnail and its metadata.
// URLs outside the store are ignored and report false.
func (s *Service) Remove(ctx context.Context, rawURL string) (bool, error) {
	if s.objects == nil {
		return false, nil
	}
	key, ok := s.objects.ExtractKey(rawURL)
	if !ok {
		return false, nil
	}

	m := &models.Media{StorageKey: key}
	if s.recorder != nil {
		rec, err := s.recorder.Forget(ctx, key)
		if err != nil {
			return false, err
		}
		if rec != nil {
			m = rec
		}
	}

	if err := s.objects.Delete(ctx, m.StorageKey); err != nil {
		return false, err
	}
	if m.ThumbKey != nil {
		if err := s.objects.Delete(ctx, *m.ThumbKey); err != nil {
			slog.Warn("thumbnail delete failed", "error", err, "key", *m.ThumbKey)
		}
	}
	return true, nil
}

// deleteObjects removes the files of a media record whose metadata could
// not be saved.
func (s *Service) deleteObjects(ctx context.Context, m *models.Media) {
	if err := s.objects.Delete(ctx, m.StorageKey); err != nil {
		slog.Warn("orphan delete failed", "error", err, "key", m.StorageKey)
	}
	if m.ThumbKey != nil {
		if err := s.objects.Delete(ctx, *m.ThumbKey); err != nil {
			slog.Warn("orphan thumbnail delete failed", "error", err, "key", *m.ThumbKey)
		}
	}
}
