// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package upload

import (
	"bytes"
	"fmt"

	mp4 "github.com/abema/go-mp4"
)

// videoDuration returns the length of a video in seconds. MP4 and
// QuickTime files are probed; anything else, or a file whose header
// carries no duration, uses the client's measurement.
func videoDuration(contentType string, data []byte, reported float64) float64 {
	if contentType == "video/mp4" || contentType == "video/quicktime" {
		d, err := probeDuration(data)
		if err == nil && d > 0 {
			return d
		}
	}
	if reported < 0 {
		return 0
	}
	return reported
}

// probeDuration reads the movie header of an ISO-BMFF file.
func probeDuration(data []byte) (float64, error) {
	info, err := mp4.Probe(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("probe mp4: %w", err)
	}
	if info.Timescale == 0 {
		return 0, fmt.Errorf("probe mp4: no movie header")
	}
	return float64(info.Duration) / float64(info.Timescale), nil
}
