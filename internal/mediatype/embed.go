// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package mediatype

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidEmbed is returned when a URL belongs to a known platform but no
// video ID can be extracted from it. Callers render an "invalid embed"
// placeholder instead of the player.
var ErrInvalidEmbed = errors.New("invalid embed url")

// DefaultTwitchParent is used when the caller does not say which host the
// Twitch player will be embedded on.
const DefaultTwitchParent = "localhost"

var (
	youtubeID = regexp.MustCompile(`(?i)(?:youtube(?:-nocookie)?\.com/(?:watch\?(?:[^#]*&)?v=|embed/|shorts/|v/|live/|e/)|youtu\.be/)([A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`)

	vimeoID = regexp.MustCompile(`(?i)vimeo\.com/(?:video/|channels/[\w-]+/|groups/[\w-]+/videos/|showcase/\d+/video/|album/\d+/video/)?(\d+)(?:[^\d]|$)`)

	dailymotionID = regexp.MustCompile(`(?i)(?:dailymotion\.com/(?:embed/)?video/|dai\.ly/)([A-Za-z0-9]+)`)

	twitchVideo   = regexp.MustCompile(`(?i)twitch\.tv/(?:[\w]+/)?videos?/(\d+)`)
	twitchClip    = regexp.MustCompile(`(?i)(?:clips\.twitch\.tv/(?:embed\?clip=)?|twitch\.tv/[\w]+/clip/)([\w-]+)`)
	twitchChannel = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.|m\.)?twitch\.tv/([A-Za-z0-9_]{3,25})/?(?:[?#]|$)`)

	facebookID = regexp.MustCompile(`(?i)(?:facebook\.com/(?:[\w.-]+/videos/(?:[\w.-]+/)?|watch/?\?(?:[^#]*&)?v=|video\.php\?(?:[^#]*&)?v=|reel/)|fb\.watch/)([\w-]+)`)

	youtubeStart = regexp.MustCompile(`^(?:(\d+)h)?(?:(\d+)m)?(?:(\d+)s?)?$`)
)

// Options tune the generated embed URL.
type Options struct {
	Muted    bool
	Autoplay bool
	// Parent is the hostname that will embed a Twitch player.
	Parent string
}

// Embed is the iframe source derived from a platform URL.
type Embed struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
	URL  string `json:"url"`
}

// ExtractID pulls the platform-specific video identifier out of rawURL.
// For Twitch the ID is the numeric video ID, the clip slug or the channel
// name, in that order of preference.
func ExtractID(kind Kind, rawURL string) (string, error) {
	s := strings.TrimSpace(rawURL)
	var m []string
	switch kind {
	case KindYouTube:
		m = youtubeID.FindStringSubmatch(s)
	case KindVimeo:
		m = vimeoID.FindStringSubmatch(s)
	case KindDailymotion:
		m = dailymotionID.FindStringSubmatch(s)
	case KindTwitch:
		_, id, ok := twitchTarget(s)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrInvalidEmbed, kind)
		}
		return id, nil
	case KindFacebook:
		m = facebookID.FindStringSubmatch(s)
	default:
		return "", fmt.Errorf("%w: %s is not an embeddable platform", ErrInvalidEmbed, kind)
	}
	if len(m) < 2 || m[1] == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidEmbed, kind)
	}
	return m[1], nil
}

// twitchTarget returns the player query parameter ("video", "clip" or
// "channel") and the matching identifier.
func twitchTarget(s string) (param, id string, ok bool) {
	if m := twitchVideo.FindStringSubmatch(s); len(m) == 2 {
		return "video", m[1], true
	}
	if m := twitchClip.FindStringSubmatch(s); len(m) == 2 {
		return "clip", m[1], true
	}
	if m := twitchChannel.FindStringSubmatch(s); len(m) == 2 {
		switch strings.ToLower(m[1]) {
		case "videos", "directory", "downloads", "jobs", "p", "settings", "search":
			return "", "", false
		}
		return "channel", m[1], true
	}
	return "", "", false
}

// EmbedURL builds the iframe source for a platform URL. Autoplay is off
// unless requested and the mute state is always passed through.
func EmbedURL(rawURL string, opts Options) (Embed, error) {
	s := strings.TrimSpace(rawURL)
	kind := Detect(s)
	if !kind.IsEmbed() {
		return Embed{}, fmt.Errorf("%w: %s is not an embeddable platform", ErrInvalidEmbed, kind)
	}

	id, err := ExtractID(kind, s)
	if err != nil {
		return Embed{Kind: kind}, err
	}

	q := url.Values{}
	q.Set("autoplay", flag(opts.Autoplay))

	var src string
	switch kind {
	case KindYouTube:
		q.Set("mute", flag(opts.Muted))
		q.Set("rel", "0")
		q.Set("modestbranding", "1")
		q.Set("playsinline", "1")
		if start := youtubeStartSeconds(s); start > 0 {
			q.Set("start", strconv.Itoa(start))
		}
		src = "https://www.youtube-nocookie.com/embed/" + id + "?" + q.Encode()

	case KindVimeo:
		q.Set("muted", flag(opts.Muted))
		q.Set("dnt", "1")
		src = "https://player.vimeo.com/video/" + id + "?" + q.Encode()

	case KindDailymotion:
		q.Set("mute", flag(opts.Muted))
		q.Set("queue-enable", "false")
		src = "https://www.dailymotion.com/embed/video/" + id + "?" + q.Encode()

	case KindTwitch:
		param, _, _ := twitchTarget(s)
		parent := opts.Parent
		if parent == "" {
			parent = DefaultTwitchParent
		}
		q.Set("autoplay", strconv.FormatBool(opts.Autoplay))
		q.Set("muted", strconv.FormatBool(opts.Muted))
		q.Set("parent", parent)
		if param == "clip" {
			q.Set("clip", id)
			src = "https://clips.twitch.tv/embed?" + q.Encode()
		} else {
			if param == "video" {
				q.Set("video", "v"+id)
			} else {
				q.Set(param, id)
			}
			src = "https://player.twitch.tv/?" + q.Encode()
		}

	case KindFacebook:
		q.Set("mute", flag(opts.Muted))
		q.Set("show_text", "false")
		q.Set("href", canonicalFacebookURL(s))
		src = "https://www.facebook.com/plugins/video.php?" + q.Encode()
	}

	return Embed{Kind: kind, ID: id, URL: src}, nil
}

// canonicalFacebookURL makes sure the href passed to the video plugin is
// absolute, since share links are often pasted without a scheme.
func canonicalFacebookURL(s string) string {
	if !strings.HasPrefix(strings.ToLower(s), "http") {
		return "https://" + s
	}
	return s
}

// youtubeStartSeconds reads a "t" or "start" query parameter in seconds or
// in the 1h2m3s form.
func youtubeStartSeconds(s string) int {
	u, err := url.Parse(s)
	if err != nil {
		return 0
	}
	v := u.Query().Get("t")
	if v == "" {
		v = u.Query().Get("start")
	}
	if v == "" {
		return 0
	}
	m := youtubeStart.FindStringSubmatch(v)
	if m == nil {
		return 0
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	secs, _ := strconv.Atoi(m[3])
	return h*3600 + mins*60 + secs
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
