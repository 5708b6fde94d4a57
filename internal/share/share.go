// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package share produces the text, social links and QR code used to send a
// greeting to its receiver.
package share

import (
	"fmt"
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"greetcards/internal/catalog"
	"greetcards/internal/models"
)

// QR code size bounds in pixels.
const (
	DefaultQRSize = 256
	MinQRSize     = 128
	MaxQRSize     = 1024
)

// Link is one share target.
type Link struct {
	Network string `json:"network"`
	Label   string `json:"label"`
	URL     string `json:"url"`
}

// Share bundles everything the share dialog shows.
type Share struct {
	URL   string `json:"url"`
	Text  string `json:"text"`
	Links []Link `json:"links"`
}

// Build returns the share text and links for g at pageURL.
func Build(g *models.Greeting, pageURL string, cat *catalog.Catalog) Share {
	text := Text(g, cat)
	return Share{URL: pageURL, Text: text, Links: Links(text, pageURL)}
}

// Text fills the event's pre-written template with the sender and receiver
// names. Missing names fall back to neutral words.
func Text(g *models.Greeting, cat *catalog.Catalog) string {
	tmpl := "✨ {sender} made a card for {receiver}:"
	if e, ok := cat.Event(g.EventType); ok && e.ShareText != "" {
		tmpl = e.ShareText
	}

	sender := strings.TrimSpace(g.SenderName)
	if sender == "" {
		sender = "Someone"
	}
	receiver := strings.TrimSpace(g.ReceiverName)
	if receiver == "" {
		receiver = "you"
	}

	text := strings.NewReplacer("{sender}", sender, "{receiver}", receiver).Replace(tmpl)
	if g.EventType == models.EventCustom && g.EventName != "" {
		text = fmt.Sprintf("%s (%s)", strings.TrimSuffix(text, ":"), g.EventName) + ":"
	}
	return text
}

// Links returns the share URLs for every supported network, in the order
// the share dialog lists them.
func Links(text, pageURL string) []Link {
	msg := text + " " + pageURL
	return []Link{
		{Network: "whatsapp", Label: "WhatsApp", URL: "https://wa.me/?text=" + url.QueryEscape(msg)},
		{Network: "twitter", Label: "X (Twitter)", URL: "https://twitter.com/intent/tweet?" + url.Values{
			"text": {text}, "url": {pageURL},
		}.Encode()},
		{Network: "facebook", Label: "Facebook", URL: "https://www.facebook.com/sharer/sharer.php?u=" + url.QueryEscape(pageURL)},
		{Network: "telegram", Label: "Telegram", URL: "https://t.me/share/url?" + url.Values{
			"text": {text}, "url": {pageURL},
		}.Encode()},
		{Network: "email", Label: "Email", URL: "mailto:?" + mailQuery(text, msg)},
		{Network: "copy", Label: "Copy link", URL: pageURL},
	}
}

// mailQuery encodes subject and body with %20 for spaces, which mail
// clients expect instead of "+".
func mailQuery(subject, body string) string {
	esc := func(s string) string { return strings.ReplaceAll(url.QueryEscape(s), "+", "%20") }
	return "subject=" + esc(subject) + "&body=" + esc(body)
}

// ClampQRSize keeps a requested QR size within bounds; zero means default.
func ClampQRSize(size int) int {
	switch {
	case size == 0:
		return DefaultQRSize
	case size < MinQRSize:
		return MinQRSize
	case size > MaxQRSize:
		return MaxQRSize
	}
	return size
}

// QRCode renders pageURL as a PNG QR code.
func QRCode(pageURL string, size int) ([]byte, error) {
	png, err := qrcode.Encode(pageURL, qrcode.Medium, ClampQRSize(size))
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
