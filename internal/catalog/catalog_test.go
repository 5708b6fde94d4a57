package catalog

import (
	"testing"

	"greetcards/internal/models"
)

func TestLoadEmbedded(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	for _, et := range models.KnownEventTypes() {
		e, ok := c.Event(et)
		if !ok {
			t.Errorf("event %q missing from catalog", et)
			continue
		}
		if e.Label == "" || e.Emoji == "" || e.ShareText == "" {
			t.Errorf("event %q is incomplete: %+v", et, e)
		}
	}
	if len(c.AnimationPresets) == 0 || len(c.FrameStyles) == 0 || len(c.BorderStyles) == 0 || len(c.EmojiPacks) == 0 {
		t.Error("catalog lists are empty")
	}
	if MustLoad() != c {
		t.Error("Load must parse once")
	}
}

func TestEventTheme(t *testing.T) {
	c := MustLoad()
	if got := c.EventTheme(models.EventBirthday).Name; got != "confetti" {
		t.Errorf("birthday theme = %q", got)
	}
	if got := c.EventTheme("unknown").Name; got != "default" {
		t.Errorf("unknown event theme = %q", got)
	}
	if _, ok := c.Theme("WINTER"); !ok {
		t.Error("theme lookup must ignore case")
	}
	if c.IsKnownEvent("party") {
		t.Error("party is not a catalog event")
	}
}

func TestParseRejectsBadData(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"syntax", "events: [\n"},
		{"unknown event", "themes: [{name: default}]\nevents: [{type: party, theme: default}]"},
		{"unknown theme", "themes: [{name: default}]\nevents: [{type: birthday, theme: neon}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
