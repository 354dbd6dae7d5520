package binding

import (
	"testing"
	"time"

	"github.com/ByLCY/inkpost/layout"
)

func TestInterpolatePaths(t *testing.T) {
	data := map[string]any{
		"user":  map[string]any{"name": "Ann", "tags": []any{"a", "b"}},
		"ratio": 0.5,
		"env":   map[string]string{"region": "eu"},
	}
	cases := map[string]string{
		"hi ${user.name}":  "hi Ann",
		"${user.tags[1]}":  "b",
		"${ ratio }":       "0.5",
		"${env.region}":    "eu",
		"${missing} stays": "${missing} stays",
		"${user.tags[9]}":  "${user.tags[9]}",
		"no placeholders":  "no placeholders",
	}
	for in, want := range cases {
		if got := Interpolate(in, data); got != want {
			t.Fatalf("Interpolate(%q) = %q, want %q", in, got, want)
		}
	}
	if got := Interpolate("${x}", nil); got != "${x}" {
		t.Fatalf("nil data must keep placeholders, got %q", got)
	}
}

func TestFactsCaption(t *testing.T) {
	doc := &layout.Document{
		Pages: []layout.Page{{Lines: make([]layout.Line, 3)}, {Lines: make([]layout.Line, 1)}},
	}
	now := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	facts := Facts(doc, "report.pdf", 2048, now)
	got := Interpolate("${document.title}: ${document.pages} pages, ${document.lines} lines, ${document.size} bytes on ${document.date}", facts)
	want := "report.pdf: 2 pages, 4 lines, 2048 bytes on 2026-03-01"
	if got != want {
		t.Fatalf("caption = %q, want %q", got, want)
	}

	doc.Meta.Title = "Quarterly"
	if got := Interpolate("${document.title}", Facts(doc, "report.pdf", 0, now)); got != "Quarterly" {
		t.Fatalf("meta title should win, got %q", got)
	}
}

func TestFactsMetaPaths(t *testing.T) {
	doc := &layout.Document{Meta: layout.DocumentMeta{Subject: "Sales", Keywords: "q1, revenue,,eu "}}
	facts := Facts(doc, "report.pdf", 1, time.Now())
	cases := map[string]string{
		"${document.keywords[0]}/${document.keywords[2]}": "q1/eu",
		"${document.keywords[3]}":                         "${document.keywords[3]}",
		"${document.meta.subject}":                        "Sales",
		"${document.meta.nope}":                           "${document.meta.nope}",
	}
	for in, want := range cases {
		if got := Interpolate(in, facts); got != want {
			t.Fatalf("Interpolate(%q) = %q, want %q", in, got, want)
		}
	}
}
