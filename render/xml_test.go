package render

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/scipunch/finfeed/feed"
)

var testSources = []feed.Source{
	{Name: "CNBC Finance", URL: "https://cnbc.example.com/rss", Category: "markets"},
	{Name: "MarketWatch", URL: "https://mw.example.com/rss", Category: "markets"},
}

func TestXML_EscapesMarkupCharacters(t *testing.T) {
	aggregated := feed.Aggregated{
		Items: []feed.Item{{
			Title:      `Fed "Cuts" R&D <fast>`,
			Link:       "https://cnbc.example.com/fed",
			GUID:       "https://cnbc.example.com/fed",
			SourceName: "CNBC Finance",
			Published:  time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		}},
		GeneratedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	document, err := XML(aggregated, testSources)
	if err != nil {
		t.Fatalf("XML failed: %v", err)
	}

	for _, escaped := range []string{"&#34;Cuts&#34;", "R&amp;D", "&lt;fast&gt;"} {
		if !strings.Contains(document, escaped) {
			t.Errorf("expected escaped form %q in output", escaped)
		}
	}
	for _, raw := range []string{`"Cuts"`, "R&D", "<fast>"} {
		if strings.Contains(document, raw) {
			t.Errorf("raw markup %q leaked into output", raw)
		}
	}
}

func TestXML_TruncatesLongDescriptions(t *testing.T) {
	long := strings.Repeat("a", 600)
	aggregated := feed.Aggregated{
		Items: []feed.Item{{
			Title:       "Long Story",
			Link:        "https://cnbc.example.com/long",
			GUID:        "https://cnbc.example.com/long",
			Description: long,
			Published:   time.Now(),
		}},
		GeneratedAt: time.Now(),
	}

	document, err := XML(aggregated, testSources)
	if err != nil {
		t.Fatalf("XML failed: %v", err)
	}

	if !strings.Contains(document, strings.Repeat("a", 500)+"...") {
		t.Error("expected description cut at 500 characters with an ellipsis")
	}
	if strings.Contains(document, strings.Repeat("a", 501)) {
		t.Error("description exceeds the 500 character cap")
	}
}

func TestXML_MissingPubDateDefaultsToGenerationTime(t *testing.T) {
	generatedAt := time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)
	aggregated := feed.Aggregated{
		Items: []feed.Item{{
			Title: "Undated Story",
			Link:  "https://cnbc.example.com/undated",
			GUID:  "https://cnbc.example.com/undated",
		}},
		GeneratedAt: generatedAt,
	}

	document, err := XML(aggregated, testSources)
	if err != nil {
		t.Fatalf("XML failed: %v", err)
	}

	want := generatedAt.Format(time.RFC1123Z)
	if !strings.Contains(document, "<pubDate>"+want+"</pubDate>") {
		t.Errorf("expected pubDate to default to %q", want)
	}
}

func TestXML_WellFormedRoundTrip(t *testing.T) {
	aggregated := feed.Aggregated{
		Items: []feed.Item{
			{Title: "First", Link: "https://a.example.com/1", GUID: "g1", SourceName: "CNBC Finance", Category: "markets", Published: time.Now()},
			{Title: "Second", Link: "https://b.example.com/2", GUID: "g2", SourceName: "MarketWatch", Published: time.Now()},
		},
		GeneratedAt: time.Now(),
	}

	document, err := XML(aggregated, testSources)
	if err != nil {
		t.Fatalf("XML failed: %v", err)
	}

	var parsed rssDocument
	if err := xml.Unmarshal([]byte(document), &parsed); err != nil {
		t.Fatalf("output is not well-formed XML: %v", err)
	}
	if parsed.Version != "2.0" {
		t.Errorf("expected rss version 2.0, got %q", parsed.Version)
	}
	if len(parsed.Channel.Items) != 2 {
		t.Errorf("expected 2 items after round-trip, got %d", len(parsed.Channel.Items))
	}
	if parsed.Channel.Items[0].GUID != "g1" {
		t.Errorf("unexpected first guid %q", parsed.Channel.Items[0].GUID)
	}
}

func TestChannelDescription_DerivedFromSources(t *testing.T) {
	got := ChannelDescription(testSources)
	want := "Aggregated news from CNBC Finance, MarketWatch"
	if got != want {
		t.Errorf("ChannelDescription = %q, want %q", got, want)
	}

	if got := ChannelDescription(nil); got != "Aggregated news feed" {
		t.Errorf("empty registry description = %q", got)
	}
}
