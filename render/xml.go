// Package render turns an aggregated item list into the served documents.
// Renderers are pure: no I/O, no shared state.
package render

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/scipunch/finfeed/feed"
)

const (
	// FeedTitle names the combined feed in both output formats.
	FeedTitle = "Financial News Aggregator"

	maxDescriptionLen = 500
)

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	Source      string `xml:"source"`
	Category    string `xml:"category,omitempty"`
	GUID        string `xml:"guid"`
}

// XML renders the aggregated feed as an RSS 2.0 document. Free-text fields
// are escaped by the XML marshaler; descriptions are truncated to 500
// characters before escaping; an absent publish date falls back to the
// document's generation time. The channel description is derived from the
// configured source names so it never drifts from the actual registry.
func XML(aggregated feed.Aggregated, sources []feed.Source) (string, error) {
	generatedAt := aggregated.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	items := make([]rssItem, 0, len(aggregated.Items))
	for _, item := range aggregated.Items {
		pubDate := item.Published
		if pubDate.IsZero() {
			pubDate = generatedAt
		}
		items = append(items, rssItem{
			Title:       item.Title,
			Link:        item.Link,
			Description: truncate(item.Description, maxDescriptionLen),
			PubDate:     pubDate.Format(time.RFC1123Z),
			Source:      item.SourceName,
			Category:    item.Category,
			GUID:        item.GUID,
		})
	}

	document := rssDocument{
		Version: "2.0",
		Channel: rssChannel{
			Title:         FeedTitle,
			Link:          "/rss",
			Description:   ChannelDescription(sources),
			Language:      "en-us",
			LastBuildDate: generatedAt.Format(time.RFC1123Z),
			Items:         items,
		},
	}

	blob, err := xml.MarshalIndent(document, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal feed document with %w", err)
	}

	return xml.Header + string(blob), nil
}

// ChannelDescription describes the combined feed in terms of its configured
// sources.
func ChannelDescription(sources []feed.Source) string {
	names := feed.Names(sources)
	if len(names) == 0 {
		return "Aggregated news feed"
	}
	return "Aggregated news from " + strings.Join(names, ", ")
}

// truncate cuts s to at most maxLen characters and marks the cut with an
// ellipsis. It counts runes so a multi-byte character is never split.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
