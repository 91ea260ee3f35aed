// Package fetcher retrieves a single remote feed and normalizes its entries.
package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/scipunch/finfeed/feed"
)

const defaultTimeout = 10 * time.Second

// Some providers reject requests carrying a default Go client identifier, so
// the fetcher presents a browser-like one.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// RSSFetcher fetches RSS/Atom feeds using gofeed
type RSSFetcher struct {
	parser *gofeed.Parser
	log    *zap.SugaredLogger
}

// NewRSSFetcher creates a fetcher with a bounded-time HTTP client
func NewRSSFetcher(timeout time.Duration, log *zap.SugaredLogger) *RSSFetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	parser.Client = &http.Client{Timeout: timeout}
	return &RSSFetcher{parser: parser, log: log}
}

// Fetch retrieves and parses the feed behind source.URL and maps every entry
// into the normalized item shape. A network, timeout, or parse failure is
// returned to the caller; the aggregator absorbs it so one broken source
// never aborts a run.
func (f *RSSFetcher) Fetch(ctx context.Context, source feed.Source) ([]feed.Item, error) {
	parsed, err := f.parser.ParseURLWithContext(source.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed of %s with %w", source.Name, err)
	}

	items := make([]feed.Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		items = append(items, convert(entry, source))
	}
	f.log.Debugw("feed fetched", "source", source.Name, "items", len(items))

	return items, nil
}

// convert maps one upstream entry to a normalized item. Missing fields fall
// back in order: publish date to the updated date, description to the raw
// content, GUID to the link.
func convert(entry *gofeed.Item, source feed.Source) feed.Item {
	item := feed.Item{
		Title:       entry.Title,
		Link:        entry.Link,
		Description: entry.Description,
		SourceName:  source.Name,
		Category:    source.Category,
		GUID:        entry.GUID,
	}

	if entry.PublishedParsed != nil {
		item.Published = *entry.PublishedParsed
	} else if entry.UpdatedParsed != nil {
		item.Published = *entry.UpdatedParsed
	}

	if item.Description == "" {
		item.Description = entry.Content
	}
	if item.GUID == "" {
		item.GUID = entry.Link
	}

	return item
}
