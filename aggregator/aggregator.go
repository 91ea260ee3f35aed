// Package aggregator runs the fetch-merge-dedupe-sort cycle over every
// configured source and produces one combined feed.
package aggregator

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/scipunch/finfeed/feed"
	"github.com/scipunch/finfeed/filter"
)

// MaxItems caps the combined feed length.
const MaxItems = 100

// Fetcher retrieves and normalizes one source's items.
type Fetcher interface {
	Fetch(ctx context.Context, source feed.Source) ([]feed.Item, error)
}

// Aggregator merges all configured sources into a single deduplicated,
// newest-first feed.
type Aggregator struct {
	sources []feed.Source
	fetcher Fetcher
	filters *filter.Pipeline
	log     *zap.SugaredLogger
	now     func() time.Time
}

// New creates an aggregator over the given source registry. filters may be
// nil when nothing is configured.
func New(sources []feed.Source, fetcher Fetcher, filters *filter.Pipeline, log *zap.SugaredLogger) *Aggregator {
	return &Aggregator{
		sources: sources,
		fetcher: fetcher,
		filters: filters,
		log:     log,
		now:     time.Now,
	}
}

// Sources returns the configured source registry.
func (a *Aggregator) Sources() []feed.Source {
	return a.sources
}

// Aggregate fetches every source concurrently, waits for all of them to
// settle, and merges the successful results. A failing source is logged and
// contributes nothing; Aggregate itself never fails, so all sources failing
// yields an empty feed rather than an error.
func (a *Aggregator) Aggregate(ctx context.Context) feed.Aggregated {
	// One result slot per source keeps the concatenation in registry order,
	// which makes the sort tie-break deterministic.
	results := make([][]feed.Item, len(a.sources))

	var wg sync.WaitGroup
	for i, source := range a.sources {
		wg.Add(1)
		go func(i int, source feed.Source) {
			defer wg.Done()
			items, err := a.fetcher.Fetch(ctx, source)
			if err != nil {
				a.log.Warnw("source fetch failed", "source", source.Name, "error", err)
				return
			}
			results[i] = items
		}(i, source)
	}
	wg.Wait()

	var merged []feed.Item
	for _, items := range results {
		for _, item := range items {
			if a.filters != nil {
				if include, reason := a.filters.ShouldInclude(item); !include {
					a.log.Debugw("item filtered out", "title", item.Title, "reason", reason)
					continue
				}
			}
			merged = append(merged, item)
		}
	}

	items := Dedup(SortByRecency(merged))
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}
	a.log.Infow("aggregation finished", "sources", len(a.sources), "items", len(items))

	return feed.Aggregated{Items: items, GeneratedAt: a.now()}
}

// SortByRecency orders items newest-first. The zero publish time sorts last.
// The sort is stable, so items keep their source-registry order on ties.
func SortByRecency(items []feed.Item) []feed.Item {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Published.After(items[j].Published)
	})
	return items
}

// Dedup walks a newest-first sequence and keeps the first occurrence of each
// normalized title key, so the surviving copy of a syndicated headline is
// always the most recent one.
func Dedup(items []feed.Item) []feed.Item {
	seen := make(map[string]struct{}, len(items))
	deduped := make([]feed.Item, 0, len(items))
	for _, item := range items {
		key := TitleKey(item.Title)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, item)
	}
	return deduped
}

// TitleKey computes the dedup identity of a headline: lower-cased with every
// character that is not a letter, digit, or whitespace removed. Exact-URL
// dedup would miss syndicated copies, so near-duplicate headlines collapse on
// this key instead.
func TitleKey(title string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r):
			return unicode.ToLower(r)
		default:
			return -1
		}
	}, title)
}
