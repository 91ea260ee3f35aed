package feed

import "time"

// Source is a configured upstream feed. Sources are defined at startup and
// never mutated; Name is their identity.
type Source struct {
	Name     string
	URL      string
	Category string
}

// Item is a single news entry after normalization. An absent publish date is
// represented by the zero time.
type Item struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Published   time.Time `json:"pubDate"`
	Description string    `json:"description"`
	SourceName  string    `json:"source"`
	Category    string    `json:"category"`
	GUID        string    `json:"guid"`
}

// Aggregated is the merged, deduplicated, newest-first feed produced by one
// aggregation run.
type Aggregated struct {
	Items       []Item
	GeneratedAt time.Time
}

// Names returns the source names in registry order.
func Names(sources []Source) []string {
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name)
	}
	return names
}
