package render

import (
	"time"

	"github.com/scipunch/finfeed/feed"
)

// JSONFeed is the structured form of the combined feed. Items pass through
// unescaped because consumers read them as data, not markup.
type JSONFeed struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Items       []feed.Item `json:"items"`
	LastUpdated time.Time   `json:"lastUpdated"`
	Sources     []string    `json:"sources"`
}

// JSON renders the aggregated feed for the JSON endpoint.
func JSON(aggregated feed.Aggregated, sources []feed.Source) JSONFeed {
	items := aggregated.Items
	if items == nil {
		items = []feed.Item{}
	}
	return JSONFeed{
		Title:       FeedTitle,
		Description: ChannelDescription(sources),
		Items:       items,
		LastUpdated: aggregated.GeneratedAt,
		Sources:     feed.Names(sources),
	}
}
