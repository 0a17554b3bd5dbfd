package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const maxNewsletterItems = 20

// NewsletterFetcher pulls recent issues from the mailing list RSS feed.
type NewsletterFetcher struct {
	client *Client
	feed   string
}

// NewNewsletterFetcher creates a fetcher for the given feed URL.
func NewNewsletterFetcher(client *Client, feedURL string) *NewsletterFetcher {
	return &NewsletterFetcher{client: client, feed: feedURL}
}

// Fetch downloads and parses the feed, keeping the newest issues.
func (f *NewsletterFetcher) Fetch(ctx context.Context) (*Snapshot, error) {
	if f.feed == "" {
		return nil, fmt.Errorf("newsletter feed url not configured")
	}

	body, err := f.client.Get(ctx, f.feed)
	if err != nil {
		return nil, err
	}
	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse newsletter feed: %w", err)
	}

	items := feed.Items
	if len(items) > maxNewsletterItems {
		items = items[:maxNewsletterItems]
	}
	issues := make([]NewsletterItem, 0, len(items))
	for _, item := range items {
		issues = append(issues, NewsletterItem{
			Title:     item.Title,
			URL:       item.Link,
			Published: item.PublishedParsed,
			Summary:   item.Description,
			Image:     itemImage(item),
		})
	}

	source := feed.Title
	if source == "" {
		source = "Newsletter"
	}
	return &Snapshot{
		Type:      "newsletter",
		Source:    source,
		Count:     len(issues),
		Items:     issues,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// itemImage looks for an image in the media:thumbnail extension, then in
// image enclosures, then the item image element.
func itemImage(item *gofeed.Item) string {
	if media, ok := item.Extensions["media"]; ok {
		if thumbs, ok := media["thumbnail"]; ok && len(thumbs) > 0 {
			if url := thumbs[0].Attrs["url"]; url != "" {
				return url
			}
		}
	}
	for _, enclosure := range item.Enclosures {
		if strings.HasPrefix(enclosure.Type, "image") {
			return enclosure.URL
		}
	}
	if item.Image != nil {
		return item.Image.URL
	}
	return ""
}
