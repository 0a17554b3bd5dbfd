package ingest

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

var spotifyEpisodePattern = regexp.MustCompile(`episode/([a-zA-Z0-9]+)`)

// PodcastFetcher pulls podcast episodes from an RSS feed (Anchor and similar
// hosts) and normalizes them to the common episode shape.
type PodcastFetcher struct {
	client *Client
	feed   string
}

// NewPodcastFetcher creates a fetcher for the given RSS URL.
func NewPodcastFetcher(client *Client, feedURL string) *PodcastFetcher {
	return &PodcastFetcher{client: client, feed: feedURL}
}

// Fetch downloads and parses the feed.
func (f *PodcastFetcher) Fetch(ctx context.Context) (*Snapshot, error) {
	if f.feed == "" {
		return nil, fmt.Errorf("podcast feed url not configured")
	}

	body, err := f.client.Get(ctx, f.feed)
	if err != nil {
		return nil, err
	}
	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse podcast feed: %w", err)
	}

	episodes := make([]Episode, 0, len(feed.Items))
	for _, item := range feed.Items {
		episode := Episode{
			ID:          episodeID(item),
			Title:       item.Title,
			Description: item.Description,
			Link:        item.Link,
			Published:   item.PublishedParsed,
			Tags:        item.Categories,
		}
		if item.ITunesExt != nil {
			episode.DurationSeconds = parseITunesDuration(item.ITunesExt.Duration)
			if episode.Author == "" {
				episode.Author = item.ITunesExt.Author
			}
			if item.ITunesExt.Image != "" {
				episode.Thumbnail = item.ITunesExt.Image
			}
		}
		if episode.Thumbnail == "" && item.Image != nil {
			episode.Thumbnail = item.Image.URL
		}
		if episode.Author == "" && item.Author != nil {
			episode.Author = item.Author.Name
		}
		episodes = append(episodes, episode)
	}

	return &Snapshot{
		Type:      "podcast",
		Source:    feed.Title,
		Count:     len(episodes),
		Items:     episodes,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// episodeID derives a stable episode identifier. Prefers the feed GUID, then
// a Spotify or Anchor link segment, then a hash of the title.
func episodeID(item *gofeed.Item) string {
	if item.GUID != "" {
		if idx := strings.LastIndex(item.GUID, "/"); idx >= 0 {
			return item.GUID[idx+1:]
		}
		return item.GUID
	}
	if item.Link != "" {
		if strings.Contains(item.Link, "spotify.com") {
			if match := spotifyEpisodePattern.FindStringSubmatch(item.Link); match != nil {
				return match[1]
			}
		}
		if strings.Contains(item.Link, "anchor.fm") {
			parts := strings.Split(strings.TrimRight(item.Link, "/"), "/")
			return parts[len(parts)-1]
		}
	}
	sum := md5.Sum([]byte(item.Title))
	return hex.EncodeToString(sum[:])[:12]
}

// parseITunesDuration accepts HH:MM:SS, MM:SS or a bare seconds count.
func parseITunesDuration(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if !strings.Contains(raw, ":") {
		seconds, err := strconv.Atoi(raw)
		if err != nil {
			return 0
		}
		return seconds
	}
	parts := strings.Split(raw, ":")
	total := 0
	for _, part := range parts {
		unit, err := strconv.Atoi(part)
		if err != nil {
			return 0
		}
		total = total*60 + unit
	}
	return total
}
