package ingest

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/mmcdole/gofeed"
)

const maxVideos = 20

var videoIDPattern = regexp.MustCompile(`v=([^&]+)`)

// YouTubeFetcher pulls recent uploads from a channel's RSS feed. The feed
// needs no API key, only the channel id.
type YouTubeFetcher struct {
	client    *Client
	channelID string
}

// NewYouTubeFetcher creates a fetcher for the given channel.
func NewYouTubeFetcher(client *Client, channelID string) *YouTubeFetcher {
	return &YouTubeFetcher{client: client, channelID: channelID}
}

// Fetch downloads and parses the channel feed.
func (f *YouTubeFetcher) Fetch(ctx context.Context) (*Snapshot, error) {
	if f.channelID == "" {
		return nil, fmt.Errorf("youtube channel id not configured")
	}

	feedURL := fmt.Sprintf("https://www.youtube.com/feeds/videos.xml?channel_id=%s", f.channelID)
	body, err := f.client.Get(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse youtube feed: %w", err)
	}

	items := feed.Items
	if len(items) > maxVideos {
		items = items[:maxVideos]
	}
	videos := make([]Video, 0, len(items))
	for _, item := range items {
		video := Video{
			Title:       item.Title,
			URL:         item.Link,
			Published:   item.PublishedParsed,
			Description: item.Description,
		}
		if match := videoIDPattern.FindStringSubmatch(item.Link); match != nil {
			video.VideoID = match[1]
			video.Thumbnail = fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", match[1])
		}
		videos = append(videos, video)
	}

	source := feed.Title
	if source == "" {
		source = "YouTube Channel"
	}
	return &Snapshot{
		Type:      "youtube",
		Source:    source,
		Count:     len(videos),
		Items:     videos,
		FetchedAt: time.Now().UTC(),
	}, nil
}
