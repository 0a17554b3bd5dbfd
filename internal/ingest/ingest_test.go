package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const podcastFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
  <channel>
    <title>Know Your Bible</title>
    <item>
      <title>Episode One</title>
      <description>Intro to the series</description>
      <link>https://open.spotify.com/episode/abc123XYZ</link>
      <guid>https://anchor.fm/s/feed/episodes/ep-one-xyz</guid>
      <pubDate>Sun, 02 Jun 2024 12:00:00 +0000</pubDate>
      <itunes:duration>1:02:30</itunes:duration>
    </item>
    <item>
      <title>Episode Two</title>
      <link>https://anchor.fm/cpc/episodes/ep-two</link>
      <pubDate>Sun, 09 Jun 2024 12:00:00 +0000</pubDate>
      <itunes:duration>45:10</itunes:duration>
    </item>
  </channel>
</rss>`

const newsletterFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
  <channel>
    <title>CPC Newsletter</title>
    <item>
      <title>June Update</title>
      <link>https://example.org/june</link>
      <pubDate>Mon, 03 Jun 2024 09:00:00 +0000</pubDate>
      <description>What happened in June</description>
      <media:thumbnail url="https://example.org/june.jpg"/>
    </item>
    <item>
      <title>May Update</title>
      <link>https://example.org/may</link>
      <enclosure url="https://example.org/may.png" type="image/png" length="1"/>
    </item>
  </channel>
</rss>`

const youtubeFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>CPC New Haven</title>
  <entry>
    <title>Sunday Service</title>
    <link rel="alternate" href="https://www.youtube.com/watch?v=dQw4w9WgXcQ"/>
    <published>2024-06-02T15:00:00+00:00</published>
  </entry>
</feed>`

const calendarICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//EN
BEGIN:VEVENT
UID:evt-2@example.org
DTSTART:20240615T180000Z
DTEND:20240615T200000Z
SUMMARY:Community Dinner
LOCATION:Fellowship Hall
END:VEVENT
BEGIN:VEVENT
UID:evt-1@example.org
DTSTART:20240608T140000Z
DTEND:20240608T160000Z
SUMMARY:Youth Group
END:VEVENT
END:VCALENDAR`

func feedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestPodcastFetcher(t *testing.T) {
	server := feedServer(t, podcastFeedXML)
	fetcher := NewPodcastFetcher(NewClient(5*time.Second), server.URL)

	snapshot, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "podcast", snapshot.Type)
	assert.Equal(t, "Know Your Bible", snapshot.Source)
	assert.Equal(t, 2, snapshot.Count)

	episodes := snapshot.Items.([]Episode)
	assert.Equal(t, "ep-one-xyz", episodes[0].ID)
	assert.Equal(t, 3750, episodes[0].DurationSeconds)
	assert.Equal(t, "ep-two", episodes[1].ID)
	assert.Equal(t, 2710, episodes[1].DurationSeconds)
}

func TestParseITunesDuration(t *testing.T) {
	assert.Equal(t, 3750, parseITunesDuration("1:02:30"))
	assert.Equal(t, 2710, parseITunesDuration("45:10"))
	assert.Equal(t, 90, parseITunesDuration("90"))
	assert.Equal(t, 0, parseITunesDuration(""))
	assert.Equal(t, 0, parseITunesDuration("bad:value"))
}

func TestNewsletterFetcher(t *testing.T) {
	server := feedServer(t, newsletterFeedXML)
	fetcher := NewNewsletterFetcher(NewClient(5*time.Second), server.URL)

	snapshot, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "newsletter", snapshot.Type)
	assert.Equal(t, "CPC Newsletter", snapshot.Source)

	items := snapshot.Items.([]NewsletterItem)
	require.Len(t, items, 2)
	assert.Equal(t, "https://example.org/june.jpg", items[0].Image)
	assert.Equal(t, "https://example.org/may.png", items[1].Image)
}

func TestYouTubeFetcher(t *testing.T) {
	server := feedServer(t, youtubeFeedXML)
	fetcher := &YouTubeFetcher{client: NewClient(5 * time.Second), channelID: "UCtest"}
	fetcher.client.http.Transport = rewriteTransport{target: server.URL}

	snapshot, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "youtube", snapshot.Type)

	videos := snapshot.Items.([]Video)
	require.Len(t, videos, 1)
	assert.Equal(t, "dQw4w9WgXcQ", videos[0].VideoID)
	assert.Equal(t, "https://img.youtube.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", videos[0].Thumbnail)
}

func TestCalendarFetcher(t *testing.T) {
	server := feedServer(t, calendarICS)
	fetcher := NewCalendarFetcher(NewClient(5*time.Second), server.URL)

	snapshot, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "events", snapshot.Type)

	events := snapshot.Items.([]CalendarEvent)
	require.Len(t, events, 2)
	assert.Equal(t, "Youth Group", events[0].Title)
	assert.Equal(t, "Community Dinner", events[1].Title)
	assert.Equal(t, "Fellowship Hall", events[1].Location)
}

func TestFetcherNotConfigured(t *testing.T) {
	client := NewClient(time.Second)
	_, err := NewPodcastFetcher(client, "").Fetch(context.Background())
	assert.Error(t, err)
	_, err = NewNewsletterFetcher(client, "").Fetch(context.Background())
	assert.Error(t, err)
	_, err = NewYouTubeFetcher(client, "").Fetch(context.Background())
	assert.Error(t, err)
	_, err = NewCalendarFetcher(client, "").Fetch(context.Background())
	assert.Error(t, err)
}

// rewriteTransport sends every request to the test server regardless of the
// URL the fetcher built.
type rewriteTransport struct {
	target string
}

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rewritten, err := http.NewRequest(req.Method, t.target, nil)
	if err != nil {
		return nil, err
	}
	rewritten.Header = req.Header
	return http.DefaultTransport.RoundTrip(rewritten)
}
