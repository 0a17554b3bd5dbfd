package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyAPIBase  = "https://api.spotify.com/v1"
)

// SpotifyClient talks to the Spotify Web API using the client credentials
// flow. The bearer token is cached until shortly before it expires.
type SpotifyClient struct {
	client       *Client
	clientID     string
	clientSecret string

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewSpotifyClient creates a client with the given application credentials.
func NewSpotifyClient(client *Client, clientID, clientSecret string) *SpotifyClient {
	return &SpotifyClient{client: client, clientID: clientID, clientSecret: clientSecret}
}

type spotifyTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type spotifyEpisodePage struct {
	Items []spotifyEpisode `json:"items"`
	Next  string           `json:"next"`
}

type spotifyEpisode struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	ReleaseDate  string `json:"release_date"`
	DurationMS   int    `json:"duration_ms"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

// accessToken returns a valid bearer token, requesting a new one when the
// cached token is gone or about to expire.
func (s *SpotifyClient) accessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.expires) {
		return s.token, nil
	}
	if s.clientID == "" || s.clientSecret == "" {
		return "", fmt.Errorf("spotify credentials not configured")
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", s.clientID)
	form.Set("client_secret", s.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, spotifyTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.HTTP().Do(req)
	if err != nil {
		return "", fmt.Errorf("spotify token request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("spotify token request: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}
	var token spotifyTokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("parse token response: %w", err)
	}

	s.token = token.AccessToken
	s.expires = time.Now().Add(time.Duration(token.ExpiresIn-60) * time.Second)
	return s.token, nil
}

// FetchEpisodes lists every episode of a show, following pagination.
func (s *SpotifyClient) FetchEpisodes(ctx context.Context, showID string) (*Snapshot, error) {
	if showID == "" {
		return nil, fmt.Errorf("spotify show id not configured")
	}
	token, err := s.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var episodes []Episode
	next := fmt.Sprintf("%s/shows/%s/episodes?limit=50", spotifyAPIBase, showID)
	for next != "" {
		page, err := s.fetchPage(ctx, next, token)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			episode := Episode{
				ID:              item.ID,
				Title:           item.Name,
				Description:     item.Description,
				Link:            item.ExternalURLs.Spotify,
				DurationSeconds: item.DurationMS / 1000,
			}
			if released, err := time.Parse("2006-01-02", item.ReleaseDate); err == nil {
				episode.Published = &released
			}
			if len(item.Images) > 0 {
				episode.Thumbnail = item.Images[0].URL
			}
			episodes = append(episodes, episode)
		}
		next = page.Next
	}

	return &Snapshot{
		Type:      "podcast",
		Source:    "spotify",
		Count:     len(episodes),
		Items:     episodes,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// SpotifyShowFetcher binds the client to a single show so callers that
// expect a parameterless Fetch can use it.
type SpotifyShowFetcher struct {
	client *SpotifyClient
	showID string
}

// ShowFetcher returns a fetcher for the given show.
func (s *SpotifyClient) ShowFetcher(showID string) *SpotifyShowFetcher {
	return &SpotifyShowFetcher{client: s, showID: showID}
}

// Fetch lists the show's episodes.
func (f *SpotifyShowFetcher) Fetch(ctx context.Context) (*Snapshot, error) {
	return f.client.FetchEpisodes(ctx, f.showID)
}

func (s *SpotifyClient) fetchPage(ctx context.Context, pageURL, token string) (*spotifyEpisodePage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build episodes request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.HTTP().Do(req)
	if err != nil {
		return nil, fmt.Errorf("spotify episodes request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spotify episodes request: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read episodes response: %w", err)
	}
	var page spotifyEpisodePage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("parse episodes response: %w", err)
	}
	return &page, nil
}
