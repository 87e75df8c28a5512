package musicapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"

// ErrVideoNotFound signals no video matched the lookup term.
var ErrVideoNotFound = errors.New("no video found")

// VideoFinder resolves a free-text term to a playable video id.
type VideoFinder interface {
	SearchVideoID(ctx context.Context, term string) (string, error)
}

// YouTubeClient implements VideoFinder against the YouTube Data API. The API
// requires a key, so the client is only constructed when one is configured.
type YouTubeClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewYouTubeClient creates a video lookup client for the YouTube Data API.
func NewYouTubeClient(apiKey string) *YouTubeClient {
	return &YouTubeClient{
		baseURL: defaultYouTubeBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

// SearchVideoID returns the id of the best matching video for the term.
func (c *YouTubeClient) SearchVideoID(ctx context.Context, term string) (string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", ErrVideoNotFound
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", term)
	params.Set("type", "video")
	params.Set("maxResults", "1")
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create video request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send video request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("youtube search failed: %s - %s", resp.Status, string(body))
	}

	var decoded youtubeSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode video response: %w", err)
	}

	if len(decoded.Items) == 0 || decoded.Items[0].ID.VideoID == "" {
		return "", ErrVideoNotFound
	}
	return decoded.Items[0].ID.VideoID, nil
}
