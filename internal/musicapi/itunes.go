package musicapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const defaultITunesBaseURL = "https://itunes.apple.com"

// ITunesClient implements Client against the iTunes Search API. The API is
// unauthenticated; results are capped at 100 per query.
type ITunesClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewITunesClient creates a catalog client for the iTunes Search API.
func NewITunesClient() *ITunesClient {
	return &ITunesClient{
		baseURL: defaultITunesBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// iTunes API response structures
type itunesSearchResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     []itunesResult `json:"results"`
}

type itunesResult struct {
	TrackID          int64  `json:"trackId"`
	CollectionID     int64  `json:"collectionId"`
	TrackName        string `json:"trackName"`
	ArtistName       string `json:"artistName"`
	CollectionName   string `json:"collectionName"`
	ArtworkURL100    string `json:"artworkUrl100"`
	ReleaseDate      string `json:"releaseDate"`
	PrimaryGenreName string `json:"primaryGenreName"`
}

// SearchTracks queries the catalog for music tracks matching term. The API's
// attribute matching is loose, so results are post-filtered against the term
// when a search type is given.
func (c *ITunesClient) SearchTracks(ctx context.Context, term string, searchType SearchType) ([]Track, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("term", term)
	params.Set("media", "music")
	params.Set("limit", "100")
	switch searchType {
	case SearchSong:
		params.Set("attribute", "songTerm")
	case SearchArtist:
		params.Set("attribute", "artistTerm")
	}

	var resp itunesSearchResponse
	if err := c.get(ctx, "/search", params, &resp); err != nil {
		return nil, err
	}

	lowerTerm := strings.ToLower(term)
	var tracks []Track
	for _, r := range resp.Results {
		if r.TrackID == 0 {
			continue
		}
		switch searchType {
		case SearchSong:
			if !strings.Contains(strings.ToLower(r.TrackName), lowerTerm) {
				continue
			}
		case SearchArtist:
			if !strings.Contains(strings.ToLower(r.ArtistName), lowerTerm) {
				continue
			}
		}
		tracks = append(tracks, Track{
			TrackID:     r.TrackID,
			Title:       r.TrackName,
			Artist:      r.ArtistName,
			Album:       r.CollectionName,
			ArtworkURL:  r.ArtworkURL100,
			ReleaseDate: r.ReleaseDate,
			Genre:       r.PrimaryGenreName,
		})
	}
	return tracks, nil
}

// ArtistAlbums returns up to ten of the artist's albums, newest first. The
// search endpoint has no reliable server-side sort, so ordering happens here.
func (c *ITunesClient) ArtistAlbums(ctx context.Context, artistName string) ([]Album, error) {
	artistName = strings.TrimSpace(artistName)
	if artistName == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("term", artistName)
	params.Set("entity", "album")
	params.Set("limit", "10")

	var resp itunesSearchResponse
	if err := c.get(ctx, "/search", params, &resp); err != nil {
		return nil, err
	}

	var albums []Album
	for _, r := range resp.Results {
		if r.CollectionID == 0 {
			continue
		}
		albums = append(albums, Album{
			CollectionID: r.CollectionID,
			Title:        r.CollectionName,
			Artist:       r.ArtistName,
			ArtworkURL:   r.ArtworkURL100,
			ReleaseDate:  r.ReleaseDate,
			Genre:        r.PrimaryGenreName,
		})
	}

	sort.SliceStable(albums, func(i, j int) bool {
		return albums[i].ReleaseDate > albums[j].ReleaseDate
	})

	return albums, nil
}

func (c *ITunesClient) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("itunes search failed: %s - %s", resp.Status, string(body))
	}

	// The API may answer with text/javascript; decode the body regardless of
	// the declared content type.
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode search response: %w", err)
	}
	return nil
}
