package musicapi

import "context"

// Track is a candidate record returned by the catalog search provider. The
// rest of the system only relies on TrackID as the stable key; everything
// else is display metadata.
type Track struct {
	TrackID     int64  `json:"trackId"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Album       string `json:"album,omitempty"`
	ArtworkURL  string `json:"artworkUrl,omitempty"`
	ReleaseDate string `json:"releaseDate,omitempty"`
	Genre       string `json:"genre,omitempty"`
}

// Album is a candidate album record from the catalog.
type Album struct {
	CollectionID int64  `json:"collectionId"`
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	ArtworkURL   string `json:"artworkUrl,omitempty"`
	ReleaseDate  string `json:"releaseDate,omitempty"`
	Genre        string `json:"genre,omitempty"`
}

// SearchType narrows a catalog search to song titles or artist names.
type SearchType string

const (
	SearchAny    SearchType = ""
	SearchSong   SearchType = "song"
	SearchArtist SearchType = "artist"
)

// Client defines the catalog search provider interface.
type Client interface {
	// SearchTracks searches the catalog for tracks matching term.
	SearchTracks(ctx context.Context, term string, searchType SearchType) ([]Track, error)

	// ArtistAlbums returns an artist's albums, newest first.
	ArtistAlbums(ctx context.Context, artistName string) ([]Album, error)
}
