package spotify

// Image is one rendition of an artist/album image. The provider returns
// renditions ordered largest first.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// ImageAt returns the URL at position i, or nil when the provider returned
// fewer renditions than expected.
func ImageAt(images []Image, i int) *string {
	if i < 0 || i >= len(images) {
		return nil
	}
	if images[i].URL == "" {
		return nil
	}
	url := images[i].URL
	return &url
}

// ArtistRef is the compact artist object embedded in albums and tracks.
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Artist is the provider's full artist representation.
type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Popularity int      `json:"popularity"`
	Genres     []string `json:"genres"`
	Images     []Image  `json:"images"`
}

// Album is the provider's album representation. Tracks is only populated
// on full album fetches; the album summary embedded in a track omits it.
type Album struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	AlbumType   string      `json:"album_type"`
	TotalTracks int         `json:"total_tracks"`
	ReleaseDate string      `json:"release_date"`
	Popularity  int         `json:"popularity"`
	Images      []Image     `json:"images"`
	Artists     []ArtistRef `json:"artists"`
	Tracks      TrackPage   `json:"tracks"`
}

// TrackPage is the provider's paginated track listing inside an album.
type TrackPage struct {
	Total int     `json:"total"`
	Items []Track `json:"items"`
}

// Track is the provider's track representation. Album is the embedded
// parent album summary; it is always present on direct track fetches and
// absent on tracks listed inside an album payload.
type Track struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	DiscNumber  int         `json:"disc_number"`
	TrackNumber int         `json:"track_number"`
	DurationMS  int         `json:"duration_ms"`
	Explicit    bool        `json:"explicit"`
	IsPlayable  bool        `json:"is_playable"`
	Album       *Album      `json:"album"`
	Artists     []ArtistRef `json:"artists"`
}

// Item is the tagged result of resolving an id that may name an album or a
// track. Exactly one of Album/Track is set; a track item also carries its
// parent album under Track.Album.
type Item struct {
	Album *Album
	Track *Track
}

// User is the provider's user profile, fetched with a delegated token.
type User struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Email       string  `json:"email"`
	Country     string  `json:"country"`
	Product     string  `json:"product"`
	Images      []Image `json:"images"`
}

type artistPage struct {
	Total int      `json:"total"`
	Items []Artist `json:"items"`
}

type albumPage struct {
	Total int     `json:"total"`
	Items []Album `json:"items"`
}

type trackSearchPage struct {
	Total int     `json:"total"`
	Items []Track `json:"items"`
}

// SearchResults is the provider's search response, one page per entity
// type.
type SearchResults struct {
	Artists artistPage      `json:"artists"`
	Albums  albumPage       `json:"albums"`
	Tracks  trackSearchPage `json:"tracks"`
}

// ArtistCounts exposes the totals needed by the search metadata block.
func (s *SearchResults) Counts() (artists, albums, tracks int) {
	return s.Artists.Total, s.Albums.Total, s.Tracks.Total
}
