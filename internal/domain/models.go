package domain

// PosterUnavailable is the poster value OMDb sends when a title has no image
const PosterUnavailable = "N/A"

// DefaultPlaceholderPoster replaces PosterUnavailable at render time
const DefaultPlaceholderPoster = "https://via.placeholder.com/350x400"

// Movie represents a single search result
type Movie struct {
	Title  string `json:"Title"`
	Poster string `json:"Poster"`
	Year   string `json:"Year"`
	IMDbID string `json:"imdbID"` // render key, assumed unique within a result list
	Type   string `json:"Type,omitempty"`
}

// HasPoster reports whether the record carries a real poster URL
func (m Movie) HasPoster() bool {
	return m.Poster != "" && m.Poster != PosterUnavailable
}

// PosterURL returns the poster URL, or placeholder when the record has none
func (m Movie) PosterURL(placeholder string) string {
	if !m.HasPoster() {
		if placeholder == "" {
			return DefaultPlaceholderPoster
		}
		return placeholder
	}
	return m.Poster
}

// Key returns the stable rendering key for the record
func (m Movie) Key() string {
	return m.IMDbID
}
