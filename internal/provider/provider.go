package provider

// Anime is the catalog provider's view of one series: only the fields the
// enrichment pipeline consumes. Genres and Themes keep the provider's order.
type Anime struct {
	Title   string
	Score   float64
	Genres  []string
	Themes  []string
	Trailer TrailerRef
}

// TrailerRef is the structured trailer descriptor the catalog may attach to a
// match. Any of the fields may be empty.
type TrailerRef struct {
	YoutubeID string
	EmbedURL  string
	URL       string
}
