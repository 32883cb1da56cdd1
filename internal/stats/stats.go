// Package stats tracks process-wide counters for a single run. The counters
// object is created once by the orchestrator and passed explicitly to every
// component; nothing in the module keeps global mutable state.
package stats

import "sync"

// Counter names. Components increment these by name so the summary can report
// updates by kind and API calls by provider.
const (
	ProcessedFiles          = "processed_files"
	UpdatedRatings          = "updated_ratings"
	UpdatedGenres           = "updated_genres"
	UpdatedTags             = "updated_tags"
	UpdatedTrailers         = "updated_trailers"
	TranslatedPlots         = "translated_plots"
	EpisodesProcessed       = "episodes_processed"
	EpisodesTranslated      = "episodes_translated"
	EpisodeTitlesTranslated = "episode_titles_translated"
	EpisodePlotsTranslated  = "episode_plots_translated"
	EpisodesUpdated         = "episodes_updated"
	BatchOperations         = "batch_operations"
	FoldersProcessed        = "folders_processed"
	FoldersSkippedOffset    = "folders_skipped_offset"
	FoldersSkippedLimit     = "folders_skipped_limit"
	JikanCalls              = "jikan_api_calls"
	ClaudeCalls             = "claude_api_calls"
	YouTubeCalls            = "youtube_api_calls"
	Errors                  = "errors"
)

// Stats is a set of named counters, safe for concurrent use.
type Stats struct {
	mu       sync.Mutex
	counters map[string]int64
}

// New returns an empty counter set.
func New() *Stats {
	return &Stats{counters: make(map[string]int64)}
}

// Inc adds one to the named counter.
func (s *Stats) Inc(name string) { s.Add(name, 1) }

// Add adds delta (which may be negative) to the named counter.
func (s *Stats) Add(name string, delta int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[name] += delta
}

// Set overwrites the named counter.
func (s *Stats) Set(name string, value int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[name] = value
}

// Get returns the current value of the named counter.
func (s *Stats) Get(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[name]
}
