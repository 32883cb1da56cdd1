// Package enrich applies per-file metadata transformations: catalog-sourced
// rating/genre/tag/trailer updates on series records and French translation
// of descriptive text on both record shapes. Every operation reports whether
// it changed the document; unchanged files are never rewritten.
package enrich

import (
	"context"

	"github.com/rdelattre/nfosync/internal/provider"
)

// Catalog searches the remote catalog for a series by title. A (nil, nil)
// return means the catalog had no match.
type Catalog interface {
	Search(ctx context.Context, title string) (*provider.Anime, error)
}

// Translator machine-translates one text field to the target language.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// TrailerSearcher resolves a video identifier by free-text search. It is the
// fallback when the catalog's trailer descriptor yields nothing.
type TrailerSearcher interface {
	SearchTrailer(ctx context.Context, title string) (string, error)
}

// Options are the run flags the enrichers act on.
type Options struct {
	ForceUpdate   bool
	TranslateOnly bool
	RatingOnly    bool
	SkipTranslate bool
	InheritMPAA   bool // default mode: copy the show's mpaa onto episodes
}

// TrailerURI formats a resolved video identifier as the fixed Kodi plugin
// form written to the trailer field.
func TrailerURI(videoID string) string {
	return "plugin://plugin.video.youtube/play/?video_id=" + videoID
}
