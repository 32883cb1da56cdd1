package enrich

import (
	"context"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/rdelattre/nfosync/internal/nfo"
	"github.com/rdelattre/nfosync/internal/provider"
	"github.com/rdelattre/nfosync/internal/provider/youtube"
	"github.com/rdelattre/nfosync/internal/stats"
)

// Series enriches tvshow.nfo documents. It holds no per-file state; one
// instance serves the whole run.
type Series struct {
	catalog    Catalog
	translator Translator
	trailers   TrailerSearcher
	stats      *stats.Stats
	log        *log.Logger
	opts       Options
}

// NewSeries wires a series enricher. translator and trailers may be nil when
// the corresponding capability is not configured.
func NewSeries(catalog Catalog, translator Translator, trailers TrailerSearcher, st *stats.Stats, logger *log.Logger, opts Options) *Series {
	return &Series{
		catalog:    catalog,
		translator: translator,
		trailers:   trailers,
		stats:      st,
		log:        logger,
		opts:       opts,
	}
}

// ProcessFile loads one tvshow.nfo, enriches it, and writes it back only when
// something changed. It reports whether the file was modified.
func (e *Series) ProcessFile(ctx context.Context, path string) (bool, error) {
	doc, err := nfo.Load(path)
	if err != nil {
		return false, err
	}

	title := doc.Text("title")
	if title == "" {
		e.log.Warn("no title found, skipping", "path", path)
		return false, nil
	}
	e.log.Info("processing series", "title", title)

	changed := false
	if !e.opts.TranslateOnly {
		if e.enrichMetadata(ctx, doc, title) {
			changed = true
		}
	}
	if e.shouldTranslate() {
		if e.translateDescriptions(ctx, doc) {
			changed = true
			e.stats.Inc(stats.TranslatedPlots)
		}
	}

	if changed {
		if err := doc.Save(); err != nil {
			return false, err
		}
		e.log.Info("updated series record", "path", path)
	}
	e.stats.Inc(stats.ProcessedFiles)
	return changed, nil
}

func (e *Series) shouldTranslate() bool {
	return !e.opts.RatingOnly && !e.opts.SkipTranslate && e.translator != nil
}

// enrichMetadata applies the catalog-sourced sub-decisions: rating, genres,
// tags, trailer. The sub-decisions are independent; any of them marks the
// document changed.
func (e *Series) enrichMetadata(ctx context.Context, doc *nfo.Document, title string) bool {
	anime, err := e.catalog.Search(ctx, title)
	if err != nil {
		e.log.Warn("catalog lookup failed", "title", title, "error", err)
		return false
	}
	if anime == nil {
		e.log.Warn("no catalog match", "title", title)
		return false
	}

	changed := false

	if anime.Score > 0 {
		score := formatScore(anime.Score)
		if doc.Text("rating") != score || e.opts.ForceUpdate {
			doc.SetText("rating", score)
			e.stats.Inc(stats.UpdatedRatings)
			e.log.Info("updated rating", "title", title, "rating", score)
			changed = true
		}
	} else {
		e.log.Warn("no score available", "title", title)
	}

	// Genres are replaced whenever the catalog has any, without comparing
	// against the stored set. Tags below are diffed first; the asymmetry is
	// intentional and matches long-standing behavior.
	if len(anime.Genres) > 0 {
		doc.ReplaceAll("genre", anime.Genres)
		e.stats.Inc(stats.UpdatedGenres)
		e.log.Info("updated genres", "title", title, "genres", anime.Genres)
		changed = true
	} else {
		e.log.Warn("no genres available", "title", title)
	}

	if len(anime.Themes) > 0 {
		if !sameSet(tagTexts(doc), anime.Themes) || e.opts.ForceUpdate {
			doc.ReplaceAll("tag", anime.Themes)
			e.stats.Inc(stats.UpdatedTags)
			e.log.Info("updated tags", "title", title, "tags", anime.Themes)
			changed = true
		}
	}

	if id := e.resolveTrailer(ctx, anime, title); id != "" {
		uri := TrailerURI(id)
		if cur := doc.Find("trailer"); cur == nil || cur.Text() != uri || e.opts.ForceUpdate {
			doc.SetText("trailer", uri)
			e.stats.Inc(stats.UpdatedTrailers)
			e.log.Info("updated trailer", "title", title, "trailer", uri)
			changed = true
		}
	}

	return changed
}

// resolveTrailer extracts an identifier from the catalog's trailer descriptor
// and falls back to video search only when extraction fails and search is
// configured.
func (e *Series) resolveTrailer(ctx context.Context, anime *provider.Anime, title string) string {
	if id := youtube.ExtractVideoID(anime.Trailer); id != "" {
		return id
	}
	if e.trailers == nil {
		return ""
	}
	e.log.Info("no trailer in catalog data, searching YouTube", "title", title)
	id, err := e.trailers.SearchTrailer(ctx, title)
	if err != nil {
		e.log.Warn("trailer search failed", "title", title, "error", err)
		return ""
	}
	return id
}

// translateDescriptions translates plot and outline in place, skipping fields
// that already look French. A failed or empty translation leaves the original
// text untouched.
func (e *Series) translateDescriptions(ctx context.Context, doc *nfo.Document) bool {
	changed := false
	for _, tag := range []string{"plot", "outline"} {
		text := doc.Text(tag)
		if text == "" {
			continue
		}
		if AppearsFrench(text) {
			e.log.Info("field already appears French, skipping", "field", tag)
			continue
		}
		translated, err := e.translator.Translate(ctx, text)
		if err != nil {
			e.log.Warn("translation failed", "field", tag, "error", err)
			continue
		}
		if translated != "" {
			doc.SetText(tag, translated)
			changed = true
		}
	}
	return changed
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func tagTexts(doc *nfo.Document) []string {
	var texts []string
	for _, e := range doc.FindAll("tag") {
		if t := e.Text(); t != "" {
			texts = append(texts, t)
		}
	}
	return texts
}

func sameSet(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	other := make(map[string]struct{}, len(b))
	for _, s := range b {
		other[s] = struct{}{}
	}
	if len(set) != len(other) {
		return false
	}
	for s := range set {
		if _, ok := other[s]; !ok {
			return false
		}
	}
	return true
}
