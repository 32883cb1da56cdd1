package enrich

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/rdelattre/nfosync/internal/nfo"
	"github.com/rdelattre/nfosync/internal/stats"
)

// Episode enriches episodedetails records: MPAA inheritance from the parent
// series record and translation of title and plot.
type Episode struct {
	translator Translator
	stats      *stats.Stats
	log        *log.Logger
	opts       Options
}

// NewEpisode wires an episode enricher. translator may be nil when
// translation is not configured.
func NewEpisode(translator Translator, st *stats.Stats, logger *log.Logger, opts Options) *Episode {
	return &Episode{translator: translator, stats: st, log: logger, opts: opts}
}

// ProcessFile loads one episode record, applies MPAA inheritance and
// translation, and writes it back only when something changed. parentMPAA is
// the sibling tvshow.nfo's rating string, "" when the show has none. Files
// whose root tag is not an episode record are skipped.
func (e *Episode) ProcessFile(ctx context.Context, path, parentMPAA string) (bool, error) {
	doc, err := nfo.Load(path)
	if err != nil {
		return false, err
	}
	if doc.RootTag() != nfo.TagEpisode {
		e.log.Warn("not an episode record, skipping", "path", path)
		return false, nil
	}

	e.stats.Inc(stats.EpisodesProcessed)
	changed := false

	if e.opts.InheritMPAA && parentMPAA != "" {
		if cur := doc.Find("mpaa"); cur == nil || cur.Text() != parentMPAA {
			doc.SetText("mpaa", parentMPAA)
			e.log.Info("inherited mpaa from show", "path", path, "mpaa", parentMPAA)
			changed = true
		}
	}

	if e.shouldTranslate() {
		if e.translateField(ctx, doc, "title", stats.EpisodeTitlesTranslated) {
			changed = true
		}
		if e.translateField(ctx, doc, "plot", stats.EpisodePlotsTranslated) {
			changed = true
		}
	}

	if changed {
		e.stats.Inc(stats.EpisodesTranslated)
		if err := doc.Save(); err != nil {
			return false, err
		}
		e.log.Info("updated episode record", "path", path)
	}
	return changed, nil
}

func (e *Episode) shouldTranslate() bool {
	return !e.opts.SkipTranslate && !e.opts.RatingOnly && e.translator != nil
}

// translateField overwrites one free-text field with its translation, but
// only when the field is non-empty, does not already look French, and the
// translation actually differs.
func (e *Episode) translateField(ctx context.Context, doc *nfo.Document, tag, counter string) bool {
	text := doc.Text(tag)
	if text == "" || AppearsFrench(text) {
		return false
	}

	translated, err := e.translator.Translate(ctx, text)
	if err != nil {
		e.log.Warn("translation failed", "field", tag, "error", err)
		return false
	}
	if translated == "" || translated == text {
		return false
	}

	doc.SetText(tag, translated)
	e.stats.Inc(counter)
	return true
}
