// Package core drives a full run: folder discovery, window selection, mode
// dispatch, per-file failure isolation, and the end-of-run summary.
package core

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rdelattre/nfosync/internal/media"
	"github.com/rdelattre/nfosync/internal/nfo"
	"github.com/rdelattre/nfosync/internal/stats"
)

// Config is the run configuration the engine dispatches on.
type Config struct {
	Folder string

	TranslateOnly     bool
	RatingOnly        bool
	SkipTranslate     bool
	ForceUpdate       bool
	SyncMPAA          bool
	RemoveMPAA        bool
	TranslateEpisodes bool
	EpisodesOnly      bool

	BatchMode  bool
	BatchDelay time.Duration

	MaxFolders   int
	FolderOffset int
}

// DefaultMode reports whether no mode flag was set. A default-mode run
// processes everything: series records, episode translation, and MPAA
// inheritance from the show.
func (c Config) DefaultMode() bool {
	return !c.TranslateOnly && !c.RatingOnly && !c.SkipTranslate &&
		!c.SyncMPAA && !c.RemoveMPAA &&
		!c.TranslateEpisodes && !c.EpisodesOnly && !c.BatchMode
}

// SeriesProcessor enriches one tvshow.nfo in place.
type SeriesProcessor interface {
	ProcessFile(ctx context.Context, path string) (bool, error)
}

// EpisodeProcessor enriches one episode .nfo in place. parentMPAA is the
// sibling show's rating, "" when unknown.
type EpisodeProcessor interface {
	ProcessFile(ctx context.Context, path, parentMPAA string) (bool, error)
}

// Engine runs one update pass over a collection. A failing file is logged
// and counted but never stops the run.
type Engine struct {
	cfg      Config
	series   SeriesProcessor
	episodes EpisodeProcessor
	mpaa     *MPAA
	stats    *stats.Stats
	log      *log.Logger
	out      io.Writer

	defaultMode bool
	sleep       func(time.Duration)
}

// NewEngine wires an engine. series and episodes may be nil only for the
// MPAA-only modes, which never touch them. A default-mode config gets episode
// processing switched on.
func NewEngine(cfg Config, series SeriesProcessor, episodes EpisodeProcessor, st *stats.Stats, logger *log.Logger) *Engine {
	defaultMode := cfg.DefaultMode()
	if defaultMode {
		cfg.TranslateEpisodes = true
	}
	return &Engine{
		defaultMode: defaultMode,
		cfg:      cfg,
		series:   series,
		episodes: episodes,
		mpaa:     NewMPAA(cfg, st, logger),
		stats:    st,
		log:      logger,
		out:      os.Stdout,
		sleep:    time.Sleep,
	}
}

// Run executes the configured mode over every selected folder and always
// finishes with a summary, even after per-file failures.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Info("starting metadata update", "folder", e.cfg.Folder)
	if e.defaultMode {
		e.log.Info("no mode flags set, processing all content types")
	}

	defer WriteSummary(e.out, e.stats, e.cfg)

	if e.cfg.SyncMPAA || e.cfg.RemoveMPAA {
		return e.mpaa.Run(ctx)
	}

	if e.cfg.EpisodesOnly {
		e.log.Info("processing episode files only")
	}

	folders, err := e.selectFolders()
	if err != nil {
		return err
	}
	for _, dir := range folders {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.processFolder(ctx, dir)
		e.stats.Inc(stats.FoldersProcessed)
	}
	return nil
}

func (e *Engine) selectFolders() ([]string, error) {
	folders, err := media.ShowFolders(e.cfg.Folder)
	if err != nil {
		return nil, err
	}
	e.log.Info("found series folders", "count", len(folders))

	if e.cfg.MaxFolders <= 0 && e.cfg.FolderOffset <= 0 {
		return folders, nil
	}

	selected, skippedOffset, skippedLimit := media.SelectWindow(folders, e.cfg.FolderOffset, e.cfg.MaxFolders)
	e.stats.Set(stats.FoldersSkippedOffset, int64(skippedOffset))
	e.stats.Set(stats.FoldersSkippedLimit, int64(skippedLimit))
	if skippedOffset > 0 {
		e.log.Info("skipping folders before offset", "count", skippedOffset)
	}
	e.log.Info("selected folder window", "count", len(selected))
	return selected, nil
}

// processFolder handles one series folder: the show record unless in
// episodes-only mode, then the episode records when episode processing is on.
func (e *Engine) processFolder(ctx context.Context, dir string) {
	e.log.Info("processing folder", "path", dir)

	showPath := filepath.Join(dir, media.ShowFile)
	if !e.cfg.EpisodesOnly {
		e.batchPause()
		if _, err := e.series.ProcessFile(ctx, showPath); err != nil {
			e.log.Error("series record failed", "path", showPath, "error", err)
			e.stats.Inc(stats.Errors)
		}
	}

	if !e.cfg.TranslateEpisodes && !e.cfg.EpisodesOnly {
		return
	}

	episodes, err := media.EpisodeFiles(dir)
	if err != nil {
		e.log.Error("listing episode records failed", "path", dir, "error", err)
		e.stats.Inc(stats.Errors)
		return
	}
	if len(episodes) == 0 {
		return
	}
	e.log.Info("found episode records", "path", dir, "count", len(episodes))

	parentMPAA := e.showMPAA(showPath)
	for _, name := range episodes {
		path := filepath.Join(dir, name)
		e.batchPause()
		if _, err := e.episodes.ProcessFile(ctx, path, parentMPAA); err != nil {
			e.log.Error("episode record failed", "path", path, "error", err)
			e.stats.Inc(stats.Errors)
		}
	}
}

// showMPAA reads the show's rating for episode inheritance. Any read problem
// just disables inheritance for the folder.
func (e *Engine) showMPAA(showPath string) string {
	doc, err := nfo.Load(showPath)
	if err != nil {
		return ""
	}
	return doc.Text("mpaa")
}

func (e *Engine) batchPause() {
	if !e.cfg.BatchMode {
		return
	}
	e.stats.Inc(stats.BatchOperations)
	if e.cfg.BatchDelay > 0 {
		e.sleep(e.cfg.BatchDelay)
	}
}
