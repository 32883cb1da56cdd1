package core

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rdelattre/nfosync/internal/media"
	"github.com/rdelattre/nfosync/internal/nfo"
	"github.com/rdelattre/nfosync/internal/stats"
)

// MPAA propagates or strips the mpaa rating on episode records. Sync copies
// the show's rating onto every episode; remove deletes it.
type MPAA struct {
	cfg   Config
	stats *stats.Stats
	log   *log.Logger
	sleep func(time.Duration)
}

// NewMPAA wires an MPAA processor for the configured mode.
func NewMPAA(cfg Config, st *stats.Stats, logger *log.Logger) *MPAA {
	return &MPAA{cfg: cfg, stats: st, log: logger, sleep: time.Sleep}
}

// Run processes every selected series folder. Folder selection honors the
// same offset/limit window as the enrichment modes.
func (m *MPAA) Run(ctx context.Context) error {
	folders, err := media.ShowFolders(m.cfg.Folder)
	if err != nil {
		return err
	}
	m.log.Info("found series folders", "count", len(folders))

	if m.cfg.MaxFolders > 0 || m.cfg.FolderOffset > 0 {
		var skippedOffset, skippedLimit int
		folders, skippedOffset, skippedLimit = media.SelectWindow(folders, m.cfg.FolderOffset, m.cfg.MaxFolders)
		m.stats.Set(stats.FoldersSkippedOffset, int64(skippedOffset))
		m.stats.Set(stats.FoldersSkippedLimit, int64(skippedLimit))
		m.log.Info("selected folder window", "count", len(folders))
	}

	for _, dir := range folders {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.processFolder(dir)
		m.stats.Inc(stats.FoldersProcessed)
	}
	return nil
}

func (m *MPAA) processFolder(dir string) {
	m.log.Info("processing mpaa tags", "path", dir)

	var rating string
	if m.cfg.SyncMPAA {
		rating = m.showRating(filepath.Join(dir, media.ShowFile))
		if rating == "" {
			m.log.Warn("show record has no mpaa, skipping folder", "path", dir)
			return
		}
		m.log.Info("found show mpaa", "path", dir, "mpaa", rating)
	}

	episodes, err := media.EpisodeFiles(dir)
	if err != nil {
		m.log.Error("listing episode records failed", "path", dir, "error", err)
		m.stats.Inc(stats.Errors)
		return
	}
	if len(episodes) == 0 {
		m.log.Info("no episode records in folder", "path", dir)
		return
	}

	for _, name := range episodes {
		path := filepath.Join(dir, name)
		if m.cfg.BatchMode {
			m.stats.Inc(stats.BatchOperations)
			if m.cfg.BatchDelay > 0 {
				m.sleep(m.cfg.BatchDelay)
			}
		}

		var err error
		if m.cfg.SyncMPAA {
			err = m.syncEpisode(path, rating)
		} else {
			err = m.removeEpisode(path)
		}
		if err != nil {
			m.log.Error("episode mpaa update failed", "path", path, "error", err)
			m.stats.Inc(stats.Errors)
		}
	}
}

func (m *MPAA) showRating(showPath string) string {
	doc, err := nfo.Load(showPath)
	if err != nil {
		m.log.Error("reading show record failed", "path", showPath, "error", err)
		return ""
	}
	return doc.Text("mpaa")
}

// syncEpisode sets the episode's mpaa to the show's rating, rewriting the
// file only when the value differs or a force update is requested.
func (m *MPAA) syncEpisode(path, rating string) error {
	doc, err := nfo.Load(path)
	if err != nil {
		return err
	}
	if doc.RootTag() != nfo.TagEpisode {
		m.log.Warn("not an episode record, skipping", "path", path)
		return nil
	}

	if doc.Text("mpaa") == rating && !m.cfg.ForceUpdate {
		m.log.Debug("mpaa already current", "path", path)
		return nil
	}
	doc.SetText("mpaa", rating)
	if err := doc.Save(); err != nil {
		return err
	}
	m.log.Info("updated episode mpaa", "path", path, "mpaa", rating)
	m.stats.Inc(stats.EpisodesUpdated)
	return nil
}

func (m *MPAA) removeEpisode(path string) error {
	doc, err := nfo.Load(path)
	if err != nil {
		return err
	}
	if doc.RootTag() != nfo.TagEpisode {
		m.log.Warn("not an episode record, skipping", "path", path)
		return nil
	}

	if !doc.Remove("mpaa") {
		m.log.Debug("no mpaa tag to remove", "path", path)
		return nil
	}
	if err := doc.Save(); err != nil {
		return err
	}
	m.log.Info("removed episode mpaa", "path", path)
	m.stats.Inc(stats.EpisodesUpdated)
	return nil
}
