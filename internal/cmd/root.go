// Package cmd defines the nfosync command line interface.
package cmd

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/rdelattre/nfosync/internal/config"
	"github.com/rdelattre/nfosync/internal/core"
	"github.com/rdelattre/nfosync/internal/enrich"
	runlog "github.com/rdelattre/nfosync/internal/log"
	"github.com/rdelattre/nfosync/internal/provider/claude"
	"github.com/rdelattre/nfosync/internal/provider/jikan"
	"github.com/rdelattre/nfosync/internal/provider/youtube"
	"github.com/rdelattre/nfosync/internal/stats"
)

// NewRootCmd builds the root command. Flag defaults come from the
// environment (and .env), so a flag only needs to be passed when it should
// override them.
func NewRootCmd() *cobra.Command {
	cfg := config.FromEnv()

	cmd := &cobra.Command{
		Use:   "nfosync",
		Short: "Enrich NFO media metadata from remote catalogs",
		Long: `nfosync walks a media collection and enriches its tvshow.nfo and episode
.nfo files: catalog ratings, genres, tags and trailer links, plus optional
French translation of titles and descriptions. Files are only rewritten when
something actually changed.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.Folder, "folder", cfg.Folder, "path to the media collection folder")
	f.StringVar(&cfg.ClaudeAPIKey, "claude-api-key", cfg.ClaudeAPIKey, "API key for Claude (required for translation)")
	f.StringVar(&cfg.YouTubeAPIKey, "youtube-api-key", cfg.YouTubeAPIKey, "API key for the YouTube Data API (trailer search)")
	f.StringVar(&cfg.ClaudeModel, "claude-model", cfg.ClaudeModel, "Claude model used for translation")
	f.BoolVar(&cfg.TranslateOnly, "translate-only", cfg.TranslateOnly, "only translate descriptions, skip catalog updates")
	f.BoolVar(&cfg.RatingOnly, "rating-only", cfg.RatingOnly, "only update catalog metadata, skip translation")
	f.BoolVar(&cfg.SkipTranslate, "skip-translate", cfg.SkipTranslate, "skip translation of descriptions")
	f.BoolVar(&cfg.ForceUpdate, "force-update", cfg.ForceUpdate, "rewrite values even when they are already current")
	f.BoolVar(&cfg.SyncMPAA, "sync-mpaa", cfg.SyncMPAA, "copy the show's mpaa rating onto every episode record")
	f.BoolVar(&cfg.RemoveMPAA, "remove-mpaa", cfg.RemoveMPAA, "remove the mpaa rating from every episode record")
	f.BoolVar(&cfg.TranslateEpisodes, "translate-episodes", cfg.TranslateEpisodes, "translate title and plot in episode records")
	f.BoolVar(&cfg.EpisodesOnly, "episodes-only", cfg.EpisodesOnly, "only process episode records, skip tvshow.nfo")
	f.BoolVar(&cfg.BatchMode, "batch-mode", cfg.BatchMode, "pause between operations to spread load")
	f.DurationVar(&cfg.BatchDelay, "batch-delay", cfg.BatchDelay, "pause between batch operations")
	f.IntVar(&cfg.MaxFolders, "max-folders", cfg.MaxFolders, "maximum number of series folders to process (0 = all)")
	f.IntVar(&cfg.FolderOffset, "folder-offset", cfg.FolderOffset, "number of series folders to skip before processing")

	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, logFile := runlog.New(runlog.DefaultFile)
	defer logFile.Close()
	st := stats.New()

	// Providers only pause between calls in batch mode.
	var providerDelay time.Duration
	if cfg.BatchMode {
		providerDelay = cfg.BatchDelay
	}

	catalog := jikan.New(jikan.Config{
		BatchDelay: providerDelay,
		CacheFile:  cacheFile(logger),
	}, st, logger)

	// Interface fields stay nil unless a real client backs them; assigning a
	// nil *Client would make the nil checks downstream pass.
	var translator enrich.Translator
	if cfg.ClaudeAPIKey != "" {
		translator = claude.New(claude.Config{
			APIKey:     cfg.ClaudeAPIKey,
			Model:      cfg.ClaudeModel,
			BatchDelay: providerDelay,
		}, st, logger)
		logger.Info("translation enabled", "model", cfg.ClaudeModel)
	} else {
		logger.Info("translation disabled, no Claude API key")
	}

	var trailers enrich.TrailerSearcher
	if cfg.YouTubeAPIKey != "" {
		yt, err := youtube.New(ctx, youtube.Config{
			APIKey:     cfg.YouTubeAPIKey,
			BatchDelay: providerDelay,
		}, st, logger)
		if err != nil {
			return err
		}
		trailers = yt
	} else {
		logger.Info("YouTube API disabled, trailer search limited to catalog data")
	}

	engineCfg := core.Config{
		Folder:            cfg.Folder,
		TranslateOnly:     cfg.TranslateOnly,
		RatingOnly:        cfg.RatingOnly,
		SkipTranslate:     cfg.SkipTranslate,
		ForceUpdate:       cfg.ForceUpdate,
		SyncMPAA:          cfg.SyncMPAA,
		RemoveMPAA:        cfg.RemoveMPAA,
		TranslateEpisodes: cfg.TranslateEpisodes,
		EpisodesOnly:      cfg.EpisodesOnly,
		BatchMode:         cfg.BatchMode,
		BatchDelay:        cfg.BatchDelay,
		MaxFolders:        cfg.MaxFolders,
		FolderOffset:      cfg.FolderOffset,
	}

	opts := enrich.Options{
		ForceUpdate:   cfg.ForceUpdate,
		TranslateOnly: cfg.TranslateOnly,
		RatingOnly:    cfg.RatingOnly,
		SkipTranslate: cfg.SkipTranslate,
		InheritMPAA:   engineCfg.DefaultMode(),
	}
	series := enrich.NewSeries(catalog, translator, trailers, st, logger, opts)
	episodes := enrich.NewEpisode(translator, st, logger, opts)

	engine := core.NewEngine(engineCfg, series, episodes, st, logger)
	runErr := engine.Run(ctx)

	if err := catalog.SaveCache(); err != nil {
		logger.Warn("saving catalog cache failed", "error", err)
	}
	return runErr
}

// cacheFile picks the persisted catalog cache location, "" when no user
// cache directory is available.
func cacheFile(logger *log.Logger) string {
	dir, err := os.UserCacheDir()
	if err != nil {
		logger.Warn("no user cache dir, catalog cache kept in memory", "error", err)
		return ""
	}
	dir = filepath.Join(dir, "nfosync")
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Warn("creating cache dir failed, catalog cache kept in memory", "error", err)
		return ""
	}
	return filepath.Join(dir, "jikan.gob")
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
