// Package config resolves run configuration from a .env file, process
// environment, and command line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultClaudeModel is used when no model is configured.
const DefaultClaudeModel = "claude-3-5-haiku-latest"

// DefaultBatchDelay is the pause between batch operations when batch mode is
// on and no delay is configured.
const DefaultBatchDelay = time.Second

// Config is the resolved run configuration.
type Config struct {
	Folder        string
	ClaudeAPIKey  string
	YouTubeAPIKey string
	ClaudeModel   string

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

// FromEnv loads .env from the working directory when present and builds a
// Config from the environment. Flag values layered on top by the command
// take precedence.
func FromEnv() Config {
	// A missing .env file is not an error; the environment may already be set.
	_ = godotenv.Load()

	return Config{
		Folder:        os.Getenv("ANIME_FOLDER"),
		ClaudeAPIKey:  os.Getenv("CLAUDE_API_KEY"),
		YouTubeAPIKey: os.Getenv("YOUTUBE_API_KEY"),
		ClaudeModel:   envOr("CLAUDE_MODEL", DefaultClaudeModel),

		RatingOnly:        envBool("RATING_ONLY"),
		SkipTranslate:     envBool("SKIP_TRANSLATE"),
		ForceUpdate:       envBool("FORCE_UPDATE"),
		SyncMPAA:          envBool("SYNC_MPAA"),
		RemoveMPAA:        envBool("REMOVE_MPAA"),
		TranslateEpisodes: envBool("TRANSLATE_EPISODES"),
		EpisodesOnly:      envBool("EPISODES_ONLY"),
		BatchMode:         envBool("BATCH_MODE"),

		BatchDelay:   envSeconds("BATCH_DELAY", DefaultBatchDelay),
		MaxFolders:   envInt("MAX_FOLDERS"),
		FolderOffset: envInt("FOLDER_OFFSET"),
	}
}

// TranslationNeeded reports whether this run will call the translation
// provider: any enrichment run that has not opted out, or explicit episode
// translation.
func (c Config) TranslationNeeded() bool {
	full := !c.RatingOnly && !c.SkipTranslate && !c.SyncMPAA && !c.RemoveMPAA
	return full || c.TranslateEpisodes
}

// Validate rejects configurations the run could not execute.
func (c Config) Validate() error {
	if c.Folder == "" {
		return errors.New("no folder configured: use --folder or set ANIME_FOLDER")
	}
	info, err := os.Stat(c.Folder)
	if err != nil {
		return fmt.Errorf("folder %q: %w", c.Folder, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("folder %q is not a directory", c.Folder)
	}

	if c.SyncMPAA && c.RemoveMPAA {
		return errors.New("--sync-mpaa and --remove-mpaa cannot be used together")
	}

	if c.TranslationNeeded() && c.ClaudeAPIKey == "" {
		return errors.New("Claude API key required for translation: set CLAUDE_API_KEY or use --rating-only / --skip-translate")
	}

	if c.MaxFolders < 0 {
		return fmt.Errorf("max folders must be >= 0, got %d", c.MaxFolders)
	}
	if c.FolderOffset < 0 {
		return fmt.Errorf("folder offset must be >= 0, got %d", c.FolderOffset)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	return strings.EqualFold(os.Getenv(key), "true")
}

func envInt(key string) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return n
}

// envSeconds parses a float number of seconds, the format the .env file uses
// for delays.
func envSeconds(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return fallback
	}
	return time.Duration(f * float64(time.Second))
}
