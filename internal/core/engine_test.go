package core

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/rdelattre/nfosync/internal/enrich"
	"github.com/rdelattre/nfosync/internal/provider"
	"github.com/rdelattre/nfosync/internal/stats"
)

type stubSeries struct {
	calls []string
	fail  string
}

func (s *stubSeries) ProcessFile(ctx context.Context, path string) (bool, error) {
	s.calls = append(s.calls, path)
	if s.fail != "" && s.fail == path {
		return false, errors.New("boom")
	}
	return true, nil
}

type stubEpisodes struct {
	calls []string
	mpaas []string
}

func (s *stubEpisodes) ProcessFile(ctx context.Context, path, parentMPAA string) (bool, error) {
	s.calls = append(s.calls, path)
	s.mpaas = append(s.mpaas, parentMPAA)
	return false, nil
}

const engineShowDoc = `<?xml version="1.0" encoding="utf-8" standalone="yes"?>
<tvshow>
  <title>Cowboy Bebop</title>
  <mpaa>TV-14</mpaa>
</tvshow>`

// writeCollection builds a collection root with one series folder per name,
// each holding a tvshow.nfo and a single episode record.
func writeCollection(t *testing.T, names ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range names {
		dir := filepath.Join(root, name)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "tvshow.nfo"), []byte(engineShowDoc), 0644); err != nil {
			t.Fatal(err)
		}
		episode := `<episodedetails><title>Episode</title></episodedetails>`
		if err := os.WriteFile(filepath.Join(dir, "S01E01.nfo"), []byte(episode), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func newTestEngine(cfg Config, series SeriesProcessor, episodes EpisodeProcessor) (*Engine, *stats.Stats) {
	st := stats.New()
	e := NewEngine(cfg, series, episodes, st, log.New(io.Discard))
	e.out = io.Discard
	e.sleep = func(time.Duration) {}
	return e, st
}

func TestEngineDefaultModeProcessesShowsAndEpisodes(t *testing.T) {
	root := writeCollection(t, "Bebop", "Champloo")
	series := &stubSeries{}
	episodes := &stubEpisodes{}
	e, st := newTestEngine(Config{Folder: root}, series, episodes)

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantShows := []string{
		filepath.Join(root, "Bebop", "tvshow.nfo"),
		filepath.Join(root, "Champloo", "tvshow.nfo"),
	}
	if diff := cmp.Diff(wantShows, series.calls); diff != "" {
		t.Errorf("series calls mismatch (-want +got):\n%s", diff)
	}
	if len(episodes.calls) != 2 {
		t.Fatalf("episode calls = %d, want 2", len(episodes.calls))
	}
	// Default mode hands the show's rating to every episode.
	if diff := cmp.Diff([]string{"TV-14", "TV-14"}, episodes.mpaas); diff != "" {
		t.Errorf("parent mpaa mismatch (-want +got):\n%s", diff)
	}
	if got := st.Get(stats.FoldersProcessed); got != 2 {
		t.Errorf("folders_processed = %d, want 2", got)
	}
}

func TestEngineEpisodesOnlySkipsShowRecords(t *testing.T) {
	root := writeCollection(t, "Bebop")
	series := &stubSeries{}
	episodes := &stubEpisodes{}
	e, _ := newTestEngine(Config{Folder: root, EpisodesOnly: true}, series, episodes)

	if err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(series.calls) != 0 {
		t.Errorf("series called %d times in episodes-only mode, want 0", len(series.calls))
	}
	if len(episodes.calls) != 1 {
		t.Errorf("episode calls = %d, want 1", len(episodes.calls))
	}
}

func TestEngineSkipsEpisodesWithoutFlag(t *testing.T) {
	root := writeCollection(t, "Bebop")
	episodes := &stubEpisodes{}
	// RatingOnly makes the run non-default, so episode processing stays off.
	e, _ := newTestEngine(Config{Folder: root, RatingOnly: true}, &stubSeries{}, episodes)

	if err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(episodes.calls) != 0 {
		t.Errorf("episode calls = %d, want 0", len(episodes.calls))
	}
}

func TestEngineWindowSelection(t *testing.T) {
	root := writeCollection(t, "A", "B", "C", "D", "E")
	series := &stubSeries{}
	cfg := Config{Folder: root, FolderOffset: 1, MaxFolders: 2, RatingOnly: true}
	e, st := newTestEngine(cfg, series, &stubEpisodes{})

	if err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	wantShows := []string{
		filepath.Join(root, "B", "tvshow.nfo"),
		filepath.Join(root, "C", "tvshow.nfo"),
	}
	if diff := cmp.Diff(wantShows, series.calls); diff != "" {
		t.Errorf("series calls mismatch (-want +got):\n%s", diff)
	}
	if got := st.Get(stats.FoldersSkippedOffset); got != 1 {
		t.Errorf("folders_skipped_offset = %d, want 1", got)
	}
	if got := st.Get(stats.FoldersSkippedLimit); got != 2 {
		t.Errorf("folders_skipped_limit = %d, want 2", got)
	}
	if got := st.Get(stats.FoldersProcessed); got != 2 {
		t.Errorf("folders_processed = %d, want 2", got)
	}
}

type engineCatalog struct{}

func (engineCatalog) Search(ctx context.Context, title string) (*provider.Anime, error) {
	return &provider.Anime{Title: title, Score: 8.75}, nil
}

// A folder that fails to parse is counted and skipped; the rest of the run
// is unaffected and the broken file keeps its original bytes.
func TestEngineIsolatesFolderFailures(t *testing.T) {
	root := writeCollection(t, "A", "B", "C", "D", "E")
	malformed := []byte("<tvshow><title>Broken")
	brokenPath := filepath.Join(root, "C", "tvshow.nfo")
	if err := os.WriteFile(brokenPath, malformed, 0644); err != nil {
		t.Fatal(err)
	}

	st := stats.New()
	logger := log.New(io.Discard)
	series := enrich.NewSeries(engineCatalog{}, nil, nil, st, logger, enrich.Options{SkipTranslate: true})
	e := NewEngine(Config{Folder: root, SkipTranslate: true}, series, &stubEpisodes{}, st, logger)
	e.out = io.Discard

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v, want nil despite per-file failure", err)
	}

	if got := st.Get(stats.Errors); got != 1 {
		t.Errorf("errors = %d, want 1", got)
	}
	if got := st.Get(stats.ProcessedFiles); got != 4 {
		t.Errorf("processed_files = %d, want 4", got)
	}
	if got := st.Get(stats.FoldersProcessed); got != 5 {
		t.Errorf("folders_processed = %d, want 5", got)
	}

	after, err := os.ReadFile(brokenPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(after, malformed) {
		t.Error("malformed file was rewritten")
	}
}

func TestEngineBatchMode(t *testing.T) {
	root := writeCollection(t, "Bebop")
	var pauses int
	cfg := Config{Folder: root, BatchMode: true, BatchDelay: 50 * time.Millisecond, EpisodesOnly: true}
	e, st := newTestEngine(cfg, &stubSeries{}, &stubEpisodes{})
	e.sleep = func(d time.Duration) {
		if d != cfg.BatchDelay {
			t.Errorf("sleep(%s), want %s", d, cfg.BatchDelay)
		}
		pauses++
	}

	if err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := st.Get(stats.BatchOperations); got != 1 {
		t.Errorf("batch_operations = %d, want 1", got)
	}
	if pauses != 1 {
		t.Errorf("pauses = %d, want 1", pauses)
	}
}

func TestEngineAlwaysWritesSummary(t *testing.T) {
	root := writeCollection(t, "Bebop")
	var out bytes.Buffer
	e, _ := newTestEngine(Config{Folder: root, RatingOnly: true}, &stubSeries{}, &stubEpisodes{})
	e.out = &out

	if err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(out.Bytes(), []byte("PROCESSING COMPLETE")) {
		t.Error("summary header missing from output")
	}
	if !bytes.Contains(out.Bytes(), []byte("Folders processed: 1")) {
		t.Error("folder count missing from summary")
	}
}
