package core

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rdelattre/nfosync/internal/stats"
)

var (
	summaryTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	summarySection = lipgloss.NewStyle().Bold(true)
	summaryRule    = lipgloss.NewStyle().Faint(true)
)

// WriteSummary renders the end-of-run report. The sections shown depend on
// the mode that ran: MPAA modes report episode updates, enrichment modes
// report per-kind update counts and episode translation when enabled.
func WriteSummary(w io.Writer, st *stats.Stats, cfg Config) {
	heavy := summaryRule.Render(strings.Repeat("=", 50))
	light := summaryRule.Render(strings.Repeat("-", 50))

	fmt.Fprintln(w, heavy)
	fmt.Fprintln(w, summaryTitle.Render("PROCESSING COMPLETE"))
	fmt.Fprintln(w, heavy)

	fmt.Fprintln(w, summarySection.Render("FOLDER PROCESSING STATISTICS"))
	fmt.Fprintf(w, "Folders processed: %d\n", st.Get(stats.FoldersProcessed))
	if n := st.Get(stats.FoldersSkippedOffset); n > 0 {
		fmt.Fprintf(w, "Folders skipped due to offset: %d (offset %d)\n", n, cfg.FolderOffset)
	}
	if n := st.Get(stats.FoldersSkippedLimit); n > 0 {
		fmt.Fprintf(w, "Folders skipped due to limit: %d (limit %d)\n", n, cfg.MaxFolders)
	}
	fmt.Fprintln(w, light)

	if cfg.SyncMPAA || cfg.RemoveMPAA {
		fmt.Fprintf(w, "Episode records updated: %d\n", st.Get(stats.EpisodesUpdated))
	} else {
		fmt.Fprintf(w, "TV show files processed: %d\n", st.Get(stats.ProcessedFiles))
		fmt.Fprintf(w, "Ratings updated: %d\n", st.Get(stats.UpdatedRatings))
		fmt.Fprintf(w, "Genres updated: %d\n", st.Get(stats.UpdatedGenres))
		fmt.Fprintf(w, "Tags updated: %d\n", st.Get(stats.UpdatedTags))
		fmt.Fprintf(w, "Trailers updated: %d\n", st.Get(stats.UpdatedTrailers))
		fmt.Fprintf(w, "TV show descriptions translated: %d\n", st.Get(stats.TranslatedPlots))

		if cfg.TranslateEpisodes || cfg.EpisodesOnly {
			fmt.Fprintf(w, "Episode files processed: %d\n", st.Get(stats.EpisodesProcessed))
			fmt.Fprintf(w, "Episode files with translations: %d\n", st.Get(stats.EpisodesTranslated))
			fmt.Fprintf(w, "Episode titles translated: %d\n", st.Get(stats.EpisodeTitlesTranslated))
			fmt.Fprintf(w, "Episode plots translated: %d\n", st.Get(stats.EpisodePlotsTranslated))
		}
	}

	fmt.Fprintln(w, light)
	fmt.Fprintln(w, summarySection.Render("API CALL STATISTICS"))
	fmt.Fprintf(w, "Jikan API calls: %d\n", st.Get(stats.JikanCalls))
	fmt.Fprintf(w, "Claude API calls: %d\n", st.Get(stats.ClaudeCalls))
	fmt.Fprintf(w, "YouTube API calls: %d\n", st.Get(stats.YouTubeCalls))

	if cfg.BatchMode {
		fmt.Fprintln(w, light)
		fmt.Fprintln(w, summarySection.Render("BATCH PROCESSING STATISTICS"))
		fmt.Fprintf(w, "Batch operations: %d\n", st.Get(stats.BatchOperations))
		fmt.Fprintf(w, "Batch delay: %s\n", cfg.BatchDelay)
	}

	fmt.Fprintln(w, light)
	fmt.Fprintf(w, "Errors encountered: %d\n", st.Get(stats.Errors))
	fmt.Fprintln(w, heavy)
}
