// Package youtube implements the video-search provider client used to
// resolve trailers. Video search is an optional capability: it is only
// consulted when the catalog's trailer descriptor yields no identifier.
package youtube

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/charmbracelet/log"
	"google.golang.org/api/option"
	youtube "google.golang.org/api/youtube/v3"

	"github.com/rdelattre/nfosync/internal/provider"
	"github.com/rdelattre/nfosync/internal/stats"
)

const maxResults = 5

var (
	embedPattern = regexp.MustCompile(`(?:youtube\.com/embed/|youtu\.be/)([a-zA-Z0-9_-]+)`)
	watchPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([a-zA-Z0-9_-]+)`)
)

// ExtractVideoID pulls a video identifier out of the catalog's trailer
// descriptor: the direct id field first, then the embed URL, then the watch
// URL. Returns "" when no identifier can be extracted.
func ExtractVideoID(ref provider.TrailerRef) string {
	if ref.YoutubeID != "" {
		return ref.YoutubeID
	}
	if m := embedPattern.FindStringSubmatch(ref.EmbedURL); m != nil {
		return m[1]
	}
	if m := watchPattern.FindStringSubmatch(ref.URL); m != nil {
		return m[1]
	}
	return ""
}

// Config carries the knobs for a Client.
type Config struct {
	APIKey     string
	BatchDelay time.Duration // fixed delay before each call in batch mode
}

// Client is the video-search provider client.
type Client struct {
	svc        *youtube.Service
	stats      *stats.Stats
	log        *log.Logger
	batchDelay time.Duration

	sleep func(time.Duration)
}

// New creates a video-search client against the YouTube Data API.
func New(ctx context.Context, cfg Config, st *stats.Stats, logger *log.Logger) (*Client, error) {
	svc, err := youtube.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("youtube: create service: %w", err)
	}
	return &Client{
		svc:        svc,
		stats:      st,
		log:        logger,
		batchDelay: cfg.BatchDelay,
		sleep:      time.Sleep,
	}, nil
}

// SearchTrailer queries for "<title> official trailer", top five results
// ordered by view count, and returns the identifier of the highest-ranked
// one. Returns ("", nil) when the search yields no results.
func (c *Client) SearchTrailer(ctx context.Context, title string) (string, error) {
	if c.batchDelay > 0 {
		c.sleep(c.batchDelay)
	}

	c.stats.Inc(stats.YouTubeCalls)
	resp, err := c.svc.Search.List([]string{"snippet"}).
		Q(title + " official trailer").
		MaxResults(maxResults).
		Type("video").
		Order("viewCount").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("youtube: search: %w", err)
	}
	if len(resp.Items) == 0 {
		c.log.Warn("no YouTube trailer found", "title", title)
		return "", nil
	}

	top := resp.Items[0]
	c.log.Info("found YouTube trailer", "title", title, "video", top.Id.VideoId)
	return top.Id.VideoId, nil
}
