// Package jikan implements the catalog-search provider client against the
// Jikan API (api.jikan.moe). All outbound calls pass through a shared rate
// limiter honouring Jikan's published limits, and throttled calls are retried
// a bounded number of times with a fixed cool-down.
package jikan

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/patrickmn/go-cache"

	"github.com/rdelattre/nfosync/internal/provider"
	"github.com/rdelattre/nfosync/internal/stats"
)

const (
	// DefaultBaseURL is the Jikan anime search endpoint.
	DefaultBaseURL = "https://api.jikan.moe/v4/anime"

	// Jikan's published rate limits.
	perMinuteLimit = 60
	perSecondLimit = 3

	// cooldown and maxRetries bound the retry-on-throttle loop. The original
	// behavior retried forever; a definitive failure is surfaced instead once
	// the attempts are exhausted.
	defaultCooldown = 5 * time.Second
	maxRetries      = 5

	cacheExpiration = 24 * time.Hour
)

// ErrThrottled is returned when the provider kept answering 429 through every
// retry attempt.
var ErrThrottled = errors.New("jikan: throttled after retries")

func init() {
	// Cached entries are persisted with gob via go-cache.
	gob.Register(&provider.Anime{})
}

// Config carries the optional knobs for a Client.
type Config struct {
	BaseURL    string        // defaults to DefaultBaseURL
	BatchDelay time.Duration // fixed delay before each call in batch mode
	CacheFile  string        // persisted response cache; "" keeps it in memory only
}

// Client is the catalog-search provider client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *provider.RateLimiter
	stats      *stats.Stats
	log        *log.Logger
	cache      *cache.Cache
	cacheFile  string
	batchDelay time.Duration
	cooldown   time.Duration

	sleep func(time.Duration)
}

// New creates a catalog client. Responses are cached by cleaned title and,
// when cfg.CacheFile is set, loaded from and persisted to disk.
func New(cfg Config, st *stats.Stats, logger *log.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		limiter:    provider.NewRateLimiter(perMinuteLimit, perSecondLimit),
		stats:      st,
		log:        logger,
		cache:      cache.New(cacheExpiration, 10*time.Minute),
		cacheFile:  cfg.CacheFile,
		batchDelay: cfg.BatchDelay,
		cooldown:   defaultCooldown,
		sleep:      time.Sleep,
	}

	if c.cacheFile != "" {
		_ = c.cache.LoadFile(c.cacheFile)
	}
	return c
}

// SaveCache persists the response cache to disk, when configured.
func (c *Client) SaveCache() error {
	if c.cacheFile == "" {
		return nil
	}
	return c.cache.SaveFile(c.cacheFile)
}

// CleanTitle normalizes a title for querying: colons and multiplication signs
// break Jikan's match scoring (e.g. "3×3 Eyes"), so both are replaced.
func CleanTitle(title string) string {
	title = strings.ReplaceAll(title, ":", " ")
	title = strings.ReplaceAll(title, "×", "x")
	return strings.TrimSpace(title)
}

// Search queries the catalog for a title and returns the top match, or
// (nil, nil) when the catalog has no match. Hard provider failures are
// returned as errors; callers treat them as "no data available".
func (c *Client) Search(ctx context.Context, title string) (*provider.Anime, error) {
	clean := CleanTitle(title)

	if cached, found := c.cache.Get(clean); found {
		if anime, ok := cached.(*provider.Anime); ok {
			return anime, nil
		}
	}

	var anime *provider.Anime
	attempt := func() error {
		c.limiter.Acquire()
		c.limiter.Record()
		c.stats.Inc(stats.JikanCalls)

		if c.batchDelay > 0 {
			c.sleep(c.batchDelay)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		q := url.Values{}
		q.Set("q", clean)
		q.Set("limit", "1")
		req.URL.RawQuery = q.Encode()

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("jikan: request failed: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			// Un-count the rejected attempt so the window reflects only
			// requests the provider actually served.
			c.limiter.Unrecord()
			c.stats.Add(stats.JikanCalls, -1)
			c.log.Warn("rate limited by Jikan API, cooling down", "wait", c.cooldown)
			return ErrThrottled
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("jikan: unexpected status %d", resp.StatusCode))
		}

		var parsed searchResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return backoff.Permanent(fmt.Errorf("jikan: decode response: %w", err))
		}
		anime = parsed.topMatch()
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(c.cooldown), maxRetries)
	if err := backoff.Retry(attempt, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}

	if anime != nil {
		c.cache.Set(clean, anime, cache.DefaultExpiration)
	}
	return anime, nil
}

type searchResponse struct {
	Data []struct {
		Title   string      `json:"title"`
		Score   float64     `json:"score"`
		Genres  []nameEntry `json:"genres"`
		Themes  []nameEntry `json:"themes"`
		Trailer struct {
			YoutubeID string `json:"youtube_id"`
			EmbedURL  string `json:"embed_url"`
			URL       string `json:"url"`
		} `json:"trailer"`
	} `json:"data"`
}

type nameEntry struct {
	Name string `json:"name"`
}

// topMatch converts the first result only; Jikan may return several matches
// but no disambiguation is attempted.
func (r *searchResponse) topMatch() *provider.Anime {
	if len(r.Data) == 0 {
		return nil
	}
	top := r.Data[0]

	anime := &provider.Anime{
		Title: top.Title,
		Score: top.Score,
		Trailer: provider.TrailerRef{
			YoutubeID: top.Trailer.YoutubeID,
			EmbedURL:  top.Trailer.EmbedURL,
			URL:       top.Trailer.URL,
		},
	}
	for _, g := range top.Genres {
		if g.Name != "" {
			anime.Genres = append(anime.Genres, g.Name)
		}
	}
	for _, t := range top.Themes {
		if t.Name != "" {
			anime.Themes = append(anime.Themes, t.Name)
		}
	}
	return anime
}
