// Package claude implements the translation provider client on top of the
// Anthropic Messages API. Limits are self-imposed and deliberately more
// conservative than the catalog provider's.
package claude

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/charmbracelet/log"

	"github.com/rdelattre/nfosync/internal/provider"
	"github.com/rdelattre/nfosync/internal/stats"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-3-5-haiku-latest"

const (
	perMinuteLimit = 50
	perSecondLimit = 2
	maxTokens      = 1024
)

const promptTemplate = `Translate the following text from English or Japanese to French.

IMPORTANT: Respond ONLY with the direct translation without commentary, explanation, or notes. Do not include phrases like 'Here is the translation' or 'I apologize'.

If the text is already in French, simply return it unchanged (no comments please).

Here's the text to translate:
%s`

// Config carries the knobs for a Client.
type Config struct {
	APIKey     string
	Model      string        // defaults to DefaultModel
	BatchDelay time.Duration // fixed delay before each call in batch mode
}

// Client is the translation provider client.
type Client struct {
	api        anthropic.Client
	model      string
	limiter    *provider.RateLimiter
	stats      *stats.Stats
	log        *log.Logger
	batchDelay time.Duration

	sleep func(time.Duration)
}

// New creates a translation client.
func New(cfg Config, st *stats.Stats, logger *log.Logger) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		api:        anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:      model,
		limiter:    provider.NewRateLimiter(perMinuteLimit, perSecondLimit),
		stats:      st,
		log:        logger,
		batchDelay: cfg.BatchDelay,
		sleep:      time.Sleep,
	}
}

// Prompt renders the fixed instruction template around the text to translate.
func Prompt(text string) string {
	return fmt.Sprintf(promptTemplate, text)
}

// Translate sends text to the translation provider and returns the translated
// string. Any failure is returned as an error; the caller must leave the
// original text untouched in that case.
func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", nil
	}

	c.limiter.Acquire()
	c.limiter.Record()
	c.stats.Inc(stats.ClaudeCalls)

	if c.batchDelay > 0 {
		c.sleep(c.batchDelay)
	}

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(Prompt(text))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude: translate: %w", err)
	}
	if len(msg.Content) == 0 {
		return "", fmt.Errorf("claude: empty response")
	}

	return strings.TrimSpace(msg.Content[0].Text), nil
}
