// Package crawler runs the extraction cascade across configured leagues
// and persists the results.
package crawler

import (
	"context"
	"fmt"
	"strings"

	"github.com/standingshq/leaguecrawl/internal/config"
	"github.com/standingshq/leaguecrawl/internal/extract"
	"github.com/standingshq/leaguecrawl/internal/logger"
	"github.com/standingshq/leaguecrawl/internal/ratelimit"
	"github.com/standingshq/leaguecrawl/internal/retry"
	"github.com/standingshq/leaguecrawl/internal/standings"
	"github.com/standingshq/leaguecrawl/internal/storage"
)

// Extractor runs the cascade for one league page.
type Extractor interface {
	ExtractLeague(ctx context.Context, pageURL, leagueID string) (extract.Extraction, error)
	Close() error
}

// Store persists extraction results and activity entries.
type Store interface {
	SaveStandings(ctx context.Context, records []standings.TeamRecord) (storage.SaveResult, error)
	LogActivity(ctx context.Context, entry storage.ActivityEntry) error
}

// Summary reports one crawl run across all configured leagues.
type Summary struct {
	Leagues   int
	Succeeded int
	Failed    int
	Created   int
	Updated   int
}

// Crawler extracts standings for every configured league. A failed league
// is logged and skipped; it never stops the run.
type Crawler struct {
	cfg       config.Config
	extractor Extractor
	store     Store
	logger    logger.Interface
}

// New creates a Crawler around an existing extractor and store.
func New(cfg config.Config, extractor Extractor, store Store, log logger.Interface) *Crawler {
	return &Crawler{
		cfg:       cfg,
		extractor: extractor,
		store:     store,
		logger:    log.WithComponent("crawler"),
	}
}

// NewFromConfig wires the full stack: rate-limited fetcher, browser
// session, cascade orchestrator, and Elasticsearch persistence.
func NewFromConfig(cfg config.Config, log logger.Interface) (*Crawler, error) {
	client, err := storage.NewClient(cfg.Elasticsearch, log)
	if err != nil {
		return nil, err
	}
	store := storage.New(client, cfg.Elasticsearch, log)

	fetcher := extract.NewFetcher(
		extract.FetcherConfig{
			UserAgent:      cfg.UserAgent,
			RequestTimeout: cfg.RequestTimeout,
		},
		ratelimit.New(cfg.RateLimitMax, cfg.RateLimitWindow),
		retry.NewPolicy(cfg.MaxRetries, cfg.RetryDelay, cfg.BackoffMultiplier),
		log,
	)

	orchestrator := extract.NewOrchestrator(extract.OrchestratorConfig{
		Fetcher:       fetcher,
		Browser:       extract.NewChromeBrowser(cfg.UserAgent),
		RenderTimeout: cfg.RenderTimeout,
		Logger:        log,
	})

	return New(cfg, orchestrator, store, log), nil
}

// Run crawls every configured league sequentially and returns a summary.
func (c *Crawler) Run(ctx context.Context) (Summary, error) {
	summary := Summary{Leagues: len(c.cfg.LeagueIDs)}

	for _, leagueID := range c.cfg.LeagueIDs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		c.crawlLeague(ctx, leagueID, &summary)
	}

	c.logger.Info("crawl run finished",
		"leagues", summary.Leagues,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"created", summary.Created,
		"updated", summary.Updated)
	return summary, nil
}

func (c *Crawler) crawlLeague(ctx context.Context, leagueID string, summary *Summary) {
	pageURL := c.LeagueURL(leagueID)

	extraction, err := c.extractor.ExtractLeague(ctx, pageURL, leagueID)
	if err != nil {
		summary.Failed++
		c.logger.Warn("league extraction failed", "league_id", leagueID, "error", err)
		c.logActivity(ctx, storage.ActivityEntry{
			LeagueID: leagueID,
			Status:   "failed",
			Error:    err.Error(),
		})
		return
	}

	saved, err := c.store.SaveStandings(ctx, extraction.Records)
	if err != nil {
		summary.Failed++
		c.logger.Error("failed to persist standings", "league_id", leagueID, "error", err)
		c.logActivity(ctx, storage.ActivityEntry{
			LeagueID: leagueID,
			Channel:  string(extraction.Channel),
			Status:   "persist_failed",
			Count:    len(extraction.Records),
			Error:    err.Error(),
		})
		return
	}

	summary.Succeeded++
	summary.Created += saved.Created
	summary.Updated += saved.Updated
	c.logActivity(ctx, storage.ActivityEntry{
		LeagueID: leagueID,
		Channel:  string(extraction.Channel),
		Status:   "success",
		Count:    len(extraction.Records),
	})
}

func (c *Crawler) logActivity(ctx context.Context, entry storage.ActivityEntry) {
	if err := c.store.LogActivity(ctx, entry); err != nil {
		c.logger.Warn("failed to record activity entry",
			"league_id", entry.LeagueID, "error", err)
	}
}

// LeagueURL builds the standings page URL for a league.
func (c *Crawler) LeagueURL(leagueID string) string {
	return fmt.Sprintf("%s/data/%s", strings.TrimRight(c.cfg.BaseURL, "/"), leagueID)
}

// Close releases the extractor's resources, including any browser session.
func (c *Crawler) Close() error {
	return c.extractor.Close()
}
