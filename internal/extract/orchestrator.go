package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/standingshq/leaguecrawl/internal/logger"
	"github.com/standingshq/leaguecrawl/internal/shape"
	"github.com/standingshq/leaguecrawl/internal/standings"
)

// Channel names the extraction channel that produced a result.
type Channel string

// Channels in cascade order.
const (
	ChannelEmbedded  Channel = "embedded"
	ChannelEndpoints Channel = "endpoints"
	ChannelRendered  Channel = "rendered"
)

// targetConcept is the key substring the shape matcher searches for.
const targetConcept = "team"

// ErrChannelsExhausted reports that every channel failed validity for a
// request. It is a definitive no-data outcome, not a crash.
var ErrChannelsExhausted = errors.New("all extraction channels exhausted")

// validityKeySets are the semantic field groups a match must collectively
// reference: an identifier, a rank, or a points-like key.
var validityKeySets = [][]string{
	{"id", "team_id", "teamId"},
	{"rank", "position", "pos"},
	{"points", "pts"},
}

// Extraction is a successful cascade outcome.
type Extraction struct {
	Records []standings.TeamRecord
	Channel Channel
}

// channelExtractor is one cascade stage.
type channelExtractor interface {
	Extract(ctx context.Context, pageURL string) Result
}

// Orchestrator sequences the three channel extractors per request,
// escalating to the next channel only when the previous one produced no
// valid team list. One orchestrator instance must not be driven by two
// concurrent calls; give each concurrent caller its own instance.
type Orchestrator struct {
	matcher    *shape.Matcher
	normalizer *standings.Normalizer
	embedded   channelExtractor
	endpoints  channelExtractor
	rendered   channelExtractor
	browser    Browser
	logger     logger.Interface
}

// OrchestratorConfig wires an Orchestrator.
type OrchestratorConfig struct {
	Fetcher        *Fetcher
	Browser        Browser
	ReadyPredicate string
	RenderTimeout  time.Duration
	Logger         logger.Interface
}

// NewOrchestrator builds the full cascade around a shared Fetcher and an
// optional Browser. A nil Browser disables the rendered channel; the
// cascade then exhausts after the endpoint scan.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	o := &Orchestrator{
		matcher:    shape.NewMatcher(),
		normalizer: standings.NewNormalizer(cfg.Logger),
		browser:    cfg.Browser,
		logger:     cfg.Logger.WithComponent("orchestrator"),
	}

	o.embedded = NewEmbeddedStateExtractor(cfg.Fetcher, cfg.Logger)
	o.endpoints = NewEndpointDiscoverer(cfg.Fetcher, o.acceptable, cfg.Logger)
	if cfg.Browser != nil {
		o.rendered = NewRenderedDOMExtractor(
			cfg.Browser, cfg.ReadyPredicate, cfg.RenderTimeout, cfg.Logger)
	}

	return o
}

// ExtractLeague runs the cascade for one league page. Channels are tried
// strictly in order and each at most once; the first one whose matched
// records pass the validity predicate wins. When all channels fail, the
// returned error wraps ErrChannelsExhausted and the record slice is empty.
func (o *Orchestrator) ExtractLeague(
	ctx context.Context,
	pageURL, leagueID string,
) (Extraction, error) {
	stages := []struct {
		channel   Channel
		extractor channelExtractor
	}{
		{ChannelEmbedded, o.embedded},
		{ChannelEndpoints, o.endpoints},
		{ChannelRendered, o.rendered},
	}

	for _, stage := range stages {
		if stage.extractor == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Extraction{}, err
		}

		result := stage.extractor.Extract(ctx, pageURL)
		if !result.Present {
			o.logger.Debug("channel produced no data",
				"channel", string(stage.channel), "league_id", leagueID,
				"reason", result.Diagnostic)
			continue
		}

		matched := o.matcher.FindRecords(result.Value, targetConcept)
		if !validMatch(matched) {
			o.logger.Debug("channel data failed validity",
				"channel", string(stage.channel), "league_id", leagueID,
				"matched", len(matched))
			continue
		}

		records := o.normalizer.Normalize(matched, leagueID)
		if len(records) == 0 {
			continue
		}

		o.logger.Info("extraction succeeded",
			"channel", string(stage.channel), "league_id", leagueID,
			"records", len(records))
		return Extraction{Records: records, Channel: stage.channel}, nil
	}

	o.logger.Warn("extraction exhausted all channels",
		"league_id", leagueID, "url", pageURL)
	return Extraction{}, fmt.Errorf("league %s: %w", leagueID, ErrChannelsExhausted)
}

// acceptable is the per-endpoint predicate for the endpoint scan: the
// parsed body must contain a valid team match.
func (o *Orchestrator) acceptable(value any) bool {
	return validMatch(o.matcher.FindRecords(value, targetConcept))
}

// validMatch requires a non-empty match whose elements collectively
// reference at least one identifier, rank, or points-like key.
func validMatch(matched []any) bool {
	if len(matched) == 0 {
		return false
	}

	for _, elem := range matched {
		obj, ok := elem.(map[string]any)
		if !ok {
			continue
		}
		for _, keySet := range validityKeySets {
			for _, key := range keySet {
				if _, present := obj[key]; present {
					return true
				}
			}
		}
	}

	return false
}

// Close releases the browser session. Safe when no browser was configured.
func (o *Orchestrator) Close() error {
	if o.browser == nil {
		return nil
	}
	return o.browser.Close()
}
