package extract

import (
	"context"
	"time"

	"github.com/standingshq/leaguecrawl/internal/logger"
)

// defaultReadyPredicate considers the page hydrated when either known
// state global is defined.
const defaultReadyPredicate = `window.__INITIAL_STATE__ !== undefined || window.__NUXT__ !== undefined`

// DefaultRenderTimeout bounds the hydration wait.
const DefaultRenderTimeout = 10 * time.Second

// stateExpressions read the hydration and store state from the live page
// runtime, in preference order.
var stateExpressions = []string{
	`window.__INITIAL_STATE__ || null`,
	`window.__NUXT__ || null`,
	`(window.__store__ && window.__store__.state) || null`,
}

// RenderedDOMExtractor loads the page in a real browser and reads state
// from the executed runtime. It is the most expensive channel and is
// attempted at most once per orchestration call.
type RenderedDOMExtractor struct {
	browser        Browser
	readyPredicate string
	timeout        time.Duration
	logger         logger.Interface
}

// NewRenderedDOMExtractor creates the channel (c) extractor. An empty
// readyPredicate selects the default hydration check; a non-positive
// timeout selects the default.
func NewRenderedDOMExtractor(
	browser Browser,
	readyPredicate string,
	timeout time.Duration,
	log logger.Interface,
) *RenderedDOMExtractor {
	if readyPredicate == "" {
		readyPredicate = defaultReadyPredicate
	}
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	return &RenderedDOMExtractor{
		browser:        browser,
		readyPredicate: readyPredicate,
		timeout:        timeout,
		logger:         log.WithComponent("rendered"),
	}
}

// Extract navigates to the page, waits for hydration, and reads state
// objects from the runtime, falling back to a structural scan of the
// rendered markup. Browser failures and wait timeouts are absent results.
func (r *RenderedDOMExtractor) Extract(ctx context.Context, pageURL string) Result {
	if err := r.browser.Navigate(ctx, pageURL); err != nil {
		r.logger.Warn("browser navigation failed", "url", pageURL, "error", err)
		return Absent("browser navigation failed: " + err.Error())
	}

	if err := r.browser.WaitUntil(ctx, r.readyPredicate, r.timeout); err != nil {
		r.logger.Debug("hydration wait timed out", "url", pageURL, "error", err)
		return Absent("hydration wait failed: " + err.Error())
	}

	for _, expr := range stateExpressions {
		var value any
		if err := r.browser.Evaluate(ctx, expr, &value); err != nil {
			r.logger.Debug("state evaluation failed", "expression", expr, "error", err)
			continue
		}
		if value != nil {
			return Found(value)
		}
	}

	var markup string
	if err := r.browser.Evaluate(ctx, `document.documentElement.outerHTML`, &markup); err != nil {
		return Absent("markup read failed: " + err.Error())
	}
	if value, ok := scanStructuredScripts(markup); ok {
		return Found(value)
	}

	return Absent("rendered page exposed no usable state")
}
