package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/standingshq/leaguecrawl/internal/logger"
)

// endpointPatterns locate candidate API URLs in raw page text, in priority
// order: absolute API URLs, root-relative API paths, then the site's
// /data/<league> convention.
var endpointPatterns = []*regexp.Regexp{
	regexp.MustCompile(`https?://[^\s"'<>\\]+/api/[^\s"'<>\\]*`),
	regexp.MustCompile(`["'](/api/[^\s"'<>\\]+)["']`),
	regexp.MustCompile(`["'](/data/\d+)["']`),
}

// acceptJSON prefers structured-data responses from discovered endpoints.
const acceptJSON = "application/json, text/plain, */*"

// EndpointDiscoverer scans page text for backend API URLs and probes them
// until one yields an acceptable shape.
type EndpointDiscoverer struct {
	fetcher *Fetcher
	accept  func(value any) bool
	logger  logger.Interface
}

// NewEndpointDiscoverer creates the channel (b) extractor. The accept
// predicate decides per endpoint whether a parsed body is usable.
func NewEndpointDiscoverer(
	fetcher *Fetcher,
	accept func(value any) bool,
	log logger.Interface,
) *EndpointDiscoverer {
	return &EndpointDiscoverer{
		fetcher: fetcher,
		accept:  accept,
		logger:  log.WithComponent("endpoints"),
	}
}

// Extract fetches the page once, discovers endpoint candidates, and probes
// them in discovery order until the accept predicate passes. Failures on
// individual endpoints are isolated; the scan continues.
func (d *EndpointDiscoverer) Extract(ctx context.Context, pageURL string) Result {
	body, _, err := d.fetcher.GetText(ctx, pageURL, nil)
	if err != nil {
		d.logger.Debug("page fetch failed", "url", pageURL, "error", err)
		return Absent("page fetch failed: " + err.Error())
	}

	origin, err := url.Parse(pageURL)
	if err != nil {
		return Absent(fmt.Sprintf("invalid page url %q", pageURL))
	}

	candidates := DiscoverEndpoints(body, origin)
	if len(candidates) == 0 {
		return Absent("no endpoint candidates discovered")
	}
	d.logger.Debug("discovered endpoint candidates",
		"url", pageURL, "count", len(candidates))

	headers := map[string]string{
		"Referer": pageURL,
		"Accept":  acceptJSON,
	}

	for _, endpoint := range candidates {
		respBody, contentType, fetchErr := d.fetcher.GetText(ctx, endpoint, headers)
		if fetchErr != nil {
			d.logger.Debug("endpoint fetch failed", "endpoint", endpoint, "error", fetchErr)
			continue
		}

		// Non-structured responses are opaque text, excluded from matching.
		if !strings.Contains(strings.ToLower(contentType), "json") {
			continue
		}

		var value any
		if jsonErr := json.Unmarshal([]byte(respBody), &value); jsonErr != nil {
			d.logger.Debug("endpoint body not parseable", "endpoint", endpoint, "error", jsonErr)
			continue
		}

		if d.accept(value) {
			d.logger.Debug("endpoint accepted", "endpoint", endpoint)
			return Found(value)
		}
	}

	return Absent("no discovered endpoint produced usable data")
}

// DiscoverEndpoints applies the URL patterns to page text, resolving
// root-relative matches against the page origin. Candidates are returned
// in pattern order, then first-seen order, deduplicated within the run.
func DiscoverEndpoints(body string, origin *url.URL) []string {
	seen := make(map[string]struct{})
	var candidates []string

	add := func(endpoint string) {
		if _, dup := seen[endpoint]; dup {
			return
		}
		seen[endpoint] = struct{}{}
		candidates = append(candidates, endpoint)
	}

	for _, pattern := range endpointPatterns {
		for _, match := range pattern.FindAllStringSubmatch(body, -1) {
			endpoint := match[0]
			if len(match) > 1 {
				// Root-relative capture; resolve against the page origin.
				endpoint = origin.Scheme + "://" + origin.Host + match[1]
			}
			add(endpoint)
		}
	}

	return candidates
}
