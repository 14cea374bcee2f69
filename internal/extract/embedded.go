package extract

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/standingshq/leaguecrawl/internal/logger"
)

// stateIdentifiers are global-assignment targets the site is known to
// hydrate from, checked in order.
var stateIdentifiers = []string{
	"window.__INITIAL_STATE__",
	"window.__NUXT__",
	"var initialData",
}

// structuredScriptTypes are script content types parsed during the
// HTML-structural fallback scan.
var structuredScriptTypes = []string{
	"application/json",
	"application/ld+json",
}

// EmbeddedStateExtractor pulls the hydration state blob out of the raw
// page HTML without executing any scripts.
type EmbeddedStateExtractor struct {
	fetcher *Fetcher
	logger  logger.Interface
}

// NewEmbeddedStateExtractor creates the channel (a) extractor.
func NewEmbeddedStateExtractor(fetcher *Fetcher, log logger.Interface) *EmbeddedStateExtractor {
	return &EmbeddedStateExtractor{
		fetcher: fetcher,
		logger:  log.WithComponent("embedded"),
	}
}

// Extract fetches the page and looks for an embedded state object, first
// as a global assignment in script text, then by scanning structured-data
// script tags. Missing or malformed state is absent, not an error.
func (e *EmbeddedStateExtractor) Extract(ctx context.Context, pageURL string) Result {
	body, _, err := e.fetcher.GetText(ctx, pageURL, nil)
	if err != nil {
		e.logger.Debug("page fetch failed", "url", pageURL, "error", err)
		return Absent("page fetch failed: " + err.Error())
	}

	if value, ok := parseGlobalAssignment(body); ok {
		return Found(value)
	}

	if value, ok := scanStructuredScripts(body); ok {
		return Found(value)
	}

	return Absent("no embedded state found")
}

// parseGlobalAssignment finds the first `<identifier> = { ... }` occurrence
// and parses the balanced-brace object literal as JSON.
func parseGlobalAssignment(body string) (any, bool) {
	for _, ident := range stateIdentifiers {
		idx := strings.Index(body, ident)
		if idx < 0 {
			continue
		}

		rest := body[idx+len(ident):]
		rest = strings.TrimLeft(rest, " \t\r\n")
		if !strings.HasPrefix(rest, "=") {
			continue
		}
		rest = strings.TrimLeft(rest[1:], " \t\r\n")

		literal, ok := balancedObject(rest)
		if !ok {
			continue
		}

		var value any
		if err := json.Unmarshal([]byte(literal), &value); err != nil {
			continue
		}
		return value, true
	}

	return nil, false
}

// balancedObject returns the leading brace-balanced object literal of s.
// Braces inside JSON strings are skipped.
func balancedObject(s string) (string, bool) {
	if !strings.HasPrefix(s, "{") {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}

		switch r {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}

	return "", false
}

// scanStructuredScripts parses every script tag declaring a structured-data
// content type and merges the mappings that parse cleanly. A malformed tag
// is skipped, not fatal. When no mappings parse, the first parsed sequence
// is returned instead.
func scanStructuredScripts(body string) (any, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, false
	}

	merged := map[string]any{}
	var firstSequence []any

	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		scriptType, _ := sel.Attr("type")
		if !isStructuredType(scriptType) {
			return
		}

		var value any
		if err := json.Unmarshal([]byte(sel.Text()), &value); err != nil {
			return
		}

		switch v := value.(type) {
		case map[string]any:
			for key, val := range v {
				merged[key] = val
			}
		case []any:
			if firstSequence == nil {
				firstSequence = v
			}
		}
	})

	if len(merged) > 0 {
		return merged, true
	}
	if firstSequence != nil {
		return firstSequence, true
	}
	return nil, false
}

func isStructuredType(scriptType string) bool {
	scriptType = strings.ToLower(strings.TrimSpace(scriptType))
	for _, known := range structuredScriptTypes {
		if strings.HasPrefix(scriptType, known) {
			return true
		}
	}
	return false
}
