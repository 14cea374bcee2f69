package standings

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/standingshq/leaguecrawl/internal/logger"
)

// nameCleaner strips everything outside word characters, whitespace, and
// CJK ideographs. Team names on the source site mix Latin and Chinese text
// with decorative symbols.
var nameCleaner = regexp.MustCompile(`[^\w\s\p{Han}]`)

// Field name variants seen across the three extraction channels.
var (
	nameFields   = []string{"name", "team_name", "teamName", "club_name"}
	idFields     = []string{"id", "team_id", "teamId"}
	rankFields   = []string{"rank", "position", "pos"}
	pointsFields = []string{"points", "pts"}
	playedFields = []string{"matches", "played", "matches_played"}
	winFields    = []string{"wins", "won"}
	drawFields   = []string{"draws", "drawn"}
	lossFields   = []string{"losses", "lost"}
	gfFields     = []string{"goals_for", "goalsFor", "gf"}
	gaFields     = []string{"goals_against", "goalsAgainst", "ga"}
	gdFields     = []string{"goal_diff", "goal_difference", "goalDiff", "gd"}
)

// Normalizer converts matched record mappings into TeamRecords.
type Normalizer struct {
	logger logger.Interface
	now    func() time.Time
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(log logger.Interface) *Normalizer {
	return &Normalizer{logger: log, now: time.Now}
}

// Normalize maps each element to a TeamRecord, preserving input order.
// Elements that are not mappings or whose cleaned name is empty are logged
// and skipped; they never abort the batch.
func (n *Normalizer) Normalize(elements []any, leagueID string) []TeamRecord {
	records := make([]TeamRecord, 0, len(elements))
	crawledAt := n.now()

	for i, elem := range elements {
		obj, ok := elem.(map[string]any)
		if !ok {
			n.logger.Warn("skipping non-mapping record element",
				"league_id", leagueID, "position", i)
			continue
		}

		name := CleanName(stringField(obj, nameFields))
		if name == "" {
			n.logger.Warn("skipping record with empty cleaned name",
				"league_id", leagueID, "position", i)
			continue
		}

		rec := TeamRecord{
			ID:           stringField(obj, idFields),
			Name:         name,
			LeagueID:     leagueID,
			Rank:         intField(obj, rankFields),
			Points:       intField(obj, pointsFields),
			Played:       intField(obj, playedFields),
			Wins:         intField(obj, winFields),
			Draws:        intField(obj, drawFields),
			Losses:       intField(obj, lossFields),
			GoalsFor:     intField(obj, gfFields),
			GoalsAgainst: intField(obj, gaFields),
			GoalDiff:     signedIntField(obj, gdFields),
			CrawledAt:    crawledAt,
		}
		if rec.ID == "" {
			rec.ID = strconv.Itoa(i)
		}
		if rec.Rank <= 0 {
			rec.Rank = i + 1
		}

		records = append(records, rec)
	}

	return records
}

// CleanName trims the name and strips characters outside word, whitespace,
// and CJK-ideograph ranges.
func CleanName(name string) string {
	return strings.TrimSpace(nameCleaner.ReplaceAllString(name, ""))
}

func stringField(obj map[string]any, keys []string) string {
	for _, key := range keys {
		switch v := obj[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// intField coerces the first present key to a non-negative integer.
// Unparsable and negative values become 0.
func intField(obj map[string]any, keys []string) int {
	n := signedIntField(obj, keys)
	if n < 0 {
		return 0
	}
	return n
}

func signedIntField(obj map[string]any, keys []string) int {
	for _, key := range keys {
		v, present := obj[key]
		if !present || v == nil {
			continue
		}
		return coerceInt(v)
	}
	return 0
}

func coerceInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case bool:
		return 0
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

// String implements fmt.Stringer for log output.
func (r TeamRecord) String() string {
	return fmt.Sprintf("%s (league %s, rank %d, %d pts)", r.Name, r.LeagueID, r.Rank, r.Points)
}
