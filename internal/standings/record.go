// Package standings defines the canonical team record and the normalizer
// that produces it from loosely-typed extraction output.
package standings

import "time"

// TeamRecord is the canonical standings entity. Its persistence identity is
// (Name, LeagueID); a later record with the same identity overwrites an
// earlier one.
type TeamRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	LeagueID     string    `json:"league_id"`
	Rank         int       `json:"rank"`
	Points       int       `json:"points"`
	Played       int       `json:"played"`
	Wins         int       `json:"wins"`
	Draws        int       `json:"draws"`
	Losses       int       `json:"losses"`
	GoalsFor     int       `json:"goals_for"`
	GoalsAgainst int       `json:"goals_against"`
	GoalDiff     int       `json:"goal_diff"`
	CrawledAt    time.Time `json:"crawled_at"`
}
