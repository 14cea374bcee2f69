package shape_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standingshq/leaguecrawl/internal/shape"
)

func decode(t *testing.T, raw string) any {
	t.Helper()

	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestFindRecordsWellKnownContainers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want int
	}{
		{
			name: "top-level standings",
			raw:  `{"standings": [{"name": "Arsenal", "points": 42}]}`,
			want: 1,
		},
		{
			name: "teamList under state wrapper",
			raw:  `{"state": {"teamList": [{"name": "A"}, {"name": "B"}]}}`,
			want: 2,
		},
		{
			name: "clubs under data wrapper",
			raw:  `{"data": {"clubs": [{"team_name": "Milan"}]}}`,
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			records := shape.NewMatcher().FindRecords(decode(t, tt.raw), "team")
			require.Len(t, records, tt.want)
		})
	}
}

func TestFindRecordsRecursiveDescent(t *testing.T) {
	t.Parallel()

	raw := `{"payload": {"league": {"teamRows": [{"name": "Chelsea", "rank": 1}]}}}`
	records := shape.NewMatcher().FindRecords(decode(t, raw), "team")

	require.Len(t, records, 1)
	first, ok := records[0].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "Chelsea", first["name"])
}

func TestFindRecordsBeyondMaxDepthReturnsEmpty(t *testing.T) {
	t.Parallel()

	raw := `{"a": {"b": {"c": {"d": {"teams": [{"name": "TooDeep"}]}}}}}`
	records := shape.NewMatcher().FindRecords(decode(t, raw), "team")

	require.Empty(t, records)
}

func TestFindRecordsRejectsNonRecordSequences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "scalar sequence", raw: `{"teams": [1, 2, 3]}`},
		{name: "mappings without name field", raw: `{"teams": [{"points": 10}]}`},
		{name: "empty sequence", raw: `{"teams": []}`},
		{name: "scalar value", raw: `"just a string"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			records := shape.NewMatcher().FindRecords(decode(t, tt.raw), "team")
			require.Empty(t, records)
		})
	}
}

func TestFindRecordsPrefersContainerLookupOverDescent(t *testing.T) {
	t.Parallel()

	raw := `{
		"zzz_teamData": [{"name": "FromDescent"}],
		"standings": [{"name": "FromContainer"}]
	}`
	records := shape.NewMatcher().FindRecords(decode(t, raw), "team")

	require.Len(t, records, 1)
	first, ok := records[0].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "FromContainer", first["name"])
}
