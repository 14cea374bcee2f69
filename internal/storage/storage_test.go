package storage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/require"

	"github.com/standingshq/leaguecrawl/internal/config"
	"github.com/standingshq/leaguecrawl/internal/logger"
	"github.com/standingshq/leaguecrawl/internal/standings"
)

func testStorage(t *testing.T, handler http.Handler) *Storage {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := es.NewClient(es.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	cfg := config.ElasticsearchConfig{
		StandingsIndex: "standings",
		ActivityIndex:  "crawl_activity",
	}
	return New(client, cfg, logger.NewNoOp())
}

func TestSaveStandingsCountsCreatedAndUpdated(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		docIDs []string
	)
	st := testStorage(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.URL.Path, "/standings/_doc/"))

		mu.Lock()
		docIDs = append(docIDs, strings.TrimPrefix(r.URL.Path, "/standings/_doc/"))
		result := "created"
		if len(docIDs) > 1 {
			result = "updated"
		}
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":"` + result + `"}`))
	}))

	records := []standings.TeamRecord{
		{Name: "Alpha", LeagueID: "39", Rank: 1},
		{Name: "Beta", LeagueID: "39", Rank: 2},
	}

	result, err := st.SaveStandings(context.Background(), records)
	require.NoError(t, err)
	require.Equal(t, 1, result.Created)
	require.Equal(t, 1, result.Updated)
	require.Len(t, docIDs, 2)
	require.NotEqual(t, docIDs[0], docIDs[1])
}

func TestRecordDocIDIsDeterministicPerIdentity(t *testing.T) {
	t.Parallel()

	a := recordDocID(standings.TeamRecord{Name: "Alpha", LeagueID: "39", Points: 10})
	b := recordDocID(standings.TeamRecord{Name: "Alpha", LeagueID: "39", Points: 99})
	c := recordDocID(standings.TeamRecord{Name: "Alpha", LeagueID: "140"})

	require.Equal(t, a, b, "identity is (name, league); other fields upsert over it")
	require.NotEqual(t, a, c)
}

func TestLogActivityFillsTimestamp(t *testing.T) {
	t.Parallel()

	var captured ActivityEntry
	st := testStorage(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.URL.Path, "/crawl_activity/_doc/"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}))

	err := st.LogActivity(context.Background(), ActivityEntry{
		LeagueID: "39",
		Status:   "failed",
		Error:    "all extraction channels exhausted",
	})
	require.NoError(t, err)
	require.False(t, captured.Timestamp.IsZero())
	require.Equal(t, "failed", captured.Status)
}

func TestGetStandingsDecodesHits(t *testing.T) {
	t.Parallel()

	st := testStorage(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"hits": {"hits": [
				{"_source": {"name": "Alpha", "league_id": "39", "rank": 1, "points": 42,
					"crawled_at": "` + time.Now().Format(time.RFC3339) + `"}},
				{"_source": {"name": "Beta", "league_id": "39", "rank": 2, "points": 40}}
			]}
		}`))
	}))

	records, err := st.GetStandings(context.Background(), "39")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "Alpha", records[0].Name)
	require.Equal(t, 42, records[0].Points)
}

func TestOperationsRequireClient(t *testing.T) {
	t.Parallel()

	st := New(nil, config.ElasticsearchConfig{}, logger.NewNoOp())

	_, err := st.SaveStandings(context.Background(), nil)
	require.ErrorIs(t, err, ErrNotInitialized)

	require.ErrorIs(t, st.LogActivity(context.Background(), ActivityEntry{}), ErrNotInitialized)

	_, err = st.GetStandings(context.Background(), "1")
	require.ErrorIs(t, err, ErrNotInitialized)
}
