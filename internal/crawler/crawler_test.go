package crawler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standingshq/leaguecrawl/internal/config"
	"github.com/standingshq/leaguecrawl/internal/crawler"
	"github.com/standingshq/leaguecrawl/internal/extract"
	"github.com/standingshq/leaguecrawl/internal/logger"
	"github.com/standingshq/leaguecrawl/internal/standings"
	"github.com/standingshq/leaguecrawl/internal/storage"
)

type fakeExtractor struct {
	results map[string]extract.Extraction
	errs    map[string]error
	urls    []string
	closed  bool
}

func (f *fakeExtractor) ExtractLeague(_ context.Context, pageURL, leagueID string) (extract.Extraction, error) {
	f.urls = append(f.urls, pageURL)
	if err := f.errs[leagueID]; err != nil {
		return extract.Extraction{}, err
	}
	return f.results[leagueID], nil
}

func (f *fakeExtractor) Close() error {
	f.closed = true
	return nil
}

type fakeStore struct {
	saved    [][]standings.TeamRecord
	activity []storage.ActivityEntry
	saveErr  error
}

func (f *fakeStore) SaveStandings(_ context.Context, records []standings.TeamRecord) (storage.SaveResult, error) {
	if f.saveErr != nil {
		return storage.SaveResult{}, f.saveErr
	}
	f.saved = append(f.saved, records)
	return storage.SaveResult{Created: len(records)}, nil
}

func (f *fakeStore) LogActivity(_ context.Context, entry storage.ActivityEntry) error {
	f.activity = append(f.activity, entry)
	return nil
}

func testConfig(leagues ...string) config.Config {
	return config.Config{
		BaseURL:   "https://standings.example",
		LeagueIDs: leagues,
	}
}

func TestRunCrawlsAllLeagues(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{
		results: map[string]extract.Extraction{
			"1": {Channel: extract.ChannelEmbedded, Records: []standings.TeamRecord{{Name: "A", LeagueID: "1"}}},
			"2": {Channel: extract.ChannelEndpoints, Records: []standings.TeamRecord{{Name: "B", LeagueID: "2"}}},
		},
	}
	store := &fakeStore{}

	c := crawler.New(testConfig("1", "2"), ext, store, logger.NewNoOp())
	summary, err := c.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, summary.Leagues)
	require.Equal(t, 2, summary.Succeeded)
	require.Equal(t, 0, summary.Failed)
	require.Equal(t, 2, summary.Created)
	require.Equal(t, []string{
		"https://standings.example/data/1",
		"https://standings.example/data/2",
	}, ext.urls)

	require.Len(t, store.activity, 2)
	require.Equal(t, "success", store.activity[0].Status)
	require.Equal(t, "embedded", store.activity[0].Channel)
}

func TestRunContinuesPastFailedLeague(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{
		results: map[string]extract.Extraction{
			"2": {Channel: extract.ChannelEmbedded, Records: []standings.TeamRecord{{Name: "B", LeagueID: "2"}}},
		},
		errs: map[string]error{"1": extract.ErrChannelsExhausted},
	}
	store := &fakeStore{}

	c := crawler.New(testConfig("1", "2"), ext, store, logger.NewNoOp())
	summary, err := c.Run(context.Background())
	require.NoError(t, err, "a failed league never aborts the run")

	require.Equal(t, 1, summary.Failed)
	require.Equal(t, 1, summary.Succeeded)

	require.Len(t, store.activity, 2)
	require.Equal(t, "failed", store.activity[0].Status)
	require.Contains(t, store.activity[0].Error, "exhausted")
	require.Equal(t, "success", store.activity[1].Status)
}

func TestRunRecordsPersistenceFailures(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{
		results: map[string]extract.Extraction{
			"1": {Channel: extract.ChannelEmbedded, Records: []standings.TeamRecord{{Name: "A", LeagueID: "1"}}},
		},
	}
	store := &fakeStore{saveErr: errors.New("cluster unavailable")}

	c := crawler.New(testConfig("1"), ext, store, logger.NewNoOp())
	summary, err := c.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, summary.Failed)
	require.Len(t, store.activity, 1)
	require.Equal(t, "persist_failed", store.activity[0].Status)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := crawler.New(testConfig("1", "2"), &fakeExtractor{}, &fakeStore{}, logger.NewNoOp())
	_, err := c.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCloseReleasesExtractor(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{}
	c := crawler.New(testConfig("1"), ext, &fakeStore{}, logger.NewNoOp())
	require.NoError(t, c.Close())
	require.True(t, ext.closed)
}
