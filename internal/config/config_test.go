package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/standingshq/leaguecrawl/internal/config"
)

func TestWithDefaults(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		BaseURL:   "https://standings.example",
		LeagueIDs: []string{"39"},
	}.WithDefaults()

	require.Equal(t, config.DefaultUserAgent, cfg.UserAgent)
	require.Equal(t, config.DefaultRequestTimeout, cfg.RequestTimeout)
	require.Equal(t, config.DefaultMaxRetries, cfg.MaxRetries)
	require.Equal(t, config.DefaultRetryDelay, cfg.RetryDelay)
	require.InEpsilon(t, config.DefaultBackoffMultiplier, cfg.BackoffMultiplier, 0.0001)
	require.Equal(t, config.DefaultRateLimitMax, cfg.RateLimitMax)
	require.Equal(t, config.DefaultRateLimitWindow, cfg.RateLimitWindow)
	require.Equal(t, config.DefaultRenderTimeout, cfg.RenderTimeout)
	require.Equal(t, "standings", cfg.Elasticsearch.StandingsIndex)
	require.Equal(t, "crawl_activity", cfg.Elasticsearch.ActivityIndex)
}

func TestWithDefaultsPreservesExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		BaseURL:         "https://standings.example",
		LeagueIDs:       []string{"39"},
		UserAgent:       "custom-agent/2.0",
		RequestTimeout:  5 * time.Second,
		RateLimitMax:    3,
		RateLimitWindow: 10 * time.Second,
	}.WithDefaults()

	require.Equal(t, "custom-agent/2.0", cfg.UserAgent)
	require.Equal(t, 5*time.Second, cfg.RequestTimeout)
	require.Equal(t, 3, cfg.RateLimitMax)
	require.Equal(t, 10*time.Second, cfg.RateLimitWindow)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.Config
		wantErr error
	}{
		{
			name: "valid",
			cfg: config.Config{
				BaseURL:   "https://standings.example",
				LeagueIDs: []string{"39", "140"},
			},
			wantErr: nil,
		},
		{
			name:    "missing base url",
			cfg:     config.Config{LeagueIDs: []string{"39"}},
			wantErr: config.ErrMissingBaseURL,
		},
		{
			name:    "no leagues",
			cfg:     config.Config{BaseURL: "https://standings.example"},
			wantErr: config.ErrNoLeagues,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
