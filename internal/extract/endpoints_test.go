package extract

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiscoverEndpoints(t *testing.T) {
	t.Parallel()

	origin, err := url.Parse("https://standings.example/data/1")
	require.NoError(t, err)

	body := `
		<script>
		fetch("https://api.standings.example/api/v1/teams");
		fetch("/api/standings?league=39");
		var leaguePath = "/data/140";
		</script>`

	candidates := DiscoverEndpoints(body, origin)
	require.Equal(t, []string{
		"https://api.standings.example/api/v1/teams",
		"https://standings.example/api/standings?league=39",
		"https://standings.example/data/140",
	}, candidates)
}

func TestDiscoverEndpointsDeduplicates(t *testing.T) {
	t.Parallel()

	origin, err := url.Parse("https://standings.example/")
	require.NoError(t, err)

	body := `"/api/teams" ... "/api/teams" ... "/api/teams"`
	candidates := DiscoverEndpoints(body, origin)
	require.Equal(t, []string{"https://standings.example/api/teams"}, candidates)
}

func TestDiscoverEndpointsPatternOrderBeforeSeenOrder(t *testing.T) {
	t.Parallel()

	origin, err := url.Parse("https://standings.example/")
	require.NoError(t, err)

	// The root-relative path appears first in the text, but absolute API
	// URLs are a higher-priority pattern.
	body := `"/api/relative" then https://cdn.example/api/absolute`
	candidates := DiscoverEndpoints(body, origin)
	require.Equal(t, []string{
		"https://cdn.example/api/absolute",
		"https://standings.example/api/relative",
	}, candidates)
}

func TestDiscoverEndpointsNoneFound(t *testing.T) {
	t.Parallel()

	origin, err := url.Parse("https://standings.example/")
	require.NoError(t, err)

	candidates := DiscoverEndpoints(`<html>nothing here</html>`, origin)
	require.Empty(t, candidates)
}
