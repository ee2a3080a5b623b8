package navworld_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironspire/navcore/navworld"
)

func TestWriteDefaultThenLoadConfigRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, navworld.Config{}.WriteDefault(&buf))

	cfg, err := navworld.LoadConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, navworld.DefaultConfig(), cfg)
}

func TestLoadConfigOverridesOnlyNamedFields(t *testing.T) {
	partial := strings.NewReader(`
graph:
  maxNodes: 1024
search:
  heuristicScale: 0.5
`)
	cfg, err := navworld.LoadConfig(partial)
	require.NoError(t, err)

	assert.Equal(t, 1024, cfg.Graph.MaxNodes)
	assert.Equal(t, navworld.DefaultConfig().Graph.MaxLinks, cfg.Graph.MaxLinks)
	assert.InDelta(t, 0.5, cfg.Search.HeuristicScale, 1e-6)
	assert.Equal(t, navworld.DefaultConfig().ActionPacks, cfg.ActionPacks)
}

func TestFinalizeProbeMaxDurationRoundTripsAsDurationString(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, navworld.DefaultConfig().WriteDefault(&buf))
	assert.Contains(t, buf.String(), "2ms")

	cfg, err := navworld.LoadConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Millisecond, time.Duration(cfg.PathBuild.FinalizeProbeMaxDuration))
}

func TestSearchConfigStrategySelectsNamedOpenList(t *testing.T) {
	cfg := navworld.SearchConfig{OpenListStrategy: "bruteForce"}
	strat := cfg.Strategy()()
	assert.True(t, strat.Empty())

	cfg = navworld.SearchConfig{OpenListStrategy: "robinHood"}
	strat = cfg.Strategy()()
	assert.True(t, strat.Empty())
}
