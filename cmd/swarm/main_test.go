package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() SimConfig {
	cfg := DefaultSimConfig()
	cfg.Particles = 200
	cfg.Steps = 5
	cfg.StepLength = 0.05
	cfg.Radius = 0.1
	cfg.LeafCapacity = 4
	cfg.Seed = 7
	return cfg
}

func TestSimulatePeriodicKeepsParticles(t *testing.T) {
	for _, index := range []string{"celllist", "bruteforce"} {
		cfg := testConfig()
		cfg.Index = index
		stats, err := simulate(context.Background(), cfg, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, 5, stats.Steps)
		assert.Equal(t, 200, stats.Particles)
		assert.Zero(t, stats.Dropped)
		assert.GreaterOrEqual(t, stats.MeanNeighbours, 0.0)
	}
}

func TestSimulateBoundedDropsParticles(t *testing.T) {
	cfg := testConfig()
	cfg.Periodic = false
	cfg.StepLength = 0.5
	cfg.Steps = 20
	stats, err := simulate(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Less(t, stats.Particles, 200)
	assert.Equal(t, 200, stats.Particles+stats.Dropped)
}

func TestSimulateIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	run := func(name string) []byte {
		cfg := testConfig()
		cfg.Snapshot = filepath.Join(dir, name)
		_, err := simulate(context.Background(), cfg, zerolog.Nop())
		require.NoError(t, err)
		data, err := os.ReadFile(cfg.Snapshot)
		require.NoError(t, err)
		return data
	}
	first, second := run("a.jsonl"), run("b.jsonl")
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestSimulateStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats, err := simulate(ctx, testConfig(), zerolog.Nop())
	require.NoError(t, err)
	assert.Zero(t, stats.Steps)
	assert.Equal(t, 200, stats.Particles)
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swarm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("particles: 50\nindex: bruteforce\nsteps: 3\nseed: 4\n"), 0o600))
	t.Setenv("SWARM_STEPS", "7")
	t.Setenv("SWARM_LEAF_CAPACITY", "3")

	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	addSimFlags(flags)
	require.NoError(t, flags.Set("seed", "9"))

	cfg, err := loadConfig(flags, path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Particles)
	assert.Equal(t, "bruteforce", cfg.Index)
	assert.Equal(t, 7, cfg.Steps)
	assert.Equal(t, 3, cfg.LeafCapacity)
	assert.Equal(t, uint64(9), cfg.Seed)
	assert.Equal(t, 2, cfg.Dimension)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		flag, value string
	}{
		{"index", "kdtree"},
		{"size", "0"},
		{"particles", "-1"},
		{"profile", "block"},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
			addSimFlags(flags)
			require.NoError(t, flags.Set(tt.flag, tt.value))
			_, err := loadConfig(flags, "")
			assert.Error(t, err)
		})
	}

	_, err := loadConfig(pflag.NewFlagSet("run", pflag.ContinueOnError), "missing.toml")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version", "--pretty=false"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), Version)
}
