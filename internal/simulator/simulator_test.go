package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokertable/internal/table"
)

func TestNew(t *testing.T) {
	t.Parallel()

	sim := New(Config{Hands: 100, Seed: 12345, Settings: table.DefaultSettings()})
	assert.Equal(t, 1, sim.config.Tables)
	assert.Equal(t, 6, sim.config.Players)
	assert.Equal(t, []string{"call", "chart", "fold", "maniac", "rand"}, sim.config.Strategies)
	assert.Zero(t, sim.config.Settings.NextHandDelay)
}

func TestRunConservesChips(t *testing.T) {
	t.Parallel()

	sim := New(Config{
		Tables:  3,
		Hands:   150,
		Players: 6,
		Seed:    7,
		Logger:  log.New(io.Discard),
	})
	report, err := sim.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Tables, 3)
	assert.Equal(t, 450, report.Hands())
	for _, tr := range report.Tables {
		assert.Equal(t, 150, tr.Hands, tr.ID)
		assert.Equal(t, (6+tr.Rebuys)*1000, tr.Chips, tr.ID)
		assert.Zero(t, tr.Aborted, tr.ID)
	}

	require.Len(t, report.Players, 18)
	net := 0
	for _, p := range report.Players {
		net += p.NetChips
	}
	assert.Zero(t, net, "chips won must equal chips lost")
}

func TestRunMultipleBoards(t *testing.T) {
	t.Parallel()

	settings := table.Settings{AllInDealCount: 2}
	sim := New(Config{
		Hands:      300,
		Players:    2,
		Seed:       3,
		Strategies: []string{"maniac", "call"},
		Settings:   settings,
	})
	report, err := sim.Run(context.Background())
	require.NoError(t, err)

	tr := report.Tables[0]
	assert.Positive(t, tr.MultiRun)
	assert.Positive(t, tr.Rebuys)
	assert.GreaterOrEqual(t, tr.Showdowns, tr.MultiRun)
}

func TestRunIsDeterministic(t *testing.T) {
	t.Parallel()

	run := func() *Report {
		report, err := New(Config{Tables: 2, Hands: 60, Players: 4, Seed: 99}).Run(context.Background())
		require.NoError(t, err)
		return report
	}
	a, b := run(), run()
	assert.Equal(t, a.Tables, b.Tables)
	assert.Equal(t, a.Players, b.Players)
}

func TestRunWithDisconnects(t *testing.T) {
	t.Parallel()

	report, err := New(Config{
		Hands:          100,
		Players:        5,
		Seed:           11,
		DisconnectRate: 0.3,
	}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, report.Hands())
}

func TestRunRejectsBadConfig(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Hands: 1, Strategies: []string{"psychic"}}).Run(context.Background())
	assert.ErrorContains(t, err, "psychic")

	_, err = New(Config{Hands: 1, Players: 9}).Run(context.Background())
	assert.ErrorContains(t, err, "do not fit")

	_, err = New(Config{Hands: 1, Settings: table.Settings{SmallBlind: 20, BigBlind: 10}}).Run(context.Background())
	assert.ErrorContains(t, err, "big blind")
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Config{Hands: 10}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrintSummary(t *testing.T) {
	t.Parallel()

	report, err := New(Config{Hands: 20, Players: 3, Seed: 1}).Run(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintSummary(&buf, report)
	out := buf.String()
	assert.Contains(t, out, "seed 1")
	assert.Contains(t, out, "Hands played: 20")
	assert.Contains(t, out, "table-1")
	assert.Contains(t, out, "t1-p1")
}

func TestReportWriteFile(t *testing.T) {
	t.Parallel()

	report, err := New(Config{Hands: 10, Players: 2, Seed: 5}).Run(context.Background())
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")
	require.NoError(t, report.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, report.Tables, got.Tables)
	assert.Equal(t, int64(5), got.Seed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}
