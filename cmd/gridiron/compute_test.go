package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gridiron-metrics/internal/config"
	"github.com/yourusername/gridiron-metrics/internal/models"
)

func withConfig(t *testing.T, c *config.Config) {
	t.Helper()
	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
}

func newFlagCmd(f *filterFlags) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	return cmd
}

func TestFilterFlagsDefaults(t *testing.T) {
	c := &config.Config{}
	c.App.CurrentSeason = 2024
	c.Computation.IncludePostseason = true
	c.Computation.DefaultClassification = "fbs"
	c.Schedule.Source = "database"
	withConfig(t, c)

	var f filterFlags
	cmd := newFlagCmd(&f)
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Equal(t, models.Filter{Season: 2024, Classification: "fbs"}, f.filter(cmd))
	assert.Equal(t, "database", f.sourceName())
}

func TestFilterFlagsOverrides(t *testing.T) {
	c := &config.Config{}
	c.App.CurrentSeason = 2024
	c.Computation.IncludePostseason = true
	withConfig(t, c)

	var f filterFlags
	cmd := newFlagCmd(&f)
	require.NoError(t, cmd.ParseFlags([]string{
		"--season", "2023",
		"--conference-only",
		"--include-postseason=false",
		"--classification", "FCS",
		"--conference", "Big Sky",
		"--source", "api",
	}))

	assert.Equal(t, models.Filter{
		Season:            2023,
		Classification:    "fcs",
		Conference:        "Big Sky",
		ConferenceOnly:    true,
		RegularSeasonOnly: true,
	}, f.filter(cmd))
	assert.Equal(t, "api", f.sourceName())
}

func writeSnapshotConfig(t *testing.T) string {
	t.Helper()
	snapshots, err := filepath.Abs("../../internal/api/testdata/snapshots")
	require.NoError(t, err)
	ratings, err := filepath.Abs("../../internal/api/testdata/ratings")
	require.NoError(t, err)

	yaml := fmt.Sprintf(`app:
  name: gridiron-metrics
  environment: development
  log_level: info
  current_season: 2024
database:
  name: cfb
  user: gridiron
data_source:
  name: file
  enabled: true
  base_url: file://%s
  ratings_file: %s/{season}.csv
schedule:
  source: api
`, snapshots, ratings)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return path
}

func TestSOSCommandPrintsJSONOnStdout(t *testing.T) {
	prevCfg, prevLog := cfg, appLog
	t.Cleanup(func() {
		cfg, appLog = prevCfg, prevLog
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"--config", writeSnapshotConfig(t), "sos", "--season", "2024"})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	var report models.Report[models.ScheduleStrength]
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report), stdout.String())
	assert.Equal(t, 2024, report.Season)
	require.Len(t, report.Teams, 3)
	assert.Equal(t, 1, report.Teams[0].Rank)

	assert.Contains(t, stderr.String(), "Computation pass")
}
