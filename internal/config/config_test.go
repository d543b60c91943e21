package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worksim/internal/config"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, time.Date(2026, 1, 6, 22, 0, 0, 0, time.UTC), cfg.NowTime())
	assert.Equal(t, cfg.NowTime().AddDate(0, 0, -180), cfg.HistoryStart())
	assert.Equal(t, 20*time.Second, cfg.Content.Timeout)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
}

func TestFromYAMLKeepsDefaultsForMissingKeys(t *testing.T) {
	cfg, err := config.FromYAML([]byte("seed: 7\nvolumes:\n  users: 12\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 12, cfg.Volumes.Users)
	assert.Equal(t, 0.15, cfg.Tasks.UnassignedRatio)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*config.Config){
		"zero workspaces":         func(c *config.Config) { c.Volumes.Workspaces = 0 },
		"ratio above one":         func(c *config.Config) { c.Tasks.UnassignedRatio = 1.2 },
		"empty weights":           func(c *config.Config) { c.Projects.StatusWeights = nil },
		"inverted range":          func(c *config.Config) { c.Subtasks.ChildrenPerParent = config.Range{Min: 4, Max: 1} },
		"unknown weekday":         func(c *config.Config) { c.Temporal.WeekdayWeights["funday"] = 1 },
		"unknown dependency":      func(c *config.Config) { c.Deps.TypeWeights["start_to_finish"] = 0.1 },
		"bad driver":              func(c *config.Config) { c.Storage.Driver = "mysql" },
		"postgres without dsn":    func(c *config.Config) { c.Storage.Driver = "postgres" },
		"tasks without projects":  func(c *config.Config) { c.Volumes.Projects = 0 },
		"missing completion band": func(c *config.Config) { delete(c.Tasks.CompletionRates, "bugs") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), config.ErrInvalid)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	_, err := config.Load(dir)
	require.Error(t, err)

	cfg, err := config.LoadOptional(dir)
	require.NoError(t, err)
	assert.Nil(t, cfg)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "worksim.yml"), []byte(config.GenerateDefault()), 0o644))
	cfg, err = config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 50000, cfg.Volumes.Tasks)
}

func TestParseWeekday(t *testing.T) {
	d, ok := config.ParseWeekday("Tuesday")
	require.True(t, ok)
	assert.Equal(t, time.Tuesday, d)
	_, ok = config.ParseWeekday("tue")
	assert.False(t, ok)
}
