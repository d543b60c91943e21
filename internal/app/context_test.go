package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worksim/internal/app"
	"worksim/internal/config"
	"worksim/internal/db"
	"worksim/internal/domain"
)

func TestResolveConfigDefaultsWithoutFile(t *testing.T) {
	cfg, err := app.ResolveConfig(t.TempDir(), "", app.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestResolveConfigAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(config.Path(dir), []byte("seed: 5\nvolumes:\n  tasks: 900\n"), 0o644))

	seed := int64(11)
	llm := false
	cfg, err := app.ResolveConfig(dir, "", app.Overrides{
		Seed:      &seed,
		LLM:       &llm,
		JWTSecret: "s3cret",
		Volumes:   map[string]int{"projects": 7},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), cfg.Seed)
	assert.Equal(t, 900, cfg.Volumes.Tasks)
	assert.Equal(t, 7, cfg.Volumes.Projects)
	assert.Equal(t, "s3cret", cfg.Server.JWTSecret)

	cfg, err = app.ResolveConfig(dir, "", app.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), cfg.Seed)
}

func TestResolveConfigRejectsBadOverrides(t *testing.T) {
	_, err := app.ResolveConfig(t.TempDir(), "", app.Overrides{Driver: "postgres"})
	assert.ErrorIs(t, err, config.ErrInvalid, "postgres needs a dsn")

	_, err = app.ResolveConfig(t.TempDir(), "", app.Overrides{Volumes: map[string]int{"galaxies": 3}})
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, err = app.ResolveConfig(t.TempDir(), filepath.Join(t.TempDir(), "missing.yml"), app.Overrides{})
	assert.Error(t, err)
}

func TestOpenStoreMigratesSQLite(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	store, closeFn, err := app.OpenStore(ctx, dir, config.Storage{Driver: "sqlite"}, zerolog.Nop())
	require.NoError(t, err)
	defer closeFn()

	_, err = os.Stat(db.Path(dir))
	require.NoError(t, err)
	counts, err := store.TableCounts(ctx)
	require.NoError(t, err)
	assert.Len(t, counts, len(domain.Tables)+1)

	_, _, err = app.OpenStore(ctx, dir, config.Storage{Driver: "oracle"}, zerolog.Nop())
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestTextBackend(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, app.TextBackend(ctx, config.Content{}, zerolog.Nop()))

	down := config.Content{LLMEnabled: true, OllamaHost: "http://127.0.0.1:1", Model: "m"}
	assert.Nil(t, app.TextBackend(ctx, down, zerolog.Nop()))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()
	up := config.Content{LLMEnabled: true, OllamaHost: srv.URL, Model: "m"}
	assert.NotNil(t, app.TextBackend(ctx, up, zerolog.Nop()))
}
