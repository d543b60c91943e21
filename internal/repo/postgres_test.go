package repo_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worksim/internal/domain"
	"worksim/internal/migrate"
	"worksim/internal/provenance"
	"worksim/internal/repo"
)

func setupPG(t *testing.T) repo.PGRepo {
	t.Helper()
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	schema := fmt.Sprintf("worksim_test_%d", time.Now().UnixNano())
	cfg, err := pgxpool.ParseConfig(databaseURL)
	require.NoError(t, err)
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
		return err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", schema))
	if err != nil {
		pool.Close()
		t.Fatalf("create schema: %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, fmt.Sprintf("DROP SCHEMA %s CASCADE", schema))
		pool.Close()
	})
	require.NoError(t, migrate.MigratePool(ctx, pool))
	require.NoError(t, migrate.MigratePool(ctx, pool))
	return repo.NewPG(pool)
}

func TestPGAppendIsIdempotent(t *testing.T) {
	r := setupPG(t)
	assert.Equal(t, 2, appendRecords(t, r, "workspaces", workspaces()).Inserted)
	assert.Equal(t, 2, appendRecords(t, r, "workspaces", workspaces()).Skipped)

	counts, err := r.TableCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, counts["workspaces"])
}

func TestPGRejectedRecordDoesNotAbortBatch(t *testing.T) {
	r := setupPG(t)
	appendRecords(t, r, "workspaces", workspaces())
	users := []domain.User{
		{GID: "u1", WorkspaceGID: "missing", Email: "a@acme.io", Status: "active", CreatedAt: created},
		{GID: "u2", WorkspaceGID: "1000000000000001", Email: "b@acme.io", Status: "active", CreatedAt: created},
	}
	res := appendRecords(t, r, "users", users)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Inserted)

	checks, err := r.Consistency(context.Background())
	require.NoError(t, err)
	for _, c := range checks {
		assert.Zero(t, c.Violations, c.Name)
	}
}

func TestPGLatestProvenance(t *testing.T) {
	r := setupPG(t)
	ctx := context.Background()
	_, err := r.LatestProvenance(ctx)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	w := provenance.Writer{Sink: r, BatchID: "cccc0003", Now: func() time.Time { return created }}
	require.NoError(t, w.Record(ctx, "teams", 4))
	got, err := r.LatestProvenance(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].RowCount)
	assert.Equal(t, created, got[0].Timestamp)
}
