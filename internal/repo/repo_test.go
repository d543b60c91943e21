package repo_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worksim/internal/config"
	"worksim/internal/db"
	"worksim/internal/domain"
	"worksim/internal/generate"
	"worksim/internal/kernel"
	"worksim/internal/migrate"
	"worksim/internal/provenance"
	"worksim/internal/repo"
)

func openRepo(t *testing.T) repo.Repo {
	t.Helper()
	conn, err := db.Open(db.Config{Path: filepath.Join(t.TempDir(), "worksim.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrate.Migrate(context.Background(), conn))
	// a second run is a no-op
	require.NoError(t, migrate.Migrate(context.Background(), conn))
	return repo.New(conn)
}

var created = time.Date(2025, 9, 1, 10, 30, 0, 0, time.UTC)

func workspaces() []domain.Workspace {
	return []domain.Workspace{
		{GID: "1000000000000001", Name: "Acme", Domain: "acme.io", IsOrganization: true, CreatedAt: created},
		{GID: "1000000000000002", Name: "Globex", Domain: "globex.io", CreatedAt: created},
	}
}

func appendRecords(t *testing.T, sink interface {
	Append(context.Context, string, []string, [][]any) (repo.AppendResult, error)
}, table string, records any) repo.AppendResult {
	t.Helper()
	cols, rows, err := repo.Encode(records)
	require.NoError(t, err)
	res, err := sink.Append(context.Background(), table, cols, rows)
	require.NoError(t, err)
	return res
}

func TestEncode(t *testing.T) {
	n := 8.0
	due := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	cols, rows, err := repo.Encode([]domain.CustomFieldValue{{
		WorkspaceGID: "w", TaskGID: "t", FieldGID: "f",
		FieldValue: domain.FieldValue{NumberValue: &n},
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"workspace_gid", "task_gid", "field_gid", "text_value", "number_value", "enum_option_gid"}, cols)
	assert.Equal(t, []any{"w", "t", "f", nil, 8.0, nil}, rows[0])

	cols, rows, err = repo.Encode([]domain.Task{{GID: "t", CreatedAt: created, DueOn: &due}})
	require.NoError(t, err)
	vals := make(map[string]any, len(cols))
	for i, c := range cols {
		vals[c] = rows[0][i]
	}
	assert.Equal(t, "2025-09-01 10:30:00", vals["created_at"])
	assert.Equal(t, "2025-12-01", vals["due_on"])
	assert.Nil(t, vals["start_on"])
	assert.Nil(t, vals["assignee_gid"])
	assert.Equal(t, false, vals["completed"])

	_, rows, err = repo.Encode([]domain.Section{{GID: "s", OrderIndex: 3}})
	require.NoError(t, err)
	assert.Contains(t, rows[0], int64(3))

	_, _, err = repo.Encode(domain.Workspace{})
	assert.Error(t, err)
}

func TestAppendIsIdempotent(t *testing.T) {
	r := openRepo(t)
	first := appendRecords(t, r, "workspaces", workspaces())
	assert.Equal(t, repo.AppendResult{Table: "workspaces", Inserted: 2}, first)

	second := appendRecords(t, r, "workspaces", workspaces())
	assert.Equal(t, repo.AppendResult{Table: "workspaces", Skipped: 2}, second)

	counts, err := r.TableCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, counts["workspaces"])
	assert.Equal(t, 0, counts["tasks"])
	assert.Contains(t, counts, domain.ProvenanceTable)
}

func TestAppendCountsRejectedRecords(t *testing.T) {
	r := openRepo(t)
	appendRecords(t, r, "workspaces", workspaces())
	users := []domain.User{
		{GID: "u1", WorkspaceGID: "1000000000000001", Email: "a@acme.io", Status: "active", CreatedAt: created},
		{GID: "u2", WorkspaceGID: "missing", Email: "b@acme.io", Status: "active", CreatedAt: created},
		{GID: "u3", WorkspaceGID: "1000000000000001", Email: "c@acme.io", Status: "asleep", CreatedAt: created},
	}
	res := appendRecords(t, r, "users", users)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 2, res.Failed)
}

func TestAppendRejectsUnknownTables(t *testing.T) {
	r := openRepo(t)
	ctx := context.Background()
	_, err := r.Append(ctx, "users; DROP TABLE users", []string{"gid"}, [][]any{{"x"}})
	assert.ErrorIs(t, err, repo.ErrUnknownTable)
	_, err = r.Append(ctx, "users", []string{"gid) VALUES (1); --"}, [][]any{{"x"}})
	assert.Error(t, err)
	_, err = r.Page(ctx, "sqlite_master", 10, 0)
	assert.ErrorIs(t, err, repo.ErrUnknownTable)

	res, err := r.Append(ctx, "users", []string{"gid"}, nil)
	require.NoError(t, err)
	assert.Zero(t, res.Inserted)
}

func TestGeneratedDatasetLoadsCleanly(t *testing.T) {
	r := openRepo(t)
	ctx := context.Background()

	cfg := config.Default()
	cfg.Volumes = config.Volumes{
		Workspaces: 1, Users: 12, Teams: 2, Portfolios: 2, Goals: 3, Projects: 6,
		ProjectTemplates: 2, Tasks: 150, SubtaskRatio: 0.2, Tags: 8,
	}
	require.NoError(t, cfg.Validate())
	d, err := generate.Run(ctx, generate.NewEnv(cfg, kernel.New(cfg.Seed, cfg.Temporal), nil))
	require.NoError(t, err)

	for _, table := range domain.Tables {
		records, ok := d.Records(table)
		require.True(t, ok, table)
		res := appendRecords(t, r, table, records)
		assert.Zero(t, res.Failed, table)
		assert.Equal(t, d.Counts()[table], res.Inserted, table)
	}

	counts, err := r.TableCounts(ctx)
	require.NoError(t, err)
	for table, n := range d.Counts() {
		assert.Equal(t, n, counts[table], table)
	}

	checks, err := r.Consistency(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, checks)
	for _, c := range checks {
		assert.Zero(t, c.Violations, c.Name)
	}

	page, err := r.Page(ctx, "tasks", 5, 10)
	require.NoError(t, err)
	require.Len(t, page, 5)
	assert.Equal(t, d.Tasks[10].GID, page[0]["gid"])
}

func TestLatestProvenance(t *testing.T) {
	r := openRepo(t)
	ctx := context.Background()
	_, err := r.LatestProvenance(ctx)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	clock := created
	older := provenance.Writer{Sink: r, BatchID: "aaaa0001", Now: func() time.Time { return clock }}
	require.NoError(t, older.Record(ctx, "users", 3))

	clock = created.Add(time.Hour)
	newer := provenance.Writer{Sink: r, BatchID: "bbbb0002", Now: func() time.Time { return clock }}
	require.NoError(t, newer.Record(ctx, "tasks", 40))
	require.NoError(t, newer.Record(ctx, "workspaces", 1))

	got, err := r.LatestProvenance(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "workspaces", got[0].EntityType)
	assert.Equal(t, "tasks", got[1].EntityType)
	assert.Equal(t, 40, got[1].RowCount)
	assert.Equal(t, "bbbb0002", got[1].BatchID)
	assert.Equal(t, clock, got[1].Timestamp)
	assert.NotEmpty(t, got[1].SourceStrategy)
}
