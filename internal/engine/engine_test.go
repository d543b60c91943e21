package engine_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worksim/internal/config"
	"worksim/internal/content"
	"worksim/internal/db"
	"worksim/internal/domain"
	"worksim/internal/engine"
	"worksim/internal/migrate"
	"worksim/internal/repo"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Volumes = config.Volumes{
		Workspaces: 1, Users: 10, Teams: 2, Portfolios: 2, Goals: 2, Projects: 4,
		ProjectTemplates: 2, Tasks: 120, SubtaskRatio: 0.2, Tags: 6,
	}
	return cfg
}

func newEngine(sink engine.Sink) engine.Engine {
	eng := engine.New(sink, testConfig())
	eng.Log = zerolog.Nop()
	eng.Now = func() time.Time { return time.Date(2026, 1, 7, 8, 0, 0, 0, time.UTC) }
	return eng
}

type call struct {
	table string
	rows  int
}

type memSink struct {
	calls []call
	fail  string
}

func (m *memSink) Append(_ context.Context, table string, _ []string, rows [][]any) (repo.AppendResult, error) {
	if table == m.fail {
		return repo.AppendResult{}, errors.New("disk full")
	}
	m.calls = append(m.calls, call{table, len(rows)})
	return repo.AppendResult{Table: table, Inserted: len(rows)}, nil
}

func TestDryRunNeedsNoSink(t *testing.T) {
	eng := newEngine(nil)
	_, _, err := eng.Run(context.Background(), engine.Options{})
	require.ErrorIs(t, err, engine.ErrNoSink)

	d, sum, err := eng.Run(context.Background(), engine.Options{DryRun: true, Verify: true})
	require.NoError(t, err)
	assert.Empty(t, sum.BatchID)
	require.Len(t, sum.Tables, len(domain.Tables))
	assert.Equal(t, 120, d.Counts()["tasks"])
	require.NotNil(t, sum.Report)
	assert.Empty(t, sum.Report.Issues)
}

func TestRunAppendsTablesInOrderWithProvenance(t *testing.T) {
	sink := &memSink{}
	d, sum, err := newEngine(sink).Run(context.Background(), engine.Options{})
	require.NoError(t, err)
	require.Len(t, sum.BatchID, 8)

	var tables []string
	for i, c := range sink.calls {
		if i%2 == 1 {
			assert.Equal(t, domain.ProvenanceTable, c.table)
			assert.Equal(t, 1, c.rows)
			continue
		}
		tables = append(tables, c.table)
		assert.Equal(t, d.Counts()[c.table], c.rows, c.table)
	}
	assert.Equal(t, domain.Tables, tables)
	for _, ts := range sum.Tables {
		assert.Equal(t, ts.Generated, ts.Inserted, ts.Table)
	}
}

func TestSinkErrorStopsRun(t *testing.T) {
	sink := &memSink{fail: "tasks"}
	_, _, err := newEngine(sink).Run(context.Background(), engine.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append tasks")
	for _, c := range sink.calls {
		assert.NotEqual(t, "task_dependencies", c.table, "later phases must not run")
	}
}

func TestInvalidConfigIsRejected(t *testing.T) {
	eng := newEngine(&memSink{})
	eng.Config.Volumes.Workspaces = 0
	_, _, err := eng.Run(context.Background(), engine.Options{})
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestRerunIntoSameStoreIsIdempotent(t *testing.T) {
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	ctx := context.Background()
	require.NoError(t, migrate.Migrate(ctx, conn))
	store := repo.New(conn)
	store.Log = zerolog.Nop()

	_, first, err := newEngine(store).Run(ctx, engine.Options{})
	require.NoError(t, err)
	before, err := store.TableCounts(ctx)
	require.NoError(t, err)

	rerun := newEngine(store)
	rerun.Now = func() time.Time { return time.Date(2026, 1, 8, 8, 0, 0, 0, time.UTC) }
	_, second, err := rerun.Run(ctx, engine.Options{})
	require.NoError(t, err)
	after, err := store.TableCounts(ctx)
	require.NoError(t, err)

	for i, ts := range second.Tables {
		assert.Zero(t, ts.Inserted, ts.Table)
		assert.Zero(t, ts.Failed, ts.Table)
		assert.Equal(t, first.Tables[i].Inserted, ts.Skipped, ts.Table)
	}
	for _, table := range domain.Tables {
		assert.Equal(t, before[table], after[table], table)
	}
	assert.Equal(t, 2*len(domain.Tables), after[domain.ProvenanceTable])
	assert.NotEqual(t, first.BatchID, second.BatchID)

	prov, err := store.LatestProvenance(ctx)
	require.NoError(t, err)
	require.Len(t, prov, len(domain.Tables))
	assert.Equal(t, second.BatchID, prov[0].BatchID)
}

type brokenBackend struct{ calls int }

func (b *brokenBackend) Synthesize(context.Context, content.Request) (string, error) {
	b.calls++
	return "", errors.New("connection refused")
}

func TestBrokenTextBackendKeepsOutputStable(t *testing.T) {
	ctx := context.Background()
	plain, _, err := newEngine(nil).Run(ctx, engine.Options{DryRun: true})
	require.NoError(t, err)

	backend := &brokenBackend{}
	eng := newEngine(nil)
	eng.Primary = backend
	withBackend, _, err := eng.Run(ctx, engine.Options{DryRun: true})
	require.NoError(t, err)
	assert.Positive(t, backend.calls)

	a, err := json.Marshal(plain)
	require.NoError(t, err)
	b, err := json.Marshal(withBackend)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
