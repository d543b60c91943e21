package repo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"worksim/internal/domain"
	"worksim/internal/logger"
)

// PGRepo is the PostgreSQL store.
type PGRepo struct {
	Pool *pgxpool.Pool
	Log  zerolog.Logger
}

func NewPG(pool *pgxpool.Pool) PGRepo {
	return PGRepo{Pool: pool, Log: logger.Logger}
}

// Append mirrors Repo.Append. A failed statement aborts a PostgreSQL
// transaction, so every record runs inside its own savepoint.
func (r PGRepo) Append(ctx context.Context, table string, columns []string, rows [][]any) (AppendResult, error) {
	res := AppendResult{Table: table}
	query, err := insertSQL(table, columns, func(i int) string { return "$" + strconv.Itoa(i) })
	if err != nil {
		return res, err
	}
	if len(rows) == 0 {
		return res, nil
	}
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return res, fmt.Errorf("begin %s: %w", table, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, row := range rows {
		sp, err := tx.Begin(ctx)
		if err != nil {
			return res, fmt.Errorf("savepoint %s: %w", table, err)
		}
		tag, err := sp.Exec(ctx, query, row...)
		if err != nil {
			_ = sp.Rollback(ctx)
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.Failed++
			r.Log.Debug().Err(err).Str("table", table).Int("row", i).Msg("record rejected")
			continue
		}
		if err := sp.Commit(ctx); err != nil {
			return res, fmt.Errorf("release savepoint %s: %w", table, err)
		}
		if tag.RowsAffected() == 0 {
			res.Skipped++
		} else {
			res.Inserted++
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return res, fmt.Errorf("commit %s: %w", table, err)
	}
	return res, nil
}

func (r PGRepo) count(ctx context.Context, query string) (int, error) {
	var n int
	err := r.Pool.QueryRow(ctx, query).Scan(&n)
	return n, err
}

func (r PGRepo) TableCounts(ctx context.Context) (map[string]int, error) {
	return tableCounts(ctx, r.count)
}

func (r PGRepo) Consistency(ctx context.Context) ([]Check, error) {
	return runChecks(ctx, r.count)
}

func (r PGRepo) LatestProvenance(ctx context.Context) ([]domain.Provenance, error) {
	rows, err := r.Pool.Query(ctx, latestProvenanceSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Provenance
	for rows.Next() {
		var p domain.Provenance
		var ts string
		if err := rows.Scan(&p.BatchID, &p.EntityType, &p.SourceStrategy, &p.RowCount, &ts); err != nil {
			return nil, err
		}
		if p.Timestamp, err = time.Parse(domain.TimestampLayout, ts); err != nil {
			return nil, fmt.Errorf("provenance timestamp %q: %w", ts, err)
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sortProvenance(res)
}
